package iavl

import (
	storetypes "github.com/synnergy-chain/framework/store/types"
)

// Store adapts a Tree to store/types.CommitKVStore, the persistence layer
// every module's cachekv store sits on top of (spec.md §4.2/§4.3).
type Store struct {
	tree *Tree
}

// NewStore opens a durable IAVL-backed store, resuming from whatever
// version db last had committed.
func NewStore(db NodeDB) (*Store, error) {
	tree := NewTree(db)
	if err := tree.LoadLatestVersion(); err != nil {
		return nil, err
	}
	return &Store{tree: tree}, nil
}

func (s *Store) Get(key []byte) []byte {
	v, ok := s.tree.Get(key)
	if !ok {
		return nil
	}
	return v
}

func (s *Store) Has(key []byte) bool { return s.tree.Has(key) }

func (s *Store) Set(key, value []byte) {
	storetypes.AssertValidKey(key)
	s.tree.Set(key, value)
}

func (s *Store) Delete(key []byte) []byte {
	v, _ := s.tree.Remove(key)
	return v
}

func (s *Store) Commit() ([]byte, int64, error) { return s.tree.SaveVersion() }

func (s *Store) LastCommitID() ([]byte, int64) { return s.tree.RootHash(), s.tree.Version() }

func (s *Store) Iterator(start, end []byte) storetypes.Iterator {
	var items []kv
	s.tree.collectRange(s.tree.root, start, end, &items)
	return &sliceIterator{items: items}
}

func (s *Store) ReverseIterator(start, end []byte) storetypes.Iterator {
	var items []kv
	s.tree.collectRange(s.tree.root, start, end, &items)
	reversed := make([]kv, len(items))
	for i, it := range items {
		reversed[len(items)-1-i] = it
	}
	return &sliceIterator{items: reversed}
}

// sliceIterator walks a materialized key/value slice in the order given.
type sliceIterator struct {
	items []kv
	pos   int
}

func (it *sliceIterator) Valid() bool { return it.pos < len(it.items) }

func (it *sliceIterator) Next() { it.pos++ }

func (it *sliceIterator) Key() []byte {
	if !it.Valid() {
		panic("sliceIterator: Key() called on invalid iterator")
	}
	return it.items[it.pos].key
}

func (it *sliceIterator) Value() []byte {
	if !it.Valid() {
		panic("sliceIterator: Value() called on invalid iterator")
	}
	return it.items[it.pos].value
}

func (it *sliceIterator) Close() error { return nil }
