package types

// Store is the layered KV store of spec.md §4.2: tx-cache over block-cache
// over a persistent CommitKVStore. get probes tx-cache, then block-cache,
// then the tree, honoring delete tombstones at each level; set/delete land
// only in the tx-cache.
type Store struct {
	base       CommitKVStore
	blockCache *kvCache
	txCache    *kvCache
}

// NewStore wraps a persistent CommitKVStore with fresh, empty block and tx
// caches — the state at the start of a block, before any BeginBlock/
// DeliverTx activity.
func NewStore(base CommitKVStore) *Store {
	return &Store{base: base, blockCache: newKVCache(), txCache: newKVCache()}
}

func (s *Store) Get(key []byte) []byte {
	if v, has, tomb := s.txCache.Get(key); has || tomb {
		return v
	}
	if v, has, tomb := s.blockCache.Get(key); has || tomb {
		return v
	}
	return s.base.Get(key)
}

func (s *Store) Has(key []byte) bool { return s.Get(key) != nil }

func (s *Store) Set(key, value []byte) {
	AssertValidKey(key)
	s.txCache.Set(key, value)
}

func (s *Store) Delete(key []byte) []byte {
	prev := s.Get(key)
	s.txCache.Delete(key)
	return prev
}

// WriteTxCache drains the tx-cache into the block-cache in key-ascending
// order, per spec.md §4.2's "write-through-then-clear-tx-cache". Called on
// a successful DeliverTx; on failure, and after every CheckTx, the
// tx-cache is discarded via DiscardTxCache instead.
func (s *Store) WriteTxCache() {
	keys := s.txCache.sortedKeys(nil, nil)
	for _, k := range keys {
		key := []byte(k)
		if v, has, _ := s.txCache.Get(key); has {
			s.blockCache.Set(key, v)
		} else {
			s.blockCache.Delete(key)
		}
	}
	s.txCache.Reset()
}

// DiscardTxCache drops all pending tx-scope writes without touching the
// block-cache — the abort path for a failed ante/handler run.
func (s *Store) DiscardTxCache() { s.txCache.Reset() }

// WriteBlockCache drains the block-cache into the persistent tree in
// key-ascending order ("write-through-then-clear-block-cache"). Called at
// Commit. Failure mid-drain is fatal per spec.md §4.2.
func (s *Store) WriteBlockCache() {
	keys := s.blockCache.sortedKeys(nil, nil)
	for _, k := range keys {
		key := []byte(k)
		if v, has, _ := s.blockCache.Get(key); has {
			s.base.Set(key, v)
		} else {
			s.base.Delete(key)
		}
	}
	s.blockCache.Reset()
}

// Commit flattens the block-cache through to the tree and persists a new
// version, returning its root and version. Pending tx-cache writes are
// not included.
func (s *Store) Commit() ([]byte, int64, error) {
	s.WriteBlockCache()
	return s.base.Commit()
}

func (s *Store) LastCommitID() ([]byte, int64) { return s.base.LastCommitID() }

// Iterator returns a forward iterator merging tx-cache, block-cache, and
// tree streams by ascending key, preferring the topmost layer on ties and
// skipping keys tombstoned by a higher-precedence layer (spec.md §4.2,
// §9's "explicit merge of sorted streams with layer-precedence
// tie-breaking").
func (s *Store) Iterator(start, end []byte) Iterator {
	return s.mergeIterator(start, end, true)
}

func (s *Store) ReverseIterator(start, end []byte) Iterator {
	return s.mergeIterator(start, end, false)
}

func (s *Store) mergeIterator(start, end []byte, ascending bool) Iterator {
	txKeys := s.txCache.sortedKeys(start, end)
	blockKeys := s.blockCache.sortedKeys(start, end)
	base := s.base.Iterator(start, end)
	if !ascending {
		base = s.base.ReverseIterator(start, end)
	}
	baseEntries := drain(base)
	if !ascending {
		reverseStrings(txKeys)
		reverseStrings(blockKeys)
	}
	it := &mergedIterator{
		layers: []layerStream{
			{keys: txKeys, get: s.txCache.Get},
			{keys: blockKeys, get: s.blockCache.Get},
			{keys: baseKeysOf(baseEntries), get: baseGetter(baseEntries)},
		},
		ascending: ascending,
	}
	it.advance()
	return it
}

func drain(it Iterator) [][2][]byte {
	var out [][2][]byte
	defer it.Close()
	for it.Valid() {
		k := append([]byte(nil), it.Key()...)
		v := append([]byte(nil), it.Value()...)
		out = append(out, [2][]byte{k, v})
		it.Next()
	}
	return out
}

func baseKeysOf(entries [][2][]byte) []string {
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = string(e[0])
	}
	return keys
}

func baseGetter(entries [][2][]byte) func([]byte) ([]byte, bool, bool) {
	m := make(map[string][]byte, len(entries))
	for _, e := range entries {
		m[string(e[0])] = e[1]
	}
	return func(key []byte) ([]byte, bool, bool) {
		v, ok := m[string(key)]
		return v, ok, false
	}
}

func reverseStrings(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

type layerStream struct {
	keys []string
	get  func([]byte) (value []byte, has bool, tomb bool)
	pos  int
}

func (l *layerStream) peek() (string, bool) {
	if l.pos >= len(l.keys) {
		return "", false
	}
	return l.keys[l.pos], true
}

// mergedIterator lazily merges the three layer streams, always taking the
// smallest (or largest, in reverse) key across layers and, on ties,
// preferring the layer listed first (tx-cache, then block-cache, then
// tree) — exactly the precedence rule spec.md §4.2 specifies.
type mergedIterator struct {
	layers    []layerStream
	ascending bool
	key       []byte
	value     []byte
	valid     bool
}

func (it *mergedIterator) Valid() bool { return it.valid }

func (it *mergedIterator) Key() []byte {
	if !it.valid {
		panic("mergedIterator: Key() called on invalid iterator")
	}
	return it.key
}

func (it *mergedIterator) Value() []byte {
	if !it.valid {
		panic("mergedIterator: Value() called on invalid iterator")
	}
	return it.value
}

func (it *mergedIterator) Close() error { return nil }

// Next advances to the next un-tombstoned key. Layers positioned at the
// current key were already stepped past it inside advance()'s resolution
// of that key, so Next only needs to resume the merge loop.
func (it *mergedIterator) Next() {
	it.advance()
}

// advance finds the next un-tombstoned key across all layers.
func (it *mergedIterator) advance() {
	for {
		best, ok := it.pickCandidate()
		if !ok {
			it.valid = false
			return
		}
		value, tomb := it.resolve(best)
		it.advanceLayersAt(best)
		if tomb {
			continue
		}
		it.key = []byte(best)
		it.value = value
		it.valid = true
		return
	}
}

func (it *mergedIterator) pickCandidate() (string, bool) {
	var best string
	found := false
	for i := range it.layers {
		k, ok := it.layers[i].peek()
		if !ok {
			continue
		}
		if !found {
			best, found = k, true
			continue
		}
		if it.ascending && k < best {
			best = k
		} else if !it.ascending && k > best {
			best = k
		}
	}
	return best, found
}

// resolve returns the value for key honoring layer precedence: the
// highest-precedence layer that has an opinion (value or tombstone) wins.
func (it *mergedIterator) resolve(key string) (value []byte, tombstoned bool) {
	for i := range it.layers {
		if k, ok := it.layers[i].peek(); ok && k == key {
			v, has, tomb := it.layers[i].get([]byte(key))
			if has {
				return v, false
			}
			if tomb {
				return nil, true
			}
		}
	}
	return nil, true
}

func (it *mergedIterator) advanceLayersAt(key string) {
	for i := range it.layers {
		if k, ok := it.layers[i].peek(); ok && k == key {
			it.layers[i].pos++
		}
	}
}
