// Package rootmulti implements the multi-store: a fixed map of named
// store keys to independent layered KV stores, committed together into
// one app-hash, per spec.md §4.3 (component C3).
package rootmulti

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"sync"

	"github.com/synnergy-chain/framework/store/iavl"
	storetypes "github.com/synnergy-chain/framework/store/types"
)

// StoreKey names one of the multi-store's fixed sub-stores. Modules never
// share a StoreKey; the set is fixed at app wiring time, not discovered at
// runtime.
type StoreKey string

// CommitID is a (version, root-hash) pair, the unit of state a commit
// advances.
type CommitID struct {
	Version int64
	Hash    []byte
}

// Store is the root multi-store: a fixed StoreKey -> cachekv-over-iavl
// stack, plus the aggregated app-hash computation at Commit.
type Store struct {
	mu      sync.RWMutex
	stores  map[StoreKey]*storetypes.Store
	bases   map[StoreKey]*iavl.Store
	version int64
}

// NewStore returns an empty multi-store with no registered keys.
func NewStore() *Store {
	return &Store{
		stores: make(map[StoreKey]*storetypes.Store),
		bases:  make(map[StoreKey]*iavl.Store),
	}
}

// MountStore registers key against a durable IAVL-backed store. Must be
// called before the application starts serving ABCI requests; the key set
// is fixed thereafter.
func (s *Store) MountStore(key StoreKey, db iavl.NodeDB) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.bases[key]; exists {
		return fmt.Errorf("rootmulti: store key %q already mounted", key)
	}
	base, err := iavl.NewStore(db)
	if err != nil {
		return fmt.Errorf("rootmulti: mount %q: %w", key, err)
	}
	s.bases[key] = base
	s.stores[key] = storetypes.NewStore(base)
	return nil
}

// GetKVStore returns the layered cachekv store for key. Panics if key was
// never mounted — the same "programmer error" treatment spec.md gives an
// empty store key.
func (s *Store) GetKVStore(key StoreKey) *storetypes.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	store, ok := s.stores[key]
	if !ok {
		panic(fmt.Sprintf("rootmulti: unknown store key %q", key))
	}
	return store
}

// StoreKeys returns every mounted key, sorted, for deterministic
// iteration elsewhere (e.g. genesis export).
func (s *Store) StoreKeys() []StoreKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]StoreKey, 0, len(s.stores))
	for k := range s.stores {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Commit flattens every mounted store's block-cache through to its tree
// and commits a new version, then aggregates the resulting roots into one
// app-hash: sort store names by byte order, hash the (name, root) pairs in
// that order. This resolves spec.md §9's open question on aggregation
// order.
func (s *Store) Commit() (CommitID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	roots := make(map[StoreKey][]byte, len(s.stores))
	var version int64
	for key, store := range s.stores {
		root, v, err := store.Commit()
		if err != nil {
			return CommitID{}, fmt.Errorf("rootmulti: commit %q: %w", key, err)
		}
		roots[key] = root
		version = v
	}
	s.version = version

	names := make([]string, 0, len(roots))
	for key := range roots {
		names = append(names, string(key))
	}
	sort.Strings(names)

	h := sha256.New()
	for _, name := range names {
		h.Write([]byte(name))
		h.Write(roots[StoreKey(name)])
	}
	return CommitID{Version: version, Hash: h.Sum(nil)}, nil
}

// LastCommitID reports the most recently committed version/app-hash
// without performing a new commit.
func (s *Store) LastCommitID() CommitID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.bases))
	roots := make(map[string][]byte, len(s.bases))
	var version int64
	for key, base := range s.bases {
		root, v := base.LastCommitID()
		names = append(names, string(key))
		roots[string(key)] = root
		version = v
	}
	sort.Strings(names)

	h := sha256.New()
	for _, name := range names {
		h.Write([]byte(name))
		h.Write(roots[name])
	}
	return CommitID{Version: version, Hash: h.Sum(nil)}
}

// Version returns the last committed version number.
func (s *Store) Version() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// DiscardAllTxCaches drops every mounted store's pending tx-scope writes without
// touching block-scope or persisted state — the CheckTx/DeliverTx replay
// isolation boundary spec.md §4.4 describes.
func (s *Store) DiscardAllTxCaches() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, store := range s.stores {
		store.DiscardTxCache()
	}
}

// WriteAllTxCaches flattens every mounted store's tx-cache into its
// block-cache — called by InitChain, and by DeliverTx once after the ante
// handler succeeds and again after the message handlers succeed.
func (s *Store) WriteAllTxCaches() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, store := range s.stores {
		store.WriteTxCache()
	}
}
