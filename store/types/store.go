// Package types defines the storage primitives shared by the persistent
// tree (store/iavl), the layered cache store, and the multi-store — kept
// free of any dependency on the higher-level "types" package so that
// store/* never has to import application-level concepts, mirroring the
// teacher's own low-coupling convention (core/ledger.go depends on nothing
// above it in the stack).
package types

// Iterator walks an ordered (key, value) range. Implementations are
// forward-only and single-use, per spec.md §4.1/§4.2's range contract.
type Iterator interface {
	// Valid reports whether the iterator is positioned at a valid entry.
	Valid() bool
	// Next advances the iterator.
	Next()
	// Key returns the current key. Panics if !Valid().
	Key() []byte
	// Value returns the current value. Panics if !Valid().
	Value() []byte
	// Close releases any resources held by the iterator.
	Close() error
}

// KVStore is the minimal read/write/iterate surface every storage layer in
// this package implements: the persistent tree, the layered cache store,
// and prefix views over either.
type KVStore interface {
	// Get returns the value for key, or nil if absent.
	Get(key []byte) []byte
	// Has reports whether key is present.
	Has(key []byte) bool
	// Set stores value under key. Panics if key is empty (spec.md §4.2 —
	// "programmer error, not a runtime error").
	Set(key, value []byte)
	// Delete removes key, returning the previous value if any.
	Delete(key []byte) []byte
	// Iterator returns a forward iterator over [start, end). A nil end
	// means unbounded.
	Iterator(start, end []byte) Iterator
	// ReverseIterator returns a backward iterator over [start, end).
	ReverseIterator(start, end []byte) Iterator
}

// CommitKVStore is a KVStore whose contents can be versioned and committed
// to durable storage — the role the persistent IAVL+ tree plays in the
// layered store (spec.md §4.2's lowest layer).
type CommitKVStore interface {
	KVStore
	// Commit flattens all pending writes into a new persisted version and
	// returns its root hash and version number.
	Commit() (root []byte, version int64, err error)
	// LastCommitID returns the most recently committed root/version pair
	// without performing a new commit.
	LastCommitID() (root []byte, version int64)
}

func assertEmptyKey(key []byte) {
	if len(key) == 0 {
		panic("store: key is empty")
	}
}

// AssertValidKey panics on an empty key, the one place spec.md §4.2/§8
// mandates a panic rather than an error return.
func AssertValidKey(key []byte) { assertEmptyKey(key) }
