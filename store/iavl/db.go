package iavl

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
)

// NodeDB is the backing byte store every node is keyed into by its own
// hash, plus the reserved per-version root keyspace, per spec.md §6
// ("Node records are stored by hash → serialized-node; Version roots are
// stored under a reserved key").
type NodeDB interface {
	GetNode(hash []byte) (*node, error)
	SaveNode(n *node) error
	DeleteNode(hash []byte) error
	SaveRoot(version int64, hash []byte) error
	LoadRoot(version int64) ([]byte, error)
	LatestVersion() (int64, error)
	Close() error
}

// walRecord is one durable log entry: either a node write or a root
// assignment. Grounded directly on core/ledger.go's WAL pattern (append a
// JSON line per mutation, replay on open, snapshot + truncate
// periodically) generalized from whole-block records to individual
// node/root records.
type walRecord struct {
	Kind    string `json:"kind"` // "node" or "root"
	Hash    string `json:"hash,omitempty"`
	Data    []byte `json:"data,omitempty"`
	Version int64  `json:"version,omitempty"`
	Root    string `json:"root,omitempty"`
}

// FileNodeDB is a durable NodeDB: an in-memory index backed by a
// write-ahead log plus full snapshots written when Snapshot is called
// (nothing calls it on a schedule), the durability
// story core/ledger.go implements for whole blocks, reused here at node
// granularity.
type FileNodeDB struct {
	mu    sync.RWMutex
	nodes map[string][]byte // hex(hash) -> encoded node
	roots map[int64][]byte  // version -> root hash

	walPath      string
	walFile      *os.File
	snapshotPath string

	cache *lru.Cache[string, *node]
}

// NewFileNodeDB opens (or creates) a durable node store rooted at dir,
// replaying its WAL and optional snapshot. cacheSize bounds the in-memory
// decoded-node LRU cache (store/iavl's performance layer, per
// DESIGN.md's C1 entry).
func NewFileNodeDB(dir string, cacheSize int) (*FileNodeDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("iavl: mkdir %s: %w", dir, err)
	}
	db := &FileNodeDB{
		nodes:        make(map[string][]byte),
		roots:        make(map[int64][]byte),
		walPath:      dir + "/nodes.wal",
		snapshotPath: dir + "/nodes.snap",
	}
	cache, err := lru.New[string, *node](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("iavl: node cache: %w", err)
	}
	db.cache = cache

	if f, err := os.Open(db.snapshotPath); err == nil {
		dec := json.NewDecoder(f)
		var snap struct {
			Nodes map[string][]byte `json:"nodes"`
			Roots map[int64][]byte  `json:"roots"`
		}
		if err := dec.Decode(&snap); err != nil {
			f.Close()
			return nil, fmt.Errorf("iavl: decode snapshot: %w", err)
		}
		f.Close()
		if snap.Nodes != nil {
			db.nodes = snap.Nodes
		}
		if snap.Roots != nil {
			db.roots = snap.Roots
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("iavl: open snapshot: %w", err)
	}

	wal, err := os.OpenFile(db.walPath, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("iavl: open WAL: %w", err)
	}
	scanner := bufio.NewScanner(wal)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		var rec walRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			wal.Close()
			return nil, fmt.Errorf("iavl: WAL unmarshal: %w", err)
		}
		db.applyRecord(rec)
	}
	if err := scanner.Err(); err != nil {
		wal.Close()
		return nil, fmt.Errorf("iavl: WAL scan: %w", err)
	}
	db.walFile = wal
	return db, nil
}

func (db *FileNodeDB) applyRecord(rec walRecord) {
	switch rec.Kind {
	case "node":
		db.nodes[rec.Hash] = rec.Data
	case "root":
		rootBytes, _ := hex.DecodeString(rec.Root)
		db.roots[rec.Version] = rootBytes
	}
}

func (db *FileNodeDB) appendWAL(rec walRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := db.walFile.Write(append(data, '\n')); err != nil {
		return err
	}
	return db.walFile.Sync()
}

func (db *FileNodeDB) GetNode(hash []byte) (*node, error) {
	key := hex.EncodeToString(hash)
	db.mu.RLock()
	if n, ok := db.cache.Get(key); ok {
		db.mu.RUnlock()
		return n, nil
	}
	raw, ok := db.nodes[key]
	db.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("iavl: node %s not found", key)
	}
	n, err := decodeNode(raw)
	if err != nil {
		return nil, fmt.Errorf("iavl: corrupt node %s: %w", key, err)
	}
	db.mu.Lock()
	db.cache.Add(key, n)
	db.mu.Unlock()
	return n, nil
}

func (db *FileNodeDB) SaveNode(n *node) error {
	key := hex.EncodeToString(n.hashBytes())
	encoded := n.encode()
	db.mu.Lock()
	db.nodes[key] = encoded
	db.cache.Add(key, n)
	db.mu.Unlock()
	return db.appendWAL(walRecord{Kind: "node", Hash: key, Data: encoded})
}

func (db *FileNodeDB) DeleteNode(hash []byte) error {
	key := hex.EncodeToString(hash)
	db.mu.Lock()
	delete(db.nodes, key)
	db.cache.Remove(key)
	db.mu.Unlock()
	return nil
}

func (db *FileNodeDB) SaveRoot(version int64, hash []byte) error {
	db.mu.Lock()
	db.roots[version] = hash
	db.mu.Unlock()
	return db.appendWAL(walRecord{Kind: "root", Version: version, Root: hex.EncodeToString(hash)})
}

func (db *FileNodeDB) LoadRoot(version int64) ([]byte, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	root, ok := db.roots[version]
	if !ok {
		return nil, fmt.Errorf("iavl: no root at version %d", version)
	}
	return root, nil
}

func (db *FileNodeDB) LatestVersion() (int64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	var latest int64 = -1
	for v := range db.roots {
		if v > latest {
			latest = v
		}
	}
	return latest, nil
}

// Snapshot writes the full node/root index to disk and truncates the WAL,
// mirroring core/ledger.go's snapshot()/prune() pair.
func (db *FileNodeDB) Snapshot() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	f, err := os.Create(db.snapshotPath)
	if err != nil {
		return err
	}
	payload := struct {
		Nodes map[string][]byte `json:"nodes"`
		Roots map[int64][]byte  `json:"roots"`
	}{db.nodes, db.roots}
	if err := json.NewEncoder(f).Encode(payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := db.walFile.Close(); err != nil {
		return err
	}
	wal, err := os.Create(db.walPath)
	if err != nil {
		return err
	}
	db.walFile = wal
	logrus.Infof("iavl: snapshot saved to %s; WAL truncated", db.snapshotPath)
	return nil
}

func (db *FileNodeDB) Close() error {
	if db.walFile == nil {
		return nil
	}
	return db.walFile.Close()
}

// MemNodeDB is a pure in-memory NodeDB used by tests and ephemeral nodes.
type MemNodeDB struct {
	mu    sync.RWMutex
	nodes map[string][]byte
	roots map[int64][]byte
}

func NewMemNodeDB() *MemNodeDB {
	return &MemNodeDB{nodes: make(map[string][]byte), roots: make(map[int64][]byte)}
}

func (db *MemNodeDB) GetNode(hash []byte) (*node, error) {
	key := hex.EncodeToString(hash)
	db.mu.RLock()
	raw, ok := db.nodes[key]
	db.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("iavl: node %s not found", key)
	}
	n, err := decodeNode(raw)
	if err != nil {
		return nil, fmt.Errorf("iavl: corrupt node %s: %w", key, err)
	}
	return n, nil
}

func (db *MemNodeDB) SaveNode(n *node) error {
	key := hex.EncodeToString(n.hashBytes())
	db.mu.Lock()
	db.nodes[key] = n.encode()
	db.mu.Unlock()
	return nil
}

func (db *MemNodeDB) DeleteNode(hash []byte) error {
	db.mu.Lock()
	delete(db.nodes, hex.EncodeToString(hash))
	db.mu.Unlock()
	return nil
}

func (db *MemNodeDB) SaveRoot(version int64, hash []byte) error {
	db.mu.Lock()
	db.roots[version] = hash
	db.mu.Unlock()
	return nil
}

func (db *MemNodeDB) LoadRoot(version int64) ([]byte, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	root, ok := db.roots[version]
	if !ok {
		return nil, fmt.Errorf("iavl: no root at version %d", version)
	}
	return root, nil
}

func (db *MemNodeDB) LatestVersion() (int64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	var latest int64 = -1
	for v := range db.roots {
		if v > latest {
			latest = v
		}
	}
	return latest, nil
}

func (db *MemNodeDB) Close() error { return nil }
