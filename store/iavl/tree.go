package iavl

import "bytes"

// Tree is a persistent, versioned AVL+ tree. Working state (t.root) is a
// copy-on-write in-memory graph of nodes; SaveVersion flattens every node
// reachable from the root that is not yet persisted into db, bottom-up,
// and assigns them all the same new version number, per spec.md §4.1.
//
// Inner nodes never carry their own key independent of their children:
// an inner node's key is always the smallest key in its right subtree,
// the classic IAVL convention. This keeps the tree's shape, and
// therefore its root hash, a pure function of the key/value set it
// holds — never of the order keys were inserted or removed in.
type Tree struct {
	db      NodeDB
	root    *node
	version int64
}

// NewTree returns an empty tree backed by db. Call LoadLatestVersion to
// resume from durable state instead of starting fresh.
func NewTree(db NodeDB) *Tree {
	return &Tree{db: db}
}

// LoadLatestVersion loads the most recently saved version, if any. A
// brand-new db (LatestVersion returns -1) leaves the tree empty.
func (t *Tree) LoadLatestVersion() error {
	v, err := t.db.LatestVersion()
	if err != nil {
		return err
	}
	if v < 0 {
		return nil
	}
	return t.LoadVersion(v)
}

// LoadVersion replaces the working tree with the one saved as version.
func (t *Tree) LoadVersion(version int64) error {
	rootHash, err := t.db.LoadRoot(version)
	if err != nil {
		return err
	}
	if bytes.Equal(rootHash, EmptyRootHash[:]) {
		t.root = nil
		t.version = version
		return nil
	}
	root, err := t.db.GetNode(rootHash)
	if err != nil {
		return err
	}
	t.root = root
	t.version = version
	return nil
}

// Version is the last version saved via SaveVersion (or loaded via
// LoadVersion).
func (t *Tree) Version() int64 { return t.version }

// RootHash is the content hash of the current working root, computed
// (and memoized) on demand even if it has not been saved yet.
func (t *Tree) RootHash() []byte {
	if t.root == nil {
		return append([]byte(nil), EmptyRootHash[:]...)
	}
	return t.root.hashBytes()
}

func (t *Tree) getLeft(n *node) *node  { return t.resolveChild(n, true) }
func (t *Tree) getRight(n *node) *node { return t.resolveChild(n, false) }

func (t *Tree) resolveChild(n *node, left bool) *node {
	if left {
		if n.left != nil {
			return n.left
		}
		if n.leftHash == nil {
			return nil
		}
		child, err := t.db.GetNode(n.leftHash)
		if err != nil {
			panic("iavl: load left child: " + err.Error())
		}
		n.left = child
		return child
	}
	if n.right != nil {
		return n.right
	}
	if n.rightHash == nil {
		return nil
	}
	child, err := t.db.GetNode(n.rightHash)
	if err != nil {
		panic("iavl: load right child: " + err.Error())
	}
	n.right = child
	return child
}

// leftmostKey descends the leftmost spine of n to find the smallest key
// in its subtree.
func (t *Tree) leftmostKey(n *node) []byte {
	for !n.isLeaf() {
		n = t.getLeft(n)
	}
	return n.key
}

// newInner builds an inner node over left/right, deriving its key from
// the right subtree's minimum and its height/size from both children.
func (t *Tree) newInner(left, right *node) *node {
	n := newInner(t.leftmostKey(right), left, right, t.version+1)
	return n
}

func (t *Tree) rotateLeft(n *node) *node {
	r := t.getRight(n)
	newLeft := t.newInner(n.left, t.getLeft(r))
	return t.newInner(newLeft, t.getRight(r))
}

func (t *Tree) rotateRight(n *node) *node {
	l := t.getLeft(n)
	newRight := t.newInner(t.getRight(l), n.right)
	return t.newInner(t.getLeft(l), newRight)
}

// balance restores the AVL invariant at n, applying the LL/LR/RR/RL
// rotation cases as needed. n's children must already be resolved
// in-memory (set by the caller before invoking balance).
func (t *Tree) balance(n *node) *node {
	bf := balanceFactor(n)
	if bf > 1 {
		if balanceFactor(t.getLeft(n)) < 0 {
			n.left = t.rotateLeft(n.left) // LR case
		}
		return t.rotateRight(n) // LL or LR, after the fixup above
	}
	if bf < -1 {
		if balanceFactor(t.getRight(n)) > 0 {
			n.right = t.rotateRight(n.right) // RL case
		}
		return t.rotateLeft(n) // RR or RL, after the fixup above
	}
	return n
}

// Get returns the value stored at key and whether it was found.
func (t *Tree) Get(key []byte) ([]byte, bool) {
	n := t.root
	for n != nil && !n.isLeaf() {
		if bytes.Compare(key, n.key) < 0 {
			n = t.getLeft(n)
		} else {
			n = t.getRight(n)
		}
	}
	if n == nil {
		return nil, false
	}
	if bytes.Equal(n.key, key) {
		return n.value, true
	}
	return nil, false
}

func (t *Tree) Has(key []byte) bool {
	_, ok := t.Get(key)
	return ok
}

// Set inserts or updates key. It returns whether an existing value was
// replaced.
func (t *Tree) Set(key, value []byte) bool {
	newRoot, updated := t.set(t.root, key, value)
	t.root = newRoot
	return updated
}

func (t *Tree) set(n *node, key, value []byte) (*node, bool) {
	if n == nil {
		return newLeaf(key, value, t.version+1), false
	}
	if n.isLeaf() {
		switch bytes.Compare(key, n.key) {
		case 0:
			return newLeaf(key, value, t.version+1), true
		case -1:
			return t.newInner(newLeaf(key, value, t.version+1), n), false
		default:
			return t.newInner(n, newLeaf(key, value, t.version+1)), false
		}
	}
	left, right := t.getLeft(n), t.getRight(n)
	var updated bool
	if bytes.Compare(key, n.key) < 0 {
		left, updated = t.set(left, key, value)
	} else {
		right, updated = t.set(right, key, value)
	}
	newN := t.newInner(left, right)
	if updated {
		return newN, true
	}
	return t.balance(newN), false
}

// Remove deletes key if present, returning its prior value.
func (t *Tree) Remove(key []byte) ([]byte, bool) {
	newRoot, value, removed := t.remove(t.root, key)
	if removed {
		t.root = newRoot
	}
	return value, removed
}

func (t *Tree) remove(n *node, key []byte) (*node, []byte, bool) {
	if n == nil {
		return nil, nil, false
	}
	if n.isLeaf() {
		if bytes.Equal(n.key, key) {
			return nil, n.value, true
		}
		return n, nil, false
	}
	left, right := t.getLeft(n), t.getRight(n)
	if bytes.Compare(key, n.key) < 0 {
		newLeft, value, removed := t.remove(left, key)
		if !removed {
			return n, nil, false
		}
		if newLeft == nil {
			return right, value, true
		}
		return t.balance(t.newInner(newLeft, right)), value, true
	}
	newRight, value, removed := t.remove(right, key)
	if !removed {
		return n, nil, false
	}
	if newRight == nil {
		return left, value, true
	}
	return t.balance(t.newInner(left, newRight)), value, true
}

// SaveVersion flattens every unpersisted node reachable from the working
// root into db, bottom-up, under a single new version number, then
// records the resulting root hash for that version.
func (t *Tree) SaveVersion() ([]byte, int64, error) {
	next := t.version + 1
	if t.root == nil {
		root := append([]byte(nil), EmptyRootHash[:]...)
		if err := t.db.SaveRoot(next, root); err != nil {
			return nil, 0, err
		}
		t.version = next
		return root, next, nil
	}
	if err := t.saveRecursive(t.root, next); err != nil {
		return nil, 0, err
	}
	rootHash := t.root.hashBytes()
	if err := t.db.SaveRoot(next, rootHash); err != nil {
		return nil, 0, err
	}
	t.version = next
	return rootHash, next, nil
}

func (t *Tree) saveRecursive(n *node, version int64) error {
	if n.persisted {
		return nil
	}
	if !n.isLeaf() {
		if n.left != nil {
			if err := t.saveRecursive(n.left, version); err != nil {
				return err
			}
			n.leftHash = n.left.hashBytes()
		}
		if n.right != nil {
			if err := t.saveRecursive(n.right, version); err != nil {
				return err
			}
			n.rightHash = n.right.hashBytes()
		}
	}
	n.version = version
	n.hash = nil // content (height/size may have changed since last hash)
	if err := t.db.SaveNode(n); err != nil {
		return err
	}
	n.persisted = true
	return nil
}

type kv struct {
	key, value []byte
}

func inBounds(key, start, end []byte) bool {
	if start != nil && bytes.Compare(key, start) < 0 {
		return false
	}
	if end != nil && bytes.Compare(key, end) >= 0 {
		return false
	}
	return true
}

// collectRange gathers every leaf in [start, end) in ascending key order.
// The tree is balanced but shallow for the sizes this framework deals in,
// so a materialized range scan is simpler and exactly as correct as a
// lazily-stepped one; it just isn't streaming.
func (t *Tree) collectRange(n *node, start, end []byte, out *[]kv) {
	if n == nil {
		return
	}
	if n.isLeaf() {
		if inBounds(n.key, start, end) {
			*out = append(*out, kv{key: n.key, value: n.value})
		}
		return
	}
	t.collectRange(t.getLeft(n), start, end, out)
	t.collectRange(t.getRight(n), start, end, out)
}
