// Package iavl implements a persistent, versioned, height-balanced AVL+
// tree whose node hashes Merkle-authenticate the entire key/value mapping,
// per spec.md §3/§4.1 (component C1).
package iavl

import (
	"crypto/sha256"
	"fmt"

	"github.com/gogo/protobuf/proto"
)

// node is the tagged-sum Node = Inner{...} | Leaf{...} spec.md §9
// recommends, expressed here as one struct with a leaf flag rather than an
// interface hierarchy — the two shapes share almost every field and the
// dispatch needed (hashing, serialization) is trivial to branch on.
type node struct {
	key     []byte
	value   []byte // only set for leaves
	height  int8
	size    int64
	version int64

	leftHash  []byte
	rightHash []byte
	left      *node // transient, only populated while a subtree is in memory
	right     *node

	hash      []byte // memoized; nil until computed
	persisted bool
}

func (n *node) isLeaf() bool { return n.height == 0 }

// hashBytes returns the node's content hash, computing and memoizing it if
// necessary. The encoding is exactly spec.md §4.1's on-disk layout: height
// (varint), size (varint), version (varint), length-prefixed key,
// length-prefixed left-hash (empty for leaves), length-prefixed right-hash
// (empty for leaves), and for leaves the length-prefixed value.
func (n *node) hashBytes() []byte {
	if n.hash != nil {
		return n.hash
	}
	sum := sha256.Sum256(n.encode())
	n.hash = sum[:]
	return n.hash
}

// encode serializes the node per spec.md §4.1 using gogo/protobuf's
// low-level Buffer primitives for the varint/length-delimited fields.
func (n *node) encode() []byte {
	buf := proto.NewBuffer(nil)
	_ = buf.EncodeVarint(uint64(int64(n.height)))
	_ = buf.EncodeVarint(uint64(n.size))
	_ = buf.EncodeVarint(uint64(n.version))
	_ = buf.EncodeRawBytes(n.key)
	if n.isLeaf() {
		_ = buf.EncodeRawBytes(nil)
		_ = buf.EncodeRawBytes(nil)
		_ = buf.EncodeRawBytes(n.value)
	} else {
		_ = buf.EncodeRawBytes(n.leftHash)
		_ = buf.EncodeRawBytes(n.rightHash)
	}
	return buf.Bytes()
}

// decodeNode parses a node previously produced by encode().
func decodeNode(data []byte) (*node, error) {
	buf := proto.NewBuffer(data)
	height, err := buf.DecodeVarint()
	if err != nil {
		return nil, fmt.Errorf("iavl: decode height: %w", err)
	}
	size, err := buf.DecodeVarint()
	if err != nil {
		return nil, fmt.Errorf("iavl: decode size: %w", err)
	}
	version, err := buf.DecodeVarint()
	if err != nil {
		return nil, fmt.Errorf("iavl: decode version: %w", err)
	}
	key, err := buf.DecodeRawBytes(true)
	if err != nil {
		return nil, fmt.Errorf("iavl: decode key: %w", err)
	}
	leftHash, err := buf.DecodeRawBytes(true)
	if err != nil {
		return nil, fmt.Errorf("iavl: decode left hash: %w", err)
	}
	rightHash, err := buf.DecodeRawBytes(true)
	if err != nil {
		return nil, fmt.Errorf("iavl: decode right hash: %w", err)
	}
	n := &node{
		height:  int8(height),
		size:    int64(size),
		version: int64(version),
		key:     key,
	}
	if n.isLeaf() {
		value, err := buf.DecodeRawBytes(true)
		if err != nil {
			return nil, fmt.Errorf("iavl: decode value: %w", err)
		}
		n.value = value
	} else {
		n.leftHash = leftHash
		n.rightHash = rightHash
	}
	n.persisted = true
	return n, nil
}

func height(n *node) int8 {
	if n == nil {
		return 0
	}
	return n.height
}

func size(n *node) int64 {
	if n == nil {
		return 0
	}
	return n.size
}

func balanceFactor(n *node) int {
	return int(height(n.left)) - int(height(n.right))
}

func newLeaf(key, value []byte, version int64) *node {
	return &node{key: key, value: value, height: 0, size: 1, version: version}
}

func newInner(key []byte, left, right *node, version int64) *node {
	n := &node{
		key:     key,
		left:    left,
		right:   right,
		version: version,
	}
	n.height = 1 + maxInt8(height(left), height(right))
	n.size = size(left) + size(right)
	return n
}

func maxInt8(a, b int8) int8 {
	if a > b {
		return a
	}
	return b
}

// EmptyRootHash is the fixed sentinel root for an empty tree, per
// spec.md §4.1.
var EmptyRootHash = sha256.Sum256(nil)
