package iavl

import (
	"bytes"
	"fmt"
	"testing"
)

func TestTreeGetSetRemove(t *testing.T) {
	tree := NewTree(NewMemNodeDB())

	if tree.Has([]byte("a")) {
		t.Fatalf("empty tree reports Has(a)")
	}

	if updated := tree.Set([]byte("a"), []byte("1")); updated {
		t.Fatalf("first set of a reported an update")
	}
	if updated := tree.Set([]byte("b"), []byte("2")); updated {
		t.Fatalf("first set of b reported an update")
	}
	if updated := tree.Set([]byte("a"), []byte("3")); !updated {
		t.Fatalf("re-set of a did not report an update")
	}

	v, ok := tree.Get([]byte("a"))
	if !ok || !bytes.Equal(v, []byte("3")) {
		t.Fatalf("Get(a) = %q, %v; want 3, true", v, ok)
	}

	old, removed := tree.Remove([]byte("b"))
	if !removed || !bytes.Equal(old, []byte("2")) {
		t.Fatalf("Remove(b) = %q, %v; want 2, true", old, removed)
	}
	if tree.Has([]byte("b")) {
		t.Fatalf("b still present after Remove")
	}

	if _, removed := tree.Remove([]byte("missing")); removed {
		t.Fatalf("Remove(missing) reported a removal")
	}
}

func TestTreeRootHashIndependentOfInsertionOrder(t *testing.T) {
	keys := []string{"delta", "alpha", "charlie", "bravo", "echo"}

	build := func(order []string) []byte {
		tree := NewTree(NewMemNodeDB())
		for _, k := range order {
			tree.Set([]byte(k), []byte("v-"+k))
		}
		return tree.RootHash()
	}

	forward := build(keys)

	reversed := make([]string, len(keys))
	for i, k := range keys {
		reversed[len(keys)-1-i] = k
	}
	backward := build(reversed)

	if !bytes.Equal(forward, backward) {
		t.Fatalf("root hash depends on insertion order: forward=%x backward=%x", forward, backward)
	}
}

func TestTreeSaveAndLoadVersion(t *testing.T) {
	db := NewMemNodeDB()
	tree := NewTree(db)

	for i := 0; i < 20; i++ {
		tree.Set([]byte(fmt.Sprintf("key-%02d", i)), []byte(fmt.Sprintf("val-%02d", i)))
	}
	rootV1, v1, err := tree.SaveVersion()
	if err != nil {
		t.Fatalf("SaveVersion: %v", err)
	}
	if v1 != 1 {
		t.Fatalf("version = %d, want 1", v1)
	}

	tree.Set([]byte("key-00"), []byte("overwritten"))
	rootV2, v2, err := tree.SaveVersion()
	if err != nil {
		t.Fatalf("SaveVersion: %v", err)
	}
	if v2 != 2 {
		t.Fatalf("version = %d, want 2", v2)
	}
	if bytes.Equal(rootV1, rootV2) {
		t.Fatalf("root hash unchanged after a mutation")
	}

	reopened := NewTree(db)
	if err := reopened.LoadVersion(1); err != nil {
		t.Fatalf("LoadVersion(1): %v", err)
	}
	v, ok := reopened.Get([]byte("key-00"))
	if !ok || !bytes.Equal(v, []byte("val-00")) {
		t.Fatalf("version 1's key-00 = %q, %v; want val-00, true", v, ok)
	}
	if !bytes.Equal(reopened.RootHash(), rootV1) {
		t.Fatalf("reloaded version 1 root hash mismatch")
	}

	if err := reopened.LoadLatestVersion(); err != nil {
		t.Fatalf("LoadLatestVersion: %v", err)
	}
	if reopened.Version() != 2 {
		t.Fatalf("latest version = %d, want 2", reopened.Version())
	}
	v, ok = reopened.Get([]byte("key-00"))
	if !ok || !bytes.Equal(v, []byte("overwritten")) {
		t.Fatalf("latest key-00 = %q, %v; want overwritten, true", v, ok)
	}
}

func TestTreeCollectRangeOrdering(t *testing.T) {
	tree := NewTree(NewMemNodeDB())
	for _, k := range []string{"c", "a", "e", "b", "d"} {
		tree.Set([]byte(k), []byte(k))
	}
	store, err := NewStore(NewMemNodeDB())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	for _, k := range []string{"c", "a", "e", "b", "d"} {
		store.Set([]byte(k), []byte(k))
	}
	it := store.Iterator(nil, nil)
	defer it.Close()
	var got []string
	for ; it.Valid(); it.Next() {
		got = append(got, string(it.Key()))
	}
	want := []string{"a", "b", "c", "d", "e"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
