package rootmulti_test

import (
	"testing"

	"github.com/synnergy-chain/framework/store/iavl"
	"github.com/synnergy-chain/framework/store/rootmulti"
)

func newMountedStore(t *testing.T, keys ...rootmulti.StoreKey) *rootmulti.Store {
	t.Helper()
	ms := rootmulti.NewStore()
	for _, k := range keys {
		if err := ms.MountStore(k, iavl.NewMemNodeDB()); err != nil {
			t.Fatalf("MountStore(%q): %v", k, err)
		}
	}
	return ms
}

func TestMountStoreRejectsDuplicateKey(t *testing.T) {
	ms := newMountedStore(t, "auth")
	if err := ms.MountStore("auth", iavl.NewMemNodeDB()); err == nil {
		t.Fatalf("mounting %q twice succeeded", "auth")
	}
}

func TestGetKVStorePanicsOnUnknownKey(t *testing.T) {
	ms := newMountedStore(t, "auth")
	defer func() {
		if recover() == nil {
			t.Fatalf("GetKVStore on an unmounted key did not panic")
		}
	}()
	ms.GetKVStore("bank")
}

func TestStoreKeysSortedByteOrder(t *testing.T) {
	ms := newMountedStore(t, "params", "auth", "bank")
	got := ms.StoreKeys()
	want := []rootmulti.StoreKey{"auth", "bank", "params"}
	if len(got) != len(want) {
		t.Fatalf("StoreKeys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("StoreKeys()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCommitAdvancesVersionAndIsOrderIndependentOfMountOrder(t *testing.T) {
	msA := newMountedStore(t, "auth", "bank")
	msA.GetKVStore("auth").Set([]byte("k1"), []byte("v1"))
	msA.GetKVStore("bank").Set([]byte("k2"), []byte("v2"))
	msA.WriteAllTxCaches()
	idA, err := msA.Commit()
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if idA.Version != 1 {
		t.Fatalf("Version = %d, want 1", idA.Version)
	}

	msB := newMountedStore(t, "bank", "auth")
	msB.GetKVStore("bank").Set([]byte("k2"), []byte("v2"))
	msB.GetKVStore("auth").Set([]byte("k1"), []byte("v1"))
	msB.WriteAllTxCaches()
	idB, err := msB.Commit()
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if string(idA.Hash) != string(idB.Hash) {
		t.Fatalf("app-hash depends on store mount order: %x vs %x", idA.Hash, idB.Hash)
	}
}

func TestDiscardAllTxCachesDropsUncommittedWrites(t *testing.T) {
	ms := newMountedStore(t, "auth")
	store := ms.GetKVStore("auth")
	store.Set([]byte("k"), []byte("v"))
	ms.DiscardAllTxCaches()
	if store.Has([]byte("k")) {
		t.Fatalf("key survived DiscardAllTxCaches")
	}
}

func TestLastCommitIDMatchesMostRecentCommit(t *testing.T) {
	ms := newMountedStore(t, "auth")
	ms.GetKVStore("auth").Set([]byte("k"), []byte("v"))
	ms.WriteAllTxCaches()
	committed, err := ms.Commit()
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	last := ms.LastCommitID()
	if last.Version != committed.Version || string(last.Hash) != string(committed.Hash) {
		t.Fatalf("LastCommitID() = %+v, want %+v", last, committed)
	}
}
