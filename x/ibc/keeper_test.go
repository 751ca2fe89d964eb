package ibc

import (
	"testing"

	"github.com/synnergy-chain/framework/store/iavl"
	"github.com/synnergy-chain/framework/store/rootmulti"
	"github.com/synnergy-chain/framework/types"
)

func newTestStore(t *testing.T) *rootmulti.Store {
	t.Helper()
	ms := rootmulti.NewStore()
	if err := ms.MountStore(StoreKey, iavl.NewMemNodeDB()); err != nil {
		t.Fatalf("mount ibc store: %v", err)
	}
	return ms
}

func contextAtHeight(ms *rootmulti.Store, height int64) types.Context {
	return types.NewBlockContext(ms, types.Header{Height: height}, nil)
}

func TestCreateClientRejectsDuplicateID(t *testing.T) {
	ctx := contextAtHeight(newTestStore(t), 1)
	keeper := NewKeeper()
	if _, err := keeper.CreateClient(ctx, "client-1", "counterparty", []byte("root"), 100); err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	if _, err := keeper.CreateClient(ctx, "client-1", "counterparty", []byte("root2"), 100); err == nil {
		t.Fatalf("CreateClient accepted a duplicate client id")
	}
}

func TestUpdateClientAdvancesHeightAndRoot(t *testing.T) {
	ctx := contextAtHeight(newTestStore(t), 1)
	keeper := NewKeeper()
	if _, err := keeper.CreateClient(ctx, "client-1", "counterparty", []byte("root"), 100); err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	if err := keeper.UpdateClient(ctx, "client-1", 5, []byte("root2")); err != nil {
		t.Fatalf("UpdateClient: %v", err)
	}
	cs, ok := keeper.GetClient(ctx, "client-1")
	if !ok {
		t.Fatalf("GetClient: not found")
	}
	if cs.LatestHeight != 5 || string(cs.ConsensusRoot) != "root2" {
		t.Fatalf("client state after update = %+v", cs)
	}
}

func TestUpdateClientRejectsNonIncreasingHeight(t *testing.T) {
	ctx := contextAtHeight(newTestStore(t), 1)
	keeper := NewKeeper()
	if _, err := keeper.CreateClient(ctx, "client-1", "counterparty", []byte("root"), 100); err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	if err := keeper.UpdateClient(ctx, "client-1", 1, []byte("root2")); err == nil {
		t.Fatalf("UpdateClient accepted a non-increasing height")
	}
}

func TestFreezeClientBlocksFurtherUpdates(t *testing.T) {
	ctx := contextAtHeight(newTestStore(t), 1)
	keeper := NewKeeper()
	if _, err := keeper.CreateClient(ctx, "client-1", "counterparty", []byte("root"), 100); err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	if err := keeper.FreezeClient(ctx, "client-1"); err != nil {
		t.Fatalf("FreezeClient: %v", err)
	}
	if err := keeper.UpdateClient(ctx, "client-1", 5, []byte("root2")); err == nil {
		t.Fatalf("UpdateClient succeeded against a frozen client")
	}
}

func TestUpdateClientRejectsAfterTrustingPeriodExpires(t *testing.T) {
	ms := newTestStore(t)
	keeper := NewKeeper()
	if _, err := keeper.CreateClient(contextAtHeight(ms, 1), "client-1", "counterparty", []byte("root"), 10); err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	lateCtx := contextAtHeight(ms, 50)
	if err := keeper.UpdateClient(lateCtx, "client-1", 5, []byte("root2")); err == nil {
		t.Fatalf("UpdateClient accepted an update after the trusting period expired")
	}
}
