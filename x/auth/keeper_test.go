package auth

import (
	"testing"

	"github.com/synnergy-chain/framework/store/iavl"
	"github.com/synnergy-chain/framework/store/rootmulti"
	"github.com/synnergy-chain/framework/types"
)

func newTestContext(t *testing.T) types.Context {
	t.Helper()
	ms := rootmulti.NewStore()
	if err := ms.MountStore(StoreKey, iavl.NewMemNodeDB()); err != nil {
		t.Fatalf("mount auth store: %v", err)
	}
	return types.NewInitContext(ms, "test-chain")
}

func testAddress(t *testing.T, b byte) types.Address {
	t.Helper()
	addr, err := types.NewAddress([]byte{b, b, b, b, b, b, b, b, b, b, b, b, b, b, b, b, b, b, b, b}, types.AddressAccount)
	if err != nil {
		t.Fatalf("NewAddress: %v", err)
	}
	return addr
}

func TestHasAccountFalseUntilCreated(t *testing.T) {
	ctx := newTestContext(t)
	keeper := NewKeeper()
	addr := testAddress(t, 0x01)

	if keeper.HasAccount(ctx, addr) {
		t.Fatalf("HasAccount true before any account was created")
	}
	keeper.CreateNewBaseAccount(ctx, addr)
	if !keeper.HasAccount(ctx, addr) {
		t.Fatalf("HasAccount false after CreateNewBaseAccount")
	}
}

func TestCreateNewBaseAccountAssignsIncrementingAccountNumbers(t *testing.T) {
	ctx := newTestContext(t)
	keeper := NewKeeper()

	first := keeper.CreateNewBaseAccount(ctx, testAddress(t, 0x01))
	second := keeper.CreateNewBaseAccount(ctx, testAddress(t, 0x02))

	if first.AccountNumber != 0 {
		t.Fatalf("first account number = %d, want 0", first.AccountNumber)
	}
	if second.AccountNumber != 1 {
		t.Fatalf("second account number = %d, want 1", second.AccountNumber)
	}
}

func TestSetAccountRoundTrip(t *testing.T) {
	ctx := newTestContext(t)
	keeper := NewKeeper()
	addr := testAddress(t, 0x03)

	acc := keeper.CreateNewBaseAccount(ctx, addr)
	acc.Sequence = 5
	acc.PublicKey = []byte{0xAA, 0xBB}
	keeper.SetAccount(ctx, acc)

	got, ok := keeper.GetAccount(ctx, addr)
	if !ok {
		t.Fatalf("GetAccount: account not found after SetAccount")
	}
	if got.Sequence != 5 {
		t.Fatalf("Sequence = %d, want 5", got.Sequence)
	}
	if string(got.PublicKey) != string([]byte{0xAA, 0xBB}) {
		t.Fatalf("PublicKey = %x, want aabb", got.PublicKey)
	}
	if got.AccountNumber != acc.AccountNumber {
		t.Fatalf("AccountNumber changed across SetAccount round-trip: %d vs %d", got.AccountNumber, acc.AccountNumber)
	}
}

func TestCheckCreateNewModuleAccountIsIdempotent(t *testing.T) {
	ctx := newTestContext(t)
	keeper := NewKeeper()

	first := keeper.CheckCreateNewModuleAccount(ctx, "fee_collector")
	second := keeper.CheckCreateNewModuleAccount(ctx, "fee_collector")

	if first.Address.String() != second.Address.String() {
		t.Fatalf("module account address not deterministic: %s vs %s", first.Address, second.Address)
	}
	if first.AccountNumber != second.AccountNumber {
		t.Fatalf("second call minted a new account number: %d vs %d", first.AccountNumber, second.AccountNumber)
	}
}

func TestGetAccountMissingReturnsFalse(t *testing.T) {
	ctx := newTestContext(t)
	keeper := NewKeeper()
	if _, ok := keeper.GetAccount(ctx, testAddress(t, 0x09)); ok {
		t.Fatalf("GetAccount on an address with no record returned ok=true")
	}
}
