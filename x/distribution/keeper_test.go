package distribution

import (
	"testing"

	"github.com/holiman/uint256"

	"github.com/synnergy-chain/framework/store/iavl"
	"github.com/synnergy-chain/framework/store/rootmulti"
	"github.com/synnergy-chain/framework/types"
	"github.com/synnergy-chain/framework/x/auth"
	"github.com/synnergy-chain/framework/x/bank"
	"github.com/synnergy-chain/framework/x/staking"
)

func newTestContext(t *testing.T) types.Context {
	t.Helper()
	ms := rootmulti.NewStore()
	for _, key := range []rootmulti.StoreKey{auth.StoreKey, bank.StoreKey, staking.StoreKey, StoreKey} {
		if err := ms.MountStore(key, iavl.NewMemNodeDB()); err != nil {
			t.Fatalf("mount %q: %v", key, err)
		}
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

func fundFeeCollector(t *testing.T, ctx types.Context, bankKeeper bank.Keeper, amount uint64) {
	t.Helper()
	coins, err := types.NewCoins(types.NewCoinFromUint64("uatom", amount))
	if err != nil {
		t.Fatalf("NewCoins: %v", err)
	}
	if err := bankKeeper.MintCoins(ctx, "genesis", coins); err != nil {
		t.Fatalf("MintCoins: %v", err)
	}
	if err := bankKeeper.SendCoinsFromAccountToModule(ctx, types.ModuleAddress("genesis"), FeeCollectorModule, coins); err != nil {
		t.Fatalf("fund fee collector: %v", err)
	}
}

func TestAllocateTokensNoOpWhenPotEmpty(t *testing.T) {
	ctx := newTestContext(t)
	bankKeeper := bank.NewKeeper(auth.NewKeeper())
	stakingKeeper := staking.NewKeeper()
	keeper := NewKeeper(bankKeeper, stakingKeeper)

	if err := keeper.AllocateTokens(ctx, "uatom"); err != nil {
		t.Fatalf("AllocateTokens on an empty pot returned an error: %v", err)
	}
}

func TestAllocateTokensGoesToTreasuryWithNoBondedValidators(t *testing.T) {
	ctx := newTestContext(t)
	bankKeeper := bank.NewKeeper(auth.NewKeeper())
	stakingKeeper := staking.NewKeeper()
	keeper := NewKeeper(bankKeeper, stakingKeeper)

	fundFeeCollector(t, ctx, bankKeeper, 1000)
	if err := keeper.AllocateTokens(ctx, "uatom"); err != nil {
		t.Fatalf("AllocateTokens: %v", err)
	}

	treasury := bankKeeper.GetBalance(ctx, types.ModuleAddress(TreasuryModule), "uatom")
	if treasury.Cmp(uint256.NewInt(1000)) != 0 {
		t.Fatalf("treasury balance = %s, want 1000", treasury)
	}
	feeCollector := bankKeeper.GetBalance(ctx, types.ModuleAddress(FeeCollectorModule), "uatom")
	if !feeCollector.IsZero() {
		t.Fatalf("fee collector balance = %s, want 0 after allocation", feeCollector)
	}
}

func TestAllocateTokensSplitsProportionallyByPower(t *testing.T) {
	ctx := newTestContext(t)
	bankKeeper := bank.NewKeeper(auth.NewKeeper())
	stakingKeeper := staking.NewKeeper()
	keeper := NewKeeper(bankKeeper, stakingKeeper)

	opA, opB := testAddress(t, 0x01), testAddress(t, 0x02)
	consA, consB := []byte("cons-a"), []byte("cons-b")
	stakingKeeper.CreateValidator(ctx, opA, consA)
	stakingKeeper.CreateValidator(ctx, opB, consB)
	delegator := testAddress(t, 0x03)
	if err := stakingKeeper.Delegate(ctx, delegator, consA, uint256.NewInt(25)); err != nil {
		t.Fatalf("Delegate: %v", err)
	}
	if err := stakingKeeper.Delegate(ctx, delegator, consB, uint256.NewInt(75)); err != nil {
		t.Fatalf("Delegate: %v", err)
	}

	fundFeeCollector(t, ctx, bankKeeper, 1000)
	if err := keeper.AllocateTokens(ctx, "uatom"); err != nil {
		t.Fatalf("AllocateTokens: %v", err)
	}

	gotA := bankKeeper.GetBalance(ctx, opA, "uatom")
	gotB := bankKeeper.GetBalance(ctx, opB, "uatom")
	if gotA.Cmp(uint256.NewInt(250)) != 0 {
		t.Fatalf("validator A share = %s, want 250 (25%% of 1000)", gotA)
	}
	if gotB.Cmp(uint256.NewInt(750)) != 0 {
		t.Fatalf("validator B share = %s, want 750 (75%% of 1000)", gotB)
	}
}
