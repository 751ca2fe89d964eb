package mint

import (
	"testing"

	"github.com/holiman/uint256"

	"github.com/synnergy-chain/framework/store/iavl"
	"github.com/synnergy-chain/framework/store/rootmulti"
	"github.com/synnergy-chain/framework/types"
	"github.com/synnergy-chain/framework/x/auth"
	"github.com/synnergy-chain/framework/x/bank"
)

func newTestContext(t *testing.T, height int64) types.Context {
	t.Helper()
	ms := rootmulti.NewStore()
	for _, key := range []rootmulti.StoreKey{auth.StoreKey, bank.StoreKey} {
		if err := ms.MountStore(key, iavl.NewMemNodeDB()); err != nil {
			t.Fatalf("mount %q: %v", key, err)
		}
	}
	return types.NewBlockContext(ms, types.Header{Height: height}, nil)
}

func TestRewardAtHalvesOnSchedule(t *testing.T) {
	k := NewKeeper(bank.NewKeeper(auth.NewKeeper()), uint256.NewInt(100), "uatom")
	if got := k.RewardAt(0); got.Cmp(uint256.NewInt(100)) != 0 {
		t.Fatalf("RewardAt(0) = %s, want 100", got)
	}
	if got := k.RewardAt(HalvingPeriod); got.Cmp(uint256.NewInt(50)) != 0 {
		t.Fatalf("RewardAt(HalvingPeriod) = %s, want 50", got)
	}
	if got := k.RewardAt(2 * HalvingPeriod); got.Cmp(uint256.NewInt(25)) != 0 {
		t.Fatalf("RewardAt(2*HalvingPeriod) = %s, want 25", got)
	}
}

func TestRewardAtFarFutureHeightIsZero(t *testing.T) {
	k := NewKeeper(bank.NewKeeper(auth.NewKeeper()), uint256.NewInt(100), "uatom")
	if got := k.RewardAt(300 * HalvingPeriod); !got.IsZero() {
		t.Fatalf("RewardAt far beyond 256 halvings = %s, want 0", got)
	}
}

func TestMintBlockRewardCreditsMinterModule(t *testing.T) {
	ctx := newTestContext(t, 0)
	bankKeeper := bank.NewKeeper(auth.NewKeeper())
	k := NewKeeper(bankKeeper, uint256.NewInt(100), "uatom")

	if err := k.MintBlockReward(ctx); err != nil {
		t.Fatalf("MintBlockReward: %v", err)
	}
	got := bankKeeper.GetBalance(ctx, types.ModuleAddress(MinterModule), "uatom")
	if got.Cmp(uint256.NewInt(100)) != 0 {
		t.Fatalf("minter module balance = %s, want 100", got)
	}
}

func TestMintBlockRewardNoOpWhenRewardIsZero(t *testing.T) {
	ctx := newTestContext(t, 300*HalvingPeriod)
	bankKeeper := bank.NewKeeper(auth.NewKeeper())
	k := NewKeeper(bankKeeper, uint256.NewInt(100), "uatom")

	if err := k.MintBlockReward(ctx); err != nil {
		t.Fatalf("MintBlockReward: %v", err)
	}
	got := bankKeeper.GetBalance(ctx, types.ModuleAddress(MinterModule), "uatom")
	if !got.IsZero() {
		t.Fatalf("minter module balance = %s, want 0 once the reward has fully halved away", got)
	}
}
