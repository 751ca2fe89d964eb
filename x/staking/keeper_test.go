package staking

import (
	"testing"

	"github.com/holiman/uint256"

	"github.com/synnergy-chain/framework/store/iavl"
	"github.com/synnergy-chain/framework/store/rootmulti"
	"github.com/synnergy-chain/framework/types"
)

func newTestContext(t *testing.T) types.Context {
	t.Helper()
	ms := rootmulti.NewStore()
	if err := ms.MountStore(StoreKey, iavl.NewMemNodeDB()); err != nil {
		t.Fatalf("mount staking store: %v", err)
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

func TestDelegateFailsOnUnknownValidator(t *testing.T) {
	ctx := newTestContext(t)
	keeper := NewKeeper()
	delegator := testAddress(t, 0x01)

	if err := keeper.Delegate(ctx, delegator, []byte("cons1"), uint256.NewInt(10)); err == nil {
		t.Fatalf("Delegate against an unregistered validator succeeded")
	}
}

func TestDelegateAccumulatesValidatorPower(t *testing.T) {
	ctx := newTestContext(t)
	keeper := NewKeeper()
	operator := testAddress(t, 0x02)
	delegator := testAddress(t, 0x03)
	consAddr := []byte("cons-validator-1")

	keeper.CreateValidator(ctx, operator, consAddr)
	if err := keeper.Delegate(ctx, delegator, consAddr, uint256.NewInt(100)); err != nil {
		t.Fatalf("Delegate: %v", err)
	}
	if err := keeper.Delegate(ctx, delegator, consAddr, uint256.NewInt(50)); err != nil {
		t.Fatalf("Delegate: %v", err)
	}

	v, ok := keeper.GetValidator(ctx, consAddr)
	if !ok {
		t.Fatalf("GetValidator: not found")
	}
	if v.Power.Cmp(uint256.NewInt(150)) != 0 {
		t.Fatalf("validator power = %s, want 150", v.Power)
	}
}

func TestBondedValidatorsSortedByDescendingPowerThenAddress(t *testing.T) {
	ctx := newTestContext(t)
	keeper := NewKeeper()
	delegator := testAddress(t, 0x04)

	consLow := []byte("cons-a")
	consHigh := []byte("cons-b")
	keeper.CreateValidator(ctx, testAddress(t, 0x05), consLow)
	keeper.CreateValidator(ctx, testAddress(t, 0x06), consHigh)

	if err := keeper.Delegate(ctx, delegator, consLow, uint256.NewInt(10)); err != nil {
		t.Fatalf("Delegate: %v", err)
	}
	if err := keeper.Delegate(ctx, delegator, consHigh, uint256.NewInt(99)); err != nil {
		t.Fatalf("Delegate: %v", err)
	}

	validators := keeper.BondedValidators(ctx)
	if len(validators) != 2 {
		t.Fatalf("BondedValidators count = %d, want 2", len(validators))
	}
	if string(validators[0].ConsensusAddress) != string(consHigh) {
		t.Fatalf("first validator = %s, want the higher-power one", validators[0].ConsensusAddress)
	}
}

func TestBondedValidatorsExcludesJailed(t *testing.T) {
	ctx := newTestContext(t)
	keeper := NewKeeper()
	consAddr := []byte("cons-jailed")
	v := keeper.CreateValidator(ctx, testAddress(t, 0x07), consAddr)
	v.Jailed = true
	keeper.setValidator(ctx, v)

	validators := keeper.BondedValidators(ctx)
	for _, bv := range validators {
		if string(bv.ConsensusAddress) == string(consAddr) {
			t.Fatalf("jailed validator appeared in BondedValidators")
		}
	}
}
