// Package distribution implements per-block fee allocation to the
// bonded validator set, generalizing the teacher's fixed 30/30/40
// miner/validator/treasury split (core/consensus.go's DistributeRewards)
// into a power-weighted split across however many validators x/staking
// reports bonded.
package distribution

import (
	"github.com/holiman/uint256"

	"github.com/synnergy-chain/framework/store/rootmulti"
	"github.com/synnergy-chain/framework/types"
	"github.com/synnergy-chain/framework/x/bank"
	"github.com/synnergy-chain/framework/x/staking"
)

// StoreKey names distribution's own sub-store. The keeper neither reads
// nor writes it: a pot with no bonded validators, and any division
// remainder, goes to the treasury module account instead.
const StoreKey rootmulti.StoreKey = "distribution"

const FeeCollectorModule = "fee_collector"
const TreasuryModule = "treasury"

// Keeper allocates the fee pot accumulated in the fee collector module
// account to bonded validators each block, per spec.md §4.10's ante-step
// 4 depositing fees there.
type Keeper struct {
	bank    bank.Keeper
	staking staking.Keeper
}

func NewKeeper(bankKeeper bank.Keeper, stakingKeeper staking.Keeper) Keeper {
	return Keeper{bank: bankKeeper, staking: stakingKeeper}
}

// AllocateTokens splits the fee collector's current balance of denom
// across bonded validators proportional to their power; any
// unallocated remainder (from integer division) and any surplus with no
// bonded validators at all goes to the treasury module account.
func (k Keeper) AllocateTokens(ctx types.Context, denom string) error {
	feeAddr := types.ModuleAddress(FeeCollectorModule)
	pot := k.bank.GetBalance(ctx, feeAddr, denom)
	if pot.IsZero() {
		return nil
	}

	validators := k.staking.BondedValidators(ctx)
	if len(validators) == 0 {
		return k.bank.SendCoinsFromAccountToModule(ctx, feeAddr, TreasuryModule,
			types.Coins{types.NewCoin(denom, pot)})
	}

	totalPower := uint256.NewInt(0)
	for _, v := range validators {
		totalPower = new(uint256.Int).Add(totalPower, v.Power)
	}
	if totalPower.IsZero() {
		return k.bank.SendCoinsFromAccountToModule(ctx, feeAddr, TreasuryModule,
			types.Coins{types.NewCoin(denom, pot)})
	}

	distributed := uint256.NewInt(0)
	for _, v := range validators {
		share := new(uint256.Int).Mul(pot, v.Power)
		share.Div(share, totalPower)
		if share.IsZero() {
			continue
		}
		if err := k.bank.SendCoins(ctx, feeAddr, v.OperatorAddress, types.Coins{types.NewCoin(denom, share)}); err != nil {
			return err
		}
		distributed = new(uint256.Int).Add(distributed, share)
	}

	remainder := new(uint256.Int).Sub(pot, distributed)
	if !remainder.IsZero() {
		if err := k.bank.SendCoinsFromAccountToModule(ctx, feeAddr, TreasuryModule,
			types.Coins{types.NewCoin(denom, remainder)}); err != nil {
			return err
		}
	}
	return nil
}
