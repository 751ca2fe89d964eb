// Package mint implements block-reward issuance on BeginBlock, grounded
// in the teacher's core/consensus.go halving schedule
// (RewardHalvingPeriod, InitialReward, DistributeRewards), generalized
// from a raw big.Int ledger mint into a coin minted through x/bank's
// supply-tracked MintCoins.
package mint

import (
	"github.com/holiman/uint256"

	"github.com/synnergy-chain/framework/types"
	"github.com/synnergy-chain/framework/x/bank"
)

// HalvingPeriod mirrors core/consensus.go's RewardHalvingPeriod: every
// this many blocks the reward halves.
const HalvingPeriod int64 = 200_000

// MinterModule is the module account newly minted coins are credited to.
// They stay there: x/distribution allocates only the fee collector's
// balance.
const MinterModule = "mint"

// Keeper mints a halving block reward each BeginBlock.
type Keeper struct {
	bank      bank.Keeper
	initial   *uint256.Int
	mintDenom string
}

func NewKeeper(bankKeeper bank.Keeper, initialReward *uint256.Int, denom string) Keeper {
	return Keeper{bank: bankKeeper, initial: initialReward, mintDenom: denom}
}

// RewardAt returns the block reward at height, halving every
// HalvingPeriod blocks. Matches core/consensus.go's
// InitialReward >> (height / RewardHalvingPeriod).
func (k Keeper) RewardAt(height int64) *uint256.Int {
	halves := uint(height / HalvingPeriod)
	if halves >= 256 {
		return uint256.NewInt(0)
	}
	return new(uint256.Int).Rsh(k.initial, halves)
}

// MintBlockReward mints this block's reward into the minter module
// account.
func (k Keeper) MintBlockReward(ctx types.Context) error {
	reward := k.RewardAt(ctx.Height())
	if reward.IsZero() {
		return nil
	}
	return k.bank.MintCoins(ctx, MinterModule, types.Coins{types.NewCoin(k.mintDenom, reward)})
}
