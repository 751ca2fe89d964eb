// Package bank implements the balances module (spec.md §4.10, part of
// C10): per-address coin balances, total supply, and coin transfers.
package bank

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/synnergy-chain/framework/store/rootmulti"
	"github.com/synnergy-chain/framework/types"
	"github.com/synnergy-chain/framework/x/auth"
)

// StoreKey names the bank module's own sub-store.
const StoreKey rootmulti.StoreKey = "bank"

var balancePrefix = byte(0x02)
var supplyPrefix = byte(0x00)

func balanceKey(addr types.Address, denom string) []byte {
	raw := addr.Bytes()
	key := make([]byte, 0, 2+len(raw)+len(denom))
	key = append(key, balancePrefix, byte(len(raw)))
	key = append(key, raw...)
	key = append(key, []byte(denom)...)
	return key
}

func balancePrefixForAddr(addr types.Address) []byte {
	raw := addr.Bytes()
	key := make([]byte, 0, 2+len(raw))
	key = append(key, balancePrefix, byte(len(raw)))
	key = append(key, raw...)
	return key
}

func supplyKey(denom string) []byte {
	return append([]byte{supplyPrefix}, []byte(denom)...)
}

// Keeper is the bank module's state accessor.
type Keeper struct {
	auth auth.Keeper
}

func NewKeeper(authKeeper auth.Keeper) Keeper { return Keeper{auth: authKeeper} }

// GetBalance returns addr's balance of denom, zero if unset.
func (Keeper) GetBalance(ctx types.Context, addr types.Address, denom string) *uint256.Int {
	raw := ctx.KVStore(StoreKey).Get(balanceKey(addr, denom))
	if raw == nil {
		return uint256.NewInt(0)
	}
	amt, err := uint256.FromDecimal(string(raw))
	if err != nil {
		panic(fmt.Sprintf("bank: corrupt balance for %s/%s: %v", addr, denom, err))
	}
	return amt
}

func (Keeper) setBalance(ctx types.Context, addr types.Address, denom string, amt *uint256.Int) {
	store := ctx.KVStore(StoreKey)
	key := balanceKey(addr, denom)
	if amt.IsZero() {
		store.Delete(key)
		return
	}
	store.Set(key, []byte(amt.Dec()))
}

// GetAllBalances returns every coin held by addr, iterating its balance
// prefix, per spec.md §4.10's query_all_balances.
func (k Keeper) GetAllBalances(ctx types.Context, addr types.Address) types.Coins {
	prefix := balancePrefixForAddr(addr)
	end := prefixEnd(prefix)
	it := ctx.KVStore(StoreKey).Iterator(prefix, end)
	defer it.Close()
	var coins []types.Coin
	for ; it.Valid(); it.Next() {
		denom := string(it.Key()[len(prefix):])
		amt, err := uint256.FromDecimal(string(it.Value()))
		if err != nil {
			continue
		}
		coins = append(coins, types.NewCoin(denom, amt))
	}
	out, err := types.NewCoins(coins...)
	if err != nil {
		return types.Coins{}
	}
	return out
}

func prefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xFF {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

// GetSupply returns the total minted supply of denom.
func (Keeper) GetSupply(ctx types.Context, denom string) *uint256.Int {
	raw := ctx.KVStore(StoreKey).Get(supplyKey(denom))
	if raw == nil {
		return uint256.NewInt(0)
	}
	amt, err := uint256.FromDecimal(string(raw))
	if err != nil {
		panic(fmt.Sprintf("bank: corrupt supply for %s: %v", denom, err))
	}
	return amt
}

func (Keeper) setSupply(ctx types.Context, denom string, amt *uint256.Int) {
	ctx.KVStore(StoreKey).Set(supplyKey(denom), []byte(amt.Dec()))
}

// MintCoins increases total supply and credits module's own account,
// used by x/mint's block-reward issuance.
func (k Keeper) MintCoins(ctx types.Context, module string, coins types.Coins) error {
	moduleAddr := k.auth.CheckCreateNewModuleAccount(ctx, module).Address
	for _, c := range coins {
		supply := k.GetSupply(ctx, c.Denom)
		k.setSupply(ctx, c.Denom, new(uint256.Int).Add(supply, c.Amount))
		bal := k.GetBalance(ctx, moduleAddr, c.Denom)
		k.setBalance(ctx, moduleAddr, c.Denom, new(uint256.Int).Add(bal, c.Amount))
	}
	return nil
}

// SendCoins debits from and credits to, failing insufficient-funds if
// from lacks any coin's full amount, and emits a transfer event per coin,
// per spec.md §4.10.
func (k Keeper) SendCoins(ctx types.Context, from, to types.Address, coins types.Coins) error {
	for _, c := range coins {
		fromBal := k.GetBalance(ctx, from, c.Denom)
		if fromBal.Lt(c.Amount) {
			return types.ErrInsufficientFunds(fmt.Sprintf("%s has %s%s, needs %s", from, fromBal.Dec(), c.Denom, c.Amount.Dec()))
		}
		k.setBalance(ctx, from, c.Denom, new(uint256.Int).Sub(fromBal, c.Amount))
		toBal := k.GetBalance(ctx, to, c.Denom)
		k.setBalance(ctx, to, c.Denom, new(uint256.Int).Add(toBal, c.Amount))
		ctx.EmitEvent(types.NewEvent("transfer",
			types.NewAttribute("sender", from.String()),
			types.NewAttribute("recipient", to.String()),
			types.NewAttribute("amount", c.String()),
		))
	}
	return nil
}

// SendCoinsFromAccountToModule ensures module's account exists, then
// delegates to SendCoins.
func (k Keeper) SendCoinsFromAccountToModule(ctx types.Context, from types.Address, module string, coins types.Coins) error {
	moduleAddr := k.auth.CheckCreateNewModuleAccount(ctx, module).Address
	return k.SendCoins(ctx, from, moduleAddr, coins)
}
