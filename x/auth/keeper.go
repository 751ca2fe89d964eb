package auth

import (
	"encoding/binary"

	"github.com/synnergy-chain/framework/store/rootmulti"
	"github.com/synnergy-chain/framework/types"
)

// StoreKey names the accounts module's own sub-store, per spec.md §4.10.
const StoreKey rootmulti.StoreKey = "auth"

var accountPrefix = []byte{0x01}

const globalAccountNumberKey = "globalAccountNumber"

func accountKey(addr types.Address) []byte {
	return append(append([]byte{}, accountPrefix...), addr.Bytes()...)
}

// Keeper is the accounts module's state accessor.
type Keeper struct{}

func NewKeeper() Keeper { return Keeper{} }

// HasAccount reports whether addr has an account record.
func (Keeper) HasAccount(ctx types.Context, addr types.Address) bool {
	return ctx.KVStore(StoreKey).Has(accountKey(addr))
}

// GetAccount returns addr's account record, or (zero, false) if absent.
func (Keeper) GetAccount(ctx types.Context, addr types.Address) (Account, bool) {
	raw := ctx.KVStore(StoreKey).Get(accountKey(addr))
	if raw == nil {
		return Account{}, false
	}
	acc, err := unmarshalAccount(raw)
	if err != nil {
		panic("auth: corrupt account record for " + addr.String() + ": " + err.Error())
	}
	return acc, true
}

// SetAccount persists acc under its own address.
func (Keeper) SetAccount(ctx types.Context, acc Account) {
	ctx.KVStore(StoreKey).Set(accountKey(acc.Address), acc.marshal())
}

func (k Keeper) nextAccountNumber(ctx types.Context) uint64 {
	store := ctx.KVStore(StoreKey)
	raw := store.Get([]byte(globalAccountNumberKey))
	var next uint64
	if raw != nil {
		next = binary.BigEndian.Uint64(raw) + 1
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, next)
	store.Set([]byte(globalAccountNumberKey), buf)
	return next
}

// CreateNewBaseAccount creates and persists a fresh account for addr,
// assigning it the next global account number, per spec.md §4.10.
func (k Keeper) CreateNewBaseAccount(ctx types.Context, addr types.Address) Account {
	acc := Account{Address: addr, AccountNumber: k.nextAccountNumber(ctx)}
	k.SetAccount(ctx, acc)
	return acc
}

// CheckCreateNewModuleAccount ensures a module account exists for module,
// creating it deterministically (via types.ModuleAddress) on first use.
func (k Keeper) CheckCreateNewModuleAccount(ctx types.Context, module string) Account {
	addr := types.ModuleAddress(module)
	if acc, ok := k.GetAccount(ctx, addr); ok {
		return acc
	}
	return k.CreateNewBaseAccount(ctx, addr)
}
