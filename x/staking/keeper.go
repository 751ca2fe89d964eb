// Package staking implements the validator and delegation keeper
// supplementing spec.md §4.9's EndBlock validator-update contract: a
// minimal bonded validator set, weighted by delegated power, that
// EndBlock reads to compute the returned ValidatorUpdate list.
package staking

import (
	"sort"

	"github.com/gogo/protobuf/proto"
	"github.com/holiman/uint256"

	"github.com/synnergy-chain/framework/store/rootmulti"
	"github.com/synnergy-chain/framework/types"
)

// StoreKey names the staking module's own sub-store.
const StoreKey rootmulti.StoreKey = "staking"

var validatorPrefix = []byte{0x01}
var delegationPrefix = []byte{0x02}

func validatorKey(consAddr []byte) []byte {
	return append(append([]byte{}, validatorPrefix...), consAddr...)
}

func delegationKey(delegator types.Address, consAddr []byte) []byte {
	key := append(append([]byte{}, delegationPrefix...), delegator.Bytes()...)
	return append(key, consAddr...)
}

// Validator is one bonded validator record, keyed by its consensus
// address. Power is the sum of its delegated stake, recomputed whenever
// a delegation changes.
type Validator struct {
	ConsensusAddress []byte
	OperatorAddress  types.Address
	Power            *uint256.Int
	Jailed           bool
}

func (v Validator) marshal() []byte {
	buf := proto.NewBuffer(nil)
	_ = buf.EncodeRawBytes(v.ConsensusAddress)
	_ = buf.EncodeRawBytes(v.OperatorAddress.Bytes())
	power := v.Power
	if power == nil {
		power = uint256.NewInt(0)
	}
	_ = buf.EncodeRawBytes([]byte(power.Dec()))
	if v.Jailed {
		_ = buf.EncodeVarint(1)
	} else {
		_ = buf.EncodeVarint(0)
	}
	return buf.Bytes()
}

func unmarshalValidator(data []byte) (Validator, error) {
	buf := proto.NewBuffer(data)
	consAddr, err := buf.DecodeRawBytes(true)
	if err != nil {
		return Validator{}, err
	}
	opRaw, err := buf.DecodeRawBytes(true)
	if err != nil {
		return Validator{}, err
	}
	powerRaw, err := buf.DecodeRawBytes(true)
	if err != nil {
		return Validator{}, err
	}
	jailed, err := buf.DecodeVarint()
	if err != nil {
		return Validator{}, err
	}
	opAddr, err := types.NewAddress(opRaw, types.AddressAccount)
	if err != nil {
		return Validator{}, err
	}
	power, err := uint256.FromDecimal(string(powerRaw))
	if err != nil {
		return Validator{}, err
	}
	return Validator{
		ConsensusAddress: consAddr,
		OperatorAddress:  opAddr,
		Power:            power,
		Jailed:           jailed != 0,
	}, nil
}

// Keeper is the staking module's state accessor.
type Keeper struct{}

func NewKeeper() Keeper { return Keeper{} }

// CreateValidator registers a new validator with zero power.
func (Keeper) CreateValidator(ctx types.Context, operator types.Address, consAddr []byte) Validator {
	v := Validator{ConsensusAddress: consAddr, OperatorAddress: operator, Power: uint256.NewInt(0)}
	ctx.KVStore(StoreKey).Set(validatorKey(consAddr), v.marshal())
	return v
}

func (Keeper) GetValidator(ctx types.Context, consAddr []byte) (Validator, bool) {
	raw := ctx.KVStore(StoreKey).Get(validatorKey(consAddr))
	if raw == nil {
		return Validator{}, false
	}
	v, err := unmarshalValidator(raw)
	if err != nil {
		panic("staking: corrupt validator record: " + err.Error())
	}
	return v, true
}

func (k Keeper) setValidator(ctx types.Context, v Validator) {
	ctx.KVStore(StoreKey).Set(validatorKey(v.ConsensusAddress), v.marshal())
}

// Delegate adds amount to delegator's stake behind consAddr, crediting the
// validator's total power.
func (k Keeper) Delegate(ctx types.Context, delegator types.Address, consAddr []byte, amount *uint256.Int) error {
	v, ok := k.GetValidator(ctx, consAddr)
	if !ok {
		return types.ErrInvalidRequest("staking: unknown validator")
	}
	store := ctx.KVStore(StoreKey)
	dk := delegationKey(delegator, consAddr)
	existing := uint256.NewInt(0)
	if raw := store.Get(dk); raw != nil {
		amt, err := uint256.FromDecimal(string(raw))
		if err == nil {
			existing = amt
		}
	}
	updated := new(uint256.Int).Add(existing, amount)
	store.Set(dk, []byte(updated.Dec()))

	v.Power = new(uint256.Int).Add(v.Power, amount)
	k.setValidator(ctx, v)
	ctx.EmitEvent(types.NewEvent("delegate",
		types.NewAttribute("delegator", delegator.String()),
		types.NewAttribute("amount", amount.Dec()),
	))
	return nil
}

// BondedValidators returns every non-jailed validator, sorted by
// descending power then consensus address, for deterministic
// EndBlock output.
func (k Keeper) BondedValidators(ctx types.Context) []Validator {
	it := ctx.KVStore(StoreKey).Iterator(validatorPrefix, prefixEnd(validatorPrefix))
	defer it.Close()
	var out []Validator
	for ; it.Valid(); it.Next() {
		v, err := unmarshalValidator(it.Value())
		if err != nil || v.Jailed {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Power.Cmp(out[j].Power) != 0 {
			return out[i].Power.Cmp(out[j].Power) > 0
		}
		return string(out[i].ConsensusAddress) < string(out[j].ConsensusAddress)
	})
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
