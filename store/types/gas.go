package types

import "fmt"

// Gas cost descriptors used across the ante handler and module keepers.
const (
	GasReadCost    uint64 = 1000
	GasWriteCost   uint64 = 2000
	GasIterCost    uint64 = 30
	GasPerByteCost uint64 = 3
	GasSigVerify   uint64 = 10000
)

// ErrorOutOfGas is returned by TryConsumeGas (and panicked with by
// ConsumeGas) when the limit would be exceeded; ErrorGasOverflow when the
// accumulator itself would overflow. Kept as
// plain sentinel-shaped errors here (store/types has no dependency on the
// application error-kind catalogue in package types) and re-wrapped into a
// *types.Error with the right Kind by the ante handler / gas-metered stores.
type ErrorOutOfGas struct {
	Descriptor string
	Limit      uint64
	Attempted  uint64
}

func (e ErrorOutOfGas) Error() string {
	return fmt.Sprintf("out of gas in location '%s': attempted %d, limit %d", e.Descriptor, e.Attempted, e.Limit)
}

type ErrorGasOverflow struct {
	Descriptor string
}

func (e ErrorGasOverflow) Error() string {
	return fmt.Sprintf("gas overflow in location '%s'", e.Descriptor)
}

// GasMeter tracks additive gas consumption against a hard ceiling, per
// spec.md §4.4. Implementations are not safe for concurrent use — each
// context owns its own meter (spec.md §5 "Gas meters are not shared across
// contexts").
type GasMeter interface {
	// GasConsumed returns the total gas consumed so far.
	GasConsumed() uint64
	// GasConsumedToLimit returns GasConsumed, capped at Limit.
	GasConsumedToLimit() uint64
	// Limit returns the meter's ceiling.
	Limit() uint64
	// ConsumeGas adds amount to the consumed total, panicking with
	// ErrorOutOfGas or ErrorGasOverflow on violation — callers that need an
	// error return (rather than a panic/recover pair) should use
	// TryConsumeGas instead.
	ConsumeGas(amount uint64, descriptor string)
	// TryConsumeGas is the non-panicking form used by the ante handler so a
	// gas failure becomes a normal *types.Error abort rather than a panic.
	TryConsumeGas(amount uint64, descriptor string) error
	// IsPastLimit reports whether consumption has already exceeded Limit.
	IsPastLimit() bool
}

type basicGasMeter struct {
	limit    uint64
	consumed uint64
}

// NewGasMeter returns a GasMeter with the given hard ceiling.
func NewGasMeter(limit uint64) GasMeter {
	return &basicGasMeter{limit: limit}
}

func (g *basicGasMeter) GasConsumed() uint64 { return g.consumed }

func (g *basicGasMeter) GasConsumedToLimit() uint64 {
	if g.IsPastLimit() {
		return g.limit
	}
	return g.consumed
}

func (g *basicGasMeter) Limit() uint64 { return g.limit }

func (g *basicGasMeter) IsPastLimit() bool { return g.consumed > g.limit }

func (g *basicGasMeter) TryConsumeGas(amount uint64, descriptor string) error {
	sum := g.consumed + amount
	if sum < g.consumed {
		return ErrorGasOverflow{Descriptor: descriptor}
	}
	if sum > g.limit {
		g.consumed = sum
		return ErrorOutOfGas{Descriptor: descriptor, Limit: g.limit, Attempted: sum}
	}
	g.consumed = sum
	return nil
}

func (g *basicGasMeter) ConsumeGas(amount uint64, descriptor string) {
	if err := g.TryConsumeGas(amount, descriptor); err != nil {
		panic(err)
	}
}

// NewInfiniteGasMeter returns a meter with no effective ceiling, used for
// contexts that must never fail on gas (e.g. InitChain / query contexts).
func NewInfiniteGasMeter() GasMeter {
	return &basicGasMeter{limit: ^uint64(0)}
}
