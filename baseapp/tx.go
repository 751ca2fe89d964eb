package baseapp

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/synnergy-chain/framework/codec"
	storetypes "github.com/synnergy-chain/framework/store/types"
	"github.com/synnergy-chain/framework/types"
)

var (
	txTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "framework_baseapp_txs_total",
		Help: "Transactions processed by mode and result code.",
	}, []string{"mode", "code"})
	txGasUsed = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "framework_baseapp_tx_gas_used",
		Help:    "Gas consumed per transaction.",
		Buckets: prometheus.ExponentialBuckets(1000, 4, 10),
	}, []string{"mode"})
)

func init() {
	prometheus.MustRegister(txTotal, txGasUsed)
}

// defaultGasWanted backstops the rare abort path where a tx never made it
// far enough through decoding to have a declared fee.gas_limit at all.
const defaultGasWanted uint64 = 200_000

// consumeBlockGas charges amount against blockMeter, the deliver-mode
// context's persisting gas meter, ignoring the result — used for
// bookkeeping on paths whose tx has already failed for an unrelated
// reason, where the per-tx error already takes precedence.
func consumeBlockGas(blockMeter storetypes.GasMeter, amount uint64) {
	_ = blockMeter.TryConsumeGas(amount, "block")
}

// runTx decodes and executes txBytes against base, implementing the
// two-phase cache-flush spec.md §8 scenario 3 requires: when isCheckTx is
// false, the ante pipeline's effects are flushed from tx-cache into
// block-cache as soon as ante succeeds, before the message handlers run in
// their own tx-cache cycle. If a handler then fails, only the handler's
// own writes are discarded — the fee already taken and the sequence
// already bumped by ante survive. CheckTx never performs this
// intermediate flush and always ends by discarding its tx-cache,
// regardless of outcome.
//
// The tx's own gas meter is built from its declared fee.gas_limit, and
// reported back as GasWanted. In deliver mode, base's gas meter is the
// block-wide meter BeginBlock reset to max_gas; this tx's GasUsed is
// charged against it so that a block running over its aggregate ceiling
// fails the tx that tips it over, regardless of that tx's own outcome.
func (app *BaseApp) runTx(base types.Context, txBytes []byte, isCheckTx bool) TxResult {
	mode := "check"
	if !isCheckTx {
		mode = "deliver"
	}

	tx, msgs, err := codec.DecodeTx(txBytes, app.registry)
	if err != nil {
		app.multiStore.DiscardAllTxCaches()
		return app.abort(mode, err, storetypes.NewGasMeter(defaultGasWanted))
	}

	gasMeter := storetypes.NewGasMeter(tx.AuthInfo.Fee.GasLimit)
	ctx := base.WithTxContext(gasMeter)

	if err := app.ante.Handle(ctx, tx, msgs); err != nil {
		app.multiStore.DiscardAllTxCaches()
		if !isCheckTx {
			consumeBlockGas(base.GasMeter(), gasMeter.GasConsumed())
		}
		return app.abort(mode, err, gasMeter)
	}

	// Ante's own events (e.g. the fee transfer) must survive into the
	// response alongside whatever the message handlers emit.
	anteEvents := append(types.Events{}, ctx.EventManager().Events()...)

	if !isCheckTx {
		// Ante's effects become visible to the handlers' own tx-cache
		// cycle, and survive even if a handler subsequently fails.
		app.multiStore.WriteAllTxCaches()
	}

	allEvents := append(types.Events{}, anteEvents...)
	for _, msg := range msgs {
		events, err := app.router.Route(ctx, msg)
		if err != nil {
			app.multiStore.DiscardAllTxCaches()
			if !isCheckTx {
				consumeBlockGas(base.GasMeter(), gasMeter.GasConsumed())
			}
			return app.abort(mode, err, gasMeter)
		}
		allEvents = append(allEvents, events...)
	}

	if isCheckTx {
		app.multiStore.DiscardAllTxCaches()
	} else {
		if err := base.GasMeter().TryConsumeGas(gasMeter.GasConsumed(), "block"); err != nil {
			// This tx pushed the block past its max_gas ceiling; its own
			// message effects are discarded, though ante's fee deduction
			// and sequence bump (already flushed to block-cache above)
			// survive, same as any other post-ante failure.
			app.multiStore.DiscardAllTxCaches()
			return app.abort(mode, blockGasError(err, base.GasMeter()), gasMeter)
		}
		app.multiStore.WriteAllTxCaches()
	}

	txTotal.WithLabelValues(mode, "0").Inc()
	txGasUsed.WithLabelValues(mode).Observe(float64(gasMeter.GasConsumed()))

	return TxResult{
		Code:      0,
		GasWanted: tx.AuthInfo.Fee.GasLimit,
		GasUsed:   gasMeter.GasConsumed(),
		Events:    allEvents,
	}
}

// blockGasError converts a TryConsumeGas failure against the block meter
// into the framework's error type, mirroring the ante handler's own
// gas-error translation.
func blockGasError(err error, blockMeter storetypes.GasMeter) error {
	switch err.(type) {
	case storetypes.ErrorGasOverflow:
		return types.ErrGasOverflow()
	default:
		return types.ErrGasExceeded(blockMeter.Limit(), blockMeter.GasConsumed())
	}
}

func (app *BaseApp) abort(mode string, err error, gasMeter storetypes.GasMeter) TxResult {
	e := types.AsError(err)
	txTotal.WithLabelValues(mode, e.Kind.String()).Inc()
	txGasUsed.WithLabelValues(mode).Observe(float64(gasMeter.GasConsumed()))
	return TxResult{
		Code:      e.Code(),
		Log:       e.Error(),
		Codespace: e.Codespace,
		GasWanted: gasMeter.Limit(),
		GasUsed:   gasMeter.GasConsumed(),
	}
}

// CheckTxType distinguishes a fresh mempool admission check (New) from a
// re-validation of a transaction already sitting in the mempool (Recheck),
// per spec.md §6's ABCI `CheckTx` `type` field.
type CheckTxType int

const (
	CheckTxNew     CheckTxType = 0
	CheckTxRecheck CheckTxType = 1
)

// CheckTx validates a candidate transaction without committing any of its
// effects to block-cache, per spec.md §4.9 / §4.4. Both New and Recheck run
// the identical ante+route pipeline against check-mode state; the
// distinction exists for the caller's mempool bookkeeping, not for any
// difference in how this method evaluates the tx. Any other type value is
// a protocol violation from the consensus driver and panics, exactly as
// spec.md §6 and §9's Open Question resolution #1 describe.
func (app *BaseApp) CheckTx(txBytes []byte, typ CheckTxType) TxResult {
	switch typ {
	case CheckTxNew, CheckTxRecheck:
	default:
		panic(fmt.Sprintf("baseapp: unknown CheckTx type %d", typ))
	}
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.runTx(app.checkCtx, txBytes, true)
}

// DeliverTx executes a transaction within the current block, flushing its
// effects into block-cache on success (or the partial ante-only effects
// described in runTx's doc comment, on handler failure).
func (app *BaseApp) DeliverTx(txBytes []byte) TxResult {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.runTx(app.deliverCtx, txBytes, false)
}

// ResponseQuery answers a path-routed, height-scoped read, per spec.md
// §4.11.
type ResponseQuery struct {
	Code   uint32
	Log    string
	Value  []byte
	Height int64
}

// Query runs a read-only lookup against the multi-store as of height
// (zero means latest), holding only the shared read lock: queries may
// run concurrently with one another but never with a writer.
func (app *BaseApp) Query(path string, data []byte, height int64) ResponseQuery {
	app.mu.RLock()
	defer app.mu.RUnlock()

	if height == 0 {
		height = app.multiStore.Version()
	}
	ctx := types.NewQueryContext(app.multiStore, height, app.chainID)

	handler, ok := app.queryRoutes[path]
	if !ok {
		e := types.ErrInvalidRequest("unknown query path: " + path)
		return ResponseQuery{Code: e.Code(), Log: e.Error(), Height: height}
	}
	value, err := handler(ctx, data)
	if err != nil {
		e := types.AsError(err)
		return ResponseQuery{Code: e.Code(), Log: e.Error(), Height: height}
	}
	return ResponseQuery{Value: value, Height: height}
}
