// Package baseapp implements the ante handler (C7), module router (C8),
// and ABCI driver (C9) of spec.md §4.7-4.9.
package baseapp

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/synnergy-chain/framework/codec"
	"github.com/synnergy-chain/framework/store/rootmulti"
	storetypes "github.com/synnergy-chain/framework/store/types"
	"github.com/synnergy-chain/framework/types"
	"github.com/synnergy-chain/framework/x/params"
)

// baseappSubspaceName reuses the params module's own store; "baseapp" is
// just another subspace name within it.
const baseappSubspaceName = "baseapp"

const defaultMaxGas uint64 = 10_000_000

// ValidatorUpdate is a power change for one validator's consensus key,
// returned from EndBlock per spec.md §4.9.
type ValidatorUpdate struct {
	Address []byte
	Power   int64
}

// GenesisInitializer builds initial application state from a genesis
// blob, called once by InitChain.
type GenesisInitializer func(ctx types.Context, genesisJSON []byte) error

// BeginBlocker and EndBlocker are the application's per-block hooks.
type BeginBlocker func(ctx types.Context) error
type EndBlocker func(ctx types.Context) []ValidatorUpdate

// TxResult is the outcome of running one transaction through ante +
// router, independent of which ABCI entry point invoked it.
type TxResult struct {
	Code      uint32
	Log       string
	Codespace string
	GasWanted uint64
	GasUsed   uint64
	Events    types.Events
}

// BaseApp drives the ABCI lifecycle over a mounted multi-store, per
// spec.md §4.9. Every entry point below holds app.mu for its duration —
// a write lock for anything that can mutate the store, a read lock for
// Query — matching spec.md §5's single global lock.
type BaseApp struct {
	mu sync.RWMutex

	chainID string
	logger  *logrus.Logger

	multiStore *rootmulti.Store
	router     *Router
	registry   *codec.Registry
	ante       *AnteHandler
	baseapp    *params.Subspace

	genesisInit GenesisInitializer
	beginBlock  BeginBlocker
	endBlock    EndBlocker

	queryRoutes map[string]QueryHandler

	deliverCtx types.Context
	checkCtx   types.Context
	lastHeader types.Header
}

// QueryHandler answers one path of the query router (C11), reading ctx's
// height-scoped store and returning an opaque response payload.
type QueryHandler func(ctx types.Context, data []byte) ([]byte, error)

// RegisterQueryRoute binds path to h. Called once per query path at app
// wiring time, mirroring RegisterHandler on the message router.
func (app *BaseApp) RegisterQueryRoute(path string, h QueryHandler) {
	app.queryRoutes[path] = h
}

func NewBaseApp(
	chainID string,
	ms *rootmulti.Store,
	router *Router,
	registry *codec.Registry,
	ante *AnteHandler,
	baseappParams *params.Subspace,
) *BaseApp {
	return &BaseApp{
		chainID:     chainID,
		logger:      logrus.StandardLogger(),
		multiStore:  ms,
		router:      router,
		registry:    registry,
		ante:        ante,
		baseapp:     baseappParams,
		queryRoutes: make(map[string]QueryHandler),
	}
}

func (app *BaseApp) SetGenesisInitializer(f GenesisInitializer) { app.genesisInit = f }
func (app *BaseApp) SetBeginBlocker(f BeginBlocker)             { app.beginBlock = f }
func (app *BaseApp) SetEndBlocker(f EndBlocker)                 { app.endBlock = f }

// ResponseInitChain carries the events emitted during InitChain. No
// app-hash is reported (InitChain does not commit; the first Commit
// returns the genesis-derived hash), and no validator set or consensus
// params are reported either.
type ResponseInitChain struct {
	Events types.Events
}

// InitChain builds the init context, runs the application's genesis
// initializer, and drains tx-cache into block-cache.
func (app *BaseApp) InitChain(header types.Header, genesisJSON []byte) (ResponseInitChain, error) {
	app.mu.Lock()
	defer app.mu.Unlock()

	ctx := types.NewInitContext(app.multiStore, app.chainID)
	if app.genesisInit != nil {
		if err := app.genesisInit(ctx, genesisJSON); err != nil {
			app.multiStore.DiscardAllTxCaches()
			return ResponseInitChain{}, err
		}
	}
	app.multiStore.WriteAllTxCaches()

	app.lastHeader = header
	app.checkCtx = types.NewBlockContext(app.multiStore, header, storetypes.NewInfiniteGasMeter())

	return ResponseInitChain{Events: ctx.EventManager().Drain()}, nil
}

// ResponseInfo reports the last committed height and app-hash.
type ResponseInfo struct {
	LastBlockHeight  int64
	LastBlockAppHash []byte
}

func (app *BaseApp) Info() ResponseInfo {
	app.mu.RLock()
	defer app.mu.RUnlock()
	id := app.multiStore.LastCommitID()
	return ResponseInfo{LastBlockHeight: id.Version, LastBlockAppHash: id.Hash}
}

type ResponseBeginBlock struct {
	Events types.Events
}

// BeginBlock opens the deliver-mode context for the block: stores the
// header, resets the block gas meter to max_gas, and runs the
// application's begin-block hook.
func (app *BaseApp) BeginBlock(header types.Header) ResponseBeginBlock {
	app.mu.Lock()
	defer app.mu.Unlock()

	probe := types.NewBlockContext(app.multiStore, header, storetypes.NewInfiniteGasMeter())
	maxGas := app.baseapp.GetUint64(probe, "max_gas", defaultMaxGas)

	blockGasMeter := storetypes.NewGasMeter(maxGas)
	app.deliverCtx = types.NewBlockContext(app.multiStore, header, blockGasMeter)
	app.lastHeader = header

	if app.beginBlock != nil {
		if err := app.beginBlock(app.deliverCtx); err != nil {
			panic("baseapp: begin-block hook failed: " + err.Error())
		}
	}
	return ResponseBeginBlock{Events: app.deliverCtx.EventManager().Drain()}
}

type ResponseEndBlock struct {
	ValidatorUpdates []ValidatorUpdate
	Events           types.Events
}

func (app *BaseApp) EndBlock() ResponseEndBlock {
	app.mu.Lock()
	defer app.mu.Unlock()

	var updates []ValidatorUpdate
	if app.endBlock != nil {
		updates = app.endBlock(app.deliverCtx)
	}
	return ResponseEndBlock{ValidatorUpdates: updates, Events: app.deliverCtx.EventManager().Drain()}
}

type ResponseCommit struct {
	AppHash []byte
	Version int64
}

// Commit flattens block-cache into each store's tree, commits every
// tree, and advances the multi-store version.
func (app *BaseApp) Commit() (ResponseCommit, error) {
	app.mu.Lock()
	defer app.mu.Unlock()

	id, err := app.multiStore.Commit()
	if err != nil {
		return ResponseCommit{}, err
	}
	app.checkCtx = types.NewBlockContext(app.multiStore, app.lastHeader, storetypes.NewInfiniteGasMeter())
	return ResponseCommit{AppHash: id.Hash, Version: id.Version}, nil
}

// Echo and Flush are no-ops the ABCI transport calls directly through;
// kept here only so an in-process Application interface can expose them
// uniformly.
func (app *BaseApp) Echo(msg string) string { return msg }
func (app *BaseApp) Flush()                 {}
