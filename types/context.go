package types

import (
	"github.com/synnergy-chain/framework/store/rootmulti"
	storetypes "github.com/synnergy-chain/framework/store/types"
)

// ctxKind distinguishes the four Context variants of spec.md §4.5.
type ctxKind int

const (
	ContextInit ctxKind = iota
	ContextQuery
	ContextTx
	ContextBlock
)

// Context bundles the per-phase handles every ABCI entry point and
// module keeper operates through: a multi-store reference, height and
// chain-id, the block header (block/tx contexts only), an event sink
// (nil for query), and a gas meter.
type Context struct {
	kind     ctxKind
	store    *rootmulti.Store
	height   int64
	chainID  string
	header   Header
	events   *EventManager
	gasMeter storetypes.GasMeter
}

// NewInitContext builds the context InitChain runs under: height 0, an
// infinite gas meter (genesis application is not gas-metered), and a
// fresh event sink.
func NewInitContext(store *rootmulti.Store, chainID string) Context {
	return Context{
		kind:     ContextInit,
		store:    store,
		height:   0,
		chainID:  chainID,
		events:   NewEventManager(),
		gasMeter: storetypes.NewInfiniteGasMeter(),
	}
}

// NewQueryContext builds a read-only context over the multi-store as of
// height, with no event sink: query handlers may not emit events.
func NewQueryContext(store *rootmulti.Store, height int64, chainID string) Context {
	return Context{
		kind:     ContextQuery,
		store:    store,
		height:   height,
		chainID:  chainID,
		gasMeter: storetypes.NewInfiniteGasMeter(),
	}
}

// NewBlockContext builds the context BeginBlock/EndBlock run under,
// carrying the incoming header and the deliver-mode block gas meter.
func NewBlockContext(store *rootmulti.Store, header Header, gasMeter storetypes.GasMeter) Context {
	return Context{
		kind:     ContextBlock,
		store:    store,
		height:   header.Height,
		chainID:  header.ChainID,
		header:   header,
		events:   NewEventManager(),
		gasMeter: gasMeter,
	}
}

// WithTxContext derives a tx-scoped context from a block context, giving
// the transaction its own gas meter and event sink while sharing the
// block's store, height, and header.
func (c Context) WithTxContext(gasMeter storetypes.GasMeter) Context {
	c.kind = ContextTx
	c.gasMeter = gasMeter
	c.events = NewEventManager()
	return c
}

// WithGasMeter swaps the context's gas meter, e.g. CheckTx reusing a
// fresh tx meter per decode attempt.
func (c Context) WithGasMeter(gasMeter storetypes.GasMeter) Context {
	c.gasMeter = gasMeter
	return c
}

func (c Context) KVStore(key rootmulti.StoreKey) storetypes.KVStore {
	return c.store.GetKVStore(key)
}

func (c Context) Height() int64           { return c.height }
func (c Context) ChainID() string         { return c.chainID }
func (c Context) Header() Header          { return c.header }
func (c Context) IsQuery() bool           { return c.kind == ContextQuery }
func (c Context) Kind() string {
	switch c.kind {
	case ContextInit:
		return "init"
	case ContextQuery:
		return "query"
	case ContextTx:
		return "tx"
	case ContextBlock:
		return "block"
	default:
		return "unknown"
	}
}

func (c Context) GasMeter() storetypes.GasMeter { return c.gasMeter }

// EmitEvent appends an event to the context's sink. Panics on a query
// context, which has none — spec.md §4.5's "query context ... may not
// push events".
func (c Context) EmitEvent(e Event) {
	if c.events == nil {
		panic("types: context has no event sink (query context)")
	}
	c.events.EmitEvent(e)
}

func (c Context) EmitEvents(es Events) {
	if c.events == nil {
		panic("types: context has no event sink (query context)")
	}
	c.events.EmitEvents(es)
}

// EventManager exposes the underlying sink directly, for callers that
// need to drain it (the ABCI driver, collecting ante + handler events).
func (c Context) EventManager() *EventManager { return c.events }
