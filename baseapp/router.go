package baseapp

import (
	"github.com/synnergy-chain/framework/codec"
	"github.com/synnergy-chain/framework/types"
)

// MsgHandler executes one message's state effects under ctx.
type MsgHandler func(ctx types.Context, msg codec.Msg) error

// Router is the statically-configured type-URL -> handler table of
// spec.md §4.8. Unknown type URLs fail unknown-message.
type Router struct {
	handlers map[string]MsgHandler
}

func NewRouter() *Router {
	return &Router{handlers: make(map[string]MsgHandler)}
}

// RegisterHandler binds typeURL to h. Called once per message type at app
// wiring time.
func (r *Router) RegisterHandler(typeURL string, h MsgHandler) {
	r.handlers[typeURL] = h
}

// Route dispatches msg to its registered handler and returns the events
// the handler emitted (and none else) during its run.
func (r *Router) Route(ctx types.Context, msg codec.Msg) (types.Events, error) {
	h, ok := r.handlers[msg.TypeURL()]
	if !ok {
		return nil, types.ErrUnknownMessage(msg.TypeURL())
	}
	before := len(ctx.EventManager().Events())
	if err := h(ctx, msg); err != nil {
		return nil, err
	}
	all := ctx.EventManager().Events()
	return append(types.Events{}, all[before:]...), nil
}
