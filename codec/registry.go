package codec

import (
	"fmt"
	"sync"

	"github.com/synnergy-chain/framework/types"
)

// Msg is the contract every stock/supplemented module message implements:
// a stable type URL for router dispatch, the module's own structural
// validation, and the set of addresses that must sign it.
type Msg interface {
	TypeURL() string
	ValidateBasic() error
	GetSigners() []types.Address
}

// MsgDecoder turns an Any's raw value into a concrete Msg.
type MsgDecoder func(value []byte) (Msg, error)

// Registry maps message type URLs to decoders. Both the tx codec (to
// validate-basic every message at decode time) and the module router (to
// dispatch by type URL) share one Registry instance.
type Registry struct {
	mu       sync.RWMutex
	decoders map[string]MsgDecoder
}

func NewRegistry() *Registry {
	return &Registry{decoders: make(map[string]MsgDecoder)}
}

// Register binds typeURL to dec. Re-registering the same type URL
// overwrites the previous binding — module wiring order decides, not a
// panic, since app assembly always registers each module exactly once.
func (r *Registry) Register(typeURL string, dec MsgDecoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[typeURL] = dec
}

// Decode looks up typeURL's decoder, decodes the payload, and runs the
// message's own ValidateBasic. Unknown type URLs fail unknown-message.
func (r *Registry) Decode(a Any) (Msg, error) {
	r.mu.RLock()
	dec, ok := r.decoders[a.TypeURL]
	r.mu.RUnlock()
	if !ok {
		return nil, types.ErrUnknownMessage(a.TypeURL)
	}
	msg, err := dec(a.Value)
	if err != nil {
		return nil, types.Wrap(types.KindTxDecode, err, fmt.Sprintf("decode %s", a.TypeURL))
	}
	if err := msg.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("codec: validate-basic %s: %w", a.TypeURL, err)
	}
	return msg, nil
}
