// Package ibc implements client creation/update/expiry lifecycle only —
// no packet relay, no connection/channel handshake, no light-client
// fraud-proof verification. Grounded in the stubbed-out scope of
// original_source/gears/src/x/ibc/ibc.rs, which itself only carries
// client-message routing with the rest marked todo!().
package ibc

import (
	"github.com/gogo/protobuf/proto"

	"github.com/synnergy-chain/framework/store/rootmulti"
	"github.com/synnergy-chain/framework/types"
)

// StoreKey names ibc's own sub-store.
const StoreKey rootmulti.StoreKey = "ibc"

var clientPrefix = []byte{0x01}

func clientKey(clientID string) []byte {
	return append(append([]byte{}, clientPrefix...), []byte(clientID)...)
}

// ClientState is a minimal counterparty-chain light-client record: the
// last trusted consensus root and the height at which trust expires.
type ClientState struct {
	ClientID           string
	ChainID            string
	LatestHeight       int64
	ConsensusRoot      []byte
	TrustingPeriodEnds int64
	Frozen             bool
}

func (c ClientState) marshal() []byte {
	buf := proto.NewBuffer(nil)
	_ = buf.EncodeRawBytes([]byte(c.ClientID))
	_ = buf.EncodeRawBytes([]byte(c.ChainID))
	_ = buf.EncodeVarint(uint64(c.LatestHeight))
	_ = buf.EncodeRawBytes(c.ConsensusRoot)
	_ = buf.EncodeVarint(uint64(c.TrustingPeriodEnds))
	if c.Frozen {
		_ = buf.EncodeVarint(1)
	} else {
		_ = buf.EncodeVarint(0)
	}
	return buf.Bytes()
}

func unmarshalClientState(data []byte) (ClientState, error) {
	buf := proto.NewBuffer(data)
	id, err := buf.DecodeRawBytes(true)
	if err != nil {
		return ClientState{}, err
	}
	chainID, err := buf.DecodeRawBytes(true)
	if err != nil {
		return ClientState{}, err
	}
	height, err := buf.DecodeVarint()
	if err != nil {
		return ClientState{}, err
	}
	root, err := buf.DecodeRawBytes(true)
	if err != nil {
		return ClientState{}, err
	}
	trustEnds, err := buf.DecodeVarint()
	if err != nil {
		return ClientState{}, err
	}
	frozen, err := buf.DecodeVarint()
	if err != nil {
		return ClientState{}, err
	}
	return ClientState{
		ClientID:           string(id),
		ChainID:            string(chainID),
		LatestHeight:       int64(height),
		ConsensusRoot:      root,
		TrustingPeriodEnds: int64(trustEnds),
		Frozen:             frozen != 0,
	}, nil
}

// Keeper manages light-client records only.
type Keeper struct{}

func NewKeeper() Keeper { return Keeper{} }

// CreateClient registers a new client, trusted through trustingPeriod
// blocks from the current height.
func (Keeper) CreateClient(ctx types.Context, clientID, chainID string, root []byte, trustingPeriod int64) (ClientState, error) {
	store := ctx.KVStore(StoreKey)
	if store.Has(clientKey(clientID)) {
		return ClientState{}, types.ErrInvalidRequest("ibc: client " + clientID + " already exists")
	}
	cs := ClientState{
		ClientID:           clientID,
		ChainID:            chainID,
		LatestHeight:       ctx.Height(),
		ConsensusRoot:      root,
		TrustingPeriodEnds: ctx.Height() + trustingPeriod,
	}
	store.Set(clientKey(clientID), cs.marshal())
	ctx.EmitEvent(types.NewEvent("create_client", types.NewAttribute("client_id", clientID)))
	return cs, nil
}

func (Keeper) GetClient(ctx types.Context, clientID string) (ClientState, bool) {
	raw := ctx.KVStore(StoreKey).Get(clientKey(clientID))
	if raw == nil {
		return ClientState{}, false
	}
	cs, err := unmarshalClientState(raw)
	if err != nil {
		panic("ibc: corrupt client record: " + err.Error())
	}
	return cs, true
}

// UpdateClient advances clientID's trusted root and height, rejecting an
// update against an expired or frozen client.
func (k Keeper) UpdateClient(ctx types.Context, clientID string, newHeight int64, newRoot []byte) error {
	cs, ok := k.GetClient(ctx, clientID)
	if !ok {
		return types.ErrInvalidRequest("ibc: unknown client " + clientID)
	}
	if cs.Frozen {
		return types.ErrInvalidRequest("ibc: client " + clientID + " is frozen")
	}
	if ctx.Height() > cs.TrustingPeriodEnds {
		return types.ErrInvalidRequest("ibc: client " + clientID + " trusting period has expired")
	}
	if newHeight <= cs.LatestHeight {
		return types.ErrInvalidRequest("ibc: update height must exceed current latest height")
	}
	cs.LatestHeight = newHeight
	cs.ConsensusRoot = newRoot
	ctx.KVStore(StoreKey).Set(clientKey(clientID), cs.marshal())
	ctx.EmitEvent(types.NewEvent("update_client", types.NewAttribute("client_id", clientID)))
	return nil
}

// FreezeClient marks a client as having observed misbehaviour, refusing
// all further updates. Exposed for governance or evidence-submission
// callers; no fraud-proof verification lives here (non-goal).
func (k Keeper) FreezeClient(ctx types.Context, clientID string) error {
	cs, ok := k.GetClient(ctx, clientID)
	if !ok {
		return types.ErrInvalidRequest("ibc: unknown client " + clientID)
	}
	cs.Frozen = true
	ctx.KVStore(StoreKey).Set(clientKey(clientID), cs.marshal())
	return nil
}
