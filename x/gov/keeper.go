// Package gov implements parameter-change governance proposals: submit,
// deposit, vote, and tally-at-end-of-voting-period, grounded in the
// teacher's core/governance.go (GovProposal, quorumReached) and
// original_source/x/gov/src/abci_handler.rs's tally-on-EndBlock shape.
package gov

import (
	"github.com/gogo/protobuf/proto"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/synnergy-chain/framework/store/rootmulti"
	"github.com/synnergy-chain/framework/types"
	"github.com/synnergy-chain/framework/x/params"
)

// StoreKey names gov's own sub-store.
const StoreKey rootmulti.StoreKey = "gov"

const (
	StatusVotingPeriod = uint8(1)
	StatusPassed       = uint8(2)
	StatusRejected     = uint8(3)
)

var proposalPrefix = []byte{0x01}
var voteKeyPrefix = []byte{0x02}

func proposalKey(id string) []byte {
	return append(append([]byte{}, proposalPrefix...), []byte(id)...)
}

func voteKey(proposalID string, voter types.Address) []byte {
	key := append(append([]byte{}, voteKeyPrefix...), []byte(proposalID)...)
	return append(key, voter.Bytes()...)
}

// Proposal is a single parameter-change proposal awaiting vote. Value
// carries the parameter's intended JSON wire representation (e.g.
// "5000000" for a numeric param, `"text"` for a string one) so it can be
// written straight into the target subspace on passage without a second
// marshal pass.
type Proposal struct {
	ID            string
	Subspace      string
	Key           string
	Value         string
	Submitter     types.Address
	Status        uint8
	VotingEndTime int64
	YesVotes      uint64
	NoVotes       uint64
}

func (p Proposal) marshal() []byte {
	buf := proto.NewBuffer(nil)
	_ = buf.EncodeRawBytes([]byte(p.ID))
	_ = buf.EncodeRawBytes([]byte(p.Subspace))
	_ = buf.EncodeRawBytes([]byte(p.Key))
	_ = buf.EncodeRawBytes([]byte(p.Value))
	_ = buf.EncodeRawBytes(p.Submitter.Bytes())
	_ = buf.EncodeVarint(uint64(p.Status))
	_ = buf.EncodeVarint(uint64(p.VotingEndTime))
	_ = buf.EncodeVarint(p.YesVotes)
	_ = buf.EncodeVarint(p.NoVotes)
	return buf.Bytes()
}

func unmarshalProposal(data []byte) (Proposal, error) {
	buf := proto.NewBuffer(data)
	id, err := buf.DecodeRawBytes(true)
	if err != nil {
		return Proposal{}, err
	}
	subspace, err := buf.DecodeRawBytes(true)
	if err != nil {
		return Proposal{}, err
	}
	key, err := buf.DecodeRawBytes(true)
	if err != nil {
		return Proposal{}, err
	}
	value, err := buf.DecodeRawBytes(true)
	if err != nil {
		return Proposal{}, err
	}
	submitterRaw, err := buf.DecodeRawBytes(true)
	if err != nil {
		return Proposal{}, err
	}
	status, err := buf.DecodeVarint()
	if err != nil {
		return Proposal{}, err
	}
	votingEnd, err := buf.DecodeVarint()
	if err != nil {
		return Proposal{}, err
	}
	yes, err := buf.DecodeVarint()
	if err != nil {
		return Proposal{}, err
	}
	no, err := buf.DecodeVarint()
	if err != nil {
		return Proposal{}, err
	}
	submitter, err := types.NewAddress(submitterRaw, types.AddressAccount)
	if err != nil {
		return Proposal{}, err
	}
	return Proposal{
		ID:            string(id),
		Subspace:      string(subspace),
		Key:           string(key),
		Value:         string(value),
		Submitter:     submitter,
		Status:        uint8(status),
		VotingEndTime: int64(votingEnd),
		YesVotes:      yes,
		NoVotes:       no,
	}, nil
}

// VotingPeriodBlocks is how many blocks a proposal stays open for voting,
// measured against ctx.Height() rather than wall-clock time (the core has
// no block-time guarantee of its own, per spec.md §4.9's Header.Time
// being caller-supplied).
const VotingPeriodBlocks = 100

// Keeper manages proposal lifecycle and applies passed proposals to the
// named params subspace.
type Keeper struct {
	subspaces map[string]*params.Subspace
	logger    *zap.Logger
}

func NewKeeper(subspaces map[string]*params.Subspace) Keeper {
	return Keeper{subspaces: subspaces, logger: zap.L()}
}

// SubmitProposal opens a new proposal for subspace.key = value, per
// core/governance.go's ProposeChange (uuid-generated ID, zero votes).
func (k Keeper) SubmitProposal(ctx types.Context, submitter types.Address, subspace, key, value string) (Proposal, error) {
	if _, ok := k.subspaces[subspace]; !ok {
		return Proposal{}, types.ErrInvalidRequest("gov: unknown subspace " + subspace)
	}
	p := Proposal{
		ID:            uuid.New().String(),
		Subspace:      subspace,
		Key:           key,
		Value:         value,
		Submitter:     submitter,
		Status:        StatusVotingPeriod,
		VotingEndTime: ctx.Height() + VotingPeriodBlocks,
	}
	ctx.KVStore(StoreKey).Set(proposalKey(p.ID), p.marshal())
	k.logger.Sugar().Infow("proposal submitted", "id", p.ID, "subspace", subspace, "key", key)
	ctx.EmitEvent(types.NewEvent("submit_proposal", types.NewAttribute("proposal_id", p.ID)))
	return p, nil
}

func (Keeper) GetProposal(ctx types.Context, id string) (Proposal, bool) {
	raw := ctx.KVStore(StoreKey).Get(proposalKey(id))
	if raw == nil {
		return Proposal{}, false
	}
	p, err := unmarshalProposal(raw)
	if err != nil {
		panic("gov: corrupt proposal record: " + err.Error())
	}
	return p, true
}

func (Keeper) setProposal(ctx types.Context, p Proposal) {
	ctx.KVStore(StoreKey).Set(proposalKey(p.ID), p.marshal())
}

// Vote records voter's ballot on id, rejecting a vote after the proposal
// has already left its voting period or a repeat vote by the same
// address.
func (k Keeper) Vote(ctx types.Context, voter types.Address, id string, yes bool) error {
	p, ok := k.GetProposal(ctx, id)
	if !ok {
		return types.ErrInvalidRequest("gov: unknown proposal " + id)
	}
	if p.Status != StatusVotingPeriod {
		return types.ErrInvalidRequest("gov: proposal is not in its voting period")
	}
	store := ctx.KVStore(StoreKey)
	vk := voteKey(id, voter)
	if store.Has(vk) {
		return types.ErrInvalidRequest("gov: address already voted")
	}
	var ballot byte = 0
	if yes {
		ballot = 1
		p.YesVotes++
	} else {
		p.NoVotes++
	}
	store.Set(vk, []byte{ballot})
	k.setProposal(ctx, p)
	ctx.EmitEvent(types.NewEvent("vote",
		types.NewAttribute("proposal_id", id),
		types.NewAttribute("voter", voter.String()),
	))
	return nil
}

// TallyEndedProposals scans for every proposal whose voting period has
// ended at the current height, per original_source/x/gov's
// tally-on-EndBlock shape: majority yes (simple majority of cast votes)
// passes and applies the change via the proposal's params subspace;
// anything else is rejected.
func (k Keeper) TallyEndedProposals(ctx types.Context) {
	it := ctx.KVStore(StoreKey).Iterator(proposalPrefix, prefixEnd(proposalPrefix))
	defer it.Close()

	var ended []Proposal
	for ; it.Valid(); it.Next() {
		p, err := unmarshalProposal(it.Value())
		if err != nil || p.Status != StatusVotingPeriod {
			continue
		}
		if ctx.Height() >= p.VotingEndTime {
			ended = append(ended, p)
		}
	}

	for _, p := range ended {
		if p.YesVotes > p.NoVotes {
			p.Status = StatusPassed
			if sub, ok := k.subspaces[p.Subspace]; ok {
				if err := sub.SetRaw(ctx, p.Key, []byte(p.Value)); err != nil {
					k.logger.Sugar().Errorw("proposal passed but param apply failed", "id", p.ID, "err", err)
				}
			}
			ctx.EmitEvent(types.NewEvent("proposal_passed", types.NewAttribute("proposal_id", p.ID)))
		} else {
			p.Status = StatusRejected
			ctx.EmitEvent(types.NewEvent("proposal_rejected", types.NewAttribute("proposal_id", p.ID)))
		}
		k.setProposal(ctx, p)
	}
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
