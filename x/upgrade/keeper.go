// Package upgrade coordinates scheduled binary upgrades: set a plan (name
// and target height), query it, and a BeginBlock hook that halts block
// production once the plan height is reached and no matching handler has
// been registered for it — the standard cosmos-sdk-shaped coordination
// story grounded in original_source/x/upgrade/src/abci_handler.rs's
// plan-check-on-block shape.
package upgrade

import (
	"github.com/gogo/protobuf/proto"
	"github.com/sirupsen/logrus"

	"github.com/synnergy-chain/framework/store/rootmulti"
	"github.com/synnergy-chain/framework/types"
)

// StoreKey names upgrade's own sub-store.
const StoreKey rootmulti.StoreKey = "upgrade"

var planKey = []byte("plan")
var doneKeyPrefix = []byte{0x01}

// Plan names the upgrade and the height it must be applied at.
type Plan struct {
	Name   string
	Height int64
	Info   string
}

func (p Plan) marshal() []byte {
	buf := proto.NewBuffer(nil)
	_ = buf.EncodeRawBytes([]byte(p.Name))
	_ = buf.EncodeVarint(uint64(p.Height))
	_ = buf.EncodeRawBytes([]byte(p.Info))
	return buf.Bytes()
}

func unmarshalPlan(data []byte) (Plan, error) {
	buf := proto.NewBuffer(data)
	name, err := buf.DecodeRawBytes(true)
	if err != nil {
		return Plan{}, err
	}
	height, err := buf.DecodeVarint()
	if err != nil {
		return Plan{}, err
	}
	info, err := buf.DecodeRawBytes(true)
	if err != nil {
		return Plan{}, err
	}
	return Plan{Name: string(name), Height: int64(height), Info: string(info)}, nil
}

// UpgradeHandler runs the in-process migration logic registered for a
// named plan; its absence at the plan height is what halts the chain.
type UpgradeHandler func(ctx types.Context, plan Plan) error

// Keeper tracks the single pending upgrade plan (cosmos-sdk's x/upgrade
// only ever has one scheduled at a time) and the handlers registered for
// known plan names.
type Keeper struct {
	handlers map[string]UpgradeHandler
	logger   *logrus.Logger
}

func NewKeeper() Keeper {
	return Keeper{handlers: make(map[string]UpgradeHandler), logger: logrus.StandardLogger()}
}

// SetUpgradeHandler registers the migration to run when a plan named name
// reaches its target height.
func (k Keeper) SetUpgradeHandler(name string, h UpgradeHandler) {
	k.handlers[name] = h
}

// ScheduleUpgrade sets or replaces the pending plan.
func (Keeper) ScheduleUpgrade(ctx types.Context, plan Plan) error {
	if plan.Height <= ctx.Height() {
		return types.ErrInvalidRequest("upgrade: plan height must be in the future")
	}
	ctx.KVStore(StoreKey).Set(planKey, plan.marshal())
	return nil
}

func (Keeper) GetPlan(ctx types.Context) (Plan, bool) {
	raw := ctx.KVStore(StoreKey).Get(planKey)
	if raw == nil {
		return Plan{}, false
	}
	p, err := unmarshalPlan(raw)
	if err != nil {
		panic("upgrade: corrupt plan record: " + err.Error())
	}
	return p, true
}

func doneKey(name string) []byte {
	return append(append([]byte{}, doneKeyPrefix...), []byte(name)...)
}

// ApplyUpgrade runs at BeginBlock. If a plan is due at this height, it
// runs the plan's registered handler (if any), records the plan as
// applied, and clears it; an unhandled due plan is a halting condition —
// the caller is expected to stop the process rather than let the chain
// advance on an un-upgraded binary.
func (k Keeper) ApplyUpgrade(ctx types.Context) error {
	plan, ok := k.GetPlan(ctx)
	if !ok || ctx.Height() < plan.Height {
		return nil
	}
	handler, ok := k.handlers[plan.Name]
	if !ok {
		return types.ErrInvalidRequest("upgrade: no handler registered for plan " + plan.Name + "; halting")
	}
	if err := handler(ctx, plan); err != nil {
		return err
	}
	ctx.KVStore(StoreKey).Set(doneKey(plan.Name), []byte{1})
	ctx.KVStore(StoreKey).Delete(planKey)
	k.logger.WithField("plan", plan.Name).Info("upgrade applied")
	ctx.EmitEvent(types.NewEvent("upgrade_applied", types.NewAttribute("name", plan.Name)))
	return nil
}
