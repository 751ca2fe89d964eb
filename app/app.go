// Package app wires the store, codec, baseapp, and x/* packages into one
// runnable Application, the way cosmos-sdk's own simapp/gaia wires
// baseapp — this is the "app.go" every chain built on this framework
// needs, grounded on the teacher's core/node.go top-level wiring
// (constructing every subsystem once, in dependency order, behind a
// single constructor).
package app

import (
	"encoding/json"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"

	"github.com/synnergy-chain/framework/baseapp"
	"github.com/synnergy-chain/framework/codec"
	"github.com/synnergy-chain/framework/query"
	"github.com/synnergy-chain/framework/store/iavl"
	"github.com/synnergy-chain/framework/store/rootmulti"
	"github.com/synnergy-chain/framework/types"
	"github.com/synnergy-chain/framework/x/auth"
	"github.com/synnergy-chain/framework/x/bank"
	"github.com/synnergy-chain/framework/x/distribution"
	"github.com/synnergy-chain/framework/x/gov"
	"github.com/synnergy-chain/framework/x/ibc"
	"github.com/synnergy-chain/framework/x/mint"
	"github.com/synnergy-chain/framework/x/params"
	"github.com/synnergy-chain/framework/x/staking"
	"github.com/synnergy-chain/framework/x/upgrade"
)

// BondDenom is the staking/mint/distribution denomination this reference
// wiring uses throughout; a concrete chain binary would source this from
// genesis instead of a constant.
const BondDenom = "uatom"

// moduleStoreKeys is every sub-store this application mounts, in the
// fixed set spec.md §4.3 requires ("a fixed mapping from store key to
// layered bank store").
var moduleStoreKeys = []rootmulti.StoreKey{
	auth.StoreKey,
	bank.StoreKey,
	params.StoreKey,
	staking.StoreKey,
	distribution.StoreKey,
	upgrade.StoreKey,
	gov.StoreKey,
	ibc.StoreKey,
}

// Keepers bundles every module accessor app.go wires together, exposed so
// cmd/appd and tests can reach into genesis/query wiring without
// reconstructing the dependency graph.
type Keepers struct {
	Auth         auth.Keeper
	Bank         bank.Keeper
	Params       *params.Subspace
	Staking      staking.Keeper
	Distribution distribution.Keeper
	Mint         mint.Keeper
	Gov          gov.Keeper
	Upgrade      upgrade.Keeper
	IBC          ibc.Keeper
}

// GenesisAccount is one (address, coins) pair in the genesis JSON blob
// InitChain consumes.
type GenesisAccount struct {
	Address string `json:"address"`
	Coins   string `json:"coins"`
}

// GenesisState is the minimal genesis shape this reference app
// understands: the funded accounts and the ante/baseapp parameters that
// would otherwise only take effect after the first param-change
// proposal.
type GenesisState struct {
	Accounts          []GenesisAccount `json:"accounts"`
	MaxGas            uint64           `json:"max_gas"`
	MaxMemoCharacters int              `json:"max_memo_characters"`
}

// NewNodeDB opens (or creates) the durable IAVL node store key is mounted
// against, under dataDir/<key>. Exposed so cmd/appd can open one
// FileNodeDB per store key before calling NewApp.
func NewNodeDB(dataDir string, key rootmulti.StoreKey, cacheSize int) (iavl.NodeDB, error) {
	return iavl.NewFileNodeDB(dataDir+"/"+string(key), cacheSize)
}

// NewApp mounts every module's store against the NodeDB dbs supplies one
// instance per StoreKey, wires the keepers, ante handler, router, query
// routes, and begin/end-block hooks, and returns a ready-to-drive
// BaseApp. dbs must contain an entry for every key in moduleStoreKeys;
// NewMemApp (in testutil) builds dbs from in-memory trees for tests.
func NewApp(chainID string, dbs map[rootmulti.StoreKey]iavl.NodeDB) (*baseapp.BaseApp, *Keepers, error) {
	ms := rootmulti.NewStore()
	for _, key := range moduleStoreKeys {
		db, ok := dbs[key]
		if !ok {
			return nil, nil, fmt.Errorf("app: no NodeDB supplied for store key %q", key)
		}
		if err := ms.MountStore(key, db); err != nil {
			return nil, nil, err
		}
	}

	authKeeper := auth.NewKeeper()
	bankKeeper := bank.NewKeeper(authKeeper)
	baseappParams := params.NewSubspace("baseapp")
	authParams := params.NewSubspace("auth").WithValidator("max_memo_characters", func(raw []byte) error {
		var n int
		if err := json.Unmarshal(raw, &n); err != nil || n <= 0 {
			return fmt.Errorf("max_memo_characters must be a positive integer")
		}
		return nil
	})
	stakingKeeper := staking.NewKeeper()
	distributionKeeper := distribution.NewKeeper(bankKeeper, stakingKeeper)
	mintKeeper := mint.NewKeeper(bankKeeper, uint256.NewInt(50), BondDenom)
	govKeeper := gov.NewKeeper(map[string]*params.Subspace{
		"baseapp": baseappParams,
		"auth":    authParams,
	})
	upgradeKeeper := upgrade.NewKeeper()
	ibcKeeper := ibc.NewKeeper()

	keepers := &Keepers{
		Auth:         authKeeper,
		Bank:         bankKeeper,
		Params:       baseappParams,
		Staking:      stakingKeeper,
		Distribution: distributionKeeper,
		Mint:         mintKeeper,
		Gov:          govKeeper,
		Upgrade:      upgradeKeeper,
		IBC:          ibcKeeper,
	}

	registry := codec.NewRegistry()
	registry.Register(bank.MsgSendTypeURL, bank.DecodeMsgSend)

	router := baseapp.NewRouter()
	router.RegisterHandler(bank.MsgSendTypeURL, bank.HandleMsgSend(bankKeeper))

	ante := baseapp.NewAnteHandler(authKeeper, bankKeeper, authParams)

	application := baseapp.NewBaseApp(chainID, ms, router, registry, ante, baseappParams)

	application.SetGenesisInitializer(func(ctx types.Context, genesisJSON []byte) error {
		return InitGenesis(ctx, keepers, genesisJSON)
	})
	application.SetBeginBlocker(func(ctx types.Context) error {
		return BeginBlocker(ctx, keepers)
	})
	application.SetEndBlocker(func(ctx types.Context) []baseapp.ValidatorUpdate {
		return EndBlocker(ctx, keepers)
	})

	query.RegisterAccountQueries(application, authKeeper)
	query.RegisterBankQueries(application, bankKeeper)
	query.RegisterStakingQueries(application, stakingKeeper)
	query.RegisterGovQueries(application, govKeeper)
	query.RegisterIBCQueries(application, ibcKeeper)
	query.RegisterUpgradeQueries(application, upgradeKeeper)

	return application, keepers, nil
}

// InitGenesis parses genesisJSON, writes max_gas (default 10,000,000)
// into the baseapp parameter subspace, and funds every listed account,
// per spec.md §4.9's "invokes the application's genesis initializer with
// the genesis blob". max_memo_characters is defaulted but not written:
// the auth subspace is left unset, and the ante handler falls back to
// 256 while it is.
func InitGenesis(ctx types.Context, k *Keepers, genesisJSON []byte) error {
	var state GenesisState
	if len(genesisJSON) > 0 {
		if err := json.Unmarshal(genesisJSON, &state); err != nil {
			return fmt.Errorf("app: decode genesis: %w", err)
		}
	}
	if state.MaxGas == 0 {
		state.MaxGas = 10_000_000
	}
	if state.MaxMemoCharacters == 0 {
		state.MaxMemoCharacters = 256
	}
	if err := k.Params.Set(ctx, "max_gas", state.MaxGas); err != nil {
		return err
	}

	for _, ga := range state.Accounts {
		addr, err := types.ParseAddress(ga.Address)
		if err != nil {
			return fmt.Errorf("app: genesis account %q: %w", ga.Address, err)
		}
		if !k.Auth.HasAccount(ctx, addr) {
			k.Auth.CreateNewBaseAccount(ctx, addr)
		}
		coins, err := types.ParseCoins(ga.Coins)
		if err != nil {
			return fmt.Errorf("app: genesis account %q coins: %w", ga.Address, err)
		}
		if err := k.Bank.MintCoins(ctx, "genesis", coins); err != nil {
			return err
		}
		if err := k.Bank.SendCoins(ctx, types.ModuleAddress("genesis"), addr, coins); err != nil {
			return err
		}
	}
	return nil
}

// BeginBlocker runs the per-block hooks that must happen before any tx
// executes: halt on a due, unhandled upgrade plan, then mint this
// block's reward.
func BeginBlocker(ctx types.Context, k *Keepers) error {
	if err := k.Upgrade.ApplyUpgrade(ctx); err != nil {
		logrus.WithField("height", ctx.Height()).WithError(err).Error("upgrade halt condition")
		return err
	}
	return k.Mint.MintBlockReward(ctx)
}

// EndBlocker runs the per-block hooks that depend on every tx of the
// block already having executed: governance tally, fee-pot allocation to
// bonded validators, and the resulting validator-power update set
// (spec.md §4.9 "EndBlock ... returns validator updates").
func EndBlocker(ctx types.Context, k *Keepers) []baseapp.ValidatorUpdate {
	k.Gov.TallyEndedProposals(ctx)
	if err := k.Distribution.AllocateTokens(ctx, BondDenom); err != nil {
		logrus.WithError(err).Error("distribution: end-block allocation failed")
	}
	validators := k.Staking.BondedValidators(ctx)
	updates := make([]baseapp.ValidatorUpdate, len(validators))
	for i, v := range validators {
		power := int64(0)
		if v.Power.IsUint64() {
			power = int64(v.Power.Uint64())
		}
		updates[i] = baseapp.ValidatorUpdate{Address: v.ConsensusAddress, Power: power}
	}
	return updates
}
