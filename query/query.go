// Package query implements the path-routed, read-only query surface of
// spec.md §4.11 (component C11): request bytes are decoded, a handler
// reads through a snapshot query context, and the response is encoded
// back with code=0 on success or a non-zero code with a log message on
// failure (that abort-shape lives in baseapp.BaseApp.Query; this package
// only supplies the per-module handlers baseapp registers).
//
// Grounded on core/ledger.go's read accessors (GetBlock, GetUTXO,
// BalanceOf): every handler here reads via ctx.KVStore and never writes.
package query

import (
	"encoding/json"

	"github.com/synnergy-chain/framework/baseapp"
	"github.com/synnergy-chain/framework/types"
	"github.com/synnergy-chain/framework/x/auth"
	"github.com/synnergy-chain/framework/x/bank"
	"github.com/synnergy-chain/framework/x/gov"
	"github.com/synnergy-chain/framework/x/ibc"
	"github.com/synnergy-chain/framework/x/staking"
	"github.com/synnergy-chain/framework/x/upgrade"
)

// Paths this package registers, named after the cosmos-sdk gRPC-gateway
// convention the teacher's cmd/explorer/routes.go also follows, even
// though the core here has no gRPC transport of its own (spec.md §1 —
// that fan-out is an external collaborator).
const (
	PathAccount           = "/framework.auth.v1.Query/Account"
	PathBalance           = "/framework.bank.v1.Query/Balance"
	PathAllBalances       = "/framework.bank.v1.Query/AllBalances"
	PathSupply            = "/framework.bank.v1.Query/Supply"
	PathValidator         = "/framework.staking.v1.Query/Validator"
	PathBondedValidators  = "/framework.staking.v1.Query/BondedValidators"
	PathHistoricalInfo    = "/framework.staking.v1.Query/HistoricalInfo"
	PathProposal          = "/framework.gov.v1.Query/Proposal"
	PathIBCClientState    = "/framework.ibc.v1.Query/ClientState"
	PathUpgradePlan       = "/framework.upgrade.v1.Query/CurrentPlan"
)

type accountResponse struct {
	Address       string `json:"address"`
	AccountNumber uint64 `json:"account_number"`
	Sequence      uint64 `json:"sequence"`
}

// RegisterAccountQueries binds the accounts module's read-only surface.
func RegisterAccountQueries(app *baseapp.BaseApp, keeper auth.Keeper) {
	app.RegisterQueryRoute(PathAccount, func(ctx types.Context, data []byte) ([]byte, error) {
		addr, err := types.ParseAddress(string(data))
		if err != nil {
			return nil, types.ErrInvalidRequest("query: malformed address: " + err.Error())
		}
		acc, ok := keeper.GetAccount(ctx, addr)
		if !ok {
			return nil, types.ErrAccountNotFound(addr.String())
		}
		return json.Marshal(accountResponse{
			Address:       acc.Address.String(),
			AccountNumber: acc.AccountNumber,
			Sequence:      acc.Sequence,
		})
	})
}

type balanceRequest struct {
	Address string `json:"address"`
	Denom   string `json:"denom"`
}

// RegisterBankQueries binds balance/all-balances/supply, per spec.md
// §4.10's query_balance / query_all_balances.
func RegisterBankQueries(app *baseapp.BaseApp, keeper bank.Keeper) {
	app.RegisterQueryRoute(PathBalance, func(ctx types.Context, data []byte) ([]byte, error) {
		var req balanceRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, types.ErrInvalidRequest("query: malformed balance request: " + err.Error())
		}
		addr, err := types.ParseAddress(req.Address)
		if err != nil {
			return nil, types.ErrInvalidRequest("query: malformed address: " + err.Error())
		}
		coin := types.NewCoin(req.Denom, keeper.GetBalance(ctx, addr, req.Denom))
		return json.Marshal(coin.String())
	})

	app.RegisterQueryRoute(PathAllBalances, func(ctx types.Context, data []byte) ([]byte, error) {
		addr, err := types.ParseAddress(string(data))
		if err != nil {
			return nil, types.ErrInvalidRequest("query: malformed address: " + err.Error())
		}
		coins := keeper.GetAllBalances(ctx, addr)
		return json.Marshal(coins.String())
	})

	app.RegisterQueryRoute(PathSupply, func(ctx types.Context, data []byte) ([]byte, error) {
		denom := string(data)
		return json.Marshal(keeper.GetSupply(ctx, denom).Dec())
	})
}

// RegisterStakingQueries binds the validator query surface. The
// HistoricalInfo path is intentionally left unimplemented: spec.md §9
// scopes it out ("The source's HistoricalInfo handling for staking
// queries is left unimplemented in the visible surface; scope-out is
// appropriate here"), so the registered handler always reports
// unknown-message rather than silently returning zero-value data.
func RegisterStakingQueries(app *baseapp.BaseApp, keeper staking.Keeper) {
	app.RegisterQueryRoute(PathBondedValidators, func(ctx types.Context, _ []byte) ([]byte, error) {
		return json.Marshal(keeper.BondedValidators(ctx))
	})
	app.RegisterQueryRoute(PathValidator, func(ctx types.Context, data []byte) ([]byte, error) {
		v, ok := keeper.GetValidator(ctx, data)
		if !ok {
			return nil, types.ErrInvalidRequest("query: unknown validator")
		}
		return json.Marshal(v)
	})
	app.RegisterQueryRoute(PathHistoricalInfo, func(types.Context, []byte) ([]byte, error) {
		return nil, types.ErrUnknownMessage(PathHistoricalInfo)
	})
}

// RegisterGovQueries binds the single-proposal read path.
func RegisterGovQueries(app *baseapp.BaseApp, keeper gov.Keeper) {
	app.RegisterQueryRoute(PathProposal, func(ctx types.Context, data []byte) ([]byte, error) {
		p, ok := keeper.GetProposal(ctx, string(data))
		if !ok {
			return nil, types.ErrInvalidRequest("query: unknown proposal " + string(data))
		}
		return json.Marshal(p)
	})
}

// RegisterIBCQueries binds the client-state read path (no packet relay
// query surface — out of scope per spec.md §1/SPEC_FULL's x/ibc note).
func RegisterIBCQueries(app *baseapp.BaseApp, keeper ibc.Keeper) {
	app.RegisterQueryRoute(PathIBCClientState, func(ctx types.Context, data []byte) ([]byte, error) {
		cs, ok := keeper.GetClient(ctx, string(data))
		if !ok {
			return nil, types.ErrInvalidRequest("query: unknown client " + string(data))
		}
		return json.Marshal(cs)
	})
}

// RegisterUpgradeQueries binds the pending-plan read path.
func RegisterUpgradeQueries(app *baseapp.BaseApp, keeper upgrade.Keeper) {
	app.RegisterQueryRoute(PathUpgradePlan, func(ctx types.Context, _ []byte) ([]byte, error) {
		plan, ok := keeper.GetPlan(ctx)
		if !ok {
			return json.Marshal(nil)
		}
		return json.Marshal(plan)
	})
}
