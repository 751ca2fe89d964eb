// Package testutil provides fixtures for exercising the full application
// stack in tests: an in-memory Application wired the same way cmd/appd
// wires a durable one, plus mnemonic-derived signer key fixtures for
// building signed transactions end to end.
package testutil

import (
	"github.com/synnergy-chain/framework/app"
	"github.com/synnergy-chain/framework/baseapp"
	"github.com/synnergy-chain/framework/store/iavl"
	"github.com/synnergy-chain/framework/store/rootmulti"
	"github.com/synnergy-chain/framework/x/auth"
	"github.com/synnergy-chain/framework/x/bank"
	"github.com/synnergy-chain/framework/x/distribution"
	"github.com/synnergy-chain/framework/x/gov"
	"github.com/synnergy-chain/framework/x/ibc"
	"github.com/synnergy-chain/framework/x/params"
	"github.com/synnergy-chain/framework/x/staking"
	"github.com/synnergy-chain/framework/x/upgrade"
)

// memStoreKeys mirrors app's fixed module store-key set. app.NewApp only
// needs one NodeDB per key, not the list itself, so every caller that
// opens its own DBs (cmd/appd for durable ones, this package for
// in-memory ones) keeps a matching copy.
var memStoreKeys = []rootmulti.StoreKey{
	auth.StoreKey,
	bank.StoreKey,
	params.StoreKey,
	staking.StoreKey,
	distribution.StoreKey,
	upgrade.StoreKey,
	gov.StoreKey,
	ibc.StoreKey,
}

// NewMemApp builds a fully wired Application over in-memory node stores,
// for tests that need to drive InitChain/BeginBlock/DeliverTx/Commit
// without touching disk.
func NewMemApp(chainID string) (*baseapp.BaseApp, *app.Keepers, error) {
	dbs := make(map[rootmulti.StoreKey]iavl.NodeDB, len(memStoreKeys))
	for _, key := range memStoreKeys {
		dbs[key] = iavl.NewMemNodeDB()
	}
	return app.NewApp(chainID, dbs)
}
