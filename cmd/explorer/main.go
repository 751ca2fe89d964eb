package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/synnergy-chain/framework/app"
	"github.com/synnergy-chain/framework/pkg/config"
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

// nodeDBStoreKeys mirrors app's fixed module store-key set; duplicated
// from cmd/appd rather than shared: app.NewApp accepts NodeDBs, it does
// not open them, so each binary opens its own (through app.NewNodeDB).
var nodeDBStoreKeys = []rootmulti.StoreKey{
	auth.StoreKey,
	bank.StoreKey,
	params.StoreKey,
	staking.StoreKey,
	distribution.StoreKey,
	upgrade.StoreKey,
	gov.StoreKey,
	ibc.StoreKey,
}

func openNodeDBs(cfg *config.Config) (map[rootmulti.StoreKey]iavl.NodeDB, error) {
	dbs := make(map[rootmulti.StoreKey]iavl.NodeDB, len(nodeDBStoreKeys))
	for _, key := range nodeDBStoreKeys {
		db, err := app.NewNodeDB(cfg.Store.DataDir, key, cfg.Store.CacheSize)
		if err != nil {
			return nil, err
		}
		dbs[key] = db
	}
	return dbs, nil
}

func main() {
	cfg, err := config.Load(os.Getenv("FRAMEWORK_ENV"))
	if err != nil {
		logrus.WithError(err).Fatal("explorer: load config")
	}
	if !cfg.Explorer.Enabled {
		logrus.Info("explorer: disabled in config, exiting")
		return
	}
	if cfg.Store.CacheSize == 0 {
		cfg.Store.CacheSize = 1000
	}

	dbs, err := openNodeDBs(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("explorer: open node stores")
	}
	application, _, err := app.NewApp(cfg.Chain.ID, dbs)
	if err != nil {
		logrus.WithError(err).Fatal("explorer: build application")
	}

	addr := cfg.Explorer.ListenAddr
	if addr == "" {
		addr = ":8081"
	}
	srv := NewServer(addr, application)
	logrus.WithField("addr", addr).Info("explorer: listening")
	if err := srv.Start(); err != nil {
		logrus.WithError(err).Fatal("explorer: server stopped")
	}
}
