// Command appd is the node daemon: start the ABCI application, run a
// one-shot genesis init, or issue a read-only query against the last
// committed state. Follows cmd/synnergy/main.go's root-command-plus-
// subcommand cobra layout.
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/synnergy-chain/framework/app"
	"github.com/synnergy-chain/framework/pkg/config"
	"github.com/synnergy-chain/framework/store/iavl"
	"github.com/synnergy-chain/framework/store/rootmulti"
	"github.com/synnergy-chain/framework/types"
	"github.com/synnergy-chain/framework/x/auth"
	"github.com/synnergy-chain/framework/x/bank"
	"github.com/synnergy-chain/framework/x/distribution"
	"github.com/synnergy-chain/framework/x/gov"
	"github.com/synnergy-chain/framework/x/ibc"
	"github.com/synnergy-chain/framework/x/params"
	"github.com/synnergy-chain/framework/x/staking"
	"github.com/synnergy-chain/framework/x/upgrade"
)

// nodeDBStoreKeys mirrors app's fixed module store-key set; kept here
// rather than exported from app (app.NewApp accepts NodeDBs, it does not
// open them; each one is opened below through app.NewNodeDB).
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
			return nil, fmt.Errorf("appd: open store %q: %w", key, err)
		}
		dbs[key] = db
	}
	return dbs, nil
}

func readGenesisFile(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	return os.ReadFile(path)
}

func main() {
	root := &cobra.Command{Use: "appd", Short: "framework chain node daemon"}
	root.AddCommand(startCmd(), initCmd(), queryCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(env string) (*config.Config, error) {
	if env == "" {
		env = os.Getenv("FRAMEWORK_ENV")
	}
	cfg, err := config.Load(env)
	if err != nil {
		return nil, err
	}
	if cfg.Store.CacheSize == 0 {
		cfg.Store.CacheSize = 1000
	}
	return cfg, nil
}

func startCmd() *cobra.Command {
	var env string
	cmd := &cobra.Command{
		Use:   "start",
		Short: "open the stores, build the ABCI application, log its last height and app-hash, and exit (no ABCI connection is served)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(env)
			if err != nil {
				return err
			}
			dbs, err := openNodeDBs(cfg)
			if err != nil {
				return err
			}
			application, _, err := app.NewApp(cfg.Chain.ID, dbs)
			if err != nil {
				return err
			}
			info := application.Info()
			logrus.WithFields(logrus.Fields{
				"chain_id": cfg.Chain.ID,
				"height":   info.LastBlockHeight,
				"app_hash": hex.EncodeToString(info.LastBlockAppHash),
			}).Info("appd: application built; no ABCI connection is served, exiting")
			return nil
		},
	}
	cmd.Flags().StringVar(&env, "env", "", "configuration environment overlay (FRAMEWORK_ENV if unset)")
	return cmd
}

func initCmd() *cobra.Command {
	var env, chainID string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "initialize a fresh data directory from the configured genesis file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(env)
			if err != nil {
				return err
			}
			if chainID != "" {
				cfg.Chain.ID = chainID
			}
			dbs, err := openNodeDBs(cfg)
			if err != nil {
				return err
			}
			application, _, err := app.NewApp(cfg.Chain.ID, dbs)
			if err != nil {
				return err
			}
			genesisBytes, err := readGenesisFile(cfg.Chain.GenesisFile)
			if err != nil {
				return err
			}
			if _, err := application.InitChain(types.Header{ChainID: cfg.Chain.ID}, genesisBytes); err != nil {
				return err
			}
			if _, err := application.Commit(); err != nil {
				return err
			}
			logrus.WithField("chain_id", cfg.Chain.ID).Info("appd: genesis applied and committed")
			return nil
		},
	}
	cmd.Flags().StringVar(&env, "env", "", "configuration environment overlay")
	cmd.Flags().StringVar(&chainID, "chain-id", "", "override the configured chain id")
	return cmd
}

func queryCmd() *cobra.Command {
	var env string
	cmd := &cobra.Command{
		Use:   "query [path] [data]",
		Short: "run a read-only query against the last committed state",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(env)
			if err != nil {
				return err
			}
			dbs, err := openNodeDBs(cfg)
			if err != nil {
				return err
			}
			application, _, err := app.NewApp(cfg.Chain.ID, dbs)
			if err != nil {
				return err
			}
			resp := application.Query(args[0], []byte(args[1]), 0)
			if resp.Code != 0 {
				return fmt.Errorf("query failed (code %d): %s", resp.Code, resp.Log)
			}
			fmt.Println(string(resp.Value))
			return nil
		},
	}
	cmd.Flags().StringVar(&env, "env", "", "configuration environment overlay")
	return cmd
}
