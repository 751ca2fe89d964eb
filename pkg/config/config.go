// Package config provides a reusable loader for the application's
// configuration files and environment variables, versioned so that
// downstream binaries can depend on a stable API contract.
//
// Version: v0.1.0
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/synnergy-chain/framework/pkg/utils"
)

// Version is the semantic version of this configuration package.
const Version = "v0.1.0"

// Config is the unified configuration for one node process: chain
// identity, store location, ante/gas defaults, and logging.
type Config struct {
	Chain struct {
		ID          string `mapstructure:"id" json:"id"`
		GenesisFile string `mapstructure:"genesis_file" json:"genesis_file"`
	} `mapstructure:"chain" json:"chain"`

	Store struct {
		DataDir   string `mapstructure:"data_dir" json:"data_dir"`
		CacheSize int    `mapstructure:"cache_size" json:"cache_size"`
	} `mapstructure:"store" json:"store"`

	BaseApp struct {
		MaxGas            uint64 `mapstructure:"max_gas" json:"max_gas"`
		MaxMemoCharacters int    `mapstructure:"max_memo_characters" json:"max_memo_characters"`
		MintDenom         string `mapstructure:"mint_denom" json:"mint_denom"`
	} `mapstructure:"baseapp" json:"baseapp"`

	Logging struct {
		Level string `mapstructure:"level" json:"level"`
		File  string `mapstructure:"file" json:"file"`
	} `mapstructure:"logging" json:"logging"`

	Explorer struct {
		ListenAddr string `mapstructure:"listen_addr" json:"listen_addr"`
		Enabled    bool   `mapstructure:"enabled" json:"enabled"`
	} `mapstructure:"explorer" json:"explorer"`
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig Config

// Load reads configuration files and merges any environment-specific
// overrides. The resulting configuration is stored in AppConfig and
// returned. If env is empty, only the default configuration is loaded.
func Load(env string) (*Config, error) {
	viper.SetConfigName("default")
	viper.AddConfigPath("cmd/config")
	viper.AddConfigPath("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		return nil, utils.Wrap(err, "load config")
	}

	if env != "" {
		viper.SetConfigName(env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, utils.Wrap(err, fmt.Sprintf("merge %s config", env))
		}
	}

	viper.AutomaticEnv()

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}
	return &AppConfig, nil
}

// LoadFromEnv loads configuration using the FRAMEWORK_ENV environment
// variable.
func LoadFromEnv() (*Config, error) {
	return Load(utils.EnvOrDefault("FRAMEWORK_ENV", ""))
}
