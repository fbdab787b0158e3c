// Package config loads the secrets and settings of the deployment tooling from the environment
// and an optional config file.
package config

import (
	"errors"
	"io/fs"
	"os"
	"slices"

	"github.com/spf13/viper"
)

// AccountsConfig holds the keys of the named accounts.
//
// WARNING: This data type contains sensitive fields and should not be logged or set in file
// configuration.
type AccountsConfig struct {
	DeployerKey string `mapstructure:"deployer_key" yaml:"deployer_key"` // Secret: The private key of the "deployer" named account.
	PlayerKey   string `mapstructure:"player_key" yaml:"player_key"`     // Secret: The private key of the "player" named account.
}

// RPCConfig holds RPC URLs which take precedence over the network manifest.
type RPCConfig struct {
	Goerli  string `mapstructure:"goerli" yaml:"goerli"`
	Mumbai  string `mapstructure:"mumbai" yaml:"mumbai"`
	Rinkeby string `mapstructure:"rinkeby" yaml:"rinkeby"`
}

// ExplorerConfig holds block explorer and price feed API keys shared with the contract project.
//
// WARNING: This data type contains sensitive fields and should not be logged.
type ExplorerConfig struct {
	EtherscanAPIKey     string `mapstructure:"etherscan_api_key" yaml:"etherscan_api_key"`         // Secret
	PolygonscanAPIKey   string `mapstructure:"polygonscan_api_key" yaml:"polygonscan_api_key"`     // Secret
	CoinmarketcapAPIKey string `mapstructure:"coinmarketcap_api_key" yaml:"coinmarketcap_api_key"` // Secret
}

// LogConfig configures the runtime logger.
type LogConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`             // e.g. debug, info, warn
	Development bool   `mapstructure:"development" yaml:"development"` // Use the console encoder
}

// StoreConfig configures where deployment records are kept.
type StoreConfig struct {
	Kind string `mapstructure:"kind" yaml:"kind"` // file, postgres or memory
	Dir  string `mapstructure:"dir" yaml:"dir"`   // Root of the file store, defaults to "deployments"
	DSN  string `mapstructure:"dsn" yaml:"dsn"`   // Secret: postgres connection string
}

// MetricsConfig configures the deployment metrics.
type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url" yaml:"pushgateway_url"` // Metrics are pushed when set
}

// Config wraps the entire environment configuration.
type Config struct {
	Accounts AccountsConfig `mapstructure:"accounts" yaml:"accounts"`
	RPC      RPCConfig      `mapstructure:"rpc" yaml:"rpc"`
	Explorer ExplorerConfig `mapstructure:"explorer" yaml:"explorer"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Store    StoreConfig    `mapstructure:"store" yaml:"store"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
}

// Load loads the config from the file path, falling back to env vars if the file does not exist.
// If the file exists, any env vars that are set will override the values loaded from the file.
func Load(filePath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(filePath)

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	if _, err := os.Stat(filePath); !errors.Is(err, fs.ErrNotExist) {
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	err := v.Unmarshal(cfg)

	return cfg, err
}

// LoadEnv loads the config from the environment variables.
func LoadEnv() (*Config, error) {
	v := newViper()

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	cfg := &Config{}
	err := v.Unmarshal(cfg)

	return cfg, err
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("log.level", "info")
	v.SetDefault("store.kind", "file")
	v.SetDefault("store.dir", "deployments")

	return v
}

var (
	// envBindings maps a config key to the environment variables that can provide its value. The
	// first name is the preferred one, the second is the name used by the hardhat project's .env
	// file. The first variable that is set wins.
	envBindings = map[string][]string{
		"accounts.deployer_key":          {"GASAGENCY_DEPLOYER_KEY", "PRIVATE_KEY"},
		"accounts.player_key":            {"GASAGENCY_PLAYER_KEY", "PLAYER_PRIVATE_KEY"},
		"rpc.goerli":                     {"GASAGENCY_RPC_GOERLI", "GOERLI_RPC_URL"},
		"rpc.mumbai":                     {"GASAGENCY_RPC_MUMBAI", "POLYGON_MUMBAI_RPC_URL", "MUMBAI_RPC_URL"},
		"rpc.rinkeby":                    {"GASAGENCY_RPC_RINKEBY", "RINKEBY_RPC_URL"},
		"explorer.etherscan_api_key":     {"GASAGENCY_ETHERSCAN_API_KEY", "ETHERSCAN_API_KEY"},
		"explorer.polygonscan_api_key":   {"GASAGENCY_POLYGONSCAN_API_KEY", "POLYGONSCAN_API_KEY"},
		"explorer.coinmarketcap_api_key": {"GASAGENCY_COINMARKETCAP_API_KEY", "COINMARKETCAP_API_KEY"},
		"log.level":                      {"GASAGENCY_LOG_LEVEL", "LOG_LEVEL"},
		"log.development":                {"GASAGENCY_LOG_DEVELOPMENT"},
		"store.kind":                     {"GASAGENCY_STORE_KIND"},
		"store.dir":                      {"GASAGENCY_STORE_DIR"},
		"store.dsn":                      {"GASAGENCY_STORE_DSN", "DATABASE_URL"},
		"metrics.pushgateway_url":        {"GASAGENCY_PUSHGATEWAY_URL"},
	}
)

// bindEnvs binds the environment variables to the viper instance.
func bindEnvs(v *viper.Viper) error {
	for key, envs := range envBindings {
		inputs := slices.Insert(slices.Clone(envs), 0, key)

		if err := v.BindEnv(inputs...); err != nil {
			return err
		}
	}

	return nil
}
