// Package config aggregates the configuration of the deployment tooling.
package config

import (
	"fmt"

	config_env "github.com/gasagency/gasagency-deployments/engine/config/env"
	config_network "github.com/gasagency/gasagency-deployments/engine/config/network"
	"github.com/gasagency/gasagency-deployments/network"
	"github.com/gasagency/gasagency-deployments/pkg/logger"
)

// Config combines the network manifest and the environment configuration.
type Config struct {
	// Networks holds the RPC endpoints and gas settings of each network.
	Networks *config_network.Config

	// Env contains secrets and runtime settings. It must not be logged.
	Env *config_env.Config
}

// Load loads the env config from envFilePath (falling back to the environment when the file does
// not exist) and the network manifests at manifestPaths over the bundled manifest. RPC URLs set
// in the env config replace the manifest RPCs of their network.
func Load(envFilePath string, manifestPaths []string, lggr logger.Logger) (*Config, error) {
	envCfg, err := config_env.Load(envFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load env config: %w", err)
	}

	networks, err := config_network.Load(manifestPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load networks: %w", err)
	}

	for id, url := range map[network.NetworkID]string{
		network.Goerli:  envCfg.RPC.Goerli,
		network.Mumbai:  envCfg.RPC.Mumbai,
		network.Rinkeby: envCfg.RPC.Rinkeby,
	} {
		if url == "" {
			continue
		}

		networks.SetRPC(id, "env", url)
		lggr.Debugw("Using RPC from environment", "network", id.String())
	}

	return &Config{
		Networks: networks,
		Env:      envCfg,
	}, nil
}
