// Package commands provides the CLI commands of the deployment tooling.
//
// Usage:
//
//	app := commands.NewRootCommand(commands.Config{Logger: lggr})
//	err := app.ExecuteContext(ctx)
//
// Tests inject their dependencies through Config.Deps:
//
//	commands.NewRootCommand(commands.Config{
//	    Logger: lggr,
//	    Deps:   commands.Deps{EnvironmentLoader: loadSimulated},
//	})
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gasagency/gasagency-deployments/datastore"
	"github.com/gasagency/gasagency-deployments/engine/commands/flags"
	"github.com/gasagency/gasagency-deployments/engine/commands/text"
	"github.com/gasagency/gasagency-deployments/engine/config"
	"github.com/gasagency/gasagency-deployments/network"
	"github.com/gasagency/gasagency-deployments/pkg/logger"
)

// Config holds the configuration of the commands.
type Config struct {
	// Logger is the logger to use. Required.
	Logger logger.Logger

	// Registry holds the deployment parameters per network. Defaults to network.Default().
	Registry *network.Registry

	// Confirmations overrides the confirmation depth per network. Defaults to
	// network.DefaultConfirmations().
	Confirmations map[network.NetworkID]uint64

	// Deps holds optional dependencies that can be overridden.
	// If fields are nil, production defaults are used.
	Deps Deps
}

// deps returns the Deps with defaults applied.
func (c *Config) deps() *Deps {
	c.Deps.applyDefaults()

	return &c.Deps
}

func (c *Config) registry() *network.Registry {
	if c.Registry == nil {
		return network.Default()
	}

	return c.Registry
}

func (c *Config) confirmations() network.Confirmations {
	if c.Confirmations == nil {
		return network.DefaultConfirmations()
	}

	return network.NewConfirmations(c.Confirmations)
}

var (
	rootShort = "Deploy the GasAgency randomness consumer"

	rootLong = text.LongDesc(`
		Deploys the GasAgency randomness consumer to a registered network and waits for the
		network's confirmation depth. Deployed contracts are recorded in the record store.

		Account keys and RPC URLs are read from the env config file or the environment
		(GASAGENCY_DEPLOYER_KEY, GASAGENCY_RPC_MUMBAI, ...).
	`)
)

// NewRootCommand creates the root command with all subcommands.
func NewRootCommand(cfg Config) *cobra.Command {
	cfg.deps()

	cmd := &cobra.Command{
		Use:           "gasagency",
		Short:         rootShort,
		Long:          rootLong,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags.Config(cmd)
	flags.Manifest(cmd)
	flags.Store(cmd)

	cmd.AddCommand(
		newDeployCmd(cfg),
		newNetworksCmd(cfg),
		newRecordsCmd(cfg),
	)

	return cmd
}

// loadConfig loads the configuration named by the persistent flags and applies the store
// overrides.
func loadConfig(cmd *cobra.Command, cfg Config) (*config.Config, error) {
	c, err := cfg.deps().ConfigLoader(
		flags.MustString(cmd.Flags().GetString("config")),
		flags.MustStringSlice(cmd.Flags().GetStringSlice("manifest")),
		cfg.Logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if kind := flags.MustString(cmd.Flags().GetString("store")); kind != "" {
		c.Env.Store.Kind = kind
	}
	if dir := flags.MustString(cmd.Flags().GetString("store-dir")); dir != "" {
		c.Env.Store.Dir = dir
	}

	return c, nil
}

func storeOptions(c *config.Config) datastore.Options {
	return datastore.Options{
		Kind: datastore.Kind(c.Env.Store.Kind),
		Dir:  c.Env.Store.Dir,
		DSN:  c.Env.Store.DSN,
	}
}
