package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/gasagency/gasagency-deployments/deployment"
	"github.com/gasagency/gasagency-deployments/engine/commands/flags"
	"github.com/gasagency/gasagency-deployments/engine/commands/text"
	"github.com/gasagency/gasagency-deployments/engine/environment"
	"github.com/gasagency/gasagency-deployments/network"
)

var (
	deployShort = "Deploy the contract to a network"

	deployLong = text.LongDesc(`
		Deploys the GasAgency contract from the deployer account with the constructor arguments
		registered for the network, and waits for the network's confirmation depth.

		Nothing is retried. A network without a registry entry is rejected before anything is
		sent.
	`)

	deployExample = text.Examples(`
		# Deploy to mumbai and wait for 6 confirmations
		gasagency deploy --network mumbai

		# Give up waiting after 10 minutes
		gasagency deploy -n 80001 --timeout 10m
	`)
)

type deployFlags struct {
	timeout      time.Duration
	artifactsDir string
}

func newDeployCmd(cfg Config) *cobra.Command {
	var f deployFlags

	cmd := &cobra.Command{
		Use:     "deploy",
		Short:   deployShort,
		Long:    deployLong,
		Example: deployExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDeploy(cmd, cfg, f)
		},
	}

	flags.Network(cmd)
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Bound on the confirmation wait (0 waits until interrupted)")
	cmd.Flags().StringVar(&f.artifactsDir, "artifacts", environment.DefaultArtifactsDir, "Directory of the compiled hardhat artifacts")

	return cmd
}

func runDeploy(cmd *cobra.Command, cfg Config, f deployFlags) error {
	deps := cfg.deps()
	ctx := cmd.Context()

	id, err := network.ParseNetworkID(flags.MustString(cmd.Flags().GetString("network")))
	if err != nil {
		return err
	}

	c, err := loadConfig(cmd, cfg)
	if err != nil {
		return err
	}

	env, err := deps.EnvironmentLoader(ctx, cfg.Logger, c, id,
		environment.WithRegistry(cfg.registry()),
		environment.WithConfirmations(cfg.confirmations()),
		environment.WithConfirmTimeout(f.timeout),
		environment.WithArtifactsDir(f.artifactsDir),
	)
	if err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}
	defer func() {
		if cerr := env.Close(); cerr != nil {
			cfg.Logger.Warnw("Failed to close environment", "error", cerr)
		}
	}()

	rec, err := env.Deploy(ctx)
	env.PushMetrics(ctx)
	if err != nil {
		return err
	}

	printRecord(cmd.OutOrStdout(), rec)

	return nil
}

func printRecord(w io.Writer, rec deployment.Record) {
	fmt.Fprintf(w, "Deployed %s to %s (%d)\n", rec.Contract, rec.Network, uint64(rec.NetworkID))
	fmt.Fprintf(w, "  address:       %s\n", rec.Address.Hex())
	fmt.Fprintf(w, "  transaction:   %s\n", rec.TxHash.Hex())
	fmt.Fprintf(w, "  block:         %d\n", rec.BlockNumber)
	fmt.Fprintf(w, "  confirmations: %d\n", rec.Confirmations)
	fmt.Fprintf(w, "  deployer:      %s\n", rec.Deployer.Hex())
}
