// Command gasagency deploys the GasAgency randomness consumer.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gasagency/gasagency-deployments/engine/commands"
	config_env "github.com/gasagency/gasagency-deployments/engine/config/env"
	"github.com/gasagency/gasagency-deployments/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := run(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	lggr, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = lggr.Sync() }()

	return commands.NewRootCommand(commands.Config{Logger: lggr}).ExecuteContext(ctx)
}

// newLogger builds the logger from the log settings in the environment.
func newLogger() (logger.Logger, error) {
	envCfg, err := config_env.LoadEnv()
	if err != nil {
		return nil, fmt.Errorf("load log settings: %w", err)
	}

	cfg, err := logger.ParseConfig(envCfg.Log.Level, envCfg.Log.Development)
	if err != nil {
		return nil, err
	}

	return cfg.New()
}
