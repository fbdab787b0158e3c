package commands

import (
	"context"

	"github.com/gasagency/gasagency-deployments/datastore"
	"github.com/gasagency/gasagency-deployments/engine/config"
	"github.com/gasagency/gasagency-deployments/engine/environment"
	"github.com/gasagency/gasagency-deployments/network"
	"github.com/gasagency/gasagency-deployments/pkg/logger"
)

// ConfigLoaderFunc loads the env config file and the network manifests.
type ConfigLoaderFunc func(envFilePath string, manifestPaths []string, lggr logger.Logger) (*config.Config, error)

// EnvironmentLoaderFunc loads the execution environment of a network.
type EnvironmentLoaderFunc func(
	ctx context.Context,
	lggr logger.Logger,
	cfg *config.Config,
	id network.NetworkID,
	opts ...environment.LoadEnvironmentOption,
) (*environment.Environment, error)

// StoreOpenerFunc opens the record store. The caller must call the returned close function.
type StoreOpenerFunc func(ctx context.Context, opts datastore.Options) (datastore.Store, func() error, error)

// Deps holds the injectable dependencies of the commands.
// All fields are optional; nil values use production defaults.
type Deps struct {
	// ConfigLoader loads the configuration.
	// Default: config.Load
	ConfigLoader ConfigLoaderFunc

	// EnvironmentLoader loads the environment of the deploy command.
	// Default: environment.Load
	EnvironmentLoader EnvironmentLoaderFunc

	// StoreOpener opens the record store of the records commands.
	// Default: datastore.Open
	StoreOpener StoreOpenerFunc
}

// applyDefaults fills in nil dependencies with production defaults.
func (d *Deps) applyDefaults() {
	if d.ConfigLoader == nil {
		d.ConfigLoader = config.Load
	}
	if d.EnvironmentLoader == nil {
		d.EnvironmentLoader = environment.Load
	}
	if d.StoreOpener == nil {
		d.StoreOpener = datastore.Open
	}
}
