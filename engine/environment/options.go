package environment

import (
	"time"

	"github.com/gasagency/gasagency-deployments/artifact"
	"github.com/gasagency/gasagency-deployments/chain"
	"github.com/gasagency/gasagency-deployments/datastore"
	"github.com/gasagency/gasagency-deployments/network"
	"github.com/gasagency/gasagency-deployments/operations"
)

// LoadEnvironmentOptions contains configuration options for Load.
type LoadEnvironmentOptions struct {
	reporter       operations.Reporter
	registry       *network.Registry
	confirmations  network.Confirmations
	confirmTimeout time.Duration
	artifacts      artifact.Source
	artifactsDir   string
	provider       chain.Provider
	store          datastore.Store
}

// LoadEnvironmentOption is a function that modifies LoadEnvironmentOptions.
type LoadEnvironmentOption func(*LoadEnvironmentOptions)

// WithReporter sets the reporter receiving the operation reports.
func WithReporter(reporter operations.Reporter) LoadEnvironmentOption {
	return func(o *LoadEnvironmentOptions) {
		o.reporter = reporter
	}
}

// WithRegistry replaces the built-in network registry.
func WithRegistry(registry *network.Registry) LoadEnvironmentOption {
	return func(o *LoadEnvironmentOptions) {
		o.registry = registry
	}
}

// WithConfirmations replaces the built-in confirmation overrides.
func WithConfirmations(confirmations network.Confirmations) LoadEnvironmentOption {
	return func(o *LoadEnvironmentOptions) {
		o.confirmations = confirmations
	}
}

// WithConfirmTimeout bounds the confirmation wait of a deployment.
func WithConfirmTimeout(timeout time.Duration) LoadEnvironmentOption {
	return func(o *LoadEnvironmentOptions) {
		o.confirmTimeout = timeout
	}
}

// WithArtifactsDir reads compiled artifacts from dir instead of "artifacts".
func WithArtifactsDir(dir string) LoadEnvironmentOption {
	return func(o *LoadEnvironmentOptions) {
		o.artifactsDir = dir
	}
}

// WithArtifacts sets the artifact source, taking precedence over WithArtifactsDir.
func WithArtifacts(src artifact.Source) LoadEnvironmentOption {
	return func(o *LoadEnvironmentOptions) {
		o.artifacts = src
	}
}

// WithChainProvider replaces the RPC chain provider built from the configuration, e.g. with a
// simulated chain.
func WithChainProvider(p chain.Provider) LoadEnvironmentOption {
	return func(o *LoadEnvironmentOptions) {
		o.provider = p
	}
}

// WithStore replaces the record store built from the configuration.
func WithStore(store datastore.Store) LoadEnvironmentOption {
	return func(o *LoadEnvironmentOptions) {
		o.store = store
	}
}
