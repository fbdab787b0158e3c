// Package environment builds the execution context of a deployment: the active network, its
// chain with the named accounts, and the services a deployment reports to.
package environment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/gasagency/gasagency-deployments/artifact"
	"github.com/gasagency/gasagency-deployments/chain"
	"github.com/gasagency/gasagency-deployments/chain/evm"
	"github.com/gasagency/gasagency-deployments/chain/evm/provider"
	"github.com/gasagency/gasagency-deployments/datastore"
	"github.com/gasagency/gasagency-deployments/deployment"
	"github.com/gasagency/gasagency-deployments/engine/config"
	"github.com/gasagency/gasagency-deployments/network"
	"github.com/gasagency/gasagency-deployments/operations"
	"github.com/gasagency/gasagency-deployments/pkg/logger"
	"github.com/gasagency/gasagency-deployments/pkg/metrics"
)

// DefaultArtifactsDir is where hardhat writes compiled artifacts.
const DefaultArtifactsDir = "artifacts"

// Environment is the execution context of a deployment on a single network.
type Environment struct {
	NetworkID    network.NetworkID
	Chain        evm.Chain
	Logger       logger.Logger
	Orchestrator *deployment.Orchestrator
	Store        datastore.Store
	Metrics      *metrics.Metrics

	pushgatewayURL string
	closeFns       []func() error
}

// Load resolves id against the registry, connects to its chain and opens the record store.
//
// A network without a registry entry fails before any connection is made.
func Load(
	ctx context.Context,
	lggr logger.Logger,
	cfg *config.Config,
	id network.NetworkID,
	opts ...LoadEnvironmentOption,
) (*Environment, error) {
	options := &LoadEnvironmentOptions{
		reporter:      operations.NewMemoryReporter(),
		registry:      network.Default(),
		confirmations: network.DefaultConfirmations(),
		artifactsDir:  DefaultArtifactsDir,
	}
	for _, opt := range opts {
		opt(options)
	}

	if _, err := options.registry.Resolve(id); err != nil {
		return nil, err
	}

	p := options.provider
	if p == nil {
		p = newRPCProvider(lggr, cfg, id)
	}
	if p.NetworkID() != id {
		return nil, fmt.Errorf("chain provider %q serves network %s, want %s", p.Name(), p.NetworkID(), id)
	}

	c, err := p.Initialize(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s: %w", p.Name(), err)
	}

	// Providers holding a connection, such as the RPC provider, are closed with the environment.
	var closeFns []func() error
	if closer, ok := p.(io.Closer); ok {
		closeFns = append(closeFns, closer.Close)
	}
	fail := func(err error) (*Environment, error) {
		for _, fn := range closeFns {
			err = errors.Join(err, fn())
		}

		return nil, err
	}

	src := options.artifacts
	if src == nil {
		src = artifact.NewDirSource(options.artifactsDir)
	}

	tc, err := evm.NewToolchain(c, src, lggr.Named("toolchain"))
	if err != nil {
		return fail(err)
	}

	orchestrator, err := deployment.NewOrchestrator(deployment.Config{
		Registry:       options.registry,
		Confirmations:  options.confirmations,
		Toolchain:      tc,
		Logger:         lggr.Named("orchestrator"),
		ConfirmTimeout: options.confirmTimeout,
		Reporter:       options.reporter,
	})
	if err != nil {
		return fail(err)
	}

	env := &Environment{
		NetworkID:      id,
		Chain:          c,
		Logger:         lggr,
		Orchestrator:   orchestrator,
		Store:          options.store,
		Metrics:        metrics.New(),
		pushgatewayURL: cfg.Env.Metrics.PushgatewayURL,
		closeFns:       closeFns,
	}

	if env.Store == nil {
		store, closeFn, serr := datastore.Open(ctx, datastore.Options{
			Kind: datastore.Kind(cfg.Env.Store.Kind),
			Dir:  cfg.Env.Store.Dir,
			DSN:  cfg.Env.Store.DSN,
		})
		if serr != nil {
			return fail(fmt.Errorf("failed to open record store: %w", serr))
		}
		env.Store = store
		env.closeFns = append(env.closeFns, closeFn)
	}

	lggr.Infow("Loaded environment",
		"network", id.String(),
		"provider", p.Name(),
		"accounts", len(c.Accounts()),
	)

	return env, nil
}

// newRPCProvider builds the RPC provider of id from the manifest and the account keys.
func newRPCProvider(lggr logger.Logger, cfg *config.Config, id network.NetworkID) chain.Provider {
	manifest := cfg.Networks.Network(id)

	var users []provider.TransactorGenerator
	if cfg.Env.Accounts.PlayerKey != "" {
		users = append(users, provider.TransactorFromRaw(cfg.Env.Accounts.PlayerKey))
	}

	return provider.NewRPCChainProvider(id, provider.RPCChainProviderConfig{
		DeployerTransactorGen: provider.TransactorFromRaw(cfg.Env.Accounts.DeployerKey),
		UsersTransactorGen:    users,
		RPCs:                  manifest.RPCClients(),
		ConfirmFunctor:        provider.ConfirmFuncGeth(0, provider.WithConfirmLogger(lggr.Named("confirm"))),
		Gas:                   manifest.Gas.Settings(),
		Logger:                lggr,
	})
}

// NamedAccount returns the address of a named account such as "deployer" or "player".
func (e *Environment) NamedAccount(name string) (common.Address, error) {
	idx, ok := namedAccounts[name]
	if !ok {
		return common.Address{}, fmt.Errorf("unknown named account %q", name)
	}

	accounts := e.Chain.Accounts()
	if idx >= len(accounts) {
		return common.Address{}, fmt.Errorf("named account %q is not configured on %s", name, e.Chain)
	}

	return accounts[idx].From, nil
}

// Deploy deploys the contract from the deployer account, saves the record and records the
// attempt in the metrics.
//
// When the record cannot be saved the deployment has still happened, so the record is returned
// together with the error.
func (e *Environment) Deploy(ctx context.Context) (deployment.Record, error) {
	deployer, err := e.NamedAccount(AccountDeployer)
	if err != nil {
		return deployment.Record{}, err
	}

	start := time.Now()
	rec, err := e.Orchestrator.Deploy(ctx, e.NetworkID, deployer)
	e.Metrics.ObserveDeployment(e.NetworkID.String(), result(err), time.Since(start))
	if err != nil {
		return deployment.Record{}, err
	}
	e.Metrics.SetConfirmations(e.NetworkID.String(), rec.Confirmations)

	if err = e.Store.Save(ctx, rec); err != nil {
		return rec, fmt.Errorf("%s deployed at %s but the record was not saved: %w", rec.Contract, rec.Address.Hex(), err)
	}

	return rec, nil
}

// PushMetrics pushes the metrics when a pushgateway is configured. Failures are logged only.
func (e *Environment) PushMetrics(ctx context.Context) {
	if e.pushgatewayURL == "" {
		return
	}

	if err := e.Metrics.Push(ctx, e.pushgatewayURL, e.NetworkID.String()); err != nil {
		e.Logger.Warnw("Failed to push metrics", "error", err)
	}
}

// Close releases the resources opened by Load: the record store it opened and the chain
// provider's connection.
func (e *Environment) Close() error {
	var errs []error
	for _, fn := range e.closeFns {
		errs = append(errs, fn())
	}

	return errors.Join(errs...)
}

func result(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, deployment.ErrConfirmationTimeout):
		return metrics.ResultTimeout
	case errors.Is(err, deployment.ErrDeploymentFailed):
		return metrics.ResultFailed
	default:
		return metrics.ResultRejected
	}
}
