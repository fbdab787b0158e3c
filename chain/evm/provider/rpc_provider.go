package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/gasagency/gasagency-deployments/chain"
	"github.com/gasagency/gasagency-deployments/chain/evm"
	"github.com/gasagency/gasagency-deployments/chain/evm/provider/rpcclient"
	"github.com/gasagency/gasagency-deployments/network"
	"github.com/gasagency/gasagency-deployments/pkg/logger"
)

// RPCChainProviderConfig holds the configuration to initialize the RPCChainProvider.
type RPCChainProviderConfig struct {
	// Required: A generator for the deployer key, the "deployer" named account.
	DeployerTransactorGen TransactorGenerator
	// Required: At least one RPC must be provided. They are tried in order.
	RPCs []rpcclient.RPC
	// Required: ConfirmFunctor generates the confirmation function of the chain. If in doubt,
	// use ConfirmFuncGeth.
	ConfirmFunctor ConfirmFunctor
	// Optional: Generators for the named accounts after the deployer, e.g. "player".
	UsersTransactorGen []TransactorGenerator
	// Optional: DialConfig controls dial retries. Defaults to rpcclient.DefaultDialConfig.
	DialConfig *rpcclient.DialConfig
	// Optional: Gas overrides gas estimation for every transaction.
	Gas evm.GasSettings
	// Optional: Logger is the logger to use. If not provided, a default logger will be used.
	Logger logger.Logger
}

// validate checks if the RPCChainProviderConfig is valid.
func (c RPCChainProviderConfig) validate() error {
	if c.DeployerTransactorGen == nil {
		return errors.New("deployer transactor generator is required")
	}
	if c.ConfirmFunctor == nil {
		return errors.New("confirm functor is required")
	}
	if len(c.RPCs) == 0 {
		return errors.New("at least one RPC is required")
	}

	return nil
}

var (
	_ chain.Provider = (*RPCChainProvider)(nil)
	_ io.Closer      = (*RPCChainProvider)(nil)
)

// RPCChainProvider provides a chain connected to an EVM node via JSON-RPC.
type RPCChainProvider struct {
	id     network.NetworkID
	config RPCChainProviderConfig

	client *ethclient.Client
	chain  *evm.Chain
}

// NewRPCChainProvider creates a new RPCChainProvider for the network id.
func NewRPCChainProvider(id network.NetworkID, config RPCChainProviderConfig) *RPCChainProvider {
	return &RPCChainProvider{
		id:     id,
		config: config,
	}
}

// Initialize dials the RPCs, verifies that they serve the network's chain id and sets up the
// named accounts.
func (p *RPCChainProvider) Initialize(ctx context.Context) (evm.Chain, error) {
	if p.chain != nil {
		return *p.chain, nil
	}

	if p.config.Logger == nil {
		lggr, err := logger.New()
		if err != nil {
			return evm.Chain{}, fmt.Errorf("failed to create default logger: %w", err)
		}
		p.config.Logger = lggr
	}

	if err := p.config.validate(); err != nil {
		return evm.Chain{}, fmt.Errorf("failed to validate provider config: %w", err)
	}

	chainID := new(big.Int).SetUint64(uint64(p.id))

	deployerKey, err := p.config.DeployerTransactorGen.Generate(chainID)
	if err != nil {
		return evm.Chain{}, fmt.Errorf("failed to generate deployer key: %w", err)
	}

	users := make([]*bind.TransactOpts, 0, len(p.config.UsersTransactorGen))
	for i, g := range p.config.UsersTransactorGen {
		u, gerr := g.Generate(chainID)
		if gerr != nil {
			return evm.Chain{}, fmt.Errorf("failed to generate user transactor %d: %w", i, gerr)
		}

		users = append(users, u)
	}

	dialCfg := rpcclient.DefaultDialConfig()
	if p.config.DialConfig != nil {
		dialCfg = *p.config.DialConfig
	}

	client, err := rpcclient.Dial(ctx, p.config.Logger, p.config.RPCs, chainID, dialCfg)
	if err != nil {
		return evm.Chain{}, fmt.Errorf("failed to connect to network %s: %w", p.id, err)
	}

	confirmFunc, err := p.config.ConfirmFunctor.Generate(p.id, client, deployerKey.From)
	if err != nil {
		client.Close()
		return evm.Chain{}, fmt.Errorf("failed to generate confirm function: %w", err)
	}

	p.client = client
	p.chain = &evm.Chain{
		NetworkID:   p.id,
		Client:      client,
		DeployerKey: deployerKey,
		Users:       users,
		Confirm:     confirmFunc,
		Gas:         p.config.Gas,
	}

	if selector, serr := p.id.ChainSelector(); serr == nil {
		p.config.Logger.Infow("Initialized chain", "network", p.id.String(), "selector", selector)
	}

	return *p.chain, nil
}

// Name returns the name of the RPCChainProvider.
func (*RPCChainProvider) Name() string {
	return "EVM RPC Chain Provider"
}

// NetworkID returns the network the provider connects to.
func (p *RPCChainProvider) NetworkID() network.NetworkID {
	return p.id
}

// Chain returns the initialized chain. Initialize must be called first.
func (p *RPCChainProvider) Chain() evm.Chain {
	return *p.chain
}

// Close closes the RPC client dialed by Initialize. A later Initialize dials again.
func (p *RPCChainProvider) Close() error {
	if p.client != nil {
		p.client.Close()
	}
	p.client = nil
	p.chain = nil

	return nil
}
