package provider

import (
	"context"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/ethereum/go-ethereum/params"
	"github.com/stretchr/testify/require"

	"github.com/gasagency/gasagency-deployments/chain"
	"github.com/gasagency/gasagency-deployments/chain/evm"
	"github.com/gasagency/gasagency-deployments/network"
)

var (
	// simChainID is the signing chain id of every simulated chain.
	simChainID = params.AllDevChainProtocolChanges.ChainID
	// prefundAmountWei is the balance of every generated account: 1,000,000 ether.
	prefundAmountWei = new(big.Int).Mul(big.NewInt(1_000_000), big.NewInt(params.Ether))
)

// SimChainProviderConfig holds the configuration to initialize the SimChainProvider.
type SimChainProviderConfig struct {
	// Optional: NetworkID labels the simulated chain. Defaults to hardhat.
	NetworkID network.NetworkID
	// Optional: NumAdditionalAccounts is the number of named accounts generated after the
	// deployer, e.g. 1 for the "player" account.
	NumAdditionalAccounts uint
	// Optional: BlockTime configures the time between blocks being committed. By default blocks
	// are only mined when a transaction is confirmed or Commit is called.
	BlockTime time.Duration
	// Optional: Gas overrides gas estimation.
	Gas evm.GasSettings
}

var _ chain.Provider = (*SimChainProvider)(nil)

// SimChainProvider manages a simulated chain backed by go-ethereum's in memory backend.
type SimChainProvider struct {
	t      *testing.T
	config SimChainProviderConfig

	client *SimClient
	chain  *evm.Chain
}

// NewSimChainProvider creates a new SimChainProvider with the given configuration.
func NewSimChainProvider(t *testing.T, config SimChainProviderConfig) *SimChainProvider {
	t.Helper()

	if config.NetworkID == 0 {
		config.NetworkID = network.Hardhat
	}

	return &SimChainProvider{
		t:      t,
		config: config,
	}
}

// Initialize sets up the simulated chain with a prefunded deployer and additional accounts.
//
// Its Confirm function mines a block to include the transaction and then mines empty blocks until
// the requested depth is reached.
func (p *SimChainProvider) Initialize(_ context.Context) (evm.Chain, error) {
	if p.chain != nil {
		return *p.chain, nil
	}

	key, err := crypto.GenerateKey()
	require.NoError(p.t, err, "failed to generate deployer key")

	deployer, err := bind.NewKeyedTransactorWithChainID(key, simChainID)
	require.NoError(p.t, err)

	genesis := types.GenesisAlloc{
		deployer.From: {Balance: prefundAmountWei},
	}

	users := make([]*bind.TransactOpts, 0, p.config.NumAdditionalAccounts)
	for range p.config.NumAdditionalAccounts {
		key, err := crypto.GenerateKey()
		require.NoError(p.t, err)

		transactor, err := bind.NewKeyedTransactorWithChainID(key, simChainID)
		require.NoError(p.t, err)

		users = append(users, transactor)
		genesis[transactor.From] = types.Account{Balance: prefundAmountWei}
	}

	backend := simulated.NewBackend(genesis, simulated.WithBlockGasLimit(50000000))
	p.t.Cleanup(func() { _ = backend.Close() })
	backend.Commit()

	if p.config.BlockTime > 0 {
		startAutoMine(p.t, backend, p.config.BlockTime)
	}

	client := NewSimClient(p.t, backend)
	id := p.config.NetworkID

	p.client = client
	p.chain = &evm.Chain{
		NetworkID:   id,
		Client:      client,
		DeployerKey: deployer,
		Users:       users,
		Gas:         p.config.Gas,
		Confirm: func(ctx context.Context, tx *types.Transaction, confirmations uint64) (evm.Confirmation, error) {
			if tx == nil {
				return evm.Confirmation{}, fmt.Errorf("tx was nil, nothing to confirm on network %d", uint64(id))
			}

			client.Commit()

			receipt, err := bind.WaitMined(ctx, client, tx)
			if err != nil {
				return evm.Confirmation{}, fmt.Errorf("tx %s failed to confirm on network %d: %w",
					tx.Hash().Hex(), uint64(id), err,
				)
			}
			if receipt.Status == types.ReceiptStatusFailed {
				return evm.Confirmation{}, revertError(ctx, client, id, deployer.From, tx, receipt)
			}

			block := receipt.BlockNumber.Uint64()
			for {
				head, err := client.BlockNumber(ctx)
				if err != nil {
					return evm.Confirmation{}, fmt.Errorf("failed to read head on network %d: %w", uint64(id), err)
				}
				if depth := head - block + 1; depth >= confirmations {
					return evm.Confirmation{Receipt: receipt, Depth: depth}, nil
				}
				client.Commit()
			}
		},
	}

	return *p.chain, nil
}

// Name returns the name of the SimChainProvider.
func (*SimChainProvider) Name() string {
	return "Simulated EVM Chain Provider"
}

// NetworkID returns the network the simulated chain stands in for.
func (p *SimChainProvider) NetworkID() network.NetworkID {
	return p.config.NetworkID
}

// Chain returns the simulated chain. Initialize must be called first.
func (p *SimChainProvider) Chain() evm.Chain {
	return *p.chain
}

// Client returns the simulated client, which can mine blocks. Initialize must be called first.
func (p *SimChainProvider) Client() *SimClient {
	return p.client
}

// startAutoMine commits a block every blockTime until the test ends.
func startAutoMine(t *testing.T, backend *simulated.Backend, blockTime time.Duration) {
	t.Helper()

	ctx := t.Context()
	ticker := time.NewTicker(blockTime)
	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				backend.Commit()
			case <-ctx.Done():
				return
			}
		}
	}()
}
