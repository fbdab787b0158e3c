package evm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/gasagency/gasagency-deployments/network"
)

// Confirmation is the result of waiting on a transaction.
type Confirmation struct {
	Receipt *types.Receipt
	// Depth is the number of blocks from the receipt's block to the head, inclusive.
	Depth uint64
}

// ConfirmFunc waits until tx is mined and buried under the given number of confirmations. It
// returns an error if the transaction reverted or ctx is done first.
type ConfirmFunc func(ctx context.Context, tx *types.Transaction, confirmations uint64) (Confirmation, error)

// OnchainClient is an EVM chain client.
// For EVM specifically we can use existing geth interface to abstract chain clients.
type OnchainClient interface {
	bind.ContractBackend
	bind.DeployBackend

	BlockNumber(ctx context.Context) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// GasSettings overrides gas estimation for every transaction sent on the chain. Zero values keep
// the client's estimates.
type GasSettings struct {
	Limit    uint64
	PriceWei *big.Int
}

// Chain represents an EVM network the tooling deploys to.
type Chain struct {
	NetworkID network.NetworkID

	Client OnchainClient
	// DeployerKey signs deployments. It is the "deployer" named account.
	DeployerKey *bind.TransactOpts
	Confirm     ConfirmFunc
	// Users are additional named accounts, distinct from the deployer key.
	Users []*bind.TransactOpts
	Gas   GasSettings
}

// String returns the network name and id "<name> (<id>)".
func (c Chain) String() string {
	return fmt.Sprintf("%s (%d)", c.NetworkID, uint64(c.NetworkID))
}

// Selector returns the chain selector of the network.
func (c Chain) Selector() (uint64, error) {
	return c.NetworkID.ChainSelector()
}

// Accounts returns the deployer followed by the users, in named account order.
func (c Chain) Accounts() []*bind.TransactOpts {
	accounts := make([]*bind.TransactOpts, 0, len(c.Users)+1)
	if c.DeployerKey != nil {
		accounts = append(accounts, c.DeployerKey)
	}

	return append(accounts, c.Users...)
}

// TransactOpts returns a copy of the signer for from, bound to ctx and carrying the chain's gas
// settings.
func (c Chain) TransactOpts(ctx context.Context, from common.Address) (*bind.TransactOpts, error) {
	for _, acc := range c.Accounts() {
		if acc.From != from {
			continue
		}

		opts := *acc
		opts.Context = ctx
		if c.Gas.Limit > 0 {
			opts.GasLimit = c.Gas.Limit
		}
		if c.Gas.PriceWei != nil && c.Gas.PriceWei.Sign() > 0 {
			opts.GasPrice = new(big.Int).Set(c.Gas.PriceWei)
		}

		return &opts, nil
	}

	return nil, fmt.Errorf("no signer for account %s on %s", from.Hex(), c)
}
