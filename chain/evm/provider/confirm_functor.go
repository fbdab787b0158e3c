package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/gasagency/gasagency-deployments/chain/evm"
	"github.com/gasagency/gasagency-deployments/network"
	"github.com/gasagency/gasagency-deployments/pkg/logger"
)

// ConfirmFunctor creates the confirmation function of a chain.
type ConfirmFunctor interface {
	// Generate returns a function that confirms transactions sent from from.
	Generate(id network.NetworkID, client evm.OnchainClient, from common.Address) (evm.ConfirmFunc, error)
}

// ConfirmFuncGeth returns a ConfirmFunctor which polls the node for the receipt and then for the
// head until the requested depth is reached.
//
// waitMinedTimeout bounds the wait for the receipt only. Zero disables it, leaving the caller's
// context as the only bound.
func ConfirmFuncGeth(waitMinedTimeout time.Duration, opts ...func(*confirmFuncGeth)) ConfirmFunctor {
	cf := &confirmFuncGeth{
		tickInterval:     1 * time.Second, // the same value we have in bind.WaitMined hardcoded in "go-ethereum"
		waitMinedTimeout: waitMinedTimeout,
		lggr:             logger.Nop(),
	}
	for _, o := range opts {
		o(cf)
	}

	return cf
}

// WithTickInterval sets the polling interval.
func WithTickInterval(interval time.Duration) func(*confirmFuncGeth) {
	return func(o *confirmFuncGeth) {
		o.tickInterval = interval
	}
}

// WithConfirmLogger logs the confirmation progress to lggr.
func WithConfirmLogger(lggr logger.Logger) func(*confirmFuncGeth) {
	return func(o *confirmFuncGeth) {
		o.lggr = lggr
	}
}

type confirmFuncGeth struct {
	tickInterval     time.Duration
	waitMinedTimeout time.Duration
	lggr             logger.Logger
}

// Generate returns a function that confirms transactions using the Geth client.
func (g *confirmFuncGeth) Generate(
	id network.NetworkID, client evm.OnchainClient, from common.Address,
) (evm.ConfirmFunc, error) {
	if client == nil {
		return nil, errors.New("client is required")
	}

	return func(ctx context.Context, tx *types.Transaction, confirmations uint64) (evm.Confirmation, error) {
		if tx == nil {
			return evm.Confirmation{}, fmt.Errorf("tx was nil, nothing to confirm on network %d", uint64(id))
		}

		receipt, err := g.waitMined(ctx, client, tx.Hash())
		if err != nil {
			return evm.Confirmation{}, fmt.Errorf("tx %s failed to confirm on network %d: %w",
				tx.Hash().Hex(), uint64(id), err,
			)
		}
		if receipt.Status == types.ReceiptStatusFailed {
			return evm.Confirmation{}, revertError(ctx, client, id, from, tx, receipt)
		}

		block := receipt.BlockNumber.Uint64()
		g.lggr.Debugw("Transaction mined", "tx", tx.Hash().Hex(), "block", block)

		depth, err := WaitForDepth(ctx, g.tickInterval, client, block, confirmations)
		if err != nil {
			return evm.Confirmation{}, fmt.Errorf("tx %s mined in block %d but did not reach %d confirmations on network %d: %w",
				tx.Hash().Hex(), block, confirmations, uint64(id), err,
			)
		}

		return evm.Confirmation{Receipt: receipt, Depth: depth}, nil
	}, nil
}

func (g *confirmFuncGeth) waitMined(ctx context.Context, b bind.DeployBackend, txHash common.Hash) (*types.Receipt, error) {
	if g.waitMinedTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.waitMinedTimeout)
		defer cancel()
	}

	return WaitMinedWithInterval(ctx, g.tickInterval, b, txHash)
}

// WaitMinedWithInterval polls for the receipt of txHash every tick, which allows networks with
// fast blocks to confirm quicker than bind.WaitMined.
func WaitMinedWithInterval(ctx context.Context, tick time.Duration, b bind.DeployBackend, txHash common.Hash) (*types.Receipt, error) {
	queryTicker := time.NewTicker(tick)
	defer queryTicker.Stop()
	for {
		receipt, err := b.TransactionReceipt(ctx, txHash)
		if err == nil && receipt != nil {
			return receipt, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-queryTicker.C:
		}
	}
}

// BlockNumberReader reads the current head.
type BlockNumberReader interface {
	BlockNumber(ctx context.Context) (uint64, error)
}

// WaitForDepth polls the head every tick until the block at minedBlock is buried under
// confirmations blocks, counting minedBlock itself. It returns the depth observed.
func WaitForDepth(
	ctx context.Context, tick time.Duration, b BlockNumberReader, minedBlock, confirmations uint64,
) (uint64, error) {
	queryTicker := time.NewTicker(tick)
	defer queryTicker.Stop()
	for {
		head, err := b.BlockNumber(ctx)
		if err == nil && head >= minedBlock {
			if depth := head - minedBlock + 1; depth >= confirmations {
				return depth, nil
			}
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-queryTicker.C:
		}
	}
}
