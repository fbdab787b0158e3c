package evm

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"

	"github.com/gasagency/gasagency-deployments/artifact"
	"github.com/gasagency/gasagency-deployments/deployment"
	"github.com/gasagency/gasagency-deployments/pkg/logger"
)

var _ deployment.Toolchain = (*Toolchain)(nil)

// Toolchain deploys compiled artifacts to an EVM chain.
type Toolchain struct {
	chain     Chain
	artifacts artifact.Source
	lggr      logger.Logger
}

// NewToolchain returns a Toolchain deploying artifacts from src to chain.
func NewToolchain(chain Chain, src artifact.Source, lggr logger.Logger) (*Toolchain, error) {
	if chain.Client == nil {
		return nil, errors.New("chain client is required")
	}
	if chain.Confirm == nil {
		return nil, errors.New("chain confirm function is required")
	}
	if src == nil {
		return nil, errors.New("artifact source is required")
	}
	if lggr == nil {
		lggr = logger.Nop()
	}

	return &Toolchain{chain: chain, artifacts: src, lggr: lggr}, nil
}

// SubmitDeployment sends the constructor transaction signed by req.From and waits for
// req.Confirmations blocks. A positive req.ConfirmTimeout bounds the wait only.
func (t *Toolchain) SubmitDeployment(ctx context.Context, req deployment.Request) (deployment.Submission, error) {
	art, err := t.artifacts.Artifact(req.ContractName)
	if err != nil {
		return deployment.Submission{}, err
	}

	args, err := CoerceArgs(art.ABI.Constructor.Inputs, req.Args)
	if err != nil {
		return deployment.Submission{}, fmt.Errorf("invalid %s constructor arguments: %w", req.ContractName, err)
	}

	opts, err := t.chain.TransactOpts(ctx, req.From)
	if err != nil {
		return deployment.Submission{}, err
	}

	addr, tx, _, err := bind.DeployContract(opts, art.ABI, art.Bytecode, t.chain.Client, args...)
	if err != nil {
		return deployment.Submission{}, fmt.Errorf("failed to send %s deployment on %s: %w", req.ContractName, t.chain, err)
	}

	t.lggr.Infow("Sent deployment transaction",
		"contract", req.ContractName,
		"network", t.chain.String(),
		"tx", tx.Hash().Hex(),
		"address", addr.Hex(),
		"nonce", tx.Nonce(),
		"waitConfirmations", req.Confirmations,
	)

	waitCtx := ctx
	if req.ConfirmTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, req.ConfirmTimeout)
		defer cancel()
	}

	conf, err := t.chain.Confirm(waitCtx, tx, req.Confirmations)
	if err != nil {
		if waitCtx.Err() != nil {
			return deployment.Submission{}, &deployment.WaitError{TxHash: tx.Hash(), Err: err}
		}

		return deployment.Submission{}, err
	}

	return deployment.Submission{
		Address:       addr,
		TxHash:        tx.Hash(),
		BlockNumber:   conf.Receipt.BlockNumber.Uint64(),
		Confirmations: conf.Depth,
	}, nil
}
