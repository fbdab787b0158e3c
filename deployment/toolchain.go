package deployment

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Toolchain submits contract deployments on behalf of the orchestrator.
//
// SubmitDeployment signs and broadcasts the constructor transaction from Request.From and blocks
// until the transaction is buried under Request.Confirmations blocks, the transaction fails or ctx
// is done. A positive Request.ConfirmTimeout bounds only the wait after the broadcast. A wait
// that ends early because its context is done is returned as a *WaitError. Errors are reported by
// the orchestrator with their message unchanged.
type Toolchain interface {
	SubmitDeployment(ctx context.Context, req Request) (Submission, error)
}

// Request describes a single contract deployment.
type Request struct {
	ContractName  string         `json:"contractName"`
	Args          []any          `json:"args"`
	From          common.Address `json:"from"`
	Confirmations uint64         `json:"confirmations"`
	// ConfirmTimeout bounds the confirmation wait when positive.
	ConfirmTimeout time.Duration `json:"confirmTimeout,omitempty"`
}

// WaitError is returned by a Toolchain when the deployment transaction was broadcast but the
// confirmation wait ended before the requested depth was reached.
type WaitError struct {
	TxHash common.Hash
	Err    error
}

func (e *WaitError) Error() string {
	return fmt.Sprintf("tx %s was sent but not confirmed: %v", e.TxHash.Hex(), e.Err)
}

func (e *WaitError) Unwrap() error {
	return e.Err
}

// Submission is what the toolchain observed once the deployment reached the requested depth.
type Submission struct {
	Address       common.Address `json:"address"`
	TxHash        common.Hash    `json:"transactionHash"`
	BlockNumber   uint64         `json:"blockNumber"`
	Confirmations uint64         `json:"confirmations"`
}

// ToolchainFunc adapts a function to the Toolchain interface.
type ToolchainFunc func(ctx context.Context, req Request) (Submission, error)

// SubmitDeployment calls f.
func (f ToolchainFunc) SubmitDeployment(ctx context.Context, req Request) (Submission, error) {
	return f(ctx, req)
}
