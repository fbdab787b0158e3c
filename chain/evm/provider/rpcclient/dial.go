// Package rpcclient dials EVM JSON-RPC endpoints.
package rpcclient

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/gasagency/gasagency-deployments/pkg/logger"
)

const (
	DefaultDialAttempts       = 3
	DefaultDialDelay          = 1 * time.Second
	DefaultHealthCheckTimeout = 5 * time.Second
)

// ErrChainIDMismatch is returned when an endpoint serves another chain than the one requested.
var ErrChainIDMismatch = errors.New("chain id mismatch")

// RPC is a named JSON-RPC endpoint.
type RPC struct {
	Name    string
	HTTPURL string
}

// DialConfig controls how each endpoint is dialed.
type DialConfig struct {
	Attempts           uint
	Delay              time.Duration
	HealthCheckTimeout time.Duration
}

// DefaultDialConfig returns the dial configuration used when none is given.
func DefaultDialConfig() DialConfig {
	return DialConfig{
		Attempts:           DefaultDialAttempts,
		Delay:              DefaultDialDelay,
		HealthCheckTimeout: DefaultHealthCheckTimeout,
	}
}

// Dial connects to the first healthy endpoint in rpcs. An endpoint is healthy when eth_chainId
// answers with wantChainID. Each endpoint is retried according to cfg; a chain id mismatch is not
// retried.
//
// Only the read-only dial and health check are retried here. Transactions are never resent.
func Dial(ctx context.Context, lggr logger.Logger, rpcs []RPC, wantChainID *big.Int, cfg DialConfig) (*ethclient.Client, error) {
	if len(rpcs) == 0 {
		return nil, errors.New("no RPCs provided, need at least one")
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 1
	}
	if cfg.HealthCheckTimeout <= 0 {
		cfg.HealthCheckTimeout = DefaultHealthCheckTimeout
	}

	var errs []error
	for i, rpc := range rpcs {
		client, err := retry.DoWithData(
			func() (*ethclient.Client, error) {
				return dialOne(ctx, rpc, wantChainID, cfg.HealthCheckTimeout)
			},
			retry.Context(ctx),
			retry.Attempts(cfg.Attempts),
			retry.Delay(cfg.Delay),
			retry.LastErrorOnly(true),
			retry.OnRetry(func(attempt uint, err error) {
				lggr.Warnw("Failed to dial RPC, retrying",
					"rpc", rpc.Name, "attempt", attempt+1, "error", err)
			}),
		)
		if err != nil {
			lggr.Warnw("Failed to dial RPC, trying the next one", "index", i, "rpc", rpc.Name, "error", err)
			errs = append(errs, fmt.Errorf("rpc %q: %w", rpc.Name, err))

			continue
		}

		lggr.Infow("Connected to RPC", "rpc", rpc.Name, "chainId", wantChainID.String())

		return client, nil
	}

	return nil, fmt.Errorf("no healthy RPC: %w", errors.Join(errs...))
}

func dialOne(ctx context.Context, rpc RPC, wantChainID *big.Int, timeout time.Duration) (*ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, rpc.HTTPURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial: %w", err)
	}

	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	got, err := client.ChainID(checkCtx)
	if err != nil {
		client.Close()

		return nil, fmt.Errorf("health check failed: %w", err)
	}
	if got.Cmp(wantChainID) != 0 {
		client.Close()

		return nil, retry.Unrecoverable(fmt.Errorf("%w: endpoint serves chain %s, want %s", ErrChainIDMismatch, got, wantChainID))
	}

	return client, nil
}
