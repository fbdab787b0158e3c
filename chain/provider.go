package chain

import (
	"context"

	"github.com/gasagency/gasagency-deployments/chain/evm"
	"github.com/gasagency/gasagency-deployments/network"
)

// Provider sets up the connection to a network and the accounts used on it. Providers holding a
// connection also implement io.Closer.
type Provider interface {
	// Initialize connects to the network. Calling it again returns the same chain.
	Initialize(ctx context.Context) (evm.Chain, error)
	Name() string
	NetworkID() network.NetworkID
	// Chain returns the initialized chain. Initialize must be called first.
	Chain() evm.Chain
}
