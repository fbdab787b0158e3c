package deployment

import (
	"errors"
	"fmt"

	"github.com/gasagency/gasagency-deployments/network"
)

var (
	// ErrDeploymentFailed is returned when the toolchain could not submit, mine or confirm the
	// deployment transaction.
	ErrDeploymentFailed = errors.New("deployment failed")

	// ErrConfirmationTimeout is returned when the deployment transaction was sent but the
	// confirmation depth was not reached before the deadline. The transaction may still confirm
	// later. It also matches ErrDeploymentFailed.
	ErrConfirmationTimeout = fmt.Errorf("confirmation timeout: %w", ErrDeploymentFailed)
)

// Error is a failed deployment attempt on a network.
type Error struct {
	NetworkID network.NetworkID
	// Kind is ErrDeploymentFailed or ErrConfirmationTimeout.
	Kind error
	// Err is the toolchain error, unchanged.
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("network %d (%s): %v: %v", uint64(e.NetworkID), e.NetworkID, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
