// Package deployment deploys the GasAgency randomness consumer to a registered network and waits
// for the network's confirmation depth.
package deployment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/ethereum/go-ethereum/common"

	"github.com/gasagency/gasagency-deployments/network"
	"github.com/gasagency/gasagency-deployments/operations"
	"github.com/gasagency/gasagency-deployments/pkg/logger"
)

// ContractName is the artifact name of the deployed contract.
const ContractName = "GasAgency"

// DeployOp submits the constructor transaction through the toolchain. It is the only side effect
// of a deployment.
var DeployOp = operations.NewOperation(
	"deploy-gas-agency",
	semver.MustParse("1.0.0"),
	"Deploys the GasAgency randomness consumer and waits for the required confirmations",
	func(b operations.Bundle, tc Toolchain, req Request) (Submission, error) {
		return tc.SubmitDeployment(b.GetContext(), req)
	},
)

// Config holds the dependencies of an Orchestrator.
type Config struct {
	Registry      *network.Registry
	Confirmations network.Confirmations
	Toolchain     Toolchain
	Logger        logger.Logger

	// ConfirmTimeout bounds the confirmation wait when positive. It starts once the transaction
	// is sent, so loading, signing and broadcasting are bounded only by the context passed to
	// Deploy.
	ConfirmTimeout time.Duration
	// Reporter receives the operation report of every deployment. Defaults to an in-memory
	// reporter.
	Reporter operations.Reporter
	// Now defaults to time.Now.
	Now func() time.Time
}

// Validate checks that the required dependencies are set.
func (c Config) Validate() error {
	if c.Registry == nil {
		return errors.New("registry is required")
	}
	if c.Toolchain == nil {
		return errors.New("toolchain is required")
	}
	if c.ConfirmTimeout < 0 {
		return fmt.Errorf("confirm timeout must not be negative, got %s", c.ConfirmTimeout)
	}

	return nil
}

// Orchestrator resolves network parameters and runs the deployment.
type Orchestrator struct {
	registry       *network.Registry
	confirmations  network.Confirmations
	toolchain      Toolchain
	lggr           logger.Logger
	confirmTimeout time.Duration
	reporter       operations.Reporter
	now            func() time.Time
}

// NewOrchestrator creates an Orchestrator from cfg.
func NewOrchestrator(cfg Config) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid orchestrator config: %w", err)
	}

	o := &Orchestrator{
		registry:       cfg.Registry,
		confirmations:  cfg.Confirmations,
		toolchain:      cfg.Toolchain,
		lggr:           cfg.Logger,
		confirmTimeout: cfg.ConfirmTimeout,
		reporter:       cfg.Reporter,
		now:            cfg.Now,
	}
	if o.lggr == nil {
		o.lggr = logger.Nop()
	}
	if o.reporter == nil {
		o.reporter = operations.NewMemoryReporter()
	}
	if o.now == nil {
		o.now = time.Now
	}

	return o, nil
}

// Reporter returns the reporter holding the operation reports of past deployments.
func (o *Orchestrator) Reporter() operations.Reporter {
	return o.reporter
}

// Deploy deploys the contract to the network id from deployer and returns the confirmed record.
//
// An id without a registry entry returns an error matching network.ErrUnknownNetwork before
// anything is submitted. Toolchain failures return an *Error matching ErrDeploymentFailed, and
// ErrConfirmationTimeout when a deadline expired after the transaction was sent. Nothing is
// retried.
func (o *Orchestrator) Deploy(ctx context.Context, id network.NetworkID, deployer common.Address) (Record, error) {
	entry, err := o.registry.Resolve(id)
	if err != nil {
		return Record{}, err
	}

	req := Request{
		ContractName:   ContractName,
		Args:           entry.ConstructorArgs(o.registry.GasStation()),
		From:           deployer,
		Confirmations:  o.confirmations.For(id),
		ConfirmTimeout: o.confirmTimeout,
	}

	// The last point where the deployment can be abandoned without side effects.
	if err = ctx.Err(); err != nil {
		return Record{}, fmt.Errorf("network %d (%s): deployment not started: %w", uint64(id), id, err)
	}

	o.lggr.Infow("Deploying contract",
		"contract", req.ContractName,
		"network", id.String(),
		"networkId", uint64(id),
		"deployer", deployer.Hex(),
		"confirmations", req.Confirmations,
	)

	bundle := operations.NewBundle(ctx, o.lggr, o.reporter)
	report, err := operations.ExecuteOperation(bundle, DeployOp, o.toolchain, req)
	if err != nil {
		kind := ErrDeploymentFailed
		var werr *WaitError
		if errors.As(err, &werr) && errors.Is(werr.Err, context.DeadlineExceeded) {
			kind = ErrConfirmationTimeout
		}

		return Record{}, o.fail(id, kind, err)
	}

	sub := report.Output
	if sub.Address == (common.Address{}) {
		return Record{}, o.fail(id, ErrDeploymentFailed, errors.New("toolchain returned no contract address"))
	}
	if sub.Confirmations < req.Confirmations {
		return Record{}, o.fail(id, ErrDeploymentFailed, fmt.Errorf(
			"toolchain reported %d confirmations for tx %s, %d required",
			sub.Confirmations, sub.TxHash.Hex(), req.Confirmations,
		))
	}

	rec := Record{
		Contract:      req.ContractName,
		NetworkID:     id,
		Network:       entry.DisplayName,
		Address:       sub.Address,
		TxHash:        sub.TxHash,
		BlockNumber:   sub.BlockNumber,
		Confirmations: sub.Confirmations,
		Deployer:      deployer,
		Args:          req.Args,
		ReportID:      report.ID,
		DeployedAt:    o.now().UTC(),
	}

	o.lggr.Infow("Deployed contract",
		"contract", rec.Contract,
		"network", rec.Network,
		"networkId", uint64(rec.NetworkID),
		"address", rec.Address.Hex(),
		"tx", rec.TxHash.Hex(),
		"block", rec.BlockNumber,
		"confirmations", rec.Confirmations,
		"report", rec.ReportID,
	)

	return rec, nil
}

func (o *Orchestrator) fail(id network.NetworkID, kind, err error) error {
	derr := &Error{NetworkID: id, Kind: kind, Err: err}
	o.lggr.Errorw("Deployment failed", "networkId", uint64(id), "error", derr)

	return derr
}
