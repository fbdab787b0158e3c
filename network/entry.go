package network

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
)

var laneIDPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// Entry holds the deployment parameters of the randomness consumer for a single network.
type Entry struct {
	NetworkID   NetworkID `json:"networkId" yaml:"network_id"`
	DisplayName string    `json:"displayName" yaml:"display_name"`
	// CoordinatorAddress is the randomness coordinator the deployed contract requests words from.
	CoordinatorAddress string `json:"coordinatorAddress" yaml:"coordinator_address"`
	// LaneID selects the pricing tier (key hash) of the randomness service.
	LaneID         string `json:"laneId" yaml:"lane_id"`
	SubscriptionID uint64 `json:"subscriptionId" yaml:"subscription_id"`
	// CallbackGasLimit is a decimal string so that the value is carried as given.
	CallbackGasLimit string `json:"callbackGasLimit" yaml:"callback_gas_limit"`
}

// Validate checks that the entry is usable as constructor input.
func (e Entry) Validate() error {
	var errs []error

	if !e.NetworkID.Known() {
		errs = append(errs, fmt.Errorf("network %d: %w", e.NetworkID, ErrUnknownNetwork))
	}
	if e.DisplayName == "" {
		errs = append(errs, errors.New("display name is required"))
	}
	if !common.IsHexAddress(e.CoordinatorAddress) {
		errs = append(errs, fmt.Errorf("invalid coordinator address %q", e.CoordinatorAddress))
	}
	if !laneIDPattern.MatchString(e.LaneID) {
		errs = append(errs, fmt.Errorf("invalid lane id %q: must be 0x followed by 64 hex characters", e.LaneID))
	}
	if _, err := e.CallbackGasLimitValue(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid entry for network %d: %w", e.NetworkID, errors.Join(errs...))
	}

	return nil
}

// CallbackGasLimitValue parses the callback gas limit. The value must be a positive integer that
// fits in the uint32 the coordinator accepts.
func (e Entry) CallbackGasLimitValue() (uint32, error) {
	v, err := strconv.ParseUint(e.CallbackGasLimit, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid callback gas limit %q: %w", e.CallbackGasLimit, err)
	}
	if v == 0 {
		return 0, fmt.Errorf("invalid callback gas limit %q: must be positive", e.CallbackGasLimit)
	}

	return uint32(v), nil
}

// ConstructorArgs returns the constructor arguments in contract order: coordinator, lane id,
// subscription id, callback gas limit, gas station.
//
// The order is part of the contract's constructor ABI and only changes with a new contract version.
func (e Entry) ConstructorArgs(gasStation string) []any {
	return []any{
		e.CoordinatorAddress,
		e.LaneID,
		e.SubscriptionID,
		e.CallbackGasLimit,
		gasStation,
	}
}
