package network

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/ethereum/go-ethereum/common"
)

// GasStationAddress is passed to every deployment regardless of network. It is not part of Entry.
const GasStationAddress = "0x4093a6dfc8DA488950cF12272c954EA708C432A2"

// Registry is an immutable lookup of network entries plus the shared gas station address.
//
// A Registry is built once at startup and injected wherever network parameters are needed.
type Registry struct {
	gasStation string
	entries    map[NetworkID]Entry
}

// NewRegistry validates the entries and returns a Registry containing them.
func NewRegistry(gasStation string, entries ...Entry) (*Registry, error) {
	if !common.IsHexAddress(gasStation) {
		return nil, fmt.Errorf("invalid gas station address %q", gasStation)
	}

	byID := make(map[NetworkID]Entry, len(entries))
	var errs []error
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, ok := byID[e.NetworkID]; ok {
			errs = append(errs, fmt.Errorf("duplicate entry for network %d", e.NetworkID))
			continue
		}
		byID[e.NetworkID] = e
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &Registry{gasStation: gasStation, entries: byID}, nil
}

// Default returns the production registry.
func Default() *Registry {
	r, err := NewRegistry(GasStationAddress, Entry{
		NetworkID:          Mumbai,
		DisplayName:        "mumbai",
		CoordinatorAddress: "0x7a1BaC17Ccc5b313516C5E16fb24f7659aA5ebed",
		LaneID:             "0x4b09e658ed251bcafeebbc69400383d49f344ace09b9576fe248bb02c003fe9f",
		SubscriptionID:     1532,
		CallbackGasLimit:   "500000",
	})
	if err != nil {
		panic(fmt.Sprintf("default network registry is invalid: %v", err))
	}

	return r
}

// Resolve returns the entry for id. There is no fallback: an absent id returns an error wrapping
// ErrUnknownNetwork.
func (r *Registry) Resolve(id NetworkID) (Entry, error) {
	e, ok := r.entries[id]
	if !ok {
		return Entry{}, fmt.Errorf("network %d (%s) has no registry entry: %w", uint64(id), id, ErrUnknownNetwork)
	}

	return e, nil
}

// GasStation returns the gas station address shared by every network.
func (r *Registry) GasStation() string {
	return r.gasStation
}

// NetworkIDs returns the ids with an entry, in ascending order.
func (r *Registry) NetworkIDs() []NetworkID {
	return slices.Sorted(maps.Keys(r.entries))
}

// ConstructorArgs resolves id and returns its constructor arguments with the shared gas station.
func (r *Registry) ConstructorArgs(id NetworkID) ([]any, error) {
	e, err := r.Resolve(id)
	if err != nil {
		return nil, err
	}

	return e.ConstructorArgs(r.gasStation), nil
}
