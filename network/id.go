package network

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	chainsel "github.com/smartcontractkit/chain-selectors"
)

// ErrUnknownNetwork is returned when a network id has no registry entry or is outside the set of
// recognized networks.
var ErrUnknownNetwork = errors.New("unknown network")

// NetworkID is the EVM chain id of a network the tooling recognizes.
type NetworkID uint64

// The recognized networks. Any other chain id is rejected at the boundary.
const (
	Rinkeby NetworkID = 4
	Goerli  NetworkID = 5
	Hardhat NetworkID = 31337
	Mumbai  NetworkID = 80001
)

var networkNames = map[NetworkID]string{
	Rinkeby: "rinkeby",
	Goerli:  "goerli",
	Hardhat: "hardhat",
	Mumbai:  "mumbai",
}

// KnownNetworkIDs returns every recognized network id in ascending order.
func KnownNetworkIDs() []NetworkID {
	ids := make([]NetworkID, 0, len(networkNames))
	for id := range networkNames {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	return ids
}

// Known reports whether id is one of the recognized networks.
func (id NetworkID) Known() bool {
	_, ok := networkNames[id]

	return ok
}

// String returns the canonical network name, or the decimal id for unrecognized values.
func (id NetworkID) String() string {
	if name, ok := networkNames[id]; ok {
		return name
	}

	return strconv.FormatUint(uint64(id), 10)
}

// ChainSelector returns the chain selector registered for the network's EVM chain id.
func (id NetworkID) ChainSelector() (uint64, error) {
	details, err := chainsel.GetChainDetailsByChainIDAndFamily(
		strconv.FormatUint(uint64(id), 10), chainsel.FamilyEVM,
	)
	if err != nil {
		return 0, fmt.Errorf("no chain selector for network %d: %w", id, err)
	}

	return details.ChainSelector, nil
}

// ParseNetworkID parses a network name (case insensitive) or a decimal chain id. Values outside
// the recognized set return ErrUnknownNetwork.
func ParseNetworkID(s string) (NetworkID, error) {
	s = strings.TrimSpace(s)

	for id, name := range networkNames {
		if strings.EqualFold(name, s) {
			return id, nil
		}
	}

	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || !NetworkID(n).Known() {
		return 0, fmt.Errorf("network %q: %w", s, ErrUnknownNetwork)
	}

	return NetworkID(n), nil
}
