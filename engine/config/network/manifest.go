// Package network loads the network manifest, which tells the tooling how to reach each network.
package network

import (
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"math/big"
	"os"
	"slices"

	"github.com/ethereum/go-ethereum/params"
	"gopkg.in/yaml.v3"

	"github.com/gasagency/gasagency-deployments/chain/evm"
	"github.com/gasagency/gasagency-deployments/chain/evm/provider/rpcclient"
	"github.com/gasagency/gasagency-deployments/network"
)

//go:embed networks.yaml
var defaultManifest []byte

// Manifest is the YAML representation of network configuration.
type Manifest struct {
	// A YAML array of networks.
	Networks []Network `yaml:"networks"`
}

// Network is the manifest entry of a single network.
type Network struct {
	// Name is the network name or decimal id, e.g. "mumbai" or "80001".
	Name string `yaml:"name"`
	RPCs []RPC  `yaml:"rpcs"`
	Gas  Gas    `yaml:"gas"`
}

// ID returns the id of the network named by Name.
func (n Network) ID() (network.NetworkID, error) {
	return network.ParseNetworkID(n.Name)
}

// Validate validates the network configuration.
func (n Network) Validate() error {
	if _, err := n.ID(); err != nil {
		return err
	}

	var errs []error
	for i, rpc := range n.RPCs {
		if rpc.HTTPURL == "" {
			errs = append(errs, fmt.Errorf("rpc %d: http url is required", i))
		}
	}

	return errors.Join(errs...)
}

// RPCClients returns the RPCs in the form expected by the RPC client.
func (n Network) RPCClients() []rpcclient.RPC {
	rpcs := make([]rpcclient.RPC, 0, len(n.RPCs))
	for i, rpc := range n.RPCs {
		name := rpc.RPCName
		if name == "" {
			name = fmt.Sprintf("%s-%d", n.Name, i)
		}
		rpcs = append(rpcs, rpcclient.RPC{Name: name, HTTPURL: rpc.HTTPURL})
	}

	return rpcs
}

// RPC represents an RPC endpoint.
type RPC struct {
	RPCName string `yaml:"rpc_name"`
	HTTPURL string `yaml:"http_url"`
}

// Gas holds the fixed gas settings of a network. Zero values let the node estimate.
type Gas struct {
	Limit     uint64 `yaml:"limit"`
	PriceGwei uint64 `yaml:"price_gwei"`
}

// Settings converts the manifest gas values to the chain's gas settings.
func (g Gas) Settings() evm.GasSettings {
	s := evm.GasSettings{Limit: g.Limit}
	if g.PriceGwei > 0 {
		s.PriceWei = new(big.Int).Mul(new(big.Int).SetUint64(g.PriceGwei), big.NewInt(params.GWei))
	}

	return s
}

// Config is the loaded manifest keyed by network id.
type Config struct {
	networks map[network.NetworkID]Network
}

// NewConfig creates a new config from a slice of networks. A later network with the same id
// overwrites an earlier one.
func NewConfig(networks []Network) (*Config, error) {
	nmap := make(map[network.NetworkID]Network, len(networks))

	for _, n := range networks {
		if err := n.Validate(); err != nil {
			return nil, fmt.Errorf("network %q: %w", n.Name, err)
		}

		id, _ := n.ID()
		n.Name = id.String()
		nmap[id] = n
	}

	return &Config{networks: nmap}, nil
}

// Default returns the manifest bundled with the tooling.
func Default() *Config {
	cfg, err := Parse(defaultManifest)
	if err != nil {
		panic(fmt.Sprintf("invalid bundled network manifest: %v", err))
	}

	return cfg
}

// Parse decodes a YAML manifest.
func Parse(data []byte) (*Config, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal networks YAML: %w", err)
	}

	return NewConfig(m.Networks)
}

// Load loads the bundled manifest and merges the manifests at filePaths over it, in order.
func Load(filePaths ...string) (*Config, error) {
	cfg := Default()

	for _, fp := range filePaths {
		data, err := os.ReadFile(fp)
		if err != nil {
			return nil, fmt.Errorf("failed to read networks file: %w", err)
		}

		fileCfg, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fp, err)
		}

		cfg.Merge(fileCfg)
	}

	return cfg, nil
}

// Networks returns all networks ordered by id.
func (c *Config) Networks() []Network {
	ids := slices.Sorted(maps.Keys(c.networks))
	out := make([]Network, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.networks[id])
	}

	return out
}

// Network returns the manifest entry of id. A network absent from the manifest has no RPCs and
// no gas settings.
func (c *Config) Network(id network.NetworkID) Network {
	n, ok := c.networks[id]
	if !ok {
		return Network{Name: id.String()}
	}

	return n
}

// Merge merges another config into the current config, overwriting networks with the same id.
func (c *Config) Merge(other *Config) {
	maps.Copy(c.networks, other.networks)
}

// SetRPC replaces the RPCs of id with a single endpoint. An empty url is ignored.
func (c *Config) SetRPC(id network.NetworkID, name, url string) {
	if url == "" {
		return
	}

	n := c.Network(id)
	n.RPCs = []RPC{{RPCName: name, HTTPURL: url}}
	c.networks[id] = n
}

// MarshalYAML implements the yaml.Marshaler interface.
func (c *Config) MarshalYAML() (any, error) {
	return Manifest{Networks: c.Networks()}, nil
}
