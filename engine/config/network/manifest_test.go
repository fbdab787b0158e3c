package network

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gasagency/gasagency-deployments/chain/evm"
	"github.com/gasagency/gasagency-deployments/chain/evm/provider/rpcclient"
	"github.com/gasagency/gasagency-deployments/network"
)

func Test_Default(t *testing.T) {
	t.Parallel()

	cfg := Default()

	names := make([]string, 0, 4)
	for _, n := range cfg.Networks() {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{"rinkeby", "goerli", "hardhat", "mumbai"}, names)

	hardhat := cfg.Network(network.Hardhat)
	assert.Equal(t, []rpcclient.RPC{{Name: "localhost", HTTPURL: "http://127.0.0.1:8545"}}, hardhat.RPCClients())
	assert.Equal(t, evm.GasSettings{}, hardhat.Gas.Settings())

	mumbai := cfg.Network(network.Mumbai)
	assert.Empty(t, mumbai.RPCs)
	assert.Equal(t, evm.GasSettings{Limit: 2100000, PriceWei: big.NewInt(8_000_000_000)}, mumbai.Gas.Settings())
}

func Test_Load(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		givePaths []string
		wantErr   string
		assertFn  func(t *testing.T, cfg *Config)
	}{
		{
			name: "bundled manifest only",
			assertFn: func(t *testing.T, cfg *Config) {
				t.Helper()

				assert.Len(t, cfg.Networks(), 4)
			},
		},
		{
			name:      "file overrides bundled networks",
			givePaths: []string{"./testdata/networks.yaml"},
			assertFn: func(t *testing.T, cfg *Config) {
				t.Helper()

				mumbai := cfg.Network(network.Mumbai)
				assert.Equal(t, "mumbai", mumbai.Name)
				assert.Equal(t, []rpcclient.RPC{
					{Name: "alchemy", HTTPURL: "https://polygon-mumbai.example.org"},
					{Name: "mumbai-1", HTTPURL: "https://rpc-mumbai.example.org"},
				}, mumbai.RPCClients())
				assert.Equal(t, evm.GasSettings{Limit: 3000000, PriceWei: big.NewInt(30_000_000_000)}, mumbai.Gas.Settings())

				// Referenced by id, normalized to its name.
				goerli := cfg.Network(network.Goerli)
				assert.Equal(t, "goerli", goerli.Name)
				assert.Zero(t, goerli.Gas.Limit)

				assert.Len(t, cfg.Network(network.Rinkeby).RPCs, 0)
			},
		},
		{
			name:      "unknown network",
			givePaths: []string{"./testdata/invalid.yaml"},
			wantErr:   `network "mainnet"`,
		},
		{
			name:      "missing file",
			givePaths: []string{"./testdata/missing.yaml"},
			wantErr:   "failed to read networks file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := Load(tt.givePaths...)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			tt.assertFn(t, cfg)
		})
	}
}

func Test_Network_Validate(t *testing.T) {
	t.Parallel()

	err := Network{Name: "mumbai", RPCs: []RPC{{RPCName: "a"}, {RPCName: "b"}}}.Validate()
	require.ErrorContains(t, err, "rpc 0: http url is required")
	require.ErrorContains(t, err, "rpc 1: http url is required")

	err = Network{Name: "kovan"}.Validate()
	require.ErrorIs(t, err, network.ErrUnknownNetwork)
}

func Test_Config_SetRPC(t *testing.T) {
	t.Parallel()

	cfg := Default()

	cfg.SetRPC(network.Mumbai, "env", "https://mumbai.env")
	cfg.SetRPC(network.Hardhat, "env", "")

	assert.Equal(t, []RPC{{RPCName: "env", HTTPURL: "https://mumbai.env"}}, cfg.Network(network.Mumbai).RPCs)
	assert.Equal(t, uint64(2100000), cfg.Network(network.Mumbai).Gas.Limit)
	assert.Equal(t, "localhost", cfg.Network(network.Hardhat).RPCs[0].RPCName)

	// Other configs are not affected.
	assert.Empty(t, Default().Network(network.Mumbai).RPCs)
}

func Test_Config_MarshalYAML(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte(`
networks:
  - name: "80001"
    rpcs:
      - http_url: https://mumbai.example.org
    gas:
      limit: 1
`))
	require.NoError(t, err)

	b, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	assert.YAMLEq(t, `
networks:
  - name: mumbai
    rpcs:
      - rpc_name: ""
        http_url: https://mumbai.example.org
    gas:
      limit: 1
      price_gwei: 0
`, string(b))
}
