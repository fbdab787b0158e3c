package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config_network "github.com/gasagency/gasagency-deployments/engine/config/network"
	"github.com/gasagency/gasagency-deployments/network"
	"github.com/gasagency/gasagency-deployments/pkg/logger"
)

func Test_Load(t *testing.T) { //nolint:paralleltest // uses t.Setenv
	t.Setenv("MUMBAI_RPC_URL", "https://mumbai.env")
	t.Setenv("GASAGENCY_DEPLOYER_KEY", "0xabc")

	cfg, err := Load("./testdata/missing.yml", []string{"./network/testdata/networks.yaml"}, logger.Test(t))
	require.NoError(t, err)

	assert.Equal(t, "0xabc", cfg.Env.Accounts.DeployerKey)

	mumbai := cfg.Networks.Network(network.Mumbai)
	assert.Equal(t, []config_network.RPC{{RPCName: "env", HTTPURL: "https://mumbai.env"}}, mumbai.RPCs)
	assert.Equal(t, uint64(3000000), mumbai.Gas.Limit)

	goerli := cfg.Networks.Network(network.Goerli)
	assert.Equal(t, "https://goerli.example.org", goerli.RPCs[0].HTTPURL)
}

func Test_Load_InvalidManifest(t *testing.T) { //nolint:paralleltest // reads the process environment
	_, err := Load("./testdata/missing.yml", []string{"./network/testdata/invalid.yaml"}, logger.Test(t))
	require.ErrorContains(t, err, "failed to load networks")
}
