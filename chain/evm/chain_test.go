package evm

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gasagency/gasagency-deployments/network"
)

func TestChain_TransactOpts(t *testing.T) {
	t.Parallel()

	deployer := &bind.TransactOpts{From: common.HexToAddress("0xd1")}
	player := &bind.TransactOpts{From: common.HexToAddress("0xd2")}

	tests := []struct {
		name         string
		giveGas      GasSettings
		giveFrom     common.Address
		wantGasLimit uint64
		wantGasPrice *big.Int
		wantErr      string
	}{
		{
			name:     "deployer without gas settings",
			giveFrom: deployer.From,
		},
		{
			name:         "player with gas settings",
			giveGas:      GasSettings{Limit: 2100000, PriceWei: big.NewInt(8_000_000_000)},
			giveFrom:     player.From,
			wantGasLimit: 2100000,
			wantGasPrice: big.NewInt(8_000_000_000),
		},
		{
			name:     "unknown account",
			giveFrom: common.HexToAddress("0xd3"),
			wantErr:  "no signer for account 0x00000000000000000000000000000000000000d3 on mumbai (80001)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := Chain{
				NetworkID:   network.Mumbai,
				DeployerKey: deployer,
				Users:       []*bind.TransactOpts{player},
				Gas:         tt.giveGas,
			}

			got, err := c.TransactOpts(t.Context(), tt.giveFrom)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.giveFrom, got.From)
			assert.Equal(t, tt.wantGasLimit, got.GasLimit)
			assert.Equal(t, tt.wantGasPrice, got.GasPrice)
			assert.Equal(t, t.Context(), got.Context)

			// The named account itself is left untouched.
			assert.Zero(t, deployer.GasLimit)
			assert.Nil(t, player.Context)
		})
	}
}

func TestChain_Accounts(t *testing.T) {
	t.Parallel()

	deployer := &bind.TransactOpts{From: common.HexToAddress("0xd1")}
	player := &bind.TransactOpts{From: common.HexToAddress("0xd2")}

	c := Chain{NetworkID: network.Hardhat, DeployerKey: deployer, Users: []*bind.TransactOpts{player}}
	assert.Equal(t, []*bind.TransactOpts{deployer, player}, c.Accounts())
	assert.Equal(t, "hardhat (31337)", c.String())

	assert.Empty(t, Chain{}.Accounts())
}

func TestChain_Selector(t *testing.T) {
	t.Parallel()

	sel, err := Chain{NetworkID: network.Mumbai}.Selector()
	require.NoError(t, err)
	assert.NotZero(t, sel)
}
