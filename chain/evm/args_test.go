package evm

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const constructorABI = `[{
	"type": "constructor",
	"stateMutability": "nonpayable",
	"inputs": [
		{"name": "vrfCoordinatorV2", "type": "address"},
		{"name": "gasLane", "type": "bytes32"},
		{"name": "subscriptionId", "type": "uint64"},
		{"name": "callbackGasLimit", "type": "uint32"},
		{"name": "gasStation", "type": "address"}
	]
}]`

func constructorInputs(t *testing.T, def string) abi.Arguments {
	t.Helper()

	parsed, err := abi.JSON(strings.NewReader(def))
	require.NoError(t, err)

	return parsed.Constructor.Inputs
}

func TestCoerceArgs(t *testing.T) {
	t.Parallel()

	inputs := constructorInputs(t, constructorABI)
	lane := "0x4b09e658ed251bcafeebbc69400383d49f344ace09b9576fe248bb02c003fe9f"

	got, err := CoerceArgs(inputs, []any{
		"0x7a1BaC17Ccc5b313516C5E16fb24f7659aA5ebed",
		lane,
		uint64(1532),
		"500000",
		"0x4093a6dfc8DA488950cF12272c954EA708C432A2",
	})
	require.NoError(t, err)

	assert.Equal(t, []any{
		common.HexToAddress("0x7a1BaC17Ccc5b313516C5E16fb24f7659aA5ebed"),
		[32]byte(common.HexToHash(lane)),
		uint64(1532),
		uint32(500000),
		common.HexToAddress("0x4093a6dfc8DA488950cF12272c954EA708C432A2"),
	}, got)

	// The coerced values must be accepted by the encoder.
	_, err = inputs.Pack(got...)
	require.NoError(t, err)
}

func TestCoerceArgs_Errors(t *testing.T) {
	t.Parallel()

	inputs := constructorInputs(t, constructorABI)
	valid := func() []any {
		return []any{
			"0x7a1BaC17Ccc5b313516C5E16fb24f7659aA5ebed",
			"0x4b09e658ed251bcafeebbc69400383d49f344ace09b9576fe248bb02c003fe9f",
			uint64(1532),
			"500000",
			"0x4093a6dfc8DA488950cF12272c954EA708C432A2",
		}
	}

	tests := []struct {
		name    string
		give    func() []any
		wantErr string
	}{
		{
			name:    "wrong arity",
			give:    func() []any { return valid()[:4] },
			wantErr: "constructor takes 5 arguments, got 4",
		},
		{
			name: "invalid address",
			give: func() []any {
				a := valid()
				a[0] = "0x1234"

				return a
			},
			wantErr: `argument 0 (address vrfCoordinatorV2): invalid address "0x1234"`,
		},
		{
			name: "short lane",
			give: func() []any {
				a := valid()
				a[1] = "0x1234"

				return a
			},
			wantErr: "expected 32 bytes, got 2",
		},
		{
			name: "callback gas limit overflows uint32",
			give: func() []any {
				a := valid()
				a[3] = "4294967296"

				return a
			},
			wantErr: "4294967296 overflows uint32",
		},
		{
			name: "negative subscription",
			give: func() []any {
				a := valid()
				a[2] = -1

				return a
			},
			wantErr: "-1 overflows uint64",
		},
		{
			name: "non integer string",
			give: func() []any {
				a := valid()
				a[3] = "lots"

				return a
			},
			wantErr: `invalid integer "lots"`,
		},
		{
			name: "wrong go type",
			give: func() []any {
				a := valid()
				a[4] = 42

				return a
			},
			wantErr: "expected address, got int",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := CoerceArgs(inputs, tt.give())
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestCoerceArgs_Types(t *testing.T) {
	t.Parallel()

	inputs := constructorInputs(t, `[{
		"type": "constructor",
		"inputs": [
			{"name": "a", "type": "int8"},
			{"name": "b", "type": "uint256"},
			{"name": "c", "type": "bool"},
			{"name": "d", "type": "string"},
			{"name": "e", "type": "uint16"}
		]
	}]`)

	got, err := CoerceArgs(inputs, []any{-128, "0xff", true, "gas", float64(65535)})
	require.NoError(t, err)
	assert.Equal(t, []any{int8(-128), big.NewInt(255), true, "gas", uint16(65535)}, got)

	_, err = CoerceArgs(inputs, []any{128, "0xff", true, "gas", 1})
	require.ErrorContains(t, err, "128 overflows int8")

	_, err = CoerceArgs(inputs, []any{1, 1, "yes", "gas", 1})
	require.ErrorContains(t, err, "expected bool, got string")

	_, err = CoerceArgs(inputs, []any{1, 1, true, "gas", 1.5})
	require.ErrorContains(t, err, "1.5 is not an integer")
}
