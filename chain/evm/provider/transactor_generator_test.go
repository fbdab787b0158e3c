package provider

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testChainIDBig = big.NewInt(80001)

func Test_TransactorFromRaw(t *testing.T) {
	t.Parallel()

	privKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	hexPrivKey := hex.EncodeToString(crypto.FromECDSA(privKey))
	wantAddr := crypto.PubkeyToAddress(privKey.PublicKey).Hex()

	tests := []struct {
		name        string
		givePrivKey string
		giveChainID *big.Int
		want        string
		wantErr     string
	}{
		{
			name:        "valid private key",
			givePrivKey: hexPrivKey,
			giveChainID: testChainIDBig,
			want:        wantAddr,
		},
		{
			name:        "0x prefixed private key",
			givePrivKey: "0x" + hexPrivKey,
			giveChainID: testChainIDBig,
			want:        wantAddr,
		},
		{
			name:        "empty private key",
			givePrivKey: "",
			giveChainID: testChainIDBig,
			wantErr:     "private key is empty",
		},
		{
			name:        "invalid private key",
			givePrivKey: "invalid",
			giveChainID: testChainIDBig,
			wantErr:     "failed to convert private key to ECDSA",
		},
		{
			name:        "invalid chain ID",
			givePrivKey: hexPrivKey,
			giveChainID: nil,
			wantErr:     "no chain id specified",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := TransactorFromRaw(tt.givePrivKey).Generate(tt.giveChainID)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got.From.Hex())
		})
	}
}

func Test_TransactorRandom(t *testing.T) {
	t.Parallel()

	first, err := TransactorRandom().Generate(testChainIDBig)
	require.NoError(t, err)
	second, err := TransactorRandom().Generate(testChainIDBig)
	require.NoError(t, err)

	assert.NotEqual(t, first.From, second.From)

	_, err = TransactorRandom().Generate(nil)
	require.ErrorContains(t, err, "no chain id specified")
}

func Test_TransactorsFromRaw(t *testing.T) {
	t.Parallel()

	keyA, err := crypto.GenerateKey()
	require.NoError(t, err)
	keyB, err := crypto.GenerateKey()
	require.NoError(t, err)

	gens := TransactorsFromRaw([]string{
		hex.EncodeToString(crypto.FromECDSA(keyA)),
		hex.EncodeToString(crypto.FromECDSA(keyB)),
	})
	require.Len(t, gens, 2)

	b, err := gens[1].Generate(testChainIDBig)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(keyB.PublicKey), b.From)
}
