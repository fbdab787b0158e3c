package datastore

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gasagency/gasagency-deployments/deployment"
	"github.com/gasagency/gasagency-deployments/network"
)

// openMemoryStoreForTest opens an in-memory SQL store private to the test.
func openMemoryStoreForTest(t *testing.T) *SQLStore {
	t.Helper()

	s, err := OpenMemory(t.Context(), t.Name())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})

	return s
}

func TestSQLStore_SaveGet(t *testing.T) {
	t.Parallel()

	s := openMemoryStoreForTest(t)

	rec := newTestRecord(network.Mumbai, "GasAgency")
	require.NoError(t, s.Save(t.Context(), rec))

	got, err := s.Get(t.Context(), network.Mumbai, "GasAgency")
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	_, err = s.Get(t.Context(), network.Goerli, "GasAgency")
	require.ErrorIs(t, err, ErrRecordNotFound)
}

func TestSQLStore_SaveGet_ArgsKeepTypes(t *testing.T) {
	t.Parallel()

	s := openMemoryStoreForTest(t)

	rec := newTestRecord(network.Mumbai, "GasAgency")
	rec.Args = wideArgs
	require.NoError(t, s.Save(t.Context(), rec))

	got, err := s.Get(t.Context(), network.Mumbai, "GasAgency")
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	list, err := s.List(t.Context())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, wideArgs, list[0].Args)
}

func TestSQLStore_SaveReplaces(t *testing.T) {
	t.Parallel()

	s := openMemoryStoreForTest(t)

	first := newTestRecord(network.Hardhat, "GasAgency")
	require.NoError(t, s.Save(t.Context(), first))

	second := first
	second.Address = common.HexToAddress("0x00000000000000000000000000000000000000c2")
	require.NoError(t, s.Save(t.Context(), second))

	got, err := s.List(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []deployment.Record{second}, got)
}

func TestSQLStore_List(t *testing.T) {
	t.Parallel()

	s := openMemoryStoreForTest(t)

	mumbai := newTestRecord(network.Mumbai, "GasAgency")
	goerli := newTestRecord(network.Goerli, "GasAgency")
	for _, rec := range []deployment.Record{mumbai, goerli} {
		require.NoError(t, s.Save(t.Context(), rec))
	}

	got, err := s.List(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []deployment.Record{goerli, mumbai}, got)
}

func TestSQLStore_Save_Invalid(t *testing.T) {
	t.Parallel()

	s := openMemoryStoreForTest(t)

	err := s.Save(t.Context(), newTestRecord(network.NetworkID(10), "GasAgency"))
	require.ErrorIs(t, err, network.ErrUnknownNetwork)

	got, err := s.List(t.Context())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOpen(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		giveOpts Options
		wantType any
		wantErr  string
	}{
		{
			name:     "file by default",
			giveOpts: Options{Dir: t.TempDir()},
			wantType: &FileStore{},
		},
		{
			name:     "memory",
			giveOpts: Options{Kind: KindMemory},
			wantType: &SQLStore{},
		},
		{
			name:     "postgres without dsn",
			giveOpts: Options{Kind: KindPostgres},
			wantErr:  "postgres store requires a DSN",
		},
		{
			name:     "unknown kind",
			giveOpts: Options{Kind: "s3"},
			wantErr:  `unknown store kind "s3"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, closeFn, err := Open(t.Context(), tt.giveOpts)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			t.Cleanup(func() { require.NoError(t, closeFn()) })
			assert.IsType(t, tt.wantType, s)
		})
	}
}
