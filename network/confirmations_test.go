package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfirmations_For(t *testing.T) {
	t.Parallel()

	c := DefaultConfirmations()

	tests := []struct {
		name string
		give NetworkID
		want uint64
	}{
		{name: "mumbai", give: Mumbai, want: 6},
		{name: "goerli", give: Goerli, want: 6},
		{name: "rinkeby", give: Rinkeby, want: 6},
		{name: "hardhat falls back to default", give: Hardhat, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, c.For(tt.give))
		})
	}
}

func TestNewConfirmations(t *testing.T) {
	t.Parallel()

	overrides := map[NetworkID]uint64{Hardhat: 3, Goerli: 0}
	c := NewConfirmations(overrides)
	overrides[Hardhat] = 10

	assert.Equal(t, uint64(3), c.For(Hardhat))

	_, ok := c.Override(Goerli)
	assert.False(t, ok)
	assert.Equal(t, DefaultConfirmationDepth, c.For(Goerli))
}
