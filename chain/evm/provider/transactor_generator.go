package provider

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/crypto"
)

// TransactorGenerator creates the *bind.TransactOpts that sign transactions for a chain id.
type TransactorGenerator interface {
	Generate(chainID *big.Int) (*bind.TransactOpts, error)
}

var (
	_ TransactorGenerator = (*transactorFromRaw)(nil)
	_ TransactorGenerator = (*transactorRandom)(nil)
)

// TransactorFromRaw returns a generator which creates a transactor from a hex encoded private
// key, with or without the 0x prefix.
func TransactorFromRaw(privKey string) TransactorGenerator {
	return &transactorFromRaw{
		privKey: strings.TrimPrefix(strings.TrimSpace(privKey), "0x"),
	}
}

type transactorFromRaw struct {
	privKey string
}

// Generate parses the private key and returns the bind transactor options.
func (g *transactorFromRaw) Generate(chainID *big.Int) (*bind.TransactOpts, error) {
	if g.privKey == "" {
		return nil, errors.New("private key is empty")
	}

	privKey, err := crypto.HexToECDSA(g.privKey)
	if err != nil {
		return nil, fmt.Errorf("failed to convert private key to ECDSA: %w", err)
	}

	return bind.NewKeyedTransactorWithChainID(privKey, chainID)
}

// TransactorRandom returns a generator which creates a transactor from a random keypair.
func TransactorRandom() TransactorGenerator {
	return &transactorRandom{}
}

type transactorRandom struct{}

// Generate generates a random key and returns the bind transactor options.
func (g *transactorRandom) Generate(chainID *big.Int) (*bind.TransactOpts, error) {
	privKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate random private key: %w", err)
	}

	return bind.NewKeyedTransactorWithChainID(privKey, chainID)
}

// TransactorsFromRaw returns one generator per private key, in the given order.
func TransactorsFromRaw(privKeys []string) []TransactorGenerator {
	gens := make([]TransactorGenerator, 0, len(privKeys))
	for _, k := range privKeys {
		gens = append(gens, TransactorFromRaw(k))
	}

	return gens
}
