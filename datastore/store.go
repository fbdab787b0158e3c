// Package datastore persists deployment records outside the orchestrator. The file store writes
// the layout used by hardhat-deploy, deployments/<network>/<Contract>.json, so existing tooling
// can read it.
package datastore

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/gasagency/gasagency-deployments/deployment"
	"github.com/gasagency/gasagency-deployments/network"
)

// ErrRecordNotFound is returned when no record exists for a network and contract.
var ErrRecordNotFound = errors.New("deployment record not found")

// Store keeps the latest deployment record of each contract on each network.
type Store interface {
	// Save stores rec, replacing the previous record of the same contract on the same network.
	Save(ctx context.Context, rec deployment.Record) error
	// Get returns the record of contract on network id, or ErrRecordNotFound.
	Get(ctx context.Context, id network.NetworkID, contract string) (deployment.Record, error)
	// List returns every record ordered by network id and contract name.
	List(ctx context.Context) ([]deployment.Record, error)
}

// Kind names a Store implementation.
type Kind string

const (
	KindFile     Kind = "file"
	KindPostgres Kind = "postgres"
	KindMemory   Kind = "memory"
)

// Options selects and configures a Store.
type Options struct {
	Kind Kind
	// Dir is the root of the file store.
	Dir string
	// DSN is the postgres connection string.
	DSN string
}

// Open returns the Store described by opts. The caller must call the returned close function.
func Open(ctx context.Context, opts Options) (Store, func() error, error) {
	noop := func() error { return nil }

	switch opts.Kind {
	case KindFile, "":
		s, err := NewFileStore(opts.Dir)
		if err != nil {
			return nil, nil, err
		}

		return s, noop, nil
	case KindPostgres:
		if opts.DSN == "" {
			return nil, nil, errors.New("postgres store requires a DSN")
		}

		s, err := OpenPostgres(ctx, opts.DSN)
		if err != nil {
			return nil, nil, err
		}

		return s, s.Close, nil
	case KindMemory:
		s, err := OpenMemory(ctx, "gasagency")
		if err != nil {
			return nil, nil, err
		}

		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store kind %q, want one of file, postgres or memory", opts.Kind)
	}
}

func validateRecord(rec deployment.Record) error {
	if rec.Contract == "" {
		return errors.New("record has no contract name")
	}
	if !rec.NetworkID.Known() {
		return fmt.Errorf("record network %d: %w", uint64(rec.NetworkID), network.ErrUnknownNetwork)
	}

	return nil
}

func sortRecords(records []deployment.Record) {
	slices.SortFunc(records, func(a, b deployment.Record) int {
		return cmp.Or(
			cmp.Compare(a.NetworkID, b.NetworkID),
			cmp.Compare(a.Contract, b.Contract),
		)
	})
}
