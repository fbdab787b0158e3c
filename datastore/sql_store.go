package datastore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	_ "github.com/lib/pq"
	_ "github.com/proullon/ramsql/driver"

	"github.com/gasagency/gasagency-deployments/deployment"
	"github.com/gasagency/gasagency-deployments/network"
)

const (
	schema_DEPLOYMENT_RECORDS = `
		CREATE TABLE IF NOT EXISTS deployment_records (
			network_id     BIGINT NOT NULL,
			contract       TEXT NOT NULL,
			network        TEXT NOT NULL,
			address        TEXT NOT NULL,
			tx_hash        TEXT NOT NULL,
			block_number   BIGINT NOT NULL,
			confirmations  BIGINT NOT NULL,
			deployer       TEXT NOT NULL,
			args           TEXT NOT NULL,
			report_id      TEXT NOT NULL,
			deployed_at    TEXT NOT NULL
		)`

	query_RECORD_BY_KEY = `
		SELECT network_id, contract, network, address, tx_hash, block_number, confirmations,
			deployer, args, report_id, deployed_at
		FROM deployment_records
		WHERE network_id = $1 AND contract = $2`
	query_ALL_RECORDS = `
		SELECT network_id, contract, network, address, tx_hash, block_number, confirmations,
			deployer, args, report_id, deployed_at
		FROM deployment_records`
	query_DELETE_RECORD = `
		DELETE FROM deployment_records
		WHERE network_id = $1 AND contract = $2`
	query_INSERT_RECORD = `
		INSERT INTO deployment_records (network_id, contract, network, address, tx_hash,
			block_number, confirmations, deployer, args, report_id, deployed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
)

var _ Store = (*SQLStore)(nil)

// SQLStore stores records in the deployment_records table.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore creates the deployment_records table if needed and returns a store over db.
func NewSQLStore(ctx context.Context, db *sql.DB) (*SQLStore, error) {
	if _, err := db.ExecContext(ctx, schema_DEPLOYMENT_RECORDS); err != nil {
		return nil, fmt.Errorf("failed to create deployment_records table: %w", err)
	}

	return &SQLStore{db: db}, nil
}

// OpenPostgres connects to the postgres database at dsn.
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	return open(ctx, "postgres", dsn)
}

// OpenMemory opens the in-memory database name. Records live until the last store of the same
// name is closed.
func OpenMemory(ctx context.Context, name string) (*SQLStore, error) {
	return open(ctx, "ramsql", name)
}

func open(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}

	s, err := NewSQLStore(ctx, db)
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	return s, nil
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Save replaces the record of the same contract on the same network in a single transaction.
func (s *SQLStore) Save(ctx context.Context, rec deployment.Record) error {
	if err := validateRecord(rec); err != nil {
		return err
	}

	args, err := json.Marshal(rec.Args)
	if err != nil {
		return fmt.Errorf("failed to marshal %s args: %w", rec.Contract, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	id := int64(rec.NetworkID) //nolint:gosec // network ids are far below MaxInt64
	if _, err = tx.ExecContext(ctx, query_DELETE_RECORD, id, rec.Contract); err != nil {
		return fmt.Errorf("failed to delete previous record: %w", err)
	}

	if _, err = tx.ExecContext(ctx, query_INSERT_RECORD,
		id,
		rec.Contract,
		rec.Network,
		rec.Address.Hex(),
		rec.TxHash.Hex(),
		int64(rec.BlockNumber),   //nolint:gosec // block numbers fit in int64
		int64(rec.Confirmations), //nolint:gosec // confirmations fit in int64
		rec.Deployer.Hex(),
		string(args),
		rec.ReportID,
		rec.DeployedAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}

	return tx.Commit()
}

// Get returns the record of contract on network id.
func (s *SQLStore) Get(ctx context.Context, id network.NetworkID, contract string) (deployment.Record, error) {
	records, err := s.query(ctx, query_RECORD_BY_KEY, int64(id), contract) //nolint:gosec // network ids are far below MaxInt64
	if err != nil {
		return deployment.Record{}, err
	}

	switch len(records) {
	case 0:
		return deployment.Record{}, fmt.Errorf("%s on %s: %w", contract, id, ErrRecordNotFound)
	case 1:
		return records[0], nil
	default:
		return deployment.Record{}, fmt.Errorf("expected a single row, got %d", len(records))
	}
}

// List returns every record.
func (s *SQLStore) List(ctx context.Context) ([]deployment.Record, error) {
	records, err := s.query(ctx, query_ALL_RECORDS)
	if err != nil {
		return nil, err
	}

	sortRecords(records)

	return records, nil
}

func (s *SQLStore) query(ctx context.Context, q string, args ...any) ([]deployment.Record, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := []deployment.Record{}
	for rows.Next() {
		rec, serr := scanRecord(rows)
		if serr != nil {
			return nil, serr
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func scanRecord(rows *sql.Rows) (deployment.Record, error) {
	var (
		id, block, confirmations                    int64
		address, txHash, deployer, args, deployedAt string
		rec                                         deployment.Record
	)

	if err := rows.Scan(
		&id, &rec.Contract, &rec.Network, &address, &txHash, &block, &confirmations,
		&deployer, &args, &rec.ReportID, &deployedAt,
	); err != nil {
		return deployment.Record{}, fmt.Errorf("failed to scan record: %w", err)
	}

	if id < 0 || block < 0 || confirmations < 0 {
		return deployment.Record{}, errors.New("record has negative numeric columns")
	}

	rec.NetworkID = network.NetworkID(id)
	rec.Address = common.HexToAddress(address)
	rec.TxHash = common.HexToHash(txHash)
	rec.BlockNumber = uint64(block)
	rec.Confirmations = uint64(confirmations)
	rec.Deployer = common.HexToAddress(deployer)

	decoded, err := decodeArgs([]byte(args))
	if err != nil {
		return deployment.Record{}, fmt.Errorf("failed to unmarshal args of %s: %w", rec.Contract, err)
	}
	rec.Args = decoded

	t, err := time.Parse(time.RFC3339Nano, deployedAt)
	if err != nil {
		return deployment.Record{}, fmt.Errorf("invalid deployed_at of %s: %w", rec.Contract, err)
	}
	rec.DeployedAt = t

	return rec, nil
}
