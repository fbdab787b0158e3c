package datastore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/gasagency/gasagency-deployments/deployment"
	"github.com/gasagency/gasagency-deployments/network"
)

// chainIDFile is written next to the records of a network, as hardhat-deploy does.
const chainIDFile = ".chainId"

var _ Store = (*FileStore)(nil)

// FileStore stores records as JSON files under a root directory.
type FileStore struct {
	mu   sync.Mutex
	root string
}

// NewFileStore returns a FileStore rooted at dir, which defaults to "deployments".
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = "deployments"
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve store dir %q: %w", dir, err)
	}

	return &FileStore{root: abs}, nil
}

// Root returns the absolute root directory of the store.
func (s *FileStore) Root() string {
	return s.root
}

// fileRecord is the on-disk layout of a record.
type fileRecord struct {
	Address         common.Address `json:"address"`
	TransactionHash common.Hash    `json:"transactionHash"`
	Receipt         fileReceipt    `json:"receipt"`
	Args            []any          `json:"args"`
	NumDeployments  int            `json:"numDeployments"`

	Contract   string            `json:"contractName"`
	NetworkID  network.NetworkID `json:"chainId"`
	Network    string            `json:"network"`
	ReportID   string            `json:"reportId,omitempty"`
	DeployedAt time.Time         `json:"deployedAt"`
}

type fileReceipt struct {
	From            common.Address `json:"from"`
	ContractAddress common.Address `json:"contractAddress"`
	TransactionHash common.Hash    `json:"transactionHash"`
	BlockNumber     uint64         `json:"blockNumber"`
	Confirmations   uint64         `json:"confirmations"`
}

func toFileRecord(rec deployment.Record, numDeployments int) fileRecord {
	return fileRecord{
		Address:         rec.Address,
		TransactionHash: rec.TxHash,
		Receipt: fileReceipt{
			From:            rec.Deployer,
			ContractAddress: rec.Address,
			TransactionHash: rec.TxHash,
			BlockNumber:     rec.BlockNumber,
			Confirmations:   rec.Confirmations,
		},
		Args:           rec.Args,
		NumDeployments: numDeployments,
		Contract:       rec.Contract,
		NetworkID:      rec.NetworkID,
		Network:        rec.Network,
		ReportID:       rec.ReportID,
		DeployedAt:     rec.DeployedAt,
	}
}

func (f fileRecord) record() deployment.Record {
	return deployment.Record{
		Contract:      f.Contract,
		NetworkID:     f.NetworkID,
		Network:       f.Network,
		Address:       f.Address,
		TxHash:        f.TransactionHash,
		BlockNumber:   f.Receipt.BlockNumber,
		Confirmations: f.Receipt.Confirmations,
		Deployer:      f.Receipt.From,
		Args:          f.Args,
		ReportID:      f.ReportID,
		DeployedAt:    f.DeployedAt,
	}
}

// Save writes rec to <root>/<network>/<Contract>.json. An existing record is replaced and its
// deployment count carried over.
func (s *FileStore) Save(_ context.Context, rec deployment.Record) error {
	if err := validateRecord(rec); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.root, rec.NetworkID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	chainID := []byte(strconv.FormatUint(uint64(rec.NetworkID), 10))
	if err := os.WriteFile(filepath.Join(dir, chainIDFile), chainID, 0o644); err != nil {
		return fmt.Errorf("failed to write chain id: %w", err)
	}

	path := s.path(rec.NetworkID, rec.Contract)
	count := 1
	if prev, err := readFileRecord(path); err == nil {
		count = prev.NumDeployments + 1
	} else if !errors.Is(err, ErrRecordNotFound) {
		return err
	}

	data, err := json.MarshalIndent(toFileRecord(rec, count), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s record: %w", rec.Contract, err)
	}

	return writeFileAtomic(path, append(data, '\n'))
}

// Get reads the record of contract on network id.
func (s *FileStore) Get(_ context.Context, id network.NetworkID, contract string) (deployment.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := readFileRecord(s.path(id, contract))
	if err != nil {
		return deployment.Record{}, fmt.Errorf("%s on %s: %w", contract, id, err)
	}

	return f.record(), nil
}

// List reads every record under the root. Directories that are not named after a known network
// are skipped.
func (s *FileStore) List(_ context.Context) ([]deployment.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dirs, err := os.ReadDir(s.root)
	if errors.Is(err, fs.ErrNotExist) {
		return []deployment.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store dir: %w", err)
	}

	records := []deployment.Record{}
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		if _, perr := network.ParseNetworkID(d.Name()); perr != nil {
			continue
		}

		files, rerr := os.ReadDir(filepath.Join(s.root, d.Name()))
		if rerr != nil {
			return nil, fmt.Errorf("failed to read %s: %w", d.Name(), rerr)
		}

		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
				continue
			}

			fr, ferr := readFileRecord(filepath.Join(s.root, d.Name(), f.Name()))
			if ferr != nil {
				return nil, ferr
			}
			records = append(records, fr.record())
		}
	}

	sortRecords(records)

	return records, nil
}

func (s *FileStore) path(id network.NetworkID, contract string) string {
	return filepath.Join(s.root, id.String(), contract+".json")
}

func readFileRecord(path string) (fileRecord, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fileRecord{}, ErrRecordNotFound
	}
	if err != nil {
		return fileRecord{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var f struct {
		fileRecord
		Args json.RawMessage `json:"args"`
	}
	if err = json.Unmarshal(data, &f); err != nil {
		return fileRecord{}, fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}

	if len(f.Args) > 0 && string(f.Args) != "null" {
		if f.fileRecord.Args, err = decodeArgs(f.Args); err != nil {
			return fileRecord{}, fmt.Errorf("failed to unmarshal args in %s: %w", path, err)
		}
	}

	return f.fileRecord, nil
}

// writeFileAtomic writes data to a temporary file in the target directory and renames it over
// path.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
