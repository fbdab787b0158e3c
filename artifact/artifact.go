// Package artifact loads compiled contract artifacts produced by hardhat.
package artifact

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrArtifactNotFound is returned when no artifact exists for a contract name.
var ErrArtifactNotFound = errors.New("artifact not found")

// Artifact is the deployable output of compiling a contract.
type Artifact struct {
	ContractName string
	SourceName   string
	ABI          abi.ABI
	Bytecode     []byte
}

// hardhatArtifact is the on-disk layout of artifacts/contracts/<Source>.sol/<Name>.json.
type hardhatArtifact struct {
	Format       string          `json:"_format"`
	ContractName string          `json:"contractName"`
	SourceName   string          `json:"sourceName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     string          `json:"bytecode"`
}

// Parse decodes a hardhat artifact.
func Parse(data []byte) (Artifact, error) {
	var raw hardhatArtifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return Artifact{}, fmt.Errorf("failed to unmarshal artifact: %w", err)
	}
	if raw.ContractName == "" {
		return Artifact{}, errors.New("artifact has no contract name")
	}

	parsed, err := abi.JSON(bytes.NewReader(raw.ABI))
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to parse abi of %s: %w", raw.ContractName, err)
	}

	code, err := hexutil.Decode(raw.Bytecode)
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to decode bytecode of %s: %w", raw.ContractName, err)
	}
	if len(code) == 0 {
		return Artifact{}, fmt.Errorf("artifact %s has no bytecode, is the contract abstract?", raw.ContractName)
	}

	return Artifact{
		ContractName: raw.ContractName,
		SourceName:   raw.SourceName,
		ABI:          parsed,
		Bytecode:     code,
	}, nil
}

// Source looks up artifacts by contract name.
type Source interface {
	Artifact(name string) (Artifact, error)
}

// MemorySource serves artifacts held in memory.
type MemorySource map[string]Artifact

// Artifact returns the artifact registered under name.
func (s MemorySource) Artifact(name string) (Artifact, error) {
	a, ok := s[name]
	if !ok {
		return Artifact{}, fmt.Errorf("%s: %w", name, ErrArtifactNotFound)
	}

	return a, nil
}

// DirSource reads artifacts from a hardhat artifacts directory. Lookups are cached.
type DirSource struct {
	root string

	mu    sync.Mutex
	cache map[string]Artifact
}

// NewDirSource returns a DirSource rooted at dir, usually "artifacts".
func NewDirSource(dir string) *DirSource {
	return &DirSource{root: dir, cache: make(map[string]Artifact)}
}

// Artifact finds <name>.json below the root, skipping debug (.dbg.json) files and the build-info
// directory.
func (s *DirSource) Artifact(name string) (Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a, ok := s.cache[name]; ok {
		return a, nil
	}

	var found string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && d.Name() == "build-info" {
			return filepath.SkipDir
		}
		if !d.IsDir() && d.Name() == name+".json" {
			found = path

			return filepath.SkipAll
		}

		return nil
	})
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to search artifacts in %s: %w", s.root, err)
	}
	if found == "" {
		return Artifact{}, fmt.Errorf("%s in %s: %w", name, s.root, ErrArtifactNotFound)
	}

	data, err := os.ReadFile(found)
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to read artifact: %w", err)
	}

	a, err := Parse(data)
	if err != nil {
		return Artifact{}, fmt.Errorf("%s: %w", found, err)
	}
	s.cache[name] = a

	return a, nil
}
