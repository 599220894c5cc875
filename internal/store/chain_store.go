package store

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"rolechain/internal/crypto"
	"rolechain/internal/domain"
)

const (
	chainDir    = "chains"
	chainSuffix = ".json"
)

// ChainFileStore keeps one JSON snapshot per chain, named after its root
// address.
type ChainFileStore struct {
	dir string
	mu  sync.RWMutex
}

// NewChainFileStore returns a ChainFileStore under dir/chains.
func NewChainFileStore(dir string) *ChainFileStore {
	return &ChainFileStore{dir: filepath.Join(dir, chainDir)}
}

// SaveSnapshot writes snapshot, replacing the previous one for its root.
func (s *ChainFileStore) SaveSnapshot(snapshot domain.ChainSnapshot) error {
	path, err := s.path(snapshot.RootAddress)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(path, snapshot, 0o600)
}

// LoadSnapshot reads the snapshot of root. ok is false when none is stored.
func (s *ChainFileStore) LoadSnapshot(root domain.Address) (domain.ChainSnapshot, bool, error) {
	path, err := s.path(root)
	if err != nil {
		return domain.ChainSnapshot{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var snap domain.ChainSnapshot
	found, err := readJSON(path, &snap)
	if err != nil || !found {
		return domain.ChainSnapshot{}, false, err
	}
	return snap, true, nil
}

// ListChains returns the root address of every stored chain, sorted.
func (s *ChainFileStore) ListChains() ([]domain.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []domain.Address
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, chainSuffix) {
			continue
		}
		out = append(out, domain.Address(strings.TrimSuffix(name, chainSuffix)))
	}
	slices.Sort(out)
	return out, nil
}

// path maps root to its file. Only valid addresses are accepted, which also
// keeps separators out of file names.
func (s *ChainFileStore) path(root domain.Address) (string, error) {
	if _, err := crypto.DecodeAddress(root); err != nil {
		return "", fmt.Errorf("chain store: %w", err)
	}
	return filepath.Join(s.dir, root.String()+chainSuffix), nil
}

// Compile-time assertion that ChainFileStore implements domain.ChainStore.
var _ domain.ChainStore = (*ChainFileStore)(nil)
