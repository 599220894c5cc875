package store

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"rolechain/internal/domain"
)

const seedFilename = "seed.json.enc"

// ErrNoIdentity is returned by LoadSeed before any seed has been saved.
var ErrNoIdentity = errors.New("no identity found; run init first")

// IdentityFileStore persists the root seed to disk, sealed under a passphrase.
type IdentityFileStore struct {
	dir string
	kp  scryptParams
	mu  sync.Mutex
}

// NewIdentityFileStore returns an IdentityFileStore rooted at dir.
func NewIdentityFileStore(dir string) *IdentityFileStore {
	return &IdentityFileStore{dir: dir, kp: defaultScrypt}
}

// SaveSeed seals seed with passphrase and writes it, replacing any previous
// seed.
func (s *IdentityFileStore) SaveSeed(passphrase string, seed []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := seal(passphrase, seed, s.kp)
	if err != nil {
		return err
	}
	return writeFile(s.path(), b, 0o600)
}

// LoadSeed reads and unseals the seed.
func (s *IdentityFileStore) LoadSeed(passphrase string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := readFile(s.path())
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNoIdentity
	}
	return open(passphrase, b)
}

// HasSeed reports whether a sealed seed exists.
func (s *IdentityFileStore) HasSeed() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := os.Stat(s.path())
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

func (s *IdentityFileStore) path() string { return filepath.Join(s.dir, seedFilename) }

// Compile-time assertion that IdentityFileStore implements domain.IdentityStore.
var _ domain.IdentityStore = (*IdentityFileStore)(nil)
