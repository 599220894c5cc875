package identity

import (
	"errors"
	"fmt"
	"io"
	"unicode"

	"go.uber.org/zap"

	"rolechain/internal/domain"
	"rolechain/internal/protocol/keytree"
)

const (
	// minPassphraseLength defines the minimum number of characters required for a passphrase.
	minPassphraseLength = 12
)

var (
	// ErrWeakPassphrase is returned when the passphrase fails the strength policy.
	ErrWeakPassphrase = fmt.Errorf(
		"passphrase is too weak (must be at least %d characters and include upper, lower, "+
			"number, and symbol)",
		minPassphraseLength,
	)
	// ErrIdentityExists is returned by GenerateIdentity when a seed is already stored.
	ErrIdentityExists = errors.New("identity already exists")
)

// Service manages the root seed using a backing store.
type Service struct {
	store   domain.IdentityStore
	log     *zap.Logger
	entropy io.Reader
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithEntropy replaces crypto/rand as the seed source.
func WithEntropy(r io.Reader) Option { return func(s *Service) { s.entropy = r } }

// New returns an identity service backed by the given store.
func New(store domain.IdentityStore, opts ...Option) *Service {
	s := &Service{store: store, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateIdentity creates a new root, saves its seed encrypted with the
// passphrase and returns the shareable summary.
func (s *Service) GenerateIdentity(passphrase string) (domain.IdentitySummary, error) {
	if !isSecurePassphrase(passphrase) {
		return domain.IdentitySummary{}, ErrWeakPassphrase
	}
	exists, err := s.store.HasSeed()
	if err != nil {
		return domain.IdentitySummary{}, err
	}
	if exists {
		return domain.IdentitySummary{}, ErrIdentityExists
	}

	root, seed, err := keytree.CreateRoot(s.entropy, "")
	if err != nil {
		return domain.IdentitySummary{}, err
	}
	defer seed.Wipe()
	if err := s.store.SaveSeed(passphrase, seed); err != nil {
		return domain.IdentitySummary{}, err
	}

	summary, err := summarize(root)
	if err != nil {
		return domain.IdentitySummary{}, err
	}
	s.log.Info("identity created",
		zap.Stringer("root", summary.Root),
		zap.Stringer("fingerprint", summary.Fingerprint))
	return summary, nil
}

// LoadRoot decrypts the seed and rebuilds the master node.
func (s *Service) LoadRoot(passphrase string) (*keytree.KeyNode, error) {
	raw, err := s.store.LoadSeed(passphrase)
	if err != nil {
		return nil, err
	}
	seed := keytree.Seed(raw)
	defer seed.Wipe()
	return keytree.FromSeed(seed)
}

// Environment returns the private environment node every role hangs from.
func (s *Service) Environment(passphrase string) (*keytree.KeyNode, error) {
	root, err := s.LoadRoot(passphrase)
	if err != nil {
		return nil, err
	}
	return root.DerivePath(keytree.EnvironmentPath)
}

// RoleNode returns the private node of role's reserved branch.
func (s *Service) RoleNode(passphrase string, role domain.Role) (*keytree.KeyNode, error) {
	root, err := s.LoadRoot(passphrase)
	if err != nil {
		return nil, err
	}
	return root.DeriveRole(role)
}

// Describe returns the summary of the stored identity.
func (s *Service) Describe(passphrase string) (domain.IdentitySummary, error) {
	root, err := s.LoadRoot(passphrase)
	if err != nil {
		return domain.IdentitySummary{}, err
	}
	return summarize(root)
}

// PublicRoleAddress recomputes a role address from an environment xpub,
// without any private key.
func PublicRoleAddress(xpub string, role domain.Role) (domain.Address, error) {
	env, err := keytree.ParseExtendedKey(xpub)
	if err != nil {
		return "", err
	}
	n, err := keytree.DeriveRoleFromEnvironment(env, role)
	if err != nil {
		return "", err
	}
	return n.Address(), nil
}

func summarize(root *keytree.KeyNode) (domain.IdentitySummary, error) {
	env, err := root.DerivePath(keytree.EnvironmentPath)
	if err != nil {
		return domain.IdentitySummary{}, err
	}
	xpub, err := env.Neuter().PublicExtendedKey()
	if err != nil {
		return domain.IdentitySummary{}, err
	}
	return domain.IdentitySummary{
		Root:        root.Address(),
		Fingerprint: root.Fingerprint(),
		Environment: xpub,
	}, nil
}

// isSecurePassphrase enforces a basic strength policy.
func isSecurePassphrase(passphrase string) bool {
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	if len(passphrase) < minPassphraseLength {
		return false
	}
	for _, r := range passphrase {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			hasSymbol = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSymbol
}
