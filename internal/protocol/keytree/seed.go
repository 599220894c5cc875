package keytree

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"fmt"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/pbkdf2"

	"rolechain/internal/crypto"
	"rolechain/internal/domain"
)

const (
	// EntropyBytes is how much randomness a new root consumes.
	EntropyBytes = 32
	// SeedBytes is the size of a stretched seed.
	SeedBytes = 64

	seedRounds     = 2048
	seedSaltPrefix = "mnemonic"
	masterHMACKey  = "Bitcoin seed"
)

// Seed is stretched root entropy. It is the only secret needed to rebuild a
// whole tree.
type Seed []byte

// Wipe zeroes the seed in place.
func (s Seed) Wipe() { crypto.Wipe(s) }

// NewSeed reads EntropyBytes from entropy (crypto/rand when nil) and folds
// passphrase in with PBKDF2-HMAC-SHA512.
func NewSeed(entropy io.Reader, passphrase string) (Seed, error) {
	if entropy == nil {
		entropy = rand.Reader
	}
	buf := make([]byte, EntropyBytes)
	defer crypto.Wipe(buf)

	if _, err := io.ReadFull(entropy, buf); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEntropy, err)
	}
	if predictable(buf) {
		return nil, fmt.Errorf("%w: source returned a constant byte stream", domain.ErrEntropy)
	}
	salt := []byte(seedSaltPrefix + passphrase)
	return pbkdf2.Key(buf, salt, seedRounds, SeedBytes, sha512.New), nil
}

// predictable flags sources stuck on a single byte value.
func predictable(b []byte) bool {
	for _, c := range b[1:] {
		if c != b[0] {
			return false
		}
	}
	return true
}

// FromSeed builds the master node of the tree rooted at seed.
func FromSeed(seed Seed) (*KeyNode, error) {
	if len(seed) < 16 || len(seed) > SeedBytes {
		return nil, fmt.Errorf("%w: seed must be 16..%d bytes, got %d", domain.ErrEntropy, SeedBytes, len(seed))
	}
	mac := hmac.New(sha512.New, []byte(masterHMACKey))
	_, _ = mac.Write(seed)
	sum := mac.Sum(nil)
	defer crypto.Wipe(sum)

	var k secp256k1.ModNScalar
	if overflow := k.SetByteSlice(sum[:32]); overflow || k.IsZero() {
		return nil, fmt.Errorf("%w: master key", domain.ErrDerivation)
	}
	priv := secp256k1.NewPrivateKey(&k)
	k.Zero()

	n := newNode(priv, priv.PubKey(), sum[32:])
	n.path = Path{}
	return n, nil
}

// CreateRoot generates a fresh seed and returns its master node together
// with the seed, which the caller is responsible for persisting or wiping.
func CreateRoot(entropy io.Reader, passphrase string) (*KeyNode, Seed, error) {
	seed, err := NewSeed(entropy, passphrase)
	if err != nil {
		return nil, nil, err
	}
	root, err := FromSeed(seed)
	if err != nil {
		seed.Wipe()
		return nil, nil, err
	}
	return root, seed, nil
}
