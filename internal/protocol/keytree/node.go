package keytree

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"rolechain/internal/crypto"
	"rolechain/internal/domain"
)

// KeyNode is one node of a key tree.
type KeyNode struct {
	priv       *secp256k1.PrivateKey // nil once neutered
	pub        *secp256k1.PublicKey
	compressed []byte
	chainCode  [32]byte

	path   Path
	depth  int
	index  uint32
	parent domain.Fingerprint
}

func newNode(priv *secp256k1.PrivateKey, pub *secp256k1.PublicKey, chainCode []byte) *KeyNode {
	n := &KeyNode{
		priv:       priv,
		pub:        pub,
		compressed: pub.SerializeCompressed(),
	}
	copy(n.chainCode[:], chainCode)
	return n
}

// Address returns the node's public identifier.
func (n *KeyNode) Address() domain.Address { return crypto.EncodeAddress(n.compressed) }

// PublicKey returns a copy of the compressed public point.
func (n *KeyNode) PublicKey() []byte { return bytes.Clone(n.compressed) }

// Fingerprint returns the node's 4-byte identifier.
func (n *KeyNode) Fingerprint() domain.Fingerprint { return crypto.Fingerprint(n.compressed) }

// ParentFingerprint returns the fingerprint of the node this one was derived
// from; zero for a master node.
func (n *KeyNode) ParentFingerprint() domain.Fingerprint { return n.parent }

// Path returns the derivation path from the nearest node whose position is
// known: the master for trees built from a seed, or the imported node for
// trees built from an extended public key.
func (n *KeyNode) Path() Path { return n.path.clone() }

// Depth returns the absolute depth of the node in its tree.
func (n *KeyNode) Depth() int { return n.depth }

// Index returns the child index this node was derived at.
func (n *KeyNode) Index() uint32 { return n.index }

// IsNeutered reports whether the node lacks private material.
func (n *KeyNode) IsNeutered() bool { return n.priv == nil }

// Neuter returns a public-only copy of n. The original is left untouched.
func (n *KeyNode) Neuter() *KeyNode {
	c := *n
	c.priv = nil
	c.compressed = bytes.Clone(n.compressed)
	c.path = n.path.clone()
	return &c
}

// Sign returns a DER-encoded ECDSA signature over SHA-256(msg).
func (n *KeyNode) Sign(msg []byte) ([]byte, error) {
	if n.priv == nil {
		return nil, fmt.Errorf("%w: cannot sign", domain.ErrNoPrivateKey)
	}
	digest := sha256.Sum256(msg)
	return crypto.SignDigest(n.priv, digest[:])
}

// Verify checks sig over msg against this node's public point.
func (n *KeyNode) Verify(msg, sig []byte) bool {
	digest := sha256.Sum256(msg)
	return crypto.VerifyDigest(n.pub, digest[:], sig)
}

// SharedSecret runs ECDH between this node's private scalar and the public
// point behind peer. The result must be wiped by the caller.
func (n *KeyNode) SharedSecret(peer domain.Address) ([]byte, error) {
	if n.priv == nil {
		return nil, fmt.Errorf("%w: cannot agree on a key", domain.ErrNoPrivateKey)
	}
	pub, err := publicKeyOf(peer)
	if err != nil {
		return nil, err
	}
	return crypto.SharedSecret(n.priv, pub)
}

// String returns a log-safe description of the node.
func (n *KeyNode) String() string {
	kind := "private"
	if n.priv == nil {
		kind = "public"
	}
	return fmt.Sprintf("%s %s [%s]", n.path, n.Address(), kind)
}

// Verify checks sig over msg against the public point behind addr.
func Verify(addr domain.Address, msg, sig []byte) bool {
	pub, err := publicKeyOf(addr)
	if err != nil {
		return false
	}
	digest := sha256.Sum256(msg)
	return crypto.VerifyDigest(pub, digest[:], sig)
}

// FingerprintOf returns the fingerprint of the key behind addr.
func FingerprintOf(addr domain.Address) (domain.Fingerprint, error) {
	b, err := crypto.DecodeAddress(addr)
	if err != nil {
		return domain.Fingerprint{}, err
	}
	return crypto.Fingerprint(b), nil
}

func publicKeyOf(addr domain.Address) (*secp256k1.PublicKey, error) {
	b, err := crypto.DecodeAddress(addr)
	if err != nil {
		return nil, err
	}
	return crypto.ParsePublicKey(b)
}
