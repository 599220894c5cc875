package crypto

import (
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

const (
	// PublicKeyBytes is the size of a compressed secp256k1 public key.
	PublicKeyBytes = secp256k1.PubKeyBytesLenCompressed
	// PrivateKeyBytes is the size of a serialized secp256k1 scalar.
	PrivateKeyBytes = secp256k1.PrivKeyBytesLen
)

var errNilKey = errors.New("crypto: nil key")

// ParsePublicKey parses a compressed or uncompressed secp256k1 public key.
func ParsePublicKey(b []byte) (*secp256k1.PublicKey, error) {
	pub, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, fmt.Errorf("crypto: parse public key: %w", err)
	}
	return pub, nil
}

// SharedSecret computes the ECDH shared secret (the x coordinate of priv*pub).
// Both parties arrive at the same 32 bytes.
func SharedSecret(priv *secp256k1.PrivateKey, pub *secp256k1.PublicKey) ([]byte, error) {
	if priv == nil || pub == nil {
		return nil, errNilKey
	}
	return secp256k1.GenerateSharedSecret(priv, pub), nil
}

// SignDigest returns a DER-encoded ECDSA signature over a 32-byte digest.
// Nonces are deterministic (RFC 6979).
func SignDigest(priv *secp256k1.PrivateKey, digest []byte) ([]byte, error) {
	if priv == nil {
		return nil, errNilKey
	}
	return ecdsa.Sign(priv, digest).Serialize(), nil
}

// VerifyDigest reports whether sig is a valid DER-encoded signature of digest
// under pub. Malformed signatures verify as false.
func VerifyDigest(pub *secp256k1.PublicKey, digest, sig []byte) bool {
	if pub == nil {
		return false
	}
	parsed, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	return parsed.Verify(digest, pub)
}
