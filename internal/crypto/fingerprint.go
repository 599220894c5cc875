package crypto

import (
	"crypto/sha256"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // HASH160 is fixed by BIP-32.

	"rolechain/internal/domain"
)

// Hash160 returns RIPEMD160(SHA256(b)).
func Hash160(b []byte) []byte {
	sum := sha256.Sum256(b)
	h := ripemd160.New()
	_, _ = h.Write(sum[:])
	return h.Sum(nil)
}

// Fingerprint returns the first four bytes of HASH160 of a compressed
// public key.
func Fingerprint(compressedPub []byte) domain.Fingerprint {
	var fp domain.Fingerprint
	copy(fp[:], Hash160(compressedPub))
	return fp
}
