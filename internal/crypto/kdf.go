package crypto

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// KeyBytes is the size of every symmetric key produced here.
const KeyBytes = chacha20poly1305.KeySize

// DeriveKey expands secret into a KeyBytes key with HKDF-SHA256.
func DeriveKey(secret, salt []byte, info string) ([]byte, error) {
	out := make([]byte, KeyBytes)
	r := hkdf.New(sha256.New, secret, salt, []byte(info))
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("crypto: hkdf: %w", err)
	}
	return out, nil
}

// WrapKey seals key under kek with ChaCha20-Poly1305 and a zero nonce.
// Each kek must be used for exactly one wrap.
func WrapKey(kek, key, ad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(kek)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte
	return aead.Seal(nil, nonce[:], key, ad), nil
}

// UnwrapKey reverses WrapKey.
func UnwrapKey(kek, wrapped, ad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(kek)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte
	return aead.Open(nil, nonce[:], wrapped, ad)
}

// WrappedKeyBytes is the size of a wrapped KeyBytes key.
const WrappedKeyBytes = KeyBytes + chacha20poly1305.Overhead
