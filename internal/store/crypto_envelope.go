package store

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"rolechain/internal/crypto"
)

const (
	// keystoreFormatVersion is the sealed-seed format written by this package.
	keystoreFormatVersion = 1
	keystoreSaltBytes     = 16
)

var (
	// ErrWrongPassphrase is returned when the passphrase is incorrect or the
	// sealed file has been modified.
	ErrWrongPassphrase = errors.New("wrong passphrase or corrupted keystore")
)

// sealedBlob is the on-disk JSON structure holding the ciphertext and KDF
// parameters.
type sealedBlob struct {
	V      int    `json:"v"`
	KDF    string `json:"kdf"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Cipher []byte `json:"cipher"`
}

type scryptParams struct{ N, r, p int }

// Tunables for scrypt key derivation.
var defaultScrypt = scryptParams{N: 1 << 15, r: 8, p: 1}

// seal derives a key from passphrase and seals raw into a JSON blob.
func seal(passphrase string, raw []byte, kp scryptParams) ([]byte, error) {
	salt := make([]byte, keystoreSaltBytes)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	aead, err := keystoreAEAD(passphrase, salt, kp)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte // zero nonce; salt-bound key is single use
	return json.Marshal(sealedBlob{
		V:      keystoreFormatVersion,
		KDF:    "scrypt",
		Salt:   salt,
		N:      kp.N,
		R:      kp.r,
		P:      kp.p,
		Cipher: aead.Seal(nil, nonce[:], raw, salt),
	})
}

// open reverses seal.
func open(passphrase string, b []byte) ([]byte, error) {
	var bl sealedBlob
	if err := json.Unmarshal(b, &bl); err != nil {
		return nil, fmt.Errorf("keystore: %w", err)
	}
	if bl.V > keystoreFormatVersion {
		return nil, fmt.Errorf("unsupported keystore version %d", bl.V)
	}
	if bl.KDF != "" && bl.KDF != "scrypt" {
		return nil, fmt.Errorf("unsupported keystore kdf %q", bl.KDF)
	}
	aead, err := keystoreAEAD(passphrase, bl.Salt, scryptParams{N: bl.N, r: bl.R, p: bl.P})
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte
	pt, err := aead.Open(nil, nonce[:], bl.Cipher, bl.Salt)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return pt, nil
}

func keystoreAEAD(passphrase string, salt []byte, kp scryptParams) (cipher.AEAD, error) {
	key, err := scrypt.Key([]byte(passphrase), salt, kp.N, kp.r, kp.p, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(key)
	return chacha20poly1305.New(key)
}
