package crypto

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"

	"rolechain/internal/domain"
)

var errChecksum = errors.New("crypto: base58check checksum mismatch")

// EncodeAddress returns the address of a compressed public key.
func EncodeAddress(compressedPub []byte) domain.Address {
	return domain.Address(base58.Encode(compressedPub))
}

// DecodeAddress returns the compressed public key bytes an address encodes.
// Anything that is not a valid secp256k1 point fails with
// domain.ErrInvalidAddress.
func DecodeAddress(addr domain.Address) ([]byte, error) {
	if addr == "" {
		return nil, fmt.Errorf("%w: empty", domain.ErrInvalidAddress)
	}
	b, err := base58.Decode(string(addr))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidAddress, err)
	}
	if len(b) != PublicKeyBytes {
		return nil, fmt.Errorf("%w: %d bytes", domain.ErrInvalidAddress, len(b))
	}
	if _, err := ParsePublicKey(b); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidAddress, err)
	}
	return b, nil
}

// Base58CheckEncode appends a 4-byte double-SHA256 checksum and encodes
// payload as base58.
func Base58CheckEncode(payload []byte) string {
	buf := make([]byte, 0, len(payload)+4)
	buf = append(buf, payload...)
	buf = append(buf, checksum(payload)...)
	return base58.Encode(buf)
}

// Base58CheckDecode is the inverse of Base58CheckEncode.
func Base58CheckDecode(s string) ([]byte, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("crypto: base58: %w", err)
	}
	if len(b) < 4 {
		return nil, errChecksum
	}
	payload, sum := b[:len(b)-4], b[len(b)-4:]
	if !bytes.Equal(checksum(payload), sum) {
		return nil, errChecksum
	}
	return payload, nil
}

func checksum(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:4]
}
