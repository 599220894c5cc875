package types

import (
	"encoding/hex"
	"fmt"
)

// Address is the public identifier of a key node: the base58 encoding of its
// compressed secp256k1 public key.
type Address string

// String returns the string form of the address.
func (a Address) String() string { return string(a) }

// Fingerprint is the 4-byte BIP-32 identifier of a public key.
type Fingerprint [4]byte

// String returns the fingerprint as lowercase hex.
func (f Fingerprint) String() string { return hex.EncodeToString(f[:]) }

// IsZero reports whether f is the all-zero fingerprint used by master keys.
func (f Fingerprint) IsZero() bool { return f == Fingerprint{} }

// Slice returns the fingerprint as a []byte.
func (f Fingerprint) Slice() []byte { return f[:] }

// MarshalText encodes the fingerprint as hex.
func (f Fingerprint) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText decodes a hex fingerprint.
func (f *Fingerprint) UnmarshalText(b []byte) error {
	parsed, err := ParseFingerprint(string(b))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ParseFingerprint decodes an 8-character hex fingerprint.
func ParseFingerprint(s string) (Fingerprint, error) {
	var f Fingerprint
	b, err := hex.DecodeString(s)
	if err != nil {
		return f, fmt.Errorf("fingerprint: %w", err)
	}
	if len(b) != len(f) {
		return f, fmt.Errorf("fingerprint: want %d bytes, got %d", len(f), len(b))
	}
	copy(f[:], b)
	return f, nil
}
