package keytree

import (
	"encoding/binary"
	"errors"
	"fmt"

	"rolechain/internal/crypto"
)

// ErrExtendedKey is returned for extended keys that cannot be decoded.
var ErrExtendedKey = errors.New("keytree: malformed extended public key")

const (
	xpubVersion      uint32 = 0x0488B21E
	extendedKeyBytes        = 4 + 1 + 4 + 4 + 32 + crypto.PublicKeyBytes
	maxSerialDepth          = 255
)

// PublicExtendedKey returns the BIP-32 xpub of n. Private extended keys are
// never produced.
func (n *KeyNode) PublicExtendedKey() (string, error) {
	if n.depth > maxSerialDepth {
		return "", fmt.Errorf("keytree: depth %d cannot be serialized", n.depth)
	}
	buf := make([]byte, 0, extendedKeyBytes)
	buf = binary.BigEndian.AppendUint32(buf, xpubVersion)
	buf = append(buf, byte(n.depth))
	buf = append(buf, n.parent[:]...)
	buf = binary.BigEndian.AppendUint32(buf, n.index)
	buf = append(buf, n.chainCode[:]...)
	buf = append(buf, n.compressed...)
	return crypto.Base58CheckEncode(buf), nil
}

// ParseExtendedKey decodes an xpub into a neutered node. Its Path starts
// empty; children derived from it carry paths relative to it.
func ParseExtendedKey(s string) (*KeyNode, error) {
	b, err := crypto.Base58CheckDecode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtendedKey, err)
	}
	if len(b) != extendedKeyBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrExtendedKey, len(b))
	}
	if v := binary.BigEndian.Uint32(b[:4]); v != xpubVersion {
		return nil, fmt.Errorf("%w: version %#x is not a public key", ErrExtendedKey, v)
	}
	pub, err := crypto.ParsePublicKey(b[45:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtendedKey, err)
	}
	n := newNode(nil, pub, b[13:45])
	n.depth = int(b[4])
	copy(n.parent[:], b[5:9])
	n.index = binary.BigEndian.Uint32(b[9:13])
	if n.depth == 0 && (!n.parent.IsZero() || n.index != 0) {
		return nil, fmt.Errorf("%w: master key with a parent", ErrExtendedKey)
	}
	n.path = Path{}
	return n, nil
}
