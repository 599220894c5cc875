package multiparty

import (
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"rolechain/internal/crypto"
)

const (
	envelopeVersion = 1
	saltBytes       = 16
	entryBytes      = crypto.PublicKeyBytes + crypto.WrappedKeyBytes
	headerBytes     = 1 + saltBytes + 2
	maxRecipients   = 1<<16 - 1
)

var errTruncated = errors.New("envelope truncated")

type entry struct {
	recipient []byte
	wrapped   []byte
}

// envelope is a parsed Ciphertext. Its slices alias the input.
type envelope struct {
	salt    []byte
	entries []entry
	// sealed covers header and entries; it is the body's additional data.
	sealed []byte
	nonce  []byte
	body   []byte
}

func parseEnvelope(b []byte) (*envelope, error) {
	if len(b) < headerBytes {
		return nil, errTruncated
	}
	if b[0] != envelopeVersion {
		return nil, fmt.Errorf("unsupported envelope version %d", b[0])
	}
	env := &envelope{salt: b[1 : 1+saltBytes]}
	count := int(binary.BigEndian.Uint16(b[1+saltBytes : headerBytes]))
	if count == 0 {
		return nil, errors.New("envelope has no recipients")
	}

	off := headerBytes
	if len(b) < off+count*entryBytes+chacha20poly1305.NonceSizeX+chacha20poly1305.Overhead {
		return nil, errTruncated
	}
	env.entries = make([]entry, count)
	for i := range env.entries {
		env.entries[i] = entry{
			recipient: b[off : off+crypto.PublicKeyBytes],
			wrapped:   b[off+crypto.PublicKeyBytes : off+entryBytes],
		}
		off += entryBytes
	}
	env.sealed = b[:off]
	env.nonce = b[off : off+chacha20poly1305.NonceSizeX]
	env.body = b[off+chacha20poly1305.NonceSizeX:]
	return env, nil
}
