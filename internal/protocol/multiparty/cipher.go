package multiparty

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"

	"rolechain/internal/crypto"
	"rolechain/internal/domain"
	"rolechain/internal/protocol/keytree"
)

const (
	kekInfo   = "rolechain/multiparty/kek/v1"
	authLabel = "rolechain/multiparty/auth/v1"
)

type options struct {
	self bool
	rand io.Reader
}

// Option tunes Encrypt.
type Option func(*options)

// WithSelf adds the sender to the recipients. With an otherwise empty list
// this is a broadcast to self.
func WithSelf() Option { return func(o *options) { o.self = true } }

// WithRandom replaces crypto/rand as the source of keys, salts and nonces.
func WithRandom(r io.Reader) Option { return func(o *options) { o.rand = r } }

// Encrypt seals plaintext for recipients and signs the result with sender.
// Duplicate recipients are collapsed.
func Encrypt(
	sender *keytree.KeyNode,
	plaintext []byte,
	recipients []domain.Address,
	opts ...Option,
) (domain.EncryptedRecord, error) {
	o := options{rand: rand.Reader}
	for _, opt := range opts {
		opt(&o)
	}
	if sender.IsNeutered() {
		return domain.EncryptedRecord{}, fmt.Errorf("%w: sender is neutered", domain.ErrNoPrivateKey)
	}

	if o.self {
		recipients = append(recipients[:len(recipients):len(recipients)], sender.Address())
	}
	list := dedupe(recipients)
	if len(list) == 0 {
		return domain.EncryptedRecord{}, domain.ErrNoRecipients
	}
	if len(list) > maxRecipients {
		return domain.EncryptedRecord{}, fmt.Errorf("multiparty: %d recipients exceeds %d", len(list), maxRecipients)
	}
	pubs := make([][]byte, len(list))
	for i, addr := range list {
		pub, err := crypto.DecodeAddress(addr)
		if err != nil {
			return domain.EncryptedRecord{}, fmt.Errorf("recipient %d: %w", i, err)
		}
		pubs[i] = pub
	}

	contentKey := make([]byte, crypto.KeyBytes)
	defer crypto.Wipe(contentKey)
	if _, err := io.ReadFull(o.rand, contentKey); err != nil {
		return domain.EncryptedRecord{}, fmt.Errorf("content key: %w", err)
	}

	buf := make([]byte, headerBytes, headerBytes+len(list)*entryBytes+chacha20poly1305.NonceSizeX+len(plaintext)+chacha20poly1305.Overhead)
	buf[0] = envelopeVersion
	salt := buf[1 : 1+saltBytes]
	if _, err := io.ReadFull(o.rand, salt); err != nil {
		return domain.EncryptedRecord{}, fmt.Errorf("salt: %w", err)
	}
	binary.BigEndian.PutUint16(buf[1+saltBytes:headerBytes], uint16(len(list)))

	senderPub := sender.PublicKey()
	for i, addr := range list {
		kek, err := keyEncryptionKey(sender, addr, salt, senderPub, pubs[i])
		if err != nil {
			return domain.EncryptedRecord{}, err
		}
		wrapped, err := crypto.WrapKey(kek, contentKey, pubs[i])
		crypto.Wipe(kek)
		if err != nil {
			return domain.EncryptedRecord{}, err
		}
		buf = append(buf, pubs[i]...)
		buf = append(buf, wrapped...)
	}

	aead, err := chacha20poly1305.NewX(contentKey)
	if err != nil {
		return domain.EncryptedRecord{}, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := io.ReadFull(o.rand, nonce); err != nil {
		return domain.EncryptedRecord{}, fmt.Errorf("nonce: %w", err)
	}
	sealed := bytes.Clone(buf)
	buf = append(buf, nonce...)
	buf = aead.Seal(buf, nonce, plaintext, sealed)

	rec := domain.EncryptedRecord{Ciphertext: buf, Recipients: list}
	sig, err := sender.Sign(authMessage(rec.Ciphertext, rec.Recipients))
	if err != nil {
		return domain.EncryptedRecord{}, err
	}
	rec.Authenticator = sig
	return rec, nil
}

// Decrypt authenticates rec against sender and opens it with receiver.
func Decrypt(receiver *keytree.KeyNode, rec domain.EncryptedRecord, sender domain.Address) ([]byte, error) {
	if !keytree.Verify(sender, authMessage(rec.Ciphertext, rec.Recipients), rec.Authenticator) {
		return nil, domain.ErrAuthenticationFailed
	}
	if receiver.IsNeutered() {
		return nil, fmt.Errorf("%w: receiver is neutered", domain.ErrNoPrivateKey)
	}

	env, err := parseEnvelope(rec.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCiphertext, err)
	}
	if len(env.entries) != len(rec.Recipients) {
		return nil, fmt.Errorf("%w: recipient list does not match envelope", domain.ErrCiphertext)
	}
	self := receiver.PublicKey()
	var mine *entry
	for i := range env.entries {
		if crypto.EncodeAddress(env.entries[i].recipient) != rec.Recipients[i] {
			return nil, fmt.Errorf("%w: recipient list does not match envelope", domain.ErrCiphertext)
		}
		if bytes.Equal(env.entries[i].recipient, self) {
			mine = &env.entries[i]
		}
	}
	if mine == nil {
		return nil, domain.ErrNotARecipient
	}

	senderPub, err := crypto.DecodeAddress(sender)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAuthenticationFailed, err)
	}
	kek, err := keyEncryptionKey(receiver, sender, env.salt, senderPub, self)
	if err != nil {
		return nil, err
	}
	contentKey, err := crypto.UnwrapKey(kek, mine.wrapped, self)
	crypto.Wipe(kek)
	if err != nil {
		return nil, domain.ErrNotARecipient
	}
	defer crypto.Wipe(contentKey)

	aead, err := chacha20poly1305.NewX(contentKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCiphertext, err)
	}
	pt, err := aead.Open(nil, env.nonce, env.body, env.sealed)
	if err != nil {
		return nil, fmt.Errorf("%w: body does not open", domain.ErrCiphertext)
	}
	return pt, nil
}

// keyEncryptionKey derives the per-message KEK shared by self and peer.
// senderPub and recipientPub fix the direction so both sides agree.
func keyEncryptionKey(self *keytree.KeyNode, peer domain.Address, salt, senderPub, recipientPub []byte) ([]byte, error) {
	secret, err := self.SharedSecret(peer)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(secret)

	kdfSalt := make([]byte, 0, len(salt)+len(senderPub)+len(recipientPub))
	kdfSalt = append(kdfSalt, salt...)
	kdfSalt = append(kdfSalt, senderPub...)
	kdfSalt = append(kdfSalt, recipientPub...)
	return crypto.DeriveKey(secret, kdfSalt, kekInfo)
}

// authMessage binds the envelope to the recipient list it was issued for.
func authMessage(ciphertext []byte, recipients []domain.Address) []byte {
	n := len(authLabel) + 4 + len(ciphertext)
	for _, r := range recipients {
		n += 2 + len(r)
	}
	msg := make([]byte, 0, n)
	msg = append(msg, authLabel...)
	msg = binary.BigEndian.AppendUint32(msg, uint32(len(ciphertext)))
	msg = append(msg, ciphertext...)
	for _, r := range recipients {
		msg = binary.BigEndian.AppendUint16(msg, uint16(len(r)))
		msg = append(msg, r...)
	}
	return msg
}

func dedupe(in []domain.Address) []domain.Address {
	seen := make(map[domain.Address]struct{}, len(in))
	out := make([]domain.Address, 0, len(in))
	for _, a := range in {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
