// Package multiparty seals one payload so that each of an arbitrary set of
// recipients can open it on their own, using nothing but pairwise ECDH
// between the sender's key node and each recipient's address.
//
// Envelope layout (Ciphertext):
//
//	version(1) | salt(16) | count(2) | count x [ recipient(33) | wrappedKey(48) ] | nonce(24) | body
//
// The body is sealed once with XChaCha20-Poly1305 under a random content key.
// For every recipient the content key is wrapped with ChaCha20-Poly1305 under
// a key-encryption key drawn from HKDF-SHA256 over the ECDH secret, the
// per-message salt and both public keys. The sender then signs the envelope
// together with the recipient list; that signature is the Authenticator.
//
// # Notes
//
// Decrypt verifies the Authenticator before touching the envelope. A bad
// signature is reported as domain.ErrAuthenticationFailed and nothing else
// runs. Only after that does it distinguish domain.ErrNotARecipient from
// domain.ErrCiphertext.
//
// Encrypt and Decrypt share no state; calls may run in parallel.
package multiparty
