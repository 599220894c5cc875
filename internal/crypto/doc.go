// Package crypto exposes the minimal primitives used by rolechain.
//
// Contents
//
//   - secp256k1 public key parsing, ECDH and ECDSA over SHA-256 digests
//     (ParsePublicKey, SharedSecret, SignDigest, VerifyDigest)
//   - HASH160 key identifiers and 4-byte fingerprints (Hash160, Fingerprint)
//   - Base58 addresses and base58check payloads (EncodeAddress, DecodeAddress,
//     Base58CheckEncode, Base58CheckDecode)
//   - HKDF-SHA256 key derivation and ChaCha20-Poly1305 key wrapping
//     (DeriveKey, WrapKey, UnwrapKey)
//   - Best-effort memory wiping for sensitive byte slices (Wipe)
//
// # Notes
//
// Functions are stateless and safe for concurrent use. Every call allocates
// its own scratch buffers. Callers should treat returned secrets as sensitive
// and rely on Wipe when practical to reduce lifetime in memory.
package crypto
