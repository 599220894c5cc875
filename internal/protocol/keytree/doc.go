// Package keytree implements deterministic hierarchical key derivation over
// secp256k1 (BIP-32 shaped).
//
// A tree grows from a single Seed. Every node carries a public point, an
// address (base58 of the compressed point), a 4-byte fingerprint and the
// fingerprint of its parent. Nodes that still hold their private scalar can
// sign, decrypt and derive hardened children; neutered nodes can only derive
// non-hardened public children and verify.
//
// Roles map to fixed branches under the environment node m/369/0:
//
//	host m/369/0/0      provider m/369/0/1    client m/369/0/2
//	context m/369/0/3   consumer m/369/0/4    service m/369/0/5
//	customer m/369/0/6  contractor m/369/0/7  order m/369/0/8
//	invoice m/369/0/9   request m/369/0/10
//
// The branches are non-hardened, so the environment extended public key is
// enough to recompute every role address.
//
// # Notes
//
// KeyNode values are immutable once created and safe for concurrent use.
// DeriveChild never retries: an invalid scalar surfaces as a
// *domain.DerivationError and the caller picks the next index. Private
// material is never serialized; only extended public keys are.
package keytree
