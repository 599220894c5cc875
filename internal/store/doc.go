// Package store provides file-based persistence for rolechain.
//
// It contains concrete implementations of the domain storage interfaces.
// All methods are concurrency-safe via internal locking, and every write goes
// through a temp file plus rename so a crash never leaves a half-written file.
//
// The package includes stores for:
//   - The root seed (IdentityFileStore), sealed with scrypt and
//     ChaCha20-Poly1305 under the user's passphrase
//   - Ledger snapshots (ChainFileStore), one JSON file per chain root
package store
