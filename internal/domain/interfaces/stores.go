package interfaces

import domaintypes "rolechain/internal/domain/types"

// IdentityStore persists the root seed, encrypted under a passphrase.
type IdentityStore interface {
	SaveSeed(passphrase string, seed []byte) error
	LoadSeed(passphrase string) ([]byte, error)
	HasSeed() (bool, error)
}

// ChainStore persists ledger snapshots keyed by their root address.
type ChainStore interface {
	SaveSnapshot(snapshot domaintypes.ChainSnapshot) error
	LoadSnapshot(root domaintypes.Address) (domaintypes.ChainSnapshot, bool, error)
	ListChains() ([]domaintypes.Address, error)
}
