package store_test

import (
	"bytes"
	"crypto/sha256"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"rolechain/internal/domain"
	"rolechain/internal/protocol/keytree"
	"rolechain/internal/store"
)

func TestIdentity_SaveLoad_OK(t *testing.T) {
	home := t.TempDir()
	var ids domain.IdentityStore = store.NewIdentityFileStore(home)

	has, err := ids.HasSeed()
	require.NoError(t, err)
	require.False(t, has)

	_, err = ids.LoadSeed("pass")
	require.ErrorIs(t, err, store.ErrNoIdentity)

	seed := bytes.Repeat([]byte{7, 1}, 32)
	require.NoError(t, ids.SaveSeed("pass", seed))

	has, err = ids.HasSeed()
	require.NoError(t, err)
	require.True(t, has)

	got, err := ids.LoadSeed("pass")
	require.NoError(t, err)
	require.Equal(t, seed, got)

	raw, err := os.ReadFile(filepath.Join(home, "seed.json.enc"))
	require.NoError(t, err)
	require.NotContains(t, string(raw), string(seed))

	info, err := os.Stat(filepath.Join(home, "seed.json.enc"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestIdentity_WrongPassphrase_Fails(t *testing.T) {
	ids := store.NewIdentityFileStore(t.TempDir())
	require.NoError(t, ids.SaveSeed("correct", []byte("0123456789abcdef0123456789abcdef")))

	_, err := ids.LoadSeed("wrong")
	require.ErrorIs(t, err, store.ErrWrongPassphrase)
}

func snapshotFixture(t *testing.T) domain.ChainSnapshot {
	t.Helper()
	entropy := sha256.Sum256([]byte("store"))
	root, _, err := keytree.CreateRoot(bytes.NewReader(entropy[:]), "")
	require.NoError(t, err)
	child, err := root.DeriveChild(0)
	require.NoError(t, err)

	return domain.ChainSnapshot{
		RootAddress: root.Address(),
		Records: []domain.ChainRecord{
			{Address: root.Address()},
			{
				Address:             child.Address(),
				Link:                "ledger://" + child.Address().String(),
				PreviousFingerprint: root.Fingerprint(),
				Payload: domain.EncryptedRecord{
					Ciphertext:    []byte{1, 2, 3},
					Authenticator: []byte{4, 5},
					Recipients:    []domain.Address{root.Address()},
				},
			},
		},
	}
}

func TestChain_SaveLoadList(t *testing.T) {
	var chains domain.ChainStore = store.NewChainFileStore(t.TempDir())

	list, err := chains.ListChains()
	require.NoError(t, err)
	require.Empty(t, list)

	snap := snapshotFixture(t)
	_, ok, err := chains.LoadSnapshot(snap.RootAddress)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, chains.SaveSnapshot(snap))
	got, ok, err := chains.LoadSnapshot(snap.RootAddress)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, snap, got)

	list, err = chains.ListChains()
	require.NoError(t, err)
	require.Equal(t, []domain.Address{snap.RootAddress}, list)
}

func TestChain_RejectsInvalidRoot(t *testing.T) {
	chains := store.NewChainFileStore(t.TempDir())
	err := chains.SaveSnapshot(domain.ChainSnapshot{RootAddress: "../../etc/passwd"})
	require.ErrorIs(t, err, domain.ErrInvalidAddress)
}
