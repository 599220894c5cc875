package identity_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"rolechain/internal/domain"
	"rolechain/internal/services/identity"
	"rolechain/internal/store"
)

const passphrase = "Correct-Horse-9-Battery"

func newService(t *testing.T) *identity.Service {
	t.Helper()
	entropy := bytes.NewReader(bytes.Repeat([]byte{0x5a, 0xc3, 0x17, 0x88}, 8))
	return identity.New(
		store.NewIdentityFileStore(t.TempDir()),
		identity.WithLogger(zaptest.NewLogger(t)),
		identity.WithEntropy(entropy),
	)
}

func TestGenerateIdentity_WeakPassphrase(t *testing.T) {
	svc := newService(t)
	for _, p := range []string{"short", "alllowercase-123", "NoDigitsHere!!", "NoSymbols12345"} {
		_, err := svc.GenerateIdentity(p)
		require.ErrorIs(t, err, identity.ErrWeakPassphrase, p)
	}
}

func TestGenerateIdentity_ThenLoad(t *testing.T) {
	svc := newService(t)

	summary, err := svc.GenerateIdentity(passphrase)
	require.NoError(t, err)
	require.NotEmpty(t, summary.Root)
	require.NotEmpty(t, summary.Environment)

	_, err = svc.GenerateIdentity(passphrase)
	require.ErrorIs(t, err, identity.ErrIdentityExists)

	root, err := svc.LoadRoot(passphrase)
	require.NoError(t, err)
	require.Equal(t, summary.Root, root.Address())
	require.Equal(t, summary.Fingerprint, root.Fingerprint())

	again, err := svc.Describe(passphrase)
	require.NoError(t, err)
	require.Equal(t, summary, again)

	_, err = svc.LoadRoot("Wrong-Passphrase-1")
	require.Error(t, err)
}

func TestPublicRoleAddress_MatchesPrivateDerivation(t *testing.T) {
	svc := newService(t)
	summary, err := svc.GenerateIdentity(passphrase)
	require.NoError(t, err)

	for _, role := range domain.Roles() {
		node, err := svc.RoleNode(passphrase, role)
		require.NoError(t, err)
		addr, err := identity.PublicRoleAddress(summary.Environment, role)
		require.NoError(t, err)
		require.Equal(t, node.Address(), addr, role)
	}

	_, err = identity.PublicRoleAddress(summary.Environment, domain.Role("auditor"))
	require.ErrorIs(t, err, domain.ErrUnknownRole)
}

func TestEnvironment_IsParentOfRoles(t *testing.T) {
	svc := newService(t)
	_, err := svc.GenerateIdentity(passphrase)
	require.NoError(t, err)

	env, err := svc.Environment(passphrase)
	require.NoError(t, err)
	client, err := svc.RoleNode(passphrase, domain.RoleClient)
	require.NoError(t, err)
	require.Equal(t, env.Fingerprint(), client.ParentFingerprint())
}
