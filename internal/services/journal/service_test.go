package journal_test

import (
	"bytes"
	"context"
	"crypto/sha256"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"rolechain/internal/domain"
	"rolechain/internal/protocol/keytree"
	"rolechain/internal/protocol/locator"
	"rolechain/internal/services/journal"
	"rolechain/internal/store"
	"rolechain/internal/transport"
)

func roleNode(t *testing.T, label string, role domain.Role) *keytree.KeyNode {
	t.Helper()
	entropy := sha256.Sum256([]byte(label))
	root, _, err := keytree.CreateRoot(bytes.NewReader(entropy[:]), "")
	require.NoError(t, err)
	n, err := root.DeriveRole(role)
	require.NoError(t, err)
	return n
}

func newJournal(t *testing.T, tr domain.Transport) *journal.Service {
	t.Helper()
	return journal.New(
		store.NewChainFileStore(t.TempDir()),
		tr,
		journal.WithLogger(zaptest.NewLogger(t)),
	)
}

func roles(t *testing.T, m map[domain.Role]domain.Address) locator.RoleSet {
	t.Helper()
	rs, err := locator.NewRoleSet(m)
	require.NoError(t, err)
	return rs
}

func TestJournal_StartAppendFollowRead(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := transport.NewBroker()
	svc := newJournal(t, broker)
	base := roleNode(t, "alice", domain.RoleContext)
	bob := roleNode(t, "bob", domain.RoleProvider)
	eve := roleNode(t, "eve", domain.RoleProvider)

	genesis, err := svc.Start(ctx, base, []byte("opening balance"))
	require.NoError(t, err)
	require.Equal(t, base.Address(), genesis.Address)
	require.Equal(t, base.ParentFingerprint(), genesis.PreviousFingerprint)
	plain, err := svc.Read(base, genesis)
	require.NoError(t, err)
	require.Equal(t, []byte("opening balance"), plain)

	inbox, err := svc.Follow(ctx, "ledger://")
	require.NoError(t, err)

	rec, err := svc.Append(ctx, base, journal.Draft{
		Roles:     roles(t, map[domain.Role]domain.Address{domain.RoleProvider: bob.Address()}),
		Action:    "order",
		Plaintext: []byte("2 widgets"),
	})
	require.NoError(t, err)
	require.Equal(t, base.Fingerprint(), rec.PreviousFingerprint)

	var got journal.Inbound
	select {
	case got = <-inbox:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for record")
	}
	require.Equal(t, rec.Address, got.Record.Address)
	require.Equal(t, rec.Address, got.Locator.Host())
	require.Equal(t, "order", got.Locator.Action)
	addr, ok := got.Locator.Roles.Get(domain.RoleProvider)
	require.True(t, ok)
	require.Equal(t, bob.Address(), addr)

	plain, err = svc.Read(bob, got.Record)
	require.NoError(t, err)
	require.Equal(t, []byte("2 widgets"), plain)

	_, err = svc.Read(eve, got.Record)
	require.ErrorIs(t, err, domain.ErrNotARecipient)
	_, err = svc.Read(base, got.Record)
	require.ErrorIs(t, err, domain.ErrNotARecipient)

	second, err := svc.Append(ctx, base, journal.Draft{Action: "invoice", Plaintext: []byte("note to self")})
	require.NoError(t, err)
	require.Equal(t, rec.Address, mustFingerprintOwner(t, svc, base.Address(), second.PreviousFingerprint))
	select {
	case <-inbox:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for second record")
	}

	n, err := svc.Verify(base.Address())
	require.NoError(t, err)
	require.Equal(t, 3, n)

	cancel()
	for range inbox {
	}
}

func mustFingerprintOwner(t *testing.T, svc *journal.Service, root domain.Address, fp domain.Fingerprint) domain.Address {
	t.Helper()
	chain, err := svc.Chain(root)
	require.NoError(t, err)
	for rec := range chain.Walk() {
		got, err := keytree.FingerprintOf(rec.Address)
		require.NoError(t, err)
		if got == fp {
			return rec.Address
		}
	}
	t.Fatalf("no record with fingerprint %s", fp)
	return ""
}

func TestJournal_StartTwice(t *testing.T) {
	svc := newJournal(t, nil)
	base := roleNode(t, "alice", domain.RoleOrder)
	ctx := context.Background()

	_, err := svc.Start(ctx, base, []byte("one"))
	require.NoError(t, err)
	_, err = svc.Start(ctx, base, []byte("two"))
	require.ErrorIs(t, err, journal.ErrChainExists)
}

func TestJournal_AppendWithoutChain(t *testing.T) {
	svc := newJournal(t, nil)
	base := roleNode(t, "carol", domain.RoleOrder)

	_, err := svc.Append(context.Background(), base, journal.Draft{Plaintext: []byte("x")})
	require.ErrorIs(t, err, journal.ErrNoChain)
	_, err = svc.Verify(base.Address())
	require.ErrorIs(t, err, journal.ErrNoChain)
}

func TestJournal_NeuteredBase(t *testing.T) {
	svc := newJournal(t, nil)
	base := roleNode(t, "dave", domain.RoleOrder)

	_, err := svc.Start(context.Background(), base.Neuter(), []byte("x"))
	require.ErrorIs(t, err, domain.ErrNoPrivateKey)
}

func TestJournal_ExportImport(t *testing.T) {
	ctx := context.Background()
	src := newJournal(t, nil)
	base := roleNode(t, "frank", domain.RoleInvoice)

	_, err := src.Start(ctx, base, []byte("g"))
	require.NoError(t, err)
	for _, body := range []string{"a", "b", "c"} {
		_, err = src.Append(ctx, base, journal.Draft{Action: "note", Plaintext: []byte(body)})
		require.NoError(t, err)
	}
	chain, err := src.Chain(base.Address())
	require.NoError(t, err)
	snap := chain.Export()

	dst := newJournal(t, nil)
	imported, err := dst.Import(snap)
	require.NoError(t, err)
	require.Equal(t, 4, imported.Len())
	roots, err := dst.Roots()
	require.NoError(t, err)
	require.Equal(t, []domain.Address{base.Address()}, roots)

	// Append continues from the imported chain.
	_, err = dst.Append(ctx, base, journal.Draft{Action: "note", Plaintext: []byte("d")})
	require.NoError(t, err)
	n, err := dst.Verify(base.Address())
	require.NoError(t, err)
	require.Equal(t, 5, n)

	snap.Records[2].PreviousFingerprint = domain.Fingerprint{}
	_, err = newJournal(t, nil).Import(snap)
	require.ErrorIs(t, err, domain.ErrImportRejected)
	require.ErrorIs(t, err, domain.ErrBrokenLink)
}
