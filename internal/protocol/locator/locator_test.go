package locator_test

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"rolechain/internal/domain"
	"rolechain/internal/protocol/keytree"
	"rolechain/internal/protocol/locator"
)

func makeAddresses(t *testing.T, n int) []domain.Address {
	t.Helper()
	entropy := sha256.Sum256([]byte("locator"))
	root, _, err := keytree.CreateRoot(bytes.NewReader(entropy[:]), "")
	if err != nil {
		t.Fatalf("CreateRoot: %v", err)
	}
	out := make([]domain.Address, n)
	for i := range out {
		child, err := root.DeriveChild(uint32(i))
		if err != nil {
			t.Fatalf("DeriveChild: %v", err)
		}
		out[i] = child.Address()
	}
	return out
}

func TestBuildParse_RoundTripAnyOrder(t *testing.T) {
	roles := domain.Roles()
	addrs := makeAddresses(t, len(roles))
	want := make(map[domain.Role]domain.Address, len(roles))
	for i, r := range roles {
		want[r] = addrs[i]
	}

	var first string
	rng := rand.New(rand.NewPCG(1, 2))
	for trial := 0; trial < 20; trial++ {
		order := append([]domain.Role(nil), roles...)
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		var rs locator.RoleSet
		for _, r := range order {
			if err := rs.Set(r, want[r]); err != nil {
				t.Fatalf("Set(%s): %v", r, err)
			}
		}
		s, err := locator.Build(rs, "invoice")
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		if first == "" {
			first = s
		} else if s != first {
			t.Fatalf("construction order changed the locator:\n%s\n%s", first, s)
		}

		parsed, err := locator.Parse(s)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if !parsed.Roles.Equal(rs) {
			t.Fatalf("parse(build(roles)) != roles")
		}
		if parsed.Action != "invoice" || parsed.Scheme != locator.DefaultScheme {
			t.Fatalf("action/scheme = %q/%q", parsed.Action, parsed.Scheme)
		}
	}
}

func TestBuild_CanonicalForm(t *testing.T) {
	a := makeAddresses(t, 3)
	rs, err := locator.NewRoleSet(map[domain.Role]domain.Address{
		domain.RoleHost:     a[0],
		domain.RoleProvider: a[1],
		domain.RoleConsumer: a[2],
	})
	if err != nil {
		t.Fatalf("NewRoleSet: %v", err)
	}
	s, err := locator.Build(rs, "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := "ledger://" + a[0].String() + "?consumer=" + a[2].String() + "&provider=" + a[1].String()
	if s != want {
		t.Fatalf("Build = %s\nwant    %s", s, want)
	}
}

func TestBuild_Rejects(t *testing.T) {
	a := makeAddresses(t, 1)
	var rs locator.RoleSet
	if err := rs.Set("admin", a[0]); !errors.Is(err, domain.ErrUnknownRole) {
		t.Fatalf("unknown role: want ErrUnknownRole, got %v", err)
	}
	if err := rs.Set(domain.RoleOrder, "0xdeadbeef"); !errors.Is(err, domain.ErrInvalidAddress) {
		t.Fatalf("bad address: want ErrInvalidAddress, got %v", err)
	}
	if err := rs.Set(domain.RoleOrder, a[0]); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := locator.Build(rs, "x"); !errors.Is(err, domain.ErrMalformedLocator) {
		t.Fatalf("missing host: want ErrMalformedLocator, got %v", err)
	}
}

func TestParse_Malformed(t *testing.T) {
	a := makeAddresses(t, 2)
	cases := []string{
		"",
		"no-scheme-here",
		"ledger:///action?provider=" + a[1].String(),
		"ledger://not-base58-0OIl",
		"ledger://" + a[0].String() + "?provider=" + a[1].String() + "&provider=" + a[0].String(),
		"ledger://" + a[0].String() + "?provider=bogus",
	}
	for _, s := range cases {
		if _, err := locator.Parse(s); !errors.Is(err, domain.ErrMalformedLocator) {
			t.Fatalf("Parse(%q): want ErrMalformedLocator, got %v", s, err)
		}
	}
}

func TestParse_IgnoresUnknownKeys(t *testing.T) {
	a := makeAddresses(t, 3)
	s := "ledger://" + a[0].String() + "/pay?admin=" + a[1].String() + "&host=" + a[2].String() + "&v=2"
	l, err := locator.Parse(s)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if l.Roles.Len() != 1 || l.Host() != a[0] {
		t.Fatalf("unexpected roles: %v", l.Roles.Roles())
	}
	if got := locator.Recipients(l.Roles); len(got) != 1 || got[0] != a[0] {
		t.Fatalf("Recipients = %v", got)
	}
}

func TestRecipients_Dedup(t *testing.T) {
	a := makeAddresses(t, 2)
	rs, err := locator.NewRoleSet(map[domain.Role]domain.Address{
		domain.RoleHost:     a[0],
		domain.RoleService:  a[1],
		domain.RoleProvider: a[1],
	})
	if err != nil {
		t.Fatalf("NewRoleSet: %v", err)
	}
	got := locator.Recipients(rs)
	if len(got) != 2 {
		t.Fatalf("Recipients = %v, want 2 entries", got)
	}
	// Canonical order: host, provider, service.
	if got[0] != a[0] || got[1] != a[1] {
		t.Fatalf("Recipients order = %v", got)
	}
}

func TestZeroRoles_BroadcastToSelf(t *testing.T) {
	a := makeAddresses(t, 1)
	var rs locator.RoleSet
	if err := rs.Set(domain.RoleHost, a[0]); err != nil {
		t.Fatalf("Set: %v", err)
	}
	s, err := locator.Build(rs, "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if strings.Contains(s, "?") {
		t.Fatalf("absent roles must be omitted: %s", s)
	}
	l, err := locator.Parse(s)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := locator.Recipients(l.Roles); len(got) != 1 || got[0] != a[0] {
		t.Fatalf("Recipients = %v", got)
	}
}

func TestHasPrefix(t *testing.T) {
	cases := []struct {
		loc, prefix string
		want        bool
	}{
		{"ledger://A/order?x=1", "ledger://A/order", true},
		{"ledger://A/order/42", "ledger://A/order", true},
		{"ledger://A/order", "ledger://A/order", true},
		{"ledger://A/orders", "ledger://A/order", false},
		{"ledger://B/order", "ledger://A", false},
		{"ledger://A/order", "", true},
		{"ledger://A/order", "ledger://A/", true},
	}
	for _, c := range cases {
		if got := locator.HasPrefix(c.loc, c.prefix); got != c.want {
			t.Fatalf("HasPrefix(%q, %q) = %v", c.loc, c.prefix, got)
		}
	}
}
