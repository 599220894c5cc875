package locator

import (
	"fmt"
	"net/url"
	"strings"

	"rolechain/internal/domain"
)

// DefaultScheme is used by Build.
const DefaultScheme = "ledger"

// Locator is the parsed form of a locator string.
type Locator struct {
	Scheme string
	Action string
	Roles  RoleSet
}

// Host returns the address in the authority position.
func (l Locator) Host() domain.Address {
	a, _ := l.Roles.Get(domain.RoleHost)
	return a
}

// Build encodes roles and an optional action under DefaultScheme.
func Build(roles RoleSet, action string) (string, error) {
	return Locator{Scheme: DefaultScheme, Action: action, Roles: roles}.Encode()
}

// Encode renders the locator. The host role is mandatory.
func (l Locator) Encode() (string, error) {
	if l.Scheme == "" {
		return "", fmt.Errorf("%w: missing scheme", domain.ErrMalformedLocator)
	}
	host, ok := l.Roles.Get(domain.RoleHost)
	if !ok {
		return "", fmt.Errorf("%w: missing host role", domain.ErrMalformedLocator)
	}
	q := url.Values{}
	for _, role := range l.Roles.Roles() {
		if role == domain.RoleHost {
			continue
		}
		addr, _ := l.Roles.Get(role)
		q.Set(role.String(), addr.String())
	}
	u := url.URL{
		Scheme:   l.Scheme,
		Host:     host.String(),
		RawQuery: q.Encode(), // Encode sorts by key.
	}
	if l.Action != "" {
		u.Path = "/" + strings.Trim(l.Action, "/")
	}
	return u.String(), nil
}

// String renders the locator, or an empty string when it cannot be encoded.
func (l Locator) String() string {
	s, _ := l.Encode()
	return s
}

// Parse decodes a locator string. Unknown query keys are ignored; a query
// key named host is ignored too, since the host comes from the authority.
func Parse(s string) (Locator, error) {
	u, err := url.Parse(s)
	if err != nil {
		return Locator{}, fmt.Errorf("%w: %v", domain.ErrMalformedLocator, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return Locator{}, fmt.Errorf("%w: missing scheme or host in %q", domain.ErrMalformedLocator, s)
	}

	var l Locator
	l.Scheme = u.Scheme
	l.Action = strings.Trim(u.Path, "/")
	if err := l.Roles.Set(domain.RoleHost, domain.Address(u.Host)); err != nil {
		return Locator{}, fmt.Errorf("%w: %v", domain.ErrMalformedLocator, err)
	}

	q, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return Locator{}, fmt.Errorf("%w: %v", domain.ErrMalformedLocator, err)
	}
	for key, vals := range q {
		role := domain.Role(key)
		if role == domain.RoleHost || !role.Valid() {
			continue
		}
		if len(vals) != 1 {
			return Locator{}, fmt.Errorf("%w: role %s given %d times", domain.ErrMalformedLocator, role, len(vals))
		}
		if err := l.Roles.Set(role, domain.Address(vals[0])); err != nil {
			return Locator{}, fmt.Errorf("%w: %v", domain.ErrMalformedLocator, err)
		}
	}
	return l, nil
}

// HasPrefix reports whether locator falls under prefix. Matching is by whole
// path segment, so "ledger://A/order" matches "ledger://A/order?x=y" and
// "ledger://A/order/42" but not "ledger://A/orders".
func HasPrefix(locator, prefix string) bool {
	if prefix == "" {
		return true
	}
	if !strings.HasPrefix(locator, prefix) {
		return false
	}
	if len(locator) == len(prefix) || strings.HasSuffix(prefix, "/") {
		return true
	}
	switch locator[len(prefix)] {
	case '/', '?':
		return true
	}
	return false
}

