package locator

import (
	"fmt"
	"maps"
	"slices"

	"rolechain/internal/crypto"
	"rolechain/internal/domain"
)

// RoleSet maps roles to addresses. The zero value is an empty set ready to
// use; it is not safe for concurrent mutation.
type RoleSet struct {
	m map[domain.Role]domain.Address
}

// NewRoleSet builds a set from m, rejecting unknown roles and invalid
// addresses.
func NewRoleSet(m map[domain.Role]domain.Address) (RoleSet, error) {
	var rs RoleSet
	for role, addr := range m {
		if err := rs.Set(role, addr); err != nil {
			return RoleSet{}, err
		}
	}
	return rs, nil
}

// Set binds role to addr, replacing any previous binding.
func (rs *RoleSet) Set(role domain.Role, addr domain.Address) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownRole, role)
	}
	if _, err := crypto.DecodeAddress(addr); err != nil {
		return fmt.Errorf("role %s: %w", role, err)
	}
	if rs.m == nil {
		rs.m = make(map[domain.Role]domain.Address)
	}
	rs.m[role] = addr
	return nil
}

// Get returns the address bound to role.
func (rs RoleSet) Get(role domain.Role) (domain.Address, bool) {
	a, ok := rs.m[role]
	return a, ok
}

// Delete removes role from the set.
func (rs *RoleSet) Delete(role domain.Role) { delete(rs.m, role) }

// Len returns the number of bound roles.
func (rs RoleSet) Len() int { return len(rs.m) }

// Roles returns the bound roles in canonical (alphabetical) order.
func (rs RoleSet) Roles() []domain.Role {
	return slices.Sorted(maps.Keys(rs.m))
}

// Equal reports whether both sets bind the same roles to the same addresses.
func (rs RoleSet) Equal(other RoleSet) bool {
	return maps.Equal(rs.m, other.m)
}

// Clone returns an independent copy.
func (rs RoleSet) Clone() RoleSet {
	return RoleSet{m: maps.Clone(rs.m)}
}

// Recipients returns every bound address once, in canonical role order.
// Two roles bound to the same address yield a single recipient.
func Recipients(rs RoleSet) []domain.Address {
	seen := make(map[domain.Address]struct{}, rs.Len())
	out := make([]domain.Address, 0, rs.Len())
	for _, role := range rs.Roles() {
		addr := rs.m[role]
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	return out
}
