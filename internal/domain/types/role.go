package types

import "slices"

// Role names a protocol participant. The set is closed.
type Role string

const (
	RoleClient     Role = "client"
	RoleConsumer   Role = "consumer"
	RoleContext    Role = "context"
	RoleContractor Role = "contractor"
	RoleCustomer   Role = "customer"
	RoleHost       Role = "host"
	RoleInvoice    Role = "invoice"
	RoleOrder      Role = "order"
	RoleProvider   Role = "provider"
	RoleRequest    Role = "request"
	RoleService    Role = "service"
)

// roleBranches fixes each role to its reserved branch index under the
// environment node. The numbers are part of the address space and must
// never be reassigned.
var roleBranches = map[Role]uint32{
	RoleHost:       0,
	RoleProvider:   1,
	RoleClient:     2,
	RoleContext:    3,
	RoleConsumer:   4,
	RoleService:    5,
	RoleCustomer:   6,
	RoleContractor: 7,
	RoleOrder:      8,
	RoleInvoice:    9,
	RoleRequest:    10,
}

// String returns the string form of the role.
func (r Role) String() string { return string(r) }

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	_, ok := roleBranches[r]
	return ok
}

// Branch returns the reserved derivation index of r.
func (r Role) Branch() (uint32, bool) {
	b, ok := roleBranches[r]
	return b, ok
}

// Roles returns every enumerated role in alphabetical order.
func Roles() []Role {
	out := make([]Role, 0, len(roleBranches))
	for r := range roleBranches {
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}
