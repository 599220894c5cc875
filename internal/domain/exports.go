package domain

import (
	interfaces "rolechain/internal/domain/interfaces"
	types "rolechain/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	Address         = types.Address
	Fingerprint     = types.Fingerprint
	Role            = types.Role
	EncryptedRecord = types.EncryptedRecord
	RecordState     = types.RecordState
	ChainRecord     = types.ChainRecord
	ChainSnapshot   = types.ChainSnapshot
	Delivery        = types.Delivery
	IdentitySummary = types.IdentitySummary
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	IdentityStore = interfaces.IdentityStore
	ChainStore    = interfaces.ChainStore
	Transport     = interfaces.Transport
)

// Role constants re-exported from the types subpackage.
const (
	RoleClient     = types.RoleClient
	RoleConsumer   = types.RoleConsumer
	RoleContext    = types.RoleContext
	RoleContractor = types.RoleContractor
	RoleCustomer   = types.RoleCustomer
	RoleHost       = types.RoleHost
	RoleInvoice    = types.RoleInvoice
	RoleOrder      = types.RoleOrder
	RoleProvider   = types.RoleProvider
	RoleRequest    = types.RoleRequest
	RoleService    = types.RoleService

	RecordPending  = types.RecordPending
	RecordAppended = types.RecordAppended
)

// Roles returns every enumerated role in alphabetical order.
func Roles() []Role { return types.Roles() }

// ParseFingerprint decodes an 8-character hex fingerprint.
func ParseFingerprint(s string) (Fingerprint, error) { return types.ParseFingerprint(s) }
