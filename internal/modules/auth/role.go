package auth

import "context"

// RoleSource tells where a role record was found. Roles have historically
// lived in two places: embedded on the partner profile and in a separate
// roles table. The embedded value is canonical.
type RoleSource int

const (
	SourceNone RoleSource = iota
	SourceEmbedded
	SourceLegacy
)

func (s RoleSource) String() string {
	switch s {
	case SourceEmbedded:
		return "embedded"
	case SourceLegacy:
		return "legacy"
	default:
		return "none"
	}
}

// RoleRecord is the stored role of an identity, tagged with its source.
type RoleRecord struct {
	Source RoleSource
	Role   string
}

// Resolve collapses a record to admin, partner or the customer default.
func (r RoleRecord) Resolve() Role {
	if r.Source == SourceNone {
		return RoleCustomer
	}
	switch Role(r.Role) {
	case RoleAdmin:
		return RoleAdmin
	case RolePartner:
		return RolePartner
	default:
		return RoleCustomer
	}
}

// RoleStore looks up role records by identity id.
type RoleStore interface {
	Lookup(ctx context.Context, uid string) (RoleRecord, error)
}
