package domain

import "time"

// OrganizationKind is the closed set of organization flavours sharing the
// invitation mechanism. The two kinds carry distinct authorization rules, so
// this is an enum dispatched over explicitly, never a string comparison at
// call sites.
type OrganizationKind string

const (
	OrgKindCompany     OrganizationKind = "company"
	OrgKindAssociation OrganizationKind = "association"
)

// Valid reports whether k is a known kind.
func (k OrganizationKind) Valid() bool {
	switch k {
	case OrgKindCompany, OrgKindAssociation:
		return true
	}
	return false
}

// ParseOrganizationKind validates a wire-format kind string.
func ParseOrganizationKind(s string) (OrganizationKind, bool) {
	k := OrganizationKind(s)
	return k, k.Valid()
}

// Organization is the directory entry invitations target. The wider platform
// owns the full profile; the invitation service only needs identity, kind and
// a display name for the email.
type Organization struct {
	ID        string
	Kind      OrganizationKind
	Name      string
	CreatedAt time.Time
}

// CompanyMembership links a member to a company at a role. Owners and admins
// may issue invitations for the company.
type CompanyMembership struct {
	ID             string
	MemberID       string
	OrganizationID string
	Role           string // member | admin | owner
	Active         bool
	CreatedAt      time.Time
}

// AssociationManager links a member to an association they manage. Any
// active manager may issue invitations for the association.
type AssociationManager struct {
	ID             string
	MemberID       string
	OrganizationID string
	Role           string
	Active         bool
	CreatedAt      time.Time
}
