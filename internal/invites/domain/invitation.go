package domain

import "time"

// InvitationTTL is how long a freshly issued (or resent) invitation stays
// redeemable. Fixed policy constant; expiry is enforced at lookup time, not
// by a background state machine.
const InvitationTTL = 48 * time.Hour

// InvitationStatus is the persisted lifecycle state of an invitation.
// "expired" is not a stored status: it is derived from ExpiresAt.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRevoked  InvitationStatus = "revoked"
)

// Invitation is a time-limited, single-use offer for a named email to join
// an organization at a given role. TokenHash is the only persisted form of
// the secret; the raw token exists exactly once, inside the redemption link.
type Invitation struct {
	ID               string
	Email            string // normalized to lowercase
	FirstName        string
	LastName         string
	OrganizationID   string
	OrganizationKind OrganizationKind
	Role             string
	Designation      string
	Department       string
	TokenHash        string
	Status           InvitationStatus
	InvitedBy        string
	ExpiresAt        time.Time
	AcceptedAt       *time.Time
	RevokedAt        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Expired reports whether the invitation is past its expiry at the given time.
func (inv Invitation) Expired(now time.Time) bool {
	return now.After(inv.ExpiresAt)
}

// Active reports whether the invitation can still be redeemed.
func (inv Invitation) Active(now time.Time) bool {
	return inv.Status == InvitationPending && !inv.Expired(now)
}

// InvitationDraft is the caller-supplied input for issuing one invitation.
type InvitationDraft struct {
	Email            string
	FirstName        string
	LastName         string
	OrganizationID   string
	OrganizationKind OrganizationKind
	Role             string
	Designation      string
	Department       string
}

// Valid reports whether all required fields are present.
func (d InvitationDraft) Valid() bool {
	return d.Email != "" &&
		d.FirstName != "" &&
		d.LastName != "" &&
		d.OrganizationID != "" &&
		d.OrganizationKind.Valid() &&
		d.Role != ""
}

// BulkFailure reports why one draft in a batch did not become an invitation.
type BulkFailure struct {
	Email  string
	Reason string
}

// BulkResult summarises a batch: rows are independent, so both slices can be
// non-empty for the same request.
type BulkResult struct {
	Successful []string
	Failed     []BulkFailure
}
