package store

import (
	"context"
	"errors"
	"time"

	"github.com/teamlinkhq/teamlink/internal/invites/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Invitations() Invitations
	Organizations() Organizations
	Memberships() Memberships
	Members() Members
	AuditLog() AuditLog

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction. If fn returns an
	// error, the transaction is rolled back, otherwise committed. This is
	// the recommended way to handle transactions.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Invitations interface {
	// Create inserts one invitation. A pending invitation already existing
	// for the same (organization, email) pair surfaces as ErrAlreadyExists
	// via the partial unique index.
	Create(ctx context.Context, inv domain.Invitation) error

	// CreateBatch inserts all rows in a single multi-row statement. The rows
	// have already passed validation and the duplicate pre-check; the call is
	// all-or-nothing for the surviving rows.
	CreateBatch(ctx context.Context, invs []domain.Invitation) error

	// GetByID returns an invitation regardless of state.
	GetByID(ctx context.Context, id string) (domain.Invitation, error)

	// GetActiveByTokenHash returns a pending, unexpired invitation by its
	// token fingerprint. Anything else is ErrNotFound; redemption never
	// learns why a token failed.
	GetActiveByTokenHash(ctx context.Context, hash string) (domain.Invitation, error)

	// HasActive reports whether a pending, unexpired invitation exists for
	// the (organization, email) pair.
	HasActive(ctx context.Context, organizationID, email string) (bool, error)

	// FilterActiveEmails returns the subset of emails that already have a
	// pending, unexpired invitation in the organization. One query for the
	// whole batch.
	FilterActiveEmails(ctx context.Context, organizationID string, emails []string) (map[string]bool, error)

	// ClearExpired deletes expired pending invitations for the given emails
	// in the organization. Issuance calls it so an expired invitation never
	// blocks a fresh one on the active-pair index.
	ClearExpired(ctx context.Context, organizationID string, emails []string) error

	// CountByInviterSince counts invitations this inviter created at or
	// after the cutoff. Drives the per-caller issuance rate limit.
	CountByInviterSince(ctx context.Context, inviterID string, since time.Time) (int, error)

	// ListByOrganization returns all invitations for an organization,
	// newest first.
	ListByOrganization(ctx context.Context, organizationID string) ([]domain.Invitation, error)

	// MarkAccepted transitions pending -> accepted. Returns ErrNotFound if
	// the invitation is missing or no longer pending; accepted and revoked
	// are terminal.
	MarkAccepted(ctx context.Context, id string, at time.Time) error

	// MarkRevoked transitions pending -> revoked under the same terminal
	// guard as MarkAccepted.
	MarkRevoked(ctx context.Context, id string, at time.Time) error

	// RotateToken replaces the token hash and expiry of a pending
	// invitation (resend). ErrNotFound if not pending.
	RotateToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error

	// DeleteExpiredBefore removes pending invitations whose expiry is older
	// than the cutoff. Housekeeping only; audit rows stay.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) error
}

type Organizations interface {
	// GetByID fetches an organization from the directory.
	GetByID(ctx context.Context, id string) (domain.Organization, error)

	// Create inserts a directory entry.
	Create(ctx context.Context, org domain.Organization) error
}

type Memberships interface {
	// IsCompanyAdmin reports whether the member holds an active owner or
	// admin membership in the company.
	IsCompanyAdmin(ctx context.Context, memberID, organizationID string) (bool, error)

	// IsAssociationManager reports whether the member holds an active
	// manager record for the association, any role.
	IsAssociationManager(ctx context.Context, memberID, organizationID string) (bool, error)

	// AddCompanyMembership inserts a company membership row.
	AddCompanyMembership(ctx context.Context, m domain.CompanyMembership) error

	// AddAssociationManager inserts an association manager row.
	AddAssociationManager(ctx context.Context, m domain.AssociationManager) error
}

type Members interface {
	// GetByEmail fetches a member account by normalized email.
	GetByEmail(ctx context.Context, email string) (domain.Member, error)

	// Create inserts a new member (id is provided by app via ULID).
	// A duplicate email surfaces as ErrAlreadyExists.
	Create(ctx context.Context, m domain.Member) error
}

type AuditLog interface {
	// Record appends one immutable entry. There is no update or delete.
	Record(ctx context.Context, e domain.AuditEntry) error

	// ListByInvitation returns the trail for one invitation, oldest first.
	ListByInvitation(ctx context.Context, invitationID string) ([]domain.AuditEntry, error)
}
