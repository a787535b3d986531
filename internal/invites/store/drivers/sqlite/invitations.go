package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/teamlinkhq/teamlink/internal/invites/domain"
	"github.com/teamlinkhq/teamlink/internal/invites/store"
)

type invitationsRepo struct {
	db querier
}

const invitationColumns = `id, email, first_name, last_name, organization_id,
	organization_kind, role, designation, department, token_hash, status,
	invited_by, expires_at, accepted_at, revoked_at, created_at, updated_at`

func (r *invitationsRepo) Create(ctx context.Context, inv domain.Invitation) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invitations (`+invitationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		invitationArgs(inv)...,
	)
	return mapConstraint(err)
}

func (r *invitationsRepo) CreateBatch(ctx context.Context, invs []domain.Invitation) error {
	if len(invs) == 0 {
		return nil
	}

	// One multi-row insert so a batch of hundreds costs a single round trip.
	var sb strings.Builder
	sb.WriteString(`INSERT INTO invitations (` + invitationColumns + `) VALUES `)

	args := make([]any, 0, len(invs)*17)
	for i, inv := range invs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args, invitationArgs(inv)...)
	}

	_, err := r.db.ExecContext(ctx, sb.String(), args...)
	return mapConstraint(err)
}

func (r *invitationsRepo) GetByID(ctx context.Context, id string) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+invitationColumns+`
		FROM invitations
		WHERE id = ?`, id)
	return scanInvitation(row)
}

func (r *invitationsRepo) GetActiveByTokenHash(
	ctx context.Context,
	hash string,
) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+invitationColumns+`
		FROM invitations
		WHERE token_hash = ? AND status = 'pending' AND expires_at > ?`,
		hash, fmtTime(time.Now()))
	return scanInvitation(row)
}

func (r *invitationsRepo) HasActive(
	ctx context.Context,
	organizationID, email string,
) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(1)
		FROM invitations
		WHERE organization_id = ? AND email = ? AND status = 'pending' AND expires_at > ?`,
		organizationID, email, fmtTime(time.Now())).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *invitationsRepo) FilterActiveEmails(
	ctx context.Context,
	organizationID string,
	emails []string,
) (map[string]bool, error) {
	active := make(map[string]bool, len(emails))
	if len(emails) == 0 {
		return active, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(emails)), ", ")
	args := make([]any, 0, len(emails)+2)
	args = append(args, organizationID, fmtTime(time.Now()))
	for _, e := range emails {
		args = append(args, e)
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT email
		FROM invitations
		WHERE organization_id = ? AND status = 'pending' AND expires_at > ?
		  AND email IN (%s)`, placeholders), args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		active[email] = true
	}
	return active, rows.Err()
}

// ClearExpired deletes expired pending invitations for the given emails so
// the active-pair index slot is free for reissue. Uses the complement of the
// active predicate; housekeeping covers the rest of the table on its own
// schedule.
func (r *invitationsRepo) ClearExpired(
	ctx context.Context,
	organizationID string,
	emails []string,
) error {
	if len(emails) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(emails)), ", ")
	args := make([]any, 0, len(emails)+2)
	args = append(args, organizationID, fmtTime(time.Now()))
	for _, e := range emails {
		args = append(args, e)
	}

	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`
		DELETE FROM invitations
		WHERE organization_id = ? AND status = 'pending' AND expires_at <= ?
		  AND email IN (%s)`, placeholders), args...)
	return err
}

func (r *invitationsRepo) CountByInviterSince(
	ctx context.Context,
	inviterID string,
	since time.Time,
) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(1)
		FROM invitations
		WHERE invited_by = ? AND created_at >= ?`,
		inviterID, fmtTime(since)).Scan(&count)
	return count, err
}

func (r *invitationsRepo) ListByOrganization(
	ctx context.Context,
	organizationID string,
) ([]domain.Invitation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+invitationColumns+`
		FROM invitations
		WHERE organization_id = ?
		ORDER BY created_at DESC, id DESC`, organizationID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *invitationsRepo) MarkAccepted(ctx context.Context, id string, at time.Time) error {
	return r.terminalTransition(ctx, id, `
		UPDATE invitations
		SET status = 'accepted', accepted_at = ?, updated_at = ?
		WHERE id = ? AND status = 'pending'`, at)
}

func (r *invitationsRepo) MarkRevoked(ctx context.Context, id string, at time.Time) error {
	return r.terminalTransition(ctx, id, `
		UPDATE invitations
		SET status = 'revoked', revoked_at = ?, updated_at = ?
		WHERE id = ? AND status = 'pending'`, at)
}

// terminalTransition runs a guarded pending-only update. Zero affected rows
// means the invitation is gone or already terminal; either way the caller
// gets ErrNotFound and the record stays untouched.
func (r *invitationsRepo) terminalTransition(
	ctx context.Context,
	id, query string,
	at time.Time,
) error {
	res, err := r.db.ExecContext(ctx, query, fmtTime(at), fmtTime(at), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *invitationsRepo) RotateToken(
	ctx context.Context,
	id, tokenHash string,
	expiresAt time.Time,
) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invitations
		SET token_hash = ?, expires_at = ?, updated_at = ?
		WHERE id = ? AND status = 'pending'`,
		tokenHash, fmtTime(expiresAt), fmtTime(time.Now()), id)
	if err != nil {
		return mapConstraint(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *invitationsRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM invitations
		WHERE status = 'pending' AND expires_at < ?`, fmtTime(cutoff))
	return err
}

func invitationArgs(inv domain.Invitation) []any {
	return []any{
		inv.ID,
		inv.Email,
		inv.FirstName,
		inv.LastName,
		inv.OrganizationID,
		string(inv.OrganizationKind),
		inv.Role,
		inv.Designation,
		inv.Department,
		inv.TokenHash,
		string(inv.Status),
		inv.InvitedBy,
		fmtTime(inv.ExpiresAt),
		fmtNullTime(inv.AcceptedAt),
		fmtNullTime(inv.RevokedAt),
		fmtTime(inv.CreatedAt),
		fmtTime(inv.UpdatedAt),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvitation(row rowScanner) (domain.Invitation, error) {
	var (
		inv                   domain.Invitation
		kind, status          string
		expiresAt             string
		acceptedAt, revokedAt sql.NullString
		createdAt, updatedAt  string
	)
	err := row.Scan(
		&inv.ID,
		&inv.Email,
		&inv.FirstName,
		&inv.LastName,
		&inv.OrganizationID,
		&kind,
		&inv.Role,
		&inv.Designation,
		&inv.Department,
		&inv.TokenHash,
		&status,
		&inv.InvitedBy,
		&expiresAt,
		&acceptedAt,
		&revokedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}

	inv.OrganizationKind = domain.OrganizationKind(kind)
	inv.Status = domain.InvitationStatus(status)
	inv.ExpiresAt = parseTime(expiresAt)
	inv.AcceptedAt = parseNullTime(acceptedAt)
	inv.RevokedAt = parseNullTime(revokedAt)
	inv.CreatedAt = parseTime(createdAt)
	inv.UpdatedAt = parseTime(updatedAt)
	return inv, nil
}
