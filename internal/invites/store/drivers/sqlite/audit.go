package sqlite

import (
	"context"

	"github.com/teamlinkhq/teamlink/internal/invites/domain"
)

type auditLogRepo struct {
	db querier
}

func (r *auditLogRepo) Record(ctx context.Context, e domain.AuditEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invitation_audit (id, invitation_id, action, actor_id, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.InvitationID, string(e.Action), e.ActorID, fmtTime(e.CreatedAt))
	return err
}

func (r *auditLogRepo) ListByInvitation(
	ctx context.Context,
	invitationID string,
) ([]domain.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, invitation_id, action, actor_id, created_at
		FROM invitation_audit
		WHERE invitation_id = ?
		ORDER BY created_at ASC, id ASC`,
		invitationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var (
			e         domain.AuditEntry
			action    string
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.InvitationID, &action, &e.ActorID, &createdAt); err != nil {
			return nil, err
		}
		e.Action = domain.AuditAction(action)
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
