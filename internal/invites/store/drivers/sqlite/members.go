package sqlite

import (
	"context"

	"github.com/teamlinkhq/teamlink/internal/invites/domain"
)

type membersRepo struct {
	db querier
}

func (r *membersRepo) GetByEmail(ctx context.Context, email string) (domain.Member, error) {
	var (
		m                    domain.Member
		createdAt, updatedAt string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, first_name, last_name, password_hash, created_at, updated_at
		FROM members
		WHERE email = ?`,
		email).Scan(&m.ID, &m.Email, &m.FirstName, &m.LastName, &m.PasswordHash, &createdAt, &updatedAt)
	if err != nil {
		return domain.Member{}, mapNotFound(err)
	}
	m.CreatedAt = parseTime(createdAt)
	m.UpdatedAt = parseTime(updatedAt)
	return m, nil
}

func (r *membersRepo) Create(ctx context.Context, m domain.Member) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO members (id, email, first_name, last_name, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Email, m.FirstName, m.LastName, m.PasswordHash,
		fmtTime(m.CreatedAt), fmtTime(m.UpdatedAt))
	return mapConstraint(err)
}
