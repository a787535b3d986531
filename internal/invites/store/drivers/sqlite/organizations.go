package sqlite

import (
	"context"

	"github.com/teamlinkhq/teamlink/internal/invites/domain"
)

type organizationsRepo struct {
	db querier
}

func (r *organizationsRepo) GetByID(ctx context.Context, id string) (domain.Organization, error) {
	var (
		org       domain.Organization
		kind      string
		createdAt string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, kind, name, created_at
		FROM organizations
		WHERE id = ?`, id).Scan(&org.ID, &kind, &org.Name, &createdAt)
	if err != nil {
		return domain.Organization{}, mapNotFound(err)
	}

	org.Kind = domain.OrganizationKind(kind)
	org.CreatedAt = parseTime(createdAt)
	return org, nil
}

func (r *organizationsRepo) Create(ctx context.Context, org domain.Organization) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO organizations (id, kind, name, created_at)
		VALUES (?, ?, ?, ?)`,
		org.ID, string(org.Kind), org.Name, fmtTime(org.CreatedAt))
	return mapConstraint(err)
}
