package sqlite

import (
	"context"

	"github.com/teamlinkhq/teamlink/internal/invites/domain"
)

type membershipsRepo struct {
	db querier
}

func (r *membershipsRepo) IsCompanyAdmin(
	ctx context.Context,
	memberID, organizationID string,
) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(1)
		FROM company_memberships
		WHERE member_id = ? AND organization_id = ? AND active = 1
		  AND role IN ('owner', 'admin')`,
		memberID, organizationID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *membershipsRepo) IsAssociationManager(
	ctx context.Context,
	memberID, organizationID string,
) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(1)
		FROM association_managers
		WHERE member_id = ? AND organization_id = ? AND active = 1`,
		memberID, organizationID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *membershipsRepo) AddCompanyMembership(
	ctx context.Context,
	m domain.CompanyMembership,
) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO company_memberships (id, member_id, organization_id, role, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.MemberID, m.OrganizationID, m.Role, boolToInt(m.Active), fmtTime(m.CreatedAt))
	return mapConstraint(err)
}

func (r *membershipsRepo) AddAssociationManager(
	ctx context.Context,
	m domain.AssociationManager,
) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO association_managers (id, member_id, organization_id, role, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.MemberID, m.OrganizationID, m.Role, boolToInt(m.Active), fmtTime(m.CreatedAt))
	return mapConstraint(err)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
