package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/teamlinkhq/teamlink/internal/invites/domain"
	"github.com/teamlinkhq/teamlink/internal/invites/store"
	"github.com/teamlinkhq/teamlink/pkg/slogx"
)

// authorizeInviter verifies the inviter may issue invitations for the target
// organization. Company invitations require an active owner or admin
// membership; association invitations require an active manager record, any
// role. Any lookup error or absence of a qualifying record denies.
//
// On success the organization record is returned so callers can reuse the
// display name without a second directory lookup.
func authorizeInviter(
	ctx context.Context,
	st store.Store,
	inviterID string,
	organizationID string,
	kind domain.OrganizationKind,
) (domain.Organization, error) {
	log := slogx.FromContext(ctx)

	org, err := st.Organizations().GetByID(ctx, organizationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("invitation attempted for unknown organization",
				slog.String("organization_id", organizationID),
			)
			return domain.Organization{}, ErrUnauthorized
		}
		log.Error("failed to fetch organization", slog.Any("error", err))
		return domain.Organization{}, ErrUnauthorized
	}

	if org.Kind != kind {
		log.Warn("invitation organization kind mismatch",
			slog.String("organization_id", organizationID),
			slog.String("directory_kind", string(org.Kind)),
			slog.String("requested_kind", string(kind)),
		)
		return domain.Organization{}, ErrUnauthorized
	}

	var allowed bool
	switch org.Kind {
	case domain.OrgKindCompany:
		allowed, err = st.Memberships().IsCompanyAdmin(ctx, inviterID, organizationID)
	case domain.OrgKindAssociation:
		allowed, err = st.Memberships().IsAssociationManager(ctx, inviterID, organizationID)
	default:
		return domain.Organization{}, ErrUnauthorized
	}
	if err != nil {
		log.Error("failed to check inviter membership",
			slog.String("inviter_id", inviterID),
			slog.String("organization_id", organizationID),
			slog.Any("error", err),
		)
		return domain.Organization{}, ErrUnauthorized
	}
	if !allowed {
		log.Warn("inviter lacks permission for organization",
			slog.String("inviter_id", inviterID),
			slog.String("organization_id", organizationID),
			slog.String("kind", string(org.Kind)),
		)
		return domain.Organization{}, ErrUnauthorized
	}

	return org, nil
}
