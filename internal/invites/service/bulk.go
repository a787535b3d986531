package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/teamlinkhq/teamlink/internal/invites/domain"
	"github.com/teamlinkhq/teamlink/pkg/cryptox"
	"github.com/teamlinkhq/teamlink/pkg/idx"
	"github.com/teamlinkhq/teamlink/pkg/slogx"
)

// Bulk failure reasons reported per row.
const (
	reasonMissingFields     = "Missing required fields"
	reasonActiveDuplicate   = "Active invitation already exists"
	reasonTokenFailure      = "Failed to generate invitation token"
	reasonWrongOrganization = "Organization does not match the batch"
)

// CreateInvitationsBulk processes a batch of drafts with per-row independent
// outcomes:
//
//  1. Drafts missing required fields fail immediately and drop out. The
//     batch targets exactly one organization: the first draft's, which the
//     authorization guard runs against. Any draft naming a different
//     organization fails per-row, so the guard covers every row it lets
//     through.
//  2. Surviving emails are normalized to lowercase.
//  3. One batched query finds emails that already hold an active invitation
//     in that organization; those rows fail and drop out.
//  4. Each survivor gets its own token; a row whose token generation fails is
//     recorded and skipped, never aborting the batch.
//  5. All survivors are inserted in one storage call.
//  6. Each persisted row gets a best-effort email and audit entry.
//
// Only the final insert can fail the surviving rows as a group; everything
// before it has already partitioned the work per row.
func (s *InviteService) CreateInvitationsBulk(
	ctx context.Context,
	inviterID string,
	drafts []domain.InvitationDraft,
) (domain.BulkResult, error) {
	log := slogx.FromContext(ctx)
	now := time.Now().UTC()

	var result domain.BulkResult
	if len(drafts) == 0 {
		return result, ErrInvalidInvitationRequest
	}

	// The whole batch is authorized against the first draft's organization.
	first := drafts[0]
	org, err := authorizeInviter(ctx, s.Store, inviterID, first.OrganizationID, first.OrganizationKind)
	if err != nil {
		return result, err
	}

	// 1+2. Partition on required fields, normalizing emails as we go. A
	// repeated email inside one batch counts as a duplicate of the first
	// occurrence.
	var (
		valid  []domain.InvitationDraft
		emails []string
		seen   = make(map[string]bool, len(drafts))
	)
	for _, d := range drafts {
		d.Email = strings.ToLower(strings.TrimSpace(d.Email))
		if !d.Valid() {
			result.Failed = append(result.Failed, domain.BulkFailure{
				Email:  d.Email,
				Reason: reasonMissingFields,
			})
			continue
		}
		if d.OrganizationID != first.OrganizationID || d.OrganizationKind != first.OrganizationKind {
			result.Failed = append(result.Failed, domain.BulkFailure{
				Email:  d.Email,
				Reason: reasonWrongOrganization,
			})
			continue
		}
		if seen[d.Email] {
			result.Failed = append(result.Failed, domain.BulkFailure{
				Email:  d.Email,
				Reason: reasonActiveDuplicate,
			})
			continue
		}
		seen[d.Email] = true
		valid = append(valid, d)
		emails = append(emails, d.Email)
	}

	// 3. One round trip for the duplicate-active check across the batch.
	var active map[string]bool
	if len(emails) > 0 {
		active, err = s.Store.Invitations().FilterActiveEmails(ctx, first.OrganizationID, emails)
		if err != nil {
			log.Error("failed to check batch for active invitations", slog.Any("error", err))
			return domain.BulkResult{}, err
		}
	}

	// 4. Mint tokens and build rows. Token generation failures stay per-row.
	type pendingRow struct {
		inv   domain.Invitation
		token string
	}
	var rows []pendingRow
	for _, d := range valid {
		if active[d.Email] {
			result.Failed = append(result.Failed, domain.BulkFailure{
				Email:  d.Email,
				Reason: reasonActiveDuplicate,
			})
			continue
		}

		token, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			log.Error("failed to generate token for batch row", slog.Any("error", err))
			result.Failed = append(result.Failed, domain.BulkFailure{
				Email:  d.Email,
				Reason: reasonTokenFailure,
			})
			continue
		}

		rows = append(rows, pendingRow{
			inv: domain.Invitation{
				ID:               idx.New().String(),
				Email:            d.Email,
				FirstName:        d.FirstName,
				LastName:         d.LastName,
				OrganizationID:   d.OrganizationID,
				OrganizationKind: d.OrganizationKind,
				Role:             d.Role,
				Designation:      d.Designation,
				Department:       d.Department,
				TokenHash:        cryptox.FingerprintToken(token),
				Status:           domain.InvitationPending,
				InvitedBy:        inviterID,
				ExpiresAt:        now.Add(domain.InvitationTTL),
				CreatedAt:        now,
				UpdatedAt:        now,
			},
			token: token,
		})
	}

	// 5. Single insert for every surviving row. Expired invitations still
	// holding the active-pair index slot for these emails are cleared first.
	if len(rows) > 0 {
		invs := make([]domain.Invitation, len(rows))
		surviving := make([]string, len(rows))
		for i, r := range rows {
			invs[i] = r.inv
			surviving[i] = r.inv.Email
		}
		if err := s.Store.Invitations().ClearExpired(ctx, first.OrganizationID, surviving); err != nil {
			log.Error("failed to clear expired invitations for batch", slog.Any("error", err))
			return domain.BulkResult{}, err
		}
		if err := s.Store.Invitations().CreateBatch(ctx, invs); err != nil {
			log.Error("failed to persist invitation batch",
				slog.Int("rows", len(rows)),
				slog.Any("error", err),
			)
			return domain.BulkResult{}, err
		}
	}

	// 6+7. Best-effort email and audit per persisted row.
	for _, r := range rows {
		s.Notifier.Dispatch(r.inv, r.token, org.Name)
		s.audit(ctx, r.inv.ID, domain.AuditCreated, inviterID)
		result.Successful = append(result.Successful, r.inv.Email)
	}

	log.Info("invitation batch processed",
		slog.String("organization_id", first.OrganizationID),
		slog.Int("successful", len(result.Successful)),
		slog.Int("failed", len(result.Failed)),
	)

	return result, nil
}
