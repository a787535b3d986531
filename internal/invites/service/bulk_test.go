package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/teamlinkhq/teamlink/internal/invites/domain"
	"github.com/teamlinkhq/teamlink/pkg/idx"
)

func TestCreateInvitationsBulk(t *testing.T) {
	ctx := context.Background()

	t.Run("partial failure leaves valid rows untouched", func(t *testing.T) {
		st := newTestStore(t)
		orgID, adminID := seedCompany(t, st)
		sender := &recordingSender{}
		svc := &InviteService{Store: st, Notifier: newTestNotifier(sender)}

		broken := companyDraft(orgID, "two@x.com")
		broken.LastName = ""

		result, err := svc.CreateInvitationsBulk(ctx, adminID, []domain.InvitationDraft{
			companyDraft(orgID, "one@x.com"),
			broken,
			companyDraft(orgID, "three@x.com"),
		})
		require.NoError(t, err)

		require.Equal(t, []string{"one@x.com", "three@x.com"}, result.Successful)
		require.Equal(t, []domain.BulkFailure{
			{Email: "two@x.com", Reason: "Missing required fields"},
		}, result.Failed)

		invs, err := st.Invitations().ListByOrganization(ctx, orgID)
		require.NoError(t, err)
		require.Len(t, invs, 2)

		svc.Notifier.Wait()
		require.Len(t, sender.Sent(), 2)
	})

	t.Run("rows colliding with an active invitation fail per-row", func(t *testing.T) {
		st := newTestStore(t)
		orgID, adminID := seedCompany(t, st)
		svc := &InviteService{Store: st, Notifier: newTestNotifier(&recordingSender{})}

		_, err := svc.CreateInvitation(ctx, adminID, companyDraft(orgID, "taken@x.com"))
		require.NoError(t, err)

		result, err := svc.CreateInvitationsBulk(ctx, adminID, []domain.InvitationDraft{
			companyDraft(orgID, "Taken@X.com"),
			companyDraft(orgID, "fresh@x.com"),
		})
		require.NoError(t, err)

		require.Equal(t, []string{"fresh@x.com"}, result.Successful)
		require.Equal(t, []domain.BulkFailure{
			{Email: "taken@x.com", Reason: "Active invitation already exists"},
		}, result.Failed)

		invs, err := st.Invitations().ListByOrganization(ctx, orgID)
		require.NoError(t, err)
		require.Len(t, invs, 2)
	})

	t.Run("expired invitation does not block a batch row", func(t *testing.T) {
		st := newTestStore(t)
		orgID, adminID := seedCompany(t, st)
		svc := &InviteService{Store: st, Notifier: newTestNotifier(&recordingSender{})}

		now := time.Now().UTC().Truncate(time.Second)
		stale := domain.Invitation{
			ID:               idx.New().String(),
			Email:            "lapsed@x.com",
			FirstName:        "Jane",
			LastName:         "Doe",
			OrganizationID:   orgID,
			OrganizationKind: domain.OrgKindCompany,
			Role:             "member",
			TokenHash:        "stale-hash",
			Status:           domain.InvitationPending,
			InvitedBy:        adminID,
			ExpiresAt:        now.Add(-time.Hour),
			CreatedAt:        now.Add(-49 * time.Hour),
			UpdatedAt:        now.Add(-49 * time.Hour),
		}
		require.NoError(t, st.Invitations().Create(ctx, stale))

		result, err := svc.CreateInvitationsBulk(ctx, adminID, []domain.InvitationDraft{
			companyDraft(orgID, "lapsed@x.com"),
		})
		require.NoError(t, err)
		require.Equal(t, []string{"lapsed@x.com"}, result.Successful)
		require.Empty(t, result.Failed)

		invs, err := st.Invitations().ListByOrganization(ctx, orgID)
		require.NoError(t, err)
		require.Len(t, invs, 1)
		require.NotEqual(t, stale.ID, invs[0].ID)
	})

	t.Run("repeated email within one batch counts as duplicate", func(t *testing.T) {
		st := newTestStore(t)
		orgID, adminID := seedCompany(t, st)
		svc := &InviteService{Store: st, Notifier: newTestNotifier(&recordingSender{})}

		result, err := svc.CreateInvitationsBulk(ctx, adminID, []domain.InvitationDraft{
			companyDraft(orgID, "dup@x.com"),
			companyDraft(orgID, "dup@x.com"),
		})
		require.NoError(t, err)

		require.Equal(t, []string{"dup@x.com"}, result.Successful)
		require.Equal(t, []domain.BulkFailure{
			{Email: "dup@x.com", Reason: "Active invitation already exists"},
		}, result.Failed)
	})

	t.Run("bulk is not issuance rate limited", func(t *testing.T) {
		st := newTestStore(t)
		orgID, adminID := seedCompany(t, st)
		svc := &InviteService{Store: st, Notifier: newTestNotifier(&recordingSender{}), RateLimitMax: 1}

		drafts := make([]domain.InvitationDraft, 8)
		for i := range drafts {
			drafts[i] = companyDraft(orgID, string(rune('a'+i))+"@bulk.com")
		}

		result, err := svc.CreateInvitationsBulk(ctx, adminID, drafts)
		require.NoError(t, err)
		require.Len(t, result.Successful, 8)
		require.Empty(t, result.Failed)
	})

	t.Run("rows targeting another organization fail per-row", func(t *testing.T) {
		st := newTestStore(t)
		orgID, adminID := seedCompany(t, st)
		otherOrgID, _ := seedAssociation(t, st)
		svc := &InviteService{Store: st, Notifier: newTestNotifier(&recordingSender{})}

		smuggled := companyDraft(otherOrgID, "smuggled@other.com")
		smuggled.OrganizationKind = domain.OrgKindAssociation

		result, err := svc.CreateInvitationsBulk(ctx, adminID, []domain.InvitationDraft{
			companyDraft(orgID, "ok@acme.com"),
			smuggled,
		})
		require.NoError(t, err)

		require.Equal(t, []string{"ok@acme.com"}, result.Successful)
		require.Equal(t, []domain.BulkFailure{
			{Email: "smuggled@other.com", Reason: "Organization does not match the batch"},
		}, result.Failed)

		invs, err := st.Invitations().ListByOrganization(ctx, otherOrgID)
		require.NoError(t, err)
		require.Empty(t, invs)
	})

	t.Run("unauthorized caller gets nothing", func(t *testing.T) {
		st := newTestStore(t)
		orgID, _ := seedCompany(t, st)
		svc := &InviteService{Store: st, Notifier: newTestNotifier(&recordingSender{})}

		_, err := svc.CreateInvitationsBulk(ctx, idx.New().String(), []domain.InvitationDraft{
			companyDraft(orgID, "jane@acme.com"),
		})
		require.ErrorIs(t, err, ErrUnauthorized)

		invs, err := st.Invitations().ListByOrganization(ctx, orgID)
		require.NoError(t, err)
		require.Empty(t, invs)
	})

	t.Run("empty batch rejected", func(t *testing.T) {
		st := newTestStore(t)
		_, adminID := seedCompany(t, st)
		svc := &InviteService{Store: st, Notifier: newTestNotifier(&recordingSender{})}

		_, err := svc.CreateInvitationsBulk(ctx, adminID, nil)
		require.ErrorIs(t, err, ErrInvalidInvitationRequest)
	})
}
