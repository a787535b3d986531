package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/teamlinkhq/teamlink/internal/invites/domain"
	"github.com/teamlinkhq/teamlink/internal/invites/store"
	"github.com/teamlinkhq/teamlink/pkg/idx"
)

func TestCreateInvitation(t *testing.T) {
	ctx := context.Background()

	t.Run("admin creates a pending invitation with audit and email", func(t *testing.T) {
		st := newTestStore(t)
		orgID, adminID := seedCompany(t, st)
		sender := &recordingSender{}
		svc := &InviteService{Store: st, Notifier: newTestNotifier(sender)}

		before := time.Now().UTC()
		inv, err := svc.CreateInvitation(ctx, adminID, companyDraft(orgID, "Jane@Acme.com"))
		require.NoError(t, err)

		require.Equal(t, "jane@acme.com", inv.Email)
		require.Equal(t, domain.InvitationPending, inv.Status)
		require.Equal(t, adminID, inv.InvitedBy)
		require.Len(t, inv.TokenHash, 64)
		require.WithinDuration(t, before.Add(domain.InvitationTTL), inv.ExpiresAt, 5*time.Second)

		stored, err := st.Invitations().GetByID(ctx, inv.ID)
		require.NoError(t, err)
		require.Equal(t, domain.InvitationPending, stored.Status)

		trail, err := st.AuditLog().ListByInvitation(ctx, inv.ID)
		require.NoError(t, err)
		require.Len(t, trail, 1)
		require.Equal(t, domain.AuditCreated, trail[0].Action)
		require.Equal(t, adminID, trail[0].ActorID)

		svc.Notifier.Wait()
		sent := sender.Sent()
		require.Len(t, sent, 1)
		require.Equal(t, "jane@acme.com", sent[0].To)
		require.Contains(t, sent[0].HTML, "https://app.test/register?token=")
		// The persisted fingerprint never leaks into the email.
		require.NotContains(t, sent[0].HTML, inv.TokenHash)
	})

	t.Run("association manager may invite", func(t *testing.T) {
		st := newTestStore(t)
		orgID, managerID := seedAssociation(t, st)
		svc := &InviteService{Store: st, Notifier: newTestNotifier(&recordingSender{})}

		draft := companyDraft(orgID, "new@chamber.test")
		draft.OrganizationKind = domain.OrgKindAssociation

		_, err := svc.CreateInvitation(ctx, managerID, draft)
		require.NoError(t, err)
	})

	t.Run("non-member is denied and nothing is written", func(t *testing.T) {
		st := newTestStore(t)
		orgID, _ := seedCompany(t, st)
		svc := &InviteService{Store: st, Notifier: newTestNotifier(&recordingSender{})}

		stranger := idx.New().String()
		_, err := svc.CreateInvitation(ctx, stranger, companyDraft(orgID, "jane@acme.com"))
		require.ErrorIs(t, err, ErrUnauthorized)

		invs, listErr := st.Invitations().ListByOrganization(ctx, orgID)
		require.NoError(t, listErr)
		require.Empty(t, invs)
	})

	t.Run("plain member of a company is denied", func(t *testing.T) {
		st := newTestStore(t)
		orgID, _ := seedCompany(t, st)
		svc := &InviteService{Store: st, Notifier: newTestNotifier(&recordingSender{})}

		member := domain.Member{
			ID: idx.New().String(), Email: "pleb@acme.test",
			FirstName: "P", LastName: "Leb", PasswordHash: "hash",
			CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
		}
		require.NoError(t, st.Members().Create(ctx, member))
		require.NoError(t, st.Memberships().AddCompanyMembership(ctx, domain.CompanyMembership{
			ID: idx.New().String(), MemberID: member.ID, OrganizationID: orgID,
			Role: "member", Active: true, CreatedAt: time.Now().UTC(),
		}))

		_, err := svc.CreateInvitation(ctx, member.ID, companyDraft(orgID, "jane@acme.com"))
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("kind mismatch with the directory is denied", func(t *testing.T) {
		st := newTestStore(t)
		orgID, adminID := seedCompany(t, st)
		svc := &InviteService{Store: st, Notifier: newTestNotifier(&recordingSender{})}

		draft := companyDraft(orgID, "jane@acme.com")
		draft.OrganizationKind = domain.OrgKindAssociation

		_, err := svc.CreateInvitation(ctx, adminID, draft)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("missing required fields rejected", func(t *testing.T) {
		st := newTestStore(t)
		orgID, adminID := seedCompany(t, st)
		svc := &InviteService{Store: st, Notifier: newTestNotifier(&recordingSender{})}

		draft := companyDraft(orgID, "jane@acme.com")
		draft.LastName = ""

		_, err := svc.CreateInvitation(ctx, adminID, draft)
		require.ErrorIs(t, err, ErrInvalidInvitationRequest)
	})

	t.Run("second active invitation for the same pair is rejected", func(t *testing.T) {
		st := newTestStore(t)
		orgID, adminID := seedCompany(t, st)
		svc := &InviteService{Store: st, Notifier: newTestNotifier(&recordingSender{})}

		_, err := svc.CreateInvitation(ctx, adminID, companyDraft(orgID, "jane@acme.com"))
		require.NoError(t, err)

		// Case only differs; normalization makes it the same pair.
		_, err = svc.CreateInvitation(ctx, adminID, companyDraft(orgID, "JANE@ACME.COM"))
		require.ErrorIs(t, err, ErrDuplicateInvitation)

		invs, err := st.Invitations().ListByOrganization(ctx, orgID)
		require.NoError(t, err)
		require.Len(t, invs, 1)
	})

	t.Run("expired invitation does not block a fresh one", func(t *testing.T) {
		st := newTestStore(t)
		orgID, adminID := seedCompany(t, st)
		svc := &InviteService{Store: st, Notifier: newTestNotifier(&recordingSender{})}

		now := time.Now().UTC().Truncate(time.Second)
		stale := domain.Invitation{
			ID:               idx.New().String(),
			Email:            "jane@acme.com",
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

		inv, err := svc.CreateInvitation(ctx, adminID, companyDraft(orgID, "jane@acme.com"))
		require.NoError(t, err)

		// The stale row is cleared; only the fresh invitation remains.
		_, err = st.Invitations().GetByID(ctx, stale.ID)
		require.ErrorIs(t, err, store.ErrNotFound)

		invs, err := st.Invitations().ListByOrganization(ctx, orgID)
		require.NoError(t, err)
		require.Len(t, invs, 1)
		require.Equal(t, inv.ID, invs[0].ID)
	})
}

func TestCreateInvitationRateLimit(t *testing.T) {
	ctx := context.Background()

	t.Run("sixth invitation in the window is rejected", func(t *testing.T) {
		st := newTestStore(t)
		orgID, adminID := seedCompany(t, st)
		svc := &InviteService{Store: st, Notifier: newTestNotifier(&recordingSender{})}

		emails := []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com", "e@x.com"}
		for _, email := range emails {
			_, err := svc.CreateInvitation(ctx, adminID, companyDraft(orgID, email))
			require.NoError(t, err)
		}

		_, err := svc.CreateInvitation(ctx, adminID, companyDraft(orgID, "f@x.com"))
		require.ErrorIs(t, err, ErrRateLimitExceeded)
	})

	t.Run("limit releases after the window elapses", func(t *testing.T) {
		st := newTestStore(t)
		orgID, adminID := seedCompany(t, st)
		svc := &InviteService{
			Store:           st,
			Notifier:        newTestNotifier(&recordingSender{}),
			RateLimitMax:    2,
			RateLimitWindow: time.Second,
		}

		_, err := svc.CreateInvitation(ctx, adminID, companyDraft(orgID, "a@x.com"))
		require.NoError(t, err)
		_, err = svc.CreateInvitation(ctx, adminID, companyDraft(orgID, "b@x.com"))
		require.NoError(t, err)

		_, err = svc.CreateInvitation(ctx, adminID, companyDraft(orgID, "c@x.com"))
		require.ErrorIs(t, err, ErrRateLimitExceeded)

		// Timestamps round to whole seconds, so wait out the window with margin.
		time.Sleep(2100 * time.Millisecond)

		_, err = svc.CreateInvitation(ctx, adminID, companyDraft(orgID, "c@x.com"))
		require.NoError(t, err)
	})

	t.Run("limit is per inviter", func(t *testing.T) {
		st := newTestStore(t)
		orgID, adminID := seedCompany(t, st)
		svc := &InviteService{Store: st, Notifier: newTestNotifier(&recordingSender{}), RateLimitMax: 1}

		_, err := svc.CreateInvitation(ctx, adminID, companyDraft(orgID, "a@x.com"))
		require.NoError(t, err)
		_, err = svc.CreateInvitation(ctx, adminID, companyDraft(orgID, "b@x.com"))
		require.ErrorIs(t, err, ErrRateLimitExceeded)

		// A second admin in the same org is unaffected.
		other := domain.Member{
			ID: idx.New().String(), Email: "other@acme.test",
			FirstName: "O", LastName: "Ther", PasswordHash: "hash",
			CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
		}
		require.NoError(t, st.Members().Create(ctx, other))
		require.NoError(t, st.Memberships().AddCompanyMembership(ctx, domain.CompanyMembership{
			ID: idx.New().String(), MemberID: other.ID, OrganizationID: orgID,
			Role: "owner", Active: true, CreatedAt: time.Now().UTC(),
		}))

		_, err = svc.CreateInvitation(ctx, other.ID, companyDraft(orgID, "b@x.com"))
		require.NoError(t, err)
	})
}

func TestResendInvitation(t *testing.T) {
	ctx := context.Background()

	t.Run("rotates token and expiry, stays pending", func(t *testing.T) {
		st := newTestStore(t)
		orgID, adminID := seedCompany(t, st)
		sender := &recordingSender{}
		svc := &InviteService{Store: st, Notifier: newTestNotifier(sender)}

		inv, err := svc.CreateInvitation(ctx, adminID, companyDraft(orgID, "jane@acme.com"))
		require.NoError(t, err)

		resent, err := svc.ResendInvitation(ctx, adminID, inv.ID)
		require.NoError(t, err)
		require.Equal(t, inv.ID, resent.ID)
		require.NotEqual(t, inv.TokenHash, resent.TokenHash)

		stored, err := st.Invitations().GetByID(ctx, inv.ID)
		require.NoError(t, err)
		require.Equal(t, domain.InvitationPending, stored.Status)
		require.Equal(t, resent.TokenHash, stored.TokenHash)

		trail, err := st.AuditLog().ListByInvitation(ctx, inv.ID)
		require.NoError(t, err)
		require.Len(t, trail, 2)
		require.Equal(t, domain.AuditResent, trail[1].Action)

		svc.Notifier.Wait()
		require.Len(t, sender.Sent(), 2)
	})

	t.Run("revoked invitation cannot be resent", func(t *testing.T) {
		st := newTestStore(t)
		orgID, adminID := seedCompany(t, st)
		svc := &InviteService{Store: st, Notifier: newTestNotifier(&recordingSender{})}

		inv, err := svc.CreateInvitation(ctx, adminID, companyDraft(orgID, "jane@acme.com"))
		require.NoError(t, err)
		require.NoError(t, svc.RevokeInvitation(ctx, adminID, inv.ID))

		_, err = svc.ResendInvitation(ctx, adminID, inv.ID)
		require.ErrorIs(t, err, ErrInvitationNotPending)
	})

	t.Run("unknown invitation", func(t *testing.T) {
		st := newTestStore(t)
		_, adminID := seedCompany(t, st)
		svc := &InviteService{Store: st, Notifier: newTestNotifier(&recordingSender{})}

		_, err := svc.ResendInvitation(ctx, adminID, idx.New().String())
		require.ErrorIs(t, err, ErrInvitationNotFound)
	})
}

func TestRevokeInvitation(t *testing.T) {
	ctx := context.Background()

	t.Run("terminal transition with audit", func(t *testing.T) {
		st := newTestStore(t)
		orgID, adminID := seedCompany(t, st)
		svc := &InviteService{Store: st, Notifier: newTestNotifier(&recordingSender{})}

		inv, err := svc.CreateInvitation(ctx, adminID, companyDraft(orgID, "jane@acme.com"))
		require.NoError(t, err)

		require.NoError(t, svc.RevokeInvitation(ctx, adminID, inv.ID))

		stored, err := st.Invitations().GetByID(ctx, inv.ID)
		require.NoError(t, err)
		require.Equal(t, domain.InvitationRevoked, stored.Status)
		require.NotNil(t, stored.RevokedAt)

		// Revoking again hits the terminal guard.
		err = svc.RevokeInvitation(ctx, adminID, inv.ID)
		require.ErrorIs(t, err, ErrInvitationNotPending)

		trail, err := st.AuditLog().ListByInvitation(ctx, inv.ID)
		require.NoError(t, err)
		require.Len(t, trail, 2)
		require.Equal(t, domain.AuditRevoked, trail[1].Action)
	})

	t.Run("non-admin cannot revoke", func(t *testing.T) {
		st := newTestStore(t)
		orgID, adminID := seedCompany(t, st)
		svc := &InviteService{Store: st, Notifier: newTestNotifier(&recordingSender{})}

		inv, err := svc.CreateInvitation(ctx, adminID, companyDraft(orgID, "jane@acme.com"))
		require.NoError(t, err)

		err = svc.RevokeInvitation(ctx, idx.New().String(), inv.ID)
		require.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestListInvitations(t *testing.T) {
	ctx := context.Background()

	st := newTestStore(t)
	orgID, adminID := seedCompany(t, st)
	svc := &InviteService{Store: st, Notifier: newTestNotifier(&recordingSender{})}

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		_, err := svc.CreateInvitation(ctx, adminID, companyDraft(orgID, email))
		require.NoError(t, err)
	}

	invs, err := svc.ListInvitations(ctx, adminID, orgID)
	require.NoError(t, err)
	require.Len(t, invs, 3)
	for _, inv := range invs {
		require.True(t, strings.HasSuffix(inv.Email, "@x.com"))
	}

	_, err = svc.ListInvitations(ctx, idx.New().String(), orgID)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.ListInvitations(ctx, adminID, idx.New().String())
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestTerminalStateGuard(t *testing.T) {
	ctx := context.Background()

	st := newTestStore(t)
	orgID, adminID := seedCompany(t, st)
	svc := &InviteService{Store: st, Notifier: newTestNotifier(&recordingSender{})}

	inv, err := svc.CreateInvitation(ctx, adminID, companyDraft(orgID, "jane@acme.com"))
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, st.Invitations().MarkAccepted(ctx, inv.ID, now))

	// Accepted is terminal for every mutation path.
	require.ErrorIs(t, st.Invitations().MarkRevoked(ctx, inv.ID, now), store.ErrNotFound)
	require.ErrorIs(t, st.Invitations().MarkAccepted(ctx, inv.ID, now), store.ErrNotFound)
	require.ErrorIs(t, st.Invitations().RotateToken(ctx, inv.ID, "ffff", now), store.ErrNotFound)

	stored, err := st.Invitations().GetByID(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, domain.InvitationAccepted, stored.Status)
}
