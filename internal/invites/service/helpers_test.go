package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/teamlinkhq/teamlink/internal/invites/domain"
	"github.com/teamlinkhq/teamlink/internal/invites/store"
	"github.com/teamlinkhq/teamlink/internal/invites/store/drivers/sqlite"
	"github.com/teamlinkhq/teamlink/pkg/idx"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

// recordingSender captures outbound email for assertions.
type recordingSender struct {
	mu   sync.Mutex
	sent []sentMail
}

type sentMail struct {
	To      string
	Subject string
	HTML    string
}

func (s *recordingSender) Send(to, subject, html string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMail{To: to, Subject: subject, HTML: html})
	return nil
}

func (s *recordingSender) Sent() []sentMail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentMail(nil), s.sent...)
}

func newTestNotifier(sender *recordingSender) *Notifier {
	return &Notifier{
		Sender: sender,
		Origin: "https://app.test",
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// seedCompany creates a company, an admin member, and the linking membership.
// Returns (organization id, admin member id).
func seedCompany(t *testing.T, st store.Store) (string, string) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	org := domain.Organization{
		ID:        idx.New().String(),
		Kind:      domain.OrgKindCompany,
		Name:      "Acme Pty Ltd",
		CreatedAt: now,
	}
	require.NoError(t, st.Organizations().Create(ctx, org))

	admin := domain.Member{
		ID:           idx.New().String(),
		Email:        "admin@acme.test",
		FirstName:    "Ada",
		LastName:     "Admin",
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, st.Members().Create(ctx, admin))

	require.NoError(t, st.Memberships().AddCompanyMembership(ctx, domain.CompanyMembership{
		ID:             idx.New().String(),
		MemberID:       admin.ID,
		OrganizationID: org.ID,
		Role:           "admin",
		Active:         true,
		CreatedAt:      now,
	}))

	return org.ID, admin.ID
}

// seedAssociation creates an association and a manager member.
func seedAssociation(t *testing.T, st store.Store) (string, string) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	org := domain.Organization{
		ID:        idx.New().String(),
		Kind:      domain.OrgKindAssociation,
		Name:      "Chamber of Commerce",
		CreatedAt: now,
	}
	require.NoError(t, st.Organizations().Create(ctx, org))

	manager := domain.Member{
		ID:           idx.New().String(),
		Email:        "manager@chamber.test",
		FirstName:    "Mel",
		LastName:     "Manager",
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, st.Members().Create(ctx, manager))

	require.NoError(t, st.Memberships().AddAssociationManager(ctx, domain.AssociationManager{
		ID:             idx.New().String(),
		MemberID:       manager.ID,
		OrganizationID: org.ID,
		Role:           "manager",
		Active:         true,
		CreatedAt:      now,
	}))

	return org.ID, manager.ID
}

func companyDraft(orgID, email string) domain.InvitationDraft {
	return domain.InvitationDraft{
		Email:            email,
		FirstName:        "Jane",
		LastName:         "Doe",
		OrganizationID:   orgID,
		OrganizationKind: domain.OrgKindCompany,
		Role:             "member",
	}
}
