package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/teamlinkhq/teamlink/internal/invites/domain"
	"github.com/teamlinkhq/teamlink/internal/invites/store"
	"github.com/teamlinkhq/teamlink/pkg/cryptox"
	"github.com/teamlinkhq/teamlink/pkg/idx"
	"github.com/teamlinkhq/teamlink/pkg/slogx"
)

var (
	ErrInvalidInvitationRequest = errors.New("invalid invitation request")
	ErrUnauthorized             = errors.New("unauthorized")
	ErrDuplicateInvitation      = errors.New("an active invitation already exists for this email")
	ErrRateLimitExceeded        = errors.New("invitation rate limit exceeded")
	ErrInvitationNotFound       = errors.New("invitation not found")
	ErrInvitationNotPending     = errors.New("invitation is no longer pending")
)

const (
	DefaultRateLimitMax    = 5
	DefaultRateLimitWindow = 60 * time.Second
)

// InviteService issues and manages invitations. RateLimitMax and
// RateLimitWindow bound how many invitations one inviter may create in a
// trailing window on the single path; zero values fall back to the defaults.
type InviteService struct {
	Store    store.Store
	Notifier *Notifier

	RateLimitMax    int
	RateLimitWindow time.Duration
}

// CreateInvitation issues one invitation on behalf of inviterID.
func (s *InviteService) CreateInvitation(
	ctx context.Context,
	inviterID string,
	draft domain.InvitationDraft,
) (domain.Invitation, error) {
	log := slogx.FromContext(ctx)
	now := time.Now().UTC()

	// 1. Validate required fields.
	draft.Email = strings.ToLower(strings.TrimSpace(draft.Email))
	if !draft.Valid() {
		log.Warn("invitation request missing required fields")
		return domain.Invitation{}, ErrInvalidInvitationRequest
	}

	// 2. Verify the inviter may invite into this organization.
	org, err := authorizeInviter(ctx, s.Store, inviterID, draft.OrganizationID, draft.OrganizationKind)
	if err != nil {
		return domain.Invitation{}, err
	}

	// 3. Per-inviter trailing-window rate limit.
	if err := s.checkRateLimit(ctx, inviterID, now); err != nil {
		return domain.Invitation{}, err
	}

	// 4. Reject if a pending, unexpired invitation already exists for the
	// (organization, email) pair. The partial unique index backstops the
	// race between this read and the insert below.
	exists, err := s.Store.Invitations().HasActive(ctx, draft.OrganizationID, draft.Email)
	if err != nil {
		log.Error("failed to check for active invitation", slog.Any("error", err))
		return domain.Invitation{}, err
	}
	if exists {
		log.Warn("duplicate invitation rejected",
			slog.String("organization_id", draft.OrganizationID),
		)
		return domain.Invitation{}, ErrDuplicateInvitation
	}

	// An expired invitation for the pair still occupies the active-pair
	// index slot; clear it so the insert below can go through.
	if err := s.Store.Invitations().ClearExpired(ctx, draft.OrganizationID, []string{draft.Email}); err != nil {
		log.Error("failed to clear expired invitation", slog.Any("error", err))
		return domain.Invitation{}, err
	}

	// 5. Mint the token. The raw value goes into the email link only; the
	// store sees nothing but the fingerprint.
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate invitation token", slog.Any("error", err))
		return domain.Invitation{}, err
	}

	inv := domain.Invitation{
		ID:               idx.New().String(),
		Email:            draft.Email,
		FirstName:        draft.FirstName,
		LastName:         draft.LastName,
		OrganizationID:   draft.OrganizationID,
		OrganizationKind: draft.OrganizationKind,
		Role:             draft.Role,
		Designation:      draft.Designation,
		Department:       draft.Department,
		TokenHash:        cryptox.FingerprintToken(token),
		Status:           domain.InvitationPending,
		InvitedBy:        inviterID,
		ExpiresAt:        now.Add(domain.InvitationTTL),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	// 6. Persist. A unique-index conflict means another request won the
	// race for the same (organization, email) pair.
	if err := s.Store.Invitations().Create(ctx, inv); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Invitation{}, ErrDuplicateInvitation
		}
		log.Error("failed to create invitation",
			slog.String("invitation_id", inv.ID),
			slog.Any("error", err),
		)
		return domain.Invitation{}, err
	}

	// 7. Best-effort email and audit trail. The invitation is durable at
	// this point; neither outcome changes the response.
	s.Notifier.Dispatch(inv, token, org.Name)
	s.audit(ctx, inv.ID, domain.AuditCreated, inviterID)

	log.Info("invitation created",
		slog.String("invitation_id", inv.ID),
		slog.String("organization_id", inv.OrganizationID),
		slog.String("invited_by", inviterID),
		slog.Time("expires_at", inv.ExpiresAt),
	)

	return inv, nil
}

// ResendInvitation rotates the token and expiry of a pending invitation and
// re-dispatches the email. An expired but still-pending invitation may be
// resent; accepted and revoked may not.
func (s *InviteService) ResendInvitation(
	ctx context.Context,
	inviterID string,
	invitationID string,
) (domain.Invitation, error) {
	log := slogx.FromContext(ctx)
	now := time.Now().UTC()

	inv, err := s.getForUpdate(ctx, invitationID)
	if err != nil {
		return domain.Invitation{}, err
	}
	org, err := authorizeInviter(ctx, s.Store, inviterID, inv.OrganizationID, inv.OrganizationKind)
	if err != nil {
		return domain.Invitation{}, err
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate invitation token", slog.Any("error", err))
		return domain.Invitation{}, err
	}

	inv.TokenHash = cryptox.FingerprintToken(token)
	inv.ExpiresAt = now.Add(domain.InvitationTTL)
	inv.UpdatedAt = now

	if err := s.Store.Invitations().RotateToken(ctx, inv.ID, inv.TokenHash, inv.ExpiresAt); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, ErrInvitationNotPending
		}
		log.Error("failed to rotate invitation token",
			slog.String("invitation_id", inv.ID),
			slog.Any("error", err),
		)
		return domain.Invitation{}, err
	}

	s.Notifier.Dispatch(inv, token, org.Name)
	s.audit(ctx, inv.ID, domain.AuditResent, inviterID)

	log.Info("invitation resent",
		slog.String("invitation_id", inv.ID),
		slog.Time("expires_at", inv.ExpiresAt),
	)

	return inv, nil
}

// RevokeInvitation transitions a pending invitation to revoked.
func (s *InviteService) RevokeInvitation(
	ctx context.Context,
	inviterID string,
	invitationID string,
) error {
	log := slogx.FromContext(ctx)
	now := time.Now().UTC()

	inv, err := s.getForUpdate(ctx, invitationID)
	if err != nil {
		return err
	}
	if _, err := authorizeInviter(ctx, s.Store, inviterID, inv.OrganizationID, inv.OrganizationKind); err != nil {
		return err
	}

	if err := s.Store.Invitations().MarkRevoked(ctx, inv.ID, now); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvitationNotPending
		}
		log.Error("failed to revoke invitation",
			slog.String("invitation_id", inv.ID),
			slog.Any("error", err),
		)
		return err
	}

	s.audit(ctx, inv.ID, domain.AuditRevoked, inviterID)

	log.Info("invitation revoked", slog.String("invitation_id", inv.ID))
	return nil
}

// ListInvitations returns every invitation for an organization, newest first.
func (s *InviteService) ListInvitations(
	ctx context.Context,
	inviterID string,
	organizationID string,
) ([]domain.Invitation, error) {
	org, err := s.Store.Organizations().GetByID(ctx, organizationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if _, err := authorizeInviter(ctx, s.Store, inviterID, organizationID, org.Kind); err != nil {
		return nil, err
	}
	return s.Store.Invitations().ListByOrganization(ctx, organizationID)
}

// getForUpdate loads an invitation ahead of a mutation. The guard runs after
// this lookup, so a missing record reads the same as a denied one from the
// outside.
func (s *InviteService) getForUpdate(
	ctx context.Context,
	invitationID string,
) (domain.Invitation, error) {
	inv, err := s.Store.Invitations().GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, ErrInvitationNotFound
		}
		slogx.FromContext(ctx).Error("failed to fetch invitation",
			slog.String("invitation_id", invitationID),
			slog.Any("error", err),
		)
		return domain.Invitation{}, err
	}
	return inv, nil
}

// checkRateLimit rejects when the inviter has already created RateLimitMax
// invitations inside the trailing window. Single path only; bulk batches are
// deliberate admin actions and are not throttled here.
func (s *InviteService) checkRateLimit(ctx context.Context, inviterID string, now time.Time) error {
	maxInvites := s.RateLimitMax
	if maxInvites <= 0 {
		maxInvites = DefaultRateLimitMax
	}
	window := s.RateLimitWindow
	if window <= 0 {
		window = DefaultRateLimitWindow
	}

	count, err := s.Store.Invitations().CountByInviterSince(ctx, inviterID, now.Add(-window))
	if err != nil {
		slogx.FromContext(ctx).Error("failed to count recent invitations", slog.Any("error", err))
		return err
	}
	if count >= maxInvites {
		slogx.FromContext(ctx).Warn("invitation rate limit hit",
			slog.String("inviter_id", inviterID),
			slog.Int("count", count),
			slog.Int("max", maxInvites),
		)
		return ErrRateLimitExceeded
	}
	return nil
}

// audit appends a trail entry. Audit is forensic only; a write failure is
// logged and swallowed so it never disturbs the primary outcome.
func (s *InviteService) audit(ctx context.Context, invitationID string, action domain.AuditAction, actorID string) {
	entry := domain.AuditEntry{
		ID:           idx.New().String(),
		InvitationID: invitationID,
		Action:       action,
		ActorID:      actorID,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Store.AuditLog().Record(ctx, entry); err != nil {
		slogx.FromContext(ctx).Error("failed to write audit entry",
			slog.String("invitation_id", invitationID),
			slog.String("action", string(action)),
			slog.Any("error", err),
		)
	}
}
