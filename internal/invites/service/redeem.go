package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/teamlinkhq/teamlink/internal/invites/domain"
	"github.com/teamlinkhq/teamlink/internal/invites/store"
	"github.com/teamlinkhq/teamlink/pkg/cryptox"
	"github.com/teamlinkhq/teamlink/pkg/idx"
	"github.com/teamlinkhq/teamlink/pkg/slogx"
)

var (
	ErrInvalidRegistration    = errors.New("invalid registration request")
	ErrInvitationTokenInvalid = errors.New("invitation token is invalid or expired")
	ErrEmailAlreadyRegistered = errors.New("email is already registered")
)

// RedeemService turns a raw invitation token into a member account. The token
// is the sole credential; lookup is by fingerprint and only pending,
// unexpired invitations match.
type RedeemService struct {
	Store store.Store
}

// Register redeems a raw token: it creates the member account named on the
// invitation, provisions the organization membership at the invited role, and
// marks the invitation accepted, all in one transaction.
func (s *RedeemService) Register(
	ctx context.Context,
	rawToken string,
	password string,
) (domain.Member, error) {
	log := slogx.FromContext(ctx)
	now := time.Now().UTC()

	if rawToken == "" || password == "" {
		return domain.Member{}, ErrInvalidRegistration
	}

	// Fingerprint and look up. The caller never learns whether the token
	// was unknown, expired, or already consumed.
	fingerprint := cryptox.FingerprintToken(rawToken)
	inv, err := s.Store.Invitations().GetActiveByTokenHash(ctx, fingerprint)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("registration attempted with invalid or expired token")
			return domain.Member{}, ErrInvitationTokenInvalid
		}
		log.Error("failed to look up invitation token", slog.Any("error", err))
		return domain.Member{}, err
	}

	// The invited email must not already hold an account. The invitation
	// stays pending; the inviter can revoke it once they notice.
	if _, err := s.Store.Members().GetByEmail(ctx, inv.Email); err == nil {
		log.Warn("registration attempted for already-registered email",
			slog.String("invitation_id", inv.ID),
		)
		return domain.Member{}, ErrEmailAlreadyRegistered
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to check member email", slog.Any("error", err))
		return domain.Member{}, err
	}

	passwordHash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.Member{}, err
	}

	member := domain.Member{
		ID:           idx.New().String(),
		Email:        inv.Email,
		FirstName:    inv.FirstName,
		LastName:     inv.LastName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Members().Create(ctx, member); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailAlreadyRegistered
			}
			return err
		}

		switch inv.OrganizationKind {
		case domain.OrgKindCompany:
			err = tx.Memberships().AddCompanyMembership(ctx, domain.CompanyMembership{
				ID:             idx.New().String(),
				MemberID:       member.ID,
				OrganizationID: inv.OrganizationID,
				Role:           inv.Role,
				Active:         true,
				CreatedAt:      now,
			})
		case domain.OrgKindAssociation:
			err = tx.Memberships().AddAssociationManager(ctx, domain.AssociationManager{
				ID:             idx.New().String(),
				MemberID:       member.ID,
				OrganizationID: inv.OrganizationID,
				Role:           inv.Role,
				Active:         true,
				CreatedAt:      now,
			})
		default:
			return ErrInvitationTokenInvalid
		}
		if err != nil {
			return err
		}

		// Guarded transition; zero rows means another redemption or a
		// revocation won the race, so the whole registration unwinds.
		if err := tx.Invitations().MarkAccepted(ctx, inv.ID, now); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvitationTokenInvalid
			}
			return err
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrEmailAlreadyRegistered) && !errors.Is(err, ErrInvitationTokenInvalid) {
			log.Error("failed to redeem invitation",
				slog.String("invitation_id", inv.ID),
				slog.Any("error", err),
			)
		}
		return domain.Member{}, err
	}

	s.audit(ctx, inv.ID, domain.AuditAccepted, member.ID)

	log.Info("member registered via invitation",
		slog.String("member_id", member.ID),
		slog.String("invitation_id", inv.ID),
		slog.String("organization_id", inv.OrganizationID),
	)

	return member, nil
}

// audit mirrors InviteService.audit: best-effort, failures swallowed.
func (s *RedeemService) audit(ctx context.Context, invitationID string, action domain.AuditAction, actorID string) {
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
