package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/teamlinkhq/teamlink/internal/invites/domain"
	"github.com/teamlinkhq/teamlink/internal/invites/service"
	"github.com/teamlinkhq/teamlink/pkg/httpx"
	"github.com/teamlinkhq/teamlink/pkg/invitesdk"
	"github.com/teamlinkhq/teamlink/pkg/slogx"
)

type InvitationListHandler struct {
	InviteService *service.InviteService
}

// ServeHTTP godoc
//
//	@Summary		List Invitations
//	@Description	List all invitations issued for an organization, newest first. The caller must hold invitation rights for the organization. Token material never appears in the listing.
//	@Tags			Invitations
//	@Produce		json
//	@Param			organization_id	query		string	true	"Organization id"
//	@Success		200				{object}	invitesdk.ListInvitationsResponse	"invitations"
//	@Failure		400				{object}	invitesdk.ErrorResponse				"error"
//	@Failure		401				{object}	invitesdk.ErrorResponse				"error"
//	@Failure		500				{object}	invitesdk.ErrorResponse				"error"
//	@Security		BearerAuth
//	@Router			/v1/invitations [get].
func (h *InvitationListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	inviterID, ok := ctx.Value(httpx.CtxKeyUserID).(string)
	if !ok || inviterID == "" {
		httpx.WriteJSON(w, http.StatusUnauthorized, invitesdk.ErrorResponse{
			Error: "Unauthorized: authentication required",
		})
		return
	}

	organizationID := r.URL.Query().Get("organization_id")
	if organizationID == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, invitesdk.ErrorResponse{
			Error: "organization_id is required",
		})
		return
	}

	invs, err := h.InviteService.ListInvitations(ctx, inviterID, organizationID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthorized):
			httpx.WriteJSON(w, http.StatusUnauthorized, invitesdk.ErrorResponse{
				Error: "Unauthorized: you do not have permission to view this organization's invitations",
			})
		default:
			log.Error("failed to list invitations", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, invitesdk.ErrorResponse{
				Error: "Failed to list invitations",
			})
		}
		return
	}

	summaries := make([]invitesdk.InvitationSummary, len(invs))
	for i, inv := range invs {
		summaries[i] = summaryFromDomain(inv)
	}

	httpx.WriteJSON(w, http.StatusOK, invitesdk.ListInvitationsResponse{
		Invitations: summaries,
	})
}

// summaryFromDomain maps an invitation onto its admin-facing view. Expired is
// reported as a derived status so clients need not do the time math.
func summaryFromDomain(inv domain.Invitation) invitesdk.InvitationSummary {
	status := string(inv.Status)
	if inv.Status == domain.InvitationPending && inv.Expired(time.Now().UTC()) {
		status = "expired"
	}
	return invitesdk.InvitationSummary{
		ID:               inv.ID,
		Email:            inv.Email,
		FirstName:        inv.FirstName,
		LastName:         inv.LastName,
		OrganizationID:   inv.OrganizationID,
		OrganizationType: string(inv.OrganizationKind),
		Role:             inv.Role,
		Designation:      inv.Designation,
		Department:       inv.Department,
		Status:           status,
		InvitedBy:        inv.InvitedBy,
		CreatedAt:        inv.CreatedAt.Format(time.RFC3339),
		ExpiresAt:        inv.ExpiresAt.Format(time.RFC3339),
	}
}
