package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/teamlinkhq/teamlink/internal/invites/domain"
	"github.com/teamlinkhq/teamlink/internal/invites/service"
	"github.com/teamlinkhq/teamlink/pkg/httpx"
	"github.com/teamlinkhq/teamlink/pkg/invitesdk"
	"github.com/teamlinkhq/teamlink/pkg/slogx"
)

type InvitationCreateHandler struct {
	InviteService *service.InviteService
}

// ServeHTTP godoc
//
//	@Summary		Create Invitation
//	@Description	Issue a single invitation for an email to join an organization. The caller must be an owner/admin of the company or a manager of the association.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		invitesdk.InvitationDraft			true	"Invitation draft"
//	@Success		201		{object}	invitesdk.CreateInvitationResponse	"success, invitation_id, message"
//	@Failure		400		{object}	invitesdk.ErrorResponse				"error"
//	@Failure		401		{object}	invitesdk.ErrorResponse				"error"
//	@Failure		409		{object}	invitesdk.ErrorResponse				"error"
//	@Failure		429		{object}	invitesdk.ErrorResponse				"error"
//	@Failure		500		{object}	invitesdk.ErrorResponse				"error"
//	@Security		BearerAuth
//	@Router			/v1/invitations [post].
func (h *InvitationCreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req invitesdk.InvitationDraft
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, invitesdk.ErrorResponse{
			Error: "Invalid JSON body",
		})
		return
	}

	inviterID, ok := ctx.Value(httpx.CtxKeyUserID).(string)
	if !ok || inviterID == "" {
		httpx.WriteJSON(w, http.StatusUnauthorized, invitesdk.ErrorResponse{
			Error: "Unauthorized: authentication required",
		})
		return
	}

	draft, err := draftFromWire(req)
	if err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, invitesdk.ErrorResponse{
			Error: err.Error(),
		})
		return
	}

	inv, err := h.InviteService.CreateInvitation(ctx, inviterID, draft)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInvitationRequest):
			httpx.WriteJSON(w, http.StatusBadRequest, invitesdk.ErrorResponse{
				Error: "Missing required fields",
			})
		case errors.Is(err, service.ErrUnauthorized):
			httpx.WriteJSON(w, http.StatusUnauthorized, invitesdk.ErrorResponse{
				Error: "Unauthorized: you do not have permission to invite members to this organization",
			})
		case errors.Is(err, service.ErrDuplicateInvitation):
			httpx.WriteJSON(w, http.StatusConflict, invitesdk.ErrorResponse{
				Error: "An active invitation already exists for this email",
			})
		case errors.Is(err, service.ErrRateLimitExceeded):
			httpx.WriteJSON(w, http.StatusTooManyRequests, invitesdk.ErrorResponse{
				Error: "Too many invitations created. Please wait a minute and try again.",
			})
		default:
			log.Error("failed to create invitation", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, invitesdk.ErrorResponse{
				Error: "Failed to create invitation",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, invitesdk.CreateInvitationResponse{
		Success:      true,
		InvitationID: inv.ID,
		Message:      "Invitation sent to " + inv.Email,
	})
}

// draftFromWire maps the wire draft onto the domain draft, rejecting unknown
// organization kinds up front.
func draftFromWire(req invitesdk.InvitationDraft) (domain.InvitationDraft, error) {
	kind, ok := domain.ParseOrganizationKind(req.OrganizationType)
	if !ok {
		return domain.InvitationDraft{}, errors.New("organization_type must be 'company' or 'association'")
	}
	return domain.InvitationDraft{
		Email:            req.Email,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		OrganizationID:   req.OrganizationID,
		OrganizationKind: kind,
		Role:             req.Role,
		Designation:      req.Designation,
		Department:       req.Department,
	}, nil
}
