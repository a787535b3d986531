package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/teamlinkhq/teamlink/internal/invites/service"
	"github.com/teamlinkhq/teamlink/pkg/httpx"
	"github.com/teamlinkhq/teamlink/pkg/invitesdk"
	"github.com/teamlinkhq/teamlink/pkg/slogx"
)

type InvitationResendHandler struct {
	InviteService *service.InviteService
}

// ServeHTTP godoc
//
//	@Summary		Resend Invitation
//	@Description	Rotate a pending invitation's token and expiry and send a fresh email. The previous link stops working. Accepted or revoked invitations cannot be resent.
//	@Tags			Invitations
//	@Produce		json
//	@Param			id	path		string	true	"Invitation id"
//	@Success		200	{object}	invitesdk.CreateInvitationResponse	"success, invitation_id, message"
//	@Failure		401	{object}	invitesdk.ErrorResponse				"error"
//	@Failure		404	{object}	invitesdk.ErrorResponse				"error"
//	@Failure		409	{object}	invitesdk.ErrorResponse				"error"
//	@Failure		500	{object}	invitesdk.ErrorResponse				"error"
//	@Security		BearerAuth
//	@Router			/v1/invitations/{id}/resend [post].
func (h *InvitationResendHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	inviterID, ok := ctx.Value(httpx.CtxKeyUserID).(string)
	if !ok || inviterID == "" {
		httpx.WriteJSON(w, http.StatusUnauthorized, invitesdk.ErrorResponse{
			Error: "Unauthorized: authentication required",
		})
		return
	}

	inv, err := h.InviteService.ResendInvitation(ctx, inviterID, r.PathValue("id"))
	if err != nil {
		writeLifecycleError(w, log, err, "resend")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, invitesdk.CreateInvitationResponse{
		Success:      true,
		InvitationID: inv.ID,
		Message:      "Invitation resent to " + inv.Email,
	})
}

// writeLifecycleError maps resend/revoke service errors onto responses.
func writeLifecycleError(w http.ResponseWriter, log *slog.Logger, err error, action string) {
	switch {
	case errors.Is(err, service.ErrInvitationNotFound):
		httpx.WriteJSON(w, http.StatusNotFound, invitesdk.ErrorResponse{
			Error: "Invitation not found",
		})
	case errors.Is(err, service.ErrInvitationNotPending):
		httpx.WriteJSON(w, http.StatusConflict, invitesdk.ErrorResponse{
			Error: "Invitation is no longer pending",
		})
	case errors.Is(err, service.ErrUnauthorized):
		httpx.WriteJSON(w, http.StatusUnauthorized, invitesdk.ErrorResponse{
			Error: "Unauthorized: you do not have permission to manage this invitation",
		})
	default:
		log.Error("failed to "+action+" invitation", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, invitesdk.ErrorResponse{
			Error: "Failed to " + action + " invitation",
		})
	}
}
