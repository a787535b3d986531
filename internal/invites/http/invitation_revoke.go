package http

import (
	"net/http"

	"github.com/teamlinkhq/teamlink/internal/invites/service"
	"github.com/teamlinkhq/teamlink/pkg/httpx"
	"github.com/teamlinkhq/teamlink/pkg/invitesdk"
	"github.com/teamlinkhq/teamlink/pkg/slogx"
)

type InvitationRevokeHandler struct {
	InviteService *service.InviteService
}

// ServeHTTP godoc
//
//	@Summary		Revoke Invitation
//	@Description	Revoke a pending invitation so its link can no longer be redeemed. Revocation is terminal; accepted invitations cannot be revoked.
//	@Tags			Invitations
//	@Produce		json
//	@Param			id	path		string	true	"Invitation id"
//	@Success		200	{object}	invitesdk.CreateInvitationResponse	"success, invitation_id, message"
//	@Failure		401	{object}	invitesdk.ErrorResponse				"error"
//	@Failure		404	{object}	invitesdk.ErrorResponse				"error"
//	@Failure		409	{object}	invitesdk.ErrorResponse				"error"
//	@Failure		500	{object}	invitesdk.ErrorResponse				"error"
//	@Security		BearerAuth
//	@Router			/v1/invitations/{id}/revoke [post].
func (h *InvitationRevokeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	inviterID, ok := ctx.Value(httpx.CtxKeyUserID).(string)
	if !ok || inviterID == "" {
		httpx.WriteJSON(w, http.StatusUnauthorized, invitesdk.ErrorResponse{
			Error: "Unauthorized: authentication required",
		})
		return
	}

	invitationID := r.PathValue("id")
	if err := h.InviteService.RevokeInvitation(ctx, inviterID, invitationID); err != nil {
		writeLifecycleError(w, log, err, "revoke")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, invitesdk.CreateInvitationResponse{
		Success:      true,
		InvitationID: invitationID,
		Message:      "Invitation revoked",
	})
}
