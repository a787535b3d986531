package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/teamlinkhq/teamlink/internal/invites/service"
	"github.com/teamlinkhq/teamlink/pkg/httpx"
	"github.com/teamlinkhq/teamlink/pkg/invitesdk"
	"github.com/teamlinkhq/teamlink/pkg/slogx"
)

type RegisterHandler struct {
	RedeemService *service.RedeemService
}

// ServeHTTP godoc
//
//	@Summary		Redeem Invitation
//	@Description	Complete registration using the raw invitation token from the emailed link. Creates the member account named on the invitation, provisions the organization membership at the invited role, and marks the invitation accepted.
//	@Tags			Registration
//	@Accept			json
//	@Produce		json
//	@Param			request	body		invitesdk.RegisterRequest	true	"Raw token and chosen password"
//	@Success		201		{object}	invitesdk.RegisterResponse	"success, member_id, email, message"
//	@Failure		400		{object}	invitesdk.ErrorResponse		"error"
//	@Failure		409		{object}	invitesdk.ErrorResponse		"error"
//	@Failure		500		{object}	invitesdk.ErrorResponse		"error"
//	@Router			/v1/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req invitesdk.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, invitesdk.ErrorResponse{
			Error: "Invalid JSON body",
		})
		return
	}

	member, err := h.RedeemService.Register(ctx, req.Token, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRegistration):
			httpx.WriteJSON(w, http.StatusBadRequest, invitesdk.ErrorResponse{
				Error: "Token and password are required",
			})
		case errors.Is(err, service.ErrInvitationTokenInvalid):
			httpx.WriteJSON(w, http.StatusBadRequest, invitesdk.ErrorResponse{
				Error: "Invitation token is invalid or expired",
			})
		case errors.Is(err, service.ErrEmailAlreadyRegistered):
			httpx.WriteJSON(w, http.StatusConflict, invitesdk.ErrorResponse{
				Error: "This email is already registered",
			})
		default:
			log.Error("failed to register member", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, invitesdk.ErrorResponse{
				Error: "Failed to complete registration",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, invitesdk.RegisterResponse{
		Success:  true,
		MemberID: member.ID,
		Email:    member.Email,
		Message:  "Registration complete",
	})
}
