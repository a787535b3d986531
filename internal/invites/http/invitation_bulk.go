package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/teamlinkhq/teamlink/internal/invites/domain"
	"github.com/teamlinkhq/teamlink/internal/invites/service"
	"github.com/teamlinkhq/teamlink/pkg/httpx"
	"github.com/teamlinkhq/teamlink/pkg/invitesdk"
	"github.com/teamlinkhq/teamlink/pkg/slogx"
)

type InvitationBulkHandler struct {
	InviteService *service.InviteService
}

// ServeHTTP godoc
//
//	@Summary		Create Invitations (bulk)
//	@Description	Issue a batch of invitations with independent per-row outcomes. Rows that fail validation or collide with an active invitation are reported under results.failed; the rest are persisted in a single insert.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		invitesdk.BulkInvitationRequest		true	"Batch of invitation drafts"
//	@Success		200		{object}	invitesdk.BulkInvitationResponse	"success, results, message"
//	@Failure		400		{object}	invitesdk.ErrorResponse				"error"
//	@Failure		401		{object}	invitesdk.ErrorResponse				"error"
//	@Failure		500		{object}	invitesdk.ErrorResponse				"error"
//	@Security		BearerAuth
//	@Router			/v1/invitations/bulk [post].
func (h *InvitationBulkHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req invitesdk.BulkInvitationRequest
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

	// An unknown organization kind simply fails that row's validation
	// downstream, so the mapping here is lenient.
	drafts := make([]domain.InvitationDraft, len(req.Invitations))
	for i, d := range req.Invitations {
		drafts[i] = domain.InvitationDraft{
			Email:            d.Email,
			FirstName:        d.FirstName,
			LastName:         d.LastName,
			OrganizationID:   d.OrganizationID,
			OrganizationKind: domain.OrganizationKind(d.OrganizationType),
			Role:             d.Role,
			Designation:      d.Designation,
			Department:       d.Department,
		}
	}

	result, err := h.InviteService.CreateInvitationsBulk(ctx, inviterID, drafts)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInvitationRequest):
			httpx.WriteJSON(w, http.StatusBadRequest, invitesdk.ErrorResponse{
				Error: "No invitations provided",
			})
		case errors.Is(err, service.ErrUnauthorized):
			httpx.WriteJSON(w, http.StatusUnauthorized, invitesdk.ErrorResponse{
				Error: "Unauthorized: you do not have permission to invite members to this organization",
			})
		default:
			log.Error("failed to process invitation batch", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, invitesdk.ErrorResponse{
				Error: "Failed to process invitations",
			})
		}
		return
	}

	results := invitesdk.BulkResults{
		Successful: result.Successful,
		Failed:     make([]invitesdk.BulkFailure, len(result.Failed)),
	}
	if results.Successful == nil {
		results.Successful = []string{}
	}
	for i, f := range result.Failed {
		results.Failed[i] = invitesdk.BulkFailure{Email: f.Email, Error: f.Reason}
	}

	httpx.WriteJSON(w, http.StatusOK, invitesdk.BulkInvitationResponse{
		Success: true,
		Results: results,
		Message: fmt.Sprintf("%d invitation(s) sent, %d failed", len(results.Successful), len(results.Failed)),
	})
}
