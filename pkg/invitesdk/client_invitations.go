package invitesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// CreateInvitation issues a single invitation. Requires a bearer token for a
// member holding an elevated role in the target organization.
func (c *Client) CreateInvitation(
	ctx context.Context,
	draft InvitationDraft,
) (*CreateInvitationResponse, error) {
	body, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("invitesdk: failed to encode draft: %w", err)
	}

	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/invitations", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var out CreateInvitationResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateInvitationsBulk issues a batch of invitations with per-row outcomes.
func (c *Client) CreateInvitationsBulk(
	ctx context.Context,
	drafts []InvitationDraft,
) (*BulkInvitationResponse, error) {
	body, err := json.Marshal(BulkInvitationRequest{Invitations: drafts})
	if err != nil {
		return nil, fmt.Errorf("invitesdk: failed to encode batch: %w", err)
	}

	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/invitations/bulk", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var out BulkInvitationResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListInvitations returns the invitations issued for an organization.
func (c *Client) ListInvitations(
	ctx context.Context,
	organizationID string,
) (*ListInvitationsResponse, error) {
	path := "/v1/invitations?organization_id=" + url.QueryEscape(organizationID)
	resp, err := c.doJSON(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var out ListInvitationsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResendInvitation rotates the token and expiry of a pending invitation and
// re-sends the redemption email.
func (c *Client) ResendInvitation(ctx context.Context, invitationID string) error {
	path := "/v1/invitations/" + url.PathEscape(invitationID) + "/resend"
	resp, err := c.doJSON(ctx, http.MethodPost, path, nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil, http.StatusOK)
}

// RevokeInvitation permanently revokes a pending invitation.
func (c *Client) RevokeInvitation(ctx context.Context, invitationID string) error {
	path := "/v1/invitations/" + url.PathEscape(invitationID) + "/revoke"
	resp, err := c.doJSON(ctx, http.MethodPost, path, nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil, http.StatusOK)
}

// Register redeems an invitation token and creates the member account.
// Public endpoint: the token is the credential.
func (c *Client) Register(
	ctx context.Context,
	req RegisterRequest,
) (*RegisterResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("invitesdk: failed to encode request: %w", err)
	}

	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/register", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var out RegisterResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}
