// Package invitesdk is a small Go client for the TeamLink invitation
// service. It covers the admin invitation surface and the public redemption
// endpoint, and deliberately has no dependencies beyond the standard library
// so it can be embedded anywhere.
package invitesdk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to one invitation service instance. AccessToken, when set, is
// sent as a bearer credential on admin operations.
type Client struct {
	BaseURL     string
	AccessToken string
	HTTPClient  *http.Client
}

// NewClient creates a client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// WithToken returns a shallow copy of the client carrying a bearer token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.AccessToken = token
	return &cp
}

func (c *Client) url(path string) string {
	return c.BaseURL + path
}

// doJSON performs a request with an optional JSON body and the bearer token
// if one is configured.
func (c *Client) doJSON(
	ctx context.Context,
	method, path string,
	body io.Reader,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("invitesdk: failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("invitesdk: request failed: %w", err)
	}

	return resp, nil
}

// decodeJSON decodes the response body into out when the status matches
// wantStatus, otherwise it decodes the error body into an *APIError.
func decodeJSON(resp *http.Response, out any, wantStatus int) error {
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != wantStatus {
		var errResp ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil || errResp.Error == "" {
			return &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invitesdk: failed to decode response: %w", err)
	}
	return nil
}

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("invitesdk: %d: %s", e.StatusCode, e.Message)
}
