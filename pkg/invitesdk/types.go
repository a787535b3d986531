package invitesdk

// InvitationDraft is single invitation the caller wants to issue. Email,
// FirstName and LastName are required; Designation and Department are
// free-form extras carried onto the invitation record.
type InvitationDraft struct {
	Email            string `json:"email"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	OrganizationID   string `json:"organization_id"`
	OrganizationType string `json:"organization_type"` // "company" | "association"
	Role             string `json:"role"`
	Designation      string `json:"designation,omitempty"`
	Department       string `json:"department,omitempty"`
}

// CreateInvitationResponse is returned on a successful single creation.
type CreateInvitationResponse struct {
	Success      bool   `json:"success"`
	InvitationID string `json:"invitation_id"`
	Message      string `json:"message"`
}

// BulkInvitationRequest wraps a batch of drafts.
type BulkInvitationRequest struct {
	Invitations []InvitationDraft `json:"invitations"`
}

// BulkFailure reports one row that did not result in an invitation.
type BulkFailure struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

// BulkResults partitions a batch outcome by row.
type BulkResults struct {
	Successful []string      `json:"successful"`
	Failed     []BulkFailure `json:"failed"`
}

// BulkInvitationResponse is returned for a bulk submission. Success reports
// that the batch was processed, not that every row succeeded.
type BulkInvitationResponse struct {
	Success bool        `json:"success"`
	Results BulkResults `json:"results"`
	Message string      `json:"message"`
}

// InvitationSummary is the admin-facing view of an issued invitation. The
// token never appears here in any form.
type InvitationSummary struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	OrganizationID   string `json:"organization_id"`
	OrganizationType string `json:"organization_type"`
	Role             string `json:"role"`
	Designation      string `json:"designation,omitempty"`
	Department       string `json:"department,omitempty"`
	Status           string `json:"status"`
	InvitedBy        string `json:"invited_by"`
	CreatedAt        string `json:"created_at"`
	ExpiresAt        string `json:"expires_at"`
}

// ListInvitationsResponse wraps the admin listing.
type ListInvitationsResponse struct {
	Invitations []InvitationSummary `json:"invitations"`
}

// RegisterRequest redeems an invitation token. The token is the sole
// credential; password becomes the new member's login secret.
type RegisterRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// RegisterResponse is returned when redemption succeeds.
type RegisterResponse struct {
	Success  bool   `json:"success"`
	MemberID string `json:"member_id"`
	Email    string `json:"email"`
	Message  string `json:"message"`
}

// ErrorResponse is the error body for every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse reports service health for livez/readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks itemises dependency health for readyz.
type HealthChecks struct {
	Database string `json:"database"`
}
