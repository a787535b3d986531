package domain

import "time"

// AuditAction is a lifecycle transition recorded against an invitation.
type AuditAction string

const (
	AuditCreated  AuditAction = "created"
	AuditResent   AuditAction = "resent"
	AuditRevoked  AuditAction = "revoked"
	AuditAccepted AuditAction = "accepted"
)

// AuditEntry is one append-only row in the invitation audit trail. Entries
// are never mutated or deleted; the create path never reads them back.
type AuditEntry struct {
	ID           string
	InvitationID string
	Action       AuditAction
	ActorID      string
	CreatedAt    time.Time
}
