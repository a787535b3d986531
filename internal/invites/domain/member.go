package domain

import "time"

// Member is a platform account. The invitation service creates one at
// redemption time and provisions it into the inviting organization.
type Member struct {
	ID           string
	Email        string // normalized to lowercase
	FirstName    string
	LastName     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
