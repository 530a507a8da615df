package domain

import "time"

// IdentityProvider identifies how a credential was established.
type IdentityProvider string

const (
	// IdentityProviderLocal is an email/password credential held by this platform.
	IdentityProviderLocal IdentityProvider = "local"
)

// Identity links a user to a credential from a provider.
// For the local provider, ProviderID is the email and PasswordHash is set.
type Identity struct {
	ID           string
	UserID       string
	Provider     IdentityProvider
	ProviderID   string
	PasswordHash string
	CreatedAt    time.Time
}
