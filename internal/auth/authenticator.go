// Package auth handles account credentials and session tokens.
package auth

import (
	"context"

	"github.com/mmynk/splitmoney/internal/models"
)

// Authenticator registers accounts and verifies their credentials.
// PasswordAuthenticator is the only implementation today.
type Authenticator interface {
	// Register creates an account for email with the given credential.
	// Returns ErrEmailExists if the email is taken.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the account matching email and credential, or
	// ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks the credential before it is stored.
	ValidateCredential(credential string) error
}
