package auth

import (
	"context"

	"updigital/internal/models"
)

// AccountStore is the persistence boundary for accounts. Lookups
// return (nil, nil) when no account matches. Create must reject a
// duplicate email or confirmation code with ErrConflict; uniqueness
// under concurrent signups is the store's job, not the workflow's.
type AccountStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByConfirmationCode(ctx context.Context, code string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// SessionStore binds an opaque session identifier to an account
// identity. Destroy is idempotent.
type SessionStore interface {
	Bind(ctx context.Context, sessionID, userID string) error
	Destroy(ctx context.Context, sessionID string) error
}

// PasswordHasher is a one-way, salted hash. Verification must go
// through Verify; re-hashing and comparing strings would always fail
// with per-call salts.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// TokenIssuer issues signed, tamper-evident tokens binding an email
// claim. Tokens carry no expiry unless the issuer is configured with
// one.
type TokenIssuer interface {
	Issue(email string) (string, error)
	Verify(token string) (string, error)
}

// Notifier delivers the verification message. Best-effort: errors are
// logged by the caller and never fail the signup.
type Notifier interface {
	SendVerification(ctx context.Context, token string, user *models.User) error
}
