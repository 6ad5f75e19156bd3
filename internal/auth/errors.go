package auth

import "errors"

var (
	// ErrConflict is returned when the account store rejects a create
	// because the email or confirmation code already exists.
	ErrConflict = errors.New("account already exists")

	// ErrUnauthorized covers both an unknown email and a wrong
	// password. The two cases are deliberately indistinguishable so
	// the API does not leak which emails are registered.
	ErrUnauthorized = errors.New("invalid credentials")

	// ErrStorage wraps store failures (connectivity, constraint
	// machinery, etc.). The workflow never retries; the boundary maps
	// this to a 5xx.
	ErrStorage = errors.New("storage failure")
)
