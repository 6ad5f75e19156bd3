package auth

import (
	"context"
	"strings"

	"updigital/internal/models"
	"updigital/internal/utils/logger"
)

// VerifyOutcome is the result of presenting a confirmation code.
type VerifyOutcome int

const (
	OutcomeInvalid VerifyOutcome = iota
	OutcomeActivated
)

// Message returns the response body the API has always used for this
// outcome.
func (o VerifyOutcome) Message() string {
	if o == OutcomeActivated {
		return "Email has been activated!"
	}
	return "Invalid token!"
}

type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Workflow orchestrates signup, login, logout and email verification.
// It holds no state of its own; accounts live in the AccountStore and
// sessions in the SessionStore, and every invocation is independent,
// so concurrent requests need no coordination here.
type Workflow struct {
	accounts AccountStore
	sessions SessionStore
	hasher   PasswordHasher
	tokens   TokenIssuer
	notifier Notifier
	log      *logger.Logger
}

func NewWorkflow(accounts AccountStore, sessions SessionStore, hasher PasswordHasher, tokens TokenIssuer, notifier Notifier) *Workflow {
	return &Workflow{
		accounts: accounts,
		sessions: sessions,
		hasher:   hasher,
		tokens:   tokens,
		notifier: notifier,
		log:      logger.New("AUTH"),
	}
}

// Signup creates an account, treats the signup as an implicit login by
// binding the caller's session, and requests a verification mail.
// Input is assumed well-formed; the boundary validator rejects
// malformed requests before this runs. Returns the new account id.
func (w *Workflow) Signup(ctx context.Context, sessionID string, in SignupInput) (string, error) {
	email := strings.ToLower(in.Email)

	hash, err := w.hasher.Hash(in.Password)
	if err != nil {
		return "", err
	}

	token, err := w.tokens.Issue(email)
	if err != nil {
		return "", err
	}

	user := &models.User{
		Email:                 email,
		Password:              hash,
		FirstName:             in.FirstName,
		LastName:              in.LastName,
		EmailConfirmationCode: token,
	}

	// Uniqueness of email and code is enforced by the store; under a
	// concurrent duplicate signup exactly one create wins and the
	// other surfaces ErrConflict.
	if err := w.accounts.Create(ctx, user); err != nil {
		return "", err
	}

	if err := w.sessions.Bind(ctx, sessionID, user.ID); err != nil {
		return "", err
	}

	// Fire-and-forget: a slow or failing mail transport must never
	// block or fail account creation. The account persists regardless.
	if err := w.notifier.SendVerification(ctx, token, user); err != nil {
		w.log.Warn("verification mail for %s not dispatched: %v", user.Email, err)
	}

	return user.ID, nil
}

// Login verifies credentials and binds the session to the account.
// An unknown email and a wrong password both return ErrUnauthorized.
func (w *Workflow) Login(ctx context.Context, sessionID, email, password string) (string, error) {
	user, err := w.accounts.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUnauthorized
	}

	if !w.hasher.Verify(password, user.Password) {
		return "", ErrUnauthorized
	}

	if err := w.sessions.Bind(ctx, sessionID, user.ID); err != nil {
		return "", err
	}

	return user.ID, nil
}

// Logout destroys the session. Destroying an already-anonymous or
// already-destroyed session is not an error.
func (w *Workflow) Logout(ctx context.Context, sessionID string) error {
	return w.sessions.Destroy(ctx, sessionID)
}

// VerifyEmail marks the account matching the code as verified. The
// code is matched as an opaque string against the store; replaying a
// code after verification re-applies the same update harmlessly.
func (w *Workflow) VerifyEmail(ctx context.Context, code string) (VerifyOutcome, error) {
	user, err := w.accounts.FindByConfirmationCode(ctx, code)
	if err != nil {
		return OutcomeInvalid, err
	}
	if user == nil {
		return OutcomeInvalid, nil
	}

	user.IsVerified = true
	if err := w.accounts.Update(ctx, user); err != nil {
		return OutcomeInvalid, err
	}

	return OutcomeActivated, nil
}
