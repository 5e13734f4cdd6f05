package ports

import (
	"context"

	"github.com/authcore/account-service/internal/core/domain"
)

// AccountService exposes the authentication flows to the transport layer.
//
// Outcomes are communicated through sentinel errors from the domain package:
// credential and token failures are deliberately generic
// (domain.ErrInvalidCredentials, domain.ErrInvalidKey) so callers cannot
// distinguish "unknown user" from "wrong password" or "consumed token" from
// "token never existed".
type AccountService interface {
	// Login authenticates a username/password pair. A correct password on an
	// unverified account returns domain.ErrNotVerified and no session.
	Login(ctx context.Context, username, password string) (*domain.Session, error)

	// Register creates an unverified account and dispatches the verification
	// email. The username must pass the configured policy before any store
	// access happens.
	Register(ctx context.Context, username, email, password string) (*domain.Account, error)

	// Verify redeems a verification token. Success marks the account
	// verified, clears the token, and doubles as a first login.
	Verify(ctx context.Context, username, token string) (*domain.Session, error)

	// ResendVerification replaces the pending verification token and
	// re-dispatches the email. The previous token stops working.
	ResendVerification(ctx context.Context, username string) error

	// RequestReset issues a reset token and dispatches the reset email.
	RequestReset(ctx context.Context, username string) error

	// CheckResetToken validates a (username, token) pair without consuming
	// it, for rendering the reset form.
	CheckResetToken(ctx context.Context, username, token string) error

	// CompleteReset redeems a reset token, replacing the password. The two
	// password fields are compared before any store access.
	CompleteReset(ctx context.Context, username, token, password, confirm string) (*domain.Session, error)
}
