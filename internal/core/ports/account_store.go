package ports

import (
	"context"

	"github.com/authcore/account-service/internal/core/domain"
)

// AccountStore is the persistence capability the authentication core depends
// on. Any engine (MongoDB, Postgres, in-memory for tests) implements it.
//
// Every mutation targets a single account and must be atomic at the store
// level; the core takes no locks of its own. Create must guarantee that
// concurrent attempts on the same username yield exactly one success, the
// rest observing *domain.UserExistsError.
type AccountStore interface {
	// FindByUsername returns domain.ErrUserNotFound when no account exists.
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)

	// Create persists a new unverified account with its verification token.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)

	// MarkVerified sets EmailVerified and clears the verification token in
	// one update.
	MarkVerified(ctx context.Context, username string) error

	// SetVerifyToken overwrites the pending verification token. Any earlier
	// token becomes permanently unusable.
	SetVerifyToken(ctx context.Context, username, token string) error

	// SetResetToken overwrites the pending reset token.
	SetResetToken(ctx context.Context, username, token string) error

	// SetPassword replaces the password hash and clears the reset token in
	// one update.
	SetPassword(ctx context.Context, username, passwordHash string) error

	// Ping reports whether the backing engine is reachable.
	Ping(ctx context.Context) error
}
