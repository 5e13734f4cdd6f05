package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/authcore/account-service/internal/core/domain"
	"github.com/authcore/account-service/internal/core/ports"
)

const uniqueViolation = "23505"

// AccountStore implements ports.AccountStore on Postgres. The UNIQUE
// constraint on username resolves registration races: one insert wins, the
// others surface *domain.UserExistsError.
type AccountStore struct {
	pool *pgxpool.Pool
}

var _ ports.AccountStore = (*AccountStore)(nil)

func NewAccountStore(pool *pgxpool.Pool) *AccountStore {
	return &AccountStore{pool: pool}
}

func (s *AccountStore) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	created := *account
	created.ID = uuid.New().String()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO accounts (id, username, email, password_hash, email_verified, verify_token, reset_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		created.ID, created.Username, created.Email, created.PasswordHash,
		created.EmailVerified, created.VerifyToken, created.ResetToken,
		created.CreatedAt, created.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, &domain.UserExistsError{Username: account.Username}
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return &created, nil
}

func (s *AccountStore) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	account := &domain.Account{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, email_verified, verify_token, reset_token, created_at, updated_at
		FROM accounts WHERE username = $1`, username,
	).Scan(
		&account.ID, &account.Username, &account.Email, &account.PasswordHash,
		&account.EmailVerified, &account.VerifyToken, &account.ResetToken,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return account, nil
}

func (s *AccountStore) MarkVerified(ctx context.Context, username string) error {
	return s.update(ctx, username, `
		UPDATE accounts SET email_verified = TRUE, verify_token = '', updated_at = now()
		WHERE username = $1`)
}

func (s *AccountStore) SetVerifyToken(ctx context.Context, username, token string) error {
	return s.update(ctx, username, `
		UPDATE accounts SET verify_token = $2, updated_at = now()
		WHERE username = $1`, token)
}

func (s *AccountStore) SetResetToken(ctx context.Context, username, token string) error {
	return s.update(ctx, username, `
		UPDATE accounts SET reset_token = $2, updated_at = now()
		WHERE username = $1`, token)
}

func (s *AccountStore) SetPassword(ctx context.Context, username, passwordHash string) error {
	return s.update(ctx, username, `
		UPDATE accounts SET password_hash = $2, reset_token = '', updated_at = now()
		WHERE username = $1`, passwordHash)
}

func (s *AccountStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *AccountStore) update(ctx context.Context, username, query string, args ...any) error {
	tag, err := s.pool.Exec(ctx, query, append([]any{username}, args...)...)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
