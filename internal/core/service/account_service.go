package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/authcore/account-service/internal/core/domain"
	"github.com/authcore/account-service/internal/core/ports"
	"github.com/authcore/account-service/internal/pkg/secrets"
)

// Config is the pluggable behavior of the authentication flows. Zero values
// select the defaults applied by NewAccountService.
type Config struct {
	// UsernamePolicy gates registration. Defaults to alphanumeric-only.
	UsernamePolicy domain.UsernamePolicy
	// ResetEnabled globally switches the password-reset flow. When false all
	// reset entry points behave as not found.
	ResetEnabled bool
	// JWTSecret signs session tokens.
	JWTSecret string
	// SessionTTL bounds session token validity. Defaults to 24h.
	SessionTTL time.Duration
}

// AccountService implements the login, registration/verification and
// password-reset flows on top of an AccountStore. It is stateless between
// requests; every mutation is a single atomic store call.
type AccountService struct {
	store    ports.AccountStore
	mailer   ports.Mailer
	links    ports.LinkBuilder
	throttle ports.Throttle
	hasher   *secrets.Hasher
	cfg      Config
	log      zerolog.Logger
}

var _ ports.AccountService = (*AccountService)(nil)

func NewAccountService(store ports.AccountStore, mailer ports.Mailer, links ports.LinkBuilder, throttle ports.Throttle, hasher *secrets.Hasher, cfg Config, log zerolog.Logger) *AccountService {
	if cfg.UsernamePolicy == nil {
		cfg.UsernamePolicy = domain.DefaultUsernamePolicy
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	return &AccountService{
		store:    store,
		mailer:   mailer,
		links:    links,
		throttle: throttle,
		hasher:   hasher,
		cfg:      cfg,
		log:      log,
	}
}

func (s *AccountService) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	account, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Same failure as a wrong password: no username enumeration.
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	if !account.EmailVerified {
		// Password knowledge is proven but no session is issued; the caller
		// routes to the resend-verification sub-flow. The pending token is
		// left untouched.
		return nil, domain.ErrNotVerified
	}

	return s.newSession(account.Username)
}

func (s *AccountService) Register(ctx context.Context, username, email, password string) (*domain.Account, error) {
	if !s.cfg.UsernamePolicy(username) {
		return nil, domain.ErrInvalidUsername
	}

	token, err := secrets.NewToken()
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		VerifyToken:  token,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Duplicate usernames are resolved atomically by the store: under a race
	// exactly one Create succeeds.
	created, err := s.store.Create(ctx, account)
	if err != nil {
		return nil, err
	}

	s.dispatchVerifyEmail(ctx, created.Username, created.Email, token)
	return created, nil
}

func (s *AccountService) Verify(ctx context.Context, username, token string) (*domain.Session, error) {
	account, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidKey
		}
		return nil, err
	}

	if !account.VerificationPending() || !tokenEqual(account.VerifyToken, token) {
		return nil, domain.ErrInvalidKey
	}

	if err := s.store.MarkVerified(ctx, username); err != nil {
		return nil, err
	}

	// Redeeming the verification link doubles as the first login.
	return s.newSession(username)
}

func (s *AccountService) ResendVerification(ctx context.Context, username string) error {
	account, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidKey
		}
		return err
	}
	if account.EmailVerified {
		return domain.ErrInvalidKey
	}

	if err := s.allow(ctx, "verify_resend", username); err != nil {
		return err
	}

	token, err := secrets.NewToken()
	if err != nil {
		return err
	}
	// Overwriting invalidates the previously issued token; only the latest
	// one can ever be redeemed.
	if err := s.store.SetVerifyToken(ctx, username, token); err != nil {
		return err
	}

	s.dispatchVerifyEmail(ctx, account.Username, account.Email, token)
	return nil
}

func (s *AccountService) RequestReset(ctx context.Context, username string) error {
	if !s.cfg.ResetEnabled {
		return domain.ErrResetDisabled
	}

	// Unknown usernames are reported as such here, unlike login. This leaks
	// account existence and is kept for compatibility; see DESIGN.md.
	account, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		return err
	}

	if err := s.allow(ctx, "reset_request", username); err != nil {
		return err
	}

	token, err := secrets.NewToken()
	if err != nil {
		return err
	}
	if err := s.store.SetResetToken(ctx, username, token); err != nil {
		return err
	}

	resetURL := s.links.ResetURL(account.Username, token)
	if err := s.mailer.SendNewPasswordEmail(ctx, account.Username, account.Email, resetURL); err != nil {
		s.log.Warn().Err(err).Str("username", account.Username).Msg("reset email dispatch failed")
	}
	return nil
}

func (s *AccountService) CheckResetToken(ctx context.Context, username, token string) error {
	if !s.cfg.ResetEnabled {
		return domain.ErrResetDisabled
	}

	account, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidKey
		}
		return err
	}
	if !tokenEqual(account.ResetToken, token) {
		return domain.ErrInvalidKey
	}
	return nil
}

func (s *AccountService) CompleteReset(ctx context.Context, username, token, password, confirm string) (*domain.Session, error) {
	if !s.cfg.ResetEnabled {
		return nil, domain.ErrResetDisabled
	}

	// Field-level check before any store access.
	if password == "" || password != confirm {
		return nil, domain.ErrPasswordMismatch
	}

	// Re-validate exactly as the form check: hidden fields may be stale or
	// forged.
	if err := s.CheckResetToken(ctx, username, token); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	// SetPassword clears the reset token atomically with the hash swap, so
	// the token is single-use.
	if err := s.store.SetPassword(ctx, username, hash); err != nil {
		return nil, err
	}

	return s.newSession(username)
}

func (s *AccountService) dispatchVerifyEmail(ctx context.Context, username, email, token string) {
	verifyURL := s.links.VerifyURL(username, token)
	if err := s.mailer.SendVerifyEmail(ctx, username, email, verifyURL); err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("verification email dispatch failed")
	}
}

func (s *AccountService) allow(ctx context.Context, action, key string) error {
	if s.throttle == nil {
		return nil
	}
	return s.throttle.Allow(ctx, action, key)
}

func (s *AccountService) newSession(username string) (*domain.Session, error) {
	claims := jwt.MapClaims{
		"username": username,
		"exp":      time.Now().Add(s.cfg.SessionTTL).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, err
	}
	return &domain.Session{Username: username, Token: signed}, nil
}

// tokenEqual compares a stored token against a supplied one. An empty stored
// token means nothing is pending and never matches.
func tokenEqual(stored, supplied string) bool {
	if stored == "" || supplied == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}
