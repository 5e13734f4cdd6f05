package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidCredentials = errors.New("invalid username or password")
var ErrUserNotFound = errors.New("user not found")
var ErrNotVerified = errors.New("email not verified")
var ErrInvalidKey = errors.New("invalid key")
var ErrPasswordMismatch = errors.New("passwords do not match")
var ErrInvalidUsername = errors.New("invalid username")
var ErrResetDisabled = errors.New("password reset disabled")
var ErrThrottled = errors.New("too many requests")

// UserExistsError reports a duplicate username on registration. It names the
// username so the caller can surface it.
type UserExistsError struct {
	Username string
}

func (e *UserExistsError) Error() string {
	return fmt.Sprintf("username already exists: %s", e.Username)
}

// ErrUserExists is the match target for errors.Is on any *UserExistsError.
var ErrUserExists = errors.New("username already exists")

func (e *UserExistsError) Is(target error) bool { return target == ErrUserExists }

// Account is the sole persistent entity: one row per username, carrying the
// credential and the pending-token state for verification and reset.
type Account struct {
	ID            string    `json:"id,omitempty"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	EmailVerified bool      `json:"email_verified"`
	VerifyToken   string    `json:"-"`
	ResetToken    string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// VerificationPending reports whether the account still has an unredeemed
// verification token. Verified accounts never do.
func (a *Account) VerificationPending() bool {
	return !a.EmailVerified && a.VerifyToken != ""
}

// Session is the authentication assertion returned by successful login,
// verification, and reset completion. The host exchanges it for whatever
// session mechanism it uses; Token is a signed JWT for Username.
type Session struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

// UsernamePolicy decides whether a username is acceptable at registration.
type UsernamePolicy func(username string) bool

// DefaultUsernamePolicy accepts non-empty ASCII alphanumeric usernames.
func DefaultUsernamePolicy(username string) bool {
	if username == "" {
		return false
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
