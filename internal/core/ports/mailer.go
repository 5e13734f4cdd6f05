package ports

import "context"

// Mailer delivers the two account emails. Fire-and-forget from the core's
// perspective: retries and queuing are the implementation's concern, and a
// delivery failure never fails the originating request.
type Mailer interface {
	SendVerifyEmail(ctx context.Context, username, email, verifyURL string) error
	SendNewPasswordEmail(ctx context.Context, username, email, resetURL string) error
}

// LinkBuilder turns (username, token) pairs into the absolute URLs embedded
// in the two emails.
type LinkBuilder interface {
	VerifyURL(username, token string) string
	ResetURL(username, token string) string
}

// Throttle limits how often an email-sending action may run for a given key.
// Allow returns domain.ErrThrottled when the budget is exhausted.
type Throttle interface {
	Allow(ctx context.Context, action, key string) error
}
