// Package email implements the core's Mailer port: message composition, an
// asynchronous dispatch queue, and the concrete SMTP transport.
package email

import "context"

// Message is one outbound email.
type Message struct {
	ID       string
	Username string
	To       string
	Subject  string
	Body     string
}

// Sender delivers a single message synchronously.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
