package email

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/authcore/account-service/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
)

// Dispatcher implements ports.Mailer: it composes the two account emails and
// hands them to a fixed set of workers, sharded by username so messages to
// one user keep their order. Delivery is fire-and-forget; failures are logged
// and never propagate to the originating request.
type Dispatcher struct {
	workers []chan Message
	sender  Sender
	log     zerolog.Logger
}

var _ ports.Mailer = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sender Sender, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan Message, numWorkers),
		sender:  sender,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan Message, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

func (d *Dispatcher) SendVerifyEmail(_ context.Context, username, email, verifyURL string) error {
	return d.enqueue(Message{
		ID:       uuid.New().String(),
		Username: username,
		To:       email,
		Subject:  "Verify your account",
		Body: fmt.Sprintf(
			"Hello %s,\n\nPlease confirm your email address by opening this link:\n\n%s\n\nIf you did not create this account, ignore this message.\n",
			username, verifyURL),
	})
}

func (d *Dispatcher) SendNewPasswordEmail(_ context.Context, username, email, resetURL string) error {
	return d.enqueue(Message{
		ID:       uuid.New().String(),
		Username: username,
		To:       email,
		Subject:  "Password reset",
		Body: fmt.Sprintf(
			"Hello %s,\n\nA password reset was requested for your account. Choose a new password here:\n\n%s\n\nIf you did not request this, ignore this message and your password stays unchanged.\n",
			username, resetURL),
	})
}

// enqueue is non-blocking: when a worker's buffer is full the message is
// dropped and reported, rather than stalling the request path.
func (d *Dispatcher) enqueue(msg Message) error {
	ch := d.workers[d.shardIndex(msg.Username)]
	select {
	case ch <- msg:
		return nil
	default:
		return fmt.Errorf("email queue full, dropped message %s", msg.ID)
	}
}

// shardIndex maps a username deterministically to a worker index.
func (d *Dispatcher) shardIndex(username string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(username))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := d.sender.Send(ctx, msg); err != nil {
				d.log.Error().Err(err).
					Str("message_id", msg.ID).
					Str("username", msg.Username).
					Int("worker_id", id).
					Msg("email delivery failed")
			}
		}
	}
}
