// Package notify defines the outbound message capability used for OTPs and
// operator notifications. Senders make exactly one attempt per call; the
// caller decides whether and how to retry.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// Payload is one outbound message.
type Payload struct {
	Template string   // provider template / campaign name
	Title    string
	Message  string
	Params   []string // template parameters, in order
}

// Outcome describes an accepted message.
type Outcome struct {
	Channel   string `json:"channel"`
	MessageID string `json:"message_id"`
	Attempts  int    `json:"attempts"`
}

// Sender delivers a payload to a target (a mobile number) over one channel.
type Sender interface {
	Channel() string
	Send(ctx context.Context, target string, payload Payload) (Outcome, error)
}

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying (bad number, rejected template).
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

// Retry is a caller-owned retry policy. Backoff doubles after each failed
// attempt. Attempts below 1 behave as 1.
type Retry struct {
	Attempts int
	Backoff  time.Duration
}

// Once makes a single attempt.
var Once = Retry{Attempts: 1}

// Deliver sends payload through s, retrying transient failures per the
// policy. It stops early on a permanent error or when ctx is done.
func (r Retry) Deliver(ctx context.Context, s Sender, target string, payload Payload) (Outcome, error) {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := r.Backoff

	var lastErr error
	for i := 1; i <= attempts; i++ {
		out, err := s.Send(ctx, target, payload)
		if err == nil {
			out.Attempts = i
			if out.Channel == "" {
				out.Channel = s.Channel()
			}
			return out, nil
		}
		lastErr = err
		if IsPermanent(err) || i == attempts {
			break
		}
		log.Printf("[Notify] %s attempt %d/%d to %s failed: %v", s.Channel(), i, attempts, mask(target), err)
		if backoff > 0 {
			select {
			case <-ctx.Done():
				return Outcome{Channel: s.Channel(), Attempts: i}, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}
	return Outcome{Channel: s.Channel(), Attempts: attempts}, fmt.Errorf("%s delivery failed: %w", s.Channel(), lastErr)
}

// LogSender writes messages to the log. It backs the push channel until a
// push provider is configured, and stands in for SMS in development.
type LogSender struct {
	Name string
}

func (l LogSender) Channel() string {
	if l.Name == "" {
		return "log"
	}
	return l.Name
}

func (l LogSender) Send(_ context.Context, target string, payload Payload) (Outcome, error) {
	id := uuid.NewString()
	log.Printf("[Notify] %s -> %s [%s] %s: %s", l.Channel(), mask(target), id[:8], payload.Title, payload.Message)
	return Outcome{Channel: l.Channel(), MessageID: id}, nil
}

// mask hides all but the last four digits of a mobile number.
func mask(target string) string {
	if len(target) <= 4 {
		return target
	}
	return "******" + target[len(target)-4:]
}
