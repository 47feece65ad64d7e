package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakySender struct {
	failures int
	err      error
	calls    int
}

func (f *flakySender) Channel() string { return "test" }

func (f *flakySender) Send(_ context.Context, _ string, _ Payload) (Outcome, error) {
	f.calls++
	if f.calls <= f.failures {
		return Outcome{}, f.err
	}
	return Outcome{MessageID: "m-1"}, nil
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	s := &flakySender{failures: 2, err: errors.New("timeout")}

	out, err := Retry{Attempts: 3, Backoff: time.Millisecond}.Deliver(context.Background(), s, "9876543210", Payload{Message: "hi"})

	require.NoError(t, err)
	assert.Equal(t, 3, out.Attempts)
	assert.Equal(t, "test", out.Channel)
	assert.Equal(t, "m-1", out.MessageID)
}

func TestRetry_GivesUp(t *testing.T) {
	s := &flakySender{failures: 5, err: errors.New("timeout")}

	out, err := Retry{Attempts: 2}.Deliver(context.Background(), s, "9876543210", Payload{})

	assert.Error(t, err)
	assert.Equal(t, 2, s.calls)
	assert.Equal(t, 2, out.Attempts)
}

func TestRetry_PermanentStopsImmediately(t *testing.T) {
	s := &flakySender{failures: 5, err: Permanent(errors.New("invalid number"))}

	_, err := Retry{Attempts: 4}.Deliver(context.Background(), s, "123", Payload{})

	assert.Error(t, err)
	assert.True(t, IsPermanent(err))
	assert.Equal(t, 1, s.calls)
}

func TestRetry_ZeroAttemptsIsOnce(t *testing.T) {
	s := &flakySender{failures: 1, err: errors.New("x")}
	_, err := Retry{}.Deliver(context.Background(), s, "9876543210", Payload{})
	assert.Error(t, err)
	assert.Equal(t, 1, s.calls)
}

func TestRetry_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &flakySender{failures: 5, err: errors.New("x")}

	_, err := Retry{Attempts: 3, Backoff: time.Hour}.Deliver(ctx, s, "9876543210", Payload{})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, s.calls)
}

func TestLogSender(t *testing.T) {
	out, err := LogSender{Name: "push"}.Send(context.Background(), "9876543210", Payload{Title: "t", Message: "m"})
	require.NoError(t, err)
	assert.Equal(t, "push", out.Channel)
	assert.NotEmpty(t, out.MessageID)
	assert.Equal(t, "******3210", mask("9876543210"))
}
