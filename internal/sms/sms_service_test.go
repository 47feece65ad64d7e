package sms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aquagem-backend/internal/notify"
)

func TestFast2SMS_Send(t *testing.T) {
	var gotNumbers, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotNumbers = r.URL.Query().Get("numbers")
		gotAuth = r.URL.Query().Get("authorization")
		w.Write([]byte(`{"return":true,"request_id":"req-42","message":["sent"]}`))
	}))
	defer srv.Close()

	s := NewFast2SMSService("key", "")
	s.BaseURL = srv.URL

	out, err := s.Send(context.Background(), "+91 98765-43210", notify.Payload{Message: "OTP 123456"})

	require.NoError(t, err)
	assert.Equal(t, "req-42", out.MessageID)
	assert.Equal(t, "9876543210", gotNumbers)
	assert.Equal(t, "key", gotAuth)
}

func TestFast2SMS_Errors(t *testing.T) {
	status := http.StatusServiceUnavailable
	body := `{}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	defer srv.Close()
	s := NewFast2SMSService("key", "q")
	s.BaseURL = srv.URL
	ctx := context.Background()

	_, err := s.Send(ctx, "9876543210", notify.Payload{})
	require.Error(t, err)
	assert.False(t, notify.IsPermanent(err), "5xx is retryable")

	status, body = http.StatusOK, `{"return":false,"message":"Invalid Authentication"}`
	_, err = s.Send(ctx, "9876543210", notify.Payload{})
	require.Error(t, err)
	assert.True(t, notify.IsPermanent(err))

	_, err = s.Send(ctx, "12345", notify.Payload{})
	assert.True(t, notify.IsPermanent(err))
}

func TestMockSMS(t *testing.T) {
	m := NewMockSMSService()
	_, ok := m.Last()
	assert.False(t, ok)

	out, err := m.Send(context.Background(), "9876543210", notify.Payload{Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "mock-1", out.MessageID)

	last, ok := m.Last()
	require.True(t, ok)
	assert.Equal(t, "hello", last.Message)
}
