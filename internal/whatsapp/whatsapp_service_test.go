package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aquagem-backend/internal/notify"
)

func TestAiSensy_Send(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"success":"true","submitted_message_id":"wa-1"}`))
	}))
	defer srv.Close()

	s := NewAiSensyService("key")
	s.BaseURL = srv.URL

	out, err := s.Send(context.Background(), "9876543210", notify.Payload{Template: "delivery_alert", Message: "Route 3 is behind"})

	require.NoError(t, err)
	assert.Equal(t, "wa-1", out.MessageID)
	assert.Equal(t, "919876543210", got["destination"])
	assert.Equal(t, "delivery_alert", got["campaignName"])
	assert.Equal(t, []interface{}{"Route 3 is behind"}, got["templateParams"])
}

func TestAiSensy_Errors(t *testing.T) {
	s := NewAiSensyService("key")
	_, err := s.Send(context.Background(), "9876543210", notify.Payload{Message: "x"})
	assert.True(t, notify.IsPermanent(err))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	s.BaseURL = srv.URL

	_, err = s.Send(context.Background(), "9876543210", notify.Payload{Template: "t"})
	require.Error(t, err)
	assert.False(t, notify.IsPermanent(err))
}
