package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("FAST2SMS_API_KEY", "f2s")
	t.Setenv("R2_BUCKET", "proofs")

	cfg := Load()
	require.NotNil(t, cfg)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, 15, cfg.JWT.AccessTTLMinutes)
	assert.Equal(t, 168, cfg.JWT.RefreshTTLHours)
	assert.Equal(t, "test-secret:refresh", cfg.JWT.RefreshSecret)
	assert.Equal(t, "always", cfg.Schedule.AlternateMode)
	assert.Equal(t, 10, cfg.Schedule.OpsStartHour)
	assert.False(t, cfg.OTP.EchoInResponse)
	assert.Equal(t, "fast2sms", cfg.SMS.Provider)
	assert.Equal(t, "proofs", cfg.Storage.Bucket)
	assert.False(t, cfg.Storage.Enabled())
}

func TestLoad_NestedKeysFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SCHEDULE_ALTERNATE_MODE", "anchored")
	t.Setenv("OTP_ECHO_IN_RESPONSE", "true")

	cfg := Load()

	assert.Equal(t, "anchored", cfg.Schedule.AlternateMode)
	assert.True(t, cfg.OTP.EchoInResponse)
}
