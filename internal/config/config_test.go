package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abiads/talentscout/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.GroqBaseURL)
	assert.InDelta(t, 0.75, cfg.ConfidenceHigh, 1e-9)
	assert.InDelta(t, 0.45, cfg.ConfidenceLow, 1e-9)
	assert.Equal(t, 3, cfg.SkipThreshold)
	assert.Equal(t, 7, cfg.PhoneMinDigits)
	assert.Equal(t, 3000, cfg.ResumeTokenBudget)
	assert.True(t, cfg.IsDev())
	assert.False(t, cfg.IsProd())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("PORT", "9090")
	t.Setenv("SKIP_THRESHOLD", "5")
	t.Setenv("PHONE_MIN_DIGITS", "10")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProd())
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 5, cfg.SkipThreshold)
	assert.Equal(t, 10, cfg.PhoneMinDigits)
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	_, err := config.Load()
	require.Error(t, err)
}

func TestGetAIBackoffConfig_TestEnvShortens(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	cfg, err := config.Load()
	require.NoError(t, err)
	maxElapsed, initial, maxInterval, multiplier := cfg.GetAIBackoffConfig()
	assert.Equal(t, 2*time.Second, maxElapsed)
	assert.Equal(t, 50*time.Millisecond, initial)
	assert.Equal(t, 500*time.Millisecond, maxInterval)
	assert.InDelta(t, 2.0, multiplier, 1e-9)
}
