package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	cfg := fromLookup(lookupFrom(nil))
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "ST1ADMIN", cfg.Admin)
	assert.Equal(t, uint32(2), cfg.VerificationThreshold)
	assert.False(t, cfg.DeferredCommit)
}

func TestFromLookup_Overrides(t *testing.T) {
	cfg := fromLookup(lookupFrom(map[string]string{
		"CLAIMS_ADMIN":                  " ST2ADMIN ",
		"CLAIMS_VERIFICATION_THRESHOLD": "5",
		"CLAIMS_TX_TIMEOUT":             "250ms",
		"CLAIMS_DEFERRED_COMMIT":        "true",
		"CLAIMS_LOG_LEVEL":              "DEBUG",
		"CLAIMS_LOG_FORMAT":             "text",
	}))

	assert.Equal(t, "ST2ADMIN", cfg.Admin)
	assert.Equal(t, uint32(5), cfg.VerificationThreshold)
	assert.Equal(t, 250*time.Millisecond, cfg.TxTimeout)
	assert.True(t, cfg.DeferredCommit)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Empty(t, cfg.Warnings)
}

func TestFromLookup_InvalidValuesFallBack(t *testing.T) {
	cfg := fromLookup(lookupFrom(map[string]string{
		"CLAIMS_ADMIN":                  "   ",
		"CLAIMS_VERIFICATION_THRESHOLD": "-1",
		"CLAIMS_TX_TIMEOUT":             "0s",
		"CLAIMS_DEFERRED_COMMIT":        "maybe",
		"CLAIMS_LOG_LEVEL":              "loud",
		"CLAIMS_LOG_FORMAT":             "xml",
	}))

	def := Default()
	assert.Equal(t, def.Admin, cfg.Admin)
	assert.Equal(t, def.VerificationThreshold, cfg.VerificationThreshold)
	assert.Equal(t, def.TxTimeout, cfg.TxTimeout)
	assert.False(t, cfg.DeferredCommit)
	assert.Equal(t, def.LogLevel, cfg.LogLevel)
	assert.Equal(t, def.LogFormat, cfg.LogFormat)
	require.Len(t, cfg.Warnings, 5)
	assert.Contains(t, cfg.Warnings[0], "CLAIMS_VERIFICATION_THRESHOLD")
}

func TestFromEnv(t *testing.T) {
	t.Setenv("CLAIMS_ADMIN", "ENV-ADMIN")
	t.Setenv("CLAIMS_VERIFICATION_THRESHOLD", "3")

	cfg := FromEnv()
	assert.Equal(t, "ENV-ADMIN", cfg.Admin)
	assert.Equal(t, uint32(3), cfg.VerificationThreshold)
}
