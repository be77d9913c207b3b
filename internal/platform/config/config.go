package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultAdmin                 = "ST1ADMIN"
	DefaultVerificationThreshold = 2
	DefaultTxTimeout             = 5 * time.Second
)

// Config captures process level settings for the claim registry.
type Config struct {
	// Admin is the bootstrap administrator identity.
	Admin                 string
	VerificationThreshold uint32
	TxTimeout             time.Duration
	// DeferredCommit commits process/verify/dispute transitions only after the
	// collaborator call succeeds.
	DeferredCommit bool
	LogLevel       string
	LogFormat      string
	// Warnings lists env values that were ignored in favour of defaults.
	Warnings []string
}

// Default returns the configuration used when no environment is set.
func Default() Config {
	return Config{
		Admin:                 DefaultAdmin,
		VerificationThreshold: DefaultVerificationThreshold,
		TxTimeout:             DefaultTxTimeout,
		LogLevel:              "info",
		LogFormat:             "json",
	}
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) Config {
	cfg := Default()

	if v, ok := lookup("CLAIMS_ADMIN"); ok && strings.TrimSpace(v) != "" {
		cfg.Admin = strings.TrimSpace(v)
	}
	if v, ok := lookup("CLAIMS_VERIFICATION_THRESHOLD"); ok {
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 32)
		if err != nil {
			cfg.warn("CLAIMS_VERIFICATION_THRESHOLD", v)
		} else {
			cfg.VerificationThreshold = uint32(n)
		}
	}
	if v, ok := lookup("CLAIMS_TX_TIMEOUT"); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil || d <= 0 {
			cfg.warn("CLAIMS_TX_TIMEOUT", v)
		} else {
			cfg.TxTimeout = d
		}
	}
	if v, ok := lookup("CLAIMS_DEFERRED_COMMIT"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			cfg.warn("CLAIMS_DEFERRED_COMMIT", v)
		} else {
			cfg.DeferredCommit = b
		}
	}
	if v, ok := lookup("CLAIMS_LOG_LEVEL"); ok {
		switch lvl := strings.ToLower(strings.TrimSpace(v)); lvl {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = lvl
		default:
			cfg.warn("CLAIMS_LOG_LEVEL", v)
		}
	}
	if v, ok := lookup("CLAIMS_LOG_FORMAT"); ok {
		switch f := strings.ToLower(strings.TrimSpace(v)); f {
		case "json", "text":
			cfg.LogFormat = f
		default:
			cfg.warn("CLAIMS_LOG_FORMAT", v)
		}
	}
	return cfg
}

func (c *Config) warn(key, value string) {
	c.Warnings = append(c.Warnings, fmt.Sprintf("%s=%q is invalid, using default", key, value))
}
