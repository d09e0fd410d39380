package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigMethods(t *testing.T) {
	t.Run("Addr returns formatted port", func(t *testing.T) {
		cfg := &Config{Port: 3000}
		assert.Equal(t, ":3000", cfg.Addr())
	})

	t.Run("SessionRetention converts hours to duration", func(t *testing.T) {
		cfg := &Config{SessionRetentionHours: 72}
		assert.Equal(t, 72*time.Hour, cfg.SessionRetention())
	})
}

func TestValidate(t *testing.T) {
	t.Run("rejects non-bcrypt admin token hash", func(t *testing.T) {
		cfg := &Config{AdminTokenHash: "plain-text-token"}
		assert.Error(t, cfg.Validate(false))
	})

	t.Run("accepts bcrypt admin token hash", func(t *testing.T) {
		cfg := &Config{AdminTokenHash: "$2a$10$abcdefghijklmnopqrstuv"}
		assert.NoError(t, cfg.Validate(false))
	})

	t.Run("requires strong webhook secret in production", func(t *testing.T) {
		cfg := &Config{WebhookSecret: "secret"}
		assert.Error(t, cfg.Validate(true))
	})

	t.Run("accepts long webhook secret in production", func(t *testing.T) {
		cfg := &Config{WebhookSecret: "a-sufficiently-long-random-secret-value!"}
		assert.NoError(t, cfg.Validate(true))
	})
}

func TestLoad(t *testing.T) {
	originalEnv := map[string]string{
		"PORT":                    os.Getenv("PORT"),
		"DATABASE_URL":            os.Getenv("DATABASE_URL"),
		"REDIS_URL":               os.Getenv("REDIS_URL"),
		"PRICE_API_URL":           os.Getenv("PRICE_API_URL"),
		"WALLET_API_URL":          os.Getenv("WALLET_API_URL"),
		"RATE_LIMIT_PER_MIN":      os.Getenv("RATE_LIMIT_PER_MIN"),
		"SESSION_RETENTION_HOURS": os.Getenv("SESSION_RETENTION_HOURS"),
		"LOG_LEVEL":               os.Getenv("LOG_LEVEL"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	setRequired := func() {
		os.Setenv("DATABASE_URL", "postgres://localhost/test")
		os.Setenv("REDIS_URL", "redis://localhost:6379")
		os.Setenv("PRICE_API_URL", "https://prices.example.com")
		os.Setenv("WALLET_API_URL", "https://wallet.example.com")
	}

	t.Run("loads config with defaults", func(t *testing.T) {
		setRequired()
		os.Unsetenv("PORT")
		os.Unsetenv("RATE_LIMIT_PER_MIN")
		os.Unsetenv("SESSION_RETENTION_HOURS")
		os.Unsetenv("LOG_LEVEL")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, "postgres://localhost/test", cfg.DatabaseURL)
		assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
		assert.Equal(t, 30, cfg.RateLimitPerMin)
		assert.Equal(t, 72, cfg.SessionRetentionHours)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("loads custom values", func(t *testing.T) {
		setRequired()
		os.Setenv("PORT", "3000")
		os.Setenv("RATE_LIMIT_PER_MIN", "120")
		os.Setenv("LOG_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 3000, cfg.Port)
		assert.Equal(t, 120, cfg.RateLimitPerMin)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("fails without required DATABASE_URL", func(t *testing.T) {
		setRequired()
		os.Unsetenv("DATABASE_URL")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("fails without required WALLET_API_URL", func(t *testing.T) {
		setRequired()
		os.Unsetenv("WALLET_API_URL")

		_, err := Load()
		assert.Error(t, err)
	})
}
