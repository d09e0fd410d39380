package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "admin", "password",
}

type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	RedisURL    string `env:"REDIS_URL,required"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Collaborator endpoints
	ReplyAPIURL  string `env:"REPLY_API_URL"`
	ReplyAPIKey  string `env:"REPLY_API_KEY"`
	ReplyModel   string `env:"REPLY_MODEL" envDefault:"gpt-4o-mini"`
	PriceAPIURL  string `env:"PRICE_API_URL,required"`
	WalletAPIURL string `env:"WALLET_API_URL,required"`
	PayoutAPIURL string `env:"PAYOUT_API_URL"`
	PayoutAPIKey string `env:"PAYOUT_API_KEY"`

	// Webhook signature secret for deposit/payout callbacks
	WebhookSecret string `env:"WEBHOOK_SECRET"`

	// bcrypt hash of the admin API token
	AdminTokenHash string `env:"ADMIN_TOKEN_HASH"`

	RateLimitPerMin       int `env:"RATE_LIMIT_PER_MIN" envDefault:"30"`
	SessionRetentionHours int `env:"SESSION_RETENTION_HOURS" envDefault:"72"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) SessionRetention() time.Duration {
	return time.Duration(c.SessionRetentionHours) * time.Hour
}

func (c *Config) Validate(isProduction bool) error {
	if c.AdminTokenHash != "" {
		if !strings.HasPrefix(c.AdminTokenHash, "$2a$") &&
			!strings.HasPrefix(c.AdminTokenHash, "$2b$") &&
			!strings.HasPrefix(c.AdminTokenHash, "$2y$") {
			return fmt.Errorf("ADMIN_TOKEN_HASH must be a bcrypt hash (generate with: go run scripts/hash-token.go <token>)")
		}
	}

	if isProduction {
		if err := validateSecret("WEBHOOK_SECRET", c.WebhookSecret); err != nil {
			return err
		}
		if c.AdminTokenHash == "" {
			log.Warn().Msg("ADMIN_TOKEN_HASH is empty in production: admin endpoints disabled")
		}
		if c.ReplyAPIURL == "" {
			log.Warn().Msg("REPLY_API_URL is empty: replies will use canned templates only")
		}
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
	}

	return nil
}

func validateSecret(name, value string) error {
	if len(value) < 32 {
		return fmt.Errorf("%s must be at least 32 characters in production (generate with: openssl rand -base64 32)", name)
	}
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret in production", name)
		}
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
