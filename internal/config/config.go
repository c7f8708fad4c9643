package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	envAddr     = "PORTAL_ADDR"
	envDSN      = "PORTAL_PG_DSN"
	envSecret   = "PORTAL_AUTH_SECRET"
	envTokenTTL = "PORTAL_TOKEN_TTL"
	envIssuer   = "PORTAL_TOKEN_ISSUER"
)

const (
	defaultAddr     = ":8080"
	defaultTokenTTL = 30 * time.Minute
	defaultIssuer   = "keen360-portal"
)

// Config holds process-wide settings. It is loaded once at startup and
// never mutated afterwards; rotating the auth secret requires a redeploy.
type Config struct {
	Addr        string
	DatabaseDSN string
	AuthSecret  []byte
	TokenTTL    time.Duration
	TokenIssuer string
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:        defaultAddr,
		TokenTTL:    defaultTokenTTL,
		TokenIssuer: defaultIssuer,
	}

	if v := strings.TrimSpace(os.Getenv(envAddr)); v != "" {
		cfg.Addr = v
	}
	cfg.DatabaseDSN = strings.TrimSpace(os.Getenv(envDSN))

	secret := strings.TrimSpace(os.Getenv(envSecret))
	if secret == "" {
		return nil, errors.New(envSecret + " is required")
	}
	cfg.AuthSecret = []byte(secret)

	if v := strings.TrimSpace(os.Getenv(envTokenTTL)); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", envTokenTTL, err)
		}
		if ttl <= 0 {
			return nil, fmt.Errorf("%s must be positive", envTokenTTL)
		}
		cfg.TokenTTL = ttl
	}

	if v := strings.TrimSpace(os.Getenv(envIssuer)); v != "" {
		cfg.TokenIssuer = v
	}

	return cfg, nil
}
