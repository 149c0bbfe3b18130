package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures all process-wide settings. It is loaded once at startup and
// treated as immutable; nothing re-reads the environment afterwards.
type Config struct {
	Addr        string
	DatabaseURL string
	RedisURL    string

	// SigningKey signs claim and ownership tokens. Required outside dev.
	SigningKey string

	// ClaimTokenTTL of zero means claim tokens never expire, which keeps a
	// printed claim link valid until the card is actually claimed.
	ClaimTokenTTL     time.Duration
	OwnershipTokenTTL time.Duration

	// AdminKey guards the provisioning endpoints. Empty disables them.
	AdminKey string
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	addr := os.Getenv("CARDLINK_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	signingKey := os.Getenv("CARDLINK_SIGNING_KEY")
	if signingKey == "" {
		// Use a default for development - should be overridden in production
		signingKey = "dev-secret-key-change-in-production"
	}

	return Config{
		Addr:              addr,
		DatabaseURL:       os.Getenv("CARDLINK_DATABASE_URL"),
		RedisURL:          os.Getenv("CARDLINK_REDIS_URL"),
		SigningKey:        signingKey,
		ClaimTokenTTL:     durationEnv("CARDLINK_CLAIM_TOKEN_TTL", 0),
		OwnershipTokenTTL: durationEnv("CARDLINK_OWNERSHIP_TOKEN_TTL", 90*24*time.Hour),
		AdminKey:          os.Getenv("CARDLINK_ADMIN_KEY"),
	}
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
