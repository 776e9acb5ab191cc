// Package config loads server settings from the environment, with an
// optional .env file for local runs.
package config

import (
	"crypto/sha256"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs at startup.
type Config struct {
	// Addr is the listen address, e.g. ":5000".
	Addr string
	// DataDir holds users.json and recipes.json.
	DataDir string
	// SessionKeys maps key id to a 32-byte cookie key. SessionKeyID names
	// the key used to seal new cookies; the rest are accepted for rotation.
	SessionKeys  map[string][]byte
	SessionKeyID string
	// SessionTTL is the session lifetime.
	SessionTTL time.Duration
	// CookieSecure sets the Secure flag on the session cookie. Disable only
	// for plain-HTTP local runs.
	CookieSecure bool
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present, without overriding
// variables already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	secret := os.Getenv("SECRET_KEY")
	if secret == "" {
		return nil, errors.New("config: SECRET_KEY is required")
	}
	key := sha256.Sum256([]byte(secret))

	cfg := &Config{
		Addr:         getenv("ADDR", ":5000"),
		DataDir:      getenv("DATA_DIR", "data"),
		SessionKeys:  map[string][]byte{"v1": key[:]},
		SessionKeyID: "v1",
		SessionTTL:   time.Hour,
		CookieSecure: true,
	}

	if v := os.Getenv("SESSION_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil || ttl <= 0 {
			return nil, errors.New("config: SESSION_TTL must be a positive duration")
		}
		cfg.SessionTTL = ttl
	}

	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errors.New("config: COOKIE_SECURE must be a boolean")
		}
		cfg.CookieSecure = secure
	}

	return cfg, nil
}

func getenv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
