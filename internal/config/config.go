package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds application configuration values for both the POS
// client and the reference API server.
type Config struct {
	// Client side.
	APIBaseURL  string
	HTTPTimeout time.Duration
	StatePath   string

	// Server side.
	Secret      string
	DatabaseDSN string
	HTTPPort    string
}

// Load reads configuration from environment variables with reasonable defaults.
func Load() Config {
	baseURL := os.Getenv("API_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}

	timeout := 10 * time.Second
	if raw := os.Getenv("HTTP_TIMEOUT"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			log.Printf("invalid HTTP_TIMEOUT value %q, defaulting to 10s", raw)
		} else {
			timeout = time.Duration(secs) * time.Second
		}
	}

	statePath := os.Getenv("STATE_PATH")
	if statePath == "" {
		statePath = defaultStatePath()
	}

	secret := os.Getenv("SECRET")
	if secret == "" {
		secret = "dev_secret"
	}

	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		dsn = "file:store-manager.db?_pragma=foreign_keys(1)"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8000"
	}
	if _, err := strconv.Atoi(port); err != nil {
		log.Printf("invalid HTTP_PORT value %q, defaulting to 8000", port)
		port = "8000"
	}

	return Config{
		APIBaseURL:  baseURL,
		HTTPTimeout: timeout,
		StatePath:   statePath,
		Secret:      secret,
		DatabaseDSN: dsn,
		HTTPPort:    port,
	}
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".store-manager-state.json"
	}
	return filepath.Join(dir, "store-manager", "state.json")
}
