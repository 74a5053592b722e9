package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from the environment.
type Config struct {
	Addr         string `env:"CIVICDESK_ADDR" envDefault:":8080"`
	PostgresDSN  string `env:"CIVICDESK_PG_DSN"`
	AuthSecret   string `env:"CIVICDESK_AUTH_SECRET"`
	TokenTTL     int    `env:"CIVICDESK_TOKEN_TTL_MINUTES" envDefault:"720"`
	UploadDir    string `env:"CIVICDESK_UPLOAD_DIR" envDefault:"uploads"`
	RateBurst    int    `env:"CIVICDESK_RATE_BURST" envDefault:"50"`
	RatePerSec   int    `env:"CIVICDESK_RATE_PER_SEC" envDefault:"25"`
	MaxBodyBytes int64  `env:"CIVICDESK_MAX_BODY_BYTES" envDefault:"10485760"`
}

// Load reads .env (when present) and parses environment variables.
func Load() (Config, error) {
	// Missing .env is fine; explicit env always wins.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
