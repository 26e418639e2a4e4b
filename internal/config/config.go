package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              int
	NatsURL           string
	NatsToken         string
	DatabaseURL       string
	LogLevel          string
	CompletionURL     string
	CompletionAPIKey  string
	CompletionTimeout time.Duration
	APIToken          string
	DiagInterval      time.Duration
	FeedbackTTL       time.Duration
}

func Load() Config {
	// Local development convenience; the file is absent in deployment.
	_ = godotenv.Load()

	return Config{
		Port:              envInt("REFLET_PORT", 8760),
		NatsURL:           envStr("NATS_URL", "nats://localhost:4222"),
		NatsToken:         envStr("NATS_TOKEN", ""),
		DatabaseURL:       envStr("DATABASE_URL", ""),
		LogLevel:          envStr("LOG_LEVEL", "info"),
		CompletionURL:     envStr("COMPLETION_URL", ""),
		CompletionAPIKey:  envStr("COMPLETION_API_KEY", ""),
		CompletionTimeout: envDuration("COMPLETION_TIMEOUT", 8*time.Second),
		APIToken:          envStr("REFLET_API_TOKEN", ""),
		DiagInterval:      envDuration("REFLET_DIAG_INTERVAL", 6*time.Hour),
		FeedbackTTL:       envDuration("REFLET_FEEDBACK_TTL", 48*time.Hour),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
