package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr      string
	APIBaseURL    string
	APITimeout    time.Duration
	SessionFile   string
	RedisAddr     string
	RedisPassword string
}

func Load() Config {
	_ = godotenv.Load()
	return Config{
		HTTPAddr:      getenv("HTTP_ADDR", ":3000"),
		APIBaseURL:    strings.TrimRight(getenv("API_BASE_URL", "http://localhost:8000/api"), "/"),
		APITimeout:    getenvDuration("API_TIMEOUT", 15*time.Second),
		SessionFile:   getenv("SESSION_FILE", defaultSessionFile()),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
	}
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "session.json"
	}
	return filepath.Join(dir, "healthcare-portal", "session.json")
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}
