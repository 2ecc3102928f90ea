// Package config loads the immutable process configuration from the
// environment. Read once at startup; a missing required variable is a
// startup failure, not a runtime one.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Storage
	DatabaseDSN   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Telegram
	BotToken string
	// AdminID is the sole identity allowed to adjudicate reports and
	// run broadcasts. Zero disables the admin surface.
	AdminID int64

	// Admin HTTP API
	APIPort   string
	JWTSecret string

	// Broadcast
	BroadcastPause time.Duration
	PromoInterval  time.Duration

	// Assistant variant (LLM chat/vision bot)
	LLMBaseURL     string
	LLMAPIKey      string
	LLMTextModel   string
	LLMVisionModel string
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}

	var missing []string
	cfg.DatabaseDSN = os.Getenv("DATABASE_DSN")
	if cfg.DatabaseDSN == "" {
		missing = append(missing, "DATABASE_DSN")
	}
	cfg.BotToken = os.Getenv("BOT_TOKEN")
	if cfg.BotToken == "" {
		missing = append(missing, "BOT_TOKEN")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	cfg.RedisAddr = getEnvString("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisDB = getEnvInt("REDIS_DB", 0)

	cfg.AdminID = getEnvInt64("ADMIN_ID", 0)
	cfg.APIPort = getEnvString("API_PORT", "8080")
	cfg.JWTSecret = getEnvString("JWT_SECRET", "")

	cfg.BroadcastPause = getEnvDuration("BROADCAST_PAUSE", 50*time.Millisecond)
	cfg.PromoInterval = getEnvDuration("PROMO_INTERVAL", 4*time.Hour)

	cfg.LLMBaseURL = getEnvString("LLM_BASE_URL", "https://api.groq.com/openai")
	cfg.LLMAPIKey = os.Getenv("LLM_API_KEY")
	cfg.LLMTextModel = getEnvString("LLM_TEXT_MODEL", "llama-3.3-70b-versatile")
	cfg.LLMVisionModel = getEnvString("LLM_VISION_MODEL", "meta-llama/llama-4-scout-17b-16e-instruct")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
