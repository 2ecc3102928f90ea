package config_test

import (
	"testing"
	"time"

	"anonchat/backend/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("BOT_TOKEN", "")

	_, err := config.Load()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_DSN")
	assert.Contains(t, err.Error(), "BOT_TOKEN")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_DSN", "host=localhost dbname=anonchat")
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("API_PORT", "")
	t.Setenv("BROADCAST_PAUSE", "")
	t.Setenv("PROMO_INTERVAL", "")

	cfg, err := config.Load()

	assert.NoError(t, err)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "8080", cfg.APIPort)
	assert.Equal(t, 50*time.Millisecond, cfg.BroadcastPause)
	assert.Equal(t, 4*time.Hour, cfg.PromoInterval)
	assert.Equal(t, int64(0), cfg.AdminID)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_DSN", "host=localhost dbname=anonchat")
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("ADMIN_ID", "12345")
	t.Setenv("PROMO_INTERVAL", "30m")
	t.Setenv("REDIS_DB", "3")

	cfg, err := config.Load()

	assert.NoError(t, err)
	assert.Equal(t, int64(12345), cfg.AdminID)
	assert.Equal(t, 30*time.Minute, cfg.PromoInterval)
	assert.Equal(t, 3, cfg.RedisDB)
}
