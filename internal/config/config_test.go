package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "CONTENT_API_URL", "PLAYCOUNT_API_URL", "DATABASE_URL", "PLAYCOUNT_BACKEND", "SESSION_SECRET"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, BackendNone, cfg.PlayCountBackend)
	assert.Equal(t, 5*time.Second, cfg.ContentTimeout)
	assert.Equal(t, 3*time.Second, cfg.MemorizeShow)
	assert.Equal(t, 60, cfg.MemorizeTotalSec)
	assert.Equal(t, 1, cfg.PairsRounds)
	assert.NotEmpty(t, cfg.SessionSecret, "a random secret is generated")
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CONTENT_API_URL", "https://api.example.com/")
	t.Setenv("PLAYCOUNT_API_URL", "")
	t.Setenv("PLAYCOUNT_BACKEND", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("CONTENT_TIMEOUT", "2")
	t.Setenv("SESSION_TTL", "90s")
	t.Setenv("MEMORIZE_SHOW_MS", "1500")
	t.Setenv("LOG_JSON", "true")
	t.Setenv("REDIS_DB", "nope")

	cfg := FromEnv()
	assert.Equal(t, ":9000", cfg.Addr())
	assert.Equal(t, "https://api.example.com", cfg.ContentAPIURL)
	assert.Equal(t, cfg.ContentAPIURL, cfg.PlayCountAPIURL)
	assert.Equal(t, BackendHTTP, cfg.PlayCountBackend)
	assert.Equal(t, 2*time.Second, cfg.ContentTimeout)
	assert.Equal(t, 90*time.Second, cfg.SessionTTL)
	assert.Equal(t, 1500*time.Millisecond, cfg.MemorizeShow)
	assert.True(t, cfg.LogJSON)
	assert.Zero(t, cfg.RedisDB)
}

func TestDatabaseURLSelectsPostgres(t *testing.T) {
	t.Setenv("PLAYCOUNT_BACKEND", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/matchplay")
	assert.Equal(t, BackendPostgres, FromEnv().PlayCountBackend)

	t.Setenv("PLAYCOUNT_BACKEND", "SQLite")
	assert.Equal(t, BackendSQLite, FromEnv().PlayCountBackend)
}

func TestFromEnvCollectsWarnings(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("REDIS_DB", "nope")
	t.Setenv("SESSION_TTL", "-5m")
	t.Setenv("LOG_JSON", "maybe")

	cfg := FromEnv()
	assert.ElementsMatch(t, []string{
		"SESSION_SECRET is not set, using a random secret",
		`ignoring invalid integer REDIS_DB="nope"`,
		`ignoring invalid duration SESSION_TTL="-5m"`,
		`ignoring invalid boolean LOG_JSON="maybe"`,
	}, cfg.Warnings)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)

	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("REDIS_DB", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("LOG_JSON", "")
	assert.Empty(t, FromEnv().Warnings)
}
