// Package config reads runtime settings from the environment and an optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Play-count backends.
const (
	BackendHTTP     = "http"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendNone     = "none"
)

type Config struct {
	Port     string
	BaseURL  string
	LogLevel string
	LogJSON  bool

	ContentAPIURL   string
	ContentTimeout  time.Duration
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	ContentCacheTTL time.Duration

	PlayCountBackend string
	PlayCountAPIURL  string
	DatabaseURL      string
	SQLitePath       string

	SessionSecret string
	SessionTTL    time.Duration

	PairsRounds         int
	MemorizeShowCount   int
	MemorizeOptionCount int
	MemorizeShow        time.Duration
	MemorizeTotalSec    int

	// Warnings collects settings that were ignored or defaulted while loading.
	// The logger is not configured yet at that point, so callers log them.
	Warnings []string
}

// Load reads .env if present, then the process environment.
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() *Config {
	e := &env{}
	cfg := &Config{
		Port:     e.str("PORT", "8080"),
		BaseURL:  strings.TrimRight(e.str("BASE_URL", ""), "/"),
		LogLevel: e.str("LOG_LEVEL", "info"),
		LogJSON:  e.boolean("LOG_JSON", false),

		ContentAPIURL:   strings.TrimRight(e.str("CONTENT_API_URL", ""), "/"),
		ContentTimeout:  e.duration("CONTENT_TIMEOUT", 5*time.Second),
		RedisAddr:       e.str("REDIS_ADDR", ""),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         e.integer("REDIS_DB", 0),
		ContentCacheTTL: e.duration("CONTENT_CACHE_TTL", 5*time.Minute),

		PlayCountBackend: strings.ToLower(e.str("PLAYCOUNT_BACKEND", "")),
		PlayCountAPIURL:  strings.TrimRight(e.str("PLAYCOUNT_API_URL", ""), "/"),
		DatabaseURL:      e.str("DATABASE_URL", ""),
		SQLitePath:       e.str("SQLITE_PATH", "matchplay.db"),

		SessionSecret: e.str("SESSION_SECRET", ""),
		SessionTTL:    e.duration("SESSION_TTL", 30*time.Minute),

		PairsRounds:         e.integer("PAIRS_ROUNDS", 1),
		MemorizeShowCount:   e.integer("MEMORIZE_SHOW_COUNT", 4),
		MemorizeOptionCount: e.integer("MEMORIZE_OPTION_COUNT", 8),
		MemorizeShow:        time.Duration(e.integer("MEMORIZE_SHOW_MS", 3000)) * time.Millisecond,
		MemorizeTotalSec:    e.integer("MEMORIZE_TOTAL_SEC", 60),
	}

	if cfg.PlayCountAPIURL == "" {
		cfg.PlayCountAPIURL = cfg.ContentAPIURL
	}
	if cfg.PlayCountBackend == "" {
		cfg.PlayCountBackend = defaultBackend(cfg)
	}
	if cfg.SessionSecret == "" {
		// Tickets then only survive until restart.
		cfg.SessionSecret = uuid.NewString()
		e.warn("SESSION_SECRET is not set, using a random secret")
	}
	cfg.Warnings = e.warnings
	return cfg
}

func defaultBackend(cfg *Config) string {
	switch {
	case cfg.DatabaseURL != "":
		return BackendPostgres
	case cfg.PlayCountAPIURL != "":
		return BackendHTTP
	default:
		return BackendNone
	}
}

// Addr is the listen address.
func (c *Config) Addr() string { return ":" + c.Port }

type env struct {
	warnings []string
}

func (e *env) warn(format string, args ...any) {
	e.warnings = append(e.warnings, fmt.Sprintf(format, args...))
}

func (e *env) str(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func (e *env) integer(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		e.warn("ignoring invalid integer %s=%q", key, v)
		return fallback
	}
	return n
}

func (e *env) boolean(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.warn("ignoring invalid boolean %s=%q", key, v)
		return fallback
	}
	return b
}

// duration accepts Go durations ("90s") or a bare number of seconds.
func (e *env) duration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	e.warn("ignoring invalid duration %s=%q", key, v)
	return fallback
}
