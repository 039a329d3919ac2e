package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds everything read from the environment at startup. It is not modified afterwards.
type AppConfig struct {
	HTTPAddr   string
	Production bool
	DBPath     string

	// Fixed admin credential triple checked by /admin-login.
	AdminUsername string
	AdminPassword string
	AdminToken    string

	SessionSecret string
	SessionStore  string // memory | redis
	SessionTTL    time.Duration
	CookieSecure  bool

	RedisAddr string
	RedisDB   int

	// Per-IP limit on GET /products; 0 turns it off.
	ReadRateLimit  int
	ReadRateWindow time.Duration

	// Catalog change feed. No brokers means no feed.
	KafkaBrokers         []string
	KafkaTopic           string
	CatalogEventStream   string
	CatalogEventGroup    string
	CatalogEventConsumer string
}

// FeedEnabled reports whether catalog events should be published.
func (c AppConfig) FeedEnabled() bool { return len(c.KafkaBrokers) > 0 }

// NeedsRedis reports whether any configured component talks to Redis.
func (c AppConfig) NeedsRedis() bool {
	return c.SessionStore == "redis" || c.ReadRateLimit > 0 || c.FeedEnabled()
}

// Load reads an optional .env file, then the environment, applying defaults and validation.
func Load() (AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return AppConfig{}, fmt.Errorf("load .env: %w", err)
	}
	return fromEnv()
}

func fromEnv() (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddr:             getEnv("HTTP_ADDR", ":"+getEnv("PORT", "3000")),
		Production:           strings.EqualFold(getEnv("APP_ENV", "development"), "production"),
		DBPath:               getEnv("DB_PATH", "storefront.db"),
		AdminUsername:        os.Getenv("ADMIN_USERNAME"),
		AdminPassword:        os.Getenv("ADMIN_PASSWORD"),
		AdminToken:           os.Getenv("ADMIN_TOKEN"),
		SessionSecret:        getEnv("SESSION_SECRET", "storefront-dev-secret"),
		SessionStore:         strings.ToLower(getEnv("SESSION_STORE", "memory")),
		SessionTTL:           24 * time.Hour,
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		ReadRateWindow:       time.Second,
		KafkaBrokers:         splitCSV(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:           getEnv("KAFKA_TOPIC", "storefront-catalog-events"),
		CatalogEventStream:   getEnv("CATALOG_EVENT_STREAM", "storefront:catalog_events"),
		CatalogEventGroup:    getEnv("CATALOG_EVENT_GROUP", "storefront-relay-group"),
		CatalogEventConsumer: getEnv("CATALOG_EVENT_CONSUMER", "storefront-relay-1"),
	}

	if cfg.AdminUsername == "" || cfg.AdminPassword == "" || cfg.AdminToken == "" {
		return AppConfig{}, fmt.Errorf("ADMIN_USERNAME, ADMIN_PASSWORD and ADMIN_TOKEN must all be set")
	}
	if cfg.Production && os.Getenv("SESSION_SECRET") == "" {
		return AppConfig{}, fmt.Errorf("SESSION_SECRET must be set in production")
	}

	switch cfg.SessionStore {
	case "memory", "redis":
	default:
		return AppConfig{}, fmt.Errorf("SESSION_STORE must be memory or redis, got %q", cfg.SessionStore)
	}

	ttlHour, err := getEnvInt("SESSION_TTL_HOUR", int(cfg.SessionTTL.Hours()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid SESSION_TTL_HOUR: %w", err)
	}
	if ttlHour <= 0 {
		return AppConfig{}, fmt.Errorf("SESSION_TTL_HOUR must be > 0")
	}
	cfg.SessionTTL = time.Duration(ttlHour) * time.Hour

	cfg.CookieSecure, err = getEnvBool("COOKIE_SECURE", false)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid COOKIE_SECURE: %w", err)
	}

	cfg.RedisDB, err = getEnvInt("REDIS_DB", 0)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg.ReadRateLimit, err = getEnvInt("READ_RATE_LIMIT", 0)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid READ_RATE_LIMIT: %w", err)
	}
	if cfg.ReadRateLimit < 0 {
		return AppConfig{}, fmt.Errorf("READ_RATE_LIMIT must be >= 0")
	}

	windowSec, err := getEnvInt("READ_RATE_WINDOW_SEC", int(cfg.ReadRateWindow.Seconds()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid READ_RATE_WINDOW_SEC: %w", err)
	}
	if windowSec <= 0 {
		return AppConfig{}, fmt.Errorf("READ_RATE_WINDOW_SEC must be > 0")
	}
	cfg.ReadRateWindow = time.Duration(windowSec) * time.Second

	if cfg.FeedEnabled() {
		if cfg.KafkaTopic == "" {
			return AppConfig{}, fmt.Errorf("KAFKA_TOPIC must not be empty")
		}
		if cfg.CatalogEventStream == "" || cfg.CatalogEventGroup == "" || cfg.CatalogEventConsumer == "" {
			return AppConfig{}, fmt.Errorf("CATALOG_EVENT_STREAM, CATALOG_EVENT_GROUP and CATALOG_EVENT_CONSUMER must not be empty")
		}
	}

	return cfg, nil
}

// getEnv returns the trimmed value of key, or fallback when it is empty.
func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseBool(v)
}

// splitCSV parses a comma-separated list, dropping blanks.
func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
