package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setAdmin(t *testing.T) {
	t.Setenv("ADMIN_USERNAME", "root")
	t.Setenv("ADMIN_PASSWORD", " spaced pass ")
	t.Setenv("ADMIN_TOKEN", "tok")
}

func TestFromEnv_Defaults(t *testing.T) {
	setAdmin(t)

	cfg, err := fromEnv()
	require.NoError(t, err)
	require.Equal(t, ":3000", cfg.HTTPAddr)
	require.False(t, cfg.Production)
	require.Equal(t, "memory", cfg.SessionStore)
	require.Equal(t, 24*time.Hour, cfg.SessionTTL)
	require.Zero(t, cfg.ReadRateLimit)
	require.False(t, cfg.FeedEnabled())
	require.False(t, cfg.NeedsRedis())
	// credentials are compared verbatim, whitespace included
	require.Equal(t, " spaced pass ", cfg.AdminPassword)
}

func TestFromEnv_Overrides(t *testing.T) {
	setAdmin(t)
	t.Setenv("PORT", "8081")
	t.Setenv("SESSION_STORE", "Redis")
	t.Setenv("SESSION_TTL_HOUR", "2")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("READ_RATE_LIMIT", "50")
	t.Setenv("READ_RATE_WINDOW_SEC", "10")
	t.Setenv("KAFKA_BROKERS", "k1:9092, ,k2:9092")

	cfg, err := fromEnv()
	require.NoError(t, err)
	require.Equal(t, ":8081", cfg.HTTPAddr)
	require.Equal(t, "redis", cfg.SessionStore)
	require.Equal(t, 2*time.Hour, cfg.SessionTTL)
	require.True(t, cfg.CookieSecure)
	require.Equal(t, 50, cfg.ReadRateLimit)
	require.Equal(t, 10*time.Second, cfg.ReadRateWindow)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	require.True(t, cfg.NeedsRedis())
}

func TestFromEnv_HTTPAddrWins(t *testing.T) {
	setAdmin(t)
	t.Setenv("PORT", "8081")
	t.Setenv("HTTP_ADDR", "127.0.0.1:9000")

	cfg, err := fromEnv()
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9000", cfg.HTTPAddr)
}

func TestFromEnv_Errors(t *testing.T) {
	cases := map[string]map[string]string{
		"missing token":        {"ADMIN_TOKEN": ""},
		"bad store":            {"SESSION_STORE": "etcd"},
		"zero ttl":             {"SESSION_TTL_HOUR": "0"},
		"bad ttl":              {"SESSION_TTL_HOUR": "soon"},
		"negative rate":        {"READ_RATE_LIMIT": "-1"},
		"bad window":           {"READ_RATE_WINDOW_SEC": "0"},
		"bad bool":             {"COOKIE_SECURE": "maybe"},
		"production no secret": {"APP_ENV": "production", "SESSION_SECRET": ""},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			setAdmin(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := fromEnv()
			require.Error(t, err)
		})
	}
}
