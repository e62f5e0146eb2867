package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "http://localhost:3030/api", cfg.BackendURL)
	assert.Equal(t, 10*time.Second, cfg.BackendTimeout)
	assert.Equal(t, 2*time.Second, cfg.RedirectDelay)
	assert.Equal(t, int64(5000), cfg.CleaningFeeCents)
	assert.Equal(t, int64(2500), cfg.ServiceFeeCents)
	assert.Equal(t, SessionModeJWT, cfg.SessionMode)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("SESSION_MODE", "redis")
	t.Setenv("BACKEND_URL", "https://api.example.com/api/")
	t.Setenv("CLEANING_FEE", "60.5")
	t.Setenv("REDIRECT_DELAY", "500ms")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")
	t.Setenv("REDIS_DB", "3")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/api", cfg.BackendURL)
	assert.Equal(t, int64(6050), cfg.CleaningFeeCents)
	assert.Equal(t, 500*time.Millisecond, cfg.RedirectDelay)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, SessionModeRedis, cfg.SessionMode)
}

func TestFromEnvWithoutSessionSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, SessionModeJWT, cfg.SessionMode)
	require.Error(t, cfg.ValidateServe())
}

func TestValidateServe(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"jwt with secret", Config{SessionMode: SessionModeJWT, JWTSecret: "s"}, true},
		{"jwt without secret", Config{SessionMode: SessionModeJWT}, false},
		{"redis with addr", Config{SessionMode: SessionModeRedis, RedisAddr: "localhost:6379"}, true},
		{"redis without addr", Config{SessionMode: SessionModeRedis}, false},
		{"unknown mode", Config{SessionMode: "cookie", JWTSecret: "s"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.ValidateServe()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestFromEnvErrors(t *testing.T) {
	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s")
		t.Setenv("BACKEND_TIMEOUT", "soon")
		_, err := FromEnv()
		require.Error(t, err)
	})
	t.Run("negative fee", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s")
		t.Setenv("SERVICE_FEE", "-1")
		_, err := FromEnv()
		require.Error(t, err)
	})
}
