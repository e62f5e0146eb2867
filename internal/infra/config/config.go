package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SessionModeJWT   = "jwt"
	SessionModeRedis = "redis"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env              string
	LogLevel         string
	HTTPAddr         string
	BackendURL       string
	BackendTimeout   time.Duration
	PropertyCacheTTL time.Duration
	CleaningFeeCents int64
	ServiceFeeCents  int64
	RedirectDelay    time.Duration
	SessionMode      string
	JWTSecret        string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	RedisPrefix      string
	KafkaBrokers     []string
	KafkaTopic       string
}

// Load reads an optional .env file and parses configuration from the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv parses configuration from the current environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		Env:           getEnv("APP_ENV", "dev"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		BackendURL:    strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:3030/api"), "/"),
		SessionMode:   strings.ToLower(getEnv("SESSION_MODE", SessionModeJWT)),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisPrefix:   getEnv("REDIS_SESSION_PREFIX", "session:"),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "bookings.submitted"),
	}
	brokers := getEnv("KAFKA_BROKERS", "")
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
		}
	}

	var err error
	if cfg.BackendTimeout, err = parseDurationEnv("BACKEND_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.PropertyCacheTTL, err = parseDurationEnv("PROPERTY_CACHE_TTL", time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.RedirectDelay, err = parseDurationEnv("REDIRECT_DELAY", 2*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.CleaningFeeCents, err = parseCentsEnv("CLEANING_FEE", 5000); err != nil {
		return Config{}, err
	}
	if cfg.ServiceFeeCents, err = parseCentsEnv("SERVICE_FEE", 2500); err != nil {
		return Config{}, err
	}
	if cfg.RedisDB, err = parseIntEnv("REDIS_DB", 0); err != nil {
		return Config{}, err
	}

	if cfg.BackendURL == "" {
		return Config{}, fmt.Errorf("BACKEND_URL is required")
	}
	return cfg, nil
}

// ValidateServe checks the settings only the HTTP service needs: the session
// mode and its credentials. The CLI never resolves tokens and skips it.
func (c Config) ValidateServe() error {
	switch c.SessionMode {
	case SessionModeJWT:
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when SESSION_MODE=%s", SessionModeJWT)
		}
	case SessionModeRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when SESSION_MODE=%s", SessionModeRedis)
		}
	default:
		return fmt.Errorf("invalid SESSION_MODE %q", c.SessionMode)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s duration: must not be negative", key)
	}
	return d, nil
}

func parseIntEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer: %w", key, err)
	}
	return n, nil
}

// parseCentsEnv reads a major-unit amount such as "50" or "12.5" and returns cents.
func parseCentsEnv(key string, def int64) (int64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s amount: %w", key, err)
	}
	if f < 0 {
		return 0, fmt.Errorf("invalid %s amount: must not be negative", key)
	}
	return int64(f*100 + 0.5), nil
}
