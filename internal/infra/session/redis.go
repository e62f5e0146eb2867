package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"staybook/internal/domain/auth"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects and pings the server with a short timeout.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("session: redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// RedisStore resolves opaque session tokens stored as Prefix+token -> user id.
type RedisStore struct {
	Client redis.Cmdable
	Prefix string
}

func (s RedisStore) key(token auth.Token) string {
	return s.Prefix + string(token)
}

func (s RedisStore) Resolve(ctx context.Context, token auth.Token) (auth.Principal, error) {
	raw := strings.TrimSpace(string(token))
	if raw == "" {
		return auth.Principal{}, auth.ErrTokenRequired
	}
	userID, err := s.Client.Get(ctx, s.key(auth.Token(raw))).Result()
	if errors.Is(err, redis.Nil) {
		return auth.Principal{}, auth.ErrSessionNotFound
	}
	if err != nil {
		return auth.Principal{}, fmt.Errorf("session: redis get: %w", err)
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return auth.Principal{}, auth.ErrSessionNotFound
	}
	return auth.Principal{UserID: userID, Token: auth.Token(raw)}, nil
}

// Ping reports whether redis is reachable.
func (s RedisStore) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx).Err()
}

var _ auth.TokenResolver = RedisStore{}
