package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/auth"
)

var secret = []byte("test-secret")

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) auth.Token {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return auth.Token(s)
}

func TestJWTResolver(t *testing.T) {
	r := JWTResolver{Secret: secret}
	exp := time.Now().Add(time.Hour).Unix()

	cases := []struct {
		name   string
		claims jwt.MapClaims
		user   string
	}{
		{"sub", jwt.MapClaims{"sub": "u-1", "exp": exp}, "u-1"},
		{"userId", jwt.MapClaims{"userId": "u-2", "exp": exp}, "u-2"},
		{"numeric id", jwt.MapClaims{"id": float64(42), "exp": exp}, "42"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tok := sign(t, jwt.SigningMethodHS256, secret, tc.claims)
			p, err := r.Resolve(context.Background(), tok)
			require.NoError(t, err)
			assert.Equal(t, tc.user, p.UserID)
			assert.Equal(t, tok, p.Token)
		})
	}
}

func TestJWTResolverRejects(t *testing.T) {
	r := JWTResolver{Secret: secret}

	_, err := r.Resolve(context.Background(), "")
	require.ErrorIs(t, err, auth.ErrTokenRequired)

	expired := sign(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{"sub": "u-1", "exp": time.Now().Add(-time.Hour).Unix()})
	_, err = r.Resolve(context.Background(), expired)
	require.ErrorIs(t, err, auth.ErrSessionNotFound)

	wrongKey := sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "u-1"})
	_, err = r.Resolve(context.Background(), wrongKey)
	require.ErrorIs(t, err, auth.ErrSessionNotFound)

	wrongAlg := sign(t, jwt.SigningMethodHS512, secret, jwt.MapClaims{"sub": "u-1"})
	_, err = r.Resolve(context.Background(), wrongAlg)
	require.ErrorIs(t, err, auth.ErrSessionNotFound)

	noSubject := sign(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{"role": "guest"})
	_, err = r.Resolve(context.Background(), noSubject)
	require.ErrorIs(t, err, auth.ErrSessionNotFound)

	_, err = r.Resolve(context.Background(), "not-a-jwt")
	require.ErrorIs(t, err, auth.ErrSessionNotFound)
}

func TestRedisStoreRequiresToken(t *testing.T) {
	store := RedisStore{Client: redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), Prefix: "session:"}
	_, err := store.Resolve(context.Background(), " ")
	require.ErrorIs(t, err, auth.ErrTokenRequired)
	assert.Equal(t, "session:abc", store.key("abc"))
}

func TestRedisStoreUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer client.Close()
	store := RedisStore{Client: client, Prefix: "session:"}

	_, err := store.Resolve(context.Background(), "abc")
	require.Error(t, err)
	assert.NotErrorIs(t, err, auth.ErrSessionNotFound)
}
