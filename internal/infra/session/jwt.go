package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"staybook/internal/domain/auth"
)

// userClaims are checked in this order for the caller's id.
var userClaims = []string{"sub", "userId", "id"}

// JWTResolver validates HS256 tokens issued by the rental backend.
type JWTResolver struct {
	Secret []byte
	Leeway time.Duration
}

func (r JWTResolver) Resolve(ctx context.Context, token auth.Token) (auth.Principal, error) {
	raw := strings.TrimSpace(string(token))
	if raw == "" {
		return auth.Principal{}, auth.ErrTokenRequired
	}
	if len(r.Secret) == 0 {
		return auth.Principal{}, errors.New("session: jwt secret not configured")
	}
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return r.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithLeeway(r.Leeway))
	if err != nil || !parsed.Valid {
		return auth.Principal{}, fmt.Errorf("%w: %v", auth.ErrSessionNotFound, err)
	}
	userID := userFromClaims(claims)
	if userID == "" {
		return auth.Principal{}, fmt.Errorf("%w: token has no subject", auth.ErrSessionNotFound)
	}
	return auth.Principal{UserID: userID, Token: auth.Token(raw)}, nil
}

func userFromClaims(claims jwt.MapClaims) string {
	for _, name := range userClaims {
		switch v := claims[name].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

var _ auth.TokenResolver = JWTResolver{}
