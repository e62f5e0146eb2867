package auth

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrTokenRequired   = errors.New("auth: token is required")
	ErrSessionNotFound = errors.New("auth: session not found")
)

type Token string

// Principal is the authenticated caller attached to a request context.
type Principal struct {
	UserID string
	Token  Token
}

// Accessor yields the current user's id, or false when nobody is logged in.
type Accessor interface {
	UserID(ctx context.Context) (string, bool)
}

// TokenResolver maps a bearer token to a principal.
type TokenResolver interface {
	Resolve(ctx context.Context, token Token) (Principal, error)
}

type principalKey struct{}

func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	if !ok || strings.TrimSpace(p.UserID) == "" {
		return Principal{}, false
	}
	return p, true
}

// ContextAccessor reads the principal placed on the context by the HTTP layer.
type ContextAccessor struct{}

func (ContextAccessor) UserID(ctx context.Context) (string, bool) {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return "", false
	}
	return p.UserID, true
}

// StaticAccessor always reports the same user; an empty value means logged out.
type StaticAccessor string

func (s StaticAccessor) UserID(context.Context) (string, bool) {
	id := strings.TrimSpace(string(s))
	return id, id != ""
}

var (
	_ Accessor = ContextAccessor{}
	_ Accessor = StaticAccessor("")
)
