package ginserver

import (
	"errors"
	"log/slog"
	"strings"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/domain/auth"
)

// AuthMiddleware resolves the bearer token, when present, and stores the
// principal on the request context. Anonymous requests pass through; the
// application handlers decide whether a session is required.
type AuthMiddleware struct {
	Resolver auth.TokenResolver
	Logger   *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Resolver == nil {
		c.Next()
		return
	}
	p, err := m.Resolver.Resolve(c.Request.Context(), auth.Token(token))
	if err != nil {
		if !errors.Is(err, auth.ErrSessionNotFound) && m.Logger != nil {
			m.Logger.Warn("token resolution failed", "error", err)
		} else if m.Logger != nil {
			m.Logger.Debug("token rejected", "error", err)
		}
		c.Next()
		return
	}
	c.Request = c.Request.WithContext(auth.ContextWithPrincipal(c.Request.Context(), p))
	c.Next()
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
