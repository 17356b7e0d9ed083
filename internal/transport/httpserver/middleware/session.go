package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"social-insights-service/internal/domain"
	"social-insights-service/internal/transport/httpserver/dto"
)

const sessionKey = "session"

// SessionResolver maps a session token to the session it belongs to.
type SessionResolver interface {
	Resolve(token string) domain.Session
}

// SessionConfig configures SessionGate.
type SessionConfig struct {
	CookieName string
	// PublicPrefixes are reachable without logging in.
	PublicPrefixes []string
	LoginPath      string
}

// SessionGate resolves the session cookie for every request and stores it
// in the request locals. Anonymous visitors are redirected to the login page,
// or get 401 on API paths.
func SessionGate(resolver SessionResolver, cfg SessionConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := resolver.Resolve(c.Cookies(cfg.CookieName))
		c.Locals(sessionKey, session)

		if session.IsAuthenticated() || isPublic(c.Path(), cfg.PublicPrefixes) {
			return c.Next()
		}

		if strings.HasPrefix(c.Path(), "/api/") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: "authentication required",
				Code:  "UNAUTHENTICATED",
			})
		}

		return c.Redirect(cfg.LoginPath, fiber.StatusSeeOther)
	}
}

// SessionFrom returns the session stored by SessionGate, or the anonymous one.
func SessionFrom(c *fiber.Ctx) domain.Session {
	if s, ok := c.Locals(sessionKey).(domain.Session); ok {
		return s
	}

	return domain.Anonymous()
}

func isPublic(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, strings.TrimSuffix(p, "/")+"/") {
			return true
		}
	}

	return false
}
