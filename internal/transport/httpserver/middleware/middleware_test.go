package middleware

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"social-insights-service/internal/domain"
	"social-insights-service/internal/metrics"
)

type tokenResolver map[string]domain.Session

func (r tokenResolver) Resolve(token string) domain.Session {
	if s, ok := r[token]; ok {
		return s
	}

	return domain.Anonymous()
}

func newGatedApp() *fiber.App {
	app := fiber.New()
	app.Use(SessionGate(tokenResolver{
		"good": {State: domain.SessionAuthenticated, UserID: "u1", Email: "ana@example.com"},
	}, SessionConfig{
		CookieName:     "session",
		PublicPrefixes: []string{"/login", "/static"},
		LoginPath:      "/login",
	}))

	app.Get("/dashboard", func(c *fiber.Ctx) error {
		return c.SendString(SessionFrom(c).Email)
	})
	app.Get("/api/v1/analytics/summary", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/login", func(c *fiber.Ctx) error {
		return c.SendString(string(SessionFrom(c).State))
	})
	app.Get("/static/app.css", func(c *fiber.Ctx) error {
		return c.SendString("css")
	})

	return app
}

func TestSessionGate(t *testing.T) {
	app := newGatedApp()

	tests := []struct {
		name     string
		path     string
		cookie   string
		status   int
		location string
	}{
		{name: "anonymous page redirects", path: "/dashboard", status: fiber.StatusSeeOther, location: "/login"},
		{name: "anonymous api is 401", path: "/api/v1/analytics/summary", status: fiber.StatusUnauthorized},
		{name: "invalid token is anonymous", path: "/dashboard", cookie: "forged", status: fiber.StatusSeeOther, location: "/login"},
		{name: "authenticated page", path: "/dashboard", cookie: "good", status: fiber.StatusOK},
		{name: "authenticated api", path: "/api/v1/analytics/summary", cookie: "good", status: fiber.StatusOK},
		{name: "login is public", path: "/login", status: fiber.StatusOK},
		{name: "static is public", path: "/static/app.css", status: fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, tt.path, nil)
			if tt.cookie != "" {
				req.Header.Set("Cookie", "session="+tt.cookie)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.location != "" {
				assert.Equal(t, tt.location, resp.Header.Get("Location"))
			}
		})
	}
}

func TestSessionGate_PrefixIsNotSubstring(t *testing.T) {
	assert.True(t, isPublic("/login", []string{"/login"}))
	assert.True(t, isPublic("/static/css/app.css", []string{"/static"}))
	assert.False(t, isPublic("/loginx", []string{"/login"}))
}

func TestHealthCheck(t *testing.T) {
	failing := false
	app := fiber.New()
	app.Use(NewHealthCheck(func(context.Context) error {
		if failing {
			return errors.New("db down")
		}
		return nil
	}))

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/readyz", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	failing = true
	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/readyz", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/livez", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRecover(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	app := fiber.New()
	app.Use(requestid.New())
	app.Use(Recover(zap.New(core)))
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("boom")
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/boom", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
	assert.NotEmpty(t, logs.All()[0].ContextMap()["request_id"])
}

func TestLogger_LevelsByStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	app := fiber.New()
	app.Use(Logger(zap.New(core)))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/bad", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusBadRequest) })

	_, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ok", nil))
	require.NoError(t, err)
	_, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/bad", nil))
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("request completed").Len())
	assert.Equal(t, 1, logs.FilterMessage("request error").Len())
}

func TestMetrics(t *testing.T) {
	m := metrics.New()
	app := fiber.New()
	app.Use(Metrics(m))
	app.Get("/api/v1/admin/sync/:source", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusAccepted) })

	_, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/admin/sync/youtube", nil))
	require.NoError(t, err)

	got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/v1/admin/sync/:source", "202"))
	assert.InDelta(t, 1, got, 0)
}
