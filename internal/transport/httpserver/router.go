// Package httpserver provides HTTP server and routing.
package httpserver

import (
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/template/html/v2"
	"go.uber.org/zap"

	"social-insights-service/internal/app/service"
	"social-insights-service/internal/metrics"
	"social-insights-service/internal/transport/httpserver/dto"
	"social-insights-service/internal/transport/httpserver/handler"
	"social-insights-service/internal/transport/httpserver/middleware"
	"social-insights-service/internal/validator"
	"social-insights-service/web"
)

const (
	eventsPath = "/api/v1/events"
	loginPath  = "/login"
)

// publicPaths are reachable without a session.
var publicPaths = []string{loginPath, "/signup", "/static", "/metrics", "/livez", "/readyz"}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port         int
	BodyLimit    int
	Debug        bool
	AppName      string
	CORSOrigins  string
	CookieName   string
	CookieSecure bool
	AllowSignup  bool
}

// Deps are the services the routes are served from.
type Deps struct {
	Analytics *service.AnalyticsService
	Assistant *service.AssistantService
	Sync      *service.SyncService
	Sessions  *service.SessionService
	Watcher   handler.RefreshNotifier
	Metrics   *metrics.Metrics
	Validator *validator.Validator
	Readiness []middleware.ReadinessProbe
	// Done ends open event streams on shutdown.
	Done <-chan struct{}
}

// Server wraps Fiber app with handlers.
type Server struct {
	App    *fiber.App
	Logger *zap.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(cfg ServerConfig, deps Deps, logger *zap.Logger) *Server {
	engine := html.NewFileSystem(http.FS(web.Templates()), ".html")
	engine.AddFunc("percent", formatPercent)
	engine.AddFunc("barWidth", barWidth)
	engine.AddFunc("hour", hourLabel)
	engine.AddFunc("mul100", func(v float64) float64 { return v * 100 })
	if cfg.Debug {
		engine.Reload(true)
	}

	appName := cfg.AppName
	if appName == "" {
		appName = "social-insights-service"
	}

	app := fiber.New(fiber.Config{
		AppName:      appName,
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: errorHandler(logger),
		Views:        engine,
	})

	// Health checks first so probes answer even under load.
	app.Use(middleware.NewHealthCheck(deps.Readiness...))

	app.Use(requestid.New())
	app.Use(middleware.Recover(logger))
	app.Use(middleware.Logger(logger))
	app.Use(middleware.Metrics(deps.Metrics))
	app.Use(middleware.CORS(cfg.CORSOrigins))
	app.Use(compress.New(compress.Config{
		// A compressed event stream is buffered until it ends.
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == eventsPath
		},
	}))

	app.Use("/static", filesystem.New(filesystem.Config{
		Root:   http.FS(web.Static()),
		MaxAge: 3600,
	}))
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	cookieName := cfg.CookieName
	if cookieName == "" {
		cookieName = "session"
	}
	app.Use(middleware.SessionGate(deps.Sessions, middleware.SessionConfig{
		CookieName:     cookieName,
		PublicPrefixes: publicPaths,
		LoginPath:      loginPath,
	}))

	registerRoutes(app, routeHandlers{
		analytics: handler.NewAnalyticsHandler(deps.Analytics, deps.Validator, logger),
		dashboard: handler.NewDashboardHandler(deps.Analytics, deps.Validator, logger),
		report:    handler.NewReportHandler(deps.Analytics, logger),
		assistant: handler.NewAssistantHandler(deps.Assistant, deps.Validator, logger),
		auth: handler.NewAuthHandler(deps.Sessions, deps.Validator, handler.CookieConfig{
			Name:   cookieName,
			Secure: cfg.CookieSecure,
		}, cfg.AllowSignup, logger),
		events: handler.NewEventsHandler(deps.Watcher, deps.Done, logger),
		admin:  handler.NewAdminHandler(deps.Sync, logger),
	})

	return &Server{
		App:    app,
		Logger: logger,
	}
}

type routeHandlers struct {
	analytics *handler.AnalyticsHandler
	dashboard *handler.DashboardHandler
	report    *handler.ReportHandler
	assistant *handler.AssistantHandler
	auth      *handler.AuthHandler
	events    *handler.EventsHandler
	admin     *handler.AdminHandler
}

// registerRoutes sets up the pages and API routes. Health checks and
// /metrics are registered in NewServer.
func registerRoutes(app *fiber.App, h routeHandlers) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/dashboard")
	})
	app.Get(loginPath, h.auth.LoginPage)
	app.Post(loginPath, h.auth.Login)
	app.Get("/signup", h.auth.SignupPage)
	app.Post("/signup", h.auth.Signup)
	app.Post("/logout", h.auth.Logout)

	app.Get("/dashboard", h.dashboard.Render)
	app.Get("/insights", h.dashboard.Insights)
	app.Get("/report", h.report.Render)

	v1 := app.Group("/api/v1")

	analytics := v1.Group("/analytics")
	analytics.Get("/summary", h.analytics.Summary)
	analytics.Get("/posts", h.analytics.Posts)
	analytics.Get("/insights", h.analytics.Insights)
	analytics.Get("/platforms", h.analytics.Platforms)
	analytics.Get("/content-types", h.analytics.ContentTypes)
	analytics.Get("/forecast", h.analytics.Forecast)
	analytics.Post("/refresh", h.analytics.Refresh)

	v1.Post("/assistant/ask", h.assistant.Ask)
	v1.Get("/events", h.events.Stream)

	admin := v1.Group("/admin")
	admin.Post("/sync", h.admin.SyncAll)
	admin.Post("/sync/:source", h.admin.SyncSource)
	admin.Get("/sources", h.admin.Sources)
}

// errorHandler logs by status: 404 at DEBUG, 4xx at WARN, 5xx at ERROR.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		errCode := "INTERNAL_ERROR"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			errCode = codeName(code)
		}

		switch {
		case code == fiber.StatusNotFound:
			logger.Debug("resource not found",
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
			)
		case code >= 500:
			logger.Error("server error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		default:
			logger.Warn("client error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		}

		msg := err.Error()
		if code >= 500 && fe == nil {
			msg = "internal server error"
		}

		return c.Status(code).JSON(dto.ErrorResponse{
			Error: msg,
			Code:  errCode,
		})
	}
}

func codeName(code int) string {
	switch code {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "BODY_TOO_LARGE"
	case fiber.StatusServiceUnavailable:
		return "UNAVAILABLE"
	default:
		if code >= 500 {
			return "INTERNAL_ERROR"
		}
		return "REQUEST_ERROR"
	}
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// barWidth maps an engagement percent to a bar width in [0, 100].
func barWidth(v float64) string {
	return fmt.Sprintf("%.0f", math.Max(0, math.Min(100, v)))
}

func hourLabel(h int) string {
	switch {
	case h == 0:
		return "12 AM"
	case h < 12:
		return fmt.Sprintf("%d AM", h)
	case h == 12:
		return "12 PM"
	default:
		return fmt.Sprintf("%d PM", h-12)
	}
}

// Start starts the HTTP server.
func (s *Server) Start(port int) error {
	s.Logger.Info("starting HTTP server", zap.Int("port", port))

	return s.App.Listen(fmt.Sprintf(":%d", port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	s.Logger.Info("shutting down HTTP server")

	return s.App.Shutdown()
}
