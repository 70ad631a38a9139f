package api

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/backlogpilot/backlogpilot/internal/health"
	"github.com/backlogpilot/backlogpilot/internal/metrics"
	"github.com/backlogpilot/backlogpilot/internal/requestid"
)

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	ListenAddr  string
	Auth        AuthConfig
	CORSOrigins string
	// ReadTimeout bounds how long a request may take end to end.
	// Zero means no limit.
	ReadTimeout time.Duration
}

// Server is the assistant's HTTP API.
type Server struct {
	app      *fiber.App
	handlers *Handlers
	logger   zerolog.Logger
	config   ServerConfig
}

// NewServer creates and configures the API server.
func NewServer(cfg ServerConfig, handlers *Handlers, checker *health.Checker, m *metrics.Metrics, logger zerolog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(logger),
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.ReadTimeout,
	})

	s := &Server{
		app:      app,
		handlers: handlers,
		logger:   logger.With().Str("component", "api").Logger(),
		config:   cfg,
	}

	app.Use(recover.New(recover.Config{EnableStackTrace: true}))

	app.Use(func(c *fiber.Ctx) error {
		_, reqID := requestid.New(c.Context())
		c.Set("X-Request-ID", reqID)
		c.Locals("request_id", reqID)
		return c.Next()
	})

	if cfg.CORSOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CORSOrigins,
			AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
			AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
		}))
	}

	app.Use(NewAuthMiddleware(cfg.Auth, logger))

	app.Use(func(c *fiber.Ctx) error {
		path := c.Path()
		if path == "/healthz" || path == "/readyz" || path == "/metrics" {
			return c.Next()
		}
		s.logger.Info().
			Str("method", c.Method()).
			Str("path", path).
			Str("ip", c.IP()).
			Msg("api request")
		return c.Next()
	})

	s.setupRoutes(checker, m)
	return s
}

func (s *Server) setupRoutes(checker *health.Checker, m *metrics.Metrics) {
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.app.Get("/readyz", func(c *fiber.Ctx) error {
		results := checker.RunAll(c.Context())
		ready := true
		for _, status := range results {
			if status == health.StatusDown {
				ready = false
			}
		}
		if !ready {
			return c.Status(fiber.StatusServiceUnavailable).
				JSON(fiber.Map{"status": "not_ready", "checks": results})
		}
		return c.JSON(fiber.Map{"status": "ready", "checks": results})
	})
	if m != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	v1 := s.app.Group("/api/v1")

	v1.Get("/projects", s.handlers.ListProjects)
	v1.Get("/projects/:key/ideas", s.handlers.ListIdeas)
	v1.Get("/projects/:key/versions", s.handlers.ListVersions)
	v1.Get("/projects/:key/sessions", s.handlers.ListSessions)

	v1.Post("/groom/epic", s.handlers.GroomEpic)
	v1.Post("/groom/stories", s.handlers.GroomStories)

	v1.Post("/epics", s.handlers.CreateEpic)
	v1.Post("/stories", s.handlers.CreateStory)
	v1.Post("/links", s.handlers.LinkIssues)
	v1.Post("/release-notes", s.handlers.ReleaseNotes)

	v1.Get("/sessions/:id", s.handlers.GetSession)

	v1.Get("/templates", s.handlers.ListTemplates)
	v1.Get("/templates/:name", s.handlers.GetTemplate)
	v1.Put("/templates/:name", s.handlers.PutTemplate)
	v1.Delete("/templates/:name", s.handlers.DeleteTemplate)
}

// Listen starts serving on the configured address, blocking until shutdown.
func (s *Server) Listen() error {
	s.logger.Info().Str("addr", s.config.ListenAddr).Msg("api server listening")
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the underlying Fiber app (for testing).
func (s *Server) App() *fiber.App {
	return s.app
}

// problemResponse writes an RFC 7807-style error body.
func problemResponse(c *fiber.Ctx, status int, typ, title, detail string) error {
	return c.Status(status).JSON(Problem{
		Type:   typ,
		Title:  title,
		Detail: detail,
		Status: status,
	})
}

func errorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		if fiberErr, ok := err.(*fiber.Error); ok {
			code = fiberErr.Code
		}
		logger.Error().Err(err).Str("path", c.Path()).Msg("unhandled api error")
		return problemResponse(c, code, "internal_error", "Internal Server Error", err.Error())
	}
}
