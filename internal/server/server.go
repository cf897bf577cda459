package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/gofiber/template/html/v3"

	"sovdash/internal/config"
	applog "sovdash/internal/logger"
	"sovdash/internal/middleware"
	"sovdash/views"
)

// Server wraps the Fiber app and configuration.
type Server struct {
	App *fiber.App
	Cfg *config.Config
}

// New creates a new server with middleware configured. limiterStorage may be
// nil to keep rate limit counters in process memory.
func New(cfg *config.Config, limiterStorage fiber.Storage) (*Server, error) {
	// Setup template engine
	engine := html.NewFileSystem(http.FS(views.FS), ".html")
	if err := engine.Load(); err != nil {
		return nil, err
	}

	log := applog.For("server")

	// Initialize Fiber
	app := fiber.New(fiber.Config{
		AppName:     cfg.AppName,
		Views:       engine,
		ViewsLayout: "layouts/main",
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal Server Error"

			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
				message = e.Message
			}
			if code >= fiber.StatusInternalServerError {
				middleware.Log(c, log).WithError(err).WithField("path", c.Path()).Error("Request failed")
			}

			if strings.HasPrefix(c.Path(), "/api/") {
				return c.Status(code).JSON(fiber.Map{
					"status": "error",
					"error":  message,
				})
			}
			return c.Status(code).Render("error", fiber.Map{
				"Title":      "Error",
				"Message":    message,
				"AppName":    cfg.AppName,
				"AppVersion": cfg.AppVersion,
			})
		},
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(applog.For("http")))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${ip} ${respHeader:X-Request-ID} ${status} - ${method} ${path} ${latency}\n",
	}))

	// CORS middleware
	corsOrigins := cfg.BaseURL
	if cfg.CORSOrigins != "" {
		corsOrigins = cfg.CORSOrigins
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Split(corsOrigins, ","),
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		MaxAge:       86400,
	}))

	// Rate limiting middleware, per IP
	if cfg.RateLimitMax > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimitMax,
			Expiration: 1 * time.Minute,
			Storage:    limiterStorage,
			KeyGenerator: func(c fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"status": "error",
					"error":  "Rate limit exceeded. Please try again later.",
				})
			},
		}))
	}

	return &Server{
		App: app,
		Cfg: cfg,
	}, nil
}

// Start starts the server on the configured address.
func (s *Server) Start() error {
	return s.App.Listen(s.Cfg.ServerAddr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.App.Shutdown()
}
