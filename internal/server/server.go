// Package server assembles the Fiber application: middleware, API routes,
// metrics and the embedded client.
package server

import (
	"github.com/developia-II/tree-rater-backend/internal/config"
	"github.com/developia-II/tree-rater-backend/internal/handlers"
	"github.com/developia-II/tree-rater-backend/internal/middleware"
	"github.com/developia-II/tree-rater-backend/internal/web"
	"github.com/developia-II/tree-rater-backend/pkg/logger"
	"github.com/developia-II/tree-rater-backend/pkg/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// multipartOverhead leaves room for boundaries and part headers so the
// handler, not the transport, decides on oversized files near the limit.
const multipartOverhead = 64 * 1024

type Options struct {
	Config  *config.Config
	Handler *handlers.Handler
	Log     logger.Logger
	Metrics *metrics.Manager
	// AccessLog enables the request logger middleware.
	AccessLog bool
}

func New(opts Options) *fiber.App {
	cfg := opts.Config
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}

	app := fiber.New(fiber.Config{
		AppName:      "tree-rater",
		ErrorHandler: handlers.NewErrorHandler(cfg.Production(), log.Named("http"), cfg.MaxUploadMB()),
		BodyLimit:    int(cfg.MaxUploadBytes) + multipartOverhead,
		ProxyHeader:  cfg.ProxyHeader,
	})

	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(fiberlogger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigin(),
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST",
	}))

	h := opts.Handler
	app.Get("/health", h.Health)
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	api := app.Group("/api")
	api.Post("/upload", middleware.UploadLimiter(middleware.RateLimitConfig{
		Max:     cfg.RateLimitMax,
		Window:  cfg.RateLimitWindow,
		Log:     log.Named("limiter"),
		Metrics: m,
	}), h.Upload)
	api.Get("/top-trees", h.TopTrees)
	api.Get("/trees/:id", h.GetTree)
	api.Get("/images/:id", h.GetImage)

	app.Use("/", filesystem.New(filesystem.Config{
		Root:  web.FS(),
		Index: "index.html",
	}))

	return app
}
