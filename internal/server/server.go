package server

import (
	"time"

	"notefiber-editor-be/internal/bootstrap"
	"notefiber-editor-be/internal/config"
	"notefiber-editor-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "notefiber-editor",
		BodyLimit:             10 * 1024 * 1024, // lexical documents with inline images get large
		ReadTimeout:           30 * time.Second,
		DisableStartupMessage: cfg.App.Environment == "production",
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, DELETE, OPTIONS",
	}))
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/healthz"
	})))
	app.Use(serverutils.ErrorHandlerMiddleware(container.Logger))

	app.Get("/healthz", healthHandler(container.Editor, container.WebSocketHub))

	api := app.Group("/api")
	container.EditorController.RegisterRoutes(api)
	container.EditorSocketHandler.RegisterRoutes(api)

	return &Server{app: app, cfg: cfg, container: container}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	s.container.Logger.Info("Server", "Listening", map[string]interface{}{
		"port":        s.cfg.App.Port,
		"instance_id": s.cfg.App.InstanceID,
	})
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown() error {
	return s.app.ShutdownWithTimeout(5 * time.Second)
}
