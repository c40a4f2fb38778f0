package api

import (
	"fmt"
	"log"

	"sltp-engine/internal/engine"
	"sltp-engine/internal/storage"
	"sltp-engine/pkg/types"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
)

// Server represents the API server
type Server struct {
	app     *fiber.App
	handler *Handler
	config  types.APIConfig
}

// NewServer creates a new API server
func NewServer(eng *engine.Engine, store *storage.MemoryStorage, config types.APIConfig) *Server {
	app := fiber.New(fiber.Config{
		AppName: "SLTP Engine API",
	})

	// Middleware
	if config.EnableCORS {
		app.Use(cors.New(cors.Config{
			AllowOrigins: "*",
			AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
			AllowHeaders: "Origin, Content-Type, Accept",
		}))
	}

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	handler := NewHandler(eng, store, config)

	return &Server{
		app:     app,
		handler: handler,
		config:  config,
	}
}

// SetupRoutes configures all API routes
func (s *Server) SetupRoutes() {
	api := s.app.Group("/api")

	// Health check
	api.Get("/health", s.handler.Health)

	// Symbols
	api.Get("/symbols", s.handler.GetSymbols)

	// Strategy catalog
	api.Get("/strategies", s.handler.GetStrategies)

	// Level analysis
	api.Get("/levels/:symbol", s.handler.GetLevels)
	api.Get("/chart-levels/:symbol", s.handler.GetChartLevels)
	api.Get("/weekly-map/:symbol", s.handler.GetWeeklyMap)

	// Pattern detection
	api.Get("/patterns/:symbol", s.handler.GetPatterns)

	// Stop loss / take profit calculation
	api.Get("/sltp/:symbol", s.handler.GetSLTP)

	// Trading sessions
	api.Get("/sessions", s.handler.GetSessions)

	// WebSocket for real-time level updates
	if s.config.WebSocketEnabled {
		api.Get("/stream/:symbol", websocket.New(s.handler.WebSocketHandler))
	}

	// 404 handler for everything else
	s.app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).JSON(fiber.Map{
			"error": "Not found",
			"path":  c.Path(),
		})
	})
}

// Start starts the API server
func (s *Server) Start() error {
	s.SetupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	log.Printf("🌐 API Server starting on http://%s", addr)
	log.Printf("🎯 Levels API: http://%s/api/levels/:symbol", addr)
	log.Printf("📡 WebSocket: ws://%s/api/stream/:symbol", addr)

	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
