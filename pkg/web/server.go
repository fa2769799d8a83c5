// Package web provides the collaborator-facing dashboard API: engine
// status and control over HTTP, live tracking results and annotated
// frames over websocket. The engine itself never writes to a display
// or storage; collaborators consume this surface on their own cadence.
package web

import (
	"fmt"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/focuslab/focustrack/internal/config"
	"github.com/focuslab/focustrack/internal/log"
	"github.com/focuslab/focustrack/pkg/engine"
	"github.com/focuslab/focustrack/pkg/hub"
)

// Server is the dashboard server.
type Server struct {
	app  *fiber.App
	port int

	engine *engine.Engine
	cfg    config.Config

	// Latest result for HTTP polling consumers.
	latest   engine.TrackingResult
	latestMu sync.RWMutex

	// Hubs for websocket fan-out.
	resultsHub *hub.Hub
	cameraHub  *hub.Hub
}

// NewServer creates the dashboard server around an engine.
func NewServer(e *engine.Engine, cfg config.Config) *Server {
	s := &Server{
		port:       cfg.Dashboard.Port,
		engine:     e,
		cfg:        cfg,
		resultsHub: hub.New("results"),
		cameraHub:  hub.New("camera"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "focustrack dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/result", s.handleResult)
	api.Get("/config", s.handleConfig)
	api.Post("/tracking/start", s.handleStartTracking)
	api.Post("/tracking/stop", s.handleStopTracking)
	api.Post("/calibration/start", s.handleStartCalibration)
	api.Post("/calibration/finish", s.handleFinishCalibration)
	api.Post("/camera/parameters", s.handleCameraParameters)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/results", websocket.New(s.handleResultsWS))
	app.Get("/ws/camera", websocket.New(s.handleCameraWS))

	s.app = app
	return s
}

// Start runs the hubs and serves until the listener fails.
func (s *Server) Start() error {
	go s.resultsHub.Run()
	go s.cameraHub.Run()

	log.Info("dashboard listening", "port", s.port)
	return s.app.Listen(fmt.Sprintf(":%d", s.port))
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("dashboard server error", "err", err)
		}
	}()
}

// Shutdown stops the HTTP server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// PublishResult records the latest tracking result and broadcasts it
// to websocket subscribers.
func (s *Server) PublishResult(r engine.TrackingResult) {
	s.latestMu.Lock()
	s.latest = r
	s.latestMu.Unlock()

	s.resultsHub.BroadcastJSON(r)
}

// PublishFrame broadcasts a JPEG-encoded annotated frame.
func (s *Server) PublishFrame(jpeg []byte) {
	s.cameraHub.BroadcastBinary(jpeg)
}
