package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/focuslab/focustrack/pkg/hub"
)

// handleStatus returns the engine lifecycle snapshot.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.engine.GetStatus())
}

// handleResult returns the most recent tracking result.
func (s *Server) handleResult(c *fiber.Ctx) error {
	s.latestMu.RLock()
	defer s.latestMu.RUnlock()
	return c.JSON(s.latest)
}

// handleConfig returns the active configuration.
func (s *Server) handleConfig(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"camera":    s.cfg.Camera,
		"detector":  s.cfg.Detector,
		"tracking":  s.cfg.Tracking,
		"dashboard": s.cfg.Dashboard,
	})
}

func (s *Server) handleStartTracking(c *fiber.Ctx) error {
	s.engine.StartTracking()
	return c.JSON(s.engine.GetStatus())
}

func (s *Server) handleStopTracking(c *fiber.Ctx) error {
	s.engine.StopTracking()
	return c.JSON(s.engine.GetStatus())
}

func (s *Server) handleStartCalibration(c *fiber.Ctx) error {
	s.engine.StartCalibration()
	return c.JSON(fiber.Map{"calibrated": s.engine.IsCalibrated()})
}

func (s *Server) handleFinishCalibration(c *fiber.Ctx) error {
	s.engine.FinishCalibration()
	return c.JSON(fiber.Map{"calibrated": s.engine.IsCalibrated()})
}

// CameraParametersRequest updates the pinhole model at runtime.
type CameraParametersRequest struct {
	FocalLength      float64 `json:"focal_length"`
	AverageFaceWidth float64 `json:"average_face_width_cm"`
}

func (s *Server) handleCameraParameters(c *fiber.Ctx) error {
	var req CameraParametersRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.FocalLength <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "focal_length must be positive",
		})
	}

	s.engine.SetCameraParameters(req.FocalLength, req.AverageFaceWidth)
	return c.JSON(fiber.Map{"focal_length": req.FocalLength})
}

// handleResultsWS streams tracking results as JSON messages.
func (s *Server) handleResultsWS(c *websocket.Conn) {
	client := hub.NewClient(s.resultsHub, c)
	client.Run()
}

// handleCameraWS streams annotated frames as binary JPEG messages.
func (s *Server) handleCameraWS(c *websocket.Conn) {
	client := hub.NewClient(s.cameraHub, c)
	client.Run()
}
