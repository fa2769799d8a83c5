// Package config provides configuration management for focustrack.
// Settings are read from a YAML file, then overridden by environment
// variables prefixed with FOCUSTRACK_.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the full application configuration.
type Config struct {
	Camera    CameraConfig    `yaml:"camera"`
	Detector  DetectorConfig  `yaml:"detector"`
	Tracking  TrackingConfig  `yaml:"tracking"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	LogLevel  string          `yaml:"log_level"`
}

// CameraConfig contains capture device settings.
type CameraConfig struct {
	Index  int `yaml:"index" json:"index"`
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
	FPS    int `yaml:"fps" json:"fps"`
}

// DetectorConfig contains face detection backend settings.
type DetectorConfig struct {
	// Backend selects the detection backend: "auto", "classical" or "learned".
	Backend string `yaml:"backend" json:"backend"`

	// FaceCascadePath is the Haar cascade file for the classical backend.
	FaceCascadePath string `yaml:"face_cascade_path" json:"face_cascade_path"`

	// EyeCascadePath is the Haar cascade file for eye detection.
	EyeCascadePath string `yaml:"eye_cascade_path" json:"eye_cascade_path"`

	// ModelPath is the YuNet ONNX model for the learned backend.
	ModelPath string `yaml:"model_path" json:"model_path"`
}

// TrackingConfig contains gaze and distance estimation parameters.
type TrackingConfig struct {
	// FocalLength is the camera focal length in pixels.
	FocalLength float64 `yaml:"focal_length" json:"focal_length"`

	// AverageFaceWidthCM is the assumed real face width for the
	// pinhole distance model.
	AverageFaceWidthCM float64 `yaml:"average_face_width_cm" json:"average_face_width_cm"`

	// MovementThresholdPX is the face-center displacement in pixels
	// above which head movement is reported.
	MovementThresholdPX float64 `yaml:"movement_threshold_px" json:"movement_threshold_px"`

	// FocusThresholdDeg is the gaze angle magnitude under which the
	// eyes count as focused.
	FocusThresholdDeg float64 `yaml:"focus_threshold_deg" json:"focus_threshold_deg"`
}

// DashboardConfig contains the collaborator-facing HTTP server settings.
type DashboardConfig struct {
	Port    int  `yaml:"port" json:"port"`
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// Default returns the recommended configuration.
func Default() Config {
	return Config{
		Camera: CameraConfig{
			Index:  0,
			Width:  640,
			Height: 480,
			FPS:    30,
		},
		Detector: DetectorConfig{
			Backend:         "auto",
			FaceCascadePath: "assets/models/haarcascade_frontalface_default.xml",
			EyeCascadePath:  "assets/models/haarcascade_eye.xml",
			ModelPath:       "assets/models/face_detection_yunet.onnx",
		},
		Tracking: TrackingConfig{
			FocalLength:         2000.0,
			AverageFaceWidthCM:  15.0,
			MovementThresholdPX: 10.0,
			FocusThresholdDeg:   10.0,
		},
		Dashboard: DashboardConfig{
			Port:    8090,
			Enabled: true,
		},
		LogLevel: "info",
	}
}

// Load reads configuration from a YAML file and applies env var overrides.
// A missing file is not an error: defaults plus env overrides are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, err
	}

	cfg.applyEnvOverrides()
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v, ok := envInt("FOCUSTRACK_CAMERA_INDEX"); ok {
		c.Camera.Index = v
	}
	if v, ok := envInt("FOCUSTRACK_CAMERA_WIDTH"); ok {
		c.Camera.Width = v
	}
	if v, ok := envInt("FOCUSTRACK_CAMERA_HEIGHT"); ok {
		c.Camera.Height = v
	}
	if v, ok := envInt("FOCUSTRACK_CAMERA_FPS"); ok {
		c.Camera.FPS = v
	}
	if v := os.Getenv("FOCUSTRACK_DETECTOR_BACKEND"); v != "" {
		c.Detector.Backend = v
	}
	if v := os.Getenv("FOCUSTRACK_FACE_CASCADE_PATH"); v != "" {
		c.Detector.FaceCascadePath = v
	}
	if v := os.Getenv("FOCUSTRACK_EYE_CASCADE_PATH"); v != "" {
		c.Detector.EyeCascadePath = v
	}
	if v := os.Getenv("FOCUSTRACK_MODEL_PATH"); v != "" {
		c.Detector.ModelPath = v
	}
	if v, ok := envFloat("FOCUSTRACK_FOCAL_LENGTH"); ok {
		c.Tracking.FocalLength = v
	}
	if v, ok := envFloat("FOCUSTRACK_FACE_WIDTH_CM"); ok {
		c.Tracking.AverageFaceWidthCM = v
	}
	if v, ok := envFloat("FOCUSTRACK_MOVEMENT_THRESHOLD"); ok {
		c.Tracking.MovementThresholdPX = v
	}
	if v, ok := envFloat("FOCUSTRACK_FOCUS_THRESHOLD"); ok {
		c.Tracking.FocusThresholdDeg = v
	}
	if v, ok := envInt("FOCUSTRACK_DASHBOARD_PORT"); ok {
		c.Dashboard.Port = v
	}
	if v := os.Getenv("FOCUSTRACK_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) setDefaults() {
	def := Default()
	if c.Camera.Width <= 0 {
		c.Camera.Width = def.Camera.Width
	}
	if c.Camera.Height <= 0 {
		c.Camera.Height = def.Camera.Height
	}
	if c.Camera.FPS <= 0 {
		c.Camera.FPS = def.Camera.FPS
	}
	if c.Detector.Backend == "" {
		c.Detector.Backend = def.Detector.Backend
	}
	if c.Tracking.FocalLength <= 0 {
		c.Tracking.FocalLength = def.Tracking.FocalLength
	}
	if c.Tracking.AverageFaceWidthCM <= 0 {
		c.Tracking.AverageFaceWidthCM = def.Tracking.AverageFaceWidthCM
	}
	if c.Tracking.MovementThresholdPX <= 0 {
		c.Tracking.MovementThresholdPX = def.Tracking.MovementThresholdPX
	}
	if c.Tracking.FocusThresholdDeg <= 0 {
		c.Tracking.FocusThresholdDeg = def.Tracking.FocusThresholdDeg
	}
	if c.Dashboard.Port <= 0 {
		c.Dashboard.Port = def.Dashboard.Port
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

// Validate checks that configured values are usable.
func (c *Config) Validate() error {
	if c.Camera.Index < 0 {
		return fmt.Errorf("camera index must be >= 0, got %d", c.Camera.Index)
	}
	switch c.Detector.Backend {
	case "auto", "classical", "learned":
	default:
		return fmt.Errorf("detector backend must be auto, classical or learned, got %q", c.Detector.Backend)
	}
	return nil
}

// Save writes the current configuration to a file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return i, true
}

func envFloat(key string) (float64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
