// Package engine orchestrates capture, face detection, gaze estimation
// and movement detection into a per-frame tracking result.
package engine

import (
	"image"
	"math"
	"sync"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/focuslab/focustrack/internal/log"
	"github.com/focuslab/focustrack/pkg/capture"
	"github.com/focuslab/focustrack/pkg/detect"
	"github.com/focuslab/focustrack/pkg/gaze"
)

// faceConfidence is the constant confidence reported when a face is
// present. It is a placeholder, not a derived probability.
const faceConfidence = 0.8

// State is the engine lifecycle state.
type State int

const (
	// StateIdle means the camera has not been started.
	StateIdle State = iota
	// StateReady means the camera is running but tracking is off.
	StateReady
	// StateTracking means the engine is actively producing results.
	StateTracking
	// StateShutdown is terminal: the camera is released and no
	// further operations are valid.
	StateShutdown
)

// String returns the state name used in status output.
func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateTracking:
		return "tracking"
	case StateShutdown:
		return "shutdown"
	default:
		return "idle"
	}
}

// Params holds the camera-model and movement parameters.
type Params struct {
	// FocalLength is the camera focal length in pixels.
	FocalLength float64

	// AverageFaceWidthCM is the assumed real face width for the
	// pinhole distance model.
	AverageFaceWidthCM float64

	// MovementThresholdPX is the face-center displacement above which
	// head movement is reported.
	MovementThresholdPX float64
}

// DefaultParams returns the recommended parameters.
func DefaultParams() Params {
	return Params{
		FocalLength:         2000.0,
		AverageFaceWidthCM:  15.0,
		MovementThresholdPX: 10.0,
	}
}

// Status is a snapshot of engine state for collaborators.
type Status struct {
	State      string `json:"state"`
	SessionID  string `json:"session_id"`
	Backend    string `json:"backend"`
	Calibrated bool   `json:"calibrated"`
	Frames     int64  `json:"frames_processed"`
}

// Engine owns all cross-frame tracking state. All mutation happens
// through its methods; the per-frame cycle is expected to run on a
// single worker goroutine, with collaborators reading only the result
// values handed to them.
type Engine struct {
	mu sync.Mutex

	source   *capture.Source
	detector *detect.FaceDetector
	eyes     *gaze.EyeTracker

	state      State
	calibrated bool
	sessionID  string
	frames     int64

	focalLength        float64
	averageFaceWidthCM float64
	movementThreshold  float64

	prevFaceCenter *image.Point
}

// New creates an engine around the given collaborators. The camera is
// not started until Initialize.
func New(source *capture.Source, detector *detect.FaceDetector, eyes *gaze.EyeTracker, params Params) *Engine {
	return &Engine{
		source:             source,
		detector:           detector,
		eyes:               eyes,
		state:              StateIdle,
		focalLength:        params.FocalLength,
		averageFaceWidthCM: params.AverageFaceWidthCM,
		movementThreshold:  params.MovementThresholdPX,
	}
}

// Initialize starts the camera and moves the engine from Idle to
// Ready. Returns false, leaving the engine Idle, if the camera fails
// to open.
func (e *Engine) Initialize() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateShutdown {
		return false
	}
	if e.state != StateIdle {
		return true
	}

	if !e.source.Start() {
		return false
	}

	e.state = StateReady
	log.Info("tracking engine ready")
	return true
}

// StartTracking switches the engine to actively producing results. It
// mints a fresh session ID and resets nothing else.
func (e *Engine) StartTracking() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateReady {
		return
	}

	e.state = StateTracking
	e.sessionID = uuid.NewString()
	log.Info("tracking started", "session", e.sessionID)
}

// StopTracking returns the engine to Ready. The camera stays open.
func (e *Engine) StopTracking() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateTracking {
		return
	}

	e.state = StateReady
	log.Info("tracking stopped", "session", e.sessionID)
}

// Shutdown stops tracking, releases the camera and detector resources,
// and leaves the engine in its terminal state.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateShutdown {
		return
	}

	e.source.Stop()
	e.detector.Close()
	e.eyes.Close()
	e.state = StateShutdown
	log.Info("tracking engine shut down")
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// IsTracking reports whether the engine is actively producing results.
func (e *Engine) IsTracking() bool {
	return e.State() == StateTracking
}

// SessionID returns the ID minted by the most recent StartTracking.
func (e *Engine) SessionID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessionID
}

// GetStatus returns a snapshot for collaborators.
func (e *Engine) GetStatus() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{
		State:      e.state.String(),
		SessionID:  e.sessionID,
		Backend:    e.detector.ActiveBackend().String(),
		Calibrated: e.calibrated,
		Frames:     e.frames,
	}
}

// StartCalibration clears the calibrated flag. No geometric
// calibration math is performed yet; this is a reserved extension
// point.
func (e *Engine) StartCalibration() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calibrated = false
	log.Info("calibration started")
}

// FinishCalibration sets the calibrated flag.
func (e *Engine) FinishCalibration() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calibrated = true
	log.Info("calibration completed")
}

// IsCalibrated reports the calibration flag.
func (e *Engine) IsCalibrated() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calibrated
}

// SetCameraParameters updates the pinhole model parameters. An
// averageFaceWidth <= 0 leaves the configured face width unchanged.
func (e *Engine) SetCameraParameters(focalLength, averageFaceWidth float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.focalLength = focalLength
	if averageFaceWidth > 0 {
		e.averageFaceWidthCM = averageFaceWidth
	}
	log.Info("camera parameters updated", "focal_length", focalLength)
}

// ProcessFrame runs one tracking cycle. With a nil frame the engine
// reads from its own camera, which requires tracking to be active;
// a supplied frame is processed regardless of the tracking flag and
// remains owned by the caller. The returned annotated frame, when
// non-nil, is owned by the caller and must be closed.
//
// Every failure path degrades to the empty result: a failed read, a
// missing face, or a shut-down engine never surface an error here.
func (e *Engine) ProcessFrame(supplied *gocv.Mat) (TrackingResult, *gocv.Mat) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateShutdown {
		return EmptyResult(), nil
	}

	var frame gocv.Mat
	if supplied == nil || supplied.Empty() {
		if e.state != StateTracking {
			return EmptyResult(), nil
		}
		read, ok := e.source.ReadFrame()
		if !ok {
			// Transient read failure: treat the face as lost so the
			// next detection never reports stale movement.
			e.prevFaceCenter = nil
			return EmptyResult(), nil
		}
		frame = read
		defer frame.Close()
	} else {
		frame = *supplied
	}

	e.frames++
	display := frame.Clone()

	faceRect, found := e.detector.DetectFace(frame)
	if !found {
		e.prevFaceCenter = nil
		return EmptyResult(), &display
	}

	distance := e.faceDistance(faceRect.Dx())
	angleX, angleY := e.eyes.EstimateGaze(frame, faceRect)
	focused := e.eyes.Focused(angleX, angleY)

	center := detect.FaceCenter(faceRect)
	moving := e.detectMovement(center)
	e.prevFaceCenter = &center

	result := TrackingResult{
		FaceDetected:   true,
		FaceDistance:   distance,
		GazeAngleX:     angleX,
		GazeAngleY:     angleY,
		EyesFocused:    focused,
		HeadMoving:     moving,
		FaceRectX:      float64(faceRect.Min.X),
		FaceRectY:      float64(faceRect.Min.Y),
		FaceRectWidth:  float64(faceRect.Dx()),
		FaceRectHeight: float64(faceRect.Dy()),
		Confidence:     faceConfidence,
	}

	detect.DrawFaceBox(&display, faceRect, detect.FaceBoxColor, 2)
	drawTrackingInfo(&display, result)

	return result, &display
}

// faceDistance applies the pinhole camera model:
// distance = real_width x focal_length / pixel_width. A degenerate
// width clamps to 0 instead of dividing by zero.
func (e *Engine) faceDistance(faceWidthPX int) float64 {
	if faceWidthPX <= 0 {
		return 0
	}
	return e.averageFaceWidthCM * e.focalLength / float64(faceWidthPX)
}

// detectMovement compares the current face center against the previous
// one. The first frame after face acquisition never reports movement.
func (e *Engine) detectMovement(center image.Point) bool {
	if e.prevFaceCenter == nil {
		return false
	}
	dx := float64(center.X - e.prevFaceCenter.X)
	dy := float64(center.Y - e.prevFaceCenter.Y)
	return math.Hypot(dx, dy) > e.movementThreshold
}
