// Package detect provides face detection over two interchangeable
// backends: a classical Haar cascade and a learned YuNet model.
package detect

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/focuslab/focustrack/internal/log"
)

// Backend identifies a face detection backend.
type Backend int

const (
	// BackendNone means no backend could be loaded; detection always
	// reports no face.
	BackendNone Backend = iota
	// BackendClassical is the Haar cascade sliding-window detector.
	BackendClassical
	// BackendLearned is the YuNet ONNX detector.
	BackendLearned
)

// String returns the backend name used in config and status output.
func (b Backend) String() string {
	switch b {
	case BackendClassical:
		return "classical"
	case BackendLearned:
		return "learned"
	default:
		return "none"
	}
}

// Config holds face detector construction parameters.
type Config struct {
	// Backend is the requested backend: "auto", "classical" or "learned".
	Backend string

	// CascadePath is the Haar cascade XML file for the classical backend.
	CascadePath string

	// ModelPath is the YuNet ONNX model for the learned backend.
	ModelPath string

	// ScoreThreshold is the minimum detection score for the learned
	// backend (the classical backend has no score output).
	ScoreThreshold float32
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Backend:        "auto",
		CascadePath:    "assets/models/haarcascade_frontalface_default.xml",
		ModelPath:      "assets/models/face_detection_yunet.onnx",
		ScoreThreshold: 0.7,
	}
}

// backend is the capability each detection variant implements. The
// variant set is closed and selected once at construction.
type backend interface {
	detect(frame gocv.Mat) []image.Rectangle
	close()
}

// FaceDetector locates at most one face per frame. A backend that
// fails to load is left unavailable; with no backend available every
// detection reports no face.
type FaceDetector struct {
	active  Backend
	backend backend
}

// NewFaceDetector constructs a detector for the requested backend.
// Load failures are non-fatal: with "auto" the learned model is
// preferred, falling back to the classical cascade, falling back to
// no detection at all.
func NewFaceDetector(cfg Config) *FaceDetector {
	var cascade *cascadeBackend
	var learned *yunetBackend

	if cfg.Backend == "auto" || cfg.Backend == "classical" {
		cascade = newCascadeBackend(cfg.CascadePath)
	}
	if cfg.Backend == "auto" || cfg.Backend == "learned" {
		learned = newYuNetBackend(cfg.ModelPath, cfg.ScoreThreshold)
	}

	d := &FaceDetector{active: resolveBackend(learned != nil, cascade != nil)}
	switch d.active {
	case BackendLearned:
		d.backend = learned
		if cascade != nil {
			cascade.close()
		}
	case BackendClassical:
		d.backend = cascade
	default:
		log.Warn("no face detection backend available", "requested", cfg.Backend)
	}

	log.Info("face detector ready", "backend", d.active.String())
	return d
}

// resolveBackend picks the active backend from what actually loaded.
// The learned model always wins when available.
func resolveBackend(learnedOK, cascadeOK bool) Backend {
	switch {
	case learnedOK:
		return BackendLearned
	case cascadeOK:
		return BackendClassical
	default:
		return BackendNone
	}
}

// ActiveBackend returns the resolved backend.
func (d *FaceDetector) ActiveBackend() Backend {
	return d.active
}

// DetectFace finds the largest face in the frame. Returns false on an
// empty frame, when no backend is available, or when nothing is
// detected. When several candidates have exactly equal area, the first
// one encountered wins.
func (d *FaceDetector) DetectFace(frame gocv.Mat) (image.Rectangle, bool) {
	if d.backend == nil || frame.Empty() {
		return image.Rectangle{}, false
	}

	rects := d.backend.detect(frame)
	return largestRect(rects)
}

// Close releases backend resources.
func (d *FaceDetector) Close() {
	if d.backend != nil {
		d.backend.close()
		d.backend = nil
	}
	d.active = BackendNone
}

// FaceCenter returns the center point of a face rectangle. Integer
// division matches the rest of the pixel pipeline.
func FaceCenter(rect image.Rectangle) image.Point {
	return image.Pt(rect.Min.X+rect.Dx()/2, rect.Min.Y+rect.Dy()/2)
}

// largestRect picks the largest rectangle by area. Strict comparison
// keeps the first of equal-area candidates.
func largestRect(rects []image.Rectangle) (image.Rectangle, bool) {
	if len(rects) == 0 {
		return image.Rectangle{}, false
	}

	best := rects[0]
	bestArea := best.Dx() * best.Dy()
	for _, r := range rects[1:] {
		if area := r.Dx() * r.Dy(); area > bestArea {
			best = r
			bestArea = area
		}
	}
	return best, true
}
