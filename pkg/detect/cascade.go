package detect

import (
	"image"
	"os"

	"gocv.io/x/gocv"

	"github.com/focuslab/focustrack/internal/log"
)

// Classical backend scan parameters. Fixed configuration, not tunable
// per call.
const (
	cascadeScaleFactor  = 1.1
	cascadeMinNeighbors = 5
	cascadeMinSize      = 30
)

// cascadeBackend detects faces with a Haar cascade classifier.
type cascadeBackend struct {
	classifier gocv.CascadeClassifier
}

// newCascadeBackend loads the cascade file. Returns nil if the file is
// missing or fails to load; the caller treats that as backend
// unavailable.
func newCascadeBackend(path string) *cascadeBackend {
	if _, err := os.Stat(path); err != nil {
		log.Warn("face cascade file not found", "path", path)
		return nil
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		log.Warn("failed to load face cascade", "path", path)
		classifier.Close()
		return nil
	}

	log.Info("face cascade loaded", "path", path)
	return &cascadeBackend{classifier: classifier}
}

func (c *cascadeBackend) detect(frame gocv.Mat) []image.Rectangle {
	// The cascade scans a single-channel intensity image.
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)

	return c.classifier.DetectMultiScaleWithParams(
		gray,
		cascadeScaleFactor,
		cascadeMinNeighbors,
		0,
		image.Pt(cascadeMinSize, cascadeMinSize),
		image.Pt(0, 0),
	)
}

func (c *cascadeBackend) close() {
	c.classifier.Close()
}
