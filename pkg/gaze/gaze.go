// Package gaze estimates coarse gaze direction from eye positions
// inside a detected face region.
package gaze

import (
	"image"
	"math"
	"os"
	"sort"

	"gocv.io/x/gocv"

	"github.com/focuslab/focustrack/internal/log"
)

// Eye cascade scan parameters. Fixed configuration, not tunable per call.
const (
	eyeScaleFactor  = 1.1
	eyeMinNeighbors = 5
	eyeMinSize      = 20
)

// maxAngleDeg bounds the linear angle mapping: an eye midpoint at the
// edge of the face box maps to 30 degrees. The mapping is not clamped
// explicitly; angles beyond it would require eye centers outside the
// face box.
const maxAngleDeg = 30.0

// DefaultFocusThresholdDeg is the gaze magnitude under which the eyes
// count as focused.
const DefaultFocusThresholdDeg = 10.0

// EyeTracker detects eye regions and derives a 2-axis gaze estimate.
type EyeTracker struct {
	cascade        gocv.CascadeClassifier
	loaded         bool
	focusThreshold float64
}

// NewEyeTracker loads the eye cascade. A load failure is non-fatal:
// the tracker stays usable and every gaze estimate is neutral (0, 0).
// A focusThreshold <= 0 selects the default of 10 degrees.
func NewEyeTracker(cascadePath string, focusThreshold float64) *EyeTracker {
	if focusThreshold <= 0 {
		focusThreshold = DefaultFocusThresholdDeg
	}

	t := &EyeTracker{focusThreshold: focusThreshold}

	if _, err := os.Stat(cascadePath); err != nil {
		log.Warn("eye cascade file not found", "path", cascadePath)
		return t
	}

	cascade := gocv.NewCascadeClassifier()
	if !cascade.Load(cascadePath) {
		log.Warn("failed to load eye cascade", "path", cascadePath)
		cascade.Close()
		return t
	}

	t.cascade = cascade
	t.loaded = true
	log.Info("eye cascade loaded", "path", cascadePath)
	return t
}

// DetectEyes runs the eye cascade over the face sub-image. The result
// rectangles are in the face region's local coordinates, in
// detector-native order. The sequence may be empty.
func (t *EyeTracker) DetectEyes(faceROI gocv.Mat) []image.Rectangle {
	if !t.loaded || faceROI.Empty() {
		return nil
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if faceROI.Channels() > 1 {
		gocv.CvtColor(faceROI, &gray, gocv.ColorBGRToGray)
	} else {
		faceROI.CopyTo(&gray)
	}

	return t.cascade.DetectMultiScaleWithParams(
		gray,
		eyeScaleFactor,
		eyeMinNeighbors,
		0,
		image.Pt(eyeMinSize, eyeMinSize),
		image.Pt(0, 0),
	)
}

// EstimateGaze derives gaze angles in degrees from the eye positions
// inside faceRect. Fewer than two detected eyes yields the neutral
// (0, 0), which callers must not read as "centered": it means
// undetermined.
func (t *EyeTracker) EstimateGaze(frame gocv.Mat, faceRect image.Rectangle) (float64, float64) {
	if frame.Empty() || faceRect.Dx() <= 0 || faceRect.Dy() <= 0 {
		return 0, 0
	}

	bounded := faceRect.Intersect(image.Rect(0, 0, frame.Cols(), frame.Rows()))
	if bounded.Dx() <= 0 || bounded.Dy() <= 0 {
		return 0, 0
	}

	roi := frame.Region(bounded)
	defer roi.Close()

	eyes := faceLocalEyes(t.DetectEyes(roi), bounded, faceRect)
	return anglesFromEyes(eyes, faceRect.Dx(), faceRect.Dy())
}

// faceLocalEyes converts eye rectangles from clipped-region coordinates
// to face-rectangle coordinates. Clipping only moves the origin when
// the face box extends past the top or left frame edge.
func faceLocalEyes(eyes []image.Rectangle, bounded, faceRect image.Rectangle) []image.Rectangle {
	delta := bounded.Min.Sub(faceRect.Min)
	if delta == (image.Point{}) {
		return eyes
	}

	shifted := make([]image.Rectangle, len(eyes))
	for i, e := range eyes {
		shifted[i] = e.Add(delta)
	}
	return shifted
}

// Focused reports whether both gaze axes are strictly within the focus
// threshold of zero.
func (t *EyeTracker) Focused(angleX, angleY float64) bool {
	return math.Abs(angleX) < t.focusThreshold && math.Abs(angleY) < t.focusThreshold
}

// FocusThreshold returns the configured focus threshold in degrees.
func (t *EyeTracker) FocusThreshold() float64 {
	return t.focusThreshold
}

// Close releases the cascade.
func (t *EyeTracker) Close() {
	if t.loaded {
		t.cascade.Close()
		t.loaded = false
	}
}

// anglesFromEyes maps eye rectangles (face-local coordinates) to gaze
// angles. With two or more detections the two leftmost-by-x are paired
// as left/right eyes. This is a known heuristic: with false positives
// the pair can be wrong, and no anatomical plausibility check is made.
func anglesFromEyes(eyes []image.Rectangle, faceW, faceH int) (float64, float64) {
	if len(eyes) < 2 {
		return 0, 0
	}

	faceCX := faceW / 2
	faceCY := faceH / 2
	if faceCX == 0 || faceCY == 0 {
		return 0, 0
	}

	sorted := make([]image.Rectangle, len(eyes))
	copy(sorted, eyes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Min.X < sorted[j].Min.X
	})

	left := eyeCenter(sorted[0])
	right := eyeCenter(sorted[1])

	avgX := (left.X + right.X) / 2
	avgY := (left.Y + right.Y) / 2

	angleX := float64(avgX-faceCX) / float64(faceCX) * maxAngleDeg
	angleY := float64(avgY-faceCY) / float64(faceCY) * maxAngleDeg
	return angleX, angleY
}

func eyeCenter(r image.Rectangle) image.Point {
	return image.Pt(r.Min.X+r.Dx()/2, r.Min.Y+r.Dy()/2)
}
