package gaze

import (
	"image"
	"math"
	"testing"

	"gocv.io/x/gocv"
)

func TestAnglesFromEyes(t *testing.T) {
	tests := []struct {
		name    string
		eyes    []image.Rectangle
		faceW   int
		faceH   int
		expectX float64
		expectY float64
	}{
		{
			name:  "no eyes is neutral",
			eyes:  nil,
			faceW: 200, faceH: 200,
			expectX: 0, expectY: 0,
		},
		{
			name: "single eye is neutral",
			eyes: []image.Rectangle{
				image.Rect(40, 60, 70, 90),
			},
			faceW: 200, faceH: 200,
			expectX: 0, expectY: 0,
		},
		{
			name: "two eyes in a 200x200 face",
			// Eye boxes (40,60,30,30) and (120,60,30,30): centers
			// (55,75) and (135,75), midpoint (95,75), face center
			// (100,100).
			eyes: []image.Rectangle{
				image.Rect(40, 60, 70, 90),
				image.Rect(120, 60, 150, 90),
			},
			faceW: 200, faceH: 200,
			expectX: (95.0 - 100.0) / 100.0 * 30.0, // -1.5
			expectY: (75.0 - 100.0) / 100.0 * 30.0, // -7.5
		},
		{
			name: "eyes centered on face center",
			eyes: []image.Rectangle{
				image.Rect(30, 40, 70, 60), // center (50, 50)
				image.Rect(50, 40, 90, 60), // center (70, 50)
			},
			faceW: 120, faceH: 100,
			expectX: 0, expectY: 0,
		},
		{
			name: "three detections use the two leftmost",
			eyes: []image.Rectangle{
				image.Rect(120, 60, 150, 90),
				image.Rect(40, 60, 70, 90),
				image.Rect(160, 62, 190, 92), // rightmost ignored
			},
			faceW: 200, faceH: 200,
			expectX: -1.5,
			expectY: -7.5,
		},
		{
			name: "degenerate face dimensions are neutral",
			eyes: []image.Rectangle{
				image.Rect(0, 0, 1, 1),
				image.Rect(0, 0, 1, 1),
			},
			faceW: 1, faceH: 1,
			expectX: 0, expectY: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gotX, gotY := anglesFromEyes(tc.eyes, tc.faceW, tc.faceH)
			if math.Abs(gotX-tc.expectX) > 1e-9 {
				t.Errorf("angle X: got %v, want %v", gotX, tc.expectX)
			}
			if math.Abs(gotY-tc.expectY) > 1e-9 {
				t.Errorf("angle Y: got %v, want %v", gotY, tc.expectY)
			}
		})
	}
}

func TestFaceLocalEyes(t *testing.T) {
	tests := []struct {
		name     string
		eyes     []image.Rectangle
		bounded  image.Rectangle
		faceRect image.Rectangle
		expect   []image.Rectangle
	}{
		{
			name:     "face fully inside frame passes through",
			eyes:     []image.Rectangle{image.Rect(40, 60, 70, 90)},
			bounded:  image.Rect(100, 100, 300, 300),
			faceRect: image.Rect(100, 100, 300, 300),
			expect:   []image.Rectangle{image.Rect(40, 60, 70, 90)},
		},
		{
			name: "face clipped at top-left shifts detections",
			// Face box starts at (-20,-10); clipping moves the region
			// origin to (0,0), so region-local detections sit (20,10)
			// further into the face box.
			eyes:     []image.Rectangle{image.Rect(40, 60, 70, 90)},
			bounded:  image.Rect(0, 0, 180, 190),
			faceRect: image.Rect(-20, -10, 180, 190),
			expect:   []image.Rectangle{image.Rect(60, 70, 90, 100)},
		},
		{
			name: "face clipped at bottom-right keeps the origin",
			// Overflow past the far edges never moves Min.
			eyes:     []image.Rectangle{image.Rect(40, 60, 70, 90)},
			bounded:  image.Rect(500, 400, 640, 480),
			faceRect: image.Rect(500, 400, 700, 600),
			expect:   []image.Rectangle{image.Rect(40, 60, 70, 90)},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := faceLocalEyes(tc.eyes, tc.bounded, tc.faceRect)
			if len(got) != len(tc.expect) {
				t.Fatalf("got %d rects, want %d", len(got), len(tc.expect))
			}
			for i := range got {
				if got[i] != tc.expect[i] {
					t.Errorf("rect %d: got %v, want %v", i, got[i], tc.expect[i])
				}
			}
		})
	}
}

func TestFocused(t *testing.T) {
	tracker := &EyeTracker{focusThreshold: 10}

	tests := []struct {
		name   string
		x, y   float64
		expect bool
	}{
		{name: "dead center", x: 0, y: 0, expect: true},
		{name: "both inside", x: 9.9, y: -9.9, expect: true},
		{name: "x exactly at threshold", x: 10, y: 0, expect: false},
		{name: "y exactly at threshold", x: 0, y: 10, expect: false},
		{name: "negative boundary", x: -10, y: 0, expect: false},
		{name: "x outside", x: 15, y: 0, expect: false},
		{name: "y outside", x: 0, y: -20, expect: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tracker.Focused(tc.x, tc.y); got != tc.expect {
				t.Errorf("Focused(%v, %v): got %v, want %v", tc.x, tc.y, got, tc.expect)
			}
		})
	}
}

func TestNewEyeTracker_MissingCascade(t *testing.T) {
	tracker := NewEyeTracker("testdata/does-not-exist.xml", 0)
	defer tracker.Close()

	if tracker.FocusThreshold() != DefaultFocusThresholdDeg {
		t.Errorf("focus threshold: got %v, want %v", tracker.FocusThreshold(), DefaultFocusThresholdDeg)
	}

	// No cascade loaded: detection degrades to an empty sequence.
	roi := gocv.NewMat()
	defer roi.Close()
	if eyes := tracker.DetectEyes(roi); len(eyes) != 0 {
		t.Errorf("expected no eye detections, got %d", len(eyes))
	}
}
