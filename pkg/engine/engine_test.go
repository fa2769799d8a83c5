package engine

import (
	"image"
	"testing"

	"gocv.io/x/gocv"

	"github.com/focuslab/focustrack/pkg/capture"
	"github.com/focuslab/focustrack/pkg/detect"
	"github.com/focuslab/focustrack/pkg/gaze"
)

// newTestEngine builds an engine whose detector has no loadable
// backend, so no test depends on model files or a physical camera.
func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	source := capture.NewSource(9, 640, 480, 30)
	detector := detect.NewFaceDetector(detect.Config{
		Backend:     "auto",
		CascadePath: "testdata/does-not-exist.xml",
		ModelPath:   "testdata/does-not-exist.onnx",
	})
	eyes := gaze.NewEyeTracker("testdata/does-not-exist.xml", 0)

	e := New(source, detector, eyes, DefaultParams())
	t.Cleanup(e.Shutdown)
	return e
}

func TestFaceDistance(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name    string
		widthPX int
		expect  float64
	}{
		// distance = 15cm x 2000px / width
		{name: "face at 200px", widthPX: 200, expect: 150},
		{name: "face at 300px", widthPX: 300, expect: 100},
		{name: "face at 600px", widthPX: 600, expect: 50},
		{name: "zero width clamps to 0", widthPX: 0, expect: 0},
		{name: "negative width clamps to 0", widthPX: -5, expect: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := e.faceDistance(tc.widthPX); got != tc.expect {
				t.Errorf("faceDistance(%d): got %v, want %v", tc.widthPX, got, tc.expect)
			}
		})
	}
}

func TestFaceDistance_MonotonicInWidth(t *testing.T) {
	e := newTestEngine(t)

	prev := e.faceDistance(50)
	for width := 100; width <= 800; width += 50 {
		d := e.faceDistance(width)
		if d >= prev {
			t.Fatalf("distance should strictly decrease with width: %v at %dpx not below %v", d, width, prev)
		}
		prev = d
	}
}

func TestDetectMovement(t *testing.T) {
	tests := []struct {
		name    string
		prev    *image.Point
		current image.Point
		expect  bool
	}{
		{
			name:    "no previous center never moves",
			prev:    nil,
			current: image.Pt(500, 500),
			expect:  false,
		},
		{
			name:    "displacement above threshold",
			prev:    &image.Point{},
			current: image.Pt(11, 0),
			expect:  true,
		},
		{
			name:    "displacement exactly at threshold",
			prev:    &image.Point{},
			current: image.Pt(10, 0),
			expect:  false,
		},
		{
			name:    "displacement below threshold",
			prev:    &image.Point{},
			current: image.Pt(3, 4),
			expect:  false,
		},
		{
			name:    "diagonal displacement above threshold",
			prev:    &image.Point{},
			current: image.Pt(8, 8), // hypot ~11.3
			expect:  true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEngine(t)
			e.prevFaceCenter = tc.prev
			if got := e.detectMovement(tc.current); got != tc.expect {
				t.Errorf("detectMovement(%v): got %v, want %v", tc.current, got, tc.expect)
			}
		})
	}
}

func TestStateMachine(t *testing.T) {
	e := newTestEngine(t)

	if e.State() != StateIdle {
		t.Fatalf("new engine state: got %v, want idle", e.State())
	}

	// StartTracking from Idle is a no-op: the camera is not running.
	e.StartTracking()
	if e.State() != StateIdle {
		t.Errorf("StartTracking from Idle: got %v, want idle", e.State())
	}
	if e.IsTracking() {
		t.Error("engine should not report tracking from Idle")
	}

	// StopTracking outside Tracking is a no-op.
	e.StopTracking()
	if e.State() != StateIdle {
		t.Errorf("StopTracking from Idle: got %v, want idle", e.State())
	}
}

func TestShutdown_WhileTracking(t *testing.T) {
	e := newTestEngine(t)

	// Simulate an engine that reached Tracking.
	e.mu.Lock()
	e.state = StateTracking
	e.mu.Unlock()

	e.Shutdown()

	if e.State() != StateShutdown {
		t.Fatalf("state after Shutdown: got %v, want shutdown", e.State())
	}

	result, frame := e.ProcessFrame(nil)
	if result != EmptyResult() {
		t.Errorf("ProcessFrame after shutdown: got %+v, want empty result", result)
	}
	if frame != nil {
		t.Error("ProcessFrame after shutdown should not return a frame")
	}

	// Shutdown is idempotent.
	e.Shutdown()
}

func TestProcessFrame_NotTrackingNoFrame(t *testing.T) {
	e := newTestEngine(t)

	result, frame := e.ProcessFrame(nil)
	if result.FaceDetected {
		t.Error("expected empty result")
	}
	if frame != nil {
		t.Error("expected no frame")
	}
}

func TestProcessFrame_SuppliedFrameNoFace(t *testing.T) {
	e := newTestEngine(t)
	e.prevFaceCenter = &image.Point{X: 100, Y: 100}

	blank := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer blank.Close()

	result, frame := e.ProcessFrame(&blank)

	if result.FaceDetected {
		t.Error("no-backend detector should never find a face")
	}
	if result.FaceDistance != 0 || result.GazeAngleX != 0 || result.GazeAngleY != 0 {
		t.Errorf("empty result should carry zero metrics, got %+v", result)
	}
	if result.HeadMoving || result.ShouldersMoving {
		t.Error("empty result should not report movement")
	}

	// The unmodified frame still comes back for display.
	if frame == nil {
		t.Fatal("expected a display frame")
	}
	frame.Close()

	// Movement memory resets, so the next detected face can never
	// report movement on its first frame.
	if e.prevFaceCenter != nil {
		t.Error("previous face center should reset when no face is found")
	}
}

func TestProcessFrame_TransientReadFailure(t *testing.T) {
	e := newTestEngine(t)

	// Simulate an engine that reached Tracking with a face in memory;
	// the source was never started, so the camera read fails.
	e.mu.Lock()
	e.state = StateTracking
	e.mu.Unlock()
	e.prevFaceCenter = &image.Point{X: 320, Y: 240}

	result, frame := e.ProcessFrame(nil)

	if result != EmptyResult() {
		t.Errorf("read failure should yield the empty result, got %+v", result)
	}
	if frame != nil {
		t.Error("read failure should not produce a display frame")
	}

	// The face is treated as lost: the next detection must not report
	// movement against a stale center.
	if e.prevFaceCenter != nil {
		t.Error("previous face center should reset on read failure")
	}

	// Nothing was processed, so the frame counter stays put.
	if got := e.GetStatus().Frames; got != 0 {
		t.Errorf("frames after failed read: got %d, want 0", got)
	}
}

func TestFrameCounter_CountsFacelessCycles(t *testing.T) {
	e := newTestEngine(t)

	blank := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer blank.Close()

	for i := 0; i < 3; i++ {
		_, frame := e.ProcessFrame(&blank)
		if frame != nil {
			frame.Close()
		}
	}

	// Every processed frame counts, face or not.
	if got := e.GetStatus().Frames; got != 3 {
		t.Errorf("frames processed: got %d, want 3", got)
	}
}

func TestCalibrationFlags(t *testing.T) {
	e := newTestEngine(t)

	if e.IsCalibrated() {
		t.Error("new engine should not be calibrated")
	}
	e.FinishCalibration()
	if !e.IsCalibrated() {
		t.Error("FinishCalibration should set the flag")
	}
	e.StartCalibration()
	if e.IsCalibrated() {
		t.Error("StartCalibration should clear the flag")
	}
}

func TestSetCameraParameters(t *testing.T) {
	e := newTestEngine(t)

	e.SetCameraParameters(1000, 0)
	if got := e.faceDistance(100); got != 150 {
		// 15cm x 1000px / 100px: face width unchanged by the zero arg.
		t.Errorf("distance after focal update: got %v, want 150", got)
	}

	e.SetCameraParameters(1000, 20)
	if got := e.faceDistance(100); got != 200 {
		t.Errorf("distance after face width update: got %v, want 200", got)
	}
}

func TestGetStatus(t *testing.T) {
	e := newTestEngine(t)

	st := e.GetStatus()
	if st.State != "idle" {
		t.Errorf("status state: got %q, want idle", st.State)
	}
	if st.Backend != "none" {
		t.Errorf("status backend: got %q, want none", st.Backend)
	}
	if st.SessionID != "" {
		t.Errorf("status session: got %q, want empty", st.SessionID)
	}
	if st.Frames != 0 {
		t.Errorf("status frames: got %d, want 0", st.Frames)
	}
}
