package capture

import "testing"

// These tests exercise the lifecycle contract without requiring a
// physical camera: reads against a stopped source must fail cleanly
// and Stop must always be safe.

func TestReadFrame_NotRunning(t *testing.T) {
	s := NewSource(0, 640, 480, 30)

	if _, ok := s.ReadFrame(); ok {
		t.Error("ReadFrame on a stopped source should report failure")
	}
}

func TestStop_NeverStarted(t *testing.T) {
	s := NewSource(0, 640, 480, 30)

	// Must not panic or corrupt state.
	s.Stop()
	s.Stop()

	if s.IsRunning() {
		t.Error("source should not be running after Stop")
	}
}

func TestSwitchCamera_WhileStopped(t *testing.T) {
	s := NewSource(0, 640, 480, 30)

	if !s.SwitchCamera(3) {
		t.Error("SwitchCamera on a stopped source should succeed without opening the device")
	}
	if s.Index() != 3 {
		t.Errorf("index: got %d, want 3", s.Index())
	}
	if s.IsRunning() {
		t.Error("SwitchCamera must not start a stopped source")
	}
}

func TestFrameCount_InitiallyZero(t *testing.T) {
	s := NewSource(0, 640, 480, 30)
	if n := s.FrameCount(); n != 0 {
		t.Errorf("frame count: got %d, want 0", n)
	}
}
