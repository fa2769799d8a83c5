// Package capture owns the webcam device and produces frames on demand.
package capture

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/focuslab/focustrack/internal/log"
)

// maxProbeIndex bounds the device scan in AvailableIndices.
const maxProbeIndex = 10

// Source manages a single capture device. The device is exclusively
// owned: no concurrent readers are supported, and callers are expected
// to drive ReadFrame from one goroutine.
type Source struct {
	index  int
	width  int
	height int
	fps    int

	mu      sync.Mutex
	cap     *gocv.VideoCapture
	running bool
	frames  int64
}

// NewSource creates a frame source for the given device index and
// requested capture properties. The device is not opened until Start.
func NewSource(index, width, height, fps int) *Source {
	return &Source{
		index:  index,
		width:  width,
		height: height,
		fps:    fps,
	}
}

// Start opens the capture device and applies the configured resolution
// and frame rate. Returns true on success. Calling Start on an already
// running source is a no-op and returns true.
func (s *Source) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return true
	}

	cap, err := gocv.OpenVideoCapture(s.index)
	if err != nil {
		log.Error("failed to open camera", "index", s.index, "err", err)
		return false
	}
	if !cap.IsOpened() {
		log.Error("camera opened but not ready", "index", s.index)
		cap.Close()
		return false
	}

	cap.Set(gocv.VideoCaptureFrameWidth, float64(s.width))
	cap.Set(gocv.VideoCaptureFrameHeight, float64(s.height))
	cap.Set(gocv.VideoCaptureFPS, float64(s.fps))

	s.cap = cap
	s.running = true
	log.Info("camera started",
		"index", s.index, "width", s.width, "height", s.height, "fps", s.fps)
	return true
}

// Stop releases the capture device. Always safe to call, including on
// a source that was never started.
func (s *Source) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cap != nil {
		s.cap.Close()
		s.cap = nil
	}
	if s.running {
		log.Info("camera stopped", "index", s.index, "frames", s.frames)
	}
	s.running = false
}

// ReadFrame reads one frame from the device. The second return value
// is false if the source is not running or the read failed; callers
// must treat that as "skip this cycle", not as fatal. The returned Mat
// is owned by the caller and must be closed.
func (s *Source) ReadFrame() (gocv.Mat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.cap == nil {
		return gocv.Mat{}, false
	}

	frame := gocv.NewMat()
	if !s.cap.Read(&frame) || frame.Empty() {
		frame.Close()
		return gocv.Mat{}, false
	}

	s.frames++
	return frame, true
}

// IsRunning reports whether the device is currently open.
func (s *Source) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Index returns the configured device index.
func (s *Source) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// FrameCount returns the number of frames read since the source was
// created.
func (s *Source) FrameCount() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// SwitchCamera retargets the source to another device index. If the
// source was running it is restarted on the new device; the result of
// that restart is returned.
func (s *Source) SwitchCamera(index int) bool {
	s.mu.Lock()
	wasRunning := s.running
	s.mu.Unlock()

	if wasRunning {
		s.Stop()
	}

	s.mu.Lock()
	s.index = index
	s.mu.Unlock()

	if wasRunning {
		return s.Start()
	}
	return true
}

// AvailableIndices probes device indices 0..9 and reports which ones
// open successfully. This is a diagnostic helper: each probe opens and
// immediately releases the device, so it must not be called while a
// source is running on the same hardware.
func AvailableIndices() []int {
	var available []int
	for i := 0; i < maxProbeIndex; i++ {
		cap, err := gocv.OpenVideoCapture(i)
		if err != nil {
			continue
		}
		if cap.IsOpened() {
			available = append(available, i)
		}
		cap.Close()
	}
	return available
}
