package engine

import (
	"context"
	"time"

	"gocv.io/x/gocv"

	"github.com/focuslab/focustrack/internal/log"
)

// Runner drives the engine at a fixed target cadence on a single
// worker goroutine. Each cycle processes one frame, hands the result
// and the JPEG-encoded annotated frame to the callbacks, then sleeps
// whatever remains of the cycle budget. There is no backpressure from
// consumers: a slow consumer simply misses frames.
type Runner struct {
	engine   *Engine
	interval time.Duration

	// OnResult receives every tracking result, including empty ones.
	OnResult func(TrackingResult)

	// OnFrame receives the JPEG-encoded annotated frame when one was
	// produced this cycle.
	OnFrame func(jpeg []byte)
}

// NewRunner creates a runner targeting the given frame rate. A rate
// <= 0 selects 30 cycles per second.
func NewRunner(e *Engine, fps int) *Runner {
	if fps <= 0 {
		fps = 30
	}
	return &Runner{
		engine:   e,
		interval: time.Duration(float64(time.Second) / float64(fps)),
	}
}

// Run executes tracking cycles until the context is cancelled. The
// cancellation flag is checked once per cycle, so the current cycle
// always finishes before Run returns.
func (r *Runner) Run(ctx context.Context) {
	log.Info("tracking loop started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			log.Info("tracking loop stopped")
			return
		default:
		}

		start := time.Now()
		r.cycle()

		if remaining := r.interval - time.Since(start); remaining > 0 {
			select {
			case <-ctx.Done():
				log.Info("tracking loop stopped")
				return
			case <-time.After(remaining):
			}
		}
	}
}

func (r *Runner) cycle() {
	result, frame := r.engine.ProcessFrame(nil)

	if r.OnResult != nil {
		r.OnResult(result)
	}

	if frame == nil {
		return
	}
	defer frame.Close()

	if r.OnFrame == nil {
		return
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		log.Warn("failed to encode annotated frame", "err", err)
		return
	}
	defer buf.Close()

	// The buffer is reclaimed on Close; hand the callback its own copy.
	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())
	r.OnFrame(data)
}
