// focustrack estimates a user's attentiveness from a webcam feed:
// face detection, coarse gaze direction, face-to-camera distance and
// head movement, at interactive frame rate.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/focuslab/focustrack/internal/config"
	"github.com/focuslab/focustrack/internal/log"
	"github.com/focuslab/focustrack/pkg/capture"
	"github.com/focuslab/focustrack/pkg/detect"
	"github.com/focuslab/focustrack/pkg/engine"
	"github.com/focuslab/focustrack/pkg/gaze"
	"github.com/focuslab/focustrack/pkg/web"
)

func main() {
	configPath := flag.String("config", "focustrack.yaml", "path to config file")
	backend := flag.String("backend", "", "override detector backend (auto|classical|learned)")
	camera := flag.Int("camera", -1, "override camera index")
	noDashboard := flag.Bool("no-dashboard", false, "disable the dashboard server")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *backend != "" {
		cfg.Detector.Backend = *backend
	}
	if *camera >= 0 {
		cfg.Camera.Index = *camera
	}
	if *noDashboard {
		cfg.Dashboard.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log.Init(cfg.LogLevel)

	source := capture.NewSource(cfg.Camera.Index, cfg.Camera.Width, cfg.Camera.Height, cfg.Camera.FPS)
	detector := detect.NewFaceDetector(detect.Config{
		Backend:        cfg.Detector.Backend,
		CascadePath:    cfg.Detector.FaceCascadePath,
		ModelPath:      cfg.Detector.ModelPath,
		ScoreThreshold: 0.7,
	})
	eyes := gaze.NewEyeTracker(cfg.Detector.EyeCascadePath, cfg.Tracking.FocusThresholdDeg)

	eng := engine.New(source, detector, eyes, engine.Params{
		FocalLength:         cfg.Tracking.FocalLength,
		AverageFaceWidthCM:  cfg.Tracking.AverageFaceWidthCM,
		MovementThresholdPX: cfg.Tracking.MovementThresholdPX,
	})

	if !eng.Initialize() {
		fmt.Fprintf(os.Stderr, "Error: failed to open camera %d\n", cfg.Camera.Index)
		os.Exit(1)
	}
	eng.StartTracking()

	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down")
		cancel()
	}()

	runner := engine.NewRunner(eng, cfg.Camera.FPS)

	var server *web.Server
	if cfg.Dashboard.Enabled {
		server = web.NewServer(eng, cfg)
		runner.OnResult = server.PublishResult
		runner.OnFrame = server.PublishFrame
		server.StartAsync()
	}

	runner.Run(ctx)

	if server != nil {
		server.Shutdown()
	}
	eng.Shutdown()
}
