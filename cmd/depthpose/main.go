package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ayusman/depthpose/internal/app"
	"github.com/ayusman/depthpose/internal/capture"
	"github.com/ayusman/depthpose/internal/config"
	"github.com/ayusman/depthpose/internal/sensor"
	"github.com/ayusman/depthpose/internal/server"
	"github.com/ayusman/depthpose/internal/store"
	"github.com/ayusman/depthpose/internal/tray"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON config file")
	mode := flag.String("mode", "", "display mode: pose, depth, player, session or gesture")
	sensorName := flag.String("sensor", "", "sensor source: mock, webcam or file")
	addr := flag.String("addr", "", "HTTP listen address (empty string keeps the config value, \"-\" disables)")
	headless := flag.Bool("headless", false, "run without a window")
	withTray := flag.Bool("tray", false, "show a system tray menu")
	flag.Parse()

	fmt.Println("DepthPose - Crossed Arms Viewer")

	cfg, err := loadConfig(*configPath, *mode, *sensorName, *addr)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize the store
	dbPath, err := cfg.GetDBPath()
	if err != nil {
		log.Fatalf("Failed to resolve database path: %v", err)
	}
	st, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	if retention := cfg.GetEventRetention(); retention > 0 {
		n, err := st.Events().DeleteBefore(time.Now().Add(-retention))
		if err != nil {
			log.Printf("Failed to prune events: %v", err)
		} else if n > 0 {
			log.Printf("Pruned %d events older than %s", n, retention)
		}
	}

	sn, err := newSensor(cfg)
	if err != nil {
		log.Fatalf("Failed to create sensor: %v", err)
	}
	defer sn.Close()

	var display app.Display
	if useWindow(*headless, *withTray) {
		display = app.NewWindowDisplay(cfg.WindowName)
	} else {
		if *withTray && !*headless {
			log.Println("Tray mode runs headless; view frames at /api/stream")
		}
		display = app.NewHeadlessDisplay(true)
	}
	defer display.Close()

	hub := server.NewPoseHub()
	application := app.New(app.Config{
		Sensor:    sn,
		Display:   display,
		Store:     st,
		Publisher: hub,
		Mode:      cfg.Mode,
		Palette:   cfg.GetPalette(),
		MaxDepth:  cfg.MaxDepth,
		Gestures:  cfg.Gestures,
		Options: app.Options{
			ShowImage:    cfg.ShowImage,
			ShowUsers:    cfg.ShowUsers,
			ShowSkeleton: cfg.ShowSkeleton,
			ShowDepth:    cfg.ShowDepth,
			Mirror:       cfg.Mirror,
		},
		FocusFrames: focusFrames(cfg),
		Width:       cfg.Width,
		Height:      cfg.Height,
		KeyWaitMs:   keyWait(cfg),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.HTTPAddr != "" {
		webDir := findWebDir()
		if webDir != "" {
			fmt.Printf("Serving static files from: %s\n", webDir)
		}

		srv := server.New(server.Config{
			StaticDir: webDir,
			Store:     st,
			Controls:  application,
			Frames:    application,
			Hub:       hub,
		})
		go func() {
			fmt.Printf("Starting server on %s\n", cfg.HTTPAddr)
			if err := srv.ListenAndServe(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Server failed: %v", err)
			}
		}()
	}

	if !*withTray {
		if err := application.Run(ctx); err != nil {
			log.Fatalf("Viewer failed: %v", err)
		}
		return
	}

	t := tray.New(application.Options())
	t.OnChange(application.SetOptions)
	t.OnQuit(stop)

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.SetOptions(application.Options())
				t.SetStatus(fmt.Sprintf("%s, %d frames", application.Mode(), application.Frames()))
			}
		}
	}()

	go func() {
		if err := application.Run(ctx); err != nil {
			log.Printf("Viewer failed: %v", err)
		}
		stop()
		t.Quit()
	}()

	// The tray owns the main thread until it quits.
	t.Run()
}

// useWindow reports whether frames go to an OpenCV window. The tray owns
// the main OS thread and the frame loop runs on another one, so a window
// is only created when there is no tray.
func useWindow(headless, withTray bool) bool {
	return !headless && !withTray
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig(path, mode, sensorName, addr string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	if mode != "" {
		cfg.Mode = mode
	}
	if sensorName != "" {
		cfg.Sensor = sensorName
	}
	switch addr {
	case "":
	case "-":
		cfg.HTTPAddr = ""
	default:
		cfg.HTTPAddr = addr
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newSensor builds the sensor named by the config.
func newSensor(cfg *config.Config) (sensor.Sensor, error) {
	sc := sensor.Config{
		Width:       cfg.Width,
		Height:      cfg.Height,
		FocalLength: cfg.FocalLength,
		NeedPose:    cfg.NeedPose,
		Pose:        cfg.CalibrationPose,
	}

	switch cfg.Sensor {
	case config.SensorMock:
		return sensor.NewMock(sc, sensor.DemoScene(sc, cfg.Gestures...), true), nil

	case config.SensorWebcam, config.SensorFile:
		var camera capture.Camera
		loop := false
		if cfg.Sensor == config.SensorFile {
			camera = capture.NewFileCamera(cfg.RecordingPath)
			loop = cfg.LoopRecording
		} else {
			camera = capture.NewCamera(cfg.DeviceID)
		}
		camera.SetFPS(cfg.FPS)

		var tracker sensor.Tracker
		svc, err := sensor.NewPoseService(cfg.TrackerScript)
		if err != nil {
			log.Printf("Skeleton tracking disabled: %v", err)
		} else {
			tracker = svc
		}
		return sensor.NewWebcam(sc, camera, tracker, loop), nil
	}

	return nil, fmt.Errorf("unknown sensor %q", cfg.Sensor)
}

// focusFrames enables the hand-raise session detector for the session demo
// on sensors without gesture middleware.
func focusFrames(cfg *config.Config) int {
	if cfg.Mode != config.ModeSession {
		return 0
	}
	return cfg.FocusFrames
}

// keyWait paces the mock sensor, which produces frames as fast as they
// are asked for, at the configured frame rate.
func keyWait(cfg *config.Config) int {
	if cfg.Sensor != config.SensorMock {
		return app.DefaultKeyWaitMs
	}
	return 1000 / cfg.FPS
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.depthpose/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	// Check relative paths from current working directory
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".depthpose", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
