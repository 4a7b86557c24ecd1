// Package config loads the viewer configuration from a JSON file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ayusman/depthpose/internal/overlay"
)

// Sensor sources.
const (
	SensorMock   = "mock"
	SensorWebcam = "webcam"
	SensorFile   = "file"
)

// Display modes, one per demo program.
const (
	ModePose    = "pose"
	ModeDepth   = "depth"
	ModePlayer  = "player"
	ModeSession = "session"
	ModeGesture = "gesture"
)

// Config is the root configuration. Fields omitted from the JSON file keep
// the values from Default.
type Config struct {
	// Sensor
	Sensor          string  `json:"sensor"`
	DeviceID        int     `json:"device_id"`
	RecordingPath   string  `json:"recording_path"`
	LoopRecording   bool    `json:"loop_recording"`
	TrackerScript   string  `json:"tracker_script"`
	FPS             int     `json:"fps"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	FocalLength     float64 `json:"focal_length"`
	NeedPose        bool    `json:"need_pose"`
	CalibrationPose string  `json:"calibration_pose"`
	MaxDepth        int     `json:"max_depth"`

	// Display
	Mode         string          `json:"mode"`
	WindowName   string          `json:"window_name"`
	Palette      overlay.Palette `json:"palette,omitempty"`
	ShowImage    bool            `json:"show_image"`
	ShowUsers    bool            `json:"show_users"`
	ShowSkeleton bool            `json:"show_skeleton"`
	ShowDepth    bool            `json:"show_depth"`
	Mirror       bool            `json:"mirror"`
	Gestures     []string        `json:"gestures"`
	FocusFrames  int             `json:"focus_frames"`

	// Persistence and serving
	DBPath         string `json:"db_path"`
	HTTPAddr       string `json:"http_addr"`
	EventRetention string `json:"event_retention"` // duration string like "720h"
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Sensor:          SensorMock,
		FPS:             30,
		Width:           640,
		Height:          480,
		FocalLength:     525,
		NeedPose:        true,
		CalibrationPose: "Psi",
		MaxDepth:        10000,
		Mode:            ModePose,
		WindowName:      "KinectImage",
		ShowImage:       true,
		ShowUsers:       true,
		ShowSkeleton:    true,
		ShowDepth:       true,
		Gestures:        []string{"Wave", "Click", "RaiseHand"},
		FocusFrames:     15,
		HTTPAddr:        ":8080",
		EventRetention:  "720h",
	}
}

// Load reads a Config from a JSON file. The file must have a .json
// extension and be under 1MB.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	switch c.Sensor {
	case SensorMock, SensorWebcam:
	case SensorFile:
		if c.RecordingPath == "" {
			return fmt.Errorf("recording_path is required for the file sensor")
		}
	default:
		return fmt.Errorf("unknown sensor %q", c.Sensor)
	}

	switch c.Mode {
	case ModePose, ModeDepth, ModePlayer, ModeSession, ModeGesture:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}

	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("resolution must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.FocalLength <= 0 {
		return fmt.Errorf("focal_length must be positive, got %f", c.FocalLength)
	}
	if c.MaxDepth <= 0 || c.MaxDepth > 65536 {
		return fmt.Errorf("max_depth must be between 1 and 65536, got %d", c.MaxDepth)
	}
	if c.FocusFrames < 0 {
		return fmt.Errorf("focus_frames must be non-negative, got %d", c.FocusFrames)
	}

	if len(c.Palette) > 0 {
		if err := c.Palette.Validate(); err != nil {
			return fmt.Errorf("invalid palette: %w", err)
		}
	}

	if c.EventRetention != "" {
		if _, err := time.ParseDuration(c.EventRetention); err != nil {
			return fmt.Errorf("invalid event_retention '%s': %w", c.EventRetention, err)
		}
	}

	return nil
}

// GetPalette returns the configured palette or the default one.
func (c *Config) GetPalette() overlay.Palette {
	if len(c.Palette) == 0 {
		return overlay.DefaultPalette()
	}
	return c.Palette
}

// GetEventRetention returns how long pose events are kept. Zero means
// forever.
func (c *Config) GetEventRetention() time.Duration {
	if c.EventRetention == "" {
		return 0
	}
	d, err := time.ParseDuration(c.EventRetention)
	if err != nil {
		return 0
	}
	return d
}

// GetDBPath returns the database path, defaulting to ~/.depthpose/depthpose.db.
func (c *Config) GetDBPath() (string, error) {
	if c.DBPath != "" {
		return c.DBPath, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".depthpose", "depthpose.db"), nil
}
