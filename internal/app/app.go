// Package app runs the depth viewer frame loop: it pulls frames from a
// sensor, drives calibration and session tracking, renders the selected
// display mode and records detected poses.
package app

import (
	"log"
	"sync"

	"github.com/ayusman/depthpose/internal/config"
	"github.com/ayusman/depthpose/internal/depth"
	"github.com/ayusman/depthpose/internal/overlay"
	"github.com/ayusman/depthpose/internal/pose"
	"github.com/ayusman/depthpose/internal/sensor"
	"github.com/ayusman/depthpose/internal/store"
	"github.com/ayusman/depthpose/internal/tracking"
	"gonum.org/v1/gonum/spatial/r2"
)

// Loop defaults.
const (
	// DefaultKeyWaitMs is how long the loop waits for a key after each frame.
	DefaultKeyWaitMs = 10
	// MaxConsecutiveErrors stops the loop when the sensor keeps failing.
	MaxConsecutiveErrors = 30
)

// Publisher receives the per-frame pose update, typically a websocket hub.
type Publisher interface {
	Publish(v any)
}

// Mirrorer is implemented by sensors that can flip their color stream.
type Mirrorer interface {
	SetMirror(mirror bool)
}

// Config holds configuration options for the application.
type Config struct {
	Sensor    sensor.Sensor
	Display   Display
	Store     *store.Store // optional
	Publisher Publisher    // optional

	Mode     string
	Palette  overlay.Palette
	MaxDepth int
	Gestures []string
	Options  Options

	// FocusFrames enables synthesized hand-raise sessions when positive.
	FocusFrames int

	// Width and Height size the canvas when a frame carries no color image.
	Width  int
	Height int

	KeyWaitMs int
}

// UserPose is the crossed-arms state of one tracked user.
type UserPose struct {
	User   sensor.UserID    `json:"user"`
	Result pose.CrossResult `json:"result"`
	Screen *r2.Vec          `json:"screen,omitempty"`
}

// PoseUpdate is published once per frame.
type PoseUpdate struct {
	Timestamp int64      `json:"timestamp"`
	Mode      string     `json:"mode"`
	Users     []UserPose `json:"users"`
}

// App is the viewer application.
type App struct {
	config     Config
	sensor     sensor.Sensor
	display    Display
	calibrator *tracking.Calibrator
	session    *tracking.Session
	gestures   *tracking.GestureTracker
	focus      *tracking.FocusDetector
	recorder   *recorder

	mu      sync.RWMutex
	options Options
	mode    string
	crossed map[sensor.UserID]bool
	latest  []byte
	last    PoseUpdate
	frames  int
}

// New creates an App. Display options stored in the database take
// precedence over cfg.Options.
func New(cfg Config) *App {
	if cfg.Display == nil {
		cfg.Display = NewHeadlessDisplay(false)
	}
	if cfg.Mode == "" {
		cfg.Mode = config.ModePose
	}
	if len(cfg.Palette) == 0 {
		cfg.Palette = overlay.DefaultPalette()
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = depth.DefaultMaxDepth
	}
	if cfg.KeyWaitMs <= 0 {
		cfg.KeyWaitMs = DefaultKeyWaitMs
	}

	a := &App{
		config:     cfg,
		sensor:     cfg.Sensor,
		display:    cfg.Display,
		calibrator: tracking.NewCalibrator(cfg.Sensor.Controller()),
		session:    tracking.NewSession(),
		gestures:   tracking.NewGestureTracker(cfg.Gestures),
		options:    cfg.Options,
		mode:       cfg.Mode,
		crossed:    make(map[sensor.UserID]bool),
	}
	if cfg.FocusFrames > 0 {
		a.focus = tracking.NewFocusDetector(cfg.FocusFrames)
	}
	a.recorder = &recorder{app: a}

	if cfg.Store != nil {
		a.options = loadOptions(cfg.Store, a.options)
	}
	return a
}

func loadOptions(s *store.Store, o Options) Options {
	current := o.Map()
	for name, def := range current {
		v, err := s.Settings().GetBool(name, def)
		if err != nil {
			log.Printf("Failed to load setting %s: %v", name, err)
			continue
		}
		o.Set(name, v)
	}
	return o
}

// Options returns the current display toggles.
func (a *App) Options() Options {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.options
}

// SetOptions replaces the display toggles, applies the mirror setting to
// the sensor and persists them.
func (a *App) SetOptions(o Options) {
	a.mu.Lock()
	a.options = o
	a.mu.Unlock()

	a.applyMirror(o.Mirror)
	a.saveOptions(o)
}

// SetOption updates a single toggle by setting name.
func (a *App) SetOption(name string, value bool) bool {
	o := a.Options()
	if !o.Set(name, value) {
		return false
	}
	a.SetOptions(o)
	return true
}

func (a *App) applyMirror(mirror bool) {
	if m, ok := a.sensor.(Mirrorer); ok {
		m.SetMirror(mirror)
	}
}

func (a *App) saveOptions(o Options) {
	if a.config.Store == nil {
		return
	}
	for name, v := range o.Map() {
		if err := a.config.Store.Settings().SetBool(name, v); err != nil {
			log.Printf("Failed to save setting %s: %v", name, err)
		}
	}
}

// Mode returns the display mode.
func (a *App) Mode() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

// LatestJPEG returns the most recent rendered frame encoded as JPEG.
func (a *App) LatestJPEG() ([]byte, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.latest == nil {
		return nil, false
	}
	return a.latest, true
}

// LastUpdate returns the pose update of the most recent frame.
func (a *App) LastUpdate() PoseUpdate {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last
}

// Frames returns how many frames have been processed.
func (a *App) Frames() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.frames
}

// Calibrator returns the per-user calibration tracker.
func (a *App) Calibrator() *tracking.Calibrator {
	return a.calibrator
}

// Session returns the session tracker.
func (a *App) Session() *tracking.Session {
	return a.session
}

// Gestures returns the gesture tracker.
func (a *App) Gestures() *tracking.GestureTracker {
	return a.gestures
}
