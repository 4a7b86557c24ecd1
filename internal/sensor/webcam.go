package sensor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ayusman/depthpose/internal/capture"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Tracker finds skeletons in a color frame.
type Tracker interface {
	Track(frame *gocv.Mat) ([]Skeleton, error)
	Close() error
}

// Webcam is a Sensor backed by a color camera (or recording) and an
// optional skeleton Tracker. It has no depth or user label streams.
type Webcam struct {
	config  Config
	proj    Projection
	camera  capture.Camera
	tracker Tracker
	ctrl    *simController
	present presence
	loop    bool
	mu      sync.Mutex
}

// NewWebcam creates a Sensor reading from camera. tracker may be nil, in
// which case frames carry no skeletons. loop makes recordings restart at
// the end instead of returning ErrEndOfStream.
func NewWebcam(config Config, camera capture.Camera, tracker Tracker, loop bool) *Webcam {
	// Webcam skeleton tracking needs no calibration pose.
	config.NeedPose = false
	return &Webcam{
		config:  config,
		proj:    Projection{Width: config.Width, Height: config.Height, FocalLength: config.FocalLength},
		camera:  camera,
		tracker: tracker,
		ctrl:    newSimController(config),
		present: make(presence),
		loop:    loop,
	}
}

// Start implements Sensor.
func (w *Webcam) Start() error {
	if err := w.camera.Open(); err != nil {
		return fmt.Errorf("start webcam: %w", err)
	}
	return nil
}

// WaitAndUpdate implements Sensor.
func (w *Webcam) WaitAndUpdate(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	var events []Event

	mat, err := w.camera.ReadFrame()
	if errors.Is(err, capture.ErrEndOfStream) {
		if !w.loop {
			return nil, ErrEndOfStream
		}
		log.Println("Recording reached end of file, rewinding")
		events = append(events, Event{Kind: EndOfStream})
		if err := w.rewind(); err != nil {
			return nil, err
		}
		mat, err = w.camera.ReadFrame()
	}
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}

	var skeletons []Skeleton
	if w.tracker != nil {
		skeletons, err = w.tracker.Track(mat)
		if err != nil {
			log.Printf("Error tracking skeletons: %v", err)
			skeletons = nil
		}
	}

	arrivals := w.present.update(skeletons)
	for _, ev := range arrivals {
		if ev.Kind == UserLost {
			w.ctrl.forget(ev.User)
		}
	}
	events = append(events, arrivals...)
	events = append(events, w.ctrl.drain()...)

	return &Frame{
		Color:     mat,
		Skeletons: skeletons,
		Events:    events,
		Timestamp: time.Now(),
	}, nil
}

func (w *Webcam) rewind() error {
	mirror := w.camera.Mirrored()
	if err := w.camera.Close(); err != nil {
		return fmt.Errorf("rewind: %w", err)
	}
	if err := w.camera.Open(); err != nil {
		return fmt.Errorf("rewind: %w", err)
	}
	w.camera.SetMirror(mirror)
	return nil
}

// SetMirror flips the color stream horizontally.
func (w *Webcam) SetMirror(mirror bool) {
	w.camera.SetMirror(mirror)
}

// ToProjective implements Sensor.
func (w *Webcam) ToProjective(p r3.Vec) r2.Vec {
	return w.proj.ToProjective(p)
}

// Controller implements Sensor.
func (w *Webcam) Controller() Controller {
	return w.ctrl
}

// Close implements Sensor.
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var errs []error
	if w.tracker != nil {
		if err := w.tracker.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close tracker: %w", err))
		}
	}
	if err := w.camera.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close camera: %w", err))
	}
	return errors.Join(errs...)
}
