// Package capture reads color frames from a camera device or a recorded
// video file using GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Default capture settings
const (
	DefaultFPS    = 30
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")

	// ErrEndOfStream is returned by file sources that have no more frames.
	ErrEndOfStream = errors.New("end of stream")
)

// Camera is a source of color frames.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	SetMirror(mirror bool)
	Mirrored() bool
	IsOpen() bool
}

// cameraImpl manages video capture from a device or a file using GoCV.
type cameraImpl struct {
	deviceID int
	path     string
	capture  *gocv.VideoCapture
	mu       sync.Mutex
	running  bool
	mirror   bool
	fps      int
}

// NewCamera creates a Camera reading from the device with the given ID.
func NewCamera(deviceID int) Camera {
	return &cameraImpl{
		deviceID: deviceID,
		fps:      DefaultFPS,
	}
}

// NewFileCamera creates a Camera that plays back a recorded video file.
// ReadFrame returns ErrEndOfStream after the last frame; reopening the
// camera restarts playback.
func NewFileCamera(path string) Camera {
	return &cameraImpl{
		deviceID: -1,
		path:     path,
		fps:      DefaultFPS,
	}
}

// Open opens the device or file for capturing frames.
func (c *cameraImpl) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	var (
		capture *gocv.VideoCapture
		err     error
	)
	if c.path != "" {
		capture, err = gocv.OpenVideoCapture(c.path)
	} else {
		capture, err = gocv.OpenVideoCapture(c.deviceID)
	}
	if err != nil {
		return fmt.Errorf("open capture: %w", err)
	}

	if c.path == "" {
		capture.Set(gocv.VideoCaptureFrameWidth, DefaultWidth)
		capture.Set(gocv.VideoCaptureFrameHeight, DefaultHeight)
		capture.Set(gocv.VideoCaptureFPS, float64(c.fps))
	}

	c.capture = capture
	c.running = true

	return nil
}

// Close closes the camera and releases resources.
func (c *cameraImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false

	return err
}

// ReadFrame reads a single frame. The caller is responsible for closing the
// returned Mat.
func (c *cameraImpl) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	ok := c.capture.Read(&mat)
	if (!ok || mat.Empty()) && c.path != "" {
		mat.Close()
		return nil, ErrEndOfStream
	}
	if !ok {
		mat.Close()
		return nil, errors.New("failed to read frame from camera")
	}

	if mat.Empty() {
		mat.Close()
		return nil, errors.New("captured frame is empty")
	}

	if c.mirror {
		gocv.Flip(mat, &mat, 1)
	}

	return &mat, nil
}

// SetFPS sets the frames per second for capture.
// Values less than or equal to 0 are ignored.
func (c *cameraImpl) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps

	if c.capture != nil && c.path == "" {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the current frames per second setting.
func (c *cameraImpl) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fps
}

// SetMirror flips subsequent frames horizontally when enabled.
func (c *cameraImpl) SetMirror(mirror bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mirror = mirror
}

// Mirrored reports whether frames are flipped horizontally.
func (c *cameraImpl) Mirrored() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.mirror
}

// IsOpen returns true if the camera is currently open and running.
func (c *cameraImpl) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}
