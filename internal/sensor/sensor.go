package sensor

import (
	"context"
	"errors"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrEndOfStream is returned by WaitAndUpdate when a non-looping source has
// no more frames.
var ErrEndOfStream = errors.New("sensor: end of stream")

// Sensor delivers synchronized color, depth, user and skeleton data.
type Sensor interface {
	// Start begins generating data on all streams.
	Start() error

	// WaitAndUpdate blocks until the next frame is available.
	// The caller owns the returned Frame and must Close it.
	WaitAndUpdate(ctx context.Context) (*Frame, error)

	// ToProjective converts a real-world point to screen coordinates.
	ToProjective(p r3.Vec) r2.Vec

	// Controller returns the skeleton calibration capability.
	Controller() Controller

	// Close stops all streams and releases resources.
	Close() error
}

// Controller exposes the tracking middleware's calibration and frame sync
// capabilities. Requests are asynchronous: their outcome arrives later as
// Events on subsequent frames.
type Controller interface {
	NeedPoseForCalibration() bool
	CalibrationPose() string
	StartPoseDetection(pose string, id UserID)
	StopPoseDetection(id UserID)
	RequestCalibration(id UserID)
	StartTracking(id UserID)
	StopTracking(id UserID)
	IsTracking(id UserID) bool

	CanFrameSync() bool
	FrameSynced() bool
	SetFrameSync(enabled bool)
}

// Config holds options shared by the sensor implementations.
type Config struct {
	// Width and Height are the color and depth resolution.
	Width  int
	Height int

	// FocalLength is the pinhole focal length in pixels.
	FocalLength float64

	// NeedPose makes calibration wait for the calibration pose.
	NeedPose bool

	// Pose is the calibration pose name.
	Pose string
}

// DefaultConfig returns a Config matching a VGA depth camera.
func DefaultConfig() Config {
	return Config{
		Width:       640,
		Height:      480,
		FocalLength: 525,
		NeedPose:    true,
		Pose:        "Psi",
	}
}

// Projection converts between real-world millimetres (Y up) and screen
// pixels (Y down) with a pinhole model centred on the image.
type Projection struct {
	Width       int
	Height      int
	FocalLength float64
}

// ToProjective maps a real-world point onto the image plane. Points at or
// behind the camera map to the image centre.
func (p Projection) ToProjective(v r3.Vec) r2.Vec {
	cx, cy := float64(p.Width)/2, float64(p.Height)/2
	if v.Z <= 0 {
		return r2.Vec{X: cx, Y: cy}
	}
	return r2.Vec{
		X: cx + p.FocalLength*v.X/v.Z,
		Y: cy - p.FocalLength*v.Y/v.Z,
	}
}

// ToRealWorld maps a screen point at the given depth back to real-world
// coordinates.
func (p Projection) ToRealWorld(s r2.Vec, z float64) r3.Vec {
	cx, cy := float64(p.Width)/2, float64(p.Height)/2
	return r3.Vec{
		X: (s.X - cx) * z / p.FocalLength,
		Y: (cy - s.Y) * z / p.FocalLength,
		Z: z,
	}
}
