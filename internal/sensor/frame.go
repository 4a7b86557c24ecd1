package sensor

import (
	"fmt"
	"time"

	"gocv.io/x/gocv"
)

// DepthMap holds one depth frame in millimetres, row-major. A value of 0
// means no reading.
type DepthMap struct {
	Width  int
	Height int
	Data   []uint16
}

// NewDepthMap allocates a zeroed depth map.
func NewDepthMap(width, height int) *DepthMap {
	return &DepthMap{Width: width, Height: height, Data: make([]uint16, width*height)}
}

// At returns the depth at column x, row y.
func (d *DepthMap) At(x, y int) uint16 {
	return d.Data[y*d.Width+x]
}

// Set stores the depth at column x, row y.
func (d *DepthMap) Set(x, y int, v uint16) {
	d.Data[y*d.Width+x] = v
}

// LabelMap assigns each pixel to a user, row-major. 0 means background.
type LabelMap struct {
	Width  int
	Height int
	Data   []UserID
}

// NewLabelMap allocates a label map with every pixel set to background.
func NewLabelMap(width, height int) *LabelMap {
	return &LabelMap{Width: width, Height: height, Data: make([]UserID, width*height)}
}

// At returns the label at column x, row y.
func (l *LabelMap) At(x, y int) UserID {
	return l.Data[y*l.Width+x]
}

// Set stores the label at column x, row y.
func (l *LabelMap) Set(x, y int, id UserID) {
	l.Data[y*l.Width+x] = id
}

// Frame is everything the sensor produced for one update.
// Depth, Labels and Color may be nil when the sensor has no such stream.
type Frame struct {
	Color     *gocv.Mat
	Depth     *DepthMap
	Labels    *LabelMap
	Skeletons []Skeleton
	Events    []Event
	Timestamp time.Time
}

// Skeleton returns the skeleton for the given user, if present in the frame.
func (f *Frame) Skeleton(id UserID) (*Skeleton, bool) {
	for i := range f.Skeletons {
		if f.Skeletons[i].User == id {
			return &f.Skeletons[i], true
		}
	}
	return nil, false
}

// Close releases the color Mat.
func (f *Frame) Close() {
	if f == nil || f.Color == nil {
		return
	}
	f.Color.Close()
	f.Color = nil
}

// EventKind identifies a sensor or middleware notification.
type EventKind int

const (
	UserDetected EventKind = iota
	UserLost
	PoseDetected
	PoseLost
	CalibrationStart
	CalibrationEnd
	SessionFocus
	SessionStart
	SessionEnd
	GestureProgress
	GestureRecognized
	GestureChanged
	FrameSyncChanged
	EndOfStream
)

var eventNames = [...]string{
	UserDetected:      "user-detected",
	UserLost:          "user-lost",
	PoseDetected:      "pose-detected",
	PoseLost:          "pose-lost",
	CalibrationStart:  "calibration-start",
	CalibrationEnd:    "calibration-end",
	SessionFocus:      "session-focus",
	SessionStart:      "session-start",
	SessionEnd:        "session-end",
	GestureProgress:   "gesture-progress",
	GestureRecognized: "gesture-recognized",
	GestureChanged:    "gesture-changed",
	FrameSyncChanged:  "frame-sync-changed",
	EndOfStream:       "end-of-stream",
}

func (k EventKind) String() string {
	if k >= 0 && int(k) < len(eventNames) {
		return eventNames[k]
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is a notification delivered with a frame. Fields that do not apply
// to the kind are left zero.
type Event struct {
	Kind     EventKind
	User     UserID
	Name     string  // pose, gesture or focus gesture name
	Progress float64 // gesture or session focus progress (0.0-1.0)
	Success  bool    // calibration result
}
