package tracking

import (
	"log"
	"sort"
	"sync"

	"github.com/ayusman/depthpose/internal/sensor"
)

// UserState is the calibration progress of one user.
type UserState int

const (
	// StateUnknown means the user is not in the scene.
	StateUnknown UserState = iota
	// StateWaitingForPose means pose detection is running for the user.
	StateWaitingForPose
	// StateCalibrating means calibration was requested.
	StateCalibrating
	// StateTracking means the skeleton is being tracked.
	StateTracking
)

func (s UserState) String() string {
	switch s {
	case StateWaitingForPose:
		return "waiting-for-pose"
	case StateCalibrating:
		return "calibrating"
	case StateTracking:
		return "tracking"
	default:
		return "unknown"
	}
}

// Calibrator drives the calibration handshake for every user: pose
// detection when the tracker needs a pose, then calibration, then
// tracking. Failed calibrations are retried from the start.
type Calibrator struct {
	NopObserver

	ctrl  sensor.Controller
	mu    sync.Mutex
	users map[sensor.UserID]UserState
}

// NewCalibrator creates a Calibrator issuing requests to ctrl.
func NewCalibrator(ctrl sensor.Controller) *Calibrator {
	return &Calibrator{
		ctrl:  ctrl,
		users: make(map[sensor.UserID]UserState),
	}
}

// State returns the calibration state of a user.
func (c *Calibrator) State(id sensor.UserID) UserState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.users[id]
}

// Tracked returns the ids of tracked users in ascending order.
func (c *Calibrator) Tracked() []sensor.UserID {
	c.mu.Lock()
	defer c.mu.Unlock()

	var ids []sensor.UserID
	for id, s := range c.users {
		if s == StateTracking {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Users returns the number of users in the scene.
func (c *Calibrator) Users() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.users)
}

// begin starts calibration for a user. Caller holds c.mu.
func (c *Calibrator) begin(id sensor.UserID) {
	if c.ctrl.NeedPoseForCalibration() {
		c.users[id] = StateWaitingForPose
		c.ctrl.StartPoseDetection(c.ctrl.CalibrationPose(), id)
		return
	}
	c.users[id] = StateCalibrating
	c.ctrl.RequestCalibration(id)
}

func (c *Calibrator) UserDetected(id sensor.UserID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	log.Printf("User detected: %d (%d in scene)", id, len(c.users)+1)
	c.begin(id)
}

func (c *Calibrator) UserLost(id sensor.UserID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	log.Printf("User lost: %d", id)
	delete(c.users, id)
}

func (c *Calibrator) PoseDetected(pose string, id sensor.UserID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.users[id] != StateWaitingForPose {
		return
	}
	log.Printf("Pose %s detected for user %d", pose, id)
	c.ctrl.StopPoseDetection(id)
	c.users[id] = StateCalibrating
	c.ctrl.RequestCalibration(id)
}

func (c *Calibrator) PoseLost(pose string, id sensor.UserID) {
	log.Printf("Pose %s lost for user %d", pose, id)
}

func (c *Calibrator) CalibrationStart(id sensor.UserID) {
	log.Printf("Calibration started for user %d", id)
}

func (c *Calibrator) CalibrationEnd(id sensor.UserID, success bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.users[id]; !ok {
		return
	}
	if success {
		log.Printf("Calibration succeeded for user %d", id)
		c.ctrl.StartTracking(id)
		c.users[id] = StateTracking
		return
	}
	log.Printf("Calibration failed for user %d, retrying", id)
	c.begin(id)
}
