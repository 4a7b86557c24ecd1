package sensor

import (
	"sync"
)

// simController stands in for the middleware's calibration capability. Pose
// detection and calibration requests complete on the next frame: the queued
// events are drained by the owning sensor.
type simController struct {
	mu        sync.Mutex
	needPose  bool
	pose      string
	tracking  map[UserID]bool
	detecting map[UserID]string
	failNext  map[UserID]bool
	pending   []Event
	synced    bool
	calls     []string
}

func newSimController(cfg Config) *simController {
	return &simController{
		needPose:  cfg.NeedPose,
		pose:      cfg.Pose,
		tracking:  make(map[UserID]bool),
		detecting: make(map[UserID]string),
		failNext:  make(map[UserID]bool),
	}
}

func (c *simController) record(call string) {
	c.calls = append(c.calls, call)
}

func (c *simController) NeedPoseForCalibration() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.needPose
}

func (c *simController) CalibrationPose() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pose
}

func (c *simController) StartPoseDetection(pose string, id UserID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("start-pose-detection")
	c.detecting[id] = pose
	c.pending = append(c.pending, Event{Kind: PoseDetected, User: id, Name: pose})
}

func (c *simController) StopPoseDetection(id UserID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("stop-pose-detection")
	delete(c.detecting, id)
}

func (c *simController) RequestCalibration(id UserID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("request-calibration")
	success := !c.failNext[id]
	delete(c.failNext, id)
	c.pending = append(c.pending,
		Event{Kind: CalibrationStart, User: id},
		Event{Kind: CalibrationEnd, User: id, Success: success},
	)
}

func (c *simController) StartTracking(id UserID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("start-tracking")
	c.tracking[id] = true
}

func (c *simController) StopTracking(id UserID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("stop-tracking")
	delete(c.tracking, id)
}

func (c *simController) IsTracking(id UserID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracking[id]
}

func (c *simController) CanFrameSync() bool { return true }

func (c *simController) FrameSynced() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.synced
}

func (c *simController) SetFrameSync(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.synced == enabled {
		return
	}
	c.synced = enabled
	c.pending = append(c.pending, Event{Kind: FrameSyncChanged})
}

// failCalibration makes the next calibration of id fail.
func (c *simController) failCalibration(id UserID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failNext[id] = true
}

// forget drops all state for a user that left the scene.
func (c *simController) forget(id UserID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tracking, id)
	delete(c.detecting, id)
	delete(c.failNext, id)
}

// drain returns and clears the queued events.
func (c *simController) drain() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	events := c.pending
	c.pending = nil
	return events
}

func (c *simController) callLog() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.calls))
	copy(out, c.calls)
	return out
}
