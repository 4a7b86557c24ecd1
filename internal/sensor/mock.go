package sensor

import (
	"context"
	"errors"
	"sync"
	"time"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// MockFrame is one scripted sensor update.
type MockFrame struct {
	Skeletons []Skeleton
	Depth     *DepthMap
	Labels    *LabelMap
	Events    []Event
}

// Mock is a scripted Sensor for tests and demos. It plays back MockFrames in
// order and simulates the middleware's calibration handshake.
type Mock struct {
	config   Config
	proj     Projection
	ctrl     *simController
	frames   []MockFrame
	index    int
	loop     bool
	started  bool
	err      error
	present  presence
	produced int
	mirror   bool
	mu       sync.Mutex
}

// NewMock creates a Mock sensor that plays the given frames. With loop set
// it restarts from the first frame instead of returning ErrEndOfStream.
func NewMock(config Config, frames []MockFrame, loop bool) *Mock {
	return &Mock{
		config:  config,
		proj:    Projection{Width: config.Width, Height: config.Height, FocalLength: config.FocalLength},
		ctrl:    newSimController(config),
		frames:  frames,
		loop:    loop,
		present: make(presence),
	}
}

// SetError makes every following WaitAndUpdate fail with err.
func (m *Mock) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// FailCalibration makes the next calibration attempt for id fail.
func (m *Mock) FailCalibration(id UserID) {
	m.ctrl.failCalibration(id)
}

// Calls returns the controller requests made so far, in order.
func (m *Mock) Calls() []string {
	return m.ctrl.callLog()
}

// Produced returns the number of frames delivered.
func (m *Mock) Produced() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.produced
}

// Start implements Sensor.
func (m *Mock) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = true
	return nil
}

// WaitAndUpdate implements Sensor.
func (m *Mock) WaitAndUpdate(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	if !m.started {
		return nil, errors.New("sensor: not started")
	}

	if m.index >= len(m.frames) {
		if !m.loop || len(m.frames) == 0 {
			return nil, ErrEndOfStream
		}
		m.index = 0
	}

	scripted := m.frames[m.index]
	m.index++
	m.produced++

	color := gocv.NewMatWithSize(m.config.Height, m.config.Width, gocv.MatTypeCV8UC3)
	color.SetTo(gocv.NewScalar(128, 128, 128, 0))

	events := m.present.update(scripted.Skeletons)
	for _, ev := range events {
		if ev.Kind == UserLost {
			m.ctrl.forget(ev.User)
		}
	}
	events = append(events, m.ctrl.drain()...)
	events = append(events, scripted.Events...)

	return &Frame{
		Color:     &color,
		Depth:     scripted.Depth,
		Labels:    scripted.Labels,
		Skeletons: scripted.Skeletons,
		Events:    events,
		Timestamp: time.Now(),
	}, nil
}

// ToProjective implements Sensor.
func (m *Mock) ToProjective(p r3.Vec) r2.Vec {
	return m.proj.ToProjective(p)
}

// Controller implements Sensor.
func (m *Mock) Controller() Controller {
	return m.ctrl
}

// Close implements Sensor.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = false
	return nil
}

// presence tracks which users are in the scene and reports arrivals and
// departures as events.
type presence map[UserID]bool

func (p presence) update(skeletons []Skeleton) []Event {
	var events []Event
	seen := make(map[UserID]bool, len(skeletons))
	for _, s := range skeletons {
		seen[s.User] = true
		if !p[s.User] {
			p[s.User] = true
			events = append(events, Event{Kind: UserDetected, User: s.User})
		}
	}
	for id := range p {
		if !seen[id] {
			delete(p, id)
			events = append(events, Event{Kind: UserLost, User: id})
		}
	}
	return events
}

func joints(positions map[JointType]r3.Vec) map[JointType]JointPosition {
	out := make(map[JointType]JointPosition, len(positions))
	for t, p := range positions {
		out[t] = JointPosition{Position: p, Confidence: 1}
	}
	return out
}

// torso returns the joints shared by the presets: a user standing two
// metres from the camera.
func torso() map[JointType]r3.Vec {
	return map[JointType]r3.Vec{
		Head:          {X: 0, Y: 650, Z: 2000},
		Neck:          {X: 0, Y: 450, Z: 2000},
		Torso:         {X: 0, Y: 200, Z: 2000},
		LeftShoulder:  {X: -180, Y: 450, Z: 2000},
		RightShoulder: {X: 180, Y: 450, Z: 2000},
		LeftHip:       {X: -120, Y: 0, Z: 2000},
		RightHip:      {X: 120, Y: 0, Z: 2000},
		LeftKnee:      {X: -130, Y: -450, Z: 2000},
		RightKnee:     {X: 130, Y: -450, Z: 2000},
		LeftFoot:      {X: -140, Y: -900, Z: 2000},
		RightFoot:     {X: 140, Y: -900, Z: 2000},
	}
}

// CrossedArmsSkeleton returns a skeleton with both forearms crossed in front
// of the chest, forming an X centred at (0, 300).
func CrossedArmsSkeleton(id UserID) Skeleton {
	p := torso()
	p[LeftElbow] = r3.Vec{X: -200, Y: 200, Z: 1800}
	p[LeftHand] = r3.Vec{X: 200, Y: 400, Z: 1700}
	p[RightElbow] = r3.Vec{X: 200, Y: 200, Z: 1800}
	p[RightHand] = r3.Vec{X: -200, Y: 400, Z: 1700}
	return Skeleton{User: id, Joints: joints(p)}
}

// ArmsDownSkeleton returns a skeleton with both arms hanging straight down.
// The forearms are vertical in the projected plane.
func ArmsDownSkeleton(id UserID) Skeleton {
	p := torso()
	p[LeftElbow] = r3.Vec{X: -200, Y: 150, Z: 2000}
	p[LeftHand] = r3.Vec{X: -200, Y: -100, Z: 2000}
	p[RightElbow] = r3.Vec{X: 200, Y: 150, Z: 2000}
	p[RightHand] = r3.Vec{X: 200, Y: -100, Z: 2000}
	return Skeleton{User: id, Joints: joints(p)}
}

// ParallelArmsSkeleton returns a skeleton with both forearms held forward
// and level, side by side.
func ParallelArmsSkeleton(id UserID) Skeleton {
	p := torso()
	p[LeftElbow] = r3.Vec{X: -200, Y: 250, Z: 1800}
	p[LeftHand] = r3.Vec{X: -150, Y: 250, Z: 1500}
	p[RightElbow] = r3.Vec{X: 200, Y: 270, Z: 1800}
	p[RightHand] = r3.Vec{X: 150, Y: 270, Z: 1500}
	return Skeleton{User: id, Joints: joints(p)}
}

// Offset returns a copy of s shifted by d in real-world space, for placing
// several preset users in one scene.
func Offset(s Skeleton, d r3.Vec) Skeleton {
	out := Skeleton{User: s.User, Joints: make(map[JointType]JointPosition, len(s.Joints))}
	for t, jp := range s.Joints {
		jp.Position = r3.Add(jp.Position, d)
		out.Joints[t] = jp
	}
	return out
}

// SetMirror records the mirror setting. Scripted frames are not flipped.
func (m *Mock) SetMirror(mirror bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mirror = mirror
}

// Mirrored reports the last mirror setting.
func (m *Mock) Mirrored() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mirror
}
