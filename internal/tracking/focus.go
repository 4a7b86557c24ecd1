package tracking

import (
	"github.com/ayusman/depthpose/internal/sensor"
)

// RaiseHand is the focus gesture reported by FocusDetector.
const RaiseHand = "RaiseHand"

// DefaultFocusFrames is how many consecutive updates the focus gesture must
// be held before a session starts.
const DefaultFocusFrames = 15

// FocusDetector synthesizes session events for sensors without a gesture
// middleware. Holding either hand above the head starts a session; the
// session ends once the scene has been empty for the same number of updates.
type FocusDetector struct {
	frames    int
	held      int
	idle      int
	inSession bool
}

// NewFocusDetector creates a detector requiring frames consecutive updates.
func NewFocusDetector(frames int) *FocusDetector {
	if frames <= 0 {
		frames = DefaultFocusFrames
	}
	return &FocusDetector{frames: frames}
}

// Update inspects one frame of skeletons and returns the session events it
// produces.
func (d *FocusDetector) Update(skeletons []sensor.Skeleton) []sensor.Event {
	if d.inSession {
		if len(skeletons) > 0 {
			d.idle = 0
			return nil
		}
		d.idle++
		if d.idle < d.frames {
			return nil
		}
		d.idle = 0
		d.inSession = false
		return []sensor.Event{{Kind: sensor.SessionEnd}}
	}

	if !anyHandRaised(skeletons) {
		d.held = 0
		return nil
	}
	d.held++
	if d.held < d.frames {
		return []sensor.Event{{
			Kind:     sensor.SessionFocus,
			Name:     RaiseHand,
			Progress: float64(d.held) / float64(d.frames),
		}}
	}
	d.held = 0
	d.inSession = true
	return []sensor.Event{{Kind: sensor.SessionStart, Name: RaiseHand}}
}

func anyHandRaised(skeletons []sensor.Skeleton) bool {
	for i := range skeletons {
		s := &skeletons[i]
		head, ok := s.Joint(sensor.Head)
		if !ok {
			continue
		}
		for _, hand := range []sensor.JointType{sensor.LeftHand, sensor.RightHand} {
			if jp, ok := s.Joint(hand); ok && jp.Position.Y > head.Position.Y {
				return true
			}
		}
	}
	return false
}
