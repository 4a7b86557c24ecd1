package sensor

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// jointRadius is the real-world radius, in millimetres, of the disc stamped
// at each joint when rasterizing a silhouette.
const jointRadius = 110

// DemoPhaseFrames is the length of each phase of DemoScene.
const DemoPhaseFrames = 45

// Rasterize stamps the silhouette of s into depth and labels. Each joint
// becomes a disc at the joint's depth; nearer pixels win.
func Rasterize(p Projection, s Skeleton, depth *DepthMap, labels *LabelMap) {
	for _, jt := range AllJoints {
		j, ok := s.Joint(jt)
		if !ok || j.Position.Z <= 0 {
			continue
		}
		c := p.ToProjective(j.Position)
		r := p.FocalLength * jointRadius / j.Position.Z
		z := uint16(math.Min(j.Position.Z, math.MaxUint16))

		x0, x1 := int(math.Floor(c.X-r)), int(math.Ceil(c.X+r))
		y0, y1 := int(math.Floor(c.Y-r)), int(math.Ceil(c.Y+r))
		for y := max(y0, 0); y <= min(y1, p.Height-1); y++ {
			for x := max(x0, 0); x <= min(x1, p.Width-1); x++ {
				dx, dy := float64(x)-c.X, float64(y)-c.Y
				if dx*dx+dy*dy > r*r {
					continue
				}
				if depth != nil {
					if cur := depth.At(x, y); cur != 0 && cur < z {
						continue
					}
					depth.Set(x, y, z)
				}
				if labels != nil {
					labels.Set(x, y, s.User)
				}
			}
		}
	}
}

// SceneFrame builds a MockFrame showing the given skeletons with matching
// depth and label maps.
func SceneFrame(config Config, skeletons ...Skeleton) MockFrame {
	p := Projection{Width: config.Width, Height: config.Height, FocalLength: config.FocalLength}
	depth := NewDepthMap(config.Width, config.Height)
	labels := NewLabelMap(config.Width, config.Height)
	for _, s := range skeletons {
		Rasterize(p, s, depth, labels)
	}
	return MockFrame{Skeletons: skeletons, Depth: depth, Labels: labels}
}

// DemoScene returns a scripted session for the mock sensor: an empty room,
// one user with arms down, the same user crossing their arms while a second
// user joins with parallel arms, both crossing, and finally an empty room
// again so every user is lost. While the first user stands alone, each
// named gesture is reported in progress and then recognized.
func DemoScene(config Config, gestures ...string) []MockFrame {
	second := r3.Vec{X: 700, Y: 0, Z: 300}
	phases := [][]Skeleton{
		nil,
		{ArmsDownSkeleton(1)},
		{CrossedArmsSkeleton(1), Offset(ParallelArmsSkeleton(2), second)},
		{CrossedArmsSkeleton(1), Offset(CrossedArmsSkeleton(2), second)},
		{ArmsDownSkeleton(1)},
		nil,
	}

	frames := make([]MockFrame, 0, len(phases)*DemoPhaseFrames)
	for phase, skeletons := range phases {
		f := SceneFrame(config, skeletons...)
		for i := 0; i < DemoPhaseFrames; i++ {
			frame := f
			if phase == 1 {
				frame.Events = gestureEvents(i, gestures)
			}
			frames = append(frames, frame)
		}
	}
	return frames
}

// Frame offsets within a phase of the scripted gesture.
var (
	gestureProgressAt   = map[int]float64{10: 1.0 / 3, 20: 2.0 / 3, 30: 1}
	gestureRecognizedAt = 35
)

func gestureEvents(i int, gestures []string) []Event {
	var events []Event
	progress, inProgress := gestureProgressAt[i]
	for _, name := range gestures {
		switch {
		case inProgress:
			events = append(events, Event{Kind: GestureProgress, Name: name, Progress: progress})
		case i == gestureRecognizedAt:
			events = append(events, Event{Kind: GestureRecognized, Name: name})
		}
	}
	return events
}
