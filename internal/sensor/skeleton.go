// Package sensor defines the depth sensor and skeleton tracker collaborators
// consumed by the frame loop, along with mock and webcam-backed
// implementations.
package sensor

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// UserID identifies a tracked user. Label 0 in a LabelMap means "no user".
type UserID uint16

// JointType names a tracked skeleton joint.
type JointType string

// Skeleton joints reported by the tracker.
const (
	Head          JointType = "head"
	Neck          JointType = "neck"
	Torso         JointType = "torso"
	LeftShoulder  JointType = "left_shoulder"
	LeftElbow     JointType = "left_elbow"
	LeftHand      JointType = "left_hand"
	RightShoulder JointType = "right_shoulder"
	RightElbow    JointType = "right_elbow"
	RightHand     JointType = "right_hand"
	LeftHip       JointType = "left_hip"
	LeftKnee      JointType = "left_knee"
	LeftFoot      JointType = "left_foot"
	RightHip      JointType = "right_hip"
	RightKnee     JointType = "right_knee"
	RightFoot     JointType = "right_foot"
)

// AllJoints lists every joint in the full skeleton profile.
var AllJoints = []JointType{
	Head, Neck, Torso,
	LeftShoulder, LeftElbow, LeftHand,
	RightShoulder, RightElbow, RightHand,
	LeftHip, LeftKnee, LeftFoot,
	RightHip, RightKnee, RightFoot,
}

// JointPosition is a joint position in real-world millimetres together with
// the tracker's confidence in it (0.0-1.0).
type JointPosition struct {
	Position   r3.Vec  `json:"position"`
	Confidence float64 `json:"confidence"`
}

// Skeleton holds the joints of one tracked user for a single frame.
type Skeleton struct {
	User   UserID                      `json:"user"`
	Joints map[JointType]JointPosition `json:"joints"`
}

// Joint returns the position of the given joint and whether it was reported.
func (s *Skeleton) Joint(t JointType) (JointPosition, bool) {
	if s == nil || s.Joints == nil {
		return JointPosition{}, false
	}
	jp, ok := s.Joints[t]
	return jp, ok
}

// Forearms returns the left elbow, left hand, right elbow and right hand
// positions. ok is false if any of them is missing.
func (s *Skeleton) Forearms() (leftElbow, leftHand, rightElbow, rightHand r3.Vec, ok bool) {
	le, ok1 := s.Joint(LeftElbow)
	lh, ok2 := s.Joint(LeftHand)
	re, ok3 := s.Joint(RightElbow)
	rh, ok4 := s.Joint(RightHand)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return r3.Vec{}, r3.Vec{}, r3.Vec{}, r3.Vec{}, false
	}
	return le.Position, lh.Position, re.Position, rh.Position, true
}
