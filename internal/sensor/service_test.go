package sensor

import (
	"testing"
)

func TestParseServiceResponse(t *testing.T) {
	t.Run("single skeleton", func(t *testing.T) {
		line := []byte(`{"skeletons":[{"user":1,"joints":{"left_elbow":{"x":-200,"y":200,"z":1800,"confidence":0.9},"right_hand":{"x":-200,"y":400,"z":1700,"confidence":0.5}}}]}` + "\n")

		skeletons, err := parseServiceResponse(line)
		if err != nil {
			t.Fatalf("parseServiceResponse() error = %v", err)
		}
		if len(skeletons) != 1 {
			t.Fatalf("len(skeletons) = %d, want 1", len(skeletons))
		}
		s := skeletons[0]
		if s.User != 1 {
			t.Errorf("User = %d, want 1", s.User)
		}
		le, ok := s.Joint(LeftElbow)
		if !ok {
			t.Fatal("left elbow missing")
		}
		if le.Position.X != -200 || le.Position.Y != 200 || le.Position.Z != 1800 {
			t.Errorf("left elbow = %v", le.Position)
		}
		if le.Confidence != 0.9 {
			t.Errorf("left elbow confidence = %f, want 0.9", le.Confidence)
		}
		if _, ok := s.Joint(RightHand); !ok {
			t.Error("right hand missing")
		}
	})

	t.Run("no skeletons", func(t *testing.T) {
		skeletons, err := parseServiceResponse([]byte(`{"skeletons":[]}`))
		if err != nil {
			t.Fatalf("parseServiceResponse() error = %v", err)
		}
		if len(skeletons) != 0 {
			t.Errorf("len(skeletons) = %d, want 0", len(skeletons))
		}
	})

	t.Run("unknown joints dropped", func(t *testing.T) {
		skeletons, err := parseServiceResponse([]byte(`{"skeletons":[{"user":2,"joints":{"nose":{"x":1,"y":2,"z":3},"head":{"x":0,"y":650,"z":2000}}}]}`))
		if err != nil {
			t.Fatalf("parseServiceResponse() error = %v", err)
		}
		if len(skeletons[0].Joints) != 1 {
			t.Errorf("joints = %v, want only head", skeletons[0].Joints)
		}
	})

	t.Run("user zero skipped", func(t *testing.T) {
		skeletons, err := parseServiceResponse([]byte(`{"skeletons":[{"user":0,"joints":{}},{"user":3,"joints":{}}]}`))
		if err != nil {
			t.Fatalf("parseServiceResponse() error = %v", err)
		}
		if len(skeletons) != 1 || skeletons[0].User != 3 {
			t.Errorf("skeletons = %+v, want only user 3", skeletons)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		if _, err := parseServiceResponse([]byte("not json")); err == nil {
			t.Error("expected an error for invalid JSON")
		}
	})
}

func TestNewPoseService_MissingScript(t *testing.T) {
	if _, err := NewPoseService("/nonexistent/pose_service.py"); err == nil {
		t.Error("expected an error for a missing script")
	}
}
