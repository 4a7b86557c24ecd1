package sensor

import (
	"context"
	"errors"
	"testing"

	"github.com/ayusman/depthpose/internal/capture"
	"gocv.io/x/gocv"
)

// fakeTracker returns the scripted skeleton sets in order, then nothing.
type fakeTracker struct {
	results [][]Skeleton
	err     error
	calls   int
	closed  bool
}

func (f *fakeTracker) Track(frame *gocv.Mat) ([]Skeleton, error) {
	defer func() { f.calls++ }()
	if f.err != nil {
		return nil, f.err
	}
	if f.calls < len(f.results) {
		return f.results[f.calls], nil
	}
	return nil, nil
}

func (f *fakeTracker) Close() error {
	f.closed = true
	return nil
}

func newTestFrames(t *testing.T, n int) []*gocv.Mat {
	t.Helper()
	frames := make([]*gocv.Mat, n)
	for i := range frames {
		m := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
		frames[i] = &m
	}
	t.Cleanup(func() {
		for _, m := range frames {
			m.Close()
		}
	})
	return frames
}

func TestWebcam_TracksUsers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	cam := capture.NewMockCamera(newTestFrames(t, 3), false)
	tracker := &fakeTracker{results: [][]Skeleton{
		{CrossedArmsSkeleton(1)},
		{CrossedArmsSkeleton(1)},
		nil,
	}}

	w := NewWebcam(DefaultConfig(), cam, tracker, false)
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Close()

	if w.Controller().NeedPoseForCalibration() {
		t.Error("webcam sensor should not need a calibration pose")
	}

	ctx := context.Background()

	f, err := w.WaitAndUpdate(ctx)
	if err != nil {
		t.Fatalf("frame 1: %v", err)
	}
	if !equalKinds(kinds(f.Events), []EventKind{UserDetected}) {
		t.Errorf("frame 1 events = %v, want [user-detected]", kinds(f.Events))
	}
	if len(f.Skeletons) != 1 {
		t.Errorf("frame 1 skeletons = %d, want 1", len(f.Skeletons))
	}
	f.Close()

	w.Controller().RequestCalibration(1)

	f, _ = w.WaitAndUpdate(ctx)
	if !equalKinds(kinds(f.Events), []EventKind{CalibrationStart, CalibrationEnd}) {
		t.Errorf("frame 2 events = %v, want calibration", kinds(f.Events))
	}
	f.Close()

	f, _ = w.WaitAndUpdate(ctx)
	if !equalKinds(kinds(f.Events), []EventKind{UserLost}) {
		t.Errorf("frame 3 events = %v, want [user-lost]", kinds(f.Events))
	}
	f.Close()

	if _, err := w.WaitAndUpdate(ctx); !errors.Is(err, ErrEndOfStream) {
		t.Errorf("WaitAndUpdate() at end error = %v, want ErrEndOfStream", err)
	}
}

func TestWebcam_LoopRewinds(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	cam := capture.NewMockCamera(newTestFrames(t, 2), false)
	w := NewWebcam(DefaultConfig(), cam, nil, true)
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Close()

	w.SetMirror(true)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		f, err := w.WaitAndUpdate(ctx)
		if err != nil {
			t.Fatalf("frame %d: %v", i+1, err)
		}
		f.Close()
	}

	f, err := w.WaitAndUpdate(ctx)
	if err != nil {
		t.Fatalf("rewound frame: %v", err)
	}
	defer f.Close()

	if !equalKinds(kinds(f.Events), []EventKind{EndOfStream}) {
		t.Errorf("events = %v, want [end-of-stream]", kinds(f.Events))
	}
	if !cam.Mirrored() {
		t.Error("mirror setting should survive the rewind")
	}
	if cam.Reads() != 3 {
		t.Errorf("camera reads = %d, want 3", cam.Reads())
	}
}

func TestWebcam_TrackerError(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	cam := capture.NewMockCamera(newTestFrames(t, 1), true)
	tracker := &fakeTracker{err: errors.New("service crashed")}
	w := NewWebcam(DefaultConfig(), cam, tracker, false)
	w.Start()

	f, err := w.WaitAndUpdate(context.Background())
	if err != nil {
		t.Fatalf("tracker errors should not fail the frame: %v", err)
	}
	defer f.Close()

	if len(f.Skeletons) != 0 {
		t.Errorf("skeletons = %d, want 0", len(f.Skeletons))
	}

	w.Close()
	if !tracker.closed {
		t.Error("Close() should close the tracker")
	}
}

func TestWebcam_NotStarted(t *testing.T) {
	cam := capture.NewMockCamera(nil, false)
	w := NewWebcam(DefaultConfig(), cam, nil, false)

	if _, err := w.WaitAndUpdate(context.Background()); !errors.Is(err, capture.ErrCameraNotOpen) {
		t.Errorf("WaitAndUpdate() error = %v, want ErrCameraNotOpen", err)
	}
}
