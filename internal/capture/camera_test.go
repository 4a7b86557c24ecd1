package capture

import (
	"errors"
	"testing"
)

func TestNewCamera(t *testing.T) {
	tests := []struct {
		name     string
		deviceID int
	}{
		{name: "default device", deviceID: 0},
		{name: "device 1", deviceID: 1},
		{name: "device 2", deviceID: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewCamera(tt.deviceID)

			if cam == nil {
				t.Fatal("NewCamera returned nil")
			}

			if got := cam.FPS(); got != DefaultFPS {
				t.Errorf("FPS() = %d, want %d (default)", got, DefaultFPS)
			}

			if cam.IsOpen() {
				t.Error("camera should not be running initially")
			}

			if cam.Mirrored() {
				t.Error("camera should not mirror by default")
			}
		})
	}
}

func TestCamera_SetFPS(t *testing.T) {
	cam := NewCamera(0)

	tests := []struct {
		name    string
		fps     int
		wantFPS int
	}{
		{name: "set to 10", fps: 10, wantFPS: 10},
		{name: "set to 30", fps: 30, wantFPS: 30},
		{name: "set to 1", fps: 1, wantFPS: 1},
		{name: "set to 0 should keep previous", fps: 0, wantFPS: 1},
		{name: "set to negative should keep previous", fps: -5, wantFPS: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam.SetFPS(tt.fps)

			if got := cam.FPS(); got != tt.wantFPS {
				t.Errorf("FPS() = %d, want %d", got, tt.wantFPS)
			}
		})
	}
}

func TestCamera_SetMirror(t *testing.T) {
	cam := NewCamera(0)

	cam.SetMirror(true)
	if !cam.Mirrored() {
		t.Error("Mirrored() should be true after SetMirror(true)")
	}

	cam.SetMirror(false)
	if cam.Mirrored() {
		t.Error("Mirrored() should be false after SetMirror(false)")
	}
}

func TestCamera_ReadFrame_NotOpened(t *testing.T) {
	for name, cam := range map[string]Camera{
		"device": NewCamera(0),
		"file":   NewFileCamera("recording.avi"),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := cam.ReadFrame()
			if !errors.Is(err, ErrCameraNotOpen) {
				t.Errorf("ReadFrame() error = %v, want %v", err, ErrCameraNotOpen)
			}
		})
	}
}

func TestCamera_Close_NotOpened(t *testing.T) {
	cam := NewCamera(0)

	if err := cam.Close(); err != nil {
		t.Errorf("Close() on not opened camera should return nil, got: %v", err)
	}
}

func TestFileCamera_OpenMissingFile(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires OpenCV video backends")
	}

	cam := NewFileCamera("does-not-exist.avi")
	if err := cam.Open(); err == nil {
		defer cam.Close()
		// Some backends open lazily and only fail on read.
		if _, err := cam.ReadFrame(); err == nil {
			t.Error("expected reading a missing file to fail")
		}
	}
}

func TestCamera_OpenClose_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cam := NewCamera(0)

	if err := cam.Open(); err != nil {
		t.Skipf("skipping test - camera not available: %v", err)
	}

	if !cam.IsOpen() {
		t.Error("IsOpen() should return true after Open()")
	}

	mat, err := cam.ReadFrame()
	if err != nil {
		t.Skipf("skipping test - camera returned no frame: %v", err)
	}
	if mat.Empty() {
		t.Error("ReadFrame() returned empty mat")
	}
	mat.Close()

	if err := cam.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}

	if cam.IsOpen() {
		t.Error("IsOpen() should return false after Close()")
	}
}
