package app

import (
	"path/filepath"
	"testing"

	"github.com/ayusman/depthpose/internal/config"
	"github.com/ayusman/depthpose/internal/sensor"
	"github.com/ayusman/depthpose/internal/store"
)

func TestOptions_HandleKey(t *testing.T) {
	tests := []struct {
		key     int
		handled bool
		check   func(o Options) bool
	}{
		{KeyImage, true, func(o Options) bool { return !o.ShowImage }},
		{KeyUsers, true, func(o Options) bool { return !o.ShowUsers }},
		{KeySkeleton, true, func(o Options) bool { return !o.ShowSkeleton }},
		{KeyDepth, true, func(o Options) bool { return !o.ShowDepth }},
		{KeyMirror, true, func(o Options) bool { return o.Mirror }},
		{'x', false, func(o Options) bool { return o == DefaultOptions() }},
	}

	for _, tt := range tests {
		t.Run(string(rune(tt.key)), func(t *testing.T) {
			o := DefaultOptions()
			if got := o.HandleKey(tt.key); got != tt.handled {
				t.Errorf("HandleKey(%q) = %v, want %v", rune(tt.key), got, tt.handled)
			}
			if !tt.check(o) {
				t.Errorf("unexpected options after %q: %+v", rune(tt.key), o)
			}
		})
	}

	t.Run("toggle twice restores", func(t *testing.T) {
		o := DefaultOptions()
		o.HandleKey(KeyImage)
		o.HandleKey(KeyImage)
		if o != DefaultOptions() {
			t.Errorf("options = %+v, want defaults", o)
		}
	})
}

func TestOptions_SetAndMap(t *testing.T) {
	o := DefaultOptions()

	if !o.Set(SettingMirror, true) {
		t.Fatal("Set(mirror) should be handled")
	}
	if o.Set("volume", true) {
		t.Error("Set(volume) should not be handled")
	}

	m := o.Map()
	if len(m) != 5 {
		t.Errorf("len(Map()) = %d, want 5", len(m))
	}
	if !m[SettingMirror] || !m[SettingShowImage] {
		t.Errorf("Map() = %v", m)
	}
}

// mirrorSensor records mirror requests on top of the mock sensor.
type mirrorSensor struct {
	*sensor.Mock
	mirrors []bool
}

func (m *mirrorSensor) SetMirror(mirror bool) {
	m.mirrors = append(m.mirrors, mirror)
	m.Mock.SetMirror(mirror)
}

func newTestApp(t *testing.T, s *store.Store) (*App, *mirrorSensor) {
	t.Helper()
	sn := &mirrorSensor{Mock: sensor.NewMock(sensor.DefaultConfig(), nil, false)}
	a := New(Config{
		Sensor:  sn,
		Store:   s,
		Options: DefaultOptions(),
	})
	return a, sn
}

func TestApp_HandleKey(t *testing.T) {
	a, sn := newTestApp(t, nil)

	if a.handleKey(NoKey) {
		t.Error("no key should not quit")
	}
	if !a.handleKey(KeyQuit) {
		t.Error("q should quit")
	}

	a.handleKey(KeyImage)
	if a.Options().ShowImage {
		t.Error("i should hide the camera image")
	}

	a.handleKey(KeyMirror)
	if !a.Options().Mirror {
		t.Error("m should enable mirroring")
	}
	if len(sn.mirrors) == 0 || !sn.mirrors[len(sn.mirrors)-1] {
		t.Errorf("mirror not applied to sensor: %v", sn.mirrors)
	}

	ctrl := sn.Controller()
	a.handleKey(KeyFrameSync)
	if !ctrl.FrameSynced() {
		t.Error("f should enable frame sync")
	}
	a.handleKey(KeyFrameSync)
	if ctrl.FrameSynced() {
		t.Error("second f should disable frame sync")
	}
}

func TestApp_GestureKey(t *testing.T) {
	sn := sensor.NewMock(sensor.DefaultConfig(), nil, false)
	a := New(Config{Sensor: sn, Gestures: []string{"Wave", "Click"}})

	if a.Gestures().Active() != "Wave" {
		t.Fatalf("active gesture = %q, want Wave", a.Gestures().Active())
	}
	a.handleKey(KeyGesture)
	if a.Gestures().Active() != "Click" {
		t.Errorf("active gesture after g = %q, want Click", a.Gestures().Active())
	}
}

func TestApp_OptionsPersisted(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	a, _ := newTestApp(t, s)
	if !a.SetOption(SettingShowUsers, false) {
		t.Fatal("SetOption(show_users) should be handled")
	}
	if a.SetOption("volume", true) {
		t.Error("SetOption(volume) should not be handled")
	}

	// A new app on the same store picks up the saved toggles.
	b, _ := newTestApp(t, s)
	if b.Options().ShowUsers {
		t.Error("show_users should be loaded as false")
	}
	if !b.Options().ShowImage {
		t.Error("show_image should keep its default")
	}
}

func TestNew_Defaults(t *testing.T) {
	a := New(Config{Sensor: sensor.NewMock(sensor.DefaultConfig(), nil, false)})

	if a.Mode() != config.ModePose {
		t.Errorf("Mode() = %q, want %q", a.Mode(), config.ModePose)
	}
	if len(a.config.Palette) != 11 {
		t.Errorf("default palette has %d entries, want 11", len(a.config.Palette))
	}
	if a.config.KeyWaitMs != DefaultKeyWaitMs {
		t.Errorf("KeyWaitMs = %d, want %d", a.config.KeyWaitMs, DefaultKeyWaitMs)
	}
	if _, ok := a.LatestJPEG(); ok {
		t.Error("LatestJPEG() should be empty before the first frame")
	}
}
