package tray

import (
	"testing"

	"github.com/ayusman/depthpose/internal/app"
)

func TestTray_Toggle(t *testing.T) {
	tr := New(app.DefaultOptions())

	var got []app.Options
	tr.OnChange(func(o app.Options) { got = append(got, o) })

	tr.handleToggle(app.SettingMirror)
	tr.handleToggle(app.SettingShowDepth)

	if len(got) != 2 {
		t.Fatalf("expected 2 callbacks, got %d", len(got))
	}
	if !got[0].Mirror || !got[0].ShowDepth {
		t.Errorf("first change: %+v", got[0])
	}
	if !got[1].Mirror || got[1].ShowDepth {
		t.Errorf("second change: %+v", got[1])
	}
	if tr.Options() != got[1] {
		t.Errorf("tray options %+v, want %+v", tr.Options(), got[1])
	}
}

func TestTray_UnknownSetting(t *testing.T) {
	tr := New(app.DefaultOptions())

	called := false
	tr.OnChange(func(app.Options) { called = true })
	tr.handleToggle("volume")

	if called {
		t.Error("callback should not run for an unknown setting")
	}
	if tr.Options() != app.DefaultOptions() {
		t.Errorf("options changed: %+v", tr.Options())
	}
}

func TestTray_SetOptionsBeforeReady(t *testing.T) {
	tr := New(app.DefaultOptions())

	opts := app.Options{Mirror: true}
	tr.SetOptions(opts)
	tr.SetStatus("Users:1 Tracked:1")

	if tr.Options() != opts {
		t.Errorf("expected %+v, got %+v", opts, tr.Options())
	}
}

func TestTray_TogglesCoverEverySetting(t *testing.T) {
	tr := New(app.DefaultOptions())

	names := app.DefaultOptions().Map()
	if len(tr.toggles) != len(names) {
		t.Fatalf("expected %d toggles, got %d", len(names), len(tr.toggles))
	}
	for _, tg := range tr.toggles {
		if _, ok := names[tg.setting]; !ok {
			t.Errorf("toggle %q has no matching setting", tg.setting)
		}
	}
}
