// Package tray provides a system tray menu for the depthpose viewer's
// display toggles.
package tray

import (
	"sync"

	"github.com/ayusman/depthpose/internal/app"
	"github.com/getlantern/systray"
)

// toggle is one checkable menu entry bound to an app setting.
type toggle struct {
	setting string
	title   string
	tooltip string
	item    *systray.MenuItem
}

// Tray represents the system tray application.
type Tray struct {
	mu       sync.RWMutex
	options  app.Options
	onChange func(app.Options)
	onQuit   func()

	toggles  []*toggle
	menuMode *systray.MenuItem
}

// New creates a Tray whose check marks start from opts.
func New(opts app.Options) *Tray {
	return &Tray{
		options: opts,
		toggles: []*toggle{
			{setting: app.SettingShowImage, title: "Show Image", tooltip: "Draw the camera image"},
			{setting: app.SettingShowUsers, title: "Show Users", tooltip: "Colour pixels by user label"},
			{setting: app.SettingShowSkeleton, title: "Show Skeleton", tooltip: "Draw tracked skeletons"},
			{setting: app.SettingShowDepth, title: "Show Depth", tooltip: "Shade pixels by depth"},
			{setting: app.SettingMirror, title: "Mirror", tooltip: "Mirror the sensor output"},
		},
	}
}

// OnChange sets the callback invoked with the new options after a toggle.
func (t *Tray) OnChange(fn func(app.Options)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChange = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("DepthPose")
	systray.SetTooltip("DepthPose crossed arms viewer")

	t.mu.Lock()
	values := t.options.Map()
	for _, tg := range t.toggles {
		tg.item = systray.AddMenuItemCheckbox(tg.title, tg.tooltip, values[tg.setting])
	}
	systray.AddSeparator()

	t.menuMode = systray.AddMenuItem("Status: starting", "Viewer status")
	t.menuMode.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit DepthPose")

	for _, tg := range t.toggles {
		go func(tg *toggle) {
			for range tg.item.ClickedCh {
				t.handleToggle(tg.setting)
			}
		}(tg)
	}

	go func() {
		<-menuQuit.ClickedCh
		t.handleQuit()
	}()
}

func (t *Tray) onExit() {}

// handleToggle flips one setting and reports the new options.
func (t *Tray) handleToggle(setting string) {
	t.mu.Lock()
	value := !t.options.Map()[setting]
	if !t.options.Set(setting, value) {
		t.mu.Unlock()
		return
	}
	for _, tg := range t.toggles {
		if tg.setting == setting && tg.item != nil {
			if value {
				tg.item.Check()
			} else {
				tg.item.Uncheck()
			}
		}
	}
	opts := t.options
	callback := t.onChange
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(opts)
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetOptions syncs the check marks with options changed elsewhere, for
// example by a key press or the settings API.
func (t *Tray) SetOptions(opts app.Options) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.options = opts
	values := opts.Map()
	for _, tg := range t.toggles {
		if tg.item == nil {
			continue
		}
		if values[tg.setting] {
			tg.item.Check()
		} else {
			tg.item.Uncheck()
		}
	}
}

// SetStatus updates the disabled status line in the menu.
func (t *Tray) SetStatus(text string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuMode != nil {
		t.menuMode.SetTitle("Status: " + text)
	}
}

// Options returns the options the menu currently shows.
func (t *Tray) Options() app.Options {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.options
}

// Quit closes the tray, making Run return.
func (t *Tray) Quit() {
	systray.Quit()
}
