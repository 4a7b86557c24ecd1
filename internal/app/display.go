package app

import (
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// NoKey is returned by PollKey when no key was pressed.
const NoKey = -1

// Display shows rendered frames and reports key presses.
type Display interface {
	Show(img *gocv.Mat)
	// PollKey waits up to waitMs milliseconds for a key press.
	PollKey(waitMs int) int
	Close() error
}

// WindowDisplay shows frames in an OpenCV window.
type WindowDisplay struct {
	window *gocv.Window
}

// NewWindowDisplay opens a window with the given title.
func NewWindowDisplay(name string) *WindowDisplay {
	return &WindowDisplay{window: gocv.NewWindow(name)}
}

func (d *WindowDisplay) Show(img *gocv.Mat) {
	d.window.IMShow(*img)
}

func (d *WindowDisplay) PollKey(waitMs int) int {
	key := d.window.WaitKey(waitMs)
	if key < 0 {
		return NoKey
	}
	return key & 0xff
}

func (d *WindowDisplay) Close() error {
	return d.window.Close()
}

// HeadlessDisplay discards frames. Keys can be queued with Press, which
// makes it usable for scripted runs and tests.
type HeadlessDisplay struct {
	mu     sync.Mutex
	keys   []int
	shown  int
	sleep  bool
	closed bool
}

// NewHeadlessDisplay creates a HeadlessDisplay. With sleep set, PollKey
// waits for the requested time like a window would.
func NewHeadlessDisplay(sleep bool) *HeadlessDisplay {
	return &HeadlessDisplay{sleep: sleep}
}

// Press queues a key to be returned by a later PollKey.
func (d *HeadlessDisplay) Press(key int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.keys = append(d.keys, key)
}

// Shown returns how many frames were displayed.
func (d *HeadlessDisplay) Shown() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shown
}

func (d *HeadlessDisplay) Show(img *gocv.Mat) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shown++
}

func (d *HeadlessDisplay) PollKey(waitMs int) int {
	d.mu.Lock()
	if len(d.keys) > 0 {
		key := d.keys[0]
		d.keys = d.keys[1:]
		d.mu.Unlock()
		return key
	}
	d.mu.Unlock()

	if d.sleep && waitMs > 0 {
		time.Sleep(time.Duration(waitMs) * time.Millisecond)
	}
	return NoKey
}

func (d *HeadlessDisplay) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}
