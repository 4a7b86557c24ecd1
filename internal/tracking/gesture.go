package tracking

import (
	"log"
	"sync"
)

// GestureStatus is the recognition state of the active gesture.
type GestureStatus int

const (
	Unrecognized GestureStatus = iota
	InProgress
	Recognized
)

func (s GestureStatus) String() string {
	switch s {
	case InProgress:
		return "Progress"
	case Recognized:
		return "Recognized"
	default:
		return "Unrecognize"
	}
}

// GestureTracker follows one active gesture out of a list. Events for other
// gestures are ignored.
type GestureTracker struct {
	NopObserver

	mu       sync.Mutex
	gestures []string
	index    int
	status   GestureStatus
	progress float64
}

// NewGestureTracker creates a tracker with the first gesture active.
func NewGestureTracker(gestures []string) *GestureTracker {
	return &GestureTracker{gestures: append([]string(nil), gestures...)}
}

// Active returns the active gesture name, or "" when the list is empty.
func (g *GestureTracker) Active() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active()
}

func (g *GestureTracker) active() string {
	if len(g.gestures) == 0 {
		return ""
	}
	return g.gestures[g.index]
}

// Status returns the state of the active gesture and its last progress.
func (g *GestureTracker) Status() (GestureStatus, float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status, g.progress
}

// Cycle activates the next gesture, wrapping at the end of the list, and
// returns its name.
func (g *GestureTracker) Cycle() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.gestures) == 0 {
		return ""
	}
	g.index = (g.index + 1) % len(g.gestures)
	g.reset()
	log.Printf("Active gesture: %s", g.active())
	return g.active()
}

func (g *GestureTracker) reset() {
	g.status = Unrecognized
	g.progress = 0
}

func (g *GestureTracker) matches(name string) bool {
	return name == "" || name == g.active()
}

func (g *GestureTracker) GestureProgress(name string, progress float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.matches(name) {
		return
	}
	g.status = InProgress
	g.progress = progress
}

func (g *GestureTracker) GestureRecognized(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.matches(name) {
		return
	}
	log.Printf("Gesture recognized: %s", g.active())
	g.status = Recognized
	g.progress = 1
}

func (g *GestureTracker) GestureChanged() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reset()
}
