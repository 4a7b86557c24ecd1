// Package tracking turns sensor notifications into per-user calibration,
// session and gesture state.
package tracking

import (
	"github.com/ayusman/depthpose/internal/sensor"
)

// Observer receives sensor notifications. Methods are called synchronously
// from the frame loop, in the order the events arrived.
type Observer interface {
	UserDetected(id sensor.UserID)
	UserLost(id sensor.UserID)
	PoseDetected(pose string, id sensor.UserID)
	PoseLost(pose string, id sensor.UserID)
	CalibrationStart(id sensor.UserID)
	CalibrationEnd(id sensor.UserID, success bool)
	SessionFocus(focus string, progress float64)
	SessionStart()
	SessionEnd()
	GestureProgress(name string, progress float64)
	GestureRecognized(name string)
	GestureChanged()
	FrameSyncChanged()
	EndOfStream()
}

// NopObserver implements Observer with empty methods. Embed it to handle
// only some notifications.
type NopObserver struct{}

func (NopObserver) UserDetected(sensor.UserID)         {}
func (NopObserver) UserLost(sensor.UserID)             {}
func (NopObserver) PoseDetected(string, sensor.UserID) {}
func (NopObserver) PoseLost(string, sensor.UserID)     {}
func (NopObserver) CalibrationStart(sensor.UserID)     {}
func (NopObserver) CalibrationEnd(sensor.UserID, bool) {}
func (NopObserver) SessionFocus(string, float64)       {}
func (NopObserver) SessionStart()                      {}
func (NopObserver) SessionEnd()                        {}
func (NopObserver) GestureProgress(string, float64)    {}
func (NopObserver) GestureRecognized(string)           {}
func (NopObserver) GestureChanged()                    {}
func (NopObserver) FrameSyncChanged()                  {}
func (NopObserver) EndOfStream()                       {}

// Dispatch delivers each event to every observer, event by event.
func Dispatch(events []sensor.Event, observers ...Observer) {
	for _, ev := range events {
		for _, obs := range observers {
			deliver(obs, ev)
		}
	}
}

func deliver(obs Observer, ev sensor.Event) {
	switch ev.Kind {
	case sensor.UserDetected:
		obs.UserDetected(ev.User)
	case sensor.UserLost:
		obs.UserLost(ev.User)
	case sensor.PoseDetected:
		obs.PoseDetected(ev.Name, ev.User)
	case sensor.PoseLost:
		obs.PoseLost(ev.Name, ev.User)
	case sensor.CalibrationStart:
		obs.CalibrationStart(ev.User)
	case sensor.CalibrationEnd:
		obs.CalibrationEnd(ev.User, ev.Success)
	case sensor.SessionFocus:
		obs.SessionFocus(ev.Name, ev.Progress)
	case sensor.SessionStart:
		obs.SessionStart()
	case sensor.SessionEnd:
		obs.SessionEnd()
	case sensor.GestureProgress:
		obs.GestureProgress(ev.Name, ev.Progress)
	case sensor.GestureRecognized:
		obs.GestureRecognized(ev.Name)
	case sensor.GestureChanged:
		obs.GestureChanged()
	case sensor.FrameSyncChanged:
		obs.FrameSyncChanged()
	case sensor.EndOfStream:
		obs.EndOfStream()
	}
}
