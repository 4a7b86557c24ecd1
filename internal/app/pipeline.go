package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ayusman/depthpose/internal/config"
	"github.com/ayusman/depthpose/internal/overlay"
	"github.com/ayusman/depthpose/internal/pose"
	"github.com/ayusman/depthpose/internal/sensor"
	"github.com/ayusman/depthpose/internal/store"
	"github.com/ayusman/depthpose/internal/tracking"
	"gocv.io/x/gocv"
)

// Run starts the sensor and processes frames until ctx is cancelled, the
// quit key is pressed or a non-looping source ends.
//
// Each iteration:
// 1. Wait for the next sensor frame
// 2. Dispatch its events to the calibration, session and gesture trackers
// 3. Render the display mode
// 4. Detect crossed arms for every tracked user and record onsets
// 5. Show the frame, publish the pose update and poll the keyboard
func (a *App) Run(ctx context.Context) error {
	if err := a.sensor.Start(); err != nil {
		return fmt.Errorf("start sensor: %w", err)
	}
	a.applyMirror(a.Options().Mirror)

	log.Printf("Frame loop started in %s mode", a.Mode())
	defer log.Println("Frame loop stopped")

	failures := 0
	for {
		if ctx.Err() != nil {
			return nil
		}

		frame, err := a.sensor.WaitAndUpdate(ctx)
		if err != nil {
			if errors.Is(err, sensor.ErrEndOfStream) {
				log.Println("Sensor reached end of stream")
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			failures++
			log.Printf("Error reading frame: %v", err)
			if failures >= MaxConsecutiveErrors {
				return fmt.Errorf("sensor failed %d times in a row: %w", failures, err)
			}
			continue
		}
		failures = 0

		a.ProcessFrame(frame)
		frame.Close()

		if a.handleKey(a.display.PollKey(a.config.KeyWaitMs)) {
			log.Println("Quit requested")
			return nil
		}
	}
}

// ProcessFrame runs one iteration of the loop on an already acquired frame,
// without polling the keyboard. The caller keeps ownership of frame.
func (a *App) ProcessFrame(frame *sensor.Frame) {
	events := frame.Events
	if a.focus != nil {
		events = append(events, a.focus.Update(frame.Skeletons)...)
	}
	tracking.Dispatch(events, a.calibrator, a.session, a.gestures, a.recorder)

	opts := a.Options()

	canvas, err := a.render(frame, opts)
	if err != nil {
		log.Printf("Error rendering frame: %v", err)
		return
	}
	defer canvas.Close()

	update := PoseUpdate{
		Timestamp: frameTime(frame).UnixMilli(),
		Mode:      a.mode,
		Users:     []UserPose{},
	}
	if a.mode == config.ModePose {
		update.Users = a.detectPoses(&canvas, frame, opts)
	}

	a.display.Show(&canvas)

	var jpeg []byte
	if buf, err := gocv.IMEncode(gocv.JPEGFileExt, canvas); err == nil {
		jpeg = append([]byte(nil), buf.GetBytes()...)
		buf.Close()
	}

	a.mu.Lock()
	if jpeg != nil {
		a.latest = jpeg
	}
	a.last = update
	a.frames++
	a.mu.Unlock()

	if a.config.Publisher != nil {
		a.config.Publisher.Publish(update)
	}
}

// detectPoses evaluates the crossed-arms pose for every tracked user,
// drawing skeletons and markers when enabled.
func (a *App) detectPoses(canvas *gocv.Mat, frame *sensor.Frame, opts Options) []UserPose {
	users := []UserPose{}
	for _, id := range a.calibrator.Tracked() {
		skel, ok := frame.Skeleton(id)
		if !ok {
			continue
		}

		if opts.ShowSkeleton {
			overlay.DrawSkeleton(canvas, skel, a.sensor.ToProjective, a.config.Palette.Color(id).RGBA())
		}

		up := UserPose{User: id}
		le, lh, re, rh, ok := skel.Forearms()
		if ok {
			up.Result = pose.DetectCrossedArms(le, lh, re, rh)
		}

		if up.Result.Crossed {
			world := pose.CrossPoint3D(up.Result.Point, le, lh, re, rh)
			screen := a.sensor.ToProjective(world)
			up.Screen = &screen
			if opts.ShowSkeleton {
				overlay.DrawCrossMarker(canvas, screen)
			}
		}

		a.trackOnset(up)
		users = append(users, up)
	}
	return users
}

// trackOnset records a crossed-arms event on the first frame of each
// crossing, not on every frame it is held.
func (a *App) trackOnset(up UserPose) {
	a.mu.Lock()
	was := a.crossed[up.User]
	a.crossed[up.User] = up.Result.Crossed
	a.mu.Unlock()

	if !up.Result.Crossed || was {
		return
	}

	log.Printf("Crossed arms detected for user %d", up.User)
	e := &store.Event{
		User: int(up.User),
		Kind: store.KindCrossedArms,
		X:    up.Result.Point.X,
		Y:    up.Result.Point.Y,
		Mode: a.mode,
	}
	if up.Screen != nil {
		e.ScreenX, e.ScreenY = up.Screen.X, up.Screen.Y
	}
	a.record(e)
}

func (a *App) record(e *store.Event) {
	if a.config.Store == nil {
		return
	}
	if err := a.config.Store.Events().Create(e); err != nil {
		log.Printf("Failed to record %s event: %v", e.Kind, err)
	}
}

// handleKey applies a key press and reports whether the loop should quit.
func (a *App) handleKey(key int) bool {
	switch key {
	case NoKey:
		return false
	case KeyQuit:
		return true
	case KeyFrameSync:
		ctrl := a.sensor.Controller()
		if !ctrl.CanFrameSync() {
			log.Println("Frame sync is not supported by this sensor")
			return false
		}
		ctrl.SetFrameSync(!ctrl.FrameSynced())
		return false
	case KeyGesture:
		a.gestures.Cycle()
		return false
	}

	o := a.Options()
	if o.HandleKey(key) {
		a.SetOptions(o)
	}
	return false
}

// recorder persists calibration, session and gesture milestones and
// clears per-user pose state when users leave.
type recorder struct {
	tracking.NopObserver
	app *App
}

func (r *recorder) UserLost(id sensor.UserID) {
	r.app.mu.Lock()
	delete(r.app.crossed, id)
	r.app.mu.Unlock()
}

func (r *recorder) CalibrationEnd(id sensor.UserID, success bool) {
	if !success {
		return
	}
	r.app.record(&store.Event{User: int(id), Kind: store.KindCalibration, Mode: r.app.mode})
}

func (r *recorder) SessionStart() {
	r.app.record(&store.Event{Kind: store.KindSession, Name: "start", Mode: r.app.mode})
}

func (r *recorder) SessionEnd() {
	r.app.record(&store.Event{Kind: store.KindSession, Name: "end", Mode: r.app.mode})
}

func (r *recorder) GestureRecognized(name string) {
	active := r.app.gestures.Active()
	if name != "" && name != active {
		return
	}
	name = active
	r.app.record(&store.Event{Kind: store.KindGesture, Name: name, Mode: r.app.mode})
}

func (r *recorder) FrameSyncChanged() {
	log.Printf("Frame sync: %v", r.app.sensor.Controller().FrameSynced())
}

func (r *recorder) EndOfStream() {
	log.Println("Recording restarted from the beginning")
}

// frameTime returns the frame timestamp, or now when unset.
func frameTime(f *sensor.Frame) time.Time {
	if f.Timestamp.IsZero() {
		return time.Now()
	}
	return f.Timestamp
}
