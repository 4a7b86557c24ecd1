package app

import (
	"fmt"

	"github.com/ayusman/depthpose/internal/config"
	"github.com/ayusman/depthpose/internal/depth"
	"github.com/ayusman/depthpose/internal/overlay"
	"github.com/ayusman/depthpose/internal/sensor"
	"github.com/ayusman/depthpose/internal/tracking"
	"gocv.io/x/gocv"
)

// render builds the BGR canvas for the current mode. The caller closes the
// returned Mat.
func (a *App) render(frame *sensor.Frame, opts Options) (gocv.Mat, error) {
	width, height := a.frameSize(frame)
	src, err := colorBytes(frame, width, height)
	if err != nil {
		return gocv.Mat{}, err
	}
	pixels := make([]byte, len(src))

	switch a.mode {
	case config.ModeDepth:
		copy(pixels, src)
		if opts.ShowDepth && frame.Depth != nil {
			hist := depth.Histogram(frame.Depth, a.config.MaxDepth)
			if err := depth.ApplyFrameSync(pixels, frame.Depth, hist); err != nil {
				return gocv.Mat{}, err
			}
		}
	case config.ModePlayer:
		hist := depth.Histogram(frame.Depth, a.config.MaxDepth)
		dm := frame.Depth
		if dm == nil {
			dm = sensor.NewDepthMap(width, height)
		}
		if err := depth.ApplyPlayer(pixels, src, dm, hist, opts.ShowImage, opts.ShowDepth); err != nil {
			return gocv.Mat{}, err
		}
	case config.ModePose:
		if err := overlay.ApplyUserLabels(pixels, src, frame.Labels, a.config.Palette, opts.ShowImage, opts.ShowUsers); err != nil {
			return gocv.Mat{}, err
		}
	default:
		copy(pixels, src)
	}

	canvas, err := fromRGB(pixels, width, height)
	if err != nil {
		return gocv.Mat{}, err
	}
	if status := a.status(); status != "" {
		overlay.DrawStatus(&canvas, status)
	}
	return canvas, nil
}

// status returns the text line shown in the corner for the current mode.
func (a *App) status() string {
	switch a.mode {
	case config.ModeDepth:
		state := "off"
		if a.sensor.Controller().FrameSynced() {
			state = "on"
		}
		return "FrameSync:" + state
	case config.ModeSession:
		state, focus, progress := a.session.State()
		if state == tracking.SessionDetected {
			return fmt.Sprintf("Session:%s (%s %.0f%%)", state, focus, progress*100)
		}
		return "Session:" + state.String()
	case config.ModeGesture:
		status, _ := a.gestures.Status()
		return fmt.Sprintf("Gesture:%s, Status:%s", a.gestures.Active(), status)
	case config.ModePose:
		return fmt.Sprintf("Users:%d Tracked:%d", a.calibrator.Users(), len(a.calibrator.Tracked()))
	}
	return ""
}

func (a *App) frameSize(frame *sensor.Frame) (int, int) {
	switch {
	case frame.Color != nil && !frame.Color.Empty():
		return frame.Color.Cols(), frame.Color.Rows()
	case frame.Depth != nil:
		return frame.Depth.Width, frame.Depth.Height
	case frame.Labels != nil:
		return frame.Labels.Width, frame.Labels.Height
	}
	w, h := a.config.Width, a.config.Height
	if w <= 0 || h <= 0 {
		w, h = 640, 480
	}
	return w, h
}

// colorBytes returns the frame's color image as packed RGB. Frames without
// a color image yield white.
func colorBytes(frame *sensor.Frame, width, height int) ([]byte, error) {
	if frame.Color == nil || frame.Color.Empty() {
		buf := make([]byte, width*height*3)
		for i := range buf {
			buf[i] = 255
		}
		return buf, nil
	}

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(*frame.Color, &rgb, gocv.ColorBGRToRGB)
	return rgb.ToBytes(), nil
}

// fromRGB converts packed RGB pixels to a BGR Mat.
func fromRGB(pixels []byte, width, height int) (gocv.Mat, error) {
	rgb, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, pixels)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("create canvas: %w", err)
	}
	defer rgb.Close()

	bgr := gocv.NewMat()
	gocv.CvtColor(rgb, &bgr, gocv.ColorRGBToBGR)
	return bgr, nil
}
