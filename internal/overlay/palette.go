// Package overlay renders user labels, skeletons and pose markers onto
// camera frames.
package overlay

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/ayusman/depthpose/internal/sensor"
)

// Color is a per-channel multiplier in the range 0.0-1.0.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// RGBA converts c to a drawable color.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: channel(c.R), G: channel(c.G), B: channel(c.B), A: 255}
}

func channel(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}

// Palette maps user labels to tint colors. Entry 0 is used for pixels
// without a user.
type Palette []Color

// DefaultPalette returns the standard user tint table.
func DefaultPalette() Palette {
	return Palette{
		{1, 1, 1}, // no user
		{0, 1, 1}, {0, 0, 1}, {0, 1, 0},
		{1, 1, 0}, {1, 0, 0}, {1, .5, 0},
		{.5, 1, 0}, {0, .5, 1}, {.5, 0, 1},
		{1, 1, .5},
	}
}

// Color returns the tint for a user label. Labels past the end of the
// palette wrap around the user entries, never onto entry 0.
func (p Palette) Color(label sensor.UserID) Color {
	if len(p) == 0 {
		return Color{1, 1, 1}
	}
	if label == 0 || len(p) == 1 {
		return p[0]
	}
	return p[1+(int(label)-1)%(len(p)-1)]
}

// Validate checks that every channel is within 0.0-1.0.
func (p Palette) Validate() error {
	if len(p) == 0 {
		return errors.New("palette is empty")
	}
	for i, c := range p {
		for _, v := range []float64{c.R, c.G, c.B} {
			if v < 0 || v > 1 {
				return fmt.Errorf("palette entry %d out of range: %+v", i, c)
			}
		}
	}
	return nil
}
