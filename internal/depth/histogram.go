// Package depth turns depth maps into displayable intensity images.
package depth

import (
	"errors"

	"github.com/ayusman/depthpose/internal/sensor"
)

// DefaultMaxDepth is the histogram size used when the device does not
// report its own maximum depth, in millimetres.
const DefaultMaxDepth = 10000

// ErrSizeMismatch is returned when an image buffer does not match the
// dimensions of the depth map.
var ErrSizeMismatch = errors.New("depth: buffer size does not match depth map")

// Histogram builds the cumulative depth histogram of dm and maps it to
// intensities: near surfaces are bright, far ones dark. Index 0 (no reading)
// is always 0, and readings at or beyond maxDepth are ignored.
func Histogram(dm *sensor.DepthMap, maxDepth int) []uint8 {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	counts := make([]int, maxDepth)
	out := make([]uint8, maxDepth)
	if dm == nil {
		return out
	}

	points := 0
	for _, d := range dm.Data {
		if d != 0 && int(d) < maxDepth {
			counts[d]++
			points++
		}
	}
	if points == 0 {
		return out
	}

	for i := 1; i < maxDepth; i++ {
		counts[i] += counts[i-1]
	}
	for i := 1; i < maxDepth; i++ {
		v := int(256 * (1 - float64(counts[i])/float64(points)))
		if v > 255 {
			v = 255
		}
		if v < 0 {
			v = 0
		}
		out[i] = uint8(v)
	}
	return out
}

func lookup(hist []uint8, d uint16) uint8 {
	if int(d) >= len(hist) {
		return 0
	}
	return hist[d]
}

// ApplyFrameSync paints every pixel with a depth reading as (h, h, 0) over
// the RGB image in place, leaving pixels without a reading untouched.
func ApplyFrameSync(rgb []byte, dm *sensor.DepthMap, hist []uint8) error {
	if dm == nil {
		return nil
	}
	if len(rgb) != 3*len(dm.Data) {
		return ErrSizeMismatch
	}
	for i, d := range dm.Data {
		if d == 0 {
			continue
		}
		h := lookup(hist, d)
		rgb[3*i] = h
		rgb[3*i+1] = h
		rgb[3*i+2] = 0
	}
	return nil
}

// ApplyPlayer composes the playback view into dst. Pixels with a depth
// reading show (0, h, h) when showDepth is set; every other pixel shows the
// camera image from src, or white when showImage is off.
func ApplyPlayer(dst, src []byte, dm *sensor.DepthMap, hist []uint8, showImage, showDepth bool) error {
	if dm == nil {
		return ErrSizeMismatch
	}
	n := len(dm.Data)
	if len(dst) != 3*n || (showImage && len(src) != 3*n) {
		return ErrSizeMismatch
	}
	for i, d := range dm.Data {
		switch {
		case showDepth && d != 0:
			h := lookup(hist, d)
			dst[3*i] = 0
			dst[3*i+1] = h
			dst[3*i+2] = h
		case showImage:
			copy(dst[3*i:3*i+3], src[3*i:3*i+3])
		default:
			dst[3*i] = 255
			dst[3*i+1] = 255
			dst[3*i+2] = 255
		}
	}
	return nil
}
