package overlay

import (
	"errors"

	"github.com/ayusman/depthpose/internal/sensor"
)

// ErrSizeMismatch is returned when an image buffer does not match the label
// map dimensions.
var ErrSizeMismatch = errors.New("overlay: buffer size does not match label map")

// ApplyUserLabels writes the RGB camera image src into dst, tinting each
// pixel by the palette color of the user it belongs to. With showImage off
// the camera image is replaced by white; with showUsers off every pixel is
// treated as background. A nil label map counts as all background.
func ApplyUserLabels(dst, src []byte, labels *sensor.LabelMap, palette Palette, showImage, showUsers bool) error {
	if len(dst)%3 != 0 || (showImage && len(src) != len(dst)) {
		return ErrSizeMismatch
	}
	if labels != nil && len(labels.Data)*3 != len(dst) {
		return ErrSizeMismatch
	}

	pixels := len(dst) / 3
	for i := 0; i < pixels; i++ {
		var label sensor.UserID
		if showUsers && labels != nil {
			label = labels.Data[i]
		}
		c := palette.Color(label)

		r, g, b := byte(255), byte(255), byte(255)
		if showImage {
			r, g, b = src[3*i], src[3*i+1], src[3*i+2]
		}
		dst[3*i] = byte(float64(r) * c.R)
		dst[3*i+1] = byte(float64(g) * c.G)
		dst[3*i+2] = byte(float64(b) * c.B)
	}
	return nil
}
