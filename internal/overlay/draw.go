package overlay

import (
	"image"
	"image/color"
	"math"

	"github.com/ayusman/depthpose/internal/pose"
	"github.com/ayusman/depthpose/internal/sensor"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// MarkerRadius is the radius of the crossed-arms marker in pixels.
const MarkerRadius = 10

// MinConfidence is the joint confidence below which limbs are not drawn.
const MinConfidence = 0.5

// Limb is a pair of joints joined by a line.
type Limb struct {
	From, To sensor.JointType
}

// SkeletonLimbs lists the limbs drawn for a full skeleton.
var SkeletonLimbs = []Limb{
	{sensor.Head, sensor.Neck},
	{sensor.Neck, sensor.LeftShoulder},
	{sensor.LeftShoulder, sensor.LeftElbow},
	{sensor.LeftElbow, sensor.LeftHand},
	{sensor.Neck, sensor.RightShoulder},
	{sensor.RightShoulder, sensor.RightElbow},
	{sensor.RightElbow, sensor.RightHand},
	{sensor.LeftShoulder, sensor.Torso},
	{sensor.RightShoulder, sensor.Torso},
	{sensor.Torso, sensor.LeftHip},
	{sensor.LeftHip, sensor.LeftKnee},
	{sensor.LeftKnee, sensor.LeftFoot},
	{sensor.Torso, sensor.RightHip},
	{sensor.RightHip, sensor.RightKnee},
	{sensor.RightKnee, sensor.RightFoot},
	{sensor.LeftHip, sensor.RightHip},
}

// ProjectFunc converts a real-world position to screen coordinates.
type ProjectFunc func(r3.Vec) r2.Vec

// Colors used by the drawing helpers.
var (
	SkeletonColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	MarkerColor   = color.RGBA{R: 255, A: 255}
	StatusColor   = color.RGBA{G: 255, A: 255}
)

// ToPoint rounds a screen position to the nearest pixel. Non-finite values
// yield ok=false.
func ToPoint(p r2.Vec) (image.Point, bool) {
	if !pose.IsFinite(p) {
		return image.Point{}, false
	}
	return image.Pt(int(math.Round(p.X)), int(math.Round(p.Y))), true
}

// DrawSkeleton draws the limbs of s whose joints are both reported with
// enough confidence. It returns the number of limbs drawn.
func DrawSkeleton(img *gocv.Mat, s *sensor.Skeleton, project ProjectFunc, c color.RGBA) int {
	drawn := 0
	for _, limb := range SkeletonLimbs {
		from, ok1 := s.Joint(limb.From)
		to, ok2 := s.Joint(limb.To)
		if !ok1 || !ok2 || from.Confidence < MinConfidence || to.Confidence < MinConfidence {
			continue
		}
		p1, ok1 := ToPoint(project(from.Position))
		p2, ok2 := ToPoint(project(to.Position))
		if !ok1 || !ok2 {
			continue
		}
		gocv.Line(img, p1, p2, c, 2)
		drawn++
	}
	return drawn
}

// DrawCrossMarker draws a filled circle at the crossing point p.
func DrawCrossMarker(img *gocv.Mat, p r2.Vec) bool {
	pt, ok := ToPoint(p)
	if !ok {
		return false
	}
	gocv.Circle(img, pt, MarkerRadius, MarkerColor, -1)
	return true
}

// DrawStatus writes a line of text in the top left corner.
func DrawStatus(img *gocv.Mat, text string) {
	if text == "" {
		return
	}
	gocv.PutText(img, text, image.Pt(10, 25), gocv.FontHersheyPlain, 1.5, StatusColor, 2)
}
