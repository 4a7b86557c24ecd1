// Package pose provides the forearm crossing geometry used to detect an
// arms-crossed pose from tracked skeleton joints.
package pose

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Joint3D is a joint position in the tracker's real-world coordinates.
type Joint3D = r3.Vec

// Point2D is a point in the projected X/Y plane.
type Point2D = r2.Vec

// Segment is the line between two joints, used as a proxy for a forearm.
type Segment struct {
	Start Joint3D
	End   Joint3D
}

// Projected drops the Z component of both endpoints.
func (s Segment) Projected() (Point2D, Point2D) {
	return Point2D{X: s.Start.X, Y: s.Start.Y}, Point2D{X: s.End.X, Y: s.End.Y}
}

// CrossResult is the outcome of a crossed-arms evaluation.
// The zero value is NoCross.
type CrossResult struct {
	Crossed bool    `json:"crossed"`
	Point   Point2D `json:"point"`
}

// NoCross is the result when the forearms do not cross.
var NoCross = CrossResult{}

// Valid reports whether the result carries a drawable crossing point.
func (r CrossResult) Valid() bool {
	return r.Crossed && IsFinite(r.Point)
}

// SegmentsCross reports whether segment a1-a2 and segment b1-b2 intersect.
//
// Each segment's endpoints must lie on opposite sides of the other segment's
// line. A product of exactly zero counts as crossing, so segments that touch at
// an endpoint or overlap collinearly are reported as crossed.
func SegmentsCross(a1, a2, b1, b2 Point2D) bool {
	da := r2.Sub(a2, a1)
	db := r2.Sub(b2, b1)

	v1 := r2.Cross(da, r2.Sub(b1, a1))
	v2 := r2.Cross(da, r2.Sub(b2, a1))
	m1 := r2.Cross(db, r2.Sub(a1, b1))
	m2 := r2.Cross(db, r2.Sub(a2, b1))

	return v1*v2 <= 0 && m1*m2 <= 0
}

// IntersectionPoint returns the point where the lines through a1-a2 and b1-b2
// meet. ok is false when the lines are parallel, collinear or degenerate, or
// when the result is not finite.
func IntersectionPoint(a1, a2, b1, b2 Point2D) (p Point2D, ok bool) {
	da := r2.Sub(a2, a1)
	db := r2.Sub(b2, b1)

	denom := r2.Cross(da, db)
	if denom == 0 {
		return Point2D{}, false
	}

	t := r2.Cross(r2.Sub(b1, a1), db) / denom
	p = r2.Add(a1, r2.Scale(t, da))
	if !IsFinite(p) {
		return Point2D{}, false
	}
	return p, true
}

// IsFinite reports whether both coordinates are neither NaN nor infinite.
func IsFinite(p Point2D) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// DetectCrossedArms checks whether the left forearm (elbow to hand) crosses
// the right forearm in the projected X/Y plane. The crossing point is
// returned in world X/Y; converting it to screen coordinates is up to the
// caller.
//
// A crossing whose intersection cannot be computed, such as two collinear
// forearms, is reported as NoCross.
func DetectCrossedArms(leftElbow, leftHand, rightElbow, rightHand Joint3D) CrossResult {
	a1, a2 := Segment{Start: leftElbow, End: leftHand}.Projected()
	b1, b2 := Segment{Start: rightElbow, End: rightHand}.Projected()

	if !SegmentsCross(a1, a2, b1, b2) {
		return NoCross
	}

	p, ok := IntersectionPoint(a1, a2, b1, b2)
	if !ok {
		return NoCross
	}
	return CrossResult{Crossed: true, Point: p}
}

// CrossPoint3D lifts a projected crossing point back into world space, using
// the mean depth of the forearm joints. Trackers expect a 3D point when
// converting to projective coordinates.
func CrossPoint3D(p Point2D, joints ...Joint3D) Joint3D {
	var z float64
	for _, j := range joints {
		z += j.Z
	}
	if len(joints) > 0 {
		z /= float64(len(joints))
	}
	return Joint3D{X: p.X, Y: p.Y, Z: z}
}
