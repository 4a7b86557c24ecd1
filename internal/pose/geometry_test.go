package pose

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// legacyIntersectionPoint solves the intersection from the slope-intercept
// form of both lines. A vertical segment divides by zero and yields Inf or NaN
// coordinates.
func legacyIntersectionPoint(a1, a2, b1, b2 Point2D) Point2D {
	m1 := (a1.Y - a2.Y) / (a1.X - a2.X)
	c1 := (a1.X*a2.Y - a1.Y*a2.X) / (a1.X - a2.X)
	m2 := (b1.Y - b2.Y) / (b1.X - b2.X)
	c2 := (b1.X*b2.Y - b1.Y*b2.X) / (b1.X - b2.X)

	x := (c2 - c1) / (m1 - m2)
	return Point2D{X: x, Y: m1*x + c1}
}

const epsilon = 1e-9

func pt(x, y float64) Point2D { return Point2D{X: x, Y: y} }

func TestSegmentsCross(t *testing.T) {
	tests := []struct {
		name           string
		a1, a2, b1, b2 Point2D
		want           bool
	}{
		{
			name: "disjoint segments",
			a1:   pt(0, 0), a2: pt(1, 0),
			b1: pt(5, 5), b2: pt(6, 5),
			want: false,
		},
		{
			name: "visible X",
			a1:   pt(0, 0), a2: pt(2, 2),
			b1: pt(0, 2), b2: pt(2, 0),
			want: true,
		},
		{
			// Inclusive policy: a shared endpoint counts as a crossing.
			name: "touching endpoints",
			a1:   pt(0, 0), a2: pt(2, 2),
			b1: pt(2, 2), b2: pt(4, 0),
			want: true,
		},
		{
			name: "vertical against horizontal",
			a1:   pt(1, 0), a2: pt(1, 2),
			b1: pt(0, 1), b2: pt(2, 1),
			want: true,
		},
		{
			name: "parallel offset",
			a1:   pt(0, 0), a2: pt(2, 0),
			b1: pt(0, 1), b2: pt(2, 1),
			want: false,
		},
		{
			name: "lines cross outside segment B",
			a1:   pt(0, 0), a2: pt(4, 4),
			b1: pt(0, 4), b2: pt(1, 3),
			want: false,
		},
		{
			name: "collinear overlap",
			a1:   pt(0, 0), a2: pt(2, 0),
			b1: pt(1, 0), b2: pt(3, 0),
			want: true,
		},
		{
			name: "zero length segment on the other",
			a1:   pt(1, 1), a2: pt(1, 1),
			b1: pt(0, 0), b2: pt(2, 2),
			want: true,
		},
		{
			name: "zero length segment away from the other",
			a1:   pt(1, 3), a2: pt(1, 3),
			b1: pt(0, 0), b2: pt(2, 2),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SegmentsCross(tt.a1, tt.a2, tt.b1, tt.b2))
		})
	}
}

func TestSegmentsCross_Symmetric(t *testing.T) {
	segments := [][4]Point2D{
		{pt(0, 0), pt(1, 0), pt(5, 5), pt(6, 5)},
		{pt(0, 0), pt(2, 2), pt(0, 2), pt(2, 0)},
		{pt(0, 0), pt(2, 2), pt(2, 2), pt(4, 0)},
		{pt(1, 0), pt(1, 2), pt(0, 1), pt(2, 1)},
		{pt(-3, 1), pt(4, -2), pt(0.5, -5), pt(0.1, 7)},
		{pt(0, 0), pt(0, 0), pt(0, 0), pt(0, 0)},
	}

	for _, s := range segments {
		assert.Equal(t,
			SegmentsCross(s[0], s[1], s[2], s[3]),
			SegmentsCross(s[2], s[3], s[0], s[1]),
			"segments %v", s)
	}
}

func TestIntersectionPoint(t *testing.T) {
	t.Run("visible X meets at center", func(t *testing.T) {
		p, ok := IntersectionPoint(pt(0, 0), pt(2, 2), pt(0, 2), pt(2, 0))
		require.True(t, ok)
		assert.InDelta(t, 1.0, p.X, epsilon)
		assert.InDelta(t, 1.0, p.Y, epsilon)
	})

	t.Run("vertical segment", func(t *testing.T) {
		p, ok := IntersectionPoint(pt(1, 0), pt(1, 2), pt(0, 1), pt(2, 1))
		require.True(t, ok)
		assert.InDelta(t, 1.0, p.X, epsilon)
		assert.InDelta(t, 1.0, p.Y, epsilon)
	})

	t.Run("both segments axis aligned the other way", func(t *testing.T) {
		p, ok := IntersectionPoint(pt(0, 1), pt(2, 1), pt(1, 0), pt(1, 2))
		require.True(t, ok)
		assert.InDelta(t, 1.0, p.X, epsilon)
		assert.InDelta(t, 1.0, p.Y, epsilon)
	})

	t.Run("touching endpoints", func(t *testing.T) {
		p, ok := IntersectionPoint(pt(0, 0), pt(2, 2), pt(2, 2), pt(4, 0))
		require.True(t, ok)
		assert.InDelta(t, 2.0, p.X, epsilon)
		assert.InDelta(t, 2.0, p.Y, epsilon)
	})

	t.Run("parallel lines report no result", func(t *testing.T) {
		_, ok := IntersectionPoint(pt(0, 0), pt(2, 0), pt(0, 1), pt(2, 1))
		assert.False(t, ok)
	})

	t.Run("collinear lines report no result", func(t *testing.T) {
		_, ok := IntersectionPoint(pt(0, 0), pt(2, 0), pt(1, 0), pt(3, 0))
		assert.False(t, ok)
	})

	t.Run("degenerate segment reports no result", func(t *testing.T) {
		_, ok := IntersectionPoint(pt(1, 1), pt(1, 1), pt(0, 0), pt(2, 2))
		assert.False(t, ok)
	})

	t.Run("agrees with the slope form away from verticals", func(t *testing.T) {
		a1, a2, b1, b2 := pt(-1, -2), pt(3, 5), pt(-2, 4), pt(4, -1)
		p, ok := IntersectionPoint(a1, a2, b1, b2)
		require.True(t, ok)

		legacy := legacyIntersectionPoint(a1, a2, b1, b2)
		assert.InDelta(t, legacy.X, p.X, 1e-9)
		assert.InDelta(t, legacy.Y, p.Y, 1e-9)
	})
}

func TestSlopeInterceptIntersection_VerticalSegment(t *testing.T) {
	p := legacyIntersectionPoint(pt(1, 0), pt(1, 2), pt(0, 1), pt(2, 1))
	assert.False(t, IsFinite(p), "slope form should not yield a usable point, got %v", p)
}

func TestIsFinite(t *testing.T) {
	assert.True(t, IsFinite(pt(1, -1)))
	assert.False(t, IsFinite(pt(math.NaN(), 0)))
	assert.False(t, IsFinite(pt(0, math.Inf(-1))))
	assert.False(t, IsFinite(pt(math.Inf(1), 0)))
}

func TestDetectCrossedArms(t *testing.T) {
	t.Run("X shape crosses at the midpoint", func(t *testing.T) {
		leftElbow := Joint3D{X: -200, Y: -200, Z: 1500}
		leftHand := Joint3D{X: 200, Y: 200, Z: 1400}
		rightElbow := Joint3D{X: 200, Y: -200, Z: 1500}
		rightHand := Joint3D{X: -200, Y: 200, Z: 1400}

		result := DetectCrossedArms(leftElbow, leftHand, rightElbow, rightHand)

		require.True(t, result.Crossed)
		assert.True(t, result.Valid())
		assert.InDelta(t, 0.0, result.Point.X, epsilon)
		assert.InDelta(t, 0.0, result.Point.Y, epsilon)
	})

	t.Run("parallel arms do not cross", func(t *testing.T) {
		leftElbow := Joint3D{X: -300, Y: -100, Z: 1500}
		leftHand := Joint3D{X: -300, Y: -500, Z: 1500}
		rightElbow := Joint3D{X: 300, Y: -100, Z: 1500}
		rightHand := Joint3D{X: 300, Y: -500, Z: 1500}

		result := DetectCrossedArms(leftElbow, leftHand, rightElbow, rightHand)

		assert.Equal(t, NoCross, result)
		assert.False(t, result.Valid())
	})

	t.Run("vertical forearm still yields a finite point", func(t *testing.T) {
		result := DetectCrossedArms(
			Joint3D{X: 1, Y: 0}, Joint3D{X: 1, Y: 2},
			Joint3D{X: 0, Y: 1}, Joint3D{X: 2, Y: 1},
		)

		require.True(t, result.Valid())
		assert.InDelta(t, 1.0, result.Point.X, epsilon)
		assert.InDelta(t, 1.0, result.Point.Y, epsilon)
	})

	t.Run("collinear forearms are not a usable crossing", func(t *testing.T) {
		result := DetectCrossedArms(
			Joint3D{X: 0, Y: 0}, Joint3D{X: 2, Y: 0},
			Joint3D{X: 1, Y: 0}, Joint3D{X: 3, Y: 0},
		)

		assert.Equal(t, NoCross, result)
	})

	t.Run("depth is ignored", func(t *testing.T) {
		near := DetectCrossedArms(
			Joint3D{X: 0, Y: 0, Z: 1}, Joint3D{X: 2, Y: 2, Z: 1},
			Joint3D{X: 0, Y: 2, Z: 1}, Joint3D{X: 2, Y: 0, Z: 1},
		)
		far := DetectCrossedArms(
			Joint3D{X: 0, Y: 0, Z: 4000}, Joint3D{X: 2, Y: 2, Z: 100},
			Joint3D{X: 0, Y: 2, Z: -50}, Joint3D{X: 2, Y: 0, Z: 9},
		)

		assert.Equal(t, near, far)
	})
}

func TestCrossPoint3D(t *testing.T) {
	p := CrossPoint3D(pt(3, 4), Joint3D{Z: 1000}, Joint3D{Z: 2000})
	assert.Equal(t, Joint3D{X: 3, Y: 4, Z: 1500}, p)

	p = CrossPoint3D(pt(3, 4))
	assert.Equal(t, Joint3D{X: 3, Y: 4}, p)
}
