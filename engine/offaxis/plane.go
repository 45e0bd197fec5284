package offaxis

import (
	"fmt"

	"github.com/spaghettifunk/offaxis/engine/math"
)

// geometryEpsilon is the smallest edge length, and the smallest sine of the
// angle between the two edges, accepted for a projection surface.
const geometryEpsilon = 1e-6

// PlaneCorners are three corners of a rectangular projection surface in
// world space. The fourth corner is implied.
type PlaneCorners struct {
	BottomLeft  math.Vec3
	BottomRight math.Vec3
	TopLeft     math.Vec3
}

// TopRight returns the implied fourth corner.
func (c PlaneCorners) TopRight() math.Vec3 {
	return c.BottomRight.Add(c.TopLeft.Sub(c.BottomLeft))
}

// Center returns the midpoint of the rectangle.
func (c PlaneCorners) Center() math.Vec3 {
	return c.BottomRight.Add(c.TopLeft).MulScalar(0.5)
}

// Outline returns the four corners in drawing order: bottom-left,
// bottom-right, top-right, top-left.
func (c PlaneCorners) Outline() [4]math.Vec3 {
	return [4]math.Vec3{c.BottomLeft, c.BottomRight, c.TopRight(), c.TopLeft}
}

// Validate reports ErrInvalidPlaneGeometry when two corners coincide, the
// corners are collinear, or a coordinate is not finite.
func (c PlaneCorners) Validate() error {
	if !c.BottomLeft.IsFinite() || !c.BottomRight.IsFinite() || !c.TopLeft.IsFinite() {
		return fmt.Errorf("%w: non-finite corner", ErrInvalidPlaneGeometry)
	}
	horizontal := c.BottomRight.Sub(c.BottomLeft)
	vertical := c.TopLeft.Sub(c.BottomLeft)
	w, h := horizontal.Length(), vertical.Length()
	if w < geometryEpsilon || h < geometryEpsilon {
		return fmt.Errorf("%w: coincident corners (width %g, height %g)", ErrInvalidPlaneGeometry, w, h)
	}
	if horizontal.Cross(vertical).Length() < geometryEpsilon*w*h {
		return fmt.Errorf("%w: collinear corners", ErrInvalidPlaneGeometry)
	}
	return nil
}

// Mirrored returns the corners relabelled left to right: bottom-left swaps
// with bottom-right and top-left takes the old top-right.
func (c PlaneCorners) Mirrored() PlaneCorners {
	return PlaneCorners{
		BottomLeft:  c.BottomRight,
		BottomRight: c.BottomLeft,
		TopLeft:     c.TopRight(),
	}
}

// PlaneBasis is the orthonormal frame of a projection surface. Forward is
// the direction the eye looks through the surface.
type PlaneBasis struct {
	Right   math.Vec3
	Up      math.Vec3
	Forward math.Vec3
}

// Flipped returns the basis seen from the other side of the surface.
func (b PlaneBasis) Flipped() PlaneBasis {
	return PlaneBasis{
		Right:   b.Right.Negate(),
		Up:      b.Up,
		Forward: b.Forward.Negate(),
	}
}

// Normal returns the surface normal pointing back at the eye.
func (b PlaneBasis) Normal() math.Vec3 {
	return b.Forward.Negate()
}

// Plane is a projection surface whose corner labels and basis agree with the
// eye it is viewed from.
type Plane struct {
	Corners PlaneCorners
	Basis   PlaneBasis
	// Inverted is set when the surface was mirrored to face the eye.
	Inverted bool
}

// Width returns the length of the bottom edge.
func (p Plane) Width() float32 {
	return p.Corners.BottomRight.Distance(p.Corners.BottomLeft)
}

// Height returns the length of the left edge.
func (p Plane) Height() float32 {
	return p.Corners.TopLeft.Distance(p.Corners.BottomLeft)
}
