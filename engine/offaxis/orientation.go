package offaxis

import "github.com/spaghettifunk/offaxis/engine/math"

// BasisOf returns the frame spanned by the corners, with Forward derived
// from Right and Up under h. No orientation test is made.
func BasisOf(c PlaneCorners, h math.Handedness) PlaneBasis {
	right := c.BottomRight.Sub(c.BottomLeft).Normalize()
	up := c.TopLeft.Sub(c.BottomLeft).Normalize()
	return PlaneBasis{
		Right:   right,
		Up:      up,
		Forward: h.ViewDirection(right, up),
	}
}

// Correct derives the plane basis from the corners and makes it face the
// eye. When the eye sits on the far side of the candidate forward direction
// the result is mirrored: corners relabelled left to right, Right and
// Forward negated, Inverted set. The input is never modified, and applying
// Correct to its own output corners is a no-op.
func Correct(c PlaneCorners, eye math.Vec3, h math.Handedness) (Plane, error) {
	if err := c.Validate(); err != nil {
		return Plane{}, err
	}
	basis := BasisOf(c, h)
	if basis.Forward.Dot(c.BottomLeft.Sub(eye)) >= 0 {
		return Plane{Corners: c, Basis: basis}, nil
	}
	return Plane{
		Corners:  c.Mirrored(),
		Basis:    basis.Flipped(),
		Inverted: true,
	}, nil
}
