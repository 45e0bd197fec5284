package offaxis

import (
	"fmt"

	"github.com/spaghettifunk/offaxis/engine/math"
)

// DegenerateEpsilon is the smallest eye to plane distance the solver accepts.
// It is also the smallest accepted frustum extent relative to the near
// distance, which is the tangent of the angle the plane spans from the eye.
const DegenerateEpsilon = 1e-6

// ClipPlanes are the caller supplied clip distances.
type ClipPlanes struct {
	Near float32
	Far  float32
	// ClampToPlane replaces Near with the eye to plane distance.
	ClampToPlane bool
}

// FrustumBounds describe an asymmetric frustum at its near plane.
type FrustumBounds struct {
	Left, Right float32
	Bottom, Top float32
	Near, Far   float32
}

// Validate checks the ordering invariants of the bounds.
func (b FrustumBounds) Validate() error {
	if !math.IsFinite(b.Near) || !math.IsFinite(b.Far) || b.Near <= 0 || b.Far <= b.Near {
		return fmt.Errorf("%w: near %g, far %g", ErrInvalidClipRange, b.Near, b.Far)
	}
	for _, v := range [4]float32{b.Left, b.Right, b.Bottom, b.Top} {
		if !math.IsFinite(v) {
			return fmt.Errorf("%w: non-finite bound", ErrDegenerateFrustum)
		}
	}
	if b.Width()/b.Near < DegenerateEpsilon || b.Height()/b.Near < DegenerateEpsilon {
		return fmt.Errorf("%w: extent %g x %g at near %g", ErrDegenerateFrustum, b.Width(), b.Height(), b.Near)
	}
	return nil
}

// Width returns right - left.
func (b FrustumBounds) Width() float32 { return b.Right - b.Left }

// Height returns top - bottom.
func (b FrustumBounds) Height() float32 { return b.Top - b.Bottom }

// Projection emits the perspective matrix of the bounds for the given clip
// space depth range. The bounds are expected to be valid.
func (b FrustumBounds) Projection(depth DepthRange) math.Mat4 {
	if depth == DepthZeroToOne {
		return math.NewMat4FrustumZeroToOne(b.Left, b.Right, b.Bottom, b.Top, b.Near, b.Far)
	}
	return math.NewMat4Frustum(b.Left, b.Right, b.Bottom, b.Top, b.Near, b.Far)
}

// SymmetricBounds returns the bounds of an on-axis frustum with the given
// vertical field of view in radians.
func SymmetricBounds(fovY, aspect, near, far float32) FrustumBounds {
	top := near * math.Tan(fovY*0.5)
	right := top * aspect
	return FrustumBounds{
		Left: -right, Right: right,
		Bottom: -top, Top: top,
		Near: near, Far: far,
	}
}

// Solve computes the frustum bounds for an eye looking through a corrected
// plane (generalized perspective projection).
func Solve(eye math.Vec3, p Plane, clip ClipPlanes) (FrustumBounds, error) {
	bl := p.Corners.BottomLeft.Sub(eye)
	br := p.Corners.BottomRight.Sub(eye)
	tl := p.Corners.TopLeft.Sub(eye)

	d := bl.Dot(p.Basis.Forward)
	if !(d > DegenerateEpsilon) {
		return FrustumBounds{}, fmt.Errorf("%w: distance %g", ErrEyeBehindPlane, d)
	}

	near := clip.Near
	if clip.ClampToPlane {
		near = d
	}
	if !math.IsFinite(near) || !math.IsFinite(clip.Far) || near <= 0 || clip.Far <= near {
		return FrustumBounds{}, fmt.Errorf("%w: near %g, far %g", ErrInvalidClipRange, near, clip.Far)
	}

	s := near / d
	b := FrustumBounds{
		Left:   p.Basis.Right.Dot(bl) * s,
		Right:  p.Basis.Right.Dot(br) * s,
		Bottom: p.Basis.Up.Dot(bl) * s,
		Top:    p.Basis.Up.Dot(tl) * s,
		Near:   near,
		Far:    clip.Far,
	}
	if err := b.Validate(); err != nil {
		return FrustumBounds{}, err
	}
	return b, nil
}
