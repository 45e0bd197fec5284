package offaxis

import (
	"fmt"

	"github.com/spaghettifunk/offaxis/engine/math"
)

// ProjectionState is the output of one projection: the matrices handed to
// the renderer and the geometry they were built from.
type ProjectionState struct {
	View       math.Mat4
	Projection math.Mat4
	Bounds     FrustumBounds
	Plane      Plane
	Eye        math.Vec3
	// Distance is the perpendicular eye to plane distance.
	Distance float32
}

// ViewProjection returns the matrix applying View then Projection.
func (s ProjectionState) ViewProjection() math.Mat4 {
	return s.View.Mul(s.Projection)
}

// ViewData flattens the view matrix in the given layout.
func (s ProjectionState) ViewData(l Layout) [16]float32 {
	return l.Flatten(s.View)
}

// ProjectionData flattens the projection matrix in the given layout.
func (s ProjectionState) ProjectionData(l Layout) [16]float32 {
	return l.Flatten(s.Projection)
}

// Projector runs the resolve, correct, solve and view stages under a fixed
// set of conventions. The zero value uses DefaultConventions.
type Projector struct {
	Conventions Conventions
}

func NewProjector(c Conventions) *Projector {
	return &Projector{Conventions: c}
}

// Project computes the view and projection matrices for the surface
// described by r. Failures wrap one of the package sentinel errors.
func (p *Projector) Project(r PlaneResolver, clip ClipPlanes) (ProjectionState, error) {
	h := p.Conventions.Handedness

	res, err := r.Resolve(h)
	if err != nil {
		return ProjectionState{}, fmt.Errorf("resolve plane: %w", err)
	}
	plane, err := Correct(res.Corners, res.Eye, h)
	if err != nil {
		return ProjectionState{}, fmt.Errorf("correct plane: %w", err)
	}
	plane.Inverted = plane.Inverted || res.Inverted

	bounds, err := Solve(res.Eye, plane, clip)
	if err != nil {
		return ProjectionState{}, fmt.Errorf("solve frustum: %w", err)
	}

	return ProjectionState{
		View:       BuildView(plane.Basis, res.Eye),
		Projection: bounds.Projection(p.Conventions.Depth),
		Bounds:     bounds,
		Plane:      plane,
		Eye:        res.Eye,
		Distance:   plane.Corners.BottomLeft.Sub(res.Eye).Dot(plane.Basis.Forward),
	}, nil
}
