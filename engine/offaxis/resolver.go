package offaxis

import (
	"fmt"

	"github.com/spaghettifunk/offaxis/engine/math"
)

// MinHalfExtent is the smallest half size per axis of a projection surface.
const MinHalfExtent float32 = 0.005

// ClampHalfSize raises each component of a half size to MinHalfExtent.
func ClampHalfSize(half math.Vec2) math.Vec2 {
	return math.NewVec2(math.AtLeast(half.X, MinHalfExtent), math.AtLeast(half.Y, MinHalfExtent))
}

// Resolution is the world space input of the correction stage.
type Resolution struct {
	Corners PlaneCorners
	Eye     math.Vec3
	// Inverted is set when the resolver already mirrored the corners to
	// face the eye.
	Inverted bool
}

// PlaneResolver produces the world space corners of a projection surface
// and the eye it is seen from.
type PlaneResolver interface {
	Resolve(h math.Handedness) (Resolution, error)
}

// localCorners returns the bottom-left, bottom-right and top-left offsets of
// a rectangle centered on the origin of the XY plane. A negative mirror
// negates the x offsets.
func localCorners(half math.Vec2, mirror float32) [3]math.Vec3 {
	x := half.X * mirror
	return [3]math.Vec3{
		math.NewVec3(-x, -half.Y, 0),
		math.NewVec3(x, -half.Y, 0),
		math.NewVec3(-x, half.Y, 0),
	}
}

func cornersThrough(t *math.Transform, local [3]math.Vec3) PlaneCorners {
	return PlaneCorners{
		BottomLeft:  t.TransformPoint(local[0]),
		BottomRight: t.TransformPoint(local[1]),
		TopLeft:     t.TransformPoint(local[2]),
	}
}

// SnappedPlane lays the surface on the XY plane of a reference transform.
type SnappedPlane struct {
	Reference *math.Transform
	HalfSize  math.Vec2
	Eye       math.Vec3
}

func (s SnappedPlane) Resolve(math.Handedness) (Resolution, error) {
	if s.Reference == nil {
		return Resolution{}, fmt.Errorf("%w: snapped plane without reference transform", ErrInvalidPlaneGeometry)
	}
	c := cornersThrough(s.Reference, localCorners(s.HalfSize, 1))
	if err := c.Validate(); err != nil {
		return Resolution{}, err
	}
	return Resolution{Corners: c, Eye: s.Eye}, nil
}

// OffsetPlane places the surface Distance units along the camera forward
// axis, rotated by Rotation relative to the camera. The eye is the camera
// origin.
type OffsetPlane struct {
	Camera   *math.Transform
	HalfSize math.Vec2
	Distance float32
	Rotation math.Quaternion
}

func (o OffsetPlane) Resolve(h math.Handedness) (Resolution, error) {
	if o.Camera == nil {
		return Resolution{}, fmt.Errorf("%w: offset plane without camera transform", ErrInvalidPlaneGeometry)
	}
	offset := h.LocalForward().MulScalar(o.Distance)
	local := localCorners(o.HalfSize, 1)
	for i := range local {
		local[i] = offset.Add(o.Rotation.Rotate(local[i]))
	}
	c := cornersThrough(o.Camera, local)
	if err := c.Validate(); err != nil {
		return Resolution{}, err
	}
	return Resolution{Corners: c, Eye: o.Camera.WorldPosition()}, nil
}

// LocalRectPlane lays the surface on the XY plane of the camera transform
// and views it from PointOfView, given in camera space. When the point of
// view is not behind the surface the x offsets are mirrored before the
// corners are generated.
type LocalRectPlane struct {
	Camera      *math.Transform
	HalfSize    math.Vec2
	PointOfView math.Vec3
}

func (l LocalRectPlane) Resolve(h math.Handedness) (Resolution, error) {
	if l.Camera == nil {
		return Resolution{}, fmt.Errorf("%w: local rect plane without camera transform", ErrInvalidPlaneGeometry)
	}
	eye := l.Camera.TransformPoint(l.PointOfView)
	forward := l.Camera.Forward(h)
	invert := -math.Sign(forward.Dot(eye.Sub(l.Camera.WorldPosition())))

	c := cornersThrough(l.Camera, localCorners(l.HalfSize, invert))
	if err := c.Validate(); err != nil {
		return Resolution{}, err
	}
	return Resolution{Corners: c, Eye: eye, Inverted: invert < 0}, nil
}
