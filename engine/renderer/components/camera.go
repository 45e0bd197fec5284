package components

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spaghettifunk/offaxis/engine/math"
	"github.com/spaghettifunk/offaxis/engine/offaxis"
)

const (
	/** @brief Near clip distance used until one is set. */
	DEFAULT_NEAR_CLIP float32 = 0.3
	/** @brief Far clip distance used until one is set. */
	DEFAULT_FAR_CLIP float32 = 1000
	/** @brief Smallest accepted plane size per axis. */
	MIN_PLANE_SIZE float32 = 0.01
	/** @brief Smallest accepted distance between the camera and its plane. */
	MIN_PLANE_DISTANCE float32 = 0.01
)

/** @brief How an off-axis camera derives its projection plane. */
type PlaneMode uint8

const (
	/**
	 * @brief The plane is snapped to a reference transform or placed at a
	 * distance and rotation relative to the camera. The eye is the camera origin.
	 */
	PlaneModePoseOffset PlaneMode = iota
	/**
	 * @brief The plane is a rectangle around the camera origin and the eye is a
	 * point of view given in camera space.
	 */
	PlaneModeLocalRect
)

func (m PlaneMode) String() string {
	switch m {
	case PlaneModePoseOffset:
		return "pose_offset"
	case PlaneModeLocalRect:
		return "local_rect"
	default:
		return fmt.Sprintf("PlaneMode(%d)", uint8(m))
	}
}

func ParsePlaneMode(s string) (PlaneMode, error) {
	switch s {
	case "", "pose_offset", "offset", "snap":
		return PlaneModePoseOffset, nil
	case "local_rect", "point_of_view", "pov":
		return PlaneModeLocalRect, nil
	default:
		return PlaneModePoseOffset, fmt.Errorf("unknown plane mode %q", s)
	}
}

/**
 * @brief A camera whose image plane is an arbitrary rectangle in the world,
 * such as a portal, a mirror or a display wall. Ideally, these are created
 * and managed by the camera system.
 */
type OffAxisCamera struct {
	/** @brief The name the camera is registered under. */
	Name string
	/** @brief The camera transform. The plane and the eye are derived from it. */
	Transform *math.Transform
	/** @brief How the projection plane is derived. */
	Mode PlaneMode
	/** @brief Clamp the near clip distance to the projection plane. */
	UseProjectionAsNearPlane bool
	/**
	 * @brief Snap the plane to this transform instead of using the plane
	 * distance and rotation. Only used in PlaneModePoseOffset.
	 */
	SnapTo *math.Transform
	/**
	 * @brief Plane rotation relative to the camera. Only used in
	 * PlaneModePoseOffset without SnapTo.
	 */
	PlaneRotation math.Quaternion
	/** @brief Internal flag used to determine when the matrices need to be rebuilt. */
	IsDirty bool

	planeSize        math.Vec2
	halfSize         math.Vec2
	planeDistance    float32
	nearClip         float32
	farClip          float32
	pointOfViewLocal math.Vec3
	handedness       math.Handedness

	state    offaxis.ProjectionState
	valid    bool
	revision uint64
	lastKey  updateKey
}

// updateKey captures every input an update depends on that can change
// without going through a setter.
type updateKey struct {
	camera        *math.Transform
	transform     uint64
	snapTo        *math.Transform
	snapVersion   uint64
	mode          PlaneMode
	clampToPlane  bool
	planeRotation math.Quaternion
	conventions   offaxis.Conventions
}

/**
 * @brief Creates a camera with the defaults of a unit plane one unit in front
 * of the camera, a point of view one unit behind it, and the near plane
 * clamped to the projection plane.
 *
 * @param name The camera name.
 * @param transform The camera transform. A new identity transform is used if nil.
 * @param h The world convention, which decides where "in front" is.
 */
func NewOffAxisCamera(name string, transform *math.Transform, h math.Handedness) *OffAxisCamera {
	if transform == nil {
		transform = math.TransformCreate()
	}
	c := &OffAxisCamera{Name: name, Transform: transform}
	c.Reset(h)
	return c
}

// Reset restores every setting to its default and drops the cached state.
func (c *OffAxisCamera) Reset(h math.Handedness) {
	c.Mode = PlaneModePoseOffset
	c.UseProjectionAsNearPlane = true
	c.SnapTo = nil
	c.PlaneRotation = math.NewQuatIdentity()
	c.handedness = h
	c.SetPlaneSize(math.NewVec2One())
	c.SetPlaneDistance(1)
	c.SetClipPlanes(DEFAULT_NEAR_CLIP, DEFAULT_FAR_CLIP)
	c.pointOfViewLocal = h.LocalForward().Negate()
	c.state = offaxis.ProjectionState{}
	c.valid = false
	c.IsDirty = true
}

func (c *OffAxisCamera) MarkDirty() {
	c.IsDirty = true
}

func (c *OffAxisCamera) PlaneSize() math.Vec2 {
	return c.planeSize
}

// SetPlaneSize sets the plane size, raising each axis to MIN_PLANE_SIZE.
func (c *OffAxisCamera) SetPlaneSize(size math.Vec2) {
	c.planeSize = math.NewVec2(math.AtLeast(size.X, MIN_PLANE_SIZE), math.AtLeast(size.Y, MIN_PLANE_SIZE))
	c.halfSize = offaxis.ClampHalfSize(c.planeSize.MulScalar(0.5))
	c.IsDirty = true
}

func (c *OffAxisCamera) PlaneDistance() float32 {
	return c.planeDistance
}

// SetPlaneDistance sets the plane distance, raising it to MIN_PLANE_DISTANCE.
func (c *OffAxisCamera) SetPlaneDistance(distance float32) {
	c.planeDistance = math.AtLeast(distance, MIN_PLANE_DISTANCE)
	c.IsDirty = true
}

// ClipPlanes returns the configured near and far clip distances. They are
// validated on the next Update.
func (c *OffAxisCamera) ClipPlanes() (near, far float32) {
	return c.nearClip, c.farClip
}

func (c *OffAxisCamera) SetClipPlanes(near, far float32) {
	c.nearClip = near
	c.farClip = far
	c.IsDirty = true
}

// NearClip returns the near clip distance used by the last successful
// update, which is the plane distance when UseProjectionAsNearPlane is set.
func (c *OffAxisCamera) NearClip() float32 {
	if c.valid {
		return c.state.Bounds.Near
	}
	return c.nearClip
}

func (c *OffAxisCamera) PointOfViewLocal() math.Vec3 {
	return c.pointOfViewLocal
}

func (c *OffAxisCamera) SetPointOfViewLocal(pov math.Vec3) {
	c.pointOfViewLocal = pov
	c.IsDirty = true
}

// PointOfView returns the point of view in world space.
func (c *OffAxisCamera) PointOfView() math.Vec3 {
	return c.Transform.TransformPoint(c.pointOfViewLocal)
}

// SetPointOfView sets the point of view from a world space position.
func (c *OffAxisCamera) SetPointOfView(world math.Vec3) {
	c.SetPointOfViewLocal(c.Transform.InverseTransformPoint(world))
}

// PlaneRect returns the plane rectangle in camera space. It is always
// centered on the camera origin.
func (c *OffAxisCamera) PlaneRect() math.Rect {
	return math.NewRectCentered(math.NewVec2Zero(), c.planeSize)
}

// SetPlaneRect takes the size of r and moves the camera by the center of r
// along its right and up axes.
func (c *OffAxisCamera) SetPlaneRect(r math.Rect) {
	c.SetPlaneSize(r.Size)
	center := r.Center()
	offset := c.Transform.Right().MulScalar(center.X).Add(c.Transform.Up().MulScalar(center.Y))
	world := c.Transform.WorldPosition().Add(offset)
	c.Transform.SetPosition(c.Transform.Parent.InverseTransformPoint(world))
}

/**
 * @brief Returns the plane resolver matching the current mode.
 */
func (c *OffAxisCamera) Resolver() offaxis.PlaneResolver {
	if c.Mode == PlaneModeLocalRect {
		return offaxis.LocalRectPlane{
			Camera:      c.Transform,
			HalfSize:    c.halfSize,
			PointOfView: c.pointOfViewLocal,
		}
	}
	if c.SnapTo != nil {
		return offaxis.SnappedPlane{
			Reference: c.SnapTo,
			HalfSize:  c.halfSize,
			Eye:       c.Transform.WorldPosition(),
		}
	}
	return offaxis.OffsetPlane{
		Camera:   c.Transform,
		HalfSize: c.halfSize,
		Distance: c.planeDistance,
		Rotation: c.PlaneRotation,
	}
}

func (c *OffAxisCamera) key(p *offaxis.Projector) updateKey {
	k := updateKey{
		camera:        c.Transform,
		transform:     c.Transform.Version(),
		snapTo:        c.SnapTo,
		mode:          c.Mode,
		clampToPlane:  c.UseProjectionAsNearPlane,
		planeRotation: c.PlaneRotation,
		conventions:   p.Conventions,
	}
	if c.SnapTo != nil {
		k.snapVersion = c.SnapTo.Version()
	}
	return k
}

/**
 * @brief Recomputes the view and projection matrices if anything they depend
 * on changed since the last successful update. On failure the previous
 * matrices are kept and returned together with the error.
 *
 * @param p The projector carrying the output conventions.
 * @return The current projection state.
 */
func (c *OffAxisCamera) Update(p *offaxis.Projector) (offaxis.ProjectionState, error) {
	key := c.key(p)
	if c.valid && !c.IsDirty && key == c.lastKey {
		return c.state, nil
	}

	clip := offaxis.ClipPlanes{
		Near:         c.nearClip,
		Far:          c.farClip,
		ClampToPlane: c.UseProjectionAsNearPlane,
	}
	state, err := p.Project(c.Resolver(), clip)
	if err != nil {
		return c.state, fmt.Errorf("camera '%s': %w", c.Name, err)
	}

	c.state = state
	c.valid = true
	c.revision++
	c.lastKey = key
	c.IsDirty = false
	return c.state, nil
}

// State returns the last successfully computed state and whether one exists.
func (c *OffAxisCamera) State() (offaxis.ProjectionState, bool) {
	return c.state, c.valid
}

// Revision counts successful recomputations.
func (c *OffAxisCamera) Revision() uint64 {
	return c.revision
}

// Corners returns the outline of the corrected plane of the last successful
// update, for drawing.
func (c *OffAxisCamera) Corners() ([4]math.Vec3, bool) {
	if !c.valid {
		return [4]math.Vec3{}, false
	}
	return c.state.Plane.Corners.Outline(), true
}

// Handedness returns the convention the defaults were derived from.
func (c *OffAxisCamera) Handedness() math.Handedness {
	return c.handedness
}

type CameraLookup struct {
	ID             uuid.UUID
	ReferenceCount uint16
	Camera         *OffAxisCamera
}
