// Package config loads camera rigs: the transforms, off-axis cameras and
// reference markers of a scene, plus the output conventions of the host.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/offaxis/engine/core"
	"github.com/spaghettifunk/offaxis/engine/math"
	"github.com/spaghettifunk/offaxis/engine/offaxis"
	"github.com/spaghettifunk/offaxis/engine/renderer/components"
)

type Rig struct {
	Conventions ConventionsConfig `toml:"conventions"`
	Transforms  []TransformConfig `toml:"transforms"`
	Cameras     []CameraConfig    `toml:"cameras"`
	Markers     []MarkerConfig    `toml:"markers,omitempty"`
}

type ConventionsConfig struct {
	Handedness string `toml:"handedness"`
	Depth      string `toml:"depth"`
	Layout     string `toml:"layout"`
}

type TransformConfig struct {
	Name     string     `toml:"name"`
	Position [3]float32 `toml:"position"`
	// Euler angles in degrees.
	Rotation [3]float32  `toml:"rotation"`
	Scale    *[3]float32 `toml:"scale,omitempty"`
	Parent   string      `toml:"parent,omitempty"`
}

type CameraConfig struct {
	Name string `toml:"name"`
	Mode string `toml:"mode"`
	// Transform names the camera transform. A private one is created when empty.
	Transform                string      `toml:"transform,omitempty"`
	SnapTo                   string      `toml:"snap_to,omitempty"`
	PlaneSize                *[2]float32 `toml:"plane_size,omitempty"`
	PlaneDistance            *float32    `toml:"plane_distance,omitempty"`
	PlaneRotation            [3]float32  `toml:"plane_rotation"`
	PointOfView              *[3]float32 `toml:"point_of_view,omitempty"`
	UseProjectionAsNearPlane *bool       `toml:"use_projection_as_near_plane,omitempty"`
	Near                     *float32    `toml:"near,omitempty"`
	Far                      *float32    `toml:"far,omitempty"`
}

// MarkerConfig is an axis-aligned box drawn in previews.
type MarkerConfig struct {
	Name string     `toml:"name,omitempty"`
	Min  [3]float32 `toml:"min"`
	Max  [3]float32 `toml:"max"`
}

// Scene is a built rig, ready to be registered with the camera system.
type Scene struct {
	Conventions offaxis.Conventions
	Transforms  map[string]*math.Transform
	Cameras     []*components.OffAxisCamera
	Markers     []math.Extents3D
}

// Load reads and validates the rig file at path.
func Load(path string) (*Rig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rig, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rig, nil
}

// Decode reads and validates a rig. Unknown keys are rejected.
func Decode(r io.Reader) (*Rig, error) {
	rig := &Rig{}
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(rig); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: %s", core.ErrInvalidConfig, strict.String())
		}
		return nil, fmt.Errorf("%w: %s", core.ErrInvalidConfig, err.Error())
	}
	if err := rig.Validate(); err != nil {
		return nil, err
	}
	return rig, nil
}

// Encode writes the rig as TOML.
func (r *Rig) Encode(w io.Writer) error {
	return toml.NewEncoder(w).SetIndentTables(true).Encode(r)
}

func (c ConventionsConfig) Parse() (offaxis.Conventions, error) {
	h, err := math.ParseHandedness(c.Handedness)
	if err != nil {
		return offaxis.Conventions{}, err
	}
	d, err := offaxis.ParseDepthRange(c.Depth)
	if err != nil {
		return offaxis.Conventions{}, err
	}
	l, err := offaxis.ParseLayout(c.Layout)
	if err != nil {
		return offaxis.Conventions{}, err
	}
	return offaxis.Conventions{Handedness: h, Depth: d, Layout: l}, nil
}

// Validate reports every problem found in the rig, joined in one error
// wrapping core.ErrInvalidConfig.
func (r *Rig) Validate() error {
	var errs []error
	fail := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]interface{}{core.ErrInvalidConfig}, args...)...))
	}

	if _, err := r.Conventions.Parse(); err != nil {
		fail("conventions: %s", err)
	}

	parents := make(map[string]string, len(r.Transforms))
	for i, t := range r.Transforms {
		if t.Name == "" {
			fail("transforms[%d]: missing name", i)
			continue
		}
		if _, dup := parents[t.Name]; dup {
			fail("transforms[%d]: duplicate name '%s'", i, t.Name)
		}
		parents[t.Name] = t.Parent
	}
	for i, t := range r.Transforms {
		if t.Parent == "" {
			continue
		}
		if _, ok := parents[t.Parent]; !ok {
			fail("transforms[%d]: unknown parent '%s'", i, t.Parent)
			continue
		}
		seen := map[string]bool{t.Name: true}
		for p := t.Parent; p != ""; p = parents[p] {
			if seen[p] {
				fail("transforms[%d]: parent cycle through '%s'", i, p)
				break
			}
			seen[p] = true
		}
	}

	cameras := make(map[string]bool, len(r.Cameras))
	for i, c := range r.Cameras {
		if c.Name == "" {
			fail("cameras[%d]: missing name", i)
		} else if cameras[c.Name] {
			fail("cameras[%d]: duplicate name '%s'", i, c.Name)
		} else if strings.ContainsAny(c.Name, `/\`) {
			// names double as preview file names
			fail("cameras[%d]: name '%s' contains a path separator", i, c.Name)
		}
		cameras[c.Name] = true

		mode, err := components.ParsePlaneMode(c.Mode)
		if err != nil {
			fail("cameras[%d]: %s", i, err)
		}
		for _, ref := range []string{c.Transform, c.SnapTo} {
			if _, ok := parents[ref]; ref != "" && !ok {
				fail("cameras[%d]: unknown transform '%s'", i, ref)
			}
		}
		if c.SnapTo != "" && mode == components.PlaneModeLocalRect {
			fail("cameras[%d]: snap_to is only used by pose_offset cameras", i)
		}
		near, far := components.DEFAULT_NEAR_CLIP, components.DEFAULT_FAR_CLIP
		if c.Near != nil {
			near = *c.Near
		}
		if c.Far != nil {
			far = *c.Far
		}
		if near <= 0 || far <= near {
			fail("cameras[%d]: clip range must satisfy 0 < near < far, got %g and %g", i, near, far)
		}
		if c.PlaneSize != nil && (c.PlaneSize[0] <= 0 || c.PlaneSize[1] <= 0) {
			fail("cameras[%d]: plane_size must be positive", i)
		}
	}

	for i, m := range r.Markers {
		if m.Min[0] > m.Max[0] || m.Min[1] > m.Max[1] || m.Min[2] > m.Max[2] {
			fail("markers[%d]: min exceeds max", i)
		}
	}
	return errors.Join(errs...)
}

func vec3(v [3]float32) math.Vec3 {
	return math.NewVec3(v[0], v[1], v[2])
}

func eulerDegrees(v [3]float32) math.Quaternion {
	return math.NewQuatFromEuler(math.DegToRad(v[0]), math.DegToRad(v[1]), math.DegToRad(v[2]))
}

// Build validates the rig and instantiates its transforms and cameras.
func (r *Rig) Build() (*Scene, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	conv, _ := r.Conventions.Parse()
	h := conv.Handedness

	scene := &Scene{
		Conventions: conv,
		Transforms:  make(map[string]*math.Transform, len(r.Transforms)),
		Cameras:     make([]*components.OffAxisCamera, 0, len(r.Cameras)),
		Markers:     make([]math.Extents3D, 0, len(r.Markers)),
	}
	for _, t := range r.Transforms {
		scale := math.NewVec3One()
		if t.Scale != nil {
			scale = vec3(*t.Scale)
		}
		scene.Transforms[t.Name] = math.TransformFromPositionRotationScale(vec3(t.Position), eulerDegrees(t.Rotation), scale)
	}
	for _, t := range r.Transforms {
		if t.Parent != "" {
			scene.Transforms[t.Name].SetParent(scene.Transforms[t.Parent])
		}
	}

	for _, c := range r.Cameras {
		cam := components.NewOffAxisCamera(c.Name, scene.Transforms[c.Transform], h)
		cam.Mode, _ = components.ParsePlaneMode(c.Mode)
		if c.SnapTo != "" {
			cam.SnapTo = scene.Transforms[c.SnapTo]
		}
		if c.PlaneSize != nil {
			cam.SetPlaneSize(math.NewVec2(c.PlaneSize[0], c.PlaneSize[1]))
		}
		if c.PlaneDistance != nil {
			cam.SetPlaneDistance(*c.PlaneDistance)
		}
		cam.PlaneRotation = eulerDegrees(c.PlaneRotation)
		if c.PointOfView != nil {
			cam.SetPointOfViewLocal(vec3(*c.PointOfView))
		}
		if c.UseProjectionAsNearPlane != nil {
			cam.UseProjectionAsNearPlane = *c.UseProjectionAsNearPlane
		}
		near, far := cam.ClipPlanes()
		if c.Near != nil {
			near = *c.Near
		}
		if c.Far != nil {
			far = *c.Far
		}
		cam.SetClipPlanes(near, far)
		scene.Cameras = append(scene.Cameras, cam)
	}

	for _, m := range r.Markers {
		scene.Markers = append(scene.Markers, math.Extents3D{Min: vec3(m.Min), Max: vec3(m.Max)})
	}
	return scene, nil
}
