package testbed

import "github.com/spaghettifunk/offaxis/engine/config"

func ptr[T any](v T) *T {
	return &v
}

// NewDemoRig describes a small room: a portal on the far wall, a mirror on
// the right wall, a head tracked CAVE wall and a fixed overlay panel in
// front of the viewer.
func NewDemoRig() *config.Rig {
	return &config.Rig{
		Conventions: config.ConventionsConfig{
			Handedness: "right",
			Depth:      "negative_one_to_one",
			Layout:     "column_major",
		},
		Transforms: []config.TransformConfig{
			{Name: "viewer", Position: [3]float32{0, 1.6, 2}},
			{Name: "portal", Position: [3]float32{0, 1.5, -3}},
			{Name: "mirror_frame", Position: [3]float32{2.5, 1.5, 0}, Rotation: [3]float32{0, -90, 0}},
			{Name: "cave_front", Position: [3]float32{0, 1.5, -2}},
		},
		Cameras: []config.CameraConfig{
			{
				Name:      "portal",
				Mode:      "pose_offset",
				Transform: "viewer",
				SnapTo:    "portal",
				PlaneSize: ptr([2]float32{2, 2}),
			},
			{
				Name:        "mirror",
				Mode:        "local_rect",
				Transform:   "mirror_frame",
				PlaneSize:   ptr([2]float32{1.5, 2}),
				PointOfView: ptr([3]float32{0, 0, 2.5}),
			},
			{
				Name:        "cave_front",
				Mode:        "local_rect",
				Transform:   "cave_front",
				PlaneSize:   ptr([2]float32{4, 2.5}),
				PointOfView: ptr([3]float32{0, 0.1, 4}),
			},
			{
				Name:                     "overlay",
				Mode:                     "pose_offset",
				Transform:                "viewer",
				PlaneSize:                ptr([2]float32{0.6, 0.4}),
				PlaneDistance:            ptr(float32(0.5)),
				PlaneRotation:            [3]float32{0, 15, 0},
				UseProjectionAsNearPlane: ptr(false),
				Near:                     ptr(float32(0.05)),
				Far:                      ptr(float32(100)),
			},
		},
		Markers: []config.MarkerConfig{
			{Name: "crate", Min: [3]float32{-0.5, 0, -6}, Max: [3]float32{0.5, 1, -5}},
			{Name: "pillar", Min: [3]float32{1.2, 0, -4.5}, Max: [3]float32{1.6, 2.5, -4.1}},
		},
	}
}
