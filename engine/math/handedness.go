package math

import "fmt"

// Handedness selects the world coordinate convention. It decides which way a
// transform looks and how a view direction is derived from a right/up pair.
type Handedness uint8

const (
	// RightHanded worlds look down local -Z (OpenGL convention).
	RightHanded Handedness = iota
	// LeftHanded worlds look down local +Z (the convention of hosts such as Unity).
	LeftHanded
)

// LocalForward returns the direction a transform looks at in its own space.
func (h Handedness) LocalForward() Vec3 {
	if h == LeftHanded {
		return NewVec3Back()
	}
	return NewVec3Forward()
}

// ViewDirection returns the unit direction an observer with the given right
// and up axes looks at.
func (h Handedness) ViewDirection(right, up Vec3) Vec3 {
	if h == LeftHanded {
		return right.Cross(up).Normalize()
	}
	return up.Cross(right).Normalize()
}

func (h Handedness) String() string {
	switch h {
	case RightHanded:
		return "right"
	case LeftHanded:
		return "left"
	default:
		return fmt.Sprintf("Handedness(%d)", uint8(h))
	}
}

// ParseHandedness accepts "right"/"rh" and "left"/"lh". The empty string
// selects RightHanded.
func ParseHandedness(s string) (Handedness, error) {
	switch s {
	case "", "right", "rh", "right_handed":
		return RightHanded, nil
	case "left", "lh", "left_handed":
		return LeftHanded, nil
	default:
		return RightHanded, fmt.Errorf("unknown handedness %q", s)
	}
}
