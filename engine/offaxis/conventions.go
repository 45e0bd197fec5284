package offaxis

import (
	"fmt"

	"github.com/spaghettifunk/offaxis/engine/math"
)

// DepthRange is the clip space depth range of the emitted projection matrix.
type DepthRange uint8

const (
	// DepthNegativeOneToOne maps near to -1 and far to 1 (OpenGL).
	DepthNegativeOneToOne DepthRange = iota
	// DepthZeroToOne maps near to 0 and far to 1 (Vulkan, WebGPU, Direct3D).
	DepthZeroToOne
)

func (d DepthRange) String() string {
	switch d {
	case DepthNegativeOneToOne:
		return "negative_one_to_one"
	case DepthZeroToOne:
		return "zero_to_one"
	default:
		return fmt.Sprintf("DepthRange(%d)", uint8(d))
	}
}

// ParseDepthRange parses the names produced by DepthRange.String. The empty
// string selects DepthNegativeOneToOne.
func ParseDepthRange(s string) (DepthRange, error) {
	switch s {
	case "", "negative_one_to_one", "opengl":
		return DepthNegativeOneToOne, nil
	case "zero_to_one", "vulkan", "webgpu", "d3d":
		return DepthZeroToOne, nil
	default:
		return DepthNegativeOneToOne, fmt.Errorf("unknown depth range %q", s)
	}
}

// Layout is the element order used when matrices are flattened for a consumer.
type Layout uint8

const (
	ColumnMajor Layout = iota
	RowMajor
)

func (l Layout) String() string {
	switch l {
	case ColumnMajor:
		return "column_major"
	case RowMajor:
		return "row_major"
	default:
		return fmt.Sprintf("Layout(%d)", uint8(l))
	}
}

// ParseLayout parses the names produced by Layout.String. The empty string
// selects ColumnMajor.
func ParseLayout(s string) (Layout, error) {
	switch s {
	case "", "column_major", "column":
		return ColumnMajor, nil
	case "row_major", "row":
		return RowMajor, nil
	default:
		return ColumnMajor, fmt.Errorf("unknown matrix layout %q", s)
	}
}

// Flatten returns the elements of m in the given layout.
func (l Layout) Flatten(m math.Mat4) [16]float32 {
	if l == RowMajor {
		return m.RowMajor()
	}
	return m.ColumnMajor()
}

// Conventions groups the integration-time choices: the world handedness the
// inputs are expressed in, and the depth range and element order expected by
// the rendering backend.
type Conventions struct {
	Handedness math.Handedness
	Depth      DepthRange
	Layout     Layout
}

// DefaultConventions is a right-handed world with OpenGL clip space and
// column-major output.
func DefaultConventions() Conventions {
	return Conventions{
		Handedness: math.RightHanded,
		Depth:      DepthNegativeOneToOne,
		Layout:     ColumnMajor,
	}
}
