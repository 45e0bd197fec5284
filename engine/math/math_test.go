package math_test

import (
	"testing"

	"github.com/spaghettifunk/offaxis/engine/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-5

func assertVec3(t *testing.T, expected, actual math.Vec3, msgAndArgs ...interface{}) {
	t.Helper()
	assert.InDelta(t, expected.X, actual.X, tol, msgAndArgs...)
	assert.InDelta(t, expected.Y, actual.Y, tol, msgAndArgs...)
	assert.InDelta(t, expected.Z, actual.Z, tol, msgAndArgs...)
}

func TestQuaternionRotate(t *testing.T) {
	q := math.NewQuatFromAxisAngle(math.NewVec3Up(), math.K_HALF_PI, true)

	assertVec3(t, math.NewVec3(-1, 0, 0), q.Rotate(math.NewVec3Forward()))
	assertVec3(t, math.NewVec3(0, 0, -1), q.Rotate(math.NewVec3Right()))
	assertVec3(t, math.NewVec3Up(), q.Rotate(math.NewVec3Up()))
}

func TestQuaternionMatchesMatrix(t *testing.T) {
	q := math.NewQuatFromEuler(math.DegToRad(30), math.DegToRad(-45), math.DegToRad(10))
	m := q.ToMat4()

	for _, v := range []math.Vec3{
		math.NewVec3(1, 2, 3),
		math.NewVec3(-4, 0.5, 2),
		math.NewVec3Forward(),
	} {
		assertVec3(t, q.Rotate(v), v.Transform(m), "vector %v", v)
	}
}

func TestQuaternionMulComposes(t *testing.T) {
	a := math.NewQuatFromAxisAngle(math.NewVec3Up(), 0.7, true)
	b := math.NewQuatFromAxisAngle(math.NewVec3Right(), -1.1, true)
	v := math.NewVec3(0.3, -2, 5)

	assertVec3(t, a.Rotate(b.Rotate(v)), a.Mul(b).Rotate(v))
	assertVec3(t, v, a.Inverse().Rotate(a.Rotate(v)))
}

func TestMat4MulOrder(t *testing.T) {
	tr := math.NewMat4Translation(math.NewVec3(1, 2, 3))
	sc := math.NewMat4Scale(math.NewVec3(2, 2, 2))
	p := math.NewVec3(1, 1, 1)

	// scale first, then translate
	assertVec3(t, math.NewVec3(3, 4, 5), p.Transform(sc.Mul(tr)))
	// translate first, then scale
	assertVec3(t, math.NewVec3(4, 6, 8), p.Transform(tr.Mul(sc)))
}

func TestMat4Inverse(t *testing.T) {
	xf := math.TransformFromPositionRotationScale(
		math.NewVec3(4, -2, 7),
		math.NewQuatFromEuler(0.3, 1.2, -0.4),
		math.NewVec3(2, 1, 0.5),
	)
	world := xf.GetWorld()
	product := world.Mul(world.Inverse())

	assert.True(t, product.Compare(math.NewMat4Identity(), 1e-4), "got %v", product.Data)
}

func TestMat4RowMajor(t *testing.T) {
	m := math.NewMat4Translation(math.NewVec3(5, 6, 7))
	row := m.RowMajor()
	col := m.ColumnMajor()

	assert.Equal(t, float32(5), col[12])
	assert.Equal(t, float32(5), row[3])
	assert.Equal(t, float32(7), row[11])
	assert.Equal(t, float32(5), m.At(0, 3))
	assert.Equal(t, math.NewVec4(1, 0, 0, 5), m.Row(0))
}

func TestFrustumDepthRange(t *testing.T) {
	n, f := float32(0.5), float32(50)
	cases := []struct {
		name        string
		m           math.Mat4
		nearZ, farZ float32
	}{
		{"negative one to one", math.NewMat4Frustum(-1, 1, -1, 1, n, f), -1, 1},
		{"zero to one", math.NewMat4FrustumZeroToOne(-1, 1, -1, 1, n, f), 0, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			near := math.NewVec4(0, 0, -n, 1).Transform(c.m).PerspectiveDivide()
			far := math.NewVec4(0, 0, -f, 1).Transform(c.m).PerspectiveDivide()
			assert.InDelta(t, c.nearZ, near.Z, 1e-4)
			assert.InDelta(t, c.farZ, far.Z, 1e-4)
		})
	}
}

func TestFrustumMatchesSymmetricPerspective(t *testing.T) {
	fov := math.DegToRad(60)
	aspect := float32(1.5)
	n, f := float32(0.1), float32(100)

	top := n * float32(0.57735026918962576450) // tan(30deg)
	right := top * aspect

	assert.True(t,
		math.NewMat4Frustum(-right, right, -top, top, n, f).Compare(math.NewMat4Perspective(fov, aspect, n, f), 1e-4))
}

func TestLookAt(t *testing.T) {
	view := math.NewMat4LookAt(math.NewVec3(0, 0, 5), math.NewVec3Zero(), math.NewVec3Up())

	assertVec3(t, math.NewVec3(0, 0, -5), math.NewVec3Zero().Transform(view))
	assertVec3(t, math.NewVec3(1, 0, -5), math.NewVec3(1, 0, 0).Transform(view))
}

func TestTransformHierarchy(t *testing.T) {
	parent := math.TransformFromPositionRotation(
		math.NewVec3(10, 0, 0),
		math.NewQuatFromAxisAngle(math.NewVec3Up(), math.K_HALF_PI, true),
	)
	child := math.TransformFromPosition(math.NewVec3(0, 0, -2))
	child.SetParent(parent)

	p := math.NewVec3(1, 1, 0)
	world := child.TransformPoint(p)

	assertVec3(t, p.Transform(child.GetWorld()), world)
	assertVec3(t, p, child.InverseTransformPoint(world))
	assertVec3(t, math.NewVec3(8, 0, 0), child.WorldPosition())
	assertVec3(t, math.NewVec3(-1, 0, 0), child.Forward(math.RightHanded))
	assertVec3(t, math.NewVec3(1, 0, 0), child.Forward(math.LeftHanded))
}

func TestTransformVersion(t *testing.T) {
	parent := math.TransformCreate()
	child := math.TransformCreate()
	child.SetParent(parent)

	before := child.Version()
	assert.Equal(t, before, child.Version())

	parent.Translate(math.NewVec3(1, 0, 0))
	assert.Greater(t, child.Version(), before)
}

func TestHandedness(t *testing.T) {
	right, up := math.NewVec3Right(), math.NewVec3Up()

	assertVec3(t, math.NewVec3(0, 0, -1), math.RightHanded.ViewDirection(right, up))
	assertVec3(t, math.NewVec3(0, 0, 1), math.LeftHanded.ViewDirection(right, up))

	h, err := math.ParseHandedness("lh")
	require.NoError(t, err)
	assert.Equal(t, math.LeftHanded, h)

	_, err = math.ParseHandedness("sideways")
	assert.Error(t, err)
}

func TestRect(t *testing.T) {
	r := math.NewRectCentered(math.NewVec2Zero(), math.NewVec2(2, 1))
	assert.Equal(t, math.NewVec2(-1, -0.5), r.Min)

	r.SetXMax(2)
	r.SetYMin(-1.5)
	assert.Equal(t, math.NewVec2(3, 2), r.Size)
	assert.Equal(t, math.NewVec2(0.5, -0.5), r.Center())
}

func TestClamp(t *testing.T) {
	assert.Equal(t, float32(0.005), math.Clamp(float32(0), 0.005, 10))
	assert.Equal(t, 3, math.Clamp(7, 0, 3))
	assert.Equal(t, float32(0.01), math.AtLeast(float32(-4), 0.01))
	assert.Equal(t, float32(1), math.Sign(float32(0)))
	assert.Equal(t, float32(-1), math.Sign(float32(-0.2)))
}
