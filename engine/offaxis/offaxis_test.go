package offaxis_test

import (
	stdmath "math"
	"testing"

	"github.com/spaghettifunk/offaxis/engine/math"
	"github.com/spaghettifunk/offaxis/engine/offaxis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-4

var handednesses = []math.Handedness{math.RightHanded, math.LeftHanded}

func assertVec3(t *testing.T, expected, actual math.Vec3, msgAndArgs ...interface{}) {
	t.Helper()
	assert.InDelta(t, expected.X, actual.X, tol, msgAndArgs...)
	assert.InDelta(t, expected.Y, actual.Y, tol, msgAndArgs...)
	assert.InDelta(t, expected.Z, actual.Z, tol, msgAndArgs...)
}

func assertBounds(t *testing.T, expected, actual offaxis.FrustumBounds) {
	t.Helper()
	assert.InDelta(t, expected.Left, actual.Left, tol, "left")
	assert.InDelta(t, expected.Right, actual.Right, tol, "right")
	assert.InDelta(t, expected.Bottom, actual.Bottom, tol, "bottom")
	assert.InDelta(t, expected.Top, actual.Top, tol, "top")
	assert.InDelta(t, expected.Near, actual.Near, tol, "near")
	assert.InDelta(t, expected.Far, actual.Far, tol, "far")
}

func exampleCorners() offaxis.PlaneCorners {
	return offaxis.PlaneCorners{
		BottomLeft:  math.NewVec3(-1, -1, 5),
		BottomRight: math.NewVec3(1, -1, 5),
		TopLeft:     math.NewVec3(-1, 1, 5),
	}
}

func tiltedReference() *math.Transform {
	return math.TransformFromPositionRotation(
		math.NewVec3(0.5, 1, -4),
		math.NewQuatFromEuler(math.DegToRad(10), math.DegToRad(25), math.DegToRad(-5)),
	)
}

func TestExampleScenario(t *testing.T) {
	cases := []struct {
		h        math.Handedness
		inverted bool
	}{
		{math.RightHanded, true},
		{math.LeftHanded, false},
	}
	for _, c := range cases {
		t.Run(c.h.String(), func(t *testing.T) {
			eye := math.NewVec3Zero()
			plane, err := offaxis.Correct(exampleCorners(), eye, c.h)
			require.NoError(t, err)
			assert.Equal(t, c.inverted, plane.Inverted)

			b, err := offaxis.Solve(eye, plane, offaxis.ClipPlanes{Near: 1, Far: 100})
			require.NoError(t, err)
			assertBounds(t, offaxis.FrustumBounds{
				Left: -0.2, Right: 0.2, Bottom: -0.2, Top: 0.2, Near: 1, Far: 100,
			}, b)
		})
	}
}

func TestAxisAlignedMatchesSymmetric(t *testing.T) {
	const distance = 2
	fov := math.DegToRad(60)
	aspect := float32(1.6)
	halfY := float32(distance * stdmath.Tan(stdmath.Pi/6))

	for _, h := range handednesses {
		t.Run(h.String(), func(t *testing.T) {
			p := offaxis.NewProjector(offaxis.Conventions{Handedness: h})
			state, err := p.Project(offaxis.OffsetPlane{
				Camera:   math.TransformCreate(),
				HalfSize: math.NewVec2(halfY*aspect, halfY),
				Distance: distance,
				Rotation: math.NewQuatIdentity(),
			}, offaxis.ClipPlanes{Near: 0.3, Far: 50, ClampToPlane: true})
			require.NoError(t, err)

			b := state.Bounds
			assert.InDelta(t, -b.Right, b.Left, tol)
			assert.InDelta(t, -b.Top, b.Bottom, tol)
			assertBounds(t, offaxis.SymmetricBounds(fov, aspect, distance, 50), b)
			assert.True(t, state.Projection.Compare(math.NewMat4Perspective(fov, aspect, distance, 50), tol))
		})
	}
}

func TestBehindPlaneCorrection(t *testing.T) {
	p := offaxis.NewProjector(offaxis.DefaultConventions())
	reference := math.TransformCreate()
	point := math.NewVec4(0.5, 0, 0, 1)

	var ndcX []float32
	for _, z := range []float32{3, -3} {
		state, err := p.Project(offaxis.SnappedPlane{
			Reference: reference,
			HalfSize:  math.NewVec2(1, 0.5),
			Eye:       math.NewVec3(0, 0, z),
		}, offaxis.ClipPlanes{Near: 0.1, Far: 100, ClampToPlane: true})
		require.NoError(t, err, "eye z %v", z)

		assert.InDelta(t, 3, state.Distance, tol)
		assert.Equal(t, z < 0, state.Plane.Inverted)
		ndcX = append(ndcX, point.Transform(state.ViewProjection()).PerspectiveDivide().X)
	}
	assert.Greater(t, ndcX[0], float32(0))
	assert.Less(t, ndcX[1], float32(0))
	assert.InDelta(t, ndcX[0], -ndcX[1], tol)
}

func TestScaleInvariance(t *testing.T) {
	base := offaxis.PlaneCorners{
		BottomLeft:  math.NewVec3(-0.4, -0.3, -2),
		BottomRight: math.NewVec3(1.6, -0.3, -2.5),
		TopLeft:     math.NewVec3(-0.4, 0.9, -2),
	}
	eye := math.NewVec3(0.2, 0.1, 0.3)

	ratios := func(k float32) [4]float32 {
		c := offaxis.PlaneCorners{
			BottomLeft:  base.BottomLeft.MulScalar(k),
			BottomRight: base.BottomRight.MulScalar(k),
			TopLeft:     base.TopLeft.MulScalar(k),
		}
		e := eye.MulScalar(k)
		plane, err := offaxis.Correct(c, e, math.RightHanded)
		require.NoError(t, err)
		b, err := offaxis.Solve(e, plane, offaxis.ClipPlanes{Far: 1000, ClampToPlane: true})
		require.NoError(t, err)
		return [4]float32{b.Left / b.Near, b.Right / b.Near, b.Bottom / b.Near, b.Top / b.Near}
	}

	want := ratios(1)
	for _, k := range []float32{0.25, 3, 40} {
		got := ratios(k)
		for i := range want {
			assert.InDelta(t, want[i], got[i], tol, "k=%v ratio %d", k, i)
		}
	}
}

func TestNearClampToggle(t *testing.T) {
	eye := math.NewVec3(0.1, -0.2, 0)
	plane, err := offaxis.Correct(offaxis.PlaneCorners{
		BottomLeft:  math.NewVec3(-1, -1, -4),
		BottomRight: math.NewVec3(1, -1, -4),
		TopLeft:     math.NewVec3(-1, 1, -4),
	}, eye, math.RightHanded)
	require.NoError(t, err)

	clamped, err := offaxis.Solve(eye, plane, offaxis.ClipPlanes{Near: 0.25, Far: 100, ClampToPlane: true})
	require.NoError(t, err)
	d := plane.Corners.BottomLeft.Sub(eye).Dot(plane.Basis.Forward)
	assert.Equal(t, d, clamped.Near)

	free, err := offaxis.Solve(eye, plane, offaxis.ClipPlanes{Near: 0.25, Far: 100})
	require.NoError(t, err)
	assert.Equal(t, float32(0.25), free.Near)
}

func TestViewRoundTrip(t *testing.T) {
	eyes := []math.Vec3{
		math.NewVec3(0.3, -0.2, 0.5),
		math.NewVec3(0.3, -0.2, -8),
	}
	for _, h := range handednesses {
		for _, eye := range eyes {
			p := offaxis.NewProjector(offaxis.Conventions{Handedness: h})
			state, err := p.Project(offaxis.SnappedPlane{
				Reference: tiltedReference(),
				HalfSize:  math.NewVec2(1.2, 0.7),
				Eye:       eye,
			}, offaxis.ClipPlanes{Near: 0.05, Far: 100})
			require.NoError(t, err)

			b, d := state.Bounds, state.Distance
			require.Greater(t, d, float32(0))
			s := d / b.Near
			outline := state.Plane.Corners.Outline()
			want := [4]math.Vec3{
				math.NewVec3(b.Left*s, b.Bottom*s, -d),
				math.NewVec3(b.Right*s, b.Bottom*s, -d),
				math.NewVec3(b.Right*s, b.Top*s, -d),
				math.NewVec3(b.Left*s, b.Top*s, -d),
			}
			for i, corner := range outline {
				assertVec3(t, want[i], corner.Transform(state.View), "%s eye %v corner %d", h, eye, i)
			}
			assertVec3(t, math.NewVec3Zero(), eye.Transform(state.View))
		}
	}
}

func TestCornersProjectToViewportBorder(t *testing.T) {
	cases := []struct {
		depth offaxis.DepthRange
		nearZ float32
	}{
		{offaxis.DepthNegativeOneToOne, -1},
		{offaxis.DepthZeroToOne, 0},
	}
	ndc := [4]math.Vec2{
		math.NewVec2(-1, -1), math.NewVec2(1, -1), math.NewVec2(1, 1), math.NewVec2(-1, 1),
	}
	for _, c := range cases {
		t.Run(c.depth.String(), func(t *testing.T) {
			p := offaxis.NewProjector(offaxis.Conventions{Depth: c.depth})
			state, err := p.Project(offaxis.SnappedPlane{
				Reference: tiltedReference(),
				HalfSize:  math.NewVec2(1.2, 0.7),
				Eye:       math.NewVec3(-0.6, 0.4, 1),
			}, offaxis.ClipPlanes{Far: 100, ClampToPlane: true})
			require.NoError(t, err)

			vp := state.ViewProjection()
			for i, corner := range state.Plane.Corners.Outline() {
				got := corner.ToVec4(1).Transform(vp).PerspectiveDivide()
				assert.InDelta(t, ndc[i].X, got.X, tol, "corner %d", i)
				assert.InDelta(t, ndc[i].Y, got.Y, tol, "corner %d", i)
				assert.InDelta(t, c.nearZ, got.Z, tol, "corner %d", i)
			}
		})
	}
}

func TestCorrectionKeepsCornersAndBasisInSync(t *testing.T) {
	for _, h := range handednesses {
		for _, eye := range []math.Vec3{math.NewVec3(0, 0, 0), math.NewVec3(0.5, 2, 9)} {
			plane, err := offaxis.Correct(exampleCorners(), eye, h)
			require.NoError(t, err)

			derived := offaxis.BasisOf(plane.Corners, h)
			assertVec3(t, derived.Right, plane.Basis.Right)
			assertVec3(t, derived.Up, plane.Basis.Up)
			assertVec3(t, derived.Forward, plane.Basis.Forward)
			assert.Greater(t, plane.Corners.BottomLeft.Sub(eye).Dot(plane.Basis.Forward), float32(0))

			again, err := offaxis.Correct(plane.Corners, eye, h)
			require.NoError(t, err)
			assert.False(t, again.Inverted)
			assert.Equal(t, plane.Corners, again.Corners)
			assertVec3(t, plane.Basis.Right, again.Basis.Right)
			assertVec3(t, plane.Basis.Forward, again.Basis.Forward)

			// Left stays left in view space.
			view := offaxis.BuildView(plane.Basis, eye)
			bl := plane.Corners.BottomLeft.Transform(view)
			br := plane.Corners.BottomRight.Transform(view)
			tl := plane.Corners.TopLeft.Transform(view)
			assert.Less(t, bl.X, br.X)
			assert.Less(t, bl.Y, tl.Y)
		}
	}
}

func TestMirroredDoesNotModifyInput(t *testing.T) {
	c := exampleCorners()
	m := c.Mirrored()

	assert.Equal(t, exampleCorners(), c)
	assertVec3(t, c.BottomRight, m.BottomLeft)
	assertVec3(t, c.BottomLeft, m.BottomRight)
	assertVec3(t, c.TopRight(), m.TopLeft)
	assertVec3(t, c.TopLeft, m.TopRight())
	assertVec3(t, c.Center(), m.Center())
}

func TestLeftHandedHostDefaults(t *testing.T) {
	p := offaxis.NewProjector(offaxis.Conventions{Handedness: math.LeftHanded})
	clip := offaxis.ClipPlanes{Near: 0.3, Far: 1000, ClampToPlane: true}
	want := offaxis.FrustumBounds{Left: -0.5, Right: 0.5, Bottom: -0.5, Top: 0.5, Near: 1, Far: 1000}

	t.Run("offset plane", func(t *testing.T) {
		state, err := p.Project(offaxis.OffsetPlane{
			Camera:   math.TransformCreate(),
			HalfSize: math.NewVec2(0.5, 0.5),
			Distance: 1,
			Rotation: math.NewQuatIdentity(),
		}, clip)
		require.NoError(t, err)
		assertBounds(t, want, state.Bounds)
		assert.False(t, state.Plane.Inverted)
		assert.Equal(t, math.NewVec4(0, 0, -1, 0), state.View.Row(2))
		assertVec3(t, math.NewVec3(0, 0, -1), math.NewVec3(0, 0, 1).Transform(state.View))
	})

	t.Run("local rect", func(t *testing.T) {
		state, err := p.Project(offaxis.LocalRectPlane{
			Camera:      math.TransformCreate(),
			HalfSize:    math.NewVec2(0.5, 0.5),
			PointOfView: math.NewVec3(0, 0, -1),
		}, clip)
		require.NoError(t, err)
		assertBounds(t, want, state.Bounds)
		assert.False(t, state.Plane.Inverted)
		assertVec3(t, math.NewVec3(0, 0, -1), state.Eye)
	})
}

func TestLocalRectMatchesCorrection(t *testing.T) {
	camera := math.TransformFromPositionRotation(
		math.NewVec3(2, 1, -3),
		math.NewQuatFromEuler(math.DegToRad(-15), math.DegToRad(40), math.DegToRad(8)),
	)
	half := math.NewVec2(0.8, 0.45)
	clip := offaxis.ClipPlanes{Near: 0.1, Far: 200}

	for _, h := range handednesses {
		behind := h.LocalForward().MulScalar(-1.5)
		for _, pov := range []math.Vec3{behind, behind.Negate(), behind.Add(math.NewVec3(0.3, -0.2, 0))} {
			p := offaxis.NewProjector(offaxis.Conventions{Handedness: h})
			local, err := p.Project(offaxis.LocalRectPlane{Camera: camera, HalfSize: half, PointOfView: pov}, clip)
			require.NoError(t, err)

			eye := camera.TransformPoint(pov)
			corrected, err := p.Project(offaxis.SnappedPlane{Reference: camera, HalfSize: half, Eye: eye}, clip)
			require.NoError(t, err)

			msg := []interface{}{"%s pov %v", h, pov}
			assert.Equal(t, corrected.Plane.Inverted, local.Plane.Inverted, msg...)
			assertVec3(t, corrected.Plane.Corners.BottomLeft, local.Plane.Corners.BottomLeft, msg...)
			assertVec3(t, corrected.Plane.Corners.BottomRight, local.Plane.Corners.BottomRight, msg...)
			assertVec3(t, corrected.Plane.Corners.TopLeft, local.Plane.Corners.TopLeft, msg...)
			assertBounds(t, corrected.Bounds, local.Bounds)
			assert.True(t, corrected.View.Compare(local.View, tol), msg...)
			assert.True(t, corrected.Projection.Compare(local.Projection, tol), msg...)
		}
	}
}

func TestDegenerateRejection(t *testing.T) {
	eye := math.NewVec3Zero()
	valid := exampleCorners()

	t.Run("collinear corners", func(t *testing.T) {
		_, err := offaxis.Correct(offaxis.PlaneCorners{
			BottomLeft:  math.NewVec3(0, 0, 5),
			BottomRight: math.NewVec3(1, 0, 5),
			TopLeft:     math.NewVec3(2, 0, 5),
		}, eye, math.RightHanded)
		assert.ErrorIs(t, err, offaxis.ErrInvalidPlaneGeometry)
	})

	t.Run("coincident corners", func(t *testing.T) {
		_, err := offaxis.Correct(offaxis.PlaneCorners{
			BottomLeft:  math.NewVec3(1, 1, 5),
			BottomRight: math.NewVec3(1, 1, 5),
			TopLeft:     math.NewVec3(-1, 1, 5),
		}, eye, math.RightHanded)
		assert.ErrorIs(t, err, offaxis.ErrInvalidPlaneGeometry)
	})

	t.Run("zero scale reference", func(t *testing.T) {
		ref := math.TransformCreate()
		ref.SetScale(math.NewVec3(0, 1, 1))
		p := offaxis.NewProjector(offaxis.DefaultConventions())
		state, err := p.Project(offaxis.SnappedPlane{Reference: ref, HalfSize: math.NewVec2(1, 1)}, offaxis.ClipPlanes{Near: 1, Far: 2})
		assert.ErrorIs(t, err, offaxis.ErrInvalidPlaneGeometry)
		assert.Equal(t, offaxis.ProjectionState{}, state)
	})

	plane, err := offaxis.Correct(valid, eye, math.RightHanded)
	require.NoError(t, err)

	clips := []struct {
		name string
		clip offaxis.ClipPlanes
	}{
		{"near equals far", offaxis.ClipPlanes{Near: 10, Far: 10}},
		{"near beyond far", offaxis.ClipPlanes{Near: 20, Far: 10}},
		{"zero near", offaxis.ClipPlanes{Near: 0, Far: 10}},
		{"negative near", offaxis.ClipPlanes{Near: -1, Far: 10}},
		{"clamped near beyond far", offaxis.ClipPlanes{Near: 1, Far: 4, ClampToPlane: true}},
		{"infinite far", offaxis.ClipPlanes{Near: 1, Far: float32(stdmath.Inf(1))}},
	}
	for _, c := range clips {
		t.Run(c.name, func(t *testing.T) {
			b, err := offaxis.Solve(eye, plane, c.clip)
			assert.ErrorIs(t, err, offaxis.ErrInvalidClipRange)
			assert.Equal(t, offaxis.FrustumBounds{}, b)
		})
	}

	t.Run("small near keeps the frustum", func(t *testing.T) {
		b, err := offaxis.Solve(eye, plane, offaxis.ClipPlanes{Near: 1e-6, Far: 10})
		require.NoError(t, err)
		m := b.Projection(offaxis.DepthNegativeOneToOne)
		assert.InDelta(t, 5, m.Data[0], 1e-3)
		assert.InDelta(t, 5, m.Data[5], 1e-3)
	})

	t.Run("collapsed extent", func(t *testing.T) {
		distant, err := offaxis.Correct(offaxis.PlaneCorners{
			BottomLeft:  math.NewVec3(-1, -1, 1e7),
			BottomRight: math.NewVec3(1, -1, 1e7),
			TopLeft:     math.NewVec3(-1, 1, 1e7),
		}, eye, math.RightHanded)
		require.NoError(t, err)
		_, err = offaxis.Solve(eye, distant, offaxis.ClipPlanes{Near: 1, Far: 2e7})
		assert.ErrorIs(t, err, offaxis.ErrDegenerateFrustum)
	})

	t.Run("collapsed bounds", func(t *testing.T) {
		b := offaxis.FrustumBounds{Left: 0.1, Right: 0.1 + 1e-9, Bottom: -1, Top: 1, Near: 0.5, Far: 10}
		assert.ErrorIs(t, b.Validate(), offaxis.ErrDegenerateFrustum)
	})

	t.Run("uncorrected plane", func(t *testing.T) {
		raw := offaxis.Plane{Corners: valid, Basis: offaxis.BasisOf(valid, math.RightHanded)}
		_, err := offaxis.Solve(eye, raw, offaxis.ClipPlanes{Near: 1, Far: 100})
		assert.ErrorIs(t, err, offaxis.ErrEyeBehindPlane)
	})

	t.Run("eye on plane", func(t *testing.T) {
		p := offaxis.NewProjector(offaxis.DefaultConventions())
		_, err := p.Project(offaxis.SnappedPlane{
			Reference: math.TransformCreate(),
			HalfSize:  math.NewVec2(1, 1),
			Eye:       math.NewVec3(3, 0, 0),
		}, offaxis.ClipPlanes{Near: 1, Far: 100})
		assert.ErrorIs(t, err, offaxis.ErrEyeBehindPlane)
	})
}

func TestStateLayout(t *testing.T) {
	p := offaxis.Projector{}
	state, err := p.Project(offaxis.SnappedPlane{
		Reference: tiltedReference(),
		HalfSize:  math.NewVec2(1, 1),
		Eye:       math.NewVec3(0, 0, 2),
	}, offaxis.ClipPlanes{Near: 0.5, Far: 100})
	require.NoError(t, err)

	assert.Equal(t, state.View.Data, state.ViewData(offaxis.ColumnMajor))
	assert.Equal(t, state.View.Transposed().Data, state.ViewData(offaxis.RowMajor))
	assert.Equal(t, state.Projection.Transposed().Data, state.ProjectionData(offaxis.RowMajor))
	assert.Equal(t, float32(-1), state.ProjectionData(offaxis.RowMajor)[14])
}

func TestParseConventions(t *testing.T) {
	d, err := offaxis.ParseDepthRange("zero_to_one")
	require.NoError(t, err)
	assert.Equal(t, offaxis.DepthZeroToOne, d)

	l, err := offaxis.ParseLayout("")
	require.NoError(t, err)
	assert.Equal(t, offaxis.ColumnMajor, l)

	_, err = offaxis.ParseLayout("diagonal")
	assert.Error(t, err)
	_, err = offaxis.ParseDepthRange("one_to_zero")
	assert.Error(t, err)
}
