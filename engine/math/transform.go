package math

import "sync/atomic"

// transformClock hands out increasing change stamps shared by every transform,
// so a stamp taken after reparenting is always newer than any previous one.
var transformClock atomic.Uint64

func TransformCreate() *Transform {
	t := &Transform{}
	t.SetPositionRotationScale(NewVec3Zero(), NewQuatIdentity(), NewVec3One())
	t.Local = NewMat4Identity()
	t.Parent = nil
	return t
}

func TransformFromPosition(position Vec3) *Transform {
	t := &Transform{}
	t.SetPositionRotationScale(position, NewQuatIdentity(), NewVec3One())
	t.Local = NewMat4Identity()
	t.Parent = nil
	return t
}

func TransformFromRotation(rotation Quaternion) *Transform {
	t := &Transform{}
	t.SetPositionRotationScale(NewVec3Zero(), rotation, NewVec3One())
	t.Local = NewMat4Identity()
	t.Parent = nil
	return t
}

func TransformFromPositionRotation(position Vec3, rotation Quaternion) *Transform {
	t := &Transform{}
	t.SetPositionRotationScale(position, rotation, NewVec3One())
	t.Local = NewMat4Identity()
	t.Parent = nil
	return t
}

func TransformFromPositionRotationScale(position Vec3, rotation Quaternion, scale Vec3) *Transform {
	t := &Transform{}
	t.SetPositionRotationScale(position, rotation, scale)
	t.Local = NewMat4Identity()
	t.Parent = nil
	return t
}

func (t *Transform) touch() {
	t.IsDirty = true
	t.version = transformClock.Add(1)
}

func (t *Transform) SetPosition(position Vec3) {
	t.Position = position
	t.touch()
}

func (t *Transform) Translate(translation Vec3) {
	t.Position = t.Position.Add(translation)
	t.touch()
}

func (t *Transform) SetRotation(rotation Quaternion) {
	t.Rotation = rotation
	t.touch()
}

func (t *Transform) Rotate(rotation Quaternion) {
	t.Rotation = t.Rotation.Mul(rotation)
	t.touch()
}

func (t *Transform) SetScale(scale Vec3) {
	t.Scale = scale
	t.touch()
}

func (t *Transform) SetPositionRotation(position Vec3, rotation Quaternion) {
	t.Position = position
	t.Rotation = rotation
	t.touch()
}

func (t *Transform) SetPositionRotationScale(position Vec3, rotation Quaternion, scale Vec3) {
	t.Position = position
	t.Rotation = rotation
	t.Scale = scale
	t.touch()
}

func (t *Transform) SetParent(parent *Transform) {
	t.Parent = parent
	t.touch()
}

// Version returns the newest change stamp of this transform and its parents.
// Two equal versions mean nothing in the chain was mutated in between.
func (t *Transform) Version() uint64 {
	var v uint64
	for c := t; c != nil; c = c.Parent {
		if c.version > v {
			v = c.version
		}
	}
	return v
}

func (t *Transform) GetLocal() Mat4 {
	if t != nil {
		if t.IsDirty {
			m := t.Rotation.ToMat4()
			tr := m.Mul(NewMat4Translation(t.Position))
			s := NewMat4Scale(t.Scale)
			tr = s.Mul(tr)
			t.Local = tr
			t.IsDirty = false
		}
		return t.Local
	}
	return NewMat4Identity()
}

func (t *Transform) GetWorld() Mat4 {
	if t != nil {
		l := t.GetLocal()
		if t.Parent != nil {
			p := t.Parent.GetWorld()
			return l.Mul(p)
		}
		return l
	}
	return NewMat4Identity()
}

// WorldRotation returns the rotation of the transform in world space.
func (t *Transform) WorldRotation() Quaternion {
	if t == nil {
		return NewQuatIdentity()
	}
	if t.Parent != nil {
		return t.Parent.WorldRotation().Mul(t.Rotation)
	}
	return t.Rotation
}

// WorldPosition returns the origin of the transform in world space.
func (t *Transform) WorldPosition() Vec3 {
	return t.TransformPoint(NewVec3Zero())
}

// TransformPoint maps a point from local space to world space.
func (t *Transform) TransformPoint(p Vec3) Vec3 {
	for c := t; c != nil; c = c.Parent {
		p = c.Rotation.Rotate(p.Mul(c.Scale)).Add(c.Position)
	}
	return p
}

// InverseTransformPoint maps a point from world space to local space.
func (t *Transform) InverseTransformPoint(p Vec3) Vec3 {
	if t == nil {
		return p
	}
	if t.Parent != nil {
		p = t.Parent.InverseTransformPoint(p)
	}
	local := t.Rotation.Inverse().Rotate(p.Sub(t.Position))
	return local.Div(t.Scale)
}

// TransformDirection rotates a direction from local space to world space.
// Scale is ignored.
func (t *Transform) TransformDirection(d Vec3) Vec3 {
	return t.WorldRotation().Rotate(d)
}

// Right returns the world space direction of local +X.
func (t *Transform) Right() Vec3 {
	return t.TransformDirection(NewVec3Right())
}

// Up returns the world space direction of local +Y.
func (t *Transform) Up() Vec3 {
	return t.TransformDirection(NewVec3Up())
}

// Forward returns the world space viewing direction under the given convention.
func (t *Transform) Forward(h Handedness) Vec3 {
	return t.TransformDirection(h.LocalForward())
}
