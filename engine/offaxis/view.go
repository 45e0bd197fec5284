package offaxis

import "github.com/spaghettifunk/offaxis/engine/math"

// BuildView returns the world to eye matrix for an observer at eye looking
// along b.Forward: the rotation with rows Right, Up and -Forward applied
// after a translation by -eye.
func BuildView(b PlaneBasis, eye math.Vec3) math.Mat4 {
	rotation := math.NewMat4Identity()
	rotation.SetRow(0, b.Right)
	rotation.SetRow(1, b.Up)
	rotation.SetRow(2, b.Forward.Negate())
	return math.NewMat4Translation(eye.Negate()).Mul(rotation)
}
