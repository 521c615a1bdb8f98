package ahrs

import (
	"github.com/flyingkit/imuekf/quaternion"
	"github.com/skelterjohn/go.matrix"
)

// buildProcess computes the process vector f, its Jacobian F, and the
// per-step process noise Q*Δt for a gyro sample of angular velocity omega
// (rad/s) arriving dt seconds after the previous one, linearized about the
// current posterior quaternion q.
func buildProcess(q quaternion.Quaternion, omega [3]float64, dt float64, qDiag float64) (f, F, Qk *matrix.DenseMatrix) {
	wx, wy, wz := omega[0], omega[1], omega[2]
	ht := 0.5 * dt

	f0 := q.W + ht*(-q.X*wx-q.Y*wy-q.Z*wz)
	f1 := q.X + ht*(+q.W*wx-q.Z*wy+q.Y*wz)
	f2 := q.Y + ht*(+q.Z*wx+q.W*wy-q.X*wz)
	f3 := q.Z + ht*(-q.Y*wx+q.X*wy+q.W*wz)

	fq := quaternion.Normalize(quaternion.Quaternion{W: f0, X: f1, Y: f2, Z: f3})
	f = matrix.MakeDenseMatrix([]float64{fq.W, fq.X, fq.Y, fq.Z}, 4, 1)

	F = matrix.MakeDenseMatrix([]float64{
		1, -ht * wx, -ht * wy, -ht * wz,
		+ht * wx, 1, +ht * wz, -ht * wy,
		+ht * wy, -ht * wz, 1, +ht * wx,
		+ht * wz, +ht * wy, -ht * wx, 1,
	}, 4, 4)

	Qk = matrix.MakeDenseMatrix([]float64{
		qDiag * dt, 0, 0, 0,
		0, qDiag * dt, 0, 0,
		0, 0, qDiag * dt, 0,
		0, 0, 0, qDiag * dt,
	}, 4, 4)

	return f, F, Qk
}
