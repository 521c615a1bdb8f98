package ahrs

import (
	"math"

	"github.com/flyingkit/imuekf/quaternion"
	"github.com/skelterjohn/go.matrix"
)

// observationInputs bundles the latest sensor readings and filter state
// buildObservation needs to assemble z, h, H and R.
type observationInputs struct {
	qPrior        quaternion.Quaternion
	accel         [3]float64
	omegaNorm     float64
	magFresh      bool
	mag           [3]float64
	inStartup     bool
	cfg           Config
	stats         *magStats
}

// buildObservation computes the observation vector z, the predicted
// observation h(x_prior), the observation Jacobian H, and the adaptive
// observation noise covariance R for an accel correction step (with the
// mag block populated only if in.magFresh is true). The returned dip angle
// is the raw dip of the current mag reading, for bookkeeping by the caller;
// it is meaningless when magFresh is false.
func buildObservation(in observationInputs) (z, h, H, R *matrix.DenseMatrix, dip float64) {
	q := in.qPrior
	g := Gravity

	rz0, rz1, rz2 := dcmThirdColumn(q.W, q.X, q.Y, q.Z)

	ax, ay, az := in.accel[0], in.accel[1], in.accel[2]
	aNorm := math.Sqrt(ax*ax + ay*ay + az*az)

	zv := [6]float64{ax, ay, az, 0, 0, 0}
	hv := [6]float64{rz0 * g, rz1 * g, rz2 * g, 0, 0, 0}

	H = matrix.MakeDenseMatrix([]float64{
		-2 * g * q.Y, +2 * g * q.Z, -2 * g * q.W, +2 * g * q.X,
		+2 * g * q.X, +2 * g * q.W, +2 * g * q.Z, +2 * g * q.Y,
		+2 * g * q.W, -2 * g * q.X, -2 * g * q.Y, +2 * g * q.Z,
		0, 0, 0, 0,
		0, 0, 0, 0,
		0, 0, 0, 0,
	}, 6, 4)

	rG := in.cfg.RGK0 + in.cfg.RGKw*in.omegaNorm + in.cfg.RGKg*math.Abs(g-aNorm)
	rY := 1.0

	if in.magFresh {
		horizontal, d := projectHorizontal(in.mag, [3]float64{rz0, rz1, rz2})
		dip = d

		meanNorm, meanDip := in.stats.update(math.Sqrt(
			in.mag[0]*in.mag[0]+in.mag[1]*in.mag[1]+in.mag[2]*in.mag[2]), dip)

		mNorm := math.Sqrt(in.mag[0]*in.mag[0] + in.mag[1]*in.mag[1] + in.mag[2]*in.mag[2])

		zv[3], zv[4], zv[5] = horizontal[0], horizontal[1], horizontal[2]
		hv[3] = 2 * (q.X*q.Y + q.W*q.Z)
		hv[4] = q.W*q.W - q.X*q.X + q.Y*q.Y - q.Z*q.Z
		hv[5] = 2 * (q.Y*q.Z - q.W*q.X)

		H.Set(3, 0, +2*q.Z)
		H.Set(3, 1, +2*q.Y)
		H.Set(3, 2, +2*q.X)
		H.Set(3, 3, +2*q.W)
		H.Set(4, 0, +2*q.W)
		H.Set(4, 1, -2*q.X)
		H.Set(4, 2, +2*q.Y)
		H.Set(4, 3, -2*q.Z)
		H.Set(5, 0, -2*q.X)
		H.Set(5, 1, -2*q.W)
		H.Set(5, 2, +2*q.Z)
		H.Set(5, 3, +2*q.Y)

		rY = in.cfg.RYK0 + in.cfg.RYKw*in.omegaNorm + in.cfg.RYKg*math.Abs(g-aNorm) +
			in.cfg.RYKn*math.Abs(mNorm-meanNorm) + in.cfg.RYKd*math.Abs(dip-meanDip)
	}

	z = matrix.MakeDenseMatrix(zv[:], 6, 1)
	h = matrix.MakeDenseMatrix(hv[:], 6, 1)

	if in.inStartup {
		rG = in.cfg.RGStartup
		rY = in.cfg.RYStartup
	}
	R = matrix.Diagonal([]float64{rG, rG, rG, rY, rY, rY})

	return z, h, H, R, dip
}
