package ahrs

import "math"

const epsilon = 2.220446049250313e-16 // float64 machine epsilon

// dcmThirdColumn returns the third column (R_z0, R_z1, R_z2) of the
// body-to-world direction cosine matrix for the Hamilton quaternion
// (q0,q1,q2,q3), i.e. the body-frame image of the world +z (gravity) axis.
func dcmThirdColumn(q0, q1, q2, q3 float64) (rz0, rz1, rz2 float64) {
	rz0 = 2 * (q1*q3 - q0*q2)
	rz1 = 2 * (q2*q3 + q0*q1)
	rz2 = q0*q0 - q1*q1 - q2*q2 + q3*q3
	return
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180 }
