package quaternion

import "math"

// ToEuler converts q to roll/pitch/yaw Tait-Bryan angles, in degrees,
// using the standard aerospace (Z-Y-X, body-to-world) rotation order.
// It exists for display purposes only; the filter's own state and
// corrections stay entirely in quaternion form.
func ToEuler(q Quaternion) (rollDeg, pitchDeg, yawDeg float64) {
	q0, q1, q2, q3 := q.W, q.X, q.Y, q.Z

	roll := math.Atan2(2*(q0*q1+q2*q3), 1-2*(q1*q1+q2*q2))

	sinPitch := 2 * (q0*q2 - q3*q1)
	var pitch float64
	if math.Abs(sinPitch) >= 1 {
		pitch = math.Copysign(math.Pi/2, sinPitch)
	} else {
		pitch = math.Asin(sinPitch)
	}

	yaw := math.Atan2(2*(q0*q3+q1*q2), 1-2*(q2*q2+q3*q3))

	const rad2deg = 180 / math.Pi
	return roll * rad2deg, pitch * rad2deg, yaw * rad2deg
}
