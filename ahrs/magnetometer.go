package ahrs

import "math"

// magStats tracks the exponentially smoothed means of the magnetic field
// magnitude and dip angle used to build the adaptive mag-block observation
// noise. Both means are sentinel-primed: a mean still at its sentinel value
// is set outright from the first observation instead of being blended into;
// later observations are blended with the fixed smoothing coefficient alpha.
type magStats struct {
	alpha     float64
	meanNorm  float64
	meanDip   float64
}

const magStatsSentinel = -1

func newMagStats(alpha float64) *magStats {
	return &magStats{alpha: alpha, meanNorm: magStatsSentinel, meanDip: magStatsSentinel}
}

// update blends in a new (magnitude, dip angle) observation and returns the
// post-update means, which are what the observation model's adaptive noise
// terms compare the new observation against. The first observation primes
// both means outright rather than blending into the sentinel, so it always
// returns its own (norm, dip) unchanged.
func (s *magStats) update(norm, dip float64) (meanNorm, meanDip float64) {
	if s.meanNorm < 0 {
		s.meanNorm = norm
	} else {
		s.meanNorm = s.alpha*s.meanNorm + (1-s.alpha)*norm
	}
	if s.meanDip < 0 {
		s.meanDip = dip
	} else {
		s.meanDip = s.alpha*s.meanDip + (1-s.alpha)*dip
	}
	return s.meanNorm, s.meanDip
}

// projectHorizontal rejects the component of the magnetic field reading
// along the current estimated gravity (body-frame +z, given as rz, the
// third column of the body-to-world DCM) and returns the normalized
// horizontal remainder along with the raw dip angle (angle between the
// field and the gravity direction) of the un-rejected reading.
func projectHorizontal(mag, rz [3]float64) (horizontal [3]float64, dip float64) {
	mNorm := math.Sqrt(mag[0]*mag[0] + mag[1]*mag[1] + mag[2]*mag[2])
	d := mag[0]*rz[0] + mag[1]*rz[1] + mag[2]*rz[2]

	dip = math.Acos(d / mNorm)
	if math.IsNaN(dip) {
		dip = 0
	}

	h := [3]float64{mag[0] - d*rz[0], mag[1] - d*rz[1], mag[2] - d*rz[2]}
	hNorm := math.Sqrt(h[0]*h[0] + h[1]*h[1] + h[2]*h[2])
	if hNorm > epsilon {
		h[0] /= hNorm
		h[1] /= hNorm
		h[2] /= hNorm
	}
	return h, dip
}
