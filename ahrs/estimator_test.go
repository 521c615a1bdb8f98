package ahrs

import (
	"math"
	"testing"
)

func newTestEstimator() *Estimator {
	e := New(DefaultConfig())
	e.SetGyroID("gyro0")
	e.SetAccelID("accel0")
	return e
}

func TestNoGyroNeverPublishes(t *testing.T) {
	e := New(DefaultConfig())
	e.SetAccelID("accel0")
	e.OnAccel(0, 0, 0, Gravity)
	e.OnAccel(1e7, 0, 0, Gravity)

	x, y, z := e.RotationAxis()
	if x != 0 || y != 0 || z != 0 || e.RotationAngle() != 0 {
		t.Fatalf("expected no rotation output without a gyroscope, got axis=(%v,%v,%v) angle=%v", x, y, z, e.RotationAngle())
	}
}

func TestFirstGyroSampleDoesNotPredict(t *testing.T) {
	e := newTestEstimator()
	qBefore := e.postQuaternion()
	e.OnGyro(0, 10, 10, 10)
	qAfter := e.postQuaternion()
	if qBefore != qAfter {
		t.Fatalf("expected first gyro sample to be a no-op for state, got %+v -> %+v", qBefore, qAfter)
	}
}

func TestZeroDeltaTGyroSampleIsNoOp(t *testing.T) {
	e := newTestEstimator()
	e.OnGyro(0, 1, 2, 3)
	e.OnGyro(1e6, 1, 2, 3)
	qBefore := e.postQuaternion()
	e.OnGyro(1e6, 1, 2, 3) // identical timestamp => dt == 0
	qAfter := e.postQuaternion()
	if qBefore != qAfter {
		t.Fatalf("expected zero-delta gyro sample to leave state unchanged, got %+v -> %+v", qBefore, qAfter)
	}
}

func TestStartupSuppressesPublishUntilElapsed(t *testing.T) {
	e := newTestEstimator()
	dtNs := int64(1e7) // 10ms steps
	var lastAxis [3]float64
	var lastAngle float64
	sawNonZeroDuringStartup := false

	for i := int64(0); i < 90; i++ { // 0.9s, still inside 1s startup
		t := i * dtNs
		e.OnGyro(t, 0, 0, 0)
		e.OnAccel(t, 0, 0, Gravity)
		x, y, z := e.RotationAxis()
		a := e.RotationAngle()
		if x != 0 || y != 0 || z != 0 || a != 0 {
			sawNonZeroDuringStartup = true
		}
		lastAxis = [3]float64{x, y, z}
		lastAngle = a
	}
	if sawNonZeroDuringStartup {
		t.Fatalf("expected no rotation output during startup window")
	}
	_ = lastAxis
	_ = lastAngle

	for i := int64(90); i < 120; i++ { // push past the 1s startup boundary
		tns := i * dtNs
		e.OnGyro(tns, 0, 0, 0)
		e.OnAccel(tns, 0, 0, Gravity)
	}
	if e.startupRemaining > 0 {
		t.Fatalf("expected startup to have elapsed by 1.2s of gyro steps")
	}
}

func TestStaticLevelConvergesToZeroRotation(t *testing.T) {
	e := newTestEstimator()
	dtNs := int64(1e7) // 100 Hz
	for i := int64(0); i < 200; i++ { // 2s
		tns := i * dtNs
		e.OnGyro(tns, 0, 0, 0)
		e.OnAccel(tns, 0, 0, Gravity)
	}
	angle := e.RotationAngle()
	if angle > 0.5 {
		t.Fatalf("expected rotation angle near 0 for a static level device, got %v", angle)
	}
}

func TestPureYawIntegratesToNinety(t *testing.T) {
	e := newTestEstimator()
	dtNs := int64(1e7)
	// One second of startup settling with zero rate, as the scenario calls for.
	for i := int64(0); i < 100; i++ {
		tns := i * dtNs
		e.OnGyro(tns, 0, 0, 0)
		e.OnAccel(tns, 0, 0, Gravity)
	}
	// One second of pure yaw at 90 deg/s.
	base := int64(100) * dtNs
	for i := int64(1); i <= 100; i++ {
		tns := base + i*dtNs
		e.OnGyro(tns, 0, 0, 90)
		e.OnAccel(tns, 0, 0, Gravity)
	}
	angle := e.RotationAngle()
	if math.Abs(angle-90) > 5 {
		t.Fatalf("expected roughly 90 degrees of yaw, got %v", angle)
	}
	_, _, z := e.RotationAxis()
	if z == 0 {
		t.Fatalf("expected a nonzero z-axis component for a pure yaw rotation")
	}
}

func TestTiltRecoveryConvergesTowardMeasuredGravity(t *testing.T) {
	e := newTestEstimator()
	dtNs := int64(1e7)
	for i := int64(0); i < 300; i++ { // past startup, then 2s settling
		tns := i * dtNs
		e.OnGyro(tns, 0, 0, 0)
		e.OnAccel(tns, Gravity, 0, 0)
	}
	q := e.postQuaternion()
	// quaternion ~ (sqrt2/2, 0, sqrt2/2, 0) within the scenario's tolerance.
	want := math.Sqrt2 / 2
	if math.Abs(math.Abs(q.W)-want) > 0.05 || math.Abs(math.Abs(q.Y)-want) > 0.05 {
		t.Fatalf("expected quaternion near (%.3f,0,%.3f,0), got %+v", want, want, q)
	}
}

func TestSilentAccelStillUpdatesFromGyroAlone(t *testing.T) {
	e := newTestEstimator()
	dtNs := int64(1e7)
	for i := int64(0); i < 100; i++ { // clear startup
		tns := i * dtNs
		e.OnGyro(tns, 0, 0, 0)
		e.OnAccel(tns, 0, 0, Gravity)
	}
	base := int64(100) * dtNs
	for i := int64(1); i <= 1001; i++ { // gyro-only publishes, no accel at all
		tns := base + i*dtNs
		e.OnGyro(tns, 0, 0, 36) // 36deg/s so rotation keeps moving
	}
	if e.accelSilent <= e.cfg.SilentCycleWarnThreshold {
		t.Fatalf("expected accel silent-cycle counter to exceed warning threshold, got %d", e.accelSilent)
	}
	if e.RotationAngle() == 0 {
		t.Fatalf("expected rotation to keep updating from gyro alone while accel is silent")
	}
}

func TestMagFreshClearedByExactlyOneCorrection(t *testing.T) {
	e := newTestEstimator()
	e.SetMagID("mag0")
	dtNs := int64(1e7)
	for i := int64(0); i < 100; i++ {
		tns := i * dtNs
		e.OnGyro(tns, 0, 0, 0)
		e.OnAccel(tns, 0, 0, Gravity)
	}
	e.OnMag(int64(101)*dtNs, 1e-6, 0, 0)
	if !e.magFresh {
		t.Fatalf("expected mag-fresh to be set after a mag sample")
	}
	e.OnAccel(int64(102)*dtNs, 0, 0, Gravity)
	if e.magFresh {
		t.Fatalf("expected mag-fresh to be cleared by the next correction")
	}
}

func TestPosteriorStaysUnitNorm(t *testing.T) {
	e := newTestEstimator()
	dtNs := int64(1e7)
	for i := int64(0); i < 250; i++ {
		tns := i * dtNs
		e.OnGyro(tns, 1, -2, 3)
		e.OnAccel(tns, 0.1, -0.2, Gravity)
		n := e.postQuaternion().Norm()
		if math.Abs(n-1) > 1e-6 {
			t.Fatalf("posterior quaternion left unit norm at step %d: %v", i, n)
		}
	}
}
