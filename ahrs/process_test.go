package ahrs

import (
	"math"
	"testing"

	"github.com/flyingkit/imuekf/quaternion"
)

func TestBuildProcessZeroRateIsIdentityPreserving(t *testing.T) {
	f, F, Qk := buildProcess(quaternion.Identity, [3]float64{}, 0.01, 1e-4)

	if math.Abs(f.Get(0, 0)-1) > 1e-12 || f.Get(1, 0) != 0 || f.Get(2, 0) != 0 || f.Get(3, 0) != 0 {
		t.Fatalf("expected f to stay at identity with zero angular velocity, got %v,%v,%v,%v",
			f.Get(0, 0), f.Get(1, 0), f.Get(2, 0), f.Get(3, 0))
	}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			if F.Get(i, j) != want {
				t.Fatalf("F[%d][%d] = %v, want %v at zero rate", i, j, F.Get(i, j), want)
			}
		}
	}
	for i := 0; i < 4; i++ {
		if Qk.Get(i, i) != 1e-4*0.01 {
			t.Fatalf("Qk[%d][%d] = %v, want %v", i, i, Qk.Get(i, i), 1e-4*0.01)
		}
	}
}

func TestBuildProcessNormalizesF(t *testing.T) {
	f, _, _ := buildProcess(quaternion.Identity, [3]float64{1, 0.5, -0.3}, 0.05, 1e-4)
	n := math.Sqrt(f.Get(0, 0)*f.Get(0, 0) + f.Get(1, 0)*f.Get(1, 0) + f.Get(2, 0)*f.Get(2, 0) + f.Get(3, 0)*f.Get(3, 0))
	if math.Abs(n-1) > 1e-9 {
		t.Fatalf("expected unit-norm process vector, got norm %v", n)
	}
}

func TestBuildProcessYawIntegratesAboutZ(t *testing.T) {
	dt := 0.01
	omega := [3]float64{0, 0, math.Pi / 2} // 90 deg/s in rad/s
	q := quaternion.Identity
	for i := 0; i < 100; i++ { // 1 second total
		f, _, _ := buildProcess(q, omega, dt, 1e-4)
		q = quaternion.Quaternion{W: f.Get(0, 0), X: f.Get(1, 0), Y: f.Get(2, 0), Z: f.Get(3, 0)}
	}
	_, angle := quaternion.ToAxisAngle(q)
	if math.Abs(angle-90) > 1.0 {
		t.Fatalf("expected about 90 degrees of yaw after 1s at 90deg/s, got %v", angle)
	}
}
