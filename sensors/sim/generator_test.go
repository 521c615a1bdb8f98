package sim

import (
	"testing"
	"time"
)

func drain(t *testing.T, g *Generator, want int) []float64 {
	t.Helper()
	var gz []float64
	timeout := time.After(5 * time.Second)
	for len(gz) < want {
		select {
		case s, ok := <-g.Samples():
			if !ok {
				return gz
			}
			gz = append(gz, s.GZ)
		case <-timeout:
			t.Fatalf("timed out after %d samples, wanted %d", len(gz), want)
		}
	}
	return gz
}

func TestPureYawGeneratorRampsRateAtOneSecond(t *testing.T) {
	g := NewGenerator("gyro0", PureYaw(), 1)
	defer g.Close()
	gz := drain(t, g, 150)
	if gz[10] != 0 {
		t.Fatalf("expected zero rate during settling window, got %v", gz[10])
	}
	if gz[len(gz)-1] != 90 {
		t.Fatalf("expected 90deg/s rate during yaw window, got %v", gz[len(gz)-1])
	}
}

func TestMagRejectionGeneratorCarriesAValidMagReading(t *testing.T) {
	g := NewGenerator("mag0", MagRejection(), 2)
	defer g.Close()
	s := <-g.Samples()
	if !s.MagValid {
		t.Fatalf("expected a valid mag reading from the mag-rejection scenario")
	}
	if s.MX == 0 {
		t.Fatalf("expected a nonzero horizontal mag component")
	}
}
