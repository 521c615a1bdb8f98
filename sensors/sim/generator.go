// Package sim generates synthetic gyro/accel/magnetometer streams by
// piecewise-linear interpolation between named waypoints, for exercising
// an Estimator without hardware. The waypoint shape is adapted from the
// goflying flight-scenario simulator, trimmed to the rate/specific-force
// signals an orientation filter actually consumes.
package sim

import (
	"math/rand"
	"sort"
	"time"

	"github.com/flyingkit/imuekf/sensors"
)

// Waypoint is one breakpoint of a piecewise-linear scenario: t is seconds
// since scenario start, Omega is body-frame angular rate in deg/s, and
// Accel is specific force in m/s^2.
type Waypoint struct {
	T     float64
	Omega [3]float64
	Accel [3]float64
	Mag   [3]float64
	HasMag bool
}

// Scenario is a named, ordered list of waypoints plus the hertz to sample
// them at. Waypoints must be sorted by T and cover [0, last T].
type Scenario struct {
	Name   string
	Rate   float64 // Hz
	Points []Waypoint

	GyroNoise, AccelNoise, MagNoise float64 // stdev, added per-axis if nonzero
}

// Generator streams a Scenario's samples on a channel, standing in for a
// real sensors.Provider during simulation and testing.
type Generator struct {
	id    string
	sc    Scenario
	out   chan sensors.Sample
	done  chan struct{}
	rng   *rand.Rand
	noise func(stdev float64) float64
}

// NewGenerator starts streaming sc's waypoints at sc.Rate Hz. Noise, if
// any of the scenario's *Noise fields is nonzero, is drawn from seed so
// that a test run is reproducible.
func NewGenerator(id string, sc Scenario, seed int64) *Generator {
	g := &Generator{
		id:   id,
		sc:   sc,
		out:  make(chan sensors.Sample, 16),
		done: make(chan struct{}),
		rng:  rand.New(rand.NewSource(seed)),
	}
	g.noise = func(stdev float64) float64 {
		if stdev == 0 {
			return 0
		}
		return g.rng.NormFloat64() * stdev
	}
	go g.run()
	return g
}

func (g *Generator) ID() string                    { return g.id }
func (g *Generator) Samples() <-chan sensors.Sample { return g.out }

func (g *Generator) Close() error {
	close(g.done)
	return nil
}

func (g *Generator) run() {
	defer close(g.out)
	if len(g.sc.Points) < 2 {
		return
	}
	last := g.sc.Points[len(g.sc.Points)-1].T
	period := time.Duration(float64(time.Second) / g.sc.Rate)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	breaks := make([]float64, len(g.sc.Points))
	for i, p := range g.sc.Points {
		breaks[i] = p.T
	}

	for t := 0.0; t <= last; t += 1 / g.sc.Rate {
		select {
		case <-g.done:
			return
		case <-ticker.C:
		}
		wp := g.interpolate(t, breaks)
		select {
		case g.out <- wp:
		case <-g.done:
			return
		}
	}
}

func (g *Generator) interpolate(t float64, breaks []float64) sensors.Sample {
	ix := 0
	if t > breaks[0] {
		ix = sort.SearchFloat64s(breaks, t) - 1
		if ix < 0 {
			ix = 0
		}
		if ix > len(breaks)-2 {
			ix = len(breaks) - 2
		}
	}
	p0, p1 := g.sc.Points[ix], g.sc.Points[ix+1]
	dt := p1.T - p0.T
	f := 0.0
	if dt > 0 {
		f = (t - p0.T) / dt
	}
	lerp := func(a, b float64) float64 { return a + f*(b-a) }

	s := sensors.Sample{
		T:  time.Unix(0, int64(t*1e9)),
		GX: lerp(p0.Omega[0], p1.Omega[0]) + g.noise(g.sc.GyroNoise),
		GY: lerp(p0.Omega[1], p1.Omega[1]) + g.noise(g.sc.GyroNoise),
		GZ: lerp(p0.Omega[2], p1.Omega[2]) + g.noise(g.sc.GyroNoise),
		AX: lerp(p0.Accel[0], p1.Accel[0]) + g.noise(g.sc.AccelNoise),
		AY: lerp(p0.Accel[1], p1.Accel[1]) + g.noise(g.sc.AccelNoise),
		AZ: lerp(p0.Accel[2], p1.Accel[2]) + g.noise(g.sc.AccelNoise),
	}
	if p0.HasMag && p1.HasMag {
		s.MagValid = true
		s.MX = lerp(p0.Mag[0], p1.Mag[0]) + g.noise(g.sc.MagNoise)
		s.MY = lerp(p0.Mag[1], p1.Mag[1]) + g.noise(g.sc.MagNoise)
		s.MZ = lerp(p0.Mag[2], p1.Mag[2]) + g.noise(g.sc.MagNoise)
	}
	return s
}

const gravity = 9.81

// StaticLevel reproduces the "device sitting flat, no rotation" scenario:
// zero rate, gravity straight down, 2s at 100Hz.
func StaticLevel() Scenario {
	return Scenario{
		Name: "static-level",
		Rate: 100,
		Points: []Waypoint{
			{T: 0, Accel: [3]float64{0, 0, gravity}},
			{T: 2, Accel: [3]float64{0, 0, gravity}},
		},
	}
}

// PureYaw reproduces a 1s settling period followed by 1s of 90deg/s yaw.
func PureYaw() Scenario {
	return Scenario{
		Name: "pure-yaw",
		Rate: 100,
		Points: []Waypoint{
			{T: 0, Accel: [3]float64{0, 0, gravity}},
			{T: 1, Accel: [3]float64{0, 0, gravity}},
			{T: 1, Omega: [3]float64{0, 0, 90}, Accel: [3]float64{0, 0, gravity}},
			{T: 2, Omega: [3]float64{0, 0, 90}, Accel: [3]float64{0, 0, gravity}},
		},
	}
}

// TiltRecovery starts at identity and holds a 90-degree tilt about the
// body y-axis, reported through accel alone (no mag).
func TiltRecovery() Scenario {
	return Scenario{
		Name: "tilt-recovery",
		Rate: 100,
		Points: []Waypoint{
			{T: 0, Accel: [3]float64{gravity, 0, 0}},
			{T: 2, Accel: [3]float64{gravity, 0, 0}},
		},
	}
}

// MagRejection holds level accel with a horizontal magnetometer field
// pointing along the body x-axis, matching the mag-conditioner scenario.
func MagRejection() Scenario {
	return Scenario{
		Name: "mag-rejection",
		Rate: 100,
		Points: []Waypoint{
			{T: 0, Accel: [3]float64{0, 0, gravity}, Mag: [3]float64{1e-6, 0, 0}, HasMag: true},
			{T: 2, Accel: [3]float64{0, 0, gravity}, Mag: [3]float64{1e-6, 0, 0}, HasMag: true},
		},
	}
}
