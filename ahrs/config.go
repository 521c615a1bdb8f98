package ahrs

// Config holds the tunable numeric parameters of the filter. The zero value
// is not useful; use DefaultConfig for the values the estimator ships with.
type Config struct {
	// StartupSeconds is the duration, in seconds of accumulated gyro Δt,
	// during which observation noise is held at the elevated startup
	// constants and no rotation is published.
	StartupSeconds float64

	// RGStartup and RYStartup are the accel-block and mag-block observation
	// noise variances used while the filter is in its startup window.
	RGStartup float64
	RYStartup float64

	// Accel-block adaptive observation noise: R_g = RGK0 + RGKw*|ω| + RGKg*|g-|a||.
	RGK0 float64
	RGKw float64
	RGKg float64

	// Mag-block adaptive observation noise: R_y = RYK0 + RYKw*|ω| + RYKg*|g-|a||
	// + RYKn*|mag magnitude anomaly| + RYKd*|dip angle anomaly|.
	RYK0 float64
	RYKw float64
	RYKg float64
	RYKn float64
	RYKd float64

	// MMeanAlpha is the smoothing coefficient for the running means of
	// magnetic field magnitude and dip angle.
	MMeanAlpha float64

	// QDiag is the diagonal value of the process-noise base matrix Q,
	// before scaling by the gyro Δt of the current step.
	QDiag float64

	// SilentCycleWarnThreshold is the number of publishes a stream may go
	// without a sample before a staleness warning is logged.
	SilentCycleWarnThreshold int
}

// Gravity is the assumed local gravitational acceleration, m/s^2.
const Gravity = 9.81

// DefaultConfig returns the filter's default tuning, matching the
// originally specified constants.
func DefaultConfig() Config {
	return Config{
		StartupSeconds: 1.0,
		RGStartup:      1e-1,
		RYStartup:      1e-3,
		RGK0:           1.0,
		RGKw:           7.5,
		RGKg:           10.0,
		RYK0:           10.0,
		RYKw:           7.5,
		RYKg:           10.0,
		RYKn:           20.0,
		RYKd:           15.0,
		MMeanAlpha:     0.99,
		QDiag:          1e-4,

		SilentCycleWarnThreshold: 1000,
	}
}
