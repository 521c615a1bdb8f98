// Package sensors defines the collaborator interface an Estimator driver
// uses to read gyroscope, accelerometer and magnetometer samples, without
// caring whether they came from real hardware or a synthetic generator.
package sensors

import "time"

// Sample is one instantaneous reading from all three IMU axes groups.
// Gyro is in degrees/s, Accel in m/s^2, Mag in Tesla. MagValid is false
// for hardware or scenarios that don't carry a magnetometer.
type Sample struct {
	T time.Time

	GX, GY, GZ float64
	AX, AY, AZ float64
	MX, MY, MZ float64

	MagValid bool
	Err      error
}

// Provider streams Samples until Close is called (or, for a finite source,
// until it runs out of samples), then closes the Samples channel.
type Provider interface {
	// ID identifies the stream for health-tracking purposes ("" means
	// the stream is considered unopened).
	ID() string
	// Samples returns the channel new readings are delivered on.
	Samples() <-chan Sample
	Close() error
}
