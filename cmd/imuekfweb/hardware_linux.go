//go:build linux
// +build linux

package main

import (
	"github.com/flyingkit/imuekf/sensors"
	"github.com/flyingkit/imuekf/sensors/embd"
)

// newHardwareProviders opens a real MPU-9250-family chip over I2C. Only
// built on linux, where sensors/embd's host-detection hooks apply.
func newHardwareProviders(i2cBus byte, rate float64) (gyro, accel sensors.Provider, err error) {
	p, err := embd.New("imu0", i2cBus, rate)
	if err != nil {
		return nil, nil, err
	}
	return p, p, nil
}
