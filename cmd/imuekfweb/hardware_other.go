//go:build !linux
// +build !linux

package main

import (
	"fmt"

	"github.com/flyingkit/imuekf/sensors"
)

// newHardwareProviders reports an error: sensors/embd's I2C access only
// builds on linux.
func newHardwareProviders(i2cBus byte, rate float64) (gyro, accel sensors.Provider, err error) {
	return nil, nil, fmt.Errorf("imuekfweb: -hardware is only supported on linux")
}
