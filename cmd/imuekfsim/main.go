// Command imuekfsim runs the orientation filter against a synthetic
// sensor stream and prints rotation-changed events as they arrive.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/flyingkit/imuekf/ahrs"
	"github.com/flyingkit/imuekf/quaternion"
	"github.com/flyingkit/imuekf/sensors/sim"
)

func scenarioByName(name string) (sim.Scenario, error) {
	switch strings.ToLower(name) {
	case "static-level", "static":
		return sim.StaticLevel(), nil
	case "pure-yaw", "yaw":
		return sim.PureYaw(), nil
	case "tilt-recovery", "tilt":
		return sim.TiltRecovery(), nil
	case "mag-rejection", "mag":
		return sim.MagRejection(), nil
	default:
		return sim.Scenario{}, fmt.Errorf("no such scenario: %s", name)
	}
}

func main() {
	var (
		scenarioName            string
		gyroNoise, accelNoise   float64
		magNoise                float64
		seed                    int64
	)

	flag.StringVar(&scenarioName, "scenario", "static-level", "scenario to run: static-level, pure-yaw, tilt-recovery, mag-rejection")
	flag.Float64Var(&gyroNoise, "gyro-noise", 0, "gyro noise stdev, deg/s")
	flag.Float64Var(&accelNoise, "accel-noise", 0, "accel noise stdev, m/s^2")
	flag.Float64Var(&magNoise, "mag-noise", 0, "magnetometer noise stdev, T")
	flag.Int64Var(&seed, "seed", 1, "noise RNG seed")
	flag.Parse()

	sc, err := scenarioByName(scenarioName)
	if err != nil {
		log.Fatalln(err)
	}
	sc.GyroNoise, sc.AccelNoise, sc.MagNoise = gyroNoise, accelNoise, magNoise

	gyro := sim.NewGenerator("gyro0", sc, seed)
	accel := sim.NewGenerator("accel0", sc, seed+1)
	defer gyro.Close()
	defer accel.Close()

	e := ahrs.New(ahrs.DefaultConfig())
	e.SetGyroID(gyro.ID())
	e.SetAccelID(accel.ID())

	events := make(chan ahrs.RotationEvent, 16)
	e.Subscribe(events)
	defer e.Unsubscribe(events)

	go func() {
		for ev := range events {
			roll, pitch, yaw := quaternion.ToEuler(e.Quaternion())
			fmt.Printf("rotation: axis=(%.3f,%.3f,%.3f) angle=%.2f roll=%.2f pitch=%.2f yaw=%.2f\n",
				ev.Axis[0], ev.Axis[1], ev.Axis[2], ev.AngleDeg, roll, pitch, yaw)
		}
	}()

	gyroCh, accelCh := gyro.Samples(), accel.Samples()
	for gyroCh != nil || accelCh != nil {
		select {
		case s, ok := <-gyroCh:
			if !ok {
				gyroCh = nil
				continue
			}
			e.OnGyro(s.T.UnixNano(), s.GX, s.GY, s.GZ)
			if s.MagValid {
				e.SetMagID("mag0")
				e.OnMag(s.T.UnixNano(), s.MX, s.MY, s.MZ)
			}
		case s, ok := <-accelCh:
			if !ok {
				accelCh = nil
				continue
			}
			e.OnAccel(s.T.UnixNano(), s.AX, s.AY, s.AZ)
		}
	}
}
