//go:build linux
// +build linux

// Package embd implements sensors.Provider against real MPU-9250-family
// hardware over I2C using github.com/kidoman/embd, reading gyro, accel
// and magnetometer registers directly instead of going through an
// on-device DMP.
package embd

import (
	"fmt"
	"log"
	"time"

	"github.com/kidoman/embd"
	_ "github.com/kidoman/embd/host/all" // registers the board-detection hooks embd.NewI2CBus needs
	_ "github.com/kidoman/embd/host/rpi"

	"github.com/flyingkit/imuekf/sensors"
)

const (
	mpuAddress = 0x68
	akAddress  = 0x0c

	regPwrMgmt1  = 0x6B
	regGyroXOutH = 0x43
	regAccelXOutH = 0x3B

	regAkST1  = 0x02
	regAkHXL  = 0x03
	regAkCNTL = 0x0A

	gyroFullScaleDPS  = 250.0  // full-scale range, ±250 deg/s
	accelFullScaleG   = 2.0    // full-scale range, ±2g
	gyroLSBPerDPS     = 32768.0 / gyroFullScaleDPS
	accelLSBPerG      = 32768.0 / accelFullScaleG
	magMicroTPerLSB   = 4912.0 / 32760.0 // AK8963 16-bit output, ±4912uT range
	standardGravity   = 9.80665
)

// Provider streams samples off an MPU-9250-family chip at rate Hz until
// Close is called.
type Provider struct {
	id   string
	bus  embd.I2CBus
	out  chan sensors.Sample
	done chan struct{}
}

// New opens the I2C bus, wakes the chip out of sleep mode and begins
// streaming at the given rate. id is used only for health-tracking.
func New(id string, busNum byte, rate float64) (*Provider, error) {
	bus := embd.NewI2CBus(busNum)

	if err := bus.WriteByteToReg(mpuAddress, regPwrMgmt1, 0x00); err != nil {
		return nil, fmt.Errorf("embd: couldn't wake MPU9250: %w", err)
	}
	time.Sleep(50 * time.Millisecond)

	if err := bus.WriteByteToReg(akAddress, regAkCNTL, 0x16); err != nil {
		log.Printf("embd: couldn't set AK8963 continuous mode, magnetometer will read stale: %v", err)
	}

	p := &Provider{
		id:   id,
		bus:  bus,
		out:  make(chan sensors.Sample, 16),
		done: make(chan struct{}),
	}
	go p.run(rate)
	return p, nil
}

func (p *Provider) ID() string                    { return p.id }
func (p *Provider) Samples() <-chan sensors.Sample { return p.out }

func (p *Provider) Close() error {
	close(p.done)
	return nil
}

func (p *Provider) run(rate float64) {
	defer close(p.out)
	ticker := time.NewTicker(time.Duration(float64(time.Second) / rate))
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
		}
		s, err := p.readSample()
		select {
		case p.out <- s:
		case <-p.done:
			return
		}
		if err != nil {
			log.Printf("embd: %v", err)
		}
	}
}

func (p *Provider) readWord(reg byte) (int16, error) {
	v, err := p.bus.ReadWordFromReg(mpuAddress, reg)
	return int16(v), err
}

func (p *Provider) readSample() (sensors.Sample, error) {
	s := sensors.Sample{T: time.Now()}

	gx, err := p.readWord(regGyroXOutH)
	if err != nil {
		return s, fmt.Errorf("reading gyro X: %w", err)
	}
	gy, err := p.readWord(regGyroXOutH + 2)
	if err != nil {
		return s, fmt.Errorf("reading gyro Y: %w", err)
	}
	gz, err := p.readWord(regGyroXOutH + 4)
	if err != nil {
		return s, fmt.Errorf("reading gyro Z: %w", err)
	}
	s.GX, s.GY, s.GZ = float64(gx)/gyroLSBPerDPS, float64(gy)/gyroLSBPerDPS, float64(gz)/gyroLSBPerDPS

	ax, err := p.readWord(regAccelXOutH)
	if err != nil {
		return s, fmt.Errorf("reading accel X: %w", err)
	}
	ay, err := p.readWord(regAccelXOutH + 2)
	if err != nil {
		return s, fmt.Errorf("reading accel Y: %w", err)
	}
	az, err := p.readWord(regAccelXOutH + 4)
	if err != nil {
		return s, fmt.Errorf("reading accel Z: %w", err)
	}
	s.AX = float64(ax) / accelLSBPerG * standardGravity
	s.AY = float64(ay) / accelLSBPerG * standardGravity
	s.AZ = float64(az) / accelLSBPerG * standardGravity

	st1, err := p.bus.ReadByteFromReg(akAddress, regAkST1)
	if err != nil || st1&0x01 == 0 {
		return s, nil // magnetometer data not ready, leave MagValid false
	}
	mx, errx := p.readWord(regAkHXL)
	my, erry := p.readWord(regAkHXL + 2)
	mz, errz := p.readWord(regAkHXL + 4)
	if errx != nil || erry != nil || errz != nil {
		return s, nil
	}
	s.MX = float64(mx) * magMicroTPerLSB * 1e-6
	s.MY = float64(my) * magMicroTPerLSB * 1e-6
	s.MZ = float64(mz) * magMicroTPerLSB * 1e-6
	s.MagValid = true
	return s, nil
}
