// Package ahrs fuses asynchronous gyroscope, accelerometer and (optional)
// magnetometer samples into a drift-corrected orientation, expressed as a
// unit quaternion and as an equivalent axis-angle rotation. It implements
// an extended Kalman filter over the 4-dimensional quaternion state, built
// on the generic linearized kernel in package ekf.
package ahrs

import (
	"log"
	"math"
	"sync"

	"github.com/flyingkit/imuekf/ekf"
	"github.com/flyingkit/imuekf/quaternion"
	"github.com/skelterjohn/go.matrix"
)

const stateDim = 4
const obsDim = 6

// Estimator is a single-threaded, cooperatively-scheduled orientation
// filter. Its On* methods are meant to be called as callbacks on the
// estimator's owning goroutine; they are not safe to call concurrently
// with each other (Subscribe/Unsubscribe are, via subscribersMu).
type Estimator struct {
	cfg    Config
	kernel *ekf.Kernel

	gyroID, accelID, magID string

	haveGyro, haveAccel, haveMag   bool
	lastGyroNs, lastAccelNs, lastMagNs int64

	gyroSilent, accelSilent, magSilent int
	warnedAccelAbsent, warnedMagAbsent bool

	startupRemaining float64

	omega     [3]float64
	omegaNorm float64

	accel [3]float64

	mag      [3]float64
	magFresh bool
	stats    *magStats

	priorHist, postHist quaternion.History

	rotAxis  [3]float64
	rotAngle float64

	subscribersMu sync.Mutex
	subscribers   []chan<- RotationEvent
}

// New creates an Estimator with the given configuration. The state starts
// at identity orientation with P_prior = P_post = diag(QDiag), matching the
// process-noise base Q.
func New(cfg Config) *Estimator {
	x0 := matrix.MakeDenseMatrix([]float64{1, 0, 0, 0}, stateDim, 1)
	p0 := matrix.Diagonal([]float64{cfg.QDiag, cfg.QDiag, cfg.QDiag, cfg.QDiag})

	e := &Estimator{
		cfg:              cfg,
		kernel:           ekf.New(stateDim, obsDim, x0, p0),
		startupRemaining: cfg.StartupSeconds,
		stats:            newMagStats(cfg.MMeanAlpha),
	}
	return e
}

// SetGyroID, SetAccelID and SetMagID record which sensor id is active for
// each stream. Opening/enumerating the underlying device is the job of an
// external sensor provider; the estimator only needs to know whether a
// stream is considered open ("" means none) for its health bookkeeping.
func (e *Estimator) SetGyroID(id string)  { e.gyroID = id }
func (e *Estimator) SetAccelID(id string) { e.accelID = id }
func (e *Estimator) SetMagID(id string)   { e.magID = id }

func (e *Estimator) postQuaternion() quaternion.Quaternion {
	x := e.kernel.XPost
	return quaternion.Quaternion{W: x.Get(0, 0), X: x.Get(1, 0), Y: x.Get(2, 0), Z: x.Get(3, 0)}
}

func (e *Estimator) priorQuaternion() quaternion.Quaternion {
	x := e.kernel.XPrior
	return quaternion.Quaternion{W: x.Get(0, 0), X: x.Get(1, 0), Y: x.Get(2, 0), Z: x.Get(3, 0)}
}

func (e *Estimator) setPrior(q quaternion.Quaternion) {
	e.kernel.XPrior = matrix.MakeDenseMatrix([]float64{q.W, q.X, q.Y, q.Z}, stateDim, 1)
}

func (e *Estimator) setPost(q quaternion.Quaternion) {
	e.kernel.XPost = matrix.MakeDenseMatrix([]float64{q.W, q.X, q.Y, q.Z}, stateDim, 1)
}

// OnGyro handles a gyroscope sample: angular velocity in degrees/s and its
// timestamp in nanoseconds. The first sample for a fresh gyro stream only
// primes the timestamp; a step requires two samples to compute Δt.
func (e *Estimator) OnGyro(tNs int64, wxDeg, wyDeg, wzDeg float64) {
	if e.haveGyro {
		dt := float64(tNs-e.lastGyroNs) / 1e9
		if dt > 0 {
			e.gyroSilent = 0

			if e.startupRemaining > 0 {
				e.startupRemaining -= dt
				if e.startupRemaining <= 0 {
					log.Println("ahrs: startup is over")
				}
			}

			e.omega = [3]float64{degToRad(wxDeg), degToRad(wyDeg), degToRad(wzDeg)}
			e.omegaNorm = vecNorm(e.omega)

			f, F, Qk := buildProcess(e.postQuaternion(), e.omega, dt, e.cfg.QDiag)
			e.kernel.Predict(f, F, Qk)

			qPrior := quaternion.Normalize(e.priorQuaternion())
			qPrior = e.priorHist.Align(qPrior)
			e.setPrior(qPrior)

			// A posteriori state reflects the prediction until a correction
			// step runs, so publishes between accel samples still integrate.
			e.setPost(qPrior)

			e.publish()
		}
	}
	e.haveGyro = true
	e.lastGyroNs = tNs
}

// OnAccel handles an accelerometer sample in m/s^2 at timestamp tNs (ns).
func (e *Estimator) OnAccel(tNs int64, ax, ay, az float64) {
	if e.haveAccel {
		dt := float64(tNs-e.lastAccelNs) / 1e9
		if dt > 0 {
			e.accelSilent = 0
			e.accel = [3]float64{ax, ay, az}

			z, h, H, R, dip := buildObservation(observationInputs{
				qPrior:    quaternion.Normalize(e.priorQuaternion()),
				accel:     e.accel,
				omegaNorm: e.omegaNorm,
				magFresh:  e.magFresh,
				mag:       e.mag,
				inStartup: e.startupRemaining > 0,
				cfg:       e.cfg,
				stats:     e.stats,
			})
			_ = dip

			if err := e.kernel.Correct(z, h, H, R); err != nil {
				log.Printf("ahrs: correction skipped: %v", err)
			} else {
				qPost := quaternion.Normalize(e.postQuaternion())
				qPost = e.postHist.Align(qPost)
				e.setPost(qPost)
			}

			e.magFresh = false
			e.publish()
		}
	}
	e.haveAccel = true
	e.lastAccelNs = tNs
}

// OnMag handles a magnetometer sample in Tesla at timestamp tNs (ns). It
// never drives an EKF step directly; it only stashes the latest reading
// for the next accel-driven correction. Unlike gyro and accel, mag samples
// are not gated on Δt: mag never integrates, so a duplicate or out-of-order
// timestamp is harmless and simply overwrites the stashed reading.
func (e *Estimator) OnMag(tNs int64, mxT, myT, mzT float64) {
	e.magSilent = 0
	e.mag = [3]float64{mxT * 1e6, myT * 1e6, mzT * 1e6}
	e.magFresh = true
	e.haveMag = true
	e.lastMagNs = tNs
}

// publish performs the per-stream health bookkeeping and, once startup is
// over, converts the posterior quaternion to axis-angle and emits a
// rotation-changed event.
func (e *Estimator) publish() {
	if e.gyroID == "" {
		log.Println("ahrs: cannot operate without a gyroscope")
		return
	}
	e.gyroSilent++
	if e.gyroSilent > e.cfg.SilentCycleWarnThreshold {
		log.Printf("ahrs: gyroscope open but silent for %d cycles", e.gyroSilent)
	}

	if e.accelID == "" {
		if !e.warnedAccelAbsent {
			log.Println("ahrs: operating without an accelerometer, results will drift")
			e.warnedAccelAbsent = true
		}
	} else {
		e.accelSilent++
		if e.accelSilent > e.cfg.SilentCycleWarnThreshold {
			log.Printf("ahrs: accelerometer open but silent for %d cycles", e.accelSilent)
		}
	}

	if e.magID == "" {
		if !e.warnedMagAbsent {
			log.Println("ahrs: operating without a magnetometer, results will drift")
			e.warnedMagAbsent = true
		}
	} else {
		e.magSilent++
		if e.magSilent > e.cfg.SilentCycleWarnThreshold {
			log.Printf("ahrs: magnetometer open but silent for %d cycles", e.magSilent)
		}
	}

	if e.startupRemaining > 0 {
		return
	}

	q := e.postQuaternion()
	axis, angle := quaternion.ToAxisAngle(q)
	e.rotAxis = axis
	e.rotAngle = angle
	e.broadcast(RotationEvent{Axis: axis, AngleDeg: angle})
}

// RotationAxis returns the last published rotation axis, as computed by
// quaternion.ToAxisAngle (the quaternion's vector part scaled by sin(θ/2),
// not unit length), or the zero vector if the angle is zero or the filter
// hasn't published yet.
func (e *Estimator) RotationAxis() (x, y, z float64) {
	return e.rotAxis[0], e.rotAxis[1], e.rotAxis[2]
}

// RotationAngle returns the last published rotation angle, in degrees.
func (e *Estimator) RotationAngle() float64 {
	return e.rotAngle
}

// Quaternion returns the current a posteriori orientation quaternion.
func (e *Estimator) Quaternion() quaternion.Quaternion {
	return e.postQuaternion()
}

func vecNorm(v [3]float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}
