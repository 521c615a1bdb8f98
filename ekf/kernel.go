// Package ekf implements a generic linearized (extended) discrete-time
// Kalman filter kernel: predict/correct over an n-state, m-observation
// system where the caller supplies the process vector, transition matrix,
// process noise, observation vector, predicted observation, observation
// matrix and observation noise at every step. The kernel itself only owns
// the state estimates and their error covariances; it has no notion of
// what the state or observation actually represent.
package ekf

import (
	"fmt"

	"github.com/skelterjohn/go.matrix"
)

// Kernel holds the prior/posterior state estimates and error covariances
// for an n-dimensional linearized Kalman filter.
type Kernel struct {
	n int // state dimension
	m int // observation dimension

	XPrior *matrix.DenseMatrix // n x 1
	XPost  *matrix.DenseMatrix // n x 1
	PPrior *matrix.DenseMatrix // n x n
	PPost  *matrix.DenseMatrix // n x n
}

// New creates a kernel of state dimension n and observation dimension m,
// with the given initial posterior state x0 (n x 1) and initial posterior
// (and prior) error covariance p0 (n x n). Both x0 and p0 are copied, so the
// caller may reuse or modify them afterwards.
func New(n, m int, x0, p0 *matrix.DenseMatrix) *Kernel {
	return &Kernel{
		n:      n,
		m:      m,
		XPrior: x0.Copy(),
		XPost:  x0.Copy(),
		PPrior: p0.Copy(),
		PPost:  p0.Copy(),
	}
}

// N returns the state dimension.
func (k *Kernel) N() int { return k.n }

// M returns the observation dimension.
func (k *Kernel) M() int { return k.m }

// Predict applies the process model: x_prior = f(x_post, u); P_prior =
// F*P_post*F' + Q_k. x_post is left unchanged; a subsequent Correct call
// starts from x_prior and overwrites x_post.
func (k *Kernel) Predict(f, F, Qk *matrix.DenseMatrix) {
	k.XPrior = f.Copy()
	k.PPrior = matrix.Sum(matrix.Product(F, matrix.Product(k.PPost, F.Transpose())), Qk)
}

// Correct applies the measurement update: S = H*P_prior*H' + R_k; K =
// P_prior*H'*S^-1; x_post = x_prior + K*(z - h); P_post = (I - K*H)*P_prior.
// Correct does not recover from a singular S; the observation model is
// responsible for keeping R_k positive definite.
func (k *Kernel) Correct(z, h, H, Rk *matrix.DenseMatrix) error {
	s := matrix.Sum(matrix.Product(H, matrix.Product(k.PPrior, H.Transpose())), Rk)
	sInv, err := s.Inverse()
	if err != nil {
		return fmt.Errorf("ekf: innovation covariance is singular: %w", err)
	}
	K := matrix.Product(k.PPrior, matrix.Product(H.Transpose(), sInv))
	y := matrix.Difference(z, h)
	k.XPost = matrix.Sum(k.XPrior, matrix.Product(K, y))
	k.PPost = matrix.Product(matrix.Difference(matrix.Eye(k.n), matrix.Product(K, H)), k.PPrior)
	return nil
}
