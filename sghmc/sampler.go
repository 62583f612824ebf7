package sghmc

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

//////
// Scale-adapted SGHMC update.
//////

// noiseFloor keeps the injected-noise variance strictly positive.
const noiseFloor = 1e-16

// sampler performs stochastic-gradient Hamiltonian Monte Carlo updates on a
// flat parameter vector, with the scale adaptation of Springenberg et al.:
// during burn-in it maintains per-parameter moving averages of the gradient
// and its second moment and uses them as a diagonal preconditioner; after
// burn-in the preconditioner is frozen and posterior samples can be
// collected.
type sampler struct {
	// lrScaled is the learning rate divided by sqrt(N) where N is the
	// training-set size.
	lrScaled float64

	// mdecay is the momentum decay per step.
	mdecay float64

	// burnIn is the number of adaptation steps before the preconditioner
	// freezes.
	burnIn int

	// precondition toggles the diagonal preconditioner entirely.
	precondition bool

	// per-parameter state
	tau, g, vHat, momentum []float64

	step  int
	noise distuv.Normal
}

// newSampler builds a sampler for dim parameters over a training set of
// numData points.
func newSampler(dim, numData, burnIn int, lr, mdecay float64, precondition bool, src distuv.Normal) *sampler {
	s := &sampler{
		lrScaled:     lr / math.Sqrt(float64(numData)),
		mdecay:       mdecay,
		burnIn:       burnIn,
		precondition: precondition,
		tau:          make([]float64, dim),
		g:            make([]float64, dim),
		vHat:         make([]float64, dim),
		momentum:     make([]float64, dim),
		noise:        src,
	}

	for i := 0; i < dim; i++ {
		s.tau[i] = 1
		s.g[i] = 1
		s.vHat[i] = 1
	}

	return s
}

// burnedIn reports whether the adaptation phase is over.
func (s *sampler) burnedIn() bool {
	return s.step >= s.burnIn
}

// update advances the chain by one step, mutating theta in place. grad must
// hold the stochastic gradient of the mean negative log posterior per data
// point.
func (s *sampler) update(theta, grad []float64) {
	eps := s.lrScaled

	for i := range theta {
		minv := 1.0

		if s.precondition {
			if s.step < s.burnIn {
				// Adapt the per-parameter averages; tau is an adaptive
				// window length that shrinks when the gradient signal is
				// strong relative to its variance.
				rt := 1.0 / (s.tau[i] + 1)
				s.tau[i] += 1 - s.tau[i]*(s.g[i]*s.g[i]/s.vHat[i])
				s.g[i] += rt * (grad[i] - s.g[i])
				s.vHat[i] += rt * (grad[i]*grad[i] - s.vHat[i])
			}

			minv = 1.0 / math.Sqrt(s.vHat[i])
		}

		noiseVar := 2*eps*eps*s.mdecay*minv - eps*eps*eps*eps
		sigma := math.Sqrt(math.Max(noiseVar, noiseFloor))

		s.momentum[i] += -eps*eps*minv*grad[i] - s.mdecay*s.momentum[i] + sigma*s.noise.Rand()
		theta[i] += s.momentum[i]
	}

	s.step++
}
