package search

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/pkg/errors"

	"github.com/jiayiliu/hpobench"
	"github.com/jiayiliu/hpobench/configspace"
)

//////
// Exported functionalities.
//////

// penaltyValue stands in for the objective value of a failed evaluation.
// It keeps failed regions maximally unattractive without overflowing the
// surrogate when combined with other values.
const penaltyValue = math.MaxFloat64 / 2

// RandomSearch evaluates Config.Iterations configurations sampled uniformly
// from the benchmark's space and returns the best trial found. Failed
// evaluations are penalized and skipped as candidates for the best trial.
//
// It returns an error only when the run cannot produce a single successful
// evaluation.
func RandomSearch(cfg Config, obj Objective) (Trial, error) {
	if cfg.Iterations <= 0 {
		return Trial{}, errors.Errorf("search: iterations must be positive, got %d", cfg.Iterations)
	}

	space := obj.ConfigurationSpace()
	rng := newRNG(cfg.Seed)

	best := Trial{Result: hpobench.Result{FunctionValue: math.MaxFloat64}}
	succeeded := false

	for i := 0; i < cfg.Iterations; i++ {
		candidate := space.Sample(rng)

		res, err := obj.ObjectiveFunction(candidate, cfg.Budget)
		value := res.FunctionValue

		if err != nil {
			value = penaltyValue
		} else if value < best.Result.FunctionValue {
			best = Trial{Config: candidate, Result: res}
			succeeded = true
		}

		sendProgress(cfg.ProgressChan, "RandomSearch", i+1, cfg.Iterations, candidate, best, value)
	}

	if !succeeded {
		return Trial{}, errors.New("search: no evaluation succeeded")
	}

	return best, nil
}

// Optimize runs Bayesian optimization over the benchmark's configuration
// space: an initial random sampling phase builds a Gaussian Process
// surrogate, then each iteration scores NumCandidates random candidates
// with the acquisition function, evaluates the most promising one, and
// feeds the observation back into the surrogate.
//
// How it works:
//  1. Takes InitialSamples random configurations to build the initial model
//  2. For each iteration:
//     - Samples NumCandidates random candidate configurations
//     - Uses the Gaussian Process to predict the objective at each
//     - Uses the acquisition function to select the most promising one
//     - Evaluates the selected configuration on the benchmark
//     - Updates the model with the new observation
//  3. Returns the best trial found
func Optimize(cfg Config, obj Objective) (Trial, error) {
	if cfg.InitialSamples <= 0 && cfg.Iterations <= 0 {
		return Trial{}, errors.New("search: nothing to do, no initial samples and no iterations")
	}

	if cfg.Acquisition == nil {
		cfg.Acquisition = UCB
	}

	if cfg.NumCandidates <= 0 {
		cfg.NumCandidates = 1
	}

	space := obj.ConfigurationSpace()
	rng := newRNG(cfg.Seed)

	enc := newEncoder(space)
	gp := newGaussianProcess()

	best := Trial{Result: hpobench.Result{FunctionValue: math.MaxFloat64}}
	succeeded := false

	evaluate := func(phase string, iteration, total int, candidate configspace.Configuration) {
		res, err := obj.ObjectiveFunction(candidate, cfg.Budget)
		value := res.FunctionValue

		if err != nil {
			value = penaltyValue
		} else if value < best.Result.FunctionValue {
			best = Trial{Config: candidate, Result: res}
			succeeded = true
		}

		gp.Update(enc.encode(candidate), value)
		sendProgress(cfg.ProgressChan, phase, iteration, total, candidate, best, value)
	}

	// Phase 1: initial random sampling establishes a baseline model.
	for i := 0; i < cfg.InitialSamples; i++ {
		evaluate("InitialSampling", i+1, cfg.InitialSamples, space.Sample(rng))
	}

	// Phase 2: surrogate-guided optimization.
	for i := 0; i < cfg.Iterations; i++ {
		cfg.AcqParams.BestSoFar = best.Result.FunctionValue

		var next configspace.Configuration
		bestAcquisition := math.MaxFloat64

		for j := 0; j < cfg.NumCandidates; j++ {
			candidate := space.Sample(rng)

			mean, variance := gp.Predict(enc.encode(candidate))

			if a := cfg.Acquisition(mean, variance, cfg.AcqParams); a < bestAcquisition {
				bestAcquisition = a
				next = candidate
			}
		}

		evaluate("Optimization", i+1, cfg.Iterations, next)
	}

	if !succeeded {
		return Trial{}, errors.New("search: no evaluation succeeded")
	}

	return best, nil
}

//////
// Internals.
//////

// encoder maps configurations onto the unit cube for the surrogate.
// Log-scaled parameters are encoded in log space so one kernel width suits
// every dimension.
type encoder struct {
	space *configspace.Space
	names []string
}

func newEncoder(space *configspace.Space) *encoder {
	return &encoder{space: space, names: space.Names()}
}

func (e *encoder) encode(cfg configspace.Configuration) []float64 {
	out := make([]float64, len(e.names))

	for i, name := range e.names {
		p, _ := e.space.Get(name)
		lo, hi := p.Bounds()
		v := cfg[name]

		if p.Log() {
			out[i] = (math.Log(v) - math.Log(lo)) / (math.Log(hi) - math.Log(lo))

			continue
		}

		out[i] = (v - lo) / (hi - lo)
	}

	return out
}

// newRNG builds the driver's random source; a zero seed falls back to the
// clock.
func newRNG(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	return rand.New(rand.NewPCG(seed, seed))
}

// sendProgress delivers an update without blocking; updates are dropped
// when the channel is full.
func sendProgress(ch chan<- ProgressUpdate, phase string, iteration, total int,
	candidate configspace.Configuration, best Trial, value float64,
) {
	if ch == nil {
		return
	}

	update := ProgressUpdate{
		Phase:            phase,
		CurrentIteration: iteration,
		TotalIterations:  total,
		CurrentConfig:    candidate.Clone(),
		Best:             best,
		LastValue:        value,
	}

	select {
	case ch <- update:
	default:
		// Skip update if channel is full.
	}
}
