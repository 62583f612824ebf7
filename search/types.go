package search

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/jiayiliu/hpobench"
	"github.com/jiayiliu/hpobench/configspace"
)

//////
// Const, vars, types.
//////

// Objective is the slice of the benchmark contract the drivers consume:
// a declarative configuration space and a budgeted evaluation entry point.
// *hpobench.BNNBenchmark satisfies it.
type Objective interface {
	ConfigurationSpace() *configspace.Space
	ObjectiveFunction(cfg configspace.Configuration, budget int) (hpobench.Result, error)
}

// Trial pairs an evaluated configuration with its result.
type Trial struct {
	Config configspace.Configuration
	Result hpobench.Result
}

// ProgressUpdate represents the current state of the optimization process.
type ProgressUpdate struct {
	// Phase indicates whether we're in the initial sampling or the
	// optimization phase.
	Phase string

	// CurrentIteration is the current iteration number within the phase.
	CurrentIteration int

	// TotalIterations is the total number of iterations in the phase.
	TotalIterations int

	// CurrentConfig holds the configuration just evaluated.
	CurrentConfig configspace.Configuration

	// Best holds the best trial found so far.
	Best Trial

	// LastValue holds the objective value of the last evaluation; failed
	// evaluations report the penalty value.
	LastValue float64
}

// AcquisitionFunc decides how promising an untested configuration is, given
// the surrogate's predicted mean and variance of the objective value there.
// Lower return values indicate more promising configurations.
type AcquisitionFunc func(mean, variance float64, params AcquisitionParams) float64

// AcquisitionParams holds the parameters acquisition functions use to
// balance exploration of uncertain regions against exploitation of known
// good ones.
type AcquisitionParams struct {
	// Beta controls the exploration-exploitation trade-off in UCB. Higher
	// values explore more.
	Beta float64

	// Xi is the minimum-improvement margin used by PI and EI.
	Xi float64

	// BestSoFar is the lowest objective value observed so far. It is
	// maintained by the driver during optimization.
	BestSoFar float64

	// RandomState is the random source used by Thompson Sampling.
	RandomState *rand.Rand
}

// Config controls an optimization run over a benchmark.
type Config struct {
	// Iterations is the number of optimization steps after the initial
	// sampling phase.
	Iterations int

	// InitialSamples is the number of random configurations evaluated
	// before the surrogate-guided phase starts.
	InitialSamples int

	// NumCandidates is the number of random candidates scored by the
	// acquisition function per iteration.
	NumCandidates int

	// Budget is the training budget passed to every evaluation; zero or
	// less means the benchmark's fixed maximum.
	Budget int

	// Seed seeds the driver's random source. Zero means a time-based seed.
	Seed uint64

	// Acquisition selects the strategy for choosing the next candidate.
	Acquisition AcquisitionFunc

	// AcqParams holds the parameters for the acquisition function.
	AcqParams AcquisitionParams

	// ProgressChan receives best-effort progress updates; nil disables
	// reporting.
	ProgressChan chan<- ProgressUpdate
}

// DefaultConfig returns a default configuration using UCB.
func DefaultConfig() Config {
	seed := uint64(time.Now().UnixNano())

	return Config{
		Iterations:     50,
		InitialSamples: 10,
		NumCandidates:  50,
		Acquisition:    UCB,
		AcqParams: AcquisitionParams{
			BestSoFar:   math.MaxFloat64,
			Beta:        2.0,
			Xi:          0.01,
			RandomState: rand.New(rand.NewPCG(seed, seed)),
		},
	}
}
