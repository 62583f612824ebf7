package hpobench

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/jiayiliu/hpobench/configspace"
	"github.com/jiayiliu/hpobench/sghmc"
)

//////
// Const, vars, types.
//////

// MaxIters is the training budget used when none is given, and always used
// by ObjectiveFunctionTest.
const MaxIters = 10000

// trainer is the slice of the sghmc surface the benchmark needs. It exists
// so tests can substitute a recording fake for the real trainer.
type trainer interface {
	Train(x *mat.Dense, y []float64) error
	Predict(x *mat.Dense) (mean, variance []float64, err error)
}

// BNNBenchmark evaluates Bayesian neural network training as a
// hyperparameter-optimization objective: a configuration plus a training
// budget is mapped to the negative mean log-likelihood of a held-out
// partition, along with the wall-clock cost of the evaluation.
//
// The dataset split is built once at construction and shared read-only
// between evaluations; every evaluation trains a fresh model.
type BNNBenchmark struct {
	split Split
	space *configspace.Space

	// newTrainer builds the model for one evaluation; replaced in tests.
	newTrainer func(cfg sghmc.Config) trainer
}

//////
// Exported functionalities.
//////

// New builds a benchmark over the given data source. The source's split is
// loaded once, checked, and held for the benchmark's lifetime.
func New(ds DataSource) (*BNNBenchmark, error) {
	split, err := ds.Data()
	if err != nil {
		return nil, errors.Wrap(err, "hpobench: load dataset")
	}

	if err := split.Check(); err != nil {
		return nil, err
	}

	return &BNNBenchmark{
		split: split,
		space: bnnConfigurationSpace(),
		newTrainer: func(cfg sghmc.Config) trainer {
			return sghmc.New(cfg)
		},
	}, nil
}

// NewToyBenchmark builds the benchmark over the synthetic 1-D toy function.
func NewToyBenchmark() (*BNNBenchmark, error) {
	return New(ToyFunction{})
}

// ConfigurationSpace returns the six-parameter search space of the BNN
// benchmarks. The declaration is stable: the same names, bounds and
// defaults on every call.
func (b *BNNBenchmark) ConfigurationSpace() *configspace.Space {
	return b.space
}

// ObjectiveFunction trains on the train partition with the given
// configuration and budget, and scores the model on the validation
// partition. A budget of zero or less means MaxIters. The configuration is
// validated first; a violation is reported as a
// *configspace.ValidationError before any training happens.
func (b *BNNBenchmark) ObjectiveFunction(cfg configspace.Configuration, budget int) (Result, error) {
	start := time.Now()

	if err := b.space.Validate(cfg); err != nil {
		return Result{}, err
	}

	if budget <= 0 {
		budget = MaxIters
	}

	value, err := b.evaluate(cfg, budget,
		b.split.TrainX, b.split.TrainY, b.split.ValidX, b.split.ValidY)
	if err != nil {
		return Result{}, err
	}

	return Result{FunctionValue: value, Cost: time.Since(start).Seconds()}, nil
}

// ObjectiveFunctionTest trains on the concatenation of the train and
// validation partitions with the maximum budget, and scores on the held-out
// test partition. It is meant for final reporting, not tuning, and
// therefore accepts no budget.
func (b *BNNBenchmark) ObjectiveFunctionTest(cfg configspace.Configuration) (Result, error) {
	start := time.Now()

	if err := b.space.Validate(cfg); err != nil {
		return Result{}, err
	}

	var trainX mat.Dense
	trainX.Stack(b.split.TrainX, b.split.ValidX)

	trainY := make([]float64, 0, len(b.split.TrainY)+len(b.split.ValidY))
	trainY = append(trainY, b.split.TrainY...)
	trainY = append(trainY, b.split.ValidY...)

	value, err := b.evaluate(cfg, MaxIters, &trainX, trainY, b.split.TestX, b.split.TestY)
	if err != nil {
		return Result{}, err
	}

	return Result{FunctionValue: value, Cost: time.Since(start).Seconds()}, nil
}

// MetaInformation returns static descriptive metadata.
func (b *BNNBenchmark) MetaInformation() Meta {
	return Meta{
		Name: "BNN Benchmark",
		References: []string{
			"J. T. Springenberg, A. Klein, S. Falkner, F. Hutter: " +
				"Bayesian Optimization with Robust Bayesian Neural Networks (NeurIPS 2016)",
			"T. Chen, E. B. Fox, C. Guestrin: " +
				"Stochastic Gradient Hamiltonian Monte Carlo (ICML 2014)",
		},
	}
}

//////
// Internals.
//////

// bnnConfigurationSpace declares the six tunable hyperparameters. n_iters
// is declared for optimizers that want to tune the budget itself; the
// iteration count actually used by an evaluation is the budget argument.
func bnnConfigurationSpace() *configspace.Space {
	return configspace.New(
		configspace.UniformFloat{Key: "l_rate", Lower: 1e-6, Upper: 1e-1, Def: 1e-2, LogScale: true},
		configspace.UniformFloat{Key: "burn_in", Lower: 0, Upper: 0.8, Def: 0.3},
		configspace.UniformInt{Key: "n_iters", Lower: 500, Upper: 10000, Def: 5000},
		configspace.UniformInt{Key: "n_units_1", Lower: 16, Upper: 512, Def: 64, LogScale: true},
		configspace.UniformInt{Key: "n_units_2", Lower: 16, Upper: 512, Def: 64, LogScale: true},
		configspace.UniformFloat{Key: "mdecay", Lower: 0, Upper: 1, Def: 0.05},
	)
}

// evaluate trains a fresh model on (trainX, trainY) and returns the
// negative mean log-likelihood of (evalX, evalY) under its predictions.
func (b *BNNBenchmark) evaluate(cfg configspace.Configuration, budget int,
	trainX *mat.Dense, trainY []float64, evalX *mat.Dense, evalY []float64,
) (float64, error) {
	// Burn-in is a fraction of the budget, truncated.
	burnIn := int(cfg.Float("burn_in") * float64(budget))

	tc := sghmc.DefaultConfig()
	tc.LRate = cfg.Float("l_rate")
	tc.MDecay = cfg.Float("mdecay")
	tc.BurnIn = burnIn
	tc.Iterations = budget
	tc.Units1 = cfg.Int("n_units_1")
	tc.Units2 = cfg.Int("n_units_2")

	model := b.newTrainer(tc)

	if err := model.Train(trainX, trainY); err != nil {
		return 0, errors.Wrap(err, "hpobench: train")
	}

	mean, variance, err := model.Predict(evalX)
	if err != nil {
		return 0, errors.Wrap(err, "hpobench: predict")
	}

	return negativeLogLikelihood(evalY, mean, variance), nil
}

// negativeLogLikelihood scores per-point Gaussian predictions against the
// observed targets: the per-point log densities are averaged and the mean
// is negated once.
func negativeLogLikelihood(y, mean, variance []float64) float64 {
	logProbs := make([]float64, len(y))

	for i := range y {
		dist := distuv.Normal{Mu: mean[i], Sigma: math.Sqrt(variance[i])}
		logProbs[i] = dist.LogProb(y[i])
	}

	return -stat.Mean(logProbs, nil)
}
