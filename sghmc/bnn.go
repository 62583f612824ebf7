// Package sghmc trains Bayesian neural networks for regression with the
// scale-adapted stochastic-gradient Hamiltonian Monte Carlo sampler. The
// model is a two-hidden-layer tanh network with a linear mean output and a
// learned observation-noise head; prediction averages over posterior
// parameter samples collected after burn-in, yielding a per-point mean and
// variance.
package sghmc

import (
	"math"
	"math/rand/v2"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

//////
// Const, vars, types.
//////

// varianceFloor keeps predicted variances strictly positive so a Gaussian
// likelihood over them is always defined.
const varianceFloor = 1e-12

// Progress reports the state of a running training chain. Updates are sent
// best-effort over Config.ProgressChan and dropped when the channel is
// full.
type Progress struct {
	// Iteration is the current sampler step, starting at 1.
	Iteration int

	// Total is the configured number of steps.
	Total int

	// Phase is "burn-in" during preconditioner adaptation and "sampling"
	// once posterior snapshots are being collected.
	Phase string

	// Loss is the minibatch negative log-likelihood at this step.
	Loss float64
}

// Config controls a training run.
type Config struct {
	// LRate is the SGHMC learning rate before dataset scaling.
	LRate float64

	// MDecay is the momentum decay per step.
	MDecay float64

	// BurnIn is the number of adaptation steps discarded before posterior
	// samples are collected.
	BurnIn int

	// Iterations is the total number of sampler steps.
	Iterations int

	// BatchSize is the minibatch size; batches are drawn with replacement
	// from the training set.
	BatchSize int

	// SampleEvery is the thinning interval between posterior snapshots
	// after burn-in.
	SampleEvery int

	// MaxSamples caps the number of retained snapshots; the oldest are
	// dropped first.
	MaxSamples int

	// Units1 and Units2 are the hidden layer widths.
	Units1, Units2 int

	// Precondition enables the diagonal scale adaptation.
	Precondition bool

	// NormalizeInput and NormalizeOutput enable z-score normalization of
	// features and targets respectively.
	NormalizeInput  bool
	NormalizeOutput bool

	// Seed seeds the chain's random source. A zero seed is replaced by one
	// so runs are reproducible by default.
	Seed uint64

	// ProgressChan receives best-effort Progress updates; nil disables
	// reporting.
	ProgressChan chan<- Progress
}

// DefaultConfig returns the trainer defaults: a 64x64 network, minibatches
// of 20, preconditioning and normalization enabled, snapshots every 100
// steps after burn-in with at most 100 retained.
func DefaultConfig() Config {
	return Config{
		LRate:           1e-2,
		MDecay:          0.05,
		BurnIn:          3000,
		Iterations:      10000,
		BatchSize:       20,
		SampleEvery:     100,
		MaxSamples:      100,
		Units1:          64,
		Units2:          64,
		Precondition:    true,
		NormalizeInput:  true,
		NormalizeOutput: true,
		Seed:            1,
	}
}

// BNN is a Bayesian neural network regression model. Create one with New,
// call Train once, then Predict any number of times. A BNN is not safe for
// concurrent use while Train is running.
type BNN struct {
	cfg Config

	net     *network
	samples [][]float64

	inDim int

	xNorm        zscore
	yMean, yStd  float64
	normalizeIn  bool
	normalizeOut bool

	trained bool
}

//////
// Exported functionalities.
//////

// New creates an untrained model from the given configuration.
func New(cfg Config) *BNN {
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}

	return &BNN{cfg: cfg}
}

// Train runs the SGHMC chain over the given training set. x holds one row
// per observation; y holds the matching targets. Train replaces any
// previous posterior state.
func (b *BNN) Train(x *mat.Dense, y []float64) error {
	rows, cols := x.Dims()

	if rows == 0 || cols == 0 {
		return errors.New("sghmc: empty training set")
	}

	if len(y) != rows {
		return errors.Errorf("sghmc: %d feature rows but %d targets", rows, len(y))
	}

	if b.cfg.Iterations <= 0 {
		return errors.Errorf("sghmc: iterations must be positive, got %d", b.cfg.Iterations)
	}

	if b.cfg.Units1 <= 0 || b.cfg.Units2 <= 0 {
		return errors.Errorf("sghmc: hidden layer widths must be positive, got %d and %d",
			b.cfg.Units1, b.cfg.Units2)
	}

	rng := rand.New(rand.NewPCG(b.cfg.Seed, b.cfg.Seed))

	// Normalize a working copy; the caller's data is never mutated.
	features, targets := b.prepare(x, y)

	b.inDim = cols
	b.net = newNetwork(cols, b.cfg.Units1, b.cfg.Units2, rng)
	b.samples = nil

	noise := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}
	smp := newSampler(b.net.size(), rows, b.cfg.BurnIn, b.cfg.LRate, b.cfg.MDecay,
		b.cfg.Precondition, noise)

	batch := b.cfg.BatchSize
	if batch <= 0 || batch > rows {
		batch = rows
	}

	sampleEvery := b.cfg.SampleEvery
	if sampleEvery <= 0 {
		sampleEvery = 1
	}

	grad := make([]float64, b.net.size())
	sc := newScratch(b.cfg.Units1, b.cfg.Units2)

	for it := 0; it < b.cfg.Iterations; it++ {
		for i := range grad {
			grad[i] = 0
		}

		var loss float64
		for k := 0; k < batch; k++ {
			i := rng.IntN(rows)
			loss += b.net.backward(b.net.theta, features[i], targets[i], grad, sc)
		}

		// Mean gradient over the batch plus a unit Gaussian prior on the
		// parameters, scaled per data point.
		for i := range grad {
			grad[i] = grad[i]/float64(batch) + b.net.theta[i]/float64(rows)
		}

		smp.update(b.net.theta, grad)

		if smp.burnedIn() && (it-b.cfg.BurnIn)%sampleEvery == 0 {
			b.snapshot()
		}

		b.report(it+1, smp.burnedIn(), loss/float64(batch))
	}

	// A chain that never left burn-in still yields a usable point estimate.
	if len(b.samples) == 0 {
		b.snapshot()
	}

	b.trained = true

	return nil
}

// Predict returns the posterior predictive mean and variance for every row
// of x. The variance combines the spread of the posterior samples with each
// sample's own predicted observation noise.
func (b *BNN) Predict(x *mat.Dense) (mean, variance []float64, err error) {
	if !b.trained {
		return nil, nil, errors.New("sghmc: model is not trained")
	}

	rows, cols := x.Dims()
	if cols != b.inDim {
		return nil, nil, errors.Errorf("sghmc: model expects %d features, got %d", b.inDim, cols)
	}

	mean = make([]float64, rows)
	variance = make([]float64, rows)

	row := make([]float64, cols)
	normalized := make([]float64, cols)
	sc := newScratch(b.cfg.Units1, b.cfg.Units2)

	for i := 0; i < rows; i++ {
		mat.Row(row, i, x)

		input := row
		if b.normalizeIn {
			b.xNorm.apply(normalized, row)
			input = normalized
		}

		// Ensemble over posterior samples: the combined mean is the mean of
		// the per-sample means, and the combined variance is
		// E[m^2 + v] - E[m]^2.
		var m, sq float64
		for _, theta := range b.samples {
			sm, slogVar := b.net.forward(theta, input, sc)
			m += sm
			sq += sm*sm + math.Exp(slogVar)
		}

		n := float64(len(b.samples))
		m /= n
		v := sq/n - m*m

		if b.normalizeOut {
			m = m*b.yStd + b.yMean
			v *= b.yStd * b.yStd
		}

		mean[i] = m
		variance[i] = math.Max(v, varianceFloor)
	}

	return mean, variance, nil
}

// NumSamples returns the number of retained posterior samples.
func (b *BNN) NumSamples() int {
	return len(b.samples)
}

//////
// Internals.
//////

// prepare copies x and y into row-major slices, applying the configured
// normalizations and recording their statistics for Predict.
func (b *BNN) prepare(x *mat.Dense, y []float64) (features [][]float64, targets []float64) {
	rows, cols := x.Dims()

	b.normalizeIn = b.cfg.NormalizeInput
	b.normalizeOut = b.cfg.NormalizeOutput

	if b.normalizeIn {
		b.xNorm = fitZscore(x)
	}

	features = make([][]float64, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, cols)
		mat.Row(row, i, x)

		if b.normalizeIn {
			b.xNorm.apply(row, row)
		}

		features[i] = row
	}

	b.yMean, b.yStd = 0, 1
	if b.normalizeOut {
		b.yMean, b.yStd = fitScalarZscore(y)
	}

	targets = make([]float64, rows)
	for i, v := range y {
		targets[i] = (v - b.yMean) / b.yStd
	}

	return features, targets
}

// snapshot stores a copy of the current parameters, dropping the oldest
// sample when the cap is reached.
func (b *BNN) snapshot() {
	theta := make([]float64, len(b.net.theta))
	copy(theta, b.net.theta)

	if b.cfg.MaxSamples > 0 && len(b.samples) >= b.cfg.MaxSamples {
		b.samples = b.samples[1:]
	}

	b.samples = append(b.samples, theta)
}

// report sends a progress update without blocking.
func (b *BNN) report(iteration int, sampling bool, loss float64) {
	if b.cfg.ProgressChan == nil {
		return
	}

	phase := "burn-in"
	if sampling {
		phase = "sampling"
	}

	update := Progress{
		Iteration: iteration,
		Total:     b.cfg.Iterations,
		Phase:     phase,
		Loss:      loss,
	}

	select {
	case b.cfg.ProgressChan <- update:
	default:
		// Skip update if channel is full.
	}
}
