package sghmc

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// linearProblem builds a small noisy y = 2x + 1 regression set.
func linearProblem(n int, seed uint64) (*mat.Dense, []float64) {
	rng := rand.New(rand.NewPCG(seed, seed))
	noise := distuv.Normal{Mu: 0, Sigma: 0.05, Src: rng}

	data := make([]float64, n)
	targets := make([]float64, n)

	for i := 0; i < n; i++ {
		x := rng.Float64()*2 - 1
		data[i] = x
		targets[i] = 2*x + 1 + noise.Rand()
	}

	return mat.NewDense(n, 1, data), targets
}

// smallConfig keeps test runs fast.
func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Iterations = 300
	cfg.BurnIn = 100
	cfg.SampleEvery = 20
	cfg.BatchSize = 10
	cfg.Units1 = 16
	cfg.Units2 = 16
	cfg.Seed = 11

	return cfg
}

func TestTrainRejectsEmptyData(t *testing.T) {
	model := New(smallConfig())

	err := model.Train(mat.NewDense(1, 1, []float64{0}), nil)
	assert.Error(t, err)
}

func TestTrainRejectsMismatchedTargets(t *testing.T) {
	x, y := linearProblem(20, 1)
	model := New(smallConfig())

	err := model.Train(x, y[:10])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "targets")
}

func TestTrainRejectsBadWidths(t *testing.T) {
	x, y := linearProblem(20, 1)

	cfg := smallConfig()
	cfg.Units1 = 0

	assert.Error(t, New(cfg).Train(x, y))
}

func TestPredictBeforeTrain(t *testing.T) {
	model := New(smallConfig())

	_, _, err := model.Predict(mat.NewDense(1, 1, []float64{0}))
	assert.Error(t, err)
}

func TestPredictRejectsWrongWidth(t *testing.T) {
	x, y := linearProblem(50, 2)

	model := New(smallConfig())
	require.NoError(t, model.Train(x, y))

	_, _, err := model.Predict(mat.NewDense(1, 2, []float64{0, 0}))
	assert.Error(t, err)
}

func TestTrainPredictFiniteAndPositiveVariance(t *testing.T) {
	x, y := linearProblem(100, 3)

	model := New(smallConfig())
	require.NoError(t, model.Train(x, y))
	require.Greater(t, model.NumSamples(), 0)

	mean, variance, err := model.Predict(x)
	require.NoError(t, err)
	require.Len(t, mean, 100)
	require.Len(t, variance, 100)

	for i := range mean {
		assert.False(t, math.IsNaN(mean[i]) || math.IsInf(mean[i], 0), "mean[%d]", i)
		assert.Greater(t, variance[i], 0.0, "variance[%d]", i)
	}
}

func TestTrainIsReproducibleGivenSeed(t *testing.T) {
	x, y := linearProblem(60, 4)

	first := New(smallConfig())
	require.NoError(t, first.Train(x, y))
	m1, v1, err := first.Predict(x)
	require.NoError(t, err)

	second := New(smallConfig())
	require.NoError(t, second.Train(x, y))
	m2, v2, err := second.Predict(x)
	require.NoError(t, err)

	assert.Equal(t, m1, m2)
	assert.Equal(t, v1, v2)
}

func TestTrainHandlesConstantColumn(t *testing.T) {
	// Second feature is constant; normalization must not divide by zero.
	n := 40
	data := make([]float64, 2*n)
	targets := make([]float64, n)

	rng := rand.New(rand.NewPCG(5, 5))
	for i := 0; i < n; i++ {
		x := rng.Float64()
		data[2*i] = x
		data[2*i+1] = 3.5
		targets[i] = x
	}

	model := New(smallConfig())
	require.NoError(t, model.Train(mat.NewDense(n, 2, data), targets))

	mean, _, err := model.Predict(mat.NewDense(1, 2, []float64{0.5, 3.5}))
	require.NoError(t, err)
	assert.False(t, math.IsNaN(mean[0]))
}

func TestTrainEmitsProgress(t *testing.T) {
	x, y := linearProblem(30, 6)

	cfg := smallConfig()
	cfg.Iterations = 50
	cfg.BurnIn = 20

	progress := make(chan Progress, cfg.Iterations)
	cfg.ProgressChan = progress

	require.NoError(t, New(cfg).Train(x, y))
	close(progress)

	var burnIn, sampling int
	for update := range progress {
		switch update.Phase {
		case "burn-in":
			burnIn++
		case "sampling":
			sampling++
		}

		assert.Equal(t, cfg.Iterations, update.Total)
	}

	assert.Greater(t, burnIn, 0)
	assert.Greater(t, sampling, 0)
}

func TestSnapshotCap(t *testing.T) {
	x, y := linearProblem(30, 7)

	cfg := smallConfig()
	cfg.Iterations = 200
	cfg.BurnIn = 0
	cfg.SampleEvery = 1
	cfg.MaxSamples = 10

	model := New(cfg)
	require.NoError(t, model.Train(x, y))

	assert.Equal(t, 10, model.NumSamples())
}

func TestSamplerFreezesPreconditionerAfterBurnIn(t *testing.T) {
	rng := rand.New(rand.NewPCG(8, 8))
	noise := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}

	s := newSampler(2, 100, 3, 1e-2, 0.05, true, noise)

	theta := []float64{0.1, -0.1}
	grad := []float64{0.5, -0.5}

	for i := 0; i < 3; i++ {
		s.update(theta, grad)
	}

	require.True(t, s.burnedIn())
	frozen := append([]float64(nil), s.vHat...)

	s.update(theta, grad)
	assert.Equal(t, frozen, s.vHat)
}
