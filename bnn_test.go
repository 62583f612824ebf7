package hpobench

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/jiayiliu/hpobench/configspace"
	"github.com/jiayiliu/hpobench/sghmc"
)

//////
// Test doubles.
//////

// fakeTrainer records every invocation so tests can observe what the
// benchmark asked of the trainer without paying for real training.
type fakeTrainer struct {
	calls *[]sghmc.Config
	cfg   sghmc.Config

	trainRows int
}

func (f *fakeTrainer) Train(x *mat.Dense, _ []float64) error {
	f.trainRows, _ = x.Dims()
	*f.calls = append(*f.calls, f.cfg)

	return nil
}

func (f *fakeTrainer) Predict(x *mat.Dense) (mean, variance []float64, err error) {
	rows, _ := x.Dims()

	mean = make([]float64, rows)
	variance = make([]float64, rows)
	for i := range variance {
		variance[i] = 1
	}

	return mean, variance, nil
}

// fakeBenchmark wires a recording trainer into a toy-data benchmark and
// returns the call log.
func fakeBenchmark(t *testing.T) (*BNNBenchmark, *[]sghmc.Config, *fakeTrainer) {
	t.Helper()

	bench, err := NewToyBenchmark()
	require.NoError(t, err)

	calls := &[]sghmc.Config{}
	last := &fakeTrainer{}

	bench.newTrainer = func(cfg sghmc.Config) trainer {
		last.calls = calls
		last.cfg = cfg

		return last
	}

	return bench, calls, last
}

//////
// Configuration space.
//////

func TestConfigurationSpaceIsStable(t *testing.T) {
	bench, err := NewToyBenchmark()
	require.NoError(t, err)

	names := bench.ConfigurationSpace().Names()
	assert.Equal(t, []string{"l_rate", "burn_in", "n_iters", "n_units_1", "n_units_2", "mdecay"}, names)

	// Same declaration on every call.
	assert.Equal(t, names, bench.ConfigurationSpace().Names())
	assert.Equal(t, bench.ConfigurationSpace().Default(), bench.ConfigurationSpace().Default())

	p, ok := bench.ConfigurationSpace().Get("l_rate")
	require.True(t, ok)

	lo, hi := p.Bounds()
	assert.Equal(t, 1e-6, lo)
	assert.Equal(t, 1e-1, hi)
	assert.True(t, p.Log())
}

//////
// Objective function plumbing.
//////

func TestObjectiveFunctionBudgetPlumbing(t *testing.T) {
	bench, calls, _ := fakeBenchmark(t)

	cfg := bench.ConfigurationSpace().Default()

	_, err := bench.ObjectiveFunction(cfg, 500)
	require.NoError(t, err)

	require.Len(t, *calls, 1)
	got := (*calls)[0]

	assert.Equal(t, 500, got.Iterations)
	// burn_in defaults to 0.3; the step count truncates.
	assert.Equal(t, 150, got.BurnIn)
	assert.Equal(t, 64, got.Units1)
	assert.Equal(t, 64, got.Units2)
	assert.Equal(t, 1e-2, got.LRate)
	assert.Equal(t, 0.05, got.MDecay)
	assert.True(t, got.Precondition)
	assert.True(t, got.NormalizeInput)
	assert.True(t, got.NormalizeOutput)
}

func TestObjectiveFunctionDefaultsBudgetToMaxIters(t *testing.T) {
	bench, calls, _ := fakeBenchmark(t)

	_, err := bench.ObjectiveFunction(bench.ConfigurationSpace().Default(), 0)
	require.NoError(t, err)

	require.Len(t, *calls, 1)
	assert.Equal(t, MaxIters, (*calls)[0].Iterations)
	assert.Equal(t, 3000, (*calls)[0].BurnIn)
}

func TestObjectiveFunctionBurnInTruncates(t *testing.T) {
	bench, calls, _ := fakeBenchmark(t)

	cfg := bench.ConfigurationSpace().Default()
	cfg["burn_in"] = 0.7

	// 0.7 * 999 = 699.3, which must floor to 699.
	_, err := bench.ObjectiveFunction(cfg, 999)
	require.NoError(t, err)

	require.Len(t, *calls, 1)
	assert.Equal(t, 699, (*calls)[0].BurnIn)
}

func TestObjectiveFunctionRejectsOutOfBounds(t *testing.T) {
	bench, calls, _ := fakeBenchmark(t)

	cfg := bench.ConfigurationSpace().Default()
	cfg["n_units_1"] = 0

	_, err := bench.ObjectiveFunction(cfg, 500)

	var verr *configspace.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "n_units_1", verr.Param)

	// Validation failures must never reach the trainer.
	assert.Empty(t, *calls)
}

func TestObjectiveFunctionRejectsMissingParameter(t *testing.T) {
	bench, calls, _ := fakeBenchmark(t)

	cfg := bench.ConfigurationSpace().Default()
	delete(cfg, "mdecay")

	_, err := bench.ObjectiveFunction(cfg, 500)

	var verr *configspace.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, *calls)
}

func TestObjectiveFunctionTestIgnoresBudget(t *testing.T) {
	bench, calls, _ := fakeBenchmark(t)

	cfg := bench.ConfigurationSpace().Default()

	_, err := bench.ObjectiveFunctionTest(cfg)
	require.NoError(t, err)
	_, err = bench.ObjectiveFunctionTest(cfg)
	require.NoError(t, err)

	// The trainer always sees the fixed maximum iteration count.
	require.Len(t, *calls, 2)
	for _, got := range *calls {
		assert.Equal(t, MaxIters, got.Iterations)
		assert.Equal(t, 3000, got.BurnIn)
	}
}

func TestObjectiveFunctionTestTrainsOnTrainPlusValidation(t *testing.T) {
	bench, _, last := fakeBenchmark(t)

	_, err := bench.ObjectiveFunctionTest(bench.ConfigurationSpace().Default())
	require.NoError(t, err)

	// Toy split: 600 train + 200 validation rows.
	assert.Equal(t, 800, last.trainRows)
}

func TestObjectiveFunctionPartitions(t *testing.T) {
	bench, _, last := fakeBenchmark(t)

	_, err := bench.ObjectiveFunction(bench.ConfigurationSpace().Default(), 500)
	require.NoError(t, err)

	assert.Equal(t, 600, last.trainRows)
}

//////
// End-to-end evaluation.
//////

func TestObjectiveFunctionEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("trains a real model")
	}

	bench, err := NewToyBenchmark()
	require.NoError(t, err)

	res, err := bench.ObjectiveFunction(bench.ConfigurationSpace().Default(), 500)
	require.NoError(t, err)

	assert.Greater(t, res.Cost, 0.0)
	assert.False(t, math.IsNaN(res.FunctionValue))
	assert.False(t, math.IsInf(res.FunctionValue, 0))

	// The serialized result record carries exactly the two declared fields.
	raw, err := json.Marshal(res)
	require.NoError(t, err)

	var fields map[string]float64
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Len(t, fields, 2)
	assert.Contains(t, fields, "function_value")
	assert.Contains(t, fields, "cost")
}

//////
// Scoring.
//////

func TestNegativeLogLikelihoodStandardNormal(t *testing.T) {
	// -logpdf(0; 0, 1) = 0.5 * log(2*pi)
	nll := negativeLogLikelihood([]float64{0}, []float64{0}, []float64{1})
	assert.InDelta(t, 0.5*math.Log(2*math.Pi), nll, 1e-12)
}

func TestNegativeLogLikelihoodAveragesBeforeNegating(t *testing.T) {
	y := []float64{0, 1}
	mean := []float64{0, 0}
	variance := []float64{1, 4}

	p0 := -0.5 * math.Log(2*math.Pi)
	p1 := -0.5*math.Log(2*math.Pi*4) - 0.5*1.0/4.0

	assert.InDelta(t, -(p0+p1)/2, negativeLogLikelihood(y, mean, variance), 1e-12)
}

func TestMetaInformation(t *testing.T) {
	bench, err := NewToyBenchmark()
	require.NoError(t, err)

	meta := bench.MetaInformation()
	assert.Equal(t, "BNN Benchmark", meta.Name)
	assert.NotEmpty(t, meta.References)
}
