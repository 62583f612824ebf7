package hpobench

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/jiayiliu/hpobench/configspace"
)

//////
// Benchmark contract.
//////

// Result is the outcome of a single benchmark evaluation.
type Result struct {
	// FunctionValue is the score being minimized; for the BNN benchmarks it
	// is a negative mean log-likelihood and may take any sign.
	FunctionValue float64 `json:"function_value"`

	// Cost is the wall-clock time of the whole evaluation in seconds,
	// covering training, prediction and scoring.
	Cost float64 `json:"cost"`
}

// Meta is static descriptive information about a benchmark.
type Meta struct {
	// Name identifies the benchmark.
	Name string

	// References lists the papers the benchmark is based on.
	References []string
}

// Benchmark is the contract an optimization driver consumes: a declarative
// search space plus two evaluation entry points. ObjectiveFunction is the
// tuning surface and accepts a training budget; ObjectiveFunctionTest is
// used for final reporting and always trains with the benchmark's maximum
// budget on the union of the train and validation partitions.
type Benchmark interface {
	ConfigurationSpace() *configspace.Space
	ObjectiveFunction(cfg configspace.Configuration, budget int) (Result, error)
	ObjectiveFunctionTest(cfg configspace.Configuration) (Result, error)
	MetaInformation() Meta
}

// Split holds the fixed train/validation/test partitions of a benchmark
// dataset: three disjoint feature matrices with their target vectors.
// Partitions are built once at benchmark construction and never mutated, so
// they can be shared freely between evaluations.
type Split struct {
	TrainX *mat.Dense
	TrainY []float64

	ValidX *mat.Dense
	ValidY []float64

	TestX *mat.Dense
	TestY []float64
}

// Rows returns the total number of rows across the three partitions.
func (s Split) Rows() int {
	tr, _ := s.TrainX.Dims()
	va, _ := s.ValidX.Dims()
	te, _ := s.TestX.Dims()

	return tr + va + te
}

// Check verifies the structural invariants of the split: every partition is
// non-empty, feature widths agree, and each target vector matches its
// feature matrix row count.
func (s Split) Check() error {
	if s.TrainX == nil || s.ValidX == nil || s.TestX == nil {
		return errors.New("hpobench: split has a nil partition")
	}

	trRows, trCols := s.TrainX.Dims()
	vaRows, vaCols := s.ValidX.Dims()
	teRows, teCols := s.TestX.Dims()

	if trRows == 0 || vaRows == 0 || teRows == 0 {
		return errors.New("hpobench: split has an empty partition")
	}

	if vaCols != trCols || teCols != trCols {
		return errors.Errorf("hpobench: partition widths differ: train %d, valid %d, test %d",
			trCols, vaCols, teCols)
	}

	if len(s.TrainY) != trRows || len(s.ValidY) != vaRows || len(s.TestY) != teRows {
		return errors.Errorf("hpobench: target lengths (%d, %d, %d) do not match partition rows (%d, %d, %d)",
			len(s.TrainY), len(s.ValidY), len(s.TestY), trRows, vaRows, teRows)
	}

	return nil
}

// DataSource supplies the dataset split of a concrete benchmark variant.
// Implementations must return row-count-consistent, non-overlapping
// partitions, deterministic for a given source.
type DataSource interface {
	Data() (Split, error)
}
