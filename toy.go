package hpobench

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

//////
// Synthetic toy dataset.
//////

// ToySeed seeds the toy function's random source when no seed is given.
const ToySeed = 42

const (
	toyPoints = 1000
	toyTrain  = 600
	toyValid  = 200
)

// ToyFunction is the synthetic 1-D regression data source: 1000 uniform
// inputs on [0, 1) with a trigonometric target perturbed by Gaussian noise
// that is injected into the input before evaluation. The split is the first
// 600 rows for training, the next 200 for validation and the last 200 for
// testing, in generation order.
//
// Given the same seed the returned split is identical on every call.
type ToyFunction struct {
	// Seed overrides the fixed default seed; zero means ToySeed.
	Seed uint64
}

// Data generates the dataset and returns its fixed split.
func (t ToyFunction) Data() (Split, error) {
	seed := t.Seed
	if seed == 0 {
		seed = ToySeed
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	gauss := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}

	xs := make([]float64, toyPoints)
	for i := range xs {
		xs[i] = rng.Float64()
	}

	ys := make([]float64, toyPoints)
	for i, x := range xs {
		eps := 0.02 * gauss.Rand()
		ys[i] = x + 0.3*math.Sin(2*math.Pi*(x+eps)) + 0.3*math.Sin(4*math.Pi*(x+eps)) + eps
	}

	split := Split{
		TrainX: mat.NewDense(toyTrain, 1, xs[:toyTrain]),
		TrainY: ys[:toyTrain],
		ValidX: mat.NewDense(toyValid, 1, xs[toyTrain:toyTrain+toyValid]),
		ValidY: ys[toyTrain : toyTrain+toyValid],
		TestX:  mat.NewDense(toyPoints-toyTrain-toyValid, 1, xs[toyTrain+toyValid:]),
		TestY:  ys[toyTrain+toyValid:],
	}

	return split, nil
}
