package search

import (
	"math"
	"sync"
)

//////
// Gaussian Process surrogate.
//////

// gaussianProcess is a thread-safe Gaussian Process regression model over
// encoded configurations. It predicts the objective value of untested
// configurations from previously observed trials, and is deliberately
// simple: an RBF kernel over unit-cube encodings with a fixed width.
//
// Memory grows linearly with the number of observations; each observation
// stores a copy of its encoding.
type gaussianProcess struct {
	// mu protects access to all fields.
	mu sync.RWMutex

	// X stores the encoded configurations observed so far.
	X [][]float64

	// Y stores the objective value observed at each point in X.
	Y []float64

	// sigma is the kernel width. Larger values smooth the interpolation;
	// smaller values make each observation more local.
	sigma float64
}

// newGaussianProcess creates an empty model with a kernel width suited to
// unit-cube encodings.
func newGaussianProcess() *gaussianProcess {
	return &gaussianProcess{
		sigma: 1.0, // Default kernel width.
	}
}

// rbfKernel measures the similarity of two encoded configurations, decaying
// exponentially with their squared distance:
//
//	k(x1, x2) = exp(-sum((x1 - x2)^2) / (2 * sigma^2))
//
// It panics when the encodings have different lengths, which would mean the
// caller mixed spaces.
func (gp *gaussianProcess) rbfKernel(x1, x2 []float64) float64 {
	if len(x1) != len(x2) {
		panic("search: encoded configurations must have the same length")
	}

	gp.mu.RLock()
	sigma := gp.sigma
	gp.mu.RUnlock()

	var sum float64

	for i := range x1 {
		diff := x1[i] - x2[i]

		sum += diff * diff
	}

	return math.Exp(-sum / (2 * sigma * sigma))
}

// Predict estimates the objective value and its uncertainty at an encoded
// configuration. With no observations it returns (0, 1) so acquisition
// functions still have something to work with.
func (gp *gaussianProcess) Predict(x []float64) (mean, variance float64) {
	gp.mu.RLock()
	defer gp.mu.RUnlock()

	if len(gp.X) == 0 {
		return 0, 1
	}

	k := make([]float64, len(gp.X))
	for i := range gp.X {
		k[i] = gp.rbfKernel(x, gp.X[i])
	}

	var sum float64

	for i := range gp.X {
		sum += k[i] * gp.Y[i]
	}

	mean = sum / float64(len(gp.X))

	variance = 1.0

	for i := range gp.X {
		for j := range gp.X {
			variance -= k[i] * k[j] / float64(len(gp.X))
		}
	}

	// Clustered observations can push the estimate below zero; acquisition
	// functions take its square root, so clamp it.
	if variance < 0 {
		variance = 0
	}

	return mean, variance
}

// Update adds an observed trial to the model. The encoding is copied, so
// the caller may reuse its slice.
func (gp *gaussianProcess) Update(x []float64, y float64) {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	newX := make([]float64, len(x))
	copy(newX, x)

	gp.X = append(gp.X, newX)
	gp.Y = append(gp.Y, y)
}

//////
// Standard normal helpers.
//////

// normalCDF is the cumulative distribution function of the standard normal
// distribution, used by PI and EI.
func normalCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}

// normalPDF is the probability density function of the standard normal
// distribution, used by EI.
func normalPDF(x float64) float64 {
	return math.Exp(-x*x/2.0) / math.Sqrt(2.0*math.Pi)
}
