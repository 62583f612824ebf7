package sghmc

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

//////
// Regression network.
//////

// initialLogNoise is the initialization of the learned observation-noise
// head, so the untrained network predicts a variance of about 1e-3.
var initialLogNoise = math.Log(1e-3)

// network is a fully-connected regression net with two tanh hidden layers,
// a linear mean output and a learned log-variance head appended to it. All
// parameters live in one packed vector so the sampler can treat the model
// as a flat parameter space.
//
// Packed layout, in order:
//
//	W1 (h1 x in), b1 (h1), W2 (h2 x h1), b2 (h2), w3 (h2), b3 (1), logNoise (1)
type network struct {
	in, h1, h2 int

	// theta is the packed parameter vector.
	theta []float64

	// offsets into theta
	ow1, ob1, ow2, ob2, ow3, ob3, onoise int
}

// scratch holds per-point forward activations reused across backward calls
// to avoid allocating inside the training loop.
type scratch struct {
	a1, a2 []float64
	d1, d2 []float64
}

func newScratch(h1, h2 int) *scratch {
	return &scratch{
		a1: make([]float64, h1),
		a2: make([]float64, h2),
		d1: make([]float64, h1),
		d2: make([]float64, h2),
	}
}

// newNetwork builds a network for the given layer widths with He-normal
// weights, zero biases and the log-variance head initialized to
// log(1e-3).
func newNetwork(in, h1, h2 int, rng *rand.Rand) *network {
	n := &network{in: in, h1: h1, h2: h2}

	n.ow1 = 0
	n.ob1 = n.ow1 + h1*in
	n.ow2 = n.ob1 + h1
	n.ob2 = n.ow2 + h2*h1
	n.ow3 = n.ob2 + h2
	n.ob3 = n.ow3 + h2
	n.onoise = n.ob3 + 1

	n.theta = make([]float64, n.onoise+1)

	heNormal(n.theta[n.ow1:n.ow1+h1*in], in, rng)
	heNormal(n.theta[n.ow2:n.ow2+h2*h1], h1, rng)
	heNormal(n.theta[n.ow3:n.ow3+h2], h2, rng)
	n.theta[n.onoise] = initialLogNoise

	return n
}

// heNormal fills w with draws from N(0, 2/fanIn).
func heNormal(w []float64, fanIn int, rng *rand.Rand) {
	dist := distuv.Normal{Mu: 0, Sigma: math.Sqrt(2 / float64(fanIn)), Src: rng}
	for i := range w {
		w[i] = dist.Rand()
	}
}

// size returns the number of packed parameters.
func (n *network) size() int {
	return len(n.theta)
}

// forward evaluates the network at x under the given parameter vector and
// returns the predicted mean and log-variance. The hidden activations are
// written into sc for a subsequent backward call.
func (n *network) forward(theta, x []float64, sc *scratch) (mean, logVar float64) {
	for j := 0; j < n.h1; j++ {
		z := floats.Dot(theta[n.ow1+j*n.in:n.ow1+(j+1)*n.in], x)
		sc.a1[j] = math.Tanh(z + theta[n.ob1+j])
	}

	for j := 0; j < n.h2; j++ {
		z := floats.Dot(theta[n.ow2+j*n.h1:n.ow2+(j+1)*n.h1], sc.a1)
		sc.a2[j] = math.Tanh(z + theta[n.ob2+j])
	}

	mean = floats.Dot(theta[n.ow3:n.ow3+n.h2], sc.a2) + theta[n.ob3]
	logVar = theta[n.onoise]

	return mean, logVar
}

// backward evaluates the Gaussian negative log-likelihood of (x, y) and
// accumulates its parameter gradient into grad. It returns the per-point
// loss value.
func (n *network) backward(theta, x []float64, y float64, grad []float64, sc *scratch) float64 {
	mean, logVar := n.forward(theta, x, sc)

	precision := math.Exp(-logVar)
	diff := y - mean
	loss := 0.5*logVar + 0.5*diff*diff*precision + 0.5*math.Log(2*math.Pi)

	// output layer
	dm := -diff * precision
	for j := 0; j < n.h2; j++ {
		grad[n.ow3+j] += dm * sc.a2[j]
	}
	grad[n.ob3] += dm
	grad[n.onoise] += 0.5 - 0.5*diff*diff*precision

	// second hidden layer
	for j := 0; j < n.h2; j++ {
		sc.d2[j] = dm * theta[n.ow3+j] * (1 - sc.a2[j]*sc.a2[j])
		grad[n.ob2+j] += sc.d2[j]
		for k := 0; k < n.h1; k++ {
			grad[n.ow2+j*n.h1+k] += sc.d2[j] * sc.a1[k]
		}
	}

	// first hidden layer
	for k := 0; k < n.h1; k++ {
		var sum float64
		for j := 0; j < n.h2; j++ {
			sum += sc.d2[j] * theta[n.ow2+j*n.h1+k]
		}

		sc.d1[k] = sum * (1 - sc.a1[k]*sc.a1[k])
		grad[n.ob1+k] += sc.d1[k]
		for i := 0; i < n.in; i++ {
			grad[n.ow1+k*n.in+i] += sc.d1[k] * x[i]
		}
	}

	return loss
}
