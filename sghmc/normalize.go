package sghmc

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

//////
// Input/output normalization.
//////

// zscore holds per-column mean and standard deviation used to map features
// to zero mean and unit variance. Constant columns keep a deviation of one
// so normalization never divides by zero.
type zscore struct {
	mean, std []float64
}

// fitZscore estimates normalization statistics over the rows of x.
func fitZscore(x *mat.Dense) zscore {
	rows, cols := x.Dims()

	z := zscore{
		mean: make([]float64, cols),
		std:  make([]float64, cols),
	}

	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, x)
		z.mean[j], z.std[j] = stat.MeanStdDev(col, nil)

		if z.std[j] == 0 || rows < 2 {
			z.std[j] = 1
		}
	}

	return z
}

// apply writes the normalized row of x into dst.
func (z zscore) apply(dst, x []float64) {
	for j := range x {
		dst[j] = (x[j] - z.mean[j]) / z.std[j]
	}
}

// fitScalarZscore estimates normalization statistics for a target vector.
func fitScalarZscore(y []float64) (mean, std float64) {
	mean, std = stat.MeanStdDev(y, nil)
	if std == 0 || len(y) < 2 {
		std = 1
	}

	return mean, std
}
