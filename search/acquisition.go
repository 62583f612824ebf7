package search

import "math"

//////
// Available acquisition functions.
// Each function helps decide which configuration to evaluate next by
// balancing exploration (trying uncertain regions) and exploitation
// (focusing on regions known to score well).
//////

// UCB implements the Upper Confidence Bound acquisition function. It
// combines the predicted objective value with the uncertainty there; lower
// values are better since the drivers minimize. Beta controls the
// trade-off: higher values favor exploration of uncertain configurations.
//
// UCB is the default choice and works well in most cases.
func UCB(mean, variance float64, params AcquisitionParams) float64 {
	return mean - params.Beta*math.Sqrt(variance)
}

// ProbabilityOfImprovement estimates how likely a configuration is to beat
// the best objective value observed so far by at least Xi, under a normal
// assumption on the surrogate's prediction.
//
// A conservative strategy: it prefers small, reliable improvements, which
// suits noise-sensitive objectives.
func ProbabilityOfImprovement(mean, variance float64, params AcquisitionParams) float64 {
	z := (mean - params.BestSoFar - params.Xi) / math.Sqrt(variance)

	return normalCDF(z)
}

// ExpectedImprovement weighs both the probability and the magnitude of
// improving on the best objective value observed so far. It is the most
// commonly used acquisition function when the size of the improvement
// matters.
func ExpectedImprovement(mean, variance float64, params AcquisitionParams) float64 {
	sigma := math.Sqrt(variance)

	z := (mean - params.BestSoFar - params.Xi) / sigma

	return (mean-params.BestSoFar-params.Xi)*normalCDF(z) + sigma*normalPDF(z)
}

// ThompsonSampling draws a random sample from the surrogate's posterior at
// the candidate configuration. Randomness naturally balances exploration
// and exploitation without tuning Beta or Xi.
//
// AcquisitionParams.RandomState must be initialized before use.
func ThompsonSampling(mean, variance float64, params AcquisitionParams) float64 {
	return mean + math.Sqrt(variance)*params.RandomState.NormFloat64()
}
