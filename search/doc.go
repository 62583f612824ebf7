// Package search provides optimization drivers for hpobench benchmarks. It
// minimizes a benchmark's objective value over its declared configuration
// space, either by plain random search or by Bayesian optimization with a
// Gaussian Process surrogate.
//
// # Features
//
//   - Random Search: a seeded baseline driver for any benchmark
//   - Bayesian Optimization: a Gaussian Process surrogate over encoded
//     configurations picks promising candidates
//   - Multiple Acquisition Functions: Upper Confidence Bound (UCB),
//     Probability of Improvement (PI), Expected Improvement (EI), and
//     Thompson Sampling
//   - Progress Monitoring: real-time updates on optimization progress via
//     channels
//   - Robust to evaluation failures: failed evaluations are penalized, not
//     fatal
//
// # Usage
//
//	bench, _ := hpobench.NewToyBenchmark()
//
//	cfg := search.DefaultConfig()
//	cfg.Iterations = 20
//	cfg.Budget = 500 // training iterations per evaluation
//
//	best, err := search.Optimize(cfg, bench)
//	if err != nil {
//	    // no evaluation succeeded
//	}
//	_ = best.Config // the best configuration found
//	_ = best.Result // its objective value and cost
//
// # Acquisition Functions
//
// UCB is the default and balances exploration against exploitation through
// the Beta parameter. PI and EI trade off the probability and magnitude of
// improvement over the best value seen so far, tuned by Xi. Thompson
// Sampling draws from the surrogate posterior and needs a RandomState.
//
//	cfg := search.DefaultConfig()
//	cfg.Acquisition = search.ExpectedImprovement
//	cfg.AcqParams.Xi = 0.01
package search
