// Package hpobench provides benchmark problems for hyperparameter
// optimization research. A benchmark wraps a training routine behind a
// fixed interface: a declarative configuration space, an objective function
// that maps a configuration plus a training budget to a scalar score and a
// wall-clock cost, and a test entry point for final reporting.
//
// # Features
//
//   - Fixed, reproducible train/validation/test splits built once at
//     benchmark construction
//   - Declarative six-parameter search space for the Bayesian neural
//     network benchmarks, consumed by any optimization driver
//   - Fail-fast configuration validation with structured errors before any
//     training work begins
//   - Wall-clock cost reporting covering training, prediction and scoring
//   - Two dataset variants: a seeded synthetic 1-D toy function and a
//     caller-supplied housing-style tabular regression CSV
//
// # Usage
//
//	bench, err := hpobench.NewToyBenchmark()
//	if err != nil {
//	    // dataset construction failed
//	}
//
//	cfg := bench.ConfigurationSpace().Default()
//
//	res, err := bench.ObjectiveFunction(cfg, 500)
//	if err != nil {
//	    var verr *configspace.ValidationError
//	    if errors.As(err, &verr) {
//	        // the configuration violated the declared space
//	    }
//	}
//	_ = res.FunctionValue // negative mean log-likelihood on validation
//	_ = res.Cost          // seconds elapsed
//
// Final reporting uses the test entry point, which always trains with the
// maximum budget on train+validation and scores on the held-out test
// partition:
//
//	final, err := bench.ObjectiveFunctionTest(cfg)
//
// Evaluations are synchronous and stateless with respect to one another:
// every call trains a fresh model, and the only shared state is the
// immutable dataset split. A caller wanting bounded evaluation time must
// enforce it externally.
package hpobench
