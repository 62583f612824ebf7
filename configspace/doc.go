// Package configspace provides declarative hyperparameter search spaces for
// benchmark functions. A Space collects named hyperparameters together with
// their bounds, defaults and scales, and validates configurations against
// that declaration before any training work begins.
//
// # Features
//
//   - Uniform continuous and integer hyperparameters, optionally sampled on
//     a logarithmic scale
//   - Fail-fast validation with a structured ValidationError that
//     distinguishes contract violations from training failures
//   - Deterministic sampling from any seeded random source
//   - Immutable spaces: the same bounds and defaults on every call
//
// # Usage
//
//	space := configspace.New(
//	    configspace.UniformFloat{Key: "l_rate", Lower: 1e-6, Upper: 1e-1, Def: 1e-2, LogScale: true},
//	    configspace.UniformInt{Key: "n_units_1", Lower: 16, Upper: 512, Def: 64, LogScale: true},
//	)
//
//	cfg := space.Default()
//	if err := space.Validate(cfg); err != nil {
//	    // *ValidationError names the offending parameter
//	}
package configspace
