package configspace

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
)

//////
// Configuration and Space.
//////

// Configuration maps hyperparameter names to values. Integer parameters
// carry integral float64 values; Validate enforces this.
type Configuration map[string]float64

// Float returns the value of the named parameter, or zero when absent.
func (c Configuration) Float(name string) float64 {
	return c[name]
}

// Int returns the value of the named integer parameter.
func (c Configuration) Int(name string) int {
	return int(math.Round(c[name]))
}

// Clone returns an independent copy of the configuration.
func (c Configuration) Clone() Configuration {
	out := make(Configuration, len(c))
	for k, v := range c {
		out[k] = v
	}

	return out
}

// Space is an ordered, immutable collection of hyperparameter declarations.
// Build it once with New; the same names, bounds and defaults are reported
// on every call.
type Space struct {
	order  []string
	params map[string]Hyperparameter
}

// New builds a space from the given declarations. It panics on a duplicate
// or empty parameter name, which is a programming error in the declaration,
// not a runtime condition.
func New(params ...Hyperparameter) *Space {
	s := &Space{params: make(map[string]Hyperparameter, len(params))}

	for _, p := range params {
		name := p.Name()
		if name == "" {
			panic("configspace: hyperparameter with empty name")
		}

		if _, dup := s.params[name]; dup {
			panic(fmt.Sprintf("configspace: duplicate hyperparameter %q", name))
		}

		s.order = append(s.order, name)
		s.params[name] = p
	}

	return s
}

// Len returns the number of declared hyperparameters.
func (s *Space) Len() int {
	return len(s.order)
}

// Names returns the parameter names in declaration order.
func (s *Space) Names() []string {
	return slices.Clone(s.order)
}

// Get returns the named hyperparameter declaration.
func (s *Space) Get(name string) (Hyperparameter, bool) {
	p, ok := s.params[name]

	return p, ok
}

// Default returns the configuration holding every parameter's declared
// default value.
func (s *Space) Default() Configuration {
	cfg := make(Configuration, len(s.order))
	for _, name := range s.order {
		cfg[name] = s.params[name].Default()
	}

	return cfg
}

// Sample draws a random configuration from the space using the given
// source. Log-scaled parameters are drawn uniformly in log space.
func (s *Space) Sample(rng *rand.Rand) Configuration {
	cfg := make(Configuration, len(s.order))
	for _, name := range s.order {
		cfg[name] = s.params[name].Sample(rng)
	}

	return cfg
}

// Validate checks a configuration against the space and fails fast on the
// first violation: a missing parameter, an out-of-bounds or wrongly-typed
// value, or an unknown key. The returned error is always a
// *ValidationError.
func (s *Space) Validate(cfg Configuration) error {
	for _, name := range s.order {
		value, ok := cfg[name]
		if !ok {
			return &ValidationError{Param: name, Reason: "missing parameter"}
		}

		if err := s.params[name].Validate(value); err != nil {
			return err
		}
	}

	// Unknown keys are checked in sorted order so the reported parameter is
	// deterministic.
	extra := make([]string, 0, len(cfg))
	for name := range cfg {
		if _, ok := s.params[name]; !ok {
			extra = append(extra, name)
		}
	}

	if len(extra) > 0 {
		slices.Sort(extra)

		return &ValidationError{Param: extra[0], Value: cfg[extra[0]], Reason: "unknown parameter"}
	}

	return nil
}
