package configspace

import (
	"fmt"
	"math"
	"math/rand/v2"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/stat/distuv"
)

//////
// Hyperparameter declarations.
//////

// Hyperparameter is a single named, bounded parameter of a search space.
//
// Implementations must be stable: the same name, bounds and default on every
// call, with no internal state.
type Hyperparameter interface {
	// Name returns the parameter name used as the configuration key.
	Name() string

	// Default returns the declared default value.
	Default() float64

	// Bounds returns the inclusive lower and upper bound.
	Bounds() (lower, upper float64)

	// Integer reports whether the parameter only admits integral values.
	Integer() bool

	// Log reports whether the parameter is sampled on a logarithmic scale.
	Log() bool

	// Validate checks a candidate value against the declaration and returns
	// a structured error for out-of-bounds or wrongly-typed values.
	Validate(value float64) *ValidationError

	// Sample draws a value from the declared range using the given source.
	Sample(rng *rand.Rand) float64
}

// within reports whether v lies in the closed interval [lo, hi].
func within[T constraints.Integer | constraints.Float](v, lo, hi T) bool {
	return v >= lo && v <= hi
}

// UniformFloat is a continuous hyperparameter drawn uniformly from
// [Lower, Upper], optionally on a logarithmic scale.
type UniformFloat struct {
	// Key is the configuration key for this parameter.
	Key string

	// Lower and Upper are the inclusive bounds.
	Lower, Upper float64

	// Def is the declared default value.
	Def float64

	// LogScale samples uniformly in log space when set. Requires Lower > 0.
	LogScale bool
}

func (p UniformFloat) Name() string                   { return p.Key }
func (p UniformFloat) Default() float64               { return p.Def }
func (p UniformFloat) Bounds() (lower, upper float64) { return p.Lower, p.Upper }
func (p UniformFloat) Integer() bool                  { return false }
func (p UniformFloat) Log() bool                      { return p.LogScale }

// Validate checks that value is a real number inside the declared bounds.
func (p UniformFloat) Validate(value float64) *ValidationError {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return &ValidationError{Param: p.Key, Value: value, Reason: "must be a finite number"}
	}

	if !within(value, p.Lower, p.Upper) {
		return &ValidationError{
			Param:  p.Key,
			Value:  value,
			Reason: fmt.Sprintf("out of bounds [%v, %v]", p.Lower, p.Upper),
		}
	}

	return nil
}

// Sample draws uniformly from the declared range, in log space when
// LogScale is set.
func (p UniformFloat) Sample(rng *rand.Rand) float64 {
	if p.LogScale {
		u := distuv.Uniform{Min: math.Log(p.Lower), Max: math.Log(p.Upper), Src: rng}
		return math.Exp(u.Rand())
	}

	return distuv.Uniform{Min: p.Lower, Max: p.Upper, Src: rng}.Rand()
}

// UniformInt is an integer hyperparameter drawn uniformly from
// [Lower, Upper], optionally on a logarithmic scale. Configuration values
// are carried as float64 and must be integral.
type UniformInt struct {
	// Key is the configuration key for this parameter.
	Key string

	// Lower and Upper are the inclusive bounds.
	Lower, Upper int

	// Def is the declared default value.
	Def int

	// LogScale samples uniformly in log space when set. Requires Lower > 0.
	LogScale bool
}

func (p UniformInt) Name() string                   { return p.Key }
func (p UniformInt) Default() float64               { return float64(p.Def) }
func (p UniformInt) Bounds() (lower, upper float64) { return float64(p.Lower), float64(p.Upper) }
func (p UniformInt) Integer() bool                  { return true }
func (p UniformInt) Log() bool                      { return p.LogScale }

// Validate checks that value is an integral number inside the declared
// bounds.
func (p UniformInt) Validate(value float64) *ValidationError {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return &ValidationError{Param: p.Key, Value: value, Reason: "must be a finite number"}
	}

	if value != math.Trunc(value) {
		return &ValidationError{Param: p.Key, Value: value, Reason: "must be an integer"}
	}

	if !within(int(value), p.Lower, p.Upper) {
		return &ValidationError{
			Param:  p.Key,
			Value:  value,
			Reason: fmt.Sprintf("out of bounds [%d, %d]", p.Lower, p.Upper),
		}
	}

	return nil
}

// Sample draws an integral value from the declared range, rounding the
// log-space draw and clamping to the bounds.
func (p UniformInt) Sample(rng *rand.Rand) float64 {
	if p.LogScale {
		u := distuv.Uniform{Min: math.Log(float64(p.Lower)), Max: math.Log(float64(p.Upper)), Src: rng}
		v := math.Round(math.Exp(u.Rand()))
		return math.Min(math.Max(v, float64(p.Lower)), float64(p.Upper))
	}

	return float64(p.Lower + rng.IntN(p.Upper-p.Lower+1))
}
