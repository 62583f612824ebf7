package configspace

import "fmt"

//////
// Errors.
//////

// ValidationError reports a configuration that violates the declared search
// space. It is returned before any side-effecting work (such as model
// training) begins, so callers can distinguish contract violations from
// evaluation failures.
type ValidationError struct {
	// Param is the name of the offending hyperparameter, or the unknown key.
	Param string

	// Value is the rejected value. It is meaningless when Reason reports a
	// missing parameter.
	Value float64

	// Reason describes the violation in plain words.
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("configspace: parameter %q: %s (value %v)", e.Param, e.Reason, e.Value)
}
