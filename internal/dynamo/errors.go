package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidParameter indicates a configuration value outside its physical domain.
	ErrInvalidParameter = errors.New("dynamo: invalid parameter")

	// ErrNumericAnomaly indicates an integration step produced a non-finite value.
	ErrNumericAnomaly = errors.New("dynamo: numeric anomaly (NaN or Inf produced)")
)

// StepError wraps an error with the step at which it happened.
type StepError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
