package launch

import (
	"errors"
	"fmt"
)

// Domain errors for launcher simulation.
var (
	// ErrConfig indicates an invalid input parameter, detected before any
	// simulation step runs.
	ErrConfig = errors.New("launch: invalid configuration")

	// ErrPhysics indicates an invariant violation in the electromagnetic
	// model, such as a negative coil separation.
	ErrPhysics = errors.New("launch: electromagnetic model invariant violated")

	// ErrUnstable indicates a non-finite force, velocity or position was
	// produced mid-run.
	ErrUnstable = errors.New("launch: numerical instability (NaN or Inf detected)")
)

// StepError wraps an error with the tick at which it occurred.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.6fs): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
