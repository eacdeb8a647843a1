package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidConfig indicates a run parameter outside its valid range.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrDivergence indicates a particle state became NaN or Inf.
	ErrDivergence = errors.New("dynamo: numerical divergence (NaN or Inf detected)")

	// ErrTaskFailed indicates a per-particle update did not complete.
	ErrTaskFailed = errors.New("dynamo: particle update failed")

	// ErrEnsembleSize indicates an ensemble whose length differs from the configured N.
	ErrEnsembleSize = errors.New("dynamo: ensemble size mismatch")
)

// SimulationError wraps an error with simulation context. Particle is -1
// when the failure is not tied to a single particle.
type SimulationError struct {
	Step     int
	Time     float64
	Particle int
	State    State
	Wrapped  error
}

func (e *SimulationError) Error() string {
	if e.Particle < 0 {
		return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
	}
	return fmt.Sprintf("step %d (t=%.4f) particle %d: %v", e.Step, e.Time, e.Particle, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
