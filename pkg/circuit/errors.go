package circuit

import "fmt"

// NonConvergenceError reports a Newton loop that exhausted
// MaxIterations. The norms are those of the last iteration; the
// caller may loosen tolerances, reduce dt or reject the step.
type NonConvergenceError struct {
	Iterations   int
	StepNorm     float64
	ResidualNorm float64
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("failed to converge in %d iterations (step norm %g, residual norm %g)",
		e.Iterations, e.StepNorm, e.ResidualNorm)
}
