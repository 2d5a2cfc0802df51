package types

import "fmt"

// InvalidMeshError reports a malformed or empty mesh.
type InvalidMeshError struct {
	Reason string
}

func (e *InvalidMeshError) Error() string {
	return fmt.Sprintf("invalid mesh: %s", e.Reason)
}

// NoBoundaryConditionError reports a Dirichlet condition whose geometric
// predicate matched zero degrees of freedom.
type NoBoundaryConditionError struct {
	Name string
}

func (e *NoBoundaryConditionError) Error() string {
	return fmt.Sprintf("boundary condition %q matched no degrees of freedom, check the predicate against the domain", e.Name)
}

// SingularSystemError is returned by a direct solver when the constrained
// system is not invertible.
type SingularSystemError struct {
	Size      int
	Condition float64
}

func (e *SingularSystemError) Error() string {
	return fmt.Sprintf("singular system of size %d, condition estimate = %8.3e", e.Size, e.Condition)
}

// ConvergenceError is returned by an iterative solver that exhausted its
// iteration budget before reaching the residual tolerance.
type ConvergenceError struct {
	Iterations int
	Residual   float64
	Tolerance  float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("no convergence after %d iterations, relative residual = %8.3e, tolerance = %8.3e",
		e.Iterations, e.Residual, e.Tolerance)
}
