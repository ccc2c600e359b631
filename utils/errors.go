package utils

import (
	"errors"
	"fmt"
)

// Error kinds, test with errors.Is
var (
	ErrInvalidGeometry            = errors.New("invalid geometry")
	ErrInvalidElement             = errors.New("invalid element")
	ErrPointNotFound              = errors.New("point not found")
	ErrSingularSystem             = errors.New("singular system")
	ErrNonConvergence             = errors.New("no convergence")
	ErrMalformedBoundaryCondition = errors.New("malformed boundary condition")
)

// SingularSystemError reports a zero, negative or non finite pivot met during factorization
type SingularSystemError struct {
	Solver string
	Row    int
	Pivot  float64
}

func (e *SingularSystemError) Error() string {
	return fmt.Sprintf("%s: %s, pivot %g at row %d", e.Solver, ErrSingularSystem, e.Pivot, e.Row)
}

func (e *SingularSystemError) Is(target error) bool { return target == ErrSingularSystem }

// NonConvergenceError carries the state reached when an iteration cap is hit
type NonConvergenceError struct {
	Solver     string
	Iterations int
	Residual   float64 // relative residual squared
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("%s: %s after %d iterations, relative residual squared %g",
		e.Solver, ErrNonConvergence, e.Iterations, e.Residual)
}

func (e *NonConvergenceError) Is(target error) bool { return target == ErrNonConvergence }
