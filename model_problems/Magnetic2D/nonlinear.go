package Magnetic2D

import (
	"fmt"
	"math"

	"github.com/notargets/gofem2d/utils"
)

type IterState uint8

const (
	Assembling IterState = iota
	Solving
	Checking
	Converged
	Relaxing
)

func (s IterState) String() string {
	switch s {
	case Assembling:
		return "Assembling"
	case Solving:
		return "Solving"
	case Checking:
		return "Checking"
	case Converged:
		return "Converged"
	case Relaxing:
		return "Relaxing"
	}
	return "Unknown"
}

type NonLinearParams struct {
	Initial    []float64 // initial coefficients, zero when nil
	MaxIter    int
	SolverEps  float64 // tolerance of every linear solve, zero keeps the solver's own
	IterEps    float64 // stop once ||Ax-b||^2/||b||^2 < IterEps^2
	Relaxation float64 // used until two residuals are available
}

func DefaultNonLinearParams() NonLinearParams {
	return NonLinearParams{
		MaxIter:    4000,
		IterEps:    1.e-8,
		Relaxation: 0.5,
	}
}

type NonLinearResult struct {
	Iterations  int
	Residual    float64   // relative residual squared of the last assembled system
	Relaxations []float64 // factor applied per iteration
	State       IterState
}

/*
Relaxation adapts the mixing factor from the ratio of consecutive relative residuals:

	l = log10(res/prev + 1)
	l <= 0:  min(0.5 + 0.1(|l|+1), 0.9)
	l > 0:   max(0.1, 0.5 - 0.1|l+1|)

A zero prev returns the initial factor. The result always lies in [0.1, 0.9].
*/
func Relaxation(res, prev, initial float64) float64 {
	if prev == 0 || !utils.IsFinite(res/prev) {
		return utils.Clamp(initial, 0.1, 0.9)
	}
	l := math.Log10(res/prev + 1)
	var rel float64
	if l <= 0 {
		rel = math.Min(0.5+0.1*(math.Abs(l)+1), 0.9)
	} else {
		rel = math.Max(0.1, 0.5-0.1*math.Abs(l+1))
	}
	return utils.Clamp(rel, 0.1, 0.9)
}

/*
SolveNonLinear runs the fixed point iteration on the field dependent permeability. Each cycle
reassembles with the curves evaluated at the current coefficients, checks the residual of the current
coefficients against the new system, then solves and mixes the result with the previous coefficients.
The iteration cap is reported as ErrNonConvergence. The solver tolerance is restored on return.
*/
func (c *Magnetic) SolveNonLinear(params NonLinearParams) (res NonLinearResult, err error) {
	def := DefaultNonLinearParams()
	if params.MaxIter <= 0 {
		params.MaxIter = def.MaxIter
	}
	if params.IterEps <= 0 {
		params.IterEps = def.IterEps
	}
	if params.Relaxation <= 0 {
		params.Relaxation = def.Relaxation
	}
	defer c.Solver.SetEpsilon(c.Solver.Tolerance())
	c.Solver.SetEpsilon(params.SolverEps)
	if err = c.initialGuess(params.Initial); err != nil {
		return
	}
	var (
		prevRes float64
		prevQ   = make([]float64, len(c.Q))
		work    = make([]float64, len(c.Q))
		eps2    = params.IterEps * params.IterEps
	)
	c.linearMu()
	for res.Iterations = 0; res.Iterations < params.MaxIter; res.Iterations++ {
		res.State = Assembling
		if err = c.updateMu(c.Q); err != nil {
			return
		}
		if err = c.Assemble(c.asm, 0); err != nil {
			return
		}
		res.State = Checking
		prevRes = res.Residual
		res.Residual = c.A.Residual2(c.Q, c.B, work)
		rel := Relaxation(res.Residual, prevRes, params.Relaxation)
		if c.Verbose {
			fmt.Printf("iteration = %d, relative residual = %8.6e\n", res.Iterations+1, res.Residual)
		}
		if res.Residual < eps2 {
			res.State = Converged
			res.Iterations++
			return
		}
		res.State = Solving
		copy(prevQ, c.Q)
		if err = c.System.Solve(c.Q); err != nil {
			return
		}
		res.State = Relaxing
		for i := range c.Q {
			c.Q[i] = rel*c.Q[i] + (1-rel)*prevQ[i]
		}
		res.Relaxations = append(res.Relaxations, rel)
		if c.Verbose {
			fmt.Printf("relaxation = %8.6f\n", rel)
		}
	}
	err = &utils.NonConvergenceError{Solver: "nonlinear", Iterations: res.Iterations, Residual: res.Residual}
	return
}
