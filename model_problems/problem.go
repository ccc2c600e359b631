package model_problems

import (
	"fmt"

	"github.com/notargets/gofem2d/fem"
	"github.com/notargets/gofem2d/mesh"
	"github.com/notargets/gofem2d/solvers"
	"github.com/notargets/gofem2d/utils"
)

// Options shared by every model problem
type Options struct {
	Solver   solvers.Kind
	Settings solvers.Settings
	Verbose  bool
}

type Option func(*Options)

func WithSolver(k solvers.Kind) Option { return func(o *Options) { o.Solver = k } }

func WithSettings(s solvers.Settings) Option { return func(o *Options) { o.Settings = s } }

func WithVerbose(verbose bool) Option { return func(o *Options) { o.Verbose = verbose } }

func NewOptions(opts ...Option) (o Options) {
	for _, opt := range opts {
		opt(&o)
	}
	return
}

/*
System owns the global matrix, load vector and assembly workspace of one problem. The portrait is
built once in NewSystem; every later assembly only rewrites values.
*/
type System struct {
	Mesh    *mesh.Mesh
	BCs     *fem.BoundarySet
	A       *utils.SymmSparse
	B       []float64
	WS      *fem.Workspace
	Solver  solvers.LinearSolver
	Verbose bool
	// LastSolve holds the statistics of the most recent linear solve
	LastSolve solvers.Result
}

func NewSystem(m *mesh.Mesh, conds []*fem.BoundaryCondition, opts Options) (s *System, err error) {
	for _, bc := range conds {
		for _, v := range bc.Vertices {
			if v >= m.NumVertices() {
				err = fmt.Errorf("condition %s references vertex %d, mesh has %d: %w",
					bc, v, m.NumVertices(), utils.ErrMalformedBoundaryCondition)
				return
			}
		}
	}
	s = &System{
		Mesh:    m,
		BCs:     fem.NewBoundarySet(conds),
		B:       make([]float64, m.NumVertices()),
		WS:      fem.NewWorkspace(m.Kind.NumVerts()),
		Solver:  solvers.New(opts.Solver, opts.Settings),
		Verbose: opts.Verbose,
	}
	if s.A, err = utils.NewSymmSparseFromElements(m.NumVertices(), m.Connectivity()); err != nil {
		return nil, err
	}
	if s.Verbose {
		fmt.Printf("%s mesh: %d vertices, %d elements, %d off diagonal entries\n",
			m.Kind, m.NumVertices(), m.NumElements(), s.A.NNZ())
		fmt.Println(utils.GetMemUsage())
	}
	return
}

// Assemble builds A and b at time t and eliminates the First kind vertices
func (s *System) Assemble(asm fem.Assembler, t float64) (err error) {
	if err = fem.AssembleSystem(asm, s.BCs, s.WS, s.A, s.B, s.Mesh.NumElements(), t); err != nil {
		return
	}
	if s.Verbose {
		for _, bc := range s.BCs.Unmatched() {
			fmt.Printf("boundary condition %s matched no element edge\n", bc)
		}
	}
	return s.BCs.ApplyFirstKind(s.A, s.B, s.Mesh.Vertices, t)
}

// Solve runs the linear solver with x as the initial guess
func (s *System) Solve(x []float64) (err error) {
	s.LastSolve, err = s.Solver.Solve(s.A, s.B, x)
	if s.Verbose {
		fmt.Printf("%s: %d iterations, relative residual^2 = %8.5e\n",
			s.Solver.Name(), s.LastSolve.Iterations, s.LastSolve.Residual)
	}
	return
}
