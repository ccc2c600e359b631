package Elliptic2D

import (
	"fmt"
	"math"

	"github.com/notargets/gofem2d/fem"
	"github.com/notargets/gofem2d/geometry2D"
	"github.com/notargets/gofem2d/mesh"
	"github.com/notargets/gofem2d/model_problems"
	"github.com/notargets/gofem2d/utils"
)

/*
Elliptic solves -div(lambda grad u) + gamma u = f on a linear triangle mesh, with First, Second and
Third kind conditions on the boundary polylines.
*/
type Elliptic struct {
	*model_problems.System
	asm *fem.TriangleAssembler
	Q   []float64
}

func NewElliptic(m *mesh.Mesh, conds []*fem.BoundaryCondition, opts model_problems.Options) (c *Elliptic, err error) {
	if m.Kind != mesh.Triangles {
		return nil, fmt.Errorf("elliptic problem needs a triangle mesh, have %s: %w", m.Kind, utils.ErrInvalidElement)
	}
	c = &Elliptic{
		Q: make([]float64, m.NumVertices()),
	}
	if c.System, err = model_problems.NewSystem(m, conds, opts); err != nil {
		return nil, err
	}
	c.asm = fem.NewTriangleAssembler(m, c.BCs)
	if c.Verbose {
		fmt.Printf("Elliptic problem, %d conditions, solver %s\n", len(conds), c.Solver.Name())
	}
	return
}

// Solve assembles and solves from a zero initial guess, so repeated calls give identical results
func (c *Elliptic) Solve() (err error) {
	if err = c.Assemble(c.asm, 0); err != nil {
		return
	}
	clear(c.Q)
	return c.System.Solve(c.Q)
}

// GetValue interpolates the solution at p, NaN when no triangle contains p
func (c *Elliptic) GetValue(p geometry2D.Point) float64 {
	k, w, ok := c.Mesh.LocateTriangle(p)
	if !ok {
		return math.NaN()
	}
	var val float64
	for i, v := range c.Mesh.Elements[k].Verts {
		val += w[i] * c.Q[v]
	}
	return val
}

func (c *Elliptic) Solution() []float64 { return c.Q }

func (c *Elliptic) Matrix() *utils.SymmSparse { return c.A }
