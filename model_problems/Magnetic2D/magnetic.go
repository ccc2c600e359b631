package Magnetic2D

import (
	"fmt"
	"math"

	"github.com/notargets/gofem2d/fem"
	"github.com/notargets/gofem2d/geometry2D"
	"github.com/notargets/gofem2d/mesh"
	"github.com/notargets/gofem2d/model_problems"
	"github.com/notargets/gofem2d/utils"
)

const (
	// LOCATETOL widens rectangle bounds when locating a query point
	LOCATETOL = 1.e-9
	// FDSTEP is the finite difference step of GetFieldValue
	FDSTEP = 1.e-8
)

/*
Magnetic solves the magnetostatic vector potential equation -div(1/mu grad Az) = J on a structured
rectangle mesh. Material Source is the current density J, Mu the relative permeability, and a
material Curve makes the permeability depend on the local flux density |B|, B = (dAz/dy, -dAz/dx).
*/
type Magnetic struct {
	*model_problems.System
	asm *fem.RectangleAssembler
	Q   []float64
	// Mu0 is the permeability of vacuum, relative values are scaled by it
	Mu0 float64
	mu  []float64
}

func NewMagnetic(m *mesh.Mesh, conds []*fem.BoundaryCondition, opts model_problems.Options) (c *Magnetic, err error) {
	if m.Kind != mesh.Rectangles {
		return nil, fmt.Errorf("magnetic problem needs a rectangle mesh, have %s: %w", m.Kind, utils.ErrInvalidElement)
	}
	c = &Magnetic{
		Q:   make([]float64, m.NumVertices()),
		Mu0: utils.Mu0,
		mu:  make([]float64, m.NumElements()),
	}
	if c.System, err = model_problems.NewSystem(m, conds, opts); err != nil {
		return nil, err
	}
	c.asm = fem.NewRectangleAssembler(m, c.BCs)
	c.asm.Mu = func(k int) float64 { return c.mu[k] }
	if c.Verbose {
		fmt.Printf("Magnetic problem, %d conditions, nonlinear materials: %v\n", len(conds), m.HasNonLinear())
	}
	return
}

func (c *Magnetic) linearMu() {
	for k := range c.mu {
		mur := c.Mesh.Material(k).Mu
		if mur == 0 {
			mur = 1
		}
		c.mu[k] = c.Mu0 * mur
	}
}

// updateMu evaluates the reluctivity curves at the element centre flux density of q
func (c *Magnetic) updateMu(q []float64) (err error) {
	for k := range c.mu {
		mat := c.Mesh.Material(k)
		if !mat.IsNonLinear() {
			continue
		}
		var b float64
		if _, b, err = c.ElementInduction(k, q); err != nil {
			return
		}
		c.mu[k] = c.Mu0 / mat.Curve.Nu(b)
	}
	return
}

// SolveLinear solves once with the constant permeabilities of the materials, starting from initial when given
func (c *Magnetic) SolveLinear(initial []float64) (err error) {
	if err = c.initialGuess(initial); err != nil {
		return
	}
	c.linearMu()
	if err = c.Assemble(c.asm, 0); err != nil {
		return
	}
	return c.System.Solve(c.Q)
}

func (c *Magnetic) initialGuess(initial []float64) error {
	switch {
	case initial == nil:
		clear(c.Q)
	case len(initial) != len(c.Q):
		return fmt.Errorf("initial guess has %d values, mesh has %d vertices", len(initial), len(c.Q))
	default:
		copy(c.Q, initial)
	}
	return nil
}

/*
ElementInduction returns the flux density at the centre of rectangle k for coefficients q,
with dA/dx = (-q0+q1-q2+q3)/(2hx) and dA/dy = (-q0-q1+q2+q3)/(2hy) over positioned corners.
*/
func (c *Magnetic) ElementInduction(k int, q []float64) (B [2]float64, mag float64, err error) {
	var corners [4]int
	if corners, err = fem.RectangleCorners(c.Mesh, k); err != nil {
		return
	}
	var (
		bb             = c.Mesh.Bounds(k)
		q0, q1, q2, q3 = q[corners[0]], q[corners[1]], q[corners[2]], q[corners[3]]
		dAdx           = (-q0 + q1 - q2 + q3) / (2 * bb.Width())
		dAdy           = (-q0 - q1 + q2 + q3) / (2 * bb.Height())
	)
	B = [2]float64{dAdy, -dAdx}
	mag = math.Hypot(dAdx, dAdy)
	return
}

func (c *Magnetic) valueOn(k int, corners [4]int, x, y float64) (val float64) {
	bb := c.Mesh.Bounds(k)
	w := fem.BilinearWeights(bb.XMin[0], bb.XMax[0], bb.XMin[1], bb.XMax[1], x, y)
	for pos, v := range corners {
		val += w[pos] * c.Q[v]
	}
	return
}

func (c *Magnetic) locate(p geometry2D.Point) (k int, corners [4]int, err error) {
	var ok bool
	if k, ok = c.Mesh.LocateRectangle(p, LOCATETOL); !ok {
		err = fmt.Errorf("point (%g,%g): %w", p.X[0], p.X[1], utils.ErrPointNotFound)
		return
	}
	corners, err = fem.RectangleCorners(c.Mesh, k)
	return
}

// GetValue interpolates Az at p, NaN outside the mesh
func (c *Magnetic) GetValue(p geometry2D.Point) float64 {
	k, corners, err := c.locate(p)
	if err != nil {
		return math.NaN()
	}
	return c.valueOn(k, corners, p.X[0], p.X[1])
}

/*
GetFieldValue returns Az and B = (dAz/dy, -dAz/dx) at p. Derivatives are forward differences of step
FDSTEP, backward where the step would leave the element.
*/
func (c *Magnetic) GetFieldValue(p geometry2D.Point) (az float64, B [2]float64, err error) {
	var (
		k       int
		corners [4]int
	)
	if k, corners, err = c.locate(p); err != nil {
		return
	}
	var (
		bb         = c.Mesh.Bounds(k)
		x, y       = p.X[0], p.X[1]
		dAdx, dAdy float64
	)
	az = c.valueOn(k, corners, x, y)
	if x+FDSTEP <= bb.XMax[0] {
		dAdx = (c.valueOn(k, corners, x+FDSTEP, y) - az) / FDSTEP
	} else {
		dAdx = (az - c.valueOn(k, corners, x-FDSTEP, y)) / FDSTEP
	}
	if y+FDSTEP <= bb.XMax[1] {
		dAdy = (c.valueOn(k, corners, x, y+FDSTEP) - az) / FDSTEP
	} else {
		dAdy = (az - c.valueOn(k, corners, x, y-FDSTEP)) / FDSTEP
	}
	B = [2]float64{dAdy, -dAdx}
	return
}

func (c *Magnetic) Solution() []float64 { return c.Q }

// Permeability returns the absolute permeability element k was last assembled with
func (c *Magnetic) Permeability(k int) float64 { return c.mu[k] }
