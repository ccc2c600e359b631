package Parabolic2D

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/notargets/gofem2d/fem"
	"github.com/notargets/gofem2d/geometry2D"
	"github.com/notargets/gofem2d/mesh"
	"github.com/notargets/gofem2d/model_problems"
	"github.com/notargets/gofem2d/types"
	"github.com/notargets/gofem2d/utils"
)

/*
Parabolic solves sigma du/dt - div(lambda grad u) = f on a linear triangle mesh over a fixed set of
time layers. Material Gamma is sigma. The first two layers come from the initial condition, every
later layer uses the three point backward scheme on non uniform steps:

	dt = T[t]-T[t-2],  dt1 = T[t-1]-T[t-2],  dt0 = T[t]-T[t-1]
	(lambda G + (dt+dt0)/(dt dt0) M) q = b(T[t]) + M (dt/(dt1 dt0) q[t-1] - dt0/(dt dt1) q[t-2])
*/
type Parabolic struct {
	*model_problems.System
	asm     *fem.TriangleAssembler
	Times   []float64
	Layers  [][]float64
	Initial types.TimeFunc
	// history coefficients and layers of the step being assembled
	c0, c1 float64
	q0, q1 []float64
	solved bool
}

func NewParabolic(m *mesh.Mesh, conds []*fem.BoundaryCondition, times []float64, initial types.TimeFunc,
	opts model_problems.Options) (c *Parabolic, err error) {
	if m.Kind != mesh.Triangles {
		return nil, fmt.Errorf("parabolic problem needs a triangle mesh, have %s: %w", m.Kind, utils.ErrInvalidElement)
	}
	if len(times) < 2 {
		return nil, fmt.Errorf("need at least two time layers, have %d", len(times))
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return nil, fmt.Errorf("time layers must increase, layer %d at %g follows %g", i, times[i], times[i-1])
		}
	}
	if initial == nil {
		return nil, fmt.Errorf("parabolic problem needs an initial condition")
	}
	c = &Parabolic{
		Times:   append([]float64(nil), times...),
		Layers:  make([][]float64, len(times)),
		Initial: initial,
	}
	if c.System, err = model_problems.NewSystem(m, conds, opts); err != nil {
		return nil, err
	}
	for i := range c.Layers {
		c.Layers[i] = make([]float64, m.NumVertices())
	}
	c.asm = fem.NewTriangleAssembler(m, c.BCs)
	c.asm.History = c.history
	if c.Verbose {
		fmt.Printf("Parabolic problem, %d time layers on [%g,%g], solver %s\n",
			len(times), times[0], times[len(times)-1], c.Solver.Name())
	}
	return
}

func (c *Parabolic) history(ws *fem.Workspace, mass *[3][3]float64) {
	for i := 0; i < 3; i++ {
		var sum float64
		for j := 0; j < 3; j++ {
			g := ws.Global[j]
			sum += mass[i][j] * (c.c0*c.q0[g] + c.c1*c.q1[g])
		}
		ws.Load[i] += sum
	}
}

// Solve fills every time layer, each solve starting from the previous layer
func (c *Parabolic) Solve() (err error) {
	for i, p := range c.Mesh.Vertices {
		c.Layers[0][i] = c.Initial(p, c.Times[0])
		c.Layers[1][i] = c.Initial(p, c.Times[1])
	}
	for t := 2; t < len(c.Times); t++ {
		var (
			dt  = c.Times[t] - c.Times[t-2]
			dt1 = c.Times[t-1] - c.Times[t-2]
			dt0 = c.Times[t] - c.Times[t-1]
		)
		c.asm.MassScale = (dt + dt0) / (dt * dt0)
		c.c0 = -dt0 / (dt * dt1)
		c.c1 = dt / (dt1 * dt0)
		c.q0, c.q1 = c.Layers[t-2], c.Layers[t-1]
		if err = c.Assemble(c.asm, c.Times[t]); err != nil {
			return fmt.Errorf("time layer %d: %w", t, err)
		}
		x := c.Layers[t]
		copy(x, c.Layers[t-1])
		if err = c.System.Solve(x); err != nil {
			return fmt.Errorf("time layer %d at t = %g: %w", t, c.Times[t], err)
		}
		if c.Verbose {
			fmt.Printf("Layer %4d, t = %8.5f, %d iterations\n", t, c.Times[t], c.LastSolve.Iterations)
		}
	}
	c.solved = true
	return
}

func (c *Parabolic) spatial(q []float64, k int, w [3]float64) (val float64) {
	for i, v := range c.Mesh.Elements[k].Verts {
		val += w[i] * q[v]
	}
	return
}

/*
GetValue interpolates the solution at p and time t. Between the first two layers the interpolation
is linear in time, later it is the quadratic through the layer pair bracketing t and the layer before.
NaN is returned outside the mesh or the time range.
*/
func (c *Parabolic) GetValue(p geometry2D.Point, t float64) float64 {
	k, w, ok := c.Mesh.LocateTriangle(p)
	if !ok {
		return math.NaN()
	}
	j := -1
	for i := 1; i < len(c.Times); i++ {
		if c.Times[i-1] <= t && t <= c.Times[i] {
			j = i
			break
		}
	}
	if j < 0 {
		return math.NaN()
	}
	u := c.spatial(c.Layers[j], k, w)
	u1 := c.spatial(c.Layers[j-1], k, w)
	if j < 2 {
		s := (t - c.Times[j-1]) / (c.Times[j] - c.Times[j-1])
		return (1-s)*u1 + s*u
	}
	var (
		u0         = c.spatial(c.Layers[j-2], k, w)
		t0, t1, t2 = c.Times[j-2], c.Times[j-1], c.Times[j]
	)
	return u0*(t-t1)*(t-t2)/((t0-t1)*(t0-t2)) +
		u1*(t-t0)*(t-t2)/((t1-t0)*(t1-t2)) +
		u*(t-t0)*(t-t1)/((t2-t0)*(t2-t1))
}

// WriteResult writes one line per time layer: the time followed by every coefficient
func (c *Parabolic) WriteResult(w io.Writer, precision int) (err error) {
	if !c.solved {
		return fmt.Errorf("no result to write, Solve has not completed")
	}
	format := fmt.Sprintf("%%.%dE", precision)
	for i, q := range c.Layers {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf(format, c.Times[i]))
		for _, v := range q {
			sb.WriteByte(' ')
			sb.WriteString(fmt.Sprintf(format, v))
		}
		sb.WriteByte('\n')
		if _, err = io.WriteString(w, sb.String()); err != nil {
			return
		}
	}
	return
}
