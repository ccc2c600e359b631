package Elliptic2D

import (
	"errors"
	"math"
	"testing"

	"github.com/notargets/gofem2d/fem"
	"github.com/notargets/gofem2d/geometry2D"
	"github.com/notargets/gofem2d/mesh"
	"github.com/notargets/gofem2d/model_problems"
	"github.com/notargets/gofem2d/solvers"
	"github.com/notargets/gofem2d/types"
	"github.com/notargets/gofem2d/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func firstKind(t *testing.T, value types.TimeFunc, verts ...int) *fem.BoundaryCondition {
	bc, err := fem.NewBoundaryCondition(types.BC_First, value, verts, 0)
	require.NoError(t, err)
	return bc
}

func sideCondition(t *testing.T, grid mesh.Grid, side string, kind types.BCKind, value types.TimeFunc,
	beta float64) *fem.BoundaryCondition {
	pl, err := grid.Side(side)
	require.NoError(t, err)
	bc, err := fem.NewBoundaryCondition(kind, value, pl, beta)
	require.NoError(t, err)
	bc.Name = side
	return bc
}

func TestEllipticUnitTriangle(t *testing.T) {
	m, err := mesh.NewMesh(mesh.Triangles, []geometry2D.Point{
		geometry2D.NewPoint(0, 0), geometry2D.NewPoint(1, 0), geometry2D.NewPoint(0, 1),
	}, []mesh.Element{{Verts: []int{0, 1, 2}}}, map[int]*mesh.Material{
		0: {Lambda: 1, Gamma: 1, Source: types.LinearFunc{Cx: 1}.Func()},
	})
	require.NoError(t, err)
	ux := types.LinearFunc{Cx: 1}.Func()
	c, err := NewElliptic(m, []*fem.BoundaryCondition{firstKind(t, ux, 0, 1, 2)}, model_problems.NewOptions())
	require.NoError(t, err)
	require.NoError(t, c.Solve())
	assert.InDeltaSlice(t, []float64{0, 1, 0}, c.Solution(), 1.e-9)
	assert.InDelta(t, 0.25, c.GetValue(geometry2D.NewPoint(0.25, 0.5)), 1.e-9)
	assert.True(t, math.IsNaN(c.GetValue(geometry2D.NewPoint(1, 1))))
}

func TestEllipticPatch(t *testing.T) {
	var (
		xs    = []float64{0, 0.3, 0.7, 1}
		ys    = []float64{0, 0.25, 0.6, 1}
		exact = types.LinearFunc{Cx: 1, Cy: 2}
	)
	m, grid, err := mesh.NewTriangleGridMesh(xs, ys, []mesh.Area{{XMax: 1, YMax: 1}}, map[int]*mesh.Material{
		0: {Lambda: 1, Gamma: 1, Source: exact.Func()},
	})
	require.NoError(t, err)
	check := func(c *Elliptic) {
		for i, p := range m.Vertices {
			assert.InDelta(t, exact.Eval(p, 0), c.Q[i], 1.e-9)
		}
		p := geometry2D.NewPoint(0.41, 0.77)
		assert.InDelta(t, exact.Eval(p, 0), c.GetValue(p), 1.e-9)
	}
	for _, kind := range []solvers.Kind{solvers.KindPCG, solvers.KindLOS} {
		{ // Dirichlet data on the whole boundary
			var conds []*fem.BoundaryCondition
			for _, side := range []string{"bottom", "right", "top", "left"} {
				conds = append(conds, sideCondition(t, grid, side, types.BC_First, exact.Func(), 0))
			}
			c, err := NewElliptic(m, conds, model_problems.NewOptions(model_problems.WithSolver(kind)))
			require.NoError(t, err)
			require.NoError(t, c.Solve())
			check(c)
		}
		{ // Flux on the right, exchange on the top, value elsewhere
			conds := []*fem.BoundaryCondition{
				sideCondition(t, grid, "bottom", types.BC_First, exact.Func(), 0),
				sideCondition(t, grid, "left", types.BC_First, exact.Func(), 0),
				sideCondition(t, grid, "right", types.BC_Second, types.Constant(1), 0),
				// du/dn + 2(u - (x + 3)) = 0 on y = 1
				sideCondition(t, grid, "top", types.BC_Third, types.LinearFunc{C0: 3, Cx: 1}.Func(), 2),
			}
			c, err := NewElliptic(m, conds, model_problems.NewOptions(model_problems.WithSolver(kind)))
			require.NoError(t, err)
			require.NoError(t, c.Solve())
			check(c)
			assert.Empty(t, c.BCs.Unmatched())
		}
	}
}

func TestEllipticSolve(t *testing.T) {
	m, grid, err := mesh.NewTriangleGridMesh([]float64{0, 0.5, 1}, []float64{0, 0.5, 1},
		[]mesh.Area{{XMax: 1, YMax: 1}}, map[int]*mesh.Material{
			0: {Lambda: 2, Gamma: 0.5, Source: types.Constant(3)},
		})
	require.NoError(t, err)
	{ // Pinned vertices hold their values, repeated solves agree
		conds := []*fem.BoundaryCondition{
			sideCondition(t, grid, "bottom", types.BC_First, types.Constant(2), 0),
			sideCondition(t, grid, "top", types.BC_First, types.Constant(-1), 0),
		}
		c, err := NewElliptic(m, conds, model_problems.NewOptions())
		require.NoError(t, err)
		require.NoError(t, c.Solve())
		for _, v := range []int{0, 1, 2} {
			assert.Equal(t, 2., c.Q[v])
		}
		for _, v := range []int{6, 7, 8} {
			assert.Equal(t, -1., c.Q[v])
		}
		first := append([]float64(nil), c.Q...)
		require.NoError(t, c.Solve())
		assert.Equal(t, first, c.Q)
		A := c.Matrix()
		assert.Equal(t, 1., A.Di[0])
		for k := A.Ig[3]; k < A.Ig[4]; k++ {
			assert.Equal(t, 0., A.Gg[k])
		}
	}
	{ // Conditions referencing vertices outside the mesh
		conds := []*fem.BoundaryCondition{firstKind(t, types.Constant(0), 0, 42)}
		_, err := NewElliptic(m, conds, model_problems.NewOptions())
		assert.True(t, errors.Is(err, utils.ErrMalformedBoundaryCondition))
	}
	{ // Rectangles are rejected
		r, _, err := mesh.NewRectangleMesh([]float64{0, 1}, []float64{0, 1}, []mesh.Area{{XMax: 1, YMax: 1}},
			map[int]*mesh.Material{0: {Mu: 1}})
		require.NoError(t, err)
		_, err = NewElliptic(r, nil, model_problems.NewOptions())
		assert.True(t, errors.Is(err, utils.ErrInvalidElement))
	}
}
