package fem

import (
	"errors"
	"testing"

	"github.com/notargets/gofem2d/geometry2D"
	"github.com/notargets/gofem2d/mesh"
	"github.com/notargets/gofem2d/types"
	"github.com/notargets/gofem2d/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func unitTriangleMesh(t *testing.T, mat *mesh.Material) *mesh.Mesh {
	m, err := mesh.NewMesh(mesh.Triangles, []geometry2D.Point{
		geometry2D.NewPoint(0, 0), geometry2D.NewPoint(1, 0), geometry2D.NewPoint(0, 1),
	}, []mesh.Element{{Verts: []int{0, 1, 2}}}, map[int]*mesh.Material{0: mat})
	require.NoError(t, err)
	return m
}

func TestTriangleAssembler(t *testing.T) {
	{ // Stiffness, mass and 2-1-1 load of the unit right triangle
		m := unitTriangleMesh(t, &mesh.Material{Lambda: 2, Gamma: 24, Source: types.Constant(6)})
		ta := NewTriangleAssembler(m, nil)
		ws := NewWorkspace(ta.NumLocal())
		ws.Clear()
		require.NoError(t, ta.Assemble(ws, 0, 0))
		// lambda*|detD|/2 * grad.grad + gamma*|detD|/12 (diag) or /24
		expected := mat.NewDense(3, 3, []float64{
			2 + 2, -1 + 1, -1 + 1,
			-1 + 1, 1 + 2, 0 + 1,
			-1 + 1, 0 + 1, 1 + 2,
		})
		assert.True(t, mat.EqualApprox(expected, ws.Local, 1.e-14))
		assert.InDeltaSlice(t, []float64{1, 1, 1}, ws.Load, 1.e-14)
		assert.Equal(t, []int{0, 1, 2}, ws.Global)
	}
	{ // Clockwise ordering gives the same block
		tg, err := NewTriangleGeometry([3]geometry2D.Point{
			geometry2D.NewPoint(0, 0), geometry2D.NewPoint(0, 1), geometry2D.NewPoint(1, 0),
		})
		require.NoError(t, err)
		assert.Equal(t, -1., tg.DetD)
		assert.InDelta(t, 1., tg.Stiffness(0, 0), 1.e-15)
		assert.InDelta(t, 0.5, tg.Stiffness(1, 1), 1.e-15)
		assert.InDelta(t, 1./24, tg.Mass(0, 1), 1.e-15)
		// Gradients sum to zero
		for d := 0; d < 2; d++ {
			assert.InDelta(t, 0., tg.Grad[0][d]+tg.Grad[1][d]+tg.Grad[2][d], 1.e-15)
		}
	}
	{ // Degenerate element
		_, err := NewTriangleGeometry([3]geometry2D.Point{
			geometry2D.NewPoint(0, 0), geometry2D.NewPoint(1, 1), geometry2D.NewPoint(2, 2),
		})
		assert.True(t, errors.Is(err, utils.ErrInvalidGeometry))
	}
	{ // MassScale and History hook used by time schemes
		m := unitTriangleMesh(t, &mesh.Material{Lambda: 0, Gamma: 24})
		ta := NewTriangleAssembler(m, nil)
		ta.MassScale = 0.5
		var called bool
		ta.History = func(ws *Workspace, mass *[3][3]float64) {
			called = true
			assert.Equal(t, 2., mass[0][0])
			ws.Load[0] += mass[0][1]
		}
		ws := NewWorkspace(3)
		ws.Clear()
		require.NoError(t, ta.Assemble(ws, 0, 0))
		assert.True(t, called)
		assert.InDelta(t, 1., ws.Local.At(0, 0), 1.e-15)
		assert.InDelta(t, 1., ws.Load[0], 1.e-15)
	}
}

func TestRectangleAssembler(t *testing.T) {
	verts := []geometry2D.Point{
		geometry2D.NewPoint(0, 0), geometry2D.NewPoint(2, 0),
		geometry2D.NewPoint(0, 1), geometry2D.NewPoint(2, 1),
	}
	materials := map[int]*mesh.Material{0: {Mu: 1, Source: types.Constant(4)}}
	sorted, err := mesh.NewMesh(mesh.Rectangles, verts, []mesh.Element{{Verts: []int{0, 1, 2, 3}}}, materials)
	require.NoError(t, err)
	shuffled, err := mesh.NewMesh(mesh.Rectangles, verts, []mesh.Element{{Verts: []int{3, 1, 0, 2}}}, materials)
	require.NoError(t, err)

	var blocks [2]*mat.Dense
	for n, m := range []*mesh.Mesh{sorted, shuffled} {
		ra := NewRectangleAssembler(m, nil)
		ra.Mu = func(int) float64 { return 1 }
		ws := NewWorkspace(ra.NumLocal())
		ws.Clear()
		require.NoError(t, ra.Assemble(ws, 0, 0))
		// Local rows follow geometric position whatever the storage order
		assert.Equal(t, []int{0, 1, 2, 3}, ws.Global)
		assert.InDeltaSlice(t, []float64{2, 2, 2, 2}, ws.Load, 1.e-15)
		for i := 0; i < 4; i++ {
			var rowSum float64
			for j := 0; j < 4; j++ {
				rowSum += ws.Local.At(i, j)
				assert.Equal(t, ws.Local.At(i, j), ws.Local.At(j, i))
			}
			assert.InDelta(t, 0., rowSum, 1.e-14)
		}
		blocks[n] = mat.DenseCopyOf(ws.Local)
	}
	assert.True(t, mat.Equal(blocks[0], blocks[1]))
	// a = hy/hx = 0.5, c = hx/hy = 2
	assert.InDelta(t, (2*0.5+2*2)/6., blocks[0].At(0, 0), 1.e-15)
	assert.InDelta(t, (-2*0.5+2)/6., blocks[0].At(0, 1), 1.e-15)
	assert.InDelta(t, (0.5-2*2)/6., blocks[0].At(0, 2), 1.e-15)
	assert.InDelta(t, (-0.5-2)/6., blocks[0].At(0, 3), 1.e-15)

	{ // Default permeability is mu0 times the relative permeability
		ra := NewRectangleAssembler(sorted, nil)
		assert.Equal(t, utils.Mu0, ra.Mu(0))
	}
	{
		w := BilinearWeights(0, 2, 0, 1, 0.5, 0.25)
		assert.InDeltaSlice(t, []float64{0.5625, 0.1875, 0.1875, 0.0625}, w[:], 1.e-15)
	}
}

func TestBoundaryConditions(t *testing.T) {
	value := types.Steady(func(p geometry2D.Point) float64 { return p.X[0] })
	{ // Validation
		_, err := NewBoundaryCondition(types.BC_Second, value, []int{1}, 0)
		assert.True(t, errors.Is(err, utils.ErrMalformedBoundaryCondition))
		_, err = NewBoundaryCondition(types.BC_Third, value, []int{1, 2}, 0)
		assert.True(t, errors.Is(err, utils.ErrMalformedBoundaryCondition))
		_, err = NewBoundaryCondition(types.BC_First, nil, []int{1}, 0)
		assert.True(t, errors.Is(err, utils.ErrMalformedBoundaryCondition))
		_, err = NewBoundaryCondition(types.BC_First, value, nil, 0)
		assert.True(t, errors.Is(err, utils.ErrMalformedBoundaryCondition))
		_, err = NewBoundaryCondition(types.BC_None, value, []int{1, 2}, 0)
		assert.True(t, errors.Is(err, utils.ErrMalformedBoundaryCondition))
	}
	{ // Consecutive pairs only, in either order
		bc, err := NewBoundaryCondition(types.BC_Second, value, []int{4, 7, 2}, 0)
		require.NoError(t, err)
		assert.True(t, bc.CheckEdge(4, 7))
		assert.True(t, bc.CheckEdge(7, 4))
		assert.True(t, bc.CheckEdge(2, 7))
		assert.False(t, bc.CheckEdge(4, 2))
		assert.False(t, bc.CheckEdge(4, 4))
	}
	{ // Second and third kind folding on the edge (0,0)-(1,0) of the unit triangle
		m := unitTriangleMesh(t, &mesh.Material{Lambda: 1})
		flux, err := NewBoundaryCondition(types.BC_Second, value, []int{0, 1}, 0)
		require.NoError(t, err)
		robin, err := NewBoundaryCondition(types.BC_Third, types.Constant(3), []int{1, 0}, 2)
		require.NoError(t, err)
		lost, err := NewBoundaryCondition(types.BC_Second, value, []int{5, 6}, 0)
		require.NoError(t, err)
		bcs := NewBoundarySet([]*BoundaryCondition{flux, robin, lost})
		ta := NewTriangleAssembler(m, bcs)
		ws := NewWorkspace(3)
		ws.Clear()
		require.NoError(t, ta.Assemble(ws, 0, 0))
		// flux: 1/6*(2*0+1), 1/6*(0+2*1); robin h = 2/6: 2h*... load h*(3*3)
		assert.InDelta(t, 1./6+3., ws.Load[0], 1.e-14)
		assert.InDelta(t, 2./6+3., ws.Load[1], 1.e-14)
		assert.InDelta(t, 0., ws.Load[2], 1.e-14)
		assert.InDelta(t, 1+4./6, ws.Local.At(0, 0), 1.e-14)
		assert.InDelta(t, -0.5+2./6, ws.Local.At(0, 1), 1.e-14)
		assert.InDelta(t, ws.Local.At(0, 1), ws.Local.At(1, 0), 1.e-15)
		assert.Equal(t, []*BoundaryCondition{lost}, bcs.Unmatched())
	}
}

func TestApplyFirstKind(t *testing.T) {
	A, err := utils.NewSymmSparseFromElements(3, [][]int{{0, 1, 2}})
	require.NoError(t, err)
	copy(A.Di, []float64{4, 5, 6})
	copy(A.Gg, []float64{1, 2, 3}) // (1,0) (2,0) (2,1)
	b := []float64{10, 20, 30}
	verts := []geometry2D.Point{geometry2D.NewPoint(0, 0), geometry2D.NewPoint(1, 0), geometry2D.NewPoint(0, 1)}
	first, err := NewBoundaryCondition(types.BC_First, types.Constant(7), []int{1}, 0)
	require.NoError(t, err)
	later, err := NewBoundaryCondition(types.BC_First, types.Constant(-1), []int{1}, 0)
	require.NoError(t, err)
	bcs := NewBoundarySet([]*BoundaryCondition{first, later})
	require.NoError(t, bcs.ApplyFirstKind(A, b, verts, 0))

	// The later condition wins, row and column 1 eliminated
	assert.Equal(t, 1., A.Di[1])
	assert.Equal(t, -1., b[1])
	assert.Equal(t, 0., A.At(1, 0))
	assert.Equal(t, 0., A.At(2, 1))
	assert.Equal(t, 2., A.At(2, 0))
	assert.Equal(t, 10.+1, b[0])
	assert.Equal(t, 30.+3, b[2])
	// A second application changes nothing
	require.NoError(t, bcs.ApplyFirstKind(A, b, verts, 0))
	assert.Equal(t, []float64{11, -1, 33}, b)

	bad, err := NewBoundaryCondition(types.BC_First, types.Constant(0), []int{9}, 0)
	require.NoError(t, err)
	err = NewBoundarySet([]*BoundaryCondition{bad}).ApplyFirstKind(A, b, verts, 0)
	assert.True(t, errors.Is(err, utils.ErrMalformedBoundaryCondition))
}

func TestAssembleSystem(t *testing.T) {
	m := unitTriangleMesh(t, &mesh.Material{Lambda: 1, Gamma: 1})
	A, err := utils.NewSymmSparseFromElements(m.NumVertices(), m.Connectivity())
	require.NoError(t, err)
	b := make([]float64, 3)
	ta := NewTriangleAssembler(m, nil)
	require.Error(t, AssembleSystem(ta, nil, NewWorkspace(4), A, b, 1, 0))
	ws := NewWorkspace(3)
	require.NoError(t, AssembleSystem(ta, nil, ws, A, b, 1, 0))
	first := A.Clone()
	// Reassembly clears the previous values
	require.NoError(t, AssembleSystem(ta, nil, ws, A, b, 1, 0))
	assert.Equal(t, first.Di, A.Di)
	assert.Equal(t, first.Gg, A.Gg)
	assert.InDelta(t, 1+1./12, A.Di[0], 1.e-15)
	assert.InDelta(t, -0.5+1./24, A.At(0, 1), 1.e-15)
}
