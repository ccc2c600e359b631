package InputParameters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/notargets/gofem2d/geometry2D"
	"github.com/notargets/gofem2d/mesh"
	"github.com/notargets/gofem2d/solvers"
	"github.com/notargets/gofem2d/types"
	"github.com/notargets/gofem2d/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rectangleInput = []byte(`
Title: Strip
Mesh:
  Type: rectangle
  XLines: [0, 0.5, 1]
  YLines: [0, 1]
  Areas:
    - {XMin: 0, XMax: 1, YMin: 0, YMax: 1, Material: 0}
    - {XMin: 0.5, XMax: 1, YMin: 0, YMax: 1, Material: 1}
Materials:
  0:
    Lambda: 1
    Mu: 1
    Source: {C0: 2}
  1:
    CurveB: [0, 1]
    CurveMu: [1000, 500]
BCs:
  - Kind: First
    Marker: left
    Value: {Cx: 1}
  - Kind: neumann
    Marker: right
    Value: {C0: 1}
  - Kind: Third
    Vertices: [0, 1]
    Beta: 2
    Value: {C0: 1, Ct: 1}
Solver:
  Type: los
  Epsilon: 1.e-10
NonLinear:
  MaxIter: 10
Probes:
  - [0.5, 0.5]
`)

func TestInputParameters(t *testing.T) {
	var ip InputParameters2D
	require.NoError(t, ip.Parse(rectangleInput))
	ip.Print()
	{
		assert.Equal(t, "Strip", ip.Title)
		assert.Equal(t, []float64{0, 0.5, 1}, ip.Mesh.XLines)
		require.Contains(t, ip.Materials, 1)
		assert.Equal(t, 2., ip.Materials[0].Source.C0)
		assert.Equal(t, []float64{1000, 500}, ip.Materials[1].CurveMu)
		require.Len(t, ip.BCs, 3)
		assert.Equal(t, 2., ip.BCs[2].Beta)
		assert.Equal(t, [][2]float64{{0.5, 0.5}}, ip.Probes)
	}
	{
		m, markers, err := ip.BuildMesh(false)
		require.NoError(t, err)
		assert.Equal(t, mesh.Rectangles, m.Kind)
		assert.Equal(t, 6, m.NumVertices())
		assert.Equal(t, []types.Polyline{{0, 3}}, markers["left"])
		assert.Equal(t, []types.Polyline{{0, 1, 2}}, markers["bottom"])
		assert.True(t, m.HasNonLinear())
		assert.Equal(t, 0, m.Elements[0].Material)
		assert.Equal(t, 1, m.Elements[1].Material)
		assert.Equal(t, 2., m.Material(0).SourceAt(geometry2D.NewPoint(0, 0), 0))

		conds, err := ip.BuildConditions(markers)
		require.NoError(t, err)
		require.Len(t, conds, 3)
		assert.Equal(t, types.BC_First, conds[0].Kind)
		assert.Equal(t, "left", conds[0].Name)
		assert.Equal(t, 2., conds[0].Value(geometry2D.NewPoint(2, 0), 0))
		assert.Equal(t, types.BC_Second, conds[1].Kind)
		assert.Equal(t, types.Polyline{2, 5}, conds[1].Vertices)
		assert.Equal(t, types.BC_Third, conds[2].Kind)
		assert.Equal(t, 1.5, conds[2].Value(geometry2D.NewPoint(0, 0), 0.5))
	}
	{
		k, err := ip.SolverKind(solvers.KindPCG)
		require.NoError(t, err)
		assert.Equal(t, solvers.KindLOS, k)
		s := ip.SolverSettings(solvers.DefaultLOSSettings())
		assert.Equal(t, 1.e-10, s.Epsilon)
		assert.Equal(t, 10000, s.MaxSteps)
		params := ip.NonLinearParams()
		assert.Equal(t, 10, params.MaxIter)
		assert.Equal(t, 1.e-8, params.IterEps)
		assert.Equal(t, 0.5, params.Relaxation)
	}
	{ // Without areas the whole grid is material 0
		whole := ip
		whole.Mesh.Areas = nil
		m, _, err := whole.BuildMesh(false)
		require.NoError(t, err)
		require.Equal(t, 2, m.NumElements())
		for _, el := range m.Elements {
			assert.Equal(t, 0, el.Material)
		}
		assert.False(t, m.HasNonLinear())
	}
	{ // Kinds taken from marker names
		ipm := InputParameters2D{BCs: []BCInput{{Marker: "Robin-outer", Beta: 1}}}
		conds, err := ipm.BuildConditions(map[string][]types.Polyline{"Robin-outer": {{0, 1}, {4, 5, 6}}})
		require.NoError(t, err)
		require.Len(t, conds, 2)
		assert.Equal(t, types.BC_Third, conds[1].Kind)
		assert.Equal(t, types.Polyline{4, 5, 6}, conds[1].Vertices)

		ipm.BCs[0].Marker = "wall"
		_, err = ipm.BuildConditions(map[string][]types.Polyline{"wall": {{0, 1}}})
		assert.ErrorIs(t, err, utils.ErrMalformedBoundaryCondition)
		ipm.BCs[0].Kind = "first"
		_, err = ipm.BuildConditions(map[string][]types.Polyline{})
		assert.ErrorIs(t, err, utils.ErrMalformedBoundaryCondition)
		ipm.BCs[0].Kind = "periodic"
		_, err = ipm.BuildConditions(map[string][]types.Polyline{"wall": {{0, 1}}})
		assert.Error(t, err)
	}
	{ // Bad meshes and materials
		bad := ip
		bad.Mesh.Type = "hexahedra"
		_, _, err := bad.BuildMesh(false)
		assert.Error(t, err)
		bad.Materials = nil
		_, _, err = bad.BuildMesh(false)
		assert.Error(t, err)
		bad = InputParameters2D{Solver: SolverInput{Type: "gmres"}}
		_, err = bad.SolverKind(solvers.KindPCG)
		assert.Error(t, err)
	}
}

func TestTriangleFileInput(t *testing.T) {
	dir := t.TempDir()
	meshFile := filepath.Join(dir, "square.txt")
	require.NoError(t, os.WriteFile(meshFile, []byte("v 0 0\nv 1 0\nv 1 1\nv 0 1\ne 0 1 2\ne 0 2 3\nb 0 1 2 3 0\n"), 0644))
	curveFile := filepath.Join(dir, "steel.txt")
	require.NoError(t, os.WriteFile(curveFile, []byte("2\n1000 0\n400 2\n"), 0644))
	var ip InputParameters2D
	require.NoError(t, ip.Parse([]byte(`
Mesh:
  Type: triangle
  File: `+meshFile+`
Materials:
  0: {Lambda: 1, CurveFile: `+curveFile+`}
BCs:
  - {Kind: dirichlet, Marker: border, Value: {Cy: 1}}
`)))
	m, markers, err := ip.BuildMesh(false)
	require.NoError(t, err)
	assert.Equal(t, mesh.Triangles, m.Kind)
	assert.Equal(t, []types.Polyline{{0, 1, 2, 3, 0}}, markers["border"])
	assert.Equal(t, 700., m.Material(0).Curve.MuAt(1))
	conds, err := ip.BuildConditions(markers)
	require.NoError(t, err)
	require.Len(t, conds, 1)
	assert.Equal(t, types.BC_First, conds[0].Kind)

	ip.Mesh.File = filepath.Join(dir, "missing.txt")
	_, _, err = ip.BuildMesh(false)
	assert.Error(t, err)
}
