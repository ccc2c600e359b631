package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/notargets/gofem2d/InputParameters"
	"github.com/notargets/gofem2d/geometry2D"
	"github.com/notargets/gofem2d/readfiles"
	"github.com/notargets/gofem2d/solvers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseInput(t *testing.T, data string) *InputParameters.InputParameters2D {
	ip := &InputParameters.InputParameters2D{}
	require.NoError(t, ip.Parse([]byte(data)))
	return ip
}

const ellipticInput = `
Title: Linear field
Mesh:
  Type: trianglegrid
  XLines: [0, 0.5, 1]
  YLines: [0, 0.5, 1]
Materials:
  0: {Lambda: 1}
BCs:
  - {Kind: first, Marker: bottom, Value: {Cx: 1, Cy: 2}}
  - {Kind: first, Marker: right, Value: {Cx: 1, Cy: 2}}
  - {Kind: first, Marker: top, Value: {Cx: 1, Cy: 2}}
  - {Kind: first, Marker: left, Value: {Cx: 1, Cy: 2}}
Probes:
  - [0.25, 0.25]
  - [2, 2]
`

func TestRunElliptic(t *testing.T) {
	var buf bytes.Buffer
	c, err := RunElliptic(parseInput(t, ellipticInput), RunConfig{Solver: solvers.KindLOS}, &buf)
	require.NoError(t, err)
	assert.Equal(t, "los", c.Solver.Name())
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var x, y, u float64
	_, err = fmt.Sscanf(lines[0], "%g %g %g", &x, &y, &u)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, u, 1.e-9)
	assert.Contains(t, lines[1], "NaN")
	{ // Without probes every vertex is printed
		ip := parseInput(t, ellipticInput)
		ip.Probes = nil
		buf.Reset()
		_, err = RunElliptic(ip, RunConfig{}, &buf)
		require.NoError(t, err)
		assert.Len(t, strings.Split(strings.TrimSpace(buf.String()), "\n"), 9)
	}
	{ // The input file wins over the command line
		ip := parseInput(t, ellipticInput)
		ip.Solver.Type = "cg"
		c, err = RunElliptic(ip, RunConfig{Solver: solvers.KindLOS}, &buf)
		require.NoError(t, err)
		assert.Equal(t, "pcg", c.Solver.Name())
	}
}

func TestRunParabolic(t *testing.T) {
	ip := parseInput(t, `
Mesh:
  Type: trianglegrid
  XLines: [0, 1]
  YLines: [0, 1]
Materials:
  0: {Lambda: 1, Gamma: 1}
BCs:
  - {Kind: first, Vertices: [0, 1, 3, 2, 0], Value: {C0: 1}}
Times: [0, 0.5, 1]
Initial: {C0: 1}
Probes:
  - [0.5, 0.25]
`)
	var buf bytes.Buffer
	_, err := RunParabolic(ip, RunConfig{}, 3, &buf)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "0.000E+00 1.000E+00 1.000E+00 1.000E+00 1.000E+00", lines[0])
	assert.Equal(t, "1.000E+00 1.000E+00 1.000E+00 1.000E+00 1.000E+00", lines[2])
	var tt, x, y, u float64
	_, err = fmt.Sscanf(lines[5], "%g %g %g %g", &tt, &x, &y, &u)
	require.NoError(t, err)
	assert.Equal(t, 1., tt)
	assert.InDelta(t, 1., u, 1.e-9)

	ip.Times = []float64{0}
	_, err = RunParabolic(ip, RunConfig{}, 3, &buf)
	assert.Error(t, err)
}

const magneticInput = `
Mesh:
  Type: rectangle
  XLines: [0, 0.25, 0.5, 1]
  YLines: [0, 0.5, 1]
Materials:
  0: {Mu: 1}
BCs:
  - {Kind: first, Marker: bottom, Value: {Cx: 1}}
  - {Kind: first, Marker: right, Value: {Cx: 1}}
  - {Kind: first, Marker: top, Value: {Cx: 1}}
  - {Kind: first, Marker: left, Value: {Cx: 1}}
Probes:
  - [0.6, 0.3]
  - [3, 3]
`

func TestRunMagnetic(t *testing.T) {
	var buf bytes.Buffer
	_, err := RunMagnetic(parseInput(t, magneticInput), RunConfig{}, &buf)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var x, y, az, bx, by float64
	_, err = fmt.Sscanf(lines[0], "%g %g %g %g %g", &x, &y, &az, &bx, &by)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, az, 1.e-9)
	assert.InDelta(t, 0., bx, 1.e-5)
	assert.InDelta(t, -1., by, 1.e-5)
	assert.Contains(t, lines[1], "point not found")
	{ // Nonlinear materials go through the relaxed iteration
		ip := parseInput(t, magneticInput)
		ip.Materials[0] = InputParameters.MaterialInput{CurveB: []float64{0, 10}, CurveMu: []float64{1, 1}}
		buf.Reset()
		c, err := RunMagnetic(ip, RunConfig{}, &buf)
		require.NoError(t, err)
		assert.InDelta(t, 0.25, c.GetValue(geometry2D.NewPoint(0.25, 0.75)), 1.e-6)
	}
	{ // Triangles are rejected
		ip := parseInput(t, magneticInput)
		ip.Mesh.Type = "trianglegrid"
		_, err = RunMagnetic(ip, RunConfig{}, &buf)
		assert.Error(t, err)
	}
}

const patchMesh = `
v 0 0
v 0.5 0
v 1 0
v 0 0.5
v 0.6 0.45
v 1 0.5
v 0 1
v 0.5 1
v 1 1
e 0 1 4
e 0 4 3
e 1 2 5
e 1 5 4
e 3 4 7
e 3 7 6
e 4 5 8
e 4 8 7
b 0 1 2 5 8 7 6 3 0
`

func TestRunPatch(t *testing.T) {
	tm, err := readfiles.ReadTriangleMesh(strings.NewReader(patchMesh))
	require.NoError(t, err)
	var buf bytes.Buffer
	maxErr, err := RunPatch(tm, RunConfig{}, &buf)
	require.NoError(t, err)
	assert.Less(t, maxErr, 1.e-8)
	assert.Equal(t, 2, strings.Count(buf.String(), "max error"))
	{ // Clockwise borders get the same outward normals
		tm, err := readfiles.ReadTriangleMesh(strings.NewReader(
			strings.Replace(patchMesh, "b 0 1 2 5 8 7 6 3 0", "b 0 3 6 7 8 5 2 1 0", 1)))
		require.NoError(t, err)
		maxErr, err = RunPatch(tm, RunConfig{Solver: solvers.KindLOS}, &buf)
		require.NoError(t, err)
		assert.Less(t, maxErr, 1.e-8)
	}
	{
		tm := readfiles.NewTriangleMesh()
		_, err = RunPatch(tm, RunConfig{}, &buf)
		assert.Error(t, err)
	}
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "elliptic.yaml")
	require.NoError(t, os.WriteFile(input, []byte(ellipticInput), 0644))
	meshFile := filepath.Join(dir, "patch.txt")
	require.NoError(t, os.WriteFile(meshFile, []byte(patchMesh), 0644))
	{
		var buf bytes.Buffer
		rootCmd.SetOut(&buf)
		rootCmd.SetArgs([]string{"elliptic", "-I", input, "--solver", "los"})
		require.NoError(t, rootCmd.Execute())
		assert.Contains(t, buf.String(), "7.50000000e-01")
	}
	{
		var buf bytes.Buffer
		rootCmd.SetOut(&buf)
		rootCmd.SetArgs([]string{"patch", "-F", meshFile})
		require.NoError(t, rootCmd.Execute())
		assert.Contains(t, buf.String(), "max error")
	}
	{
		rootCmd.SetArgs([]string{"elliptic", "-I", filepath.Join(dir, "missing.yaml")})
		assert.Error(t, rootCmd.Execute())
	}
	{
		viper.Set("profile", "gpu")
		_, err := LoadRunConfig()
		assert.Error(t, err)
		viper.Set("profile", "")
		viper.Set("solver.type", "gmres")
		_, err = LoadRunConfig()
		assert.Error(t, err)
		viper.Set("solver.type", "pcg")
		rc, err := LoadRunConfig()
		require.NoError(t, err)
		assert.Equal(t, solvers.KindPCG, rc.Solver)
	}
}
