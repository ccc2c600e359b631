/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"math"

	"github.com/spf13/cobra"

	"github.com/notargets/gofem2d/fem"
	"github.com/notargets/gofem2d/mesh"
	"github.com/notargets/gofem2d/model_problems"
	"github.com/notargets/gofem2d/model_problems/Elliptic2D"
	"github.com/notargets/gofem2d/readfiles"
	"github.com/notargets/gofem2d/types"
	"github.com/notargets/gofem2d/utils"
)

// PatchCmd represents the patch command
var PatchCmd = &cobra.Command{
	Use:   "patch",
	Short: "Patch test of a triangle mesh file",
	Long: `
Solves the Laplace equation with the exact solutions u = x and u = y on a "v/e/b" triangle mesh.
The border line carries First kind values except its last two edges, which carry the exact normal
flux as Second kind conditions. A correct mesh reproduces both solutions to solver precision.

gofem2d patch -F mesh.txt`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			gridFile string
			tol      float64
			rc       RunConfig
			tm       *readfiles.TriangleMesh
		)
		if gridFile, err = cmd.Flags().GetString("gridFile"); err != nil {
			return
		}
		if len(gridFile) == 0 {
			return fmt.Errorf("must supply a grid file (-F, --gridFile) in v/e/b triangle format")
		}
		if tol, err = cmd.Flags().GetFloat64("tolerance"); err != nil {
			return
		}
		if rc, err = LoadRunConfig(); err != nil {
			return
		}
		if tm, err = readfiles.ReadTriangleMeshFile(gridFile); err != nil {
			return
		}
		return rc.Run(func() error {
			maxErr, err := RunPatch(tm, rc, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if maxErr > tol {
				return fmt.Errorf("patch test failed, max error %8.5e exceeds %8.5e", maxErr, tol)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(PatchCmd)
	PatchCmd.Flags().StringP("gridFile", "F", "", "Grid file to read in v/e/b triangle format")
	PatchCmd.Flags().Float64P("tolerance", "t", 1.e-6, "largest accepted nodal error")
}

// patchConditions pins the border to exact except its last two edges, which get the normal flux of exact
func patchConditions(tm *readfiles.TriangleMesh, exact types.LinearFunc) (conds []*fem.BoundaryCondition,
	err error) {
	var (
		border = tm.Border
		nb     = len(border)
		bc     *fem.BoundaryCondition
		sign   = tm.Orientation()
	)
	if bc, err = fem.NewBoundaryCondition(types.BC_First, exact.Func(), border[:nb-2], 0); err != nil {
		return
	}
	conds = append(conds, bc)
	for i := nb - 3; i < nb-1; i++ {
		var (
			a, b   = tm.Vertices[border[i]], tm.Vertices[border[i+1]]
			dx, dy = b.X[0] - a.X[0], b.X[1] - a.X[1]
			l      = math.Hypot(dx, dy)
			// outward for a counterclockwise border
			nx, ny = sign * dy / l, -sign * dx / l
			flux   = exact.Cx*nx + exact.Cy*ny
		)
		if bc, err = fem.NewBoundaryCondition(types.BC_Second, types.Constant(flux),
			[]int{border[i], border[i+1]}, 0); err != nil {
			return
		}
		conds = append(conds, bc)
	}
	return
}

// RunPatch solves both patch problems and reports the largest nodal error
func RunPatch(tm *readfiles.TriangleMesh, rc RunConfig, w io.Writer) (maxErr float64, err error) {
	var m *mesh.Mesh
	if len(tm.Border) < 4 {
		return 0, fmt.Errorf("patch test needs a border of at least three edges: %w", utils.ErrMalformedBoundaryCondition)
	}
	materials := make(map[int]*mesh.Material)
	for _, el := range tm.Elements {
		materials[el.Material] = &mesh.Material{Lambda: 1}
	}
	if m, err = tm.Mesh(materials); err != nil {
		return
	}
	opts := model_problems.NewOptions(
		model_problems.WithSolver(rc.Solver),
		model_problems.WithSettings(rc.Settings),
		model_problems.WithVerbose(rc.Verbose),
	)
	for _, exact := range []types.LinearFunc{{Cx: 1}, {Cy: 1}} {
		var (
			conds []*fem.BoundaryCondition
			c     *Elliptic2D.Elliptic
			worst float64
		)
		if conds, err = patchConditions(tm, exact); err != nil {
			return
		}
		if c, err = Elliptic2D.NewElliptic(m, conds, opts); err != nil {
			return
		}
		if err = c.Solve(); err != nil {
			return
		}
		for i, p := range m.Vertices {
			worst = math.Max(worst, math.Abs(c.Q[i]-exact.Eval(p, 0)))
		}
		if _, err = fmt.Fprintf(w, "u = %s: %d vertices, max error %8.5e\n", exact, m.NumVertices(), worst); err != nil {
			return
		}
		if rc.Verbose {
			if err = writeNodal(w, m.Vertices, c.Q); err != nil {
				return
			}
		}
		maxErr = math.Max(maxErr, worst)
	}
	return
}
