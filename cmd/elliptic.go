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

	"github.com/spf13/cobra"

	"github.com/notargets/gofem2d/InputParameters"
	"github.com/notargets/gofem2d/geometry2D"
	"github.com/notargets/gofem2d/model_problems/Elliptic2D"
	"github.com/notargets/gofem2d/utils"
)

// EllipticCmd represents the elliptic command
var EllipticCmd = &cobra.Command{
	Use:   "elliptic",
	Short: "Steady diffusion-reaction problem on linear triangles",
	Long: `
Solves -div(lambda grad u) + gamma u = f with First, Second and Third kind boundary conditions.
Prints the value at every probe point of the input file, or every nodal value when there are none.

gofem2d elliptic -I input.yaml`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ip, rc, err := setup(cmd)
		if err != nil {
			return
		}
		return rc.Run(func() error {
			_, err := RunElliptic(ip, rc, cmd.OutOrStdout())
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(EllipticCmd)
	addInputFlag(EllipticCmd)
}

func RunElliptic(ip *InputParameters.InputParameters2D, rc RunConfig, w io.Writer) (c *Elliptic2D.Elliptic, err error) {
	m, markers, err := ip.BuildMesh(rc.Verbose)
	if err != nil {
		return
	}
	conds, err := ip.BuildConditions(markers)
	if err != nil {
		return
	}
	opts, err := rc.Options(ip)
	if err != nil {
		return
	}
	if c, err = Elliptic2D.NewElliptic(m, conds, opts); err != nil {
		return
	}
	if err = c.Solve(); err != nil {
		return
	}
	if rc.Dump {
		dumpMatrix(c.Matrix())
	}
	if len(ip.Probes) == 0 {
		err = writeNodal(w, m.Vertices, c.Solution())
		return
	}
	for _, xy := range ip.Probes {
		if _, err = fmt.Fprintf(w, "%12.5e %12.5e %15.8e\n", xy[0], xy[1],
			c.GetValue(geometry2D.NewPoint(xy[0], xy[1]))); err != nil {
			return
		}
	}
	return
}

func writeNodal(w io.Writer, vertices []geometry2D.Point, q []float64) (err error) {
	for i, p := range vertices {
		if _, err = fmt.Fprintf(w, "%5d %12.5e %12.5e %15.8e\n", i, p.X[0], p.X[1], q[i]); err != nil {
			return
		}
	}
	return
}

func dumpMatrix(A *utils.SymmSparse) {
	csr := A.ToCSR()
	csr.SetName("A")
	csr.Print()
}
