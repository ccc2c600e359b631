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
	"github.com/notargets/gofem2d/model_problems/Magnetic2D"
)

// MagneticCmd represents the magnetic command
var MagneticCmd = &cobra.Command{
	Use:   "magnetic",
	Short: "Magnetostatic vector potential on bilinear rectangles",
	Long: `
Solves -div(1/mu grad Az) = J on a rectangle mesh. Materials with a permeability curve make the
problem nonlinear, it is then solved by relaxed fixed point iteration. Probe points report Az and
the flux density B = (dAz/dy, -dAz/dx).

gofem2d magnetic -I input.yaml`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ip, rc, err := setup(cmd)
		if err != nil {
			return
		}
		return rc.Run(func() error {
			_, err := RunMagnetic(ip, rc, cmd.OutOrStdout())
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(MagneticCmd)
	addInputFlag(MagneticCmd)
}

func RunMagnetic(ip *InputParameters.InputParameters2D, rc RunConfig, w io.Writer) (c *Magnetic2D.Magnetic, err error) {
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
	if c, err = Magnetic2D.NewMagnetic(m, conds, opts); err != nil {
		return
	}
	if m.HasNonLinear() {
		var res Magnetic2D.NonLinearResult
		res, err = c.SolveNonLinear(ip.NonLinearParams())
		if rc.Verbose || err != nil {
			fmt.Printf("Nonlinear iteration %s after %d iterations, residual^2 = %8.5e\n",
				res.State, res.Iterations, res.Residual)
		}
		if err != nil {
			return
		}
	} else if err = c.SolveLinear(nil); err != nil {
		return
	}
	if rc.Dump {
		dumpMatrix(c.A)
	}
	if len(ip.Probes) == 0 {
		err = writeNodal(w, m.Vertices, c.Solution())
		return
	}
	for _, xy := range ip.Probes {
		az, B, ferr := c.GetFieldValue(geometry2D.NewPoint(xy[0], xy[1]))
		if ferr != nil {
			if _, err = fmt.Fprintf(w, "%12.5e %12.5e %v\n", xy[0], xy[1], ferr); err != nil {
				return
			}
			continue
		}
		if _, err = fmt.Fprintf(w, "%12.5e %12.5e %15.8e %15.8e %15.8e\n", xy[0], xy[1], az, B[0], B[1]); err != nil {
			return
		}
	}
	return
}
