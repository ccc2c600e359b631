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
	"github.com/notargets/gofem2d/model_problems/Parabolic2D"
)

// ParabolicCmd represents the parabolic command
var ParabolicCmd = &cobra.Command{
	Use:   "parabolic",
	Short: "Time dependent diffusion problem with the three layer implicit scheme",
	Long: `
Solves sigma du/dt - div(lambda grad u) = f over the time layers of the input file. Layers 0 and 1
come from the Initial function. Writes one line per layer, the time followed by every nodal value,
then the probe values at every layer time.

gofem2d parabolic -I input.yaml -p 5`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ip, rc, err := setup(cmd)
		if err != nil {
			return
		}
		precision, err := cmd.Flags().GetInt("precision")
		if err != nil {
			return
		}
		return rc.Run(func() error {
			_, err := RunParabolic(ip, rc, precision, cmd.OutOrStdout())
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(ParabolicCmd)
	addInputFlag(ParabolicCmd)
	ParabolicCmd.Flags().IntP("precision", "p", 5, "digits after the decimal point in the result file")
}

func RunParabolic(ip *InputParameters.InputParameters2D, rc RunConfig, precision int,
	w io.Writer) (c *Parabolic2D.Parabolic, err error) {
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
	if c, err = Parabolic2D.NewParabolic(m, conds, ip.Times, ip.Initial.Func(), opts); err != nil {
		return
	}
	if err = c.Solve(); err != nil {
		return
	}
	if rc.Dump {
		dumpMatrix(c.A)
	}
	if err = c.WriteResult(w, precision); err != nil {
		return
	}
	for _, xy := range ip.Probes {
		p := geometry2D.NewPoint(xy[0], xy[1])
		for _, t := range c.Times {
			if _, err = fmt.Fprintf(w, "%12.5e %12.5e %12.5e %15.8e\n", t, xy[0], xy[1], c.GetValue(p, t)); err != nil {
				return
			}
		}
	}
	return
}
