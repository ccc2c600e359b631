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
	"os"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/gofem2d/InputParameters"
	"github.com/notargets/gofem2d/model_problems"
	"github.com/notargets/gofem2d/solvers"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gofem2d",
	Short: "Two dimensional finite element solver",
	Long: `
Solves elliptic, parabolic and magnetostatic model problems with linear triangles and bilinear
rectangles, using sparse PCG or LOS iterative solvers.

gofem2d elliptic -I input.yaml`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.gofem2d.yaml)")
	pf.BoolP("verbose", "v", false, "print assembly and solver statistics")
	pf.String("solver", "pcg", "linear solver, pcg or los")
	pf.Float64("epsilon", 0, "linear solver tolerance, 0 keeps the solver default")
	pf.Int("maxSteps", 0, "linear solver iteration cap, 0 keeps the solver default")
	pf.String("profile", "", "write a cpu or mem profile of the run")
	pf.Bool("perf", false, "count CPU instructions of the solve (Linux)")
	pf.Bool("dump", false, "print the assembled matrix")
	for key, flag := range map[string]string{
		"verbose":         "verbose",
		"solver.type":     "solver",
		"solver.epsilon":  "epsilon",
		"solver.maxSteps": "maxSteps",
		"profile":         "profile",
		"perf":            "perf",
		"dump":            "dump",
	} {
		if err := viper.BindPFlag(key, pf.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".gofem2d")
	}
	viper.SetEnvPrefix("GOFEM2D")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil && viper.GetBool("verbose") {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

// RunConfig holds the settings shared by every problem command
type RunConfig struct {
	Verbose  bool
	Dump     bool
	Perf     bool
	Profile  string
	Solver   solvers.Kind
	Settings solvers.Settings
}

func LoadRunConfig() (rc RunConfig, err error) {
	rc = RunConfig{
		Verbose: viper.GetBool("verbose"),
		Dump:    viper.GetBool("dump"),
		Perf:    viper.GetBool("perf"),
		Profile: viper.GetString("profile"),
		Settings: solvers.Settings{
			Epsilon:  viper.GetFloat64("solver.epsilon"),
			MaxSteps: viper.GetInt("solver.maxSteps"),
		},
	}
	if rc.Solver, err = solvers.ParseKind(viper.GetString("solver.type")); err != nil {
		return
	}
	switch rc.Profile {
	case "", "cpu", "mem":
	default:
		err = fmt.Errorf("unknown profile mode [%s], use cpu or mem", rc.Profile)
	}
	return
}

// Options merges the command line solver settings with those of the input file, the input wins
func (rc RunConfig) Options(ip *InputParameters.InputParameters2D) (opts model_problems.Options, err error) {
	var kind solvers.Kind
	if kind, err = ip.SolverKind(rc.Solver); err != nil {
		return
	}
	opts = model_problems.NewOptions(
		model_problems.WithSolver(kind),
		model_problems.WithSettings(ip.SolverSettings(rc.Settings)),
		model_problems.WithVerbose(rc.Verbose),
	)
	return
}

// Run executes f under the requested profiler and instruction counter
func (rc RunConfig) Run(f func() error) error {
	switch rc.Profile {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	}
	if !rc.Perf {
		return f()
	}
	instructions, err := countInstructions(f)
	if err != nil {
		return err
	}
	fmt.Printf("%d CPU instructions\n", instructions)
	return nil
}

func ReadInput(filename string) (ip *InputParameters.InputParameters2D, err error) {
	var data []byte
	if len(filename) == 0 {
		return nil, fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile) in YAML format")
	}
	if data, err = os.ReadFile(filename); err != nil {
		return nil, err
	}
	ip = &InputParameters.InputParameters2D{}
	if err = ip.Parse(data); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", filename, err)
	}
	return
}

// setup reads the input file named by the command flags and prepares the shared settings
func setup(cmd *cobra.Command) (ip *InputParameters.InputParameters2D, rc RunConfig, err error) {
	var inputFile string
	if inputFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
		return
	}
	if ip, err = ReadInput(inputFile); err != nil {
		return
	}
	if rc, err = LoadRunConfig(); err != nil {
		return
	}
	if rc.Verbose {
		ip.Print()
	}
	return
}

func addInputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file describing the mesh, materials and boundary conditions")
}
