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
	"log/slog"
	"os"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/ibex/InputParameters"
	"github.com/notargets/ibex/output"
	"github.com/notargets/ibex/spatial"
	"github.com/notargets/ibex/utils"
)

type IntegrateRun struct {
	InputFile string
	OutputDir string
	Parallel  int
	Profile   bool
}

// IntegrateCmd represents the integrate command
var IntegrateCmd = &cobra.Command{
	Use:   "integrate",
	Short: "Integrate weight functions, basis functions and materials for a problem",
	Long: `
Reads a YAML problem description, builds the meshless discretization,
integrates it and writes integrals.csv and materials.csv,

ibex integrate -I problem.yaml -o outdir`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		ir := &IntegrateRun{}
		if ir.InputFile, err = cmd.Flags().GetString("inputFile"); err != nil {
			panic(err)
		}
		ir.OutputDir = viper.GetString("output")
		ir.Parallel = viper.GetInt("parallel")
		ir.Profile = viper.GetBool("profile")
		if len(ir.InputFile) == 0 {
			fmt.Printf("error: must supply an input parameters file (-I, --inputFile)\n")
			fmt.Printf("Example File:%s\n", exampleFile)
			os.Exit(1)
		}
		if err = RunIntegrate(ir); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

const exampleFile = `
########################################
Title: "Slab"
Dimension: 1
Limits: [[0, 4]]
PointsPerDimension: [41]
Kernel: wendland4
Weighting: flat
Normalized: true
Groups: 1
Materials:
  water:
    SigmaT: [1]
    SigmaS: [0.9]
    Source: [1]
########################################
`

func init() {
	rootCmd.AddCommand(IntegrateCmd)
	IntegrateCmd.Flags().StringP("inputFile", "I", "", "YAML file describing the problem")
	IntegrateCmd.Flags().StringP("output", "o", "ibex_output", "directory for integrals.csv and materials.csv")
	IntegrateCmd.Flags().IntP("parallel", "p", 0, "number of concurrent partitions, 0 uses every CPU")
	IntegrateCmd.Flags().Bool("profile", false, "write a CPU profile into the output directory")
	for _, name := range []string{"output", "parallel", "profile"} {
		if err := viper.BindPFlag(name, IntegrateCmd.Flags().Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func RunIntegrate(ir *IntegrateRun) (err error) {
	var (
		data []byte
		pp   = &InputParameters.ProblemParameters{}
	)
	if ir.Profile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(ir.OutputDir), profile.Quiet).Stop()
	}
	if data, err = os.ReadFile(ir.InputFile); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	if err = pp.Parse(data); err != nil {
		return
	}
	pp.Print()
	p, err := NewProblem(pp, ir.Parallel)
	if err != nil {
		return
	}
	start := time.Now()
	wd := spatial.NewWeakDiscretization(p.Options, p.Functions, p.Bases, p.Planes, p.Geometry, p.Angular, p.Energy)
	attrs := []any{
		"points", wd.NumberOfPoints(),
		"weighting", p.Options.Weighting.String(),
		"elapsed", time.Since(start),
		"memory", utils.GetMemUsage(),
	}
	if m := wd.Mesh(); m != nil {
		attrs = append(attrs, "mesh", m.Stats())
	}
	slog.Info("integration complete", attrs...)
	if err = output.WriteDirectory(ir.OutputDir, wd); err != nil {
		return
	}
	slog.Info("wrote output", "directory", ir.OutputDir)
	return
}
