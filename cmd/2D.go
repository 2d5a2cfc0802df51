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

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/gostokes/InputParameters"
	"github.com/notargets/gostokes/model_problems/Stokes2D"
	"github.com/notargets/gostokes/utils"
)

type Model2D struct {
	ICFile  string
	Graph   bool
	Delay   int // Milliseconds the plot stays up
	Profile bool
	Quiet   bool
}

const exampleFile = `
########################################
Title: "Channel Flow"
Viscosity: 1.e-6
ForcingIntensity: 0.05
InflowVelocity: [0.1, 0]
DomainLow: [0, 0]
DomainHigh: [1, 0.1]
Nx: 100
Ny: 20
Solver: minres # Can be "lu" for small meshes
Tolerance: 1.e-10
BCOrder: [inlet, walls] # Applied in order, the last one wins at shared nodes
########################################
`

// TwoDCmd represents the 2D command
var TwoDCmd = &cobra.Command{
	Use:   "2D",
	Short: "Steady Stokes flow in a two dimensional channel",
	Long: `
Steady Stokes flow in a two dimensional channel, Taylor-Hood elements.
Parameters come from defaults, overridden by an input file (-I), then the
config file, GOSTOKES_* environment variables and finally command line flags.
Example input file:
` + exampleFile,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			ip *InputParameters.InputParameters2D
		)
		m2d := &Model2D{}
		m2d.ICFile, _ = cmd.Flags().GetString("inputConditionsFile")
		m2d.Graph, _ = cmd.Flags().GetBool("graph")
		m2d.Delay, _ = cmd.Flags().GetInt("delay")
		m2d.Profile, _ = cmd.Flags().GetBool("profile")
		m2d.Quiet, _ = cmd.Flags().GetBool("quiet")
		if ip, err = processInput(m2d.ICFile); err != nil {
			return
		}
		applyOverrides(ip, viper.GetViper())
		if err = ip.Validate(); err != nil {
			return
		}
		return Run2D(m2d, ip)
	},
}

func init() {
	rootCmd.AddCommand(TwoDCmd)
	var (
		def   = InputParameters.Defaults()
		flags = TwoDCmd.Flags()
	)
	flags.StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- Viscosity\n\t- ForcingIntensity")
	flags.BoolP("graph", "g", false, "display the velocity magnitude after solving")
	flags.IntP("delay", "d", 10000, "milliseconds the plot is displayed")
	flags.Bool("profile", false, "write a CPU profile of the run to the current directory")
	flags.BoolP("quiet", "q", false, "suppress the parameter echo and stage timings")
	flags.Float64("nu", def.Viscosity, "kinematic viscosity")
	flags.Float64("sigma", def.ForcingIntensity, "forcing intensity")
	flags.Float64("inflowX", def.InflowVelocity[0], "inlet velocity, x component")
	flags.Float64("inflowY", def.InflowVelocity[1], "inlet velocity, y component")
	flags.Int("nx", def.Nx, "cells along x")
	flags.Int("ny", def.Ny, "cells along y")
	flags.String("solver", def.Solver, "linear solver: minres or lu")
	flags.Float64("tol", def.Tolerance, "relative residual tolerance of the iterative solver")
	flags.Int("maxIterations", def.MaxIterations, "iteration limit of the iterative solver")
	flags.Int("procLimit", def.ProcLimit, "goroutines used for element kernels, 0 = number of CPUs")
	for _, key := range overrideKeys {
		if err := viper.BindPFlag(key, flags.Lookup(key)); err != nil {
			panic(err)
		}
	}
}

var overrideKeys = []string{
	"nu", "sigma", "inflowX", "inflowY", "nx", "ny", "solver", "tol", "maxIterations", "procLimit",
}

func processInput(icFile string) (ip *InputParameters.InputParameters2D, err error) {
	ip = InputParameters.Defaults()
	if len(icFile) == 0 {
		return
	}
	var data []byte
	if data, err = os.ReadFile(icFile); err != nil {
		return nil, err
	}
	if err = ip.Parse(data); err != nil {
		return nil, fmt.Errorf("reading %s: %w", icFile, err)
	}
	return
}

// applyOverrides copies every key set in v (flag, environment or config file) into ip
func applyOverrides(ip *InputParameters.InputParameters2D, v *viper.Viper) {
	for _, key := range overrideKeys {
		if !v.IsSet(key) {
			continue
		}
		switch key {
		case "nu":
			ip.Viscosity = v.GetFloat64(key)
		case "sigma":
			ip.ForcingIntensity = v.GetFloat64(key)
		case "inflowX":
			ip.InflowVelocity[0] = v.GetFloat64(key)
		case "inflowY":
			ip.InflowVelocity[1] = v.GetFloat64(key)
		case "nx":
			ip.Nx = v.GetInt(key)
		case "ny":
			ip.Ny = v.GetInt(key)
		case "solver":
			ip.Solver = v.GetString(key)
		case "tol":
			ip.Tolerance = v.GetFloat64(key)
		case "maxIterations":
			ip.MaxIterations = v.GetInt(key)
		case "procLimit":
			ip.ProcLimit = v.GetInt(key)
		}
	}
}

func Run2D(m2d *Model2D, ip *InputParameters.InputParameters2D) (err error) {
	if m2d.Profile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	}
	verbose := !m2d.Quiet
	if verbose {
		ip.Print()
	}
	var (
		c   *Stokes2D.Stokes
		sol *Stokes2D.Solution
	)
	if c, err = Stokes2D.NewStokes(ip, verbose); err != nil {
		return
	}
	if sol, err = c.Solve(); err != nil {
		return
	}
	if verbose {
		sol.Print()
		fmt.Printf("Memory Usage: %s\n", utils.GetMemUsage())
	}
	if m2d.Graph {
		if perr := Stokes2D.PlotVelocityMagnitude(sol, m2d.Delay); perr != nil {
			fmt.Printf("warning: %s\n", perr.Error())
		}
	}
	return
}
