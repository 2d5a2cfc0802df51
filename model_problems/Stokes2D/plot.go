package Stokes2D

import (
	"fmt"
	"math"

	"github.com/notargets/avs/chart2d"

	"github.com/notargets/gostokes/utils"
)

const PlotTitle = "Velocity Field under Stochastic Forcing"

// PlotVelocityMagnitude draws |u| on the mesh. Failures in the graphics stack
// are reported and swallowed, the solution is never touched.
func PlotVelocityMagnitude(sol *Solution, delay int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("plotting failed: %v", r)
		}
	}()
	var (
		mesh       = sol.Mixed.Mesh()
		gm         = mesh.ToGraphMesh()
		speed      = sol.SpeedAtVertices()
		field      = make([]float32, len(speed))
		fmin, fmax = math.MaxFloat64, -math.MaxFloat64
	)
	for i, s := range speed {
		field[i] = float32(s)
		fmin = math.Min(fmin, s)
		fmax = math.Max(fmax, s)
	}
	if fmax == fmin {
		fmax = fmin + 1
	}
	// Wide window for the 10:1 channel
	sp := utils.NewSurfacePlot(1500, 300, 1.1, &gm)
	sp.AddColorMap(fmin, fmax)
	if err = sp.AddFunctionSurface(PlotTitle, field, chart2d.NoLine); err != nil {
		return
	}
	fmt.Printf("%s: |u| in [%8.5e, %8.5e]\n", PlotTitle, fmin, fmax)
	utils.SleepFor(delay)
	return
}
