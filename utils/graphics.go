package utils

import (
	"image/color"
	"time"

	"github.com/notargets/avs/chart2d"
	"github.com/notargets/avs/functions"
	graphics2D "github.com/notargets/avs/geometry"
	utils2 "github.com/notargets/avs/utils"
)

func SleepFor(milliseconds int) {
	time.Sleep(time.Duration(milliseconds) * time.Millisecond)
}

type SurfacePlot struct {
	Chart        *chart2d.Chart2D
	ColorMap     *utils2.ColorMap
	GraphicsMesh *graphics2D.TriMesh
}

// NewSurfacePlot opens a chart window framing the mesh bounding box, scaled
// by scale to leave a margin
func NewSurfacePlot(width, height int, scale float64, gm *graphics2D.TriMesh) (sp *SurfacePlot) {
	box := graphics2D.NewBoundingBox(gm.GetGeometry())
	box = box.Scale(float32(scale))
	sp = &SurfacePlot{
		Chart:        chart2d.NewChart2D(width, height, box.XMin[0], box.XMax[0], box.XMin[1], box.XMax[1]),
		GraphicsMesh: gm,
	}
	go sp.Chart.Plot()
	return
}

func (sp *SurfacePlot) AddColorMap(fmin, fmax float64) {
	sp.ColorMap = utils2.NewColorMap(float32(fmin), float32(fmax), 1.)
	sp.Chart.AddColorMap(sp.ColorMap)
}

// AddFunctionSurface draws one scalar value per mesh vertex
func (sp *SurfacePlot) AddFunctionSurface(name string, field []float32, lt chart2d.LineType) (err error) {
	var (
		white = color.RGBA{R: 255, G: 255, B: 255, A: 1}
	)
	fs := functions.NewFSurface(sp.GraphicsMesh, [][]float32{field}, 0)
	err = sp.Chart.AddFunctionSurface(name, *fs, lt, white)
	return
}
