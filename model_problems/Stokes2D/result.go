package Stokes2D

import (
	"fmt"
	"math"

	"github.com/notargets/gostokes/FEM2D"
	"github.com/notargets/gostokes/utils"
)

// Field is a finite element function: coefficients on a function space
type Field struct {
	Space  *FEM2D.FunctionSpace
	Coeffs []float64
}

func NewField(fs *FEM2D.FunctionSpace, coeffs []float64) (f *Field) {
	if len(coeffs) != fs.NumDOFs() {
		panic(fmt.Errorf("field has %d coefficients, space has %d DOFs", len(coeffs), fs.NumDOFs()))
	}
	f = &Field{
		Space:  fs,
		Coeffs: append([]float64{}, coeffs...),
	}
	return
}

// Eval returns all components at (x,y), ok is false outside the mesh
func (f *Field) Eval(x, y float64) (v []float64, ok bool) {
	var (
		fs         = f.Space
		k, r, s, _ = fs.Mesh.Locate(x, y)
	)
	if k < 0 {
		return
	}
	v = make([]float64, fs.ValueDim)
	for l := 0; l < fs.LocalDOFs(); l++ {
		c, j := fs.Component(l)
		v[c] += f.Coeffs[fs.DOF(k, l)] * fs.Element.Eval(j, r, s)
	}
	return v, true
}

// VertexValues samples component c at the mesh vertices. Lagrange nodes sit
// on the vertices, so these are coefficients.
func (f *Field) VertexValues(c int) (vals []float64) {
	var (
		fs = f.Space
		Nv = fs.Mesh.NumVertices()
	)
	vals = make([]float64, Nv)
	copy(vals, f.Coeffs[c*fs.NNodes:c*fs.NNodes+Nv])
	return
}

func (f *Field) MinMax(c int) (fmin, fmax float64) {
	var (
		fs = f.Space
	)
	fmin, fmax = math.MaxFloat64, -math.MaxFloat64
	for _, v := range f.Coeffs[c*fs.NNodes : (c+1)*fs.NNodes] {
		fmin = math.Min(fmin, v)
		fmax = math.Max(fmax, v)
	}
	return
}

/*
Solution is the solved mixed field, split at the stacking offset. It is
built once and not modified afterwards.
*/
type Solution struct {
	Mixed    *FEM2D.MixedSpace
	X        []float64
	Velocity *Field
	Pressure *Field
	Stats    utils.SolverStats
	Solver   string
}

func NewSolution(ms *FEM2D.MixedSpace, x []float64) (sol *Solution) {
	u, p := ms.Split(x)
	sol = &Solution{
		Mixed:    ms,
		X:        append([]float64{}, x...),
		Velocity: NewField(ms.Velocity, u),
		Pressure: NewField(ms.Pressure, p),
	}
	return
}

// VelocityAt evaluates the velocity at (x,y)
func (sol *Solution) VelocityAt(x, y float64) (u [2]float64, err error) {
	v, ok := sol.Velocity.Eval(x, y)
	if !ok {
		err = fmt.Errorf("point (%g, %g) is outside the mesh", x, y)
		return
	}
	u = [2]float64{v[0], v[1]}
	return
}

// PressureAt evaluates the pressure at (x,y)
func (sol *Solution) PressureAt(x, y float64) (p float64, err error) {
	v, ok := sol.Pressure.Eval(x, y)
	if !ok {
		err = fmt.Errorf("point (%g, %g) is outside the mesh", x, y)
		return
	}
	return v[0], nil
}

// Residual returns ||A x - b||_2 for the solution coefficients
func (sol *Solution) Residual(A utils.CSR, b []float64) float64 {
	return utils.ResidualNorm(A, sol.X, b)
}

// SpeedAtVertices is |u| sampled at the mesh vertices
func (sol *Solution) SpeedAtVertices() (speed []float64) {
	var (
		ux = sol.Velocity.VertexValues(0)
		uy = sol.Velocity.VertexValues(1)
	)
	speed = make([]float64, len(ux))
	for i := range ux {
		speed[i] = math.Hypot(ux[i], uy[i])
	}
	return
}

// NormalizePressure returns a copy of the pressure shifted to zero nodal mean
func (sol *Solution) NormalizePressure() (p *Field) {
	var (
		mean float64
	)
	p = NewField(sol.Pressure.Space, sol.Pressure.Coeffs)
	for _, v := range p.Coeffs {
		mean += v
	}
	mean /= float64(len(p.Coeffs))
	for i := range p.Coeffs {
		p.Coeffs[i] -= mean
	}
	return
}

func (sol *Solution) Print() {
	var (
		speed      = sol.SpeedAtVertices()
		smin, smax = math.MaxFloat64, 0.
		pmin, pmax = sol.Pressure.MinMax(0)
	)
	for _, s := range speed {
		smin = math.Min(smin, s)
		smax = math.Max(smax, s)
	}
	fmt.Printf("Solver: %s, Iterations = %d, Relative Residual = %8.5e\n",
		sol.Solver, sol.Stats.Iterations, sol.Stats.RelativeResidual)
	fmt.Printf("Speed   Min, Max = %8.5e, %8.5e\n", smin, smax)
	fmt.Printf("Pressure Min, Max = %8.5e, %8.5e\n", pmin, pmax)
}
