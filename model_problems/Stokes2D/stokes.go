package Stokes2D

import (
	"fmt"
	"log"
	"time"

	"github.com/notargets/gostokes/FEM2D"
	"github.com/notargets/gostokes/InputParameters"
	"github.com/notargets/gostokes/geometry2D"
	"github.com/notargets/gostokes/utils"
)

/*
Stokes solves the steady Stokes problem

	-nu Lap(u) + grad(p) = f
	          div(u)     = 0

on a rectangular channel with Dirichlet inlet and walls and a natural
(do nothing) outlet.
*/
type Stokes struct {
	Params  *InputParameters.InputParameters2D
	Mesh    *geometry2D.Mesh
	Mixed   *FEM2D.MixedSpace
	Quad    *FEM2D.Quadrature
	Forcing BodyForce
	BCs     []DirichletBC
	System  *ConstrainedSystem // Populated by Solve
	verbose bool
}

func NewStokes(ip *InputParameters.InputParameters2D, verbose bool) (c *Stokes, err error) {
	if err = ip.Validate(); err != nil {
		return
	}
	c = &Stokes{
		Params:  ip,
		Forcing: NewForcing(ip.ForcingIntensity),
		verbose: verbose,
	}
	var (
		low  = geometry2D.NewPoint(ip.DomainLow[0], ip.DomainLow[1])
		high = geometry2D.NewPoint(ip.DomainHigh[0], ip.DomainHigh[1])
		t0   = time.Now()
	)
	if c.Mesh, err = geometry2D.NewRectangleMesh(low, high, ip.Nx, ip.Ny); err != nil {
		return nil, err
	}
	if c.Mixed, err = FEM2D.NewTaylorHood(c.Mesh); err != nil {
		return nil, err
	}
	if c.Quad, err = FEM2D.NewQuadrature(ip.QuadratureDegree); err != nil {
		return nil, err
	}
	if c.BCs, err = NewChannelBCs(ip.BCOrder, low, high, ip.InflowVelocity); err != nil {
		return nil, err
	}
	if c.verbose {
		log.Printf("mesh and spaces: %d elements, %d velocity DOFs, %d pressure DOFs, %v\n",
			c.Mesh.NumElements(), c.Mixed.Velocity.NumDOFs(), c.Mixed.Pressure.NumDOFs(), time.Since(t0))
	}
	return
}

// Solve runs assembly, boundary conditions and the linear solve
func (c *Stokes) Solve() (sol *Solution, err error) {
	var (
		ip = c.Params
		t0 = time.Now()
		ls utils.LinearSolver
		x  []float64
	)
	sys := Assemble(c.Mixed, ip.Viscosity, c.Forcing, c.Quad, ip.ProcLimit)
	if c.verbose {
		log.Printf("assembly: %d x %d, %d nonzeros, %v\n",
			c.Mixed.NumDOFs(), c.Mixed.NumDOFs(), sys.A.NNZ(), time.Since(t0))
	}
	t0 = time.Now()
	if c.System, err = ApplyBCs(sys, c.BCs); err != nil {
		return
	}
	if c.verbose {
		log.Printf("boundary conditions: %d constrained DOFs, %v\n", len(c.System.Constraints), time.Since(t0))
	}
	if ls, err = c.NewSolver(c.System); err != nil {
		return
	}
	t0 = time.Now()
	if x, err = ls.Solve(c.System.A, c.System.B); err != nil {
		return
	}
	if utils.IsNan(x) {
		err = fmt.Errorf("%s produced NaN values", ls.Name())
		return
	}
	// Iterative solves only meet the constraint rows to tolerance
	for g, val := range c.System.Constraints {
		x[g] = val
	}
	sol = NewSolution(c.Mixed, x)
	sol.Solver = ls.Name()
	switch s := ls.(type) {
	case *utils.MINRES:
		sol.Stats = s.Stats
	case *utils.DirectLU:
		sol.Stats = s.Stats
	}
	sol.Stats.RelativeResidual = utils.RelativeResidual(c.System.A, sol.X, c.System.B)
	if c.verbose {
		log.Printf("solve: %s, %d iterations, relative residual %8.5e, %v\n",
			sol.Solver, sol.Stats.Iterations, sol.Stats.RelativeResidual, time.Since(t0))
	}
	return
}

// NewSolver builds the configured linear solver for cs
func (c *Stokes) NewSolver(cs *ConstrainedSystem) (ls utils.LinearSolver, err error) {
	var (
		ip    = c.Params
		N, _  = cs.A.Dims()
		stype utils.SolverType
	)
	if stype, err = utils.NewSolverType(ip.Solver); err != nil {
		return
	}
	if stype == utils.SOLVER_DIRECT_LU && N > ip.DirectSizeLimit {
		err = fmt.Errorf("system size %d exceeds the direct solver limit %d, use minres", N, ip.DirectSizeLimit)
		return
	}
	var precond []float64
	if stype == utils.SOLVER_MINRES {
		precond = cs.Preconditioner()
	}
	return utils.NewLinearSolver(ip.Solver, ip.Tolerance, ip.MaxIterations, precond)
}
