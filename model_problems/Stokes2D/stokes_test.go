package Stokes2D

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gostokes/FEM2D"
	"github.com/notargets/gostokes/InputParameters"
	"github.com/notargets/gostokes/geometry2D"
	"github.com/notargets/gostokes/types"
)

type constForce [2]float64

func (f constForce) Eval(x, y float64) [2]float64 { return f }

func newChannel(t *testing.T, nx, ny int) (ms *FEM2D.MixedSpace, low, high geometry2D.Point) {
	low, high = geometry2D.NewPoint(0, 0), geometry2D.NewPoint(1, 0.1)
	mesh, err := geometry2D.NewRectangleMesh(low, high, nx, ny)
	require.NoError(t, err)
	ms, err = FEM2D.NewTaylorHood(mesh)
	require.NoError(t, err)
	return
}

func smallRun(nx, ny int, nu, sigma float64, solver string) (ip *InputParameters.InputParameters2D) {
	ip = InputParameters.Defaults()
	ip.Nx, ip.Ny = nx, ny
	ip.Viscosity = nu
	ip.ForcingIntensity = sigma
	ip.Solver = solver
	return
}

func TestForcing(t *testing.T) {
	f := NewForcing(0.05)
	fv := f.Eval(0.25, 0)
	assert.InDelta(t, 0.05, fv[0], 1.e-15)
	assert.InDelta(t, 0., fv[1], 1.e-15)
	fv = f.Eval(0, 0.25)
	assert.InDelta(t, 0., fv[0], 1.e-15)
	assert.InDelta(t, 0.05, fv[1], 1.e-15)
	fv = NewForcing(0).Eval(0.3, 0.7)
	assert.Equal(t, [2]float64{0, 0}, fv)
}

func TestElementKernel(t *testing.T) {
	ms, _, _ := newChannel(t, 4, 2)
	q4, err := FEM2D.NewQuadrature(4)
	require.NoError(t, err)
	q2, err := FEM2D.NewQuadrature(2)
	require.NoError(t, err)
	for k := 0; k < 2; k++ {
		var (
			ek, ek2 ElementKernel
			area    = math.Abs(ms.Mesh().Area(k))
			c       = constForce{2, -3}
		)
		ek.Compute(ms, k, 1, c, q4)
		ek2.Compute(ms, k, 1, c, q2)
		{ // Symmetric, and exact for both rules on polynomial integrands
			for i := 0; i < NpEl; i++ {
				for j := 0; j < NpEl; j++ {
					assert.InDelta(t, ek.Ke[i][j], ek.Ke[j][i], 1.e-14)
					assert.InDelta(t, ek.Ke[i][j], ek2.Ke[i][j], 1.e-12)
				}
			}
		}
		{ // Constants are in the kernel of the stiffness and of the divergence
			for a := 0; a < NpU; a++ {
				var sx, sy float64
				for b := 0; b < NpU; b++ {
					sx += ek.Ke[a][b]
					sy += ek.Ke[NpU+a][NpU+b]
				}
				assert.InDelta(t, 0., sx, 1.e-12)
				assert.InDelta(t, 0., sy, 1.e-12)
				// No coupling between velocity components
				for b := 0; b < NpU; b++ {
					assert.Equal(t, 0., ek.Ke[a][NpU+b])
				}
			}
			for m := 0; m < NpP; m++ {
				var bx, by float64
				for a := 0; a < NpU; a++ {
					bx += ek.Ke[pBase+m][a]
					by += ek.Ke[pBase+m][NpU+a]
				}
				assert.InDelta(t, 0., bx, 1.e-12)
				assert.InDelta(t, 0., by, 1.e-12)
				for n := 0; n < NpP; n++ {
					assert.Equal(t, 0., ek.Ke[pBase+m][pBase+n])
				}
			}
		}
		{ // P2 vertex functions integrate to zero, edge functions to area/3
			for a := 0; a < 3; a++ {
				assert.InDelta(t, 0., ek.Fe[a], 1.e-14)
				assert.InDelta(t, 0., ek.Fe[NpU+a], 1.e-14)
			}
			for a := 3; a < NpU; a++ {
				assert.InDelta(t, c[0]*area/3, ek.Fe[a], 1.e-14)
				assert.InDelta(t, c[1]*area/3, ek.Fe[NpU+a], 1.e-14)
			}
			for m := 0; m < NpP; m++ {
				assert.InDelta(t, area/6, ek.Me[m], 1.e-15)
				assert.Equal(t, 0., ek.Fe[pBase+m])
			}
		}
		{ // Viscosity scales the stiffness block only
			var ekNu ElementKernel
			ekNu.Compute(ms, k, 0.5, c, q4)
			assert.InDelta(t, 0.5*ek.Ke[0][0], ekNu.Ke[0][0], 1.e-14)
			assert.Equal(t, ek.Ke[0][pBase], ekNu.Ke[0][pBase])
		}
	}
}

func TestAssembly(t *testing.T) {
	var (
		ms, _, _ = newChannel(t, 4, 2)
		f        = NewForcing(0.05)
		N        = ms.NumDOFs()
	)
	q, err := FEM2D.NewQuadrature(4)
	require.NoError(t, err)
	ref := Assemble(ms, 1, f, q, 1)
	refA := ref.A.ToCSR()
	{ // Dimensions, symmetry, pressure mass sums to the domain area
		nr, nc := ref.A.Dims()
		assert.Equal(t, N, nr)
		assert.Equal(t, N, nc)
		assert.True(t, refA.IsSymmetric(1.e-14))
		var total float64
		for _, m := range ref.PressureMass {
			total += m
		}
		assert.InDelta(t, 0.1/2, total, 1.e-14) // Each vertex mass is area/6, three per element
	}
	{ // Partitioning the kernels does not change the result
		for _, procs := range []int{2, 3, 16} {
			sys := Assemble(ms, 1, f, q, procs)
			assert.True(t, mat.Equal(refA.ToDense(), sys.A.ToCSR().ToDense()))
			assert.Equal(t, ref.B, sys.B)
		}
	}
	{ // Element traversal order only changes round off
		rng := rand.New(rand.NewSource(42))
		for trial := 0; trial < 3; trial++ {
			order := rng.Perm(ms.Mesh().NumElements())
			sys := Assemble(ms, 1, f, q, 0, order)
			assert.True(t, mat.EqualApprox(refA.ToDense(), sys.A.ToCSR().ToDense(), 1.e-13))
			assert.InDeltaSlice(t, ref.B, sys.B, 1.e-15)
			assert.InDeltaSlice(t, ref.PressureMass, sys.PressureMass, 1.e-15)
		}
		assert.Panics(t, func() { Assemble(ms, 1, f, q, 0, []int{0, 1}) })
		bad := make([]int, ms.Mesh().NumElements())
		assert.Panics(t, func() { Assemble(ms, 1, f, q, 0, bad) })
	}
}

func TestBCs(t *testing.T) {
	var (
		ms, low, high = newChannel(t, 4, 2)
		inflow        = [2]float64{0.1, 0}
		fs            = ms.Velocity
	)
	q, err := FEM2D.NewQuadrature(4)
	require.NoError(t, err)
	cornerValue := func(cs *ConstrainedSystem) [2]float64 {
		// Vertex 0 is the corner (0,0)
		return [2]float64{cs.Constraints[0], cs.Constraints[fs.NNodes]}
	}
	{ // Walls applied last own the corners
		bcs, err := NewChannelBCs([]string{"inlet", "walls"}, low, high, inflow)
		require.NoError(t, err)
		cs, err := ApplyBCs(Assemble(ms, 1, NewForcing(0.05), q, 0), bcs)
		require.NoError(t, err)
		assert.Equal(t, [2]float64{0, 0}, cornerValue(cs))

		// Inlet nodes off the walls carry the inflow
		var inletNodes int
		for n := 0; n < fs.NNodes; n++ {
			x, y := fs.NodeX[n], fs.NodeY[n]
			if x == 0 && y > 0 && y < 0.1 {
				assert.Equal(t, inflow[0], cs.Constraints[n])
				assert.Equal(t, inflow[1], cs.Constraints[fs.NNodes+n])
				inletNodes++
			}
		}
		assert.Equal(t, 3, inletNodes) // 2*ny - 1 interior P2 nodes on the inlet
		// Inlet: 5 nodes, walls: 2*9 nodes, two shared corners
		assert.Equal(t, 2*(5+18-2), len(cs.Constraints))
		assert.Equal(t, len(cs.Constraints), len(cs.ConstrainedDOFs()))

		// Elimination keeps symmetry and leaves identity rows
		assert.True(t, cs.A.IsSymmetric(1.e-14))
		for _, g := range cs.ConstrainedDOFs() {
			assert.Equal(t, 1., cs.A.At(g, g))
			assert.Equal(t, cs.Constraints[g], cs.B[g])
		}
		for _, p := range cs.Preconditioner() {
			assert.Greater(t, p, 0.)
		}
	}
	{ // Reversed order gives the corners to the inlet
		bcs, err := NewChannelBCs([]string{"walls", "inlet"}, low, high, inflow)
		require.NoError(t, err)
		cs, err := ApplyBCs(Assemble(ms, 1, NewForcing(0.05), q, 0), bcs)
		require.NoError(t, err)
		assert.Equal(t, inflow, cornerValue(cs))
	}
	{ // A condition that matches nothing is an error
		bcs := []DirichletBC{{
			Name:  "nowhere",
			Where: func(x, y float64) bool { return x > 2 },
		}}
		_, err := ApplyBCs(Assemble(ms, 1, NewForcing(0.05), q, 0), bcs)
		var bcErr *types.NoBoundaryConditionError
		require.True(t, errors.As(err, &bcErr))
		assert.Equal(t, "nowhere", bcErr.Name)
	}
	{ // The outlet is natural, and a consumed system can not be reused
		_, err := NewChannelBCs([]string{"outlet"}, low, high, inflow)
		assert.Error(t, err)
		bcs, err := NewChannelBCs([]string{"inlet", "walls"}, low, high, inflow)
		require.NoError(t, err)
		sys := Assemble(ms, 1, NewForcing(0.05), q, 0)
		_, err = ApplyBCs(sys, bcs)
		require.NoError(t, err)
		assert.Panics(t, func() { _, _ = ApplyBCs(sys, bcs) })
	}
}

func TestStokes(t *testing.T) {
	{ // No forcing and no inflow gives the zero solution
		ip := smallRun(8, 4, 1.e-6, 0, "minres")
		ip.InflowVelocity = [2]float64{0, 0}
		c, err := NewStokes(ip, false)
		require.NoError(t, err)
		sol, err := c.Solve()
		require.NoError(t, err)
		for _, v := range sol.X {
			assert.Equal(t, 0., v)
		}
	}
	{ // Direct solve: discrete divergence vanishes, inlet values are exact
		ip := smallRun(4, 2, 1.e-6, 0.05, "lu")
		c, err := NewStokes(ip, false)
		require.NoError(t, err)
		sol, err := c.Solve()
		require.NoError(t, err)
		assert.Less(t, sol.Stats.RelativeResidual, 1.e-10)

		// Pressure rows of the unconstrained system are int div(u_h) q
		sys := Assemble(c.Mixed, ip.Viscosity, c.Forcing, c.Quad, 0)
		div := make([]float64, c.Mixed.Pressure.NumDOFs())
		Nu := c.Mixed.Offsets[1]
		sys.A.DoNonZero(func(i, j int, v float64) {
			if i >= Nu {
				div[i-Nu] += v * sol.X[j]
			}
		})
		for _, d := range div {
			assert.InDelta(t, 0., d, 1.e-12)
		}
		checkInlet(t, c, sol)

		// The evaluated field matches its nodal values
		u, err := sol.VelocityAt(0, 0.05)
		require.NoError(t, err)
		assert.InDelta(t, 0.1, u[0], 1.e-14)
		assert.InDelta(t, 0., u[1], 1.e-14)
		_, err = sol.VelocityAt(2, 0.05)
		assert.Error(t, err)
		_, err = sol.PressureAt(0.5, 0.05)
		assert.NoError(t, err)

		// Gauge shift is a copy with zero mean
		pn := sol.NormalizePressure()
		var mean float64
		for _, p := range pn.Coeffs {
			mean += p
		}
		assert.InDelta(t, 0., mean/float64(len(pn.Coeffs)), 1.e-14)
		assert.False(t, &pn.Coeffs[0] == &sol.Pressure.Coeffs[0])

		// MINRES reaches the same solution
		ip.Solver = "minres"
		ip.Tolerance = 1.e-12
		c2, err := NewStokes(ip, false)
		require.NoError(t, err)
		sol2, err := c2.Solve()
		require.NoError(t, err)
		assert.InDeltaSlice(t, sol.Velocity.Coeffs, sol2.Velocity.Coeffs, 1.e-7)
		assert.LessOrEqual(t, sol2.Stats.RelativeResidual, ip.Tolerance)
		checkInlet(t, c2, sol2)
	}
	{ // Conjugate gradient is refused, direct solves are size limited
		ip := smallRun(4, 2, 1, 0.05, "cg")
		c, err := NewStokes(ip, false)
		require.NoError(t, err)
		_, err = c.Solve()
		assert.Error(t, err)
		ip.Solver = "lu"
		ip.DirectSizeLimit = 10
		_, err = c.Solve()
		assert.Error(t, err)
	}
	{ // Invalid configuration is rejected before any work
		ip := smallRun(4, 2, 1, -1, "lu")
		_, err := NewStokes(ip, false)
		assert.Error(t, err)
	}
	{ // Mesh refinement: successive probe differences shrink
		var (
			probe []float64
		)
		for _, res := range [][2]int{{4, 2}, {8, 4}, {16, 8}} {
			ip := smallRun(res[0], res[1], 1, 0.05, "lu")
			c, err := NewStokes(ip, false)
			require.NoError(t, err)
			sol, err := c.Solve()
			require.NoError(t, err)
			assert.Less(t, sol.Stats.RelativeResidual, 1.e-10)
			bn := mat.Norm(mat.NewVecDense(len(c.System.B), c.System.B), 2)
			assert.LessOrEqual(t, sol.Residual(c.System.A, c.System.B)/bn, ip.Tolerance)
			u, err := sol.VelocityAt(0.5, 0.05)
			require.NoError(t, err)
			probe = append(probe, u[0])
		}
		for i := 2; i < len(probe); i++ {
			assert.Less(t, math.Abs(probe[i]-probe[i-1]), math.Abs(probe[i-1]-probe[i-2]))
		}
	}
}

func TestStokesDefaultRun(t *testing.T) {
	if testing.Short() {
		t.Skip("full channel resolution")
	}
	c, err := NewStokes(InputParameters.Defaults(), false)
	require.NoError(t, err)
	sol, err := c.Solve()
	require.NoError(t, err)
	checkInlet(t, c, sol)
}

func checkInlet(t *testing.T, c *Stokes, sol *Solution) {
	fs := c.Mixed.Velocity
	inflow := c.Params.InflowVelocity
	high := c.Params.DomainHigh[1]
	for n := 0; n < fs.NNodes; n++ {
		x, y := fs.NodeX[n], fs.NodeY[n]
		if x == 0 && y > 0 && y < high {
			assert.Equal(t, inflow[0], sol.Velocity.Coeffs[n])
			assert.Equal(t, inflow[1], sol.Velocity.Coeffs[fs.NNodes+n])
		}
	}
}
