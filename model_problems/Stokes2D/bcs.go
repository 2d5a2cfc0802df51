package Stokes2D

import (
	"fmt"
	"sort"

	"github.com/notargets/gostokes/FEM2D"
	"github.com/notargets/gostokes/geometry2D"
	"github.com/notargets/gostokes/types"
	"github.com/notargets/gostokes/utils"
)

// DirichletBC prescribes the velocity Value on every velocity node where Where is true
type DirichletBC struct {
	Name  string
	Flag  types.BCFLAG
	Value [2]float64
	Where func(x, y float64) bool
}

func NewInletBC(low geometry2D.Point, inflow [2]float64) DirichletBC {
	return DirichletBC{
		Name:  "inlet",
		Flag:  types.BC_In,
		Value: inflow,
		Where: func(x, y float64) bool { return utils.Near(x, low.X[0]) },
	}
}

func NewWallBC(low, high geometry2D.Point) DirichletBC {
	return DirichletBC{
		Name: "walls",
		Flag: types.BC_Wall,
		Where: func(x, y float64) bool {
			return utils.Near(y, low.X[1]) || utils.Near(y, high.X[1])
		},
	}
}

// NewChannelBCs builds the channel conditions in the given order. The outlet
// is natural and takes no entry, naming it is an error.
func NewChannelBCs(order []string, low, high geometry2D.Point, inflow [2]float64) (bcs []DirichletBC, err error) {
	for _, label := range order {
		switch types.NewBCFLAG(label) {
		case types.BC_In:
			bcs = append(bcs, NewInletBC(low, inflow))
		case types.BC_Wall:
			bcs = append(bcs, NewWallBC(low, high))
		default:
			err = fmt.Errorf("boundary condition %q can not be applied as a Dirichlet condition", label)
			return
		}
	}
	return
}

/*
ConstrainedSystem is the solve-ready system. Each constrained DOF i with value
g was eliminated symmetrically:

	b_j -= A_ji * g   for unconstrained j
	A_ij = A_ji = 0,  A_ii = 1,  b_i = g

so A stays symmetric.
*/
type ConstrainedSystem struct {
	Mixed        *FEM2D.MixedSpace
	A            utils.CSR
	B            []float64
	Constraints  map[int]float64
	PressureMass []float64
	Nu           float64
}

type sparseEntry struct {
	i, j int
	v    float64
}

// ApplyBCs applies bcs in order, a DOF matched by several conditions takes the
// value of the last one. It consumes sys: the DOK is marked read only and its
// load vector is reused.
func ApplyBCs(sys *AssembledSystem, bcs []DirichletBC) (cs *ConstrainedSystem, err error) {
	var (
		fs          = sys.Mixed.Velocity
		constraints = make(map[int]float64)
	)
	if sys.A.IsReadOnly() {
		panic("boundary conditions were already applied to this system")
	}
	for _, bc := range bcs {
		var count int
		for n := 0; n < fs.NNodes; n++ {
			if !bc.Where(fs.NodeX[n], fs.NodeY[n]) {
				continue
			}
			for c := 0; c < 2; c++ {
				constraints[sys.Mixed.Offsets[0]+c*fs.NNodes+n] = bc.Value[c]
			}
			count++
		}
		if count == 0 {
			err = &types.NoBoundaryConditionError{Name: bc.Name}
			return
		}
	}
	var (
		touched []sparseEntry
	)
	sys.A.DoNonZero(func(i, j int, v float64) {
		_, ci := constraints[i]
		_, cj := constraints[j]
		if ci || cj {
			touched = append(touched, sparseEntry{i, j, v})
		}
	})
	// Map iteration order is random, fix the lifting order for reproducible sums
	sort.Slice(touched, func(a, b int) bool {
		if touched[a].i != touched[b].i {
			return touched[a].i < touched[b].i
		}
		return touched[a].j < touched[b].j
	})
	for _, e := range touched {
		if _, ci := constraints[e.i]; !ci {
			sys.B[e.i] -= e.v * constraints[e.j]
		}
		sys.A.Set(e.i, e.j, 0)
	}
	for g, val := range constraints {
		sys.A.Set(g, g, 1)
		sys.B[g] = val
	}
	sys.A.SetReadOnly("Stokes2D.A")
	cs = &ConstrainedSystem{
		Mixed:        sys.Mixed,
		A:            sys.A.ToCSR(),
		B:            sys.B,
		Constraints:  constraints,
		PressureMass: sys.PressureMass,
		Nu:           sys.Nu,
	}
	sys.B = nil
	return
}

// ConstrainedDOFs lists the constrained DOFs in increasing order
func (cs *ConstrainedSystem) ConstrainedDOFs() (dofs []int) {
	dofs = make([]int, 0, len(cs.Constraints))
	for g := range cs.Constraints {
		dofs = append(dofs, g)
	}
	sort.Ints(dofs)
	return
}

/*
Preconditioner is the diagonal used by MINRES, it must be positive:

	velocity rows:  1 / A_ii
	pressure rows:  nu / M_ii    (M the pressure mass matrix)

The pressure Schur complement B (nu K)^-1 B^T is spectrally close to M / nu.
*/
func (cs *ConstrainedSystem) Preconditioner() (precond []float64) {
	var (
		diag = cs.A.Diagonal()
		np   = cs.Mixed.Offsets[1]
	)
	precond = make([]float64, len(diag))
	for i := 0; i < np; i++ {
		if diag[i] > 0 {
			precond[i] = 1 / diag[i]
		} else {
			precond[i] = 1
		}
	}
	for m, mii := range cs.PressureMass {
		precond[np+m] = cs.Nu / mii
	}
	return
}
