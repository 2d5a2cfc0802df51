package Stokes2D

import (
	"fmt"
	"math"

	"github.com/notargets/gostokes/FEM2D"
	"github.com/notargets/gostokes/utils"
)

// Local element layout: 6 u_x nodes, 6 u_y nodes, 3 pressure nodes
const (
	NpU   = 6
	NpP   = 3
	NpEl  = 2*NpU + NpP
	pBase = 2 * NpU
)

// ElementKernel is the element matrix, load and pressure mass diagonal of one triangle
type ElementKernel struct {
	Ke [NpEl][NpEl]float64
	Fe [NpEl]float64
	Me [NpP]float64
}

/*
Compute integrates the Stokes element system on element k:

	Ke[u,v] =  nu * int grad(phi_a) . grad(phi_b)     (per velocity component)
	Ke[v,p] = -int psi_m d(phi_a)/dx_c                (and its transpose)
	Fe[v]   =  int f_c phi_a

The pressure-pressure block is zero.
*/
func (ek *ElementKernel) Compute(ms *FEM2D.MixedSpace, k int, nu float64, f BodyForce, quad *FEM2D.Quadrature) {
	var (
		am                = FEM2D.NewAffineMap(ms.Mesh(), k)
		absDet            = math.Abs(am.Det)
		ue, pe            = ms.Velocity.Element, ms.Pressure.Element
		phi, dphix, dphiy [NpU]float64
		psi               [NpP]float64
	)
	*ek = ElementKernel{}
	for iq := 0; iq < quad.Nq; iq++ {
		var (
			r, s = quad.R[iq], quad.S[iq]
			wq   = quad.W[iq] * absDet
			fv   = f.Eval(am.ToPhysical(r, s))
		)
		for a := 0; a < NpU; a++ {
			phi[a] = ue.Eval(a, r, s)
			dphix[a], dphiy[a] = am.GradToPhysical(ue.EvalGrad(a, r, s))
		}
		for m := 0; m < NpP; m++ {
			psi[m] = pe.Eval(m, r, s)
		}
		for a := 0; a < NpU; a++ {
			for b := 0; b < NpU; b++ {
				kab := nu * (dphix[a]*dphix[b] + dphiy[a]*dphiy[b]) * wq
				ek.Ke[a][b] += kab
				ek.Ke[NpU+a][NpU+b] += kab
			}
			for m := 0; m < NpP; m++ {
				bx := -psi[m] * dphix[a] * wq
				by := -psi[m] * dphiy[a] * wq
				ek.Ke[a][pBase+m] += bx
				ek.Ke[pBase+m][a] += bx
				ek.Ke[NpU+a][pBase+m] += by
				ek.Ke[pBase+m][NpU+a] += by
			}
			ek.Fe[a] += fv[0] * phi[a] * wq
			ek.Fe[NpU+a] += fv[1] * phi[a] * wq
		}
		for m := 0; m < NpP; m++ {
			ek.Me[m] += psi[m] * psi[m] * wq
		}
	}
}

/*
AssembledSystem is the global saddle point system before boundary conditions

	| nu K   B^T | | u |   | F |
	|  B     0   | | p | = | 0 |

It owns A and B. Applying boundary conditions consumes it.
*/
type AssembledSystem struct {
	Mixed        *FEM2D.MixedSpace
	A            utils.DOK
	B            []float64
	PressureMass []float64 // Diagonal of the P1 mass matrix
	Nu           float64
}

// Assemble builds the global system. Element kernels are computed in
// parallel, then scattered serially in element order, or in the order
// given by orderO, which must be a permutation of the elements.
func Assemble(ms *FEM2D.MixedSpace, nu float64, f BodyForce, quad *FEM2D.Quadrature,
	ProcLimit int, orderO ...[]int) (sys *AssembledSystem) {
	var (
		K     = ms.Mesh().NumElements()
		N     = ms.NumDOFs()
		order []int
	)
	if len(orderO) != 0 && orderO[0] != nil {
		order = orderO[0]
		checkPermutation(order, K)
	} else {
		order = make([]int, K)
		for k := range order {
			order[k] = k
		}
	}
	kernels := ComputeKernels(ms, nu, f, quad, ProcLimit)
	sys = &AssembledSystem{
		Mixed:        ms,
		A:            utils.NewDOK(N, N),
		B:            make([]float64, N),
		PressureMass: make([]float64, ms.Pressure.NumDOFs()),
		Nu:           nu,
	}
	var (
		gdof [NpEl]int
	)
	for _, k := range order {
		ek := &kernels[k]
		for i := 0; i < NpEl; i++ {
			gdof[i] = ms.DOF(k, i)
		}
		for i := 0; i < NpEl; i++ {
			sys.B[gdof[i]] += ek.Fe[i]
			for j := 0; j < NpEl; j++ {
				sys.A.Accumulate(gdof[i], gdof[j], ek.Ke[i][j])
			}
		}
		for m := 0; m < NpP; m++ {
			sys.PressureMass[ms.Pressure.DOF(k, m)] += ek.Me[m]
		}
	}
	return
}

func checkPermutation(order []int, K int) {
	if len(order) != K {
		panic(fmt.Errorf("element order has %d entries, mesh has %d elements", len(order), K))
	}
	seen := make([]bool, K)
	for _, k := range order {
		if k < 0 || k >= K || seen[k] {
			panic(fmt.Errorf("element order is not a permutation, bad or repeated element %d", k))
		}
		seen[k] = true
	}
}
