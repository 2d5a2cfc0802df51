package utils

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gostokes/types"
)

// LinearSolver solves A x = b for a sparse, square A. Saddle point systems
// are symmetric indefinite, so only solvers that tolerate indefiniteness
// implement this interface.
type LinearSolver interface {
	Solve(A CSR, b []float64) (x []float64, err error)
	Name() string
}

// SolverStats records what the last solve did
type SolverStats struct {
	Iterations       int
	RelativeResidual float64
}

type SolverType uint8

const (
	SOLVER_MINRES SolverType = iota
	SOLVER_DIRECT_LU
	SOLVER_CG
)

var SolverNameMap = map[string]SolverType{
	"minres":   SOLVER_MINRES,
	"lu":       SOLVER_DIRECT_LU,
	"direct":   SOLVER_DIRECT_LU,
	"directlu": SOLVER_DIRECT_LU,
	"cg":       SOLVER_CG,
}

func (st SolverType) Print() string {
	switch st {
	case SOLVER_MINRES:
		return "Preconditioned MINRES"
	case SOLVER_DIRECT_LU:
		return "Direct LU, partial pivoting"
	case SOLVER_CG:
		return "Conjugate Gradient"
	}
	return "Unknown"
}

func NewSolverType(label string) (st SolverType, err error) {
	var (
		ok bool
	)
	label = strings.ToLower(strings.TrimSpace(label))
	if st, ok = SolverNameMap[label]; !ok {
		err = fmt.Errorf("unknown linear solver %q, choose one of: minres, lu", label)
	}
	return
}

// NewLinearSolver maps a configured solver name onto an implementation.
// Conjugate gradient requires a positive definite matrix and the saddle
// point system is indefinite, so it is refused here.
func NewLinearSolver(label string, tol float64, maxIterations int, precond []float64) (ls LinearSolver, err error) {
	var (
		st SolverType
	)
	if st, err = NewSolverType(label); err != nil {
		return
	}
	switch st {
	case SOLVER_MINRES:
		ls = NewMINRES(tol, maxIterations, precond)
	case SOLVER_DIRECT_LU:
		ls = NewDirectLU()
	case SOLVER_CG:
		err = fmt.Errorf("%s is invalid for symmetric indefinite saddle point systems, use minres or lu",
			st.Print())
	}
	return
}

// DirectLU factors a dense copy of A with partial pivoting. Memory is
// O(N^2), so it is meant for small systems and for cross checking MINRES.
type DirectLU struct {
	ConditionLimit float64
	Stats          SolverStats
}

func NewDirectLU() *DirectLU {
	return &DirectLU{ConditionLimit: mat.ConditionTolerance}
}

func (lu *DirectLU) Name() string { return SOLVER_DIRECT_LU.Print() }

func (lu *DirectLU) Solve(A CSR, b []float64) (x []float64, err error) {
	var (
		n, nc = A.Dims()
		f     mat.LU
		xv    = mat.NewVecDense(n, nil)
	)
	if n != nc || len(b) != n {
		panic(fmt.Errorf("dimension mismatch: A is %dx%d, b has length %d", n, nc, len(b)))
	}
	f.Factorize(A.ToDense())
	if cond := f.Cond(); math.IsInf(cond, 1) || math.IsNaN(cond) || cond > lu.ConditionLimit {
		err = &types.SingularSystemError{Size: n, Condition: cond}
		return
	}
	if err = f.SolveVecTo(xv, false, mat.NewVecDense(n, append([]float64{}, b...))); err != nil {
		var cond float64
		if c, ok := err.(mat.Condition); ok {
			cond = float64(c)
		}
		err = &types.SingularSystemError{Size: n, Condition: cond}
		return
	}
	x = xv.RawVector().Data
	lu.Stats = SolverStats{Iterations: 1, RelativeResidual: RelativeResidual(A, x, b)}
	return
}

/*
MINRES is the Paige-Saunders minimum residual method for symmetric, possibly
indefinite systems. The preconditioner is diagonal: Precond[i] is the inverse
of the i-th entry of a symmetric positive definite diagonal approximation.
When Precond is nil the identity is used.

Convergence is declared on the true relative residual ||b - A x|| / ||b||.
The Lanczos recurrence only tracks a preconditioned estimate, so when a cycle
stops on the estimate with the true residual still above Tolerance, MINRES
restarts on the current residual. MaxIterations bounds the total over cycles.
*/
type MINRES struct {
	Tolerance     float64
	MaxIterations int
	Precond       []float64
	Stats         SolverStats
}

func NewMINRES(tol float64, maxIterations int, precond []float64) *MINRES {
	return &MINRES{
		Tolerance:     tol,
		MaxIterations: maxIterations,
		Precond:       precond,
	}
}

func (mr *MINRES) Name() string { return SOLVER_MINRES.Print() }

func (mr *MINRES) applyPrecond(dst, r []float64) {
	if mr.Precond == nil {
		copy(dst, r)
		return
	}
	floats.MulTo(dst, mr.Precond, r)
}

func (mr *MINRES) Solve(A CSR, b []float64) (x []float64, err error) {
	var (
		n, _        = A.Dims()
		r           = make([]float64, n)
		bn          = floats.Norm(b, 2)
		total, itn  int
		relResidual = 1.
	)
	if len(b) != n {
		panic(fmt.Errorf("dimension mismatch: A is %dx%d, b has length %d", n, n, len(b)))
	}
	if mr.Precond != nil && len(mr.Precond) != n {
		panic(fmt.Errorf("preconditioner length %d does not match system size %d", len(mr.Precond), n))
	}
	x = make([]float64, n)
	if bn == 0 {
		mr.Stats = SolverStats{}
		return
	}
	copy(r, b)
	for total < mr.MaxIterations {
		if itn, err = mr.cycle(A, r, x, mr.MaxIterations-total, mr.Tolerance/relResidual); err != nil {
			return
		}
		total += itn
		// r = b - A x
		A.MulVec(r, x)
		floats.SubTo(r, b, r)
		newResidual := floats.Norm(r, 2) / bn
		if newResidual <= mr.Tolerance {
			mr.Stats = SolverStats{Iterations: total, RelativeResidual: newResidual}
			return
		}
		stalled := itn == 0 || !(newResidual < relResidual)
		relResidual = newResidual
		if stalled {
			break
		}
	}
	mr.Stats = SolverStats{Iterations: total, RelativeResidual: relResidual}
	err = &types.ConvergenceError{
		Iterations: total,
		Residual:   relResidual,
		Tolerance:  mr.Tolerance,
	}
	return
}

// cycle runs at most maxIt MINRES iterations on A dx = r, adding dx into x.
// It stops when the preconditioned residual estimate, relative to that of r,
// drops below tol.
func (mr *MINRES) cycle(A CSR, r, x []float64, maxIt int, tol float64) (itn int, err error) {
	var (
		n                        = len(r)
		r1, r2, y, v             = make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n)
		w, w1, w2                = make([]float64, n), make([]float64, n), make([]float64, n)
		beta1, beta, oldb        float64
		dbar, epsln, phibar      float64
		cs, sn                   = -1., 0.
		alfa, delta, gbar, gamma float64
		oldeps, phi              float64
		eps                      = math.Nextafter(1, 2) - 1
	)
	copy(r1, r)
	mr.applyPrecond(y, r1)
	if beta1 = floats.Dot(r1, y); beta1 < 0 {
		err = fmt.Errorf("preconditioner is not positive definite")
		return
	}
	if beta1 == 0 {
		return
	}
	beta1 = math.Sqrt(beta1)
	beta, phibar = beta1, beta1
	copy(r2, r1)
	for itn = 1; itn <= maxIt; itn++ {
		// Lanczos step
		floats.ScaleTo(v, 1/beta, y)
		A.MulVec(y, v)
		if itn >= 2 {
			floats.AddScaled(y, -beta/oldb, r1)
		}
		alfa = floats.Dot(v, y)
		floats.AddScaled(y, -alfa/beta, r2)
		copy(r1, r2)
		copy(r2, y)
		mr.applyPrecond(y, r2)
		oldb = beta
		if beta = floats.Dot(r2, y); beta < 0 {
			err = fmt.Errorf("preconditioner is not positive definite")
			return
		}
		beta = math.Sqrt(beta)

		// Apply the previous rotation, then compute and apply the next one
		oldeps = epsln
		delta = cs*dbar + sn*alfa
		gbar = sn*dbar - cs*alfa
		epsln = sn * beta
		dbar = -cs * beta
		gamma = math.Max(math.Hypot(gbar, beta), eps)
		cs = gbar / gamma
		sn = beta / gamma
		phi = cs * phibar
		phibar = sn * phibar

		// Update the solution along the new search direction
		copy(w1, w2)
		copy(w2, w)
		for i := range w {
			w[i] = (v[i] - oldeps*w1[i] - delta*w2[i]) / gamma
		}
		floats.AddScaled(x, phi, w)

		if phibar/beta1 <= tol || beta == 0 {
			return
		}
	}
	return maxIt, nil
}

// ResidualNorm returns ||A x - b||_2
func ResidualNorm(A CSR, x, b []float64) float64 {
	r := A.MulVec(nil, x)
	floats.Sub(r, b)
	return floats.Norm(r, 2)
}

// RelativeResidual returns ||A x - b||_2 / ||b||_2, or the absolute residual
// when b is zero
func RelativeResidual(A CSR, x, b []float64) float64 {
	var (
		rn = ResidualNorm(A, x, b)
		bn = floats.Norm(b, 2)
	)
	if bn == 0 {
		return rn
	}
	return rn / bn
}
