package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"github.com/james-bowman/sparse/blas"
	"gonum.org/v1/gonum/mat"
)

// DOK is the assembly-time sparse matrix. It is written by a single owner and
// marked read only once the owner hands it off.
type DOK struct {
	M        *sparse.DOK
	readOnly bool
	name     string
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{
		sparse.NewDOK(nr, nc),
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix       { return m.M.T() }
func (m DOK) NNZ() int            { return m.M.NNZ() }
func (m DOK) IsReadOnly() bool    { return m.readOnly }

func (m *DOK) SetReadOnly(name ...string) DOK {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

func (m DOK) Set(i, j int, val float64) {
	m.checkWritable()
	m.M.Set(i, j, val)
}

// Accumulate adds val into entry (i,j), the scatter operation of assembly
func (m DOK) Accumulate(i, j int, val float64) {
	m.checkWritable()
	if val == 0 {
		return
	}
	m.M.Set(i, j, m.M.At(i, j)+val)
}

// DoNonZero visits every stored entry, order is unspecified
func (m DOK) DoNonZero(fn func(i, j int, v float64)) {
	m.M.DoNonZero(fn)
}

func (m DOK) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

func (m DOK) ToCSR() CSR {
	return CSR{
		M:        m.M.ToCSR(),
		readOnly: m.readOnly,
		name:     m.name,
	}
}

// CSR is the solve-time sparse matrix, used for matrix-vector products.
type CSR struct {
	M        *sparse.CSR
	readOnly bool
	name     string
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m CSR) Dims() (r, c int)              { return m.M.Dims() }
func (m CSR) At(i, j int) float64           { return m.M.At(i, j) }
func (m CSR) T() mat.Matrix                 { return m.M.T() }
func (m CSR) RawMatrix() *blas.SparseMatrix { return m.M.RawMatrix() }
func (m CSR) NNZ() int                      { return m.M.NNZ() }

// MulVec computes dst = A*x, allocating dst when it is nil
func (m CSR) MulVec(dst, x []float64) []float64 {
	var (
		nr, nc = m.Dims()
	)
	if len(x) != nc {
		panic(fmt.Errorf("dimension mismatch: matrix has %d columns, vector has length %d", nc, len(x)))
	}
	if dst == nil {
		dst = make([]float64, nr)
	}
	for i := range dst {
		dst[i] = 0
	}
	m.M.MulVecTo(dst, false, x)
	return dst
}

// Diagonal returns a copy of the main diagonal
func (m CSR) Diagonal() (diag []float64) {
	var (
		nr, _ = m.Dims()
		raw   = m.RawMatrix()
	)
	diag = make([]float64, nr)
	for i := 0; i < nr; i++ {
		for ii := raw.Indptr[i]; ii < raw.Indptr[i+1]; ii++ {
			if raw.Ind[ii] == i {
				diag[i] += raw.Data[ii]
			}
		}
	}
	return
}

// IsSymmetric checks A_ij == A_ji for every stored entry to within tol
func (m CSR) IsSymmetric(tol float64) bool {
	var (
		nr, _ = m.Dims()
		raw   = m.RawMatrix()
	)
	for i := 0; i < nr; i++ {
		for ii := raw.Indptr[i]; ii < raw.Indptr[i+1]; ii++ {
			j := raw.Ind[ii]
			d := raw.Data[ii] - m.M.At(j, i)
			if d > tol || d < -tol {
				return false
			}
		}
	}
	return true
}

func (m CSR) ToDense() *mat.Dense {
	return m.M.ToDense()
}
