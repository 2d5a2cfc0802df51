package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypes(t *testing.T) {
	{ // Test packed int for edge labeling
		en := NewEdgeKey([2]int{1, 0})
		assert.Equal(t, EdgeKey(1<<32), en)

		en = NewEdgeKey([2]int{0, 1})
		assert.Equal(t, EdgeKey(1<<32), en)

		en = NewEdgeKey([2]int{100, 1})
		assert.Equal(t, EdgeKey(100*(1<<32)+1), en)

		en = NewEdgeKey([2]int{1<<32 - 1, 1})
		assert.Equal(t, EdgeKey((1<<32-1)<<32+1), en)

		assert.Panics(t, func() { NewEdgeKey([2]int{-1, 2}) })
	}
	{ // BC labels from input files
		tokens := []string{"Inlet", "WALLS", " noslip ", "outflow", "periodic"}
		flags := []BCFLAG{BC_In, BC_Wall, BC_Wall, BC_Out, BC_None}
		for i, token := range tokens {
			assert.Equal(t, flags[i], NewBCFLAG(token))
		}
		assert.Equal(t, "Inflow", BC_In.String())
		assert.Equal(t, "None", BC_None.String())
		// Printed names read back as the same flag
		for _, bf := range []BCFLAG{BC_None, BC_In, BC_Wall, BC_Out} {
			assert.Equal(t, bf, NewBCFLAG(bf.String()))
		}
	}
	{ // Error kinds survive wrapping
		var (
			err   error = fmt.Errorf("assembly: %w", &NoBoundaryConditionError{Name: "inlet"})
			nbErr *NoBoundaryConditionError
			cvErr *ConvergenceError
		)
		assert.True(t, errors.As(err, &nbErr))
		assert.Equal(t, "inlet", nbErr.Name)
		assert.False(t, errors.As(err, &cvErr))
		assert.Contains(t, (&ConvergenceError{Iterations: 10, Residual: 1, Tolerance: 1e-10}).Error(), "10 iterations")
		assert.Contains(t, (&InvalidMeshError{Reason: "zero elements"}).Error(), "zero elements")
	}
}
