package Stokes2D

import (
	"github.com/notargets/gostokes/FEM2D"
	"github.com/notargets/gostokes/utils"
)

// ComputeKernels evaluates every element kernel, splitting the elements into
// ProcLimit contiguous buckets (NumCPU when zero). Each goroutine writes only
// the kernels of its own bucket.
func ComputeKernels(ms *FEM2D.MixedSpace, nu float64, f BodyForce, quad *FEM2D.Quadrature,
	ProcLimit int) (kernels []ElementKernel) {
	var (
		K  = ms.Mesh().NumElements()
		NP = utils.NewParallelDegree(ProcLimit, K)
		pm = utils.NewPartitionMap(NP, K)
	)
	kernels = make([]ElementKernel, K)
	pm.ParallelFor(func(bn, kMin, kMax int) {
		for k := kMin; k < kMax; k++ {
			kernels[k].Compute(ms, k, nu, f, quad)
		}
	})
	return
}
