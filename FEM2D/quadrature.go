package FEM2D

import "fmt"

/*
Quadrature holds a symmetric integration rule on the reference triangle
(0,0), (1,0), (0,1). The weights sum to the reference area, 1/2.
*/
type Quadrature struct {
	R, S, W []float64
	Nq      int
	Degree  int
}

// NewQuadrature returns the smallest available rule exact for polynomials of
// the requested degree. Taylor-Hood assembly needs at least degree 2.
func NewQuadrature(degree int) (q *Quadrature, err error) {
	switch {
	case degree < 2:
		err = fmt.Errorf("quadrature degree %d is below 2, which cannot integrate the P2 stiffness and P2-P1 coupling exactly", degree)
	case degree == 2:
		q = newSymmetricRule(2,
			[]float64{1. / 6.},
			[]float64{1. / 3.})
	case degree <= 4:
		// Dunavant degree 4, six points
		q = newSymmetricRule(4,
			[]float64{0.44594849091596488632, 0.09157621350977074346},
			[]float64{0.22338158967801146570, 0.10995174365532186764})
	default:
		err = fmt.Errorf("quadrature degree %d not available, maximum is 4", degree)
	}
	return
}

// newSymmetricRule expands orbits of the form (a, a, 1-2a) into points,
// weights are given relative to the unit area and are scaled by 1/2
func newSymmetricRule(degree int, A, W []float64) (q *Quadrature) {
	q = &Quadrature{Degree: degree}
	for i, a := range A {
		b := 1 - 2*a
		for _, rs := range [3][2]float64{{a, a}, {b, a}, {a, b}} {
			q.R = append(q.R, rs[0])
			q.S = append(q.S, rs[1])
			q.W = append(q.W, 0.5*W[i])
		}
	}
	q.Nq = len(q.W)
	return
}
