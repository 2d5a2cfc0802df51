package Stokes2D

import "math"

// BodyForce is a vector field evaluated at quadrature points
type BodyForce interface {
	Eval(x, y float64) [2]float64
}

/*
Forcing is the sinusoidal stand-in for a random body force:

	f(x,y) = Sigma * ( sin(2 pi x) cos(2 pi y), cos(2 pi x) sin(2 pi y) )

Sigma is the intensity and the only parameter.
*/
type Forcing struct {
	Sigma float64
}

func NewForcing(sigma float64) Forcing {
	return Forcing{Sigma: sigma}
}

func (f Forcing) Eval(x, y float64) (fv [2]float64) {
	var (
		sx, cx = math.Sincos(2 * math.Pi * x)
		sy, cy = math.Sincos(2 * math.Pi * y)
	)
	fv[0] = f.Sigma * sx * cy
	fv[1] = f.Sigma * cx * sy
	return
}
