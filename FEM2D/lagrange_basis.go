package FEM2D

import "fmt"

/*
LagrangeBasis2D is the nodal Lagrange basis of degree P (1 or 2) on the
reference triangle, written in barycentric coordinates

	L0 = 1 - r - s, L1 = r, L2 = s

Node ordering is the three vertices followed, for P=2, by the midpoints of
edges (0,1), (1,2) and (2,0).
*/
type LagrangeBasis2D struct {
	P, Np int
}

// Vertex pairs of the edge midpoint nodes, in local node order
var EdgeVertices = [3][2]int{{0, 1}, {1, 2}, {2, 0}}

var gradL = [3][2]float64{{-1, -1}, {1, 0}, {0, 1}}

func NewLagrangeBasis2D(P int) (lb *LagrangeBasis2D) {
	switch P {
	case 1:
		lb = &LagrangeBasis2D{P: 1, Np: 3}
	case 2:
		lb = &LagrangeBasis2D{P: 2, Np: 6}
	default:
		panic(fmt.Errorf("Lagrange basis of degree %d not supported, have 1 or 2", P))
	}
	return
}

func barycentric(r, s float64) [3]float64 {
	return [3]float64{1 - r - s, r, s}
}

// Eval returns basis function j at (r,s)
func (lb *LagrangeBasis2D) Eval(j int, r, s float64) float64 {
	L := barycentric(r, s)
	if lb.P == 1 {
		return L[j]
	}
	if j < 3 {
		return L[j] * (2*L[j] - 1)
	}
	ev := EdgeVertices[j-3]
	return 4 * L[ev[0]] * L[ev[1]]
}

// EvalGrad returns the (r,s) gradient of basis function j at (r,s)
func (lb *LagrangeBasis2D) EvalGrad(j int, r, s float64) (dr, ds float64) {
	L := barycentric(r, s)
	if lb.P == 1 {
		return gradL[j][0], gradL[j][1]
	}
	if j < 3 {
		f := 4*L[j] - 1
		return f * gradL[j][0], f * gradL[j][1]
	}
	var (
		a, b = EdgeVertices[j-3][0], EdgeVertices[j-3][1]
	)
	dr = 4 * (L[a]*gradL[b][0] + L[b]*gradL[a][0])
	ds = 4 * (L[a]*gradL[b][1] + L[b]*gradL[a][1])
	return
}

// NodeRS returns the reference coordinates of node j
func (lb *LagrangeBasis2D) NodeRS(j int) (r, s float64) {
	var (
		vr = [3]float64{0, 1, 0}
		vs = [3]float64{0, 0, 1}
	)
	if j < 3 {
		return vr[j], vs[j]
	}
	ev := EdgeVertices[j-3]
	return 0.5 * (vr[ev[0]] + vr[ev[1]]), 0.5 * (vs[ev[0]] + vs[ev[1]])
}
