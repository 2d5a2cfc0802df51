package FEM2D

import (
	"fmt"

	"github.com/notargets/gostokes/geometry2D"
	"github.com/notargets/gostokes/types"
)

/*
FunctionSpace is a continuous Lagrange space of degree Degree with ValueDim
components, built on a mesh it borrows.

Scalar nodes are numbered with the mesh vertices first, keeping the vertex
index, then one node per unique edge for degree 2, in first-encounter order
over the elements. Vector spaces block the components, so component c of
node n is global DOF c*NNodes + n.
*/
type FunctionSpace struct {
	Mesh             *geometry2D.Mesh
	Degree, ValueDim int
	Element          *LagrangeBasis2D
	NNodes           int
	EToN             [][]int // Element to global scalar node, Np per element
	NodeX, NodeY     []float64
}

func NewFunctionSpace(mesh *geometry2D.Mesh, degree, valueDim int) (fs *FunctionSpace, err error) {
	switch {
	case mesh == nil:
		err = &types.InvalidMeshError{Reason: "nil mesh"}
		return
	case mesh.NumElements() == 0:
		err = &types.InvalidMeshError{Reason: "mesh has zero elements"}
		return
	}
	if valueDim < 1 {
		panic(fmt.Errorf("value dimension must be >= 1, have %d", valueDim))
	}
	var (
		K  = mesh.NumElements()
		Nv = mesh.NumVertices()
	)
	fs = &FunctionSpace{
		Mesh:     mesh,
		Degree:   degree,
		ValueDim: valueDim,
		Element:  NewLagrangeBasis2D(degree),
		NNodes:   Nv,
		EToN:     make([][]int, K),
		NodeX:    append([]float64{}, mesh.VX...),
		NodeY:    append([]float64{}, mesh.VY...),
	}
	var (
		Np        = fs.Element.Np
		edgeNodes map[types.EdgeKey]int
	)
	if degree == 2 {
		edgeNodes = make(map[types.EdgeKey]int, 3*K/2+mesh.NumVertices())
	}
	for k, verts := range mesh.EToV {
		fs.EToN[k] = make([]int, Np)
		copy(fs.EToN[k], verts[:])
		for e := 3; e < Np; e++ {
			var (
				ev   = EdgeVertices[e-3]
				v0   = verts[ev[0]]
				v1   = verts[ev[1]]
				key  = types.NewEdgeKey([2]int{v0, v1})
				node int
				ok   bool
			)
			if node, ok = edgeNodes[key]; !ok {
				node = fs.NNodes
				edgeNodes[key] = node
				fs.NNodes++
				fs.NodeX = append(fs.NodeX, 0.5*(mesh.VX[v0]+mesh.VX[v1]))
				fs.NodeY = append(fs.NodeY, 0.5*(mesh.VY[v0]+mesh.VY[v1]))
			}
			fs.EToN[k][e] = node
		}
	}
	return
}

// NumDOFs is the number of global unknowns of the space
func (fs *FunctionSpace) NumDOFs() int { return fs.ValueDim * fs.NNodes }

// LocalDOFs is the number of unknowns per element
func (fs *FunctionSpace) LocalDOFs() int { return fs.ValueDim * fs.Element.Np }

// Component splits local DOF l into its component and local scalar node
func (fs *FunctionSpace) Component(l int) (c, j int) {
	return l / fs.Element.Np, l % fs.Element.Np
}

// DOF maps element k, local DOF l to the global DOF
func (fs *FunctionSpace) DOF(k, l int) int {
	c, j := fs.Component(l)
	return c*fs.NNodes + fs.EToN[k][j]
}

// Basis evaluates the scalar shape function behind local DOF l
func (fs *FunctionSpace) Basis(l int, r, s float64) float64 {
	_, j := fs.Component(l)
	return fs.Element.Eval(j, r, s)
}

// GradBasis evaluates the reference gradient of the shape function behind local DOF l
func (fs *FunctionSpace) GradBasis(l int, r, s float64) (dr, ds float64) {
	_, j := fs.Component(l)
	return fs.Element.EvalGrad(j, r, s)
}

// DOFCoordinates returns the location and component of global DOF g
func (fs *FunctionSpace) DOFCoordinates(g int) (x, y float64, c int) {
	c = g / fs.NNodes
	n := g % fs.NNodes
	return fs.NodeX[n], fs.NodeY[n], c
}

/*
MixedSpace stacks the Taylor-Hood pair into one unknown vector:

	[ u_x nodes | u_y nodes | p nodes ]
	  Offsets[0]              Offsets[1]

Both spaces share the mesh instance, so their element loops line up.
*/
type MixedSpace struct {
	Velocity, Pressure *FunctionSpace
	Offsets            [2]int
}

// NewTaylorHood builds P2 vector velocity and P1 scalar pressure on the same
// mesh. The degrees are fixed together for inf-sup stability.
func NewTaylorHood(mesh *geometry2D.Mesh) (ms *MixedSpace, err error) {
	if mesh == nil {
		err = &types.InvalidMeshError{Reason: "nil mesh"}
		return
	}
	if err = mesh.Validate(); err != nil {
		return
	}
	ms = &MixedSpace{}
	if ms.Velocity, err = NewFunctionSpace(mesh, 2, 2); err != nil {
		return nil, err
	}
	if ms.Pressure, err = NewFunctionSpace(mesh, 1, 1); err != nil {
		return nil, err
	}
	ms.Offsets = [2]int{0, ms.Velocity.NumDOFs()}
	return
}

func (ms *MixedSpace) NumDOFs() int {
	return ms.Velocity.NumDOFs() + ms.Pressure.NumDOFs()
}

func (ms *MixedSpace) Mesh() *geometry2D.Mesh { return ms.Velocity.Mesh }

// LocalDOFs is the size of the element system, velocity first then pressure
func (ms *MixedSpace) LocalDOFs() int {
	return ms.Velocity.LocalDOFs() + ms.Pressure.LocalDOFs()
}

// DOF maps element k, mixed local DOF l to the stacked global DOF
func (ms *MixedSpace) DOF(k, l int) int {
	Nu := ms.Velocity.LocalDOFs()
	if l < Nu {
		return ms.Offsets[0] + ms.Velocity.DOF(k, l)
	}
	return ms.Offsets[1] + ms.Pressure.DOF(k, l-Nu)
}

// Split returns views of the velocity and pressure parts of a stacked vector
func (ms *MixedSpace) Split(x []float64) (u, p []float64) {
	if len(x) != ms.NumDOFs() {
		panic(fmt.Errorf("vector length %d does not match mixed space size %d", len(x), ms.NumDOFs()))
	}
	return x[ms.Offsets[0]:ms.Offsets[1]], x[ms.Offsets[1]:]
}

/*
AffineMap is the map from the reference triangle to element k

	x = x0 + J [r, s]^T
*/
type AffineMap struct {
	X0, Y0 float64
	J      [2][2]float64
	Det    float64
}

func NewAffineMap(mesh *geometry2D.Mesh, k int) (am AffineMap) {
	x, y := mesh.ElementVertices(k)
	am = AffineMap{
		X0: x[0],
		Y0: y[0],
		J:  [2][2]float64{{x[1] - x[0], x[2] - x[0]}, {y[1] - y[0], y[2] - y[0]}},
	}
	am.Det = am.J[0][0]*am.J[1][1] - am.J[0][1]*am.J[1][0]
	return
}

func (am AffineMap) ToPhysical(r, s float64) (x, y float64) {
	return am.X0 + am.J[0][0]*r + am.J[0][1]*s, am.Y0 + am.J[1][0]*r + am.J[1][1]*s
}

// GradToPhysical applies J^-T to a reference gradient
func (am AffineMap) GradToPhysical(dr, ds float64) (dx, dy float64) {
	dx = (am.J[1][1]*dr - am.J[1][0]*ds) / am.Det
	dy = (-am.J[0][1]*dr + am.J[0][0]*ds) / am.Det
	return
}
