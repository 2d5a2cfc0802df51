package geometry2D

import (
	"fmt"
	"math"

	graphics2D "github.com/notargets/avs/geometry"

	"github.com/notargets/gostokes/types"
)

type Point struct {
	X [2]float64
}

func NewPoint(x, y float64) Point {
	return Point{X: [2]float64{x, y}}
}

/*
Mesh is a triangulation of a 2D domain.

	VX, VY - vertex coordinates
	EToV   - element to vertex connectivity, counter-clockwise

When the mesh was produced by NewRectangleMesh, Nx and Ny hold the number of
cells along each axis and element 2*(j*Nx+i) and its successor tile cell (i,j).
*/
type Mesh struct {
	VX, VY    []float64
	EToV      [][3]int
	Low, High Point
	Nx, Ny    int
}

// NewMesh wraps an arbitrary triangulation. It is not validated.
func NewMesh(VX, VY []float64, EToV [][3]int) (m *Mesh) {
	m = &Mesh{
		VX:   VX,
		VY:   VY,
		EToV: EToV,
	}
	if len(VX) != 0 {
		m.Low = NewPoint(VX[0], VY[0])
		m.High = m.Low
		for i := range VX {
			m.Low.X[0], m.High.X[0] = math.Min(m.Low.X[0], VX[i]), math.Max(m.High.X[0], VX[i])
			m.Low.X[1], m.High.X[1] = math.Min(m.Low.X[1], VY[i]), math.Max(m.High.X[1], VY[i])
		}
	}
	return
}

/*
NewRectangleMesh triangulates [low, high] with nx by ny cells, each cell split
along its lower-left to upper-right diagonal into two triangles:

	v2 ----- v3
	|      / |
	|    /   |
	|  /     |
	v0 ----- v1     tris: (v0,v1,v3), (v0,v3,v2)

The last row and column of vertices are placed exactly on high so that
boundary predicates can compare coordinates directly.
*/
func NewRectangleMesh(low, high Point, nx, ny int) (m *Mesh, err error) {
	var (
		Nv     = (nx + 1) * (ny + 1)
		dx, dy = high.X[0] - low.X[0], high.X[1] - low.X[1]
	)
	if nx < 1 || ny < 1 {
		err = &types.InvalidMeshError{Reason: fmt.Sprintf("resolution must be at least 1x1, have %dx%d", nx, ny)}
		return
	}
	if !(dx > 0) || !(dy > 0) {
		err = &types.InvalidMeshError{Reason: fmt.Sprintf("degenerate rectangle [%v, %v]", low.X, high.X)}
		return
	}
	m = &Mesh{
		VX:   make([]float64, Nv),
		VY:   make([]float64, Nv),
		EToV: make([][3]int, 2*nx*ny),
		Low:  low,
		High: high,
		Nx:   nx,
		Ny:   ny,
	}
	coord := func(i, n int, lo, hi float64) float64 {
		if i == n {
			return hi
		}
		return lo + (hi-lo)*float64(i)/float64(n)
	}
	for j := 0; j <= ny; j++ {
		y := coord(j, ny, low.X[1], high.X[1])
		for i := 0; i <= nx; i++ {
			ind := i + j*(nx+1)
			m.VX[ind] = coord(i, nx, low.X[0], high.X[0])
			m.VY[ind] = y
		}
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			var (
				v0 = i + j*(nx+1)
				v1 = v0 + 1
				v2 = v0 + nx + 1
				v3 = v2 + 1
				k  = 2 * (i + j*nx)
			)
			m.EToV[k] = [3]int{v0, v1, v3}
			m.EToV[k+1] = [3]int{v0, v3, v2}
		}
	}
	return
}

func (m *Mesh) NumElements() int { return len(m.EToV) }
func (m *Mesh) NumVertices() int { return len(m.VX) }

// IsStructured reports whether the element layout of NewRectangleMesh holds
func (m *Mesh) IsStructured() bool {
	return m.Nx > 0 && m.Ny > 0 && len(m.EToV) == 2*m.Nx*m.Ny
}

// ElementVertices returns the coordinates of the three vertices of element k
func (m *Mesh) ElementVertices(k int) (x, y [3]float64) {
	for i, v := range m.EToV[k] {
		x[i], y[i] = m.VX[v], m.VY[v]
	}
	return
}

// Area returns the signed area of element k, positive for counter-clockwise
func (m *Mesh) Area(k int) float64 {
	x, y := m.ElementVertices(k)
	return 0.5 * ((x[1]-x[0])*(y[2]-y[0]) - (x[2]-x[0])*(y[1]-y[0]))
}

// Validate checks that the mesh has elements, that every element references
// existing vertices and that no element is degenerate or inverted
func (m *Mesh) Validate() (err error) {
	var (
		Nv = len(m.VX)
	)
	if len(m.EToV) == 0 {
		return &types.InvalidMeshError{Reason: "mesh has zero elements"}
	}
	if len(m.VY) != Nv {
		return &types.InvalidMeshError{Reason: fmt.Sprintf("have %d X and %d Y coordinates", Nv, len(m.VY))}
	}
	for k, verts := range m.EToV {
		for _, v := range verts {
			if v < 0 || v >= Nv {
				return &types.InvalidMeshError{Reason: fmt.Sprintf("element %d references vertex %d, have %d vertices", k, v, Nv)}
			}
		}
		if area := m.Area(k); !(area > 0) {
			return &types.InvalidMeshError{Reason: fmt.Sprintf("element %d is degenerate or clockwise, area = %v", k, area)}
		}
	}
	return
}

// ToGraphMesh converts the mesh to the avs triangle mesh used for plotting
func (m *Mesh) ToGraphMesh() (trisOut graphics2D.TriMesh) {
	pts := make([]graphics2D.Point, len(m.VX))
	for i := range m.VX {
		pts[i].X[0] = float32(m.VX[i])
		pts[i].X[1] = float32(m.VY[i])
	}
	tris := make([]graphics2D.Triangle, len(m.EToV))
	for k, verts := range m.EToV {
		tris[k].Nodes[0] = int32(verts[0])
		tris[k].Nodes[1] = int32(verts[1])
		tris[k].Nodes[2] = int32(verts[2])
	}
	trisOut = graphics2D.TriMesh{
		BaseGeometryClass: graphics2D.BaseGeometryClass{
			Geometry: pts,
		},
		Triangles:  tris,
		Attributes: nil,
	}
	return
}

// ReferenceCoordinates maps (x,y) into the (r,s) coordinates of element k,
// where the reference triangle is (0,0), (1,0), (0,1)
func (m *Mesh) ReferenceCoordinates(k int, x, y float64) (r, s float64) {
	var (
		vx, vy = m.ElementVertices(k)
		det    = (vx[1]-vx[0])*(vy[2]-vy[0]) - (vx[2]-vx[0])*(vy[1]-vy[0])
		dx, dy = x - vx[0], y - vy[0]
	)
	r = ((vy[2]-vy[0])*dx - (vx[2]-vx[0])*dy) / det
	s = (-(vy[1]-vy[0])*dx + (vx[1]-vx[0])*dy) / det
	return
}

func insideReference(r, s float64) bool {
	tol := 1.e-10
	return r >= -tol && s >= -tol && r+s <= 1+tol
}

// Locate finds the element containing (x,y) and its reference coordinates.
// Structured meshes resolve the cell directly, anything else is searched.
func (m *Mesh) Locate(x, y float64) (k int, r, s float64, found bool) {
	if m.IsStructured() {
		var (
			dx = (m.High.X[0] - m.Low.X[0]) / float64(m.Nx)
			dy = (m.High.X[1] - m.Low.X[1]) / float64(m.Ny)
			i  = int(math.Floor((x - m.Low.X[0]) / dx))
			j  = int(math.Floor((y - m.Low.X[1]) / dy))
		)
		i = max(0, min(i, m.Nx-1))
		j = max(0, min(j, m.Ny-1))
		for kk := 2 * (i + j*m.Nx); kk < 2*(i+j*m.Nx)+2; kk++ {
			if r, s = m.ReferenceCoordinates(kk, x, y); insideReference(r, s) {
				return kk, r, s, true
			}
		}
	}
	for k = range m.EToV {
		if r, s = m.ReferenceCoordinates(k, x, y); insideReference(r, s) {
			return k, r, s, true
		}
	}
	return -1, 0, 0, false
}
