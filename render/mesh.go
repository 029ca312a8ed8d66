package render

import (
	"io"
	"math"

	"github.com/pkg/errors"
	"github.com/soypat/atlasmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is an indexed triangle mesh. Faces index Vertices from 0.
type Mesh struct {
	Vertices []r3.Vec
	Faces    [][3]int
}

// NewMesh builds an indexed mesh from a triangle soup. Vertices closer than
// tol on every axis are shared; tol <= 0 only shares identical vertices.
// Triangles that collapse after sharing are dropped.
func NewMesh(triangles []r3.Triangle, tol float64) *Mesh {
	m := &Mesh{Faces: make([][3]int, 0, len(triangles))}
	exact := make(map[r3.Vec]int)
	grid := make(map[[3]int64]int)
	ri := 1 / tol
	index := func(v r3.Vec) int {
		if tol <= 0 {
			idx, ok := exact[v]
			if !ok {
				idx = len(m.Vertices)
				exact[v] = idx
				m.Vertices = append(m.Vertices, v)
			}
			return idx
		}
		// Scale vertex to be integer in tolerance-space.
		s := r3.Scale(ri, v)
		key := [3]int64{int64(math.Round(s.X)), int64(math.Round(s.Y)), int64(math.Round(s.Z))}
		idx, ok := grid[key]
		if !ok {
			idx = len(m.Vertices)
			grid[key] = idx
			m.Vertices = append(m.Vertices, v)
		}
		return idx
	}
	for _, t := range triangles {
		f := [3]int{index(t[0]), index(t[1]), index(t[2])}
		if f[0] == f[1] || f[1] == f[2] || f[2] == f[0] {
			continue
		}
		m.Faces = append(m.Faces, f)
	}
	return m
}

// Triangle returns face i as a triangle.
func (m *Mesh) Triangle(i int) r3.Triangle {
	f := m.Faces[i]
	return r3.Triangle{m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]}
}

// Triangles returns every face as a triangle.
func (m *Mesh) Triangles() []r3.Triangle {
	out := make([]r3.Triangle, len(m.Faces))
	for i := range m.Faces {
		out[i] = m.Triangle(i)
	}
	return out
}

// Empty reports whether the mesh has no faces.
func (m *Mesh) Empty() bool { return m == nil || len(m.Faces) == 0 }

// Validate checks every face index is in range.
func (m *Mesh) Validate() error {
	for i, f := range m.Faces {
		for _, v := range f {
			if v < 0 || v >= len(m.Vertices) {
				return errors.Errorf("face %d references vertex %d of %d", i, v, len(m.Vertices))
			}
		}
	}
	for i, v := range m.Vertices {
		if d3.Bad(v) {
			return errors.Errorf("vertex %d is not finite", i)
		}
	}
	return nil
}

// Bounds returns the bounding box of the vertices.
func (m *Mesh) Bounds() d3.Box {
	bb := d3.EmptyBox()
	for _, v := range m.Vertices {
		bb = bb.Include(v)
	}
	return bb
}

// Clone returns a deep copy of m.
func (m *Mesh) Clone() *Mesh {
	return &Mesh{
		Vertices: append([]r3.Vec(nil), m.Vertices...),
		Faces:    append([][3]int(nil), m.Faces...),
	}
}

// Append adds the vertices and faces of other to m.
func (m *Mesh) Append(other *Mesh) {
	off := len(m.Vertices)
	m.Vertices = append(m.Vertices, other.Vertices...)
	for _, f := range other.Faces {
		m.Faces = append(m.Faces, [3]int{f[0] + off, f[1] + off, f[2] + off})
	}
}

// Transform applies t to every vertex in place. Transforms that mirror the
// mesh also reverse the face winding so normals keep pointing outward.
func (m *Mesh) Transform(t d3.Transform) {
	for i, v := range m.Vertices {
		m.Vertices[i] = t.Transform(v)
	}
	if t.Det() < 0 {
		for i, f := range m.Faces {
			m.Faces[i] = [3]int{f[0], f[2], f[1]}
		}
	}
}

// VertexNormals returns area weighted unit normals for each vertex.
func (m *Mesh) VertexNormals() []r3.Vec {
	normals := make([]r3.Vec, len(m.Vertices))
	for i, f := range m.Faces {
		n := triangleNormal(m.Triangle(i))
		for _, v := range f {
			normals[v] = r3.Add(normals[v], n)
		}
	}
	for i, n := range normals {
		if r3.Norm(n) > 0 {
			normals[i] = r3.Unit(n)
		}
	}
	return normals
}

// neighbors returns the unique vertices connected to each vertex by an edge.
func (m *Mesh) neighbors() [][]int {
	conn := make([][]int, len(m.Vertices))
	add := func(a, b int) {
		for _, existing := range conn[a] {
			if existing == b {
				return
			}
		}
		conn[a] = append(conn[a], b)
	}
	for _, f := range m.Faces {
		for j := 0; j < 3; j++ {
			add(f[j], f[(j+1)%3])
			add(f[(j+1)%3], f[j])
		}
	}
	return conn
}

// BoundaryEdges returns the edges used by a single face, each with its lower
// vertex index first. A closed surface has none.
func (m *Mesh) BoundaryEdges() [][2]int {
	count := make(map[[2]int]int)
	var order [][2]int
	for _, f := range m.Faces {
		for j := 0; j < 3; j++ {
			e := [2]int{f[j], f[(j+1)%3]}
			if e[0] > e[1] {
				e[0], e[1] = e[1], e[0]
			}
			if count[e] == 0 {
				order = append(order, e)
			}
			count[e]++
		}
	}
	var open [][2]int
	for _, e := range order {
		if count[e] == 1 {
			open = append(open, e)
		}
	}
	return open
}

// Components splits the mesh into its edge connected parts, largest first.
func (m *Mesh) Components() []*Mesh {
	parent := make([]int, len(m.Vertices))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	for _, f := range m.Faces {
		a, b, c := find(f[0]), find(f[1]), find(f[2])
		parent[b] = a
		parent[find(c)] = a
	}
	byRoot := make(map[int]*Mesh)
	remap := make(map[int]map[int]int)
	var order []int
	for _, f := range m.Faces {
		root := find(f[0])
		sub, ok := byRoot[root]
		if !ok {
			sub = &Mesh{}
			byRoot[root] = sub
			remap[root] = make(map[int]int)
			order = append(order, root)
		}
		var nf [3]int
		for j, v := range f {
			idx, ok := remap[root][v]
			if !ok {
				idx = len(sub.Vertices)
				remap[root][v] = idx
				sub.Vertices = append(sub.Vertices, m.Vertices[v])
			}
			nf[j] = idx
		}
		sub.Faces = append(sub.Faces, nf)
	}
	out := make([]*Mesh, len(order))
	for i, root := range order {
		out[i] = byRoot[root]
	}
	// Stable insertion sort keeps discovery order among equal sizes.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && len(out[j].Faces) > len(out[j-1].Faces); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// Renderer returns a Renderer streaming the faces of m.
func (m *Mesh) Renderer() Renderer {
	return &meshReader{m: m}
}

type meshReader struct {
	m    *Mesh
	next int
}

func (r *meshReader) ReadTriangles(dst []r3.Triangle) (int, error) {
	if r.next >= len(r.m.Faces) {
		return 0, io.EOF
	}
	n := 0
	for ; n < len(dst) && r.next < len(r.m.Faces); n++ {
		dst[n] = r.m.Triangle(r.next)
		r.next++
	}
	return n, nil
}
