package render

import (
	"math"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
	"gonum.org/v1/gonum/spatial/r3"
)

// RemeshMode selects how the resampled surface is post processed.
type RemeshMode int

const (
	// RemeshBlocks keeps the raw resampled surface.
	RemeshBlocks RemeshMode = iota
	// RemeshSmooth relaxes the resampled surface with Laplacian smoothing.
	RemeshSmooth
)

func (m RemeshMode) String() string {
	switch m {
	case RemeshBlocks:
		return "blocks"
	case RemeshSmooth:
		return "smooth"
	}
	return "unknown"
}

// RemeshOptions configures Remesh.
type RemeshOptions struct {
	// OctreeDepth sets the resolution to 2^OctreeDepth cells along the
	// longest side of the mesh bounds.
	OctreeDepth int
	Mode        RemeshMode
	// SmoothIterations is the number of Laplacian passes in smooth mode.
	SmoothIterations int
	// RemoveDisconnected drops pieces with fewer than Threshold times the
	// faces of the largest piece.
	RemoveDisconnected bool
	Threshold          float64
}

// DefaultRemeshOptions returns smooth remeshing at octree depth 7.
func DefaultRemeshOptions() RemeshOptions {
	return RemeshOptions{
		OctreeDepth:      7,
		Mode:             RemeshSmooth,
		SmoothIterations: 2,
		Threshold:        1,
	}
}

// Remesh resamples the volume enclosed by a mesh on a regular grid and
// extracts a new surface from it. A mesh left open on an axis aligned plane,
// such as a hemisphere export, is closed at its bounds.
func Remesh(m *Mesh, opts RemeshOptions) (*Mesh, error) {
	if m.Empty() {
		return nil, ErrNoSurface
	}
	if opts.OctreeDepth < 1 || opts.OctreeDepth > 12 {
		return nil, errors.Errorf("octree depth %d out of range [1, 12]", opts.OctreeDepth)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	size := m.Bounds().Size()
	longest := math.Max(size.X, math.Max(size.Y, size.Z))
	if longest <= 0 {
		return nil, ErrNoSurface
	}
	delta := longest / float64(int(1)<<opts.OctreeDepth)

	mm := model3d.NewMesh()
	for i := range m.Faces {
		t := m.Triangle(i)
		mm.Add(&model3d.Triangle{toCoord(t[0]), toCoord(t[1]), toCoord(t[2])})
	}
	solid := newVotingSolid(model3d.MeshToCollider(mm))
	surface := model3d.MarchingCubesSearch(solid, delta, searchIters)
	tris := surface.TriangleSlice()
	soup := make([]r3.Triangle, len(tris))
	for i, t := range tris {
		soup[i] = r3.Triangle{fromCoord(t[0]), fromCoord(t[1]), fromCoord(t[2])}
	}
	out := NewMesh(soup, 0)
	if out.Empty() {
		return nil, ErrNoSurface
	}
	if opts.RemoveDisconnected {
		out = keepLargest(out, opts.Threshold)
	}
	if opts.Mode == RemeshSmooth {
		Smooth(out, opts.SmoothIterations)
	}
	return out, nil
}

// rayDirections are cast by votingSolid. A hole lying in a plane normal to
// one axis is crossed by at most two of them.
var rayDirections = [...]model3d.Coord3D{
	{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {Z: 1}, {Z: -1},
	{X: 0.5224892708603626, Y: 0.10494477243214506, Z: 0.43558938446126527},
}

// votingSolid decides containment by the parity of ray crossings, taking the
// majority over rayDirections.
type votingSolid struct {
	collider model3d.Collider
}

func newVotingSolid(c model3d.Collider) *votingSolid { return &votingSolid{collider: c} }

func (s *votingSolid) Min() model3d.Coord3D { return s.collider.Min() }
func (s *votingSolid) Max() model3d.Coord3D { return s.collider.Max() }

func (s *votingSolid) Contains(c model3d.Coord3D) bool {
	if !model3d.InBounds(s, c) {
		return false
	}
	const need = len(rayDirections)/2 + 1
	inside, outside := 0, 0
	for _, dir := range rayDirections {
		ray := &model3d.Ray{Origin: c, Direction: dir}
		if s.collider.RayCollisions(ray, nil)%2 == 1 {
			inside++
		} else {
			outside++
		}
		if inside == need || outside == need {
			break
		}
	}
	return inside >= need
}

func keepLargest(m *Mesh, threshold float64) *Mesh {
	parts := m.Components()
	if len(parts) < 2 {
		return m
	}
	out := &Mesh{}
	largest := float64(len(parts[0].Faces))
	for _, p := range parts {
		if float64(len(p.Faces)) >= threshold*largest {
			out.Append(p)
		}
	}
	return out
}

// Smooth applies Laplacian smoothing in place: each pass moves every vertex
// to the mean of its edge neighbors.
func Smooth(m *Mesh, iterations int) {
	conn := m.neighbors()
	next := make([]r3.Vec, len(m.Vertices))
	for it := 0; it < iterations; it++ {
		for i, nb := range conn {
			if len(nb) == 0 {
				next[i] = m.Vertices[i]
				continue
			}
			var sum r3.Vec
			for _, j := range nb {
				sum = r3.Add(sum, m.Vertices[j])
			}
			next[i] = r3.Scale(1/float64(len(nb)), sum)
		}
		m.Vertices, next = next, m.Vertices
	}
}
