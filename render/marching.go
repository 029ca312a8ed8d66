package render

import (
	"math"

	"github.com/pkg/errors"
	"github.com/soypat/atlasmesh"
	"github.com/unixpickle/model3d/model3d"
	"gonum.org/v1/gonum/spatial/r3"
)

// searchIters is the number of bisection steps used to place each
// marching cubes vertex on the voxel boundary.
const searchIters = 8

// MarchingCubes extracts the boundary surface of a voxel mask. Voxel centers
// sit at integer coordinates scaled by Spacing, so the surface runs halfway
// between set and unset voxels. Voxels outside the mask count as unset and
// the surface is closed unless OpenEnd is set.
type MarchingCubes struct {
	mask    *atlasmesh.Mask
	spacing r3.Vec
	// open is the axis left open past its last index, or -1.
	open int
	buf  triangleBuffer
	mesh *Mesh
}

// NewMarchingCubes returns a renderer for the surface of m. A zero spacing
// leaves vertices in voxel index units. ErrNoSurface is returned for uniform
// masks.
func NewMarchingCubes(m *atlasmesh.Mask, spacing r3.Vec) (*MarchingCubes, error) {
	if m.Uniform() {
		return nil, ErrNoSurface
	}
	if spacing == (r3.Vec{}) {
		spacing = r3.Vec{X: 1, Y: 1, Z: 1}
	}
	return &MarchingCubes{mask: m, spacing: spacing, open: -1}, nil
}

// OpenEnd leaves the surface open where the mask was cut along axis: the
// last slice is treated as continuing past the mask and the surface ends at
// the last voxel centers of that axis. It must be called before the surface
// is computed.
func (mc *MarchingCubes) OpenEnd(axis int) error {
	if axis < 0 || axis > 2 {
		return errors.Errorf("open axis %d out of range [0, 2]", axis)
	}
	if mc.mesh != nil {
		return errors.New("surface already computed")
	}
	mc.open = axis
	return nil
}

// ReadTriangles implements Renderer. The surface is computed on first call.
func (mc *MarchingCubes) ReadTriangles(dst []r3.Triangle) (int, error) {
	if mc.mesh == nil {
		if _, err := mc.Mesh(); err != nil {
			return 0, err
		}
	}
	return mc.buf.Read(dst)
}

// Mesh returns the surface as an indexed mesh.
func (mc *MarchingCubes) Mesh() (*Mesh, error) {
	if mc.mesh != nil {
		return mc.mesh, nil
	}
	lo, hi, ok := mc.mask.Bounds()
	if !ok {
		return nil, ErrNoSurface
	}
	solid := &maskSolid{mask: mc.mask, open: mc.open}
	for axis := 0; axis < 3; axis++ {
		solid.lo[axis] = float64(lo[axis] - 1)
		solid.hi[axis] = float64(hi[axis] + 1)
	}
	last := -1
	if mc.open >= 0 {
		last = mc.mask.Shape[mc.open] - 1
		if hi[mc.open] == last {
			// Extrude past the cut so the side walls cross the last center.
			solid.hi[mc.open] = float64(last + 2)
		}
	}
	surface := model3d.MarchingCubesSearch(solid, 1, searchIters)
	tris := surface.TriangleSlice()
	soup := make([]r3.Triangle, 0, len(tris))
	for _, t := range tris {
		if last >= 0 && !belowCut(t, mc.open, float64(last)) {
			continue
		}
		var tri r3.Triangle
		for j, c := range t {
			tri[j] = r3.Vec{X: c.X * mc.spacing.X, Y: c.Y * mc.spacing.Y, Z: c.Z * mc.spacing.Z}
		}
		soup = append(soup, tri)
	}
	if len(soup) == 0 {
		return nil, ErrNoSurface
	}
	mesh := NewMesh(soup, 0)
	if mesh.Empty() {
		return nil, ErrNoSurface
	}
	mc.mesh = mesh
	mc.buf.Write(mesh.Triangles())
	return mesh, nil
}

// openTol is the slack, in voxels, allowed past the last center of an open
// axis.
const openTol = 1e-6

// belowCut reports whether t lies on the kept side of the plane at cut
// without lying in it.
func belowCut(t *model3d.Triangle, axis int, cut float64) bool {
	inPlane := 0
	for _, c := range t {
		v := c.Array()[axis]
		if v > cut+openTol {
			return false
		}
		if v > cut-openTol {
			inPlane++
		}
	}
	return inPlane < 3
}

// maskSolid exposes a mask as a model3d.Solid. Points map to their nearest
// voxel center. Along the open axis the voxel after the last slice repeats
// it.
type maskSolid struct {
	mask   *atlasmesh.Mask
	open   int
	lo, hi [3]float64
}

func (s *maskSolid) Min() model3d.Coord3D { return model3d.XYZ(s.lo[0], s.lo[1], s.lo[2]) }
func (s *maskSolid) Max() model3d.Coord3D { return model3d.XYZ(s.hi[0], s.hi[1], s.hi[2]) }

func (s *maskSolid) Contains(c model3d.Coord3D) bool {
	idx := [3]int{int(math.Round(c.X)), int(math.Round(c.Y)), int(math.Round(c.Z))}
	if s.open >= 0 && idx[s.open] == s.mask.Shape[s.open] {
		idx[s.open]--
	}
	return s.mask.At(idx[0], idx[1], idx[2])
}

func fromCoord(c model3d.Coord3D) r3.Vec { return r3.Vec{X: c.X, Y: c.Y, Z: c.Z} }

func toCoord(v r3.Vec) model3d.Coord3D { return model3d.XYZ(v.X, v.Y, v.Z) }
