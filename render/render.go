// Package render extracts triangle meshes from voxel masks and reads and
// writes them as OBJ and binary STL.
package render

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrNoSurface is returned when a volume has no boundary to extract, which is
// the case for empty or completely filled masks.
var ErrNoSurface = errors.New("no isosurface in volume")

// Renderer streams triangles. ReadTriangles returns io.EOF once every
// triangle has been read.
type Renderer interface {
	ReadTriangles(dst []r3.Triangle) (int, error)
}

func triangleNormal(t r3.Triangle) r3.Vec {
	return r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))
}
