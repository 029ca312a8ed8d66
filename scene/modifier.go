package scene

import (
	"github.com/soypat/atlasmesh/internal/d3"
	"github.com/soypat/atlasmesh/render"
	"gonum.org/v1/gonum/spatial/r3"
)

// Modifier is a non destructive mesh operation evaluated on top of an
// object's mesh data.
type Modifier interface {
	ModifierName() string
	Apply(m *render.Mesh) (*render.Mesh, error)
}

// Remesh resamples the mesh on a regular grid.
type Remesh struct {
	Name        string               `json:"name"`
	Options     render.RemeshOptions `json:"options"`
	SmoothShade bool                 `json:"smooth_shade"`
}

func (r *Remesh) ModifierName() string { return r.Name }

func (r *Remesh) Apply(m *render.Mesh) (*render.Mesh, error) {
	return render.Remesh(m, r.Options)
}

// Mirror appends a copy of the mesh reflected through the object origin
// along each enabled axis.
type Mirror struct {
	Name string  `json:"name"`
	Axis [3]bool `json:"axis"`
}

func (mr *Mirror) ModifierName() string { return mr.Name }

func (mr *Mirror) Apply(m *render.Mesh) (*render.Mesh, error) {
	out := m.Clone()
	for axis, on := range mr.Axis {
		if !on {
			continue
		}
		mirrored := out.Clone()
		mirrored.Transform(d3.Mirroring(axis, r3.Vec{}))
		out.Append(mirrored)
	}
	return out, nil
}
