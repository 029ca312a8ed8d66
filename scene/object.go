package scene

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/soypat/atlasmesh/internal/d3"
	"github.com/soypat/atlasmesh/render"
	"gonum.org/v1/gonum/spatial/r3"
)

// Material is a surface colour shared between objects.
type Material struct {
	Name string
	// Diffuse is the RGB diffuse colour in [0, 1].
	Diffuse [3]float64
	Alpha   float64
	// Transparent enables alpha blending.
	Transparent bool
}

// Object is a scene node. Mesh vertices are relative to Location; objects
// without a mesh act as empties that only group children.
type Object struct {
	ID        uuid.UUID
	Name      string
	Mesh      *render.Mesh
	Location  r3.Vec
	Hidden    bool
	Selected  bool
	Materials []*Material
	// ShowTransparent draws the object with material transparency.
	ShowTransparent bool
	SmoothShade     bool
	Modifiers       []Modifier

	parent *Object
}

// Parent returns the parent object or nil.
func (o *Object) Parent() *Object { return o.parent }

// IsEmpty reports whether o carries no mesh data.
func (o *Object) IsEmpty() bool { return o.Mesh == nil }

// AddModifier appends m to the modifier stack.
func (o *Object) AddModifier(m Modifier) { o.Modifiers = append(o.Modifiers, m) }

// Modifier returns the modifier named name.
func (o *Object) Modifier(name string) Modifier {
	for _, m := range o.Modifiers {
		if m.ModifierName() == name {
			return m
		}
	}
	return nil
}

// Evaluated returns the mesh with every modifier applied, leaving o unchanged.
func (o *Object) Evaluated() (*render.Mesh, error) {
	if o.Mesh == nil {
		return nil, nil
	}
	m := o.Mesh
	for _, mod := range o.Modifiers {
		next, err := mod.Apply(m)
		if err != nil {
			return nil, errors.Wrapf(err, "object %q modifier %q", o.Name, mod.ModifierName())
		}
		m = next
	}
	return m, nil
}

// ApplyModifier bakes the named modifier into the mesh data and removes it
// from the stack. Modifiers before it are left in place.
func (o *Object) ApplyModifier(name string) error {
	for i, mod := range o.Modifiers {
		if mod.ModifierName() != name {
			continue
		}
		if o.Mesh != nil {
			m, err := mod.Apply(o.Mesh)
			if err != nil {
				return errors.Wrapf(err, "object %q modifier %q", o.Name, name)
			}
			o.Mesh = m
		}
		if r, ok := mod.(*Remesh); ok && r.SmoothShade {
			o.SmoothShade = true
		}
		o.Modifiers = append(o.Modifiers[:i], o.Modifiers[i+1:]...)
		return nil
	}
	return errors.Errorf("object %q has no modifier %q", o.Name, name)
}

// Smooth reports whether o is drawn with smooth shading.
func (o *Object) Smooth() bool {
	if o.SmoothShade {
		return true
	}
	for _, mod := range o.Modifiers {
		if r, ok := mod.(*Remesh); ok && r.SmoothShade {
			return true
		}
	}
	return false
}

// ApplyScale scales mesh data about the object origin.
func (o *Object) ApplyScale(s float64) {
	if o.Mesh != nil {
		o.Mesh.Transform(d3.Scaling(r3.Vec{}, d3.Elem(s)))
	}
}

// SetOrigin moves the object origin to p without moving its geometry.
func (o *Object) SetOrigin(p r3.Vec) {
	if o.Mesh != nil {
		o.Mesh.Transform(d3.Translation(r3.Sub(o.Location, p)))
	}
	o.Location = p
}
