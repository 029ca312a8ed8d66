// Package scene is a small host independent scene graph: named objects with
// optional meshes, parent links, visibility, selection, materials and a
// modifier stack, plus the parent/child tools that operate on it.
package scene

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/soypat/atlasmesh/render"
)

// ErrNoActiveObject is returned by tools that need an active object.
var ErrNoActiveObject = errors.New("no active object")

// Scene holds objects in creation order. It is not safe for concurrent use.
type Scene struct {
	objects   []*Object
	active    *Object
	materials []*Material
}

// New returns an empty scene.
func New() *Scene { return &Scene{} }

// NewObject adds an object. A nil mesh creates an empty.
func (s *Scene) NewObject(name string, mesh *render.Mesh) *Object {
	o := &Object{ID: uuid.New(), Name: name, Mesh: mesh}
	s.objects = append(s.objects, o)
	return o
}

// Objects returns every object in creation order.
func (s *Scene) Objects() []*Object {
	return append([]*Object(nil), s.objects...)
}

// Len returns the number of objects.
func (s *Scene) Len() int { return len(s.objects) }

// ByName returns the first object named name or nil.
func (s *Scene) ByName(name string) *Object {
	for _, o := range s.objects {
		if o.Name == name {
			return o
		}
	}
	return nil
}

// Active returns the active object, which may be nil.
func (s *Scene) Active() *Object { return s.active }

// SetActive makes o the active object. o may be nil.
func (s *Scene) SetActive(o *Object) { s.active = o }

// SetParent links child under parent. A nil parent clears the link.
func (s *Scene) SetParent(child, parent *Object) error {
	for p := parent; p != nil; p = p.parent {
		if p == child {
			return errors.Errorf("parenting %q to %q would create a cycle", child.Name, parent.Name)
		}
	}
	child.parent = parent
	return nil
}

// Children returns the objects whose parent is o, in scene order.
func (s *Scene) Children(o *Object) []*Object {
	var out []*Object
	for _, ob := range s.objects {
		if ob.parent == o && o != nil {
			out = append(out, ob)
		}
	}
	return out
}

// Roots returns objects without a parent.
func (s *Scene) Roots() []*Object {
	var out []*Object
	for _, ob := range s.objects {
		if ob.parent == nil {
			out = append(out, ob)
		}
	}
	return out
}

// Selected returns the selected objects.
func (s *Scene) Selected() []*Object {
	var out []*Object
	for _, ob := range s.objects {
		if ob.Selected {
			out = append(out, ob)
		}
	}
	return out
}

// DeselectAll clears the selection.
func (s *Scene) DeselectAll() {
	for _, ob := range s.objects {
		ob.Selected = false
	}
}

// Delete removes o from the scene. Its children lose their parent.
func (s *Scene) Delete(o *Object) {
	for _, ob := range s.objects {
		if ob.parent == o {
			ob.parent = nil
		}
	}
	for i, ob := range s.objects {
		if ob == o {
			s.objects = append(s.objects[:i], s.objects[i+1:]...)
			break
		}
	}
	if s.active == o {
		s.active = nil
	}
}

// NewMaterial creates a material owned by the scene.
func (s *Scene) NewMaterial(name string) *Material {
	m := &Material{Name: name, Diffuse: [3]float64{0.8, 0.8, 0.8}, Alpha: 1}
	s.materials = append(s.materials, m)
	return m
}

// Materials returns every material created in the scene.
func (s *Scene) Materials() []*Material {
	return append([]*Material(nil), s.materials...)
}
