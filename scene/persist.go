package scene

import (
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/soypat/atlasmesh/render"
	"gonum.org/v1/gonum/spatial/r3"
)

type sceneJSON struct {
	Active    *uuid.UUID     `json:"active,omitempty"`
	Materials []materialJSON `json:"materials"`
	Objects   []objectJSON   `json:"objects"`
}

type materialJSON struct {
	Name        string     `json:"name"`
	Diffuse     [3]float64 `json:"diffuse"`
	Alpha       float64    `json:"alpha"`
	Transparent bool       `json:"transparent"`
}

type objectJSON struct {
	ID              uuid.UUID      `json:"id"`
	Name            string         `json:"name"`
	Parent          *uuid.UUID     `json:"parent,omitempty"`
	Location        [3]float64     `json:"location"`
	Hidden          bool           `json:"hidden,omitempty"`
	Selected        bool           `json:"selected,omitempty"`
	Materials       []int          `json:"materials,omitempty"`
	ShowTransparent bool           `json:"show_transparent,omitempty"`
	SmoothShade     bool           `json:"smooth_shade,omitempty"`
	Modifiers       []modifierJSON `json:"modifiers,omitempty"`
	Mesh            *meshJSON      `json:"mesh,omitempty"`
}

type modifierJSON struct {
	Type   string  `json:"type"`
	Remesh *Remesh `json:"remesh,omitempty"`
	Mirror *Mirror `json:"mirror,omitempty"`
}

type meshJSON struct {
	Vertices [][3]float64 `json:"vertices"`
	Faces    [][3]int     `json:"faces"`
}

// Save writes the scene as JSON. Materials are stored once and referenced
// by index from objects.
func (s *Scene) Save(w io.Writer) error {
	var doc sceneJSON
	matIndex := make(map[*Material]int)
	for _, m := range s.materials {
		matIndex[m] = len(doc.Materials)
		doc.Materials = append(doc.Materials, materialJSON(*m))
	}
	for _, o := range s.objects {
		oj := objectJSON{
			ID:              o.ID,
			Name:            o.Name,
			Location:        [3]float64{o.Location.X, o.Location.Y, o.Location.Z},
			Hidden:          o.Hidden,
			Selected:        o.Selected,
			ShowTransparent: o.ShowTransparent,
			SmoothShade:     o.SmoothShade,
		}
		if o.parent != nil {
			id := o.parent.ID
			oj.Parent = &id
		}
		for _, m := range o.Materials {
			idx, ok := matIndex[m]
			if !ok {
				idx = len(doc.Materials)
				matIndex[m] = idx
				doc.Materials = append(doc.Materials, materialJSON(*m))
			}
			oj.Materials = append(oj.Materials, idx)
		}
		for _, mod := range o.Modifiers {
			switch m := mod.(type) {
			case *Remesh:
				oj.Modifiers = append(oj.Modifiers, modifierJSON{Type: "remesh", Remesh: m})
			case *Mirror:
				oj.Modifiers = append(oj.Modifiers, modifierJSON{Type: "mirror", Mirror: m})
			default:
				return errors.Errorf("object %q: cannot save modifier of type %T", o.Name, mod)
			}
		}
		if o.Mesh != nil {
			mj := &meshJSON{Vertices: make([][3]float64, len(o.Mesh.Vertices)), Faces: o.Mesh.Faces}
			for i, v := range o.Mesh.Vertices {
				mj.Vertices[i] = [3]float64{v.X, v.Y, v.Z}
			}
			oj.Mesh = mj
		}
		doc.Objects = append(doc.Objects, oj)
	}
	if s.active != nil {
		id := s.active.ID
		doc.Active = &id
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	return enc.Encode(doc)
}

// Load reads a scene written by Save.
func Load(r io.Reader) (*Scene, error) {
	var doc sceneJSON
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decode scene")
	}
	s := New()
	for i := range doc.Materials {
		m := Material(doc.Materials[i])
		s.materials = append(s.materials, &m)
	}
	byID := make(map[uuid.UUID]*Object, len(doc.Objects))
	for _, oj := range doc.Objects {
		if _, dup := byID[oj.ID]; dup {
			return nil, errors.Errorf("duplicate object id %s", oj.ID)
		}
		o := &Object{
			ID:              oj.ID,
			Name:            oj.Name,
			Location:        r3.Vec{X: oj.Location[0], Y: oj.Location[1], Z: oj.Location[2]},
			Hidden:          oj.Hidden,
			Selected:        oj.Selected,
			ShowTransparent: oj.ShowTransparent,
			SmoothShade:     oj.SmoothShade,
		}
		for _, idx := range oj.Materials {
			if idx < 0 || idx >= len(s.materials) {
				return nil, errors.Errorf("object %q: material index %d out of range", oj.Name, idx)
			}
			o.Materials = append(o.Materials, s.materials[idx])
		}
		for _, mj := range oj.Modifiers {
			switch {
			case mj.Type == "remesh" && mj.Remesh != nil:
				o.Modifiers = append(o.Modifiers, mj.Remesh)
			case mj.Type == "mirror" && mj.Mirror != nil:
				o.Modifiers = append(o.Modifiers, mj.Mirror)
			default:
				return nil, errors.Errorf("object %q: unknown modifier %q", oj.Name, mj.Type)
			}
		}
		if oj.Mesh != nil {
			m := &render.Mesh{Vertices: make([]r3.Vec, len(oj.Mesh.Vertices)), Faces: oj.Mesh.Faces}
			for i, v := range oj.Mesh.Vertices {
				m.Vertices[i] = r3.Vec{X: v[0], Y: v[1], Z: v[2]}
			}
			if err := m.Validate(); err != nil {
				return nil, errors.Wrapf(err, "object %q", oj.Name)
			}
			o.Mesh = m
		}
		byID[o.ID] = o
		s.objects = append(s.objects, o)
	}
	for i, oj := range doc.Objects {
		if oj.Parent == nil {
			continue
		}
		p, ok := byID[*oj.Parent]
		if !ok {
			return nil, errors.Errorf("object %q: unknown parent %s", oj.Name, *oj.Parent)
		}
		if err := s.SetParent(s.objects[i], p); err != nil {
			return nil, err
		}
	}
	if doc.Active != nil {
		s.active = byID[*doc.Active]
	}
	return s, nil
}

// SaveFile writes the scene to the file name.
func (s *Scene) SaveFile(name string) error {
	fp, err := os.Create(name)
	if err != nil {
		return err
	}
	defer fp.Close()
	if err := s.Save(fp); err != nil {
		return err
	}
	return fp.Close()
}

// LoadFile reads a scene from the file name.
func LoadFile(name string) (*Scene, error) {
	fp, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	return Load(fp)
}
