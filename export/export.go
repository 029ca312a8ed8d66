// Package export writes one mesh file per ontology structure into a directory
// tree that mirrors the structure hierarchy.
package export

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/soypat/atlasmesh"
	"github.com/soypat/atlasmesh/log"
	"github.com/soypat/atlasmesh/ontology"
	"github.com/soypat/atlasmesh/render"
	"golang.org/x/text/unicode/norm"
	"gonum.org/v1/gonum/spatial/r3"
)

// Cut keeps voxel indices [0, Size) along Axis. A Size of zero or less keeps
// half of the axis, which selects one hemisphere of a reoriented annotation.
// Surfaces are left open on the cut plane and end at the last kept voxel
// centers, so a mirrored copy meets them edge to edge.
type Cut struct {
	Axis int
	Size int
}

// Exporter extracts structure surfaces from a reference space.
type Exporter struct {
	Space  *atlasmesh.ReferenceSpace
	Root   string
	Format Format
	// Cut restricts masks before surface extraction. Nil keeps the whole volume.
	Cut *Cut
	// Step scales vertex coordinates. The zero value leaves them in voxel units.
	Step r3.Vec
	// Normals adds vertex normals to OBJ output.
	Normals bool
}

// NewExporter returns an OBJ exporter keeping the first half of axis 1.
func NewExporter(space *atlasmesh.ReferenceSpace, root string) *Exporter {
	return &Exporter{
		Space:  space,
		Root:   root,
		Format: FormatOBJ,
		Cut:    &Cut{Axis: 1},
	}
}

// Result describes the export of a single structure.
type Result struct {
	ID       int
	Acronym  string
	Path     string
	Vertices int
	Faces    int
	// Skipped is set when the structure had no surface and no file was written.
	Skipped bool
}

// Path returns the output path of structure id: one directory per ancestor
// acronym, then a file named "Name (acronym)".
func (e *Exporter) Path(id int) (string, error) {
	s, ok := e.Space.Tree.Structure(id)
	if !ok {
		return "", errors.Wrapf(ontology.ErrUnknownStructure, "id %d", id)
	}
	ancestors, err := e.Space.Tree.Ancestors(id)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(ancestors)+2)
	parts = append(parts, e.Root)
	for _, a := range ancestors {
		parts = append(parts, pathComponent(a.Acronym))
	}
	parts = append(parts, pathComponent(s.Name+" ("+s.Acronym+")")+e.Format.Ext())
	return filepath.Join(parts...), nil
}

func pathComponent(s string) string {
	return norm.NFC.String(strings.ReplaceAll(s, "/", "-"))
}

// ExportStructure writes the surface of structure id and its descendants.
// Structures without a surface are skipped without error.
func (e *Exporter) ExportStructure(id int) (Result, error) {
	s, ok := e.Space.Tree.Structure(id)
	if !ok {
		return Result{}, errors.Wrapf(ontology.ErrUnknownStructure, "id %d", id)
	}
	res := Result{ID: id, Acronym: s.Acronym}
	mask, err := e.Space.StructureMask(id)
	if err != nil {
		return res, err
	}
	open := -1
	if e.Cut != nil {
		axis := e.Cut.Axis
		if axis < 0 || axis > 2 {
			return res, errors.Errorf("cut axis %d out of range [0, 2]", axis)
		}
		size := e.Cut.Size
		if size <= 0 {
			size = mask.Shape[axis] / 2
		}
		if size < mask.Shape[axis] {
			open = axis
		}
		if mask, err = mask.Crop(axis, 0, size); err != nil {
			return res, errors.Wrapf(err, "structure %d", id)
		}
	}
	mesh, err := e.surface(mask, open)
	if errors.Is(err, render.ErrNoSurface) {
		log.Debugf("structure %d (%s): no surface, skipped", id, s.Acronym)
		res.Skipped = true
		return res, nil
	} else if err != nil {
		return res, errors.Wrapf(err, "structure %d", id)
	}

	if res.Path, err = e.Path(id); err != nil {
		return res, err
	}
	if err := os.MkdirAll(filepath.Dir(res.Path), 0o755); err != nil {
		return res, err
	}
	if err := e.write(res.Path, s, mesh); err != nil {
		return res, errors.Wrapf(err, "write %s", res.Path)
	}
	res.Vertices = len(mesh.Vertices)
	res.Faces = len(mesh.Faces)
	log.Debugf("structure %d (%s): %d faces -> %s", id, s.Acronym, res.Faces, res.Path)
	return res, nil
}

// surface extracts the mask surface, left open past the end of axis open
// when it is not negative.
func (e *Exporter) surface(mask *atlasmesh.Mask, open int) (*render.Mesh, error) {
	mc, err := render.NewMarchingCubes(mask, e.Step)
	if err != nil {
		return nil, err
	}
	if open >= 0 {
		if err := mc.OpenEnd(open); err != nil {
			return nil, err
		}
	}
	return mc.Mesh()
}

func (e *Exporter) write(path string, s ontology.Structure, mesh *render.Mesh) error {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fp.Close()
	switch e.Format {
	case FormatOBJ:
		err = render.WriteOBJ(fp, mesh, render.OBJOptions{Name: s.Acronym, Normals: e.Normals})
	case FormatSTL:
		_, err = render.WriteSTL(fp, mesh.Triangles())
	default:
		err = errors.Errorf("unknown format %d", e.Format)
	}
	if err != nil {
		return err
	}
	return fp.Close()
}

// ExportAll exports the given structures, or every structure when ids is
// empty, in graph order. Only missing surfaces are tolerated; any other error
// stops the export.
func (e *Exporter) ExportAll(ids ...int) (*Summary, error) {
	structures := e.Space.Tree.Structures()
	if len(ids) > 0 {
		if _, err := e.Space.Tree.ByID(ids...); err != nil {
			return nil, err
		}
		want := make(map[int]bool, len(ids))
		for _, id := range ids {
			want[id] = true
		}
		selected := structures[:0]
		for _, s := range structures {
			if want[s.ID] {
				selected = append(selected, s)
			}
		}
		structures = selected
	}
	sum := &Summary{}
	for _, s := range structures {
		res, err := e.ExportStructure(s.ID)
		if err != nil {
			return sum, err
		}
		sum.Results = append(sum.Results, res)
	}
	log.Infof("%s", sum)
	return sum, nil
}
