// Package treeimport loads a directory tree of mesh files into a scene,
// mirroring directory nesting as parent/child relations.
//
// A file named "Name (acronym).obj" is the parent of every mesh file found in
// the sibling directory "acronym".
package treeimport

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/soypat/atlasmesh/log"
	"github.com/soypat/atlasmesh/render"
	"github.com/soypat/atlasmesh/scene"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// RemeshModifierName names the remesh modifier added on import.
	RemeshModifierName = "import_remesh"
	// MirrorModifierName names the mirror modifier added on import.
	MirrorModifierName = "mirror"
)

// Options configures an Importer.
type Options struct {
	// Remesh adds a smooth remesh modifier to imported meshes.
	Remesh bool
	// FinalizeRemesh applies the remesh modifier right away.
	FinalizeRemesh bool
	// SmoothShade sets smooth shading on the remesh modifier.
	SmoothShade bool
	// ImportParents loads parent meshes. When false parents whose directory
	// was descended become empties.
	ImportParents bool
	OctreeDepth   int
	// PixelScale is the uniform scale baked into imported mesh data.
	PixelScale float64
	// TreeDepth limits how many directory levels are descended. Zero imports
	// only the given files and negative values are unbounded.
	TreeDepth int
	// Mirror adds a Y mirror modifier to loaded meshes.
	Mirror bool
	// Origin is where the origin of loaded meshes is placed.
	Origin r3.Vec
}

// DefaultOptions returns the defaults of the import panel.
func DefaultOptions() Options {
	const scale = 0.025
	return Options{
		Remesh:        true,
		SmoothShade:   true,
		ImportParents: true,
		OctreeDepth:   7,
		PixelScale:    scale,
		TreeDepth:     1,
		Mirror:        true,
		Origin:        DefaultOrigin(scale),
	}
}

// DefaultOrigin returns the mirror origin for a hemisphere exported at the
// given scale.
func DefaultOrigin(scale float64) r3.Vec {
	return r3.Vec{X: 6.6, Y: 5.7 - scale, Z: 4.0}
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if o.PixelScale < 1e-100 {
		return errors.Errorf("pixel scale %g below minimum 1e-100", o.PixelScale)
	}
	if o.Remesh && (o.OctreeDepth < 1 || o.OctreeDepth > 12) {
		return errors.Errorf("octree depth %d out of range [1, 12]", o.OctreeDepth)
	}
	return nil
}

// Importer adds imported objects to a scene.
type Importer struct {
	Scene   *scene.Scene
	Options Options
}

// New returns an Importer for s.
func New(s *scene.Scene, opts Options) *Importer {
	return &Importer{Scene: s, Options: opts}
}

// IsMeshFile reports whether name has a supported mesh extension.
func IsMeshFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".obj", ".stl":
		return true
	}
	return false
}

// Acronym extracts the text between the last pair of parentheses of a file
// name.
func Acronym(name string) (string, bool) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	open := strings.LastIndexByte(stem, '(')
	if open < 0 {
		return "", false
	}
	end := strings.IndexByte(stem[open:], ')')
	if end < 0 {
		return "", false
	}
	acr := stem[open+1 : open+end]
	return acr, acr != ""
}

// Import imports each selected mesh file of dir at the configured tree depth
// and returns the top level objects. Files without a mesh extension are
// ignored.
func (im *Importer) Import(dir string, files []string) ([]*scene.Object, error) {
	if err := im.Options.Validate(); err != nil {
		return nil, err
	}
	var top []*scene.Object
	for _, f := range files {
		if !IsMeshFile(f) {
			log.Debugf("skipping %s: not a mesh file", f)
			continue
		}
		objs, err := im.importTree(im.Options.TreeDepth, dir, []string{f})
		if err != nil {
			return top, err
		}
		top = append(top, objs...)
	}
	return top, nil
}

// Walk imports every mesh file in dir down to depth levels.
func (im *Importer) Walk(dir string, depth int) ([]*scene.Object, error) {
	if err := im.Options.Validate(); err != nil {
		return nil, err
	}
	return im.importTree(depth, dir, nil)
}

// importTree imports files of dir, or every mesh file in dir when files is
// nil. A missing directory yields no objects.
func (im *Importer) importTree(depth int, dir string, files []string) ([]*scene.Object, error) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, nil
	}
	if files == nil {
		var err error
		if files, err = meshFiles(dir); err != nil {
			return nil, err
		}
	}
	var objs []*scene.Object
	for _, f := range files {
		acronym, ok := Acronym(f)
		subdir := filepath.Join(dir, acronym)
		hasSubdir := ok && isDir(subdir)

		var children []*scene.Object
		if depth != 0 && hasSubdir {
			var err error
			if children, err = im.importTree(depth-1, subdir, nil); err != nil {
				return objs, err
			}
		}

		load := depth == 0 || im.Options.ImportParents || !hasSubdir
		var current *scene.Object
		if load {
			var err error
			if current, err = im.load(filepath.Join(dir, f)); err != nil {
				return objs, err
			}
		} else {
			current = im.Scene.NewObject(strings.TrimSuffix(f, filepath.Ext(f)), nil)
		}
		objs = append(objs, current)
		for _, c := range children {
			if err := im.Scene.SetParent(c, current); err != nil {
				return objs, err
			}
		}
		if load {
			im.placeAndMirror(current)
		}
	}
	return objs, nil
}

func (im *Importer) load(path string) (*scene.Object, error) {
	mesh, err := readMesh(path)
	if err != nil {
		return nil, errors.Wrapf(err, "import %s", path)
	}
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	obj := im.Scene.NewObject(name, mesh)
	log.Debugf("imported %s: %d faces", path, len(mesh.Faces))

	if im.Options.Remesh {
		obj.AddModifier(&scene.Remesh{
			Name: RemeshModifierName,
			Options: render.RemeshOptions{
				OctreeDepth:      im.Options.OctreeDepth,
				Mode:             render.RemeshSmooth,
				SmoothIterations: render.DefaultRemeshOptions().SmoothIterations,
			},
			SmoothShade: im.Options.SmoothShade,
		})
		if im.Options.FinalizeRemesh {
			if err := obj.ApplyModifier(RemeshModifierName); err != nil {
				return nil, err
			}
		}
	}
	// Anisotropic voxels are left to the user.
	obj.ApplyScale(im.Options.PixelScale)
	im.Scene.SetActive(obj)
	return obj, nil
}

func (im *Importer) placeAndMirror(obj *scene.Object) {
	if im.Options.Mirror {
		obj.AddModifier(&scene.Mirror{Name: MirrorModifierName, Axis: [3]bool{false, true, false}})
	}
	obj.SetOrigin(im.Options.Origin)
}

func readMesh(path string) (*render.Mesh, error) {
	if strings.ToLower(filepath.Ext(path)) == ".stl" {
		return render.ReadSTLFile(path)
	}
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	return render.ReadOBJ(fp)
}

// meshFiles lists the mesh files of dir in lexical order.
func meshFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && IsMeshFile(e.Name()) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
