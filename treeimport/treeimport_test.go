package treeimport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/soypat/atlasmesh/render"
	"github.com/soypat/atlasmesh/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func tetra() *render.Mesh {
	return &render.Mesh{
		Vertices: []r3.Vec{{}, {X: 1}, {Y: 1}, {Z: 1}},
		Faces:    [][3]int{{0, 2, 1}, {0, 1, 3}, {0, 3, 2}, {1, 2, 3}},
	}
}

// writeTree lays out
//
//	Root (R).obj
//	notes.txt
//	R/Child (C).obj
//	R/Other (O).obj
//	R/C/Grand (G).obj
func writeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := []string{
		"Root (R).obj",
		"R/Child (C).obj",
		"R/Other (O).obj",
		"R/C/Grand (G).obj",
	}
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		fp, err := os.Create(path)
		require.NoError(t, err)
		require.NoError(t, render.WriteOBJ(fp, tetra(), render.OBJOptions{}))
		require.NoError(t, fp.Close())
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))
	return root
}

func plainOptions() Options {
	opts := DefaultOptions()
	opts.Remesh = false
	return opts
}

func names(objs []*scene.Object) []string {
	var s []string
	for _, o := range objs {
		s = append(s, o.Name)
	}
	return s
}

func TestAcronym(t *testing.T) {
	for _, tc := range []struct {
		name, acr string
		ok        bool
	}{
		{"Root (R).obj", "R", true},
		{"Frontal pole, layer 2-3 (FRP2-3).stl", "FRP2-3", true},
		{"Lobule (a) part (LOB).obj", "LOB", true},
		{"nothing.obj", "", false},
		{"open (only.obj", "", false},
		{"empty ().obj", "", false},
	} {
		acr, ok := Acronym(tc.name)
		assert.Equal(t, tc.ok, ok, tc.name)
		assert.Equal(t, tc.acr, acr, tc.name)
	}
}

func TestImportDepth(t *testing.T) {
	root := writeTree(t)
	files := []string{"Root (R).obj", "notes.txt"}
	for _, tc := range []struct {
		depth int
		want  int
	}{
		{0, 1},
		{1, 3},
		{-1, 4},
		{-3, 4},
	} {
		s := scene.New()
		opts := plainOptions()
		opts.TreeDepth = tc.depth
		top, err := New(s, opts).Import(root, files)
		require.NoError(t, err)
		require.Len(t, top, 1)
		assert.Equal(t, "Root (R)", top[0].Name)
		assert.Equal(t, tc.want, s.Len(), "depth %d", tc.depth)
		for _, o := range s.Objects() {
			assert.False(t, o.IsEmpty())
		}
	}

	s := scene.New()
	_, err := New(s, plainOptions()).Import(root, files)
	require.NoError(t, err)
	rootObj := s.ByName("Root (R)")
	assert.Equal(t, []string{"Child (C)", "Other (O)"}, names(s.Children(rootObj)))
	assert.Empty(t, s.Children(s.ByName("Child (C)")))
}

func TestImportUnbounded(t *testing.T) {
	root := writeTree(t)
	s := scene.New()
	opts := plainOptions()
	opts.TreeDepth = -1
	_, err := New(s, opts).Import(root, []string{"Root (R).obj"})
	require.NoError(t, err)
	grand := s.ByName("Grand (G)")
	require.NotNil(t, grand)
	require.NotNil(t, grand.Parent())
	assert.Equal(t, "Child (C)", grand.Parent().Name)
	assert.Equal(t, "Root (R)", grand.Parent().Parent().Name)
}

func TestImportEmptyParents(t *testing.T) {
	root := writeTree(t)
	s := scene.New()
	opts := plainOptions()
	opts.TreeDepth = -1
	opts.ImportParents = false
	_, err := New(s, opts).Import(root, []string{"Root (R).obj"})
	require.NoError(t, err)
	require.Equal(t, 4, s.Len())
	assert.True(t, s.ByName("Root (R)").IsEmpty())
	assert.True(t, s.ByName("Child (C)").IsEmpty())
	assert.False(t, s.ByName("Other (O)").IsEmpty())
	assert.False(t, s.ByName("Grand (G)").IsEmpty())
	// Empties are neither mirrored nor moved.
	assert.Empty(t, s.ByName("Root (R)").Modifiers)
	assert.Equal(t, r3.Vec{}, s.ByName("Root (R)").Location)
}

func TestImportMissingDir(t *testing.T) {
	s := scene.New()
	top, err := New(s, plainOptions()).Import(filepath.Join(t.TempDir(), "nope"), []string{"a (A).obj"})
	require.NoError(t, err)
	assert.Empty(t, top)
	assert.Zero(t, s.Len())
}

func TestImportPlacement(t *testing.T) {
	root := writeTree(t)
	s := scene.New()
	opts := DefaultOptions()
	opts.TreeDepth = 0
	top, err := New(s, opts).Import(root, []string{"Root (R).obj"})
	require.NoError(t, err)
	require.Len(t, top, 1)
	obj := top[0]
	assert.Equal(t, obj, s.Active())
	assert.Equal(t, opts.Origin, obj.Location)
	assert.NotNil(t, obj.Modifier(RemeshModifierName))
	require.IsType(t, &scene.Mirror{}, obj.Modifier(MirrorModifierName))
	assert.Equal(t, [3]bool{false, true, false}, obj.Modifier(MirrorModifierName).(*scene.Mirror).Axis)
	assert.True(t, obj.Smooth())

	// Geometry keeps its world position after scaling and moving the origin.
	for i, v := range tetra().Vertices {
		world := r3.Add(obj.Mesh.Vertices[i], obj.Location)
		want := r3.Scale(opts.PixelScale, v)
		assert.InDelta(t, want.X, world.X, 1e-9)
		assert.InDelta(t, want.Y, world.Y, 1e-9)
		assert.InDelta(t, want.Z, world.Z, 1e-9)
	}
}

func TestImportFinalizeRemesh(t *testing.T) {
	root := writeTree(t)
	s := scene.New()
	opts := DefaultOptions()
	opts.TreeDepth = 0
	opts.OctreeDepth = 3
	opts.FinalizeRemesh = true
	opts.Mirror = false
	top, err := New(s, opts).Import(root, []string{"Root (R).obj"})
	require.NoError(t, err)
	obj := top[0]
	assert.Nil(t, obj.Modifier(RemeshModifierName))
	assert.Empty(t, obj.Modifiers)
	assert.True(t, obj.SmoothShade)
	assert.NotEqual(t, 4, len(obj.Mesh.Vertices))
}

func TestWalk(t *testing.T) {
	root := writeTree(t)
	s := scene.New()
	top, err := New(s, plainOptions()).Walk(filepath.Join(root, "R"), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Child (C)", "Other (O)"}, names(top))
}

func TestOptionsValidate(t *testing.T) {
	opts := DefaultOptions()
	require.NoError(t, opts.Validate())
	opts.PixelScale = 0
	assert.Error(t, opts.Validate())
	opts = DefaultOptions()
	opts.TreeDepth = -2
	assert.NoError(t, opts.Validate())
	opts = DefaultOptions()
	opts.OctreeDepth = 0
	assert.Error(t, opts.Validate())
	origin := DefaultOrigin(0.025)
	assert.Equal(t, 6.6, origin.X)
	assert.InDelta(t, 5.675, origin.Y, 1e-12)
	assert.Equal(t, 4.0, origin.Z)
}
