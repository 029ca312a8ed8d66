package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soypat/atlasmesh/treeimport"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	t.Run("Log", func(t *testing.T) {
		assert.Equal(t, "info", c.Log.Level)
	})
	t.Run("Ontology", func(t *testing.T) {
		assert.Equal(t, 1, c.Ontology.GraphID)
		assert.Equal(t, "structures.json", c.Ontology.Cache)
	})
	t.Run("Export", func(t *testing.T) {
		assert.Equal(t, "obj", c.Export.Format)
		assert.True(t, c.Export.Cut)
		assert.Equal(t, 1, c.Export.CutAxis)
		assert.Equal(t, 25.0, c.Export.Resolution)
	})
	t.Run("Import", func(t *testing.T) {
		assert.Equal(t, treeimport.DefaultOptions(), c.Import.Options())
	})
}

func TestRead(t *testing.T) {
	dir := t.TempDir()
	data := []byte(`
log:
  level: debug
export:
  format: stl
  cut_size: 228
import:
  tree_depth: -1
  pixel_scale: 0.5
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "brainmesh.yaml"), data, 0o644))

	c, err := Read("brainmesh", dir)
	require.NoError(t, err)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "stl", c.Export.Format)
	assert.Equal(t, 228, c.Export.CutSize)
	// Unset keys keep their defaults.
	assert.Equal(t, "meshes", c.Export.Root)

	opts := c.Import.Options()
	assert.Equal(t, -1, opts.TreeDepth)
	assert.Equal(t, 0.5, opts.PixelScale)
	assert.Equal(t, treeimport.DefaultOrigin(0.5), opts.Origin)
	assert.True(t, opts.Remesh)
}

func TestReadMissing(t *testing.T) {
	c, err := Read("brainmesh", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "meshes", c.Export.Root)
}

func TestReadEnv(t *testing.T) {
	t.Setenv("BRAINMESH_EXPORT_FORMAT", "stl")
	t.Setenv("BRAINMESH_IMPORT_TREE_DEPTH", "3")
	c, err := Default()
	require.NoError(t, err)
	assert.Equal(t, "stl", c.Export.Format)
	assert.Equal(t, 3, c.Import.TreeDepth)
}

func TestValidate(t *testing.T) {
	for name, data := range map[string]string{
		"format":       "export:\n  format: ply\n",
		"tree depth":   "import:\n  tree_depth: -2\n",
		"octree depth": "import:\n  octree_depth: 13\n",
		"pixel scale":  "import:\n  pixel_scale: 0\n",
		"level":        "log:\n  level: loud\n",
		"cut axis":     "export:\n  cut_axis: 3\n",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
			_, err := ReadFile(path)
			assert.Error(t, err)
		})
	}
}
