package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/soypat/atlasmesh/render"
	"github.com/soypat/atlasmesh/scene"
	"github.com/soypat/atlasmesh/treeimport"
)

func TestFlagName(t *testing.T) {
	assert.Equal(t, "bb-tree-depth", flagName("bb_tree_depth"))
	assert.Equal(t, "select-recursive", flagName("select_recursive"))
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"997", "8"})
	require.NoError(t, err)
	assert.Equal(t, []int{997, 8}, ids)
	_, err = parseIDs([]string{"CH"})
	assert.Error(t, err)
}

func TestListAddons(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, listAddons(&buf))
	out := buf.String()
	assert.Contains(t, out, "[Import Object(s)] bb_tree_import.obj")
	assert.Contains(t, out, "Tree depth --bb-tree-depth=1")
	assert.Contains(t, out, "Scale (microns per pixel) --bb-pix-scale=0.0250")
	assert.Contains(t, out, "[Color branch] object.assign_material")
}

func TestImportAndTools(t *testing.T) {
	dir := t.TempDir()
	tetra := &render.Mesh{
		Vertices: []r3.Vec{{}, {X: 1}, {Y: 1}, {Z: 1}},
		Faces:    [][3]int{{0, 2, 1}, {0, 1, 3}, {0, 3, 2}, {1, 2, 3}},
	}
	for _, f := range []string{"Root (R).obj", "R/Kid (K).obj"} {
		path := filepath.Join(dir, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		fp, err := os.Create(path)
		require.NoError(t, err)
		require.NoError(t, render.WriteOBJ(fp, tetra, render.OBJOptions{}))
		require.NoError(t, fp.Close())
	}
	scenePath := filepath.Join(t.TempDir(), "scene.json")

	rootCmd.SetArgs([]string{"import", dir, "--scene", scenePath, "--bb-remesh-when-importing=false"})
	require.NoError(t, rootCmd.Execute())
	s, err := scene.LoadFile(scenePath)
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
	assert.Equal(t, "Root (R)", s.ByName("Kid (K)").Parent().Name)
	assert.NotNil(t, s.ByName("Kid (K)").Modifier(treeimport.MirrorModifierName))

	// import.mirror from the environment reaches the operator.
	t.Setenv("BRAINMESH_IMPORT_MIRROR", "false")
	plain := filepath.Join(t.TempDir(), "plain.json")
	rootCmd.SetArgs([]string{"import", dir, "--scene", plain, "--bb-remesh-when-importing=false"})
	require.NoError(t, rootCmd.Execute())
	unmirrored, err := scene.LoadFile(plain)
	require.NoError(t, err)
	require.Equal(t, 2, unmirrored.Len())
	for _, o := range unmirrored.Objects() {
		assert.Nil(t, o.Modifier(treeimport.MirrorModifierName), o.Name)
	}

	rootCmd.SetArgs([]string{"tools", "object.hide_children", "--scene", scenePath, "--active", "Root (R)"})
	require.NoError(t, rootCmd.Execute())
	s, err = scene.LoadFile(scenePath)
	require.NoError(t, err)
	assert.True(t, s.ByName("Kid (K)").Hidden)
	assert.False(t, s.ByName("Root (R)").Hidden)

	rootCmd.SetArgs([]string{"tools", "object.nope", "--scene", scenePath})
	assert.Error(t, rootCmd.Execute())
}
