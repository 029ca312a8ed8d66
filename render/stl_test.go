package render_test

import (
	"path/filepath"
	"testing"

	"github.com/soypat/atlasmesh/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSTLCreateRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "box.stl")
	box := boxMask(6, 1, 4)
	mc, err := render.NewMarchingCubes(box, spacing)
	require.NoError(t, err)
	want, err := mc.Mesh()
	require.NoError(t, err)

	require.NoError(t, render.CreateSTL(path, want.Renderer()))
	got, err := render.ReadSTLFile(path)
	require.NoError(t, err)
	assert.Equal(t, len(want.Faces), len(got.Faces))
	assert.Equal(t, len(want.Vertices), len(got.Vertices))
}
