package main

import (
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/soypat/atlasmesh"
	"github.com/soypat/atlasmesh/nrrd"
	"github.com/soypat/atlasmesh/ontology"
	"github.com/soypat/atlasmesh/render"
	"github.com/soypat/atlasmesh/scene"
)

const structureRows = `{"success": true, "id": 0, "start_row": 0, "num_rows": 3, "total_rows": 3, "msg": [
 {"id": 997, "acronym": "root", "name": "root", "structure_id_path": "/997/", "color_hex_triplet": "FFFFFF", "graph_id": 1, "graph_order": 0, "parent_structure_id": null, "structure_sets": []},
 {"id": 8, "acronym": "grey", "name": "Basic cell groups and regions", "structure_id_path": "/997/8/", "color_hex_triplet": "BFDAE3", "graph_id": 1, "graph_order": 1, "parent_structure_id": 997, "structure_sets": []},
 {"id": 567, "acronym": "CH", "name": "Cerebrum", "structure_id_path": "/997/8/567/", "color_hex_triplet": "B0F0FF", "graph_id": 1, "graph_order": 2, "parent_structure_id": 8, "structure_sets": []}
]}`

func TestAnnotationResolution(t *testing.T) {
	hdr := &nrrd.Header{SpaceDirections: [][]float64{{10, 0, 0}, {0, 20, 0}, {0, 0, 30}}}
	assert.Equal(t, r3.Vec{X: 10, Y: 30, Z: 20}, annotationResolution(hdr, 25))
	assert.Equal(t, r3.Vec{X: 25, Y: 25, Z: 25}, annotationResolution(&nrrd.Header{}, 25))
}

// writeAnnotation writes a 12x10x8 volume where Cerebrum fills file voxels
// x 2..5, y 2..5 and z 1..6.
func writeAnnotation(t *testing.T) string {
	t.Helper()
	labels := atlasmesh.NewLabels(atlasmesh.V3i{12, 10, 8})
	for k := 1; k <= 6; k++ {
		for j := 2; j <= 5; j++ {
			for i := 2; i <= 5; i++ {
				labels.Set(i, j, k, 567)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "annotation.nrrd")
	fp, err := os.Create(path)
	require.NoError(t, err)
	defer fp.Close()
	require.NoError(t, nrrd.Encode(fp, labels, nrrd.EncodeOptions{Gzip: true, Resolution: r3.Vec{X: 25, Y: 25, Z: 25}}))
	require.NoError(t, fp.Close())
	return path
}

func readMesh(t *testing.T, path string) *render.Mesh {
	t.Helper()
	fp, err := os.Open(path)
	require.NoError(t, err)
	defer fp.Close()
	m, err := render.ReadOBJ(fp)
	require.NoError(t, err)
	return m
}

func TestExportCommand(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte(structureRows))
	}))
	cache := filepath.Join(t.TempDir(), "structures.json")
	t.Setenv("BRAINMESH_ONTOLOGY_BASE_URL", srv.URL)
	t.Setenv("BRAINMESH_ONTOLOGY_CACHE", cache)
	annotation := writeAnnotation(t)
	out := t.TempDir()

	// Whole volume: the ontology is downloaded and cached.
	whole := filepath.Join(out, "whole")
	plot := filepath.Join(out, "faces.png")
	archive := filepath.Join(out, "whole.zip")
	rootCmd.SetArgs([]string{"export", "--annotation", annotation, "--root", whole,
		"--no-cut", "--plot", plot, "--archive", archive})
	require.NoError(t, rootCmd.Execute())
	assert.EqualValues(t, 1, requests.Load())
	cached, err := ontology.ReadFile(cache)
	require.NoError(t, err)
	assert.Len(t, cached, 3)
	assert.FileExists(t, plot)
	assert.FileExists(t, archive)

	cerebrum := filepath.Join("root", "grey", "Cerebrum (CH).obj")
	m := readMesh(t, filepath.Join(whole, cerebrum))
	bb := m.Bounds()
	// File axis z becomes axis 1 after reorienting.
	assert.InDelta(t, 0.5, bb.Min.Y, 0.05)
	assert.InDelta(t, 6.5, bb.Max.Y, 0.05)
	assert.Empty(t, m.BoundaryEdges())

	// Hemisphere: the cache is used and the surface is open on the cut.
	srv.Close()
	half := filepath.Join(out, "half")
	rootCmd.SetArgs([]string{"export", "--annotation", annotation, "--root", half,
		"--no-cut=false", "--cut-size", "4", "--plot", filepath.Join(out, "half.png"),
		"--archive", filepath.Join(out, "half.tar.gz")})
	require.NoError(t, rootCmd.Execute())
	assert.EqualValues(t, 1, requests.Load())
	m = readMesh(t, filepath.Join(half, cerebrum))
	assert.InDelta(t, 3, m.Bounds().Max.Y, 1e-6)
	assert.NotEmpty(t, m.BoundaryEdges())

	rootCmd.SetArgs([]string{"export", "--annotation", filepath.Join(out, "missing.nrrd"), "--root", half})
	assert.Error(t, rootCmd.Execute())
}

func TestPreviewCommand(t *testing.T) {
	s := scene.New()
	s.NewObject("Tetra (T)", &render.Mesh{
		Vertices: []r3.Vec{{}, {X: 1}, {Y: 1}, {Z: 1}},
		Faces:    [][3]int{{0, 2, 1}, {0, 1, 3}, {0, 3, 2}, {1, 2, 3}},
	})
	dir := t.TempDir()
	scenePath := filepath.Join(dir, "scene.json")
	require.NoError(t, s.SaveFile(scenePath))

	img := filepath.Join(dir, "preview.png")
	rootCmd.SetArgs([]string{"preview", img, "--scene", scenePath, "--width", "64", "--height", "48", "--supersample", "2"})
	require.NoError(t, rootCmd.Execute())
	fp, err := os.Open(img)
	require.NoError(t, err)
	defer fp.Close()
	conf, err := png.DecodeConfig(fp)
	require.NoError(t, err)
	assert.Equal(t, 64, conf.Width)
	assert.Equal(t, 48, conf.Height)

	rootCmd.SetArgs([]string{"preview", img, "--scene", filepath.Join(dir, "missing.json")})
	assert.Error(t, rootCmd.Execute())
}
