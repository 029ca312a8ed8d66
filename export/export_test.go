package export

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/soypat/atlasmesh"
	"github.com/soypat/atlasmesh/ontology"
	"github.com/soypat/atlasmesh/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func fillBox(l *atlasmesh.Labels, lo, hi atlasmesh.V3i, label uint32) {
	for k := lo[2]; k <= hi[2]; k++ {
		for j := lo[1]; j <= hi[1]; j++ {
			for i := lo[0]; i <= hi[0]; i++ {
				l.Set(i, j, k, label)
			}
		}
	}
}

func testSpace(t *testing.T) *atlasmesh.ReferenceSpace {
	t.Helper()
	tree, err := ontology.NewTree([]ontology.Structure{
		{ID: 997, Acronym: "root", Name: "root", StructureIDPath: []int{997}},
		{ID: 8, Acronym: "grey", Name: "Basic cell groups and regions", StructureIDPath: []int{997, 8}, GraphOrder: 1},
		{ID: 567, Acronym: "CH", Name: "Cerebrum", StructureIDPath: []int{997, 8, 567}, GraphOrder: 2},
		{ID: 343, Acronym: "BS", Name: "Brain stem", StructureIDPath: []int{997, 8, 343}, GraphOrder: 3},
		{ID: 55, Acronym: "R/O", Name: "Right only", StructureIDPath: []int{997, 8, 55}, GraphOrder: 4},
		{ID: 66, Acronym: "E", Name: "Empty", StructureIDPath: []int{997, 66}, GraphOrder: 5},
	})
	require.NoError(t, err)
	ann := atlasmesh.NewLabels(atlasmesh.V3i{16, 16, 16})
	fillBox(ann, atlasmesh.V3i{2, 2, 2}, atlasmesh.V3i{5, 5, 5}, 567)
	fillBox(ann, atlasmesh.V3i{8, 3, 8}, atlasmesh.V3i{12, 12, 12}, 343)
	fillBox(ann, atlasmesh.V3i{2, 10, 2}, atlasmesh.V3i{5, 13, 5}, 55)
	rs, err := atlasmesh.NewReferenceSpace(tree, ann, r3.Vec{X: 25, Y: 25, Z: 25})
	require.NoError(t, err)
	return rs
}

func TestPath(t *testing.T) {
	e := NewExporter(testSpace(t), "out")
	p, err := e.Path(567)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "root", "grey", "Cerebrum (CH).obj"), p)

	p, err = e.Path(55)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "root", "grey", "Right only (R-O).obj"), p)

	p, err = e.Path(997)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "root (root).obj"), p)

	e.Format = FormatSTL
	p, err = e.Path(8)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "root", "Basic cell groups and regions (grey).stl"), p)

	_, err = e.Path(1)
	assert.ErrorIs(t, err, ontology.ErrUnknownStructure)
}

func TestExportAll(t *testing.T) {
	root := t.TempDir()
	e := NewExporter(testSpace(t), root)
	sum, err := e.ExportAll()
	require.NoError(t, err)
	require.Len(t, sum.Results, 6)
	assert.Len(t, sum.Written(), 4)
	assert.Equal(t, 2, sum.Skipped())
	assert.Equal(t, "4 structures exported, 2 skipped", sum.String())

	for _, r := range sum.Results {
		switch r.ID {
		case 55, 66:
			assert.True(t, r.Skipped, r.Acronym)
			p, _ := e.Path(r.ID)
			assert.NoFileExists(t, p)
			continue
		}
		require.False(t, r.Skipped, r.Acronym)
		assert.FileExists(t, r.Path)
		checkOBJ(t, r.Path, r.Vertices, r.Faces)
	}
}

func checkOBJ(t *testing.T, path string, nv, nf int) {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	vertices, faces := 0, 0
	for _, line := range strings.Split(string(b), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "v":
			vertices++
		case "f":
			faces++
			for _, tok := range fields[1:] {
				idx, err := strconv.Atoi(tok)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, idx, 1)
				assert.LessOrEqual(t, idx, nv)
			}
		}
	}
	assert.Equal(t, nv, vertices)
	assert.Equal(t, nf, faces)
}

func TestExportStructureCut(t *testing.T) {
	root := t.TempDir()
	e := NewExporter(testSpace(t), root)
	res, err := e.ExportStructure(343)
	require.NoError(t, err)
	require.False(t, res.Skipped)
	m, err := readOBJ(res.Path)
	require.NoError(t, err)
	bb := m.Bounds()
	// Brain stem spans j 3..12 but the cut keeps j < 8. The surface stays
	// open and ends at the centers of slice 7.
	assert.InDelta(t, 2.5, bb.Min.Y, 0.05)
	assert.InDelta(t, 7, bb.Max.Y, 1e-6)
	edges := m.BoundaryEdges()
	require.NotEmpty(t, edges)
	for _, e := range edges {
		assert.InDelta(t, 7, m.Vertices[e[0]].Y, 1e-6)
	}
	for i := range m.Faces {
		tri := m.Triangle(i)
		flat := tri[0].Y > 7-1e-6 && tri[1].Y > 7-1e-6 && tri[2].Y > 7-1e-6
		assert.False(t, flat, "face %d caps the cut", i)
	}

	e.Cut.Axis = 3
	_, err = e.ExportStructure(343)
	assert.Error(t, err)
	e.Cut.Axis = 1

	e.Cut = nil
	e.Format = FormatSTL
	e.Step = r3.Vec{X: 25, Y: 25, Z: 25}
	res, err = e.ExportStructure(55)
	require.NoError(t, err)
	require.False(t, res.Skipped)
	assert.True(t, strings.HasSuffix(res.Path, "Right only (R-O).stl"))
	mesh, err := render.ReadSTLFile(res.Path)
	require.NoError(t, err)
	assert.InDelta(t, 25*13.5, mesh.Bounds().Max.Y, 1)

	_, err = e.ExportStructure(4)
	assert.ErrorIs(t, err, ontology.ErrUnknownStructure)
}

func TestExportAllIDs(t *testing.T) {
	e := NewExporter(testSpace(t), t.TempDir())
	sum, err := e.ExportAll(343, 567)
	require.NoError(t, err)
	require.Len(t, sum.Results, 2)
	// Graph order, not argument order.
	assert.Equal(t, 567, sum.Results[0].ID)
	assert.Equal(t, 343, sum.Results[1].ID)

	_, err = e.ExportAll(12345)
	assert.ErrorIs(t, err, ontology.ErrUnknownStructure)
}

func TestPlotArchive(t *testing.T) {
	root := filepath.Join(t.TempDir(), "meshes")
	e := NewExporter(testSpace(t), root)
	sum, err := e.ExportAll()
	require.NoError(t, err)

	dir := t.TempDir()
	chart := filepath.Join(dir, "faces.png")
	require.NoError(t, sum.Plot(chart, 3))
	assert.FileExists(t, chart)
	assert.Error(t, (&Summary{}).Plot(chart, 3))

	zip := filepath.Join(dir, "meshes.zip")
	require.NoError(t, Archive(root, zip))
	info, err := os.Stat(zip)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
	assert.Error(t, Archive(chart, filepath.Join(dir, "x.zip")))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(".STL")
	require.NoError(t, err)
	assert.Equal(t, FormatSTL, f)
	assert.Equal(t, "obj", FormatOBJ.String())
	_, err = ParseFormat("ply")
	assert.Error(t, err)
}

func readOBJ(path string) (*render.Mesh, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	return render.ReadOBJ(fp)
}
