package render

import (
	"bytes"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/soypat/atlasmesh"
	"github.com/soypat/atlasmesh/internal/d3"
	"github.com/soypat/glgl/math/ms3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func ballMask(n int, r float64) *atlasmesh.Mask {
	m := atlasmesh.NewMask(atlasmesh.V3i{n, n, n})
	c := float64(n-1) / 2
	for k := 0; k < n; k++ {
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				p := r3.Vec{X: float64(i) - c, Y: float64(j) - c, Z: float64(k) - c}
				m.Set(i, j, k, r3.Norm(p) <= r)
			}
		}
	}
	return m
}

func TestSTLWriteReadback(t *testing.T) {
	const tol = 1e-5
	mc, err := NewMarchingCubes(ballMask(12, 4), r3.Vec{})
	require.NoError(t, err)
	input, err := RenderAll(mc)
	require.NoError(t, err)
	require.NotEmpty(t, input)

	var b bytes.Buffer
	n, err := WriteSTL(&b, input)
	require.NoError(t, err)
	assert.Equal(t, 84+stlTriangleSize*len(input), n)

	output, err := ReadSTL(&b)
	if err != nil && !errors.Is(err, errCalculatedNormalMismatch) {
		t.Fatal(err)
	}
	require.Len(t, output, len(input))
	mismatches := 0
	for i := range input {
		for j := range input[i] {
			if !d3.EqualWithin(input[i][j], output[i][j], tol) {
				mismatches++
			}
		}
	}
	assert.Zero(t, mismatches)
}

func TestReadSTLErrors(t *testing.T) {
	_, err := ReadSTL(bytes.NewReader(make([]byte, 10)))
	assert.Error(t, err)
	_, err = ReadSTL(bytes.NewReader(make([]byte, 84)))
	assert.Error(t, err)
	_, err = WriteSTL(io.Discard, nil)
	assert.Error(t, err)
}

// rawSTL encodes tris as a binary STL declaring count triangles.
func rawSTL(count uint32, tris ...stlTriangle) []byte {
	b := make([]byte, stlHeaderSize+stlTriangleSize*len(tris))
	stlHeader{Count: count}.put(b)
	for i, tri := range tris {
		tri.put(b[stlHeaderSize+stlTriangleSize*i:])
	}
	return b
}

func TestReadSTLTolerance(t *testing.T) {
	up := stlTriangle{
		Normal:  [3]float32{0, 0, 1},
		Vertex1: [3]float32{0, 0, 0},
		Vertex2: [3]float32{1, 0, 0},
		Vertex3: [3]float32{0, 1, 0},
	}
	flipped := up
	flipped.Normal = [3]float32{0.01, 0, -1}
	unset := up
	unset.Normal = [3]float32{}
	sliver := up
	sliver.Vertex3 = sliver.Vertex2

	out, err := ReadSTL(bytes.NewReader(rawSTL(4, up, flipped, sliver, unset)))
	require.NoError(t, err)
	assert.Len(t, out, 3)

	skewed := up
	skewed.Normal = [3]float32{1, 0, 0}
	out, err = ReadSTL(bytes.NewReader(rawSTL(2, up, skewed)))
	assert.True(t, errors.Is(err, errCalculatedNormalMismatch))
	assert.Len(t, out, 2)

	_, err = ReadSTL(bytes.NewReader(rawSTL(1, sliver)))
	assert.Error(t, err)

	assert.True(t, equalWithin(ms3.Vec{X: 1}, ms3.Vec{X: 1.04, Y: -0.04}, 0.05))
	assert.False(t, equalWithin(ms3.Vec{X: 1}, ms3.Vec{X: 1, Z: 0.06}, 0.05))
}

func TestReadSTLCorruptCount(t *testing.T) {
	up := stlTriangle{
		Vertex1: [3]float32{0, 0, 0},
		Vertex2: [3]float32{1, 0, 0},
		Vertex3: [3]float32{0, 1, 0},
	}
	data := rawSTL(math.MaxUint32, up)
	_, err := ReadSTL(bytes.NewReader(data))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "corrupt.stl")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	_, err = ReadSTLFile(path)
	assert.ErrorContains(t, err, "declares")

	require.NoError(t, os.WriteFile(path, rawSTL(1, up), 0o644))
	mesh, err := ReadSTLFile(path)
	require.NoError(t, err)
	assert.Len(t, mesh.Faces, 1)
}

func TestWriteSTLDegenerate(t *testing.T) {
	tris := []r3.Triangle{
		{{}, {X: 1}, {Y: 1}},
		{{}, {X: 1}, {X: 1}},
	}
	var b bytes.Buffer
	_, err := WriteSTL(&b, tris)
	require.NoError(t, err)
	out, err := ReadSTL(&b)
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestTriangleBuffer(t *testing.T) {
	var b triangleBuffer
	b.Write(make([]r3.Triangle, 5))
	dst := make([]r3.Triangle, 3)
	n, err := b.Read(dst)
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
	n, err = b.Read(dst)
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
	_, err = b.Read(dst)
	assert.Equal(t, io.EOF, err)
}

func TestNeighbors(t *testing.T) {
	m := &Mesh{
		Vertices: make([]r3.Vec, 4),
		Faces:    [][3]int{{0, 1, 2}, {0, 2, 3}},
	}
	conn := m.neighbors()
	assert.ElementsMatch(t, []int{1, 2, 3}, conn[0])
	assert.ElementsMatch(t, []int{0, 2}, conn[1])
	assert.ElementsMatch(t, []int{0, 1, 3}, conn[2])
}
