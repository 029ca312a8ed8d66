package nrrd

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/soypat/atlasmesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func testLabels() *atlasmesh.Labels {
	l := atlasmesh.NewLabels(atlasmesh.V3i{3, 4, 5})
	for i := range l.Data {
		l.Data[i] = uint32(i * 997)
	}
	return l
}

func TestRoundTrip(t *testing.T) {
	for _, gz := range []bool{false, true} {
		var buf bytes.Buffer
		want := testLabels()
		err := Encode(&buf, want, EncodeOptions{
			Gzip:       gz,
			Resolution: r3.Vec{X: 25, Y: 25, Z: 25},
			KeyValues:  map[string]string{"source": "test"},
		})
		require.NoError(t, err)

		got, h, err := Decode(&buf)
		require.NoError(t, err, "gzip=%v", gz)
		assert.Equal(t, want.Shape, got.Shape)
		assert.Equal(t, want.Data, got.Data)
		assert.Equal(t, r3.Vec{X: 25, Y: 25, Z: 25}, h.Resolution())
		assert.Equal(t, "test", h.KeyValues["source"])
		assert.Equal(t, "NRRD0004", h.Version)
	}
}

func TestDecodeChunks(t *testing.T) {
	want := atlasmesh.NewLabels(atlasmesh.V3i{50, 40, 41})
	for i := range want.Data {
		want.Data[i] = uint32(i % 1009)
	}
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, want, EncodeOptions{}))
	got, _, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, want.Data, got.Data)

	buf.Reset()
	require.NoError(t, Encode(&buf, want, EncodeOptions{}))
	_, _, err = Decode(bytes.NewReader(buf.Bytes()[:buf.Len()-10]))
	assert.ErrorContains(t, err, "read samples 65536..")
}

func TestDecodeTypes(t *testing.T) {
	header := func(typ, endian string) string {
		return "NRRD0005\n# comment\ntype: " + typ + "\ndimension: 3\nsizes: 2 1 1\nendian: " + endian + "\nencoding: raw\nspace directions: (10,0,0) (0,10,0) none\n\n"
	}
	cases := []struct {
		typ, endian string
		data        []byte
		want        []uint32
	}{
		{"unsigned char", "little", []byte{3, 250}, []uint32{3, 250}},
		{"ushort", "big", []byte{1, 0, 0, 2}, []uint32{256, 2}},
		{"uint32", "little", binary.LittleEndian.AppendUint32(binary.LittleEndian.AppendUint32(nil, 7), 1<<20), []uint32{7, 1 << 20}},
		{"int", "big", binary.BigEndian.AppendUint32(binary.BigEndian.AppendUint32(nil, 9), 11), []uint32{9, 11}},
	}
	for _, c := range cases {
		src := append([]byte(header(c.typ, c.endian)), c.data...)
		got, h, err := Decode(bytes.NewReader(src))
		require.NoError(t, err, c.typ)
		assert.Equal(t, c.want, got.Data, c.typ)
		assert.Equal(t, r3.Vec{X: 10, Y: 10, Z: 1}, h.Resolution())
	}
}

func TestDecodeErrors(t *testing.T) {
	_, _, err := Decode(bytes.NewReader([]byte("P6\n")))
	assert.Error(t, err)

	_, _, err = Decode(bytes.NewReader([]byte("NRRD0004\ntype: float\ndimension: 3\nsizes: 1 1 1\nencoding: raw\n\n")))
	assert.ErrorIs(t, err, ErrUnsupported)

	_, _, err = Decode(bytes.NewReader([]byte("NRRD0004\ntype: uint8\ndimension: 3\nsizes: 1 1 1\nencoding: bzip2\n\n")))
	assert.ErrorIs(t, err, ErrUnsupported)

	_, _, err = Decode(bytes.NewReader([]byte("NRRD0004\ntype: uint8\ndimension: 2\nsizes: 1 1\nencoding: raw\n\n")))
	assert.ErrorIs(t, err, ErrUnsupported)

	_, _, err = Decode(bytes.NewReader([]byte("NRRD0004\ntype: uint8\ndimension: 3\nsizes: 2 2 2\nencoding: raw\n\n\x01")))
	assert.Error(t, err)

	for _, sizes := range []string{"100000 100000 100000", "4611686018427387904 4 4"} {
		_, _, err = Decode(bytes.NewReader([]byte("NRRD0004\ntype: uint8\ndimension: 3\nsizes: " + sizes + "\nencoding: raw\n\n")))
		assert.ErrorContains(t, err, "exceed", sizes)
	}

	neg := binary.LittleEndian.AppendUint32(nil, 0xffffffff)
	_, _, err = Decode(bytes.NewReader(append([]byte("NRRD0004\ntype: int32\ndimension: 3\nsizes: 1 1 1\nencoding: raw\n\n"), neg...)))
	assert.Error(t, err)
}

func TestReadFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "annotation_25.nrrd")
	fp, err := os.Create(name)
	require.NoError(t, err)
	require.NoError(t, Encode(fp, testLabels(), EncodeOptions{Gzip: true}))
	require.NoError(t, fp.Close())

	got, h, err := ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, testLabels().Data, got.Data)
	assert.Equal(t, "gzip", h.Encoding)
}
