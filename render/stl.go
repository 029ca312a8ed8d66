package render

import (
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"github.com/soypat/atlasmesh/log"
	"github.com/soypat/glgl/math/ms3"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	stlHeaderSize   = 84
	stlTriangleSize = 50

	// stlPrealloc bounds the capacity reserved from the header count.
	stlPrealloc = 1 << 16
)

// CreateSTL renders everything r yields into a binary STL file at path.
func CreateSTL(path string, r Renderer) error {
	model, err := RenderAll(r)
	if err != nil {
		return err
	}
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fp.Close()
	if _, err := WriteSTL(fp, model); err != nil {
		return err
	}
	return fp.Close()
}

// WriteSTL writes model triangles to a writer in binary STL file format.
// Coordinates are stored as float32.
func WriteSTL(w io.Writer, model []r3.Triangle) (int, error) {
	if len(model) == 0 {
		return 0, errors.New("empty triangle slice")
	}
	nt := int64(len(model)) // int64 cast so that next line works correctly on 32bit machines.
	if nt > math.MaxUint32 {
		return 0, errors.New("amount of triangles in model exceeds STL design limits")
	}
	header := stlHeader{Count: uint32(nt)}

	var buf [84]byte
	header.put(buf[:])
	n, err := w.Write(buf[:84])
	if err != nil {
		return n, err
	} else if n != len(buf) {
		return n, io.ErrShortWrite
	}
	var d stlTriangle
	for _, t := range model {
		tri := toTriangle32(t)
		d.Normal = [3]float32{}
		if n := tri.Normal(); ms3.Norm(n) > 0 {
			d.Normal = arrayFromVec(ms3.Unit(n))
		}
		d.Vertex1 = arrayFromVec(tri[0])
		d.Vertex2 = arrayFromVec(tri[1])
		d.Vertex3 = arrayFromVec(tri[2])
		d.put(buf[:])
		ngot, err := w.Write(buf[:stlTriangleSize])
		n += ngot
		if err != nil {
			return n, err
		} else if ngot != stlTriangleSize {
			return n, io.ErrShortWrite
		}
	}
	return n, nil
}

// ReadSTL reads a binary STL file. Degenerate triangles are skipped.
// Triangles whose stored normal disagrees with their winding are still
// returned, together with a mismatch error.
func ReadSTL(r io.Reader) (output []r3.Triangle, readErr error) {
	var hbuf [stlHeaderSize]byte
	if _, err := io.ReadFull(r, hbuf[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, errors.New("encountered EOF while reading STL header")
		}
		return nil, errors.Wrap(err, "STL header read failed")
	}
	var header stlHeader
	header.get(hbuf[:])
	if header.Count == 0 {
		return nil, errors.New("STL header indicates 0 triangles present")
	}
	var (
		buf            [stlTriangleSize]byte
		d              stlTriangle
		i              int
		normMismatches int
		degenerate     int
	)
	defer func() {
		if readErr != nil && !errors.Is(readErr, errCalculatedNormalMismatch) {
			readErr = errors.Wrapf(readErr, "%d/%d STL triangles read", i+1, header.Count)
		}
		if degenerate > 0 {
			log.Debugf("skipped %d degenerate STL triangles", degenerate)
		}
	}()
	output = make([]r3.Triangle, 0, min(int(header.Count), stlPrealloc))
	for i = 0; i < int(header.Count); i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		d.get(buf[:])
		if err := d.validate(); err != nil {
			switch {
			case errors.Is(err, errDegenerate):
				degenerate++
				continue
			case errors.Is(err, errCalculatedNormalMismatch):
				normMismatches++
				if normMismatches > 10_000 {
					// This may be valid output, so we return the triangles.
					return output, errors.Errorf("got too many normal vector mismatches (%d)", normMismatches)
				}
				readErr = err
			default:
				return nil, err
			}
		}
		output = append(output, d.triangle())
	}
	if len(output) == 0 {
		return nil, errors.Errorf("all %d STL triangles are degenerate", header.Count)
	}
	return output, readErr
}

// ReadSTLFile reads the binary STL file name as a welded mesh. The header
// triangle count must agree with the file size.
func ReadSTLFile(name string) (*Mesh, error) {
	fp, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	info, err := fp.Stat()
	if err != nil {
		return nil, err
	}
	if err := checkSTLSize(fp, info.Size()); err != nil {
		return nil, errors.Wrap(err, name)
	}
	tris, err := ReadSTL(fp)
	if err != nil && !errors.Is(err, errCalculatedNormalMismatch) {
		return nil, errors.Wrap(err, name)
	}
	// Float32 storage loses precision so vertices are welded on a fine grid.
	return NewMesh(tris, 1e-6*stlScale(tris)), nil
}

// checkSTLSize compares the triangle count in the header of r with size and
// rewinds r.
func checkSTLSize(r io.ReadSeeker, size int64) error {
	var hbuf [stlHeaderSize]byte
	if _, err := io.ReadFull(r, hbuf[:]); err != nil {
		return errors.Wrap(err, "STL header")
	}
	var header stlHeader
	header.get(hbuf[:])
	want := stlHeaderSize + stlTriangleSize*int64(header.Count)
	if want > size {
		return errors.Errorf("STL header declares %d triangles (%d bytes) but file has %d bytes", header.Count, want, size)
	}
	_, err := r.Seek(0, io.SeekStart)
	return err
}

func stlScale(tris []r3.Triangle) float64 {
	scale := 1.0
	for _, t := range tris {
		for _, v := range t {
			scale = math.Max(scale, math.Max(math.Abs(v.X), math.Max(math.Abs(v.Y), math.Abs(v.Z))))
		}
	}
	return scale
}

// stlHeader defines the STL file header.
type stlHeader struct {
	_     [80]uint8 // Header
	Count uint32    // Number of triangles
}

func (h stlHeader) put(b []byte) {
	_ = b[83] // early bounds check
	binary.LittleEndian.PutUint32(b[80:], h.Count)
}

func (h *stlHeader) get(b []byte) {
	_ = b[83]
	h.Count = binary.LittleEndian.Uint32(b[80:])
}

// stlTriangle defines the triangle data within an STL file.
type stlTriangle struct {
	Normal  [3]float32
	Vertex1 [3]float32
	Vertex2 [3]float32
	Vertex3 [3]float32
	_       uint16 // Attribute byte count
}

func (t stlTriangle) put(b []byte) {
	if len(b) < stlTriangleSize {
		panic("need length 50 to marshal stlTriangle")
	}
	put3F32(b, t.Normal)
	put3F32(b[12:], t.Vertex1)
	put3F32(b[24:], t.Vertex2)
	put3F32(b[36:], t.Vertex3)
	binary.LittleEndian.PutUint16(b[48:], 0) // Zero out attributes.
}

func (t *stlTriangle) get(b []byte) {
	if len(b) < stlTriangleSize {
		panic("need length 50 to unmarshal stlTriangle")
	}
	get3F32(b, &t.Normal)
	get3F32(b[12:], &t.Vertex1)
	get3F32(b[24:], &t.Vertex2)
	get3F32(b[36:], &t.Vertex3)
}

func put3F32(b []byte, f [3]float32) {
	_ = b[11] // early bounds check
	binary.LittleEndian.PutUint32(b, math.Float32bits(f[0]))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(f[1]))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(f[2]))
}

func get3F32(b []byte, f *[3]float32) {
	_ = b[11] // early bounds check
	f[0] = math.Float32frombits(binary.LittleEndian.Uint32(b))
	f[1] = math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))
	f[2] = math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))
}

func bad3F32(f [3]float32) bool {
	return math32.IsNaN(f[0]) || math32.IsInf(f[0], 0) ||
		math32.IsNaN(f[1]) || math32.IsInf(f[1], 0) ||
		math32.IsNaN(f[2]) || math32.IsInf(f[2], 0)
}

var (
	errCalculatedNormalMismatch = errors.New("triangle normal not approximately equal to normal calculated from vertices")
	errDegenerate               = errors.New("triangle is degenerate")
)

func (t stlTriangle) validate() error {
	const epsilon = 1e-12
	const normTol = 5e-2
	if bad3F32(t.Normal) {
		return errors.New("inf/NaN STL triangle normal")
	}
	if bad3F32(t.Vertex1) || bad3F32(t.Vertex2) || bad3F32(t.Vertex3) {
		return errors.New("inf/NaN STL triangle vertex")
	}
	tri := t.triangle32()
	if tri.IsDegenerate(epsilon) {
		return errDegenerate
	}
	got := vecFromArray(t.Normal)
	if got == (ms3.Vec{}) {
		// Zero normals are left for readers to compute.
		return nil
	}
	calc := ms3.Unit(ms3.Cross(ms3.Sub(tri[1], tri[0]), ms3.Sub(tri[2], tri[0])))
	if !equalWithin(calc, got, normTol) && !equalWithin(ms3.Scale(-1, calc), got, normTol) {
		return errCalculatedNormalMismatch
	}
	return nil
}

// equalWithin reports whether every component of a and b differs by at most
// tol.
func equalWithin(a, b ms3.Vec, tol float32) bool {
	d := ms3.AbsElem(ms3.Sub(a, b))
	return d.X <= tol && d.Y <= tol && d.Z <= tol
}

func (t stlTriangle) triangle32() ms3.Triangle {
	return ms3.Triangle{vecFromArray(t.Vertex1), vecFromArray(t.Vertex2), vecFromArray(t.Vertex3)}
}

func (t stlTriangle) triangle() r3.Triangle {
	return r3.Triangle{r3From3F32(t.Vertex1), r3From3F32(t.Vertex2), r3From3F32(t.Vertex3)}
}

func vecFromArray(f [3]float32) ms3.Vec { return ms3.Vec{X: f[0], Y: f[1], Z: f[2]} }

func arrayFromVec(v ms3.Vec) [3]float32 { return [3]float32{v.X, v.Y, v.Z} }

func r3From3F32(f [3]float32) r3.Vec {
	return r3.Vec{X: float64(f[0]), Y: float64(f[1]), Z: float64(f[2])}
}

func toTriangle32(t r3.Triangle) ms3.Triangle {
	var out ms3.Triangle
	for i, v := range t {
		out[i] = ms3.Vec{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
	}
	return out
}
