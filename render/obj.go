package render

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

// OBJOptions controls WriteOBJ.
type OBJOptions struct {
	// Name is written as an "o" statement when not empty.
	Name string
	// Normals writes per-vertex normals and references them from faces.
	Normals bool
}

// WriteOBJ writes m as Wavefront OBJ text. Face indices are 1-based.
func WriteOBJ(w io.Writer, m *Mesh, opts OBJOptions) error {
	if err := m.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	if opts.Name != "" {
		bw.WriteString("o " + opts.Name + "\n")
	}
	var buf []byte
	writeVec := func(prefix string, v r3.Vec) {
		buf = append(buf[:0], prefix...)
		buf = strconv.AppendFloat(buf, v.X, 'g', -1, 64)
		buf = append(buf, ' ')
		buf = strconv.AppendFloat(buf, v.Y, 'g', -1, 64)
		buf = append(buf, ' ')
		buf = strconv.AppendFloat(buf, v.Z, 'g', -1, 64)
		buf = append(buf, '\n')
		bw.Write(buf)
	}
	for _, v := range m.Vertices {
		writeVec("v ", v)
	}
	if opts.Normals {
		for _, n := range m.VertexNormals() {
			writeVec("vn ", n)
		}
	}
	for _, f := range m.Faces {
		buf = append(buf[:0], 'f')
		for _, v := range f {
			buf = append(buf, ' ')
			buf = strconv.AppendInt(buf, int64(v+1), 10)
			if opts.Normals {
				buf = append(buf, '/', '/')
				buf = strconv.AppendInt(buf, int64(v+1), 10)
			}
		}
		buf = append(buf, '\n')
		bw.Write(buf)
	}
	return bw.Flush()
}

// ReadOBJ reads the geometry of a Wavefront OBJ file. Every object and group
// is merged into one mesh. Polygons are fan triangulated and negative indices
// count back from the last vertex. Statements other than "v" and "f" are
// ignored.
func ReadOBJ(r io.Reader) (*Mesh, error) {
	m := &Mesh{}
	br := bufio.NewReader(r)
	line := 0
	for {
		text, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		line++
		if perr := m.parseOBJLine(text); perr != nil {
			return nil, errors.Wrapf(perr, "obj line %d", line)
		}
		if err == io.EOF {
			break
		}
	}
	return m, nil
}

func (m *Mesh) parseOBJLine(text string) error {
	if i := strings.IndexByte(text, '#'); i >= 0 {
		text = text[:i]
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	switch fields[0] {
	case "v":
		if len(fields) < 4 {
			return errors.New("vertex with less than 3 coordinates")
		}
		var c [3]float64
		for i := range c {
			x, err := strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				return err
			}
			c[i] = x
		}
		m.Vertices = append(m.Vertices, r3.Vec{X: c[0], Y: c[1], Z: c[2]})
	case "f":
		if len(fields) < 4 {
			return errors.New("face with less than 3 vertices")
		}
		idx := make([]int, len(fields)-1)
		for i, tok := range fields[1:] {
			v, err := m.objIndex(tok)
			if err != nil {
				return err
			}
			idx[i] = v
		}
		for i := 1; i+1 < len(idx); i++ {
			m.Faces = append(m.Faces, [3]int{idx[0], idx[i], idx[i+1]})
		}
	}
	return nil
}

// objIndex resolves the vertex part of a face token such as "3", "3/1" or
// "-1//2" to a 0-based index.
func (m *Mesh) objIndex(tok string) (int, error) {
	if i := strings.IndexByte(tok, '/'); i >= 0 {
		tok = tok[:i]
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, errors.Wrap(err, "face index")
	}
	switch {
	case v > 0 && v <= len(m.Vertices):
		return v - 1, nil
	case v < 0 && -v <= len(m.Vertices):
		return len(m.Vertices) + v, nil
	}
	return 0, errors.Errorf("face index %d out of range with %d vertices", v, len(m.Vertices))
}
