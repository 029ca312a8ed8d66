// Package nrrd reads and writes 3D label volumes in the NRRD format.
//
// Only attached data with raw or gzip encoding is handled, and only the
// integer sample types used by annotation volumes.
package nrrd

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrUnsupported is returned for valid NRRD features this package does not read.
var ErrUnsupported = errors.New("unsupported nrrd feature")

const magic = "NRRD000"

// Header holds the parsed NRRD header.
type Header struct {
	Version   string
	Type      string
	Dimension int
	Sizes     []int
	Encoding  string
	Endian    string
	Space     string
	// SpaceDirections has one entry per axis; nil for "none".
	SpaceDirections [][]float64
	// Fields holds every field verbatim, keyed by lower case name.
	Fields map[string]string
	// KeyValues holds "key:=value" pairs.
	KeyValues map[string]string
}

// Resolution returns the length of each axis' space direction.
// Axes without direction get a length of 1.
func (h *Header) Resolution() r3.Vec {
	var res [3]float64
	for i := range res {
		res[i] = 1
		if i < len(h.SpaceDirections) && h.SpaceDirections[i] != nil {
			var sum float64
			for _, c := range h.SpaceDirections[i] {
				sum += c * c
			}
			res[i] = math.Sqrt(sum)
		}
	}
	return r3.Vec{X: res[0], Y: res[1], Z: res[2]}
}

func readHeader(br *bufio.Reader) (*Header, error) {
	first, err := br.ReadString('\n')
	if err != nil {
		return nil, errors.Wrap(err, "read magic")
	}
	first = strings.TrimSpace(first)
	if !strings.HasPrefix(first, magic) {
		return nil, errors.Errorf("not a nrrd file: magic %q", first)
	}
	h := &Header{
		Version:   first,
		Endian:    "little",
		Fields:    make(map[string]string),
		KeyValues: make(map[string]string),
	}
	for {
		line, err := br.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return nil, errors.Wrap(err, "read header")
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		if k, v, ok := strings.Cut(line, ":="); ok {
			h.KeyValues[k] = v
			continue
		}
		k, v, ok := strings.Cut(line, ": ")
		if !ok {
			return nil, errors.Errorf("malformed header line %q", line)
		}
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		h.Fields[k] = v
		if err := h.setField(k, v); err != nil {
			return nil, errors.Wrapf(err, "field %q", k)
		}
	}
	if h.Dimension == 0 || len(h.Sizes) != h.Dimension {
		return nil, errors.Errorf("dimension %d does not match sizes %v", h.Dimension, h.Sizes)
	}
	if _, ok := h.Fields["data file"]; ok {
		return nil, errors.Wrap(ErrUnsupported, "detached data file")
	}
	return h, nil
}

func (h *Header) setField(k, v string) (err error) {
	switch k {
	case "type":
		h.Type = v
	case "dimension":
		h.Dimension, err = strconv.Atoi(v)
	case "sizes":
		h.Sizes = h.Sizes[:0]
		for _, f := range strings.Fields(v) {
			n, err := strconv.Atoi(f)
			if err != nil {
				return err
			}
			if n <= 0 {
				return errors.Errorf("non-positive size %d", n)
			}
			h.Sizes = append(h.Sizes, n)
		}
	case "encoding":
		h.Encoding = v
	case "endian":
		h.Endian = v
	case "space":
		h.Space = v
	case "space directions":
		h.SpaceDirections, err = parseDirections(v)
	}
	return err
}

// parseDirections parses "(25,0,0) (0,25,0) none".
func parseDirections(v string) ([][]float64, error) {
	var dirs [][]float64
	for _, f := range strings.Fields(v) {
		if f == "none" {
			dirs = append(dirs, nil)
			continue
		}
		if !strings.HasPrefix(f, "(") || !strings.HasSuffix(f, ")") {
			return nil, errors.Errorf("bad vector %q", f)
		}
		var dir []float64
		for _, c := range strings.Split(strings.Trim(f, "()"), ",") {
			x, err := strconv.ParseFloat(c, 64)
			if err != nil {
				return nil, err
			}
			dir = append(dir, x)
		}
		dirs = append(dirs, dir)
	}
	return dirs, nil
}

func formatDirections(res r3.Vec) string {
	g := func(x float64) string { return strconv.FormatFloat(x, 'g', -1, 64) }
	return fmt.Sprintf("(%s,0,0) (0,%s,0) (0,0,%s)", g(res.X), g(res.Y), g(res.Z))
}
