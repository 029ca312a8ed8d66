package nrrd

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/pgzip"
	"github.com/pkg/errors"
	"github.com/soypat/atlasmesh"
	"gonum.org/v1/gonum/spatial/r3"
)

type sampleType struct {
	name   string
	size   int
	signed bool
}

var (
	typeUint8  = sampleType{"uint8", 1, false}
	typeUint16 = sampleType{"uint16", 2, false}
	typeUint32 = sampleType{"uint32", 4, false}
	typeInt32  = sampleType{"int32", 4, true}
)

func lookupType(name string) (sampleType, error) {
	switch name {
	case "uchar", "unsigned char", "uint8", "uint8_t":
		return typeUint8, nil
	case "ushort", "unsigned short", "unsigned short int", "uint16", "uint16_t":
		return typeUint16, nil
	case "uint", "unsigned int", "uint32", "uint32_t":
		return typeUint32, nil
	case "int", "signed int", "int32", "int32_t":
		return typeInt32, nil
	}
	return sampleType{}, errors.Wrapf(ErrUnsupported, "sample type %q", name)
}

// MaxSamples bounds the number of samples Decode allocates for. It fits the
// 10 micron CCF annotation volume.
var MaxSamples = 1 << 31

// chunkSamples is the number of samples decoded per read.
const chunkSamples = 1 << 16

// checkSamples rejects shapes whose sample count overflows or exceeds
// MaxSamples.
func checkSamples(shape atlasmesh.V3i) error {
	total := 1
	for _, n := range shape {
		if n <= 0 {
			return errors.Errorf("non-positive size %d", n)
		}
		if total > MaxSamples/n {
			return errors.Errorf("sizes %v exceed %d samples", shape, MaxSamples)
		}
		total *= n
	}
	return nil
}

// Decode reads a 3D NRRD volume into Labels. Axis 0 of the file is the
// fastest varying axis of the result.
func Decode(r io.Reader) (*atlasmesh.Labels, *Header, error) {
	br := bufio.NewReader(r)
	h, err := readHeader(br)
	if err != nil {
		return nil, nil, err
	}
	if h.Dimension != 3 {
		return nil, nil, errors.Wrapf(ErrUnsupported, "dimension %d", h.Dimension)
	}
	typ, err := lookupType(h.Type)
	if err != nil {
		return nil, nil, err
	}
	var order binary.ByteOrder
	switch h.Endian {
	case "little":
		order = binary.LittleEndian
	case "big":
		order = binary.BigEndian
	default:
		return nil, nil, errors.Errorf("bad endian %q", h.Endian)
	}

	var data io.Reader = br
	switch h.Encoding {
	case "raw":
	case "gzip", "gz":
		zr, err := pgzip.NewReader(br)
		if err != nil {
			return nil, nil, errors.Wrap(err, "gzip")
		}
		defer zr.Close()
		data = zr
	default:
		return nil, nil, errors.Wrapf(ErrUnsupported, "encoding %q", h.Encoding)
	}

	shape := atlasmesh.V3i{h.Sizes[0], h.Sizes[1], h.Sizes[2]}
	if err := checkSamples(shape); err != nil {
		return nil, nil, err
	}
	labels := atlasmesh.NewLabels(shape)
	buf := make([]byte, typ.size*min(len(labels.Data), chunkSamples))
	for start := 0; start < len(labels.Data); start += chunkSamples {
		n := min(len(labels.Data)-start, chunkSamples)
		chunk := buf[:n*typ.size]
		if _, err := io.ReadFull(data, chunk); err != nil {
			return nil, nil, errors.Wrapf(err, "read samples %d..%d", start, start+n)
		}
		for i := 0; i < n; i++ {
			b := chunk[i*typ.size:]
			switch typ {
			case typeUint8:
				labels.Data[start+i] = uint32(b[0])
			case typeUint16:
				labels.Data[start+i] = uint32(order.Uint16(b))
			case typeUint32:
				labels.Data[start+i] = order.Uint32(b)
			case typeInt32:
				v := int32(order.Uint32(b))
				if v < 0 {
					return nil, nil, errors.Errorf("negative label %d at sample %d", v, start+i)
				}
				labels.Data[start+i] = uint32(v)
			}
		}
	}
	return labels, h, nil
}

// ReadFile decodes the NRRD file name.
func ReadFile(name string) (*atlasmesh.Labels, *Header, error) {
	fp, err := os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	defer fp.Close()
	labels, h, err := Decode(fp)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "decode %s", name)
	}
	return labels, h, nil
}

// EncodeOptions controls Encode. The zero value writes raw data with unit
// spacing.
type EncodeOptions struct {
	// Gzip compresses the samples.
	Gzip       bool
	Resolution r3.Vec
	KeyValues  map[string]string
}

// Encode writes labels as little endian uint32 samples.
func Encode(w io.Writer, labels *atlasmesh.Labels, opts EncodeOptions) error {
	if err := labels.Validate(); err != nil {
		return err
	}
	res := opts.Resolution
	if res == (r3.Vec{}) {
		res = r3.Vec{X: 1, Y: 1, Z: 1}
	}
	encoding := "raw"
	if opts.Gzip {
		encoding = "gzip"
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s4\n", magic)
	fmt.Fprintf(bw, "type: %s\n", typeUint32.name)
	fmt.Fprintf(bw, "dimension: 3\n")
	fmt.Fprintf(bw, "space: left-posterior-superior\n")
	fmt.Fprintf(bw, "sizes: %d %d %d\n", labels.Shape[0], labels.Shape[1], labels.Shape[2])
	fmt.Fprintf(bw, "space directions: %s\n", formatDirections(res))
	fmt.Fprintf(bw, "kinds: domain domain domain\n")
	fmt.Fprintf(bw, "endian: little\n")
	fmt.Fprintf(bw, "encoding: %s\n", encoding)
	fmt.Fprintf(bw, "space origin: (0,0,0)\n")
	for k, v := range opts.KeyValues {
		fmt.Fprintf(bw, "%s:=%s\n", k, v)
	}
	bw.WriteString("\n")

	var data io.Writer = bw
	var zw *pgzip.Writer
	if opts.Gzip {
		zw = pgzip.NewWriter(bw)
		data = zw
	}
	var sample [4]byte
	for _, v := range labels.Data {
		binary.LittleEndian.PutUint32(sample[:], v)
		if _, err := data.Write(sample[:]); err != nil {
			return err
		}
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return err
		}
	}
	return bw.Flush()
}
