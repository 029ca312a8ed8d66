package atlasmesh

import (
	"github.com/pkg/errors"
)

// Labels is a 3D grid of annotation labels. Axis 0 varies fastest in Data,
// which matches the NRRD on-disk sample order.
type Labels struct {
	Shape V3i
	Data  []uint32
}

// NewLabels allocates a zeroed label grid.
func NewLabels(shape V3i) *Labels {
	if shape[0] < 0 || shape[1] < 0 || shape[2] < 0 {
		panic("negative label grid shape")
	}
	return &Labels{Shape: shape, Data: make([]uint32, shape.Volume())}
}

// At returns the label at voxel (i, j, k).
func (l *Labels) At(i, j, k int) uint32 {
	return l.Data[V3i{i, j, k}.linear(l.Shape)]
}

// Set sets the label at voxel (i, j, k).
func (l *Labels) Set(i, j, k int, v uint32) {
	l.Data[V3i{i, j, k}.linear(l.Shape)] = v
}

// Validate checks that the data length matches the shape.
func (l *Labels) Validate() error {
	if len(l.Data) != l.Shape.Volume() {
		return errors.Errorf("label data length %d does not match shape %v", len(l.Data), l.Shape)
	}
	return nil
}

// SwapAxes returns a copy of l with axes a and b exchanged.
func (l *Labels) SwapAxes(a, b int) *Labels {
	checkAxis(a)
	checkAxis(b)
	shape := l.Shape
	shape[a], shape[b] = shape[b], shape[a]
	dst := NewLabels(shape)
	l.each(func(src V3i, v uint32) {
		src[a], src[b] = src[b], src[a]
		dst.Data[src.linear(shape)] = v
	})
	return dst
}

// Flip returns a copy of l reversed along axis.
func (l *Labels) Flip(axis int) *Labels {
	checkAxis(axis)
	dst := NewLabels(l.Shape)
	n := l.Shape[axis]
	l.each(func(src V3i, v uint32) {
		src[axis] = n - 1 - src[axis]
		dst.Data[src.linear(l.Shape)] = v
	})
	return dst
}

// Unique returns the distinct labels present, in order of first appearance.
func (l *Labels) Unique() []uint32 {
	seen := make(map[uint32]struct{})
	var out []uint32
	for _, v := range l.Data {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func (l *Labels) each(f func(idx V3i, v uint32)) {
	var idx V3i
	i := 0
	for idx[2] = 0; idx[2] < l.Shape[2]; idx[2]++ {
		for idx[1] = 0; idx[1] < l.Shape[1]; idx[1]++ {
			for idx[0] = 0; idx[0] < l.Shape[0]; idx[0]++ {
				f(idx, l.Data[i])
				i++
			}
		}
	}
}

func checkAxis(axis int) {
	if axis < 0 || axis > 2 {
		panic("axis must be 0, 1 or 2")
	}
}
