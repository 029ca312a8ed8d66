package atlasmesh

import "github.com/pkg/errors"

// Mask is a 3D boolean grid. Axis 0 varies fastest in Data.
type Mask struct {
	Shape V3i
	Data  []bool
}

// NewMask allocates an empty mask.
func NewMask(shape V3i) *Mask {
	if shape[0] < 0 || shape[1] < 0 || shape[2] < 0 {
		panic("negative mask shape")
	}
	return &Mask{Shape: shape, Data: make([]bool, shape.Volume())}
}

// At returns the mask value at voxel (i, j, k). Voxels outside the grid are false.
func (m *Mask) At(i, j, k int) bool {
	idx := V3i{i, j, k}
	if !idx.In(m.Shape) {
		return false
	}
	return m.Data[idx.linear(m.Shape)]
}

// Set sets the mask value at voxel (i, j, k).
func (m *Mask) Set(i, j, k int, v bool) {
	m.Data[V3i{i, j, k}.linear(m.Shape)] = v
}

// Count returns the number of set voxels.
func (m *Mask) Count() (n int) {
	for _, v := range m.Data {
		if v {
			n++
		}
	}
	return n
}

// Uniform reports whether every voxel holds the same value. A uniform mask
// has no boundary inside the grid and therefore no isosurface.
func (m *Mask) Uniform() bool {
	n := m.Count()
	return n == 0 || n == len(m.Data)
}

// Bounds returns the smallest and largest indices of set voxels.
// ok is false when no voxel is set.
func (m *Mask) Bounds() (lo, hi V3i, ok bool) {
	lo = m.Shape
	hi = V3i{-1, -1, -1}
	var idx V3i
	i := 0
	for idx[2] = 0; idx[2] < m.Shape[2]; idx[2]++ {
		for idx[1] = 0; idx[1] < m.Shape[1]; idx[1]++ {
			for idx[0] = 0; idx[0] < m.Shape[0]; idx[0]++ {
				if m.Data[i] {
					for ax := range idx {
						lo[ax] = min(lo[ax], idx[ax])
						hi[ax] = max(hi[ax], idx[ax])
					}
				}
				i++
			}
		}
	}
	return lo, hi, hi[0] >= 0
}

// Crop returns the sub-mask holding indices [from, to) along axis.
// Indices are clamped to the grid.
func (m *Mask) Crop(axis, from, to int) (*Mask, error) {
	checkAxis(axis)
	from = max(from, 0)
	to = min(to, m.Shape[axis])
	if from >= to {
		return nil, errors.Errorf("empty crop [%d, %d) on axis %d of size %d", from, to, axis, m.Shape[axis])
	}
	shape := m.Shape
	shape[axis] = to - from
	dst := NewMask(shape)
	var idx V3i
	for idx[2] = 0; idx[2] < shape[2]; idx[2]++ {
		for idx[1] = 0; idx[1] < shape[1]; idx[1]++ {
			for idx[0] = 0; idx[0] < shape[0]; idx[0]++ {
				src := idx
				src[axis] += from
				dst.Data[idx.linear(shape)] = m.Data[src.linear(m.Shape)]
			}
		}
	}
	return dst, nil
}
