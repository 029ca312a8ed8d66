package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Transform is an affine 3D transformation. The zero value is the identity.
type Transform struct {
	// The diagonal is stored with 1 subtracted so that
	//  if T == (Transform{})
	// tests for identity.
	d00, x01, x02, x03 float64
	x10, d11, x12, x13 float64
	x20, x21, d22, x23 float64
}

// Translation returns a Transform that translates by v.
func Translation(v r3.Vec) Transform {
	return Transform{}.Translate(v)
}

// Scaling returns a Transform that scales by factor about origin.
func Scaling(origin, factor r3.Vec) Transform {
	return Transform{}.Scale(origin, factor)
}

// Mirroring returns a Transform reflecting points across the plane
// normal to axis that passes through origin.
func Mirroring(axis int, origin r3.Vec) Transform {
	f := Elem(1)
	switch axis {
	case 0:
		f.X = -1
	case 1:
		f.Y = -1
	case 2:
		f.Z = -1
	default:
		panic("bad mirror axis")
	}
	return Scaling(origin, f)
}

// Transform applies the Transform to v.
func (t Transform) Transform(v r3.Vec) r3.Vec {
	return r3.Vec{
		X: (t.d00+1)*v.X + t.x01*v.Y + t.x02*v.Z + t.x03,
		Y: t.x10*v.X + (t.d11+1)*v.Y + t.x12*v.Z + t.x13,
		Z: t.x20*v.X + t.x21*v.Y + (t.d22+1)*v.Z + t.x23,
	}
}

// Translate returns t followed by a translation of v.
func (t Transform) Translate(v r3.Vec) Transform {
	t.x03 += v.X
	t.x13 += v.Y
	t.x23 += v.Z
	return t
}

// Scale returns t followed by a scaling of factor about origin.
func (t Transform) Scale(origin, factor r3.Vec) Transform {
	t = t.Translate(r3.Scale(-1, origin))
	// Scaling rows applies the factor after t.
	t.d00 = (t.d00+1)*factor.X - 1
	t.x01 *= factor.X
	t.x02 *= factor.X
	t.x03 *= factor.X

	t.x10 *= factor.Y
	t.d11 = (t.d11+1)*factor.Y - 1
	t.x12 *= factor.Y
	t.x13 *= factor.Y

	t.x20 *= factor.Z
	t.x21 *= factor.Z
	t.d22 = (t.d22+1)*factor.Z - 1
	t.x23 *= factor.Z
	return t.Translate(origin)
}

// Mul returns the Transform that applies b first and then t.
func (t Transform) Mul(b Transform) Transform {
	if t == (Transform{}) {
		return b
	}
	if b == (Transform{}) {
		return t
	}
	a00, a11, a22 := t.d00+1, t.d11+1, t.d22+1
	b00, b11, b22 := b.d00+1, b.d11+1, b.d22+1
	var m Transform
	m.d00 = a00*b00 + t.x01*b.x10 + t.x02*b.x20 - 1
	m.x01 = a00*b.x01 + t.x01*b11 + t.x02*b.x21
	m.x02 = a00*b.x02 + t.x01*b.x12 + t.x02*b22
	m.x03 = a00*b.x03 + t.x01*b.x13 + t.x02*b.x23 + t.x03

	m.x10 = t.x10*b00 + a11*b.x10 + t.x12*b.x20
	m.d11 = t.x10*b.x01 + a11*b11 + t.x12*b.x21 - 1
	m.x12 = t.x10*b.x02 + a11*b.x12 + t.x12*b22
	m.x13 = t.x10*b.x03 + a11*b.x13 + t.x12*b.x23 + t.x13

	m.x20 = t.x20*b00 + t.x21*b.x10 + a22*b.x20
	m.x21 = t.x20*b.x01 + t.x21*b11 + a22*b.x21
	m.d22 = t.x20*b.x02 + t.x21*b.x12 + a22*b22 - 1
	m.x23 = t.x20*b.x03 + t.x21*b.x13 + a22*b.x23 + t.x23
	return m
}

// Det returns the determinant of the linear part of the Transform.
// A negative determinant flips triangle winding.
func (t Transform) Det() float64 {
	a00, a11, a22 := t.d00+1, t.d11+1, t.d22+1
	return a00*(a11*a22-t.x12*t.x21) -
		t.x01*(t.x10*a22-t.x12*t.x20) +
		t.x02*(t.x10*t.x21-a11*t.x20)
}

// Equals tests the equality of the Transforms to within a tolerance.
func (t Transform) Equals(b Transform, tol float64) bool {
	ta, ba := t.SliceCopy(), b.SliceCopy()
	for i := range ta {
		if math.Abs(ta[i]-ba[i]) > tol {
			return false
		}
	}
	return true
}

// SliceCopy returns the 12 affine elements in row major order.
func (t Transform) SliceCopy() []float64 {
	return []float64{
		t.d00 + 1, t.x01, t.x02, t.x03,
		t.x10, t.d11 + 1, t.x12, t.x13,
		t.x20, t.x21, t.d22 + 1, t.x23,
	}
}
