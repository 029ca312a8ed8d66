/*

Integer 3D voxel indices

*/

package atlasmesh

import "gonum.org/v1/gonum/spatial/r3"

// V3i is a 3D integer vector, used for voxel indices and grid shapes.
type V3i [3]int

// Add adds two vectors. Return v = a + b.
func (a V3i) Add(b V3i) V3i {
	return V3i{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// AddScalar adds a scalar to each component of the vector.
func (a V3i) AddScalar(b int) V3i {
	return V3i{a[0] + b, a[1] + b, a[2] + b}
}

// ToV3 converts V3i (integer) to r3.Vec (float).
func (a V3i) ToV3() r3.Vec {
	return r3.Vec{X: float64(a[0]), Y: float64(a[1]), Z: float64(a[2])}
}

// Volume returns the product of the components.
func (a V3i) Volume() int {
	return a[0] * a[1] * a[2]
}

// In reports whether a is a valid index into a grid of the given shape.
func (a V3i) In(shape V3i) bool {
	return a[0] >= 0 && a[1] >= 0 && a[2] >= 0 &&
		a[0] < shape[0] && a[1] < shape[1] && a[2] < shape[2]
}

// linear returns the flat index of a in a grid of the given shape where
// axis 0 varies fastest.
func (a V3i) linear(shape V3i) int {
	return a[0] + shape[0]*(a[1]+shape[1]*a[2])
}
