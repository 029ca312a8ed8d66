// Package atlasmesh holds the voxel types shared by the atlas export
// pipeline: annotation label volumes, boolean structure masks and the
// reference space tying an annotation to its structure ontology.
package atlasmesh

import (
	"github.com/pkg/errors"
	"github.com/soypat/atlasmesh/ontology"
	"gonum.org/v1/gonum/spatial/r3"
)

// ReferenceSpace pairs an annotation volume with the ontology whose ids
// label it. Resolution is the voxel size in microns.
type ReferenceSpace struct {
	Tree       *ontology.Tree
	Annotation *Labels
	Resolution r3.Vec
}

// NewReferenceSpace validates the annotation and returns a ReferenceSpace.
func NewReferenceSpace(tree *ontology.Tree, annotation *Labels, resolution r3.Vec) (*ReferenceSpace, error) {
	if tree == nil {
		return nil, errors.New("nil structure tree")
	}
	if annotation == nil {
		return nil, errors.New("nil annotation")
	}
	if err := annotation.Validate(); err != nil {
		return nil, errors.Wrap(err, "annotation")
	}
	if resolution.X <= 0 || resolution.Y <= 0 || resolution.Z <= 0 {
		return nil, errors.Errorf("non-positive resolution %v", resolution)
	}
	return &ReferenceSpace{Tree: tree, Annotation: annotation, Resolution: resolution}, nil
}

// StructureMask returns a mask of every voxel labelled with one of ids or any
// of their descendants.
func (rs *ReferenceSpace) StructureMask(ids ...int) (*Mask, error) {
	want := make(map[uint32]struct{})
	for _, id := range ids {
		desc, err := rs.Tree.DescendantIDs(id)
		if err != nil {
			return nil, err
		}
		for _, d := range desc {
			want[uint32(d)] = struct{}{}
		}
	}
	m := NewMask(rs.Annotation.Shape)
	for i, v := range rs.Annotation.Data {
		_, m.Data[i] = want[v]
	}
	return m, nil
}

// Reorient converts an annotation stored in anterior-posterior,
// superior-inferior, left-right order into the mesh frame: the last two axes
// are swapped and the vertical axis is flipped so it points up.
func Reorient(l *Labels) *Labels {
	return l.SwapAxes(1, 2).Flip(2)
}
