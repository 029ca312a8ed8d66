package ontology

import (
	"sort"

	"github.com/pkg/errors"
)

// ErrUnknownStructure is returned when a structure id is not part of a Tree.
var ErrUnknownStructure = errors.New("unknown structure id")

// Tree indexes structures by id and parent.
type Tree struct {
	nodes    map[int]Structure
	children map[int][]int
	order    []int
}

// NewTree builds a Tree. Structures are kept in graph order.
func NewTree(structures []Structure) (*Tree, error) {
	t := &Tree{
		nodes:    make(map[int]Structure, len(structures)),
		children: make(map[int][]int),
		order:    make([]int, 0, len(structures)),
	}
	for _, s := range structures {
		if _, dup := t.nodes[s.ID]; dup {
			return nil, errors.Errorf("duplicate structure id %d", s.ID)
		}
		t.nodes[s.ID] = s
		t.order = append(t.order, s.ID)
	}
	sort.SliceStable(t.order, func(i, j int) bool {
		return t.nodes[t.order[i]].GraphOrder < t.nodes[t.order[j]].GraphOrder
	})
	for _, id := range t.order {
		parent := t.nodes[id].ParentID()
		t.children[parent] = append(t.children[parent], id)
	}
	return t, nil
}

// Len returns the number of structures in the tree.
func (t *Tree) Len() int { return len(t.order) }

// Structure returns the structure with the given id.
func (t *Tree) Structure(id int) (Structure, bool) {
	s, ok := t.nodes[id]
	return s, ok
}

// ByID returns the structures for ids, in the order given.
func (t *Tree) ByID(ids ...int) ([]Structure, error) {
	out := make([]Structure, 0, len(ids))
	for _, id := range ids {
		s, ok := t.nodes[id]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownStructure, "id %d", id)
		}
		out = append(out, s)
	}
	return out, nil
}

// Structures returns every structure in graph order.
func (t *Tree) Structures() []Structure {
	out := make([]Structure, len(t.order))
	for i, id := range t.order {
		out[i] = t.nodes[id]
	}
	return out
}

// Roots returns structures without a parent.
func (t *Tree) Roots() []Structure {
	out, _ := t.ByID(t.children[0]...)
	return out
}

// Children returns the direct children of id in graph order.
func (t *Tree) Children(id int) []Structure {
	out, _ := t.ByID(t.children[id]...)
	return out
}

// Ancestors returns the ancestors of id from the root down, excluding id.
func (t *Tree) Ancestors(id int) ([]Structure, error) {
	s, ok := t.nodes[id]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownStructure, "id %d", id)
	}
	if len(s.StructureIDPath) == 0 {
		return nil, nil
	}
	return t.ByID(s.StructureIDPath[:len(s.StructureIDPath)-1]...)
}

// DescendantIDs returns id and the ids of all its descendants, depth first.
func (t *Tree) DescendantIDs(id int) ([]int, error) {
	if _, ok := t.nodes[id]; !ok {
		return nil, errors.Wrapf(ErrUnknownStructure, "id %d", id)
	}
	var out []int
	var walk func(int)
	walk = func(n int) {
		out = append(out, n)
		for _, c := range t.children[n] {
			walk(c)
		}
	}
	walk(id)
	return out, nil
}
