// Package ontology reads anatomical structure graphs from the Allen Institute
// RMA web service or from a cached JSON file, and indexes them as a tree.
package ontology

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Structure is one node of an anatomical ontology.
type Structure struct {
	ID      int    `json:"id"`
	Acronym string `json:"acronym"`
	Name    string `json:"name"`
	// StructureIDPath lists ancestor ids from the root down to and
	// including ID itself.
	StructureIDPath []int    `json:"structure_id_path"`
	GraphID         int      `json:"graph_id"`
	GraphOrder      int      `json:"graph_order"`
	RGBTriplet      [3]uint8 `json:"rgb_triplet"`
	StructureSetIDs []int    `json:"structure_set_ids"`
}

// ParentID returns the id of the parent structure or 0 for a root.
func (s Structure) ParentID() int {
	if len(s.StructureIDPath) < 2 {
		return 0
	}
	return s.StructureIDPath[len(s.StructureIDPath)-2]
}

// Depth is the number of ancestors of s.
func (s Structure) Depth() int {
	if len(s.StructureIDPath) == 0 {
		return 0
	}
	return len(s.StructureIDPath) - 1
}

// RawStructure is a structure record as returned by the RMA service.
type RawStructure struct {
	ID                int     `json:"id"`
	Acronym           string  `json:"acronym"`
	Name              string  `json:"name"`
	StructureIDPath   string  `json:"structure_id_path"`
	ColorHexTriplet   string  `json:"color_hex_triplet"`
	GraphID           int     `json:"graph_id"`
	GraphOrder        int     `json:"graph_order"`
	ParentStructureID *int    `json:"parent_structure_id"`
	StructureSets     []IDRef `json:"structure_sets"`
}

type IDRef struct {
	ID int `json:"id"`
}

// Clean converts raw service records into Structures. Fields that are not
// needed downstream are dropped, the id path string is split into ids and the
// hex colour is decoded.
func Clean(raws []RawStructure) ([]Structure, error) {
	out := make([]Structure, 0, len(raws))
	for _, r := range raws {
		path, err := parseIDPath(r.StructureIDPath)
		if err != nil {
			return nil, errors.Wrapf(err, "structure %d", r.ID)
		}
		if len(path) == 0 || path[len(path)-1] != r.ID {
			return nil, errors.Errorf("structure %d: id path %q does not end in its own id", r.ID, r.StructureIDPath)
		}
		rgb, err := parseHexTriplet(r.ColorHexTriplet)
		if err != nil {
			return nil, errors.Wrapf(err, "structure %d", r.ID)
		}
		s := Structure{
			ID:              r.ID,
			Acronym:         r.Acronym,
			Name:            r.Name,
			StructureIDPath: path,
			GraphID:         r.GraphID,
			GraphOrder:      r.GraphOrder,
			RGBTriplet:      rgb,
		}
		for _, set := range r.StructureSets {
			s.StructureSetIDs = append(s.StructureSetIDs, set.ID)
		}
		out = append(out, s)
	}
	return out, nil
}

// parseIDPath parses paths of the form "/997/8/567/".
func parseIDPath(p string) ([]int, error) {
	var ids []int
	for _, field := range strings.Split(strings.Trim(p, "/"), "/") {
		if field == "" {
			continue
		}
		id, err := strconv.Atoi(field)
		if err != nil {
			return nil, errors.Wrapf(err, "bad structure id path %q", p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseHexTriplet(h string) (rgb [3]uint8, err error) {
	if h == "" {
		return rgb, nil
	}
	h = strings.TrimPrefix(h, "#")
	if len(h) != 6 {
		return rgb, errors.Errorf("bad colour hex triplet %q", h)
	}
	for i := range rgb {
		v, err := strconv.ParseUint(h[2*i:2*i+2], 16, 8)
		if err != nil {
			return rgb, errors.Wrapf(err, "bad colour hex triplet %q", h)
		}
		rgb[i] = uint8(v)
	}
	return rgb, nil
}
