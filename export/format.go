package export

import (
	"strings"

	"github.com/pkg/errors"
)

// Format is a mesh file format.
type Format int

const (
	FormatOBJ Format = iota
	FormatSTL
)

// Ext returns the file extension of f including the dot.
func (f Format) Ext() string {
	switch f {
	case FormatOBJ:
		return ".obj"
	case FormatSTL:
		return ".stl"
	}
	return ""
}

func (f Format) String() string { return strings.TrimPrefix(f.Ext(), ".") }

// ParseFormat parses "obj" or "stl", with or without a leading dot.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "obj":
		return FormatOBJ, nil
	case "stl":
		return FormatSTL, nil
	}
	return 0, errors.Errorf("unknown mesh format %q", s)
}
