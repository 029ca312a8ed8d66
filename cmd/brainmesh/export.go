package main

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/soypat/atlasmesh"
	"github.com/soypat/atlasmesh/config"
	"github.com/soypat/atlasmesh/export"
	"github.com/soypat/atlasmesh/internal/d3"
	"github.com/soypat/atlasmesh/log"
	"github.com/soypat/atlasmesh/nrrd"
	"github.com/soypat/atlasmesh/ontology"
)

var exportCmd = &cobra.Command{
	Use:   "export [structure ids...]",
	Short: "Exports one surface mesh per structure of an annotation volume",
	Long: `Exports one surface mesh per ontology structure into a directory tree
mirroring the structure hierarchy. Without ids every structure is exported.`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	f := exportCmd.Flags()
	f.String("annotation", "", "annotation NRRD file")
	f.String("root", "", "output directory")
	f.StringP("format", "f", "", "mesh format: obj or stl")
	f.Bool("no-cut", false, "export the whole volume instead of one hemisphere")
	f.Int("cut-size", 0, "voxels kept along the cut axis; 0 keeps half")
	f.Float64("scale", 0, "vertex coordinate scale; 0 keeps voxel units")
	f.Bool("normals", false, "write vertex normals to OBJ files")
	f.String("plot", "", "save a face count chart to this image")
	f.String("archive", "", "archive the output directory to this file")
	f.Bool("refresh", false, "download the ontology even when a cache exists")
}

func runExport(cmd *cobra.Command, args []string) error {
	ec := cfg.Export
	f := cmd.Flags()
	for name, dst := range map[string]*string{
		"annotation": &ec.Annotation,
		"root":       &ec.Root,
		"format":     &ec.Format,
		"plot":       &ec.Plot,
		"archive":    &ec.Archive,
	} {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	if f.Changed("no-cut") {
		noCut, _ := f.GetBool("no-cut")
		ec.Cut = !noCut
	}
	if f.Changed("cut-size") {
		ec.CutSize, _ = f.GetInt("cut-size")
	}
	if f.Changed("scale") {
		ec.Scale, _ = f.GetFloat64("scale")
	}
	if f.Changed("normals") {
		ec.Normals, _ = f.GetBool("normals")
	}
	refresh, _ := f.GetBool("refresh")

	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	format, err := export.ParseFormat(ec.Format)
	if err != nil {
		return err
	}
	structures, err := loadStructures(cmd.Context(), cfg.Ontology, refresh)
	if err != nil {
		return err
	}
	tree, err := ontology.NewTree(structures)
	if err != nil {
		return err
	}

	labels, hdr, err := nrrd.ReadFile(ec.Annotation)
	if err != nil {
		return err
	}
	res := annotationResolution(hdr, ec.Resolution)
	space, err := atlasmesh.NewReferenceSpace(tree, atlasmesh.Reorient(labels), res)
	if err != nil {
		return err
	}
	log.Infof("annotation %v at %v microns, %d structures", space.Annotation.Shape, res, tree.Len())

	exp := export.NewExporter(space, ec.Root)
	exp.Format = format
	exp.Normals = ec.Normals
	if ec.Cut {
		exp.Cut = &export.Cut{Axis: ec.CutAxis, Size: ec.CutSize}
	} else {
		exp.Cut = nil
	}
	if ec.Scale > 0 {
		exp.Step = d3.Elem(ec.Scale)
	}
	summary, err := exp.ExportAll(ids...)
	if err != nil {
		return err
	}
	if ec.Plot != "" {
		if err := summary.Plot(ec.Plot, ec.PlotTop); err != nil {
			return err
		}
	}
	if ec.Archive != "" {
		if err := export.Archive(ec.Root, ec.Archive); err != nil {
			return err
		}
		log.Infof("archived %s to %s", ec.Root, ec.Archive)
	}
	return nil
}

// annotationResolution returns the voxel size of the reoriented annotation.
// The header spacing wins over fallback.
func annotationResolution(hdr *nrrd.Header, fallback float64) r3.Vec {
	res := d3.Elem(fallback)
	if len(hdr.SpaceDirections) > 0 {
		res = hdr.Resolution()
	}
	// Reorient swaps the last two axes.
	res.Y, res.Z = res.Z, res.Y
	return res
}

// loadStructures reads the ontology cache or downloads and caches it.
func loadStructures(ctx context.Context, oc config.Ontology, refresh bool) ([]ontology.Structure, error) {
	if oc.Cache != "" && !refresh {
		structures, err := ontology.ReadFile(oc.Cache)
		if err == nil {
			log.Debugf("read %d structures from %s", len(structures), oc.Cache)
			return structures, nil
		}
		if !os.IsNotExist(errors.Cause(err)) {
			return nil, err
		}
	}
	client := ontology.NewClient()
	client.BaseURL = oc.BaseURL
	structures, err := client.StructuresWithSets(ctx, oc.GraphID)
	if err != nil {
		return nil, err
	}
	log.Infof("downloaded %d structures", len(structures))
	if oc.Cache != "" {
		if err := ontology.WriteFile(oc.Cache, structures); err != nil {
			return nil, err
		}
	}
	return structures, nil
}
