package addon

import (
	"github.com/pkg/errors"
	"github.com/soypat/atlasmesh/log"
	"github.com/soypat/atlasmesh/scene"
	"github.com/soypat/atlasmesh/treeimport"
)

// Property and operator ids.
const (
	PropSelectRecursive = "select_recursive"

	OpShowChildren   = "object.show_children"
	OpHideChildren   = "object.hide_children"
	OpSelectChildren = "object.select_children"
	OpAssignMaterial = "object.assign_material"
	OpDeleteChildren = "mesh.delete_all_children"

	PropRemesh        = "bb_remesh_when_importing"
	PropApplyRemesh   = "bb_apply_remesh"
	PropSmoothShade   = "bb_use_smooth_shade"
	PropImportParents = "bb_import_parents"
	PropOctreeDepth   = "bb_remesh_octree_depth"
	PropPixelScale    = "bb_pix_scale"
	PropTreeDepth     = "bb_tree_depth"
	PropMirror        = "bb_mirror"
	OpTreeImport      = "bb_tree_import.obj"
)

func sceneOf(ctx *Context) (*scene.Scene, bool, error) {
	if ctx.Scene == nil {
		return nil, false, errors.New("no scene")
	}
	recursive, err := ctx.Values.Bool(PropSelectRecursive)
	return ctx.Scene, recursive, err
}

// ParentChildTools returns the addon acting on the family of the active
// object.
func ParentChildTools() *Addon {
	return &Addon{
		Name:        "Parent-Child Tools",
		Description: "Parent-Child Tools",
		Category:    "Tool",
		Properties: []Property{{
			ID:          PropSelectRecursive,
			Kind:        KindBool,
			Name:        "Select recursively",
			Description: "Select the children of current object recursively",
			Default:     true,
		}},
		Operators: []Operator{
			NewOperator(OpShowChildren, "Show all children of active object", func(ctx *Context) error {
				s, rec, err := sceneOf(ctx)
				if err != nil {
					return err
				}
				return s.ShowChildren(rec)
			}),
			NewOperator(OpHideChildren, "Hide all children of active object", func(ctx *Context) error {
				s, rec, err := sceneOf(ctx)
				if err != nil {
					return err
				}
				return s.HideChildren(rec)
			}),
			NewOperator(OpSelectChildren, "Select all children of active object", func(ctx *Context) error {
				s, rec, err := sceneOf(ctx)
				if err != nil {
					return err
				}
				return s.SelectChildren(rec)
			}),
			NewOperator(OpAssignMaterial, "Assign one same material to all children", func(ctx *Context) error {
				s, rec, err := sceneOf(ctx)
				if err != nil {
					return err
				}
				mat, err := s.AssignBranchMaterial(rec)
				if err != nil {
					return err
				}
				log.Debugf("assigned material %q", mat.Name)
				return nil
			}),
			NewOperator(OpDeleteChildren, "Delete all children of active object (parent must be visible)", func(ctx *Context) error {
				s, rec, err := sceneOf(ctx)
				if err != nil {
					return err
				}
				n, err := s.DeleteChildren(rec)
				if err != nil {
					return err
				}
				log.Debugf("deleted %d children", n)
				return nil
			}),
		},
		Panels: []Panel{{
			Label:    "Parent-Child Tools",
			Location: "View3D > Tools",
			Rows: [][]Item{
				{{Operator: OpShowChildren, Text: "Show Children"}, {Operator: OpHideChildren, Text: "Hide Children"}},
				{{Operator: OpSelectChildren, Text: "Select Children"}, {Operator: OpAssignMaterial, Text: "Color branch"}},
				{{Property: PropSelectRecursive}, {Operator: OpDeleteChildren, Text: "Delete Children"}},
			},
		}},
	}
}

// TreeImport returns the addon importing mesh trees.
func TreeImport() *Addon {
	def := treeimport.DefaultOptions()
	return &Addon{
		Name:        "Tree import",
		Description: "Imports mesh files organized in a tree in batch, with option of applying a Remesh modifier",
		Category:    "Import-Export",
		Properties: []Property{
			{
				ID:          PropRemesh,
				Kind:        KindBool,
				Default:     def.Remesh,
				Name:        "Use Remesh",
				Description: "Add 'Remesh' modifier to imported meshes in smooth mode",
			},
			{
				ID:          PropApplyRemesh,
				Kind:        KindBool,
				Default:     def.FinalizeRemesh,
				Name:        "Finalize Remesh",
				Description: "Apply 'Remesh' modifier without editable preview; original meshes will be deleted",
			},
			{
				ID:          PropSmoothShade,
				Kind:        KindBool,
				Default:     def.SmoothShade,
				Name:        "Smooth Shading",
				Description: "Smooth the output faces (recommended)",
			},
			{
				ID:          PropImportParents,
				Kind:        KindBool,
				Default:     def.ImportParents,
				Name:        "Import Parents",
				Description: "Import also the parent meshes",
			},
			{
				ID:          PropOctreeDepth,
				Kind:        KindInt,
				Default:     def.OctreeDepth,
				Name:        "Remesh Resolution",
				Description: "Octree resolution: higher values result in finer details",
			},
			{
				ID:          PropPixelScale,
				Kind:        KindFloat,
				Default:     def.PixelScale,
				Name:        "Scale (microns per pixel)",
				Description: "Scale used to resize object during in import (number of microns per pixel in the image stack)",
				Min:         Minimum(1e-100),
				Precision:   4,
			},
			{
				ID:          PropTreeDepth,
				Kind:        KindInt,
				Default:     def.TreeDepth,
				Name:        "Tree depth",
				Description: "The tree maximum depth at which object are loaded",
				Min:         Minimum(-1),
			},
			{
				ID:          PropMirror,
				Kind:        KindBool,
				Default:     def.Mirror,
				Name:        "Mirror",
				Description: "Mirror imported half meshes across the Y plane through their origin",
			},
		},
		Operators: []Operator{
			NewOperator(OpTreeImport, "Import (might take several minutes)", func(ctx *Context) error {
				if ctx.Scene == nil {
					return errors.New("no scene")
				}
				opts, err := ImportOptions(ctx.Values)
				if err != nil {
					return err
				}
				objs, err := treeimport.New(ctx.Scene, opts).Import(ctx.Directory, ctx.Files)
				log.Infof("imported %d top level objects from %s", len(objs), ctx.Directory)
				return err
			}),
		},
		Panels: []Panel{{
			Label:    "Import Tree",
			Location: "Properties > Scene",
			Rows: [][]Item{
				{{Property: PropRemesh}, {Property: PropApplyRemesh}},
				{{Property: PropSmoothShade}},
				{{Property: PropOctreeDepth}},
				{{Property: PropPixelScale}},
				{{Property: PropTreeDepth}, {Property: PropImportParents}},
				{{Property: PropMirror}},
				{{Operator: OpTreeImport, Text: "Import Object(s)"}},
			},
		}},
	}
}

// ImportOptions reads tree import options from v. Options without a
// property keep their defaults and the origin follows the pixel scale.
func ImportOptions(v *Values) (opts treeimport.Options, err error) {
	opts = treeimport.DefaultOptions()
	for _, b := range []struct {
		id  string
		dst *bool
	}{
		{PropRemesh, &opts.Remesh},
		{PropApplyRemesh, &opts.FinalizeRemesh},
		{PropSmoothShade, &opts.SmoothShade},
		{PropImportParents, &opts.ImportParents},
		{PropMirror, &opts.Mirror},
	} {
		if *b.dst, err = v.Bool(b.id); err != nil {
			return opts, err
		}
	}
	if opts.OctreeDepth, err = v.Int(PropOctreeDepth); err != nil {
		return opts, err
	}
	if opts.TreeDepth, err = v.Int(PropTreeDepth); err != nil {
		return opts, err
	}
	if opts.PixelScale, err = v.Float(PropPixelScale); err != nil {
		return opts, err
	}
	opts.Origin = treeimport.DefaultOrigin(opts.PixelScale)
	return opts, nil
}

// SetImportOptions stores opts into the tree import properties of v.
func SetImportOptions(v *Values, opts treeimport.Options) error {
	for id, val := range map[string]any{
		PropRemesh:        opts.Remesh,
		PropApplyRemesh:   opts.FinalizeRemesh,
		PropSmoothShade:   opts.SmoothShade,
		PropImportParents: opts.ImportParents,
		PropOctreeDepth:   opts.OctreeDepth,
		PropPixelScale:    opts.PixelScale,
		PropTreeDepth:     opts.TreeDepth,
		PropMirror:        opts.Mirror,
	} {
		if err := v.Set(id, val); err != nil {
			return err
		}
	}
	return nil
}
