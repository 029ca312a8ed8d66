package main

import (
	"os"
	"strconv"

	"github.com/iancoleman/strcase"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/soypat/atlasmesh/addon"
	"github.com/soypat/atlasmesh/scene"
)

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, len(args))
	for i, a := range args {
		id, err := strconv.Atoi(a)
		if err != nil {
			return nil, errors.Wrapf(err, "structure id %q", a)
		}
		ids[i] = id
	}
	return ids, nil
}

// flagName is the command line name of a property.
func flagName(id string) string { return strcase.ToKebab(id) }

// addPropertyFlags declares one flag per property of a.
func addPropertyFlags(f *pflag.FlagSet, a *addon.Addon) {
	for _, p := range a.Properties {
		usage := p.Name + ": " + p.Description
		switch p.Kind {
		case addon.KindBool:
			f.Bool(flagName(p.ID), p.Default.(bool), usage)
		case addon.KindInt:
			f.Int(flagName(p.ID), p.Default.(int), usage)
		case addon.KindFloat:
			f.Float64(flagName(p.ID), p.Default.(float64), usage)
		}
	}
}

// applyPropertyFlags stores every changed property flag into the registry.
func applyPropertyFlags(f *pflag.FlagSet) error {
	v := registry.Values()
	for _, p := range v.Properties() {
		fl := f.Lookup(flagName(p.ID))
		if fl == nil || !fl.Changed {
			continue
		}
		if err := v.SetString(p.ID, fl.Value.String()); err != nil {
			return errors.Wrapf(err, "flag --%s", fl.Name)
		}
	}
	return nil
}

// openScene loads the scene file at path, or returns an empty scene when it
// does not exist.
func openScene(path string) (*scene.Scene, error) {
	s, err := scene.LoadFile(path)
	if err == nil {
		return s, nil
	}
	if os.IsNotExist(errors.Cause(err)) {
		return scene.New(), nil
	}
	return nil, err
}

func addSceneFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("scene", "s", "scene.json", "scene file")
}
