package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/soypat/atlasmesh/addon"
)

var toolsCmd = &cobra.Command{
	Use:   "tools OPERATOR",
	Short: "Runs a parent-child operator on the active object of a scene",
	Long: `Runs a parent-child operator such as object.hide_children on the scene file.
The active object is chosen with --active or kept from the scene.`,
	Args: cobra.ExactArgs(1),
	RunE: runTools,
}

func init() {
	rootCmd.AddCommand(toolsCmd)
	addSceneFlag(toolsCmd)
	toolsCmd.Flags().StringP("active", "a", "", "name of the object to make active")
	addPropertyFlags(toolsCmd.Flags(), addon.ParentChildTools())
}

func runTools(cmd *cobra.Command, args []string) error {
	if err := applyPropertyFlags(cmd.Flags()); err != nil {
		return err
	}
	path, _ := cmd.Flags().GetString("scene")
	s, err := openScene(path)
	if err != nil {
		return err
	}
	if name, _ := cmd.Flags().GetString("active"); name != "" {
		obj := s.ByName(name)
		if obj == nil {
			return errors.Errorf("no object named %q in %s", name, path)
		}
		s.SetActive(obj)
	}
	if err := registry.Invoke(args[0], &addon.Context{Scene: s}); err != nil {
		return err
	}
	return s.SaveFile(path)
}
