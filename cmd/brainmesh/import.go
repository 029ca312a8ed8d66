package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/soypat/atlasmesh/addon"
	"github.com/soypat/atlasmesh/log"
	"github.com/soypat/atlasmesh/treeimport"
)

var importCmd = &cobra.Command{
	Use:   "import DIR [FILES...]",
	Short: "Imports a tree of mesh files into a scene",
	Long: `Imports mesh files of DIR into the scene file. A file "Name (acr).obj" is the
parent of the meshes found in DIR/acr, down to the tree depth. Without FILES
every mesh file of DIR is imported.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	addSceneFlag(importCmd)
	addPropertyFlags(importCmd.Flags(), addon.TreeImport())
}

func runImport(cmd *cobra.Command, args []string) error {
	if err := addon.SetImportOptions(registry.Values(), cfg.Import.Options()); err != nil {
		return err
	}
	if err := applyPropertyFlags(cmd.Flags()); err != nil {
		return err
	}
	dir, files := args[0], args[1:]
	if len(files) == 0 {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if !e.IsDir() && treeimport.IsMeshFile(e.Name()) {
				files = append(files, e.Name())
			}
		}
	}

	path, _ := cmd.Flags().GetString("scene")
	s, err := openScene(path)
	if err != nil {
		return err
	}
	before := s.Len()
	err = registry.Invoke(addon.OpTreeImport, &addon.Context{Scene: s, Directory: dir, Files: files})
	if err != nil {
		return err
	}
	log.Infof("scene %s: %d objects added", path, s.Len()-before)
	return s.SaveFile(path)
}
