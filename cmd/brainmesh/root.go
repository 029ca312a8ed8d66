package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/soypat/atlasmesh/addon"
	"github.com/soypat/atlasmesh/config"
	"github.com/soypat/atlasmesh/log"
)

var (
	cfg      *config.Config
	registry = addon.NewRegistry()
)

// rootCmd is the base command when called without sub commands.
var rootCmd = &cobra.Command{
	Use:   "brainmesh",
	Short: "Atlas structure surface export and mesh tree tools.",
	Long: `brainmesh extracts one surface mesh per atlas structure from an annotation
volume, writes them in a directory tree that follows the structure ontology and
imports such trees back into a scene with parent-child tools.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file; by default brainmesh.{yaml,toml,json} is searched in . and configs")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warning, error, critical")

	for _, a := range []*addon.Addon{addon.ParentChildTools(), addon.TreeImport()} {
		if err := registry.Register(a); err != nil {
			panic(err)
		}
	}
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	log.Default()
	if err := rootCmd.Execute(); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command, args []string) (err error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		cfg, err = config.ReadFile(path)
	} else {
		cfg, err = config.Read("brainmesh")
	}
	if err != nil {
		return err
	}
	level := cfg.Log.Level
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		level = lvl
	}
	if err := log.SetLevel(log.ParseLevel(level)); err != nil {
		return errors.Wrapf(err, "log level %q", level)
	}
	return nil
}
