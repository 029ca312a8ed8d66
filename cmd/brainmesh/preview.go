package main

import (
	"github.com/spf13/cobra"

	"github.com/soypat/atlasmesh/log"
	"github.com/soypat/atlasmesh/scene"
)

var previewCmd = &cobra.Command{
	Use:   "preview OUTPUT.png",
	Short: "Renders the visible objects of a scene to a PNG image",
	Args:  cobra.ExactArgs(1),
	RunE:  runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
	addSceneFlag(previewCmd)
	def := scene.DefaultPreviewOptions()
	previewCmd.Flags().Int("width", def.Width, "image width")
	previewCmd.Flags().Int("height", def.Height, "image height")
	previewCmd.Flags().Int("supersample", def.Supersample, "render at this multiple of the size and downscale")
}

func runPreview(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("scene")
	s, err := scene.LoadFile(path)
	if err != nil {
		return err
	}
	opts := scene.DefaultPreviewOptions()
	f := cmd.Flags()
	opts.Width, _ = f.GetInt("width")
	opts.Height, _ = f.GetInt("height")
	opts.Supersample, _ = f.GetInt("supersample")
	if err := s.RenderPNG(args[0], opts); err != nil {
		return err
	}
	log.Infof("rendered %s", args[0])
	return nil
}
