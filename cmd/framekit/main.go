// Command framekit is the command-line front end for frame matching: it
// picks frame templates for photos, renders framed previews, and packages
// and publishes template bundles.
package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/fpang/framekit/internal/frame"
	"github.com/fpang/framekit/internal/logging"
)

// Flags shared by several subcommands.
var (
	configFlag    string
	baseDirFlag   string
	colorFlag     string
	materialFlag  string
	thicknessFlag string
)

var rootCmd = &cobra.Command{
	Use:   "framekit",
	Short: "Match photos to frame templates and render framed previews",
	Long: `framekit picks the frame template whose aspect ratio best fits a photo,
builds template asset paths, renders framed previews, and packages
template directories into bundles.

Examples:
  framekit ratios
  framekit match --width 6000 --height 4000 --color "Dark Walnut" --material Wood --thickness Thin
  framekit inspect IMG_0042.jpg
  framekit preview IMG_0042.jpg -o framed.png --color Black --material Wood --thickness Thin
  framekit bundle ./frames -o frames.tar.zst
  framekit publish ./frames --bucket frame-assets --prefix frames/`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Path to a TOML config file")
	rootCmd.PersistentFlags().StringVar(&baseDirFlag, "base-dir", frame.DefaultBaseDir, "Base directory of frame template paths")

	rootCmd.AddCommand(ratiosCmd, matchCmd, pathCmd, inspectCmd, previewCmd, bundleCmd, publishCmd)
}

func addSelectionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&colorFlag, "color", "Black", "Frame color name")
	cmd.Flags().StringVar(&materialFlag, "material", "Wood", "Frame material")
	cmd.Flags().StringVar(&thicknessFlag, "thickness", "Thin", "Frame thickness")
}

func selection() frame.UserSelection {
	return frame.UserSelection{ColorName: colorFlag, MaterialType: materialFlag, Thickness: thicknessFlag}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
