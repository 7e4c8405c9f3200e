package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fpang/framekit/internal/frame"
	"github.com/fpang/framekit/internal/photo"
)

var (
	widthFlag  int
	heightFlag int
	ratioFlag  string
)

var ratiosCmd = &cobra.Command{
	Use:   "ratios",
	Short: "List the frame template aspect ratios",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, r := range frame.Catalog() {
			fmt.Printf("%-5s %.4f\n", r.Name, r.Value)
		}
		return nil
	},
}

// matchResult is the JSON printed by match and inspect.
type matchResult struct {
	Photo       *photo.Info            `json:"photo,omitempty"`
	Orientation frame.PhotoOrientation `json:"orientation"`
	Config      frame.OptimalConfig    `json:"config"`
	Path        string                 `json:"path"`
}

func match(dims frame.PhotoDimensions, info *photo.Info) matchResult {
	opt := frame.GetOptimalFrameConfig(dims, selection())
	return matchResult{
		Photo:       info,
		Orientation: frame.DetectOrientation(dims),
		Config:      opt,
		Path:        frame.NewResolver(baseDirFlag).Path(opt.AssetConfig),
	}
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Pick the frame template for a photo size",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dims := frame.PhotoDimensions{Width: widthFlag, Height: heightFlag}
		if err := dims.Validate(); err != nil {
			return err
		}
		return printJSON(match(dims, nil))
	},
}

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the asset path of a frame template",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ratio := frame.RatioName(ratioFlag)
		if !ratio.IsValid() {
			return fmt.Errorf("unknown aspect ratio %q", ratioFlag)
		}
		sel := selection()
		fmt.Println(frame.NewResolver(baseDirFlag).Path(frame.AssetConfig{
			ColorName:    sel.ColorName,
			MaterialType: sel.MaterialType,
			Thickness:    sel.Thickness,
			AspectRatio:  ratio,
		}))
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <photo>",
	Short: "Show a photo's displayed size and its frame template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := photo.InspectFile(args[0])
		if err != nil {
			return err
		}
		return printJSON(match(info.Dimensions, &info))
	},
}

func init() {
	matchCmd.Flags().IntVar(&widthFlag, "width", 0, "Photo width in pixels")
	matchCmd.Flags().IntVar(&heightFlag, "height", 0, "Photo height in pixels")
	matchCmd.MarkFlagRequired("width")
	matchCmd.MarkFlagRequired("height")
	addSelectionFlags(matchCmd)

	pathCmd.Flags().StringVar(&ratioFlag, "ratio", string(frame.Ratio4x3), "Aspect ratio name (see 'framekit ratios')")
	addSelectionFlags(pathCmd)

	addSelectionFlags(inspectCmd)
}
