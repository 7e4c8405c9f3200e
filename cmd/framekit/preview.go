package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ncruces/zenity"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/framekit/internal/assetsource"
	"github.com/fpang/framekit/internal/frame"
	"github.com/fpang/framekit/internal/lambdaboot"
	"github.com/fpang/framekit/internal/photo"
	"github.com/fpang/framekit/internal/render"
)

var (
	outputFlag string
	pickFlag   bool
	assetsFlag string
	maxDimFlag int
	borderFlag float64
)

var previewCmd = &cobra.Command{
	Use:   "preview [photo]",
	Short: "Render a photo inside its best-fitting frame",
	Long: `Render a photo inside the frame template chosen for it. Templates come from
--assets when given, otherwise from the configured asset source. If the
template is missing the default frame is used and a warning is printed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().StringVarP(&outputFlag, "output", "o", "framed.png", "Output PNG path")
	previewCmd.Flags().BoolVar(&pickFlag, "pick", false, "Choose the photo with a native file dialog")
	previewCmd.Flags().StringVar(&assetsFlag, "assets", "", "Directory of frame templates (overrides the configured source)")
	previewCmd.Flags().IntVar(&maxDimFlag, "max-dim", render.DefaultMaxDimension, "Longest side of the preview in pixels")
	previewCmd.Flags().Float64Var(&borderFlag, "border", render.DefaultBorderRatio, "Frame border as a share of the shorter side")
	addSelectionFlags(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	photoPath, err := photoArg(args)
	if err != nil {
		return err
	}

	manager, err := previewManager(cmd)
	if err != nil {
		return err
	}

	f, err := os.Open(photoPath)
	if err != nil {
		return fmt.Errorf("open photo: %w", err)
	}
	defer f.Close()

	img, info, err := photo.Decode(f)
	if err != nil {
		return fmt.Errorf("%s: %w", photoPath, err)
	}

	opt := frame.GetOptimalFrameConfig(info.Dimensions, selection())
	res, err := manager.Preload(cmd.Context(), opt.AssetConfig)
	if err != nil {
		return err
	}
	if res.Degraded() {
		fmt.Fprintf(os.Stderr, "warning: %s not available, using the default frame (%v)\n", res.RequestedPath, res.Cause)
	}

	out := render.Preview(img, res.Asset.Image, render.Options{
		BorderRatio:   borderFlag,
		MaxDimension:  maxDimFlag,
		NeedsRotation: opt.NeedsRotation,
	})

	dst, err := os.Create(outputFlag)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := render.EncodePNG(dst, out); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	log.Info().
		Str("photo", photoPath).
		Str("frame", res.Path).
		Str("ratio", string(opt.AspectRatio)).
		Bool("rotated", opt.NeedsRotation).
		Str("output", outputFlag).
		Msg("Preview written")
	return nil
}

func photoArg(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if !pickFlag {
		return "", errors.New("give a photo path or use --pick")
	}
	selected, err := zenity.SelectFile(
		zenity.Title("Select a photo"),
		zenity.FileFilters{
			{
				Name:     "Photos",
				Patterns: []string{"*.jpg", "*.jpeg", "*.png", "*.gif", "*.webp"},
			},
		},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return "", errors.New("no photo selected")
		}
		return "", fmt.Errorf("file picker failed: %w", err)
	}
	return selected, nil
}

func previewManager(cmd *cobra.Command) (*frame.Manager, error) {
	if assetsFlag != "" {
		loader := assetsource.Chain(
			assetsource.NewDirSource(assetsFlag, baseDirFlag),
			assetsource.NewEmbeddedSource(baseDirFlag),
		)
		return frame.NewManager(loader, frame.WithResolver(frame.NewResolver(baseDirFlag))), nil
	}
	rt, err := lambdaboot.Init(cmd.Context(), "framekit", configFlag)
	if err != nil {
		return nil, err
	}
	return rt.Manager, nil
}
