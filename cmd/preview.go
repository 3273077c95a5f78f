package cmd

import (
	"fmt"
	"image"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/alde/glassmap/pkg/encoder"
	"github.com/alde/glassmap/pkg/preview"
)

var (
	previewGeometry   geometryFlags
	previewBackdrop   string
	previewOutput     string
	previewNoSpecular bool
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Composite the maps over a backdrop image",
	Long: `Render what the glass filter does to a backdrop without a browser.

The backdrop is cropped to the map size. Without --backdrop a synthetic
test pattern is used.

Examples:
  glassmap preview --preset orb -o orb-preview.png
  glassmap preview --backdrop photo.jpg --size 400 --bezel 24 --blur 2 -o preview.png`,
	Args: cobra.NoArgs,
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewGeometry.register(previewCmd)
	previewCmd.Flags().StringVar(&previewBackdrop, "backdrop", "", "Backdrop image (default: test pattern)")
	previewCmd.Flags().StringVarP(&previewOutput, "output", "o", "", "Output image path (required)")
	previewCmd.Flags().BoolVar(&previewNoSpecular, "no-specular", false, "Skip the highlight layer")

	previewCmd.MarkFlagRequired("output")
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	geom, blur, err := previewGeometry.resolve(cmd, cfg)
	if err != nil {
		return fmt.Errorf("invalid geometry: %w", err)
	}

	if _, err := encoder.FormatFromPath(previewOutput); err != nil {
		return fmt.Errorf("output validation failed: %w", err)
	}

	var backdrop image.Image
	if previewBackdrop != "" {
		backdrop, err = preview.LoadBackdrop(previewBackdrop, geom.Size)
	} else {
		backdrop, err = preview.TestPattern(geom.Size)
	}
	if err != nil {
		return err
	}

	img, err := preview.Render(geom, backdrop, preview.Options{
		Blur:       blur,
		NoSpecular: previewNoSpecular,
	})
	if err != nil {
		return err
	}

	n, err := encoder.SaveFile(previewOutput, img.Pix, geom.Size, geom.Size)
	if err != nil {
		return err
	}

	fmt.Printf("Preview written to %s (%s)\n", previewOutput, humanize.Bytes(uint64(n)))
	if verbose {
		info, err := os.Stat(previewOutput)
		if err == nil {
			fmt.Printf("Geometry: %s, blur %.1f, modified %s\n", geom, blur, humanize.Time(info.ModTime()))
		}
	}
	return nil
}
