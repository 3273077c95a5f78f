package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/alde/glassmap/pkg/encoder"
	"github.com/alde/glassmap/pkg/glassmap"
	"github.com/alde/glassmap/pkg/render"
)

var (
	generateGeometry geometryFlags
	generateOutput   string
	generateName     string
	generateFormat   string
	generateDataURL  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one displacement and specular map pair",
	Long: `Generate the displacement and specular maps for a single geometry.

Files are written as <name>-displacement.<ext> and <name>-specular.<ext>.
With --data-url both maps are printed as PNG data URLs instead.

Examples:
  glassmap generate --size 200 --bezel 12 --thickness 8 -o maps/
  glassmap generate --preset orb --format webp -o maps/
  glassmap generate --surface lip --light -90 --data-url`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateGeometry.register(generateCmd)
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", ".", "Output directory")
	generateCmd.Flags().StringVar(&generateName, "name", "", "File name prefix (default: preset name or \"glass\")")
	generateCmd.Flags().StringVarP(&generateFormat, "format", "f", "", "Image format (png, webp, bmp, tiff)")
	generateCmd.Flags().BoolVar(&generateDataURL, "data-url", false, "Print data URLs instead of writing files")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	geom, _, err := generateGeometry.resolve(cmd, cfg)
	if err != nil {
		return fmt.Errorf("invalid geometry: %w", err)
	}

	if generateDataURL {
		return printDataURLs(cmd, geom)
	}

	format, err := cfg.Format()
	if err != nil {
		return err
	}
	if generateFormat != "" {
		if format, err = encoder.ParseFormat(generateFormat); err != nil {
			return err
		}
	}

	if err := validateOutputDir(generateOutput); err != nil {
		return fmt.Errorf("output validation failed: %w", err)
	}

	name := generateName
	if name == "" {
		name = generateGeometry.preset
	}
	if name == "" {
		name = "glass"
	}

	if verbose {
		fmt.Printf("Generating %s maps for %s\n", format, geom)
	}

	r := render.New(generateOutput, format, logger)
	stats, err := r.Render(context.Background(), name, geom)
	if err != nil {
		return err
	}

	fmt.Printf("Displacement:      %s\n", stats.DisplacementPath)
	fmt.Printf("Specular:          %s\n", stats.SpecularPath)
	fmt.Printf("Max displacement:  %.4f (feDisplacementMap scale)\n", stats.MaxDisplacement)
	fmt.Printf("Written:           %s in %v\n", humanize.Bytes(stats.BytesWritten), stats.Duration.Round(time.Millisecond))
	return nil
}

func printDataURLs(cmd *cobra.Command, geom glassmap.Geometry) error {
	maps, err := glassmap.Generate(geom)
	if err != nil {
		return err
	}

	disp, err := encoder.DisplacementMapToDataURL(maps.Displacement.Pix, maps.Displacement.Width, maps.Displacement.Height)
	if err != nil {
		return err
	}
	specular, err := encoder.ToDataURL(maps.Specular.Pix, maps.Specular.Width, maps.Specular.Height, encoder.FormatPNG)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "maxDisplacement: %g\n", maps.Displacement.MaxDisplacement)
	fmt.Fprintf(out, "displacementMap: %s\n", disp)
	fmt.Fprintf(out, "specularMap: %s\n", specular)
	return nil
}

func validateOutputDir(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		// created on demand as long as the parent exists
		parent := filepath.Dir(filepath.Clean(dir))
		if _, err := os.Stat(parent); os.IsNotExist(err) {
			return fmt.Errorf("output directory does not exist: %s", parent)
		}
		return nil
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("output path is not a directory: %s", dir)
	}
	return nil
}
