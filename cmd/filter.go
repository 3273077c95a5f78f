package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/alde/glassmap/pkg/filter"
)

var (
	filterGeometry geometryFlags
	filterID       string
	filterOutput   string
	filterCSS      bool
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Print the SVG filter definition for a geometry",
	Long: `Generate both maps, embed them as data URLs and print the SVG filter
that refracts an element's backdrop through them.

Examples:
  glassmap filter --preset card > card-filter.svg
  glassmap filter --size 120 --bezel 30 --surface convex --id lens --css
  glassmap filter --preset panel-medium -o panel.svg`,
	Args: cobra.NoArgs,
	RunE: runFilter,
}

func init() {
	rootCmd.AddCommand(filterCmd)

	filterGeometry.register(filterCmd)
	filterCmd.Flags().StringVar(&filterID, "id", "", "Filter element id (default: random)")
	filterCmd.Flags().StringVarP(&filterOutput, "output", "o", "", "Write to file instead of stdout")
	filterCmd.Flags().BoolVar(&filterCSS, "css", false, "Also print the CSS declaration that applies the filter")
}

func runFilter(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	geom, blur, err := filterGeometry.resolve(cmd, cfg)
	if err != nil {
		return fmt.Errorf("invalid geometry: %w", err)
	}

	effect := filter.FromGeometry(geom, blur, filterID)
	if effect.Err != nil {
		logger.Warn("falling back to frosted glass", "error", effect.Err)
		fmt.Fprintln(cmd.OutOrStdout(), effect.Style)
		return effect.Err
	}

	if filterOutput != "" {
		if err := writeFilterFile(filterOutput, effect); err != nil {
			return err
		}
	} else if err := writeFilter(cmd.OutOrStdout(), effect); err != nil {
		return err
	}

	if filterCSS {
		fmt.Fprintln(cmd.OutOrStdout(), effect.Style)
	}

	logger.Debug("filter generated",
		"id", effect.ID,
		"geometry", geom.String(),
		"scale", effect.MaxDisplacement,
	)
	return nil
}

func writeFilter(w io.Writer, effect filter.Effect) error {
	if err := effect.Render(w); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

// writeFilterFile writes the filter markup to path. Close errors are
// returned.
func writeFilterFile(path string, effect filter.Effect) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := writeFilter(f, effect); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
