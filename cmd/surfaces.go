package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/alde/glassmap/pkg/preset"
	"github.com/alde/glassmap/pkg/surface"
)

var showPresets bool

var surfacesCmd = &cobra.Command{
	Use:   "surfaces",
	Short: "List surface profiles and presets",
	Long: `List the available surface profiles with their height sampled across
the bezel, from the outer border (x=0) to the flat body (x=1).

Use --presets to list the element presets instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showPresets {
			printPresets(cmd.OutOrStdout())
			return nil
		}
		printSurfaces(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(surfacesCmd)
	surfacesCmd.Flags().BoolVar(&showPresets, "presets", false, "List presets instead of surfaces")
}

var samplePoints = []float64{0, 0.25, 0.5, 0.75, 1}

func printSurfaces(w io.Writer) {
	fmt.Fprintf(w, "%-10s", "SURFACE")
	for _, x := range samplePoints {
		fmt.Fprintf(w, "  x=%-5.2f", x)
	}
	fmt.Fprintf(w, "  DESCRIPTION\n")

	for _, p := range surface.ListProfiles() {
		fmt.Fprintf(w, "%-10s", p.Type)
		for _, x := range samplePoints {
			fmt.Fprintf(w, "  %-7.3f", p.Height(x))
		}
		fmt.Fprintf(w, "  %s\n", p.Description)
	}
}

func printPresets(w io.Writer) {
	fmt.Fprintf(w, "%-14s %-9s %-6s %-9s %-9s %-5s %s\n", "PRESET", "BOX", "BEZEL", "THICK", "SURFACE", "BLUR", "DESCRIPTION")
	for _, p := range preset.All() {
		fmt.Fprintf(w, "%-14s %-9s %-6g %-9g %-9s %-5g %s\n",
			p.Name, fmt.Sprintf("%dx%d", p.Width, p.Height), p.BezelWidth, p.GlassThickness, p.Surface, p.Blur, p.Description)
	}
}
