package cmd

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/alde/glassmap/internal/config"
	"github.com/alde/glassmap/pkg/glassmap"
	"github.com/alde/glassmap/pkg/preset"
	"github.com/alde/glassmap/pkg/surface"
)

// geometryFlags are the map parameters shared by generate, filter and preview
type geometryFlags struct {
	preset     string
	size       int
	bezel      float64
	thickness  float64
	surface    string
	lightAngle float64
	blur       float64
}

func (f *geometryFlags) register(cmd *cobra.Command) {
	d := config.Default().Defaults
	cmd.Flags().StringVarP(&f.preset, "preset", "p", "", "Start from a named preset (see 'glassmap surfaces --presets')")
	cmd.Flags().IntVarP(&f.size, "size", "s", d.Size, "Map edge in pixels")
	cmd.Flags().Float64Var(&f.bezel, "bezel", d.Bezel, "Bezel width in pixels")
	cmd.Flags().Float64Var(&f.thickness, "thickness", d.Thickness, "Glass thickness")
	cmd.Flags().StringVar(&f.surface, "surface", d.Surface, "Surface profile (convex, squircle, concave, lip)")
	cmd.Flags().Float64Var(&f.lightAngle, "light", radToDeg(d.LightAngle), "Light angle in degrees")
	cmd.Flags().Float64Var(&f.blur, "blur", d.Blur, "Backdrop blur before refraction")
}

// resolve layers config defaults, then the preset, then explicitly set flags.
func (f *geometryFlags) resolve(cmd *cobra.Command, cfg *config.Config) (glassmap.Geometry, float64, error) {
	geom, err := cfg.Geometry()
	if err != nil {
		return geom, 0, err
	}
	blur := cfg.Defaults.Blur

	if f.preset != "" {
		p, err := preset.Get(f.preset)
		if err != nil {
			return geom, 0, err
		}
		geom = p.Geometry()
		blur = p.Blur
	}

	flags := cmd.Flags()
	if flags.Changed("size") {
		geom.Size = f.size
	}
	if flags.Changed("bezel") {
		geom.BezelWidth = f.bezel
	}
	if flags.Changed("thickness") {
		geom.GlassThickness = f.thickness
	}
	if flags.Changed("surface") {
		st, err := surface.Parse(f.surface)
		if err != nil {
			return geom, 0, err
		}
		geom.Surface = st
	}
	if flags.Changed("light") {
		geom.LightAngle = degToRad(f.lightAngle)
	}
	if flags.Changed("blur") {
		blur = f.blur
	}

	if err := geom.Validate(); err != nil {
		return geom, 0, err
	}
	if blur < 0 {
		return geom, 0, fmt.Errorf("blur must not be negative, got %v", blur)
	}
	return geom, blur, nil
}

func degToRad(d float64) float64 {
	return d * math.Pi / 180
}

func radToDeg(r float64) float64 {
	return r * 180 / math.Pi
}
