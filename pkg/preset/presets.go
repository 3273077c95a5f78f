package preset

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alde/glassmap/pkg/glassmap"
	"github.com/alde/glassmap/pkg/surface"
)

// Preset is a named element shape with the glass parameters that suit it.
type Preset struct {
	Name        string
	Description string

	// Element box in CSS pixels. The generated maps are square with an
	// edge of max(Width, Height).
	Width  int
	Height int

	BezelWidth     float64
	GlassThickness float64
	Surface        surface.Type

	// Blur is the backdrop blur applied before refraction, 0 for none.
	Blur float64

	// Opacity of the white tint used by the frosted fallback.
	Opacity float64
}

var presets = map[string]Preset{
	"card": {
		Name:           "card",
		Description:    "Default glass card",
		Width:          200,
		Height:         60,
		BezelWidth:     12,
		GlassThickness: 8,
		Surface:        surface.TypeSquircle,
		Opacity:        0.5,
	},
	"button-sm": {
		Name:           "button-sm",
		Description:    "Small pill button",
		Width:          80,
		Height:         28,
		BezelWidth:     6,
		GlassThickness: 4,
		Surface:        surface.TypeSquircle,
		Opacity:        0.7,
	},
	"button-md": {
		Name:           "button-md",
		Description:    "Medium pill button",
		Width:          100,
		Height:         36,
		BezelWidth:     8,
		GlassThickness: 6,
		Surface:        surface.TypeSquircle,
		Opacity:        0.7,
	},
	"button-lg": {
		Name:           "button-lg",
		Description:    "Large pill button",
		Width:          140,
		Height:         48,
		BezelWidth:     10,
		GlassThickness: 8,
		Surface:        surface.TypeSquircle,
		Opacity:        0.7,
	},
	"panel-low": {
		Name:           "panel-low",
		Description:    "Large panel, light frosting",
		Width:          400,
		Height:         300,
		BezelWidth:     16,
		GlassThickness: 10,
		Surface:        surface.TypeSquircle,
		Blur:           10,
		Opacity:        0.3,
	},
	"panel-medium": {
		Name:           "panel-medium",
		Description:    "Large panel, medium frosting",
		Width:          400,
		Height:         300,
		BezelWidth:     16,
		GlassThickness: 10,
		Surface:        surface.TypeSquircle,
		Blur:           20,
		Opacity:        0.5,
	},
	"panel-high": {
		Name:           "panel-high",
		Description:    "Large panel, heavy frosting",
		Width:          400,
		Height:         300,
		BezelWidth:     16,
		GlassThickness: 10,
		Surface:        surface.TypeSquircle,
		Blur:           30,
		Opacity:        0.7,
	},
	"orb": {
		Name:           "orb",
		Description:    "Round lens with a deep convex bezel",
		Width:          120,
		Height:         120,
		BezelWidth:     30,
		GlassThickness: 16,
		Surface:        surface.TypeConvex,
		Opacity:        0.2,
	},
}

// Get returns a preset by name
func Get(name string) (Preset, error) {
	normalizedName := strings.ToLower(strings.TrimSpace(name))

	if p, exists := presets[normalizedName]; exists {
		return p, nil
	}

	return Preset{}, fmt.Errorf("unknown preset '%s'. Available presets: %v", name, List())
}

// List returns the sorted preset names
func List() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every preset ordered by name
func All() []Preset {
	names := List()
	out := make([]Preset, 0, len(names))
	for _, name := range names {
		out = append(out, presets[name])
	}
	return out
}

// Size is the edge of the square maps generated for the preset.
func (p Preset) Size() int {
	if p.Width > p.Height {
		return p.Width
	}
	return p.Height
}

// Geometry converts the preset into map generation parameters.
func (p Preset) Geometry() glassmap.Geometry {
	return glassmap.Geometry{
		Size:           p.Size(),
		BezelWidth:     p.BezelWidth,
		GlassThickness: p.GlassThickness,
		Surface:        p.Surface,
		LightAngle:     glassmap.DefaultLightAngle,
	}
}
