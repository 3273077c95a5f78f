package glassmap

import "fmt"

// Maps bundles both layers generated for one geometry.
type Maps struct {
	Geometry     Geometry
	Displacement DisplacementMap
	Specular     SpecularMap
}

// Generate produces the displacement and specular maps for g.
func Generate(g Geometry) (Maps, error) {
	if err := g.Validate(); err != nil {
		return Maps{}, err
	}

	disp, err := GenerateDisplacementMap(g.Size, g.BezelWidth, g.GlassThickness, g.Surface)
	if err != nil {
		return Maps{}, fmt.Errorf("failed to generate displacement map: %w", err)
	}

	spec, err := GenerateSpecularMap(g.Size, g.BezelWidth, g.Surface, g.LightAngle)
	if err != nil {
		return Maps{}, fmt.Errorf("failed to generate specular map: %w", err)
	}

	return Maps{Geometry: g, Displacement: disp, Specular: spec}, nil
}
