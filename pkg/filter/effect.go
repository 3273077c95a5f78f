package filter

import (
	"fmt"
	"io"

	"github.com/alde/glassmap/pkg/encoder"
	"github.com/alde/glassmap/pkg/glassmap"
)

// Effect is everything an element needs to wear the glass effect. When
// map generation fails the effect degrades to the frosted fallback and
// Err records why.
type Effect struct {
	ID              string
	Options         Options
	MaxDisplacement float64
	Style           string
	Err             error
}

// Refractive reports whether the effect carries a filter definition.
func (e Effect) Refractive() bool {
	return e.Err == nil && e.Options.DisplacementHref != ""
}

// Render writes the filter definition, or nothing for a fallback effect.
func (e Effect) Render(w io.Writer) error {
	if !e.Refractive() {
		return nil
	}
	return Render(w, e.Options)
}

// FromGeometry generates both maps for geom, embeds them as data URLs and
// wires them into a filter definition.
func FromGeometry(geom glassmap.Geometry, blur float64, id string) Effect {
	if id == "" {
		id = NewID()
	}

	maps, err := glassmap.Generate(geom)
	if err != nil {
		return fallback(id, blur, err)
	}

	dispURL, err := encoder.DisplacementMapToDataURL(maps.Displacement.Pix, maps.Displacement.Width, maps.Displacement.Height)
	if err != nil {
		return fallback(id, blur, fmt.Errorf("displacement map: %w", err))
	}

	specURL, err := encoder.ToDataURL(maps.Specular.Pix, maps.Specular.Width, maps.Specular.Height, encoder.FormatPNG)
	if err != nil {
		return fallback(id, blur, fmt.Errorf("specular map: %w", err))
	}

	return Effect{
		ID: id,
		Options: Options{
			ID:               id,
			Size:             geom.Size,
			Blur:             blur,
			Scale:            maps.Displacement.MaxDisplacement,
			DisplacementHref: dispURL,
			SpecularHref:     specURL,
		},
		MaxDisplacement: maps.Displacement.MaxDisplacement,
		Style:           Reference(id),
	}
}

func fallback(id string, blur float64, err error) Effect {
	return Effect{
		ID:    id,
		Style: Fallback(blur),
		Err:   err,
	}
}
