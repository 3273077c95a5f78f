// Package filter builds the SVG filter graph that turns a displacement map
// and a specular map into the liquid-glass effect:
//
//	[feGaussianBlur] -> feImage -> feDisplacementMap -> [feImage -> feBlend screen] -> feComposite over
package filter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	g "maragu.dev/gomponents"
)

// Options describe one filter definition.
type Options struct {
	// ID is the filter element id; a random one is assigned when empty.
	ID string

	// Size is the edge of the square map images in pixels.
	Size int

	// Blur is the optional feGaussianBlur deviation applied before refraction.
	Blur float64

	// Scale is the feDisplacementMap scale, normally the map's max displacement.
	Scale float64

	DisplacementHref string
	SpecularHref     string
}

// NewID returns a fresh filter id that is safe to use in url(#...).
func NewID() string {
	return "glass-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Build renders the hidden <svg> element holding the filter definition.
func Build(opts Options) g.Node {
	if opts.ID == "" {
		opts.ID = NewID()
	}

	source := "SourceGraphic"
	if opts.Blur > 0 {
		source = "blurred"
	}

	refracted := "refracted"
	if opts.SpecularHref != "" {
		refracted = "withSpecular"
	}

	return g.El("svg",
		g.Attr("xmlns", "http://www.w3.org/2000/svg"),
		g.Attr("width", "0"),
		g.Attr("height", "0"),
		g.Attr("style", "position: absolute; pointer-events: none"),
		g.El("defs",
			g.El("filter",
				g.Attr("id", opts.ID),
				g.Attr("x", "-50%"),
				g.Attr("y", "-50%"),
				g.Attr("width", "200%"),
				g.Attr("height", "200%"),
				g.Attr("color-interpolation-filters", "sRGB"),

				g.If(opts.Blur > 0, g.El("feGaussianBlur",
					g.Attr("in", "SourceGraphic"),
					g.Attr("stdDeviation", formatFloat(opts.Blur)),
					g.Attr("result", "blurred"),
				)),

				image(opts.DisplacementHref, opts.Size, "displacementMap"),
				g.El("feDisplacementMap",
					g.Attr("in", source),
					g.Attr("in2", "displacementMap"),
					g.Attr("scale", formatFloat(opts.Scale)),
					g.Attr("xChannelSelector", "R"),
					g.Attr("yChannelSelector", "G"),
					g.Attr("result", "refracted"),
				),

				g.If(opts.SpecularHref != "", g.Group([]g.Node{
					image(opts.SpecularHref, opts.Size, "specularMap"),
					g.El("feBlend",
						g.Attr("in", "refracted"),
						g.Attr("in2", "specularMap"),
						g.Attr("mode", "screen"),
						g.Attr("result", "withSpecular"),
					),
				})),

				g.El("feComposite",
					g.Attr("in", refracted),
					g.Attr("in2", "SourceGraphic"),
					g.Attr("operator", "over"),
				),
			),
		),
	)
}

// Render writes the filter definition as markup.
func Render(w io.Writer, opts Options) error {
	if err := Build(opts).Render(w); err != nil {
		return fmt.Errorf("failed to render filter: %w", err)
	}
	return nil
}

// Reference returns the CSS declaration that applies filter id to an element.
func Reference(id string) string {
	return fmt.Sprintf("filter: url(#%s);", id)
}

// DefaultFallbackBlur is the backdrop blur radius used by Fallback when
// no positive radius is given.
const DefaultFallbackBlur = 10

// Fallback returns the CSS used when no displacement map is available:
// plain frosted translucency instead of refraction.
func Fallback(blur float64) string {
	if !(blur > 0) {
		blur = DefaultFallbackBlur
	}
	return fmt.Sprintf("backdrop-filter: blur(%spx); background: rgba(255, 255, 255, 0.5);", formatFloat(blur))
}

func image(href string, size int, result string) g.Node {
	return g.El("feImage",
		g.Attr("href", href),
		g.Attr("x", "0"),
		g.Attr("y", "0"),
		g.Attr("width", strconv.Itoa(size)),
		g.Attr("height", strconv.Itoa(size)),
		g.Attr("result", result),
	)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
