// Package preview composites generated maps over a backdrop the way the
// browser filter chain would, so map sets can be judged without a browser.
package preview

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/alde/glassmap/pkg/glassmap"
)

// Options control a preview render
type Options struct {
	// Blur is the gaussian sigma applied to the backdrop before refraction.
	Blur float64

	// Scale overrides the displacement scale. Zero uses the map's max
	// displacement, matching the filter definition.
	Scale float64

	// NoSpecular skips the highlight layer.
	NoSpecular bool
}

// Render generates maps for geom and composites them over backdrop, which
// must be geom.Size pixels square.
func Render(geom glassmap.Geometry, backdrop image.Image, opts Options) (*image.NRGBA, error) {
	maps, err := glassmap.Generate(geom)
	if err != nil {
		return nil, err
	}
	return Composite(backdrop, maps, opts)
}

// Composite applies the displacement then the screen-blended specular
// layer to backdrop.
func Composite(backdrop image.Image, maps glassmap.Maps, opts Options) (*image.NRGBA, error) {
	disp := maps.Displacement
	b := backdrop.Bounds()
	if b.Dx() != disp.Width || b.Dy() != disp.Height {
		return nil, fmt.Errorf("backdrop is %dx%d, maps are %dx%d", b.Dx(), b.Dy(), disp.Width, disp.Height)
	}

	src := imaging.Clone(backdrop)
	if opts.Blur > 0 {
		src = imaging.Blur(src, opts.Blur)
	}

	scale := opts.Scale
	if scale == 0 {
		scale = disp.MaxDisplacement
	}

	out := Displace(src, disp.Pix, scale)
	if !opts.NoSpecular {
		Screen(out, maps.Specular.Pix)
	}
	return out, nil
}

// Displace samples src at P(x + scale*(R/255 - 0.5), y + scale*(G/255 - 0.5))
// for every pixel, taking the nearest texel and clamping at the edges.
func Displace(src *image.NRGBA, dispPix []uint8, scale float64) *image.NRGBA {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			dx := scale * (float64(dispPix[i])/255 - 0.5)
			dy := scale * (float64(dispPix[i+1])/255 - 0.5)

			sx := clampInt(int(math.Round(float64(x)+dx)), 0, w-1)
			sy := clampInt(int(math.Round(float64(y)+dy)), 0, h-1)

			si := sy*src.Stride + sx*4
			copy(out.Pix[y*out.Stride+x*4:y*out.Stride+x*4+4], src.Pix[si:si+4])
		}
	}
	return out
}

// Screen blends the specular layer into img in place. Each channel
// becomes 1-(1-a)(1-b), weighted by the specular alpha.
func Screen(img *image.NRGBA, specPix []uint8) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			si := (y*w + x) * 4
			alpha := float64(specPix[si+3]) / 255
			if alpha == 0 {
				continue
			}

			oi := y*img.Stride + x*4
			for c := 0; c < 3; c++ {
				base := float64(img.Pix[oi+c]) / 255
				light := float64(specPix[si+c]) / 255
				screened := 1 - (1-base)*(1-light)
				v := base*(1-alpha) + screened*alpha
				img.Pix[oi+c] = uint8(math.Round(v * 255))
			}
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
