package glassmap

import (
	"fmt"
	"math"

	"github.com/alde/glassmap/pkg/surface"
)

// SpecularMap is an RGBA highlight layer. Intensity is replicated into
// R, G and B with alpha at half intensity; pixels off the rim are fully
// transparent so a screen blend adds nothing there.
type SpecularMap struct {
	Pix    []uint8
	Width  int
	Height int
}

// GenerateSpecularMap computes the rim highlight for light arriving from
// lightAngle (radians, screen coordinates).
func GenerateSpecularMap(size int, bezelWidth float64, surfaceType surface.Type, lightAngle float64) (SpecularMap, error) {
	geom := Geometry{
		Size:       size,
		BezelWidth: bezelWidth,
		Surface:    surfaceType,
		LightAngle: lightAngle,
	}
	if err := geom.Validate(); err != nil {
		return SpecularMap{}, fmt.Errorf("specular map: %w", err)
	}

	fn, err := surface.Lookup(surfaceType)
	if err != nil {
		return SpecularMap{}, fmt.Errorf("specular map: %w", err)
	}

	lx := math.Cos(lightAngle)
	ly := math.Sin(lightAngle)

	pix := make([]uint8, size*size*4)
	forEachBandPixel(size, bezelWidth, func(p bandPixel) {
		// the rim of a zero-width bezel has no defined slope
		if bezelWidth == 0 {
			return
		}

		normal := surface.CalculateNormal(p.distFromBorder/bezelWidth, fn, surface.DefaultNormalDelta).Normalize()

		intensity := math.Max(0, -(normal.X*lx + normal.Y*ly))
		specular := math.Pow(intensity, 4) * 255

		v := clampByte(specular)
		pix[p.offset] = v
		pix[p.offset+1] = v
		pix[p.offset+2] = v
		pix[p.offset+3] = clampByte(specular * 0.5)
	})

	return SpecularMap{Pix: pix, Width: size, Height: size}, nil
}
