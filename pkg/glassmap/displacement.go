package glassmap

import (
	"fmt"
	"math"

	"github.com/alde/glassmap/pkg/surface"
)

// Neutral is the channel value that encodes zero displacement.
const Neutral = 128

// DisplacementMap is an RGBA buffer for an feDisplacementMap primitive.
// R and G carry the X and Y displacement around Neutral; B is Neutral and
// A is opaque everywhere.
type DisplacementMap struct {
	Pix             []uint8
	MaxDisplacement float64
	Width           int
	Height          int
}

// GenerateDisplacementMap computes the refraction map for a circular
// glass medallion inscribed in a size x size canvas.
func GenerateDisplacementMap(size int, bezelWidth, glassThickness float64, surfaceType surface.Type) (DisplacementMap, error) {
	geom := Geometry{
		Size:           size,
		BezelWidth:     bezelWidth,
		GlassThickness: glassThickness,
		Surface:        surfaceType,
		LightAngle:     DefaultLightAngle,
	}
	if err := geom.Validate(); err != nil {
		return DisplacementMap{}, fmt.Errorf("displacement map: %w", err)
	}

	fn, err := surface.Lookup(surfaceType)
	if err != nil {
		return DisplacementMap{}, fmt.Errorf("displacement map: %w", err)
	}

	magnitudes := displacementTable(size, bezelWidth, glassThickness, fn)

	maxDisplacement := 0.0
	for _, m := range magnitudes {
		maxDisplacement = math.Max(maxDisplacement, math.Abs(m))
	}

	pix := make([]uint8, size*size*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i] = Neutral
		pix[i+1] = Neutral
		pix[i+2] = Neutral
		pix[i+3] = 255
	}

	samples := float64(size)
	forEachBandPixel(size, bezelWidth, func(p bandPixel) {
		// a zero-width bezel leaves only the rim itself, where the
		// position inside the bevel is undefined
		normalizedDist := 0.0
		if bezelWidth > 0 {
			normalizedDist = math.Max(0, math.Min(1, p.distFromBorder/bezelWidth))
		}
		displacement := magnitudes[int(math.Floor(normalizedDist*samples))]

		normalized := 0.0
		if maxDisplacement > 0 {
			normalized = displacement / maxDisplacement
		}

		// radial direction, from the center through the pixel
		angle := math.Atan2(p.dy, p.dx)
		dispX := math.Cos(angle) * normalized
		dispY := math.Sin(angle) * normalized

		pix[p.offset] = clampByte(Neutral + dispX*127)
		pix[p.offset+1] = clampByte(Neutral + dispY*127)
		pix[p.offset+2] = Neutral
		pix[p.offset+3] = 255
	})

	return DisplacementMap{
		Pix:             pix,
		MaxDisplacement: maxDisplacement,
		Width:           size,
		Height:          size,
	}, nil
}

// displacementTable samples the displacement magnitude at samples+1 evenly
// spaced distances across [0, bezelWidth].
func displacementTable(samples int, bezelWidth, glassThickness float64, fn surface.Func) []float64 {
	table := make([]float64, samples+1)
	for i := range table {
		distFromBorder := float64(i) / float64(samples) * bezelWidth
		table[i] = surface.CalculateDisplacement(distFromBorder, bezelWidth, glassThickness, fn)
	}
	return table
}
