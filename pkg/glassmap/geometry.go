// Package glassmap generates the displacement and specular maps behind
// the liquid-glass refraction effect.
//
// Both maps treat the square canvas as a circular medallion of radius
// size/2. Pixels inside the bevel band (within BezelWidth of the circle's
// edge) carry refraction and highlight data; everything else is neutral.
package glassmap

import (
	"errors"
	"fmt"
	"math"

	"github.com/alde/glassmap/pkg/surface"
)

// MaxSize bounds the canvas edge so a single call cannot allocate
// unbounded memory.
const MaxSize = 8192

// DefaultLightAngle is -60 degrees, light coming from the upper right.
const DefaultLightAngle = -math.Pi / 3

var (
	ErrInvalidSize      = errors.New("invalid map size")
	ErrInvalidBezel     = errors.New("invalid bezel width")
	ErrInvalidParameter = errors.New("invalid glass parameter")
)

// Geometry holds the parameters of one generation call.
type Geometry struct {
	Size           int
	BezelWidth     float64
	GlassThickness float64
	Surface        surface.Type
	LightAngle     float64
}

// DefaultGeometry returns the parameters used by a plain glass card.
func DefaultGeometry() Geometry {
	return Geometry{
		Size:           200,
		BezelWidth:     12,
		GlassThickness: 8,
		Surface:        surface.DefaultType,
		LightAngle:     DefaultLightAngle,
	}
}

// Validate reports the first malformed parameter.
func (g Geometry) Validate() error {
	if g.Size <= 0 || g.Size > MaxSize {
		return fmt.Errorf("%w: %d (must be between 1 and %d)", ErrInvalidSize, g.Size, MaxSize)
	}
	if g.BezelWidth < 0 || !finite(g.BezelWidth) {
		return fmt.Errorf("%w: %v", ErrInvalidBezel, g.BezelWidth)
	}
	if !finite(g.GlassThickness) {
		return fmt.Errorf("%w: glass thickness %v", ErrInvalidParameter, g.GlassThickness)
	}
	if !finite(g.LightAngle) {
		return fmt.Errorf("%w: light angle %v", ErrInvalidParameter, g.LightAngle)
	}
	if !g.Surface.Valid() {
		_, err := surface.GetProfile(g.Surface)
		return err
	}
	return nil
}

// String renders the geometry compactly, e.g. for cache keys and logs.
func (g Geometry) String() string {
	return fmt.Sprintf("%s/%d/bezel=%g/thickness=%g/light=%g",
		g.Surface, g.Size, g.BezelWidth, g.GlassThickness, g.LightAngle)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
