package surface

import "math"

const (
	// DefaultNormalDelta is the central-difference step for CalculateNormal.
	DefaultNormalDelta = 0.001

	// AirIndex and GlassIndex are the default refractive indices.
	AirIndex   = 1.0
	GlassIndex = 1.5
)

// Vec2 is a 2-D vector in profile space.
type Vec2 struct {
	X, Y float64
}

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize returns v scaled to unit length. A zero vector is returned as is.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return v
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// CalculateNormal estimates the profile normal at x with a central
// difference. Both samples are clamped to [0,1] while the divisor stays
// 2*delta, so the estimate is skewed at the domain edges.
func CalculateNormal(x float64, fn Func, delta float64) Vec2 {
	y1 := fn(math.Max(0, x-delta))
	y2 := fn(math.Min(1, x+delta))
	derivative := (y2 - y1) / (2 * delta)
	return Vec2{X: -derivative, Y: 1}
}

// SnellLaw returns the refracted angle for a ray crossing from index n1
// into n2. On total internal reflection it returns pi - incidentAngle so
// the result is always finite.
func SnellLaw(incidentAngle, n1, n2 float64) float64 {
	sinTheta2 := (n1 / n2) * math.Sin(incidentAngle)
	if math.Abs(sinTheta2) > 1 {
		return math.Pi - incidentAngle
	}
	return math.Asin(sinTheta2)
}

// CalculateDisplacement returns the lateral displacement of a vertical ray
// hitting the bevel distanceFromBorder pixels in from the edge. The flat
// interior (distanceFromBorder >= bezelWidth) never displaces.
//
// The thin-lens term thickness*tan(refracted) is not capped.
func CalculateDisplacement(distanceFromBorder, bezelWidth, glassThickness float64, fn Func) float64 {
	if distanceFromBorder >= bezelWidth {
		return 0
	}

	x := distanceFromBorder / bezelWidth
	normal := CalculateNormal(x, fn, DefaultNormalDelta)

	// angle between the vertical ray and the surface normal
	incidentAngle := math.Atan2(normal.X, normal.Y)
	refractedAngle := SnellLaw(incidentAngle, AirIndex, GlassIndex)

	return glassThickness * math.Tan(refractedAngle)
}
