package surface

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// ErrUnknownSurface is returned when a surface name is not registered.
var ErrUnknownSurface = errors.New("unknown surface type")

// Func maps a normalized edge distance x in [0,1] to a normalized height.
// Callers clamp x before invoking; nothing is enforced inside.
type Func func(x float64) float64

// Type names one of the fixed edge profiles.
type Type string

const (
	TypeConvex   Type = "convex"
	TypeSquircle Type = "squircle"
	TypeConcave  Type = "concave"
	TypeLip      Type = "lip"
)

// DefaultType is the profile used when none is requested.
const DefaultType = TypeSquircle

// Profile describes a registered surface.
type Profile struct {
	Type        Type
	Description string
	Height      Func
}

var profiles = map[Type]Profile{
	TypeConvex: {
		Type:        TypeConvex,
		Description: "Quarter circle rising from the border",
		Height:      Convex,
	},
	TypeSquircle: {
		Type:        TypeSquircle,
		Description: "Quartic superellipse, flat near the body",
		Height:      Squircle,
	},
	TypeConcave: {
		Type:        TypeConcave,
		Description: "Inverted bevel that dips inward",
		Height:      Concave,
	},
	TypeLip: {
		Type:        TypeLip,
		Description: "Convex rim rolling into a concave trough",
		Height:      Lip,
	},
}

// Convex is y = sqrt(1 - (1-x)^2).
func Convex(x float64) float64 {
	return math.Sqrt(1 - math.Pow(1-x, 2))
}

// Squircle is y = (1 - (1-x)^4)^(1/4).
func Squircle(x float64) float64 {
	return math.Pow(1-math.Pow(1-x, 4), 0.25)
}

// Concave is the complement of Convex.
func Concave(x float64) float64 {
	return 1 - Convex(x)
}

// Lip blends Convex into Concave with a smootherstep weight.
func Lip(x float64) float64 {
	convex := Convex(x)
	concave := 1 - convex
	t := Smootherstep(x)
	return convex*(1-t) + concave*t
}

// Smootherstep is 6x^5 - 15x^4 + 10x^3.
func Smootherstep(x float64) float64 {
	return x * x * x * (x*(x*6-15) + 10)
}

// Parse resolves a surface name, ignoring case and surrounding space.
func Parse(name string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := profiles[t]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w '%s'. Available surfaces: %v", ErrUnknownSurface, name, Names())
}

// GetProfile returns the registered profile for t.
func GetProfile(t Type) (Profile, error) {
	if p, ok := profiles[t]; ok {
		return p, nil
	}
	return Profile{}, fmt.Errorf("%w '%s'. Available surfaces: %v", ErrUnknownSurface, t, Names())
}

// Lookup returns the height function for t.
func Lookup(t Type) (Func, error) {
	p, err := GetProfile(t)
	if err != nil {
		return nil, err
	}
	return p.Height, nil
}

// Valid reports whether t names a registered profile.
func (t Type) Valid() bool {
	_, ok := profiles[t]
	return ok
}

func (t Type) String() string {
	return string(t)
}

// Names returns the registered surface names in sorted order.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for t := range profiles {
		names = append(names, string(t))
	}
	sort.Strings(names)
	return names
}

// ListProfiles returns every registered profile sorted by name.
func ListProfiles() []Profile {
	list := make([]Profile, 0, len(profiles))
	for _, name := range Names() {
		list = append(list, profiles[Type(name)])
	}
	return list
}
