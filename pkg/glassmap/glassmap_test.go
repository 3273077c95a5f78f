package glassmap

import (
	"errors"
	"math"
	"testing"

	"github.com/alde/glassmap/pkg/surface"
)

// distFromBorder mirrors the generator's per-pixel geometry.
func distFromBorder(size, x, y int) float64 {
	c := float64(size) / 2
	dx := float64(x) - c
	dy := float64(y) - c
	return c - math.Sqrt(dx*dx+dy*dy)
}

func pixelAt(pix []uint8, size, x, y int) [4]uint8 {
	i := (y*size + x) * 4
	return [4]uint8{pix[i], pix[i+1], pix[i+2], pix[i+3]}
}

func TestGenerateDisplacementMapSquircle(t *testing.T) {
	const size, bezel = 64, 8.0

	m, err := GenerateDisplacementMap(size, bezel, 4, surface.TypeSquircle)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(m.Pix) != size*size*4 {
		t.Fatalf("Expected buffer length %d, got %d", size*size*4, len(m.Pix))
	}
	if m.Width != size || m.Height != size {
		t.Errorf("Expected %dx%d, got %dx%d", size, size, m.Width, m.Height)
	}
	if m.MaxDisplacement <= 0 {
		t.Errorf("Expected positive max displacement, got %v", m.MaxDisplacement)
	}

	neutral := [4]uint8{128, 128, 128, 255}
	banded := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := distFromBorder(size, x, y)
			px := pixelAt(m.Pix, size, x, y)
			if d > bezel || d < 0 {
				if px != neutral {
					t.Fatalf("Pixel (%d,%d) outside the bevel = %v, expected %v", x, y, px, neutral)
				}
				continue
			}
			banded++
			if px[2] != 128 || px[3] != 255 {
				t.Errorf("Bevel pixel (%d,%d) should keep B=128 A=255, got %v", x, y, px)
			}
		}
	}
	if banded == 0 {
		t.Error("Expected some pixels inside the bevel band")
	}
}

func TestGenerateDisplacementMapRadialDirection(t *testing.T) {
	const size = 64
	m, err := GenerateDisplacementMap(size, 8, 4, surface.TypeConvex)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// on the horizontal axis the displacement has no Y component
	for _, x := range []int{1, 2, 3, 61, 62, 63} {
		px := pixelAt(m.Pix, size, x, size/2)
		if px[1] != 128 {
			t.Errorf("Pixel (%d,%d) should have G=128, got %d", x, size/2, px[1])
		}
	}

	// on the vertical axis it has no X component
	for _, y := range []int{1, 2, 3, 61, 62, 63} {
		px := pixelAt(m.Pix, size, size/2, y)
		if px[0] != 128 {
			t.Errorf("Pixel (%d,%d) should have R=128, got %d", size/2, y, px[0])
		}
	}

	// a convex rim pulls toward the center on the right-hand side
	right := pixelAt(m.Pix, size, 62, size/2)
	if right[0] >= 128 {
		t.Errorf("Expected R < 128 on the right rim of a convex bevel, got %d", right[0])
	}
}

func TestGenerateDisplacementMapPointSymmetry(t *testing.T) {
	for _, st := range []surface.Type{surface.TypeConvex, surface.TypeSquircle, surface.TypeConcave, surface.TypeLip} {
		t.Run(st.String(), func(t *testing.T) {
			const size = 48
			m, err := GenerateDisplacementMap(size, 10, 6, st)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			// (x,y) and (size-x, size-y) sit opposite each other about the center
			for y := 1; y < size; y++ {
				for x := 1; x < size; x++ {
					a := pixelAt(m.Pix, size, x, y)
					b := pixelAt(m.Pix, size, size-x, size-y)
					ax, ay := int(a[0])-128, int(a[1])-128
					bx, by := int(b[0])-128, int(b[1])-128
					if abs(ax+bx) > 1 || abs(ay+by) > 1 {
						t.Fatalf("Pixels (%d,%d)=%v and (%d,%d)=%v are not point-symmetric",
							x, y, a, size-x, size-y, b)
					}
				}
			}
		})
	}
}

func TestGenerateDisplacementMapZeroBezel(t *testing.T) {
	const size = 32
	m, err := GenerateDisplacementMap(size, 0, 8, surface.TypeConvex)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if m.MaxDisplacement != 0 {
		t.Errorf("Expected max displacement 0, got %v", m.MaxDisplacement)
	}
	for i := 0; i < len(m.Pix); i += 4 {
		if m.Pix[i] != 128 || m.Pix[i+1] != 128 || m.Pix[i+2] != 128 || m.Pix[i+3] != 255 {
			t.Fatalf("Expected every pixel neutral, got %v at offset %d", m.Pix[i:i+4], i)
		}
	}

	s, err := GenerateSpecularMap(size, 0, surface.TypeConvex, DefaultLightAngle)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for i, v := range s.Pix {
		if v != 0 {
			t.Fatalf("Expected empty specular map, got %d at offset %d", v, i)
		}
	}
}

func TestGenerateSpecularMap(t *testing.T) {
	const size, bezel = 64, 8.0

	m, err := GenerateSpecularMap(size, bezel, surface.TypeSquircle, DefaultLightAngle)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(m.Pix) != size*size*4 {
		t.Fatalf("Expected buffer length %d, got %d", size*size*4, len(m.Pix))
	}

	lit := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := distFromBorder(size, x, y)
			px := pixelAt(m.Pix, size, x, y)
			if d > bezel || d < 0 {
				if px != [4]uint8{} {
					t.Fatalf("Pixel (%d,%d) outside the bevel = %v, expected transparent", x, y, px)
				}
				continue
			}
			if px[0] != px[1] || px[1] != px[2] {
				t.Errorf("Pixel (%d,%d) should be grey, got %v", x, y, px)
			}
			if want := clampByte(float64(px[0]) * 0.5); px[3] > want+1 || px[3]+1 < want {
				t.Errorf("Pixel (%d,%d) alpha %d should be about half of %d", x, y, px[3], px[0])
			}
			if px[0] > 0 {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("Expected a highlight somewhere on the rim")
	}
}

func TestGenerateSpecularMapLightAngle(t *testing.T) {
	// a light pointing straight into the surface lights the flat part of
	// the bevel hardest
	m, err := GenerateSpecularMap(64, 8, surface.TypeConvex, -math.Pi/2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	inner := pixelAt(m.Pix, 64, 32+23, 32) // 9px in from the border is past the bezel
	if inner != [4]uint8{} {
		t.Errorf("Expected transparent interior, got %v", inner)
	}
	nearFlat := pixelAt(m.Pix, 64, 32+24, 32) // exactly bezel-width in
	if nearFlat[0] != 255 {
		t.Errorf("Expected full highlight where the bevel meets the flat top, got %v", nearFlat)
	}
}

func TestGenerateRejectsMalformedGeometry(t *testing.T) {
	tests := []struct {
		name    string
		geom    Geometry
		wantErr error
	}{
		{name: "zero size", geom: Geometry{Size: 0, BezelWidth: 4, Surface: surface.TypeConvex}, wantErr: ErrInvalidSize},
		{name: "negative size", geom: Geometry{Size: -5, BezelWidth: 4, Surface: surface.TypeConvex}, wantErr: ErrInvalidSize},
		{name: "too large", geom: Geometry{Size: MaxSize + 1, BezelWidth: 4, Surface: surface.TypeConvex}, wantErr: ErrInvalidSize},
		{name: "negative bezel", geom: Geometry{Size: 16, BezelWidth: -1, Surface: surface.TypeConvex}, wantErr: ErrInvalidBezel},
		{name: "NaN bezel", geom: Geometry{Size: 16, BezelWidth: math.NaN(), Surface: surface.TypeConvex}, wantErr: ErrInvalidBezel},
		{name: "infinite thickness", geom: Geometry{Size: 16, BezelWidth: 4, GlassThickness: math.Inf(1), Surface: surface.TypeConvex}, wantErr: ErrInvalidParameter},
		{name: "NaN light", geom: Geometry{Size: 16, BezelWidth: 4, Surface: surface.TypeConvex, LightAngle: math.NaN()}, wantErr: ErrInvalidParameter},
		{name: "unknown surface", geom: Geometry{Size: 16, BezelWidth: 4, Surface: "bumpy"}, wantErr: surface.ErrUnknownSurface},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Generate(test.geom)
			if !errors.Is(err, test.wantErr) {
				t.Errorf("Expected %v, got %v", test.wantErr, err)
			}
		})
	}

	if _, err := GenerateDisplacementMap(0, 4, 4, surface.TypeConvex); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Expected ErrInvalidSize from GenerateDisplacementMap, got %v", err)
	}
	if _, err := GenerateSpecularMap(16, 4, "bumpy", 0); !errors.Is(err, surface.ErrUnknownSurface) {
		t.Errorf("Expected ErrUnknownSurface from GenerateSpecularMap, got %v", err)
	}
}

func TestGenerateBothMaps(t *testing.T) {
	g := DefaultGeometry()
	g.Size = 100

	maps, err := Generate(g)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if maps.Displacement.Width != 100 || maps.Specular.Width != 100 {
		t.Errorf("Expected both maps to be 100 wide, got %d and %d",
			maps.Displacement.Width, maps.Specular.Width)
	}
	if maps.Geometry != g {
		t.Errorf("Expected geometry %v, got %v", g, maps.Geometry)
	}
}

func TestClampByte(t *testing.T) {
	tests := []struct {
		in       float64
		expected uint8
	}{
		{0, 0},
		{127.5, 128},
		{127.49, 127},
		{-3, 0},
		{254.6, 255},
		{300, 255},
		{math.NaN(), 0},
	}

	for _, test := range tests {
		if got := clampByte(test.in); got != test.expected {
			t.Errorf("clampByte(%v) = %d, expected %d", test.in, got, test.expected)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
