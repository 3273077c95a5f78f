package preview

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/gogpu/gg"
)

// LoadBackdrop opens an image file and crops it to a size x size square.
func LoadBackdrop(path string, size int) (*image.NRGBA, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open backdrop: %w", err)
	}
	return imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos), nil
}

// TestPattern draws a synthetic backdrop whose straight edges and
// saturated blobs make refraction easy to see.
func TestPattern(size int) (*image.NRGBA, error) {
	dc := gg.NewContext(size, size)
	defer dc.Close()

	dc.ClearWithColor(gg.Hex("#f4f4f5"))

	cell := float64(size) / 8
	dc.SetRGB(0.82, 0.84, 0.88)
	for row := 0; row < 8; row++ {
		for col := row % 2; col < 8; col += 2 {
			dc.DrawRectangle(float64(col)*cell, float64(row)*cell, cell, cell)
		}
	}
	if err := dc.Fill(); err != nil {
		return nil, fmt.Errorf("failed to draw checkerboard: %w", err)
	}

	blobs := []struct {
		x, y, r float64
		color   string
	}{
		{x: 0.3, y: 0.35, r: 0.18, color: "#3b82f6"},
		{x: 0.7, y: 0.6, r: 0.22, color: "#f97316"},
		{x: 0.45, y: 0.8, r: 0.1, color: "#10b981"},
	}
	s := float64(size)
	for _, b := range blobs {
		dc.SetColor(gg.Hex(b.color).Color())
		dc.DrawCircle(b.x*s, b.y*s, b.r*s)
		if err := dc.Fill(); err != nil {
			return nil, fmt.Errorf("failed to draw backdrop: %w", err)
		}
	}

	dc.SetRGB(0.1, 0.1, 0.12)
	dc.SetLineWidth(s / 64)
	dc.DrawEllipse(s/2, s/2, s*0.42, s*0.2)
	if err := dc.Stroke(); err != nil {
		return nil, fmt.Errorf("failed to draw backdrop: %w", err)
	}

	_ = dc.FlushGPU()
	return imaging.Clone(dc.Image()), nil
}
