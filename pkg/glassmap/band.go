package glassmap

import "math"

// bandPixel describes one pixel that falls inside the bevel band.
type bandPixel struct {
	offset         int // byte offset of the pixel's R channel
	dx, dy         float64
	distFromBorder float64
}

// forEachBandPixel walks a size x size grid and calls fn for every pixel
// whose distance from the circle's edge lies in [0, bezelWidth]. Pixels in
// the flat interior or outside the circle are skipped; the caller decides
// what they hold.
func forEachBandPixel(size int, bezelWidth float64, fn func(p bandPixel)) {
	center := float64(size) / 2
	maxRadius := float64(size) / 2

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) - center
			dy := float64(y) - center
			distFromBorder := maxRadius - math.Sqrt(dx*dx+dy*dy)

			if distFromBorder > bezelWidth || distFromBorder < 0 {
				continue
			}

			fn(bandPixel{
				offset:         (y*size + x) * 4,
				dx:             dx,
				dy:             dy,
				distFromBorder: distFromBorder,
			})
		}
	}
}

// clampByte rounds half up, like Math.round, and clamps into a byte the
// way a clamped byte array stores it. NaN stores as 0.
func clampByte(v float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	r := math.Floor(v + 0.5)
	if r < 0 {
		return 0
	}
	if r > 255 {
		return 255
	}
	return uint8(r)
}
