package encoder

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"golang.org/x/image/bmp"
)

var (
	// ErrBufferSize means a buffer does not hold width*height RGBA pixels.
	ErrBufferSize = errors.New("buffer does not match image dimensions")

	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// Format is an output image encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

var formats = []Format{FormatPNG, FormatWebP, FormatBMP, FormatTIFF}

// ParseFormat resolves a format name or file extension.
func ParseFormat(name string) (Format, error) {
	n := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "."))
	switch n {
	case "png":
		return FormatPNG, nil
	case "webp":
		return FormatWebP, nil
	case "bmp":
		return FormatBMP, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	}
	return "", fmt.Errorf("%w: %s (valid options: %s)", ErrUnsupportedFormat, name, strings.Join(FormatNames(), ", "))
}

// FormatNames lists the supported formats.
func FormatNames() []string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return names
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// MediaType returns the MIME type of the encoding.
func (f Format) MediaType() string {
	switch f {
	case FormatWebP:
		return "image/webp"
	case FormatBMP:
		return "image/bmp"
	case FormatTIFF:
		return "image/tiff"
	default:
		return "image/png"
	}
}

// NewSurface copies an RGBA buffer onto a non-premultiplied image so the
// channel bytes are written out exactly as generated.
func NewSurface(buf []uint8, width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("could not create %dx%d surface: %w", width, height, ErrBufferSize)
	}
	if len(buf) != width*height*4 {
		return nil, fmt.Errorf("%w: got %d bytes for %dx%d", ErrBufferSize, len(buf), width, height)
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	copy(img.Pix, buf)
	return img, nil
}

// Encode writes an RGBA buffer in the requested format.
func Encode(w io.Writer, buf []uint8, width, height int, format Format) error {
	img, err := NewSurface(buf, width, height)
	if err != nil {
		return err
	}
	return EncodeImage(w, img, format)
}

// EncodeImage writes any image in the requested format.
func EncodeImage(w io.Writer, img image.Image, format Format) error {
	switch format {
	case FormatPNG:
		encoder := &png.Encoder{
			CompressionLevel: png.BestCompression, // maps are tiny and mostly flat
		}
		return encoder.Encode(w, img)

	case FormatWebP:
		// lossy WebP would shift the neutral 128 midpoint
		return webp.Encode(w, img, &webp.Options{Lossless: true})

	case FormatBMP:
		return bmp.Encode(w, img)

	case FormatTIFF:
		return imaging.Encode(w, img, imaging.TIFF)

	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// EncodeBytes returns the encoded image as a byte slice.
func EncodeBytes(buf []uint8, width, height int, format Format) ([]byte, error) {
	var out bytes.Buffer
	if err := Encode(&out, buf, width, height, format); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnsupportedFormat, filepath.Base(path))
	}
	return ParseFormat(ext)
}

// SaveFile encodes the buffer to path and returns the number of bytes
// written. The format is taken from the path's extension.
func SaveFile(path string, buf []uint8, width, height int) (int64, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return 0, err
	}

	data, err := EncodeBytes(buf, width, height, format)
	if err != nil {
		return 0, fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}

	return int64(len(data)), nil
}
