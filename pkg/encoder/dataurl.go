package encoder

import (
	"fmt"

	"github.com/vincent-petithory/dataurl"
)

// DisplacementMapToDataURL encodes an RGBA buffer as a PNG data URL
// suitable for an feImage href.
func DisplacementMapToDataURL(buf []uint8, width, height int) (string, error) {
	return ToDataURL(buf, width, height, FormatPNG)
}

// ToDataURL encodes an RGBA buffer as a base64 data URL in the given format.
func ToDataURL(buf []uint8, width, height int, format Format) (string, error) {
	data, err := EncodeBytes(buf, width, height, format)
	if err != nil {
		return "", fmt.Errorf("failed to rasterize map: %w", err)
	}
	return dataurl.New(data, format.MediaType()).String(), nil
}

// DecodeDataURL returns the payload and media type of a data URL.
func DecodeDataURL(s string) ([]byte, string, error) {
	du, err := dataurl.DecodeString(s)
	if err != nil {
		return nil, "", fmt.Errorf("invalid data URL: %w", err)
	}
	return du.Data, du.ContentType(), nil
}
