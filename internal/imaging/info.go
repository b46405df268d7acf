package imaging

import (
	"bytes"
	"image"

	"github.com/pkg/errors"
)

// Info contains metadata about a decoded or encoded image.
type Info struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Mode is the color mode of the decoded image ("RGB", "RGBA", "L", ...).
	Mode Mode `json:"mode"`

	// Format is the encoded format sniffed from the data: "png", "jpeg",
	// "gif", "bmp", "tiff", "webp", or "unknown" for decoded images.
	Format string `json:"format"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha indicates whether the image carries an alpha channel.
	HasAlpha bool `json:"has_alpha"`

	// SizeBytes is the encoded size in bytes, zero for decoded images.
	SizeBytes int `json:"size_bytes,omitempty"`
}

// Inspect decodes data and returns its metadata.
//
// The format is determined from the data itself, not from a file name.
func Inspect(data []byte) (*Info, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode image")
	}

	info := Describe(img)
	info.Format = format
	info.SizeBytes = len(data)
	return info, nil
}

// Describe returns metadata for an already decoded image.
//
// # Color Depth Detection
//
// Color depth is determined by the Go image type:
//   - *image.RGBA64, *image.NRGBA64, *image.Gray16 -> "16-bit"
//   - All other types -> "8-bit"
//
// HasAlpha follows the color mode: an opaque NRGBA image reports mode RGB
// and no alpha.
func Describe(img image.Image) *Info {
	bounds := img.Bounds()

	colorDepth := "8-bit"
	switch img.(type) {
	case *image.RGBA64, *image.NRGBA64, *image.Gray16:
		colorDepth = "16-bit"
	}

	mode := ModeOf(img)
	return &Info{
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Mode:       mode,
		Format:     "unknown",
		ColorDepth: colorDepth,
		HasAlpha:   mode == ModeRGBA,
	}
}
