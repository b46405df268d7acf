package imaging

import (
	"bytes"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"net/http"
	"reflect"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// Format is an encoding target for in-memory serialization.
type Format = imaging.Format

// Supported encoding targets.
const (
	PNG  = imaging.PNG
	JPEG = imaging.JPEG
	GIF  = imaging.GIF
	BMP  = imaging.BMP
	TIFF = imaging.TIFF
)

// DefaultJPEGQuality matches the quality used by the underlying encoder.
const DefaultJPEGQuality = 95

// ParseFormat resolves a format name or file extension ("png", ".jpg", "tiff").
func ParseFormat(name string) (Format, error) {
	f, err := imaging.FormatFromExtension(strings.TrimSpace(name))
	if err != nil {
		return 0, errors.Wrapf(err, "unknown image format %q", name)
	}
	return f, nil
}

// MimeType returns the MIME type of an encoding target.
func MimeType(f Format) string {
	switch f {
	case PNG:
		return "image/png"
	case JPEG:
		return "image/jpeg"
	case GIF:
		return "image/gif"
	case BMP:
		return "image/bmp"
	case TIFF:
		return "image/tiff"
	}
	return "application/octet-stream"
}

// Extension returns the usual file extension of an encoding target, without
// the leading dot.
func Extension(f Format) string {
	switch f {
	case JPEG:
		return "jpg"
	case GIF:
		return "gif"
	case BMP:
		return "bmp"
	case TIFF:
		return "tif"
	}
	return "png"
}

// SniffMimeType reports the MIME type of encoded data from its leading bytes.
func SniffMimeType(data []byte) string {
	return http.DetectContentType(data)
}

// ExtensionOf returns the file extension matching the encoding of data,
// without the leading dot. Content that is not a recognized image yields
// "bin".
func ExtensionOf(data []byte) string {
	switch SniffMimeType(data) {
	case MimeType(PNG):
		return Extension(PNG)
	case MimeType(JPEG):
		return Extension(JPEG)
	case MimeType(GIF):
		return Extension(GIF)
	case MimeType(BMP):
		return Extension(BMP)
	case "image/webp":
		return "webp"
	}
	// TIFF has no content sniffing rule.
	if _, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil && format == "tiff" {
		return Extension(TIFF)
	}
	return "bin"
}

// Encoder serializes decoded images to bytes.
//
// The zero value encodes PNG. JPEGQuality is only consulted for JPEG output
// and falls back to DefaultJPEGQuality when outside 1-100.
type Encoder struct {
	Format      Format
	JPEGQuality int
}

// Encode writes img in the encoder's format to an in-memory buffer.
func (e Encoder) Encode(img image.Image) ([]byte, error) {
	if IsNil(img) {
		return nil, errors.New("cannot encode nil image")
	}

	quality := e.JPEGQuality
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, e.Format, imaging.JPEGQuality(quality)); err != nil {
		return nil, errors.Wrapf(err, "failed to encode %s image", e.Format)
	}
	return buf.Bytes(), nil
}

// IsNil reports whether img is nil or a nil pointer of a concrete image
// type, such as (*image.RGBA)(nil).
func IsNil(img image.Image) bool {
	if img == nil {
		return true
	}
	v := reflect.ValueOf(img)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// Decode decodes encoded image bytes (PNG, JPEG, GIF, BMP, TIFF, WebP).
//
// When autoOrient is set, JPEG EXIF orientation tags are applied so the
// returned image is upright.
func Decode(data []byte, autoOrient bool) (image.Image, error) {
	if len(data) == 0 {
		return nil, errors.New("failed to decode image: no data")
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(autoOrient))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode image")
	}
	return img, nil
}
