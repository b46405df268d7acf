package convert

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironsheep/image-convert/pkg/fetch"
)

// onePixelPNG is a 1x1 PNG, base64-encoded.
const onePixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8/5+hHgAHggJ/PchI7wAAAABJRU5ErkJggg=="

// solidImage creates an in-memory NRGBA image filled with c.
func solidImage(t *testing.T, width, height int, c color.Color) *image.NRGBA {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// pngBytes encodes img as PNG.
func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// writeTempFile writes data to a file in a per-test directory and returns its path.
func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// stubConverter returns a Converter whose URL fetches are served by the
// given transports.
func stubConverter(primary, fallback fetch.TransportFunc) *Converter {
	return New(WithFetcher(fetch.New(fetch.WithPrimary(primary), fetch.WithFallback(fallback))))
}

func failing(msg string) fetch.TransportFunc {
	return func(ctx context.Context, url string) ([]byte, error) {
		return nil, &fetchError{msg}
	}
}

type fetchError struct{ msg string }

func (e *fetchError) Error() string { return e.msg }
