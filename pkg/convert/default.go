package convert

import (
	"bytes"
	"context"
	"image"

	"gorgonia.org/tensor"

	"github.com/ironsheep/image-convert/internal/imaging"
	"github.com/ironsheep/image-convert/pkg/fetch"
)

// Default is the Converter used by the package-level functions.
var Default = New()

// ToBytes converts value to encoded bytes using Default.
func ToBytes(ctx context.Context, value any, kind Kind) ([]byte, error) {
	return Default.ToBytes(ctx, value, kind)
}

// ToImage converts value to an RGB image using Default.
func ToImage(ctx context.Context, value any, kind Kind) (*image.NRGBA, error) {
	return Default.ToImage(ctx, value, kind)
}

// ToArray converts value to an RGB tensor using Default.
func ToArray(ctx context.Context, value any, kind Kind) (*tensor.Dense, error) {
	return Default.ToArray(ctx, value, kind)
}

// ToCVImage converts value to a BGR tensor using Default.
func ToCVImage(ctx context.Context, value any, kind Kind) (*tensor.Dense, error) {
	return Default.ToCVImage(ctx, value, kind)
}

// ToFile writes value to path using Default.
func ToFile(ctx context.Context, value any, path string, kind Kind) (int, error) {
	return Default.ToFile(ctx, value, path, kind)
}

// ToBase64 converts value to base64 bytes using Default.
func ToBase64(ctx context.Context, value any, kind Kind) ([]byte, error) {
	return Default.ToBase64(ctx, value, kind)
}

// ToBase64Text converts value to a base64 string using Default.
func ToBase64Text(ctx context.Context, value any, kind Kind) (string, error) {
	return Default.ToBase64Text(ctx, value, kind)
}

// ToByteStream converts value to a byte stream using Default.
func ToByteStream(ctx context.Context, value any, kind Kind) (*bytes.Reader, error) {
	return Default.ToByteStream(ctx, value, kind)
}

// Reencode decodes value and encodes it as format using Default.
func Reencode(ctx context.Context, value any, kind Kind, format imaging.Format) ([]byte, error) {
	return Default.Reencode(ctx, value, kind, format)
}

// FetchBytes downloads url with the default fetcher.
func FetchBytes(ctx context.Context, url string) fetch.Result {
	return fetch.Fetch(ctx, url)
}
