package convert

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorgonia.org/tensor"

	"github.com/ironsheep/image-convert/internal/imaging"
	"github.com/ironsheep/image-convert/pkg/fetch"
)

// Converter transforms image values between representations.
//
// Every conversion goes through bytes: a value is first turned into encoded
// image bytes, which are then decoded or re-encoded into the target. A
// Converter holds only configuration and is safe for concurrent use.
type Converter struct {
	fetcher    *fetch.Fetcher
	encoder    imaging.Encoder
	autoOrient bool
	background color.Color
	atomic     bool
	logger     *zap.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithFetcher sets the fetcher used for URL values.
func WithFetcher(f *fetch.Fetcher) Option {
	return func(c *Converter) { c.fetcher = f }
}

// WithFormat sets the encoding used when a decoded image or array is turned
// into bytes. The default is PNG.
func WithFormat(f imaging.Format) Option {
	return func(c *Converter) { c.encoder.Format = f }
}

// WithJPEGQuality sets the JPEG quality (1-100) used when the format is JPEG.
func WithJPEGQuality(q int) Option {
	return func(c *Converter) { c.encoder.JPEGQuality = q }
}

// WithAutoOrientation applies EXIF orientation when decoding bytes.
func WithAutoOrientation(enabled bool) Option {
	return func(c *Converter) { c.autoOrient = enabled }
}

// WithBackground makes ToImage composite transparent images over bg instead
// of discarding their alpha channel.
func WithBackground(bg color.Color) Option {
	return func(c *Converter) { c.background = bg }
}

// WithAtomicWrites makes ToFile write to a temporary file in the target
// directory and rename it into place.
func WithAtomicWrites(enabled bool) Option {
	return func(c *Converter) { c.atomic = enabled }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Converter. Without WithFetcher, URLs are fetched with a
// default fetch.Fetcher that logs through the converter's logger.
func New(opts ...Option) *Converter {
	c := &Converter{
		encoder: imaging.Encoder{Format: imaging.PNG},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.fetcher == nil {
		c.fetcher = fetch.New(fetch.WithLogger(c.logger))
	}
	return c
}

// With returns a copy of c with opts applied on top of its configuration.
func (c *Converter) With(opts ...Option) *Converter {
	cp := *c
	for _, opt := range opts {
		opt(&cp)
	}
	return &cp
}

// ToBytes converts value to encoded image bytes.
//
// Dispatch by kind:
//   - image: encoded with the configured format (PNG by default)
//   - array: built into an image, then encoded
//   - bytes: returned unchanged
//   - byte stream: the remaining content is read
//   - base64, base64 text: decoded; malformed input yields ErrDecode
//   - URL: fetched; when every attempt fails the error is ErrNoResult
//   - file: the file content is read
func (c *Converter) ToBytes(ctx context.Context, value any, kind Kind) ([]byte, error) {
	kind, err := Resolve(value, kind)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindImage:
		img, ok := asImage(value)
		if !ok {
			return nil, mismatch(value, kind)
		}
		return c.encoder.Encode(img)

	case KindArray:
		t, ok := value.(tensor.Tensor)
		if !ok {
			return nil, mismatch(value, kind)
		}
		img, err := imaging.FromTensor(t, imaging.OrderRGB)
		if err != nil {
			return nil, err
		}
		return c.encoder.Encode(img)

	case KindBytes:
		b, ok := value.([]byte)
		if !ok {
			return nil, mismatch(value, kind)
		}
		return b, nil

	case KindByteStream:
		r, ok := value.(io.Reader)
		if !ok {
			return nil, mismatch(value, kind)
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read byte stream")
		}
		return data, nil

	case KindBase64, KindBase64Text:
		text, ok := textOf(value)
		if !ok {
			return nil, mismatch(value, kind)
		}
		data, err := base64.StdEncoding.DecodeString(text)
		if err != nil {
			return nil, errors.Wrapf(ErrDecode, "base64: %v", err)
		}
		return data, nil

	case KindURL:
		u, ok := value.(string)
		if !ok {
			return nil, mismatch(value, kind)
		}
		data, found := c.fetcher.Fetch(ctx, u).Bytes()
		if !found {
			return nil, errors.Wrapf(ErrNoResult, "fetch %s", u)
		}
		return data, nil

	case KindFile:
		path, ok := value.(string)
		if !ok {
			return nil, mismatch(value, kind)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read image file")
		}
		return data, nil
	}

	return nil, errors.Wrapf(ErrInvalidKind, "got %s", kind)
}

// ToImage converts value to a decoded image normalized to RGB.
//
// The result is always a fully opaque *image.NRGBA, even for sources with an
// alpha channel; see WithBackground for compositing instead of discarding.
func (c *Converter) ToImage(ctx context.Context, value any, kind Kind) (*image.NRGBA, error) {
	img, err := c.decoded(ctx, value, kind)
	if err != nil {
		return nil, err
	}
	return imaging.ToRGB(img, c.background), nil
}

// decoded returns value as an image.Image without normalizing its mode.
func (c *Converter) decoded(ctx context.Context, value any, kind Kind) (image.Image, error) {
	kind, err := Resolve(value, kind)
	if err != nil {
		return nil, err
	}
	if kind == KindImage {
		if img, ok := asImage(value); ok {
			return img, nil
		}
		return nil, mismatch(value, kind)
	}

	data, err := c.ToBytes(ctx, value, kind)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(data, c.autoOrient)
	if err != nil {
		return nil, errors.Wrapf(ErrDecode, "%v", err)
	}
	return img, nil
}

// ToArray converts value to a height x width x 3 uint8 tensor in RGB order.
func (c *Converter) ToArray(ctx context.Context, value any, kind Kind) (*tensor.Dense, error) {
	img, err := c.ToImage(ctx, value, kind)
	if err != nil {
		return nil, err
	}
	return imaging.ToTensor(img, imaging.OrderRGB), nil
}

// ToCVImage converts value to a height x width x 3 uint8 tensor in BGR
// order, the layout OpenCV uses.
func (c *Converter) ToCVImage(ctx context.Context, value any, kind Kind) (*tensor.Dense, error) {
	img, err := c.ToImage(ctx, value, kind)
	if err != nil {
		return nil, err
	}
	return imaging.ToTensor(img, imaging.OrderBGR), nil
}

// ToBase64 converts value to base64-encoded bytes. Base64 values pass
// through unchanged.
func (c *Converter) ToBase64(ctx context.Context, value any, kind Kind) ([]byte, error) {
	kind, err := Resolve(value, kind)
	if err != nil {
		return nil, err
	}
	if kind == KindBase64 || kind == KindBase64Text {
		text, ok := textOf(value)
		if !ok {
			return nil, mismatch(value, kind)
		}
		return []byte(text), nil
	}

	data, err := c.ToBytes(ctx, value, kind)
	if err != nil {
		return nil, err
	}
	out := make([]byte, base64.StdEncoding.EncodedLen(len(data)))
	base64.StdEncoding.Encode(out, data)
	return out, nil
}

// ToBase64Text is ToBase64 returning a string.
func (c *Converter) ToBase64Text(ctx context.Context, value any, kind Kind) (string, error) {
	b, err := c.ToBase64(ctx, value, kind)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToByteStream converts value to a fresh in-memory stream positioned at
// offset 0.
func (c *Converter) ToByteStream(ctx context.Context, value any, kind Kind) (*bytes.Reader, error) {
	data, err := c.ToBytes(ctx, value, kind)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

// asImage returns value as a usable image. Nil image pointers are rejected.
func asImage(value any) (image.Image, bool) {
	img, ok := value.(image.Image)
	if !ok || imaging.IsNil(img) {
		return nil, false
	}
	return img, true
}

// Reencode decodes value and encodes it as format, whatever encoding the
// source had. Unlike ToBytes, encoded inputs do not pass through unchanged.
// Transparency is kept where format supports it.
func (c *Converter) Reencode(ctx context.Context, value any, kind Kind, format imaging.Format) ([]byte, error) {
	img, err := c.decoded(ctx, value, kind)
	if err != nil {
		return nil, err
	}
	enc := c.encoder
	enc.Format = format
	return enc.Encode(img)
}

// textOf returns the base64 text carried by a string or []byte.
func textOf(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	}
	return "", false
}

func mismatch(value any, kind Kind) error {
	return errors.Wrapf(ErrUnsupportedType, "%T cannot carry kind %s", value, kind)
}
