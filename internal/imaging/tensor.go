package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/clone"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// ChannelOrder defines the ordering of color channels in a materialized array.
type ChannelOrder int

const (
	// OrderRGB is the red-green-blue ordering used by most imaging libraries.
	OrderRGB ChannelOrder = iota
	// OrderBGR is the blue-green-red ordering used by OpenCV.
	OrderBGR
)

// ErrUnsupportedArray is returned when a tensor cannot be read as an image.
var ErrUnsupportedArray = errors.New("unsupported array")

// ToTensor materializes img as a height x width x 3 uint8 tensor.
//
// Alpha is ignored; callers that care normalize with ToRGB first.
func ToTensor(img image.Image, order ChannelOrder) *tensor.Dense {
	rgba := clone.AsRGBA(img)
	b := rgba.Bounds()
	w, h := b.Dx(), b.Dy()

	backing := make([]uint8, w*h*3)
	i := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := rgba.PixOffset(b.Min.X+x, b.Min.Y+y)
			r, g, bl := rgba.Pix[off], rgba.Pix[off+1], rgba.Pix[off+2]
			if order == OrderBGR {
				r, bl = bl, r
			}
			backing[i], backing[i+1], backing[i+2] = r, g, bl
			i += 3
		}
	}

	return tensor.New(tensor.WithShape(h, w, 3), tensor.WithBacking(backing))
}

// FromTensor builds an image from a height x width [x channels] tensor.
//
// Accepted shapes are (H, W) and (H, W, C) with C of 1 (grayscale), 3 (color)
// or 4 (color with alpha). Element types uint8, int, float32 and float64 are
// supported; non-uint8 values are rounded and clamped to 0-255.
func FromTensor(t tensor.Tensor, order ChannelOrder) (image.Image, error) {
	if t == nil {
		return nil, errors.Wrap(ErrUnsupportedArray, "nil tensor")
	}
	if v, ok := t.(interface {
		IsView() bool
		Materialize() tensor.Tensor
	}); ok && v.IsView() {
		t = v.Materialize()
	}

	shape := t.Shape()
	var h, w, c int
	switch len(shape) {
	case 2:
		h, w, c = shape[0], shape[1], 1
	case 3:
		h, w, c = shape[0], shape[1], shape[2]
	default:
		return nil, errors.Wrapf(ErrUnsupportedArray, "shape %v: want (H, W) or (H, W, C)", shape)
	}
	if c != 1 && c != 3 && c != 4 {
		return nil, errors.Wrapf(ErrUnsupportedArray, "shape %v: %d channels", shape, c)
	}
	if h <= 0 || w <= 0 {
		return nil, errors.Wrapf(ErrUnsupportedArray, "shape %v: empty", shape)
	}

	at, n, err := sampler(t.Data())
	if err != nil {
		return nil, err
	}
	if n < h*w*c {
		return nil, errors.Wrapf(ErrUnsupportedArray, "shape %v: backing holds %d values", shape, n)
	}

	if c == 1 {
		gray := image.NewGray(image.Rect(0, 0, w, h))
		copyGray(gray, at)
		return gray, nil
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i, p := 0, 0; i < h*w; i++ {
		r, g, b := at(p), at(p+1), at(p+2)
		if order == OrderBGR {
			r, b = b, r
		}
		a := uint8(0xff)
		if c == 4 {
			a = at(p + 3)
		}
		dst.Pix[i*4], dst.Pix[i*4+1], dst.Pix[i*4+2], dst.Pix[i*4+3] = r, g, b, a
		p += c
	}
	return dst, nil
}

func copyGray(dst *image.Gray, at func(int) uint8) {
	b := dst.Bounds()
	i := 0
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			dst.SetGray(x, y, color.Gray{Y: at(i)})
			i++
		}
	}
}

// sampler returns an accessor over a tensor backing slice and its length.
func sampler(data interface{}) (func(int) uint8, int, error) {
	switch d := data.(type) {
	case []uint8:
		return func(i int) uint8 { return d[i] }, len(d), nil
	case []int:
		return func(i int) uint8 { return clamp8(float64(d[i])) }, len(d), nil
	case []float32:
		return func(i int) uint8 { return clamp8(float64(d[i])) }, len(d), nil
	case []float64:
		return func(i int) uint8 { return clamp8(d[i]) }, len(d), nil
	}
	return nil, 0, errors.Wrapf(ErrUnsupportedArray, "element type %T", data)
}

func clamp8(v float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}
