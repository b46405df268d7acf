package imaging

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Mode names the channel layout of a decoded image.
type Mode string

// Color modes reported by ModeOf.
const (
	ModeRGB  Mode = "RGB"
	ModeRGBA Mode = "RGBA"
	ModeL    Mode = "L"
	ModeP    Mode = "P"
	ModeCMYK Mode = "CMYK"
)

// ModeOf reports the color mode of img.
//
// Go has no dedicated 3-channel image type, so RGB-family images (RGBA,
// NRGBA and their 16-bit variants) report ModeRGB when every pixel is fully
// opaque and ModeRGBA otherwise. JPEG's YCbCr images report ModeRGB.
func ModeOf(img image.Image) Mode {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return ModeL
	case *image.Paletted:
		return ModeP
	case *image.CMYK:
		return ModeCMYK
	case *image.YCbCr:
		return ModeRGB
	}
	if isOpaque(img) {
		return ModeRGB
	}
	return ModeRGBA
}

// isOpaque uses the image's own Opaque method when it has one and otherwise
// scans every pixel.
func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return false
			}
		}
	}
	return true
}

// ToRGB normalizes img to a fully opaque *image.NRGBA anchored at (0,0).
//
// With a nil background the alpha channel is discarded and the straight
// color values are kept. With a background, img is composited over a canvas
// filled with that color.
func ToRGB(img image.Image, background color.Color) *image.NRGBA {
	if background != nil {
		b := img.Bounds()
		canvas := imaging.New(b.Dx(), b.Dy(), opaque(background))
		return imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0)
	}

	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}

func opaque(c color.Color) color.NRGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = 0xff
	return n
}
