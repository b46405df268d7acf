// Package imaging provides the codec layer used by the converter.
//
// This package wraps image encoding, decoding, color-mode reporting and
// array materialization behind a small set of functions. All operations work
// with standard Go image.Image types and are stateless, so they can be called
// concurrently on different images.
//
// # Formats
//
// Decoding accepts PNG, JPEG, GIF, BMP, TIFF and WebP. Encoding targets are
// PNG (the default), JPEG, GIF, BMP and TIFF.
//
// # Color Modes
//
// Decoded images are classified into modes:
//   - RGB: 3-channel color, fully opaque
//   - RGBA: 4-channel color with transparency
//   - L: 8 or 16-bit grayscale
//   - P: paletted
//   - CMYK: 4-channel print color
//
// ToRGB normalizes any image to an opaque *image.NRGBA, which reports RGB.
//
// # Arrays
//
// Arrays are gorgonia tensors laid out height x width x channels (HWC).
// ToTensor always produces 3 uint8 channels in RGB or BGR order.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Empty or malformed encoded data
//   - Tensors whose shape or element type cannot describe an image
//   - Unknown encoding format names
package imaging
