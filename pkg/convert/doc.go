// Package convert normalizes images between in-memory representations.
//
// An image value can be a decoded image.Image, a gorgonia tensor, encoded
// bytes, a *bytes.Reader, base64 bytes or text, an http(s) URL, or a file
// path. Detect works out which one a value is; the Converter methods turn any
// of them into any other.
//
// # Kinds
//
// Every conversion takes a Kind. KindAuto means "detect from the value";
// any other valid Kind is trusted as given:
//
//	data, err := convert.ToBytes(ctx, "https://example.com/cat.jpg", convert.KindAuto)
//	img, err := convert.ToImage(ctx, data, convert.KindBytes)
//
// # Conversion Graph
//
// Bytes are the hub. ToBytes knows how to get encoded bytes out of every kind,
// and every other target is built from those bytes:
//   - ToImage decodes and normalizes to RGB
//   - ToArray and ToCVImage materialize the RGB image as a tensor
//   - ToBase64 and ToBase64Text encode (base64 inputs pass through)
//   - ToByteStream wraps the bytes in a reader at offset 0
//   - ToFile writes the bytes and reports how many were written
//
// ToBytes never re-encodes data that is already encoded. Reencode decodes
// any value and encodes it in a chosen format.
//
// # Error Handling
//
// Errors wrap the sentinels ErrInvalidKind, ErrUnsupportedType, ErrDecode,
// ErrUnsupportedArray and ErrNoResult. Failed URL fetches are the only
// failure absorbed below this package: the fetcher reports an empty
// fetch.Result, which surfaces here as ErrNoResult.
package convert
