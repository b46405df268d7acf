package convert

import (
	"github.com/pkg/errors"

	"github.com/ironsheep/image-convert/internal/imaging"
)

// Sentinel errors. Returned errors wrap one of these; match with errors.Is.
var (
	// ErrInvalidKind is returned when an explicit kind is not a member of Kind.
	ErrInvalidKind = errors.New("kind should be an enum member")

	// ErrUnsupportedType is returned when a value matches no detection rule,
	// or does not carry the explicit kind it was given.
	ErrUnsupportedType = errors.New("unsupported image value type")

	// ErrDecode is returned for malformed base64 or malformed image bytes.
	ErrDecode = errors.New("decode failed")

	// ErrNoResult is returned when a URL could not be fetched by either
	// transport. It marks an absent value, not a transport error.
	ErrNoResult = errors.New("no result")

	// ErrUnsupportedArray is returned when a tensor's shape or element type
	// cannot describe an image.
	ErrUnsupportedArray = imaging.ErrUnsupportedArray
)
