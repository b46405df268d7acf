package convert

import (
	"bytes"
	"encoding/base64"
	"image"
	"os"
	"regexp"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/ironsheep/image-convert/internal/imaging"
)

// urlPattern matches http(s) URLs with a host.
var urlPattern = regexp.MustCompile(`(?i)^https?://[^\s/?#]+([/?#]\S*)?$`)

// base64Alphabet matches strings made only of standard base64 characters.
var base64Alphabet = regexp.MustCompile(`^[A-Za-z0-9+/]*={0,2}$`)

// Detect classifies value into a Kind.
//
// Rules are tried in a fixed order and the first match wins:
//  1. non-nil image.Image -> KindImage
//  2. tensor.Tensor with at least two dimensions -> KindArray
//  3. string that looks like an http(s) URL -> KindURL
//  4. string naming an existing filesystem entry -> KindFile
//  5. non-empty string of valid, correctly padded base64 -> KindBase64Text
//  6. []byte: valid base64 -> KindBase64, otherwise KindBytes
//  7. *bytes.Reader -> KindByteStream
//
// The order decides ambiguous inputs. The string "test" is valid base64 and
// is therefore KindBase64Text, and bytes that happen to be valid base64 are
// KindBase64 regardless of what they were meant to be.
func Detect(value any) (Kind, error) {
	return Resolve(value, KindAuto)
}

// Resolve returns kind when it is explicit and valid, and detects it from
// value when kind is KindAuto. An explicit kind is trusted and is not checked
// against the value.
func Resolve(value any, kind Kind) (Kind, error) {
	if kind != KindAuto {
		if !kind.Valid() {
			return KindAuto, errors.Wrapf(ErrInvalidKind, "got %s", kind)
		}
		return kind, nil
	}

	if img, ok := value.(image.Image); ok {
		if imaging.IsNil(img) {
			return KindAuto, errors.Wrapf(ErrUnsupportedType, "nil %T", value)
		}
		return KindImage, nil
	}
	if t, ok := value.(tensor.Tensor); ok && t.Dims() >= 2 {
		return KindArray, nil
	}
	if s, ok := value.(string); ok {
		switch {
		case urlPattern.MatchString(s):
			return KindURL, nil
		case exists(s):
			return KindFile, nil
		case isBase64([]byte(s)):
			return KindBase64Text, nil
		}
	}
	if b, ok := value.([]byte); ok {
		if isBase64(b) {
			return KindBase64, nil
		}
		return KindBytes, nil
	}
	if _, ok := value.(*bytes.Reader); ok {
		return KindByteStream, nil
	}

	return KindAuto, errors.Wrapf(ErrUnsupportedType, "%T", value)
}

func exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// isBase64 reports whether b is non-empty, uses only the standard alphabet
// and decodes cleanly with strict padding.
func isBase64(b []byte) bool {
	if len(b) == 0 || !base64Alphabet.Match(b) {
		return false
	}
	_, err := base64.StdEncoding.DecodeString(string(b))
	return err == nil
}
