package convert

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Kind identifies the representation an image value is in.
type Kind int

// Kinds of image representation. KindAuto asks the converter to detect the
// kind from the value itself.
const (
	KindAuto Kind = iota
	KindImage
	KindArray
	KindBytes
	KindByteStream
	KindBase64
	KindBase64Text
	KindURL
	KindFile
)

var kindNames = [...]string{
	KindAuto:       "auto",
	KindImage:      "image",
	KindArray:      "array",
	KindBytes:      "bytes",
	KindByteStream: "byte_stream",
	KindBase64:     "base64",
	KindBase64Text: "base64_text",
	KindURL:        "url",
	KindFile:       "file",
}

// Kinds returns every concrete kind in detection-independent order.
func Kinds() []Kind {
	return []Kind{KindImage, KindArray, KindBytes, KindByteStream, KindBase64, KindBase64Text, KindURL, KindFile}
}

func (k Kind) String() string {
	if k < KindAuto || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// Valid reports whether k is a concrete kind. KindAuto is not valid as an
// explicit kind; it means "detect".
func (k Kind) Valid() bool {
	return k > KindAuto && k <= KindFile
}

// ParseKind resolves a kind name such as "base64_text". "auto" and the
// empty string yield KindAuto.
func ParseKind(name string) (Kind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return KindAuto, nil
	}
	for k, s := range kindNames {
		if s == n {
			return Kind(k), nil
		}
	}
	return KindAuto, errors.Wrapf(ErrInvalidKind, "%q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if k != KindAuto && !k.Valid() {
		return nil, errors.Wrapf(ErrInvalidKind, "%d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
