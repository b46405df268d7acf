package convert

import (
	"context"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/ironsheep/image-convert/internal/imaging"
)

// Description is the metadata of an image value together with its kind.
type Description struct {
	Kind Kind `json:"kind"`
	imaging.Info
}

// Describe reports the kind, dimensions, color mode and (for encoded
// sources) format and size of value. Decoded images and arrays are not
// encoded, so their format is "unknown".
func (c *Converter) Describe(ctx context.Context, value any, kind Kind) (*Description, error) {
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
		return &Description{Kind: kind, Info: *imaging.Describe(img)}, nil
	case KindArray:
		t, ok := value.(tensor.Tensor)
		if !ok {
			return nil, mismatch(value, kind)
		}
		img, err := imaging.FromTensor(t, imaging.OrderRGB)
		if err != nil {
			return nil, err
		}
		return &Description{Kind: kind, Info: *imaging.Describe(img)}, nil
	}

	data, err := c.ToBytes(ctx, value, kind)
	if err != nil {
		return nil, err
	}
	info, err := imaging.Inspect(data)
	if err != nil {
		return nil, errors.Wrapf(ErrDecode, "%v", err)
	}
	return &Description{Kind: kind, Info: *info}, nil
}
