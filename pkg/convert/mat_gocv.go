//go:build gocv

package convert

import (
	"context"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ToMat converts value to an OpenCV matrix in BGR order.
//
// Requires OpenCV and the gocv build tag. The caller owns the returned Mat
// and must Close it.
func (c *Converter) ToMat(ctx context.Context, value any, kind Kind) (gocv.Mat, error) {
	data, err := c.ToBytes(ctx, value, kind)
	if err != nil {
		return gocv.NewMat(), err
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return mat, errors.Wrapf(ErrDecode, "%v", err)
	}
	if mat.Empty() {
		mat.Close()
		return gocv.NewMat(), errors.Wrap(ErrDecode, "opencv could not decode image")
	}
	return mat, nil
}
