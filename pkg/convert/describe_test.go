package convert

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"

	"github.com/ironsheep/image-convert/internal/imaging"
)

func TestDescribeFile(t *testing.T) {
	data := pngBytes(t, solidImage(t, 12, 7, color.NRGBA{R: 1, G: 2, B: 3, A: 128}))
	path := writeTempFile(t, "in.png", data)

	desc, err := Default.Describe(context.Background(), path, KindAuto)
	require.NoError(t, err)
	assert.Equal(t, KindFile, desc.Kind)
	assert.Equal(t, 12, desc.Width)
	assert.Equal(t, 7, desc.Height)
	assert.Equal(t, "png", desc.Format)
	assert.Equal(t, imaging.ModeRGBA, desc.Mode)
	assert.Equal(t, len(data), desc.SizeBytes)
}

func TestDescribeImage(t *testing.T) {
	desc, err := Default.Describe(context.Background(), image.NewGray(image.Rect(0, 0, 3, 4)), KindAuto)
	require.NoError(t, err)
	assert.Equal(t, KindImage, desc.Kind)
	assert.Equal(t, imaging.ModeL, desc.Mode)
	assert.Equal(t, "unknown", desc.Format)
	assert.Zero(t, desc.SizeBytes)
}

func TestDescribeArray(t *testing.T) {
	arr := tensor.New(tensor.WithShape(2, 5, 3), tensor.WithBacking(make([]uint8, 30)))

	desc, err := Default.Describe(context.Background(), arr, KindAuto)
	require.NoError(t, err)
	assert.Equal(t, KindArray, desc.Kind)
	assert.Equal(t, 5, desc.Width)
	assert.Equal(t, 2, desc.Height)
}

func TestDescribeUndecodable(t *testing.T) {
	_, err := Default.Describe(context.Background(), []byte("fake image data"), KindAuto)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestDescriptionJSON(t *testing.T) {
	desc, err := Default.Describe(context.Background(), onePixelPNG, KindAuto)
	require.NoError(t, err)

	out, err := json.Marshal(desc)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(out, &fields))
	assert.Equal(t, "base64_text", fields["kind"])
	assert.Equal(t, "png", fields["format"])
	assert.EqualValues(t, 1, fields["width"])
}
