package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func TestToTensor_ShapeAndOrder(t *testing.T) {
	img := solidImage(t, 5, 3, color.NRGBA{10, 20, 30, 255})

	rgb := ToTensor(img, OrderRGB)
	assert.Equal(t, tensor.Shape{3, 5, 3}, rgb.Shape())
	assert.Equal(t, tensor.Uint8, rgb.Dtype())

	data := rgb.Data().([]uint8)
	assert.Equal(t, []uint8{10, 20, 30}, data[:3])

	bgr := ToTensor(img, OrderBGR).Data().([]uint8)
	assert.Equal(t, []uint8{30, 20, 10}, bgr[:3])
}

func TestToTensor_RowMajor(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(1, 0, color.NRGBA{255, 0, 0, 255})
	img.Set(0, 1, color.NRGBA{0, 255, 0, 255})

	data := ToTensor(img, OrderRGB).Data().([]uint8)

	// pixel (x=1, y=0) is the second triple, (x=0, y=1) the third
	assert.Equal(t, []uint8{255, 0, 0}, data[3:6])
	assert.Equal(t, []uint8{0, 255, 0}, data[6:9])
}

func TestFromTensor_RoundTrip(t *testing.T) {
	src := solidImage(t, 6, 4, color.NRGBA{1, 2, 3, 255})
	src.Set(2, 1, color.NRGBA{200, 150, 100, 255})

	for _, order := range []ChannelOrder{OrderRGB, OrderBGR} {
		img, err := FromTensor(ToTensor(src, order), order)
		require.NoError(t, err)

		assert.Equal(t, src.Bounds(), img.Bounds())
		assert.Equal(t, color.NRGBA{200, 150, 100, 255}, color.NRGBAModel.Convert(img.At(2, 1)))
		assert.Equal(t, color.NRGBA{1, 2, 3, 255}, color.NRGBAModel.Convert(img.At(0, 0)))
	}
}

func TestFromTensor_Grayscale(t *testing.T) {
	tests := []struct {
		name  string
		shape []int
	}{
		{"2d", []int{2, 3}},
		{"single channel", []int{2, 3, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backing := []uint8{0, 50, 100, 150, 200, 250}
			img, err := FromTensor(tensor.New(tensor.WithShape(tt.shape...), tensor.WithBacking(backing)), OrderRGB)
			require.NoError(t, err)

			gray, ok := img.(*image.Gray)
			require.True(t, ok, "want *image.Gray, got %T", img)
			assert.Equal(t, uint8(250), gray.GrayAt(2, 1).Y)
			assert.Equal(t, ModeL, ModeOf(gray))
		})
	}
}

func TestFromTensor_Alpha(t *testing.T) {
	backing := []uint8{10, 20, 30, 40}
	img, err := FromTensor(tensor.New(tensor.WithShape(1, 1, 4), tensor.WithBacking(backing)), OrderRGB)
	require.NoError(t, err)

	assert.Equal(t, color.NRGBA{10, 20, 30, 40}, img.(*image.NRGBA).NRGBAAt(0, 0))
	assert.Equal(t, ModeRGBA, ModeOf(img))
}

func TestFromTensor_FloatClamped(t *testing.T) {
	backing := []float64{-5, 127.6, 300}
	img, err := FromTensor(tensor.New(tensor.WithShape(1, 1, 3), tensor.WithBacking(backing)), OrderRGB)
	require.NoError(t, err)

	assert.Equal(t, color.NRGBA{0, 128, 255, 255}, img.(*image.NRGBA).NRGBAAt(0, 0))
}

func TestFromTensor_Float32(t *testing.T) {
	backing := []float32{1, 2, 3}
	img, err := FromTensor(tensor.New(tensor.WithShape(1, 1, 3), tensor.WithBacking(backing)), OrderRGB)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{1, 2, 3, 255}, img.(*image.NRGBA).NRGBAAt(0, 0))
}

func TestFromTensor_Unsupported(t *testing.T) {
	tests := []struct {
		name string
		t    tensor.Tensor
	}{
		{"vector", tensor.New(tensor.WithShape(6), tensor.WithBacking(make([]uint8, 6)))},
		{"two channels", tensor.New(tensor.WithShape(1, 3, 2), tensor.WithBacking(make([]uint8, 6)))},
		{"4d", tensor.New(tensor.WithShape(1, 1, 2, 3), tensor.WithBacking(make([]uint8, 6)))},
		{"bool elements", tensor.New(tensor.WithShape(1, 2), tensor.WithBacking([]bool{true, false}))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromTensor(tt.t, OrderRGB)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnsupportedArray)
		})
	}
}

func TestFromTensor_Nil(t *testing.T) {
	_, err := FromTensor(nil, OrderRGB)
	assert.ErrorIs(t, err, ErrUnsupportedArray)
}
