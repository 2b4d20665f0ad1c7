package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// solidImage returns an image filled with a single color.
func solidImage(w, h int, c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestConfigValidate(t *testing.T) {
	cfg := MobileNetConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Width = 0
	assert.Error(t, cfg.Validate())

	cfg = MobileNetConfig()
	cfg.ScaleShorterSide = 100
	assert.Error(t, cfg.Validate())

	cfg = MobileNetConfig()
	cfg.Std = [3]float32{0, 1, 1}
	assert.Error(t, cfg.Validate())
}

func TestPreprocessShape(t *testing.T) {
	data := encodePNG(t, solidImage(320, 240, color.RGBA{R: 255, A: 255}))

	tensor, err := Preprocess(data, MobileNetConfig())
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 3, 224, 224}, tensor.Shape)
	assert.Len(t, tensor.Data, 3*224*224)
}

func TestPreprocessNormalization(t *testing.T) {
	// Pure red, [-1, 1] scaling: red channel maps to 1, green and blue to -1.
	data := encodePNG(t, solidImage(300, 300, color.RGBA{R: 255, A: 255}))

	tensor, err := Preprocess(data, MobileNetConfig())
	require.NoError(t, err)

	channelSize := 224 * 224
	assert.InDelta(t, 1.0, float64(tensor.Data[0]), 1e-3)
	assert.InDelta(t, -1.0, float64(tensor.Data[channelSize]), 1e-3)
	assert.InDelta(t, -1.0, float64(tensor.Data[2*channelSize]), 1e-3)
}

func TestPreprocessDirectResize(t *testing.T) {
	cfg := Config{
		Width:  32,
		Height: 32,
		Std:    [3]float32{1, 1, 1},
	}
	data := encodePNG(t, solidImage(100, 50, color.RGBA{R: 10, G: 20, B: 30, A: 255}))

	tensor, err := Preprocess(data, cfg)
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 3, 32, 32}, tensor.Shape)
	channelSize := 32 * 32
	assert.InDelta(t, 10, float64(tensor.Data[0]), 1.0)
	assert.InDelta(t, 20, float64(tensor.Data[channelSize]), 1.0)
	assert.InDelta(t, 30, float64(tensor.Data[2*channelSize]), 1.0)
}

func TestPreprocessRejectsGarbage(t *testing.T) {
	_, err := Preprocess([]byte("not an image"), MobileNetConfig())
	assert.Error(t, err)

	_, err = Preprocess(nil, MobileNetConfig())
	assert.Error(t, err)
}

func TestFromImageCenterCrop(t *testing.T) {
	// Left half black, right half white. After the center crop both halves
	// are still present, so the crop grabbed the middle.
	img := image.NewRGBA(image.Rect(0, 0, 400, 256))
	for y := 0; y < 256; y++ {
		for x := 0; x < 400; x++ {
			if x < 200 {
				img.Set(x, y, color.RGBA{A: 255})
			} else {
				img.Set(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
			}
		}
	}

	cfg := Config{
		Width:            224,
		Height:           224,
		ScaleShorterSide: 256,
		Std:              [3]float32{1, 1, 1},
	}
	tensor, err := FromImage(img, cfg)
	require.NoError(t, err)

	// First red row: starts dark, ends bright.
	assert.Less(t, float64(tensor.Data[0]), 64.0)
	assert.Greater(t, float64(tensor.Data[223]), 192.0)
}

func TestPreprocessFileMissing(t *testing.T) {
	_, err := PreprocessFile("/nonexistent/image.jpg", MobileNetConfig())
	assert.Error(t, err)
}
