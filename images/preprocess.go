// Package images - Image preprocessing for classification model input.
package images

import (
	"bytes"
	"image"
	"os"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"

	// Codecs for the image formats found in ILSVRC archives.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
)

// Config controls how a raw image is converted into a model input tensor.
type Config struct {
	// Width is the model input width in pixels.
	Width int `json:"width"            yaml:"width"`
	// Height is the model input height in pixels.
	Height int `json:"height"           yaml:"height"`
	// ScaleShorterSide resizes the shorter image side to this many pixels
	// before center-cropping Width x Height. 0 disables the crop and resizes
	// directly to Width x Height.
	ScaleShorterSide int `json:"scaleShorterSide" yaml:"scaleShorterSide"`
	// Mean is the per-channel (RGB) value subtracted from each pixel.
	Mean [3]float32 `json:"mean"             yaml:"mean"`
	// Std is the per-channel (RGB) divisor applied after mean subtraction.
	Std [3]float32 `json:"std"              yaml:"std"`
}

// Tensor is a preprocessed image in NCHW float32 layout, ready to be copied
// into an inference session input.
type Tensor struct {
	// Data holds Shape[0]*Shape[1]*Shape[2]*Shape[3] floats.
	Data []float32
	// Shape is [batch, channels, height, width].
	Shape []int64
}

// MobileNetConfig returns the preprocessing used by MobileNet-style ImageNet
// models: 224x224 center crop from a 256 shorter side, pixels scaled to
// [-1, 1].
func MobileNetConfig() Config {
	return Config{
		Width:            224,
		Height:           224,
		ScaleShorterSide: 256,
		Mean:             [3]float32{127.5, 127.5, 127.5},
		Std:              [3]float32{127.5, 127.5, 127.5},
	}
}

// ResNetConfig returns the preprocessing used by ResNet-style ImageNet
// models: 224x224 center crop with ImageNet channel statistics.
func ResNetConfig() Config {
	return Config{
		Width:            224,
		Height:           224,
		ScaleShorterSide: 256,
		Mean:             [3]float32{123.675, 116.28, 103.53},
		Std:              [3]float32{58.395, 57.12, 57.375},
	}
}

// Validate checks the configuration for usable dimensions.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Errorf("invalid dimensions: width=%d, height=%d", c.Width, c.Height)
	}
	if c.ScaleShorterSide > 0 && (c.ScaleShorterSide < c.Width || c.ScaleShorterSide < c.Height) {
		return errors.Errorf(
			"shorter side scale %d is smaller than crop %dx%d",
			c.ScaleShorterSide, c.Width, c.Height,
		)
	}
	for i := 0; i < 3; i++ {
		if c.Std[i] == 0 {
			return errors.Errorf("std channel %d must be non-zero", i)
		}
	}
	return nil
}

// PreprocessFile loads an image from disk and preprocesses it.
func PreprocessFile(path string, cfg Config) (*Tensor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read image %s", path)
	}

	t, err := Preprocess(data, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to preprocess image %s", path)
	}
	return t, nil
}

// Preprocess decodes raw image bytes and converts them into an NCHW float32
// tensor according to the configuration.
//
// Arguments:
// - data: Raw JPEG, PNG or BMP bytes.
// - cfg: Preprocessing configuration.
//
// Returns:
// - *Tensor: The normalized tensor, shape [1, 3, cfg.Height, cfg.Width].
// - error: An error if decoding fails or the config is invalid.
func Preprocess(data []byte, cfg Config) (*Tensor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("empty image data")
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode image")
	}

	return FromImage(img, cfg)
}

// FromImage converts an already decoded image into an NCHW float32 tensor.
func FromImage(img image.Image, cfg Config) (*Tensor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.ScaleShorterSide > 0 {
		img = scaleShorterSide(img, cfg.ScaleShorterSide)
		img = centerCrop(img, cfg.Width, cfg.Height)
	} else {
		img = resize.Resize(uint(cfg.Width), uint(cfg.Height), img, resize.Lanczos3)
	}

	channelSize := cfg.Width * cfg.Height
	data := make([]float32, 3*channelSize)
	red := data[0:channelSize]
	green := data[channelSize : channelSize*2]
	blue := data[channelSize*2 : channelSize*3]

	bounds := img.Bounds()
	i := 0
	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			red[i] = (float32(r>>8) - cfg.Mean[0]) / cfg.Std[0]
			green[i] = (float32(g>>8) - cfg.Mean[1]) / cfg.Std[1]
			blue[i] = (float32(b>>8) - cfg.Mean[2]) / cfg.Std[2]
			i++
		}
	}

	return &Tensor{
		Data:  data,
		Shape: []int64{1, 3, int64(cfg.Height), int64(cfg.Width)},
	}, nil
}

// scaleShorterSide resizes so that the shorter image side equals target,
// preserving aspect ratio. Lanczos3 matches the quality the inference
// pipeline expects for downscaling photographs.
func scaleShorterSide(img image.Image, target int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w < h {
		return resize.Resize(uint(target), 0, img, resize.Lanczos3)
	}
	return resize.Resize(0, uint(target), img, resize.Lanczos3)
}

// centerCrop extracts a width x height region from the image center.
func centerCrop(img image.Image, width, height int) image.Image {
	bounds := img.Bounds()
	x0 := bounds.Min.X + (bounds.Dx()-width)/2
	y0 := bounds.Min.Y + (bounds.Dy()-height)/2

	cropped := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			cropped.Set(x, y, img.At(x0+x, y0+y))
		}
	}
	return cropped
}
