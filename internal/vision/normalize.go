package vision

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Classifier input geometry: one 48x48 grayscale face.
const (
	InputSize     = 48
	InputChannels = 1
)

// DefaultMaxPixels caps width*height of an upload before it is fully decoded.
// Grayscale conversion allocates 4 bytes per source pixel.
const DefaultMaxPixels = 40_000_000

// InputShape is the NHWC shape the classifier expects.
var InputShape = []int64{1, InputSize, InputSize, InputChannels}

// Tensor is a row-major float32 tensor.
type Tensor struct {
	Data  []float32
	Shape []int64
}

// Verify checks t against InputShape and the [0,1] value range.
func (t Tensor) Verify() error {
	if len(t.Shape) != len(InputShape) {
		return fmt.Errorf("%w: rank %d, want %d", ErrShapeMismatch, len(t.Shape), len(InputShape))
	}
	for i, d := range InputShape {
		if t.Shape[i] != d {
			return fmt.Errorf("%w: shape %v, want %v", ErrShapeMismatch, t.Shape, InputShape)
		}
	}
	if want := InputSize * InputSize * InputChannels; len(t.Data) != want {
		return fmt.Errorf("%w: %d values, want %d", ErrShapeMismatch, len(t.Data), want)
	}
	for i, v := range t.Data {
		if !(v >= 0 && v <= 1) {
			return fmt.Errorf("%w: value %f at %d outside [0,1]", ErrShapeMismatch, v, i)
		}
	}
	return nil
}

// Decode parses an uploaded image of at most DefaultMaxPixels.
// JPEG, PNG, GIF, BMP and WebP are accepted.
func Decode(data []byte) (image.Image, error) {
	return DecodeLimited(data, DefaultMaxPixels)
}

// DecodeLimited parses an uploaded image, reading only its header first and
// failing with ErrImageTooLarge when width*height exceeds maxPixels.
// A maxPixels <= 0 disables the check.
func DecodeLimited(data []byte, maxPixels int64) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, ErrEmptyImage
	}
	if n := int64(cfg.Width) * int64(cfg.Height); maxPixels > 0 && n > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d is %d pixels, limit %d", ErrImageTooLarge, cfg.Width, cfg.Height, n, maxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, ErrEmptyImage
	}
	return img, nil
}

// Normalize turns an arbitrary image into the classifier input:
// grayscale, 48x48 (aspect ratio not preserved), scaled to [0,1].
func Normalize(img image.Image) (Tensor, error) {
	if img == nil {
		return Tensor{}, ErrEmptyImage
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return Tensor{}, ErrEmptyImage
	}

	gray := imaging.Grayscale(img)
	resized := imaging.Resize(gray, InputSize, InputSize, imaging.Linear)

	// Grayscale leaves R=G=B; the red channel carries the luminance.
	data := make([]float32, InputSize*InputSize*InputChannels)
	for y := 0; y < InputSize; y++ {
		row := resized.Pix[y*resized.Stride:]
		for x := 0; x < InputSize; x++ {
			data[y*InputSize+x] = float32(row[x*4]) / 255.0
		}
	}

	return Tensor{
		Data:  data,
		Shape: append([]int64(nil), InputShape...),
	}, nil
}

// NormalizeBytes decodes and normalizes an uploaded image of at most DefaultMaxPixels.
func NormalizeBytes(data []byte) (Tensor, error) {
	return NormalizeBytesLimited(data, DefaultMaxPixels)
}

// NormalizeBytesLimited is NormalizeBytes with an explicit pixel limit.
func NormalizeBytesLimited(data []byte, maxPixels int64) (Tensor, error) {
	img, err := DecodeLimited(data, maxPixels)
	if err != nil {
		return Tensor{}, err
	}
	return Normalize(img)
}
