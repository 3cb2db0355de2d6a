package vision

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode means the uploaded bytes are not a supported image.
	ErrDecode = errors.New("decode image")
	// ErrEmptyImage means the image has zero width or height.
	ErrEmptyImage = errors.New("image has zero width or height")
	// ErrImageTooLarge means the image has more pixels than the decoder allows.
	ErrImageTooLarge = errors.New("image dimensions too large")
	// ErrShapeMismatch means a tensor does not match the classifier input.
	// Seeing it at runtime is a bug in the preprocessing code.
	ErrShapeMismatch = errors.New("tensor shape mismatch")
)

// ModelLoadError is returned when the classifier artifact cannot be loaded.
// The service must not start without a model.
type ModelLoadError struct {
	Path string
	Err  error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("load model %s: %v", e.Path, e.Err)
}

func (e *ModelLoadError) Unwrap() error {
	return e.Err
}
