package domain

import (
	"fmt"
)

// AppError is an error that can be shown to the submitter.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on Code so wrapped copies still compare equal to the template.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// WithMessage returns a copy with a more specific message.
func (e *AppError) WithMessage(msg string) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    msg,
		StatusCode: e.StatusCode,
		Err:        e.Err,
	}
}

var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: 404,
	}

	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "missing API key",
		StatusCode: 401,
	}

	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		Message:    "invalid API key",
		StatusCode: 403,
	}

	ErrNoImage = &AppError{
		Code:       "NO_IMAGE",
		Message:    "No image uploaded.",
		StatusCode: 400,
	}

	ErrImageTooLarge = &AppError{
		Code:       "IMAGE_TOO_LARGE",
		Message:    "Image exceeds the upload size limit",
		StatusCode: 413,
	}

	ErrImageDimensions = &AppError{
		Code:       "IMAGE_DIMENSIONS_TOO_LARGE",
		Message:    "Image dimensions exceed the pixel limit",
		StatusCode: 413,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 400,
	}

	ErrInvalidImage = &AppError{
		Code:       "INVALID_IMAGE",
		Message:    "Invalid image format or corrupted file",
		StatusCode: 422,
	}

	ErrEmptyImage = &AppError{
		Code:       "EMPTY_IMAGE",
		Message:    "Image has no pixels",
		StatusCode: 422,
	}
)
