package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Input error classes. These are fatal for the request, surfaced to the
// caller as-is and never retried.
var (
	ErrEmptyInput      = errors.New("empty payload")
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrDecode          = errors.New("undecodable image")
	ErrConversion      = errors.New("unconvertible document")
	ErrInvalidInput    = errors.New("invalid input")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func EmptyInputError() *AppError {
	return NewAppError("EMPTY_INPUT", "payload has zero length", ErrEmptyInput)
}

func PayloadTooLargeError(size, limit int64) *AppError {
	return NewAppError("PAYLOAD_TOO_LARGE",
		fmt.Sprintf("payload is %d bytes, limit is %d", size, limit), ErrPayloadTooLarge)
}

func UnsupportedTypeError(mediaType string) *AppError {
	return NewAppError("UNSUPPORTED_TYPE",
		fmt.Sprintf("unsupported type %q, use JPG, PNG, WEBP or PDF", mediaType), ErrUnsupportedType)
}

func DecodeError(cause error) *AppError {
	return NewAppError("DECODE_ERROR", "cannot decode image", errors.Join(ErrDecode, cause))
}

func ConversionError(cause error) *AppError {
	return NewAppError("CONVERSION_ERROR", "cannot render document pages", errors.Join(ErrConversion, cause))
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
