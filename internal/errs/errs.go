// Package errs defines the coded error taxonomy shared by the profile
// pipeline, the stores and the scheduled tasks.
package errs

import (
	"errors"
	"fmt"
)

// Standard error codes for the application.
const (
	CodeUnknown          = "UNKNOWN"
	CodeInsufficientData = "INSUFFICIENT_DATA"
	CodeExtractionFailed = "EXTRACTION_FAILED"
	CodePersistence      = "PERSISTENCE"
	CodeNotFound         = "NOT_FOUND"
	CodeValidation       = "VALIDATION"
	CodeConfig           = "CONFIG"
)

// Sentinels for errors.Is checks. Any *Error carrying the same code matches.
var (
	ErrInsufficientData = &Error{code: CodeInsufficientData, message: "insufficient data"}
	ErrExtractionFailed = &Error{code: CodeExtractionFailed, message: "feature extraction failed"}
	ErrPersistence      = &Error{code: CodePersistence, message: "persistence error"}
	ErrNotFound         = &Error{code: CodeNotFound, message: "not found"}
	ErrValidation       = &Error{code: CodeValidation, message: "validation error"}
	ErrConfig           = &Error{code: CodeConfig, message: "configuration error"}
)

// ApplicationError is the interface that all our custom errors implement.
type ApplicationError interface {
	error
	Code() string
	Unwrap() error
}

// Error represents a coded application error.
type Error struct {
	code    string
	message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}

	return e.message
}

func (e *Error) Code() string {
	return e.code
}

func (e *Error) Unwrap() error {
	return e.err
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.code == e.code
}

// Code returns the code of the first ApplicationError in err's chain,
// or CodeUnknown if there is none.
func Code(err error) string {
	var appErr ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}

	return CodeUnknown
}

func newError(code, message string, cause error) error {
	return &Error{code: code, message: message, err: cause}
}

// NewInsufficientData reports that a week holds fewer entries than required.
func NewInsufficientData(have, need int) error {
	return newError(CodeInsufficientData, fmt.Sprintf("insufficient data: %d entries, need at least %d", have, need), nil)
}

func NewExtractionError(message string, cause error) error {
	return newError(CodeExtractionFailed, message, cause)
}

func NewPersistenceError(message string, cause error) error {
	return newError(CodePersistence, message, cause)
}

// NewNotFoundError is also used for ownership violations so that the
// existence of another user's rows is not revealed.
func NewNotFoundError(message string) error {
	return newError(CodeNotFound, message, nil)
}

func NewValidationError(message string, cause error) error {
	return newError(CodeValidation, message, cause)
}

func NewConfigError(message string, cause error) error {
	return newError(CodeConfig, message, cause)
}
