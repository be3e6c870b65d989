package apperrors

import (
	"errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

type ErrorType string

const (
	ErrTypeUnauthenticated ErrorType = "UNAUTHENTICATED"
	ErrTypeNotFound        ErrorType = "NOT_FOUND"
	ErrTypeUnavailable     ErrorType = "UNAVAILABLE"
	ErrTypeInvalidInput    ErrorType = "INVALID_INPUT"
	ErrTypeQuotaExceeded   ErrorType = "QUOTA_EXCEEDED"
)

// DomainError is the single error shape crossing package boundaries. Every
// operation failure surfaces as exactly one DomainError; nothing panics
// through the service layer.
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Stack   []byte
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func (e *DomainError) StackTrace() []byte {
	return e.Stack
}

func New(errType ErrorType, message string, err error) *DomainError {
	var stack []byte
	if err != nil {
		if stackErr, ok := err.(*goerrors.Error); ok {
			stack = stackErr.Stack()
		} else {
			stack = goerrors.Wrap(err, 2).Stack()
		}
	} else {
		stack = goerrors.New(message).Stack()
	}

	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Stack:   stack,
	}
}

func Unauthenticated(message string, err error) *DomainError {
	return New(ErrTypeUnauthenticated, message, err)
}

func NotFound(message string, err error) *DomainError {
	return New(ErrTypeNotFound, message, err)
}

func Unavailable(message string, err error) *DomainError {
	return New(ErrTypeUnavailable, message, err)
}

func InvalidInput(message string, err error) *DomainError {
	return New(ErrTypeInvalidInput, message, err)
}

func QuotaExceeded(message string, err error) *DomainError {
	return New(ErrTypeQuotaExceeded, message, err)
}

// TypeOf extracts the taxonomy type from err, or ErrTypeUnavailable when err
// is not a DomainError.
func TypeOf(err error) ErrorType {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Type
	}
	return ErrTypeUnavailable
}

// IsType reports whether err carries the given taxonomy type.
func IsType(err error, t ErrorType) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Type == t
}
