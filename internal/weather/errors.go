package weather

import (
	"errors"
	"fmt"
)

// Kind classifies why a lookup or history operation failed.
type Kind int

const (
	KindUnclassified Kind = iota
	KindInvalidInput
	KindInvalidCredentials
	KindNotFound
	KindTransportFailure
	KindStorageFailure
)

// Code returns the stable symbolic code the presentation layer localizes.
func (k Kind) Code() string {
	switch k {
	case KindInvalidInput:
		return "error_input"
	case KindInvalidCredentials:
		return "error_api_key"
	case KindNotFound:
		return "error_city_not_found"
	case KindTransportFailure:
		return "error_connection"
	case KindStorageFailure:
		return "error_storage"
	default:
		return "error_general"
	}
}

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindInvalidCredentials:
		return "invalid credentials"
	case KindNotFound:
		return "not found"
	case KindTransportFailure:
		return "transport failure"
	case KindStorageFailure:
		return "storage failure"
	default:
		return "unclassified"
	}
}

// Error carries a Kind together with the underlying cause, if any.
type Error struct {
	Kind Kind
	Err  error
}

// NewError wraps err with kind.
func NewError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Errorf builds an *Error whose cause is formatted like fmt.Errorf.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Code is shorthand for e.Kind.Code().
func (e *Error) Code() string {
	return e.Kind.Code()
}

// KindOf reports the Kind carried by err. Errors that were never classified
// are KindUnclassified.
func KindOf(err error) Kind {
	var we *Error
	if errors.As(err, &we) {
		return we.Kind
	}
	return KindUnclassified
}
