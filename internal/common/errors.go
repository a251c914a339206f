package common

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Store-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")
	ErrorCorrupt       = errors.New("corrupt record")
	ErrorInvalidKey    = errors.New("invalid key")
	ErrorStorage       = errors.New("storage error")

	// Service-level errors.
	ErrorInvalidInput       = errors.New("invalid input")
	ErrorInvalidCredentials = errors.New("invalid credentials")
	ErrorForbidden          = errors.New("forbidden")
	ErrorQuotaExceeded      = errors.New("quota exceeded")
	ErrorInconsistent       = errors.New("inconsistent state")
	ErrorInternal           = errors.New("internal error")

	// Token lifecycle errors.
	ErrorExpired = errors.New("token expired")

	// Dispatch errors.
	ErrorMethodNotAllowed = errors.New("method not allowed")

	// Degraded success: the primary operation completed, some dependents did not.
	ErrorPartialCascade = errors.New("partial cascade failure")
)

// PublicError attaches a caller-facing message to one of the sentinels above.
// errors.Is matches the sentinel.
type PublicError struct {
	Kind    error
	Message string
}

func (e *PublicError) Error() string { return e.Message }

func (e *PublicError) Unwrap() error { return e.Kind }

// Public builds a PublicError.
func Public(kind error, message string) error {
	return &PublicError{Kind: kind, Message: message}
}

// ValidationError lists the request fields that were missing or invalid.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrorInvalidInput }

// CascadeError reports the dependent records that could not be removed.
type CascadeError struct {
	Failed []string
	Causes []error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("%s: %d dependent record(s) not deleted: %s",
		ErrorPartialCascade, len(e.Failed), strings.Join(e.Failed, ", "))
}

func (e *CascadeError) Unwrap() []error {
	return append([]error{ErrorPartialCascade}, e.Causes...)
}
