package structstream

import (
	"fmt"

	"github.com/deepankarm/structstream/pkg/internal/errors"
	"github.com/deepankarm/structstream/pkg/internal/jsonvalue"
)

// ValidationError represents a validation error with location information.
type ValidationError = errors.ValidationError

// ValidationErrors is a list of validation errors; it implements error.
type ValidationErrors = errors.ValidationErrors

// ErrorType categorizes a ValidationError.
type ErrorType = errors.ErrorType

// Error type constants.
const (
	ErrorTypeRequired       = errors.ErrorTypeRequired
	ErrorTypeMismatch       = errors.ErrorTypeMismatch
	ErrorTypeEnum           = errors.ErrorTypeEnum
	ErrorTypeExtraForbidden = errors.ErrorTypeExtraForbidden
	ErrorTypeJSONDecode     = errors.ErrorTypeJSONDecode
	ErrorTypeInternal       = errors.ErrorTypeInternal
)

// ParseError reports malformed JSON text with its byte offset.
type ParseError = jsonvalue.ParseError

// TransportError wraps a failure reported by the provider stream.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport error: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ExtractionError is returned when every attempt failed. Errors holds the
// report of the last attempt that reached validation, even if later attempts
// failed in transport; Cause is the transport error when the final attempt
// failed before validation.
type ExtractionError struct {
	ID       string
	Attempts int
	Errors   ValidationErrors
	Raw      string
	Cause    error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction failed after %d attempt(s): %v", e.Attempts, e.Cause)
	}
	return fmt.Sprintf("extraction failed after %d attempt(s): %v", e.Attempts, e.Errors)
}

func (e *ExtractionError) Unwrap() []error {
	var errs []error
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	if len(e.Errors) > 0 {
		errs = append(errs, e.Errors)
	}
	return errs
}
