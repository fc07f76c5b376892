// Package errors defines shared error types for structstream.
package errors

import (
	"fmt"
	"strings"
)

// ErrorType is an enum for validation error categories.
type ErrorType string

// Error type constants.
const (
	ErrorTypeRequired       ErrorType = "required"        // Required field is missing
	ErrorTypeMismatch       ErrorType = "type_error"      // JSON kind does not match the declared shape
	ErrorTypeEnum           ErrorType = "enum"            // String is not one of the declared values
	ErrorTypeExtraForbidden ErrorType = "extra_forbidden" // Undeclared key present (only when extras are rejected)
	ErrorTypeJSONDecode     ErrorType = "json_decode"     // Text is not well-formed JSON
	ErrorTypeInternal       ErrorType = "internal"        // Internal error
)

// ValidationError represents a validation error with location information.
type ValidationError struct {
	Loc     []string  `json:"loc"`     // Path to the field, e.g., ["items", "[0]", "name"]
	Message string    `json:"message"` // Human-readable error message
	Type    ErrorType `json:"type"`    // Error category
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if len(e.Loc) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", JoinPath(e.Loc), e.Message)
}

// ValidationErrors is a slice of ValidationError that implements error.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (es ValidationErrors) Error() string {
	if len(es) == 0 {
		return "validation errors: (none)"
	}
	if len(es) == 1 {
		return es[0].Error()
	}
	var msgs []string
	for _, e := range es {
		msgs = append(msgs, e.Error())
	}
	return fmt.Sprintf("validation errors (%d): %s", len(es), strings.Join(msgs, "; "))
}

// Unwrap returns the errors as a slice for errors.As/errors.Is compatibility.
func (es ValidationErrors) Unwrap() []error {
	errs := make([]error, len(es))
	for i, e := range es {
		errs[i] = e
	}
	return errs
}

// HasJSONDecodeError reports whether any error is a JSON decode error.
func (es ValidationErrors) HasJSONDecodeError() bool {
	return es.HasType(ErrorTypeJSONDecode)
}

// HasType reports whether any error has the given type.
func (es ValidationErrors) HasType(t ErrorType) bool {
	for _, e := range es {
		if e.Type == t {
			return true
		}
	}
	return false
}

// Report renders the errors as a bullet list, one error per line.
// This is the form fed back to the model on a retry.
func (es ValidationErrors) Report() string {
	var b strings.Builder
	for i, e := range es {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		if len(e.Loc) == 0 {
			b.WriteString("(root)")
		} else {
			b.WriteString(JoinPath(e.Loc))
		}
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// JoinPath joins a path slice into a dot-separated string.
// Array indices like "[0]" are appended without a dot.
func JoinPath(path []string) string {
	if len(path) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(path[0])
	for i := 1; i < len(path); i++ {
		if len(path[i]) > 0 && path[i][0] == '[' {
			b.WriteString(path[i])
		} else {
			b.WriteByte('.')
			b.WriteString(path[i])
		}
	}
	return b.String()
}
