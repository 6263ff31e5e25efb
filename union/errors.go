package union

import (
	"errors"
	"fmt"

	"github.com/fxsml/unioncase/message"
)

var (
	// ErrTypeMismatch is returned when Encode is called with a value whose
	// runtime type is not a registered case.
	ErrTypeMismatch = errors.New("union: type mismatch")

	// ErrMalformedObject is returned when the input is not a flat JSON
	// object of alternating property names and primitive values.
	ErrMalformedObject = errors.New("union: malformed object")

	// ErrUnknownDiscriminator is returned when the discriminator names no
	// registered case.
	ErrUnknownDiscriminator = errors.New("union: unknown discriminator")

	// ErrAmbiguousFallback is returned when an object without discriminator
	// cannot be resolved to exactly one case.
	ErrAmbiguousFallback = errors.New("union: ambiguous fallback")

	// ErrUnencodable is returned when a field value of a registered case
	// has no wire representation.
	ErrUnencodable = errors.New("union: unencodable value")

	// ErrFieldConversion is returned when a value cannot be converted to the
	// declared type of its field.
	ErrFieldConversion = errors.New("union: field conversion")
)

// UnknownCaseError reports a discriminator value without matching case.
type UnknownCaseError struct {
	Name string
}

func (e *UnknownCaseError) Error() string {
	return fmt.Sprintf("union: unknown discriminator %q", e.Name)
}

func (e *UnknownCaseError) Unwrap() error {
	return ErrUnknownDiscriminator
}

// FieldError reports a value that could not be assigned to a field.
type FieldError struct {
	Case     string
	Field    string
	Expected string
	Actual   string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("union: %s.%s: cannot convert %s to %s", e.Case, e.Field, e.Actual, e.Expected)
}

func (e *FieldError) Unwrap() error {
	return ErrFieldConversion
}

// EncodeError reports a field value that cannot be written.
type EncodeError struct {
	Case   string
	Field  string
	Reason string
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("union: %s.%s: %s", e.Case, e.Field, e.Reason)
}

func (e *EncodeError) Unwrap() error {
	return ErrUnencodable
}

// ErrorKind returns a short label for the kind of codec error, suitable for
// metrics and structured logs. Errors not produced by this package map to
// "other".
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTypeMismatch):
		return "type_mismatch"
	case errors.Is(err, ErrMalformedObject):
		return "malformed_object"
	case errors.Is(err, ErrUnknownDiscriminator):
		return "unknown_discriminator"
	case errors.Is(err, ErrAmbiguousFallback):
		return "ambiguous_fallback"
	case errors.Is(err, ErrFieldConversion):
		return "field_conversion"
	case errors.Is(err, ErrUnencodable):
		return "unencodable"
	case errors.Is(err, message.ErrValidation):
		return "validation"
	default:
		return "other"
	}
}
