package message

import (
	"errors"
	"fmt"
)

// ErrValidation marks data rejected by a DataValidator.
var ErrValidation = errors.New("message: validation failed")

// DataValidator validates raw data bytes. v is the value being marshaled,
// or the target being unmarshaled into.
type DataValidator func(data []byte, v any) error

// ValidatingMarshalerConfig configures a ValidatingMarshaler.
type ValidatingMarshalerConfig struct {
	// UnmarshalValidation checks raw data before it is decoded.
	// If nil, no pre-unmarshal validation is performed.
	UnmarshalValidation DataValidator

	// MarshalValidation checks encoded data before it is returned.
	// If nil, no post-marshal validation is performed.
	MarshalValidation DataValidator
}

// ValidatingMarshaler decorates a Marshaler with data validation. Errors
// from a validator wrap both ErrValidation and the validator's own error.
type ValidatingMarshaler struct {
	inner Marshaler
	cfg   ValidatingMarshalerConfig
}

// NewValidatingMarshaler creates a marshaler that decorates inner with validation.
func NewValidatingMarshaler(inner Marshaler, cfg ValidatingMarshalerConfig) *ValidatingMarshaler {
	return &ValidatingMarshaler{inner: inner, cfg: cfg}
}

// Marshal encodes v, then validates the result.
func (m *ValidatingMarshaler) Marshal(v any) ([]byte, error) {
	data, err := m.inner.Marshal(v)
	if err != nil {
		return nil, err
	}
	if err := check("marshal", m.cfg.MarshalValidation, data, v); err != nil {
		return nil, err
	}
	return data, nil
}

// Unmarshal validates data, then decodes it into v. v is left untouched
// when validation fails.
func (m *ValidatingMarshaler) Unmarshal(data []byte, v any) error {
	if err := check("unmarshal", m.cfg.UnmarshalValidation, data, v); err != nil {
		return err
	}
	return m.inner.Unmarshal(data, v)
}

// DataContentType delegates to the inner marshaler.
func (m *ValidatingMarshaler) DataContentType() string {
	return m.inner.DataContentType()
}

func check(stage string, validate DataValidator, data []byte, v any) error {
	if validate == nil {
		return nil
	}
	if err := validate(data, v); err != nil {
		return fmt.Errorf("%s: %w: %w", stage, ErrValidation, err)
	}
	return nil
}

var _ Marshaler = (*ValidatingMarshaler)(nil)
