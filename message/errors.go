package message

import "errors"

// ErrNoMarshaler is returned when a component needs a Marshaler but none
// was configured.
var ErrNoMarshaler = errors.New("message: no marshaler configured")
