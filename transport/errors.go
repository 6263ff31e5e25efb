package transport

import "errors"

var (
	// ErrEventType is returned when the event type does not match the case
	// of the decoded data.
	ErrEventType = errors.New("transport: event type does not match data")

	// ErrNotConnected is returned by Publish before Connect succeeded.
	ErrNotConnected = errors.New("transport: not connected")

	// ErrClosed is returned when publishing to a closed broker.
	ErrClosed = errors.New("transport: closed")
)
