package message

import (
	"sync"
)

type ackType byte

const (
	ackTypeNone ackType = iota
	ackTypeAck
	ackTypeNack
)

type acking struct {
	mu      sync.Mutex
	ack     func()
	nack    func(error)
	ackType ackType
}

// TypedMessage wraps decoded data with context attributes and
// acknowledgment callbacks. Ack and Nack are mutually exclusive and
// idempotent.
type TypedMessage[T any] struct {
	Data       T
	Attributes Attributes

	a *acking
}

// New creates a message without acknowledgment. Pass nil for attrs if no
// attributes are needed.
func New[T any](data T, attrs Attributes) *TypedMessage[T] {
	if attrs == nil {
		attrs = make(Attributes)
	}
	return &TypedMessage[T]{
		Data:       data,
		Attributes: attrs,
	}
}

// NewWithAcking creates a message whose Ack and Nack invoke the given
// callbacks. If either callback is nil the message behaves as one created
// by New.
func NewWithAcking[T any](data T, attrs Attributes, ack func(), nack func(error)) *TypedMessage[T] {
	msg := New(data, attrs)
	if ack != nil && nack != nil {
		msg.a = &acking{ack: ack, nack: nack}
	}
	return msg
}

// Ack acknowledges successful processing.
// Returns false if the message has no acknowledgment or was already nacked.
func (m *TypedMessage[T]) Ack() bool {
	if m.a == nil {
		return false
	}
	m.a.mu.Lock()
	defer m.a.mu.Unlock()

	switch m.a.ackType {
	case ackTypeAck:
		return true
	case ackTypeNack:
		return false
	default:
	}

	m.a.ack()
	m.a.ackType = ackTypeAck
	return true
}

// Nack rejects the message with the processing error.
// Returns false if the message has no acknowledgment or was already acked.
func (m *TypedMessage[T]) Nack(err error) bool {
	if m.a == nil {
		return false
	}
	m.a.mu.Lock()
	defer m.a.mu.Unlock()

	switch m.a.ackType {
	case ackTypeAck:
		return false
	case ackTypeNack:
		return true
	default:
	}

	m.a.nack(err)
	m.a.ackType = ackTypeNack
	return true
}
