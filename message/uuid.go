package message

import "github.com/google/uuid"

// IDGenerator generates unique message IDs.
type IDGenerator func() string

// DefaultIDGenerator is used by transports for the CloudEvents id
// attribute. Tests may replace it with a deterministic generator.
var DefaultIDGenerator IDGenerator = uuid.NewString

// NewID returns a new RFC 4122 UUID v4 string using DefaultIDGenerator.
func NewID() string {
	return DefaultIDGenerator()
}
