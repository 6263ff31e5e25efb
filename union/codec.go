package union

import (
	"fmt"
	"log/slog"

	jsoniter "github.com/json-iterator/go"

	"github.com/fxsml/unioncase/message"
)

// Codec encodes and decodes the cases of a Registry. It satisfies
// message.Marshaler, so it can be plugged into any transport that
// serializes message data through that hook.
type Codec[B any] struct {
	registry   *Registry[B]
	logger     message.Logger
	firstMatch bool
}

// Option configures a Codec.
type Option[B any] func(*Codec[B])

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger[B any](l message.Logger) Option[B] {
	return func(c *Codec[B]) {
		c.logger = l
	}
}

// WithFirstMatchFallback makes objects without discriminator resolve to
// the first registered case with fields even when several exist. Only
// enable it for producers that predate the discriminator and whose
// payloads have a single possible shape.
func WithFirstMatchFallback[B any]() Option[B] {
	return func(c *Codec[B]) {
		c.firstMatch = true
	}
}

// NewCodec creates a codec for r.
func NewCodec[B any](r *Registry[B], opts ...Option[B]) *Codec[B] {
	c := &Codec[B]{registry: r}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Registry returns the registry the codec encodes against.
func (c *Codec[B]) Registry() *Registry[B] {
	return c.registry
}

// Encode writes v as a wire object.
func (c *Codec[B]) Encode(v B) ([]byte, error) {
	return c.registry.Encode(v)
}

// Decode reads one wire object. Trailing data after the object is an error.
func (c *Codec[B]) Decode(data []byte) (B, error) {
	tokens, err := Tokenize(data)
	if err != nil {
		var zero B
		return zero, err
	}
	return c.DecodeTokens(tokens)
}

// DecodeFrom reads the next wire object from iter, leaving iter positioned
// after it.
func (c *Codec[B]) DecodeFrom(iter *jsoniter.Iterator) (B, error) {
	tokens, err := TokenizeFrom(iter)
	if err != nil {
		var zero B
		return zero, err
	}
	return c.DecodeTokens(tokens)
}

// DecodeTokens resolves and builds a case from a flat object token stream.
func (c *Codec[B]) DecodeTokens(tokens []Token) (B, error) {
	var zero B

	pairs, err := Pairs(tokens)
	if err != nil {
		return zero, err
	}
	cs, how, err := c.registry.resolve(pairs, c.firstMatch)
	if err != nil {
		return zero, err
	}
	switch how {
	case ByShapeFallback:
		if c.firstMatch {
			c.logger.Warn("Resolved case without discriminator by first match",
				"component", "union",
				"case", cs.name)
		} else {
			c.logger.Debug("Resolved case without discriminator",
				"component", "union",
				"case", cs.name,
				"resolution", how.String())
		}
	case ByNullFallback:
		c.logger.Debug("Resolved case without discriminator",
			"component", "union",
			"case", cs.name,
			"resolution", how.String())
	default:
	}
	return cs.Build(pairs)
}

// Marshal encodes v, which must hold a registered case.
func (c *Codec[B]) Marshal(v any) ([]byte, error) {
	b, ok := v.(B)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not a case", ErrTypeMismatch, v)
	}
	return c.Encode(b)
}

// Unmarshal decodes data into v, which must be a *B. v is only assigned on
// success.
func (c *Codec[B]) Unmarshal(data []byte, v any) error {
	dst, ok := v.(*B)
	if !ok || dst == nil {
		return fmt.Errorf("%w: cannot unmarshal into %T", ErrTypeMismatch, v)
	}
	b, err := c.Decode(data)
	if err != nil {
		return err
	}
	*dst = b
	return nil
}

// DataContentType returns "application/json".
func (c *Codec[B]) DataContentType() string {
	return "application/json"
}

var _ message.Marshaler = (*Codec[any])(nil)
