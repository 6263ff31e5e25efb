// Package message provides the CloudEvents-aligned message envelope shared by
// the codec, the transports and the stream stages.
//
// A [TypedMessage] carries decoded data together with context [Attributes]
// and optional acknowledgment callbacks bridged from the broker. Payload
// serialization is pluggable through [Marshaler]; [ValidatingMarshaler]
// decorates any marshaler with pre-unmarshal and post-marshal checks.
//
//	codec := union.NewCodec(registry)
//	m := message.NewValidatingMarshaler(codec, message.ValidatingMarshalerConfig{
//		MarshalValidation: validator,
//	})
//	data, err := m.Marshal(cmd)
//
// Components log through the [Logger] interface, which *slog.Logger
// satisfies.
package message
