package transport

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/fxsml/unioncase/message"
	"github.com/fxsml/unioncase/union"
)

// Content types understood by Envelope.Decode.
const (
	ContentTypeStructured = cloudevents.ApplicationCloudEventsJSON
	ContentTypeJSON       = cloudevents.ApplicationJSON
)

// DefaultSource is the CloudEvents source used when none is configured.
const DefaultSource = "/unioncase"

// EnvelopeConfig configures an Envelope.
type EnvelopeConfig struct {
	// Source is the CloudEvents source attribute (default: DefaultSource).
	Source string
	// Naming derives the event type from the case name
	// (default: message.KebabNaming).
	Naming message.NamingStrategy
	// Now stamps events whose value carries no time (default: time.Now).
	Now func() time.Time
	// Validator checks event data after encoding and before decoding,
	// e.g. one built by union.NewSchemaValidator (optional).
	Validator message.DataValidator
}

func (c EnvelopeConfig) parse() EnvelopeConfig {
	if c.Source == "" {
		c.Source = DefaultSource
	}
	if c.Naming == nil {
		c.Naming = message.KebabNaming
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Envelope converts union values to CloudEvents and back.
type Envelope[B any] struct {
	codec *union.Codec[B]
	data  message.Marshaler
	cfg   EnvelopeConfig
}

// NewEnvelope creates an envelope around codec. With a Validator the
// codec is wrapped in a message.ValidatingMarshaler checking both
// directions.
func NewEnvelope[B any](codec *union.Codec[B], cfg EnvelopeConfig) *Envelope[B] {
	cfg = cfg.parse()
	var data message.Marshaler = codec
	if cfg.Validator != nil {
		data = message.NewValidatingMarshaler(codec, message.ValidatingMarshalerConfig{
			MarshalValidation:   cfg.Validator,
			UnmarshalValidation: cfg.Validator,
		})
	}
	return &Envelope[B]{codec: codec, data: data, cfg: cfg}
}

// Codec returns the codec used for event data.
func (e *Envelope[B]) Codec() *union.Codec[B] {
	return e.codec
}

// EventType returns the CloudEvents type for a case name.
func (e *Envelope[B]) EventType(caseName string) string {
	return e.cfg.Naming.TypeName(caseName)
}

// ToEvent encodes v as the data of a new event. The event time is the
// value's own time if it has a non-zero Time method, otherwise now.
func (e *Envelope[B]) ToEvent(v B) (*cloudevents.Event, error) {
	cs, ok := e.codec.Registry().CaseOf(v)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not a case", union.ErrTypeMismatch, v)
	}
	data, err := e.data.Marshal(v)
	if err != nil {
		return nil, err
	}

	ev := cloudevents.NewEvent()
	ev.SetID(message.NewID())
	ev.SetSource(e.cfg.Source)
	ev.SetType(e.EventType(cs.Name()))
	ev.SetTime(e.timeOf(v))
	if err := ev.SetData(ContentTypeJSON, json.RawMessage(data)); err != nil {
		return nil, fmt.Errorf("transport: set data: %w", err)
	}
	if err := ev.Validate(); err != nil {
		return nil, fmt.Errorf("transport: invalid event: %w", err)
	}
	return &ev, nil
}

func (e *Envelope[B]) timeOf(v B) time.Time {
	if t, ok := any(v).(interface{ Time() time.Time }); ok {
		if ts := t.Time(); !ts.IsZero() {
			return ts
		}
	}
	return e.cfg.Now()
}

// FromEvent decodes the event data and returns it with the event
// attributes. The event type must match the decoded case.
func (e *Envelope[B]) FromEvent(ev *cloudevents.Event) (B, message.Attributes, error) {
	var zero B
	if ev == nil {
		return zero, nil, fmt.Errorf("transport: nil event")
	}
	v, err := e.decode(ev.Data())
	if err != nil {
		return zero, nil, err
	}
	if err := e.checkType(v, ev.Type()); err != nil {
		return zero, nil, err
	}
	return v, attributes(ev), nil
}

func (e *Envelope[B]) decode(data []byte) (B, error) {
	var v B
	if err := e.data.Unmarshal(data, &v); err != nil {
		var zero B
		return zero, err
	}
	return v, nil
}

func (e *Envelope[B]) checkType(v B, eventType string) error {
	cs, _ := e.codec.Registry().CaseOf(v)
	if want := e.EventType(cs.Name()); eventType != want {
		return fmt.Errorf("%w: got %q, data is %q", ErrEventType, eventType, want)
	}
	return nil
}

// Marshal encodes v as a structured-mode CloudEvents JSON document.
func (e *Envelope[B]) Marshal(v B) ([]byte, error) {
	ev, err := e.ToEvent(v)
	if err != nil {
		return nil, err
	}
	return ev.MarshalJSON()
}

// Decode reads a message body. Structured CloudEvents are unwrapped;
// any other content type is read as bare union JSON, as sent by
// producers that do not use CloudEvents.
func (e *Envelope[B]) Decode(body []byte, contentType string) (B, message.Attributes, error) {
	var zero B
	if contentType == ContentTypeStructured {
		ev := cloudevents.NewEvent()
		if err := ev.UnmarshalJSON(body); err != nil {
			return zero, nil, fmt.Errorf("%w: %w", union.ErrMalformedObject, err)
		}
		return e.FromEvent(&ev)
	}

	v, err := e.decode(body)
	if err != nil {
		return zero, nil, err
	}
	cs, _ := e.codec.Registry().CaseOf(v)
	attrs := message.Attributes{
		message.AttrType:   e.EventType(cs.Name()),
		message.AttrSource: e.cfg.Source,
	}
	if contentType != "" {
		attrs[message.AttrDataContentType] = contentType
	}
	return v, attrs, nil
}

// QueueName returns the fully qualified name of the base type B, e.g.
// "github.com/fxsml/unioncase/fizzbuzz.Command".
func QueueName[B any]() string {
	t := reflect.TypeFor[B]()
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

func attributes(ev *cloudevents.Event) message.Attributes {
	attrs := message.Attributes{
		message.AttrID:          ev.ID(),
		message.AttrSpecVersion: ev.SpecVersion(),
		message.AttrType:        ev.Type(),
		message.AttrSource:      ev.Source(),
	}
	if dct := ev.DataContentType(); dct != "" {
		attrs[message.AttrDataContentType] = dct
	}
	if ds := ev.DataSchema(); ds != "" {
		attrs[message.AttrDataSchema] = ds
	}
	if subj := ev.Subject(); subj != "" {
		attrs[message.AttrSubject] = subj
	}
	if t := ev.Time(); !t.IsZero() {
		attrs[message.AttrTime] = t
	}
	for k, v := range ev.Extensions() {
		attrs[k] = v
	}
	return attrs
}
