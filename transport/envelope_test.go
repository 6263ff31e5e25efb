package transport

import (
	"errors"
	"strings"
	"testing"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/fxsml/unioncase/fizzbuzz"
	"github.com/fxsml/unioncase/message"
	"github.com/fxsml/unioncase/union"
)

var ts = time.Date(2024, 5, 1, 12, 0, 3, 5000, time.UTC)

func newEnvelope() *Envelope[fizzbuzz.Command] {
	return NewEnvelope(fizzbuzz.Codec(), EnvelopeConfig{Source: "/test"})
}

func TestEnvelope_ToEvent(t *testing.T) {
	env := newEnvelope()

	ev, err := env.ToEvent(&fizzbuzz.Fizz{Timestamp: ts})
	if err != nil {
		t.Fatalf("ToEvent: %v", err)
	}
	if ev.Type() != "fizzbuzz.fizz" {
		t.Errorf("Type = %q, want fizzbuzz.fizz", ev.Type())
	}
	if ev.Source() != "/test" {
		t.Errorf("Source = %q, want /test", ev.Source())
	}
	if len(ev.ID()) != 36 {
		t.Errorf("ID = %q, want UUID", ev.ID())
	}
	if !ev.Time().Equal(ts) {
		t.Errorf("Time = %v, want command timestamp %v", ev.Time(), ts)
	}
	if ev.DataContentType() != ContentTypeJSON {
		t.Errorf("DataContentType = %q", ev.DataContentType())
	}
	if !strings.HasPrefix(string(ev.Data()), `{"__Case":"`+fizzbuzz.FizzCase+`"`) {
		t.Errorf("Data = %s", ev.Data())
	}
}

func TestEnvelope_ToEventUsesNowForHalt(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	env := NewEnvelope(fizzbuzz.Codec(), EnvelopeConfig{Now: func() time.Time { return now }})

	ev, err := env.ToEvent(&fizzbuzz.Halt{})
	if err != nil {
		t.Fatalf("ToEvent: %v", err)
	}
	if !ev.Time().Equal(now) {
		t.Errorf("Time = %v, want %v", ev.Time(), now)
	}
	if ev.Source() != DefaultSource {
		t.Errorf("Source = %q, want %q", ev.Source(), DefaultSource)
	}
}

func TestEnvelope_RoundTrip(t *testing.T) {
	env := newEnvelope()

	for _, cmd := range []fizzbuzz.Command{
		&fizzbuzz.Fizz{Timestamp: ts},
		&fizzbuzz.Buzz{Timestamp: ts},
		&fizzbuzz.Halt{},
	} {
		t.Run(fizzbuzz.Name(cmd), func(t *testing.T) {
			body, err := env.Marshal(cmd)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			got, attrs, err := env.Decode(body, ContentTypeStructured)
			if err != nil {
				t.Fatalf("Decode(%s): %v", body, err)
			}
			if fizzbuzz.Name(got) != fizzbuzz.Name(cmd) || !got.Time().Equal(cmd.Time()) {
				t.Errorf("got %#v, want %#v", got, cmd)
			}
			if typ, _ := attrs.Type(); typ != env.EventType(caseName(cmd)) {
				t.Errorf("type attribute = %q", typ)
			}
			if _, ok := attrs.ID(); !ok {
				t.Error("id attribute missing")
			}
			if src, _ := attrs.Source(); src != "/test" {
				t.Errorf("source attribute = %q", src)
			}
		})
	}
}

func caseName(cmd fizzbuzz.Command) string {
	cs, _ := fizzbuzz.Registry().CaseOf(cmd)
	return cs.Name()
}

func TestEnvelope_DecodeBareJSON(t *testing.T) {
	env := newEnvelope()

	got, attrs, err := env.Decode([]byte(`{"__Case":"`+fizzbuzz.BuzzCase+`","Timestamp":"2024-05-01T12:00:03Z"}`), ContentTypeJSON)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if _, ok := got.(*fizzbuzz.Buzz); !ok {
		t.Errorf("got %T, want *fizzbuzz.Buzz", got)
	}
	if typ, _ := attrs.Type(); typ != "fizzbuzz.buzz" {
		t.Errorf("type attribute = %q", typ)
	}
	if ct := attrs[message.AttrDataContentType]; ct != ContentTypeJSON {
		t.Errorf("datacontenttype = %v", ct)
	}
}

func TestEnvelope_DecodeErrors(t *testing.T) {
	env := newEnvelope()

	mismatched := cloudevents.NewEvent()
	mismatched.SetID("1")
	mismatched.SetSource("/test")
	mismatched.SetType("fizzbuzz.buzz")
	if err := mismatched.SetData(ContentTypeJSON, map[string]string{"__Case": fizzbuzz.HaltCase}); err != nil {
		t.Fatal(err)
	}
	mismatchedBody, err := mismatched.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name        string
		body        string
		contentType string
		wantErr     error
	}{
		{"structured garbage", `{"specversion":`, ContentTypeStructured, union.ErrMalformedObject},
		{"type mismatch", string(mismatchedBody), ContentTypeStructured, ErrEventType},
		{"bare unknown case", `{"__Case":"nope"}`, ContentTypeJSON, union.ErrUnknownDiscriminator},
		{"bare ambiguous", `{"Timestamp":"2024-05-01T12:00:03Z"}`, "", union.ErrAmbiguousFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, attrs, err := env.Decode([]byte(tt.body), tt.contentType)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != nil || attrs != nil {
				t.Errorf("got %v, %v alongside error", got, attrs)
			}
		})
	}
}

func TestEnvelope_Validator(t *testing.T) {
	validate, err := union.NewSchemaValidator(fizzbuzz.Registry())
	if err != nil {
		t.Fatalf("NewSchemaValidator: %v", err)
	}
	env := NewEnvelope(fizzbuzz.Codec(), EnvelopeConfig{Validator: validate})

	t.Run("passes encoder output", func(t *testing.T) {
		for _, cmd := range []fizzbuzz.Command{&fizzbuzz.Fizz{Timestamp: ts}, &fizzbuzz.Halt{}} {
			body, err := env.Marshal(cmd)
			if err != nil {
				t.Fatalf("Marshal(%s): %v", fizzbuzz.Name(cmd), err)
			}
			if _, _, err := env.Decode(body, ContentTypeStructured); err != nil {
				t.Errorf("Decode(%s): %v", body, err)
			}
		}
	})

	t.Run("rejects data outside the schema", func(t *testing.T) {
		extra := `{"__Case":"` + fizzbuzz.FizzCase + `","Timestamp":"2024-05-01T12:00:03Z","Extra":1}`
		if _, _, err := newEnvelope().Decode([]byte(extra), ContentTypeJSON); err != nil {
			t.Fatalf("without validator: %v", err)
		}

		got, attrs, err := env.Decode([]byte(extra), ContentTypeJSON)
		if !errors.Is(err, message.ErrValidation) {
			t.Fatalf("err = %v, want %v", err, message.ErrValidation)
		}
		if got != nil || attrs != nil {
			t.Errorf("got %v, %v alongside error", got, attrs)
		}
		if kind := union.ErrorKind(err); kind != "validation" {
			t.Errorf("ErrorKind = %q, want validation", kind)
		}
	})

	t.Run("checks structured event data", func(t *testing.T) {
		ev := cloudevents.NewEvent()
		ev.SetID("1")
		ev.SetSource("/test")
		ev.SetType("fizzbuzz.halt")
		if err := ev.SetData(ContentTypeJSON, map[string]any{"__Case": fizzbuzz.HaltCase, "Reason": "done"}); err != nil {
			t.Fatal(err)
		}
		if _, _, err := env.FromEvent(&ev); !errors.Is(err, message.ErrValidation) {
			t.Errorf("err = %v, want %v", err, message.ErrValidation)
		}
	})

	t.Run("checks before publishing", func(t *testing.T) {
		reject := errors.New("halt not allowed")
		env := NewEnvelope(fizzbuzz.Codec(), EnvelopeConfig{
			Validator: func(_ []byte, v any) error {
				if _, ok := v.(*fizzbuzz.Halt); ok {
					return reject
				}
				return nil
			},
		})
		if _, err := env.ToEvent(&fizzbuzz.Buzz{Timestamp: ts}); err != nil {
			t.Fatalf("ToEvent(Buzz): %v", err)
		}
		_, err := env.ToEvent(&fizzbuzz.Halt{})
		if !errors.Is(err, message.ErrValidation) || !errors.Is(err, reject) {
			t.Errorf("err = %v, want %v wrapping %v", err, message.ErrValidation, reject)
		}
	})
}

func TestEnvelope_FromEventNil(t *testing.T) {
	if _, _, err := newEnvelope().FromEvent(nil); err == nil {
		t.Error("expected error for nil event")
	}
}

func TestEnvelope_ToEventRejectsNil(t *testing.T) {
	if _, err := newEnvelope().ToEvent(nil); !errors.Is(err, union.ErrTypeMismatch) {
		t.Errorf("err = %v, want %v", err, union.ErrTypeMismatch)
	}
}

func TestQueueName(t *testing.T) {
	if got := QueueName[fizzbuzz.Command](); got != "github.com/fxsml/unioncase/fizzbuzz.Command" {
		t.Errorf("QueueName = %q", got)
	}
	if got := QueueName[any](); got != "interface {}" {
		t.Errorf("QueueName[any] = %q", got)
	}
}
