package message_test

import (
	"errors"
	"testing"

	"github.com/fxsml/unioncase/message"
	"github.com/fxsml/unioncase/union"
)

type shape interface{ shape() }

type circle struct{ Radius float64 }

type dot struct{}

func (*circle) shape() {}
func (*dot) shape()    {}

func shapeCodec() *union.Codec[shape] {
	return union.NewCodec(union.MustRegistry(
		union.NewCase[shape]("shapes.Circle", func() *circle { return &circle{} },
			union.Float("Radius", func(c *circle) *float64 { return &c.Radius }),
		),
		union.NewCase[shape]("shapes.Dot", func() *dot { return &dot{} }),
	))
}

var errValidation = errors.New("validation failed")

type failingMarshaler struct{}

func (failingMarshaler) Marshal(any) ([]byte, error) { return nil, errors.New("marshal failed") }
func (failingMarshaler) Unmarshal([]byte, any) error { return errors.New("unmarshal failed") }
func (failingMarshaler) DataContentType() string     { return "application/json" }

func TestValidatingMarshaler_Unmarshal(t *testing.T) {
	t.Run("passes when no validator set", func(t *testing.T) {
		m := message.NewValidatingMarshaler(shapeCodec(), message.ValidatingMarshalerConfig{})

		var out shape
		if err := m.Unmarshal([]byte(`{"__Case":"shapes.Circle","Radius":2}`), &out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c, ok := out.(*circle); !ok || c.Radius != 2 {
			t.Errorf("got %#v, want &circle{Radius:2}", out)
		}
	})

	t.Run("rejects invalid data", func(t *testing.T) {
		m := message.NewValidatingMarshaler(shapeCodec(), message.ValidatingMarshalerConfig{
			UnmarshalValidation: func(data []byte, v any) error { return errValidation },
		})

		var out shape
		err := m.Unmarshal([]byte(`{"__Case":"shapes.Dot"}`), &out)
		if !errors.Is(err, errValidation) {
			t.Errorf("error = %v, want wrapping %v", err, errValidation)
		}
		if !errors.Is(err, message.ErrValidation) {
			t.Errorf("error = %v, want wrapping %v", err, message.ErrValidation)
		}
	})

	t.Run("does not unmarshal when validation fails", func(t *testing.T) {
		m := message.NewValidatingMarshaler(shapeCodec(), message.ValidatingMarshalerConfig{
			UnmarshalValidation: func(data []byte, v any) error { return errValidation },
		})

		var out shape = &dot{}
		_ = m.Unmarshal([]byte(`{"__Case":"shapes.Circle","Radius":1}`), &out)

		if _, ok := out.(*dot); !ok {
			t.Errorf("out = %#v, unmarshal should not run after validation failure", out)
		}
	})
}

func TestValidatingMarshaler_Marshal(t *testing.T) {
	t.Run("passes when no validator set", func(t *testing.T) {
		m := message.NewValidatingMarshaler(shapeCodec(), message.ValidatingMarshalerConfig{})

		data, err := m.Marshal(&circle{Radius: 1.5})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `{"__Case":"shapes.Circle","Radius":1.5}`
		if string(data) != want {
			t.Errorf("data = %s, want %s", data, want)
		}
	})

	t.Run("rejects invalid output", func(t *testing.T) {
		m := message.NewValidatingMarshaler(shapeCodec(), message.ValidatingMarshalerConfig{
			MarshalValidation: func(data []byte, v any) error { return errValidation },
		})

		data, err := m.Marshal(&dot{})
		if !errors.Is(err, errValidation) {
			t.Errorf("error = %v, want wrapping %v", err, errValidation)
		}
		if data != nil {
			t.Errorf("data = %s, want nil", data)
		}
	})

	t.Run("propagates inner marshal error", func(t *testing.T) {
		m := message.NewValidatingMarshaler(failingMarshaler{}, message.ValidatingMarshalerConfig{
			MarshalValidation: func(data []byte, v any) error {
				t.Error("validator should not be called when inner marshal fails")
				return nil
			},
		})

		if _, err := m.Marshal(&dot{}); err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}

func TestValidatingMarshaler_SchemaValidator(t *testing.T) {
	codec := shapeCodec()
	validate, err := union.NewSchemaValidator(codec.Registry())
	if err != nil {
		t.Fatalf("NewSchemaValidator: %v", err)
	}
	m := message.NewValidatingMarshaler(codec, message.ValidatingMarshalerConfig{
		UnmarshalValidation: validate,
		MarshalValidation:   validate,
	})

	data, err := m.Marshal(&circle{Radius: 3})
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	var out shape
	if err := m.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	// Accepted by the codec's fallback, rejected by the schema.
	err = m.Unmarshal([]byte(`{"Radius":3}`), &out)
	if !errors.Is(err, message.ErrValidation) {
		t.Errorf("error = %v, want wrapping %v", err, message.ErrValidation)
	}
}

func TestValidatingMarshaler_DataContentType(t *testing.T) {
	m := message.NewValidatingMarshaler(shapeCodec(), message.ValidatingMarshalerConfig{})

	if ct := m.DataContentType(); ct != "application/json" {
		t.Errorf("DataContentType() = %q, want %q", ct, "application/json")
	}
}
