package union

import (
	"bytes"
	"fmt"
	"reflect"

	jschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/fxsml/unioncase/message"
)

const schemaDialect = "https://json-schema.org/draft/2020-12/schema"

// Schema returns a JSON Schema describing the wire objects of r: one
// alternative per case, each requiring the discriminator and allowing only
// the declared fields.
func Schema[B any](r *Registry[B]) ([]byte, error) {
	alternatives := make([]any, 0, r.Len())
	for _, c := range r.cases {
		props := map[string]any{
			Discriminator: map[string]any{"const": c.name},
		}
		for _, f := range c.fields {
			props[f.Name] = fieldSchema(f)
		}
		alternatives = append(alternatives, map[string]any{
			"type":                 "object",
			"properties":           props,
			"required":             []string{Discriminator},
			"additionalProperties": false,
		})
	}
	doc := map[string]any{
		"$schema": schemaDialect,
		"title":   reflect.TypeFor[B]().String(),
		"oneOf":   alternatives,
	}
	return api.Marshal(doc)
}

func fieldSchema(f FieldInfo) map[string]any {
	var typ string
	s := map[string]any{}
	switch f.Kind {
	case BoolField:
		typ = "boolean"
	case IntField:
		typ = "integer"
	case FloatField:
		typ = "number"
	case StringField:
		typ = "string"
	case TimeField:
		typ = "string"
		s["format"] = "date-time"
	}
	if f.Nullable {
		s["type"] = []string{typ, "null"}
	} else {
		s["type"] = typ
	}
	return s
}

// NewSchemaValidator compiles the schema of r into a validator for
// message.ValidatingMarshaler.
func NewSchemaValidator[B any](r *Registry[B]) (message.DataValidator, error) {
	raw, err := Schema(r)
	if err != nil {
		return nil, err
	}
	t := reflect.TypeFor[B]()
	uri := fmt.Sprintf("urn:unioncase:schema:%s/%s", t.PkgPath(), t.Name())

	doc, err := jschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("union: parsing schema for %s: %w", t, err)
	}
	compiler := jschema.NewCompiler()
	if err := compiler.AddResource(uri, doc); err != nil {
		return nil, fmt.Errorf("union: adding schema for %s: %w", t, err)
	}
	compiled, err := compiler.Compile(uri)
	if err != nil {
		return nil, fmt.Errorf("union: compiling schema for %s: %w", t, err)
	}

	return func(data []byte, _ any) error {
		inst, err := jschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedObject, err)
		}
		return compiled.Validate(inst)
	}, nil
}
