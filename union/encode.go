package union

import (
	"fmt"
	"reflect"

	jsoniter "github.com/json-iterator/go"
)

// Encode writes v as a wire object: the discriminator first, then the
// declared fields of its case in declaration order.
func (r *Registry[B]) Encode(v B) ([]byte, error) {
	s := api.BorrowStream(nil)
	defer api.ReturnStream(s)

	if err := r.EncodeTo(s, v); err != nil {
		return nil, err
	}
	return append([]byte(nil), s.Buffer()...), nil
}

// EncodeTo writes v to s. Nothing is written when v is not a registered
// case. On an *EncodeError s holds a partial object and must be discarded.
func (r *Registry[B]) EncodeTo(s *jsoniter.Stream, v B) error {
	c, ok := r.CaseOf(v)
	if !ok || isNilPointer(v) {
		return fmt.Errorf("%w: %T is not a case of %s", ErrTypeMismatch, v, reflect.TypeFor[B]())
	}

	s.WriteObjectStart()
	s.WriteObjectField(Discriminator)
	s.WriteString(c.name)
	for i, f := range c.fields {
		s.WriteMore()
		s.WriteObjectField(f.Name)
		if err := c.writers[i](v, s); err != nil {
			return &EncodeError{Case: c.name, Field: f.Name, Reason: err.Error()}
		}
	}
	s.WriteObjectEnd()
	return s.Error
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
