package union

import (
	"errors"
	"math"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// FieldKind is the declared semantic type of a case field.
type FieldKind uint8

// Field kinds, one per scalar setter.
const (
	BoolField FieldKind = iota + 1
	IntField
	FloatField
	StringField
	TimeField
)

func (k FieldKind) String() string {
	switch k {
	case BoolField:
		return "bool"
	case IntField:
		return "int"
	case FloatField:
		return "float"
	case StringField:
		return "string"
	case TimeField:
		return "time"
	default:
		return "field(" + strconv.Itoa(int(k)) + ")"
	}
}

// FieldInfo describes a declared field of a case.
type FieldInfo struct {
	Name     string
	Kind     FieldKind
	Nullable bool
}

func (f FieldInfo) expected() string {
	if f.Nullable {
		return "nullable " + f.Kind.String()
	}
	return f.Kind.String()
}

// Field binds a wire property to a field of the concrete case type V.
// Fields are created with Bool, Int, Float, String, Time and their
// Nullable counterparts; the accessor returns the address of the Go field,
// so V is normally a pointer type.
type Field[V any] struct {
	info  FieldInfo
	write func(V, *jsoniter.Stream) error
	read  func(V, Token) bool
}

// Info describes the field.
func (f Field[V]) Info() FieldInfo {
	return f.info
}

type scalar[T any] struct {
	kind  FieldKind
	write func(*jsoniter.Stream, T) error
	parse func(Token) (T, bool)
}

// RFC 3339 has four year digits.
const (
	minWireYear = 0
	maxWireYear = 9999
)

var (
	errNotFinite = errors.New("not a finite number")
	errYearRange = errors.New("year outside 0000-9999")
)

var (
	boolScalar = scalar[bool]{
		kind: BoolField,
		write: func(s *jsoniter.Stream, v bool) error {
			s.WriteBool(v)
			return nil
		},
		parse: func(tok Token) (bool, bool) {
			return tok.Bool, tok.Kind == KindBool
		},
	}
	intScalar = scalar[int]{
		kind: IntField,
		write: func(s *jsoniter.Stream, v int) error {
			s.WriteInt(v)
			return nil
		},
		parse: func(tok Token) (int, bool) {
			if tok.Kind != KindNumber {
				return 0, false
			}
			n, err := strconv.ParseInt(tok.Text, 10, strconv.IntSize)
			return int(n), err == nil
		},
	}
	floatScalar = scalar[float64]{
		kind: FloatField,
		write: func(s *jsoniter.Stream, v float64) error {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errNotFinite
			}
			s.WriteFloat64(v)
			return nil
		},
		parse: func(tok Token) (float64, bool) {
			if tok.Kind != KindNumber {
				return 0, false
			}
			f, err := strconv.ParseFloat(tok.Text, 64)
			return f, err == nil
		},
	}
	stringScalar = scalar[string]{
		kind: StringField,
		write: func(s *jsoniter.Stream, v string) error {
			s.WriteString(v)
			return nil
		},
		parse: func(tok Token) (string, bool) {
			return tok.Text, tok.Kind == KindString || tok.Kind == KindDate
		},
	}
	timeScalar = scalar[time.Time]{
		kind: TimeField,
		// Written in UTC: RFC 3339 offsets have no seconds, so a zone with a
		// sub-minute offset would not survive the round trip.
		write: func(s *jsoniter.Stream, v time.Time) error {
			v = v.UTC()
			if y := v.Year(); y < minWireYear || y > maxWireYear {
				return errYearRange
			}
			s.WriteString(v.Format(time.RFC3339Nano))
			return nil
		},
		parse: func(tok Token) (time.Time, bool) {
			return tok.Time, tok.Kind == KindDate
		},
	}
)

func newField[V, T any](name string, sc scalar[T], ref func(V) *T) Field[V] {
	return Field[V]{
		info: FieldInfo{Name: name, Kind: sc.kind},
		write: func(v V, s *jsoniter.Stream) error {
			return sc.write(s, *ref(v))
		},
		read: func(v V, tok Token) bool {
			x, ok := sc.parse(tok)
			if ok {
				*ref(v) = x
			}
			return ok
		},
	}
}

func newNullableField[V, T any](name string, sc scalar[T], ref func(V) **T) Field[V] {
	return Field[V]{
		info: FieldInfo{Name: name, Kind: sc.kind, Nullable: true},
		write: func(v V, s *jsoniter.Stream) error {
			p := *ref(v)
			if p == nil {
				s.WriteNil()
				return nil
			}
			return sc.write(s, *p)
		},
		read: func(v V, tok Token) bool {
			if tok.Kind == KindNull {
				*ref(v) = nil
				return true
			}
			x, ok := sc.parse(tok)
			if ok {
				*ref(v) = &x
			}
			return ok
		},
	}
}

// Bool declares a boolean field.
func Bool[V any](name string, ref func(V) *bool) Field[V] {
	return newField(name, boolScalar, ref)
}

// Int declares an integer field. Numbers with a fraction or exponent are
// rejected.
func Int[V any](name string, ref func(V) *int) Field[V] {
	return newField(name, intScalar, ref)
}

// Float declares a floating point field.
func Float[V any](name string, ref func(V) *float64) Field[V] {
	return newField(name, floatScalar, ref)
}

// String declares a string field.
func String[V any](name string, ref func(V) *string) Field[V] {
	return newField(name, stringScalar, ref)
}

// Time declares an instant, written as an RFC 3339 string in UTC. Instants
// outside the years 0000 to 9999 cannot be written.
func Time[V any](name string, ref func(V) *time.Time) Field[V] {
	return newField(name, timeScalar, ref)
}

// NullableBool declares a boolean field that may be null.
func NullableBool[V any](name string, ref func(V) **bool) Field[V] {
	return newNullableField(name, boolScalar, ref)
}

// NullableInt is the null-able form of Int.
func NullableInt[V any](name string, ref func(V) **int) Field[V] {
	return newNullableField(name, intScalar, ref)
}

// NullableFloat is the null-able form of Float.
func NullableFloat[V any](name string, ref func(V) **float64) Field[V] {
	return newNullableField(name, floatScalar, ref)
}

// NullableString declares a string field that may be null.
func NullableString[V any](name string, ref func(V) **string) Field[V] {
	return newNullableField(name, stringScalar, ref)
}

// NullableTime is the null-able form of Time. A nil pointer is written as
// null.
func NullableTime[V any](name string, ref func(V) **time.Time) Field[V] {
	return newNullableField(name, timeScalar, ref)
}
