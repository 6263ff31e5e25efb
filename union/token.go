package union

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var api = jsoniter.ConfigCompatibleWithStandardLibrary

// Kind classifies a lexical JSON token.
type Kind uint8

// Token kinds. KindArray and KindObject are nested values kept whole;
// KindDate is a string that parses as an RFC 3339 instant.
const (
	KindUndefined Kind = iota
	KindStartObject
	KindEndObject
	KindName
	KindNull
	KindBool
	KindNumber
	KindString
	KindDate
	KindArray
	KindObject
)

var kindNames = [...]string{
	KindUndefined:   "undefined",
	KindStartObject: "start-object",
	KindEndObject:   "end-object",
	KindName:        "name",
	KindNull:        "null",
	KindBool:        "bool",
	KindNumber:      "number",
	KindString:      "string",
	KindDate:        "date",
	KindArray:       "array",
	KindObject:      "object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Primitive reports whether k is a scalar value kind.
func (k Kind) Primitive() bool {
	switch k {
	case KindNull, KindBool, KindNumber, KindString, KindDate:
		return true
	default:
		return false
	}
}

// Token is a single lexical JSON event.
//
// Text holds the property name for KindName, the decoded string for
// KindString and KindDate, the literal for KindNumber and the raw JSON
// of a skipped KindArray or KindObject value.
type Token struct {
	Kind Kind
	Text string
	Bool bool
	Time time.Time
}

// String renders the token the way it appeared on the wire.
func (t Token) String() string {
	switch t.Kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(t.Bool)
	case KindNumber, KindArray, KindObject:
		return t.Text
	case KindName, KindString, KindDate:
		return strconv.Quote(t.Text)
	case KindStartObject:
		return "{"
	case KindEndObject:
		return "}"
	default:
		return t.Kind.String()
	}
}

// Tokenize lexes one JSON document into a flat token stream. An object
// yields a start marker, alternating name and value tokens, and an end
// marker. Any other document yields its single value token.
func Tokenize(data []byte) ([]Token, error) {
	iter := api.BorrowIterator(data)
	defer api.ReturnIterator(iter)

	tokens, err := TokenizeFrom(iter)
	if err != nil {
		return nil, err
	}
	// Only whitespace may follow: reaching the end sets io.EOF, any other
	// byte leaves the error unset.
	iter.WhatIsNext()
	if !errors.Is(iter.Error, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after value", ErrMalformedObject)
	}
	return tokens, nil
}

// TokenizeFrom lexes the next JSON value from iter. Nested arrays and
// objects are kept as a single token so the name/value alternation of the
// enclosing object stays intact.
func TokenizeFrom(iter *jsoniter.Iterator) ([]Token, error) {
	next := iter.WhatIsNext()
	if next != jsoniter.ObjectValue {
		tok := readValue(iter, next)
		if err := lexError(iter); err != nil {
			return nil, err
		}
		return []Token{tok}, nil
	}

	tokens := []Token{{Kind: KindStartObject}}
	iter.ReadMapCB(func(it *jsoniter.Iterator, field string) bool {
		tokens = append(tokens, Token{Kind: KindName, Text: field})
		tokens = append(tokens, readValue(it, it.WhatIsNext()))
		return it.Error == nil
	})
	if err := lexError(iter); err != nil {
		return nil, err
	}
	return append(tokens, Token{Kind: KindEndObject}), nil
}

// lexError reports iter's error as malformed input. Running into the end
// of a top-level number sets io.EOF, which is not an error by itself.
func lexError(iter *jsoniter.Iterator) error {
	if iter.Error == nil || errors.Is(iter.Error, io.EOF) {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrMalformedObject, iter.Error)
}

func readValue(iter *jsoniter.Iterator, next jsoniter.ValueType) Token {
	switch next {
	case jsoniter.StringValue:
		s := iter.ReadString()
		if t, ok := parseDate(s); ok {
			return Token{Kind: KindDate, Text: s, Time: t}
		}
		return Token{Kind: KindString, Text: s}
	case jsoniter.NumberValue:
		// ReadNumber takes any run of number characters.
		text := string(iter.ReadNumber())
		if !json.Valid([]byte(text)) {
			iter.ReportError("tokenize", "invalid number "+strconv.Quote(text))
			return Token{Kind: KindUndefined}
		}
		return Token{Kind: KindNumber, Text: text}
	case jsoniter.BoolValue:
		return Token{Kind: KindBool, Bool: iter.ReadBool()}
	case jsoniter.NilValue:
		iter.ReadNil()
		return Token{Kind: KindNull}
	case jsoniter.ArrayValue:
		return Token{Kind: KindArray, Text: string(iter.SkipAndReturnBytes())}
	case jsoniter.ObjectValue:
		return Token{Kind: KindObject, Text: string(iter.SkipAndReturnBytes())}
	default:
		iter.ReportError("tokenize", "unexpected input")
		return Token{Kind: KindUndefined}
	}
}

// parseDate recognizes RFC 3339 instants. Only strings shaped like
// "YYYY-MM-DDT..." are tried.
func parseDate(s string) (time.Time, bool) {
	if len(s) < len("2006-01-02T15:04:05Z") || s[4] != '-' || s[7] != '-' || (s[10] != 'T' && s[10] != 't') {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
