package union

import "fmt"

// Pair is a property name token together with its value token.
type Pair struct {
	Key   Token
	Value Token
}

// Pairs groups the body of a flat object token stream into ordered
// name/value pairs.
//
// The stream must start with the start-of-object marker. If it does not,
// the result is a single pair of an undefined marker and the offending
// token, returned together with ErrMalformedObject. Tokens after the first
// end-of-object marker are ignored. Nested arrays and objects are rejected.
func Pairs(tokens []Token) ([]Pair, error) {
	if len(tokens) == 0 {
		return []Pair{{Key: Token{Kind: KindUndefined}}}, fmt.Errorf("%w: empty token stream", ErrMalformedObject)
	}
	if tokens[0].Kind != KindStartObject {
		return []Pair{{Key: Token{Kind: KindUndefined}, Value: tokens[0]}},
			fmt.Errorf("%w: expected start of object, got %s", ErrMalformedObject, tokens[0].Kind)
	}

	body, closed := tokens[1:], false
	for i, tok := range body {
		if tok.Kind == KindEndObject {
			body, closed = body[:i], true
			break
		}
	}
	if !closed {
		return nil, fmt.Errorf("%w: missing end of object", ErrMalformedObject)
	}
	if len(body)%2 != 0 {
		return nil, fmt.Errorf("%w: property %s has no value", ErrMalformedObject, body[len(body)-1])
	}

	pairs := make([]Pair, 0, len(body)/2)
	for i := 0; i < len(body); i += 2 {
		key, value := body[i], body[i+1]
		if key.Kind != KindName {
			return nil, fmt.Errorf("%w: expected property name at token %d, got %s", ErrMalformedObject, i+1, key.Kind)
		}
		if !value.Kind.Primitive() {
			return nil, fmt.Errorf("%w: property %q holds unsupported %s value", ErrMalformedObject, key.Text, value.Kind)
		}
		pairs = append(pairs, Pair{Key: key, Value: value})
	}
	return pairs, nil
}
