package union

import "fmt"

// Resolution tells how a case was chosen for a wire object.
type Resolution uint8

const (
	// ByDiscriminator means the object named its case.
	ByDiscriminator Resolution = iota + 1
	// ByNullFallback means a legacy object holding a single null value
	// resolved to the only case without fields.
	ByNullFallback
	// ByShapeFallback means a legacy object resolved to the case
	// declaring fields.
	ByShapeFallback
)

func (r Resolution) String() string {
	switch r {
	case ByDiscriminator:
		return "discriminator"
	case ByNullFallback:
		return "null-fallback"
	case ByShapeFallback:
		return "shape-fallback"
	default:
		return "unresolved"
	}
}

// Resolve decides which case the pairs represent.
//
// With a discriminator the case is looked up by exact name. Without one,
// legacy objects are resolved heuristically: a single null value selects
// the only case without fields, anything else selects the only case with
// fields. When the heuristic matches zero or several cases the result is
// ErrAmbiguousFallback.
func (r *Registry[B]) Resolve(pairs []Pair) (Case[B], Resolution, error) {
	return r.resolve(pairs, false)
}

// resolve implements Resolve. With firstMatch set, several cases with fields
// resolve to the first of them, as producers predating the discriminator
// expect.
func (r *Registry[B]) resolve(pairs []Pair, firstMatch bool) (Case[B], Resolution, error) {
	name, tagged, err := discriminator(pairs)
	if err != nil {
		return Case[B]{}, 0, err
	}
	if tagged {
		c, ok := r.Lookup(name)
		if !ok {
			return Case[B]{}, 0, &UnknownCaseError{Name: name}
		}
		return c, ByDiscriminator, nil
	}

	values := primitiveValues(pairs)
	if len(values) == 1 && values[0].Kind == KindNull {
		var found []Case[B]
		for _, c := range r.cases {
			if len(c.fields) == 0 {
				found = append(found, c)
			}
		}
		if len(found) != 1 {
			return Case[B]{}, 0, fmt.Errorf("%w: %d cases without fields match a null object", ErrAmbiguousFallback, len(found))
		}
		return found[0], ByNullFallback, nil
	}

	var found []Case[B]
	for _, c := range r.cases {
		if len(c.fields) > 0 {
			found = append(found, c)
		}
	}
	switch {
	case len(found) == 0:
		return Case[B]{}, 0, fmt.Errorf("%w: no case declares fields", ErrAmbiguousFallback)
	case len(found) > 1 && !firstMatch:
		return Case[B]{}, 0, fmt.Errorf("%w: %d cases with fields match an object without %s", ErrAmbiguousFallback, len(found), Discriminator)
	}
	return found[0], ByShapeFallback, nil
}

func discriminator(pairs []Pair) (string, bool, error) {
	var (
		name   string
		tagged bool
	)
	for _, p := range pairs {
		if p.Key.Text != Discriminator {
			continue
		}
		if tagged {
			return "", false, fmt.Errorf("%w: duplicate %s", ErrMalformedObject, Discriminator)
		}
		if p.Value.Kind != KindString && p.Value.Kind != KindDate {
			return "", false, fmt.Errorf("%w: %s must be a string, got %s", ErrMalformedObject, Discriminator, p.Value.Kind)
		}
		name, tagged = p.Value.Text, true
	}
	return name, tagged, nil
}

// primitiveValues returns the scalar values of all non-discriminator pairs
// in encounter order.
func primitiveValues(pairs []Pair) []Token {
	values := make([]Token, 0, len(pairs))
	for _, p := range pairs {
		if p.Key.Text == Discriminator || !p.Value.Kind.Primitive() {
			continue
		}
		values = append(values, p.Value)
	}
	return values
}
