package union

import (
	"errors"
	"fmt"
	"reflect"
	"slices"

	jsoniter "github.com/json-iterator/go"
)

// Discriminator is the reserved property naming the case of a wire object.
const Discriminator = "__Case"

// Case is one concrete variant of the base type B. Create it with NewCase.
type Case[B any] struct {
	name    string
	fields  []FieldInfo
	writers []func(any, *jsoniter.Stream) error
	readers []func(any, Token) bool
	alloc   func() any
	match   func(B) bool
	err     error
}

// NewCase declares a case of base type B implemented by the concrete type
// V. The name is the fully-qualified case name written as discriminator.
// newFn allocates a default instance; fields are listed in declaration
// order, which is also their wire order.
//
//	union.NewCase[Command]("example.com/app.Fizz",
//		func() *Fizz { return &Fizz{} },
//		union.Time("Timestamp", func(f *Fizz) *time.Time { return &f.Timestamp }),
//	)
func NewCase[B, V any](name string, newFn func() V, fields ...Field[V]) Case[B] {
	c := Case[B]{
		name:  name,
		alloc: func() any { return newFn() },
		match: func(b B) bool {
			_, ok := any(b).(V)
			return ok
		},
	}
	if _, ok := any(newFn()).(B); !ok {
		c.err = fmt.Errorf("union: case %q: %s does not implement %s", name, reflect.TypeFor[V](), reflect.TypeFor[B]())
	}
	for _, f := range fields {
		c.fields = append(c.fields, f.info)
		c.writers = append(c.writers, func(x any, s *jsoniter.Stream) error { return f.write(x.(V), s) })
		c.readers = append(c.readers, func(x any, tok Token) bool { return f.read(x.(V), tok) })
	}
	return c
}

// Name returns the fully-qualified case name.
func (c Case[B]) Name() string {
	return c.name
}

// Fields returns the declared fields in declaration order.
func (c Case[B]) Fields() []FieldInfo {
	return slices.Clone(c.fields)
}

// NumField returns the number of declared fields.
func (c Case[B]) NumField() int {
	return len(c.fields)
}

// New allocates a default instance of the case.
func (c Case[B]) New() B {
	return c.alloc().(B)
}

func (c Case[B]) validate() error {
	if c.err != nil {
		return c.err
	}
	if c.alloc == nil {
		return errors.New("union: case not created with NewCase")
	}
	if c.name == "" {
		return errors.New("union: case name is empty")
	}
	seen := make(map[string]struct{}, len(c.fields))
	for _, f := range c.fields {
		switch {
		case f.Name == "":
			return fmt.Errorf("union: case %q: field name is empty", c.name)
		case f.Name == Discriminator:
			return fmt.Errorf("union: case %q: field name %q is reserved", c.name, Discriminator)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("union: case %q: duplicate field %q", c.name, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

// Registry is the closed set of cases of base type B. It is immutable after
// construction and safe for concurrent use.
type Registry[B any] struct {
	cases  []Case[B]
	byName map[string]int
}

// NewRegistry builds a registry enumerating cases in the given order.
// An empty registry is valid, but nothing decodes against it.
func NewRegistry[B any](cases ...Case[B]) (*Registry[B], error) {
	r := &Registry[B]{
		cases:  make([]Case[B], 0, len(cases)),
		byName: make(map[string]int, len(cases)),
	}
	for _, c := range cases {
		if err := c.validate(); err != nil {
			return nil, err
		}
		if _, dup := r.byName[c.name]; dup {
			return nil, fmt.Errorf("union: duplicate case %q", c.name)
		}
		r.byName[c.name] = len(r.cases)
		r.cases = append(r.cases, c)
	}
	return r, nil
}

// MustRegistry is like NewRegistry but panics on error.
func MustRegistry[B any](cases ...Case[B]) *Registry[B] {
	r, err := NewRegistry(cases...)
	if err != nil {
		panic(err)
	}
	return r
}

// Len returns the number of cases.
func (r *Registry[B]) Len() int {
	return len(r.cases)
}

// Cases returns the cases in enumeration order.
func (r *Registry[B]) Cases() []Case[B] {
	return slices.Clone(r.cases)
}

// Lookup finds a case by its exact fully-qualified name.
func (r *Registry[B]) Lookup(name string) (Case[B], bool) {
	i, ok := r.byName[name]
	if !ok {
		return Case[B]{}, false
	}
	return r.cases[i], true
}

// CaseOf returns the case whose concrete type is the runtime type of v.
func (r *Registry[B]) CaseOf(v B) (Case[B], bool) {
	for _, c := range r.cases {
		if c.match(v) {
			return c, true
		}
	}
	return Case[B]{}, false
}
