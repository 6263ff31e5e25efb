package union

// Build allocates an instance of the case and assigns the primitive values
// of the non-discriminator pairs to the declared fields by position. Missing
// values leave fields at their default; surplus values are ignored. A value
// that does not convert to its field type fails with a *FieldError and no
// instance is returned.
func (c Case[B]) Build(pairs []Pair) (B, error) {
	var zero B
	inst := c.alloc()
	for i, v := range primitiveValues(pairs) {
		if i >= len(c.readers) {
			break
		}
		if !c.readers[i](inst, v) {
			return zero, &FieldError{
				Case:     c.name,
				Field:    c.fields[i].Name,
				Expected: c.fields[i].expected(),
				Actual:   v.String(),
			}
		}
	}
	return inst.(B), nil
}
