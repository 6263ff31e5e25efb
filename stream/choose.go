package stream

// Choose applies pick to each value from in and forwards the results for
// which pick reports true. It combines a type switch and a filter, e.g.
// selecting one variant of a sum type.
func Choose[In, Out any](
	in <-chan In,
	pick func(In) (Out, bool),
) <-chan Out {
	out := make(chan Out)

	go func() {
		defer close(out)
		for val := range in {
			if res, ok := pick(val); ok {
				out <- res
			}
		}
	}()

	return out
}

// As returns a pick function for Choose that selects values of dynamic
// type Out.
func As[In, Out any]() func(In) (Out, bool) {
	return func(v In) (Out, bool) {
		res, ok := any(v).(Out)
		return res, ok
	}
}
