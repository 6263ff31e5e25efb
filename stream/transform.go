package stream

// Filter passes through values for which keep returns true.
func Filter[T any](
	in <-chan T,
	keep func(T) bool,
) <-chan T {
	return Choose(in, func(v T) (T, bool) {
		return v, keep(v)
	})
}

// Transform applies handle to each value from in.
func Transform[In, Out any](
	in <-chan In,
	handle func(In) Out,
) <-chan Out {
	return Choose(in, func(v In) (Out, bool) {
		return handle(v), true
	})
}

// Tap calls observe for each value and forwards it unchanged.
func Tap[T any](
	in <-chan T,
	observe func(T),
) <-chan T {
	return Choose(in, func(v T) (T, bool) {
		observe(v)
		return v, true
	})
}

// Collect receives all values from in into a slice.
func Collect[T any](in <-chan T) []T {
	var res []T
	for v := range in {
		res = append(res, v)
	}
	return res
}
