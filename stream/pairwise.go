package stream

// Pairwise emits each value together with its predecessor, i.e. a sliding
// window of size two advancing by one. The first value produces no output.
func Pairwise[T any](
	in <-chan T,
) <-chan [2]T {
	out := make(chan [2]T)

	go func() {
		defer close(out)
		var (
			prev T
			seen bool
		)
		for val := range in {
			if seen {
				out <- [2]T{prev, val}
			}
			prev, seen = val, true
		}
	}()

	return out
}
