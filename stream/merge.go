package stream

import (
	"sync"
)

// Merge forwards the values of all inputs to one channel. Values keep
// their order per input; there is no order across inputs. Nil inputs are
// skipped, they would never close.
//
// The result is closed only after every input is closed and its last
// value has been received, so a consumer ranging over it sees every value
// even when some inputs close long before others.
func Merge[T any](
	ins ...<-chan T,
) <-chan T {
	out := make(chan T)
	var pending sync.WaitGroup

	for _, in := range ins {
		if in == nil {
			continue
		}
		pending.Add(1)
		go forward(in, out, pending.Done)
	}

	go func() {
		pending.Wait()
		close(out)
	}()

	return out
}

func forward[T any](in <-chan T, out chan<- T, done func()) {
	defer done()
	for val := range in {
		out <- val
	}
}
