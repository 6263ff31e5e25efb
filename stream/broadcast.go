package stream

// Broadcast fans in out to n channels. Each value is handed to every
// output, in output order, before the next value is read, so a slow
// receiver holds back all of them. The outputs are closed after in.
//
// With n < 1 there is nothing to hand values to: in is drained in the
// background and nil is returned.
func Broadcast[T any](
	in <-chan T,
	n int,
) []<-chan T {
	if n < 1 {
		go func() {
			for range in {
			}
		}()
		return nil
	}

	outs := make([]chan T, n)
	recv := make([]<-chan T, n)
	for i := range outs {
		outs[i] = make(chan T)
		recv[i] = outs[i]
	}

	go func() {
		defer closeAll(outs)
		for val := range in {
			for _, out := range outs {
				out <- val
			}
		}
	}()

	return recv
}

func closeAll[T any](chans []chan T) {
	for _, ch := range chans {
		close(ch)
	}
}
