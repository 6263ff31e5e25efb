// Package stream provides the channel operations used to compose decoded
// messages: selecting variants, fan-in and fan-out, and sliding pairs.
//
// All functions start one goroutine, return a new channel and close it
// after their input is closed. They never close or drain inputs early, so
// every returned channel must be consumed to completion.
//
//	all := stream.Broadcast(commands, 2)
//	fizz := stream.Choose(all[0], asFizz)
//	buzz := stream.Choose(all[1], asBuzz)
//	pairs := stream.Pairwise(stream.Merge(fizz, buzz))
package stream
