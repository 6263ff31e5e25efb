// Package fizzbuzz is a small messaging program built on the union codec.
//
// A [Producer] publishes [Fizz] every three seconds and [Buzz] every five
// seconds through a [Publisher], then a [Halt] once its run time is over.
// A [Detector] consumes the decoded commands, reports every Fizz and Buzz
// and detects a FizzBuzz when two consecutive commands were created within
// a short window of each other.
//
// All commands share one queue and travel as discriminated-union JSON
// produced by [Codec]:
//
//	{"__Case":"github.com/fxsml/unioncase/fizzbuzz.Fizz","Timestamp":"2024-05-01T12:00:03.000000001Z"}
package fizzbuzz
