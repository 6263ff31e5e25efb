package fizzbuzz

import (
	"sync"
	"time"

	"github.com/fxsml/unioncase/union"
)

// Case names of the command variants. They are the value of the
// discriminator on the wire.
const (
	FizzCase = "github.com/fxsml/unioncase/fizzbuzz.Fizz"
	BuzzCase = "github.com/fxsml/unioncase/fizzbuzz.Buzz"
	HaltCase = "github.com/fxsml/unioncase/fizzbuzz.Halt"
)

// Command is the closed set of messages exchanged by producer and
// detector. The variants are *Fizz, *Buzz and *Halt.
type Command interface {
	// Time reports when the command was created. It is zero for Halt.
	Time() time.Time

	command()
}

// Fizz is published every FizzInterval.
type Fizz struct {
	Timestamp time.Time
}

// Buzz is published every BuzzInterval.
type Buzz struct {
	Timestamp time.Time
}

// Halt tells the consumer that the producer has finished.
type Halt struct{}

func (c *Fizz) Time() time.Time { return c.Timestamp }
func (c *Buzz) Time() time.Time { return c.Timestamp }
func (*Halt) Time() time.Time   { return time.Time{} }

func (*Fizz) command() {}
func (*Buzz) command() {}
func (*Halt) command() {}

// Registry returns the process-wide registry of command variants.
var Registry = sync.OnceValue(newRegistry)

func newRegistry() *union.Registry[Command] {
	return union.MustRegistry(
		union.NewCase[Command](FizzCase, func() *Fizz { return &Fizz{} },
			union.Time("Timestamp", func(c *Fizz) *time.Time { return &c.Timestamp }),
		),
		union.NewCase[Command](BuzzCase, func() *Buzz { return &Buzz{} },
			union.Time("Timestamp", func(c *Buzz) *time.Time { return &c.Timestamp }),
		),
		union.NewCase[Command](HaltCase, func() *Halt { return &Halt{} }),
	)
}

// Codec returns the process-wide codec for commands using the default
// logger and strict fallback resolution.
var Codec = sync.OnceValue(func() *union.Codec[Command] {
	return union.NewCodec(Registry())
})

// Name returns the short name of a command variant: "Fizz", "Buzz" or
// "Halt". It is used as log and metric label.
func Name(cmd Command) string {
	switch cmd.(type) {
	case *Fizz:
		return "Fizz"
	case *Buzz:
		return "Buzz"
	case *Halt:
		return "Halt"
	default:
		return "unknown"
	}
}
