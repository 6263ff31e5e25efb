package fizzbuzz

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fxsml/unioncase/message"
	"github.com/fxsml/unioncase/stream"
)

// EventKind names what the detector observed.
type EventKind string

const (
	EventFizz     EventKind = "Fizz"
	EventBuzz     EventKind = "Buzz"
	EventFizzBuzz EventKind = "FizzBuzz"
	EventHalt     EventKind = "Halt"
)

// Event is emitted by the detector.
type Event struct {
	Kind EventKind
	// At is the command timestamp, or the later one for FizzBuzz. Zero
	// for Halt.
	At time.Time
}

func (e Event) String() string {
	return string(e.Kind)
}

// DetectorConfig configures a Detector.
type DetectorConfig struct {
	// Window within which two consecutive commands count as simultaneous
	// (default: 50ms).
	Window time.Duration
	// Trace receives one line per Fizz or Buzz, e.g. "[Fizz] 12.345"
	// (optional).
	Trace io.Writer
	// Logger for detector events (default: slog.Default()).
	Logger message.Logger
	// Metrics records received commands and coincidences (optional).
	Metrics *Metrics
}

func (c DetectorConfig) parse() DetectorConfig {
	if c.Window <= 0 {
		c.Window = 50 * time.Millisecond
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Detector turns a stream of commands into events.
type Detector struct {
	cfg DetectorConfig
}

// NewDetector creates a detector.
func NewDetector(cfg DetectorConfig) *Detector {
	return &Detector{cfg: cfg.parse()}
}

// Simultaneous reports whether two commands were created less than window
// apart.
func Simultaneous(earlier, later Command, window time.Duration) bool {
	d := later.Time().Sub(earlier.Time())
	if d < 0 {
		d = -d
	}
	return d < window
}

// Detect consumes in until it is closed. Every Fizz and Buzz yields an
// event of the same kind and a Halt yields a Halt event. Each pair of
// consecutive Fizz/Buzz commands, in arrival order, created within the
// window of each other yields a FizzBuzz. Events of different kinds are
// not ordered relative to each other. The
// returned channel is closed after in is closed and all events are
// delivered.
func (d *Detector) Detect(in <-chan Command) <-chan Event {
	ins := stream.Broadcast(in, 2)

	timed := stream.Tap(stream.Choose(ins[0], func(c Command) (Command, bool) {
		switch c.(type) {
		case *Fizz, *Buzz:
			return c, true
		default:
			return nil, false
		}
	}), d.observe)
	halt := stream.Choose(ins[1], stream.As[Command, *Halt]())

	branches := stream.Broadcast(timed, 3)

	fizz := stream.Transform(stream.Choose(branches[0], stream.As[Command, *Fizz]()), func(c *Fizz) Event {
		return Event{Kind: EventFizz, At: c.Timestamp}
	})
	buzz := stream.Transform(stream.Choose(branches[1], stream.As[Command, *Buzz]()), func(c *Buzz) Event {
		return Event{Kind: EventBuzz, At: c.Timestamp}
	})

	simultaneous := stream.Filter(stream.Pairwise(branches[2]), func(p [2]Command) bool {
		return Simultaneous(p[0], p[1], d.cfg.Window)
	})
	fizzBuzz := stream.Transform(simultaneous, func(p [2]Command) Event {
		d.cfg.Metrics.Coincidence()
		d.cfg.Logger.Debug("Detected coincidence",
			"component", "detector",
			"earlier", Name(p[0]),
			"later", Name(p[1]),
			"delta", p[1].Time().Sub(p[0].Time()))
		return Event{Kind: EventFizzBuzz, At: p[1].Time()}
	})

	halted := stream.Transform(halt, func(*Halt) Event {
		d.cfg.Logger.Info("Received halt",
			"component", "detector")
		return Event{Kind: EventHalt}
	})

	return stream.Merge(fizz, buzz, fizzBuzz, halted)
}

func (d *Detector) observe(c Command) {
	d.cfg.Metrics.Received(c)
	if d.cfg.Trace != nil {
		fmt.Fprintln(d.cfg.Trace, TraceLine(c))
	}
}

// TraceLine formats a command as "[Name] seconds.milliseconds" of its
// timestamp.
func TraceLine(c Command) string {
	t := c.Time()
	return fmt.Sprintf("[%s] %d.%03d", Name(c), t.Second(), t.Nanosecond()/int(time.Millisecond))
}
