package union

import (
	"math"
	"time"
)

// Test fixtures: a small closed set of commands.

type command interface {
	isCommand()
}

type ping struct{}

type tick struct {
	At time.Time
}

type note struct {
	Text   string
	Count  int
	Urgent bool
	Ratio  float64
	Due    *time.Time
	Owner  *string
}

type stray struct{}

func (*ping) isCommand()  {}
func (*tick) isCommand()  {}
func (*note) isCommand()  {}
func (*stray) isCommand() {}

const (
	pingName = "github.com/fxsml/unioncase/union.ping"
	tickName = "github.com/fxsml/unioncase/union.tick"
	noteName = "github.com/fxsml/unioncase/union.note"
)

func pingCase() Case[command] {
	return NewCase[command](pingName, func() *ping { return &ping{} })
}

func tickCase() Case[command] {
	return NewCase[command](tickName, func() *tick { return &tick{} },
		Time("At", func(t *tick) *time.Time { return &t.At }),
	)
}

func noteCase() Case[command] {
	return NewCase[command](noteName, func() *note { return &note{} },
		String("Text", func(n *note) *string { return &n.Text }),
		Int("Count", func(n *note) *int { return &n.Count }),
		Bool("Urgent", func(n *note) *bool { return &n.Urgent }),
		Float("Ratio", func(n *note) *float64 { return &n.Ratio }),
		NullableTime("Due", func(n *note) **time.Time { return &n.Due }),
		NullableString("Owner", func(n *note) **string { return &n.Owner }),
	)
}

func testRegistry() *Registry[command] {
	return MustRegistry(pingCase(), tickCase(), noteCase())
}

func ptr[T any](v T) *T {
	return &v
}

var epoch = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

func nan() float64 {
	return math.NaN()
}
