package fizzbuzz

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type recorder struct {
	mu   sync.Mutex
	cmds []Command
	err  error
}

func (r *recorder) Publish(_ context.Context, cmd Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.cmds = append(r.cmds, cmd)
	return nil
}

func (r *recorder) published() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Command(nil), r.cmds...)
}

func TestProducer_RunPublishesHalt(t *testing.T) {
	rec := &recorder{}
	p := NewProducer(rec, ProducerConfig{
		FizzInterval: 10 * time.Millisecond,
		BuzzInterval: 40 * time.Millisecond,
		RunFor:       125 * time.Millisecond,
		Logger:       discard,
	})

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	cmds := rec.published()
	if len(cmds) < 3 {
		t.Fatalf("published %d commands, want at least 3", len(cmds))
	}
	if _, ok := cmds[0].(*Fizz); !ok {
		t.Errorf("first command = %T, want *Fizz", cmds[0])
	}
	if _, ok := cmds[1].(*Buzz); !ok {
		t.Errorf("second command = %T, want *Buzz", cmds[1])
	}
	if _, ok := cmds[len(cmds)-1].(*Halt); !ok {
		t.Errorf("last command = %T, want *Halt", cmds[len(cmds)-1])
	}

	var fizz, buzz int
	for _, c := range cmds {
		switch c.(type) {
		case *Fizz:
			fizz++
		case *Buzz:
			buzz++
		}
	}
	if fizz <= buzz {
		t.Errorf("fizz = %d, buzz = %d, want more Fizz than Buzz", fizz, buzz)
	}
}

func TestProducer_StampsWithNow(t *testing.T) {
	rec := &recorder{}
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p := NewProducer(rec, ProducerConfig{
		RunFor: 10 * time.Millisecond,
		Now:    func() time.Time { return fixed },
		Logger: discard,
	})

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	cmds := rec.published()
	if len(cmds) != 3 {
		t.Fatalf("published %v, want Fizz, Buzz, Halt", cmds)
	}
	if !cmds[0].Time().Equal(fixed) || !cmds[1].Time().Equal(fixed) {
		t.Errorf("timestamps = %v, %v, want %v", cmds[0].Time(), cmds[1].Time(), fixed)
	}
	if !Simultaneous(cmds[0], cmds[1], 50*time.Millisecond) {
		t.Error("initial Fizz and Buzz should coincide")
	}
}

func TestProducer_ContextCancel(t *testing.T) {
	rec := &recorder{}
	p := NewProducer(rec, ProducerConfig{Logger: discard})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	for _, c := range rec.published() {
		if _, ok := c.(*Halt); ok {
			t.Error("cancelled producer should not publish Halt")
		}
	}
}

func TestProducer_PublishErrorsAreNotFatal(t *testing.T) {
	rec := &recorder{err: errors.New("broker down")}
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	if err != nil {
		t.Fatal(err)
	}
	p := NewProducer(rec, ProducerConfig{RunFor: 10 * time.Millisecond, Logger: discard, Metrics: m})

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := testutil.ToFloat64(m.published.WithLabelValues("Fizz")); got != 0 {
		t.Errorf("published Fizz = %v, want 0", got)
	}
}

func TestProducerConfig_Defaults(t *testing.T) {
	cfg := ProducerConfig{}.parse()
	if cfg.FizzInterval != 3*time.Second || cfg.BuzzInterval != 5*time.Second || cfg.RunFor != 50*time.Second {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Now == nil || cfg.Logger == nil {
		t.Error("Now and Logger should default")
	}

	dcfg := DetectorConfig{}.parse()
	if dcfg.Window != 50*time.Millisecond {
		t.Errorf("Window = %v, want 50ms", dcfg.Window)
	}
}
