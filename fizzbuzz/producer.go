package fizzbuzz

import (
	"context"
	"log/slog"
	"time"

	"github.com/fxsml/unioncase/message"
)

// Publisher sends commands to the consumer side.
type Publisher interface {
	Publish(ctx context.Context, cmd Command) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, cmd Command) error

func (f PublisherFunc) Publish(ctx context.Context, cmd Command) error {
	return f(ctx, cmd)
}

// ProducerConfig configures a Producer.
type ProducerConfig struct {
	// FizzInterval between two Fizz commands (default: 3s).
	FizzInterval time.Duration
	// BuzzInterval between two Buzz commands (default: 5s).
	BuzzInterval time.Duration
	// RunFor is the time after which a Halt is published and Run returns
	// (default: 50s).
	RunFor time.Duration
	// Now stamps the commands (default: time.Now).
	Now func() time.Time
	// Logger for producer events (default: slog.Default()).
	Logger message.Logger
	// Metrics records published commands (optional).
	Metrics *Metrics
}

func (c ProducerConfig) parse() ProducerConfig {
	if c.FizzInterval <= 0 {
		c.FizzInterval = 3 * time.Second
	}
	if c.BuzzInterval <= 0 {
		c.BuzzInterval = 5 * time.Second
	}
	if c.RunFor <= 0 {
		c.RunFor = 50 * time.Second
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Producer publishes Fizz and Buzz commands on two independent timers.
type Producer struct {
	pub Publisher
	cfg ProducerConfig
}

// NewProducer creates a producer publishing through pub.
func NewProducer(pub Publisher, cfg ProducerConfig) *Producer {
	return &Producer{pub: pub, cfg: cfg.parse()}
}

// Run publishes one Fizz and one Buzz immediately and then one per
// interval. After RunFor it publishes a Halt and returns nil. A cancelled
// context stops Run without a Halt and returns the context error.
//
// Publish failures are logged and do not stop the timers.
func (p *Producer) Run(ctx context.Context) error {
	fizz := time.NewTicker(p.cfg.FizzInterval)
	defer fizz.Stop()
	buzz := time.NewTicker(p.cfg.BuzzInterval)
	defer buzz.Stop()
	deadline := time.NewTimer(p.cfg.RunFor)
	defer deadline.Stop()

	p.cfg.Logger.Info("Producer started",
		"component", "producer",
		"fizz_interval", p.cfg.FizzInterval,
		"buzz_interval", p.cfg.BuzzInterval,
		"run_for", p.cfg.RunFor)

	p.publish(ctx, &Fizz{Timestamp: p.cfg.Now()})
	p.publish(ctx, &Buzz{Timestamp: p.cfg.Now()})

	for {
		select {
		case <-ctx.Done():
			p.cfg.Logger.Info("Producer stopped",
				"component", "producer",
				"error", ctx.Err())
			return ctx.Err()
		case <-deadline.C:
			p.publish(ctx, &Halt{})
			p.cfg.Logger.Info("Producer finished",
				"component", "producer")
			return nil
		case <-fizz.C:
			p.publish(ctx, &Fizz{Timestamp: p.cfg.Now()})
		case <-buzz.C:
			p.publish(ctx, &Buzz{Timestamp: p.cfg.Now()})
		}
	}
}

func (p *Producer) publish(ctx context.Context, cmd Command) {
	if err := p.pub.Publish(ctx, cmd); err != nil {
		p.cfg.Logger.Warn("Failed to publish command",
			"component", "producer",
			"command", Name(cmd),
			"error", err)
		return
	}
	p.cfg.Metrics.Published(cmd)
	p.cfg.Logger.Debug("Published command",
		"component", "producer",
		"command", Name(cmd))
}
