package transport

import (
	"context"
	"log/slog"
	"sync"

	"github.com/fxsml/unioncase/message"
	"github.com/fxsml/unioncase/union"
)

// MemoryConfig configures a Memory broker.
type MemoryConfig struct {
	// BufferSize is the per-subscriber queue size (default: 64).
	BufferSize int
	// Logger for broker events (default: slog.Default()).
	Logger message.Logger
	// OnDecodeError is called for every message that could not be
	// decoded (optional).
	OnDecodeError func(error)
}

func (c MemoryConfig) parse() MemoryConfig {
	if c.BufferSize <= 0 {
		c.BufferSize = 64
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

type delivery struct {
	body        []byte
	contentType string
}

type subscription struct {
	queue chan delivery
	done  chan struct{}
}

// Memory is an in-process broker. Every published value is encoded as a
// structured CloudEvent and delivered to all current subscribers, which
// decode it again.
type Memory[B any] struct {
	env *Envelope[B]
	cfg MemoryConfig

	mu      sync.Mutex
	subs    map[*subscription]struct{}
	closed  bool
	closing chan struct{}
}

// NewMemory creates an in-process broker.
func NewMemory[B any](env *Envelope[B], cfg MemoryConfig) *Memory[B] {
	return &Memory[B]{
		env:     env,
		cfg:     cfg.parse(),
		subs:    make(map[*subscription]struct{}),
		closing: make(chan struct{}),
	}
}

// Publish encodes v and delivers it to every subscriber. It blocks while a
// subscriber queue is full.
func (m *Memory[B]) Publish(ctx context.Context, v B) error {
	body, err := m.env.Marshal(v)
	if err != nil {
		return err
	}
	return m.PublishRaw(ctx, body, ContentTypeStructured)
}

// PublishRaw delivers an already encoded body. Bodies that are not
// structured CloudEvents are decoded as bare union JSON.
func (m *Memory[B]) PublishRaw(ctx context.Context, body []byte, contentType string) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	subs := make([]*subscription, 0, len(m.subs))
	for sub := range m.subs {
		subs = append(subs, sub)
	}
	m.mu.Unlock()

	d := delivery{body: body, contentType: contentType}
	for _, sub := range subs {
		select {
		case sub.queue <- d:
		case <-sub.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Subscribe returns a channel of decoded values published after the call.
// The channel is closed when ctx is cancelled, or when the broker is
// closed and the queued messages are delivered.
func (m *Memory[B]) Subscribe(ctx context.Context) (<-chan *message.TypedMessage[B], error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	sub := &subscription{
		queue: make(chan delivery, m.cfg.BufferSize),
		done:  make(chan struct{}),
	}
	m.subs[sub] = struct{}{}
	m.mu.Unlock()

	out := make(chan *message.TypedMessage[B])

	go func() {
		defer close(out)
		defer m.unsubscribe(sub)

		for {
			select {
			case <-ctx.Done():
				return
			case d := <-sub.queue:
				if !m.deliver(ctx, out, d) {
					return
				}
			case <-m.closing:
				for {
					select {
					case d := <-sub.queue:
						if !m.deliver(ctx, out, d) {
							return
						}
					default:
						return
					}
				}
			}
		}
	}()

	return out, nil
}

func (m *Memory[B]) deliver(ctx context.Context, out chan<- *message.TypedMessage[B], d delivery) bool {
	v, attrs, err := m.env.Decode(d.body, d.contentType)
	if err != nil {
		m.rejected(err)
		return true
	}
	select {
	case out <- message.New(v, attrs):
		return true
	case <-ctx.Done():
		return false
	}
}

func (m *Memory[B]) rejected(err error) {
	m.cfg.Logger.Warn("Dropped undecodable message",
		"component", "memory",
		"kind", union.ErrorKind(err),
		"error", err)
	if m.cfg.OnDecodeError != nil {
		m.cfg.OnDecodeError(err)
	}
}

func (m *Memory[B]) unsubscribe(sub *subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subs, sub)
	close(sub.done)
}

// Close ends all subscriptions once their queued messages are delivered.
// Publishing afterwards returns ErrClosed.
func (m *Memory[B]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.closing)
	}
	return nil
}
