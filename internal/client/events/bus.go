package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/edusync/edusync-client/internal/logging"
)

// Handler receives events. Local events are delivered on the publisher's
// goroutine; remote ones on the bus receive loop.
type Handler func(ctx context.Context, e Event)

// Transport carries encoded events between tabs.
type Transport interface {
	Send(ctx context.Context, data []byte) error
	// Receive starts delivery. The returned channel is closed when ctx is
	// done or the transport is closed.
	Receive(ctx context.Context) (<-chan []byte, error)
	Close() error
}

var ErrBusClosed = errors.New("event bus closed")

type subscription struct {
	id      uint64
	topic   Topic
	handler Handler
}

type Bus struct {
	origin    string
	transport Transport
	log       logging.Logger
	now       func() time.Time

	mu          sync.Mutex
	nextID      uint64
	subs        []subscription
	lastApplied map[string][]byte
	closed      bool

	cancel context.CancelFunc
	done   chan struct{}
}

type Option func(*Bus)

// WithTransport enables cross-tab delivery.
func WithTransport(t Transport) Option {
	return func(b *Bus) { b.transport = t }
}

func WithClock(now func() time.Time) Option {
	return func(b *Bus) { b.now = now }
}

// NewBus creates a bus with a fresh tab origin id.
func NewBus(log logging.Logger, opts ...Option) *Bus {
	b := &Bus{
		origin:      uuid.NewString(),
		log:         log.With("component", "events"),
		now:         time.Now,
		lastApplied: make(map[string][]byte),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Origin is the id stamped on every event this bus publishes.
func (b *Bus) Origin() string { return b.origin }

// Start begins consuming the transport. It is a no-op without one.
func (b *Bus) Start(ctx context.Context) error {
	if b.transport == nil {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	in, err := b.transport.Receive(ctx)
	if err != nil {
		cancel()
		return fmt.Errorf("transport receive: %w", err)
	}

	b.mu.Lock()
	b.cancel = cancel
	b.done = make(chan struct{})
	done := b.done
	b.mu.Unlock()

	go func() {
		defer close(done)
		for data := range in {
			b.receive(ctx, data)
		}
	}()
	return nil
}

// Close stops the receive loop and closes the transport.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	cancel, done := b.cancel, b.done
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	var err error
	if b.transport != nil {
		err = b.transport.Close()
	}
	if done != nil {
		<-done
	}
	return err
}

// Subscribe registers h for topic. The returned function unsubscribes.
func (b *Bus) Subscribe(topic Topic, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, topic: topic, handler: h})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers payload to local subscribers, then broadcasts it to other
// tabs. A broadcast failure is logged and returned; local delivery has
// already happened.
func (b *Bus) Publish(ctx context.Context, topic Topic, scope string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", topic, err)
	}

	e := Event{
		ID:        uuid.NewString(),
		Topic:     topic,
		Scope:     scope,
		Origin:    b.origin,
		Payload:   raw,
		Published: b.now().UTC(),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrBusClosed
	}
	b.lastApplied[dedupKey(topic, scope)] = raw
	handlers := b.handlersLocked(topic)
	b.mu.Unlock()

	for _, h := range handlers {
		h(ctx, e)
	}

	if b.transport == nil {
		return nil
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := b.transport.Send(ctx, data); err != nil {
		b.log.Warn(ctx, "cross-tab broadcast failed", "topic", topic, "err", err)
		return fmt.Errorf("broadcast %s: %w", topic, err)
	}
	return nil
}

func (b *Bus) receive(ctx context.Context, data []byte) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		b.log.Warn(ctx, "dropping malformed event", "err", err)
		return
	}
	if e.Origin == b.origin {
		return
	}
	e.Remote = true

	key := dedupKey(e.Topic, e.Scope)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	if last, ok := b.lastApplied[key]; ok && bytes.Equal(last, e.Payload) {
		b.mu.Unlock()
		b.log.Debug(ctx, "skipping duplicate event", "topic", e.Topic, "scope", e.Scope)
		return
	}
	b.lastApplied[key] = e.Payload
	handlers := b.handlersLocked(e.Topic)
	b.mu.Unlock()

	for _, h := range handlers {
		h(ctx, e)
	}
}

func (b *Bus) handlersLocked(topic Topic) []Handler {
	var hs []Handler
	for _, s := range b.subs {
		if s.topic == topic {
			hs = append(hs, s.handler)
		}
	}
	return hs
}

func dedupKey(topic Topic, scope string) string {
	return string(topic) + "|" + scope
}
