// Package runtime handles event propagation between mutations, live
// subscribers and background workers.
// It orchestrates the system without containing business logic or domain rules.
package runtime

import (
	"context"
	"log/slog"
	"rosterhub/contract"
	"rosterhub/domain/event"
	"sync"

	"github.com/google/uuid"
)

// Bus broadcasts events to the current subscribers of a topic.
//
// It provides best-effort fan-out: no durability, no replay, no retries.
// A subscriber whose buffer is full loses the event. Events published before
// a subscription exists are never seen by it.
//
// Bus is safe for concurrent use by multiple goroutines.
type Bus struct {
	log        *slog.Logger
	registry   *Registry
	bufferSize int
}

func NewBus(log *slog.Logger, registry *Registry, bufferSize int) *Bus {
	return &Bus{log: log, registry: registry, bufferSize: bufferSize}
}

// Publish never blocks on a slow subscriber.
func (b *Bus) Publish(_ context.Context, evt event.Event) error {
	for _, sub := range b.registry.GetSubscriptionsForTopic(evt.Topic) {
		if !sub.deliver(evt) {
			b.log.Warn("Subscriber buffer full, event dropped",
				"subscriber_id", sub.ID,
				"topic", evt.Topic,
				"chat_id", evt.Chat.ID)
		}
	}
	return nil
}

// Subscribe registers a new listener. The subscription is closed when ctx is
// done or when Close is called, whichever comes first.
func (b *Bus) Subscribe(ctx context.Context, topic event.Topic) (contract.ISubscription, error) {
	sub := &Subscription{
		ID:     uuid.New(),
		Topic:  topic,
		events: make(chan event.Event, b.bufferSize),
	}
	sub.onClose = func() { b.registry.Unsubscribe(sub.ID, topic) }
	b.registry.Subscribe(sub)
	sub.stop = context.AfterFunc(ctx, sub.Close)
	b.log.Debug("Subscriber registered", "subscriber_id", sub.ID, "topic", topic)
	return sub, nil
}

func (b *Bus) SubscriberCount(topic event.Topic) int {
	return b.registry.Count(topic)
}

// Subscription is one entry of the listener set. OPEN until Close, then CLOSED.
type Subscription struct {
	ID      uuid.UUID
	Topic   event.Topic
	events  chan event.Event
	mu      sync.Mutex
	closed  bool
	onClose func()
	stop    func() bool
}

func (s *Subscription) Events() <-chan event.Event {
	return s.events
}

// Close deregisters the subscription first, then closes its channel.
func (s *Subscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.stop != nil {
		s.stop()
	}
	if s.onClose != nil {
		s.onClose()
	}
	close(s.events)
}

// deliver returns false only when the buffer is full.
func (s *Subscription) deliver(evt event.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return true
	}
	select {
	case s.events <- evt:
		return true
	default:
		return false
	}
}
