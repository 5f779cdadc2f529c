package workers

import (
	"context"
	"fmt"
	"log/slog"
	"rosterhub/contract"
	"rosterhub/domain/event"
	"time"
)

// EventFanoutWorker forwards bus events to permanent in-process sinks (search index, audit log).
//
// It is a bus subscriber like any gateway connection: best-effort, no replay.
// A sink exceeding sinkTimeout is abandoned for that event and the next one is served.
type EventFanoutWorker struct {
	log         *slog.Logger
	bus         contract.IBus
	sinks       []contract.EventSink
	sinkTimeout time.Duration
}

func NewEventFanoutWorker(log *slog.Logger, bus contract.IBus, sinkTimeout time.Duration, sinks ...contract.EventSink) *EventFanoutWorker {
	return &EventFanoutWorker{log: log, bus: bus, sinks: sinks, sinkTimeout: sinkTimeout}
}

func (w *EventFanoutWorker) Run(ctx context.Context) error {
	created, err := w.bus.Subscribe(ctx, event.ChatCreatedTopic)
	if err != nil {
		return err
	}
	defer created.Close()
	seen, err := w.bus.Subscribe(ctx, event.ChatSeenTopic)
	if err != nil {
		return err
	}
	defer seen.Close()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping event fanout")
			return nil
		case evt, ok := <-created.Events():
			if !ok {
				return closedSubscription(ctx, event.ChatCreatedTopic)
			}
			w.Fanout(ctx, evt)
		case evt, ok := <-seen.Events():
			if !ok {
				return closedSubscription(ctx, event.ChatSeenTopic)
			}
			w.Fanout(ctx, evt)
		}
	}
}

// Fanout hands the event to every sink, one after the other.
func (w *EventFanoutWorker) Fanout(ctx context.Context, evt event.Event) {
	for _, sink := range w.sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		if err := sink.Consume(sinkCtx, evt); err != nil {
			w.log.Warn("Sink failed to consume event",
				"sink", fmt.Sprintf("%T", sink),
				"topic", evt.Topic,
				"chat_id", evt.Chat.ID,
				"error", err)
		}
		cancel()
	}
}

func closedSubscription(ctx context.Context, topic event.Topic) error {
	if ctx.Err() != nil {
		return nil
	}
	return fmt.Errorf("subscription on %s closed", topic)
}
