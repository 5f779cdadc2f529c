//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"rosterhub/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is a permanent in-process consumer of bus events (index, logs...).
type EventSink interface {
	Consume(ctx context.Context, e event.Event) error
}

// IBus is the pub/sub layer between mutations and live subscribers.
// Delivery is at-most-once per connected subscriber, without replay.
type IBus interface {
	Publish(ctx context.Context, evt event.Event) error
	Subscribe(ctx context.Context, topic event.Topic) (ISubscription, error)
	SubscriberCount(topic event.Topic) int
}

// ISubscription yields the events published after its creation until Close.
// Close is idempotent and closes the Events channel.
type ISubscription interface {
	Events() <-chan event.Event
	Close()
}
