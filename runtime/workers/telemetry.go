package workers

import (
	"context"
	"log/slog"
	"os"
	"rosterhub/contract"
	"rosterhub/domain/event"
	"time"

	"github.com/shirou/gopsutil/process"
)

// Stats is one telemetry snapshot of the gateway process.
type Stats struct {
	RamBytes         uint64
	CpuPercent       float64
	Status           string
	CreatedListeners int
	SeenListeners    int
	EventsPerTopic   map[event.Topic]uint64
}

// TelemetryWorker observes bus traffic through its handlers and periodically
// logs process health along with the size of each listener set.
type TelemetryWorker struct {
	log      *slog.Logger
	bus      contract.IBus
	interval time.Duration
	counter  *event.Counter
	handlers []event.Handler
}

func NewTelemetryWorker(log *slog.Logger,
	bus contract.IBus,
	interval time.Duration,
	counter *event.Counter,
	handlers ...event.Handler) *TelemetryWorker {
	return &TelemetryWorker{
		log:      log,
		bus:      bus,
		interval: interval,
		counter:  counter,
		handlers: handlers,
	}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}
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

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-created.Events():
			if !ok {
				return closedSubscription(ctx, event.ChatCreatedTopic)
			}
			w.handle(evt)
		case evt, ok := <-seen.Events():
			if !ok {
				return closedSubscription(ctx, event.ChatSeenTopic)
			}
			w.handle(evt)
		case <-ticker.C:
			stats, err := w.collect(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "error", err)
				continue
			}
			w.log.Info("Gateway telemetry",
				"ram_bytes", stats.RamBytes,
				"cpu_percent", stats.CpuPercent,
				"status", stats.Status,
				"chat_created_listeners", stats.CreatedListeners,
				"chat_seen_listeners", stats.SeenListeners,
				"events", stats.EventsPerTopic)
		}
	}
}

func (w *TelemetryWorker) handle(evt event.Event) {
	for _, h := range w.handlers {
		h.Handle(evt)
	}
}

// collect excludes the worker's own subscriptions from the listener counts.
func (w *TelemetryWorker) collect(p *process.Process) (Stats, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return Stats{}, err
	}
	cpu, err := p.CPUPercent()
	if err != nil {
		return Stats{}, err
	}
	status, err := p.Status()
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		RamBytes:         memInfo.RSS,
		CpuPercent:       cpu,
		Status:           status,
		CreatedListeners: max(w.bus.SubscriberCount(event.ChatCreatedTopic)-1, 0),
		SeenListeners:    max(w.bus.SubscriberCount(event.ChatSeenTopic)-1, 0),
		EventsPerTopic:   w.counter.Snapshot(),
	}, nil
}
