package event

import (
	"log/slog"
	"time"
)

// LatencyHandler measures the delay between the creation of a chat and the
// moment its event reaches the telemetry subscriber.
type LatencyHandler struct {
	log              *slog.Logger
	latencyThreshold time.Duration
	now              func() time.Time
}

func NewLatencyHandler(log *slog.Logger, latencyThreshold time.Duration) *LatencyHandler {
	return &LatencyHandler{log: log, latencyThreshold: latencyThreshold, now: time.Now}
}

func (h *LatencyHandler) Handle(e Event) {
	if e.Topic != ChatCreatedTopic {
		return
	}
	leadTime := h.now().Sub(e.Chat.CreatedAt)

	h.log.Debug("telemetry: delivery latency",
		"chat_id", e.Chat.ID,
		"from", e.Chat.From.ID,
		"lead_time_ms", leadTime.Milliseconds(),
	)

	if leadTime > h.latencyThreshold {
		h.log.Warn("high latency detected", "chat_id", e.Chat.ID, "lead_time", leadTime)
	}
}
