package event

import (
	"log/slog"
)

// ChatActivityHandler counts every chat event observed on the bus.
// Useful for updating observability metrics, logging, or telemetry.
type ChatActivityHandler struct {
	log     *slog.Logger
	counter *Counter
}

func NewChatActivityHandler(log *slog.Logger, counter *Counter) *ChatActivityHandler {
	return &ChatActivityHandler{log: log, counter: counter}
}

func (h *ChatActivityHandler) Handle(event Event) {
	switch event.Topic {
	case ChatCreatedTopic, ChatSeenTopic:
		h.counter.Increment(event.Topic)
	default:
		h.log.Debug("Unknown topic ignored", "topic", event.Topic)
	}
}
