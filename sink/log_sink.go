package sink

import (
	"context"
	"log/slog"
	"rosterhub/domain/event"
)

// LogSink writes one audit line per bus event. Contents are never logged.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) LogSink {
	return LogSink{log: log}
}

func (l LogSink) Consume(ctx context.Context, e event.Event) error {
	l.log.LogAttrs(ctx, slog.LevelInfo, "Chat event",
		slog.String("topic", string(e.Topic)),
		slog.String("organization_id", e.OrganizationID),
		slog.String("chat_id", e.Chat.ID.String()),
		slog.String("from", e.Chat.From.ID),
		slog.String("to", e.Chat.To.ID),
		slog.Bool("seen", e.Chat.Seen),
	)
	return nil
}
