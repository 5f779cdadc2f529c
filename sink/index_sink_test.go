package sink_test

import (
	"context"
	"log/slog"
	"rosterhub/domain/chat"
	"rosterhub/domain/event"
	"rosterhub/mocks"
	"rosterhub/sink"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func created(org string) event.Event {
	return event.NewChatCreated(org, chat.Chat{
		ID:        uuid.New(),
		From:      chat.ProfileSummary{ID: "alice"},
		To:        chat.ProfileSummary{ID: "bob"},
		Content:   "see you at practice",
		CreatedAt: time.Now().UTC(),
	})
}

func TestIndexSink_Consume(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	mockIndex := mocks.NewMockIChatIndex(ctrl)
	logger := logs.GetLoggerFromLevel(slog.LevelError)
	ctx := context.Background()

	t.Run("Flush triggered by size limit", func(t *testing.T) {
		s := sink.NewIndexSink(mockIndex, logger, 3, 10*time.Second)

		// Expect exactly one batch per organization
		mockIndex.EXPECT().Index("org1", gomock.Any()).
			DoAndReturn(func(_ string, chats ...chat.Chat) error {
				req.Len(chats, 2)
				return nil
			}).Times(1)
		mockIndex.EXPECT().Index("org2", gomock.Any()).Return(nil).Times(1)

		req.NoError(s.Consume(ctx, created("org1")))
		req.NoError(s.Consume(ctx, created("org2")))
		req.NoError(s.Consume(ctx, created("org1")))
	})

	t.Run("Flush triggered by timeout", func(t *testing.T) {
		s := sink.NewIndexSink(mockIndex, logger, 100, 20*time.Millisecond)

		done := make(chan struct{})
		mockIndex.EXPECT().Index("org1", gomock.Any()).
			DoAndReturn(func(_ string, chats ...chat.Chat) error {
				close(done)
				return nil
			}).Times(1)

		req.NoError(s.Consume(ctx, created("org1")))

		select {
		case <-done:
		case <-time.After(time.Second):
			req.Fail("Timer should have flushed the pending chat")
		}
	})

	t.Run("Receipts are not indexed", func(t *testing.T) {
		s := sink.NewIndexSink(mockIndex, logger, 1, time.Second)

		req.NoError(s.Consume(ctx, event.NewChatSeen("org1", chat.Chat{Seen: true})))
		req.NoError(s.Flush())
	})
}
