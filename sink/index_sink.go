package sink

import (
	"context"
	"fmt"
	"log/slog"
	"rosterhub/domain/chat"
	"rosterhub/domain/event"
	"rosterhub/repositories"
	"sync"
	"time"
)

// IndexSink feeds the chat search index from the bus.
// Created chats are buffered and written in batches, either when maxBatch
// chats are pending or bufferTimeout after the first pending one.
type IndexSink struct {
	mu            sync.Mutex
	timer         *time.Timer
	index         repositories.IChatIndex
	log           *slog.Logger
	pending       map[string][]chat.Chat // organization -> chats
	size          int
	maxBatch      int
	bufferTimeout time.Duration
}

func NewIndexSink(index repositories.IChatIndex, log *slog.Logger, maxBatch int, bufferTimeout time.Duration) *IndexSink {
	return &IndexSink{
		index:         index,
		log:           log,
		pending:       make(map[string][]chat.Chat),
		maxBatch:      max(maxBatch, 1),
		bufferTimeout: bufferTimeout,
	}
}

// Consume ignores receipts: seen state is not searchable.
func (s *IndexSink) Consume(_ context.Context, e event.Event) error {
	if e.Topic != event.ChatCreatedTopic {
		return nil
	}

	s.mu.Lock()
	s.pending[e.OrganizationID] = append(s.pending[e.OrganizationID], e.Chat)
	s.size++

	if s.size == 1 && s.timer == nil {
		s.timer = time.AfterFunc(s.bufferTimeout, func() {
			if err := s.Flush(); err != nil {
				s.log.Error("Index timeout flush failed", "error", err)
			}
		})
	}
	isFull := s.size >= s.maxBatch
	s.mu.Unlock()

	if isFull {
		return s.Flush()
	}
	return nil
}

// Flush writes every pending chat. It is also called on shutdown.
func (s *IndexSink) Flush() error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.size == 0 {
		s.mu.Unlock()
		return nil
	}
	// Swap the buffer so new chats can be accepted while indexing
	batch := s.pending
	count := s.size
	s.pending = make(map[string][]chat.Chat)
	s.size = 0
	s.mu.Unlock()

	for organizationID, chats := range batch {
		if err := s.index.Index(organizationID, chats...); err != nil {
			return fmt.Errorf("failed to index batch of organization %s: %w", organizationID, err)
		}
	}
	s.log.Debug("Chat batch indexed", "count", count)
	return nil
}
