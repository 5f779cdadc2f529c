//go:generate go run go.uber.org/mock/mockgen -source=chat_index.go -destination=../mocks/mock_chat_index.go -package=mocks
package repositories

import (
	"context"
	"log/slog"
	"rosterhub/domain/chat"
	"rosterhub/domain/search"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
)

type IChatIndex interface {
	Index(organizationID string, chats ...chat.Chat) error
	Search(ctx context.Context, query search.Query) ([]uuid.UUID, error)
}

// ChatIndex is the full-text index of chat contents, fed from the bus.
// Badger stays the source of truth, the index only returns ids.
type ChatIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewChatIndex(writer *bluge.Writer, log *slog.Logger) *ChatIndex {
	return &ChatIndex{writer: writer, log: log}
}

const (
	fieldOrganization = "organization"
	fieldFrom         = "from"
	fieldTo           = "to"
	fieldContent      = "content"
	fieldCreatedAt    = "createdAt"
)

// Index writes the chats in one batch. Indexing a chat twice replaces its document.
func (i *ChatIndex) Index(organizationID string, chats ...chat.Chat) error {
	if len(chats) == 0 {
		return nil
	}
	batch := bluge.NewBatch()
	for _, c := range chats {
		doc := bluge.NewDocument(c.ID.String()).
			AddField(bluge.NewKeywordField(fieldOrganization, organizationID)).
			AddField(bluge.NewKeywordField(fieldFrom, c.From.ID)).
			AddField(bluge.NewKeywordField(fieldTo, c.To.ID)).
			AddField(bluge.NewTextField(fieldContent, c.Content)).
			AddField(bluge.NewDateTimeField(fieldCreatedAt, c.CreatedAt).Sortable())
		batch.Update(doc.ID(), doc)
	}
	return i.writer.Batch(batch)
}

// Search returns matching chat ids, most recent first.
func (i *ChatIndex) Search(ctx context.Context, query search.Query) ([]uuid.UUID, error) {
	if query.IsEmpty() {
		return nil, nil
	}
	q := bluge.NewBooleanQuery().
		AddMust(bluge.NewTermQuery(query.OrganizationID).SetField(fieldOrganization))
	q.AddMust(bluge.NewMatchQuery(query.Terms).
		SetField(fieldContent).
		SetOperator(bluge.MatchQueryOperatorAnd))
	if query.With != "" {
		q.AddMust(bluge.NewBooleanQuery().
			AddShould(bluge.NewTermQuery(query.With).SetField(fieldFrom)).
			AddShould(bluge.NewTermQuery(query.With).SetField(fieldTo)).
			SetMinShould(1))
	}

	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	req := bluge.NewTopNSearch(query.Limit, q).SortBy([]string{"-" + fieldCreatedAt})
	matches, err := reader.Search(ctx, req)
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	match, err := matches.Next()
	for err == nil && match != nil {
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				id, parseErr := uuid.ParseBytes(value)
				if parseErr != nil {
					i.log.Warn("Invalid document id in chat index", "id", string(value))
					return false
				}
				ids = append(ids, id)
				return false
			}
			return true
		})
		if visitErr != nil {
			return nil, visitErr
		}
		match, err = matches.Next()
	}
	if err != nil {
		return nil, err
	}
	return ids, nil
}
