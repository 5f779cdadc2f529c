//go:generate go run go.uber.org/mock/mockgen -source=chat.go -destination=../mocks/mock_chat_repository.go -package=mocks
package repositories

import (
	"fmt"
	"log/slog"
	"rosterhub/domain/chat"
	"rosterhub/errors"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IChatRepository interface {
	Store(message chat.Message) error
	MarkSeen(organizationID, from, to string) ([]chat.Message, error)
	GetByOrganization(organizationID string) ([]chat.Message, error)
	GetByUser(organizationID, profileID string) ([]chat.Message, error)
	GetBetween(organizationID, userA, userB string) ([]chat.Message, error)
	GetByIDs(ids []uuid.UUID) ([]chat.Message, error)
}

type ChatRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewChatRepository(db *badger.DB, log *slog.Logger) *ChatRepository {
	return &ChatRepository{db: db, log: log}
}

// DiskChat is the on-disk shape of a chat message.
type DiskChat struct {
	ID             string `cbor:"id"`
	OrganizationID string `cbor:"org"`
	From           string `cbor:"from"`
	To             string `cbor:"to"`
	Content        string `cbor:"content"`
	Seen           bool   `cbor:"seen"`
	CreatedAt      int64  `cbor:"at"`
}

func chatKey(id uuid.UUID) []byte {
	return []byte("chat:" + id.String())
}

// Ordering keys use a 19-digit zero padded timestamp so lexicographical order
// is chronological, the id breaks ties between messages of the same nanosecond.
func orgIndexKey(m chat.Message) []byte {
	return []byte(fmt.Sprintf("idx:org:%s:%019d:%s", m.OrganizationID, m.CreatedAt.UnixNano(), m.ID))
}

func userIndexKey(profileID string, m chat.Message) []byte {
	return []byte(fmt.Sprintf("idx:user:%s:%s:%019d:%s", m.OrganizationID, profileID, m.CreatedAt.UnixNano(), m.ID))
}

func unseenPrefix(organizationID, to, from string) string {
	return fmt.Sprintf("idx:unseen:%s:%s:%s:", organizationID, to, from)
}

func unseenKey(m chat.Message) []byte {
	return []byte(unseenPrefix(m.OrganizationID, m.To, m.From) + m.ID.String())
}

// Store persists the record and its indexes in one transaction.
func (r *ChatRepository) Store(message chat.Message) error {
	data, err := marshal(fromMessage(message))
	if err != nil {
		return err
	}
	id := []byte(message.ID.String())
	return r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(chatKey(message.ID), data); err != nil {
			return err
		}
		if err := txn.Set(orgIndexKey(message), id); err != nil {
			return err
		}
		if err := txn.Set(userIndexKey(message.From, message), id); err != nil {
			return err
		}
		if message.To != message.From {
			if err := txn.Set(userIndexKey(message.To, message), id); err != nil {
				return err
			}
		}
		if !message.Seen {
			return txn.Set(unseenKey(message), id)
		}
		return nil
	})
}

// MarkSeen flips every unseen message sent by from to to, all or nothing.
// It returns the flipped messages in conversation order, empty when nothing changed.
func (r *ChatRepository) MarkSeen(organizationID, from, to string) ([]chat.Message, error) {
	var flipped []chat.Message
	err := r.db.Update(func(txn *badger.Txn) error {
		prefix := []byte(unseenPrefix(organizationID, to, from))
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		var pending [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			pending = append(pending, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, key := range pending {
			id, err := uuid.Parse(strings.TrimPrefix(string(key), string(prefix)))
			if err != nil {
				return err
			}
			message, err := getMessage(txn, id)
			if err != nil {
				return err
			}
			message.Seen = true
			data, err := marshal(fromMessage(message))
			if err != nil {
				return err
			}
			if err := txn.Set(chatKey(id), data); err != nil {
				return err
			}
			if err := txn.Delete(key); err != nil {
				return err
			}
			flipped = append(flipped, message)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortMessages(flipped)
	if len(flipped) > 0 {
		r.log.Debug("Messages flipped to seen", "organization_id", organizationID, "from", from, "to", to, "count", len(flipped))
	}
	return flipped, nil
}

func (r *ChatRepository) GetByOrganization(organizationID string) ([]chat.Message, error) {
	return r.scanIndex(fmt.Sprintf("idx:org:%s:", organizationID), nil)
}

func (r *ChatRepository) GetByUser(organizationID, profileID string) ([]chat.Message, error) {
	return r.scanIndex(fmt.Sprintf("idx:user:%s:%s:", organizationID, profileID), nil)
}

// GetBetween returns the conversation of the unordered pair {userA, userB}.
func (r *ChatRepository) GetBetween(organizationID, userA, userB string) ([]chat.Message, error) {
	return r.scanIndex(fmt.Sprintf("idx:user:%s:%s:", organizationID, userA), func(m chat.Message) bool {
		return m.PeerOf(userA) == userB && m.Involves(userB)
	})
}

// GetByIDs skips ids that no longer resolve.
func (r *ChatRepository) GetByIDs(ids []uuid.UUID) ([]chat.Message, error) {
	var messages []chat.Message
	err := r.db.View(func(txn *badger.Txn) error {
		for _, id := range lo.Uniq(ids) {
			message, err := getMessage(txn, id)
			if err == errors.ErrChatNotFound {
				continue
			}
			if err != nil {
				return err
			}
			messages = append(messages, message)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortMessages(messages)
	return messages, nil
}

// scanIndex walks an ordering index in chronological order and resolves each entry.
func (r *ChatRepository) scanIndex(prefix string, keep func(chat.Message) bool) ([]chat.Message, error) {
	var messages []chat.Message
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			key := string(it.Item().Key())
			id, err := uuid.Parse(key[strings.LastIndex(key, ":")+1:])
			if err != nil {
				r.log.Warn("Corrupted index entry skipped", "key", key, "error", err)
				continue
			}
			message, err := getMessage(txn, id)
			if err != nil {
				return err
			}
			if keep == nil || keep(message) {
				messages = append(messages, message)
			}
		}
		return nil
	})
	return messages, err
}

func getMessage(txn *badger.Txn, id uuid.UUID) (chat.Message, error) {
	item, err := txn.Get(chatKey(id))
	if err == badger.ErrKeyNotFound {
		return chat.Message{}, errors.ErrChatNotFound
	}
	if err != nil {
		return chat.Message{}, err
	}
	var disk DiskChat
	if err := item.Value(func(val []byte) error {
		return unmarshal(val, &disk)
	}); err != nil {
		return chat.Message{}, err
	}
	return toMessage(disk)
}

func sortMessages(messages []chat.Message) {
	sort.Slice(messages, func(i, j int) bool { return messages[i].Before(messages[j]) })
}

func fromMessage(m chat.Message) DiskChat {
	return DiskChat{
		ID:             m.ID.String(),
		OrganizationID: m.OrganizationID,
		From:           m.From,
		To:             m.To,
		Content:        m.Content,
		Seen:           m.Seen,
		CreatedAt:      m.CreatedAt.UnixNano(),
	}
}

func toMessage(d DiskChat) (chat.Message, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return chat.Message{}, err
	}
	return chat.Message{
		ID:             id,
		OrganizationID: d.OrganizationID,
		From:           d.From,
		To:             d.To,
		Content:        d.Content,
		Seen:           d.Seen,
		CreatedAt:      time.Unix(0, d.CreatedAt).UTC(),
	}, nil
}

// DecodeChat is used by inspection tools reading raw values.
func DecodeChat(val []byte) (chat.Message, error) {
	var disk DiskChat
	if err := unmarshal(val, &disk); err != nil {
		return chat.Message{}, err
	}
	return toMessage(disk)
}
