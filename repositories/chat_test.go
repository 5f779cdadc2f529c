package repositories

import (
	"log/slog"
	"rosterhub/domain/chat"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newMessage(org, from, to, content string, at time.Time) chat.Message {
	return chat.Message{
		ID:             uuid.New(),
		OrganizationID: org,
		From:           from,
		To:             to,
		Content:        content,
		CreatedAt:      at,
	}
}

func TestChatRepository_Store_And_Get_By_Organization_In_Order(t *testing.T) {
	req := require.New(t)
	repository := NewChatRepository(openTestDB(t), logs.GetLoggerFromLevel(slog.LevelDebug))
	at := time.Now().UTC()

	// Given messages stored out of order
	third := newMessage("org1", "alice", "bob", "third", at.Add(2*time.Minute))
	first := newMessage("org1", "bob", "alice", "first", at)
	second := newMessage("org1", "clara", "alice", "second", at.Add(time.Minute))
	other := newMessage("org2", "alice", "bob", "elsewhere", at)
	for _, m := range []chat.Message{third, first, second, other} {
		req.NoError(repository.Store(m))
	}

	// When listing the organization
	messages, err := repository.GetByOrganization("org1")

	// Then they come back chronologically and scoped
	req.NoError(err)
	req.Equal([]chat.Message{first, second, third}, messages)
}

func TestChatRepository_Same_Timestamp_Ordered_By_ID(t *testing.T) {
	req := require.New(t)
	repository := NewChatRepository(openTestDB(t), logs.GetLoggerFromLevel(slog.LevelDebug))
	at := time.Now().UTC()

	a := newMessage("org1", "alice", "bob", "a", at)
	a.ID = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	b := newMessage("org1", "bob", "alice", "b", at)
	b.ID = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	req.NoError(repository.Store(a))
	req.NoError(repository.Store(b))

	messages, err := repository.GetByOrganization("org1")
	req.NoError(err)
	req.Equal([]chat.Message{b, a}, messages)
}

func TestChatRepository_GetByUser_And_GetBetween(t *testing.T) {
	req := require.New(t)
	repository := NewChatRepository(openTestDB(t), logs.GetLoggerFromLevel(slog.LevelDebug))
	at := time.Now().UTC()

	ab := newMessage("org1", "alice", "bob", "hi bob", at)
	ba := newMessage("org1", "bob", "alice", "hi alice", at.Add(time.Second))
	ca := newMessage("org1", "clara", "alice", "hi from clara", at.Add(2*time.Second))
	cb := newMessage("org1", "clara", "bob", "bob only", at.Add(3*time.Second))
	for _, m := range []chat.Message{ab, ba, ca, cb} {
		req.NoError(repository.Store(m))
	}

	// When fetching alice's messages
	byAlice, err := repository.GetByUser("org1", "alice")
	req.NoError(err)
	req.Equal([]chat.Message{ab, ba, ca}, byAlice)

	// When fetching the alice/bob conversation from either side
	between, err := repository.GetBetween("org1", "alice", "bob")
	req.NoError(err)
	req.Equal([]chat.Message{ab, ba}, between)

	reversed, err := repository.GetBetween("org1", "bob", "alice")
	req.NoError(err)
	req.Equal(between, reversed)
}

func TestChatRepository_MarkSeen_Flips_Only_Targeted_Messages(t *testing.T) {
	req := require.New(t)
	repository := NewChatRepository(openTestDB(t), logs.GetLoggerFromLevel(slog.LevelDebug))
	at := time.Now().UTC()

	// Given alice sent two messages to bob, and bob and clara sent others
	ab1 := newMessage("org1", "alice", "bob", "one", at)
	ab2 := newMessage("org1", "alice", "bob", "two", at.Add(time.Second))
	ba := newMessage("org1", "bob", "alice", "reply", at.Add(2*time.Second))
	cb := newMessage("org1", "clara", "bob", "clara", at.Add(3*time.Second))
	for _, m := range []chat.Message{ab1, ab2, ba, cb} {
		req.NoError(repository.Store(m))
	}

	// When bob reads alice's messages
	flipped, err := repository.MarkSeen("org1", "alice", "bob")

	// Then exactly alice's messages to bob are seen
	req.NoError(err)
	req.Len(flipped, 2)
	req.Equal(ab1.ID, flipped[0].ID)
	req.Equal(ab2.ID, flipped[1].ID)
	req.True(flipped[0].Seen)

	all, err := repository.GetByOrganization("org1")
	req.NoError(err)
	seen := map[uuid.UUID]bool{}
	for _, m := range all {
		seen[m.ID] = m.Seen
	}
	req.True(seen[ab1.ID])
	req.True(seen[ab2.ID])
	req.False(seen[ba.ID])
	req.False(seen[cb.ID])

	// And a second call has nothing left to flip
	again, err := repository.MarkSeen("org1", "alice", "bob")
	req.NoError(err)
	req.Empty(again)
}

func TestChatRepository_GetByIDs_Skips_Unknown(t *testing.T) {
	req := require.New(t)
	repository := NewChatRepository(openTestDB(t), logs.GetLoggerFromLevel(slog.LevelDebug))
	at := time.Now().UTC()
	first := newMessage("org1", "alice", "bob", "first", at)
	second := newMessage("org1", "bob", "alice", "second", at.Add(time.Second))
	req.NoError(repository.Store(first))
	req.NoError(repository.Store(second))

	messages, err := repository.GetByIDs([]uuid.UUID{second.ID, uuid.New(), first.ID, second.ID})

	req.NoError(err)
	req.Equal([]chat.Message{first, second}, messages)
}
