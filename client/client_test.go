package client_test

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"rosterhub/auth"
	"rosterhub/client"
	"rosterhub/domain/event"
	"rosterhub/infrastructure/api"
	"rosterhub/infrastructure/gateway"
	"rosterhub/moderation"
	"rosterhub/repositories"
	"rosterhub/runtime"
	"rosterhub/runtime/workers"
	"rosterhub/services"
	"rosterhub/sink"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const org = "club-1"

type stack struct {
	url string
	bus *runtime.Bus
}

// startStack runs the whole server in process: badger, bluge, bus, services,
// HTTP API, subscription gateway and the indexing fanout.
func startStack(t *testing.T, ctx context.Context) stack {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logs.GetLoggerFromLevel(slog.LevelError)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })

	words, err := moderation.LoadDefault()
	require.NoError(t, err)
	moderator, err := moderation.NewModerator(words.Words, '*', log)
	require.NoError(t, err)

	bus := runtime.NewBus(log, runtime.NewRegistry(), 32)
	index := repositories.NewChatIndex(writer, log)
	tokens := auth.NewTokenManager("integration-secret", time.Hour)
	chats := services.NewChatService(log, repositories.NewChatRepository(db, log), repositories.NewProfileRepository(db), index, bus, moderator, 500)
	accounts := services.NewAuthService(log, repositories.NewProfileRepository(db), tokens)

	fanout := workers.NewEventFanoutWorker(log, bus, time.Second, sink.NewIndexSink(index, log, 1, time.Second))
	go func() { _ = fanout.Run(ctx) }()
	require.Eventually(t, func() bool { return bus.SubscriberCount(event.ChatCreatedTopic) == 1 }, 2*time.Second, 10*time.Millisecond)

	gw := gateway.NewGateway(log, bus, tokens, gateway.Config{
		InitTimeout:    2 * time.Second,
		PingInterval:   time.Second,
		PongWait:       5 * time.Second,
		WriteWait:      time.Second,
		MaxMessageSize: 8192,
		SendBufferSize: 16,
	})
	router := api.NewRouter(log, api.NewHandler(log, chats, accounts, tokens), func(r *gin.Engine) {
		r.GET("/graphql/ws", gin.WrapH(gw))
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return stack{url: srv.URL, bus: bus}
}

func newMember(t *testing.T, ctx context.Context, s stack, name, email string) *client.Client {
	t.Helper()
	c := client.New(logs.GetLoggerFromLevel(slog.LevelError), client.Config{BaseURL: s.url, OrganizationID: org, Timeout: 5 * time.Second})
	_, err := c.Register(ctx, name, email, "ComplexPass123!")
	require.NoError(t, err)
	return c
}

func waitUpdate(t *testing.T, updates <-chan client.Update, accept func(client.Update) bool) client.Update {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case u := <-updates:
			if accept(u) {
				return u
			}
		case <-deadline:
			t.Fatal("no matching update received")
			return client.Update{}
		}
	}
}

func TestClient_Chat_Then_Seen_Round_Trip(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := startStack(t, ctx)
	createdBase := s.bus.SubscriberCount(event.ChatCreatedTopic)
	seenBase := s.bus.SubscriberCount(event.ChatSeenTopic)

	// Given alice and bob, both members of the club, both listening
	alice := newMember(t, ctx, s, "Alice", "alice@example.com")
	bob := newMember(t, ctx, s, "Bob", "bob@example.com")
	aliceID, bobID := alice.Session().ProfileID, bob.Session().ProfileID

	aliceUpdates := make(chan client.Update, 16)
	bobUpdates := make(chan client.Update, 16)
	for c, updates := range map[*client.Client]chan client.Update{alice: aliceUpdates, bob: bobUpdates} {
		req.NoError(c.FetchHistory(ctx))
		req.NoError(c.Subscribe(ctx))
		go func() { _ = c.Listen(ctx, updates) }()
	}
	req.Eventually(func() bool {
		return s.bus.SubscriberCount(event.ChatCreatedTopic) == createdBase+2 &&
			s.bus.SubscriberCount(event.ChatSeenTopic) == seenBase+2
	}, 2*time.Second, 10*time.Millisecond)

	// When bob writes to alice
	created, err := bob.Send(ctx, aliceID, "  practice moved to 6  ")
	req.NoError(err)
	req.Equal("practice moved to 6", created.Content)
	req.False(created.Seen)

	// Then alice gets it live and counts it as unseen
	got := waitUpdate(t, aliceUpdates, func(u client.Update) bool { return u.Created != nil })
	req.Equal(created.ID, got.Created.ID)
	req.Equal(bobID, got.Peer)
	req.Equal(1, alice.Assembler().Unseen(bobID))

	// When alice opens the conversation
	req.NoError(alice.MarkSeen(ctx, bobID))
	req.Zero(alice.Assembler().Unseen(bobID))

	// Then bob receives the receipt from alice and flags his message
	receipt := waitUpdate(t, bobUpdates, func(u client.Update) bool { return u.Seen != nil })
	req.Equal(aliceID, receipt.Seen.From.ID)
	req.Equal(bobID, receipt.Seen.To.ID)
	thread := bob.Assembler().Thread(aliceID)
	req.Len(thread, 1)
	req.True(thread[0].Chat.Seen)
	req.False(thread[0].Pending)

	// And a second mark is a silent no-op
	req.NoError(alice.MarkSeen(ctx, bobID))

	// A refetch merges without duplicates
	req.NoError(alice.FetchHistory(ctx))
	req.Len(alice.Assembler().Thread(bobID), 1)

	// The indexing fanout makes the chat searchable
	req.Eventually(func() bool {
		found, err := alice.Search(ctx, "practice")
		return err == nil && len(found) == 1
	}, 3*time.Second, 50*time.Millisecond)

	// Closing both clients releases their bus subscriptions
	req.NoError(alice.Close())
	req.NoError(bob.Close())
	req.Eventually(func() bool {
		return s.bus.SubscriberCount(event.ChatCreatedTopic) == createdBase &&
			s.bus.SubscriberCount(event.ChatSeenTopic) == seenBase
	}, 2*time.Second, 10*time.Millisecond)
}

func TestClient_Send_Rejected_Drops_Echo(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := startStack(t, ctx)
	alice := newMember(t, ctx, s, "Alice", "alice@example.com")

	_, err := alice.Send(ctx, "nobody", "   ")

	var apiErr *client.APIError
	req.ErrorAs(err, &apiErr)
	req.Equal("BAD_USER_INPUT", apiErr.Code)
	req.Empty(alice.Assembler().Thread("nobody"))
}

func TestClient_Requires_Login(t *testing.T) {
	req := require.New(t)
	c := client.New(logs.GetLoggerFromLevel(slog.LevelError), client.Config{BaseURL: "http://127.0.0.1:1", OrganizationID: org})

	req.Error(c.FetchHistory(context.Background()))
	req.Error(c.Subscribe(context.Background()))
}
