package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"rosterhub/contract"
	"rosterhub/domain/event"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisChannelPrefix = "rosterhub:"

// RedisBus shares events between several gateway instances.
// Publish goes through Redis, delivery to local subscribers goes through the
// embedded in-process Bus fed by Run.
type RedisBus struct {
	log    *slog.Logger
	client *redis.Client
	local  *Bus
	topics []event.Topic
}

func NewRedisBus(log *slog.Logger, client *redis.Client, local *Bus) *RedisBus {
	return &RedisBus{
		log:    log,
		client: client,
		local:  local,
		topics: []event.Topic{event.ChatCreatedTopic, event.ChatSeenTopic},
	}
}

func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func (r *RedisBus) Publish(ctx context.Context, evt event.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return r.client.Publish(ctx, channelFor(evt.Topic), data).Err()
}

func (r *RedisBus) Subscribe(ctx context.Context, topic event.Topic) (contract.ISubscription, error) {
	return r.local.Subscribe(ctx, topic)
}

func (r *RedisBus) SubscriberCount(topic event.Topic) int {
	return r.local.SubscriberCount(topic)
}

// Run relays Redis messages to local subscribers until ctx is done.
// Reconnects on receive errors.
func (r *RedisBus) Run(ctx context.Context) error {
	for {
		err := r.relay(ctx)
		if ctx.Err() != nil {
			return nil
		}
		r.log.Warn("Redis relay interrupted, reconnecting", "error", err)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(2 * time.Second):
		}
	}
}

func (r *RedisBus) relay(ctx context.Context) error {
	channels := make([]string, 0, len(r.topics))
	for _, t := range r.topics {
		channels = append(channels, channelFor(t))
	}
	pubsub := r.client.Subscribe(ctx, channels...)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("redis channel closed")
			}
			evt, err := decodeRedisEvent(msg.Payload)
			if err != nil {
				r.log.Warn("Invalid event payload on redis", "channel", msg.Channel, "error", err)
				continue
			}
			_ = r.local.Publish(ctx, evt)
		}
	}
}

func channelFor(topic event.Topic) string {
	return redisChannelPrefix + string(topic)
}

func decodeRedisEvent(payload string) (event.Event, error) {
	var evt event.Event
	if err := json.Unmarshal([]byte(payload), &evt); err != nil {
		return event.Event{}, err
	}
	if evt.Topic != event.ChatCreatedTopic && evt.Topic != event.ChatSeenTopic {
		return event.Event{}, fmt.Errorf("unknown topic %q", evt.Topic)
	}
	return evt, nil
}
