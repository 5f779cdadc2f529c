package runtime

import (
	"rosterhub/domain/event"
	"sync"

	"github.com/google/uuid"
)

type Set map[uuid.UUID]struct{}

// Registry tracks the live listener set of the bus.
type Registry struct {
	mu            sync.RWMutex
	subscriptions map[uuid.UUID]*Subscription // map subscriber -> subscription
	topicMembers  map[event.Topic]Set         // map topic to subscribers
}

func NewRegistry() *Registry {
	return &Registry{
		subscriptions: make(map[uuid.UUID]*Subscription),
		topicMembers:  make(map[event.Topic]Set),
	}
}

// GetSubscriptionsForTopic retrieves every active subscription of a topic.
// It performs a two-step lookup:
// 1. Identifies subscriber IDs associated with the topic via topicMembers.
// 2. Resolves those IDs into actual subscriptions.
// Returns nil if nobody listens to the topic.
func (r *Registry) GetSubscriptionsForTopic(topic event.Topic) []*Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.topicMembers[topic]
	if !ok {
		return nil
	}
	var active []*Subscription
	for subscriberID := range members {
		if sub, exists := r.subscriptions[subscriberID]; exists {
			active = append(active, sub)
		}
	}
	return active
}

// Subscribe registers a subscription under its topic.
// If the topic does not yet exist in the registry, it is initialized on the fly.
func (r *Registry) Subscribe(sub *Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.subscriptions[sub.ID] = sub

	if _, ok := r.topicMembers[sub.Topic]; !ok {
		r.topicMembers[sub.Topic] = make(Set)
	}
	r.topicMembers[sub.Topic][sub.ID] = struct{}{}
}

// Unsubscribe removes a subscriber and leaves no empty set behind,
// so a long-lived process does not accumulate dead topics.
func (r *Registry) Unsubscribe(subscriberID uuid.UUID, topic event.Topic) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.subscriptions, subscriberID)

	if members, ok := r.topicMembers[topic]; ok {
		delete(members, subscriberID)

		if len(members) == 0 {
			delete(r.topicMembers, topic)
		}
	}
}

func (r *Registry) Count(topic event.Topic) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.topicMembers[topic])
}
