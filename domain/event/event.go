package event

import (
	"rosterhub/domain/chat"
	"time"
)

// Topic routes an event to the subscribers of one kind of event.
type Topic string

const (
	ChatCreatedTopic Topic = "CHAT_CREATED"
	ChatSeenTopic    Topic = "CHAT_SEEN"
)

// Event is what travels on the bus.
// For ChatCreatedTopic the Chat is the created message.
// For ChatSeenTopic the Chat is a receipt: From is the viewer who read the
// messages, To is the peer being notified, and the remaining fields describe
// the most recent message flipped to seen.
type Event struct {
	Topic          Topic     `json:"topic"`
	OrganizationID string    `json:"organizationId"`
	Chat           chat.Chat `json:"chat"`
	OccurredAt     time.Time `json:"occurredAt"`
}

func NewChatCreated(organizationID string, c chat.Chat) Event {
	return Event{Topic: ChatCreatedTopic, OrganizationID: organizationID, Chat: c, OccurredAt: time.Now().UTC()}
}

func NewChatSeen(organizationID string, receipt chat.Chat) Event {
	return Event{Topic: ChatSeenTopic, OrganizationID: organizationID, Chat: receipt, OccurredAt: time.Now().UTC()}
}
