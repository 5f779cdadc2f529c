// Package chat contains core concepts of the one-to-one chat system.
// Messages are created once, only their seen flag may change afterwards.
// No runtime, network, or storage logic should be added here.
package chat

import (
	"time"

	"github.com/google/uuid"
)

// Message is a persisted chat record between two members of an organization.
type Message struct {
	ID             uuid.UUID
	OrganizationID string
	From           string
	To             string
	Content        string
	Seen           bool
	CreatedAt      time.Time
}

// Involves reports whether the profile is the sender or the recipient.
func (m Message) Involves(profileID string) bool {
	return m.From == profileID || m.To == profileID
}

// PeerOf returns the other participant from the point of view of profileID.
func (m Message) PeerOf(profileID string) string {
	if m.From == profileID {
		return m.To
	}
	return m.From
}

// Before orders messages by creation time, ties broken by identity.
func (m Message) Before(other Message) bool {
	if !m.CreatedAt.Equal(other.CreatedAt) {
		return m.CreatedAt.Before(other.CreatedAt)
	}
	return m.ID.String() < other.ID.String()
}

// ProfileSummary is the resolved view of a profile embedded in a Chat payload.
type ProfileSummary struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Chat is the payload exchanged with clients, both for queries and subscriptions.
type Chat struct {
	ID        uuid.UUID      `json:"id"`
	From      ProfileSummary `json:"from"`
	To        ProfileSummary `json:"to"`
	Content   string         `json:"content"`
	Seen      bool           `json:"seen"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Involves reports whether the profile is the sender or the recipient.
func (c Chat) Involves(profileID string) bool {
	return c.From.ID == profileID || c.To.ID == profileID
}

// PeerOf returns the other participant from the point of view of profileID.
func (c Chat) PeerOf(profileID string) string {
	if c.From.ID == profileID {
		return c.To.ID
	}
	return c.From.ID
}

// Before orders chats by creation time, ties broken by identity.
func (c Chat) Before(other Chat) bool {
	if !c.CreatedAt.Equal(other.CreatedAt) {
		return c.CreatedAt.Before(other.CreatedAt)
	}
	return c.ID.String() < other.ID.String()
}
