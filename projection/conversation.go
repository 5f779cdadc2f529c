// Package projection assembles the conversations of one viewer from the
// history fetched once and the live events received afterwards.
// Messages are deduplicated by id, a duplicate only ever turns seen to true.
// Does not perform any I/O.
package projection

import (
	"rosterhub/domain/chat"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is one rendered line of a thread.
type Entry struct {
	Chat              chat.Chat
	ShowDateSeparator bool
	Outbound          bool
	Pending           bool
}

type Assembler struct {
	mu       sync.RWMutex
	viewerID string
	loc      *time.Location
	threads  map[string][]chat.Chat
	peerOf   map[uuid.UUID]string
	pending  map[uuid.UUID]struct{}
}

// NewAssembler builds an empty assembler for viewerID. Date separators follow
// the calendar of loc, time.Local when nil.
func NewAssembler(viewerID string, loc *time.Location) *Assembler {
	if loc == nil {
		loc = time.Local
	}
	return &Assembler{
		viewerID: viewerID,
		loc:      loc,
		threads:  make(map[string][]chat.Chat),
		peerOf:   make(map[uuid.UUID]string),
		pending:  make(map[uuid.UUID]struct{}),
	}
}

func (a *Assembler) ViewerID() string {
	return a.viewerID
}

// LoadHistory merges fetched history. It is safe to call again on refetch.
func (a *Assembler) LoadHistory(chats []chat.Chat) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, c := range chats {
		a.merge(c)
	}
}

// ApplyCreated merges a live chatCreated payload. Chats the viewer is not part
// of are ignored. It reports whether a thread changed.
func (a *Assembler) ApplyCreated(c chat.Chat) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.merge(c)
}

// ApplySeen flags the viewer's messages to receipt.From, created at or before
// the receipt, as seen. It returns how many were flagged.
func (a *Assembler) ApplySeen(receipt chat.Chat) int {
	if receipt.To.ID != a.viewerID {
		return 0
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	flagged := 0
	thread := a.threads[receipt.From.ID]
	for i := range thread {
		c := &thread[i]
		if c.From.ID == a.viewerID && !c.Seen && !c.CreatedAt.After(receipt.CreatedAt) {
			c.Seen = true
			flagged++
		}
	}
	return flagged
}

// MarkInboundSeen flags every message received from peer as seen, once the
// viewer told the server it opened the conversation.
func (a *Assembler) MarkInboundSeen(peer string) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	flagged := 0
	thread := a.threads[peer]
	for i := range thread {
		if thread[i].To.ID == a.viewerID && !thread[i].Seen {
			thread[i].Seen = true
			flagged++
		}
	}
	return flagged
}

// Echo shows an outbound chat before the server confirmed it.
func (a *Assembler) Echo(c chat.Chat) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.merge(c) {
		a.pending[c.ID] = struct{}{}
	}
}

// Confirm replaces the echo tempID by the chat returned by the server.
func (a *Assembler) Confirm(tempID uuid.UUID, confirmed chat.Chat) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.remove(tempID)
	a.merge(confirmed)
}

// Discard drops an echo whose creation failed.
func (a *Assembler) Discard(tempID uuid.UUID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.remove(tempID)
}

// Thread returns the conversation with peer in (createdAt, id) order.
func (a *Assembler) Thread(peer string) []Entry {
	a.mu.RLock()
	defer a.mu.RUnlock()

	thread := a.threads[peer]
	entries := make([]Entry, 0, len(thread))
	var previous time.Time
	for i, c := range thread {
		_, isPending := a.pending[c.ID]
		entries = append(entries, Entry{
			Chat:              c,
			ShowDateSeparator: i == 0 || !sameDay(previous, c.CreatedAt, a.loc),
			Outbound:          c.From.ID == a.viewerID,
			Pending:           isPending,
		})
		previous = c.CreatedAt
	}
	return entries
}

// Peers lists the viewer's peers, most recent activity first.
func (a *Assembler) Peers() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	peers := make([]string, 0, len(a.threads))
	for peer := range a.threads {
		peers = append(peers, peer)
	}
	sort.Slice(peers, func(i, j int) bool {
		li, lj := a.last(peers[i]), a.last(peers[j])
		if li.CreatedAt.Equal(lj.CreatedAt) {
			return peers[i] < peers[j]
		}
		return lj.Before(li)
	})
	return peers
}

// Unseen counts the inbound messages from peer not yet seen by the viewer.
func (a *Assembler) Unseen(peer string) int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	count := 0
	for _, c := range a.threads[peer] {
		if c.To.ID == a.viewerID && !c.Seen {
			count++
		}
	}
	return count
}

func (a *Assembler) merge(c chat.Chat) bool {
	if !c.Involves(a.viewerID) {
		return false
	}
	if peer, ok := a.peerOf[c.ID]; ok {
		thread := a.threads[peer]
		for i := range thread {
			if thread[i].ID == c.ID {
				if c.Seen && !thread[i].Seen {
					thread[i].Seen = true
					return true
				}
				return false
			}
		}
	}

	peer := c.PeerOf(a.viewerID)
	thread := a.threads[peer]
	pos := sort.Search(len(thread), func(i int) bool { return c.Before(thread[i]) })
	thread = append(thread, chat.Chat{})
	copy(thread[pos+1:], thread[pos:])
	thread[pos] = c
	a.threads[peer] = thread
	a.peerOf[c.ID] = peer
	return true
}

func (a *Assembler) remove(id uuid.UUID) {
	delete(a.pending, id)
	peer, ok := a.peerOf[id]
	if !ok {
		return
	}
	delete(a.peerOf, id)
	thread := a.threads[peer]
	for i := range thread {
		if thread[i].ID == id {
			a.threads[peer] = append(thread[:i], thread[i+1:]...)
			break
		}
	}
	if len(a.threads[peer]) == 0 {
		delete(a.threads, peer)
	}
}

func (a *Assembler) last(peer string) chat.Chat {
	thread := a.threads[peer]
	return thread[len(thread)-1]
}

func sameDay(a, b time.Time, loc *time.Location) bool {
	ya, ma, da := a.In(loc).Date()
	yb, mb, db := b.In(loc).Date()
	return ya == yb && ma == mb && da == db
}
