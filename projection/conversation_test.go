package projection

import (
	"rosterhub/domain/chat"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var paris = time.FixedZone("CET", 3600)

func message(from, to, content string, at time.Time) chat.Chat {
	return chat.Chat{
		ID:        uuid.New(),
		From:      chat.ProfileSummary{ID: from},
		To:        chat.ProfileSummary{ID: to},
		Content:   content,
		CreatedAt: at,
	}
}

func contents(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Chat.Content)
	}
	return out
}

func TestAssembler_History_Then_Live_Without_Duplicates(t *testing.T) {
	req := require.New(t)
	t1 := time.Date(2026, 5, 2, 10, 0, 0, 0, paris)
	first := message("A", "B", "1", t1)
	second := message("B", "A", "2", t1.Add(time.Minute))

	// Given B loaded its history then received a live chat
	a := NewAssembler("B", paris)
	a.LoadHistory([]chat.Chat{first})
	req.True(a.ApplyCreated(second))

	// When the history is fetched again after a reconnect
	a.LoadHistory([]chat.Chat{first, second})
	req.False(a.ApplyCreated(second))

	// Then the thread with A is [1, 2] exactly once
	req.Equal([]string{"1", "2"}, contents(a.Thread("A")))
}

func TestAssembler_Orders_Out_Of_Order_Arrivals(t *testing.T) {
	req := require.New(t)
	at := time.Date(2026, 5, 2, 10, 0, 0, 0, paris)
	a := NewAssembler("B", paris)

	a.ApplyCreated(message("A", "B", "late", at.Add(2*time.Minute)))
	a.ApplyCreated(message("B", "A", "early", at))
	a.ApplyCreated(message("A", "B", "middle", at.Add(time.Minute)))

	req.Equal([]string{"early", "middle", "late"}, contents(a.Thread("A")))
}

func TestAssembler_Ignores_Foreign_Chats(t *testing.T) {
	req := require.New(t)
	a := NewAssembler("B", paris)

	req.False(a.ApplyCreated(message("A", "C", "not for B", time.Now())))

	req.Empty(a.Peers())
}

func TestAssembler_Duplicate_Only_Upgrades_Seen(t *testing.T) {
	req := require.New(t)
	a := NewAssembler("B", paris)
	c := message("B", "A", "hi", time.Now())
	c.Seen = true
	a.LoadHistory([]chat.Chat{c})

	// A stale copy never turns it back to unseen
	stale := c
	stale.Seen = false
	req.False(a.ApplyCreated(stale))

	req.True(a.Thread("A")[0].Chat.Seen)
}

func TestAssembler_Date_Separators(t *testing.T) {
	tests := []struct {
		name       string
		times      []time.Time
		separators []bool
	}{
		{
			name: "Same calendar day",
			times: []time.Time{
				time.Date(2026, 5, 2, 9, 0, 0, 0, paris),
				time.Date(2026, 5, 2, 23, 59, 0, 0, paris),
			},
			separators: []bool{true, false},
		},
		{
			name: "Spanning midnight",
			times: []time.Time{
				time.Date(2026, 5, 2, 23, 50, 0, 0, paris),
				time.Date(2026, 5, 3, 0, 10, 0, 0, paris),
			},
			separators: []bool{true, true},
		},
		{
			// 22:30 and 23:30 UTC are on two different days in Paris
			name: "Local calendar, not UTC",
			times: []time.Time{
				time.Date(2026, 5, 2, 22, 30, 0, 0, time.UTC),
				time.Date(2026, 5, 2, 23, 30, 0, 0, time.UTC),
			},
			separators: []bool{true, true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			a := NewAssembler("B", paris)
			for _, at := range tt.times {
				a.ApplyCreated(message("A", "B", at.String(), at))
			}

			var got []bool
			for _, e := range a.Thread("A") {
				got = append(got, e.ShowDateSeparator)
			}

			req.Equal(tt.separators, got)
		})
	}
}

func TestAssembler_ApplySeen(t *testing.T) {
	req := require.New(t)
	at := time.Date(2026, 5, 2, 10, 0, 0, 0, paris)
	a := NewAssembler("A", paris)

	before := message("A", "B", "before", at)
	inbound := message("B", "A", "inbound", at.Add(time.Second))
	after := message("A", "B", "after", at.Add(time.Hour))
	a.LoadHistory([]chat.Chat{before, inbound, after})

	// When B reports having read up to the first message
	receipt := chat.Chat{
		ID:        before.ID,
		From:      chat.ProfileSummary{ID: "B"},
		To:        chat.ProfileSummary{ID: "A"},
		Seen:      true,
		CreatedAt: at,
	}
	req.Equal(1, a.ApplySeen(receipt))

	// Then only A's messages up to the receipt are flagged
	thread := a.Thread("B")
	req.True(thread[0].Chat.Seen)
	req.False(thread[1].Chat.Seen)
	req.False(thread[2].Chat.Seen)

	// A receipt addressed to someone else changes nothing
	receipt.To = chat.ProfileSummary{ID: "C"}
	receipt.CreatedAt = at.Add(2 * time.Hour)
	req.Zero(a.ApplySeen(receipt))
}

func TestAssembler_Peers_And_Unseen(t *testing.T) {
	req := require.New(t)
	at := time.Date(2026, 5, 2, 10, 0, 0, 0, paris)
	a := NewAssembler("A", paris)

	a.LoadHistory([]chat.Chat{
		message("B", "A", "from B", at),
		message("C", "A", "from C 1", at.Add(time.Minute)),
		message("C", "A", "from C 2", at.Add(2*time.Minute)),
		message("A", "B", "to B", at.Add(3*time.Minute)),
	})

	req.Equal([]string{"B", "C"}, a.Peers())
	req.Equal(1, a.Unseen("B"))
	req.Equal(2, a.Unseen("C"))
	req.Zero(a.Unseen("D"))

	req.Equal(2, a.MarkInboundSeen("C"))
	req.Zero(a.Unseen("C"))
}

func TestAssembler_Echo_Confirm_Discard(t *testing.T) {
	req := require.New(t)
	at := time.Date(2026, 5, 2, 10, 0, 0, 0, paris)
	a := NewAssembler("A", paris)

	echo := message("A", "B", "on my way", at)
	a.Echo(echo)
	req.True(a.Thread("B")[0].Pending)

	// The server answer replaces the echo, even if the live event won the race
	confirmed := echo
	confirmed.ID = uuid.New()
	a.ApplyCreated(confirmed)
	a.Confirm(echo.ID, confirmed)

	thread := a.Thread("B")
	req.Len(thread, 1)
	req.Equal(confirmed.ID, thread[0].Chat.ID)
	req.False(thread[0].Pending)
	req.True(thread[0].Outbound)

	failed := message("A", "B", "never sent", at.Add(time.Minute))
	a.Echo(failed)
	a.Discard(failed.ID)
	req.Len(a.Thread("B"), 1)
}

func TestAssembler_Concurrent_Use(t *testing.T) {
	req := require.New(t)
	a := NewAssembler("A", paris)
	at := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			a.ApplyCreated(message("B", "A", "x", at.Add(time.Duration(i)*time.Second)))
		}(i)
		go func() {
			defer wg.Done()
			_ = a.Thread("B")
			_ = a.Peers()
		}()
	}
	wg.Wait()

	req.Len(a.Thread("B"), 50)
	req.Equal(50, a.Unseen("B"))
}
