package event

import "sync"

// Counter keeps one running total per topic.
type Counter struct {
	mu     sync.Mutex
	counts map[Topic]uint64
}

func NewCounter() *Counter {
	return &Counter{counts: make(map[Topic]uint64)}
}

func (c *Counter) Increment(topic Topic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[topic]++
}

func (c *Counter) Get(topic Topic) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[topic]
}

// Snapshot returns a copy safe to log or serialize.
func (c *Counter) Snapshot() map[Topic]uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	res := make(map[Topic]uint64, len(c.counts))
	for k, v := range c.counts {
		res[k] = v
	}
	return res
}
