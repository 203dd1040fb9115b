package host

import (
	"sync"

	"github.com/wfunc/gamestation/protocol"
)

// item is either a client submission for the hub or an envelope.
type item struct {
	sub *protocol.Submission
	env *protocol.Envelope
}

// mailbox is an unbounded FIFO read by exactly one goroutine. Pushing never
// blocks, so a hub and a shard sending to each other cannot deadlock.
type mailbox struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []item
	closed bool
}

func newMailbox(capacity int) *mailbox {
	m := &mailbox{items: make([]item, 0, capacity)}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// push appends it and returns the queue length, or false once closed.
func (m *mailbox) push(it item) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, false
	}
	m.items = append(m.items, it)
	m.cond.Signal()
	return len(m.items), true
}

// pop blocks for the next item. Items queued before close are still
// returned; after that pop reports false.
func (m *mailbox) pop() (item, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for len(m.items) == 0 && !m.closed {
		m.cond.Wait()
	}
	if len(m.items) == 0 {
		return item{}, false
	}
	it := m.items[0]
	m.items[0] = item{}
	m.items = m.items[1:]
	return it, true
}

func (m *mailbox) close() {
	m.mu.Lock()
	m.closed = true
	m.cond.Broadcast()
	m.mu.Unlock()
}
