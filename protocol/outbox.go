package protocol

import "sync"

// Outbox collects envelopes produced while handling one item. The runtime
// drains it after every item and hands the envelopes to the transport.
type Outbox struct {
	mu    sync.Mutex
	items []Envelope
}

func (o *Outbox) Send(from, to string, msg Message, now int64) error {
	env, err := NewEnvelope(from, to, msg, now)
	if err != nil {
		return err
	}
	o.mu.Lock()
	o.items = append(o.items, env)
	o.mu.Unlock()
	return nil
}

// Drain returns everything queued so far in send order and empties the outbox.
func (o *Outbox) Drain() []Envelope {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := o.items
	o.items = nil
	return out
}

func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.items)
}
