// Package transport moves envelopes between the hub and room shards.
// Delivery is one way and best effort: failures are reported to the caller,
// which logs them, and nothing is retried.
package transport

import (
	"context"
	"errors"

	"github.com/wfunc/gamestation/protocol"
)

var ErrClosed = errors.New("transport closed")

// Transport sends one envelope to env.To.
type Transport interface {
	Send(ctx context.Context, env protocol.Envelope) error
}

// Receiver accepts envelopes for the addresses it hosts.
type Receiver interface {
	Deliver(ctx context.Context, env protocol.Envelope) error
}

// Local hands envelopes straight to an in-process receiver.
type Local struct {
	receiver Receiver
}

func NewLocal(r Receiver) *Local {
	return &Local{receiver: r}
}

func (l *Local) Send(ctx context.Context, env protocol.Envelope) error {
	if l.receiver == nil {
		return ErrClosed
	}
	return l.receiver.Deliver(ctx, env)
}
