package hub

import (
	"context"

	"github.com/wfunc/gamestation/protocol"
)

// ShardHost opens and retires room shards. Open returns the address of a
// fresh, empty shard.
type ShardHost interface {
	Open(ctx context.Context) (string, error)
	Retire(ctx context.Context, address string)
}

// Observer is notified of every dispatch outcome.
type Observer interface {
	ActionApplied(kind protocol.ActionKind)
	ActionDuplicate(kind protocol.ActionKind)
	ActionRejected(kind protocol.ActionKind)
	ActionDropped(kind protocol.ActionKind)
	MessageHandled(kind protocol.MessageKind)
}

type nopObserver struct{}

func (nopObserver) ActionApplied(protocol.ActionKind)   {}
func (nopObserver) ActionDuplicate(protocol.ActionKind) {}
func (nopObserver) ActionRejected(protocol.ActionKind)  {}
func (nopObserver) ActionDropped(protocol.ActionKind)   {}
func (nopObserver) MessageHandled(protocol.MessageKind) {}
