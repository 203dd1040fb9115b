// Package host runs the hub and every room shard in process. Each unit has
// its own mailbox and goroutine, so items for one unit are handled strictly
// in arrival order and never concurrently.
package host

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wfunc/gamestation/archive"
	"github.com/wfunc/gamestation/hub"
	"github.com/wfunc/gamestation/logger"
	"github.com/wfunc/gamestation/protocol"
	"github.com/wfunc/gamestation/shard"
	"github.com/wfunc/gamestation/store"
	"github.com/wfunc/gamestation/transport"
)

var (
	ErrStopped        = errors.New("runtime stopped")
	ErrUnknownAddress = errors.New("no unit at address")
)

// Recorder receives runtime measurements.
type Recorder interface {
	ObserveLatency(d time.Duration)
	ShardsChanged(n int)
}

type shardProc struct {
	shard *shard.Shard
	box   *mailbox
}

type Runtime struct {
	hub       *hub.Hub
	store     *store.Store
	transport transport.Transport
	archiver  archive.Archiver
	recorder  Recorder
	clock     func() int64

	hubBox      *mailbox
	mailboxSize int

	mu      sync.RWMutex
	shards  map[string]*shardProc
	stopped bool

	inflight sync.WaitGroup
	workers  sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
}

// New wraps h in a runtime and registers the runtime as the hub's shard
// host. Envelopes are delivered in process until SetTransport is called.
func New(h *hub.Hub, mailboxSize int) *Runtime {
	if mailboxSize <= 0 {
		mailboxSize = 256
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Runtime{
		hub:         h,
		store:       h.Store(),
		clock:       func() int64 { return time.Now().UnixMicro() },
		hubBox:      newMailbox(mailboxSize),
		mailboxSize: mailboxSize,
		shards:      make(map[string]*shardProc),
		ctx:         ctx,
		cancel:      cancel,
	}
	r.transport = transport.NewLocal(r)
	h.SetHost(r)
	return r
}

func (r *Runtime) SetTransport(t transport.Transport) {
	r.transport = t
}

func (r *Runtime) SetArchiver(a archive.Archiver) {
	r.archiver = a
}

func (r *Runtime) SetRecorder(rec Recorder) {
	r.recorder = rec
}

// SetClock replaces the microsecond clock used to stamp items.
func (r *Runtime) SetClock(clock func() int64) {
	r.clock = clock
}

func (r *Runtime) Hub() *hub.Hub {
	return r.hub
}

// Start launches the hub goroutine.
func (r *Runtime) Start() {
	r.workers.Add(1)
	go r.runHub()
	logger.Log.Infow("runtime started", "hub", r.hub.Address)
}

// Submit queues a client action for the hub. A zero timestamp is stamped
// with the runtime clock.
func (r *Runtime) Submit(_ context.Context, sub protocol.Submission) error {
	if sub.Timestamp == 0 {
		sub.Timestamp = r.clock()
	}
	return r.enqueue(r.hubBox, item{sub: &sub}, r.hub.Address)
}

// SubmitAction is Submit for callers holding the action parts.
func (r *Runtime) SubmitAction(ctx context.Context, action protocol.Action, submitter, nonce string) error {
	return r.Submit(ctx, protocol.Submission{Action: action, Submitter: submitter, Nonce: nonce})
}

// Deliver routes an envelope to the mailbox of its destination.
func (r *Runtime) Deliver(_ context.Context, env protocol.Envelope) error {
	if env.To == r.hub.Address {
		return r.enqueue(r.hubBox, item{env: &env}, env.To)
	}
	r.mu.RLock()
	p, ok := r.shards[env.To]
	r.mu.RUnlock()
	if !ok {
		return ErrUnknownAddress
	}
	return r.enqueue(p.box, item{env: &env}, env.To)
}

func (r *Runtime) enqueue(box *mailbox, it item, to string) error {
	r.inflight.Add(1)
	n, ok := box.push(it)
	if !ok {
		r.inflight.Done()
		return ErrStopped
	}
	if n > r.mailboxSize {
		logger.Log.Warnw("mailbox backlog", "address", to, "queued", n)
	}
	return nil
}

// Quiesce blocks until every queued item and everything it caused has been
// handled. Only meaningful with in-process delivery.
func (r *Runtime) Quiesce() {
	r.inflight.Wait()
}

// Open starts a new, uninitialized shard.
func (r *Runtime) Open(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return "", ErrStopped
	}
	addr := "shard-" + uuid.NewString()
	p := &shardProc{shard: shard.New(addr), box: newMailbox(16)}
	r.shards[addr] = p
	r.workers.Add(1)
	go r.runShard(p)
	r.shardsChanged(len(r.shards))
	logger.Log.Debugw("shard opened", "shard", addr)
	return addr, nil
}

// Retire stops a shard. Items already queued are still handled.
func (r *Runtime) Retire(_ context.Context, addr string) {
	r.mu.Lock()
	p, ok := r.shards[addr]
	if ok {
		delete(r.shards, addr)
	}
	n := len(r.shards)
	r.mu.Unlock()
	if !ok {
		return
	}
	p.box.close()
	r.shardsChanged(n)
	logger.Log.Debugw("shard retired", "shard", addr)
}

// ShardCount is the number of live shards.
func (r *Runtime) ShardCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.shards)
}

// Stop closes every mailbox and waits for the goroutines to exit.
func (r *Runtime) Stop() {
	r.mu.Lock()
	r.stopped = true
	procs := make([]*shardProc, 0, len(r.shards))
	for _, p := range r.shards {
		procs = append(procs, p)
	}
	r.shards = make(map[string]*shardProc)
	r.mu.Unlock()

	r.hubBox.close()
	for _, p := range procs {
		p.box.close()
	}
	r.workers.Wait()
	r.cancel()
	logger.Log.Info("runtime stopped")
}

func (r *Runtime) runHub() {
	defer r.workers.Done()
	for {
		it, ok := r.hubBox.pop()
		if !ok {
			return
		}
		start := time.Now()

		r.store.Lock()
		switch {
		case it.sub != nil:
			r.hub.Submit(r.ctx, *it.sub)
		case it.env != nil:
			_ = r.hub.HandleMessage(r.ctx, *it.env, r.clock())
		}
		r.store.Unlock()

		r.flush(r.hub.Outbox())
		if r.recorder != nil {
			r.recorder.ObserveLatency(time.Since(start))
		}
		r.inflight.Done()
	}
}

func (r *Runtime) runShard(p *shardProc) {
	defer r.workers.Done()
	archived := false
	for {
		it, ok := p.box.pop()
		if !ok {
			return
		}
		if it.env != nil {
			_ = p.shard.Handle(*it.env, r.clock())
		}
		r.flush(p.shard.Outbox())
		if !archived && p.shard.Finished() {
			r.archive(p.shard)
			archived = true
		}
		r.inflight.Done()
	}
}

// flush sends everything in the outbox. Failed sends are logged and lost.
func (r *Runtime) flush(out *protocol.Outbox) {
	for _, env := range out.Drain() {
		if err := r.transport.Send(r.ctx, env); err != nil {
			logger.Log.Warnw("message not delivered", "from", env.From, "to", env.To, "kind", env.Kind, "error", err)
		}
	}
}

func (r *Runtime) archive(s *shard.Shard) {
	if r.archiver == nil {
		return
	}
	rec, ok := s.Record()
	if !ok {
		return
	}
	if err := r.archiver.Archive(r.ctx, rec); err != nil {
		logger.Log.Errorw("archive match", "room_id", rec.RoomID, "error", err)
		return
	}
	logger.Log.Infow("match archived", "room_id", rec.RoomID, "moves", len(rec.Moves))
}

func (r *Runtime) shardsChanged(n int) {
	if r.recorder != nil {
		r.recorder.ShardsChanged(n)
	}
}
