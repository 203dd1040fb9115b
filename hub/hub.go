// Package hub is the coordinating unit. It owns profiles, the room
// directory, tournaments, the social graph and leaderboards, and talks to
// room shards only through its outbox.
package hub

import (
	"context"
	"errors"
	"time"

	"github.com/wfunc/gamestation/leaderboard"
	"github.com/wfunc/gamestation/ledger"
	"github.com/wfunc/gamestation/logger"
	"github.com/wfunc/gamestation/protocol"
	"github.com/wfunc/gamestation/room"
	"github.com/wfunc/gamestation/social"
	"github.com/wfunc/gamestation/store"
)

// DefaultAddress is the transport address of the hub.
const DefaultAddress = "hub"

var (
	ErrUnknownAction      = errors.New("unknown action")
	ErrUnsupportedGame    = errors.New("unsupported game type")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrChallengeNotFound  = errors.New("challenge not found")
	ErrUnexpectedMessage  = errors.New("message not handled by the hub")
	ErrUnknownShard       = errors.New("message from an unmapped shard")
	ErrLedgerUnavailable  = errors.New("idempotency ledger unavailable")
)

type Hub struct {
	Address string

	store    *store.Store
	rooms    *room.Directory
	ledger   ledger.Ledger
	host     ShardHost
	observer Observer
	outbox   protocol.Outbox

	challengeTTL    time.Duration
	leaderboardSize int
}

// New builds a hub over s. The caller holds the store's write lock while
// calling Submit or HandleMessage.
func New(address string, s *store.Store, l ledger.Ledger) *Hub {
	if address == "" {
		address = DefaultAddress
	}
	return &Hub{
		Address:         address,
		store:           s,
		rooms:           room.NewDirectory(s),
		ledger:          l,
		observer:        nopObserver{},
		challengeTTL:    social.DefaultChallengeTTL,
		leaderboardSize: leaderboard.MaxEntries,
	}
}

// SetHost sets the shard host. Without one every room stays hub-resident.
func (h *Hub) SetHost(host ShardHost) {
	h.host = host
}

func (h *Hub) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	h.observer = o
}

func (h *Hub) SetBroadcaster(b room.Broadcaster) {
	h.rooms.SetBroadcaster(b)
}

func (h *Hub) SetChallengeTTL(d time.Duration) {
	if d > 0 {
		h.challengeTTL = d
	}
}

func (h *Hub) SetLeaderboardSize(n int) {
	if n > 0 {
		h.leaderboardSize = n
	}
}

func (h *Hub) Store() *store.Store {
	return h.store
}

func (h *Hub) Rooms() *room.Directory {
	return h.rooms
}

func (h *Hub) Outbox() *protocol.Outbox {
	return &h.outbox
}

// Execute dispatches action on behalf of submitter with no nonce.
func (h *Hub) Execute(ctx context.Context, action protocol.Action, submitter string, ts int64) bool {
	return h.Submit(ctx, protocol.Submission{Action: action, Submitter: submitter, Timestamp: ts})
}

// Submit runs a submission at most once. It reports whether the handler ran
// and accepted the action. Duplicates, rejected actions and actions dropped
// because the ledger could not be read all return false and never surface
// an error to the submitter.
func (h *Hub) Submit(ctx context.Context, sub protocol.Submission) bool {
	kind := sub.Action.Kind()
	body, err := protocol.EncodeAction(sub.Action)
	if err != nil {
		logger.Log.Errorw("encode action", "kind", kind, "error", err)
		h.observer.ActionDropped(kind)
		return false
	}
	fp := ledger.Fingerprint(string(kind), body, sub.Submitter, sub.Nonce, sub.Timestamp)

	seen, err := h.ledger.Seen(ctx, fp)
	if err != nil {
		logger.Log.Errorw("action dropped", "kind", kind, "submitter", sub.Submitter, "error", errors.Join(ErrLedgerUnavailable, err))
		h.observer.ActionDropped(kind)
		return false
	}
	if seen {
		logger.Log.Debugw("duplicate action ignored", "kind", kind, "submitter", sub.Submitter, "fingerprint", fp)
		h.observer.ActionDuplicate(kind)
		return false
	}

	h.store.Profile(sub.Submitter, sub.Timestamp)
	err = h.dispatch(ctx, sub.Action, sub.Submitter, sub.Timestamp)

	if rerr := h.ledger.Record(ctx, fp); rerr != nil {
		logger.Log.Errorw("record fingerprint", "kind", kind, "fingerprint", fp, "error", rerr)
	}

	if err != nil {
		logger.Log.Infow("action rejected", "kind", kind, "submitter", sub.Submitter, "reason", err.Error())
		h.observer.ActionRejected(kind)
		return false
	}
	h.observer.ActionApplied(kind)
	return true
}

func (h *Hub) dispatch(ctx context.Context, action protocol.Action, who string, now int64) error {
	switch a := action.(type) {
	case protocol.SubmitScore:
		return h.submitScore(a, who, now)
	case protocol.UpdateProfile:
		return h.updateProfile(a, who, now)
	case protocol.CreateRoom:
		return h.createRoom(ctx, a, who, now)
	case protocol.JoinRoom:
		return h.joinRoom(a.RoomID, who, now)
	case protocol.LeaveRoom:
		return h.leaveRoom(ctx, a, who)
	case protocol.MakeMove:
		return h.makeMove(a, who, now)
	case protocol.CloseRoom:
		return h.closeRoom(ctx, a)
	case protocol.CreateTournament:
		return h.createTournament(a, who, now)
	case protocol.JoinTournament:
		return h.joinTournament(a, who)
	case protocol.StartTournament:
		return h.startTournament(a, who)
	case protocol.AdvanceTournament:
		return h.advanceTournament(a)
	case protocol.SendFriendRequest:
		return h.store.Social.SendRequest(who, a.To, now)
	case protocol.AcceptFriendRequest:
		return h.store.Social.Accept(who, a.From, now)
	case protocol.RejectFriendRequest:
		return h.store.Social.Reject(who, a.From)
	case protocol.RemoveFriend:
		h.store.Social.Remove(who, a.Friend)
		return nil
	case protocol.CreateChallenge:
		return h.createChallenge(a, who, now)
	case protocol.AcceptChallenge:
		return h.acceptChallenge(ctx, a, who, now)
	case protocol.DeclineChallenge:
		return h.declineChallenge(a, who)
	}
	return ErrUnknownAction
}

// send queues msg for the shard at to.
func (h *Hub) send(to string, msg protocol.Message, now int64) {
	if err := h.outbox.Send(h.Address, to, msg, now); err != nil {
		logger.Log.Errorw("queue message", "to", to, "kind", msg.MessageKind(), "error", err)
	}
}
