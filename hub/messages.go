package hub

import (
	"context"
	"sort"

	"github.com/wfunc/gamestation/logger"
	"github.com/wfunc/gamestation/progression"
	"github.com/wfunc/gamestation/protocol"
)

// HandleMessage processes a message sent to the hub by a shard. Invalid
// messages are logged and dropped; the error is returned for accounting only.
func (h *Hub) HandleMessage(ctx context.Context, env protocol.Envelope, now int64) error {
	msg, err := env.Message()
	if err != nil {
		logger.Log.Warnw("hub dropped undecodable message", "from", env.From, "kind", env.Kind, "error", err)
		return err
	}
	switch m := msg.(type) {
	case protocol.ShardReady:
		err = h.shardReady(env.From, m)
	case protocol.GameEndedWithStats:
		err = h.gameEnded(ctx, env.From, m, now)
	default:
		err = ErrUnexpectedMessage
	}
	if err != nil {
		logger.Log.Infow("hub dropped message", "from", env.From, "kind", env.Kind, "reason", err.Error())
		return err
	}
	h.observer.MessageHandled(env.Kind)
	return nil
}

// shardReady only reconciles the confirmation against the directory.
func (h *Hub) shardReady(from string, m protocol.ShardReady) error {
	roomID, ok := h.store.ShardRooms[from]
	if !ok || roomID != m.RoomID {
		logger.Log.Warnw("shard ready for unknown mapping", "shard", from, "room_id", m.RoomID, "mapped_room", roomID)
		return ErrUnknownShard
	}
	logger.Log.Infow("shard ready", "room_id", m.RoomID, "shard", from, "game", m.Game)
	return nil
}

// gameEnded applies progression for every scored player, retires the room
// and counts the game.
func (h *Hub) gameEnded(ctx context.Context, from string, m protocol.GameEndedWithStats, now int64) error {
	if roomID, ok := h.store.ShardRooms[from]; !ok || roomID != m.RoomID {
		return ErrUnknownShard
	}

	players := make([]string, 0, len(m.Scores))
	for p := range m.Scores {
		players = append(players, p)
	}
	sort.Strings(players)
	for _, addr := range players {
		p := h.store.Profile(addr, now)
		h.applyOutcome(p, m.Game, addr == m.Winner, m.Scores[addr], progression.Shard)
	}

	if err := h.rooms.Finish(m.RoomID, m.Winner); err != nil {
		logger.Log.Warnw("finish mirror", "room_id", m.RoomID, "error", err)
		h.store.RemoveActiveRoom(m.RoomID)
	}
	h.retire(ctx, m.RoomID)
	h.store.TotalGames++
	h.completeChallenge(m.RoomID)

	logger.Log.Infow("game ended", "room_id", m.RoomID, "winner", m.Winner, "players", len(players), "duration_secs", m.DurationSecs)
	return nil
}
