package hub

import (
	"context"

	"github.com/wfunc/gamestation/logger"
	"github.com/wfunc/gamestation/models"
	"github.com/wfunc/gamestation/protocol"
	"github.com/wfunc/gamestation/room"
)

// createRoom opens a mirror entry and, when a host is available, a shard
// that owns the match. If the shard cannot be opened the room is served
// from the mirror alone.
func (h *Hub) createRoom(ctx context.Context, a protocol.CreateRoom, who string, now int64) error {
	if !a.Game.Valid() {
		return ErrUnsupportedGame
	}
	capacity := room.ClampPlayers(a.MaxPlayers)
	mode := a.Mode
	if mode == "" {
		mode = models.ModeMultiplayer
	}
	id := h.store.NextRoomID(a.Game)
	h.openRoom(ctx, id, a.Game, mode, who, capacity, a.EntryFee, now)
	return nil
}

func (h *Hub) openRoom(ctx context.Context, id string, game models.GameType, mode models.GameMode, creator string, capacity int, fee uint64, now int64) *models.GameRoom {
	var shardAddr string
	if h.host != nil {
		addr, err := h.host.Open(ctx)
		if err != nil {
			logger.Log.Warnw("open shard failed, room stays on hub", "room_id", id, "error", err)
		} else {
			shardAddr = addr
		}
	}

	r := h.rooms.Open(id, game, mode, creator, capacity, fee, now)
	if shardAddr == "" {
		logger.Log.Infow("room created", "room_id", id, "game", game, "creator", creator)
		return r
	}

	h.store.MapShard(id, shardAddr)
	h.send(shardAddr, protocol.Initialize{
		RoomID:     id,
		Game:       game,
		Creator:    creator,
		MaxPlayers: capacity,
		Hub:        h.Address,
	}, now)
	logger.Log.Infow("room created", "room_id", id, "game", game, "creator", creator, "shard", shardAddr)
	return r
}

// joinRoom updates the mirror and forwards the join to the shard. The two
// writes are independent: a join the mirror refuses is still forwarded, and
// the shard may refuse a join the mirror accepted.
func (h *Hub) joinRoom(roomID, who string, now int64) error {
	mirrorErr := h.rooms.Join(roomID, who)
	if mirrorErr != nil {
		logger.Log.Infow("mirror join skipped", "room_id", roomID, "player", who, "reason", mirrorErr.Error())
	}

	shardAddr, ok := h.store.ShardFor(roomID)
	if !ok {
		return mirrorErr
	}
	h.send(shardAddr, protocol.PlayerJoining{RoomID: roomID, Player: who}, now)
	return nil
}

func (h *Hub) leaveRoom(ctx context.Context, a protocol.LeaveRoom, who string) error {
	destroyed, err := h.rooms.Leave(a.RoomID, who)
	if err != nil {
		return err
	}
	if destroyed {
		logger.Log.Infow("room destroyed", "room_id", a.RoomID)
		h.retire(ctx, a.RoomID)
	}
	return nil
}

// makeMove routes the move to the room's shard. Rooms without a shard are
// played on the mirror.
func (h *Hub) makeMove(a protocol.MakeMove, who string, now int64) error {
	if shardAddr, ok := h.store.ShardFor(a.RoomID); ok {
		h.send(shardAddr, protocol.ProcessMove{RoomID: a.RoomID, Player: who, Move: a.Move}, now)
		return nil
	}
	won, err := h.rooms.ApplyMove(a.RoomID, who, a.Move, now)
	if err != nil {
		return err
	}
	if won {
		logger.Log.Infow("hub-resident game won", "room_id", a.RoomID, "winner", who)
	}
	return nil
}

func (h *Hub) closeRoom(ctx context.Context, a protocol.CloseRoom) error {
	if err := h.rooms.Close(a.RoomID); err != nil {
		return err
	}
	h.retire(ctx, a.RoomID)
	return nil
}

// retire drops the room's shard mapping and releases the shard.
func (h *Hub) retire(ctx context.Context, roomID string) {
	shardAddr, ok := h.store.UnmapShard(roomID)
	if !ok {
		return
	}
	if h.host != nil {
		h.host.Retire(ctx, shardAddr)
	}
}
