package room

import (
	"encoding/json"
	"errors"

	"github.com/wfunc/gamestation/logger"
	"github.com/wfunc/gamestation/models"
	"github.com/wfunc/gamestation/network"
	"github.com/wfunc/gamestation/rules"
	"github.com/wfunc/gamestation/state"
	"github.com/wfunc/gamestation/store"
)

const (
	MinPlayers     = 2
	MaxPlayers     = 8
	DefaultPlayers = 2
)

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrNotWaiting    = errors.New("room is not waiting for players")
	ErrNotInProgress = errors.New("room is not in progress")
	ErrAlreadyMember = errors.New("player already in room")
	ErrNotMember     = errors.New("player not in room")
	ErrRoomFull      = errors.New("room is full")
	ErrNoEngine      = errors.New("game has no rule engine")
)

// ClampPlayers maps a requested capacity into the supported range. Zero
// means the default.
func ClampPlayers(n int) int {
	switch {
	case n == 0:
		return DefaultPlayers
	case n < MinPlayers:
		return MinPlayers
	case n > MaxPlayers:
		return MaxPlayers
	}
	return n
}

// Directory 房间目录，是 hub 对房间成员和状态的镜像
type Directory struct {
	store       *store.Store
	broadcaster Broadcaster
}

func NewDirectory(s *store.Store) *Directory {
	return &Directory{store: s}
}

// SetBroadcaster enables pushing the mirror to room members after changes.
func (d *Directory) SetBroadcaster(b Broadcaster) {
	d.broadcaster = b
}

// Open 创建一个新房间并加入活跃列表，创建者是唯一成员
func (d *Directory) Open(id string, game models.GameType, mode models.GameMode, creator string, maxPlayers int, entryFee uint64, now int64) *models.GameRoom {
	r := &models.GameRoom{
		ID:           id,
		GameType:     game,
		GameMode:     mode,
		Creator:      creator,
		Players:      []string{creator},
		MaxPlayers:   maxPlayers,
		EntryFee:     entryFee,
		Status:       models.RoomWaiting,
		CreatedAt:    now,
		LastMoveTime: now,
	}
	d.store.Rooms[id] = r
	d.store.AddActiveRoom(id)
	d.publish(r)
	return r
}

func (d *Directory) Get(id string) (*models.GameRoom, bool) {
	r, ok := d.store.Rooms[id]
	return r, ok
}

// Join seats player in the mirror. The room flips to InProgress when the
// last seat is taken.
func (d *Directory) Join(id, player string) error {
	r, ok := d.store.Rooms[id]
	if !ok {
		return ErrRoomNotFound
	}
	switch {
	case r.Status != models.RoomWaiting:
		return ErrNotWaiting
	case r.HasPlayer(player):
		return ErrAlreadyMember
	case r.IsFull():
		return ErrRoomFull
	}
	r.Players = append(r.Players, player)
	if r.IsFull() {
		if err := state.Transition(&r.Status, models.RoomInProgress); err != nil {
			return err
		}
	}
	d.publish(r)
	return nil
}

// Leave removes player while the room is still waiting. It reports whether
// the room was destroyed because nobody is left.
func (d *Directory) Leave(id, player string) (bool, error) {
	r, ok := d.store.Rooms[id]
	if !ok {
		return false, ErrRoomNotFound
	}
	if r.Status != models.RoomWaiting {
		return false, ErrNotWaiting
	}
	if !r.HasPlayer(player) {
		return false, ErrNotMember
	}
	players := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		if p != player {
			players = append(players, p)
		}
	}
	r.Players = players
	if len(players) == 0 {
		delete(d.store.Rooms, id)
		d.store.RemoveActiveRoom(id)
		return true, nil
	}
	d.publish(r)
	return false, nil
}

// Close finishes a room without a winner. Any player may close a room.
func (d *Directory) Close(id string) error {
	return d.Finish(id, "")
}

// Finish marks the room finished and drops it from the active index.
func (d *Directory) Finish(id, winner string) error {
	r, ok := d.store.Rooms[id]
	if !ok {
		return ErrRoomNotFound
	}
	if err := state.Transition(&r.Status, models.RoomFinished); err != nil {
		return err
	}
	if winner != "" {
		r.Winner = winner
	}
	d.store.RemoveActiveRoom(id)
	d.publish(r)
	return nil
}

// ApplyMove plays a move directly on the mirror. Only rooms without a shard
// use this path. It reports whether the move won the game.
func (d *Directory) ApplyMove(id, player, move string, now int64) (bool, error) {
	r, ok := d.store.Rooms[id]
	if !ok {
		return false, ErrRoomNotFound
	}
	if r.Status != models.RoomInProgress {
		return false, ErrNotInProgress
	}
	if !r.HasPlayer(player) {
		return false, ErrNotMember
	}
	engine, ok := rules.ForGame(r.GameType)
	if !ok {
		return false, ErrNoEngine
	}
	r.LastMoveTime = now
	r.GameState = engine.ApplyMove(r.GameState, move, player, r.Players)
	if !engine.CheckWin(r.GameState, player) {
		d.publish(r)
		return false, nil
	}
	return true, d.Finish(id, player)
}

// Active 按创建顺序返回活跃房间
func (d *Directory) Active() []*models.GameRoom {
	rooms := make([]*models.GameRoom, 0, len(d.store.ActiveRooms))
	for _, id := range d.store.ActiveRooms {
		if r, ok := d.store.Rooms[id]; ok {
			rooms = append(rooms, r)
		}
	}
	return rooms
}

// FindAvailable 查找一个指定游戏类型、仍在等待且未满的房间
func (d *Directory) FindAvailable(game models.GameType) *models.GameRoom {
	for _, r := range d.Active() {
		if r.GameType == game && r.Status == models.RoomWaiting && !r.IsFull() {
			return r
		}
	}
	return nil
}

func (d *Directory) publish(r *models.GameRoom) {
	if d.broadcaster == nil {
		return
	}
	data, err := json.Marshal(r)
	if err != nil {
		logger.Log.Errorw("encode room state", "room_id", r.ID, "error", err)
		return
	}
	if err := d.broadcaster.BroadcastToUsers(r.Players, network.MsgTypeRoomState, data); err != nil {
		logger.Log.Debugw("room state push failed", "room_id", r.ID, "error", err)
	}
}
