// Package shard is the authoritative state of one match. A shard only reacts
// to messages from the hub and answers through its outbox.
package shard

import (
	"errors"

	"github.com/wfunc/gamestation/logger"
	"github.com/wfunc/gamestation/models"
	"github.com/wfunc/gamestation/protocol"
	"github.com/wfunc/gamestation/rules"
	"github.com/wfunc/gamestation/state"
)

var (
	ErrNotInitialized     = errors.New("shard not initialized")
	ErrAlreadyInitialized = errors.New("shard already initialized")
	ErrWrongRoom          = errors.New("message addressed to another room")
	ErrNotWaiting         = errors.New("room is not waiting for players")
	ErrNotInProgress      = errors.New("room is not in progress")
	ErrAlreadyJoined      = errors.New("player already seated")
	ErrFull               = errors.New("room is full")
	ErrNotMember          = errors.New("player is not seated")
	ErrUnexpected         = errors.New("message not handled by a shard")
)

type Shard struct {
	Address string
	State   *models.RoomShardState

	outbox protocol.Outbox
	engine rules.Engine
}

func New(address string) *Shard {
	return &Shard{Address: address}
}

func (s *Shard) Outbox() *protocol.Outbox {
	return &s.outbox
}

func (s *Shard) Finished() bool {
	return s.State != nil && s.State.Status == models.RoomFinished
}

// Handle dispatches one envelope. Rejected messages are logged and dropped;
// the error is returned for callers that want to count them.
func (s *Shard) Handle(env protocol.Envelope, now int64) error {
	msg, err := env.Message()
	if err != nil {
		logger.Log.Warnw("shard dropped undecodable message", "shard", s.Address, "kind", env.Kind, "error", err)
		return err
	}
	switch m := msg.(type) {
	case protocol.Initialize:
		err = s.initialize(m, now)
	case protocol.PlayerJoining:
		err = s.playerJoining(m)
	case protocol.ProcessMove:
		err = s.processMove(m, now)
	default:
		err = ErrUnexpected
	}
	if err != nil {
		fields := []interface{}{"shard", s.Address, "kind", env.Kind, "reason", err.Error()}
		if s.State != nil {
			fields = append(fields, "room_id", s.State.RoomID, "status", s.State.Status)
		}
		logger.Log.Infow("shard dropped message", fields...)
	}
	return err
}

func (s *Shard) initialize(m protocol.Initialize, now int64) error {
	if s.State != nil {
		return ErrAlreadyInitialized
	}
	s.State = &models.RoomShardState{
		RoomID:     m.RoomID,
		GameType:   m.Game,
		Players:    []string{m.Creator},
		MaxPlayers: m.MaxPlayers,
		Status:     models.RoomWaiting,
		Moves:      []models.MoveRecord{},
		CreatedAt:  now,
		Hub:        m.Hub,
	}
	s.engine, _ = rules.ForGame(m.Game)
	return s.outbox.Send(s.Address, m.Hub, protocol.ShardReady{
		RoomID:  m.RoomID,
		Creator: m.Creator,
		Game:    m.Game,
		Shard:   s.Address,
	}, now)
}

func (s *Shard) checkRoom(roomID string) error {
	if s.State == nil {
		return ErrNotInitialized
	}
	if s.State.RoomID != roomID {
		return ErrWrongRoom
	}
	return nil
}

func (s *Shard) playerJoining(m protocol.PlayerJoining) error {
	if err := s.checkRoom(m.RoomID); err != nil {
		return err
	}
	st := s.State
	switch {
	case st.Status != models.RoomWaiting:
		return ErrNotWaiting
	case st.HasPlayer(m.Player):
		return ErrAlreadyJoined
	case st.IsFull():
		return ErrFull
	}
	st.Players = append(st.Players, m.Player)
	if st.IsFull() {
		return state.Transition(&st.Status, models.RoomInProgress)
	}
	return nil
}

func (s *Shard) processMove(m protocol.ProcessMove, now int64) error {
	if err := s.checkRoom(m.RoomID); err != nil {
		return err
	}
	st := s.State
	if st.Status != models.RoomInProgress {
		return ErrNotInProgress
	}
	if !st.HasPlayer(m.Player) {
		return ErrNotMember
	}

	if s.engine != nil {
		st.GameState = s.engine.ApplyMove(st.GameState, m.Move, m.Player, st.Players)
	}
	st.Moves = append(st.Moves, models.MoveRecord{
		Index:  uint64(len(st.Moves)),
		Player: m.Player,
		Move:   m.Move,
		At:     now,
	})

	if s.engine == nil || !s.engine.CheckWin(st.GameState, m.Player) {
		return nil
	}
	return s.finish(m.Player, now)
}

func (s *Shard) finish(winner string, now int64) error {
	st := s.State
	if err := state.Transition(&st.Status, models.RoomFinished); err != nil {
		return err
	}
	st.Winner = winner
	return s.outbox.Send(s.Address, st.Hub, protocol.GameEndedWithStats{
		RoomID:       st.RoomID,
		Winner:       winner,
		Scores:       Scores(st.Players, winner),
		Game:         st.GameType,
		DurationSecs: duration(st.CreatedAt, now),
	}, now)
}

// Scores gives 1 to the winner and 0 to everyone else.
func Scores(players []string, winner string) map[string]uint64 {
	scores := make(map[string]uint64, len(players))
	for _, p := range players {
		scores[p] = 0
	}
	if winner != "" {
		scores[winner] = 1
	}
	return scores
}

func duration(start, end int64) uint64 {
	if end <= start {
		return 0
	}
	return uint64((end - start) / 1_000_000)
}

// Record returns the archive record of the match so far.
func (s *Shard) Record() (models.GameRecord, bool) {
	if s.State == nil {
		return models.GameRecord{}, false
	}
	st := s.State
	rec := models.GameRecord{
		RoomID:     st.RoomID,
		GameType:   st.GameType,
		Players:    append([]string(nil), st.Players...),
		Winner:     st.Winner,
		Moves:      append([]models.MoveRecord(nil), st.Moves...),
		FinalState: st.GameState,
		Scores:     Scores(st.Players, st.Winner),
	}
	if n := len(st.Moves); n > 0 {
		rec.FinishedAt = st.Moves[n-1].At
		rec.DurationSecs = duration(st.CreatedAt, rec.FinishedAt)
	}
	return rec, true
}
