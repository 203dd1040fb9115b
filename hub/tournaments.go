package hub

import (
	"github.com/wfunc/gamestation/logger"
	"github.com/wfunc/gamestation/models"
	"github.com/wfunc/gamestation/protocol"
	"github.com/wfunc/gamestation/tournament"
)

// Tournament capacity defaults.
const (
	DefaultTournamentSize = 8
	MaxTournamentSize     = 64
)

func clampTournament(n int) int {
	switch {
	case n == 0:
		return DefaultTournamentSize
	case n < tournament.MinParticipants:
		return tournament.MinParticipants
	case n > MaxTournamentSize:
		return MaxTournamentSize
	}
	return n
}

func (h *Hub) createTournament(a protocol.CreateTournament, who string, now int64) error {
	if !a.Game.Valid() {
		return ErrUnsupportedGame
	}
	id := h.store.NextTournamentID()
	t := tournament.New(id, a.Name, a.Game, who, clampTournament(a.MaxPlayers), now)
	h.store.Tournaments[id] = t
	h.store.AddActiveTournament(id)
	logger.Log.Infow("tournament created", "tournament_id", id, "slug", t.Slug, "creator", who)
	return nil
}

func (h *Hub) tournament(id string) (*models.Tournament, error) {
	t, ok := h.store.Tournaments[id]
	if !ok {
		return nil, ErrTournamentNotFound
	}
	return t, nil
}

func (h *Hub) joinTournament(a protocol.JoinTournament, who string) error {
	t, err := h.tournament(a.TournamentID)
	if err != nil {
		return err
	}
	return tournament.Join(t, who)
}

func (h *Hub) startTournament(a protocol.StartTournament, who string) error {
	t, err := h.tournament(a.TournamentID)
	if err != nil {
		return err
	}
	if err := tournament.Start(t); err != nil {
		return err
	}
	logger.Log.Infow("tournament started", "tournament_id", t.ID, "by", who, "brackets", len(t.Brackets))
	return nil
}

func (h *Hub) advanceTournament(a protocol.AdvanceTournament) error {
	t, err := h.tournament(a.TournamentID)
	if err != nil {
		return err
	}
	if err := tournament.Advance(t, a.MatchKey, a.Winner); err != nil {
		return err
	}
	if t.Status == models.TournamentCompleted {
		h.store.RemoveActiveTournament(t.ID)
		logger.Log.Infow("tournament completed", "tournament_id", t.ID, "winner", t.Winner)
	}
	return nil
}
