package hub

import (
	"github.com/wfunc/gamestation/leaderboard"
	"github.com/wfunc/gamestation/logger"
	"github.com/wfunc/gamestation/models"
	"github.com/wfunc/gamestation/progression"
	"github.com/wfunc/gamestation/protocol"
)

// submitScore applies a client reported result. Practice games are accepted
// and ignored.
func (h *Hub) submitScore(a protocol.SubmitScore, who string, now int64) error {
	if !a.Game.Valid() {
		return ErrUnsupportedGame
	}
	if !a.Mode.Counts() {
		logger.Log.Debugw("practice result ignored", "player", who, "game", a.Game)
		return nil
	}
	p := h.store.Profile(who, now)
	h.applyOutcome(p, a.Game, a.Won, a.Score, progression.Direct)
	h.store.TotalGames++
	return nil
}

// applyOutcome runs progression for one player and updates the game's
// leaderboard.
func (h *Hub) applyOutcome(p *models.PlayerProfile, g models.GameType, won bool, score uint64, path progression.Path) {
	before := p.Level
	if g == models.GameSnake {
		progression.ApplyScore(p, g, score)
	} else {
		progression.ApplyResult(p, g, won, path)
	}
	if p.Level > before {
		logger.Log.Infow("level up", "player", p.Address, "level", p.Level)
	}

	key := g.LeaderboardKey()
	h.store.Leaderboards[key] = leaderboard.UpdateCapped(
		h.store.Leaderboards[key],
		p.Address,
		p.Username,
		progression.LeaderboardScore(p, g, score),
		h.leaderboardSize,
	)
}

func (h *Hub) updateProfile(a protocol.UpdateProfile, who string, now int64) error {
	p := h.store.Profile(who, now)
	if a.Username != "" {
		p.Username = a.Username
	}
	p.AvatarID = a.AvatarID
	return nil
}
