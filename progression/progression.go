// Package progression applies game results to player profiles: per game
// stats, experience and levels.
package progression

import "github.com/wfunc/gamestation/models"

// Path is where a result came from. The track game awards differently
// depending on it.
type Path int

const (
	// Direct results are submitted by the client.
	Direct Path = iota
	// Shard results arrive in a completion message from a room shard.
	Shard
)

// LevelStep is the experience needed per level: level n needs n*LevelStep.
const LevelStep = 1000

type Award struct {
	Win  uint64
	Loss uint64
}

var awards = map[models.GameType][2]Award{
	models.GameTicTacToe:    {{Win: 50, Loss: 10}, {Win: 50, Loss: 10}},
	models.GameSnakeLadders: {{Win: 100, Loss: 20}, {Win: 40, Loss: 10}},
	models.GameUno:          {{Win: 60, Loss: 15}, {Win: 60, Loss: 15}},
}

// AwardFor returns the fixed award of a win/loss game.
func AwardFor(g models.GameType, path Path) (Award, bool) {
	a, ok := awards[g]
	if !ok {
		return Award{}, false
	}
	return a[path], true
}

// NewProfile builds the default profile for an address seen for the first time.
func NewProfile(address string, now int64) *models.PlayerProfile {
	name := address
	if len(name) > 8 {
		name = name[:8]
	}
	return &models.PlayerProfile{
		Address:  address,
		Username: "Player" + name,
		Level:    1,
		Stats:    make(map[models.GameType]*models.GameStats),
		JoinedAt: now,
	}
}

// ApplyResult records a win or loss and returns the experience awarded.
// Score games are handled by ApplyScore.
func ApplyResult(p *models.PlayerProfile, g models.GameType, won bool, path Path) uint64 {
	award, ok := AwardFor(g, path)
	if !ok {
		return 0
	}
	s := p.StatsFor(g)
	s.Played++
	p.TotalGames++
	xp := award.Loss
	if won {
		s.Won++
		xp = award.Win
	} else {
		s.Lost++
	}
	AddExperience(p, xp)
	return xp
}

// ApplyScore records a score game result. Experience is score/10.
func ApplyScore(p *models.PlayerProfile, g models.GameType, score uint64) uint64 {
	s := p.StatsFor(g)
	s.Played++
	p.TotalGames++
	s.TotalScore += score
	if score > s.HighScore {
		s.HighScore = score
	}
	xp := score / 10
	AddExperience(p, xp)
	return xp
}

// AddExperience adds xp and applies every level-up it pays for.
func AddExperience(p *models.PlayerProfile, xp uint64) {
	p.Experience += xp
	LevelUp(p)
}

// LevelUp 循环升级，一次可能升多级
func LevelUp(p *models.PlayerProfile) int {
	if p.Level == 0 {
		p.Level = 1
	}
	gained := 0
	for p.Experience >= p.Level*LevelStep {
		p.Experience -= p.Level * LevelStep
		p.Level++
		gained++
	}
	return gained
}

// LeaderboardScore is the value ranked for a player after a result: the
// submitted score for score games, cumulative wins otherwise.
func LeaderboardScore(p *models.PlayerProfile, g models.GameType, score uint64) uint64 {
	if g == models.GameSnake {
		return score
	}
	return p.StatsFor(g).Won
}
