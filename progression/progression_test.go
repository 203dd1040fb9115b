package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wfunc/gamestation/models"
)

func TestLevelUp(t *testing.T) {
	tests := []struct {
		name              string
		level, xp, add    uint64
		wantLevel, wantXP uint64
	}{
		{"single level", 1, 950, 100, 2, 50},
		{"carry past one level", 1, 0, 2500, 2, 1500},
		{"multi level", 1, 0, 3500, 3, 500},
		{"no level", 1, 0, 999, 1, 999},
		{"exact threshold", 2, 0, 2000, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &models.PlayerProfile{Level: tt.level, Experience: tt.xp}
			AddExperience(p, tt.add)
			assert.Equal(t, tt.wantLevel, p.Level)
			assert.Equal(t, tt.wantXP, p.Experience)
		})
	}
}

func TestNewProfile(t *testing.T) {
	p := NewProfile("0xabcdef0123456789", 42)
	assert.Equal(t, "Player0xabcdef", p.Username)
	assert.Equal(t, uint64(1), p.Level)
	assert.Equal(t, int64(42), p.JoinedAt)

	short := NewProfile("bob", 0)
	assert.Equal(t, "Playerbob", short.Username)
}

func TestApplyResult(t *testing.T) {
	tests := []struct {
		game   models.GameType
		path   Path
		won    bool
		wantXP uint64
	}{
		{models.GameTicTacToe, Direct, true, 50},
		{models.GameTicTacToe, Shard, false, 10},
		{models.GameSnakeLadders, Direct, true, 100},
		{models.GameSnakeLadders, Direct, false, 20},
		{models.GameSnakeLadders, Shard, true, 40},
		{models.GameSnakeLadders, Shard, false, 10},
		{models.GameUno, Direct, true, 60},
		{models.GameUno, Shard, false, 15},
	}
	for _, tt := range tests {
		p := NewProfile("alice", 0)
		xp := ApplyResult(p, tt.game, tt.won, tt.path)
		assert.Equal(t, tt.wantXP, xp, "%s path %d won %v", tt.game, tt.path, tt.won)
		assert.Equal(t, tt.wantXP, p.Experience)

		s := p.Stats[tt.game]
		assert.Equal(t, uint64(1), s.Played)
		if tt.won {
			assert.Equal(t, uint64(1), s.Won)
		} else {
			assert.Equal(t, uint64(1), s.Lost)
		}
	}

	p := NewProfile("alice", 0)
	assert.Zero(t, ApplyResult(p, models.GameSnake, true, Direct))
	assert.Nil(t, p.Stats[models.GameSnake])
}

func TestApplyScore(t *testing.T) {
	p := NewProfile("alice", 0)

	assert.Equal(t, uint64(25), ApplyScore(p, models.GameSnake, 250))
	assert.Equal(t, uint64(12), ApplyScore(p, models.GameSnake, 120))

	s := p.Stats[models.GameSnake]
	assert.Equal(t, uint64(2), s.Played)
	assert.Equal(t, uint64(250), s.HighScore)
	assert.Equal(t, uint64(370), s.TotalScore)
	assert.Equal(t, uint64(37), p.Experience)
	assert.Equal(t, uint64(2), p.TotalGames)
}

func TestLeaderboardScore(t *testing.T) {
	p := NewProfile("alice", 0)
	ApplyResult(p, models.GameTicTacToe, true, Direct)
	ApplyResult(p, models.GameTicTacToe, true, Direct)
	ApplyResult(p, models.GameTicTacToe, false, Direct)

	assert.Equal(t, uint64(2), LeaderboardScore(p, models.GameTicTacToe, 0))
	assert.Equal(t, uint64(300), LeaderboardScore(p, models.GameSnake, 300))
}
