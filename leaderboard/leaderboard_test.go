package leaderboard

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/gamestation/models"
)

func TestUpdate_Ranks(t *testing.T) {
	var board []models.LeaderboardEntry
	board = Update(board, "a", "A", 50)
	board = Update(board, "b", "B", 80)
	board = Update(board, "c", "C", 30)

	require.Len(t, board, 3)
	assert.Equal(t, []uint64{80, 50, 30}, scores(board))
	assert.Equal(t, []int{1, 2, 3}, ranks(board))
	assert.Equal(t, "b", board[0].PlayerID)
}

func TestUpdate_OnlyStrictlyGreaterReplaces(t *testing.T) {
	board := Update(nil, "a", "A", 50)
	board = Update(board, "a", "A2", 40)
	assert.Equal(t, uint64(50), board[0].Score)
	assert.Equal(t, "A", board[0].Name)

	board = Update(board, "a", "A3", 50)
	assert.Equal(t, "A", board[0].Name)

	board = Update(board, "a", "A4", 60)
	require.Len(t, board, 1)
	assert.Equal(t, uint64(60), board[0].Score)
	assert.Equal(t, "A4", board[0].Name)
}

func TestUpdate_Truncates(t *testing.T) {
	var board []models.LeaderboardEntry
	for i := 0; i < MaxEntries; i++ {
		board = Update(board, fmt.Sprintf("p%d", i), "", uint64(1000+i))
	}
	require.Len(t, board, MaxEntries)

	board = Update(board, "late", "", 1)
	assert.Len(t, board, MaxEntries)
	for _, e := range board {
		assert.NotEqual(t, "late", e.PlayerID)
	}
	assert.Equal(t, MaxEntries, board[len(board)-1].Rank)

	// 更高分的新玩家会挤掉最低分
	board = Update(board, "strong", "", 5000)
	assert.Len(t, board, MaxEntries)
	assert.Equal(t, "strong", board[0].PlayerID)
	for _, e := range board {
		assert.NotEqual(t, "p0", e.PlayerID)
	}
}

func TestUpdate_TiesKeepInsertionOrder(t *testing.T) {
	board := Update(nil, "a", "", 10)
	board = Update(board, "b", "", 10)
	board = Update(board, "c", "", 10)
	assert.Equal(t, "a", board[0].PlayerID)
	assert.Equal(t, "b", board[1].PlayerID)
	assert.Equal(t, "c", board[2].PlayerID)
}

func TestUpdate_DoesNotMutateInput(t *testing.T) {
	board := Update(nil, "a", "", 10)
	_ = Update(board, "a", "", 20)
	assert.Equal(t, uint64(10), board[0].Score)
}

func TestTop(t *testing.T) {
	var board []models.LeaderboardEntry
	for i := 0; i < 15; i++ {
		board = Update(board, fmt.Sprintf("p%d", i), "", uint64(i))
	}
	assert.Len(t, Top(board, 0), DefaultLimit)
	assert.Len(t, Top(board, 3), 3)
	assert.Len(t, Top(board, 50), 15)
	assert.Empty(t, Top(nil, 5))
}

func TestRedisMirror_Key(t *testing.T) {
	m := NewRedisMirror(nil, "gs")
	assert.Equal(t, "gs:leaderboard:snake_global", m.Key("snake_global"))
}

func scores(b []models.LeaderboardEntry) []uint64 {
	out := make([]uint64, len(b))
	for i, e := range b {
		out[i] = e.Score
	}
	return out
}

func ranks(b []models.LeaderboardEntry) []int {
	out := make([]int, len(b))
	for i, e := range b {
		out[i] = e.Rank
	}
	return out
}
