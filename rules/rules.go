// Package rules holds the move validation and win detection for the game
// types that are played inside a room shard.
//
// Engines work on the string encoded state carried in shard messages.
// Internally every engine parses into a typed value, mutates it and encodes
// it again, so a malformed state or move never panics and never partially
// applies.
package rules

import "github.com/wfunc/gamestation/models"

// Engine validates moves and detects wins for one game type.
type Engine interface {
	// ApplyMove returns the next state, or state unchanged when the move is
	// malformed, out of bounds or otherwise illegal.
	ApplyMove(state, move, player string, players []string) string
	CheckWin(state, player string) bool
}

// ForGame returns the engine for a game type. Score and card games are
// reported by clients and have no engine.
func ForGame(g models.GameType) (Engine, bool) {
	switch g {
	case models.GameTicTacToe:
		return Grid{}, true
	case models.GameSnakeLadders:
		return Track{}, true
	}
	return nil, false
}
