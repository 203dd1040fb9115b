// Package leaderboard maintains the capped per-game ranking.
package leaderboard

import (
	"sort"

	"github.com/wfunc/gamestation/models"
)

// MaxEntries is the size every board is truncated to.
const MaxEntries = 100

// DefaultLimit is used by queries that do not pass a limit.
const DefaultLimit = 10

// Update applies a new score for playerID and returns the resorted board.
// An existing entry is only replaced by a strictly greater score. Ties keep
// their insertion order.
func Update(entries []models.LeaderboardEntry, playerID, name string, score uint64) []models.LeaderboardEntry {
	return UpdateCapped(entries, playerID, name, score, MaxEntries)
}

// UpdateCapped is Update with an explicit size cap.
func UpdateCapped(entries []models.LeaderboardEntry, playerID, name string, score uint64, max int) []models.LeaderboardEntry {
	out := append([]models.LeaderboardEntry(nil), entries...)

	found := false
	for i := range out {
		if out[i].PlayerID != playerID {
			continue
		}
		found = true
		if score > out[i].Score {
			out[i].Score = score
			out[i].Name = name
		}
		break
	}
	if !found {
		out = append(out, models.LeaderboardEntry{PlayerID: playerID, Name: name, Score: score})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// Top returns at most limit entries. A non-positive limit means DefaultLimit.
func Top(entries []models.LeaderboardEntry, limit int) []models.LeaderboardEntry {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > len(entries) {
		limit = len(entries)
	}
	return append([]models.LeaderboardEntry(nil), entries[:limit]...)
}
