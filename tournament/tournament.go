// Package tournament builds and advances single elimination brackets.
package tournament

import (
	"errors"
	"fmt"

	"github.com/gosimple/slug"

	"github.com/wfunc/gamestation/models"
)

// MinParticipants is the smallest field that can be started.
const MinParticipants = 2

var (
	ErrNotRegistration = errors.New("tournament is not accepting participants")
	ErrAlreadyJoined   = errors.New("already a participant")
	ErrFull            = errors.New("tournament is full")
	ErrTooFew          = errors.New("not enough participants to start")
	ErrNotInProgress   = errors.New("tournament is not in progress")
	ErrUnknownMatch    = errors.New("no bracket for match")
)

// New creates a tournament in registration. The creator is not entered
// automatically.
func New(id, name string, game models.GameType, creator string, capacity int, now int64) *models.Tournament {
	return &models.Tournament{
		ID:              id,
		Slug:            fmt.Sprintf("%s-%s", slug.Make(name), id),
		Name:            name,
		GameType:        game,
		Creator:         creator,
		Participants:    []string{},
		MaxParticipants: capacity,
		Status:          models.TournamentRegistration,
		CreatedAt:       now,
	}
}

func Join(t *models.Tournament, player string) error {
	switch {
	case t.Status != models.TournamentRegistration:
		return ErrNotRegistration
	case t.HasParticipant(player):
		return ErrAlreadyJoined
	case len(t.Participants) >= t.MaxParticipants:
		return ErrFull
	}
	t.Participants = append(t.Participants, player)
	return nil
}

func Start(t *models.Tournament) error {
	if t.Status != models.TournamentRegistration {
		return ErrNotRegistration
	}
	if len(t.Participants) < MinParticipants {
		return ErrTooFew
	}
	t.Status = models.TournamentInProgress
	t.Round = 1
	t.Brackets = Pair(t.Participants)
	t.Carried = nil
	return nil
}

// Pair builds sequential pairs. An odd trailing player gets no bracket and
// does not advance.
func Pair(players []string) []models.TournamentBracket {
	brackets := make([]models.TournamentBracket, 0, len(players)/2)
	for i := 0; i+1 < len(players); i += 2 {
		brackets = append(brackets, models.TournamentBracket{Player1: players[i], Player2: players[i+1]})
	}
	return brackets
}

// Advance reports winner for the bracket identified by matchKey.
//
// The next round's pool is the reported winner, then winners reported
// earlier this round, then the first slot of every bracket still open. The
// open brackets' first slots are counted but only reported winners are kept
// between calls. When no bracket is left, a single candidate completes the
// tournament, otherwise the pool is paired for the next round.
func Advance(t *models.Tournament, matchKey, winner string) error {
	if t.Status != models.TournamentInProgress {
		return ErrNotInProgress
	}

	idx := -1
	for i, b := range t.Brackets {
		if b.MatchKey() == matchKey {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrUnknownMatch
	}

	remaining := make([]models.TournamentBracket, 0, len(t.Brackets)-1)
	remaining = append(remaining, t.Brackets[:idx]...)
	remaining = append(remaining, t.Brackets[idx+1:]...)

	pool := append([]string{winner}, t.Carried...)
	for _, b := range remaining {
		pool = append(pool, b.Player1)
	}

	t.Brackets = remaining
	if len(remaining) > 0 {
		t.Carried = append(t.Carried, winner)
		return nil
	}

	t.Carried = nil
	if len(pool) == 1 {
		t.Status = models.TournamentCompleted
		t.Winner = pool[0]
		return nil
	}
	t.Round++
	t.Brackets = Pair(pool)
	return nil
}
