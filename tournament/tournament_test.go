package tournament

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/gamestation/models"
)

func newField(t *testing.T, players ...string) *models.Tournament {
	t.Helper()
	tr := New("tournament-0", "Friday Night Cup", models.GameTicTacToe, "host", 8, 1)
	for _, p := range players {
		require.NoError(t, Join(tr, p))
	}
	return tr
}

func TestNew(t *testing.T) {
	tr := New("tournament-3", "Friday Night Cup", models.GameUno, "host", 4, 10)
	assert.Equal(t, "friday-night-cup-tournament-3", tr.Slug)
	assert.Empty(t, tr.Participants)
	assert.Equal(t, models.TournamentRegistration, tr.Status)
	assert.Equal(t, 0, tr.Round)
}

func TestJoin(t *testing.T) {
	tr := New("tournament-0", "cup", models.GameUno, "host", 2, 0)
	require.NoError(t, Join(tr, "a"))
	assert.ErrorIs(t, Join(tr, "a"), ErrAlreadyJoined)
	require.NoError(t, Join(tr, "b"))
	assert.ErrorIs(t, Join(tr, "c"), ErrFull)

	require.NoError(t, Start(tr))
	assert.ErrorIs(t, Join(tr, "d"), ErrNotRegistration)
	assert.Equal(t, []string{"a", "b"}, tr.Participants)
}

func TestStart(t *testing.T) {
	tr := newField(t, "a")
	assert.ErrorIs(t, Start(tr), ErrTooFew)
	assert.Equal(t, models.TournamentRegistration, tr.Status)

	require.NoError(t, Join(tr, "b"))
	require.NoError(t, Start(tr))
	assert.Equal(t, models.TournamentInProgress, tr.Status)
	assert.Equal(t, 1, tr.Round)
	assert.ErrorIs(t, Start(tr), ErrNotRegistration)
}

func TestPair(t *testing.T) {
	tests := []struct {
		name    string
		players []string
		want    []models.TournamentBracket
	}{
		{"four", []string{"A", "B", "C", "D"}, []models.TournamentBracket{br("A", "B"), br("C", "D")}},
		{"odd drops last", []string{"A", "B", "C"}, []models.TournamentBracket{br("A", "B")}},
		{"one", []string{"A"}, []models.TournamentBracket{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Pair(tt.players))
		})
	}
}

func TestAdvance_FourPlayers(t *testing.T) {
	tr := newField(t, "A", "B", "C", "D")
	require.NoError(t, Start(tr))
	require.Equal(t, []models.TournamentBracket{br("A", "B"), br("C", "D")}, tr.Brackets)

	require.NoError(t, Advance(tr, "A-B", "A"))
	assert.Equal(t, 1, tr.Round)
	assert.Equal(t, []models.TournamentBracket{br("C", "D")}, tr.Brackets)

	require.NoError(t, Advance(tr, "C-D", "C"))
	assert.Equal(t, 2, tr.Round)
	assert.Equal(t, models.TournamentInProgress, tr.Status)
	assert.Equal(t, []models.TournamentBracket{br("C", "A")}, tr.Brackets)

	require.NoError(t, Advance(tr, "C-A", "A"))
	assert.Equal(t, models.TournamentCompleted, tr.Status)
	assert.Equal(t, "A", tr.Winner)
	assert.Empty(t, tr.Brackets)
}

func TestAdvance_TwoPlayersCompleteInOneRound(t *testing.T) {
	tr := newField(t, "A", "B")
	require.NoError(t, Start(tr))
	require.NoError(t, Advance(tr, "A-B", "B"))

	assert.Equal(t, models.TournamentCompleted, tr.Status)
	assert.Equal(t, "B", tr.Winner)
	assert.Equal(t, 1, tr.Round)
}

func TestAdvance_OddFieldDropsBye(t *testing.T) {
	tr := newField(t, "A", "B", "C")
	require.NoError(t, Start(tr))
	require.NoError(t, Advance(tr, "A-B", "B"))

	// C never had a bracket and does not advance
	assert.Equal(t, models.TournamentCompleted, tr.Status)
	assert.Equal(t, "B", tr.Winner)
}

func TestAdvance_Rejected(t *testing.T) {
	tr := newField(t, "A", "B")
	assert.ErrorIs(t, Advance(tr, "A-B", "A"), ErrNotInProgress)

	require.NoError(t, Start(tr))
	assert.ErrorIs(t, Advance(tr, "B-A", "A"), ErrUnknownMatch)
	assert.Len(t, tr.Brackets, 1)
}

func br(p1, p2 string) models.TournamentBracket {
	return models.TournamentBracket{Player1: p1, Player2: p2}
}
