package social

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/gamestation/models"
)

func TestGraph_RequestAccept(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.SendRequest("alice", "bob", 1))
	assert.ErrorIs(t, g.SendRequest("alice", "bob", 2), ErrDuplicate)
	assert.ErrorIs(t, g.SendRequest("alice", "alice", 2), ErrSelfRequest)
	require.Len(t, g.Requests["bob"], 1)
	assert.Equal(t, int64(1), g.Requests["bob"][0].SentAt)

	require.NoError(t, g.Accept("bob", "alice", 5))
	assert.Empty(t, g.Requests["bob"])
	assert.True(t, g.AreFriends("alice", "bob"))
	assert.True(t, g.AreFriends("bob", "alice"))
	assert.Equal(t, int64(5), g.Friends["alice"][0].Since)

	assert.ErrorIs(t, g.SendRequest("bob", "alice", 6), ErrAlreadyFriends)
	assert.ErrorIs(t, g.Accept("bob", "alice", 7), ErrNoRequest)
	assert.Len(t, g.Friends["bob"], 1)
}

func TestGraph_Reject(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.SendRequest("alice", "bob", 1))
	require.NoError(t, g.SendRequest("carol", "bob", 1))

	require.NoError(t, g.Reject("bob", "alice"))
	assert.False(t, g.AreFriends("alice", "bob"))
	require.Len(t, g.Requests["bob"], 1)
	assert.Equal(t, "carol", g.Requests["bob"][0].From)

	assert.ErrorIs(t, g.Reject("bob", "alice"), ErrNoRequest)
}

func TestGraph_Remove(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.SendRequest("alice", "bob", 1))
	require.NoError(t, g.Accept("bob", "alice", 1))
	require.NoError(t, g.SendRequest("carol", "bob", 1))
	require.NoError(t, g.Accept("bob", "carol", 1))

	g.Remove("alice", "bob")
	assert.False(t, g.AreFriends("alice", "bob"))
	assert.False(t, g.AreFriends("bob", "alice"))
	assert.True(t, g.AreFriends("bob", "carol"))
}

func TestChallenge_Expiry(t *testing.T) {
	const created = int64(1_000_000)
	day := (24 * time.Hour).Microseconds()

	c, err := NewChallenge("challenge-0", "alice", "bob", models.GameTicTacToe, 10, created, DefaultChallengeTTL)
	require.NoError(t, err)
	assert.Equal(t, created+day, c.ExpiresAt)

	assert.ErrorIs(t, Accept(c, "bob", created+day), ErrExpired)
	assert.ErrorIs(t, Accept(c, "bob", created+day+1), ErrExpired)
	assert.Equal(t, models.ChallengePending, c.Status)

	require.NoError(t, Accept(c, "bob", created+day-1))
	assert.Equal(t, models.ChallengeAccepted, c.Status)
	assert.ErrorIs(t, Accept(c, "bob", created+1), ErrNotPending)

	Complete(c)
	assert.Equal(t, models.ChallengeCompleted, c.Status)
}

func TestChallenge_AcceptDecline(t *testing.T) {
	c, err := NewChallenge("challenge-1", "alice", "bob", models.GameUno, 0, 0, DefaultChallengeTTL)
	require.NoError(t, err)

	assert.ErrorIs(t, Accept(c, "alice", 1), ErrNotOpponent)
	assert.ErrorIs(t, Decline(c, "mallory"), ErrNotParticipant)
	require.NoError(t, Decline(c, "bob"))
	assert.Equal(t, models.ChallengeDeclined, c.Status)
	assert.ErrorIs(t, Decline(c, "bob"), ErrNotPending)
	assert.ErrorIs(t, Accept(c, "bob", 1), ErrNotPending)

	_, err = NewChallenge("challenge-2", "alice", "alice", models.GameUno, 0, 0, DefaultChallengeTTL)
	assert.ErrorIs(t, err, ErrSelfChallenge)
	_, err = NewChallenge("challenge-3", "alice", "bob", "Chess", 0, 0, DefaultChallengeTTL)
	assert.ErrorIs(t, err, ErrUnsupportedGame)
}
