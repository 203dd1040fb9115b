package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/gamestation/hub"
	"github.com/wfunc/gamestation/ledger"
	"github.com/wfunc/gamestation/models"
	"github.com/wfunc/gamestation/protocol"
	"github.com/wfunc/gamestation/store"
)

type fakeHistory struct {
	address string
}

func (f *fakeHistory) GetPlayerStats(_ context.Context, address string) (map[string]interface{}, error) {
	f.address = address
	return map[string]interface{}{"total_games": int64(3), "wins": int64(1)}, nil
}

// seeded 返回一个做过若干操作的 hub，房间都留在 hub 内
func seeded(t *testing.T) (*hub.Hub, *QueryService) {
	t.Helper()
	s := store.New()
	h := hub.New("", s, ledger.NewMemoryLedger())
	ctx := context.Background()
	run := func(a protocol.Action, who string, ts int64) {
		require.True(t, h.Execute(ctx, a, who, ts), "%s by %s", a.Kind(), who)
	}

	run(protocol.UpdateProfile{Username: "Alice", AvatarID: 7}, "alice", 1)
	run(protocol.SubmitScore{Game: models.GameSnake, Score: 40, Mode: models.ModeSolo}, "alice", 2)
	run(protocol.SubmitScore{Game: models.GameSnake, Score: 90, Mode: models.ModeSolo}, "bob", 3)
	run(protocol.CreateRoom{Game: models.GameTicTacToe, MaxPlayers: 2}, "alice", 4)
	run(protocol.CreateRoom{Game: models.GameUno, MaxPlayers: 3}, "bob", 5)
	run(protocol.CreateTournament{Name: "Spring Cup", Game: models.GameTicTacToe, MaxPlayers: 4}, "alice", 6)
	run(protocol.SendFriendRequest{To: "bob"}, "alice", 7)
	run(protocol.SendFriendRequest{To: "carol"}, "alice", 8)
	run(protocol.AcceptFriendRequest{From: "alice"}, "bob", 9)
	run(protocol.CreateChallenge{Opponent: "bob", Game: models.GameTicTacToe}, "alice", 10)
	run(protocol.JoinTournament{TournamentID: "tournament-0"}, "alice", 11)
	return h, NewQueryService(s)
}

func TestQueryService_Totals(t *testing.T) {
	_, q := seeded(t)

	assert.Equal(t, uint64(2), q.TotalPlayers())
	assert.Equal(t, uint64(2), q.TotalGames())
	assert.Equal(t, models.GlobalStats{
		TotalPlayers:      2,
		TotalGames:        2,
		ActiveRooms:       2,
		ActiveTournaments: 1,
	}, q.GlobalStats())
}

func TestQueryService_ProfileIsACopy(t *testing.T) {
	h, q := seeded(t)

	p, err := q.Profile("alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.Username)
	assert.Equal(t, uint32(7), p.AvatarID)

	p.Username = "mallory"
	p.StatsFor(models.GameSnake).HighScore = 1
	assert.Equal(t, "Alice", h.Store().Profiles["alice"].Username)
	assert.Equal(t, uint64(40), h.Store().Profiles["alice"].Stats[models.GameSnake].HighScore)

	_, err = q.Profile("nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQueryService_Rooms(t *testing.T) {
	_, q := seeded(t)

	rooms := q.ActiveRooms()
	require.Len(t, rooms, 2)
	assert.Equal(t, "room-tictactoe-0", rooms[0].ID)
	assert.Equal(t, "room-uno-1", rooms[1].ID)

	r, err := q.Room("room-uno-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, r.Players)

	avail, err := q.AvailableRoom(models.GameUno)
	require.NoError(t, err)
	assert.Equal(t, "room-uno-1", avail.ID)
	_, err = q.AvailableRoom(models.GameSnakeLadders)
	assert.ErrorIs(t, err, ErrNotFound)

	// 没有 host，房间不会映射到 shard
	_, err = q.ShardFor("room-uno-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQueryService_Tournaments(t *testing.T) {
	_, q := seeded(t)

	list := q.ActiveTournaments()
	require.Len(t, list, 1)
	assert.Equal(t, "spring-cup-tournament-0", list[0].Slug)

	tour, err := q.Tournament(list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, tour.Participants)

	_, err = q.Tournament("tournament-99")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQueryService_Social(t *testing.T) {
	_, q := seeded(t)

	friends := q.Friends("bob")
	require.Len(t, friends, 1)
	assert.Equal(t, "alice", friends[0].Address)
	assert.Empty(t, q.Friends("carol"))

	reqs := q.FriendRequests("carol")
	require.Len(t, reqs, 1)
	assert.Equal(t, "alice", reqs[0].From)

	challenges := q.Challenges("bob")
	require.Len(t, challenges, 1)
	assert.Equal(t, models.ChallengePending, challenges[0].Status)

	c, err := q.Challenge(challenges[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", c.Challenger)
	assert.Empty(t, q.Challenges("carol"))
}

func TestQueryService_Leaderboard(t *testing.T) {
	_, q := seeded(t)

	board := q.Leaderboard(models.GameSnake, 0)
	require.Len(t, board, 2)
	assert.Equal(t, "bob", board[0].PlayerID)
	assert.Equal(t, uint64(90), board[0].Score)
	assert.Equal(t, 1, board[0].Rank)

	assert.Len(t, q.Leaderboard(models.GameSnake, 1), 1)
	assert.NotNil(t, q.Leaderboard(models.GameUno, 5))
	assert.Empty(t, q.Leaderboard(models.GameUno, 5))
}

func TestQueryService_History(t *testing.T) {
	_, q := seeded(t)

	_, err := q.PlayerHistory(context.Background(), "alice")
	assert.True(t, errors.Is(err, ErrNoHistory))

	f := &fakeHistory{}
	q.SetHistory(f)
	stats, err := q.PlayerHistory(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", f.address)
	assert.Equal(t, int64(3), stats["total_games"])
}
