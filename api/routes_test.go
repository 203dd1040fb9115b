package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/gamestation/hub"
	"github.com/wfunc/gamestation/ledger"
	"github.com/wfunc/gamestation/models"
	"github.com/wfunc/gamestation/protocol"
	"github.com/wfunc/gamestation/services"
	"github.com/wfunc/gamestation/store"
)

// MockSubmitter applies actions straight to the hub.
type MockSubmitter struct {
	hub    *hub.Hub
	ts     int64
	nonces []string
	err    error
}

func (m *MockSubmitter) SubmitAction(ctx context.Context, action protocol.Action, submitter, nonce string) error {
	if m.err != nil {
		return m.err
	}
	m.ts++
	m.nonces = append(m.nonces, nonce)
	m.hub.Submit(ctx, protocol.Submission{Action: action, Submitter: submitter, Nonce: nonce, Timestamp: m.ts})
	return nil
}

func newApp(t *testing.T) (*fiber.App, *MockSubmitter) {
	t.Helper()
	s := store.New()
	h := hub.New("", s, ledger.NewMemoryLedger())
	sub := &MockSubmitter{hub: h}
	return New(services.NewQueryService(s), sub), sub
}

func do(t *testing.T, app *fiber.App, method, path, body string, headers map[string]string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func post(t *testing.T, app *fiber.App, kind, player, body string) int {
	t.Helper()
	code, _ := do(t, app, http.MethodPost, "/actions/"+kind, body, map[string]string{HeaderPlayer: player})
	return code
}

func TestActions_RequirePlayer(t *testing.T) {
	app, _ := newApp(t)
	code, _ := do(t, app, http.MethodPost, "/actions/CreateRoom", `{"game":"Uno"}`, nil)
	assert.Equal(t, fiber.StatusUnauthorized, code)
}

func TestActions_BadKind(t *testing.T) {
	app, _ := newApp(t)
	assert.Equal(t, fiber.StatusBadRequest, post(t, app, "Teleport", "alice", `{}`))
	assert.Equal(t, fiber.StatusBadRequest, post(t, app, "CreateRoom", "alice", `{"game":`))
}

func TestActions_SubmitterDown(t *testing.T) {
	app, sub := newApp(t)
	sub.err = errors.New("runtime stopped")
	assert.Equal(t, fiber.StatusServiceUnavailable, post(t, app, "CreateRoom", "alice", `{"game":"Uno"}`))
}

func TestActions_Nonce(t *testing.T) {
	app, sub := newApp(t)
	code, _ := do(t, app, http.MethodPost, "/actions/UpdateProfile", `{"username":"Al"}`,
		map[string]string{HeaderPlayer: "alice", HeaderNonce: "n-42"})
	assert.Equal(t, fiber.StatusAccepted, code)
	assert.Equal(t, []string{"n-42"}, sub.nonces)
}

func TestQueries(t *testing.T) {
	app, _ := newApp(t)
	require.Equal(t, fiber.StatusAccepted, post(t, app, "CreateRoom", "alice", `{"game":"TicTacToe","max_players":2}`))
	require.Equal(t, fiber.StatusAccepted, post(t, app, "SubmitScore", "bob", `{"game":"Snake","score":70,"mode":"Solo"}`))
	require.Equal(t, fiber.StatusAccepted, post(t, app, "CreateTournament", "alice", `{"name":"Cup","game":"Uno"}`))
	require.Equal(t, fiber.StatusAccepted, post(t, app, "SendFriendRequest", "alice", `{"to":"bob"}`))
	require.Equal(t, fiber.StatusAccepted, post(t, app, "CreateChallenge", "bob", `{"opponent":"alice","game":"TicTacToe"}`))

	t.Run("stats", func(t *testing.T) {
		code, body := do(t, app, http.MethodGet, "/stats", "", nil)
		require.Equal(t, fiber.StatusOK, code)
		var stats models.GlobalStats
		require.NoError(t, json.Unmarshal(body, &stats))
		assert.Equal(t, models.GlobalStats{TotalPlayers: 2, TotalGames: 1, ActiveRooms: 1, ActiveTournaments: 1}, stats)
	})

	t.Run("player", func(t *testing.T) {
		code, body := do(t, app, http.MethodGet, "/players/bob", "", nil)
		require.Equal(t, fiber.StatusOK, code)
		var p models.PlayerProfile
		require.NoError(t, json.Unmarshal(body, &p))
		assert.Equal(t, uint64(70), p.Stats[models.GameSnake].HighScore)

		code, _ = do(t, app, http.MethodGet, "/players/ghost", "", nil)
		assert.Equal(t, fiber.StatusNotFound, code)
		code, _ = do(t, app, http.MethodGet, "/players/bob/history", "", nil)
		assert.Equal(t, fiber.StatusNotImplemented, code)
	})

	t.Run("rooms", func(t *testing.T) {
		code, body := do(t, app, http.MethodGet, "/rooms", "", nil)
		require.Equal(t, fiber.StatusOK, code)
		var rooms []models.GameRoom
		require.NoError(t, json.Unmarshal(body, &rooms))
		require.Len(t, rooms, 1)
		assert.Equal(t, "room-tictactoe-0", rooms[0].ID)

		code, _ = do(t, app, http.MethodGet, "/rooms/room-tictactoe-0", "", nil)
		assert.Equal(t, fiber.StatusOK, code)
		code, _ = do(t, app, http.MethodGet, "/rooms/available/tictactoe", "", nil)
		assert.Equal(t, fiber.StatusOK, code)
		code, _ = do(t, app, http.MethodGet, "/rooms/available/chess", "", nil)
		assert.Equal(t, fiber.StatusBadRequest, code)
		code, _ = do(t, app, http.MethodGet, "/rooms/room-tictactoe-0/shard", "", nil)
		assert.Equal(t, fiber.StatusNotFound, code)
	})

	t.Run("tournaments", func(t *testing.T) {
		code, body := do(t, app, http.MethodGet, "/tournaments", "", nil)
		require.Equal(t, fiber.StatusOK, code)
		var list []models.Tournament
		require.NoError(t, json.Unmarshal(body, &list))
		require.Len(t, list, 1)
		assert.Equal(t, 8, list[0].MaxParticipants)

		code, _ = do(t, app, http.MethodGet, "/tournaments/"+list[0].ID, "", nil)
		assert.Equal(t, fiber.StatusOK, code)
	})

	t.Run("social", func(t *testing.T) {
		code, body := do(t, app, http.MethodGet, "/friend-requests/bob", "", nil)
		require.Equal(t, fiber.StatusOK, code)
		var reqs []models.FriendRequest
		require.NoError(t, json.Unmarshal(body, &reqs))
		require.Len(t, reqs, 1)
		assert.Equal(t, "alice", reqs[0].From)

		_, body = do(t, app, http.MethodGet, "/friends/bob", "", nil)
		assert.JSONEq(t, `[]`, string(body))

		_, body = do(t, app, http.MethodGet, "/challenges/by-address/alice", "", nil)
		var challenges []models.Challenge
		require.NoError(t, json.Unmarshal(body, &challenges))
		require.Len(t, challenges, 1)

		code, _ = do(t, app, http.MethodGet, "/challenges/"+challenges[0].ID, "", nil)
		assert.Equal(t, fiber.StatusOK, code)
		code, _ = do(t, app, http.MethodGet, "/challenges/challenge-9", "", nil)
		assert.Equal(t, fiber.StatusNotFound, code)
	})

	t.Run("leaderboard", func(t *testing.T) {
		code, body := do(t, app, http.MethodGet, "/leaderboards/Snake?limit=5", "", nil)
		require.Equal(t, fiber.StatusOK, code)
		var entries []models.LeaderboardEntry
		require.NoError(t, json.Unmarshal(body, &entries))
		require.Len(t, entries, 1)
		assert.Equal(t, "bob", entries[0].PlayerID)
		assert.Equal(t, uint64(70), entries[0].Score)
	})
}
