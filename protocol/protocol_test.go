package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/gamestation/models"
)

func TestDecodeAction(t *testing.T) {
	a, err := DecodeAction(KindCreateRoom, []byte(`{"game":"TicTacToe","max_players":2,"entry_fee":5,"mode":"Multiplayer","nonce":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, CreateRoom{Game: models.GameTicTacToe, MaxPlayers: 2, EntryFee: 5, Mode: models.ModeMultiplayer}, a)

	a, err = DecodeAction(KindMakeMove, []byte(`{"room_id":"room-tictactoe-0","move":"1,1"}`))
	require.NoError(t, err)
	assert.Equal(t, MakeMove{RoomID: "room-tictactoe-0", Move: "1,1"}, a)

	_, err = DecodeAction("Teleport", nil)
	assert.Error(t, err)

	_, err = DecodeAction(KindJoinRoom, []byte(`{`))
	assert.Error(t, err)
}

func TestEncodeAction_Stable(t *testing.T) {
	a, err := EncodeAction(JoinRoom{RoomID: "room-uno-1"})
	require.NoError(t, err)
	b, err := EncodeAction(JoinRoom{RoomID: "room-uno-1"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.JSONEq(t, `{"room_id":"room-uno-1"}`, string(a))
}

func TestEnvelope_RoundTrip(t *testing.T) {
	msg := GameEndedWithStats{
		RoomID:       "room-tictactoe-0",
		Winner:       "alice",
		Scores:       map[string]uint64{"alice": 1, "bob": 0},
		Game:         models.GameTicTacToe,
		DurationSecs: 12,
	}
	env, err := NewEnvelope("shard-1", "hub", msg, 99)
	require.NoError(t, err)
	assert.NotEmpty(t, env.ID)
	assert.Equal(t, KindGameEndedWithStats, env.Kind)

	data, err := env.Marshal()
	require.NoError(t, err)
	back, err := UnmarshalEnvelope(data)
	require.NoError(t, err)
	assert.Equal(t, env.ID, back.ID)

	decoded, err := back.Message()
	require.NoError(t, err)
	assert.Equal(t, msg, decoded)
}

func TestEnvelope_UnknownKind(t *testing.T) {
	_, err := Envelope{Kind: "Nope"}.Message()
	assert.Error(t, err)
}

func TestOutbox(t *testing.T) {
	var o Outbox
	require.NoError(t, o.Send("hub", "shard-1", PlayerJoining{RoomID: "r", Player: "bob"}, 1))
	require.NoError(t, o.Send("hub", "shard-1", ProcessMove{RoomID: "r", Player: "bob", Move: "0,0"}, 2))
	assert.Equal(t, 2, o.Len())

	out := o.Drain()
	require.Len(t, out, 2)
	assert.Equal(t, KindPlayerJoining, out[0].Kind)
	assert.Equal(t, KindProcessMove, out[1].Kind)
	assert.NotEqual(t, out[0].ID, out[1].ID)
	assert.Zero(t, o.Len())
	assert.Empty(t, o.Drain())
}
