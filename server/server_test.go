package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/gamestation/models"
	"github.com/wfunc/gamestation/network"
	"github.com/wfunc/gamestation/protocol"
	"github.com/wfunc/gamestation/session"
)

type submitted struct {
	action    protocol.Action
	submitter string
	nonce     string
}

type MockSubmitter struct {
	mu  sync.Mutex
	got []submitted
}

func (m *MockSubmitter) SubmitAction(_ context.Context, action protocol.Action, submitter, nonce string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.got = append(m.got, submitted{action, submitter, nonce})
	return nil
}

func (m *MockSubmitter) all() []submitted {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]submitted(nil), m.got...)
}

type MockPresence struct {
	mu     sync.Mutex
	online int
}

func (m *MockPresence) IncOnlinePlayers() { m.mu.Lock(); m.online++; m.mu.Unlock() }
func (m *MockPresence) DecOnlinePlayers() { m.mu.Lock(); m.online--; m.mu.Unlock() }
func (m *MockPresence) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

type harness struct {
	server   *GameServer
	http     *httptest.Server
	sub      *MockSubmitter
	presence *MockPresence
	sessions *session.Manager
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{sub: &MockSubmitter{}, presence: &MockPresence{}, sessions: session.NewManager()}
	h.server = NewGameServer("", h.sub, h.sessions)
	h.server.SetPresence(h.presence)
	h.http = httptest.NewServer(h.server.Handler())
	t.Cleanup(func() {
		h.server.Shutdown(context.Background())
		h.http.Close()
	})
	return h
}

func (h *harness) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(h.http.URL, "http") + "/ws"
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func send(t *testing.T, c *websocket.Conn, msgID uint16, v interface{}) {
	t.Helper()
	var data []byte
	if v != nil {
		var err error
		data, err = json.Marshal(v)
		require.NoError(t, err)
	}
	packet, err := network.Encode(msgID, data)
	require.NoError(t, err)
	require.NoError(t, c.WriteMessage(websocket.BinaryMessage, packet))
}

func read(t *testing.T, c *websocket.Conn) *network.Packet {
	t.Helper()
	c.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := c.ReadMessage()
	require.NoError(t, err)
	p, err := network.Decode(data)
	require.NoError(t, err)
	return p
}

func TestGateway_ActionBeforeHello(t *testing.T) {
	h := newHarness(t)
	c := h.dial(t)

	send(t, c, network.MsgTypeCreateRoom, protocol.CreateRoom{Game: models.GameUno})
	p := read(t, c)
	require.Equal(t, uint16(network.MsgTypeError), p.MsgID)

	var reply network.ErrorReply
	require.NoError(t, json.Unmarshal(p.Data, &reply))
	assert.Equal(t, uint16(network.MsgTypeCreateRoom), reply.MsgID)
	assert.Equal(t, ErrNotBound.Error(), reply.Error)
	assert.Empty(t, h.sub.all())
}

func TestGateway_HelloThenActions(t *testing.T) {
	h := newHarness(t)
	c := h.dial(t)

	send(t, c, network.MsgTypeHello, network.Hello{Address: "alice"})
	p := read(t, c)
	require.Equal(t, uint16(network.MsgTypeHello), p.MsgID)
	assert.Equal(t, 1, h.presence.count())
	assert.Len(t, h.sessions.GetByAddress("alice"), 1)

	body := map[string]interface{}{"room_id": "room-tictactoe-0", "move": "1,1", "nonce": "m-1"}
	send(t, c, network.MsgTypeMakeMove, body)
	p = read(t, c)
	require.Equal(t, uint16(network.MsgTypeAck), p.MsgID)
	var ack network.Ack
	require.NoError(t, json.Unmarshal(p.Data, &ack))
	assert.Equal(t, protocol.KindMakeMove, ack.Kind)
	assert.Equal(t, "m-1", ack.Nonce)

	got := h.sub.all()
	require.Len(t, got, 1)
	assert.Equal(t, protocol.MakeMove{RoomID: "room-tictactoe-0", Move: "1,1"}, got[0].action)
	assert.Equal(t, "alice", got[0].submitter)
	assert.Equal(t, "m-1", got[0].nonce)

	// 重复 Hello 被拒绝
	send(t, c, network.MsgTypeHello, network.Hello{Address: "mallory"})
	p = read(t, c)
	assert.Equal(t, uint16(network.MsgTypeError), p.MsgID)
}

func TestGateway_UnknownAndMalformed(t *testing.T) {
	h := newHarness(t)
	c := h.dial(t)
	send(t, c, network.MsgTypeHello, network.Hello{Address: "bob"})
	read(t, c)

	send(t, c, 999, nil)
	assert.Equal(t, uint16(network.MsgTypeError), read(t, c).MsgID)

	packet, err := network.Encode(network.MsgTypeJoinRoom, []byte(`{"room_id":`))
	require.NoError(t, err)
	require.NoError(t, c.WriteMessage(websocket.BinaryMessage, packet))
	assert.Equal(t, uint16(network.MsgTypeError), read(t, c).MsgID)

	send(t, c, network.MsgTypeHeartbeat, nil)
	assert.Equal(t, uint16(network.MsgTypeHeartbeat), read(t, c).MsgID)
	assert.Empty(t, h.sub.all())
}

func TestGateway_DisconnectReleasesSession(t *testing.T) {
	h := newHarness(t)
	c := h.dial(t)
	send(t, c, network.MsgTypeHello, network.Hello{Address: "carol"})
	read(t, c)
	require.Equal(t, 1, h.sessions.Count())

	c.Close()
	assert.Eventually(t, func() bool {
		return h.sessions.Count() == 0 && h.presence.count() == 0
	}, 2*time.Second, 10*time.Millisecond)
}
