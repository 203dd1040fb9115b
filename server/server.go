package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wfunc/gamestation/logger"
	"github.com/wfunc/gamestation/network"
	"github.com/wfunc/gamestation/protocol"
	"github.com/wfunc/gamestation/session"
)

// DefaultHeartbeat 两个心跳周期内没有任何数据则断开
const DefaultHeartbeat = 30 * time.Second

var ErrNotBound = errors.New("send a hello packet first")

// Submitter queues actions on the hub.
type Submitter interface {
	SubmitAction(ctx context.Context, action protocol.Action, submitter, nonce string) error
}

// PresenceCounter tracks players with a bound session.
type PresenceCounter interface {
	IncOnlinePlayers()
	DecOnlinePlayers()
}

type GameServer struct {
	addr           string
	upgrader       websocket.Upgrader
	sessionManager *session.Manager
	submitter      Submitter
	presence       PresenceCounter
	heartbeat      time.Duration
	httpServer     *http.Server
	mutex          sync.Mutex
	shutdownChan   chan struct{}
	closed         bool
}

func NewGameServer(addr string, submitter Submitter, sessions *session.Manager) *GameServer {
	return &GameServer{
		addr:           addr,
		sessionManager: sessions,
		submitter:      submitter,
		heartbeat:      DefaultHeartbeat,
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}
}

func (s *GameServer) SetPresence(p PresenceCounter) {
	s.presence = p
}

func (s *GameServer) SetHeartbeat(d time.Duration) {
	s.heartbeat = d
}

// Handler serves the websocket endpoint at /ws.
func (s *GameServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

func (s *GameServer) Start() error {
	s.mutex.Lock()
	s.httpServer = &http.Server{Addr: s.addr, Handler: s.Handler()}
	srv := s.httpServer
	s.mutex.Unlock()

	logger.Log.Infof("Game server listening on %s", s.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and closes every open session.
func (s *GameServer) Shutdown(ctx context.Context) error {
	s.mutex.Lock()
	if !s.closed {
		s.closed = true
		close(s.shutdownChan)
	}
	srv := s.httpServer
	s.mutex.Unlock()

	for _, sess := range s.sessionManager.All() {
		sess.Close()
	}
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(network.NewWSConnection(conn))
}

func (s *GameServer) handleConnection(conn network.Connection) {
	sess := session.NewSession(uuid.New().String(), conn)
	s.sessionManager.Add(sess)
	if s.heartbeat > 0 {
		conn.SetHeartbeat(s.heartbeat)
	}

	logger.Log.Infof("New connection from %s, session ID: %s", conn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", conn.RemoteAddr(), sess.GetID())
		s.sessionManager.Remove(sess.GetID())
		if sess.GetAddress() != "" && s.presence != nil {
			s.presence.DecOnlinePlayers()
		}
		conn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := conn.ReadPacket()
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	sess.Touch()
	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		sess.Send(network.MsgTypeHeartbeat, nil)
	case network.MsgTypeHello:
		s.handleHello(sess, packet)
	default:
		kind, ok := network.ActionKind(packet.MsgID)
		if !ok {
			logger.Log.Infof("Unknown message type: %d", packet.MsgID)
			s.replyError(sess, packet.MsgID, errors.New("unknown message type"))
			return
		}
		s.handleAction(sess, packet, kind)
	}
}

func (s *GameServer) handleHello(sess *session.Session, packet *network.Packet) {
	var hello network.Hello
	if err := json.Unmarshal(packet.Data, &hello); err != nil {
		s.replyError(sess, packet.MsgID, err)
		return
	}
	address := strings.TrimSpace(hello.Address)
	if address == "" {
		s.replyError(sess, packet.MsgID, errors.New("empty address"))
		return
	}
	if !sess.Bind(address) {
		s.replyError(sess, packet.MsgID, errors.New("session already bound"))
		return
	}
	if s.presence != nil {
		s.presence.IncOnlinePlayers()
	}
	logger.Log.Infow("session bound", "session", sess.GetID(), "player", address)
	network.SendJSON(sess.Conn, network.MsgTypeHello, hello)
}

// handleAction decodes the packet body as the action and queues it. An
// optional "nonce" field in the body makes client retries safe.
func (s *GameServer) handleAction(sess *session.Session, packet *network.Packet, kind protocol.ActionKind) {
	address := sess.GetAddress()
	if address == "" {
		s.replyError(sess, packet.MsgID, ErrNotBound)
		return
	}
	action, err := protocol.DecodeAction(kind, packet.Data)
	if err != nil {
		s.replyError(sess, packet.MsgID, err)
		return
	}
	var meta struct {
		Nonce string `json:"nonce"`
	}
	if len(packet.Data) > 0 {
		_ = json.Unmarshal(packet.Data, &meta)
	}

	if err := s.submitter.SubmitAction(context.Background(), action, address, meta.Nonce); err != nil {
		logger.Log.Warnw("action not queued", "session", sess.GetID(), "player", address, "kind", kind, "error", err)
		s.replyError(sess, packet.MsgID, err)
		return
	}
	network.SendJSON(sess.Conn, network.MsgTypeAck, network.Ack{Kind: kind, Nonce: meta.Nonce})
}

func (s *GameServer) replyError(sess *session.Session, msgID uint16, err error) {
	network.SendJSON(sess.Conn, network.MsgTypeError, network.ErrorReply{MsgID: msgID, Error: err.Error()})
}
