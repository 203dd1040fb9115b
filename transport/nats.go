package transport

import (
	"context"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/wfunc/gamestation/config"
	"github.com/wfunc/gamestation/logger"
	"github.com/wfunc/gamestation/protocol"
)

// NATS publishes every envelope on "<prefix>.<address>".
type NATS struct {
	conn   *nats.Conn
	prefix string

	mu   sync.Mutex
	subs []*nats.Subscription
}

// ConnectNATS 连接 NATS 并设置重连回调
func ConnectNATS(cfg config.NATSConfig) (*NATS, error) {
	opts := []nats.Option{
		nats.Name("gamestation"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Log.Warnw("disconnected from NATS", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Log.Infow("reconnected to NATS", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Log.Info("NATS connection closed")
		}),
		nats.Timeout(10 * time.Second),
	}
	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, err
	}
	return NewNATS(conn, cfg.SubjectPrefix), nil
}

func NewNATS(conn *nats.Conn, prefix string) *NATS {
	if prefix == "" {
		prefix = "gamestation"
	}
	return &NATS{conn: conn, prefix: prefix}
}

// Subject is the subject envelopes for address are published on.
func (n *NATS) Subject(address string) string {
	return n.prefix + "." + address
}

func (n *NATS) Send(_ context.Context, env protocol.Envelope) error {
	if n.conn == nil || n.conn.IsClosed() {
		return ErrClosed
	}
	data, err := env.Marshal()
	if err != nil {
		return err
	}
	return n.conn.Publish(n.Subject(env.To), data)
}

// Listen delivers envelopes published for address to r.
func (n *NATS) Listen(address string, r Receiver) error {
	return n.subscribe(n.Subject(address), r)
}

// ListenAll delivers every envelope under the prefix to r.
func (n *NATS) ListenAll(r Receiver) error {
	return n.subscribe(n.prefix+".>", r)
}

func (n *NATS) subscribe(subject string, r Receiver) error {
	sub, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		env, err := protocol.UnmarshalEnvelope(msg.Data)
		if err != nil {
			logger.Log.Warnw("drop malformed envelope", "subject", msg.Subject, "error", err)
			return
		}
		if err := r.Deliver(context.Background(), env); err != nil {
			logger.Log.Infow("envelope not delivered", "to", env.To, "kind", env.Kind, "error", err)
		}
	})
	if err != nil {
		return err
	}
	n.mu.Lock()
	n.subs = append(n.subs, sub)
	n.mu.Unlock()
	return nil
}

func (n *NATS) IsConnected() bool {
	return n.conn != nil && n.conn.IsConnected()
}

// Close drains subscriptions and closes the connection.
func (n *NATS) Close() {
	n.mu.Lock()
	for _, sub := range n.subs {
		_ = sub.Unsubscribe()
	}
	n.subs = nil
	n.mu.Unlock()
	if n.conn != nil {
		n.conn.Close()
	}
}
