// broadcast/broadcast.go
package broadcast

import (
	"errors"

	"github.com/wfunc/gamestation/logger"
	"github.com/wfunc/gamestation/session"
)

var (
	ErrNoRecipients = errors.New("no connected recipients")
)

// 广播接口
type Broadcaster interface {
	BroadcastToAll(msgID uint16, data []byte) error
	BroadcastToUsers(addresses []string, msgID uint16, data []byte) error
}

// 基于会话的广播器，按玩家地址投递
type SessionBroadcaster struct {
	sessionManager *session.Manager
}

func NewSessionBroadcaster(sessionManager *session.Manager) *SessionBroadcaster {
	return &SessionBroadcaster{sessionManager: sessionManager}
}

func (b *SessionBroadcaster) BroadcastToAll(msgID uint16, data []byte) error {
	for _, s := range b.sessionManager.All() {
		if s.GetAddress() == "" {
			continue
		}
		if err := s.Send(msgID, data); err != nil {
			logger.Log.Debugw("broadcast send failed", "session", s.GetID(), "error", err)
		}
	}
	return nil
}

// BroadcastToUsers 发送给每个地址的所有连接。没有任何连接在线时返回 ErrNoRecipients
func (b *SessionBroadcaster) BroadcastToUsers(addresses []string, msgID uint16, data []byte) error {
	delivered := 0
	for _, addr := range addresses {
		for _, s := range b.sessionManager.GetByAddress(addr) {
			if err := s.Send(msgID, data); err != nil {
				// 发送失败的连接由读循环负责清理
				logger.Log.Debugw("broadcast send failed", "session", s.GetID(), "player", addr, "error", err)
				continue
			}
			delivered++
		}
	}
	if delivered == 0 && len(addresses) > 0 {
		return ErrNoRecipients
	}
	return nil
}
