package network

import "github.com/wfunc/gamestation/protocol"

// 消息 ID。1xx 为客户端提交的动作，3xx 为服务端推送
const (
	MsgTypeHeartbeat = 1
	MsgTypeHello     = 2 // 首包，绑定会话地址
	MsgTypeAck       = 3
	MsgTypeError     = 4

	MsgTypeSubmitScore         = 101
	MsgTypeUpdateProfile       = 102
	MsgTypeCreateRoom          = 103
	MsgTypeJoinRoom            = 104
	MsgTypeLeaveRoom           = 105
	MsgTypeMakeMove            = 106
	MsgTypeCloseRoom           = 107
	MsgTypeCreateTournament    = 111
	MsgTypeJoinTournament      = 112
	MsgTypeStartTournament     = 113
	MsgTypeAdvanceTournament   = 114
	MsgTypeSendFriendRequest   = 121
	MsgTypeAcceptFriendRequest = 122
	MsgTypeRejectFriendRequest = 123
	MsgTypeRemoveFriend        = 124
	MsgTypeCreateChallenge     = 131
	MsgTypeAcceptChallenge     = 132
	MsgTypeDeclineChallenge    = 133

	MsgTypeRoomState = 301
)

var actionKinds = map[uint16]protocol.ActionKind{
	MsgTypeSubmitScore:         protocol.KindSubmitScore,
	MsgTypeUpdateProfile:       protocol.KindUpdateProfile,
	MsgTypeCreateRoom:          protocol.KindCreateRoom,
	MsgTypeJoinRoom:            protocol.KindJoinRoom,
	MsgTypeLeaveRoom:           protocol.KindLeaveRoom,
	MsgTypeMakeMove:            protocol.KindMakeMove,
	MsgTypeCloseRoom:           protocol.KindCloseRoom,
	MsgTypeCreateTournament:    protocol.KindCreateTournament,
	MsgTypeJoinTournament:      protocol.KindJoinTournament,
	MsgTypeStartTournament:     protocol.KindStartTournament,
	MsgTypeAdvanceTournament:   protocol.KindAdvanceTournament,
	MsgTypeSendFriendRequest:   protocol.KindSendFriendRequest,
	MsgTypeAcceptFriendRequest: protocol.KindAcceptFriendRequest,
	MsgTypeRejectFriendRequest: protocol.KindRejectFriendRequest,
	MsgTypeRemoveFriend:        protocol.KindRemoveFriend,
	MsgTypeCreateChallenge:     protocol.KindCreateChallenge,
	MsgTypeAcceptChallenge:     protocol.KindAcceptChallenge,
	MsgTypeDeclineChallenge:    protocol.KindDeclineChallenge,
}

// ActionKind returns the action carried by packets with msgID.
func ActionKind(msgID uint16) (protocol.ActionKind, bool) {
	k, ok := actionKinds[msgID]
	return k, ok
}

// MsgID is the inverse of ActionKind.
func MsgID(kind protocol.ActionKind) (uint16, bool) {
	for id, k := range actionKinds {
		if k == kind {
			return id, true
		}
	}
	return 0, false
}

// Hello is the body of the first packet of a session.
type Hello struct {
	Address string `json:"address"`
}

// Ack confirms an action was queued on the hub. Queued does not mean
// applied: clients re-query state to see the outcome.
type Ack struct {
	Kind  protocol.ActionKind `json:"kind"`
	Nonce string              `json:"nonce,omitempty"`
}

type ErrorReply struct {
	MsgID uint16 `json:"msg_id"`
	Error string `json:"error"`
}
