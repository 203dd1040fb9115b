// Package protocol defines the actions clients submit to the hub, the
// messages exchanged between the hub and room shards, and the envelope and
// outbox that carry them.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/wfunc/gamestation/models"
)

type ActionKind string

const (
	KindSubmitScore         ActionKind = "SubmitScore"
	KindUpdateProfile       ActionKind = "UpdateProfile"
	KindCreateRoom          ActionKind = "CreateRoom"
	KindJoinRoom            ActionKind = "JoinRoom"
	KindLeaveRoom           ActionKind = "LeaveRoom"
	KindMakeMove            ActionKind = "MakeMove"
	KindCloseRoom           ActionKind = "CloseRoom"
	KindCreateTournament    ActionKind = "CreateTournament"
	KindJoinTournament      ActionKind = "JoinTournament"
	KindStartTournament     ActionKind = "StartTournament"
	KindAdvanceTournament   ActionKind = "AdvanceTournament"
	KindSendFriendRequest   ActionKind = "SendFriendRequest"
	KindAcceptFriendRequest ActionKind = "AcceptFriendRequest"
	KindRejectFriendRequest ActionKind = "RejectFriendRequest"
	KindRemoveFriend        ActionKind = "RemoveFriend"
	KindCreateChallenge     ActionKind = "CreateChallenge"
	KindAcceptChallenge     ActionKind = "AcceptChallenge"
	KindDeclineChallenge    ActionKind = "DeclineChallenge"
)

// Action is one client intent.
type Action interface {
	Kind() ActionKind
}

// SubmitScore reports a finished game played outside a shard. Score is used
// by score games, Won by the others.
type SubmitScore struct {
	Game  models.GameType `json:"game"`
	Score uint64          `json:"score"`
	Won   bool            `json:"won"`
	Mode  models.GameMode `json:"mode"`
}

type UpdateProfile struct {
	Username string `json:"username"`
	AvatarID uint32 `json:"avatar_id"`
}

type CreateRoom struct {
	Game       models.GameType `json:"game"`
	MaxPlayers int             `json:"max_players"`
	EntryFee   uint64          `json:"entry_fee"`
	Mode       models.GameMode `json:"mode"`
}

type JoinRoom struct {
	RoomID string `json:"room_id"`
}

type LeaveRoom struct {
	RoomID string `json:"room_id"`
}

type MakeMove struct {
	RoomID string `json:"room_id"`
	Move   string `json:"move"`
}

type CloseRoom struct {
	RoomID string `json:"room_id"`
}

type CreateTournament struct {
	Name       string          `json:"name"`
	Game       models.GameType `json:"game"`
	MaxPlayers int             `json:"max_players"`
}

type JoinTournament struct {
	TournamentID string `json:"tournament_id"`
}

type StartTournament struct {
	TournamentID string `json:"tournament_id"`
}

type AdvanceTournament struct {
	TournamentID string `json:"tournament_id"`
	MatchKey     string `json:"match_key"`
	Winner       string `json:"winner"`
}

type SendFriendRequest struct {
	To string `json:"to"`
}

type AcceptFriendRequest struct {
	From string `json:"from"`
}

type RejectFriendRequest struct {
	From string `json:"from"`
}

type RemoveFriend struct {
	Friend string `json:"friend"`
}

type CreateChallenge struct {
	Opponent string          `json:"opponent"`
	Game     models.GameType `json:"game"`
	Wager    uint64          `json:"wager"`
}

type AcceptChallenge struct {
	ChallengeID string `json:"challenge_id"`
}

type DeclineChallenge struct {
	ChallengeID string `json:"challenge_id"`
}

func (SubmitScore) Kind() ActionKind         { return KindSubmitScore }
func (UpdateProfile) Kind() ActionKind       { return KindUpdateProfile }
func (CreateRoom) Kind() ActionKind          { return KindCreateRoom }
func (JoinRoom) Kind() ActionKind            { return KindJoinRoom }
func (LeaveRoom) Kind() ActionKind           { return KindLeaveRoom }
func (MakeMove) Kind() ActionKind            { return KindMakeMove }
func (CloseRoom) Kind() ActionKind           { return KindCloseRoom }
func (CreateTournament) Kind() ActionKind    { return KindCreateTournament }
func (JoinTournament) Kind() ActionKind      { return KindJoinTournament }
func (StartTournament) Kind() ActionKind     { return KindStartTournament }
func (AdvanceTournament) Kind() ActionKind   { return KindAdvanceTournament }
func (SendFriendRequest) Kind() ActionKind   { return KindSendFriendRequest }
func (AcceptFriendRequest) Kind() ActionKind { return KindAcceptFriendRequest }
func (RejectFriendRequest) Kind() ActionKind { return KindRejectFriendRequest }
func (RemoveFriend) Kind() ActionKind        { return KindRemoveFriend }
func (CreateChallenge) Kind() ActionKind     { return KindCreateChallenge }
func (AcceptChallenge) Kind() ActionKind     { return KindAcceptChallenge }
func (DeclineChallenge) Kind() ActionKind    { return KindDeclineChallenge }

// Submission is an action as received by the hub. Nonce is optional.
type Submission struct {
	Action    Action
	Submitter string
	Nonce     string
	Timestamp int64
}

// EncodeAction returns the canonical JSON body of an action. It is the
// content part of the action fingerprint.
func EncodeAction(a Action) ([]byte, error) {
	return json.Marshal(a)
}

// DecodeAction decodes body as the action named by kind.
func DecodeAction(kind ActionKind, body []byte) (Action, error) {
	var a Action
	switch kind {
	case KindSubmitScore:
		a = &SubmitScore{}
	case KindUpdateProfile:
		a = &UpdateProfile{}
	case KindCreateRoom:
		a = &CreateRoom{}
	case KindJoinRoom:
		a = &JoinRoom{}
	case KindLeaveRoom:
		a = &LeaveRoom{}
	case KindMakeMove:
		a = &MakeMove{}
	case KindCloseRoom:
		a = &CloseRoom{}
	case KindCreateTournament:
		a = &CreateTournament{}
	case KindJoinTournament:
		a = &JoinTournament{}
	case KindStartTournament:
		a = &StartTournament{}
	case KindAdvanceTournament:
		a = &AdvanceTournament{}
	case KindSendFriendRequest:
		a = &SendFriendRequest{}
	case KindAcceptFriendRequest:
		a = &AcceptFriendRequest{}
	case KindRejectFriendRequest:
		a = &RejectFriendRequest{}
	case KindRemoveFriend:
		a = &RemoveFriend{}
	case KindCreateChallenge:
		a = &CreateChallenge{}
	case KindAcceptChallenge:
		a = &AcceptChallenge{}
	case KindDeclineChallenge:
		a = &DeclineChallenge{}
	default:
		return nil, fmt.Errorf("unknown action kind %q", kind)
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, a); err != nil {
			return nil, fmt.Errorf("decode %s: %w", kind, err)
		}
	}
	return deref(a), nil
}

// deref returns the value form so handlers can type switch on values only.
func deref(a Action) Action {
	switch v := a.(type) {
	case *SubmitScore:
		return *v
	case *UpdateProfile:
		return *v
	case *CreateRoom:
		return *v
	case *JoinRoom:
		return *v
	case *LeaveRoom:
		return *v
	case *MakeMove:
		return *v
	case *CloseRoom:
		return *v
	case *CreateTournament:
		return *v
	case *JoinTournament:
		return *v
	case *StartTournament:
		return *v
	case *AdvanceTournament:
		return *v
	case *SendFriendRequest:
		return *v
	case *AcceptFriendRequest:
		return *v
	case *RejectFriendRequest:
		return *v
	case *RemoveFriend:
		return *v
	case *CreateChallenge:
		return *v
	case *AcceptChallenge:
		return *v
	case *DeclineChallenge:
		return *v
	}
	return a
}
