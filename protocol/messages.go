package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/wfunc/gamestation/models"
)

type MessageKind string

const (
	KindInitialize         MessageKind = "Initialize"
	KindShardReady         MessageKind = "ShardReady"
	KindPlayerJoining      MessageKind = "PlayerJoining"
	KindProcessMove        MessageKind = "ProcessMove"
	KindGameEndedWithStats MessageKind = "GameEndedWithStats"
)

// Message travels one way between the hub and a room shard.
type Message interface {
	MessageKind() MessageKind
}

// Initialize is sent by the hub to a freshly opened shard.
type Initialize struct {
	RoomID     string          `json:"room_id"`
	Game       models.GameType `json:"game"`
	Creator    string          `json:"creator"`
	MaxPlayers int             `json:"max_players"`
	Hub        string          `json:"hub"`
}

// ShardReady confirms a shard finished bootstrapping.
type ShardReady struct {
	RoomID  string          `json:"room_id"`
	Creator string          `json:"creator"`
	Game    models.GameType `json:"game"`
	Shard   string          `json:"shard"`
}

type PlayerJoining struct {
	RoomID string `json:"room_id"`
	Player string `json:"player"`
}

type ProcessMove struct {
	RoomID string `json:"room_id"`
	Player string `json:"player"`
	Move   string `json:"move"`
}

// GameEndedWithStats reports a finished match with one score per player.
type GameEndedWithStats struct {
	RoomID       string            `json:"room_id"`
	Winner       string            `json:"winner"`
	Scores       map[string]uint64 `json:"scores"`
	Game         models.GameType   `json:"game"`
	DurationSecs uint64            `json:"duration_secs"`
}

func (Initialize) MessageKind() MessageKind         { return KindInitialize }
func (ShardReady) MessageKind() MessageKind         { return KindShardReady }
func (PlayerJoining) MessageKind() MessageKind      { return KindPlayerJoining }
func (ProcessMove) MessageKind() MessageKind        { return KindProcessMove }
func (GameEndedWithStats) MessageKind() MessageKind { return KindGameEndedWithStats }

// Envelope carries one message with its identity and route.
type Envelope struct {
	ID      string          `json:"id"`
	From    string          `json:"from"`
	To      string          `json:"to"`
	Kind    MessageKind     `json:"kind"`
	Payload json.RawMessage `json:"payload"`
	SentAt  int64           `json:"sent_at"`
}

func NewEnvelope(from, to string, msg Message, now int64) (Envelope, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s: %w", msg.MessageKind(), err)
	}
	return Envelope{
		ID:      uuid.NewString(),
		From:    from,
		To:      to,
		Kind:    msg.MessageKind(),
		Payload: payload,
		SentAt:  now,
	}, nil
}

// Message decodes the payload.
func (e Envelope) Message() (Message, error) {
	var msg Message
	var err error
	switch e.Kind {
	case KindInitialize:
		var m Initialize
		err = json.Unmarshal(e.Payload, &m)
		msg = m
	case KindShardReady:
		var m ShardReady
		err = json.Unmarshal(e.Payload, &m)
		msg = m
	case KindPlayerJoining:
		var m PlayerJoining
		err = json.Unmarshal(e.Payload, &m)
		msg = m
	case KindProcessMove:
		var m ProcessMove
		err = json.Unmarshal(e.Payload, &m)
		msg = m
	case KindGameEndedWithStats:
		var m GameEndedWithStats
		err = json.Unmarshal(e.Payload, &m)
		msg = m
	default:
		return nil, fmt.Errorf("unknown message kind %q", e.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", e.Kind, err)
	}
	return msg, nil
}

// Marshal encodes the envelope for a byte transport.
func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

func UnmarshalEnvelope(data []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return e, nil
}
