package models

import "strings"

// GameType 游戏类型，JSON 中以字符串表示
type GameType string

const (
	GameSnake        GameType = "Snake"
	GameTicTacToe    GameType = "TicTacToe"
	GameSnakeLadders GameType = "SnakeLadders"
	GameUno          GameType = "Uno"
)

// AllGameTypes lists every game type the hub accepts.
var AllGameTypes = []GameType{GameSnake, GameTicTacToe, GameSnakeLadders, GameUno}

func (g GameType) Valid() bool {
	switch g {
	case GameSnake, GameTicTacToe, GameSnakeLadders, GameUno:
		return true
	}
	return false
}

// Key is the lowercase name used in room ids and leaderboard keys.
func (g GameType) Key() string {
	return strings.ToLower(string(g))
}

func (g GameType) LeaderboardKey() string {
	return g.Key() + "_global"
}

// ParseGameType accepts either the canonical name or its lowercase key.
func ParseGameType(s string) (GameType, bool) {
	for _, g := range AllGameTypes {
		if string(g) == s || g.Key() == strings.ToLower(s) {
			return g, true
		}
	}
	return "", false
}

type GameMode string

const (
	ModeSolo        GameMode = "Solo"
	ModePractice    GameMode = "Practice"
	ModeMultiplayer GameMode = "Multiplayer"
)

// Counts reports whether results played in this mode affect stats.
func (m GameMode) Counts() bool {
	return m == ModeSolo || m == ModeMultiplayer
}

type RoomStatus string

const (
	RoomWaiting    RoomStatus = "Waiting"
	RoomInProgress RoomStatus = "InProgress"
	RoomFinished   RoomStatus = "Finished"
)

type TournamentStatus string

const (
	TournamentRegistration TournamentStatus = "Registration"
	TournamentInProgress   TournamentStatus = "InProgress"
	TournamentCompleted    TournamentStatus = "Completed"
)

type ChallengeStatus string

const (
	ChallengePending   ChallengeStatus = "Pending"
	ChallengeAccepted  ChallengeStatus = "Accepted"
	ChallengeDeclined  ChallengeStatus = "Declined"
	ChallengeCompleted ChallengeStatus = "Completed"
)

// GameStats 单个游戏的统计
type GameStats struct {
	Played     uint64 `json:"played"`
	Won        uint64 `json:"won"`
	Lost       uint64 `json:"lost"`
	HighScore  uint64 `json:"high_score"`
	TotalScore uint64 `json:"total_score"`
}

// PlayerProfile 玩家档案，以地址作为唯一标识
type PlayerProfile struct {
	Address    string                  `json:"address"`
	Username   string                  `json:"username"`
	AvatarID   uint32                  `json:"avatar_id"`
	Level      uint64                  `json:"level"`
	Experience uint64                  `json:"experience"`
	TotalGames uint64                  `json:"total_games"`
	Stats      map[GameType]*GameStats `json:"stats"`
	JoinedAt   int64                   `json:"joined_at"`
}

// StatsFor returns the stats record for a game, creating it on first use.
func (p *PlayerProfile) StatsFor(g GameType) *GameStats {
	if p.Stats == nil {
		p.Stats = make(map[GameType]*GameStats)
	}
	s, ok := p.Stats[g]
	if !ok {
		s = &GameStats{}
		p.Stats[g] = s
	}
	return s
}

// Clone returns a deep copy safe to hand to readers.
func (p *PlayerProfile) Clone() *PlayerProfile {
	c := *p
	c.Stats = make(map[GameType]*GameStats, len(p.Stats))
	for g, s := range p.Stats {
		cp := *s
		c.Stats[g] = &cp
	}
	return &c
}

// GameRoom is the hub's mirror of a room.
type GameRoom struct {
	ID           string     `json:"id"`
	GameType     GameType   `json:"game_type"`
	GameMode     GameMode   `json:"game_mode"`
	Creator      string     `json:"creator"`
	Players      []string   `json:"players"`
	MaxPlayers   int        `json:"max_players"`
	EntryFee     uint64     `json:"entry_fee"`
	Status       RoomStatus `json:"status"`
	GameState    string     `json:"game_state"`
	Winner       string     `json:"winner,omitempty"`
	CreatedAt    int64      `json:"created_at"`
	LastMoveTime int64      `json:"last_move_time"`
}

func (r *GameRoom) HasPlayer(address string) bool {
	return contains(r.Players, address)
}

func (r *GameRoom) IsFull() bool {
	return len(r.Players) >= r.MaxPlayers
}

func (r *GameRoom) Clone() *GameRoom {
	c := *r
	c.Players = append([]string(nil), r.Players...)
	return &c
}

// MoveRecord 一条走子记录，Index 从 0 开始
type MoveRecord struct {
	Index  uint64 `json:"index"`
	Player string `json:"player"`
	Move   string `json:"move"`
	At     int64  `json:"at"`
}

// RoomShardState is the authoritative state held by a room shard.
type RoomShardState struct {
	RoomID     string       `json:"room_id"`
	GameType   GameType     `json:"game_type"`
	Players    []string     `json:"players"`
	MaxPlayers int          `json:"max_players"`
	Status     RoomStatus   `json:"status"`
	GameState  string       `json:"game_state"`
	Moves      []MoveRecord `json:"moves"`
	Winner     string       `json:"winner,omitempty"`
	CreatedAt  int64        `json:"created_at"`
	Hub        string       `json:"hub"`
}

func (s *RoomShardState) HasPlayer(address string) bool {
	return contains(s.Players, address)
}

func (s *RoomShardState) IsFull() bool {
	return len(s.Players) >= s.MaxPlayers
}

type TournamentBracket struct {
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
}

// MatchKey identifies the bracket when a result is reported.
func (b TournamentBracket) MatchKey() string {
	return b.Player1 + "-" + b.Player2
}

type Tournament struct {
	ID              string              `json:"id"`
	Slug            string              `json:"slug"`
	Name            string              `json:"name"`
	GameType        GameType            `json:"game_type"`
	Creator         string              `json:"creator"`
	Participants    []string            `json:"participants"`
	MaxParticipants int                 `json:"max_participants"`
	Status          TournamentStatus    `json:"status"`
	Round           int                 `json:"round"`
	Brackets        []TournamentBracket `json:"brackets"`
	// Carried holds winners already reported in the current round.
	Carried   []string `json:"carried"`
	Winner    string   `json:"winner,omitempty"`
	CreatedAt int64    `json:"created_at"`
}

func (t *Tournament) HasParticipant(address string) bool {
	return contains(t.Participants, address)
}

func (t *Tournament) Clone() *Tournament {
	c := *t
	c.Participants = append([]string(nil), t.Participants...)
	c.Brackets = append([]TournamentBracket(nil), t.Brackets...)
	c.Carried = append([]string(nil), t.Carried...)
	return &c
}

type Challenge struct {
	ID         string          `json:"id"`
	Challenger string          `json:"challenger"`
	Opponent   string          `json:"opponent"`
	GameType   GameType        `json:"game_type"`
	Wager      uint64          `json:"wager"`
	Status     ChallengeStatus `json:"status"`
	RoomID     string          `json:"room_id,omitempty"`
	CreatedAt  int64           `json:"created_at"`
	ExpiresAt  int64           `json:"expires_at"`
}

type FriendEntry struct {
	Address string `json:"address"`
	Since   int64  `json:"since"`
}

type FriendRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	SentAt int64  `json:"sent_at"`
}

type LeaderboardEntry struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Score    uint64 `json:"score"`
	Rank     int    `json:"rank"`
}

type GlobalStats struct {
	TotalPlayers      uint64 `json:"total_players"`
	TotalGames        uint64 `json:"total_games"`
	ActiveRooms       int    `json:"active_rooms"`
	ActiveTournaments int    `json:"active_tournaments"`
}

// GameRecord 一局结束后的归档记录
type GameRecord struct {
	RoomID       string            `json:"room_id"`
	GameType     GameType          `json:"game_type"`
	Players      []string          `json:"players"`
	Winner       string            `json:"winner"`
	Scores       map[string]uint64 `json:"scores"`
	Moves        []MoveRecord      `json:"moves"`
	FinalState   string            `json:"final_state"`
	DurationSecs uint64            `json:"duration_secs"`
	FinishedAt   int64             `json:"finished_at"`
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
