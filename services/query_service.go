// services/query_service.go
package services

import (
	"context"
	"errors"

	"github.com/wfunc/gamestation/leaderboard"
	"github.com/wfunc/gamestation/models"
	"github.com/wfunc/gamestation/store"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrNoHistory = errors.New("match history is not configured")
)

// HistorySource 对局历史统计，由数据库实现
type HistorySource interface {
	GetPlayerStats(ctx context.Context, address string) (map[string]interface{}, error)
}

// QueryService answers the read-only queries. Every method takes the store's
// read lock and returns copies, so callers never share memory with the hub.
type QueryService struct {
	store   *store.Store
	history HistorySource
}

func NewQueryService(s *store.Store) *QueryService {
	return &QueryService{store: s}
}

func (q *QueryService) SetHistory(h HistorySource) {
	q.history = h
}

func (q *QueryService) TotalPlayers() uint64 {
	q.store.RLock()
	defer q.store.RUnlock()
	return q.store.TotalPlayers
}

func (q *QueryService) TotalGames() uint64 {
	q.store.RLock()
	defer q.store.RUnlock()
	return q.store.TotalGames
}

func (q *QueryService) GlobalStats() models.GlobalStats {
	q.store.RLock()
	defer q.store.RUnlock()
	return models.GlobalStats{
		TotalPlayers:      q.store.TotalPlayers,
		TotalGames:        q.store.TotalGames,
		ActiveRooms:       len(q.store.ActiveRooms),
		ActiveTournaments: len(q.store.ActiveTournaments),
	}
}

func (q *QueryService) Profile(address string) (*models.PlayerProfile, error) {
	q.store.RLock()
	defer q.store.RUnlock()
	p, ok := q.store.Profiles[address]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

// PlayerHistory 从数据库读取玩家的历史对局统计
func (q *QueryService) PlayerHistory(ctx context.Context, address string) (map[string]interface{}, error) {
	if q.history == nil {
		return nil, ErrNoHistory
	}
	return q.history.GetPlayerStats(ctx, address)
}

// ActiveRooms 按创建顺序
func (q *QueryService) ActiveRooms() []*models.GameRoom {
	q.store.RLock()
	defer q.store.RUnlock()
	rooms := make([]*models.GameRoom, 0, len(q.store.ActiveRooms))
	for _, id := range q.store.ActiveRooms {
		if r, ok := q.store.Rooms[id]; ok {
			rooms = append(rooms, r.Clone())
		}
	}
	return rooms
}

func (q *QueryService) Room(id string) (*models.GameRoom, error) {
	q.store.RLock()
	defer q.store.RUnlock()
	r, ok := q.store.Rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r.Clone(), nil
}

// AvailableRoom 第一个可加入的房间
func (q *QueryService) AvailableRoom(game models.GameType) (*models.GameRoom, error) {
	for _, r := range q.ActiveRooms() {
		if r.GameType == game && r.Status == models.RoomWaiting && !r.IsFull() {
			return r, nil
		}
	}
	return nil, ErrNotFound
}

// ShardFor returns the address of the shard hosting roomID.
func (q *QueryService) ShardFor(roomID string) (string, error) {
	q.store.RLock()
	defer q.store.RUnlock()
	shard, ok := q.store.ShardFor(roomID)
	if !ok {
		return "", ErrNotFound
	}
	return shard, nil
}

func (q *QueryService) ActiveTournaments() []*models.Tournament {
	q.store.RLock()
	defer q.store.RUnlock()
	out := make([]*models.Tournament, 0, len(q.store.ActiveTournaments))
	for _, id := range q.store.ActiveTournaments {
		if t, ok := q.store.Tournaments[id]; ok {
			out = append(out, t.Clone())
		}
	}
	return out
}

func (q *QueryService) Tournament(id string) (*models.Tournament, error) {
	q.store.RLock()
	defer q.store.RUnlock()
	t, ok := q.store.Tournaments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return t.Clone(), nil
}

func (q *QueryService) Friends(address string) []models.FriendEntry {
	q.store.RLock()
	defer q.store.RUnlock()
	return append([]models.FriendEntry{}, q.store.Social.Friends[address]...)
}

// FriendRequests 返回发给 address 的待处理请求
func (q *QueryService) FriendRequests(address string) []models.FriendRequest {
	q.store.RLock()
	defer q.store.RUnlock()
	return append([]models.FriendRequest{}, q.store.Social.Requests[address]...)
}

// Challenges returns every challenge address sent or received, oldest first.
func (q *QueryService) Challenges(address string) []models.Challenge {
	q.store.RLock()
	defer q.store.RUnlock()
	ids := q.store.UserChallenges[address]
	out := make([]models.Challenge, 0, len(ids))
	for _, id := range ids {
		if c, ok := q.store.Challenges[id]; ok {
			out = append(out, *c)
		}
	}
	return out
}

func (q *QueryService) Challenge(id string) (*models.Challenge, error) {
	q.store.RLock()
	defer q.store.RUnlock()
	c, ok := q.store.Challenges[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// Leaderboard returns the top entries of a game's global board. A
// non-positive limit means leaderboard.DefaultLimit.
func (q *QueryService) Leaderboard(game models.GameType, limit int) []models.LeaderboardEntry {
	q.store.RLock()
	defer q.store.RUnlock()
	return append([]models.LeaderboardEntry{}, leaderboard.Top(q.store.Leaderboards[game.LeaderboardKey()], limit)...)
}
