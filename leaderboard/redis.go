package leaderboard

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/wfunc/gamestation/models"
)

// RedisMirror copies boards into sorted sets so other services can read
// rankings without going through the hub.
type RedisMirror struct {
	client *redis.Client
	prefix string
}

func NewRedisMirror(client *redis.Client, prefix string) *RedisMirror {
	return &RedisMirror{client: client, prefix: prefix}
}

// Key 排行榜 key: {prefix}:leaderboard:{game_key}
func (m *RedisMirror) Key(board string) string {
	return fmt.Sprintf("%s:leaderboard:%s", m.prefix, board)
}

// Publish replaces the sorted set for board with entries.
func (m *RedisMirror) Publish(ctx context.Context, board string, entries []models.LeaderboardEntry) error {
	key := m.Key(board)
	members := make([]redis.Z, 0, len(entries))
	for _, e := range entries {
		members = append(members, redis.Z{Score: float64(e.Score), Member: e.PlayerID})
	}

	pipe := m.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(members) > 0 {
		pipe.ZAdd(ctx, key, members...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish leaderboard %s: %w", board, err)
	}
	return nil
}

// Ranked reads back the top n player ids, best first.
func (m *RedisMirror) Ranked(ctx context.Context, board string, n int64) ([]string, error) {
	ids, err := m.client.ZRevRange(ctx, m.Key(board), 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read leaderboard %s: %w", board, err)
	}
	return ids, nil
}
