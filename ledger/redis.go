package ledger

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/wfunc/gamestation/config"
)

// RedisLedger stores fingerprints as keys without expiry.
type RedisLedger struct {
	client *redis.Client
	prefix string
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisLedger(client *redis.Client, prefix string) *RedisLedger {
	return &RedisLedger{client: client, prefix: prefix}
}

// Key 构造指纹在 Redis 中的 key: {prefix}:op:{fingerprint}
func (l *RedisLedger) Key(fp string) string {
	return fmt.Sprintf("%s:op:%s", l.prefix, fp)
}

func (l *RedisLedger) Seen(ctx context.Context, fp string) (bool, error) {
	n, err := l.client.Exists(ctx, l.Key(fp)).Result()
	if err != nil {
		return false, fmt.Errorf("ledger exists: %w", err)
	}
	return n > 0, nil
}

func (l *RedisLedger) Record(ctx context.Context, fp string) error {
	if err := l.client.SetNX(ctx, l.Key(fp), 1, 0).Err(); err != nil {
		return fmt.Errorf("ledger record: %w", err)
	}
	return nil
}

// Ping 检查 Redis 连接
func (l *RedisLedger) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}
