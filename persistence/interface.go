// persistence/interface.go
package persistence

import (
	"context"
	"fmt"

	"github.com/wfunc/gamestation/models"
	"github.com/wfunc/gamestation/store"
)

// Database 数据库接口
type Database interface {
	SaveSnapshot(ctx context.Context, snap *store.Snapshot) error
	LoadSnapshot(ctx context.Context) (*store.Snapshot, error)
	SaveGameRecord(ctx context.Context, rec models.GameRecord) error
	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = fmt.Errorf("record not found")
)
