// persistence/gorm_postgresql.go
package persistence

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/wfunc/gamestation/config"
	"github.com/wfunc/gamestation/models"
	"github.com/wfunc/gamestation/store"
)

const batchSize = 200

// GormPostgreSQL 使用GORM的PostgreSQL实现，快照按表拆分存储
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(cfg config.PostgresConfig) (*GormPostgreSQL, error) {
	// 配置GORM日志
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold: time.Second,   // 慢SQL阈值
			LogLevel:      logger.Silent, // 日志级别
			Colorful:      false,         // 禁用彩色打印
		},
	)

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	// 获取通用数据库对象 sql.DB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 自动迁移表结构
	if err := autoMigrate(db); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// autoMigrate 自动迁移表结构
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.GormProfile{},
		&models.GormRoom{},
		&models.GormTournament{},
		&models.GormChallenge{},
		&models.GormSocial{},
		&models.GormLeaderboard{},
		&models.GormIndex{},
		&models.GormCounter{},
		&models.GormFingerprint{},
		&models.GormGameRecord{},
	)
}

func upsert(tx *gorm.DB, key string, columns ...string) *gorm.DB {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: key}},
		DoUpdates: clause.AssignmentColumns(append(columns, "updated_at")),
	})
}

// SaveSnapshot 在一个事务中写入整个快照
func (p *GormPostgreSQL) SaveSnapshot(ctx context.Context, snap *store.Snapshot) error {
	rows := toRows(snap)
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(rows.Profiles) > 0 {
			if err := upsert(tx, "address", "username", "avatar_id", "level", "experience", "total_games", "stats").
				CreateInBatches(rows.Profiles, batchSize).Error; err != nil {
				return fmt.Errorf("save profiles: %w", err)
			}
		}

		// destroyed rooms disappear from the store, so rooms are replaced
		if err := prune(tx, &models.GormRoom{}, "room_id", roomIDs(rows.Rooms)); err != nil {
			return fmt.Errorf("prune rooms: %w", err)
		}
		if len(rows.Rooms) > 0 {
			if err := upsert(tx, "room_id", "status", "shard", "data").
				CreateInBatches(rows.Rooms, batchSize).Error; err != nil {
				return fmt.Errorf("save rooms: %w", err)
			}
		}
		if len(rows.Tournaments) > 0 {
			if err := upsert(tx, "tournament_id", "status", "data").
				CreateInBatches(rows.Tournaments, batchSize).Error; err != nil {
				return fmt.Errorf("save tournaments: %w", err)
			}
		}
		if len(rows.Challenges) > 0 {
			if err := upsert(tx, "challenge_id", "status", "data").
				CreateInBatches(rows.Challenges, batchSize).Error; err != nil {
				return fmt.Errorf("save challenges: %w", err)
			}
		}
		if len(rows.Social) > 0 {
			if err := upsert(tx, "address", "friends", "requests").
				CreateInBatches(rows.Social, batchSize).Error; err != nil {
				return fmt.Errorf("save social: %w", err)
			}
		}
		if len(rows.Leaderboards) > 0 {
			if err := upsert(tx, "key", "entries").
				CreateInBatches(rows.Leaderboards, batchSize).Error; err != nil {
				return fmt.Errorf("save leaderboards: %w", err)
			}
		}
		if err := upsert(tx, "name", "items").Create(&rows.Indexes).Error; err != nil {
			return fmt.Errorf("save indexes: %w", err)
		}
		if err := upsert(tx, "name", "value").Create(&rows.Counters).Error; err != nil {
			return fmt.Errorf("save counters: %w", err)
		}
		if len(rows.Fingerprints) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				CreateInBatches(rows.Fingerprints, batchSize).Error; err != nil {
				return fmt.Errorf("save fingerprints: %w", err)
			}
		}
		return nil
	})
}

func roomIDs(rooms []models.GormRoom) []string {
	ids := make([]string, 0, len(rooms))
	for _, r := range rooms {
		ids = append(ids, r.RoomID)
	}
	return ids
}

// prune hard-deletes rows whose key is not in keep.
func prune(tx *gorm.DB, model interface{}, column string, keep []string) error {
	q := tx.Unscoped()
	if len(keep) == 0 {
		return q.Where("1 = 1").Delete(model).Error
	}
	return q.Where(column+" NOT IN ?", keep).Delete(model).Error
}

// LoadSnapshot 读取最近一次保存的快照
func (p *GormPostgreSQL) LoadSnapshot(ctx context.Context) (*store.Snapshot, error) {
	db := p.db.WithContext(ctx)
	var rows snapshotRows
	if err := db.Find(&rows.Counters).Error; err != nil {
		return nil, err
	}
	if len(rows.Counters) == 0 {
		return nil, ErrRecordNotFound
	}
	loads := []struct {
		name string
		dest interface{}
	}{
		{"profiles", &rows.Profiles},
		{"rooms", &rows.Rooms},
		{"tournaments", &rows.Tournaments},
		{"challenges", &rows.Challenges},
		{"social", &rows.Social},
		{"leaderboards", &rows.Leaderboards},
		{"indexes", &rows.Indexes},
		{"fingerprints", &rows.Fingerprints},
	}
	for _, l := range loads {
		if err := db.Find(l.dest).Error; err != nil {
			return nil, fmt.Errorf("load %s: %w", l.name, err)
		}
	}
	return fromRows(rows)
}

// SaveGameRecord 保存游戏记录
func (p *GormPostgreSQL) SaveGameRecord(ctx context.Context, rec models.GameRecord) error {
	row := recordRow(rec)
	return p.db.WithContext(ctx).Create(&row).Error
}

// GetPlayerStats 统计某个玩家的对局记录
func (p *GormPostgreSQL) GetPlayerStats(ctx context.Context, address string) (map[string]interface{}, error) {
	var stats map[string]interface{}

	err := p.db.WithContext(ctx).Raw(
		`
        SELECT
            COUNT(*) as total_games,
            SUM(CASE WHEN winner = ? THEN 1 ELSE 0 END) as wins
        FROM gorm_game_records
        WHERE players @> ?`,
		address,
		fmt.Sprintf(`[%q]`, address),
	).Scan(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	return stats, err
}

// Close 关闭数据库连接
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
