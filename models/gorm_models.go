package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GormProfile 玩家档案表
type GormProfile struct {
	gorm.Model
	Address    string         `gorm:"uniqueIndex;not null"`
	Username   string         `gorm:"not null"`
	AvatarID   uint32         `gorm:"default:0"`
	Level      uint64         `gorm:"default:1"`
	Experience uint64         `gorm:"default:0"`
	TotalGames uint64         `gorm:"default:0"`
	Stats      datatypes.JSON `gorm:"type:jsonb"`
	JoinedAt   int64
}

// GormRoom 房间镜像表
type GormRoom struct {
	gorm.Model
	RoomID string         `gorm:"uniqueIndex;not null"`
	Status string         `gorm:"index;not null"`
	Shard  string         `gorm:"index"`
	Data   datatypes.JSON `gorm:"type:jsonb;not null"`
}

type GormTournament struct {
	gorm.Model
	TournamentID string         `gorm:"uniqueIndex;not null"`
	Status       string         `gorm:"index;not null"`
	Data         datatypes.JSON `gorm:"type:jsonb;not null"`
}

type GormChallenge struct {
	gorm.Model
	ChallengeID string         `gorm:"uniqueIndex;not null"`
	Status      string         `gorm:"index;not null"`
	Data        datatypes.JSON `gorm:"type:jsonb;not null"`
}

// GormSocial stores one address' friend list and pending requests.
type GormSocial struct {
	gorm.Model
	Address  string         `gorm:"uniqueIndex;not null"`
	Friends  datatypes.JSON `gorm:"type:jsonb"`
	Requests datatypes.JSON `gorm:"type:jsonb"`
}

type GormLeaderboard struct {
	gorm.Model
	Key     string         `gorm:"uniqueIndex;not null"`
	Entries datatypes.JSON `gorm:"type:jsonb;not null"`
}

// GormCounter 计数器，例如房间编号和全局统计
type GormCounter struct {
	Name      string `gorm:"primaryKey"`
	Value     uint64 `gorm:"not null"`
	UpdatedAt time.Time
}

// GormGameRecord 游戏记录模型
type GormGameRecord struct {
	gorm.Model
	RoomID   string         `gorm:"index;not null"`
	GameType string         `gorm:"not null"`
	Winner   string         `gorm:"index"`
	Players  datatypes.JSON `gorm:"type:jsonb;not null"`
	Result   datatypes.JSON `gorm:"type:jsonb;not null"`
	Duration uint64         `gorm:"default:0"` // 游戏时长(秒)
}

// GormIndex holds an ordered id list or a small id map, e.g. active rooms.
type GormIndex struct {
	Name      string         `gorm:"primaryKey"`
	Items     datatypes.JSON `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time
}

// GormFingerprint 已处理操作的指纹，只增不删
type GormFingerprint struct {
	Fingerprint string `gorm:"primaryKey"`
	CreatedAt   time.Time
}
