// models/gorm_models.go
package models

import (
	"gorm.io/gorm"
)

// GormRoom 房间快照模型
type GormRoom struct {
	gorm.Model
	RoomCode string                 `gorm:"uniqueIndex;not null"`
	GameKind string                 `gorm:"not null"`
	Status   string                 `gorm:"not null"`
	Snapshot map[string]interface{} `gorm:"type:jsonb;serializer:json"`
}

// GormGameRecord 游戏记录模型
type GormGameRecord struct {
	gorm.Model
	RoomCode string                 `gorm:"index;not null"`
	GameKind string                 `gorm:"not null"`
	Players  []PlayerResult         `gorm:"type:jsonb;serializer:json;not null"`
	Rankings []string               `gorm:"type:jsonb;serializer:json;not null"`
	Extra    map[string]interface{} `gorm:"type:jsonb;serializer:json"`
}

// GormPlayerStats 玩家统计模型
type GormPlayerStats struct {
	gorm.Model
	Identity string `gorm:"uniqueIndex;not null"`
	Games    int    `gorm:"default:0"`
	Wins     int    `gorm:"default:0"`
	Losses   int    `gorm:"default:0"`
}
