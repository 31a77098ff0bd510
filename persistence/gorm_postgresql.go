// persistence/gorm_postgresql.go
package persistence

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wfunc/cardserver/models"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	// 配置GORM日志
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 自动迁移表结构
	if err := db.AutoMigrate(
		&models.GormRoom{},
		&models.GormGameRecord{},
		&models.GormPlayerStats{},
	); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// SaveRoomState 保存房间快照, last write wins
func (p *GormPostgreSQL) SaveRoomState(roomCode, gameKind, status string, snapshot map[string]interface{}) error {
	var room models.GormRoom
	result := p.db.Where("room_code = ?", roomCode).First(&room)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		room = models.GormRoom{
			RoomCode: roomCode,
			GameKind: gameKind,
			Status:   status,
			Snapshot: snapshot,
		}
		return p.db.Create(&room).Error
	} else if result.Error != nil {
		return result.Error
	}

	room.Status = status
	room.Snapshot = snapshot
	return p.db.Save(&room).Error
}

// LoadRoomState 加载房间快照
func (p *GormPostgreSQL) LoadRoomState(roomCode string) (*models.RoomSnapshot, error) {
	var room models.GormRoom
	if err := p.db.Where("room_code = ?", roomCode).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	return &models.RoomSnapshot{
		RoomCode:  room.RoomCode,
		GameKind:  room.GameKind,
		Status:    room.Status,
		Snapshot:  room.Snapshot,
		CreatedAt: room.CreatedAt,
		UpdatedAt: room.UpdatedAt,
	}, nil
}

// RecordGameOutcome 在一个事务里保存对局记录并更新玩家统计
func (p *GormPostgreSQL) RecordGameOutcome(record *models.GameRecord) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		gameRecord := models.GormGameRecord{
			RoomCode: record.RoomCode,
			GameKind: record.GameKind,
			Players:  record.Players,
			Rankings: record.Rankings,
		}
		if err := tx.Create(&gameRecord).Error; err != nil {
			return err
		}

		for _, player := range record.Players {
			if player.Automated {
				continue
			}
			var stats models.GormPlayerStats
			err := tx.Where("identity = ?", player.Identity).First(&stats).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				stats = models.GormPlayerStats{Identity: player.Identity}
				if err := tx.Create(&stats).Error; err != nil {
					return err
				}
			} else if err != nil {
				return err
			}

			updates := map[string]interface{}{
				"games": gorm.Expr("games + 1"),
			}
			if player.Position == 1 {
				updates["wins"] = gorm.Expr("wins + 1")
			} else {
				updates["losses"] = gorm.Expr("losses + 1")
			}
			if err := tx.Model(&stats).Updates(updates).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetPlayerStats 获取玩家统计
func (p *GormPostgreSQL) GetPlayerStats(identity string) (*models.PlayerStats, error) {
	var stats models.GormPlayerStats
	if err := p.db.Where("identity = ?", identity).First(&stats).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	return &models.PlayerStats{
		Identity: stats.Identity,
		Games:    stats.Games,
		Wins:     stats.Wins,
		Losses:   stats.Losses,
	}, nil
}

// Close 关闭数据库连接
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
