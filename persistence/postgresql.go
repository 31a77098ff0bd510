// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	// PostgreSQL 驱动
	_ "github.com/lib/pq"

	"github.com/wfunc/cardserver/models"
)

// PostgreSQL 原生 database/sql 实现
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	// 设置连接池参数
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

// initTables 初始化数据库表结构
func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS rooms (
            id SERIAL PRIMARY KEY,
            room_code TEXT UNIQUE NOT NULL,
            game_kind TEXT NOT NULL,
            status TEXT NOT NULL,
            snapshot JSONB NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS game_records (
            id SERIAL PRIMARY KEY,
            room_code TEXT NOT NULL,
            game_kind TEXT NOT NULL,
            players JSONB NOT NULL,
            rankings JSONB NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS player_stats (
            id SERIAL PRIMARY KEY,
            identity TEXT UNIQUE NOT NULL,
            games INT NOT NULL DEFAULT 0,
            wins INT NOT NULL DEFAULT 0,
            losses INT NOT NULL DEFAULT 0
        )`)
	return err
}

// SaveRoomState 保存房间快照, last write wins
func (p *PostgreSQL) SaveRoomState(roomCode, gameKind, status string, snapshot map[string]interface{}) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	_, err = p.db.Exec(`
        INSERT INTO rooms (room_code, game_kind, status, snapshot, updated_at)
        VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
        ON CONFLICT (room_code)
        DO UPDATE SET status = $3, snapshot = $4, updated_at = CURRENT_TIMESTAMP`,
		roomCode, gameKind, status, data)
	return err
}

// LoadRoomState 加载房间快照
func (p *PostgreSQL) LoadRoomState(roomCode string) (*models.RoomSnapshot, error) {
	var (
		snap models.RoomSnapshot
		data []byte
	)
	err := p.db.QueryRow(`
        SELECT room_code, game_kind, status, snapshot, created_at, updated_at
        FROM rooms WHERE room_code = $1`, roomCode).
		Scan(&snap.RoomCode, &snap.GameKind, &snap.Status, &data, &snap.CreatedAt, &snap.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, &snap.Snapshot); err != nil {
		return nil, err
	}
	return &snap, nil
}

// RecordGameOutcome 在一个事务里保存对局记录并更新玩家统计
func (p *PostgreSQL) RecordGameOutcome(record *models.GameRecord) error {
	players, err := json.Marshal(record.Players)
	if err != nil {
		return err
	}
	rankings, err := json.Marshal(record.Rankings)
	if err != nil {
		return err
	}

	tx, err := p.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
        INSERT INTO game_records (room_code, game_kind, players, rankings)
        VALUES ($1, $2, $3, $4)`,
		record.RoomCode, record.GameKind, players, rankings)
	if err != nil {
		return err
	}

	for _, player := range record.Players {
		if player.Automated {
			continue
		}
		win := 0
		loss := 1
		if player.Position == 1 {
			win = 1
			loss = 0
		}
		_, err = tx.Exec(`
            INSERT INTO player_stats (identity, games, wins, losses)
            VALUES ($1, 1, $2, $3)
            ON CONFLICT (identity)
            DO UPDATE SET games = player_stats.games + 1,
                          wins = player_stats.wins + $2,
                          losses = player_stats.losses + $3`,
			player.Identity, win, loss)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetPlayerStats 获取玩家统计
func (p *PostgreSQL) GetPlayerStats(identity string) (*models.PlayerStats, error) {
	var stats models.PlayerStats
	err := p.db.QueryRow(`
        SELECT identity, games, wins, losses
        FROM player_stats WHERE identity = $1`, identity).
		Scan(&stats.Identity, &stats.Games, &stats.Wins, &stats.Losses)
	if err == sql.ErrNoRows {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// Close 关闭数据库连接
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
