// models/models.go
package models

import (
	"time"
)

// PlayerResult 一名玩家在一局中的结果
type PlayerResult struct {
	Identity  string `json:"identity"`
	Position  int    `json:"position"` // 1-based finish position
	Automated bool   `json:"automated"`
}

// GameRecord 一局游戏的存档记录
type GameRecord struct {
	RoomCode  string         `json:"room_code"`
	GameKind  string         `json:"game_kind"`
	Players   []PlayerResult `json:"players"`
	Rankings  []string       `json:"rankings"`
	CreatedAt time.Time      `json:"created_at"`
}

// RoomSnapshot 房间状态快照 (last write wins)
type RoomSnapshot struct {
	RoomCode  string                 `json:"room_code"`
	GameKind  string                 `json:"game_kind"`
	Status    string                 `json:"status"`
	Snapshot  map[string]interface{} `json:"snapshot"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// PlayerStats 玩家累计统计
type PlayerStats struct {
	Identity string `json:"identity"`
	Games    int    `json:"games"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
}
