// persistence/interface.go
package persistence

import (
	"fmt"

	"github.com/wfunc/cardserver/models"
)

// Store 数据库接口. SaveRoomState is last-write-wins; callers treat save
// failures as non-fatal.
type Store interface {
	SaveRoomState(roomCode, gameKind, status string, snapshot map[string]interface{}) error
	LoadRoomState(roomCode string) (*models.RoomSnapshot, error)
	RecordGameOutcome(record *models.GameRecord) error
	GetPlayerStats(identity string) (*models.PlayerStats, error)
	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = fmt.Errorf("record not found")
)
