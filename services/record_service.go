// services/record_service.go
package services

import (
	"time"

	"github.com/wfunc/cardserver/game"
	"github.com/wfunc/cardserver/models"
	"github.com/wfunc/cardserver/persistence"
)

// RecordService persists finished games and serves player statistics.
type RecordService struct {
	store persistence.Store
}

func NewRecordService(store persistence.Store) *RecordService {
	return &RecordService{store: store}
}

// SaveFinishedGame writes the game record and bumps per-player win/loss
// stats in one transaction.
func (s *RecordService) SaveFinishedGame(roomCode, gameKind string, sess *game.Session) error {
	record := &models.GameRecord{
		RoomCode:  roomCode,
		GameKind:  gameKind,
		Rankings:  append([]string(nil), sess.Rankings...),
		CreatedAt: time.Now(),
	}
	for _, p := range sess.Players {
		record.Players = append(record.Players, models.PlayerResult{
			Identity:  p.Identity,
			Position:  p.FinishPosition,
			Automated: p.Automated,
		})
	}
	return s.store.RecordGameOutcome(record)
}

// GetPlayerStats 获取玩家累计统计
func (s *RecordService) GetPlayerStats(identity string) (*models.PlayerStats, error) {
	return s.store.GetPlayerStats(identity)
}

// GetRoomSnapshot reads the last persisted snapshot of a room, including
// rooms that have since gone inactive.
func (s *RecordService) GetRoomSnapshot(roomCode string) (*models.RoomSnapshot, error) {
	return s.store.LoadRoomState(roomCode)
}
