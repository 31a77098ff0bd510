// state/room_states.go
package state

import (
	"github.com/wfunc/cardserver/logger"
)

// NewWaitingState creates the pre-game lobby state.
func NewWaitingState(room RoomContext) *WaitingState {
	return &WaitingState{
		RoomStateBase: RoomStateBase{
			ID:   "waiting",
			Room: room,
		},
	}
}

// 等待状态: 只接受开始游戏
type WaitingState struct {
	RoomStateBase
}

func (s *WaitingState) HandleAction(identity string, action *Action) error {
	switch action.Kind {
	case ActionStart:
		return s.Room.BeginGame(identity)
	case ActionPlay, ActionDraw:
		return ErrGameNotStarted
	}
	return ErrGameNotStarted
}

// NewPlayingState creates the in-progress state.
func NewPlayingState(room RoomContext) *PlayingState {
	return &PlayingState{
		RoomStateBase: RoomStateBase{
			ID:   "playing",
			Room: room,
		},
	}
}

// 游戏进行状态
type PlayingState struct {
	RoomStateBase
}

func (s *PlayingState) OnEnter() {
	logger.Log.Infof("房间 %s 进入游戏状态", s.Room.GetCode())
}

func (s *PlayingState) OnExit() {
	logger.Log.Infof("房间 %s 退出游戏状态", s.Room.GetCode())
}

func (s *PlayingState) HandleAction(identity string, action *Action) error {
	switch action.Kind {
	case ActionStart:
		return ErrGameInProgress
	case ActionPlay:
		return s.Room.ApplyPlay(identity, action.CardID, action.ChosenColor)
	case ActionDraw:
		return s.Room.ApplyDraw(identity)
	}
	return ErrGameInProgress
}

// NewFinishedState creates the terminal state.
func NewFinishedState(room RoomContext) *FinishedState {
	return &FinishedState{
		RoomStateBase: RoomStateBase{
			ID:   "finished",
			Room: room,
		},
	}
}

// 结束状态: 拒绝一切动作
type FinishedState struct {
	RoomStateBase
}

func (s *FinishedState) HandleAction(identity string, action *Action) error {
	return ErrGameFinished
}
