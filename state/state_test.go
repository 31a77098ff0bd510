package state

import (
	"errors"
	"os"
	"testing"

	"github.com/wfunc/cardserver/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// mockRoom records which engine calls a state routed to it.
type mockRoom struct {
	code     string
	began    []string
	plays    []Action
	draws    []string
	beginErr error
}

func (r *mockRoom) GetCode() string { return r.code }

func (r *mockRoom) BeginGame(identity string) error {
	r.began = append(r.began, identity)
	return r.beginErr
}

func (r *mockRoom) ApplyPlay(identity string, cardID int, chosenColor string) error {
	r.plays = append(r.plays, Action{Kind: ActionPlay, CardID: cardID, ChosenColor: chosenColor})
	return nil
}

func (r *mockRoom) ApplyDraw(identity string) error {
	r.draws = append(r.draws, identity)
	return nil
}

func (r *mockRoom) ChangeState(newState State) error { return nil }

func TestWaitingState_RoutesOnlyStart(t *testing.T) {
	room := &mockRoom{code: "AB2C3D"}
	s := NewWaitingState(room)

	if err := s.HandleAction("alice", &Action{Kind: ActionStart}); err != nil {
		t.Fatalf("HandleAction failed: %v", err)
	}
	if len(room.began) != 1 || room.began[0] != "alice" {
		t.Errorf("Expected BeginGame(alice), got %v", room.began)
	}

	if err := s.HandleAction("alice", &Action{Kind: ActionPlay}); err != ErrGameNotStarted {
		t.Errorf("Expected ErrGameNotStarted for play, got %v", err)
	}
	if err := s.HandleAction("alice", &Action{Kind: ActionDraw}); err != ErrGameNotStarted {
		t.Errorf("Expected ErrGameNotStarted for draw, got %v", err)
	}
}

func TestWaitingState_PropagatesBeginError(t *testing.T) {
	boom := errors.New("boom")
	room := &mockRoom{beginErr: boom}
	s := NewWaitingState(room)

	if err := s.HandleAction("alice", &Action{Kind: ActionStart}); err != boom {
		t.Errorf("Expected the room's error back, got %v", err)
	}
}

func TestPlayingState_RoutesEngineActions(t *testing.T) {
	room := &mockRoom{code: "AB2C3D"}
	s := NewPlayingState(room)

	if err := s.HandleAction("alice", &Action{Kind: ActionStart}); err != ErrGameInProgress {
		t.Errorf("Expected ErrGameInProgress for a second start, got %v", err)
	}

	if err := s.HandleAction("alice", &Action{Kind: ActionPlay, CardID: 42, ChosenColor: "blue"}); err != nil {
		t.Fatalf("HandleAction failed: %v", err)
	}
	if len(room.plays) != 1 || room.plays[0].CardID != 42 || room.plays[0].ChosenColor != "blue" {
		t.Errorf("Play arguments not forwarded: %+v", room.plays)
	}

	if err := s.HandleAction("bob", &Action{Kind: ActionDraw}); err != nil {
		t.Fatalf("HandleAction failed: %v", err)
	}
	if len(room.draws) != 1 || room.draws[0] != "bob" {
		t.Errorf("Expected ApplyDraw(bob), got %v", room.draws)
	}
}

func TestFinishedState_RejectsEverything(t *testing.T) {
	room := &mockRoom{code: "AB2C3D"}
	s := NewFinishedState(room)

	for _, kind := range []string{ActionStart, ActionPlay, ActionDraw} {
		if err := s.HandleAction("alice", &Action{Kind: kind}); err != ErrGameFinished {
			t.Errorf("Action %s: expected ErrGameFinished, got %v", kind, err)
		}
	}
	if len(room.began)+len(room.plays)+len(room.draws) != 0 {
		t.Error("A finished room must not reach the engine")
	}
}

func TestBaseStateMachine_Transitions(t *testing.T) {
	room := &mockRoom{code: "AB2C3D"}
	waiting := NewWaitingState(room)
	playing := NewPlayingState(room)
	finished := NewFinishedState(room)

	sm := NewBaseStateMachine(waiting)
	if sm.GetCurrentState().GetID() != "waiting" {
		t.Fatalf("Expected initial state waiting, got %s", sm.GetCurrentState().GetID())
	}

	// A guarded transition can veto the change.
	allowed := false
	sm.AddTransition(waiting, finished, func() bool { return allowed })
	if err := sm.ChangeState(finished); err != ErrTransitionNotAllowed {
		t.Errorf("Expected ErrTransitionNotAllowed, got %v", err)
	}
	if sm.GetCurrentState().GetID() != "waiting" {
		t.Error("A vetoed transition must not change state")
	}

	// Unguarded transitions pass.
	if err := sm.ChangeState(playing); err != nil {
		t.Fatalf("ChangeState failed: %v", err)
	}
	if sm.GetCurrentState().GetID() != "playing" {
		t.Errorf("Expected playing, got %s", sm.GetCurrentState().GetID())
	}

	allowed = true
	sm.AddTransition(playing, finished, func() bool { return allowed })
	if err := sm.ChangeState(finished); err != nil {
		t.Fatalf("ChangeState failed: %v", err)
	}
	if sm.GetCurrentState().GetID() != "finished" {
		t.Errorf("Expected finished, got %s", sm.GetCurrentState().GetID())
	}
}
