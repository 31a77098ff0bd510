// room/room.go
package room

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/wfunc/cardserver/card"
	"github.com/wfunc/cardserver/game"
	"github.com/wfunc/cardserver/logger"
	"github.com/wfunc/cardserver/network"
	"github.com/wfunc/cardserver/state"
	"github.com/wfunc/cardserver/timer"
)

// Status 表示房间的业务状态
type Status int

const (
	StatusWaiting Status = iota
	StatusInProgress
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusInProgress:
		return "in-progress"
	case StatusFinished:
		return "finished"
	}
	return "unknown"
}

var (
	ErrRoomNotFound         = errors.New("room not found")
	ErrGameAlreadyStarted   = errors.New("game already started")
	ErrNotHost              = errors.New("only the host can start the game")
	ErrInsufficientPlayers  = errors.New("not enough players to start")
	ErrNotInRoom            = errors.New("not a member of this room")
	ErrCodeGenerationFailed = errors.New("could not generate a unique room code")
)

// Member is one room participant in join order.
type Member struct {
	Identity  string
	JoinedAt  time.Time
	Automated bool
}

// Room 是游戏房间的核心结构. All mutation of a room, including broadcast
// composition and delivery for the action that caused it, happens under
// its mutex: for one room, accepted actions form a total order.
type Room struct {
	Code      string
	GameKind  string
	Host      string
	Members   []*Member // join order
	Status    Status
	Inactive  bool // tombstone, independent of Status
	Session   *game.Session
	CreatedAt time.Time

	StateMachine state.StateMachine

	rules       game.Rules
	minPlayers  int
	turnTimeout time.Duration
	broadcaster Broadcaster
	store       RoomStore
	timers      *timer.Manager
	rng         *rand.Rand
	onGameOver  func(r *Room, s *game.Session)

	mutex   sync.Mutex
	turnGen int64 // bumps on every accepted mutation; stale timers check it
	timerID int64
}

// NewRoom 创建一个新房间
func NewRoom(code, gameKind, hostIdentity string, cfg RoomConfig) *Room {
	r := &Room{
		Code:        code,
		GameKind:    gameKind,
		Host:        hostIdentity,
		Status:      StatusWaiting,
		CreatedAt:   time.Now(),
		rules:       cfg.Rules,
		minPlayers:  cfg.MinPlayers,
		turnTimeout: cfg.TurnTimeout,
		broadcaster: cfg.Broadcaster,
		store:       cfg.Store,
		timers:      cfg.Timers,
		rng:         cfg.Rng,
		onGameOver:  cfg.OnGameOver,
	}
	if r.minPlayers < 2 {
		r.minPlayers = 2
	}
	r.Members = append(r.Members, &Member{Identity: hostIdentity, JoinedAt: time.Now()})
	r.StateMachine = state.NewBaseStateMachine(state.NewWaitingState(r))
	return r
}

// RoomConfig carries everything a room needs from its manager.
type RoomConfig struct {
	Rules       game.Rules
	MinPlayers  int
	TurnTimeout time.Duration
	Broadcaster Broadcaster
	Store       RoomStore
	Timers      *timer.Manager
	Rng         *rand.Rand
	OnGameOver  func(r *Room, s *game.Session)
}

// --- 实现 state.RoomContext 接口 ---

func (r *Room) GetCode() string {
	return r.Code
}

func (r *Room) ChangeState(newState state.State) error {
	return r.StateMachine.ChangeState(newState)
}

// BeginGame starts a session for the current members in join order.
// Caller holds the room mutex (via Dispatch).
func (r *Room) BeginGame(identity string) error {
	if identity != r.Host {
		return ErrNotHost
	}
	if len(r.Members) < r.minPlayers {
		return ErrInsufficientPlayers
	}

	identities := make([]string, 0, len(r.Members))
	automated := make(map[string]bool)
	for _, m := range r.Members {
		identities = append(identities, m.Identity)
		automated[m.Identity] = m.Automated
	}

	sess := game.NewSession(r.rules, r.rng)
	if err := sess.Start(identities, automated); err != nil {
		return err
	}
	r.Session = sess
	r.Status = StatusInProgress
	r.ChangeState(state.NewPlayingState(r))
	r.turnGen++

	r.broadcaster.BroadcastToRoom(r, "", func(viewer string) *network.Outbound {
		return &network.Outbound{Type: network.MsgGameStarted, Payload: network.GameStartedPayload{
			RoomCode: r.Code,
			Session:  sess.View(viewer),
		}}
	})
	r.saveSnapshot()
	r.scheduleTurnTimer()
	return nil
}

// ApplyPlay applies one card play and broadcasts the committed result.
// Caller holds the room mutex.
func (r *Room) ApplyPlay(identity string, cardID int, chosenColor string) error {
	res, err := r.Session.Play(identity, cardID, card.Color(chosenColor))
	if err != nil {
		return err
	}
	r.turnGen++

	r.broadcaster.BroadcastToRoom(r, "", func(viewer string) *network.Outbound {
		return &network.Outbound{Type: network.MsgCardPlayed, Payload: network.CardPlayedPayload{
			RoomCode:      r.Code,
			Player:        res.Player,
			Card:          res.Card,
			ChosenColor:   string(res.ChosenColor),
			PenaltyTarget: res.PenaltyTarget,
			PenaltyCount:  res.PenaltyCount,
			Session:       r.Session.View(viewer),
		}}
	})
	if res.Finished {
		r.broadcaster.BroadcastToRoom(r, "", func(viewer string) *network.Outbound {
			return &network.Outbound{Type: network.MsgPlayerFinished, Payload: network.PlayerFinishedPayload{
				RoomCode: r.Code,
				Player:   res.Player,
				Position: res.FinishPosition,
			}}
		})
	}
	if res.GameOver {
		r.finishGame()
	} else {
		r.scheduleTurnTimer()
	}
	r.saveSnapshot()
	return nil
}

// ApplyDraw draws one card for the acting player and passes the turn.
// The drawn card is visible only in the drawer's own view. Caller holds
// the room mutex.
func (r *Room) ApplyDraw(identity string) error {
	res, err := r.Session.Draw(identity)
	if err != nil {
		return err
	}
	r.turnGen++

	r.broadcaster.BroadcastToRoom(r, "", func(viewer string) *network.Outbound {
		payload := network.CardDrawnPayload{
			RoomCode:   r.Code,
			Player:     res.Player,
			NextPlayer: res.NextPlayer,
			Session:    r.Session.View(viewer),
		}
		if viewer == res.Player {
			c := res.Card
			payload.Card = &c
		}
		return &network.Outbound{Type: network.MsgCardDrawn, Payload: payload}
	})
	r.scheduleTurnTimer()
	r.saveSnapshot()
	return nil
}

// --- 房间核心逻辑 ---

// Dispatch routes one validated action through the current lifecycle
// state under the room's serialization. Errors go back to the sender
// only; nothing is broadcast for a rejected action.
func (r *Room) Dispatch(identity string, action *state.Action) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.memberIndex(identity) < 0 {
		return ErrNotInRoom
	}
	return r.StateMachine.GetCurrentState().HandleAction(identity, action)
}

// HandleJoin adds identity as a member, or accepts a reconnection of an
// existing member regardless of status.
func (r *Room) HandleJoin(identity string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.Inactive {
		return ErrRoomNotFound
	}

	rejoin := r.memberIndex(identity) >= 0
	if !rejoin {
		if r.Status != StatusWaiting {
			return ErrGameAlreadyStarted
		}
		r.Members = append(r.Members, &Member{Identity: identity, JoinedAt: time.Now()})
		r.broadcaster.BroadcastToRoom(r, identity, func(viewer string) *network.Outbound {
			return &network.Outbound{Type: network.MsgPlayerJoined, Payload: network.PlayerJoinedPayload{
				RoomCode: r.Code,
				Identity: identity,
			}}
		})
	}

	payload := network.RoomJoinedPayload{Room: r.info()}
	if r.Session != nil {
		payload.Session = r.Session.View(identity)
	}
	r.broadcaster.SendTo(identity, &network.Outbound{Type: network.MsgRoomJoined, Payload: payload})

	if !rejoin {
		r.saveSnapshot()
	}
	return nil
}

// HandleLeave removes identity. An empty room goes inactive; a departing
// waiting-phase host hands off to the next member in join order; a
// departing in-progress host terminates the room.
func (r *Room) HandleLeave(identity string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	idx := r.memberIndex(identity)
	if idx < 0 {
		return ErrNotInRoom
	}
	r.Members = append(r.Members[:idx], r.Members[idx+1:]...)

	r.broadcaster.BroadcastToRoom(r, "", func(viewer string) *network.Outbound {
		return &network.Outbound{Type: network.MsgPlayerLeft, Payload: network.PlayerLeftPayload{
			RoomCode: r.Code,
			Identity: identity,
		}}
	})

	switch {
	case len(r.Members) == 0:
		r.Inactive = true
		r.cancelTurnTimer()

	case identity == r.Host && r.Status == StatusWaiting:
		// 房主轮换到按加入顺序的下一位
		r.Host = r.Members[0].Identity
		r.broadcaster.BroadcastToRoom(r, "", func(viewer string) *network.Outbound {
			return &network.Outbound{Type: network.MsgHostChanged, Payload: network.HostChangedPayload{
				RoomCode: r.Code,
				Host:     r.Host,
			}}
		})

	case identity == r.Host && r.Status == StatusInProgress:
		// An in-progress game cannot survive host departure.
		r.Status = StatusFinished
		r.Inactive = true
		r.ChangeState(state.NewFinishedState(r))
		r.cancelTurnTimer()
		r.broadcaster.BroadcastToRoom(r, "", func(viewer string) *network.Outbound {
			return &network.Outbound{Type: network.MsgRoomClosed, Payload: network.RoomClosedPayload{
				RoomCode: r.Code,
				Reason:   "host left during the game",
			}}
		})
	}

	r.saveSnapshot()
	return nil
}

// SendHand re-sends the requester's redacted snapshot to them alone.
func (r *Room) SendHand(identity string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.memberIndex(identity) < 0 {
		return ErrNotInRoom
	}
	payload := network.HandStatePayload{RoomCode: r.Code}
	if r.Session != nil {
		payload.Session = r.Session.View(identity)
	}
	r.broadcaster.SendTo(identity, &network.Outbound{Type: network.MsgHandState, Payload: payload})
	return nil
}

// Chat relays a chat line to all members; no engine effect.
func (r *Room) Chat(identity, text string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.memberIndex(identity) < 0 {
		return ErrNotInRoom
	}
	r.broadcaster.BroadcastToRoom(r, "", func(viewer string) *network.Outbound {
		return &network.Outbound{Type: network.MsgChatMessage, Payload: network.ChatMessagePayload{
			RoomCode: r.Code,
			Identity: identity,
			Text:     text,
		}}
	})
	return nil
}

// AddAutomated seats an automated member before game start. Automated
// members act through the same dispatch path as humans.
func (r *Room) AddAutomated(identity string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.Status != StatusWaiting {
		return ErrGameAlreadyStarted
	}
	if r.memberIndex(identity) >= 0 {
		return nil
	}
	r.Members = append(r.Members, &Member{Identity: identity, JoinedAt: time.Now(), Automated: true})
	return nil
}

// Info returns a copy of the room's public description.
func (r *Room) Info() network.RoomInfo {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.info()
}

func (r *Room) info() network.RoomInfo {
	members := make([]string, 0, len(r.Members))
	for _, m := range r.Members {
		members = append(members, m.Identity)
	}
	return network.RoomInfo{
		Code:     r.Code,
		GameKind: r.GameKind,
		Host:     r.Host,
		Status:   r.Status.String(),
		Members:  members,
	}
}

func (r *Room) memberIndex(identity string) int {
	for i, m := range r.Members {
		if m.Identity == identity {
			return i
		}
	}
	return -1
}

func (r *Room) finishGame() {
	r.Status = StatusFinished
	r.ChangeState(state.NewFinishedState(r))
	r.cancelTurnTimer()

	r.broadcaster.BroadcastToRoom(r, "", func(viewer string) *network.Outbound {
		return &network.Outbound{Type: network.MsgGameOver, Payload: network.GameOverPayload{
			RoomCode: r.Code,
			Rankings: append([]string(nil), r.Session.Rankings...),
			Session:  r.Session.View(viewer),
		}}
	})
	if r.onGameOver != nil {
		r.onGameOver(r, r.Session)
	}
}

// scheduleTurnTimer arms the deferred auto-draw for the current turn.
// Automated players are nudged after a short fixed delay; humans only
// when a turn timeout is configured.
func (r *Room) scheduleTurnTimer() {
	if r.timers == nil || r.Session == nil || r.Session.GameOver {
		return
	}
	r.cancelTurnTimer()

	current := r.Session.CurrentPlayer()
	if current == "" {
		return
	}
	delay := r.turnTimeout
	if p, ok := r.Session.PlayerByIdentity(current); ok && p.Automated {
		delay = time.Second
	}
	if delay <= 0 {
		return
	}

	gen := r.turnGen
	r.timerID = r.timers.Schedule(delay, 0, func() {
		r.autoAct(gen, current)
	})
}

func (r *Room) cancelTurnTimer() {
	if r.timers != nil && r.timerID != 0 {
		r.timers.Cancel(r.timerID)
		r.timerID = 0
	}
}

// autoAct fires a synthetic draw for a stalled or automated turn through
// the same serialized path as a client action.
func (r *Room) autoAct(gen int64, identity string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.turnGen != gen || r.Status != StatusInProgress {
		return
	}
	st := r.StateMachine.GetCurrentState()
	if err := st.HandleAction(identity, &state.Action{Kind: state.ActionDraw}); err != nil {
		logger.Log.Warnf("auto draw for %s in room %s failed: %v", identity, r.Code, err)
	}
}

// saveSnapshot persists the current room state, last write wins. Failures
// never abort the action that triggered them.
func (r *Room) saveSnapshot() {
	if r.store == nil {
		return
	}
	snapshot := map[string]interface{}{
		"host":    r.Host,
		"members": r.info().Members,
	}
	if r.Session != nil {
		snapshot["session"] = r.Session
	}
	if err := r.store.SaveRoomState(r.Code, r.GameKind, r.Status.String(), snapshot); err != nil {
		logger.Log.Errorf("saving room %s: %v", r.Code, err)
	}
}
