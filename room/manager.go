// room/manager.go
package room

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/wfunc/cardserver/game"
	"github.com/wfunc/cardserver/logger"
	"github.com/wfunc/cardserver/network"
	"github.com/wfunc/cardserver/timer"
)

// codeAlphabet omits the usual lookalikes (0/O, 1/I/L).
const (
	codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	codeLength   = 6
)

// Options configure rooms created by a manager.
type Options struct {
	Rules        game.Rules
	MinPlayers   int
	TurnTimeout  time.Duration
	CodeAttempts int
}

// Manager 管理所有房间. Inactive rooms stay in the map as tombstones and
// are invisible to lookups.
type Manager struct {
	rooms       map[string]*Room
	mutex       sync.RWMutex
	opts        Options
	broadcaster Broadcaster
	store       RoomStore
	timers      *timer.Manager
	rng         *rand.Rand
	rngMutex    sync.Mutex
	onGameOver  func(r *Room, s *game.Session)
}

// NewManager creates a room manager. store may be nil (no persistence);
// rng seeds room codes and per-room shuffles and is injectable for tests.
func NewManager(opts Options, broadcaster Broadcaster, store RoomStore, timers *timer.Manager, rng *rand.Rand) *Manager {
	if opts.CodeAttempts <= 0 {
		opts.CodeAttempts = 16
	}
	return &Manager{
		rooms:       make(map[string]*Room),
		opts:        opts,
		broadcaster: broadcaster,
		store:       store,
		timers:      timers,
		rng:         rng,
	}
}

// SetGameOverHook installs a callback invoked when a room's game ends,
// inside that room's critical section.
func (m *Manager) SetGameOverHook(fn func(r *Room, s *game.Session)) {
	m.onGameOver = fn
}

// Create generates a unique code among active rooms within a bounded
// attempt budget and creates the room with hostIdentity as first member.
func (m *Manager) Create(hostIdentity, gameKind string) (*Room, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	code := ""
	for i := 0; i < m.opts.CodeAttempts; i++ {
		candidate := m.generateCode()
		if existing, taken := m.rooms[candidate]; !taken || existing.Inactive {
			code = candidate
			break
		}
	}
	if code == "" {
		return nil, ErrCodeGenerationFailed
	}

	r := NewRoom(code, gameKind, hostIdentity, RoomConfig{
		Rules:       m.opts.Rules,
		MinPlayers:  m.opts.MinPlayers,
		TurnTimeout: m.opts.TurnTimeout,
		Broadcaster: m.broadcaster,
		Store:       m.store,
		Timers:      m.timers,
		Rng:         m.newRoomRng(),
		OnGameOver:  m.onGameOver,
	})
	m.rooms[code] = r
	logger.Log.Infof("room %s created by %s", code, hostIdentity)

	m.broadcaster.SendTo(hostIdentity, &network.Outbound{
		Type:    network.MsgRoomCreated,
		Payload: network.RoomCreatedPayload{Room: r.Info()},
	})
	return r, nil
}

// Join adds identity to an active room; reconnection of an existing
// member is allowed regardless of status.
func (m *Manager) Join(code, identity string) (*Room, error) {
	r, exists := m.Get(code)
	if !exists {
		return nil, ErrRoomNotFound
	}
	if err := r.HandleJoin(identity); err != nil {
		return nil, err
	}
	return r, nil
}

// Leave removes identity from an active room.
func (m *Manager) Leave(code, identity string) error {
	r, exists := m.Get(code)
	if !exists {
		return ErrRoomNotFound
	}
	return r.HandleLeave(identity)
}

// Get returns an active room by code. Codes are case-insensitive.
func (m *Manager) Get(code string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	r, exists := m.rooms[NormalizeCode(code)]
	if !exists || r.Inactive {
		return nil, false
	}
	return r, true
}

// GetAny returns a room even when inactive, for audit and admin use.
func (m *Manager) GetAny(code string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	r, exists := m.rooms[NormalizeCode(code)]
	return r, exists
}

// ActiveCount returns the number of active rooms.
func (m *Manager) ActiveCount() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	count := 0
	for _, r := range m.rooms {
		if !r.Inactive {
			count++
		}
	}
	return count
}

// ActiveCodes lists the codes of all active rooms.
func (m *Manager) ActiveCodes() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	codes := make([]string, 0, len(m.rooms))
	for code, r := range m.rooms {
		if !r.Inactive {
			codes = append(codes, code)
		}
	}
	return codes
}

// NormalizeCode canonicalizes a room code for lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (m *Manager) generateCode() string {
	m.rngMutex.Lock()
	defer m.rngMutex.Unlock()

	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[m.rng.Intn(len(codeAlphabet))]
	}
	return string(b)
}

func (m *Manager) newRoomRng() *rand.Rand {
	m.rngMutex.Lock()
	defer m.rngMutex.Unlock()
	return rand.New(rand.NewSource(m.rng.Int63()))
}
