// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/wfunc/cardserver/network"
)

// Session binds one identity to one live connection. The binding is
// ephemeral; identity is the stable handle that survives reconnects.
type Session struct {
	Identity   string
	Conn       network.Connection
	RoomCode   string
	CreatedAt  time.Time
	LastActive time.Time
	mutex      sync.RWMutex
}

func NewSession(identity string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		Identity:   identity,
		Conn:       conn,
		CreatedAt:  now,
		LastActive: now,
	}
}

func (s *Session) Send(msg *network.Outbound) error {
	s.mutex.Lock()
	s.LastActive = time.Now()
	s.mutex.Unlock()
	return s.Conn.Send(msg)
}

func (s *Session) GetID() string {
	return s.Identity
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Registry 连接注册表: identity -> 当前连接
type Registry struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Register binds identity to sess, superseding and closing any previous
// connection for the same identity (last writer wins).
func (r *Registry) Register(sess *Session) {
	r.mutex.Lock()
	prev := r.sessions[sess.Identity]
	r.sessions[sess.Identity] = sess
	r.mutex.Unlock()

	if prev != nil && prev != sess {
		prev.Close()
	}
}

// Unregister removes the binding for sess only if sess is still the
// current connection, so a superseded connection's teardown cannot evict
// its replacement.
func (r *Registry) Unregister(sess *Session) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if current, exists := r.sessions[sess.Identity]; exists && current == sess {
		delete(r.sessions, sess.Identity)
	}
}

// Get returns the live session for an identity.
func (r *Registry) Get(identity string) (*Session, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	sess, exists := r.sessions[identity]
	return sess, exists
}

// Send delivers msg to identity's live connection, best-effort. Returns
// false when there is no live connection or the transport write fails.
func (r *Registry) Send(identity string, msg *network.Outbound) bool {
	sess, exists := r.Get(identity)
	if !exists {
		return false
	}
	return sess.Send(msg) == nil
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.sessions)
}
