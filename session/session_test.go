package session

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/wfunc/cardserver/network"
)

// fakeConn is an in-memory network.Connection.
type fakeConn struct {
	sent    []*network.Outbound
	closed  bool
	sendErr error
}

func (c *fakeConn) Send(msg *network.Outbound) error {
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, msg)
	return nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func (c *fakeConn) RemoteAddr() net.Addr { return &net.TCPAddr{} }

func (c *fakeConn) SetHeartbeat(interval time.Duration) {}
func (c *fakeConn) ReadEnvelope() (*network.Envelope, error) {
	return nil, errors.New("not readable")
}

func TestRegistry_RegisterSupersedes(t *testing.T) {
	r := NewRegistry()

	oldConn := &fakeConn{}
	newConn := &fakeConn{}
	oldSess := NewSession("alice", oldConn)
	newSess := NewSession("alice", newConn)

	r.Register(oldSess)
	r.Register(newSess)

	if !oldConn.closed {
		t.Error("Superseded connection should be closed")
	}
	if newConn.closed {
		t.Error("New connection must stay open")
	}

	current, ok := r.Get("alice")
	if !ok || current != newSess {
		t.Error("Expected the newest session to win")
	}
	if r.Count() != 1 {
		t.Errorf("Expected 1 live session, got %d", r.Count())
	}
}

func TestRegistry_StaleUnregisterKeepsReplacement(t *testing.T) {
	r := NewRegistry()

	oldSess := NewSession("alice", &fakeConn{})
	newSess := NewSession("alice", &fakeConn{})
	r.Register(oldSess)
	r.Register(newSess)

	// The superseded connection's teardown runs after the replacement
	// registered; it must not evict the live binding.
	r.Unregister(oldSess)

	current, ok := r.Get("alice")
	if !ok || current != newSess {
		t.Error("Stale unregister must not remove the live session")
	}

	r.Unregister(newSess)
	if _, ok := r.Get("alice"); ok {
		t.Error("Expected the binding to be gone after a current unregister")
	}
}

func TestRegistry_Send(t *testing.T) {
	r := NewRegistry()

	conn := &fakeConn{}
	r.Register(NewSession("alice", conn))

	msg := &network.Outbound{Type: network.MsgChatMessage}
	if !r.Send("alice", msg) {
		t.Error("Expected send to a live connection to succeed")
	}
	if len(conn.sent) != 1 || conn.sent[0] != msg {
		t.Error("Expected the message on the connection")
	}

	if r.Send("nobody", msg) {
		t.Error("Send to an unknown identity must report false")
	}

	conn.sendErr = errors.New("broken pipe")
	if r.Send("alice", msg) {
		t.Error("Send over a failing transport must report false")
	}
}

func TestSession_SendTouchesLastActive(t *testing.T) {
	sess := NewSession("alice", &fakeConn{})
	before := sess.LastActive

	time.Sleep(time.Millisecond)
	if err := sess.Send(&network.Outbound{Type: network.MsgHandState}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if !sess.LastActive.After(before) {
		t.Error("Send should refresh LastActive")
	}
}
