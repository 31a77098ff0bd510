package timer

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestManager_ScheduleFires(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	fired := make(chan struct{})
	m.Schedule(50*time.Millisecond, 0, func() {
		close(fired)
	})

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("Scheduled task never fired")
	}
}

func TestManager_CancelPreventsFiring(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	var fired int32
	id := m.Schedule(200*time.Millisecond, 0, func() {
		atomic.AddInt32(&fired, 1)
	})
	m.Cancel(id)

	time.Sleep(500 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 0 {
		t.Error("Canceled task must not fire")
	}
}

func TestManager_IntervalRepeats(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	var count int32
	id := m.Schedule(50*time.Millisecond, 150*time.Millisecond, func() {
		atomic.AddInt32(&count, 1)
	})

	deadline := time.After(3 * time.Second)
	for atomic.LoadInt32(&count) < 2 {
		select {
		case <-deadline:
			t.Fatalf("Expected at least 2 firings, got %d", atomic.LoadInt32(&count))
		case <-time.After(50 * time.Millisecond):
		}
	}
	m.Cancel(id)
}

func TestManager_StopHaltsPending(t *testing.T) {
	m := NewManager()

	var fired int32
	m.Schedule(300*time.Millisecond, 0, func() {
		atomic.AddInt32(&fired, 1)
	})
	m.Stop()

	time.Sleep(600 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 0 {
		t.Error("Tasks must not fire after Stop")
	}
}
