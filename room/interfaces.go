package room

import (
	"github.com/wfunc/cardserver/network"
)

// Broadcaster delivers messages to room members through their live
// connections. Defined here to break the import cycle between room and
// broadcast.
//
// compose is invoked once per recipient so private information can be
// redacted per viewer; it runs inside the room's critical section.
type Broadcaster interface {
	BroadcastToRoom(r *Room, exclude string, compose func(viewer string) *network.Outbound) int
	SendTo(identity string, msg *network.Outbound) bool
}

// RoomStore persists room snapshots with last-write-wins semantics.
// Save failures are logged and never abort the action that triggered
// them.
type RoomStore interface {
	SaveRoomState(roomCode, gameKind, status string, snapshot map[string]interface{}) error
}
