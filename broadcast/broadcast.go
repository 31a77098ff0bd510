// broadcast/broadcast.go
package broadcast

import (
	"github.com/wfunc/cardserver/logger"
	"github.com/wfunc/cardserver/network"
	"github.com/wfunc/cardserver/room"
	"github.com/wfunc/cardserver/session"
)

// RoomBroadcaster delivers room events through the connection registry.
// compose runs once per recipient so every message is redacted for its
// viewer; there is no trusted recipient.
type RoomBroadcaster struct {
	registry *session.Registry
}

func NewRoomBroadcaster(registry *session.Registry) *RoomBroadcaster {
	return &RoomBroadcaster{registry: registry}
}

// BroadcastToRoom sends the composed message to every member with a live
// connection except exclude. Per-recipient delivery failures are logged
// and never abort the batch. Returns the delivery count.
//
// Called inside the room's critical section; the member list is stable
// for the duration of the call.
func (b *RoomBroadcaster) BroadcastToRoom(r *room.Room, exclude string, compose func(viewer string) *network.Outbound) int {
	delivered := 0
	for _, m := range r.Members {
		if m.Identity == exclude || m.Automated {
			continue
		}
		msg := compose(m.Identity)
		if msg == nil {
			continue
		}
		if !b.registry.Send(m.Identity, msg) {
			// 发送失败不影响其他成员
			logger.Log.Debugf("dropping %s for %s in room %s: no writable connection",
				msg.Type, m.Identity, r.Code)
			continue
		}
		delivered++
	}
	return delivered
}

// SendTo delivers a single message to one identity, best effort.
func (b *RoomBroadcaster) SendTo(identity string, msg *network.Outbound) bool {
	return b.registry.Send(identity, msg)
}
