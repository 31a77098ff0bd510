// network/events.go
package network

import (
	"github.com/wfunc/cardserver/card"
	"github.com/wfunc/cardserver/game"
)

// RoomInfo is the public description of a room.
type RoomInfo struct {
	Code     string   `json:"code"`
	GameKind string   `json:"game_kind"`
	Host     string   `json:"host"`
	Status   string   `json:"status"`
	Members  []string `json:"members"`
}

type RoomCreatedPayload struct {
	Room RoomInfo `json:"room"`
}

type RoomJoinedPayload struct {
	Room    RoomInfo   `json:"room"`
	Session *game.View `json:"session,omitempty"`
}

type PlayerJoinedPayload struct {
	RoomCode string `json:"room_code"`
	Identity string `json:"identity"`
}

type PlayerLeftPayload struct {
	RoomCode string `json:"room_code"`
	Identity string `json:"identity"`
}

type HostChangedPayload struct {
	RoomCode string `json:"room_code"`
	Host     string `json:"host"`
}

type GameStartedPayload struct {
	RoomCode string     `json:"room_code"`
	Session  *game.View `json:"session"`
}

type CardPlayedPayload struct {
	RoomCode      string     `json:"room_code"`
	Player        string     `json:"player"`
	Card          card.Card  `json:"card"`
	ChosenColor   string     `json:"chosen_color,omitempty"`
	PenaltyTarget string     `json:"penalty_target,omitempty"`
	PenaltyCount  int        `json:"penalty_count,omitempty"`
	Session       *game.View `json:"session"`
}

// CardDrawnPayload carries the drawn card only in the drawer's copy.
type CardDrawnPayload struct {
	RoomCode   string     `json:"room_code"`
	Player     string     `json:"player"`
	NextPlayer string     `json:"next_player,omitempty"`
	Card       *card.Card `json:"card,omitempty"`
	Session    *game.View `json:"session"`
}

type PlayerFinishedPayload struct {
	RoomCode string `json:"room_code"`
	Player   string `json:"player"`
	Position int    `json:"position"`
}

type GameOverPayload struct {
	RoomCode string     `json:"room_code"`
	Rankings []string   `json:"rankings"`
	Session  *game.View `json:"session"`
}

type RoomClosedPayload struct {
	RoomCode string `json:"room_code"`
	Reason   string `json:"reason,omitempty"`
}

type HandStatePayload struct {
	RoomCode string     `json:"room_code"`
	Session  *game.View `json:"session,omitempty"`
}

type ChatMessagePayload struct {
	RoomCode string `json:"room_code"`
	Identity string `json:"identity"`
	Text     string `json:"text"`
}
