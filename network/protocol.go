// network/protocol.go
package network

import (
	"encoding/json"
	"fmt"
)

// Inbound message types.
const (
	MsgCreateRoom  = "CREATE_ROOM"
	MsgJoinRoom    = "JOIN_ROOM"
	MsgLeaveRoom   = "LEAVE_ROOM"
	MsgStartGame   = "START_GAME"
	MsgPlayCard    = "PLAY_CARD"
	MsgDrawCard    = "DRAW_CARD"
	MsgRequestHand = "REQUEST_HAND"
	MsgSendMessage = "SEND_MESSAGE"
)

// Outbound message types.
const (
	MsgRoomCreated    = "ROOM_CREATED"
	MsgRoomJoined     = "ROOM_JOINED"
	MsgPlayerJoined   = "PLAYER_JOINED"
	MsgPlayerLeft     = "PLAYER_LEFT"
	MsgHostChanged    = "HOST_CHANGED"
	MsgGameStarted    = "GAME_STARTED"
	MsgCardPlayed     = "CARD_PLAYED"
	MsgCardDrawn      = "CARD_DRAWN"
	MsgPlayerFinished = "PLAYER_FINISHED"
	MsgGameOver       = "GAME_OVER"
	MsgRoomClosed     = "ROOM_CLOSED"
	MsgHandState      = "HAND_STATE"
	MsgChatMessage    = "CHAT_MESSAGE"
	MsgError          = "ERROR"
)

// Envelope 入站消息信封
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Outbound is a server-to-client message.
type Outbound struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// ValidationError reports a malformed or incomplete payload. It is
// always answered to the sender and never mutates state.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid message: " + e.Reason
}

func missing(field string) error {
	return &ValidationError{Reason: "missing field " + field}
}

// DecodeEnvelope parses one inbound frame.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &ValidationError{Reason: "malformed JSON envelope"}
	}
	if env.Type == "" {
		return nil, missing("type")
	}
	return &env, nil
}

type CreateRoomPayload struct {
	Identity string `json:"identity"`
	GameKind string `json:"game_kind"`
}

func (p *CreateRoomPayload) Validate() error {
	if p.Identity == "" {
		return missing("identity")
	}
	return nil
}

type JoinRoomPayload struct {
	RoomCode string `json:"room_code"`
	Identity string `json:"identity"`
}

func (p *JoinRoomPayload) Validate() error {
	if p.RoomCode == "" {
		return missing("room_code")
	}
	if p.Identity == "" {
		return missing("identity")
	}
	return nil
}

type LeaveRoomPayload struct {
	RoomCode string `json:"room_code"`
	Identity string `json:"identity"`
}

func (p *LeaveRoomPayload) Validate() error {
	if p.RoomCode == "" {
		return missing("room_code")
	}
	if p.Identity == "" {
		return missing("identity")
	}
	return nil
}

type StartGamePayload struct {
	RoomCode string `json:"room_code"`
	Identity string `json:"identity"`
}

func (p *StartGamePayload) Validate() error {
	if p.RoomCode == "" {
		return missing("room_code")
	}
	if p.Identity == "" {
		return missing("identity")
	}
	return nil
}

type PlayCardPayload struct {
	RoomCode    string `json:"room_code"`
	Identity    string `json:"identity"`
	CardID      *int   `json:"card_id"`
	ChosenColor string `json:"chosen_color,omitempty"`
}

func (p *PlayCardPayload) Validate() error {
	if p.RoomCode == "" {
		return missing("room_code")
	}
	if p.Identity == "" {
		return missing("identity")
	}
	if p.CardID == nil {
		return missing("card_id")
	}
	return nil
}

type DrawCardPayload struct {
	RoomCode string `json:"room_code"`
	Identity string `json:"identity"`
}

func (p *DrawCardPayload) Validate() error {
	if p.RoomCode == "" {
		return missing("room_code")
	}
	if p.Identity == "" {
		return missing("identity")
	}
	return nil
}

type RequestHandPayload struct {
	RoomCode string `json:"room_code"`
	Identity string `json:"identity"`
}

func (p *RequestHandPayload) Validate() error {
	if p.RoomCode == "" {
		return missing("room_code")
	}
	if p.Identity == "" {
		return missing("identity")
	}
	return nil
}

type SendMessagePayload struct {
	RoomCode string `json:"room_code"`
	Identity string `json:"identity"`
	Text     string `json:"text"`
}

func (p *SendMessagePayload) Validate() error {
	if p.RoomCode == "" {
		return missing("room_code")
	}
	if p.Identity == "" {
		return missing("identity")
	}
	if p.Text == "" {
		return missing("text")
	}
	return nil
}

// DecodePayload unmarshals an envelope payload into dst and runs its
// validation.
func DecodePayload(env *Envelope, dst interface{ Validate() error }) error {
	if len(env.Payload) == 0 {
		return &ValidationError{Reason: "missing payload"}
	}
	if err := json.Unmarshal(env.Payload, dst); err != nil {
		return &ValidationError{Reason: fmt.Sprintf("malformed %s payload", env.Type)}
	}
	return dst.Validate()
}

// ErrorPayload is the body of an ERROR message.
type ErrorPayload struct {
	Message string `json:"message"`
}

// NewError wraps a human-readable reason into an ERROR message.
func NewError(message string) *Outbound {
	return &Outbound{Type: MsgError, Payload: ErrorPayload{Message: message}}
}
