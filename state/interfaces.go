// state/interfaces.go
package state

// Action kinds routed through the room state machine. Timer-driven and
// automated actions use the same kinds as human ones.
const (
	ActionStart = "start"
	ActionPlay  = "play"
	ActionDraw  = "draw"
)

// Action is one player command after payload validation.
type Action struct {
	Kind        string
	CardID      int
	ChosenColor string
}

// RoomContext defines the interface a Room must implement to be driven
// by the state machine. This breaks the import cycle between room and
// state.
type RoomContext interface {
	GetCode() string
	BeginGame(identity string) error
	ApplyPlay(identity string, cardID int, chosenColor string) error
	ApplyDraw(identity string) error
	ChangeState(newState State) error
}
