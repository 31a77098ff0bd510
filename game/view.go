// game/view.go
package game

import (
	"github.com/wfunc/cardserver/card"
)

// PlayerView is one seat as seen by a particular viewer. Hand is only
// populated for the viewer's own seat; everyone else gets the count.
type PlayerView struct {
	Identity       string      `json:"identity"`
	Order          int         `json:"order"`
	CardCount      int         `json:"card_count"`
	Finished       bool        `json:"finished"`
	FinishPosition int         `json:"finish_position,omitempty"`
	Automated      bool        `json:"automated"`
	Hand           []card.Card `json:"hand,omitempty"`
}

// View is the redacted projection of a session for one recipient. Every
// broadcast that carries session state goes through (*Session).View;
// there is no trusted recipient.
type View struct {
	Players       []PlayerView `json:"players"`
	CurrentPlayer string       `json:"current_player"`
	Direction     int          `json:"direction"`
	CurrentColor  card.Color   `json:"current_color"`
	CurrentRank   card.Rank    `json:"current_rank"`
	DeckCount     int          `json:"deck_count"`
	TopCard       *card.Card   `json:"top_card,omitempty"`
	GameOver      bool         `json:"game_over"`
	Rankings      []string     `json:"rankings,omitempty"`
}

// View projects the session for one viewer identity. An empty viewer
// yields a fully redacted view (counts only).
func (s *Session) View(viewer string) *View {
	v := &View{
		CurrentPlayer: s.CurrentPlayer(),
		Direction:     s.Direction,
		CurrentColor:  s.Color,
		CurrentRank:   s.Rank,
		GameOver:      s.GameOver,
	}
	if s.Pile != nil {
		v.DeckCount = s.Pile.DeckLen()
		if top, ok := s.Pile.Top(); ok {
			t := top
			v.TopCard = &t
		}
	}
	if s.GameOver {
		v.Rankings = append([]string(nil), s.Rankings...)
	}
	for _, p := range s.Players {
		pv := PlayerView{
			Identity:       p.Identity,
			Order:          p.Order,
			CardCount:      len(s.Hands[p.Identity]),
			Finished:       p.Finished,
			FinishPosition: p.FinishPosition,
			Automated:      p.Automated,
		}
		if p.Identity == viewer {
			pv.Hand = append([]card.Card(nil), s.Hands[p.Identity]...)
		}
		v.Players = append(v.Players, pv)
	}
	return v
}
