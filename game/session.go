// game/session.go
package game

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/wfunc/cardserver/card"
)

var (
	ErrInvalidPlayerCount = errors.New("at least 2 players required")
	ErrNotStarted         = errors.New("game not started")
	ErrGameFinished       = errors.New("game already finished")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrCardNotInHand      = errors.New("card not in hand")
	ErrIllegalPlay        = errors.New("card does not match current color or rank")
	ErrInvalidColor       = errors.New("a playable color must be chosen for wild cards")
	ErrNoCardsAvailable   = errors.New("no cards available to draw")
)

// Rules are the host-configurable knobs of one game.
type Rules struct {
	HandSize int
	// AllowSoloFinish lets the last unfinished player keep playing alone
	// instead of being force-finished when everyone else is done.
	AllowSoloFinish bool
}

// DefaultRules 默认规则
func DefaultRules() Rules {
	return Rules{HandSize: 7}
}

// Player is one seat in a session. Finished/FinishPosition are set once
// and never reverted.
type Player struct {
	Identity       string `json:"identity"`
	Order          int    `json:"order"`
	Finished       bool   `json:"finished"`
	FinishPosition int    `json:"finish_position"` // 1-based, 0 while unfinished
	Automated      bool   `json:"automated"`
}

// Session is the mutable state of one playthrough. It is owned by exactly
// one room and must only be touched under that room's serialization.
type Session struct {
	Players   []*Player              `json:"players"`
	Hands     map[string][]card.Card `json:"hands"`
	Pile      *card.Pile             `json:"pile"`
	Current   int                    `json:"current"`
	Direction int                    `json:"direction"`
	Color     card.Color             `json:"color"`
	Rank      card.Rank              `json:"rank"`
	// PendingDraw is the stacked-draw amount owed by the next player. It is
	// resolved inside the same Play call that created it.
	PendingDraw int      `json:"pending_draw"`
	GameOver    bool     `json:"game_over"`
	Rankings    []string `json:"rankings"`

	rules   Rules
	rng     *rand.Rand
	started bool
	nextPos int
}

// NewSession creates an unstarted session. The random source is injected
// so tests can fix the shuffle.
func NewSession(rules Rules, rng *rand.Rand) *Session {
	if rules.HandSize <= 0 {
		rules.HandSize = 7
	}
	return &Session{
		Hands:     make(map[string][]card.Card),
		Direction: 1,
		rules:     rules,
		rng:       rng,
		nextPos:   1,
	}
}

// Start deals the opening hands in join order and flips the starting
// card: the first non-wild, non-action card in the shuffled deck, falling
// back to the top card when none exists.
func (s *Session) Start(identities []string, automated map[string]bool) error {
	if len(identities) < 2 {
		return ErrInvalidPlayerCount
	}

	s.Pile = card.NewPile(s.rng)
	s.Players = make([]*Player, 0, len(identities))
	for i, id := range identities {
		s.Players = append(s.Players, &Player{
			Identity:  id,
			Order:     i,
			Automated: automated[id],
		})
		hand, err := s.Pile.Draw(s.rules.HandSize)
		if err != nil {
			return fmt.Errorf("dealing hand for %s: %w", id, err)
		}
		s.Hands[id] = hand
	}

	start := 0
	for i, c := range s.Pile.Deck {
		if !c.IsAction() {
			start = i
			break
		}
	}
	first := s.Pile.Deck[start]
	s.Pile.Deck = append(s.Pile.Deck[:start], s.Pile.Deck[start+1:]...)
	s.Pile.Place(first)

	s.Color = first.Color
	if first.IsWild() {
		s.Color = card.Red
	}
	s.Rank = first.Rank
	s.Current = 0
	s.Direction = 1
	s.started = true
	return nil
}

// PlayResult describes one committed play for broadcast composition.
type PlayResult struct {
	Player         string
	Card           card.Card
	ChosenColor    card.Color
	Finished       bool
	FinishPosition int
	PenaltyTarget  string
	PenaltyCount   int
	NextPlayer     string
	GameOver       bool
	Rankings       []string
}

// Play applies one card play atomically: validation first, then card
// movement, win detection, action-card side effects and turn advance.
// Win detection takes priority over side effects, but a draw penalty
// still lands on the next player even when the play ends the game.
func (s *Session) Play(identity string, cardID int, chosen card.Color) (*PlayResult, error) {
	if !s.started {
		return nil, ErrNotStarted
	}
	if s.GameOver {
		return nil, ErrGameFinished
	}
	if s.Players[s.Current].Identity != identity {
		return nil, ErrNotYourTurn
	}

	hand := s.Hands[identity]
	idx := -1
	for i, c := range hand {
		if c.ID == cardID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrCardNotInHand
	}
	played := hand[idx]

	if !played.Matches(s.Color, s.Rank) {
		return nil, ErrIllegalPlay
	}
	if played.IsWild() {
		if !validChoice(chosen) {
			return nil, ErrInvalidColor
		}
	} else {
		chosen = ""
	}

	// Draw penalties must be satisfiable before anything mutates, so the
	// whole action aborts cleanly on exhaustion. After this card lands on
	// the discard pile the previous top becomes recyclable, hence the
	// full discard length counts.
	penalty := penaltyFor(played.Rank)
	if penalty > 0 && len(s.Pile.Deck)+len(s.Pile.Discard) < penalty {
		return nil, card.ErrDeckExhausted
	}
	// Resolve the penalty target before win detection: an ending play
	// still lands its draw penalty on the next player in line.
	penaltyTarget := -1
	if penalty > 0 {
		if t := s.nextActive(s.Current); t != s.Current {
			penaltyTarget = t
		}
	}

	s.Hands[identity] = append(hand[:idx], hand[idx+1:]...)
	s.Pile.Place(played)
	if played.IsWild() {
		s.Color = chosen
	} else {
		s.Color = played.Color
	}
	s.Rank = played.Rank

	res := &PlayResult{Player: identity, Card: played, ChosenColor: chosen}

	if len(s.Hands[identity]) == 0 {
		s.finish(s.Players[s.Current])
		res.Finished = true
		res.FinishPosition = s.Players[s.Current].FinishPosition
	}

	if penaltyTarget >= 0 {
		s.PendingDraw = penalty
		drawn, err := s.Pile.Draw(penalty)
		if err != nil {
			// Checked above; reaching this means card conservation broke.
			return nil, fmt.Errorf("resolving draw penalty: %w", err)
		}
		tid := s.Players[penaltyTarget].Identity
		s.Hands[tid] = append(s.Hands[tid], drawn...)
		s.PendingDraw = 0
		res.PenaltyTarget = tid
		res.PenaltyCount = penalty
	}

	if !s.GameOver {
		switch played.Rank {
		case card.RankSkip, card.RankDrawTwo, card.RankWildDraw4:
			s.advance(1)
		case card.RankReverse:
			s.Direction = -s.Direction
			if s.activeCount() == 2 {
				// Two players left: the same opponent loses the turn.
				s.advance(1)
			} else {
				s.advance(0)
			}
		default:
			s.advance(0)
		}
		res.NextPlayer = s.Players[s.Current].Identity
	}

	res.GameOver = s.GameOver
	res.Rankings = append([]string(nil), s.Rankings...)
	return res, nil
}

// DrawResult describes one committed draw.
type DrawResult struct {
	Player     string
	Card       card.Card
	NextPlayer string
}

// Draw takes exactly one card from the pile into the current player's
// hand and passes the turn.
func (s *Session) Draw(identity string) (*DrawResult, error) {
	if !s.started {
		return nil, ErrNotStarted
	}
	if s.GameOver {
		return nil, ErrGameFinished
	}
	if s.Players[s.Current].Identity != identity {
		return nil, ErrNotYourTurn
	}

	drawn, err := s.Pile.Draw(1)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoCardsAvailable, err)
	}
	s.Hands[identity] = append(s.Hands[identity], drawn[0])
	s.advance(0)

	return &DrawResult{
		Player:     identity,
		Card:       drawn[0],
		NextPlayer: s.Players[s.Current].Identity,
	}, nil
}

// Started reports whether Start has completed.
func (s *Session) Started() bool { return s.started }

// CurrentPlayer returns the identity whose turn it is, or "" when the
// game is over or unstarted.
func (s *Session) CurrentPlayer() string {
	if !s.started || s.GameOver {
		return ""
	}
	return s.Players[s.Current].Identity
}

// PlayerByIdentity returns the seat for an identity.
func (s *Session) PlayerByIdentity(identity string) (*Player, bool) {
	for _, p := range s.Players {
		if p.Identity == identity {
			return p, true
		}
	}
	return nil, false
}

// finish marks a player done and, when only one unfinished player is
// left, force-finishes them as well unless solo play is allowed.
func (s *Session) finish(p *Player) {
	p.Finished = true
	p.FinishPosition = s.nextPos
	s.nextPos++
	s.Rankings = append(s.Rankings, p.Identity)

	remaining := s.unfinished()
	if len(remaining) == 0 {
		s.GameOver = true
		return
	}
	if len(remaining) == 1 && !s.rules.AllowSoloFinish {
		last := remaining[0]
		last.Finished = true
		last.FinishPosition = s.nextPos
		s.nextPos++
		s.Rankings = append(s.Rankings, last.Identity)
		s.GameOver = true
	}
}

func (s *Session) unfinished() []*Player {
	var out []*Player
	for _, p := range s.Players {
		if !p.Finished {
			out = append(out, p)
		}
	}
	return out
}

func (s *Session) activeCount() int {
	return len(s.unfinished())
}

// nextActive walks one step in the current direction, skipping finished
// players. Falls back to from when nobody else is active.
func (s *Session) nextActive(from int) int {
	n := len(s.Players)
	i := from
	for c := 0; c < n; c++ {
		i = (i + s.Direction + n) % n
		if !s.Players[i].Finished {
			return i
		}
	}
	return from
}

// advance moves the turn 1+extraSkips active seats onward.
func (s *Session) advance(extraSkips int) {
	for n := 0; n <= extraSkips; n++ {
		s.Current = s.nextActive(s.Current)
	}
}

func validChoice(c card.Color) bool {
	for _, v := range card.Colors {
		if c == v {
			return true
		}
	}
	return false
}

func penaltyFor(r card.Rank) int {
	switch r {
	case card.RankDrawTwo:
		return 2
	case card.RankWildDraw4:
		return 4
	}
	return 0
}
