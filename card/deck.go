// card/deck.go
package card

import (
	"errors"
	"math/rand"
	"strconv"
)

// DeckSize is the fixed size of a standard deck:
// per color one 0, two each of 1-9/skip/reverse/draw2, plus 4 wild + 4 wild_draw4.
const DeckSize = 108

// ErrDeckExhausted 牌堆与弃牌堆都已耗尽
var ErrDeckExhausted = errors.New("deck and discard pile exhausted")

// BuildStandardDeck returns the deterministic 108-card composition in a
// fixed order. Shuffle before use.
func BuildStandardDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	id := 0
	next := func(color Color, rank Rank) {
		deck = append(deck, Card{ID: id, Color: color, Rank: rank})
		id++
	}

	for _, color := range Colors {
		next(color, Rank("0"))
		for n := 1; n <= 9; n++ {
			r := Rank(strconv.Itoa(n))
			next(color, r)
			next(color, r)
		}
		for _, r := range []Rank{RankSkip, RankReverse, RankDrawTwo} {
			next(color, r)
			next(color, r)
		}
	}
	for i := 0; i < 4; i++ {
		next(Wild, RankWild)
	}
	for i := 0; i < 4; i++ {
		next(Wild, RankWildDraw4)
	}
	return deck
}

// Shuffle permutes cards in place (Fisher-Yates). The random source is
// injected so tests can seed it.
func Shuffle(cards []Card, rng *rand.Rand) {
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

// Pile owns one game's deck and discard pile. All card movement between
// the two goes through this type so the conservation invariant holds.
type Pile struct {
	Deck    []Card
	Discard []Card
	rng     *rand.Rand
}

// NewPile builds and shuffles a standard deck.
func NewPile(rng *rand.Rand) *Pile {
	deck := BuildStandardDeck()
	Shuffle(deck, rng)
	return &Pile{Deck: deck, rng: rng}
}

// NewPileWith assembles a pile from explicit deck and discard contents,
// for snapshot restore and tests.
func NewPileWith(deck, discard []Card, rng *rand.Rand) *Pile {
	return &Pile{Deck: deck, Discard: discard, rng: rng}
}

// DeckLen returns the number of undrawn cards.
func (p *Pile) DeckLen() int { return len(p.Deck) }

// Top returns the top discard card, if any.
func (p *Pile) Top() (Card, bool) {
	if len(p.Discard) == 0 {
		return Card{}, false
	}
	return p.Discard[len(p.Discard)-1], true
}

// Place appends a card to the discard pile.
func (p *Pile) Place(c Card) {
	p.Discard = append(p.Discard, c)
}

// Draw removes count cards from the top of the deck. When the deck runs
// short, the discard pile minus its top card is shuffled back in and the
// draw continues. Returns ErrDeckExhausted without partial mutation if
// fewer than count cards exist in total.
func (p *Pile) Draw(count int) ([]Card, error) {
	available := len(p.Deck)
	if len(p.Discard) > 1 {
		available += len(p.Discard) - 1
	}
	if available < count {
		return nil, ErrDeckExhausted
	}

	drawn := make([]Card, 0, count)
	for len(drawn) < count {
		if len(p.Deck) == 0 {
			p.reshuffle()
		}
		drawn = append(drawn, p.Deck[0])
		p.Deck = p.Deck[1:]
	}
	return drawn, nil
}

// reshuffle 把弃牌堆（保留最上面一张）洗回牌堆
func (p *Pile) reshuffle() {
	top := p.Discard[len(p.Discard)-1]
	recycled := make([]Card, len(p.Discard)-1)
	copy(recycled, p.Discard[:len(p.Discard)-1])
	Shuffle(recycled, p.rng)
	p.Deck = append(p.Deck, recycled...)
	p.Discard = []Card{top}
}
