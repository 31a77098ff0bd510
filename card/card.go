// card/card.go
package card

// Color 卡牌颜色
type Color string

const (
	Red    Color = "red"
	Blue   Color = "blue"
	Green  Color = "green"
	Yellow Color = "yellow"
	Wild   Color = "wild"
)

// Colors lists the four playable colors in declaration order.
var Colors = []Color{Red, Blue, Green, Yellow}

// Rank is either a numeric rank "0".."9" or an action tag.
type Rank string

const (
	RankSkip      Rank = "skip"
	RankReverse   Rank = "reverse"
	RankDrawTwo   Rank = "draw2"
	RankWild      Rank = "wild"
	RankWildDraw4 Rank = "wild_draw4"
)

// Card is a value object; ID only disambiguates duplicates in a deck.
type Card struct {
	ID    int   `json:"id"`
	Color Color `json:"color"`
	Rank  Rank  `json:"rank"`
}

// IsWild reports whether the card is a wild or wild-draw-four card.
func (c Card) IsWild() bool {
	return c.Rank == RankWild || c.Rank == RankWildDraw4
}

// IsAction reports whether playing the card has a side effect.
func (c Card) IsAction() bool {
	switch c.Rank {
	case RankSkip, RankReverse, RankDrawTwo, RankWild, RankWildDraw4:
		return true
	}
	return false
}

// Matches reports whether the card can be played on the given color/rank.
// Wild cards always match.
func (c Card) Matches(color Color, rank Rank) bool {
	return c.IsWild() || c.Color == color || c.Rank == rank
}
