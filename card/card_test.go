package card

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestBuildStandardDeck_Composition(t *testing.T) {
	deck := BuildStandardDeck()

	if len(deck) != DeckSize {
		t.Fatalf("Expected deck size %d, got %d", DeckSize, len(deck))
	}

	perColor := make(map[Color]int)
	perRank := make(map[Rank]int)
	ids := make(map[int]bool)
	for _, c := range deck {
		perColor[c.Color]++
		perRank[c.Rank]++
		if ids[c.ID] {
			t.Fatalf("Duplicate card id %d", c.ID)
		}
		ids[c.ID] = true
	}

	for _, color := range Colors {
		if perColor[color] != 25 {
			t.Errorf("Expected 25 %s cards, got %d", color, perColor[color])
		}
	}
	if perColor[Wild] != 8 {
		t.Errorf("Expected 8 wild-colored cards, got %d", perColor[Wild])
	}

	if perRank[Rank("0")] != 4 {
		t.Errorf("Expected 4 zero cards, got %d", perRank[Rank("0")])
	}
	for _, r := range []Rank{Rank("5"), RankSkip, RankReverse, RankDrawTwo} {
		if perRank[r] != 8 {
			t.Errorf("Expected 8 %s cards, got %d", r, perRank[r])
		}
	}
	if perRank[RankWild] != 4 || perRank[RankWildDraw4] != 4 {
		t.Errorf("Expected 4 wild and 4 wild_draw4, got %d and %d",
			perRank[RankWild], perRank[RankWildDraw4])
	}
}

func TestCard_Matches(t *testing.T) {
	cases := []struct {
		name  string
		card  Card
		color Color
		rank  Rank
		want  bool
	}{
		{"same color", Card{Color: Red, Rank: Rank("3")}, Red, Rank("7"), true},
		{"same rank", Card{Color: Blue, Rank: Rank("7")}, Red, Rank("7"), true},
		{"no match", Card{Color: Blue, Rank: Rank("3")}, Red, Rank("7"), false},
		{"wild always matches", Card{Color: Wild, Rank: RankWild}, Red, Rank("7"), true},
		{"wild draw4 always matches", Card{Color: Wild, Rank: RankWildDraw4}, Green, RankSkip, true},
		{"action rank match", Card{Color: Blue, Rank: RankSkip}, Red, RankSkip, true},
	}

	for _, tc := range cases {
		if got := tc.card.Matches(tc.color, tc.rank); got != tc.want {
			t.Errorf("%s: Matches(%v, %v) = %v, want %v", tc.name, tc.color, tc.rank, got, tc.want)
		}
	}
}

func TestCard_IsWild(t *testing.T) {
	if !(Card{Color: Wild, Rank: RankWild}).IsWild() {
		t.Error("wild card should be wild")
	}
	if !(Card{Color: Wild, Rank: RankWildDraw4}).IsWild() {
		t.Error("wild_draw4 should be wild")
	}
	if (Card{Color: Red, Rank: RankSkip}).IsWild() {
		t.Error("skip should not be wild")
	}
}

func TestShuffle_SeededDeterminism(t *testing.T) {
	a := BuildStandardDeck()
	b := BuildStandardDeck()

	Shuffle(a, rand.New(rand.NewSource(42)))
	Shuffle(b, rand.New(rand.NewSource(42)))

	if !reflect.DeepEqual(a, b) {
		t.Error("Same seed should produce the same permutation")
	}

	c := BuildStandardDeck()
	Shuffle(c, rand.New(rand.NewSource(43)))
	if reflect.DeepEqual(a, c) {
		t.Error("Different seeds should produce different permutations")
	}
}

func TestShuffle_Conservation(t *testing.T) {
	deck := BuildStandardDeck()
	Shuffle(deck, rand.New(rand.NewSource(7)))

	seen := make(map[int]bool)
	for _, c := range deck {
		seen[c.ID] = true
	}
	if len(seen) != DeckSize {
		t.Errorf("Shuffle lost or duplicated cards: %d unique ids", len(seen))
	}
}

func TestPile_Draw(t *testing.T) {
	pile := NewPile(rand.New(rand.NewSource(1)))

	drawn, err := pile.Draw(7)
	if err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if len(drawn) != 7 {
		t.Fatalf("Expected 7 cards, got %d", len(drawn))
	}
	if pile.DeckLen() != DeckSize-7 {
		t.Errorf("Expected %d cards left, got %d", DeckSize-7, pile.DeckLen())
	}
}

func TestPile_DrawReshufflesDiscard(t *testing.T) {
	deck := BuildStandardDeck()
	// Empty deck, 5 cards on the discard pile.
	pile := NewPileWith(nil, deck[:5], rand.New(rand.NewSource(1)))

	drawn, err := pile.Draw(1)
	if err != nil {
		t.Fatalf("Draw with reshuffle failed: %v", err)
	}
	if len(drawn) != 1 {
		t.Fatalf("Expected 1 card, got %d", len(drawn))
	}

	// Top discard card stays as the anchor; the other 4 were recycled,
	// one of which was drawn.
	if len(pile.Discard) != 1 {
		t.Errorf("Expected 1 discard card after reshuffle, got %d", len(pile.Discard))
	}
	if pile.Discard[0].ID != deck[4].ID {
		t.Error("Reshuffle should keep the top discard card in place")
	}
	if pile.DeckLen() != 3 {
		t.Errorf("Expected 3 cards in deck after reshuffle and draw, got %d", pile.DeckLen())
	}

	// No card lost or duplicated.
	seen := make(map[int]bool)
	for _, c := range drawn {
		seen[c.ID] = true
	}
	for _, c := range pile.Deck {
		if seen[c.ID] {
			t.Fatalf("Card %d duplicated by reshuffle", c.ID)
		}
		seen[c.ID] = true
	}
	for _, c := range pile.Discard {
		if seen[c.ID] {
			t.Fatalf("Card %d duplicated by reshuffle", c.ID)
		}
		seen[c.ID] = true
	}
	if len(seen) != 5 {
		t.Errorf("Expected 5 unique cards, got %d", len(seen))
	}
}

func TestPile_DrawExhausted(t *testing.T) {
	deck := BuildStandardDeck()

	// Only the discard anchor remains: nothing can be drawn.
	pile := NewPileWith(nil, deck[:1], rand.New(rand.NewSource(1)))
	if _, err := pile.Draw(1); err != ErrDeckExhausted {
		t.Errorf("Expected ErrDeckExhausted, got %v", err)
	}

	// A short draw must not mutate the pile.
	pile = NewPileWith(deck[:2], deck[2:4], rand.New(rand.NewSource(1)))
	if _, err := pile.Draw(5); err != ErrDeckExhausted {
		t.Errorf("Expected ErrDeckExhausted, got %v", err)
	}
	if pile.DeckLen() != 2 || len(pile.Discard) != 2 {
		t.Error("Failed draw must not mutate the pile")
	}
}
