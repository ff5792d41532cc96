package deck

import (
	rand "math/rand/v2"
)

// Size is the number of cards in a full Toepen deck (4 suits × 8 ranks).
const Size = 32

// Deck represents the undealt portion of a 32-card deck
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// New creates a full 32-card deck using the provided random source.
// Callers inject the rng so that deals are reproducible under a fixed
// seed (see internal/randutil).
func New(rng *rand.Rand) *Deck {
	d := &Deck{
		cards: make([]Card, 0, Size),
		rng:   rng,
	}

	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Jack; rank <= Ten; rank++ {
			d.cards = append(d.cards, NewCard(suit, rank))
		}
	}

	return d
}

// Shuffle randomizes the order of cards in the deck
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// DealFromEnd removes and returns n cards from the tail of the deck.
// Hands are dealt from the end so the untouched head remains available
// for laundry re-deals. Returns nil if fewer than n cards remain.
func (d *Deck) DealFromEnd(n int) []Card {
	if n > len(d.cards) {
		return nil
	}

	cut := len(d.cards) - n
	cards := make([]Card, n)
	copy(cards, d.cards[cut:])
	d.cards = d.cards[:cut]
	return cards
}

// Remaining returns the number of undealt cards
func (d *Deck) Remaining() int {
	return len(d.cards)
}
