package deck

import "fmt"

// Suit represents a card suit
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank represents a card rank in the 32-card piquet deck used by Toepen.
// Declaration order is the Toepen strength order: the jack is the weakest
// card and the ten the strongest, so picture cards lose to number cards.
type Rank int

const (
	Jack Rank = iota
	Queen
	King
	Ace
	Seven
	Eight
	Nine
	Ten
)

// String returns the string representation of a rank
func (r Rank) String() string {
	switch r {
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	case Seven:
		return "7"
	case Eight:
		return "8"
	case Nine:
		return "9"
	case Ten:
		return "T"
	default:
		return "?"
	}
}

// Strength returns the trick-taking strength of the rank, 1 (jack)
// through 8 (ten). Within a suit all strengths are distinct, so a trick
// between cards of the lead suit can never tie.
func (r Rank) Strength() int {
	return int(r) + 1
}

// IsFace returns true for the picture cards (J, Q, K, A) that make up
// a laundry claim.
func (r Rank) IsFace() bool {
	return r <= Ace
}

// Card represents a playing card
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

// NewCard creates a new card
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// String returns the string representation of a card (e.g., "T♠")
func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// Strength returns the trick-taking strength of the card
func (c Card) Strength() int {
	return c.Rank.Strength()
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}

// IsFace returns true if the card belongs to the laundry picture set
func (c Card) IsFace() bool {
	return c.Rank.IsFace()
}
