package game

import "github.com/kaartspel/toepen/internal/deck"

// Seat is one participant's standing in a room. The name doubles as the
// seat's identity; the room rejects duplicate names at join time.
type Seat struct {
	Name  string
	IsBot bool

	// Score is the cumulative penalty count across rounds. A seat is
	// eliminated the first time it reaches the elimination threshold.
	Score      int
	Eliminated bool

	Hand []deck.Card
	// HandRevealed marks a caught bluffer whose hand stays face-up for
	// the rest of the round. Reset at every deal.
	HandRevealed bool
}

// Active reports whether the seat is still in the game.
func (s *Seat) Active() bool {
	return !s.Eliminated
}
