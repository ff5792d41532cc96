package game

import "time"

// Rules holds the tunable thresholds and pacing windows for a room.
// Defaults follow standard Toepen; the server config can override the
// timing knobs.
type Rules struct {
	MinSeats       int
	MaxSeats       int
	HandSize       int
	TricksPerRound int

	StartStake int
	MaxStake   int
	// GambleStake is the liability everyone plays for when a seat sits
	// one point from elimination ("armoede").
	GambleStake int
	// BlindStake is the stake a queued blind raise forces at the next deal.
	BlindStake int

	EliminationScore int

	ResponseWindow time.Duration
	LaundryWindow  time.Duration
	InspectWindow  time.Duration
	TrickDelay     time.Duration
	RoundDelay     time.Duration
}

// DefaultRules returns the standard rule set.
func DefaultRules() Rules {
	return Rules{
		MinSeats:       2,
		MaxSeats:       4,
		HandSize:       4,
		TricksPerRound: 4,

		StartStake:  1,
		MaxStake:    8,
		GambleStake: 2,
		BlindStake:  2,

		EliminationScore: 10,

		ResponseWindow: 15 * time.Second,
		LaundryWindow:  10 * time.Second,
		InspectWindow:  5 * time.Second,
		TrickDelay:     2 * time.Second,
		RoundDelay:     3 * time.Second,
	}
}
