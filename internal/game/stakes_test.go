package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaartspel/toepen/internal/deck"
)

func TestRaiseIncrementsStake(t *testing.T) {
	r, mock := testRoom(t, "alice", "bob", "carol")
	toPlaying(t, r, mock)
	turn := r.round.TurnSeat

	require.NoError(t, r.Raise(turn))

	assert.Equal(t, PhaseRaiseResponse, r.phase())
	assert.Equal(t, 2, r.round.Stake)
	assert.Equal(t, turn, r.round.LastRaiser)
	assert.Equal(t, 2, r.entryStake(turn), "raiser is locked in at the new stake")

	// The raiser's own response is pre-seeded.
	d, ok := r.round.Responses.Get(turn)
	require.True(t, ok)
	assert.Equal(t, ResponseAccept, d)
}

func TestRaiseGuards(t *testing.T) {
	r, mock := testRoom(t, "alice", "bob")
	toPlaying(t, r, mock)
	turn := r.round.TurnSeat
	other := r.nextInRound(turn)

	// Not the seat's turn.
	err := r.Raise(other)
	assert.Equal(t, RejectNotYourTurn, rejectCode(t, err))

	// Raising twice in a row.
	require.NoError(t, r.Raise(turn))
	require.NoError(t, r.Respond(other, true))
	require.Equal(t, PhasePlaying, r.phase())
	err = r.Raise(turn)
	assert.Equal(t, RejectAlreadyRaised, rejectCode(t, err))
	assert.Equal(t, 2, r.round.Stake, "rejected raise must not move the stake")
}

func TestRaiseAtCeiling(t *testing.T) {
	r, mock := testRoom(t, "alice", "bob")
	toPlaying(t, r, mock)

	r.mu.Lock()
	r.round.Stake = r.rules.MaxStake
	r.mu.Unlock()

	err := r.Raise(r.round.TurnSeat)
	assert.Equal(t, RejectStakeCeiling, rejectCode(t, err))
}

// Scenario: stake 1 everywhere, A raises to 2, B folds and pays the
// pre-raise stake of 1, C accepts the new stake of 2. After A takes the
// most tricks, C pays 2 and A pays nothing.
func TestRaiseFoldAsymmetry(t *testing.T) {
	r, mock := testRoom(t, "alice", "bob", "carol")
	toPlaying(t, r, mock)

	setHands(r, "alice", map[string][]deck.Card{
		"alice": {
			card(deck.Spades, deck.Ten),
			card(deck.Spades, deck.Nine),
			card(deck.Spades, deck.Eight),
			card(deck.Spades, deck.Seven),
		},
		"bob": {
			card(deck.Spades, deck.Jack),
			card(deck.Hearts, deck.Jack),
			card(deck.Hearts, deck.Queen),
			card(deck.Hearts, deck.King),
		},
		"carol": {
			card(deck.Spades, deck.Queen),
			card(deck.Diamonds, deck.Jack),
			card(deck.Diamonds, deck.Queen),
			card(deck.Diamonds, deck.King),
		},
	})

	require.NoError(t, r.Raise("alice"))
	require.NoError(t, r.Respond("bob", false))
	assert.Equal(t, 1, r.score("bob"), "folding pays the pre-raise entry stake")
	assert.False(t, r.inRound("bob"))

	require.NoError(t, r.Respond("carol", true))
	assert.Equal(t, 2, r.entryStake("carol"))
	assert.Equal(t, PhasePlaying, r.phase())
	assert.Equal(t, "alice", r.round.TurnSeat, "play resumes with the same seat to act")

	for i := 0; i < 4; i++ {
		require.NoError(t, r.PlayCard("alice", 0))
		require.NoError(t, r.PlayCard("carol", 0))
		advance(t, mock, r.rules.TrickDelay)
	}

	assert.Equal(t, 0, r.score("alice"))
	assert.Equal(t, 2, r.score("carol"), "loser pays the accepted stake")
	assert.Equal(t, 1, r.score("bob"), "folder's penalty is not revisited at round end")
}

func TestRespondTwiceRejected(t *testing.T) {
	r, mock := testRoom(t, "alice", "bob", "carol")
	toPlaying(t, r, mock)
	turn := r.round.TurnSeat
	other := r.nextInRound(turn)

	require.NoError(t, r.Raise(turn))
	require.NoError(t, r.Respond(other, true))

	err := r.Respond(other, false)
	assert.Equal(t, RejectAlreadyResponded, rejectCode(t, err))
	assert.True(t, r.inRound(other))
}

func TestRespondOutsideWindowRejected(t *testing.T) {
	r, mock := testRoom(t, "alice", "bob")
	toPlaying(t, r, mock)

	err := r.Respond("bob", true)
	assert.Equal(t, RejectWrongPhase, rejectCode(t, err))
}

func TestResponseTimeoutAutoAccepts(t *testing.T) {
	r, mock := testRoom(t, "alice", "bob", "carol")
	toPlaying(t, r, mock)
	turn := r.round.TurnSeat

	require.NoError(t, r.Raise(turn))
	advance(t, mock, r.rules.ResponseWindow)

	assert.Equal(t, PhasePlaying, r.phase())
	for _, s := range r.seats {
		assert.Equal(t, 2, r.entryStake(s.Name), "pending seats are committed at the raised stake")
		assert.True(t, r.inRound(s.Name))
	}
}

func TestStaleResponseTimerIsNoOp(t *testing.T) {
	r, mock := testRoom(t, "alice", "bob", "carol")
	toPlaying(t, r, mock)
	turn := r.round.TurnSeat

	require.NoError(t, r.Raise(turn))
	for _, s := range r.seats {
		if s.Name != turn {
			require.NoError(t, r.Respond(s.Name, true))
		}
	}
	require.Equal(t, PhasePlaying, r.phase())

	// Play a card, then let the original response window elapse. The
	// stale timer must not fire into the new state.
	require.NoError(t, r.PlayCard(turn, 0))
	trickLen := len(r.round.Trick)
	advance(t, mock, r.rules.ResponseWindow)

	assert.Equal(t, PhasePlaying, r.phase())
	assert.Len(t, r.round.Trick, trickLen)
	assert.Equal(t, 2, r.round.Stake)
}

func TestAllFoldResolvesRoundEarly(t *testing.T) {
	r, mock := testRoom(t, "alice", "bob", "carol")
	toPlaying(t, r, mock)
	turn := r.round.TurnSeat

	require.NoError(t, r.Raise(turn))
	for _, s := range r.seats {
		if s.Name != turn {
			require.NoError(t, r.Respond(s.Name, false))
		}
	}

	// Everyone else folded; the raiser wins the round outright and pays
	// nothing, the folders paid their pre-raise stakes.
	assert.Equal(t, PhaseRoundEnd, r.phase())
	assert.Equal(t, 0, r.score(turn))
	for _, s := range r.seats {
		if s.Name != turn {
			assert.Equal(t, 1, r.score(s.Name))
		}
	}
}

func TestPlayingForEliminationCannotRaise(t *testing.T) {
	r, mock := testRoom(t, "alice", "bob")
	toPlaying(t, r, mock)
	turn := r.round.TurnSeat

	r.mu.Lock()
	r.seat(turn).Score = r.rules.EliminationScore - 1
	r.mu.Unlock()

	err := r.Raise(turn)
	assert.Equal(t, RejectForcedToPlay, rejectCode(t, err))
}

func TestPlayingForEliminationFoldCoercedToAccept(t *testing.T) {
	r, mock := testRoom(t, "alice", "bob", "carol")
	toPlaying(t, r, mock)
	turn := r.round.TurnSeat
	other := r.nextInRound(turn)

	r.mu.Lock()
	r.seat(other).Score = r.rules.EliminationScore - 1
	r.mu.Unlock()

	require.NoError(t, r.Raise(turn))
	require.NoError(t, r.Respond(other, false))

	// The fold was silently converted into an accept.
	assert.True(t, r.inRound(other))
	assert.Equal(t, 2, r.entryStake(other))
	d, _ := r.round.Responses.Get(other)
	assert.Equal(t, ResponseAccept, d)
}

// A seat one point from elimination forces the whole table into the
// elevated gamble before any card is played.
func TestForcedGambleOnDeal(t *testing.T) {
	r, _ := testRoom(t, "alice", "bob", "carol")

	r.mu.Lock()
	r.seat("bob").Score = r.rules.EliminationScore - 1
	r.mu.Unlock()

	startGame(t, r)
	assert.Equal(t, PhaseForcedGamble, r.phase())
	assert.Equal(t, r.rules.GambleStake, r.round.Liability)
	assert.Empty(t, r.round.Trick)

	require.NoError(t, r.Respond("alice", true))
	assert.Equal(t, r.rules.GambleStake, r.entryStake("alice"))

	require.NoError(t, r.Respond("carol", false))
	assert.Equal(t, 1, r.score("carol"), "gamble fold pays the prior entry stake")

	// Bob is playing for elimination; his fold attempt is held in.
	require.NoError(t, r.Respond("bob", false))
	assert.True(t, r.inRound("bob"))
	assert.Equal(t, PhasePlaying, r.phase())
}

// A gamble fold by the seat due to lead must hand the turn to the next
// contender when play resumes.
func TestGambleFoldByLeaderMovesTurn(t *testing.T) {
	r, _ := testRoom(t, "alice", "bob", "carol")

	r.mu.Lock()
	r.seat("bob").Score = r.rules.EliminationScore - 1
	r.mu.Unlock()

	startGame(t, r)
	require.Equal(t, PhaseForcedGamble, r.phase())
	require.Equal(t, "alice", r.round.TurnSeat, "the leader is due to open the round")

	require.NoError(t, r.Respond("alice", false))
	require.NoError(t, r.Respond("bob", true))
	require.NoError(t, r.Respond("carol", true))

	require.Equal(t, PhasePlaying, r.phase())
	assert.Equal(t, 1, r.score("alice"))
	assert.Equal(t, "bob", r.round.TurnSeat, "the lead passes over the folded seat")
	assert.NoError(t, r.PlayCard("bob", 0))
}

// Scenario: alice and bob play into the trick, carol raises, both seats
// that already played fold. Their cards leave the trick and the two
// remaining contenders finish it by themselves.
func TestRespondFoldsClearPlayedCards(t *testing.T) {
	r, mock := testRoom(t, "alice", "bob", "carol", "dave")
	toPlaying(t, r, mock)

	setHands(r, "alice", map[string][]deck.Card{
		"alice": {card(deck.Spades, deck.Ten)},
		"bob":   {card(deck.Spades, deck.Jack)},
		"carol": {card(deck.Diamonds, deck.Ten)},
		"dave":  {card(deck.Diamonds, deck.Jack)},
	})

	require.NoError(t, r.PlayCard("alice", 0))
	require.NoError(t, r.PlayCard("bob", 0))
	require.NoError(t, r.Raise("carol"))

	require.NoError(t, r.Respond("alice", false))
	assert.Len(t, r.round.Trick, 1, "the folder's card leaves the trick")
	require.NoError(t, r.Respond("bob", false))
	require.NoError(t, r.Respond("dave", true))

	require.Equal(t, PhasePlaying, r.phase())
	assert.Empty(t, r.round.Trick)
	assert.Nil(t, r.round.LeadSuit)
	assert.Equal(t, "carol", r.round.TurnSeat)

	require.NoError(t, r.PlayCard("carol", 0))
	require.NoError(t, r.PlayCard("dave", 0))
	require.True(t, r.round.EvalPending, "two live cards complete the trick")
	advance(t, mock, r.rules.TrickDelay)

	assert.Equal(t, 1, r.tricksWon("carol"))
	assert.Equal(t, 1, r.round.TricksDone)
}

// A blind raise answered right after a resolved gamble: folding the
// blind window pays the gamble stake the seat was already locked in at.
func TestBlindWindowAfterGambleFoldPaysHeldStake(t *testing.T) {
	r, mock := testRoom(t, "alice", "bob", "carol")
	toPlaying(t, r, mock)

	require.NoError(t, r.QueueBlindRaise("carol"))

	r.mu.Lock()
	r.round.TricksWon = map[string]int{"alice": 4, "bob": 0, "carol": 0}
	r.endRoundLocked()
	r.seat("bob").Score = r.rules.EliminationScore - 1
	r.mu.Unlock()
	advance(t, mock, r.rules.RoundDelay)

	// Bob's brink score forces the gamble; the blind response window
	// follows once it resolves.
	require.Equal(t, PhaseForcedGamble, r.phase())
	require.NoError(t, r.Respond("alice", true))
	require.NoError(t, r.Respond("bob", true))
	require.NoError(t, r.Respond("carol", true))

	require.Equal(t, PhaseBlindResponse, r.phase())
	require.Equal(t, r.rules.GambleStake, r.entryStake("alice"))

	before := r.score("alice")
	require.NoError(t, r.Respond("alice", false))
	assert.Equal(t, before+r.rules.GambleStake, r.score("alice"))
	assert.False(t, r.inRound("alice"))
}

// A departure is the answer an open window was waiting on.
func TestLeaveResolvesResponseWindow(t *testing.T) {
	r, mock := testRoom(t, "alice", "bob", "carol")
	toPlaying(t, r, mock)

	require.NoError(t, r.Raise("alice"))
	require.NoError(t, r.Respond("bob", true))

	_, empty := r.RemoveSeat("carol")
	require.False(t, empty)

	assert.Equal(t, PhasePlaying, r.phase())
	assert.Equal(t, "alice", r.round.TurnSeat)
}

func TestGambleTimeoutAutoAccepts(t *testing.T) {
	r, mock := testRoom(t, "alice", "bob")

	r.mu.Lock()
	r.seat("bob").Score = r.rules.EliminationScore - 1
	r.mu.Unlock()

	startGame(t, r)
	require.Equal(t, PhaseForcedGamble, r.phase())

	advance(t, mock, r.rules.ResponseWindow)
	assert.Equal(t, PhasePlaying, r.phase())
	assert.Equal(t, r.rules.GambleStake, r.entryStake("alice"))
	assert.Equal(t, r.rules.GambleStake, r.entryStake("bob"))
}
