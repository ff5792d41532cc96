package game

import (
	"github.com/kaartspel/toepen/internal/deck"
)

// TrickPlay is one card played into the current trick.
type TrickPlay struct {
	Seat string
	Card deck.Card
}

// RoundState is the shared mutable record for the round in progress.
// One instance lives for the whole game and is reset at every deal.
type RoundState struct {
	Phase Phase

	Deck       *deck.Deck
	TurnSeat   string
	LeadSuit   *deck.Suit
	Trick      []TrickPlay
	TricksDone int
	// EvalPending blocks further actions between the closing card of a
	// trick and its deferred evaluation.
	EvalPending bool

	Stake int
	// EntryStake is each contesting seat's locked-in liability. It only
	// moves at round start and on an explicit accept, never
	// retroactively.
	EntryStake map[string]int
	InRound    map[string]bool
	TricksWon  map[string]int
	LastRaiser string

	// Response-window state, shared by raise, forced-gamble and blind
	// sub-phases. PriorEntry snapshots EntryStake at window open so a
	// folding seat pays its pre-raise liability.
	Responses  *ResponseSet
	PriorEntry map[string]int
	Liability  int

	Claim             *PendingClaim
	ClaimedThisWindow map[string]bool

	// NextBlind is a raise pre-committed for the next round;
	// pendingBlind is the commitment being honored this round.
	NextBlind    string
	pendingBlind string
}

func newRoundState() *RoundState {
	return &RoundState{
		Phase:      PhaseLobby,
		EntryStake: make(map[string]int),
		InRound:    make(map[string]bool),
		TricksWon:  make(map[string]int),
	}
}

// startRoundLocked resets stakes, seats the leader and deals.
func (r *Room) startRoundLocked(leader string) {
	rs := r.round

	rs.Stake = r.rules.StartStake
	rs.EntryStake = make(map[string]int)
	rs.InRound = make(map[string]bool)
	rs.TricksWon = make(map[string]int)
	rs.LastRaiser = ""
	rs.Responses = nil
	rs.PriorEntry = nil
	rs.Liability = 0
	rs.Claim = nil

	for _, s := range r.activeSeats() {
		rs.InRound[s.Name] = true
		rs.EntryStake[s.Name] = r.rules.StartStake
		rs.TricksWon[s.Name] = 0
	}

	if ld := r.seat(leader); ld == nil || !ld.Active() {
		leader = r.activeSeats()[0].Name
	}
	rs.TurnSeat = leader

	rs.pendingBlind = ""
	if s := r.seat(rs.NextBlind); s != nil && s.Active() {
		rs.pendingBlind = rs.NextBlind
	}
	rs.NextBlind = ""

	r.dealLocked()
}

// dealLocked builds a fresh shuffled deck, deals every contesting seat
// a hand from the end of the deck, then runs the post-deal pipeline:
// queued blind raise stake, forced gamble, laundry window.
func (r *Room) dealLocked() {
	rs := r.round

	rs.Deck = deck.New(r.rng)
	rs.Deck.Shuffle()
	rs.Trick = nil
	rs.LeadSuit = nil
	rs.TricksDone = 0
	rs.EvalPending = false
	rs.ClaimedThisWindow = make(map[string]bool)

	for _, s := range r.activeSeats() {
		s.Hand = rs.Deck.DealFromEnd(r.rules.HandSize)
		s.HandRevealed = false
	}

	// A blind raise forces the elevated stake before anyone acts. The
	// response window for it opens after the laundry phase.
	if rs.pendingBlind != "" {
		rs.Stake = r.rules.BlindStake
		rs.LastRaiser = rs.pendingBlind
		rs.EntryStake[rs.pendingBlind] = r.rules.BlindStake
		r.logger.Info("Blind raise in effect", "seat", rs.pendingBlind, "stake", rs.Stake)
	}

	r.logger.Info("Round dealt", "seats", r.countInRound(), "leader", rs.TurnSeat)

	// Armoede: a seat one point from elimination forces everyone to
	// play for the elevated liability before any card is played.
	for _, s := range r.activeSeats() {
		if s.Score == r.rules.EliminationScore-1 {
			r.openGambleLocked()
			return
		}
	}

	r.openLaundryLocked()
}

// copyStakes snapshots an entry-stake map.
func copyStakes(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// endRoundLocked applies trick penalties, tests eliminations and either
// terminates the game or schedules the next round.
func (r *Room) endRoundLocked() {
	rs := r.round

	maxTricks := 0
	for name := range rs.InRound {
		if rs.TricksWon[name] > maxTricks {
			maxTricks = rs.TricksWon[name]
		}
	}

	// Everyone still contesting who fell short of the best trick count
	// pays their own locked-in entry stake; seats tied at the top pay
	// nothing. Fold penalties were already assessed when folding.
	for _, s := range r.seats {
		if !rs.InRound[s.Name] {
			continue
		}
		if rs.TricksWon[s.Name] < maxTricks {
			s.Score += rs.EntryStake[s.Name]
			r.logger.Debug("Round penalty", "seat", s.Name, "penalty", rs.EntryStake[s.Name], "score", s.Score)
		}
	}

	// Leader of the next round: the trick-count winner (first in table
	// order on a tie).
	leader := ""
	for _, s := range r.seats {
		if rs.InRound[s.Name] && rs.TricksWon[s.Name] == maxTricks {
			leader = s.Name
			break
		}
	}

	for _, s := range r.seats {
		if !s.Eliminated && s.Score >= r.rules.EliminationScore {
			s.Eliminated = true
			r.logger.Info("Seat eliminated", "seat", s.Name, "score", s.Score)
		}
	}

	if len(r.activeSeats()) <= 1 {
		r.setPhase(PhaseGameEnd)
		r.logger.Info("Game over", "survivors", len(r.activeSeats()))
		r.notifyLocked("game over")
		return
	}

	r.setPhase(PhaseRoundEnd)
	r.notifyLocked("round over")
	r.schedule(r.rules.RoundDelay, PhaseRoundEnd, func() {
		r.startRoundLocked(leader)
		r.notifyLocked("new round")
	})
}

// QueueBlindRaise pre-commits a raise that takes effect at the next
// deal: the round then starts at the elevated stake with a response
// window against every other seat.
func (r *Room) QueueBlindRaise(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started || r.round == nil {
		return rejectf(RejectNotStarted, "game not started")
	}
	rs := r.round
	if rs.Phase != PhasePlaying && rs.Phase != PhaseRoundEnd {
		return rejectf(RejectWrongPhase, "cannot queue a blind raise during %s", rs.Phase)
	}
	s := r.seat(name)
	if s == nil {
		return rejectf(RejectUnknownSeat, "no seat named %q", name)
	}
	if !s.Active() {
		return rejectf(RejectWrongPhase, "eliminated seats cannot raise")
	}
	if rs.NextBlind != "" {
		return rejectf(RejectAlreadyRaised, "a blind raise is already queued")
	}
	if r.playingForElimination(s) {
		return rejectf(RejectForcedToPlay, "seats playing for elimination cannot raise")
	}

	rs.NextBlind = name
	r.logger.Info("Blind raise queued", "seat", name)
	r.notifyLocked(name + " queued a blind raise")
	return nil
}
