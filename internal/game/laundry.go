package game

import "github.com/kaartspel/toepen/internal/deck"

// ClaimType is the declared hand composition of a laundry claim.
type ClaimType int

const (
	// ModestWash ("vuile was"): three picture cards and exactly one 7.
	ModestWash ClaimType = iota
	// FullWash ("witte was"): four picture cards.
	FullWash
)

func (t ClaimType) String() string {
	switch t {
	case ModestWash:
		return "modest"
	case FullWash:
		return "full"
	default:
		return "unknown"
	}
}

// ParseClaimType maps a wire string onto a ClaimType.
func ParseClaimType(s string) (ClaimType, bool) {
	switch s {
	case "modest":
		return ModestWash, true
	case "full":
		return FullWash, true
	default:
		return 0, false
	}
}

// PendingClaim is an open laundry claim awaiting inspection. The hand
// snapshot is taken at claim time: adjudication only ever looks at the
// snapshot, so later hand changes cannot affect the outcome.
type PendingClaim struct {
	Seat     string
	Type     ClaimType
	Snapshot []deck.Card
}

// claimValid is the claim-type predicate over the snapshot.
func claimValid(t ClaimType, hand []deck.Card) bool {
	faces, sevens := 0, 0
	for _, c := range hand {
		if c.IsFace() {
			faces++
		}
		if c.Rank == deck.Seven {
			sevens++
		}
	}
	switch t {
	case FullWash:
		return faces == len(hand)
	case ModestWash:
		return faces == len(hand)-1 && sevens == 1
	default:
		return false
	}
}

// openLaundryLocked starts the claim window that follows a deal. If the
// window elapses with no claim open, play begins.
func (r *Room) openLaundryLocked() {
	r.setPhase(PhaseLaundry)
	r.round.ClaimedThisWindow = make(map[string]bool)
	r.schedule(r.rules.LaundryWindow, PhaseLaundry, func() {
		// A pending claim bumped the epoch, so reaching here means no
		// claim is open.
		r.leaveLaundryLocked()
		r.notifyLocked("laundry window closed")
	})
	r.notifyLocked("laundry window open")
}

// leaveLaundryLocked moves on from the laundry phase, honoring a queued
// blind raise before ordinary play.
func (r *Room) leaveLaundryLocked() {
	if r.round.pendingBlind != "" {
		r.openBlindResponseLocked()
		return
	}
	r.setPhase(PhasePlaying)
}

// SubmitClaim declares a laundry claim, snapshotting the claimant's
// hand and opening the inspection window.
func (r *Room) SubmitClaim(name string, claimType ClaimType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started || r.round == nil {
		return rejectf(RejectNotStarted, "game not started")
	}
	rs := r.round
	if rs.Phase != PhaseLaundry {
		return rejectf(RejectWrongPhase, "cannot claim during %s", rs.Phase)
	}
	s := r.seat(name)
	if s == nil {
		return rejectf(RejectUnknownSeat, "no seat named %q", name)
	}
	if !rs.InRound[name] {
		return rejectf(RejectWrongPhase, "seat %q is not contesting this round", name)
	}
	if rs.Claim != nil {
		return rejectf(RejectClaimUnavailable, "another claim is already open")
	}
	if rs.ClaimedThisWindow[name] {
		return rejectf(RejectClaimUnavailable, "seat %q already claimed this window", name)
	}
	if rs.Deck.Remaining() < r.rules.HandSize {
		return rejectf(RejectClaimUnavailable, "not enough cards left for a re-deal")
	}

	snapshot := make([]deck.Card, len(s.Hand))
	copy(snapshot, s.Hand)
	rs.Claim = &PendingClaim{Seat: name, Type: claimType, Snapshot: snapshot}
	rs.ClaimedThisWindow[name] = true

	// Invalidate the no-claim window timer; the inspection window now
	// owns the phase.
	r.bumpEpoch()
	r.schedule(r.rules.InspectWindow, PhaseLaundry, func() {
		r.resolveClaimLocked("")
	})

	r.logger.Info("Laundry claim submitted", "seat", name, "type", claimType.String())
	r.notifyLocked(name + " claims a " + claimType.String() + " wash")
	return nil
}

// InspectClaim challenges the open claim on behalf of another seat.
func (r *Room) InspectClaim(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started || r.round == nil {
		return rejectf(RejectNotStarted, "game not started")
	}
	rs := r.round
	if rs.Phase != PhaseLaundry || rs.Claim == nil {
		return rejectf(RejectWrongPhase, "no claim open for inspection")
	}
	s := r.seat(name)
	if s == nil {
		return rejectf(RejectUnknownSeat, "no seat named %q", name)
	}
	if !s.Active() {
		return rejectf(RejectWrongPhase, "eliminated seats cannot inspect")
	}
	if rs.Claim.Seat == name {
		return rejectf(RejectBadAction, "cannot inspect your own claim")
	}

	r.resolveClaimLocked(name)
	return nil
}

// resolveClaimLocked adjudicates the open claim. inspector is empty
// when the inspection window elapsed unchallenged; then the claimant is
// re-dealt without penalty. Otherwise the loser of the inspection takes
// a point, and a caught bluffer plays the round with an open hand.
func (r *Room) resolveClaimLocked(inspector string) {
	rs := r.round
	claim := rs.Claim
	rs.Claim = nil

	claimant := r.seat(claim.Seat)
	if claimant == nil {
		// Claimant left the room while the window was open.
		r.leaveLaundryLocked()
		r.notifyLocked("claim abandoned")
		return
	}
	action := claim.Seat + " was rewashed"

	if inspector != "" {
		if claimValid(claim.Type, claim.Snapshot) {
			if ins := r.seat(inspector); ins != nil {
				ins.Score++
				action = inspector + " inspected a clean " + claim.Type.String() + " wash"
				r.logger.Info("Claim was valid", "claimant", claim.Seat, "inspector", inspector)
			}
		} else {
			claimant.Score++
			claimant.HandRevealed = true
			action = claim.Seat + " was caught bluffing"
			r.logger.Info("Claim was a bluff", "claimant", claim.Seat, "inspector", inspector)
		}
	}

	// The claimant always receives a fresh hand, challenged or not.
	claimant.Hand = rs.Deck.DealFromEnd(r.rules.HandSize)

	if rs.Deck.Remaining() >= r.rules.HandSize {
		// Another claim is still possible; restart the window.
		r.setPhase(PhaseLaundry)
		rs.ClaimedThisWindow = make(map[string]bool)
		r.schedule(r.rules.LaundryWindow, PhaseLaundry, func() {
			r.leaveLaundryLocked()
			r.notifyLocked("laundry window closed")
		})
	} else {
		r.leaveLaundryLocked()
	}

	r.notifyLocked(action)
}
